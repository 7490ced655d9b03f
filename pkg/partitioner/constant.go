package partitioner

import "math"

const (
	INVALID_LEVEL = -1

	// capacity of arcs that must never be part of a cut
	INF_CAPACITY int64 = math.MaxInt32

	// number of slope directions in the default inertial flow direction set. slopes are spread in [-1, 1)
	INERTIAL_FLOW_ITERATION = 4

	DEFAULT_MIN_CELL_SIZE        = 64
	DEFAULT_MAX_LEVELS           = 16
	DEFAULT_BALANCE_RATIO        = 0.75
	DEFAULT_RETRY_BUDGET         = 29
	DEFAULT_SEQUENTIAL_THRESHOLD = 256

	// the serialized hierarchy stores at most 255 levels
	MAX_LEVELS_LIMIT = 254
)

var DEFAULT_SOURCE_SINK_FRACTIONS = []float64{0.25, 0.1, 0.4}

type SeparatorMode string

const (
	EDGE_SEPARATOR   SeparatorMode = "edge"
	VERTEX_SEPARATOR SeparatorMode = "vertex"
)
