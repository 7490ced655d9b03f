package partitioner

import (
	"math"
	"runtime"

	"github.com/lintang-b-s/roadbisect/pkg/datastructure"
	"github.com/lintang-b-s/roadbisect/pkg/util"
)

// Direction. a 2D unit vector nodes are projected on. X weights the east axis, Y the north axis.
type Direction struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func NewDirection(x, y float64) Direction {
	norm := math.Hypot(x, y)
	if norm == 0 {
		return Direction{X: 1, Y: 0}
	}
	return Direction{X: x / norm, Y: y / norm}
}

func (d Direction) project(p point) float64 {
	return d.X*p.x + d.Y*p.y
}

/*
DefaultDirections. INERTIAL_FLOW_ITERATION slopes in [-1, 1), projection = slope*x + (1-|slope|)*y,
followed by the horizontal, vertical and diagonal lines.
*/
func DefaultDirections() []Direction {
	dirs := make([]Direction, 0, INERTIAL_FLOW_ITERATION+5)
	for i := 0; i < INERTIAL_FLOW_ITERATION; i++ {
		slope := -1 + float64(i)*(2.0/INERTIAL_FLOW_ITERATION)
		dirs = append(dirs, NewDirection(slope, 1.0-math.Abs(slope)))
	}

	dirs = append(dirs,
		NewDirection(1, 0),
		NewDirection(0, 1),
		NewDirection(1, 1),
		NewDirection(1, -1),
		NewDirection(-1, 1),
	)
	return dirs
}

type Options struct {
	MinCellSize         int
	MaxLevels           int
	BalanceRatio        float64
	Directions          []Direction
	SourceSinkFractions []float64
	RetryBudget         int // number of attempts allowed after the first one
	SeparatorMode       SeparatorMode
	UsePrincipalAxis    bool
	Workers             int
	SequentialThreshold int // cells with at most this many nodes are finished by the worker that popped them
	VerifySeparators    bool
}

func DefaultOptions() Options {
	return Options{
		MinCellSize:         DEFAULT_MIN_CELL_SIZE,
		MaxLevels:           DEFAULT_MAX_LEVELS,
		BalanceRatio:        DEFAULT_BALANCE_RATIO,
		Directions:          DefaultDirections(),
		SourceSinkFractions: append([]float64(nil), DEFAULT_SOURCE_SINK_FRACTIONS...),
		RetryBudget:         DEFAULT_RETRY_BUDGET,
		SeparatorMode:       EDGE_SEPARATOR,
		UsePrincipalAxis:    true,
		Workers:             runtime.NumCPU(),
		SequentialThreshold: DEFAULT_SEQUENTIAL_THRESHOLD,
	}
}

// withDefaults. fill zero values so a partially filled Options still runs.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MinCellSize <= 0 {
		o.MinCellSize = def.MinCellSize
	}
	if o.MaxLevels <= 0 {
		o.MaxLevels = def.MaxLevels
	}
	if o.MaxLevels > MAX_LEVELS_LIMIT {
		o.MaxLevels = MAX_LEVELS_LIMIT
	}
	if o.BalanceRatio <= 0 || o.BalanceRatio >= 1 {
		o.BalanceRatio = def.BalanceRatio
	}
	if len(o.Directions) == 0 {
		o.Directions = def.Directions
	}
	if len(o.SourceSinkFractions) == 0 {
		o.SourceSinkFractions = def.SourceSinkFractions
	}
	if o.RetryBudget < 0 {
		o.RetryBudget = 0
	}
	if o.SeparatorMode == "" {
		o.SeparatorMode = EDGE_SEPARATOR
	}
	if o.Workers <= 0 {
		o.Workers = def.Workers
	}
	if o.SequentialThreshold < 0 {
		o.SequentialThreshold = 0
	}
	return o
}

// Bisection. result of one separator computation, all node ids are global and sorted ascending.
type Bisection struct {
	Left      []datastructure.Index
	Right     []datastructure.Index
	Separator []datastructure.Index

	DirectionIndex int     // index into the direction list of the attempt, the principal axis is 0 when enabled
	Fraction       float64 // source/sink fraction of the attempt
	CutValue       int64   // max flow value of the attempt
	attemptIndex   int
}

func (b *Bisection) size() int {
	return len(b.Left) + len(b.Right) + len(b.Separator)
}

// largestSide. max(|left|, |right|)
func (b *Bisection) largestSide() int {
	return util.MaxInt(len(b.Left), len(b.Right))
}

// isBalanced. both sides non empty and max(|left|,|right|)/n <= ratio.
func (b *Bisection) isBalanced(ratio float64) bool {
	n := b.size()
	if n == 0 || len(b.Left) == 0 || len(b.Right) == 0 {
		return false
	}
	return float64(b.largestSide()) <= ratio*float64(n)
}

type Stats struct {
	SeparatorsSolved   int `json:"separators_solved"`
	Fallbacks          int `json:"fallbacks"`
	UnbalancedCuts     int `json:"unbalanced_cuts"`
	ConnectivitySplits int `json:"connectivity_splits"`
	BoundaryNodes      int `json:"boundary_nodes"`
	LeafCells          int `json:"leaf_cells"`
	MaxDepth           int `json:"max_depth"`
}

// subproblem. sorted set of active global node ids at a level.
type subproblem struct {
	nodes []datastructure.Index
	level int
}

func newSubproblem(nodes []datastructure.Index, level int) subproblem {
	return subproblem{nodes: nodes, level: level}
}

// point. planar coordinate of a node.
type point struct {
	x, y float64
}
