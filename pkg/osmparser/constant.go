package osmparser

type NodeType uint8

const (
	END_NODE NodeType = iota
	BETWEEN_NODE
	JUNCTION_NODE
)

type Weighting string

const (
	DISTANCE_WEIGHTING Weighting = "distance" // meters
	DURATION_WEIGHTING Weighting = "duration" // seconds
)

const DEFAULT_SPEED_KMH = 30.0

var (
	// https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Telenav
	acceptedHighway = map[string]struct{}{
		"motorway":         {},
		"motorway_link":    {},
		"trunk":            {},
		"trunk_link":       {},
		"primary":          {},
		"primary_link":     {},
		"secondary":        {},
		"secondary_link":   {},
		"residential":      {},
		"residential_link": {},
		"service":          {},
		"tertiary":         {},
		"tertiary_link":    {},
		"road":             {},
		"unclassified":     {},
		"living_street":    {},
		"motorroad":        {},
	}

	// https://wiki.openstreetmap.org/wiki/Key:barrier
	// a barrier with access=no splits the street into two disconnected edges.
	acceptedBarrierType = map[string]struct{}{
		"bollard":        {},
		"swing_gate":     {},
		"jersey_barrier": {},
		"lift_gate":      {},
		"block":          {},
		"gate":           {},
	}
)

// roadTypeSpeed. default speed in km/h of a highway class.
func roadTypeSpeed(roadType string) float64 {
	switch roadType {
	case "motorway":
		return 100
	case "motorroad":
		return 90
	case "trunk", "motorway_link":
		return 70
	case "primary", "trunk_link":
		return 65
	case "secondary", "primary_link":
		return 60
	case "tertiary", "secondary_link":
		return 50
	case "unclassified", "tertiary_link":
		return 40
	case "residential", "residential_link":
		return 30
	case "service", "road":
		return 20
	case "living_street":
		return 5
	default:
		return DEFAULT_SPEED_KMH
	}
}
