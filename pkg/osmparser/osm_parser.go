package osmparser

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	da "github.com/lintang-b-s/roadbisect/pkg/datastructure"
	"github.com/lintang-b-s/roadbisect/pkg/geo"
	"github.com/lintang-b-s/roadbisect/pkg/util"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"go.uber.org/zap"
)

type nodeCoord struct {
	lat float64
	lon float64
}

type osmWay struct {
	nodes   []int64
	speed   float64 // km/h
	forward bool
	reverse bool
}

/*
OsmParser. build a road network graph store from an openstreetmap extract.
only car accessible highways are kept. every way is split at junction nodes (nodes shared by more than one way)
and way end nodes, the nodes in between only contribute to the segment length.
*/
type OsmParser struct {
	wayNodeMap      map[int64]NodeType
	acceptedNodeMap map[int64]nodeCoord
	barrierNodes    map[int64]bool
	nodeIDMap       map[int64]da.Index
	osmNodeIds      []int64
	ways            []osmWay

	weighting Weighting
	logger    *zap.Logger
}

func NewOSMParser(weighting Weighting, logger *zap.Logger) *OsmParser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if weighting == "" {
		weighting = DURATION_WEIGHTING
	}
	return &OsmParser{
		wayNodeMap:      make(map[int64]NodeType),
		acceptedNodeMap: make(map[int64]nodeCoord),
		barrierNodes:    make(map[int64]bool),
		nodeIDMap:       make(map[int64]da.Index),
		weighting:       weighting,
		logger:          logger,
	}
}

// GetOsmNodeIds. openstreetmap node id of every graph vertex, indexed by vertex id.
func (p *OsmParser) GetOsmNodeIds() []int64 {
	return p.osmNodeIds
}

type scannerFactory func(ctx context.Context) (osm.Scanner, func() error, error)

func fileScanner(mapFile string) scannerFactory {
	return func(ctx context.Context) (osm.Scanner, func() error, error) {
		f, err := os.Open(mapFile)
		if err != nil {
			return nil, nil, err
		}

		switch {
		case strings.HasSuffix(mapFile, ".osm.pbf"), strings.HasSuffix(mapFile, ".pbf"):
			// must not be parallel, way node order decides vertex ids
			return osmpbf.New(ctx, f, 1), f.Close, nil
		case strings.HasSuffix(mapFile, ".osm.bz2"):
			bz, err := bzip2.NewReader(f, &bzip2.ReaderConfig{})
			if err != nil {
				f.Close()
				return nil, nil, err
			}
			return osmxml.New(ctx, bz), func() error {
				bz.Close()
				return f.Close()
			}, nil
		default:
			return osmxml.New(ctx, f), f.Close, nil
		}
	}
}

// Parse. read mapFile (.osm.pbf, .osm or .osm.bz2) in two passes: ways first, then the nodes they reference.
func (p *OsmParser) Parse(ctx context.Context, mapFile string) (*da.Graph, error) {
	return p.parse(ctx, fileScanner(mapFile))
}

func (p *OsmParser) parse(ctx context.Context, newScanner scannerFactory) (*da.Graph, error) {
	if err := p.scanWays(ctx, newScanner); err != nil {
		return nil, err
	}
	if err := p.scanNodes(ctx, newScanner); err != nil {
		return nil, err
	}
	return p.buildGraph()
}

func (p *OsmParser) scanWays(ctx context.Context, newScanner scannerFactory) error {
	scanner, closeFn, err := newScanner(ctx)
	if err != nil {
		return util.WrapErrorf(err, util.ErrMalformedGraph, "open openstreetmap file")
	}
	defer closeFn()
	defer scanner.Close()

	countWays := 0
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok || len(way.Nodes) < 2 || !acceptOsmWay(way) {
			continue
		}
		if (countWays+1)%50000 == 0 {
			p.logger.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
		}
		countWays++

		w := osmWay{
			nodes: make([]int64, 0, len(way.Nodes)),
			speed: waySpeed(way),
		}
		w.forward, w.reverse = wayDirection(way)

		for i, node := range way.Nodes {
			id := int64(node.ID)
			w.nodes = append(w.nodes, id)
			if _, ok := p.wayNodeMap[id]; !ok {
				if i == 0 || i == len(way.Nodes)-1 {
					p.wayNodeMap[id] = END_NODE
				} else {
					p.wayNodeMap[id] = BETWEEN_NODE
				}
			} else {
				p.wayNodeMap[id] = JUNCTION_NODE
			}
		}
		p.ways = append(p.ways, w)
	}
	if err := scanner.Err(); err != nil {
		return util.WrapErrorf(err, util.ErrMalformedGraph, "scan openstreetmap ways")
	}

	p.logger.Sugar().Infof("scanned %d openstreetmap ways", countWays)
	return nil
}

func (p *OsmParser) scanNodes(ctx context.Context, newScanner scannerFactory) error {
	scanner, closeFn, err := newScanner(ctx)
	if err != nil {
		return util.WrapErrorf(err, util.ErrMalformedGraph, "open openstreetmap file")
	}
	defer closeFn()
	defer scanner.Close()

	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		id := int64(node.ID)
		if _, ok := p.wayNodeMap[id]; !ok {
			continue
		}
		p.acceptedNodeMap[id] = nodeCoord{lat: node.Lat, lon: node.Lon}

		barrierType := node.Tags.Find("barrier")
		if _, ok := acceptedBarrierType[barrierType]; ok && node.Tags.Find("access") == "no" {
			p.barrierNodes[id] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return util.WrapErrorf(err, util.ErrMalformedGraph, "scan openstreetmap nodes")
	}
	return nil
}

func (p *OsmParser) isSegmentEnd(id int64) bool {
	t := p.wayNodeMap[id]
	return t == JUNCTION_NODE || t == END_NODE || p.barrierNodes[id]
}

// getVertex. graph vertex of an osm node. fresh makes a new copy, used on the far side of a barrier.
func (p *OsmParser) getVertex(id int64, coords *[]da.Coordinate, fresh bool) da.Index {
	if v, ok := p.nodeIDMap[id]; ok && !fresh {
		return v
	}
	v := da.Index(len(p.osmNodeIds))
	c := p.acceptedNodeMap[id]
	*coords = append(*coords, da.NewCoordinate(c.lat, c.lon))
	p.osmNodeIds = append(p.osmNodeIds, id)
	if !fresh {
		p.nodeIDMap[id] = v
	}
	return v
}

func (p *OsmParser) buildGraph() (*da.Graph, error) {
	var (
		edges  []da.InputEdge
		coords []da.Coordinate
	)

	for _, way := range p.ways {
		start := -1
		startFresh := false
		length := 0.0

		for i, id := range way.nodes {
			c, ok := p.acceptedNodeMap[id]
			if !ok {
				// node clipped out of the extract
				start = -1
				continue
			}
			if start >= 0 {
				prev := p.acceptedNodeMap[way.nodes[i-1]]
				length += geo.CalculateHaversineDistance(prev.lat, prev.lon, c.lat, c.lon) * 1000
			}
			if !p.isSegmentEnd(id) && i != len(way.nodes)-1 {
				continue
			}

			if start >= 0 && way.nodes[start] != id {
				from := p.getVertex(way.nodes[start], &coords, startFresh)
				to := p.getVertex(id, &coords, false)
				weight := p.edgeWeight(length, way.speed)
				if way.forward {
					edges = append(edges, da.NewInputEdge(from, to, weight))
				}
				if way.reverse {
					edges = append(edges, da.NewInputEdge(to, from, weight))
				}
			}

			start = i
			startFresh = p.barrierNodes[id]
			length = 0
		}
	}

	if len(coords) == 0 {
		return nil, util.WrapErrorf(nil, util.ErrMalformedGraph, "openstreetmap file has no accepted road segments")
	}

	p.logger.Info("built road network from openstreetmap",
		zap.Int("vertices", len(coords)),
		zap.Int("arcs", len(edges)),
		zap.Int("barriers", len(p.barrierNodes)),
	)
	return da.NewGraph(len(coords), edges, coords)
}

func (p *OsmParser) edgeWeight(lengthMeter, speedKmh float64) float64 {
	if p.weighting == DISTANCE_WEIGHTING {
		return lengthMeter
	}
	return lengthMeter / (speedKmh / 3.6)
}

func acceptOsmWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	if highway != "" {
		_, ok := acceptedHighway[highway]
		return ok
	}
	return way.Tags.Find("junction") != ""
}

func isRestricted(value string) bool {
	return value == "no" || value == "restricted"
}

// wayDirection. whether cars may drive the way in node order (forward) and against it (reverse).
func wayDirection(way *osm.Way) (bool, bool) {
	oneway := way.Tags.Find("oneway")
	junction := way.Tags.Find("junction")
	noForward := isRestricted(way.Tags.Find("vehicle:forward")) || isRestricted(way.Tags.Find("motor_vehicle:forward"))
	noBackward := isRestricted(way.Tags.Find("vehicle:backward")) || isRestricted(way.Tags.Find("motor_vehicle:backward"))

	switch {
	case oneway == "-1" || noForward:
		return false, true
	case oneway == "yes" || oneway == "true" || oneway == "1" || noBackward:
		return true, false
	case oneway == "" && (junction == "roundabout" || junction == "circular" || way.Tags.Find("highway") == "motorway"):
		return true, false
	default:
		return true, true
	}
}

// waySpeed. maxspeed tag in km/h when present and parseable, the highway class speed otherwise.
func waySpeed(way *osm.Way) float64 {
	if speed, ok := parseMaxSpeed(way.Tags.Find("maxspeed")); ok {
		return speed
	}
	return roadTypeSpeed(way.Tags.Find("highway"))
}

func parseMaxSpeed(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	factor := 1.0
	switch {
	case strings.HasSuffix(value, "mph"):
		factor = 1.60934
		value = strings.TrimSuffix(value, "mph")
	case strings.HasSuffix(value, "knots"):
		factor = 1.852
		value = strings.TrimSuffix(value, "knots")
	case strings.HasSuffix(value, "km/h"):
		value = strings.TrimSuffix(value, "km/h")
	}

	speed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || speed <= 0 {
		return 0, false
	}
	return speed * factor, true
}
