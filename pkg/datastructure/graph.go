package datastructure

import (
	"math"
	"sync/atomic"

	"github.com/lintang-b-s/roadbisect/pkg/util"
)

type Index uint32

const INVALID_CELL uint32 = math.MaxUint32

type Vertex struct {
	lat      float64
	lon      float64
	firstOut Index // index of the first outEdge of this vertex in the flattened graph.outEdges array
	firstIn  Index // index of the first inEdge of this vertex in the flattened graph.inEdges array
	id       Index
	cell     atomic.Uint32 // current cell assignment, the only mutable field after construction
}

func (v *Vertex) GetID() Index {
	return v.id
}

func (v *Vertex) GetLat() float64 {
	return v.lat
}

func (v *Vertex) GetLon() float64 {
	return v.lon
}

func (v *Vertex) GetFirstOut() Index {
	return v.firstOut
}

func (v *Vertex) GetFirstIn() Index {
	return v.firstIn
}

// outedge u->head
type OutEdge struct {
	weight float64
	edgeId Index
	head   Index
}

// inedge tail->v
type InEdge struct {
	weight float64
	edgeId Index
	tail   Index
}

func (e *OutEdge) GetWeight() float64 {
	return e.weight
}

func (e *OutEdge) GetHead() Index {
	return e.head
}

func (e *OutEdge) GetEdgeId() Index {
	return e.edgeId
}

func (e *InEdge) GetWeight() float64 {
	return e.weight
}

func (e *InEdge) GetTail() Index {
	return e.tail
}

func (e *InEdge) GetEdgeId() Index {
	return e.edgeId
}

// InputEdge is a raw directed arc (from, to, weight) as read from the input.
type InputEdge struct {
	From   Index
	To     Index
	Weight float64
}

func NewInputEdge(from, to Index, weight float64) InputEdge {
	return InputEdge{From: from, To: to, Weight: weight}
}

// Graph is the immutable road network store. Adjacency is kept in CSR form for both directions:
// vertices[u].firstOut..vertices[u+1].firstOut are the outEdges of u, same for inEdges.
// vertices has one extra sentinel entry at the end.
type Graph struct {
	vertices       []Vertex
	outEdges       []OutEdge
	inEdges        []InEdge
	hasCoordinates bool
	boundingBox    *BoundingBox
}

/*
NewGraph. build the graph store from numVertices and a list of directed arcs.
coords is optional (nil or empty when the network has no coordinates), otherwise it must have
exactly numVertices entries.

self loops are dropped since they never contribute to any cut.
*/
func NewGraph(numVertices int, edges []InputEdge, coords []Coordinate) (*Graph, error) {
	if numVertices <= 0 {
		return nil, util.WrapErrorf(nil, util.ErrMalformedGraph, "graph must have at least one vertex, got %d", numVertices)
	}
	if uint64(numVertices) >= uint64(math.MaxUint32) {
		return nil, util.WrapErrorf(nil, util.ErrMalformedGraph, "too many vertices: %d", numVertices)
	}
	if len(coords) != 0 && len(coords) != numVertices {
		return nil, util.WrapErrorf(nil, util.ErrMalformedGraph,
			"coordinate count %d does not match vertex count %d", len(coords), numVertices)
	}

	n := Index(numVertices)
	outDegree := make([]Index, numVertices+1)
	inDegree := make([]Index, numVertices+1)
	numArcs := 0
	for i, e := range edges {
		if e.From >= n || e.To >= n {
			return nil, util.WrapErrorf(nil, util.ErrMalformedGraph,
				"edge %d (%d -> %d) references a vertex outside [0, %d)", i, e.From, e.To, n)
		}
		if math.IsNaN(e.Weight) || e.Weight < 0 {
			return nil, util.WrapErrorf(nil, util.ErrMalformedGraph,
				"edge %d (%d -> %d) has invalid weight %v", i, e.From, e.To, e.Weight)
		}
		if e.From == e.To {
			continue
		}
		outDegree[e.From+1]++
		inDegree[e.To+1]++
		numArcs++
	}

	for i := 1; i <= numVertices; i++ {
		outDegree[i] += outDegree[i-1]
		inDegree[i] += inDegree[i-1]
	}

	g := &Graph{
		vertices:       make([]Vertex, numVertices+1),
		outEdges:       make([]OutEdge, numArcs),
		inEdges:        make([]InEdge, numArcs),
		hasCoordinates: len(coords) != 0,
	}

	for v := 0; v <= numVertices; v++ {
		vertex := &g.vertices[v]
		vertex.id = Index(v)
		vertex.firstOut = outDegree[v]
		vertex.firstIn = inDegree[v]
		vertex.cell.Store(INVALID_CELL)
		if g.hasCoordinates && v < numVertices {
			vertex.lat = coords[v].Lat
			vertex.lon = coords[v].Lon
		}
	}

	// counting sort keeps the input order of arcs inside each adjacency list, so the layout is deterministic.
	outPos := make([]Index, numVertices)
	inPos := make([]Index, numVertices)
	copy(outPos, outDegree[:numVertices])
	copy(inPos, inDegree[:numVertices])

	edgeId := Index(0)
	for _, e := range edges {
		if e.From == e.To {
			continue
		}
		g.outEdges[outPos[e.From]] = OutEdge{weight: e.Weight, edgeId: edgeId, head: e.To}
		outPos[e.From]++
		g.inEdges[inPos[e.To]] = InEdge{weight: e.Weight, edgeId: edgeId, tail: e.From}
		inPos[e.To]++
		edgeId++
	}

	if g.hasCoordinates {
		g.boundingBox = computeBoundingBox(coords)
	}

	return g, nil
}

func computeBoundingBox(coords []Coordinate) *BoundingBox {
	minLat, minLon := math.Inf(1), math.Inf(1)
	maxLat, maxLon := math.Inf(-1), math.Inf(-1)
	for _, c := range coords {
		minLat = math.Min(minLat, c.Lat)
		minLon = math.Min(minLon, c.Lon)
		maxLat = math.Max(maxLat, c.Lat)
		maxLon = math.Max(maxLon, c.Lon)
	}
	return NewBoundingBox(minLat, minLon, maxLat, maxLon)
}

func (g *Graph) NumberOfVertices() int {
	return len(g.vertices) - 1
}

func (g *Graph) NumberOfEdges() int {
	return len(g.outEdges)
}

func (g *Graph) GetOutDegree(u Index) Index {
	return g.vertices[u+1].firstOut - g.vertices[u].firstOut
}

func (g *Graph) GetInDegree(u Index) Index {
	return g.vertices[u+1].firstIn - g.vertices[u].firstIn
}

func (g *Graph) GetVertex(u Index) *Vertex {
	return &g.vertices[u]
}

func (g *Graph) GetOutEdge(e Index) *OutEdge {
	return &g.outEdges[e]
}

func (g *Graph) GetInEdge(e Index) *InEdge {
	return &g.inEdges[e]
}

func (g *Graph) HasCoordinates() bool {
	return g.hasCoordinates
}

func (g *Graph) GetBoundingBox() *BoundingBox {
	return g.boundingBox
}

// GetVertexCoordinates. return lat, lon of vertex u. (0,0) when the graph has no coordinates.
func (g *Graph) GetVertexCoordinates(u Index) (float64, float64) {
	return g.vertices[u].lat, g.vertices[u].lon
}

func (g *Graph) ForOutEdgesOf(u Index, handle func(e *OutEdge)) {
	for e := g.vertices[u].firstOut; e < g.vertices[u+1].firstOut; e++ {
		handle(&g.outEdges[e])
	}
}

func (g *Graph) ForInEdgesOf(v Index, handle func(e *InEdge)) {
	for e := g.vertices[v].firstIn; e < g.vertices[v+1].firstIn; e++ {
		handle(&g.inEdges[e])
	}
}

// ForNeighborsOf. iterate the undirected neighborhood of u: heads of outEdges then tails of inEdges.
// a neighbor connected in both directions is visited twice.
func (g *Graph) ForNeighborsOf(u Index, handle func(v Index, weight float64)) {
	for e := g.vertices[u].firstOut; e < g.vertices[u+1].firstOut; e++ {
		handle(g.outEdges[e].head, g.outEdges[e].weight)
	}
	for e := g.vertices[u].firstIn; e < g.vertices[u+1].firstIn; e++ {
		handle(g.inEdges[e].tail, g.inEdges[e].weight)
	}
}

func (g *Graph) FindOutEdge(u, v Index) (Index, bool) {
	for e := g.vertices[u].firstOut; e < g.vertices[u+1].firstOut; e++ {
		if g.outEdges[e].head == v {
			return e, true
		}
	}
	return 0, false
}

func (g *Graph) GetVerticeIds() []Index {
	ids := make([]Index, g.NumberOfVertices())
	for i := range ids {
		ids[i] = Index(i)
	}
	return ids
}

// SetCell. safe for concurrent use, different workers own disjoint vertex sets.
func (g *Graph) SetCell(u Index, cell uint32) {
	g.vertices[u].cell.Store(cell)
}

func (g *Graph) GetCell(u Index) uint32 {
	return g.vertices[u].cell.Load()
}
