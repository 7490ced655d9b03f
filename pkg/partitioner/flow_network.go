package partitioner

import (
	da "github.com/lintang-b-s/roadbisect/pkg/datastructure"
)

type flowArc struct {
	head     da.Index
	rev      da.Index // position of the paired reverse arc in FlowNetwork.arcs
	capacity int64
	flow     int64
}

func (a *flowArc) residual() int64 {
	return a.capacity - a.flow
}

type pendingArc struct {
	tail, head      da.Index
	capacity        int64
	reverseCapacity int64
}

/*
FlowNetwork. transient residual network built for one max flow computation.
edges are collected with AddEdge and laid out as a CSR array of arcs on Build. every edge becomes a pair of arcs
(u->v with capacity, v->u with reverseCapacity) pointing at each other through rev.
*/
type FlowNetwork struct {
	numNodes int
	pending  []pendingArc
	firstArc []da.Index
	arcs     []flowArc
}

func NewFlowNetwork(numNodes, edgeHint int) *FlowNetwork {
	return &FlowNetwork{
		numNodes: numNodes,
		pending:  make([]pendingArc, 0, edgeHint),
	}
}

func (fn *FlowNetwork) NumberOfNodes() int {
	return fn.numNodes
}

func (fn *FlowNetwork) NumberOfArcs() int {
	return len(fn.arcs)
}

// AddEdge. directed edge u->v. an undirected edge of capacity c is AddEdge(u, v, c, c).
func (fn *FlowNetwork) AddEdge(u, v da.Index, capacity, reverseCapacity int64) {
	fn.pending = append(fn.pending, pendingArc{tail: u, head: v, capacity: capacity, reverseCapacity: reverseCapacity})
}

func (fn *FlowNetwork) Build() {
	fn.firstArc = make([]da.Index, fn.numNodes+1)
	for _, p := range fn.pending {
		fn.firstArc[p.tail+1]++
		fn.firstArc[p.head+1]++
	}
	for u := 0; u < fn.numNodes; u++ {
		fn.firstArc[u+1] += fn.firstArc[u]
	}

	fn.arcs = make([]flowArc, 2*len(fn.pending))
	pos := make([]da.Index, fn.numNodes)
	copy(pos, fn.firstArc[:fn.numNodes])
	for _, p := range fn.pending {
		i := pos[p.tail]
		pos[p.tail]++
		j := pos[p.head]
		pos[p.head]++
		fn.arcs[i] = flowArc{head: p.head, rev: j, capacity: p.capacity}
		fn.arcs[j] = flowArc{head: p.tail, rev: i, capacity: p.reverseCapacity}
	}
	fn.pending = nil
}

func (fn *FlowNetwork) arcRange(u da.Index) (da.Index, da.Index) {
	return fn.firstArc[u], fn.firstArc[u+1]
}

func (fn *FlowNetwork) getArc(i da.Index) *flowArc {
	return &fn.arcs[i]
}

/*
buildEdgeFlowNetwork. one node per subgraph node, every undirected adjacency is a unit capacity edge usable in both
directions. a min cut is a minimum set of edges between the sources and the sinks.
*/
func buildEdgeFlowNetwork(sg *subgraph) *FlowNetwork {
	fn := NewFlowNetwork(sg.numberOfNodes(), sg.numberOfAdjacencies())
	sg.forEachAdjacency(func(u, v da.Index) {
		fn.AddEdge(u, v, 1, 1)
	})
	fn.Build()
	return fn
}

/*
buildVertexFlowNetwork. node u is split into in(u)=2u and out(u)=2u+1 joined by a unit capacity edge,
adjacencies become infinite out->in edges in both directions. a min cut is a minimum set of nodes.
*/
func buildVertexFlowNetwork(sg *subgraph) *FlowNetwork {
	n := sg.numberOfNodes()
	fn := NewFlowNetwork(2*n, n+2*sg.numberOfAdjacencies())
	for u := da.Index(0); u < da.Index(n); u++ {
		fn.AddEdge(inNode(u), outNode(u), 1, 0)
	}
	sg.forEachAdjacency(func(u, v da.Index) {
		fn.AddEdge(outNode(u), inNode(v), INF_CAPACITY, 0)
		fn.AddEdge(outNode(v), inNode(u), INF_CAPACITY, 0)
	})
	fn.Build()
	return fn
}

func inNode(u da.Index) da.Index {
	return 2 * u
}

func outNode(u da.Index) da.Index {
	return 2*u + 1
}
