package partitioner

import (
	"slices"

	da "github.com/lintang-b-s/roadbisect/pkg/datastructure"
)

// workspace. per worker scratch, localId maps a global node id to its position in the current subgraph.
type workspace struct {
	localId []int32
	buf     []da.Index
}

func newWorkspace(numVertices int) *workspace {
	localId := make([]int32, numVertices)
	for i := range localId {
		localId[i] = -1
	}
	return &workspace{localId: localId}
}

/*
subgraph. undirected simple graph induced by the active nodes of a subproblem, with dense local ids.
local id i is nodes[i], so local order equals global order. arcs leaving the node set are dropped,
parallel arcs and both directions of a road collapse into one adjacency.
*/
type subgraph struct {
	nodes []da.Index
	first []da.Index
	adj   []da.Index
}

func buildSubgraph(graph *da.Graph, ws *workspace, nodes []da.Index) *subgraph {
	for i, u := range nodes {
		ws.localId[u] = int32(i)
	}
	defer func() {
		for _, u := range nodes {
			ws.localId[u] = -1
		}
	}()

	sg := &subgraph{
		nodes: nodes,
		first: make([]da.Index, len(nodes)+1),
		adj:   make([]da.Index, 0, 2*len(nodes)),
	}

	for i, u := range nodes {
		ws.buf = ws.buf[:0]
		graph.ForNeighborsOf(u, func(v da.Index, _ float64) {
			lv := ws.localId[v]
			if lv < 0 || int(lv) == i {
				return
			}
			ws.buf = append(ws.buf, da.Index(lv))
		})
		slices.Sort(ws.buf)
		sg.adj = append(sg.adj, slices.Compact(ws.buf)...)
		sg.first[i+1] = da.Index(len(sg.adj))
	}
	return sg
}

func (sg *subgraph) numberOfNodes() int {
	return len(sg.nodes)
}

func (sg *subgraph) numberOfAdjacencies() int {
	return len(sg.adj) / 2
}

func (sg *subgraph) globalId(u da.Index) da.Index {
	return sg.nodes[u]
}

func (sg *subgraph) neighbors(u da.Index) []da.Index {
	return sg.adj[sg.first[u]:sg.first[u+1]]
}

// forEachAdjacency. visit every undirected adjacency once as (u, v) with u < v.
func (sg *subgraph) forEachAdjacency(handle func(u, v da.Index)) {
	for u := da.Index(0); u < da.Index(len(sg.nodes)); u++ {
		for _, v := range sg.neighbors(u) {
			if u < v {
				handle(u, v)
			}
		}
	}
}

// components. connected components as sorted global id groups, ordered by smallest node id.
func (sg *subgraph) components() [][]da.Index {
	ds := da.NewDisjointSet(len(sg.nodes))
	sg.forEachAdjacency(func(u, v da.Index) {
		ds.Union(u, v)
	})
	if ds.NumberOfSets() == 1 {
		return [][]da.Index{sg.nodes}
	}

	comps := ds.Components()
	for _, comp := range comps {
		for i, u := range comp {
			comp[i] = sg.globalId(u)
		}
	}
	return comps
}
