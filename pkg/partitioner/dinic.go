package partitioner

import (
	"math"

	da "github.com/lintang-b-s/roadbisect/pkg/datastructure"
)

// MinCut. source side of a minimum cut and its value.
type MinCut struct {
	flags                  []bool // true if the node is reachable from the sources in the residual network
	numNodesInPartitionTwo int    // number of nodes not reachable from the sources
	minCut                 int64
}

func NewMinCut(numberOfNodes int) *MinCut {
	return &MinCut{
		flags: make([]bool, numberOfNodes),
	}
}

func (mc *MinCut) SetFlag(u da.Index, flag bool) {
	mc.flags[u] = flag
}

func (mc *MinCut) GetFlag(u da.Index) bool {
	return mc.flags[u]
}

func (mc *MinCut) GetFlags() []bool {
	return mc.flags
}

func (mc *MinCut) GetNumNodesInPartitionTwo() int {
	return mc.numNodesInPartitionTwo
}

func (mc *MinCut) GetMinCut() int64 {
	return mc.minCut
}

// DinicMaxFlow. multi source, multi sink dinic max flow over a FlowNetwork.
type DinicMaxFlow struct {
	network *FlowNetwork
	level   []int32
	current []da.Index // current arc of every node in the blocking flow phase
	isSink  []bool
	queue   []da.Index
}

func NewDinicMaxFlow(network *FlowNetwork) *DinicMaxFlow {
	n := network.NumberOfNodes()
	return &DinicMaxFlow{
		network: network,
		level:   make([]int32, n),
		current: make([]da.Index, n),
		isSink:  make([]bool, n),
		queue:   make([]da.Index, 0, n),
	}
}

// bfsLevelGraph. level every node reachable from the sources in the residual network. sinks are not expanded.
func (dmf *DinicMaxFlow) bfsLevelGraph(sources []da.Index) bool {
	for i := range dmf.level {
		dmf.level[i] = INVALID_LEVEL
	}

	dmf.queue = dmf.queue[:0]
	for _, s := range sources {
		if dmf.level[s] == INVALID_LEVEL {
			dmf.level[s] = 0
			dmf.queue = append(dmf.queue, s)
		}
	}

	reachedSink := false
	for head := 0; head < len(dmf.queue); head++ {
		u := dmf.queue[head]
		if dmf.isSink[u] {
			reachedSink = true
			continue
		}

		level := dmf.level[u] + 1
		first, end := dmf.network.arcRange(u)
		for i := first; i < end; i++ {
			arc := dmf.network.getArc(i)
			if arc.residual() > 0 && dmf.level[arc.head] == INVALID_LEVEL {
				dmf.level[arc.head] = level
				dmf.queue = append(dmf.queue, arc.head)
			}
		}
	}
	return reachedSink
}

func (dmf *DinicMaxFlow) dfsAugmentPath(u da.Index, f int64) int64 {
	if dmf.isSink[u] || f == 0 {
		return f
	}

	_, end := dmf.network.arcRange(u)
	for ; dmf.current[u] < end; dmf.current[u]++ {
		arc := dmf.network.getArc(dmf.current[u])
		residual := arc.residual()
		if residual <= 0 || dmf.level[arc.head] != dmf.level[u]+1 {
			continue
		}

		if pushed := dmf.dfsAugmentPath(arc.head, min(residual, f)); pushed > 0 {
			arc.flow += pushed
			dmf.network.getArc(arc.rev).flow -= pushed
			return pushed
		}
	}

	return 0
}

func (dmf *DinicMaxFlow) resetCurrentArcs() {
	copy(dmf.current, dmf.network.firstArc[:dmf.network.NumberOfNodes()])
}

/*
ComputeMaxflowMinCut. max flow from all sources to all sinks, the returned cut flags the nodes reachable from the
sources in the final residual network. sources and sinks must be disjoint.

time complexity: O(N^2 * M), N,M = number of nodes & arcs of the flow network
*/
func (dmf *DinicMaxFlow) ComputeMaxflowMinCut(sources, sinks []da.Index) *MinCut {
	for _, t := range sinks {
		dmf.isSink[t] = true
	}

	var maxFlow int64
	for dmf.bfsLevelGraph(sources) {
		dmf.resetCurrentArcs()

		for _, s := range sources {
			for {
				flow := dmf.dfsAugmentPath(s, math.MaxInt64)
				if flow == 0 {
					break
				}
				maxFlow += flow
			}
		}
	}

	minCut := NewMinCut(dmf.network.NumberOfNodes())
	dmf.makeMinCutFlags(minCut, maxFlow)
	return minCut
}

// makeMinCutFlags. the last bfs could not reach a sink, so its levels are exactly the residual reachable set.
func (dmf *DinicMaxFlow) makeMinCutFlags(minCut *MinCut, maxflow int64) {
	for u := range dmf.level {
		if dmf.level[u] != INVALID_LEVEL {
			minCut.SetFlag(da.Index(u), true)
		} else {
			minCut.numNodesInPartitionTwo++
		}
	}
	minCut.minCut = maxflow
}
