package partitioner

import (
	"errors"
	"sync"

	da "github.com/lintang-b-s/roadbisect/pkg/datastructure"
	"github.com/lintang-b-s/roadbisect/pkg/util"
	"go.uber.org/zap"
)

type cellRecord struct {
	level int
	nodes []da.Index // sorted, nodes[0] is the smallest node id of the cell
	leaf  bool
}

// cellCollector. append only store of every recorded cell, shared by all workers.
type cellCollector struct {
	mu      sync.Mutex
	records []cellRecord
	stats   Stats
}

func (c *cellCollector) addCell(level int, nodes []da.Index, leaf bool) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, cellRecord{level: level, nodes: nodes, leaf: leaf})
	if leaf {
		c.stats.LeafCells++
	}
	c.stats.MaxDepth = max(c.stats.MaxDepth, level)
	return uint32(len(c.records) - 1)
}

func (c *cellCollector) updateStats(update func(s *Stats)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	update(&c.stats)
}

/*
RecursiveBisection. splits every subproblem into smaller ones until the cells are small enough.
[On Balanced Separators in Road Networks, Schild, et al.] https://aschild.github.io/papers/roadseparator.pdf

a subproblem at level l becomes:
  - a leaf cell of level l if it has at most MinCellSize nodes or l == MaxLevels.
  - one subproblem per connected component at level l if it is disconnected.
  - otherwise a solved cell of level l whose left and right sides are subproblems of level l+1 and whose separator
    nodes form a leaf boundary cell of level l+1. when no balanced separator exists the id split fallback is used.
*/
type RecursiveBisection struct {
	graph     *da.Graph
	opts      Options
	solver    *InertialFlow
	collector *cellCollector
	logger    *zap.Logger
}

func NewRecursiveBisection(graph *da.Graph, opts Options, coords []point, logger *zap.Logger) *RecursiveBisection {
	for u := 0; u < graph.NumberOfVertices(); u++ {
		graph.SetCell(da.Index(u), da.INVALID_CELL)
	}
	return &RecursiveBisection{
		graph:     graph,
		opts:      opts,
		solver:    NewInertialFlow(opts, coords),
		collector: &cellCollector{},
		logger:    logger,
	}
}

// addLeaf. record a terminal cell, each node remembers its leaf cell record in the graph.
func (rb *RecursiveBisection) addLeaf(level int, nodes []da.Index) {
	recordId := rb.collector.addCell(level, nodes, true)
	for _, u := range nodes {
		rb.graph.SetCell(u, recordId)
	}
}

// bisect. advance one pending subproblem and return its pending children.
func (rb *RecursiveBisection) bisect(ws *workspace, sub subproblem) ([]subproblem, error) {
	n := len(sub.nodes)
	if n <= rb.opts.MinCellSize || sub.level >= rb.opts.MaxLevels {
		rb.addLeaf(sub.level, sub.nodes)
		return nil, nil
	}

	sg := buildSubgraph(rb.graph, ws, sub.nodes)

	if comps := sg.components(); len(comps) > 1 {
		rb.collector.updateStats(func(s *Stats) {
			s.ConnectivitySplits++
		})
		children := make([]subproblem, len(comps))
		for i, comp := range comps {
			children[i] = newSubproblem(comp, sub.level)
		}
		return children, nil
	}

	bisection, err := rb.solver.ComputeBisection(sg)
	outcome := cutBalanced
	if errors.Is(err, util.ErrNoBalancedCut) {
		bisection, outcome = resolveUnbalanced(sg, bisection)
		if outcome == cutFallback {
			rb.logger.Debug("no usable separator, splitting cell by node id",
				zap.Int("level", sub.level), zap.Int("nodes", n), zap.Int("separator", len(bisection.Separator)))
		} else {
			rb.logger.Debug("no balanced separator, keeping the most balanced cut",
				zap.Int("level", sub.level), zap.Int("nodes", n),
				zap.Int("left", len(bisection.Left)), zap.Int("right", len(bisection.Right)))
		}
	} else if err != nil {
		return nil, err
	}

	if rb.opts.VerifySeparators {
		if err := VerifyBisection(sg, bisection); err != nil {
			return nil, util.WrapErrorf(err, util.ErrInvalidSeparator, "cell of %d nodes at level %d", n, sub.level)
		}
	}

	rb.collector.addCell(sub.level, sub.nodes, false)
	rb.collector.updateStats(func(s *Stats) {
		switch outcome {
		case cutFallback:
			s.Fallbacks++
		case cutUnbalanced:
			s.UnbalancedCuts++
		default:
			s.SeparatorsSolved++
		}
		s.BoundaryNodes += len(bisection.Separator)
	})

	if len(bisection.Separator) > 0 {
		rb.addLeaf(sub.level+1, bisection.Separator)
	}

	children := make([]subproblem, 0, 2)
	if len(bisection.Left) > 0 {
		children = append(children, newSubproblem(bisection.Left, sub.level+1))
	}
	if len(bisection.Right) > 0 {
		children = append(children, newSubproblem(bisection.Right, sub.level+1))
	}
	return children, nil
}

func (rb *RecursiveBisection) GetStats() Stats {
	rb.collector.mu.Lock()
	defer rb.collector.mu.Unlock()
	return rb.collector.stats
}
