package partitioner

import (
	"cmp"
	"slices"

	"github.com/lintang-b-s/roadbisect/pkg/concurrent"
	da "github.com/lintang-b-s/roadbisect/pkg/datastructure"
	"github.com/lintang-b-s/roadbisect/pkg/util"
)

type minCutJob struct {
	attemptIndex int
	direction    int
	fraction     float64
}

func newMinCutJob(attemptIndex, direction int, fraction float64) minCutJob {
	return minCutJob{attemptIndex: attemptIndex, direction: direction, fraction: fraction}
}

/*
InertialFlow. approximate minimum balanced separator of a subgraph.
[Inertial Flow, Schild & Sommer] nodes are sorted by their projection on a line, the first k nodes become sources
and the last k nodes sinks, then a max flow between them gives the cut.
*/
type InertialFlow struct {
	opts    Options
	coords  []point // planar position of every global node
	mapJobs func(numWorkers int, jobs []minCutJob, jobFunc concurrent.JobFunc[minCutJob, *Bisection]) []*Bisection
}

func NewInertialFlow(opts Options, coords []point) *InertialFlow {
	return &InertialFlow{opts: opts, coords: coords, mapJobs: concurrent.Map[minCutJob, *Bisection]}
}

// candidateDirections. principal axis of the subgraph first (if enabled), then the configured directions.
func (inf *InertialFlow) candidateDirections(sg *subgraph) []Direction {
	dirs := make([]Direction, 0, len(inf.opts.Directions)+1)
	if inf.opts.UsePrincipalAxis {
		dirs = append(dirs, principalAxis(sg, inf.coords))
	}
	return append(dirs, inf.opts.Directions...)
}

/*
ComputeBisection. run attempts round by round, one round is one source/sink fraction with every direction, until a
round yields a balanced bisection or the budget of 1+RetryBudget attempts is spent.
the balanced attempt with the smallest separator wins, ties go to the better balance then to the lower attempt index.
when no attempt is balanced the most balanced attempt is returned together with util.ErrNoBalancedCut.
sg must have at least 2 nodes.
*/
func (inf *InertialFlow) ComputeBisection(sg *subgraph) (*Bisection, error) {
	dirs := inf.candidateDirections(sg)
	budget := 1 + inf.opts.RetryBudget

	var (
		mostBalanced *Bisection
		attempts     int
	)

	for _, fraction := range inf.opts.SourceSinkFractions {
		if attempts >= budget {
			break
		}

		jobs := make([]minCutJob, 0, len(dirs))
		for d := range dirs {
			if attempts >= budget {
				break
			}
			jobs = append(jobs, newMinCutJob(attempts, d, fraction))
			attempts++
		}

		results := inf.runRound(sg, dirs, jobs)

		if best := selectBalanced(results, inf.opts.BalanceRatio); best != nil {
			return best, nil
		}
		for _, res := range results {
			if mostBalanced == nil || moreBalanced(res, mostBalanced) {
				mostBalanced = res
			}
		}
	}

	return mostBalanced, util.WrapErrorf(nil, util.ErrNoBalancedCut,
		"no balanced cut of %d nodes after %d attempts", sg.numberOfNodes(), attempts)
}

func (inf *InertialFlow) runRound(sg *subgraph, dirs []Direction, jobs []minCutJob) []*Bisection {
	computeMinCut := func(job minCutJob) *Bisection {
		return inf.computeAttempt(sg, dirs[job.direction], job)
	}

	// attempts of one round never use more goroutines than the configured workers
	if inf.opts.Workers <= 1 || sg.numberOfNodes() <= inf.opts.SequentialThreshold || len(jobs) == 1 {
		results := make([]*Bisection, len(jobs))
		for i, job := range jobs {
			results[i] = computeMinCut(job)
		}
		return results
	}
	return inf.mapJobs(inf.opts.Workers, jobs, computeMinCut)
}

// selectBalanced. smallest separator among the balanced bisections, nil if none is balanced.
func selectBalanced(results []*Bisection, ratio float64) *Bisection {
	var best *Bisection
	for _, res := range results {
		if !res.isBalanced(ratio) {
			continue
		}
		if best == nil || smallerSeparator(res, best) {
			best = res
		}
	}
	return best
}

func smallerSeparator(a, b *Bisection) bool {
	if len(a.Separator) != len(b.Separator) {
		return len(a.Separator) < len(b.Separator)
	}
	if a.largestSide() != b.largestSide() {
		return a.largestSide() < b.largestSide()
	}
	return a.attemptIndex < b.attemptIndex
}

func moreBalanced(a, b *Bisection) bool {
	if a.largestSide() != b.largestSide() {
		return a.largestSide() < b.largestSide()
	}
	if len(a.Separator) != len(b.Separator) {
		return len(a.Separator) < len(b.Separator)
	}
	return a.attemptIndex < b.attemptIndex
}

func (inf *InertialFlow) computeAttempt(sg *subgraph, dir Direction, job minCutJob) *Bisection {
	sources, sinks := inf.sortVerticesByLineProjection(sg, dir, job.fraction)

	var bisection *Bisection
	switch inf.opts.SeparatorMode {
	case VERTEX_SEPARATOR:
		bisection = vertexSeparatorBisection(sg, sources, sinks)
	default:
		bisection = edgeSeparatorBisection(sg, sources, sinks)
	}

	bisection.DirectionIndex = job.direction
	bisection.Fraction = job.fraction
	bisection.attemptIndex = job.attemptIndex
	return bisection
}

/*
sortVerticesByLineProjection. order local nodes by their projection on dir, ties broken by node id.
returns the first k and the last k nodes, k = max(1, floor(n*fraction)) clamped to n/2.
*/
func (inf *InertialFlow) sortVerticesByLineProjection(sg *subgraph, dir Direction, fraction float64) ([]da.Index, []da.Index) {
	type item struct {
		idx        da.Index
		projection float64
	}
	n := sg.numberOfNodes()

	items := make([]item, n)
	for i, u := range sg.nodes {
		items[i] = item{idx: da.Index(i), projection: dir.project(inf.coords[u])}
	}

	slices.SortFunc(items, func(a, b item) int {
		if c := cmp.Compare(a.projection, b.projection); c != 0 {
			return c
		}
		return cmp.Compare(a.idx, b.idx)
	})

	k := max(1, int(float64(n)*fraction))
	k = min(k, n/2)

	sourceNodes := make([]da.Index, 0, k)
	sinkNodes := make([]da.Index, 0, k)
	for i := 0; i < k; i++ {
		sourceNodes = append(sourceNodes, items[i].idx)
		sinkNodes = append(sinkNodes, items[n-1-i].idx)
	}
	return sourceNodes, sinkNodes
}

/*
edgeSeparatorBisection. unit capacity min cut on the adjacencies. both endpoints of every cut edge form the separator,
the residual reachable nodes minus the separator form the left side.
*/
func edgeSeparatorBisection(sg *subgraph, sources, sinks []da.Index) *Bisection {
	dn := NewDinicMaxFlow(buildEdgeFlowNetwork(sg))
	cut := dn.ComputeMaxflowMinCut(sources, sinks)

	inSeparator := make([]bool, sg.numberOfNodes())
	sg.forEachAdjacency(func(u, v da.Index) {
		if cut.GetFlag(u) != cut.GetFlag(v) {
			inSeparator[u] = true
			inSeparator[v] = true
		}
	})

	b := &Bisection{CutValue: cut.GetMinCut()}
	for u, global := range sg.nodes {
		switch {
		case inSeparator[u]:
			b.Separator = append(b.Separator, global)
		case cut.GetFlag(da.Index(u)):
			b.Left = append(b.Left, global)
		default:
			b.Right = append(b.Right, global)
		}
	}
	return b
}

/*
vertexSeparatorBisection. min cut on the split node network, sources enter at in(s) and sinks leave at out(t).
a node whose in copy is reachable but whose out copy is not lies on the cut and joins the separator.
*/
func vertexSeparatorBisection(sg *subgraph, sources, sinks []da.Index) *Bisection {
	splitSources := make([]da.Index, len(sources))
	for i, s := range sources {
		splitSources[i] = inNode(s)
	}
	splitSinks := make([]da.Index, len(sinks))
	for i, t := range sinks {
		splitSinks[i] = outNode(t)
	}

	dn := NewDinicMaxFlow(buildVertexFlowNetwork(sg))
	cut := dn.ComputeMaxflowMinCut(splitSources, splitSinks)

	b := &Bisection{CutValue: cut.GetMinCut()}
	for u, global := range sg.nodes {
		in := cut.GetFlag(inNode(da.Index(u)))
		out := cut.GetFlag(outNode(da.Index(u)))
		switch {
		case in && out:
			b.Left = append(b.Left, global)
		case in:
			b.Separator = append(b.Separator, global)
		default:
			b.Right = append(b.Right, global)
		}
	}
	return b
}
