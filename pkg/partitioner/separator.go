package partitioner

import (
	"slices"

	da "github.com/lintang-b-s/roadbisect/pkg/datastructure"
	"github.com/lintang-b-s/roadbisect/pkg/util"
)

const (
	sideNone int8 = iota
	sideLeft
	sideRight
	sideSeparator
)

/*
VerifyBisection. checks that left, right and separator partition the subgraph nodes and that no left node is
connected to a right node once the separator is removed.
*/
func VerifyBisection(sg *subgraph, b *Bisection) error {
	n := sg.numberOfNodes()
	side := make([]int8, n)

	assign := func(group []da.Index, s int8) error {
		for _, u := range group {
			idx, found := slices.BinarySearch(sg.nodes, u)
			if !found {
				return util.WrapErrorf(nil, util.ErrInvalidSeparator, "node %d is not part of the cell", u)
			}
			if side[idx] != sideNone {
				return util.WrapErrorf(nil, util.ErrInvalidSeparator, "node %d appears in more than one group", u)
			}
			side[idx] = s
		}
		return nil
	}

	if err := assign(b.Left, sideLeft); err != nil {
		return err
	}
	if err := assign(b.Right, sideRight); err != nil {
		return err
	}
	if err := assign(b.Separator, sideSeparator); err != nil {
		return err
	}
	if b.size() != n {
		return util.WrapErrorf(nil, util.ErrInvalidSeparator, "bisection covers %d of %d nodes", b.size(), n)
	}

	ds := da.NewDisjointSet(n)
	sg.forEachAdjacency(func(u, v da.Index) {
		if side[u] != sideSeparator && side[v] != sideSeparator {
			ds.Union(u, v)
		}
	})

	leftRoot := make([]bool, n)
	for u := 0; u < n; u++ {
		if side[u] == sideLeft {
			leftRoot[ds.Find(da.Index(u))] = true
		}
	}
	for u := 0; u < n; u++ {
		if side[u] == sideRight && leftRoot[ds.Find(da.Index(u))] {
			return util.WrapErrorf(nil, util.ErrInvalidSeparator,
				"right node %d is still connected to the left side", sg.globalId(da.Index(u)))
		}
	}
	return nil
}

type cutOutcome int

const (
	cutBalanced cutOutcome = iota
	cutUnbalanced
	cutFallback
)

/*
resolveUnbalanced. cut for a cell without a balanced separator. the most balanced solver cut is kept when both of
its sides are non empty, otherwise the cell is split by node id.
*/
func resolveUnbalanced(sg *subgraph, mostBalanced *Bisection) (*Bisection, cutOutcome) {
	if mostBalanced != nil && len(mostBalanced.Left) > 0 && len(mostBalanced.Right) > 0 {
		return mostBalanced, cutUnbalanced
	}
	return fallbackBisection(sg), cutFallback
}

/*
fallbackBisection. split by node id: the first half of the sorted nodes is left, the second half right.
every left node with a neighbor in the right half is moved to the separator.
*/
func fallbackBisection(sg *subgraph) *Bisection {
	n := sg.numberOfNodes()
	half := da.Index(n / 2)

	b := &Bisection{DirectionIndex: -1}
	for u := da.Index(0); u < half; u++ {
		crossing := false
		for _, v := range sg.neighbors(u) {
			if v >= half {
				crossing = true
				break
			}
		}
		if crossing {
			b.Separator = append(b.Separator, sg.globalId(u))
			b.CutValue++
		} else {
			b.Left = append(b.Left, sg.globalId(u))
		}
	}
	b.Right = append(b.Right, sg.nodes[half:]...)
	return b
}
