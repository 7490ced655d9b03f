package partitioner

import (
	"cmp"
	"slices"

	da "github.com/lintang-b-s/roadbisect/pkg/datastructure"
	"github.com/lintang-b-s/roadbisect/pkg/util"
)

/*
BuildMLP. flatten the recorded cells into one cell id per node per level.
cells of level l are the cells recorded at l plus the leaf cells of shallower levels, which keep their node set on
every deeper level. on each level cells are numbered 0..k-1 by their smallest node id, so the numbering does not
depend on the order in which workers finished.
every node ends with its finest level cell id in graph.GetCell.
*/
func (rb *RecursiveBisection) BuildMLP() (*da.MultilevelPartition, error) {
	numVertices := rb.graph.NumberOfVertices()
	for u := 0; u < numVertices; u++ {
		if rb.graph.GetCell(da.Index(u)) == da.INVALID_CELL {
			return nil, util.WrapErrorf(nil, util.ErrInvalidSeparator, "node %d was never assigned to a leaf cell", u)
		}
	}

	records := rb.collector.records
	numLevels := 0
	for _, rec := range records {
		numLevels = max(numLevels, rec.level+1)
	}

	byLevel := make([][]int, numLevels)
	for i, rec := range records {
		byLevel[rec.level] = append(byLevel[rec.level], i)
	}

	mlp := da.NewMultilevelPartition(numVertices, numLevels)
	carried := make([]int, 0)
	for l := 0; l < numLevels; l++ {
		cells := make([]int, 0, len(carried)+len(byLevel[l]))
		cells = append(cells, carried...)
		cells = append(cells, byLevel[l]...)
		slices.SortFunc(cells, func(a, b int) int {
			return cmp.Compare(records[a].nodes[0], records[b].nodes[0])
		})

		for cellId, ri := range cells {
			for _, u := range records[ri].nodes {
				mlp.SetCell(l, u, uint32(cellId))
			}
		}
		mlp.SetNumberOfCellsInLevel(l, len(cells))

		for _, ri := range byLevel[l] {
			if !records[ri].leaf {
				continue
			}
			carried = append(carried, ri)
			for _, u := range records[ri].nodes {
				mlp.SetLeafLevel(u, uint8(l))
			}
		}

		rb.logger.Sugar().Infof("level %d: %d cells", l, len(cells))
	}

	for u := 0; u < numVertices; u++ {
		rb.graph.SetCell(da.Index(u), mlp.GetCell(numLevels-1, da.Index(u)))
	}
	return mlp, nil
}
