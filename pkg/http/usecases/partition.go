package usecases

import (
	da "github.com/lintang-b-s/roadbisect/pkg/datastructure"
	"github.com/lintang-b-s/roadbisect/pkg/util"
)

type PartitionSummary struct {
	NumVertices       int      `json:"num_vertices"`
	NumLevels         int      `json:"num_levels"`
	CellsPerLevel     []uint32 `json:"cells_per_level"`
	BitWidths         []uint8  `json:"bit_widths"`
	PackedCellNumbers bool     `json:"packed_cell_numbers"`
}

type NodeCells struct {
	Node             da.Index `json:"node"`
	LeafLevel        int      `json:"leaf_level"`
	Cells            []uint32 `json:"cells"`
	PackedCellNumber *da.Pv   `json:"packed_cell_number,omitempty"`
}

type LevelCells struct {
	Level    int     `json:"level"`
	NumCells int     `json:"num_cells"`
	MinSize  int     `json:"min_size"`
	MaxSize  int     `json:"max_size"`
	MeanSize float64 `json:"mean_size"`
	Sizes    []int   `json:"sizes"`
}

// PartitionService. read-only queries over a loaded multilevel partition.
type PartitionService struct {
	mp *da.MultilevelPartition
}

func NewPartitionService(mp *da.MultilevelPartition) *PartitionService {
	// offsets are computed lazily otherwise, do it once before handlers share mp.
	mp.ComputeBitmap()
	return &PartitionService{mp: mp}
}

func (ps *PartitionService) Summary() PartitionSummary {
	widths := make([]uint8, ps.mp.GetNumberOfLevels())
	for l := range widths {
		widths[l] = ps.mp.LevelBitWidth(l)
	}
	return PartitionSummary{
		NumVertices:       ps.mp.GetNumberOfVertices(),
		NumLevels:         ps.mp.GetNumberOfLevels(),
		CellsPerLevel:     ps.mp.GetNumCells(),
		BitWidths:         widths,
		PackedCellNumbers: ps.mp.CanPack(),
	}
}

func (ps *PartitionService) checkNode(node da.Index) error {
	if int(node) >= ps.mp.GetNumberOfVertices() {
		return util.WrapErrorf(nil, util.ErrNotFound, "node %d not in partition of %d nodes", node, ps.mp.GetNumberOfVertices())
	}
	return nil
}

func (ps *PartitionService) NodeCells(node da.Index) (NodeCells, error) {
	if err := ps.checkNode(node); err != nil {
		return NodeCells{}, err
	}

	res := NodeCells{
		Node:      node,
		LeafLevel: ps.mp.GetLeafLevel(node),
		Cells:     ps.mp.CellSequence(node),
	}
	if pv, ok := ps.mp.PackedCellNumber(node); ok {
		res.PackedCellNumber = &pv
	}
	return res, nil
}

func (ps *PartitionService) LevelCells(level int) (LevelCells, error) {
	if level < 0 || level >= ps.mp.GetNumberOfLevels() {
		return LevelCells{}, util.WrapErrorf(nil, util.ErrNotFound, "level %d not in [0, %d)", level, ps.mp.GetNumberOfLevels())
	}

	sizes := ps.mp.CellSizes(level)
	res := LevelCells{
		Level:    level,
		NumCells: len(sizes),
		Sizes:    sizes,
	}
	if len(sizes) == 0 {
		return res, nil
	}

	res.MinSize = sizes[0]
	total := 0
	for _, s := range sizes {
		res.MinSize = util.MinInt(res.MinSize, s)
		res.MaxSize = util.MaxInt(res.MaxSize, s)
		total += s
	}
	res.MeanSize = float64(total) / float64(len(sizes))
	return res, nil
}

// FirstDifferingLevel. coarsest level where u and v are in different cells. ok is false when they share every cell.
func (ps *PartitionService) FirstDifferingLevel(u, v da.Index) (int, bool, error) {
	if err := ps.checkNode(u); err != nil {
		return 0, false, err
	}
	if err := ps.checkNode(v); err != nil {
		return 0, false, err
	}

	if li, ok := ps.mp.GetLevelInfo(); ok {
		pu, _ := ps.mp.PackedCellNumber(u)
		pv, _ := ps.mp.PackedCellNumber(v)
		level, differ := li.GetFirstDifferingLevel(pu, pv)
		return int(level), differ, nil
	}

	for l := 0; l < ps.mp.GetNumberOfLevels(); l++ {
		if ps.mp.GetCell(l, u) != ps.mp.GetCell(l, v) {
			return l, true, nil
		}
	}
	return 0, false, nil
}
