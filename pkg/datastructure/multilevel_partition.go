package datastructure

import (
	"fmt"

	"github.com/lintang-b-s/roadbisect/pkg/util"
)

type Pv uint64

// MultilevelPartition. store every cell information of each vertex on every level.
// level 0 is the coarsest level (the connected components of the input), level numLevels-1 the finest.
type MultilevelPartition struct {
	numCells  []uint32   // number of cells in each level, cell ids of level l are in [0, numCells[l])
	cellIds   [][]uint32 // cellIds[level][vertexId]
	leafLevel []uint8    // level where the vertex cell stopped being subdivided. nil when unknown (e.g. read from file)
	pvOffset  []uint8    // nil when the levels need more than 64 bits
	pvBits    int        // total width of all levels
	pvReady   bool
}

func NewMultilevelPartition(numVertices, numLevels int) *MultilevelPartition {
	mp := &MultilevelPartition{
		numCells: make([]uint32, numLevels),
		cellIds:  make([][]uint32, numLevels),
	}
	for l := 0; l < numLevels; l++ {
		mp.cellIds[l] = make([]uint32, numVertices)
	}
	return mp
}

func (mp *MultilevelPartition) GetNumberOfVertices() int {
	if len(mp.cellIds) == 0 {
		return 0
	}
	return len(mp.cellIds[0])
}

func (mp *MultilevelPartition) GetNumberOfLevels() int {
	return len(mp.numCells)
}

func (mp *MultilevelPartition) SetNumberOfCellsInLevel(level int, numCells int) {
	mp.numCells[level] = uint32(numCells)
	mp.pvReady = false
}

func (mp *MultilevelPartition) GetNumberOfCellsInLevel(level int) int {
	return int(mp.numCells[level])
}

func (mp *MultilevelPartition) GetNumCells() []uint32 {
	return mp.numCells
}

func (mp *MultilevelPartition) SetCell(level int, vertexId Index, cellId uint32) {
	mp.cellIds[level][vertexId] = cellId
}

func (mp *MultilevelPartition) GetCell(level int, vertexId Index) uint32 {
	return mp.cellIds[level][vertexId]
}

// GetLevel. cell id of every vertex on the given level, indexed by vertex id.
func (mp *MultilevelPartition) GetLevel(level int) []uint32 {
	return mp.cellIds[level]
}

// MaxCellId. largest cell id actually assigned on the level.
func (mp *MultilevelPartition) MaxCellId(level int) uint32 {
	maxId := uint32(0)
	for _, c := range mp.cellIds[level] {
		if c > maxId {
			maxId = c
		}
	}
	return maxId
}

// LevelBitWidth. ceil(log2(maxCellId+1)), the width of one packed cell id on the level.
func (mp *MultilevelPartition) LevelBitWidth(level int) uint8 {
	return util.BitsFor(mp.MaxCellId(level))
}

func (mp *MultilevelPartition) SetLeafLevel(vertexId Index, level uint8) {
	if mp.leafLevel == nil {
		mp.leafLevel = make([]uint8, mp.GetNumberOfVertices())
		for i := range mp.leafLevel {
			mp.leafLevel[i] = uint8(mp.GetNumberOfLevels() - 1)
		}
	}
	mp.leafLevel[vertexId] = level
}

// GetLeafLevel. level of the leaf cell of the vertex, the deepest level when unknown.
func (mp *MultilevelPartition) GetLeafLevel(vertexId Index) int {
	if mp.leafLevel == nil {
		return mp.GetNumberOfLevels() - 1
	}
	return int(mp.leafLevel[vertexId])
}

// CellSequence. ordered cell ids of the vertex from level 0 down to its leaf level.
func (mp *MultilevelPartition) CellSequence(vertexId Index) []uint32 {
	leaf := mp.GetLeafLevel(vertexId)
	seq := make([]uint32, 0, leaf+1)
	for l := 0; l <= leaf; l++ {
		seq = append(seq, mp.cellIds[l][vertexId])
	}
	return seq
}

// CellSizes. number of vertices in every cell of the level.
func (mp *MultilevelPartition) CellSizes(level int) []int {
	sizes := make([]int, mp.numCells[level])
	for _, c := range mp.cellIds[level] {
		sizes[c]++
	}
	return sizes
}

// Validate. checks that every cell id is below the cell count of its level.
func (mp *MultilevelPartition) Validate() error {
	for l := range mp.cellIds {
		if len(mp.cellIds[l]) != mp.GetNumberOfVertices() {
			return fmt.Errorf("level %d has %d vertices, want %d", l, len(mp.cellIds[l]), mp.GetNumberOfVertices())
		}
		for u, c := range mp.cellIds[l] {
			if c >= mp.numCells[l] {
				return fmt.Errorf("vertex %d has cell %d on level %d, but level only has %d cells", u, c, l, mp.numCells[l])
			}
		}
	}
	return nil
}

// ComputeBitmap. compute the bit offset of every level inside a packed cell number.
// level 0 occupies the rightmost bits. offsets are only kept when all levels fit in 64 bits.
func (mp *MultilevelPartition) ComputeBitmap() {
	offsets := make([]int, len(mp.numCells)+1)
	for i := 0; i < len(mp.numCells); i++ {
		width := 0
		if mp.numCells[i] > 0 {
			width = int(util.BitsFor(mp.numCells[i] - 1))
		}
		offsets[i+1] = offsets[i] + width
	}

	mp.pvBits = offsets[len(offsets)-1]
	mp.pvOffset = nil
	if mp.pvBits <= 64 {
		mp.pvOffset = make([]uint8, len(offsets))
		for i, off := range offsets {
			mp.pvOffset[i] = uint8(off)
		}
	}
	mp.pvReady = true
}

// GetPVOffsets. bit offsets of every level, nil when the levels can not be packed.
func (mp *MultilevelPartition) GetPVOffsets() []uint8 {
	if !mp.pvReady {
		mp.ComputeBitmap()
	}
	return mp.pvOffset
}

// PackedBits. sum of the bit widths of all levels.
func (mp *MultilevelPartition) PackedBits() int {
	if !mp.pvReady {
		mp.ComputeBitmap()
	}
	return mp.pvBits
}

// CanPack. true if all levels fit into one 64 bit cell number.
func (mp *MultilevelPartition) CanPack() bool {
	return mp.GetPVOffsets() != nil
}

// PackedCellNumber. 64 bit cell number of the vertex, the cell id of level l at bits [pvOffset[l], pvOffset[l+1]).
func (mp *MultilevelPartition) PackedCellNumber(vertexId Index) (Pv, bool) {
	if !mp.CanPack() {
		return 0, false
	}
	var cellNumber Pv
	for l := 0; l < len(mp.numCells); l++ {
		cellNumber |= Pv(mp.cellIds[l][vertexId]) << Pv(mp.pvOffset[l])
	}
	return cellNumber, true
}

func (mp *MultilevelPartition) GetLevelInfo() (*LevelInfo, bool) {
	if !mp.CanPack() {
		return nil, false
	}
	return NewLevelInfo(mp.pvOffset), true
}
