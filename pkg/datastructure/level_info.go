package datastructure

type LevelInfo struct {
	offset []uint8 // offset of each level in the bitpacked cell numbers, len = numLevels+1
}

func NewLevelInfo(offset []uint8) *LevelInfo {
	return &LevelInfo{offset: offset}
}

func (li *LevelInfo) GetCellNumberOnLevel(l uint8, cellNumber Pv) Index {
	width := li.offset[l+1] - li.offset[l]
	return Index((cellNumber >> Pv(li.offset[l])) & ^(^Pv(0) << Pv(width)))
}

// GetFirstDifferingLevel. get the coarsest level where two cell numbers differ.
// ok is false if both vertices share the same cell on every level.
func (li *LevelInfo) GetFirstDifferingLevel(c1, c2 Pv) (uint8, bool) {
	diff := c1 ^ c2
	if diff == 0 {
		return 0, false
	}

	for l := 0; l < li.GetLevelCount(); l++ {
		if li.GetCellNumberOnLevel(uint8(l), diff) != 0 {
			return uint8(l), true
		}
	}
	return 0, false
}

// TruncateToLevel. keep only the cell ids of levels 0..level, i.e. the cell of the vertex on that level
// together with all its ancestors.
func (li *LevelInfo) TruncateToLevel(cellNumber Pv, level uint8) Pv {
	return cellNumber & ^(^Pv(0) << Pv(li.offset[level+1]))
}

func (li *LevelInfo) GetLevelCount() int {
	return len(li.offset) - 1
}

func (li *LevelInfo) GetOffsets() []uint8 {
	return li.offset
}
