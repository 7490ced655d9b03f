package datastructure

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/lintang-b-s/roadbisect/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpackBits(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, width := range []uint8{0, 1, 3, 7, 8, 13, 17, 31, 32} {
		n := 101
		values := make([]uint32, n)
		if width > 0 {
			for i := range values {
				values[i] = uint32(rng.Uint64() & (uint64(1)<<width - 1))
			}
		}
		packed := PackBits(values, width)
		assert.Len(t, packed, PackedSize(n, width))
		assert.Equal(t, values, UnpackBits(packed, n, width), "width %d", width)
	}
}

func TestPackBitsLayout(t *testing.T) {
	// 3 bit values 5 (101), 3 (011), 7 (111) packed LSB-first: bits 101 011 111 -> 0b11011101, 0b1
	packed := PackBits([]uint32{5, 3, 7}, 3)
	assert.Equal(t, []byte{0xDD, 0x01}, packed)
}

func buildTestPartition() *MultilevelPartition {
	// 6 vertices, 3 levels
	mp := NewMultilevelPartition(6, 3)
	cells := [][]uint32{
		{0, 0, 0, 0, 1, 1},
		{0, 0, 1, 2, 3, 3},
		{0, 1, 2, 3, 4, 4},
	}
	for l, level := range cells {
		for u, c := range level {
			mp.SetCell(l, Index(u), c)
		}
		mp.SetNumberOfCellsInLevel(l, int(mp.MaxCellId(l))+1)
	}
	return mp
}

func TestMultilevelPartitionAccessors(t *testing.T) {
	mp := buildTestPartition()
	require.NoError(t, mp.Validate())

	assert.Equal(t, 6, mp.GetNumberOfVertices())
	assert.Equal(t, 3, mp.GetNumberOfLevels())
	assert.Equal(t, uint8(1), mp.LevelBitWidth(0))
	assert.Equal(t, uint8(2), mp.LevelBitWidth(1))
	assert.Equal(t, uint8(3), mp.LevelBitWidth(2))
	assert.Equal(t, []int{1, 1, 1, 1, 2}, mp.CellSizes(2))

	assert.Equal(t, []uint32{0, 1, 2}, mp.CellSequence(2))
	mp.SetLeafLevel(4, 1)
	assert.Equal(t, []uint32{1, 3}, mp.CellSequence(4))
	assert.Equal(t, 2, mp.GetLeafLevel(0))

	mp.SetCell(0, 5, 9)
	assert.Error(t, mp.Validate())
}

func TestPackedCellNumber(t *testing.T) {
	mp := buildTestPartition()
	assert.Equal(t, []uint8{0, 1, 3, 6}, mp.GetPVOffsets())
	require.True(t, mp.CanPack())

	li, ok := mp.GetLevelInfo()
	require.True(t, ok)
	assert.Equal(t, 3, li.GetLevelCount())

	for u := Index(0); u < 6; u++ {
		pv, ok := mp.PackedCellNumber(u)
		require.True(t, ok)
		for l := 0; l < 3; l++ {
			assert.Equal(t, Index(mp.GetCell(l, u)), li.GetCellNumberOnLevel(uint8(l), pv))
		}
	}

	pv0, _ := mp.PackedCellNumber(0)
	pv1, _ := mp.PackedCellNumber(1)
	pv3, _ := mp.PackedCellNumber(3)
	pv4, _ := mp.PackedCellNumber(4)
	pv5, _ := mp.PackedCellNumber(5)

	level, ok := li.GetFirstDifferingLevel(pv0, pv1)
	require.True(t, ok)
	assert.Equal(t, uint8(2), level)

	level, ok = li.GetFirstDifferingLevel(pv0, pv3)
	require.True(t, ok)
	assert.Equal(t, uint8(1), level)

	level, ok = li.GetFirstDifferingLevel(pv0, pv4)
	require.True(t, ok)
	assert.Equal(t, uint8(0), level)

	_, ok = li.GetFirstDifferingLevel(pv4, pv5)
	assert.False(t, ok)

	assert.Equal(t, li.TruncateToLevel(pv0, 1), li.TruncateToLevel(pv1, 1))
	assert.NotEqual(t, li.TruncateToLevel(pv0, 2), li.TruncateToLevel(pv1, 2))
}

func TestPackedCellNumberWidthLimit(t *testing.T) {
	testCases := []struct {
		name      string
		numLevels int
		numCells  int
		wantBits  int
		canPack   bool
	}{
		{name: "exactly 64 bits", numLevels: 4, numCells: 1 << 16, wantBits: 64, canPack: true},
		{name: "65 bits", numLevels: 5, numCells: 1 << 13, wantBits: 65, canPack: false},
		{name: "offsets past 255", numLevels: 20, numCells: 1 << 14, wantBits: 280, canPack: false},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			mp := NewMultilevelPartition(2, tt.numLevels)
			for l := 0; l < tt.numLevels; l++ {
				mp.SetCell(l, 0, uint32(l+1))
				mp.SetCell(l, 1, uint32(tt.numCells-1))
				mp.SetNumberOfCellsInLevel(l, tt.numCells)
			}
			require.NoError(t, mp.Validate())

			assert.Equal(t, tt.wantBits, mp.PackedBits())
			assert.Equal(t, tt.canPack, mp.CanPack())

			pv, ok := mp.PackedCellNumber(0)
			assert.Equal(t, tt.canPack, ok)
			li, ok := mp.GetLevelInfo()
			require.Equal(t, tt.canPack, ok)
			if !tt.canPack {
				assert.Nil(t, li)
				assert.Nil(t, mp.GetPVOffsets())
				return
			}

			for l := 0; l < tt.numLevels; l++ {
				assert.Equal(t, Index(l+1), li.GetCellNumberOnLevel(uint8(l), pv))
			}
			pv1, _ := mp.PackedCellNumber(1)
			level, differ := li.GetFirstDifferingLevel(pv, pv1)
			require.True(t, differ)
			assert.Equal(t, uint8(0), level)
		})
	}
}

func TestComputeBitmapAfterCellCountChange(t *testing.T) {
	mp := buildTestPartition()
	require.True(t, mp.CanPack())

	mp.SetNumberOfCellsInLevel(0, 1<<30)
	mp.SetNumberOfCellsInLevel(1, 1<<30)
	mp.SetNumberOfCellsInLevel(2, 1<<30)
	assert.Equal(t, 90, mp.PackedBits())
	assert.False(t, mp.CanPack())
}

func TestMultilevelPartitionEncodeLayout(t *testing.T) {
	mp := buildTestPartition()
	var buf bytes.Buffer
	require.NoError(t, mp.Encode(&buf))

	data := buf.Bytes()
	// header 10 bytes, level0: 4 + 1, level1: 4 + 2, level2: 4 + 3
	require.Len(t, data, 10+5+6+7)
	assert.Equal(t, uint32(6), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, MLP_FORMAT_VERSION, binary.LittleEndian.Uint16(data[8:10]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(data[10:14]))
	assert.Equal(t, byte(0b110000), data[14])
}

func TestMultilevelPartitionRoundTrip(t *testing.T) {
	testCases := []struct {
		name     string
		filename string
	}{
		{name: "plain", filename: "hierarchy.mlp"},
		{name: "bzip2", filename: "hierarchy.mlp.bz2"},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			mp := buildTestPartition()
			path := filepath.Join(t.TempDir(), tt.filename)
			require.NoError(t, mp.WriteMLPFile(path))

			_, err := os.Stat(path + ".tmp")
			assert.True(t, os.IsNotExist(err), "temp file is renamed")

			loaded, err := ReadMLPFile(path)
			require.NoError(t, err)
			assert.Equal(t, mp.GetNumCells(), loaded.GetNumCells())
			for l := 0; l < mp.GetNumberOfLevels(); l++ {
				assert.Equal(t, mp.GetLevel(l), loaded.GetLevel(l))
			}
		})
	}
}

func TestDecodeMultilevelPartitionErrors(t *testing.T) {
	mp := buildTestPartition()
	var buf bytes.Buffer
	require.NoError(t, mp.Encode(&buf))
	valid := buf.Bytes()

	wrongVersion := append([]byte(nil), valid...)
	binary.LittleEndian.PutUint16(wrongVersion[8:10], 42)

	// 1 vertex, 1 level, max cell id 2 (2 bits) but the packed id is 3
	cellAboveMax := []byte{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 2, 0, 0, 0, 0x03}
	maxCellIdOverflow := []byte{1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0xFF, 0xFF, 0xFF, 0xFF, 0, 0, 0, 0}

	testCases := []struct {
		name string
		data []byte
		code error
	}{
		{name: "empty", data: nil, code: util.ErrSerialization},
		{name: "cell id above max cell id", data: cellAboveMax, code: util.ErrSerialization},
		{name: "max cell id overflow", data: maxCellIdOverflow, code: util.ErrSerialization},
		{name: "truncated header", data: valid[:6], code: util.ErrSerialization},
		{name: "truncated level", data: valid[:len(valid)-2], code: util.ErrSerialization},
		{name: "version mismatch", data: wrongVersion, code: util.ErrUnsupportedVersion},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMultilevelPartition(bytes.NewReader(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestReadMLPFileMissing(t *testing.T) {
	_, err := ReadMLPFile(filepath.Join(t.TempDir(), "missing.mlp"))
	assert.True(t, errors.Is(err, util.ErrSerialization))
}
