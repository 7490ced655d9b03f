package datastructure

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/roadbisect/pkg/util"
)

const (
	MLP_FORMAT_VERSION uint16 = 1
	maxMLPLevels              = 255
	maxMLPVertices            = 1 << 31
)

// mlpHeader is the fixed-size binary header of a multilevel partition file.
type mlpHeader struct {
	NumVertices uint32
	NumLevels   uint32
	Version     uint16
}

/*
Encode. write the multilevel partition in the binary mlp layout (little endian):

	header: numVertices u32, numLevels u32, formatVersion u16
	for each level: maxCellId u32, then numVertices cell ids of ceil(log2(maxCellId+1)) bits each,
	packed LSB-first and padded to a whole byte.
*/
func (mp *MultilevelPartition) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)

	hdr := mlpHeader{
		NumVertices: uint32(mp.GetNumberOfVertices()),
		NumLevels:   uint32(mp.GetNumberOfLevels()),
		Version:     MLP_FORMAT_VERSION,
	}
	if err := binary.Write(bw, binary.LittleEndian, &hdr); err != nil {
		return util.WrapErrorf(err, util.ErrSerialization, "write mlp header")
	}

	for l := 0; l < mp.GetNumberOfLevels(); l++ {
		maxCellId := mp.MaxCellId(l)
		if err := binary.Write(bw, binary.LittleEndian, maxCellId); err != nil {
			return util.WrapErrorf(err, util.ErrSerialization, "write max cell id of level %d", l)
		}
		if _, err := bw.Write(PackBits(mp.cellIds[l], util.BitsFor(maxCellId))); err != nil {
			return util.WrapErrorf(err, util.ErrSerialization, "write cell ids of level %d", l)
		}
	}

	if err := bw.Flush(); err != nil {
		return util.WrapErrorf(err, util.ErrSerialization, "flush mlp")
	}
	return nil
}

// DecodeMultilevelPartition. read a multilevel partition written by Encode.
func DecodeMultilevelPartition(r io.Reader) (*MultilevelPartition, error) {
	br := bufio.NewReader(r)

	var hdr mlpHeader
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, util.WrapErrorf(err, util.ErrSerialization, "read mlp header")
	}
	if hdr.Version != MLP_FORMAT_VERSION {
		return nil, util.WrapErrorf(nil, util.ErrUnsupportedVersion,
			"mlp format version %d, want %d", hdr.Version, MLP_FORMAT_VERSION)
	}
	if hdr.NumLevels > maxMLPLevels {
		return nil, util.WrapErrorf(nil, util.ErrSerialization, "level count %d exceeds limit %d", hdr.NumLevels, maxMLPLevels)
	}
	if hdr.NumVertices > maxMLPVertices {
		return nil, util.WrapErrorf(nil, util.ErrSerialization, "vertex count %d exceeds limit %d", hdr.NumVertices, maxMLPVertices)
	}

	n := int(hdr.NumVertices)
	mp := &MultilevelPartition{
		numCells: make([]uint32, hdr.NumLevels),
		cellIds:  make([][]uint32, hdr.NumLevels),
	}

	for l := 0; l < int(hdr.NumLevels); l++ {
		var maxCellId uint32
		if err := binary.Read(br, binary.LittleEndian, &maxCellId); err != nil {
			return nil, util.WrapErrorf(err, util.ErrSerialization, "read max cell id of level %d", l)
		}
		if maxCellId == math.MaxUint32 {
			return nil, util.WrapErrorf(nil, util.ErrSerialization, "max cell id of level %d overflows the cell count", l)
		}
		width := util.BitsFor(maxCellId)
		data := make([]byte, PackedSize(n, width))
		if _, err := io.ReadFull(br, data); err != nil {
			return nil, util.WrapErrorf(err, util.ErrSerialization, "read cell ids of level %d", l)
		}
		mp.cellIds[l] = UnpackBits(data, n, width)
		mp.numCells[l] = maxCellId + 1
	}

	if err := mp.Validate(); err != nil {
		return nil, util.WrapErrorf(err, util.ErrSerialization, "corrupt mlp")
	}
	return mp, nil
}

/*
WriteMLPFile. write the partition to filename. the file is first written to filename.tmp then renamed,
so readers never observe a partially written file. a ".bz2" suffix compresses the stream with bzip2.
*/
func (mp *MultilevelPartition) WriteMLPFile(filename string) (err error) {
	tmpPath := filename + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return util.WrapErrorf(err, util.ErrSerialization, "create %s", tmpPath)
	}
	defer func() {
		f.Close()
		if err != nil {
			os.Remove(tmpPath)
		}
	}()

	if strings.HasSuffix(filename, ".bz2") {
		bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{Level: bzip2.BestCompression})
		if err != nil {
			return util.WrapErrorf(err, util.ErrSerialization, "create bzip2 writer")
		}
		if err := mp.Encode(bz); err != nil {
			bz.Close()
			return err
		}
		if err := bz.Close(); err != nil {
			return util.WrapErrorf(err, util.ErrSerialization, "close bzip2 writer")
		}
	} else if err := mp.Encode(f); err != nil {
		return err
	}

	if err := f.Close(); err != nil {
		return util.WrapErrorf(err, util.ErrSerialization, "close %s", tmpPath)
	}
	if err := os.Rename(tmpPath, filename); err != nil {
		return util.WrapErrorf(err, util.ErrSerialization, "rename %s", tmpPath)
	}
	return nil
}

func ReadMLPFile(filename string) (*MultilevelPartition, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrSerialization, "open %s", filename)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(filename, ".bz2") {
		bz, err := bzip2.NewReader(f, &bzip2.ReaderConfig{})
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrSerialization, "create bzip2 reader")
		}
		defer bz.Close()
		r = bz
	}
	return DecodeMultilevelPartition(r)
}
