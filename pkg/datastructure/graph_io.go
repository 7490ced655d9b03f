package datastructure

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/roadbisect/pkg/util"
)

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// openReader. open filename, transparently decompressing ".bz2" files.
func openReader(filename string) (io.ReadCloser, func() error, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, nil, err
	}
	if !strings.HasSuffix(filename, ".bz2") {
		return f, f.Close, nil
	}

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return bz, func() error {
		bz.Close()
		return f.Close()
	}, nil
}

/*
WriteGraphFile. write the arcs of the graph as text: header "n m", then m lines "u v w".
if the graph has coordinates and coordFilename is not empty, coordinates are written as header "n", then
n lines "id lat lon". ".bz2" filenames are bzip2 compressed.
*/
func (g *Graph) WriteGraphFile(filename, coordFilename string) error {
	err := writeTextFile(filename, func(w *bufio.Writer) {
		fmt.Fprintf(w, "%d %d\n", g.NumberOfVertices(), g.NumberOfEdges())
		for u := 0; u < g.NumberOfVertices(); u++ {
			g.ForOutEdgesOf(Index(u), func(e *OutEdge) {
				fmt.Fprintf(w, "%d %d %s\n", u, e.GetHead(), strconv.FormatFloat(e.GetWeight(), 'f', -1, 64))
			})
		}
	})
	if err != nil || coordFilename == "" || !g.HasCoordinates() {
		return err
	}

	return writeTextFile(coordFilename, func(w *bufio.Writer) {
		fmt.Fprintf(w, "%d\n", g.NumberOfVertices())
		for u := 0; u < g.NumberOfVertices(); u++ {
			lat, lon := g.GetVertexCoordinates(Index(u))
			fmt.Fprintf(w, "%d %s %s\n", u, strconv.FormatFloat(lat, 'f', -1, 64), strconv.FormatFloat(lon, 'f', -1, 64))
		}
	})
}

func writeTextFile(filename string, write func(w *bufio.Writer)) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	var wc io.WriteCloser = nopWriteCloser{f}
	if strings.HasSuffix(filename, ".bz2") {
		wc, err = bzip2.NewWriter(f, &bzip2.WriterConfig{})
		if err != nil {
			return err
		}
	}

	w := bufio.NewWriter(wc)
	write(w)
	if err := w.Flush(); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return f.Close()
}

func ParseIndex(s string) (Index, error) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if u > math.MaxUint32 {
		return 0, fmt.Errorf("value %s overflows uint32", s)
	}
	return Index(u), nil
}

/*
ReadGraphFile. read a graph written in the text format of WriteGraphFile. coordFilename is optional.
*/
func ReadGraphFile(filename, coordFilename string) (*Graph, error) {
	r, closeFn, err := openReader(filename)
	if err != nil {
		return nil, fmt.Errorf("open graph file: %w", err)
	}
	defer closeFn()

	numVertices, edges, err := ReadEdgeList(r)
	if err != nil {
		return nil, err
	}

	var coords []Coordinate
	if coordFilename != "" {
		cr, closeCoords, err := openReader(coordFilename)
		if err != nil {
			return nil, fmt.Errorf("open coordinate file: %w", err)
		}
		defer closeCoords()

		coords, err = ReadCoordinates(cr)
		if err != nil {
			return nil, err
		}
	}

	return NewGraph(numVertices, edges, coords)
}

// ReadEdgeList. parse header "n m" followed by m lines "u v w". blank lines and lines starting with '#' are skipped.
func ReadEdgeList(r io.Reader) (int, []InputEdge, error) {
	br := bufio.NewReader(r)
	lineNo := 0
	nextLine := func() ([]string, error) {
		for {
			line, err := util.ReadLine(br)
			if err != nil {
				return nil, err
			}
			lineNo++
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			return util.Fields(line), nil
		}
	}

	tokens, err := nextLine()
	if err != nil {
		return 0, nil, util.WrapErrorf(err, util.ErrMalformedGraph, "read header")
	}
	if len(tokens) != 2 {
		return 0, nil, util.WrapErrorf(nil, util.ErrMalformedGraph, "line %d: expected header \"n m\", got %d fields", lineNo, len(tokens))
	}
	numVertices, err := ParseIndex(tokens[0])
	if err != nil {
		return 0, nil, util.WrapErrorf(err, util.ErrMalformedGraph, "line %d: vertex count", lineNo)
	}
	numEdges, err := ParseIndex(tokens[1])
	if err != nil {
		return 0, nil, util.WrapErrorf(err, util.ErrMalformedGraph, "line %d: edge count", lineNo)
	}

	edges := make([]InputEdge, 0, numEdges)
	for i := 0; i < int(numEdges); i++ {
		tokens, err := nextLine()
		if errors.Is(err, io.EOF) {
			return 0, nil, util.WrapErrorf(err, util.ErrMalformedGraph, "expected %d edges, got %d", numEdges, i)
		} else if err != nil {
			return 0, nil, util.WrapErrorf(err, util.ErrMalformedGraph, "read edge %d", i)
		}
		if len(tokens) != 3 {
			return 0, nil, util.WrapErrorf(nil, util.ErrMalformedGraph, "line %d: expected \"u v w\", got %d fields", lineNo, len(tokens))
		}

		from, err := ParseIndex(tokens[0])
		if err != nil {
			return 0, nil, util.WrapErrorf(err, util.ErrMalformedGraph, "line %d: tail", lineNo)
		}
		to, err := ParseIndex(tokens[1])
		if err != nil {
			return 0, nil, util.WrapErrorf(err, util.ErrMalformedGraph, "line %d: head", lineNo)
		}
		weight, err := strconv.ParseFloat(tokens[2], 64)
		if err != nil {
			return 0, nil, util.WrapErrorf(err, util.ErrMalformedGraph, "line %d: weight", lineNo)
		}
		edges = append(edges, NewInputEdge(from, to, weight))
	}

	return int(numVertices), edges, nil
}

// ReadCoordinates. parse header "n" followed by n lines "id lat lon", ids may come in any order.
func ReadCoordinates(r io.Reader) ([]Coordinate, error) {
	br := bufio.NewReader(r)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrMalformedGraph, "read coordinate header")
	}
	n, err := ParseIndex(strings.TrimSpace(line))
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrMalformedGraph, "coordinate count")
	}

	coords := make([]Coordinate, n)
	seen := make([]bool, n)
	for i := 0; i < int(n); i++ {
		line, err := util.ReadLine(br)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrMalformedGraph, "expected %d coordinates, got %d", n, i)
		}
		tokens := util.Fields(line)
		if len(tokens) != 3 {
			return nil, util.WrapErrorf(nil, util.ErrMalformedGraph, "coordinate %d: expected \"id lat lon\", got %d fields", i, len(tokens))
		}
		id, err := ParseIndex(tokens[0])
		if err != nil || id >= n {
			return nil, util.WrapErrorf(err, util.ErrMalformedGraph, "coordinate %d: invalid id %q", i, tokens[0])
		}
		if seen[id] {
			return nil, util.WrapErrorf(nil, util.ErrMalformedGraph, "coordinate of vertex %d given twice", id)
		}
		lat, err := strconv.ParseFloat(tokens[1], 64)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrMalformedGraph, "coordinate %d: lat", i)
		}
		lon, err := strconv.ParseFloat(tokens[2], 64)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrMalformedGraph, "coordinate %d: lon", i)
		}
		seen[id] = true
		coords[id] = NewCoordinate(lat, lon)
	}
	return coords, nil
}
