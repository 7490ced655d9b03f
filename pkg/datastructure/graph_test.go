package datastructure

import (
	"errors"
	"sync"
	"testing"

	"github.com/lintang-b-s/roadbisect/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGraphMalformed(t *testing.T) {
	testCases := []struct {
		name        string
		numVertices int
		edges       []InputEdge
		coords      []Coordinate
	}{
		{name: "zero vertices", numVertices: 0},
		{name: "head out of range", numVertices: 3, edges: []InputEdge{NewInputEdge(0, 3, 1)}},
		{name: "tail out of range", numVertices: 3, edges: []InputEdge{NewInputEdge(5, 1, 1)}},
		{name: "negative weight", numVertices: 2, edges: []InputEdge{NewInputEdge(0, 1, -1)}},
		{
			name:        "coordinate count mismatch",
			numVertices: 2,
			edges:       []InputEdge{NewInputEdge(0, 1, 1)},
			coords:      []Coordinate{NewCoordinate(0, 0)},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGraph(tt.numVertices, tt.edges, tt.coords)
			assert.Nil(t, g)
			require.Error(t, err)
			assert.True(t, errors.Is(err, util.ErrMalformedGraph))
		})
	}
}

func TestNewGraphAdjacency(t *testing.T) {
	edges := []InputEdge{
		NewInputEdge(0, 1, 1),
		NewInputEdge(1, 0, 1),
		NewInputEdge(1, 2, 2.5),
		NewInputEdge(0, 2, 4),
		NewInputEdge(2, 2, 9), // self loop dropped
		NewInputEdge(3, 0, 1),
	}
	coords := []Coordinate{
		NewCoordinate(-7.1, 110.1),
		NewCoordinate(-7.2, 110.2),
		NewCoordinate(-7.3, 110.3),
		NewCoordinate(-7.4, 110.0),
	}
	g, err := NewGraph(4, edges, coords)
	require.NoError(t, err)

	assert.Equal(t, 4, g.NumberOfVertices())
	assert.Equal(t, 5, g.NumberOfEdges())
	assert.True(t, g.HasCoordinates())

	heads := []Index{}
	g.ForOutEdgesOf(0, func(e *OutEdge) {
		heads = append(heads, e.GetHead())
	})
	assert.Equal(t, []Index{1, 2}, heads, "input order is kept inside adjacency list")

	tails := []Index{}
	g.ForInEdgesOf(0, func(e *InEdge) {
		tails = append(tails, e.GetTail())
	})
	assert.Equal(t, []Index{1, 3}, tails)

	assert.Equal(t, Index(0), g.GetOutDegree(2))
	assert.Equal(t, Index(2), g.GetInDegree(2))

	neighbors := []Index{}
	g.ForNeighborsOf(3, func(v Index, _ float64) {
		neighbors = append(neighbors, v)
	})
	assert.Equal(t, []Index{0}, neighbors)

	e, ok := g.FindOutEdge(1, 2)
	require.True(t, ok)
	assert.Equal(t, 2.5, g.GetOutEdge(e).GetWeight())
	_, ok = g.FindOutEdge(2, 1)
	assert.False(t, ok)

	lat, lon := g.GetVertexCoordinates(3)
	assert.Equal(t, -7.4, lat)
	assert.Equal(t, 110.0, lon)
	assert.True(t, g.GetBoundingBox().Contains(-7.25, 110.15))
	assert.Equal(t, []Index{0, 1, 2, 3}, g.GetVerticeIds())
}

func TestGraphCellAssignmentConcurrent(t *testing.T) {
	n := 1024
	g, err := NewGraph(n, nil, nil)
	require.NoError(t, err)
	assert.False(t, g.HasCoordinates())
	assert.Equal(t, INVALID_CELL, g.GetCell(10))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for u := w; u < n; u += 4 {
				g.SetCell(Index(u), uint32(w))
			}
		}(w)
	}
	wg.Wait()

	for u := 0; u < n; u++ {
		assert.Equal(t, uint32(u%4), g.GetCell(Index(u)))
	}
}
