package partitioner

import (
	"errors"
	"testing"

	da "github.com/lintang-b-s/roadbisect/pkg/datastructure"
	"github.com/lintang-b-s/roadbisect/pkg/util"
	"github.com/stretchr/testify/assert"
)

func TestVerifyBisection(t *testing.T) {
	g := twoCliquesWithBridge(t)
	sg := buildSubgraph(g, newWorkspace(8), allNodes(g))

	testCases := []struct {
		name      string
		bisection *Bisection
		wantErr   bool
	}{
		{
			name: "valid",
			bisection: &Bisection{
				Left: []da.Index{0, 1, 2}, Right: []da.Index{5, 6, 7}, Separator: []da.Index{3, 4},
			},
		},
		{
			name: "valid single node separator",
			bisection: &Bisection{
				Left: []da.Index{0, 1, 2}, Right: []da.Index{4, 5, 6, 7}, Separator: []da.Index{3},
			},
		},
		{
			name: "sides still connected",
			bisection: &Bisection{
				Left: []da.Index{0, 1, 2, 3}, Right: []da.Index{4, 5, 6, 7},
			},
			wantErr: true,
		},
		{
			name: "node in two groups",
			bisection: &Bisection{
				Left: []da.Index{0, 1, 2, 3}, Right: []da.Index{5, 6, 7}, Separator: []da.Index{3, 4},
			},
			wantErr: true,
		},
		{
			name: "missing node",
			bisection: &Bisection{
				Left: []da.Index{0, 1}, Right: []da.Index{5, 6, 7}, Separator: []da.Index{3, 4},
			},
			wantErr: true,
		},
		{
			name: "node outside the cell",
			bisection: &Bisection{
				Left: []da.Index{0, 1, 2}, Right: []da.Index{5, 6, 7, 8}, Separator: []da.Index{3, 4},
			},
			wantErr: true,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyBisection(sg, tt.bisection)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, util.ErrInvalidSeparator), "got %v", err)
		})
	}
}

func TestFallbackBisection(t *testing.T) {
	testCases := []struct {
		name              string
		n                 int
		pairs             [][2]int
		expectedLeft      []da.Index
		expectedRight     []da.Index
		expectedSeparator []da.Index
	}{
		{
			name:              "path",
			n:                 6,
			pairs:             [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}},
			expectedLeft:      []da.Index{0, 1},
			expectedRight:     []da.Index{3, 4, 5},
			expectedSeparator: []da.Index{2},
		},
		{
			name:              "star hub in first half",
			n:                 5,
			pairs:             [][2]int{{0, 1}, {0, 2}, {0, 3}, {0, 4}},
			expectedLeft:      []da.Index{1},
			expectedRight:     []da.Index{2, 3, 4},
			expectedSeparator: []da.Index{0},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			g := buildUndirectedGraph(t, tt.n, tt.pairs, nil)
			sg := buildSubgraph(g, newWorkspace(tt.n), allNodes(g))

			b := fallbackBisection(sg)
			assert.Equal(t, tt.expectedLeft, b.Left)
			assert.Equal(t, tt.expectedRight, b.Right)
			assert.Equal(t, tt.expectedSeparator, b.Separator)
			assert.Equal(t, -1, b.DirectionIndex)
			assert.NoError(t, VerifyBisection(sg, b))
		})
	}
}

func TestResolveUnbalanced(t *testing.T) {
	g := buildUndirectedGraph(t, 6, [][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 4}, {4, 5}}, nil)
	sg := buildSubgraph(g, newWorkspace(6), allNodes(g))

	testCases := []struct {
		name            string
		mostBalanced    *Bisection
		expectedOutcome cutOutcome
		expectedLeft    []da.Index
	}{
		{
			name:            "both sides non empty",
			mostBalanced:    &Bisection{Left: []da.Index{0}, Right: []da.Index{3, 4, 5}, Separator: []da.Index{1, 2}},
			expectedOutcome: cutUnbalanced,
			expectedLeft:    []da.Index{0},
		},
		{
			name:            "empty left side",
			mostBalanced:    &Bisection{Right: []da.Index{2, 3, 4, 5}, Separator: []da.Index{0, 1}},
			expectedOutcome: cutFallback,
			expectedLeft:    []da.Index{0, 1},
		},
		{
			name:            "empty right side",
			mostBalanced:    &Bisection{Left: []da.Index{0, 1, 2, 3}, Separator: []da.Index{4, 5}},
			expectedOutcome: cutFallback,
			expectedLeft:    []da.Index{0, 1},
		},
		{
			name:            "no attempt",
			mostBalanced:    nil,
			expectedOutcome: cutFallback,
			expectedLeft:    []da.Index{0, 1},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			b, outcome := resolveUnbalanced(sg, tt.mostBalanced)
			assert.Equal(t, tt.expectedOutcome, outcome)
			assert.Equal(t, tt.expectedLeft, b.Left)
			assert.NoError(t, VerifyBisection(sg, b))
		})
	}
}

func TestSubgraphDropsOutsideArcs(t *testing.T) {
	g := twoCliquesWithBridge(t)
	ws := newWorkspace(8)
	sg := buildSubgraph(g, ws, []da.Index{2, 3, 4, 5})

	// 2-3, 3-4, 4-5 survive, parallel arcs collapse
	assert.Equal(t, 3, sg.numberOfAdjacencies())
	assert.Equal(t, []da.Index{1}, sg.neighbors(0))
	assert.Equal(t, []da.Index{0, 2}, sg.neighbors(1))
	assert.Equal(t, [][]da.Index{{2, 3, 4, 5}}, sg.components())

	for _, id := range ws.localId {
		assert.Equal(t, int32(-1), id, "workspace is reset")
	}

	split := buildSubgraph(g, ws, []da.Index{0, 1, 6, 7})
	assert.Equal(t, [][]da.Index{{0, 1}, {6, 7}}, split.components())
}
