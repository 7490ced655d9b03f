package partitioner

import (
	"testing"

	da "github.com/lintang-b-s/roadbisect/pkg/datastructure"
	"github.com/stretchr/testify/require"
)

// buildUndirectedGraph. every pair becomes two arcs of weight 1.
func buildUndirectedGraph(t *testing.T, n int, pairs [][2]int, coords []da.Coordinate) *da.Graph {
	t.Helper()
	edges := make([]da.InputEdge, 0, 2*len(pairs))
	for _, p := range pairs {
		edges = append(edges, da.NewInputEdge(da.Index(p[0]), da.Index(p[1]), 1))
		edges = append(edges, da.NewInputEdge(da.Index(p[1]), da.Index(p[0]), 1))
	}
	g, err := da.NewGraph(n, edges, coords)
	require.NoError(t, err)
	return g
}

func clique(nodes ...int) [][2]int {
	pairs := make([][2]int, 0)
	for i := 0; i < len(nodes); i++ {
		for j := i + 1; j < len(nodes); j++ {
			pairs = append(pairs, [2]int{nodes[i], nodes[j]})
		}
	}
	return pairs
}

// twoCliquesWithBridge. cliques {0,1,2,3} and {4,5,6,7} joined by the bridge 3-4.
func twoCliquesWithBridge(t *testing.T) *da.Graph {
	pairs := append(clique(0, 1, 2, 3), clique(4, 5, 6, 7)...)
	pairs = append(pairs, [2]int{3, 4})
	return buildUndirectedGraph(t, 8, pairs, nil)
}

// gridGraph. rows x cols lattice with coordinates, node id = r*cols + c.
func gridGraph(t *testing.T, rows, cols int) *da.Graph {
	pairs := make([][2]int, 0)
	coords := make([]da.Coordinate, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			u := r*cols + c
			coords = append(coords, da.NewCoordinate(-7.80+float64(r)*0.001, 110.36+float64(c)*0.001))
			if c+1 < cols {
				pairs = append(pairs, [2]int{u, u + 1})
			}
			if r+1 < rows {
				pairs = append(pairs, [2]int{u, u + cols})
			}
		}
	}
	return buildUndirectedGraph(t, rows*cols, pairs, coords)
}

func allNodes(g *da.Graph) []da.Index {
	return g.GetVerticeIds()
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Workers = 2
	return opts.withDefaults()
}
