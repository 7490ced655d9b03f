package partitioner

import (
	"math"

	da "github.com/lintang-b-s/roadbisect/pkg/datastructure"
	"github.com/lintang-b-s/roadbisect/pkg/geo"
)

/*
computePlanarCoordinates. planar position of every node used by the inertial flow projections.
graphs with coordinates are projected with mercator. graphs without coordinates get pseudo coordinates from two bfs
sweeps per connected component: x = hop distance from the smallest node id of the component,
y = hop distance from the farthest node of that first sweep (smallest id on ties).
*/
func computePlanarCoordinates(graph *da.Graph) []point {
	n := graph.NumberOfVertices()
	coords := make([]point, n)

	if graph.HasCoordinates() {
		proj := geo.NewPlanarProjector()
		for u := 0; u < n; u++ {
			lat, lon := graph.GetVertexCoordinates(da.Index(u))
			x, y := proj.Project(lat, lon)
			coords[u] = point{x: x, y: y}
		}
		return coords
	}

	ds := da.NewDisjointSet(n)
	for u := 0; u < n; u++ {
		graph.ForOutEdgesOf(da.Index(u), func(e *da.OutEdge) {
			ds.Union(da.Index(u), e.GetHead())
		})
	}

	dist := make([]int32, n)
	for i := range dist {
		dist[i] = INVALID_LEVEL
	}
	queue := make([]da.Index, 0, n)

	for _, comp := range ds.Components() {
		farthest := bfsHops(graph, comp[0], dist, queue)
		for _, u := range comp {
			coords[u].x = float64(dist[u])
			dist[u] = INVALID_LEVEL
		}

		bfsHops(graph, farthest, dist, queue)
		for _, u := range comp {
			coords[u].y = float64(dist[u])
			dist[u] = INVALID_LEVEL
		}
	}
	return coords
}

// bfsHops. hop distances from source over the undirected neighborhood, returns the farthest node.
func bfsHops(graph *da.Graph, source da.Index, dist []int32, queue []da.Index) da.Index {
	queue = queue[:0]
	queue = append(queue, source)
	dist[source] = 0
	farthest := source

	for head := 0; head < len(queue); head++ {
		u := queue[head]
		if dist[u] > dist[farthest] || (dist[u] == dist[farthest] && u < farthest) {
			farthest = u
		}
		graph.ForNeighborsOf(u, func(v da.Index, _ float64) {
			if dist[v] == INVALID_LEVEL {
				dist[v] = dist[u] + 1
				queue = append(queue, v)
			}
		})
	}
	return farthest
}

/*
principalAxis. direction of largest variance of the node positions, the eigenvector of the largest eigenvalue
of the 2x2 covariance matrix. sign is fixed so that the X component is non negative.
*/
func principalAxis(sg *subgraph, coords []point) Direction {
	n := float64(sg.numberOfNodes())
	var meanX, meanY float64
	for _, u := range sg.nodes {
		meanX += coords[u].x
		meanY += coords[u].y
	}
	meanX /= n
	meanY /= n

	var sxx, syy, sxy float64
	for _, u := range sg.nodes {
		dx := coords[u].x - meanX
		dy := coords[u].y - meanY
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}

	theta := 0.5 * math.Atan2(2*sxy, sxx-syy)
	dir := NewDirection(math.Cos(theta), math.Sin(theta))
	if dir.X < 0 {
		dir = Direction{X: -dir.X, Y: -dir.Y}
	}
	return dir
}
