package datastructure

// DisjointSet implements a disjoint-set data structure with path compression
// and union by rank.
type DisjointSet struct {
	parent  []Index
	rank    []uint8 // max rank is ~log2(n), uint8 is enough
	size    []Index
	numSets int
}

// NewDisjointSet creates n singleton sets {0}, {1}, ..., {n-1}.
func NewDisjointSet(n int) *DisjointSet {
	parent := make([]Index, n)
	size := make([]Index, n)
	for i := range parent {
		parent[i] = Index(i)
		size[i] = 1
	}
	return &DisjointSet{
		parent:  parent,
		rank:    make([]uint8, n),
		size:    size,
		numSets: n,
	}
}

// Find returns the representative of the set containing x.
func (ds *DisjointSet) Find(x Index) Index {
	root := x
	for ds.parent[root] != root {
		root = ds.parent[root]
	}
	// path compression: point every node on the path directly to root
	for ds.parent[x] != root {
		next := ds.parent[x]
		ds.parent[x] = root
		x = next
	}
	return root
}

// Union merges the sets containing x and y. Returns false if they were already in the same set.
func (ds *DisjointSet) Union(x, y Index) bool {
	rx := ds.Find(x)
	ry := ds.Find(y)
	if rx == ry {
		return false
	}

	if ds.rank[rx] < ds.rank[ry] {
		rx, ry = ry, rx
	}
	ds.parent[ry] = rx
	ds.size[rx] += ds.size[ry]
	if ds.rank[rx] == ds.rank[ry] {
		ds.rank[rx]++
	}
	ds.numSets--
	return true
}

func (ds *DisjointSet) Connected(x, y Index) bool {
	return ds.Find(x) == ds.Find(y)
}

// Size returns the number of elements in the set containing x.
func (ds *DisjointSet) Size(x Index) int {
	return int(ds.size[ds.Find(x)])
}

func (ds *DisjointSet) NumberOfSets() int {
	return ds.numSets
}

func (ds *DisjointSet) Len() int {
	return len(ds.parent)
}

// Components groups all elements by set. Groups are ordered by their smallest element and
// every group is sorted ascending.
func (ds *DisjointSet) Components() [][]Index {
	groupOf := make(map[Index]int, ds.numSets)
	components := make([][]Index, 0, ds.numSets)
	for x := range ds.parent {
		root := ds.Find(Index(x))
		gid, ok := groupOf[root]
		if !ok {
			gid = len(components)
			groupOf[root] = gid
			components = append(components, make([]Index, 0, ds.size[root]))
		}
		components[gid] = append(components[gid], Index(x))
	}
	return components
}
