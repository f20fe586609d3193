package graph

import "fmt"

// unionFind is a disjoint-set forest with path compression and union by
// rank.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}

// ConnectedComponents partitions the node ids into connected components.
// Components are ordered by their first-seen member and members keep node
// insertion order.
func (a *Analyzer) ConnectedComponents(g *Graph) [][]string {
	uf := newUnionFind(len(g.Nodes))
	for ei := range g.Edges {
		e := &g.Edges[ei]
		uf.union(g.index[e.SourceID], g.index[e.TargetID])
	}

	compIdx := make(map[int]int)
	var components [][]string
	for i := range g.Nodes {
		root := uf.find(i)
		idx, ok := compIdx[root]
		if !ok {
			idx = len(components)
			compIdx[root] = idx
			components = append(components, nil)
		}
		components[idx] = append(components[idx], g.Nodes[i].ID)
	}
	return components
}

// ClusteringCoefficient returns the local clustering coefficient of one
// node: the fraction of its neighbor pairs that are themselves connected.
// Nodes with fewer than two distinct neighbors score 0.
func (a *Analyzer) ClusteringCoefficient(g *Graph, nodeID string) (float64, error) {
	idx, ok := g.index[nodeID]
	if !ok {
		return 0, fmt.Errorf("%w: node %q", ErrNotFound, nodeID)
	}
	neighborSets := simpleNeighborSets(g)
	return localClustering(neighborSets, idx), nil
}

// AverageClustering returns the mean local clustering coefficient over all
// nodes, or 0 for an empty graph.
func (a *Analyzer) AverageClustering(g *Graph) float64 {
	n := len(g.Nodes)
	if n == 0 {
		return 0
	}
	neighborSets := simpleNeighborSets(g)
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += localClustering(neighborSets, i)
	}
	return sum / float64(n)
}

// simpleNeighborSets deduplicates parallel edges and drops loops, yielding
// the simple-graph neighborhoods triangle counting runs on.
func simpleNeighborSets(g *Graph) []map[int]struct{} {
	sets := make([]map[int]struct{}, len(g.Nodes))
	for i := range sets {
		sets[i] = make(map[int]struct{})
	}
	for ei := range g.Edges {
		e := &g.Edges[ei]
		si := g.index[e.SourceID]
		ti := g.index[e.TargetID]
		if si == ti {
			continue
		}
		sets[si][ti] = struct{}{}
		sets[ti][si] = struct{}{}
	}
	return sets
}

func localClustering(sets []map[int]struct{}, idx int) float64 {
	neighbors := sets[idx]
	k := len(neighbors)
	if k < 2 {
		return 0
	}
	links := 0
	for a := range neighbors {
		for b := range neighbors {
			if a < b {
				if _, ok := sets[a][b]; ok {
					links++
				}
			}
		}
	}
	return float64(2*links) / float64(k*(k-1))
}
