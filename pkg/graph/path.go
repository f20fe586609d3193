package graph

import "fmt"

// ShortestPath finds a shortest path between two nodes by unweighted
// breadth-first search over the undirected adjacency view. Ties among
// equal-length paths resolve to the first-discovered path in edge insertion
// order. A path longer than maxDepth hops is reported as not found.
func (a *Analyzer) ShortestPath(g *Graph, sourceID, targetID string, maxDepth int) (*Path, error) {
	if maxDepth < 0 {
		return nil, fmt.Errorf("%w: max depth must be >= 0, got %d", ErrInvalidArgument, maxDepth)
	}
	srcIdx, ok := g.index[sourceID]
	if !ok {
		return nil, fmt.Errorf("%w: node %q", ErrNotFound, sourceID)
	}
	tgtIdx, ok := g.index[targetID]
	if !ok {
		return nil, fmt.Errorf("%w: node %q", ErrNotFound, targetID)
	}

	if srcIdx == tgtIdx {
		return &Path{Path: []string{sourceID}, Length: 0}, nil
	}

	adj := g.adjacency()
	parent := make([]int, len(g.Nodes))
	parentEdge := make([]int, len(g.Nodes))
	for i := range parent {
		parent[i] = -1
	}

	found := false
	frontier := []int{srcIdx}
	parent[srcIdx] = srcIdx
	for depth := 0; depth < maxDepth && len(frontier) > 0 && !found; depth++ {
		var next []int
		for _, cur := range frontier {
			for _, he := range adj[cur] {
				if parent[he.to] != -1 {
					continue
				}
				parent[he.to] = cur
				parentEdge[he.to] = he.edge
				if he.to == tgtIdx {
					found = true
					break
				}
				next = append(next, he.to)
			}
			if found {
				break
			}
		}
		frontier = next
	}
	if !found {
		return nil, fmt.Errorf("%w: no path from %q to %q within %d hops", ErrNotFound, sourceID, targetID, maxDepth)
	}

	var nodeIDs []string
	var pathEdges []Edge
	totalWeight := 0.0
	for cur := tgtIdx; ; cur = parent[cur] {
		nodeIDs = append(nodeIDs, g.Nodes[cur].ID)
		if cur == srcIdx {
			break
		}
		e := g.Edges[parentEdge[cur]]
		pathEdges = append(pathEdges, e)
		totalWeight += e.Weight
	}
	reverseStrings(nodeIDs)
	reverseEdges(pathEdges)

	return &Path{
		Path:        nodeIDs,
		Edges:       pathEdges,
		Length:      len(nodeIDs) - 1,
		TotalWeight: totalWeight,
	}, nil
}

func reverseStrings(s []string) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseEdges(s []Edge) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
