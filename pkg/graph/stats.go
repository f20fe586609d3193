package graph

// Statistics aggregates structural measures over the whole graph. For
// graphs at or below the sample threshold, diameter and average path length
// are exact; above it, they come from breadth-first searches out of a
// deterministic sample of source nodes to keep cost sub-quadratic.
func (a *Analyzer) Statistics(g *Graph) *Statistics {
	n := len(g.Nodes)
	stats := &Statistics{
		NodeCount:          n,
		EdgeCount:          len(g.Edges),
		TypeDistribution:   make(map[NodeType]int),
		RelationshipCounts: make(map[RelationshipType]int),
	}
	for i := range g.Nodes {
		stats.TypeDistribution[g.Nodes[i].Type]++
	}
	for i := range g.Edges {
		stats.RelationshipCounts[g.Edges[i].RelationshipType]++
	}
	if n == 0 {
		return stats
	}

	if n > 1 {
		maxEdges := float64(n*(n-1)) / 2
		stats.Density = float64(len(g.Edges)) / maxEdges
	}
	degreeSum := 0
	for i := range g.Nodes {
		degreeSum += g.Nodes[i].Degree
	}
	stats.AvgDegree = float64(degreeSum) / float64(n)
	stats.AvgClustering = a.AverageClustering(g)
	stats.ConnectedComponents = len(a.ConnectedComponents(g))

	sources := make([]int, 0, a.limits.SampleSize)
	if n > a.limits.SampleThreshold {
		stats.Sampled = true
		// Deterministic stride sample so repeated calls agree.
		stride := n / a.limits.SampleSize
		if stride < 1 {
			stride = 1
		}
		for i := 0; i < n && len(sources) < a.limits.SampleSize; i += stride {
			sources = append(sources, i)
		}
	} else {
		for i := 0; i < n; i++ {
			sources = append(sources, i)
		}
	}

	adj := g.adjacency()
	dist := make([]int, n)
	queue := make([]int, 0, n)
	diameter := 0
	pathSum := 0
	pathCount := 0
	for _, s := range sources {
		for i := range dist {
			dist[i] = -1
		}
		dist[s] = 0
		queue = append(queue[:0], s)
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for _, he := range adj[v] {
				if dist[he.to] < 0 {
					dist[he.to] = dist[v] + 1
					queue = append(queue, he.to)
				}
			}
		}
		for i := range dist {
			if i == s || dist[i] < 0 {
				continue
			}
			if dist[i] > diameter {
				diameter = dist[i]
			}
			pathSum += dist[i]
			pathCount++
		}
	}
	stats.Diameter = diameter
	if pathCount > 0 {
		stats.AvgPathLength = float64(pathSum) / float64(pathCount)
	}
	return stats
}
