package graph

import "fmt"

// levelGraph is the weighted undirected graph one Louvain level operates on.
// Parallel edges between a pair are pre-summed; loops carry the internal
// weight of an aggregated community.
type levelGraph struct {
	n         int
	neighbors [][]weightedHalf
	loops     []float64
	strength  []float64
	total     float64 // sum of all strengths, i.e. 2m
}

type weightedHalf struct {
	to     int
	weight float64
}

func newLevelGraph(n int) *levelGraph {
	return &levelGraph{
		n:         n,
		neighbors: make([][]weightedHalf, n),
		loops:     make([]float64, n),
		strength:  make([]float64, n),
	}
}

func (lg *levelGraph) addEdge(a, b int, w float64) {
	if a == b {
		lg.loops[a] += w
		lg.strength[a] += 2 * w
		lg.total += 2 * w
		return
	}
	lg.neighbors[a] = append(lg.neighbors[a], weightedHalf{to: b, weight: w})
	lg.neighbors[b] = append(lg.neighbors[b], weightedHalf{to: a, weight: w})
	lg.strength[a] += w
	lg.strength[b] += w
	lg.total += 2 * w
}

// DetectCommunities partitions the graph by Louvain-style modularity
// optimization: local moving until no node improves modularity, then
// aggregation of communities into super-nodes, repeated until stable.
// Resolution scales the expected-edges term; values above 1 favor smaller
// communities. Nodes are always visited in first-seen order so the returned
// partition is deterministic. Communities below minSize are merged into
// their best-connected neighboring community, or broken into singletons
// when they have no neighbor.
func (a *Analyzer) DetectCommunities(g *Graph, minSize int, resolution float64) ([]Community, float64, error) {
	if minSize < 0 {
		return nil, 0, fmt.Errorf("%w: min size must be >= 0, got %d", ErrInvalidArgument, minSize)
	}
	if resolution <= 0 {
		return nil, 0, fmt.Errorf("%w: resolution must be > 0, got %f", ErrInvalidArgument, resolution)
	}
	n := len(g.Nodes)
	if n > a.limits.MaxCommunityNodes {
		return nil, 0, fmt.Errorf("%w: community detection supports up to %d nodes, graph has %d; filter or extract a subgraph first",
			ErrResourceExceeded, a.limits.MaxCommunityNodes, n)
	}
	if minSize < 1 {
		minSize = 1
	}
	if n == 0 {
		return []Community{}, 0, nil
	}

	// Collapse parallel edges into a single weighted adjacency.
	lg := newLevelGraph(n)
	pairWeight := make(map[[2]int]float64)
	var pairOrder [][2]int
	for ei := range g.Edges {
		e := &g.Edges[ei]
		si := g.index[e.SourceID]
		ti := g.index[e.TargetID]
		lo, hi := si, ti
		if hi < lo {
			lo, hi = hi, lo
		}
		key := [2]int{lo, hi}
		if _, ok := pairWeight[key]; !ok {
			pairOrder = append(pairOrder, key)
		}
		pairWeight[key] += positiveWeight(e.Weight)
	}
	for _, key := range pairOrder {
		lg.addEdge(key[0], key[1], pairWeight[key])
	}

	// membership maps each original node to its community at the current
	// level; refined across levels as communities aggregate.
	membership := make([]int, n)
	for i := range membership {
		membership[i] = i
	}

	for {
		assign, moved := localMove(lg, resolution)
		reduced, mapping := aggregate(lg, assign)
		if !moved || reduced.n == lg.n {
			break
		}
		for i := range membership {
			membership[i] = mapping[assign[membership[i]]]
		}
		lg = reduced
	}

	membership = dissolveSmall(g, membership, minSize)
	communities := buildCommunities(g, membership)
	mod := a.Modularity(g, communities, resolution)
	return communities, mod, nil
}

// localMove runs the first Louvain phase on lg: sweep nodes in index order,
// moving each into the neighboring community with the highest modularity
// gain, until a full sweep makes no move. Returns the community assignment
// and whether any node moved at all.
func localMove(lg *levelGraph, resolution float64) ([]int, bool) {
	assign := make([]int, lg.n)
	commTotal := make([]float64, lg.n)
	for i := 0; i < lg.n; i++ {
		assign[i] = i
		commTotal[i] = lg.strength[i]
	}
	if lg.total == 0 {
		return assign, false
	}

	neighWeight := make(map[int]float64)
	movedAny := false
	for improved := true; improved; {
		improved = false
		for i := 0; i < lg.n; i++ {
			cur := assign[i]

			clear(neighWeight)
			for _, wh := range lg.neighbors[i] {
				neighWeight[assign[wh.to]] += wh.weight
			}

			// Evaluate gains with i removed from its community.
			commTotal[cur] -= lg.strength[i]

			bestComm := cur
			bestGain := gain(neighWeight[cur], commTotal[cur], lg.strength[i], lg.total, resolution)
			for _, wh := range lg.neighbors[i] {
				c := assign[wh.to]
				if c == bestComm {
					continue
				}
				gn := gain(neighWeight[c], commTotal[c], lg.strength[i], lg.total, resolution)
				if gn > bestGain {
					bestGain = gn
					bestComm = c
				}
			}

			commTotal[bestComm] += lg.strength[i]
			if bestComm != cur {
				assign[i] = bestComm
				improved = true
				movedAny = true
			}
		}
	}
	return assign, movedAny
}

// gain is the modularity change of placing a node with strength k into a
// community with link weight wIn and total strength sigma, up to factors
// constant across candidate communities.
func gain(wIn, sigma, k, total, resolution float64) float64 {
	return wIn - resolution*sigma*k/total
}

// aggregate collapses each community of assign into a super-node, producing
// the next-level graph. mapping translates community labels to dense
// super-node indices in first-seen node order.
func aggregate(lg *levelGraph, assign []int) (*levelGraph, map[int]int) {
	mapping := make(map[int]int)
	for i := 0; i < lg.n; i++ {
		if _, ok := mapping[assign[i]]; !ok {
			mapping[assign[i]] = len(mapping)
		}
	}

	reduced := newLevelGraph(len(mapping))
	agg := make(map[[2]int]float64)
	var order [][2]int
	for i := 0; i < lg.n; i++ {
		ci := mapping[assign[i]]
		if lg.loops[i] > 0 {
			key := [2]int{ci, ci}
			if _, ok := agg[key]; !ok {
				order = append(order, key)
			}
			agg[key] += lg.loops[i]
		}
		for _, wh := range lg.neighbors[i] {
			if wh.to < i {
				continue // count each undirected edge once
			}
			cj := mapping[assign[wh.to]]
			lo, hi := ci, cj
			if hi < lo {
				lo, hi = hi, lo
			}
			key := [2]int{lo, hi}
			if _, ok := agg[key]; !ok {
				order = append(order, key)
			}
			agg[key] += wh.weight
		}
	}
	for _, key := range order {
		reduced.addEdge(key[0], key[1], agg[key])
	}
	return reduced, mapping
}

// dissolveSmall breaks up communities below minSize. Each undersized
// community is merged as a unit into the neighboring community it shares the
// most edge weight with, sizes re-checked after every merge so chained merges
// can reach minSize. A community with no neighboring community at all falls
// apart into singletons.
func dissolveSmall(g *Graph, membership []int, minSize int) []int {
	if minSize <= 1 {
		return membership
	}
	out := make([]int, len(membership))
	copy(out, membership)

	for {
		size := make(map[int]int)
		var order []int
		for _, c := range out {
			if size[c] == 0 {
				order = append(order, c)
			}
			size[c]++
		}

		link := make(map[[2]int]float64)
		for ei := range g.Edges {
			e := &g.Edges[ei]
			ci := out[g.index[e.SourceID]]
			cj := out[g.index[e.TargetID]]
			if ci == cj {
				continue
			}
			w := positiveWeight(e.Weight)
			link[[2]int{ci, cj}] += w
			link[[2]int{cj, ci}] += w
		}

		merged := false
		for _, c := range order {
			if size[c] >= minSize {
				continue
			}
			best := 0
			bestWeight := 0.0
			for _, d := range order {
				if d == c {
					continue
				}
				if w := link[[2]int{c, d}]; w > bestWeight {
					bestWeight = w
					best = d
				}
			}
			if bestWeight > 0 {
				for i := range out {
					if out[i] == c {
						out[i] = best
					}
				}
				merged = true
				break
			}
		}
		if merged {
			continue
		}

		// Whatever is still undersized has no neighboring community left.
		// Fresh labels are offset past every level label so they cannot
		// collide with an existing community.
		for i := range out {
			if size[out[i]] < minSize {
				out[i] = len(membership) + i
			}
		}
		return out
	}
}

// buildCommunities materializes Community values from a membership vector.
// Communities are numbered by the first-seen order of their members; edge
// counts come from the original graph.
func buildCommunities(g *Graph, membership []int) []Community {
	dense := make(map[int]int)
	var communities []Community
	for i := range g.Nodes {
		c := membership[i]
		idx, ok := dense[c]
		if !ok {
			idx = len(communities)
			dense[c] = idx
			communities = append(communities, Community{ID: fmt.Sprintf("community_%d", idx)})
		}
		communities[idx].EntityIDs = append(communities[idx].EntityIDs, g.Nodes[i].ID)
		communities[idx].Size++
	}

	for ei := range g.Edges {
		e := &g.Edges[ei]
		ci := dense[membership[g.index[e.SourceID]]]
		cj := dense[membership[g.index[e.TargetID]]]
		if ci == cj {
			communities[ci].InternalEdges++
		} else {
			communities[ci].ExternalEdges++
			communities[cj].ExternalEdges++
		}
	}

	for i := range communities {
		s := communities[i].Size
		if s > 1 {
			maxEdges := float64(s*(s-1)) / 2
			communities[i].Density = float64(communities[i].InternalEdges) / maxEdges
		}
	}
	return communities
}

// Modularity measures how much denser the given partition is than a random
// graph with the same degree sequence. The result lies roughly in
// [-0.5, 1.0]; higher is better.
func (a *Analyzer) Modularity(g *Graph, communities []Community, resolution float64) float64 {
	commOf := make(map[string]int, len(g.Nodes))
	for ci := range communities {
		for _, id := range communities[ci].EntityIDs {
			commOf[id] = ci
		}
	}

	internal := make([]float64, len(communities))
	strength := make([]float64, len(communities))
	total := 0.0
	for ei := range g.Edges {
		e := &g.Edges[ei]
		w := positiveWeight(e.Weight)
		ci, iok := commOf[e.SourceID]
		cj, jok := commOf[e.TargetID]
		if !iok || !jok {
			continue
		}
		if ci == cj {
			internal[ci] += w
		}
		strength[ci] += w
		strength[cj] += w
		total += 2 * w
	}
	if total == 0 {
		return 0
	}

	mod := 0.0
	for ci := range communities {
		mod += 2*internal[ci]/total - resolution*(strength[ci]/total)*(strength[ci]/total)
	}
	return mod
}
