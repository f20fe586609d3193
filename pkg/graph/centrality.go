package graph

import (
	"fmt"
	"math"
	"sort"
)

// Limits guards the super-linear algorithms against unbounded latency on
// large graphs. A request above a ceiling fails with ErrResourceExceeded.
type Limits struct {
	MaxBetweennessNodes int
	MaxCommunityNodes   int
	// SampleThreshold is the node count above which Statistics samples
	// path measures instead of computing them exactly.
	SampleThreshold int
	SampleSize      int
}

func DefaultLimits() Limits {
	return Limits{
		MaxBetweennessNodes: 500,
		MaxCommunityNodes:   5000,
		SampleThreshold:     1000,
		SampleSize:          100,
	}
}

// Analyzer runs analytic queries over immutable graphs. All methods take the
// graph as input and never mutate it, so one Analyzer is safe for concurrent
// use across any number of graphs.
type Analyzer struct {
	limits Limits
}

type NewAnalyzerParams struct {
	Limits Limits
}

func NewAnalyzer(params NewAnalyzerParams) *Analyzer {
	limits := params.Limits
	def := DefaultLimits()
	if limits.MaxBetweennessNodes <= 0 {
		limits.MaxBetweennessNodes = def.MaxBetweennessNodes
	}
	if limits.MaxCommunityNodes <= 0 {
		limits.MaxCommunityNodes = def.MaxCommunityNodes
	}
	if limits.SampleThreshold <= 0 {
		limits.SampleThreshold = def.SampleThreshold
	}
	if limits.SampleSize <= 0 {
		limits.SampleSize = def.SampleSize
	}
	return &Analyzer{limits: limits}
}

// DegreeCentrality scores each node by its degree normalized by the maximum
// possible degree, node_count - 1. Scores lie in [0, 1].
func (a *Analyzer) DegreeCentrality(g *Graph) []CentralityScore {
	n := len(g.Nodes)
	scores := make([]float64, n)
	if n > 1 {
		for i := range g.Nodes {
			scores[i] = float64(g.Nodes[i].Degree) / float64(n-1)
		}
	}
	return rankScores(g, scores)
}

// BetweennessCentrality scores each node by the share of shortest paths
// passing through it, using Brandes' accumulation over every source node.
// Credit for a pair splits equally across its shortest paths. Scores are
// normalized by (n-1)(n-2), the number of ordered pairs excluding the node.
func (a *Analyzer) BetweennessCentrality(g *Graph) ([]CentralityScore, error) {
	n := len(g.Nodes)
	if n > a.limits.MaxBetweennessNodes {
		return nil, fmt.Errorf("%w: betweenness supports up to %d nodes, graph has %d; filter or extract a subgraph first",
			ErrResourceExceeded, a.limits.MaxBetweennessNodes, n)
	}
	if n < 3 {
		return rankScores(g, make([]float64, n)), nil
	}

	adj := g.adjacency()
	raw := make([]float64, n)

	dist := make([]int, n)
	sigma := make([]float64, n)
	delta := make([]float64, n)
	preds := make([][]int, n)
	stack := make([]int, 0, n)
	queue := make([]int, 0, n)

	for s := 0; s < n; s++ {
		for i := 0; i < n; i++ {
			dist[i] = -1
			sigma[i] = 0
			delta[i] = 0
			preds[i] = preds[i][:0]
		}
		stack = stack[:0]
		queue = append(queue[:0], s)
		dist[s] = 0
		sigma[s] = 1

		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			stack = append(stack, v)
			for _, he := range adj[v] {
				w := he.to
				if dist[w] < 0 {
					dist[w] = dist[v] + 1
					queue = append(queue, w)
				}
				if dist[w] == dist[v]+1 {
					sigma[w] += sigma[v]
					preds[w] = append(preds[w], v)
				}
			}
		}

		for i := len(stack) - 1; i >= 0; i-- {
			w := stack[i]
			for _, v := range preds[w] {
				delta[v] += sigma[v] / sigma[w] * (1 + delta[w])
			}
			if w != s {
				raw[w] += delta[w]
			}
		}
	}

	norm := float64(n-1) * float64(n-2)
	scores := make([]float64, n)
	for i := range raw {
		scores[i] = raw[i] / norm
	}
	return rankScores(g, scores), nil
}

const (
	pageRankDamping       = 0.85
	pageRankMaxIterations = 100
	pageRankTolerance     = 1e-6
)

// PageRank runs damped power iteration over the undirected adjacency view.
// Each node splits its mass across its incident edges in proportion to edge
// weight; isolated nodes redistribute their mass uniformly. Final scores are
// normalized to sum to 1. Non-convergence within the iteration budget is not
// an error; the last iterate is returned with Converged false.
func (a *Analyzer) PageRank(g *Graph) *PageRankResult {
	n := len(g.Nodes)
	if n == 0 {
		return &PageRankResult{Scores: []CentralityScore{}, Converged: true}
	}

	adj := g.adjacency()
	totalWeight := make([]float64, n)
	for i := range adj {
		for _, he := range adj[i] {
			totalWeight[i] += positiveWeight(g.Edges[he.edge].Weight)
		}
	}

	scores := make([]float64, n)
	next := make([]float64, n)
	for i := range scores {
		scores[i] = 1 / float64(n)
	}

	iterations := 0
	converged := false
	for iter := 0; iter < pageRankMaxIterations; iter++ {
		iterations = iter + 1

		danglingMass := 0.0
		for i := range scores {
			if totalWeight[i] == 0 {
				danglingMass += scores[i]
			}
		}
		base := (1-pageRankDamping)/float64(n) + pageRankDamping*danglingMass/float64(n)
		for i := range next {
			next[i] = base
		}
		for i := range adj {
			if totalWeight[i] == 0 {
				continue
			}
			outgoing := pageRankDamping * scores[i] / totalWeight[i]
			for _, he := range adj[i] {
				next[he.to] += outgoing * positiveWeight(g.Edges[he.edge].Weight)
			}
		}

		diff := 0.0
		for i := range scores {
			diff += math.Abs(next[i] - scores[i])
		}
		scores, next = next, scores
		if diff < pageRankTolerance {
			converged = true
			break
		}
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	if sum > 0 {
		for i := range scores {
			scores[i] /= sum
		}
	}

	return &PageRankResult{
		Scores:     rankScores(g, scores),
		Converged:  converged,
		Iterations: iterations,
	}
}

// rankScores pairs scores with their nodes and assigns 1-based ranks by
// descending score. Equal scores keep first-seen node order.
func rankScores(g *Graph, scores []float64) []CentralityScore {
	out := make([]CentralityScore, len(scores))
	for i := range scores {
		out[i] = CentralityScore{
			EntityID: g.Nodes[i].ID,
			Label:    g.Nodes[i].Label,
			Score:    scores[i],
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
