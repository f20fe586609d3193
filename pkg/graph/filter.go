package graph

import "fmt"

// FilterCriteria restricts a graph projection. Zero values mean no
// restriction for that dimension.
type FilterCriteria struct {
	EntityTypes       []NodeType
	RelationshipTypes []RelationshipType
	MinDegree         int
	MinWeight         float64
}

// Filter projects a graph onto the nodes and edges matching the criteria.
// The source graph is left untouched and degrees are recomputed on the
// filtered edge set. Degree pruning runs to a fixpoint, so applying the same
// criteria twice returns an identical graph.
func (b *Builder) Filter(g *Graph, criteria FilterCriteria) (*Graph, error) {
	if criteria.MinDegree < 0 {
		return nil, fmt.Errorf("%w: min degree must be >= 0, got %d", ErrInvalidArgument, criteria.MinDegree)
	}
	if criteria.MinWeight < 0 {
		return nil, fmt.Errorf("%w: min weight must be >= 0, got %f", ErrInvalidArgument, criteria.MinWeight)
	}

	var allowedTypes map[NodeType]struct{}
	if len(criteria.EntityTypes) > 0 {
		allowedTypes = make(map[NodeType]struct{}, len(criteria.EntityTypes))
		for _, t := range criteria.EntityTypes {
			allowedTypes[t] = struct{}{}
		}
	}
	var allowedRels map[RelationshipType]struct{}
	if len(criteria.RelationshipTypes) > 0 {
		allowedRels = make(map[RelationshipType]struct{}, len(criteria.RelationshipTypes))
		for _, t := range criteria.RelationshipTypes {
			allowedRels[t] = struct{}{}
		}
	}

	keepNode := make([]bool, len(g.Nodes))
	for i := range g.Nodes {
		if allowedTypes != nil {
			if _, ok := allowedTypes[g.Nodes[i].Type]; !ok {
				continue
			}
		}
		keepNode[i] = true
	}

	keepEdge := make([]bool, len(g.Edges))
	degree := make([]int, len(g.Nodes))
	for ei := range g.Edges {
		e := &g.Edges[ei]
		if e.Weight < criteria.MinWeight {
			continue
		}
		if allowedRels != nil {
			if _, ok := allowedRels[e.RelationshipType]; !ok {
				continue
			}
		}
		si := g.index[e.SourceID]
		ti := g.index[e.TargetID]
		if !keepNode[si] || !keepNode[ti] {
			continue
		}
		keepEdge[ei] = true
		degree[si]++
		degree[ti]++
	}

	// Degree pruning cascades: dropping a node lowers its neighbors'
	// degrees, which may drop them in turn. Iterating to a fixpoint keeps
	// the operation idempotent.
	if criteria.MinDegree > 0 {
		for changed := true; changed; {
			changed = false
			for i := range g.Nodes {
				if keepNode[i] && degree[i] < criteria.MinDegree {
					keepNode[i] = false
					changed = true
				}
			}
			for ei := range g.Edges {
				if !keepEdge[ei] {
					continue
				}
				e := &g.Edges[ei]
				si := g.index[e.SourceID]
				ti := g.index[e.TargetID]
				if !keepNode[si] || !keepNode[ti] {
					keepEdge[ei] = false
					degree[si]--
					degree[ti]--
					changed = true
				}
			}
		}
	}

	var nodes []Node
	for i := range g.Nodes {
		if !keepNode[i] {
			continue
		}
		n := g.Nodes[i]
		n.Degree = degree[i]
		nodes = append(nodes, n)
	}
	var edges []Edge
	for ei := range g.Edges {
		if keepEdge[ei] {
			edges = append(edges, g.Edges[ei])
		}
	}

	return NewGraph(nodes, edges, copyMetadata(g.Metadata)), nil
}

// SubgraphOptions bounds a neighborhood extraction.
type SubgraphOptions struct {
	// Depth is the maximum number of hops from the root. Depth 0 returns
	// only the root.
	Depth int
	// MaxNodes caps the result size. Nodes are admitted in breadth-first
	// discovery order, so the cutoff is deterministic.
	MaxNodes int
	// MinWeight prunes edges below this weight from the traversal and from
	// the result.
	MinWeight float64
}

// Subgraph extracts the neighborhood of rootID by breadth-first expansion.
// The result is the subgraph induced by the visited nodes, restricted to
// edges at or above MinWeight, with degrees recomputed.
func (b *Builder) Subgraph(g *Graph, rootID string, opts SubgraphOptions) (*Graph, error) {
	if opts.Depth < 0 {
		return nil, fmt.Errorf("%w: depth must be >= 0, got %d", ErrInvalidArgument, opts.Depth)
	}
	if opts.MaxNodes <= 0 {
		return nil, fmt.Errorf("%w: max nodes must be > 0, got %d", ErrInvalidArgument, opts.MaxNodes)
	}
	if opts.MinWeight < 0 {
		return nil, fmt.Errorf("%w: min weight must be >= 0, got %f", ErrInvalidArgument, opts.MinWeight)
	}
	rootIdx, ok := g.index[rootID]
	if !ok {
		return nil, fmt.Errorf("%w: node %q", ErrNotFound, rootID)
	}

	adj := g.adjacency()
	visited := make(map[int]struct{}, opts.MaxNodes)
	visited[rootIdx] = struct{}{}
	order := []int{rootIdx}

	frontier := []int{rootIdx}
	for depth := 0; depth < opts.Depth && len(frontier) > 0 && len(order) < opts.MaxNodes; depth++ {
		var next []int
		for _, cur := range frontier {
			for _, he := range adj[cur] {
				if g.Edges[he.edge].Weight < opts.MinWeight {
					continue
				}
				if _, seen := visited[he.to]; seen {
					continue
				}
				visited[he.to] = struct{}{}
				order = append(order, he.to)
				next = append(next, he.to)
				if len(order) >= opts.MaxNodes {
					break
				}
			}
			if len(order) >= opts.MaxNodes {
				break
			}
		}
		frontier = next
	}

	nodes := make([]Node, 0, len(order))
	nodePos := make(map[int]int, len(order))
	for _, idx := range order {
		nodePos[idx] = len(nodes)
		n := g.Nodes[idx]
		n.Degree = 0
		nodes = append(nodes, n)
	}

	var edges []Edge
	for ei := range g.Edges {
		e := &g.Edges[ei]
		if e.Weight < opts.MinWeight {
			continue
		}
		si, sok := nodePos[g.index[e.SourceID]]
		ti, tok := nodePos[g.index[e.TargetID]]
		if !sok || !tok {
			continue
		}
		edges = append(edges, *e)
		nodes[si].Degree++
		nodes[ti].Degree++
	}

	return NewGraph(nodes, edges, copyMetadata(g.Metadata)), nil
}

func copyMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
