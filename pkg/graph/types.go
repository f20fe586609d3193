// Package graph implements the entity-relationship graph engine. A Graph is
// built once from co-occurrence facts, published immutably, and queried by
// pure analysis functions for paths, centrality, communities, and aggregate
// statistics.
package graph

// NodeType categorizes a node. Unrecognized values map to NodeTypeOther so
// downstream consumers never see an open-ended tag set.
type NodeType string

const (
	NodeTypePerson       NodeType = "person"
	NodeTypeOrganization NodeType = "organization"
	NodeTypeLocation     NodeType = "location"
	NodeTypeEvent        NodeType = "event"
	NodeTypeConcept      NodeType = "concept"
	NodeTypeDocument     NodeType = "document"
	NodeTypeOther        NodeType = "other"
)

// NormalizeNodeType maps a raw type tag onto the closed NodeType set.
func NormalizeNodeType(raw string) NodeType {
	switch NodeType(raw) {
	case NodeTypePerson, NodeTypeOrganization, NodeTypeLocation,
		NodeTypeEvent, NodeTypeConcept, NodeTypeDocument:
		return NodeType(raw)
	default:
		return NodeTypeOther
	}
}

// RelationshipType categorizes an edge. Unrecognized values map to
// RelationshipOther.
type RelationshipType string

const (
	RelationshipRelatedTo RelationshipType = "related_to"
	RelationshipKnows     RelationshipType = "knows"
	RelationshipWorksWith RelationshipType = "works_with"
	RelationshipPartOf    RelationshipType = "part_of"
	RelationshipLocatedIn RelationshipType = "located_in"
	RelationshipMentions  RelationshipType = "mentions"
	RelationshipOther     RelationshipType = "other"
)

// NormalizeRelationshipType maps a raw relationship tag onto the closed
// RelationshipType set.
func NormalizeRelationshipType(raw string) RelationshipType {
	switch RelationshipType(raw) {
	case RelationshipRelatedTo, RelationshipKnows, RelationshipWorksWith,
		RelationshipPartOf, RelationshipLocatedIn, RelationshipMentions:
		return RelationshipType(raw)
	default:
		return RelationshipOther
	}
}

// Node represents an entity in the graph. Degree counts incident edges and
// is maintained by the builder; analysis functions treat it as read-only.
type Node struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Type       NodeType       `json:"type"`
	Degree     int            `json:"degree"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Edge represents an aggregated co-occurrence relationship between two
// entities. Parallel edges of different relationship types between the same
// pair are allowed; exact duplicates are merged by the builder.
type Edge struct {
	SourceID         string           `json:"source_id"`
	TargetID         string           `json:"target_id"`
	RelationshipType RelationshipType `json:"relationship_type"`
	Weight           float64          `json:"weight"`
	DocumentIDs      []string         `json:"document_ids"`
	Metadata         map[string]any   `json:"metadata,omitempty"`
}

// Graph is an immutable snapshot of entities and relationships for one
// project. Once published it is never mutated; rebuilds replace it wholesale.
type Graph struct {
	Nodes    []Node         `json:"nodes"`
	Edges    []Edge         `json:"edges"`
	Metadata map[string]any `json:"metadata,omitempty"`

	index map[string]int
}

// NewGraph assembles a Graph from finished node and edge sets. Callers are
// expected to supply edges whose endpoints all appear in nodes; the builder
// and the derivation functions in this package always do.
func NewGraph(nodes []Node, edges []Edge, metadata map[string]any) *Graph {
	g := &Graph{
		Nodes:    nodes,
		Edges:    edges,
		Metadata: metadata,
		index:    make(map[string]int, len(nodes)),
	}
	for i := range nodes {
		g.index[nodes[i].ID] = i
	}
	return g
}

// NodeByID returns the node with the given id, if present.
func (g *Graph) NodeByID(id string) (*Node, bool) {
	idx, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.Nodes[idx], true
}

// HasNode reports whether a node with the given id exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// halfEdge is one directed half of an undirected adjacency entry. edge
// indexes into g.Edges so traversals can recover weight and provenance.
type halfEdge struct {
	to   int
	edge int
}

// adjacency builds the undirected adjacency view used by every traversal.
// Neighbor order per node follows edge insertion order, which keeps all
// traversal tie-breaks deterministic.
func (g *Graph) adjacency() [][]halfEdge {
	adj := make([][]halfEdge, len(g.Nodes))
	for ei := range g.Edges {
		e := &g.Edges[ei]
		si, sok := g.index[e.SourceID]
		ti, tok := g.index[e.TargetID]
		if !sok || !tok {
			continue
		}
		adj[si] = append(adj[si], halfEdge{to: ti, edge: ei})
		if ti != si {
			adj[ti] = append(adj[ti], halfEdge{to: si, edge: ei})
		}
	}
	return adj
}

// positiveWeight clamps non-positive edge weights to 1, matching how the
// builder treats facts with missing weight contributions.
func positiveWeight(w float64) float64 {
	if w <= 0 {
		return 1
	}
	return w
}

// Path is a traversal result from a source node to a target node. Path holds
// the node ids in order, inclusive of both endpoints; Edges holds the edges
// actually traversed.
type Path struct {
	Path        []string `json:"path"`
	Edges       []Edge   `json:"edges"`
	Length      int      `json:"length"`
	TotalWeight float64  `json:"total_weight"`
}

// CentralityScore ranks one node under a centrality metric. Rank is 1-based;
// ties are broken by first-seen node order.
type CentralityScore struct {
	EntityID string  `json:"entity_id"`
	Label    string  `json:"label"`
	Score    float64 `json:"score"`
	Rank     int     `json:"rank"`
}

// PageRankResult carries PageRank scores together with convergence state.
// Converged false is not an error; the last iterate is still returned.
type PageRankResult struct {
	Scores     []CentralityScore `json:"scores"`
	Converged  bool              `json:"converged"`
	Iterations int               `json:"iterations"`
}

// Community is one detected community. InternalEdges and ExternalEdges count
// edges of the original graph; Density relates internal edges to the maximum
// possible for the community size.
type Community struct {
	ID            string   `json:"id"`
	EntityIDs     []string `json:"entity_ids"`
	Size          int      `json:"size"`
	InternalEdges int      `json:"internal_edges"`
	ExternalEdges int      `json:"external_edges"`
	Density       float64  `json:"density"`
}

// Statistics aggregates structural measures of a graph. Diameter and
// AvgPathLength are sampled on large graphs and exact on small ones.
type Statistics struct {
	NodeCount           int                      `json:"node_count"`
	EdgeCount           int                      `json:"edge_count"`
	Density             float64                  `json:"density"`
	AvgDegree           float64                  `json:"avg_degree"`
	AvgClustering       float64                  `json:"avg_clustering"`
	ConnectedComponents int                      `json:"connected_components"`
	Diameter            int                      `json:"diameter"`
	AvgPathLength       float64                  `json:"avg_path_length"`
	Sampled             bool                     `json:"sampled"`
	TypeDistribution    map[NodeType]int         `json:"type_distribution"`
	RelationshipCounts  map[RelationshipType]int `json:"relationship_counts"`
}
