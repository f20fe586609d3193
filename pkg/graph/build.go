package graph

import (
	"time"

	"github.com/carta-graph/carta/pkg/facts"
	"github.com/carta-graph/carta/pkg/logger"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// BuildOptions restricts which facts contribute to a build. Zero values mean
// no restriction.
type BuildOptions struct {
	// EntityTypes is an allow-list of node types. Facts touching an entity
	// of another type are skipped entirely.
	EntityTypes []NodeType
	// MinCoOccurrence drops aggregated edges observed fewer times than
	// this. Values below 1 are treated as 1.
	MinCoOccurrence int
	// DocumentIDs restricts the build to facts from these documents.
	DocumentIDs []string
}

// Builder constructs graphs from co-occurrence facts and derives filtered or
// neighborhood graphs from existing ones.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// edgeAgg accumulates facts for one (unordered pair, relationship type)
// combination. Orientation of the first-seen fact is kept for the edge.
type edgeAgg struct {
	sourceID string
	targetID string
	relType  RelationshipType
	weight   float64
	count    int
	docIDs   []string
	docSeen  map[string]struct{}
}

// Build aggregates facts into a graph. Nodes and edges are emitted in
// first-seen order, so the same fact sequence always produces the same
// graph. An empty fact set yields a valid empty graph.
func (b *Builder) Build(fs []facts.Fact, opts BuildOptions) (*Graph, error) {
	minCo := opts.MinCoOccurrence
	if minCo < 1 {
		minCo = 1
	}

	var allowedTypes map[NodeType]struct{}
	if len(opts.EntityTypes) > 0 {
		allowedTypes = make(map[NodeType]struct{}, len(opts.EntityTypes))
		for _, t := range opts.EntityTypes {
			allowedTypes[t] = struct{}{}
		}
	}
	var allowedDocs map[string]struct{}
	if len(opts.DocumentIDs) > 0 {
		allowedDocs = make(map[string]struct{}, len(opts.DocumentIDs))
		for _, id := range opts.DocumentIDs {
			allowedDocs[id] = struct{}{}
		}
	}

	var nodes []Node
	nodeIdx := make(map[string]int)
	observe := func(id, label string, typ NodeType) {
		if _, ok := nodeIdx[id]; ok {
			return
		}
		nodeIdx[id] = len(nodes)
		if label == "" {
			label = id
		}
		nodes = append(nodes, Node{ID: id, Label: label, Type: typ})
	}

	var aggs []*edgeAgg
	aggIdx := make(map[[3]string]int)

	for i := range fs {
		f := &fs[i]
		if f.EntityA == "" || f.EntityB == "" || f.EntityA == f.EntityB {
			continue
		}
		if allowedDocs != nil {
			if _, ok := allowedDocs[f.DocumentID]; !ok {
				continue
			}
		}
		typeA := NormalizeNodeType(f.EntityAType)
		typeB := NormalizeNodeType(f.EntityBType)
		if allowedTypes != nil {
			if _, ok := allowedTypes[typeA]; !ok {
				continue
			}
			if _, ok := allowedTypes[typeB]; !ok {
				continue
			}
		}

		observe(f.EntityA, f.EntityALabel, typeA)
		observe(f.EntityB, f.EntityBLabel, typeB)

		relType := NormalizeRelationshipType(f.RelationshipType)
		a, b := f.EntityA, f.EntityB
		if b < a {
			a, b = b, a
		}
		key := [3]string{a, b, string(relType)}

		idx, ok := aggIdx[key]
		if !ok {
			idx = len(aggs)
			aggIdx[key] = idx
			aggs = append(aggs, &edgeAgg{
				sourceID: f.EntityA,
				targetID: f.EntityB,
				relType:  relType,
				docSeen:  make(map[string]struct{}),
			})
		}
		agg := aggs[idx]
		w := f.Weight
		if w <= 0 {
			w = 1
		}
		agg.weight += w
		agg.count++
		if f.DocumentID != "" {
			if _, seen := agg.docSeen[f.DocumentID]; !seen {
				agg.docSeen[f.DocumentID] = struct{}{}
				agg.docIDs = append(agg.docIDs, f.DocumentID)
			}
		}
	}

	edges := make([]Edge, 0, len(aggs))
	for _, agg := range aggs {
		if agg.count < minCo {
			continue
		}
		edges = append(edges, Edge{
			SourceID:         agg.sourceID,
			TargetID:         agg.targetID,
			RelationshipType: agg.relType,
			Weight:           agg.weight,
			DocumentIDs:      agg.docIDs,
		})
		nodes[nodeIdx[agg.sourceID]].Degree++
		nodes[nodeIdx[agg.targetID]].Degree++
	}

	buildID, err := gonanoid.New()
	if err != nil {
		return nil, err
	}
	metadata := map[string]any{
		"build_id":           buildID,
		"built_at":           time.Now().UTC().Format(time.RFC3339),
		"entity_count":       len(nodes),
		"relationship_count": len(edges),
		"fact_count":         len(fs),
	}

	logger.Debug("[Graph][Build] Built graph",
		"buildId", buildID, "nodes", len(nodes), "edges", len(edges), "facts", len(fs))

	return NewGraph(nodes, edges, metadata), nil
}
