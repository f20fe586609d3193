// Package facts defines the co-occurrence fact model that graph builds
// consume, together with the sources that load facts for a project.
package facts

import "context"

// Fact records that two entities were observed together in a document.
// Weight carries the strength assigned by the extraction pipeline; a zero
// weight means the pipeline did not score the pair.
type Fact struct {
	EntityA          string  `json:"entity_a"`
	EntityB          string  `json:"entity_b"`
	EntityALabel     string  `json:"entity_a_label"`
	EntityBLabel     string  `json:"entity_b_label"`
	EntityAType      string  `json:"entity_a_type"`
	EntityBType      string  `json:"entity_b_type"`
	RelationshipType string  `json:"relationship_type"`
	Weight           float64 `json:"weight"`
	DocumentID       string  `json:"document_id"`
}

// Source loads the co-occurrence facts recorded for a project.
type Source interface {
	FactsByProjectID(ctx context.Context, projectID string) ([]Fact, error)
}
