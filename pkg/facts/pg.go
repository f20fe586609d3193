package facts

import (
	"context"

	"github.com/carta-graph/carta/pkg/logger"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
}

const selectFactsByProject = `
SELECT entity_a, entity_b,
       entity_a_label, entity_b_label,
       entity_a_type, entity_b_type,
       relationship_type, weight, document_id
FROM co_occurrence_facts
WHERE project_id = $1
ORDER BY id`

const selectProjectIDs = `
SELECT public_id
FROM projects
ORDER BY id`

// PGSource loads co-occurrence facts from PostgreSQL.
type PGSource struct {
	conn pgxIConn
}

type NewPGSourceParams struct {
	Conn pgxIConn
}

func NewPGSource(params NewPGSourceParams) *PGSource {
	return &PGSource{conn: params.Conn}
}

// FactsByProjectID returns all facts recorded for a project in insertion
// order. A project with no facts yields an empty slice, not an error.
func (s *PGSource) FactsByProjectID(ctx context.Context, projectID string) ([]Fact, error) {
	rows, err := s.conn.Query(ctx, selectFactsByProject, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Fact
	for rows.Next() {
		var f Fact
		if err := rows.Scan(
			&f.EntityA, &f.EntityB,
			&f.EntityALabel, &f.EntityBLabel,
			&f.EntityAType, &f.EntityBType,
			&f.RelationshipType, &f.Weight, &f.DocumentID,
		); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	logger.Debug("[Facts] Loaded facts", "projectId", projectID, "count", len(out))
	return out, nil
}

// ProjectIDs returns the public ids of all known projects. The worker uses
// this to prewarm graph caches at startup.
func (s *PGSource) ProjectIDs(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, selectProjectIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
