package events

import (
	"encoding/json"
	"fmt"

	"github.com/carta-graph/carta/pkg/logger"
)

// Invalidator drops the cached graph for a project. The graph store
// satisfies this; the consumer never touches graph internals.
type Invalidator interface {
	Invalidate(projectID string)
}

// InvalidationMsg is the payload of every lifecycle event. EntityID and
// DocumentID identify the mutated object for logging; only ProjectID drives
// the invalidation.
type InvalidationMsg struct {
	Message    string `json:"message"`
	ProjectID  string `json:"project_id"`
	EntityID   string `json:"entity_id,omitempty"`
	DocumentID string `json:"document_id,omitempty"`
}

// ProcessInvalidation decodes one lifecycle event and invalidates its
// project's cached graph. A malformed or project-less message is an error
// so the caller can route it to retry handling.
func ProcessInvalidation(inv Invalidator, queueName string, body []byte) error {
	var msg InvalidationMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to decode message from %s: %w", queueName, err)
	}
	if msg.ProjectID == "" {
		return fmt.Errorf("message from %s has no project id", queueName)
	}

	inv.Invalidate(msg.ProjectID)
	logger.Info("[Events] Invalidated graph cache",
		"queue", queueName,
		"projectId", msg.ProjectID,
		"entityId", msg.EntityID,
		"documentId", msg.DocumentID,
	)
	return nil
}
