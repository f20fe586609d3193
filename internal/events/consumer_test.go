package events

import (
	"testing"
)

type fakeInvalidator struct {
	calls []string
}

func (f *fakeInvalidator) Invalidate(projectID string) {
	f.calls = append(f.calls, projectID)
}

func TestProcessInvalidation(t *testing.T) {
	tests := []struct {
		name      string
		queue     string
		body      string
		wantErr   bool
		wantCalls []string
	}{
		{
			name:      "entity merged",
			queue:     QueueEntityMerged,
			body:      `{"message":"merged","project_id":"p1","entity_id":"e1"}`,
			wantCalls: []string{"p1"},
		},
		{
			name:      "document deleted",
			queue:     QueueDocumentDeleted,
			body:      `{"project_id":"p2","document_id":"d9"}`,
			wantCalls: []string{"p2"},
		},
		{
			name:    "missing project id",
			queue:   QueueEntityDeleted,
			body:    `{"entity_id":"e1"}`,
			wantErr: true,
		},
		{
			name:    "malformed json",
			queue:   QueueEntityMerged,
			body:    `{"project_id":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := &fakeInvalidator{}
			err := ProcessInvalidation(inv, tt.queue, []byte(tt.body))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if len(inv.calls) != 0 {
					t.Errorf("expected no invalidations on error, got %v", inv.calls)
				}
				return
			}
			if err != nil {
				t.Fatalf("ProcessInvalidation() error = %v", err)
			}
			if len(inv.calls) != len(tt.wantCalls) {
				t.Fatalf("expected calls %v, got %v", tt.wantCalls, inv.calls)
			}
			for i := range tt.wantCalls {
				if inv.calls[i] != tt.wantCalls[i] {
					t.Errorf("call %d = %s, want %s", i, inv.calls[i], tt.wantCalls[i])
				}
			}
		})
	}
}
