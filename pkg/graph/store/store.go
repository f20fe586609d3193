// Package store caches built graphs per project with explicit invalidation.
// Each project key moves through Empty, Building, and Ready states; readers
// never observe a partially built graph.
package store

import (
	"context"
	"sync"

	"github.com/carta-graph/carta/pkg/graph"
	"github.com/carta-graph/carta/pkg/logger"
)

// State describes the cache lifecycle of one project key.
type State string

const (
	StateEmpty    State = "empty"
	StateBuilding State = "building"
	StateReady    State = "ready"
)

// BuilderFunc constructs a graph on a cache miss. Errors propagate to every
// caller waiting on the build and leave the entry empty.
type BuilderFunc func(ctx context.Context) (*graph.Graph, error)

// inflight is one in-progress build. Waiters block on done and then read g
// and err. gen records the entry generation the build started under so an
// invalidation mid-build can be detected.
type inflight struct {
	done chan struct{}
	gen  uint64
	g    *graph.Graph
	err  error
}

type entry struct {
	gen      uint64
	ready    bool
	graph    *graph.Graph
	inflight *inflight
}

// Store is a project-keyed cache of immutable graphs. Builds for the same
// key serialize so concurrent callers share one build; different keys never
// block each other beyond map access.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// GetOrBuild returns the cached graph for projectID, or runs build exactly
// once per miss and publishes the result atomically. Concurrent callers
// during a miss block until the in-flight build finishes and share its
// outcome. An invalidation racing a build still hands the build's result to
// callers already waiting on it; callers arriving after the invalidation
// wait the stale build out and then trigger a fresh one.
func (s *Store) GetOrBuild(ctx context.Context, projectID string, build BuilderFunc) (*graph.Graph, error) {
	for {
		s.mu.Lock()
		e, ok := s.entries[projectID]
		if !ok {
			e = &entry{}
			s.entries[projectID] = e
		}
		if e.ready {
			g := e.graph
			s.mu.Unlock()
			return g, nil
		}
		if e.inflight != nil {
			inf := e.inflight
			stale := inf.gen != e.gen
			s.mu.Unlock()
			select {
			case <-inf.done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if stale {
				continue
			}
			return inf.g, inf.err
		}

		inf := &inflight{done: make(chan struct{}), gen: e.gen}
		e.inflight = inf
		s.mu.Unlock()

		logger.Debug("[GraphStore] Building graph", "projectId", projectID)
		g, err := build(ctx)

		s.mu.Lock()
		inf.g, inf.err = g, err
		close(inf.done)
		if e.inflight == inf {
			e.inflight = nil
		}
		if err == nil && e.gen == inf.gen {
			e.graph = g
			e.ready = true
		}
		s.mu.Unlock()

		if err != nil {
			logger.Warn("[GraphStore] Build failed", "projectId", projectID, "error", err)
		}
		return g, err
	}
}

// Get returns the cached graph for projectID without triggering a build.
func (s *Store) Get(projectID string) (*graph.Graph, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[projectID]
	if !ok || !e.ready {
		return nil, false
	}
	return e.graph, true
}

// Invalidate drops the cached graph for projectID. An in-flight build is
// not interrupted, but its result will not be published; the next
// GetOrBuild rebuilds from scratch.
func (s *Store) Invalidate(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[projectID]
	if !ok {
		return
	}
	e.gen++
	e.ready = false
	e.graph = nil
	logger.Debug("[GraphStore] Invalidated cache", "projectId", projectID)
}

// ProjectStatus reports the cache state of one project key.
type ProjectStatus struct {
	ProjectID string `json:"project_id"`
	State     State  `json:"state"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

// Projects lists every known project key with its cache state.
func (s *Store) Projects() []ProjectStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ProjectStatus, 0, len(s.entries))
	for id, e := range s.entries {
		status := ProjectStatus{ProjectID: id, State: StateEmpty}
		switch {
		case e.ready:
			status.State = StateReady
			status.NodeCount = len(e.graph.Nodes)
			status.EdgeCount = len(e.graph.Edges)
		case e.inflight != nil:
			status.State = StateBuilding
		}
		out = append(out, status)
	}
	return out
}
