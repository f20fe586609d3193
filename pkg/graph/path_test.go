package graph

import (
	"errors"
	"reflect"
	"testing"

	"github.com/carta-graph/carta/pkg/facts"
)

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(NewAnalyzerParams{})
}

func TestShortestPath_Chain(t *testing.T) {
	fs := relatedFacts([][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}})
	g := mustBuild(t, fs, BuildOptions{})
	a := newTestAnalyzer()

	p, err := a.ShortestPath(g, "A", "D", 10)
	if err != nil {
		t.Fatalf("ShortestPath() error = %v", err)
	}
	if !reflect.DeepEqual(p.Path, []string{"A", "B", "C", "D"}) {
		t.Errorf("expected path [A B C D], got %v", p.Path)
	}
	if p.Length != 3 {
		t.Errorf("expected length 3, got %d", p.Length)
	}
	if !almostEqual(p.TotalWeight, 3) {
		t.Errorf("expected total weight 3, got %f", p.TotalWeight)
	}
	if len(p.Edges) != 3 {
		t.Errorf("expected 3 edges, got %d", len(p.Edges))
	}
}

func TestShortestPath_Symmetric(t *testing.T) {
	fs := relatedFacts([][2]string{
		{"A", "B"}, {"B", "C"}, {"C", "D"}, {"A", "E"}, {"E", "D"},
	})
	g := mustBuild(t, fs, BuildOptions{})
	a := newTestAnalyzer()

	forward, err := a.ShortestPath(g, "A", "D", 10)
	if err != nil {
		t.Fatalf("ShortestPath(A, D) error = %v", err)
	}
	backward, err := a.ShortestPath(g, "D", "A", 10)
	if err != nil {
		t.Fatalf("ShortestPath(D, A) error = %v", err)
	}
	if forward.Length != backward.Length {
		t.Errorf("path lengths differ: %d vs %d", forward.Length, backward.Length)
	}
}

func TestShortestPath_IgnoresEdgeDirection(t *testing.T) {
	// Both facts point away from B, yet the path must cross B.
	fs := []facts.Fact{
		{EntityA: "B", EntityB: "A", RelationshipType: "knows", Weight: 1},
		{EntityA: "B", EntityB: "C", RelationshipType: "knows", Weight: 1},
	}
	g := mustBuild(t, fs, BuildOptions{})
	a := newTestAnalyzer()

	p, err := a.ShortestPath(g, "A", "C", 10)
	if err != nil {
		t.Fatalf("ShortestPath() error = %v", err)
	}
	if !reflect.DeepEqual(p.Path, []string{"A", "B", "C"}) {
		t.Errorf("expected path [A B C], got %v", p.Path)
	}
}

func TestShortestPath_SourceEqualsTarget(t *testing.T) {
	g := mustBuild(t, relatedFacts([][2]string{{"A", "B"}}), BuildOptions{})
	a := newTestAnalyzer()

	p, err := a.ShortestPath(g, "A", "A", 10)
	if err != nil {
		t.Fatalf("ShortestPath() error = %v", err)
	}
	if !reflect.DeepEqual(p.Path, []string{"A"}) || p.Length != 0 {
		t.Errorf("expected trivial path [A], got %v (length %d)", p.Path, p.Length)
	}
}

func TestShortestPath_MaxDepthCutsOff(t *testing.T) {
	fs := relatedFacts([][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}})
	g := mustBuild(t, fs, BuildOptions{})
	a := newTestAnalyzer()

	if _, err := a.ShortestPath(g, "A", "D", 2); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for path beyond max depth, got %v", err)
	}
	if _, err := a.ShortestPath(g, "A", "D", 3); err != nil {
		t.Errorf("expected path at exactly max depth, got error %v", err)
	}
}

func TestShortestPath_DisconnectedNodes(t *testing.T) {
	fs := relatedFacts([][2]string{{"A", "B"}, {"C", "D"}})
	g := mustBuild(t, fs, BuildOptions{})
	a := newTestAnalyzer()

	if _, err := a.ShortestPath(g, "A", "C", 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for disconnected nodes, got %v", err)
	}
}

func TestShortestPath_Errors(t *testing.T) {
	g := mustBuild(t, relatedFacts([][2]string{{"A", "B"}}), BuildOptions{})
	a := newTestAnalyzer()

	if _, err := a.ShortestPath(g, "missing", "B", 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown source, got %v", err)
	}
	if _, err := a.ShortestPath(g, "A", "missing", 10); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown target, got %v", err)
	}
	if _, err := a.ShortestPath(g, "A", "B", -1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for negative max depth, got %v", err)
	}
}
