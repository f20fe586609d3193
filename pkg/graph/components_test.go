package graph

import (
	"errors"
	"reflect"
	"testing"
)

func TestConnectedComponents_Partition(t *testing.T) {
	fs := relatedFacts([][2]string{{"A", "B"}, {"B", "C"}, {"D", "E"}})
	g := mustBuild(t, fs, BuildOptions{})
	a := newTestAnalyzer()

	components := a.ConnectedComponents(g)
	want := [][]string{{"A", "B", "C"}, {"D", "E"}}
	if !reflect.DeepEqual(components, want) {
		t.Errorf("expected components %v, got %v", want, components)
	}
}

func TestConnectedComponents_IsolatedNode(t *testing.T) {
	fs := relatedFacts([][2]string{{"A", "B"}, {"A", "C"}, {"C", "D"}})
	fs = append(fs, relatedFacts([][2]string{{"X", "Y"}})...)
	g := mustBuild(t, fs, BuildOptions{})
	a := newTestAnalyzer()

	components := a.ConnectedComponents(g)
	if len(components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(components))
	}
}

func TestConnectedComponents_EmptyGraph(t *testing.T) {
	g := mustBuild(t, nil, BuildOptions{})
	a := newTestAnalyzer()

	if components := a.ConnectedComponents(g); len(components) != 0 {
		t.Errorf("expected no components, got %v", components)
	}
}

func TestClusteringCoefficient_Triangle(t *testing.T) {
	fs := relatedFacts([][2]string{{"A", "B"}, {"B", "C"}, {"C", "A"}})
	g := mustBuild(t, fs, BuildOptions{})
	a := newTestAnalyzer()

	c, err := a.ClusteringCoefficient(g, "A")
	if err != nil {
		t.Fatalf("ClusteringCoefficient() error = %v", err)
	}
	if !almostEqual(c, 1) {
		t.Errorf("expected coefficient 1 in a triangle, got %f", c)
	}
	if avg := a.AverageClustering(g); !almostEqual(avg, 1) {
		t.Errorf("expected average clustering 1, got %f", avg)
	}
}

func TestClusteringCoefficient_OpenTriad(t *testing.T) {
	fs := relatedFacts([][2]string{{"A", "B"}, {"B", "C"}})
	g := mustBuild(t, fs, BuildOptions{})
	a := newTestAnalyzer()

	c, err := a.ClusteringCoefficient(g, "B")
	if err != nil {
		t.Fatalf("ClusteringCoefficient() error = %v", err)
	}
	if !almostEqual(c, 0) {
		t.Errorf("expected coefficient 0 for open triad center, got %f", c)
	}
	leaf, err := a.ClusteringCoefficient(g, "A")
	if err != nil {
		t.Fatalf("ClusteringCoefficient() error = %v", err)
	}
	// Degree below 2 scores 0 by definition.
	if !almostEqual(leaf, 0) {
		t.Errorf("expected coefficient 0 for a leaf, got %f", leaf)
	}
}

func TestClusteringCoefficient_HalfClosed(t *testing.T) {
	// A connects to B, C, D; only B-C is closed.
	fs := relatedFacts([][2]string{{"A", "B"}, {"A", "C"}, {"A", "D"}, {"B", "C"}})
	g := mustBuild(t, fs, BuildOptions{})
	a := newTestAnalyzer()

	c, err := a.ClusteringCoefficient(g, "A")
	if err != nil {
		t.Fatalf("ClusteringCoefficient() error = %v", err)
	}
	if !almostEqual(c, 1.0/3.0) {
		t.Errorf("expected coefficient 1/3, got %f", c)
	}
}

func TestClusteringCoefficient_UnknownNode(t *testing.T) {
	g := mustBuild(t, relatedFacts([][2]string{{"A", "B"}}), BuildOptions{})
	a := newTestAnalyzer()

	if _, err := a.ClusteringCoefficient(g, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAverageClustering_EmptyGraph(t *testing.T) {
	g := mustBuild(t, nil, BuildOptions{})
	a := newTestAnalyzer()

	if avg := a.AverageClustering(g); avg != 0 {
		t.Errorf("expected 0 for empty graph, got %f", avg)
	}
}
