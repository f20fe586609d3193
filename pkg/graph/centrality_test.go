package graph

import (
	"errors"
	"math"
	"testing"

	"github.com/carta-graph/carta/pkg/facts"
)

func scoreByID(scores []CentralityScore, id string) (CentralityScore, bool) {
	for _, s := range scores {
		if s.EntityID == id {
			return s, true
		}
	}
	return CentralityScore{}, false
}

func TestDegreeCentrality_Scores(t *testing.T) {
	// Star with center A and three leaves.
	fs := relatedFacts([][2]string{{"A", "B"}, {"A", "C"}, {"A", "D"}})
	g := mustBuild(t, fs, BuildOptions{})
	a := newTestAnalyzer()

	scores := a.DegreeCentrality(g)
	if len(scores) != 4 {
		t.Fatalf("expected 4 scores, got %d", len(scores))
	}
	for _, s := range scores {
		if s.Score < 0 || s.Score > 1 {
			t.Errorf("score %f for %s out of [0,1]", s.Score, s.EntityID)
		}
	}
	center, _ := scoreByID(scores, "A")
	if !almostEqual(center.Score, 1) {
		t.Errorf("expected center score 1, got %f", center.Score)
	}
	if center.Rank != 1 {
		t.Errorf("expected center rank 1, got %d", center.Rank)
	}
	leaf, _ := scoreByID(scores, "B")
	if !almostEqual(leaf.Score, 1.0/3.0) {
		t.Errorf("expected leaf score 1/3, got %f", leaf.Score)
	}
}

func TestDegreeCentrality_EdgelessGraph(t *testing.T) {
	fs := relatedFacts([][2]string{{"A", "B"}})
	g := mustBuild(t, fs, BuildOptions{MinCoOccurrence: 2})
	a := newTestAnalyzer()

	scores := a.DegreeCentrality(g)
	for _, s := range scores {
		if s.Score != 0 {
			t.Errorf("expected 0 score on edgeless graph, got %f", s.Score)
		}
	}
}

func TestDegreeCentrality_TiesKeepFirstSeenOrder(t *testing.T) {
	fs := relatedFacts([][2]string{{"A", "B"}, {"C", "D"}})
	g := mustBuild(t, fs, BuildOptions{})
	a := newTestAnalyzer()

	scores := a.DegreeCentrality(g)
	for i, want := range []string{"A", "B", "C", "D"} {
		if scores[i].EntityID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, scores[i].EntityID)
		}
		if scores[i].Rank != i+1 {
			t.Errorf("position %d: expected rank %d, got %d", i, i+1, scores[i].Rank)
		}
	}
}

func TestBetweennessCentrality_Star(t *testing.T) {
	fs := relatedFacts([][2]string{{"A", "B"}, {"A", "C"}, {"A", "D"}, {"A", "E"}})
	g := mustBuild(t, fs, BuildOptions{})
	a := newTestAnalyzer()

	scores, err := a.BetweennessCentrality(g)
	if err != nil {
		t.Fatalf("BetweennessCentrality() error = %v", err)
	}
	center, _ := scoreByID(scores, "A")
	// Every path between the 4 leaves crosses the center.
	if !almostEqual(center.Score, 1) {
		t.Errorf("expected center score 1, got %f", center.Score)
	}
	leaf, _ := scoreByID(scores, "B")
	if !almostEqual(leaf.Score, 0) {
		t.Errorf("expected leaf score 0, got %f", leaf.Score)
	}
}

func TestBetweennessCentrality_EqualPathsSplitCredit(t *testing.T) {
	// A diamond: A connects to D through B and through C equally.
	fs := relatedFacts([][2]string{{"A", "B"}, {"A", "C"}, {"B", "D"}, {"C", "D"}})
	g := mustBuild(t, fs, BuildOptions{})
	a := newTestAnalyzer()

	scores, err := a.BetweennessCentrality(g)
	if err != nil {
		t.Fatalf("BetweennessCentrality() error = %v", err)
	}
	b, _ := scoreByID(scores, "B")
	c, _ := scoreByID(scores, "C")
	if !almostEqual(b.Score, c.Score) {
		t.Errorf("expected equal split between B and C, got %f vs %f", b.Score, c.Score)
	}
	// Each carries half the A-D traffic in both directions: 1 of 6
	// ordered pairs.
	if !almostEqual(b.Score, 1.0/6.0) {
		t.Errorf("expected score 1/6, got %f", b.Score)
	}
}

func TestBetweennessCentrality_TinyGraphsScoreZero(t *testing.T) {
	g := mustBuild(t, relatedFacts([][2]string{{"A", "B"}}), BuildOptions{})
	a := newTestAnalyzer()

	scores, err := a.BetweennessCentrality(g)
	if err != nil {
		t.Fatalf("BetweennessCentrality() error = %v", err)
	}
	for _, s := range scores {
		if s.Score != 0 {
			t.Errorf("expected 0 score on 2-node graph, got %f", s.Score)
		}
	}
}

func TestBetweennessCentrality_ResourceGuard(t *testing.T) {
	fs := relatedFacts([][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}})
	g := mustBuild(t, fs, BuildOptions{})
	a := NewAnalyzer(NewAnalyzerParams{Limits: Limits{MaxBetweennessNodes: 3}})

	if _, err := a.BetweennessCentrality(g); !errors.Is(err, ErrResourceExceeded) {
		t.Errorf("expected ErrResourceExceeded, got %v", err)
	}
}

func TestPageRank_TwoNodeMutualEdge(t *testing.T) {
	g := mustBuild(t, relatedFacts([][2]string{{"A", "B"}}), BuildOptions{})
	a := newTestAnalyzer()

	result := a.PageRank(g)
	if !result.Converged {
		t.Fatal("expected convergence on 2-node graph")
	}
	for _, s := range result.Scores {
		if !almostEqual(s.Score, 0.5) {
			t.Errorf("expected score 0.5 for %s, got %f", s.EntityID, s.Score)
		}
	}
}

func TestPageRank_ScoresSumToOne(t *testing.T) {
	fs := relatedFacts([][2]string{
		{"A", "B"}, {"B", "C"}, {"C", "A"}, {"C", "D"}, {"D", "E"},
	})
	g := mustBuild(t, fs, BuildOptions{})
	a := newTestAnalyzer()

	result := a.PageRank(g)
	sum := 0.0
	for _, s := range result.Scores {
		sum += s.Score
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("expected scores to sum to 1, got %f", sum)
	}
	if !result.Converged {
		t.Error("expected convergence on a 5-node graph")
	}
}

func TestPageRank_DanglingNodeKeepsMass(t *testing.T) {
	// C has no edges after the threshold drops its only pair.
	fs := relatedFacts([][2]string{{"A", "B"}, {"A", "B"}, {"B", "C"}})
	g := mustBuild(t, fs, BuildOptions{MinCoOccurrence: 2})
	a := newTestAnalyzer()

	result := a.PageRank(g)
	sum := 0.0
	for _, s := range result.Scores {
		sum += s.Score
		if s.Score <= 0 {
			t.Errorf("expected positive score for %s, got %f", s.EntityID, s.Score)
		}
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("expected scores to sum to 1, got %f", sum)
	}
}

func TestPageRank_MassSplitsByEdgeWeight(t *testing.T) {
	// A sends most of its mass over the heavy edge, so B outranks C.
	fs := []facts.Fact{
		{EntityA: "A", EntityB: "B", RelationshipType: "related_to", Weight: 10, DocumentID: "d1"},
		{EntityA: "A", EntityB: "C", RelationshipType: "related_to", Weight: 1, DocumentID: "d1"},
	}
	g := mustBuild(t, fs, BuildOptions{})
	a := newTestAnalyzer()

	result := a.PageRank(g)
	b, _ := scoreByID(result.Scores, "B")
	c, _ := scoreByID(result.Scores, "C")
	if b.Score <= c.Score {
		t.Errorf("expected B to outrank C over the heavier edge, got B=%f C=%f", b.Score, c.Score)
	}
	sum := 0.0
	for _, s := range result.Scores {
		sum += s.Score
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("expected scores to sum to 1, got %f", sum)
	}
}

func TestPageRank_EmptyGraph(t *testing.T) {
	g := mustBuild(t, nil, BuildOptions{})
	a := newTestAnalyzer()

	result := a.PageRank(g)
	if len(result.Scores) != 0 {
		t.Errorf("expected no scores, got %d", len(result.Scores))
	}
	if !result.Converged {
		t.Error("expected empty graph to be trivially converged")
	}
}
