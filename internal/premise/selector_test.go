package premise

import (
	"testing"

	"raicompanion/internal/library"
)

// fixedScorer returns a canned score per premise, keyed by the first keyword.
type fixedScorer struct {
	scores map[string]float64
}

func (f fixedScorer) Score(keywords []string, _ float64, _ string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	return f.scores[keywords[0]]
}

func testLibrary() *library.Library {
	return library.New([]library.Premise{
		{ID: "P1", Keywords: []string{"P1"}, Weight: 1},
		{ID: "P2", Keywords: []string{"P2"}, Weight: 1},
		{ID: "P3", Keywords: []string{"P3"}, Weight: 1},
		{ID: "P4", Keywords: []string{"P4"}, Weight: 1},
	}, nil)
}

func TestSelectTiersAndFloor(t *testing.T) {
	scorer := fixedScorer{scores: map[string]float64{"P1": 0.9, "P2": 0.7, "P3": 0.7, "P4": 0.2}}
	sel := NewSelector(testLibrary(), scorer, Limits{
		MaxPrimary:   2,
		MaxSecondary: 1,
		MinRelevance: 0.3,
	}).Select("whatever")

	primary := sel.Primary()
	if len(primary) != 2 || primary[0].Premise.ID != "P1" || primary[1].Premise.ID != "P2" {
		t.Fatalf("unexpected primary tier: %+v", primary)
	}
	secondary := sel.Secondary()
	if len(secondary) != 1 || secondary[0].Premise.ID != "P3" {
		t.Fatalf("unexpected secondary tier: %+v", secondary)
	}
	for _, p := range sel.Premises {
		if p.Premise.ID == "P4" {
			t.Fatalf("P4 below floor must be excluded")
		}
	}
}

func TestSelectTieBreakByID(t *testing.T) {
	scorer := fixedScorer{scores: map[string]float64{"P1": 0.5, "P2": 0.5, "P3": 0.5, "P4": 0.5}}
	sel := NewSelector(testLibrary(), scorer, Limits{
		MaxPrimary:   4,
		MaxSecondary: 0,
	}).Select("x")
	want := []string{"P1", "P2", "P3", "P4"}
	if len(sel.Premises) != len(want) {
		t.Fatalf("expected %d premises, got %d", len(want), len(sel.Premises))
	}
	for i, id := range want {
		if sel.Premises[i].Premise.ID != id {
			t.Fatalf("tie-break order wrong at %d: got %s want %s", i, sel.Premises[i].Premise.ID, id)
		}
	}
}

func TestSelectDeterministic(t *testing.T) {
	scorer := fixedScorer{scores: map[string]float64{"P1": 0.9, "P2": 0.7, "P3": 0.7, "P4": 0.4}}
	s := NewSelector(testLibrary(), scorer, Limits{MaxPrimary: 2, MaxSecondary: 2})
	first := s.Select("same input")
	for i := 0; i < 20; i++ {
		again := s.Select("same input")
		if len(again.Premises) != len(first.Premises) {
			t.Fatalf("selection size changed between runs")
		}
		for j := range again.Premises {
			if again.Premises[j].Premise.ID != first.Premises[j].Premise.ID ||
				again.Premises[j].Tier != first.Premises[j].Tier {
				t.Fatalf("selection not deterministic at %d", j)
			}
		}
	}
}

func TestWisdomOverlayThreshold(t *testing.T) {
	scorer := fixedScorer{scores: map[string]float64{"P1": 0.9, "P2": 0.8, "P3": 0.7, "P4": 0.6}}

	on := NewSelector(testLibrary(), scorer, Limits{
		MaxPrimary: 3, MaxSecondary: 1, PremiseThreshold: 3, EnableWisdomOverlay: true,
	}).Select("x")
	if !on.WisdomOverlay {
		t.Fatalf("expected wisdom overlay with %d premises >= threshold 3", len(on.Premises))
	}

	off := NewSelector(testLibrary(), scorer, Limits{
		MaxPrimary: 2, MaxSecondary: 0, PremiseThreshold: 3, EnableWisdomOverlay: true,
	}).Select("x")
	if off.WisdomOverlay {
		t.Fatalf("expected no overlay below threshold")
	}

	disabled := NewSelector(testLibrary(), scorer, Limits{
		MaxPrimary: 4, MaxSecondary: 0, PremiseThreshold: 3, EnableWisdomOverlay: false,
	}).Select("x")
	if disabled.WisdomOverlay {
		t.Fatalf("expected no overlay when disabled")
	}
}

func TestBoundInvariants(t *testing.T) {
	scorer := fixedScorer{scores: map[string]float64{"P1": 0.9, "P2": 0.8, "P3": 0.7, "P4": 0.6}}
	sel := NewSelector(testLibrary(), scorer, Limits{MaxPrimary: 1, MaxSecondary: 1}).Select("x")
	if len(sel.Primary()) > 1 {
		t.Fatalf("primary bound violated")
	}
	if len(sel.Secondary()) > 1 {
		t.Fatalf("secondary bound violated")
	}
}
