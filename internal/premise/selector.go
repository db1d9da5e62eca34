package premise

import (
	"sort"

	"raicompanion/internal/library"
	"raicompanion/internal/scoring"
)

// Tier marks how central a selected premise is to the analysis.
type Tier string

const (
	TierPrimary   Tier = "primary"
	TierSecondary Tier = "secondary"
)

// Scored is one selected premise with its applicability score.
type Scored struct {
	Premise library.Premise
	Tier    Tier
	Score   float64
}

// Selection is the ordered result of premise selection, highest score first.
type Selection struct {
	Premises      []Scored
	WisdomOverlay bool
}

// Limits bounds a selection run.
type Limits struct {
	MaxPrimary          int
	MaxSecondary        int
	MinRelevance        float64
	PremiseThreshold    int
	EnableWisdomOverlay bool
}

// Selector chooses primary/secondary premises for an input text. Safe for
// concurrent use; the library and scorer are read-only.
type Selector struct {
	lib    *library.Library
	scorer scoring.Scorer
	limits Limits
}

func NewSelector(lib *library.Library, scorer scoring.Scorer, limits Limits) *Selector {
	return &Selector{lib: lib, scorer: scorer, limits: limits}
}

// Select scores every library premise against the input, orders by score
// descending with id-ascending tie-break, drops everything under the
// relevance floor, and fills the primary then secondary tiers. The same
// input and library state always produce the same selection.
func (s *Selector) Select(inputText string) Selection {
	type candidate struct {
		premise library.Premise
		score   float64
	}

	var candidates []candidate
	for _, p := range s.lib.Premises() {
		score := s.scorer.Score(p.Keywords, p.Weight, inputText)
		if score < s.limits.MinRelevance {
			continue
		}
		candidates = append(candidates, candidate{premise: p, score: score})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].premise.ID < candidates[j].premise.ID
	})

	var sel Selection
	for i, c := range candidates {
		switch {
		case i < s.limits.MaxPrimary:
			sel.Premises = append(sel.Premises, Scored{Premise: c.premise, Tier: TierPrimary, Score: c.score})
		case i < s.limits.MaxPrimary+s.limits.MaxSecondary:
			sel.Premises = append(sel.Premises, Scored{Premise: c.premise, Tier: TierSecondary, Score: c.score})
		default:
			return s.finish(sel)
		}
	}
	return s.finish(sel)
}

func (s *Selector) finish(sel Selection) Selection {
	sel.WisdomOverlay = s.limits.EnableWisdomOverlay && len(sel.Premises) >= s.limits.PremiseThreshold
	return sel
}

// Primary returns the primary-tier premises in selection order.
func (sel Selection) Primary() []Scored {
	var out []Scored
	for _, p := range sel.Premises {
		if p.Tier == TierPrimary {
			out = append(out, p)
		}
	}
	return out
}

// Secondary returns the secondary-tier premises in selection order.
func (sel Selection) Secondary() []Scored {
	var out []Scored
	for _, p := range sel.Premises {
		if p.Tier == TierSecondary {
			out = append(out, p)
		}
	}
	return out
}
