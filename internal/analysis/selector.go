package analysis

import (
	"fmt"
	"sort"
	"strings"

	"raicompanion/internal/library"
	"raicompanion/internal/scoring"
)

// Scored is one selected module with its applicability score. Explicitly
// requested modules carry score 1.0 in request order.
type Scored struct {
	Module library.Module
	Score  float64
}

// Selector chooses analytical modules for an input under a mode's bound.
// Safe for concurrent use.
type Selector struct {
	lib          *library.Library
	scorer       scoring.Scorer
	modes        Modes
	minRelevance float64
	autoSelect   bool
}

func NewSelector(lib *library.Library, scorer scoring.Scorer, modes Modes, minRelevance float64, autoSelect bool) *Selector {
	return &Selector{lib: lib, scorer: scorer, modes: modes, minRelevance: minRelevance, autoSelect: autoSelect}
}

// Select returns up to mode.MaxModules modules in execution order. When
// auto-select is on and no explicit list is given, modules are chosen by the
// same score-sort-tiebreak discipline as premise selection. An explicit list
// is validated against the library and the mode bound.
func (s *Selector) Select(modeName string, inputText string, explicit []string) ([]Scored, Mode, error) {
	mode, err := s.modes.Resolve(modeName)
	if err != nil {
		return nil, Mode{}, err
	}

	if len(explicit) > 0 || !s.autoSelect {
		selected, err := s.explicitSelection(mode, explicit)
		if err != nil {
			return nil, Mode{}, err
		}
		return orderForExecution(selected, inputText), mode, nil
	}

	return orderForExecution(s.autoSelection(mode, inputText), inputText), mode, nil
}

func (s *Selector) explicitSelection(mode Mode, explicit []string) ([]Scored, error) {
	if len(explicit) == 0 {
		return nil, fmt.Errorf("analysis: auto-select disabled and no modules supplied")
	}
	if len(explicit) > mode.MaxModules {
		return nil, &TooManyModulesError{Mode: mode.Name, Requested: len(explicit), Max: mode.MaxModules}
	}
	out := make([]Scored, 0, len(explicit))
	for _, id := range explicit {
		m, ok := s.lib.Module(id)
		if !ok {
			return nil, fmt.Errorf("analysis: unknown module %q", id)
		}
		out = append(out, Scored{Module: m, Score: 1.0})
	}
	return out, nil
}

func (s *Selector) autoSelection(mode Mode, inputText string) []Scored {
	type candidate struct {
		module library.Module
		score  float64
	}
	// The normalization module always runs when the library carries it,
	// whatever its score against this input.
	var out []Scored
	if m, ok := s.lib.Module("CL-0"); ok {
		out = append(out, Scored{Module: m, Score: s.scorer.Score(m.Keywords, m.Weight, inputText)})
	}

	var candidates []candidate
	for _, m := range s.lib.Modules() {
		if m.ID == "CL-0" {
			continue
		}
		score := s.scorer.Score(m.Keywords, m.Weight, inputText)
		if score < s.minRelevance {
			continue
		}
		candidates = append(candidates, candidate{module: m, score: score})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].module.ID < candidates[j].module.ID
	})

	for _, c := range candidates {
		if len(out) >= mode.MaxModules {
			break
		}
		out = append(out, Scored{Module: c.module, Score: c.score})
	}
	return out
}

// orderForExecution arranges modules the way the analysis runs: cross-level
// normalization first (CL-0 leading), then levels ordered by the input's
// entry point.
func orderForExecution(selected []Scored, inputText string) []Scored {
	byLevel := map[string][]Scored{}
	for _, m := range selected {
		byLevel[level(m.Module.ID)] = append(byLevel[level(m.Module.ID)], m)
	}
	for _, group := range byLevel {
		sort.Slice(group, func(i, j int) bool { return group[i].Module.ID < group[j].Module.ID })
	}

	var order []string
	switch entryPoint(inputText) {
	case "system":
		order = []string{"CL", "SL", "NL", "FL"}
	case "narrative":
		order = []string{"CL", "NL", "FL", "SL"}
	default:
		order = []string{"CL", "FL", "NL", "SL"}
	}

	out := make([]Scored, 0, len(selected))
	for _, lvl := range order {
		out = append(out, byLevel[lvl]...)
	}
	// Unknown prefixes go last, in id order.
	var rest []string
	for lvl := range byLevel {
		if lvl != "CL" && lvl != "FL" && lvl != "NL" && lvl != "SL" {
			rest = append(rest, lvl)
		}
	}
	sort.Strings(rest)
	for _, lvl := range rest {
		out = append(out, byLevel[lvl]...)
	}
	return out
}

func level(moduleID string) string {
	if i := strings.IndexByte(moduleID, '-'); i > 0 {
		return moduleID[:i]
	}
	return moduleID
}

// entryPoint classifies where the analysis should start, mirroring the
// fact/narrative/system indicator counts of the source framework.
func entryPoint(inputText string) string {
	text := strings.ToLower(inputText)
	count := func(words ...string) int {
		n := 0
		for _, w := range words {
			if strings.Contains(text, w) {
				n++
			}
		}
		return n
	}
	system := count("power", "control", "system", "government", "geopolitical", "strategic")
	narrative := count("because", "therefore", "story", "narrative", "caused", "led to")
	fact := count("evidence", "proof", "confirmed", "reported", "data", "study")

	switch {
	case system >= narrative && system >= fact:
		return "system"
	case narrative >= fact:
		return "narrative"
	default:
		return "fact"
	}
}
