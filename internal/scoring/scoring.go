package scoring

import (
	"strings"
	"unicode"
)

// Scorer rates how applicable a library item is to an input text. The
// selection algorithms treat this as an injected capability so their bounds
// and tie-breaking can be tested independently of any heuristic.
type Scorer interface {
	Score(keywords []string, weight float64, inputText string) float64
}

// Estimator approximates the token cost of a text for budget enforcement.
type Estimator interface {
	Estimate(text string) int
}

// KeywordScorer scores by keyword-hit ratio scaled by item weight. Identical
// input always yields identical scores.
type KeywordScorer struct{}

func (KeywordScorer) Score(keywords []string, weight float64, inputText string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	words := tokenize(inputText)
	hits := 0
	for _, kw := range keywords {
		if _, ok := words[strings.ToLower(kw)]; ok {
			hits++
		}
	}
	if hits == 0 {
		return 0
	}
	score := float64(hits) / float64(len(keywords)) * weight
	// Multiple distinct hits signal stronger applicability than ratio alone.
	if hits > 2 {
		score *= 1.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func tokenize(text string) map[string]struct{} {
	out := make(map[string]struct{})
	var b strings.Builder
	flush := func() {
		if b.Len() > 0 {
			out[b.String()] = struct{}{}
			b.Reset()
		}
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\'' {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return out
}

// CharEstimator approximates tokens as characters divided by four, the
// common rule of thumb for latin-script chat models.
type CharEstimator struct{}

func (CharEstimator) Estimate(text string) int {
	n := len(text) / 4
	if n == 0 && text != "" {
		n = 1
	}
	return n
}
