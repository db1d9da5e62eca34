package parse

import (
	"errors"
	"strings"
	"testing"
)

const sampleResponse = `## CL-0: Normalization Check
The claim generalizes from a single case. ` + longFiller + `

## SL-1: Power Analysis
Possibly relevant, though it might depend on context we cannot determine here.

## Synthesis
Overall the claim overstates its evidence. ` + longFiller + `

` + "```rai-assessment\n{\"sections\": {\"CL-0\": 0.9, \"Synthesis\": 0.8, \"ghost\": 0.1}}\n```\n"

const longFiller = "The supporting reasoning is developed at length here so the section comfortably exceeds the completeness threshold used by the scorer, with concrete observations rather than filler words."

func TestParseSectionsAndOrder(t *testing.T) {
	out, err := NewParser().Parse(sampleResponse)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []string{"CL-0", "SL-1", "Synthesis"}
	if len(out.Order) != len(want) {
		t.Fatalf("order %v, want %v", out.Order, want)
	}
	for i := range want {
		if out.Order[i] != want[i] {
			t.Fatalf("order %v, want %v", out.Order, want)
		}
	}
	if !strings.Contains(out.Sections["CL-0"], "generalizes") {
		t.Fatalf("section body lost: %q", out.Sections["CL-0"])
	}
	if out.Synthesis() == "" {
		t.Fatalf("synthesis section missing")
	}
}

func TestParseMergesValidAssessment(t *testing.T) {
	out, err := NewParser().Parse(sampleResponse)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if out.Confidences["CL-0"] != 0.9 || out.Confidences["Synthesis"] != 0.8 {
		t.Fatalf("assessment not merged: %v", out.Confidences)
	}
	// SL-1 was not in the assessment, so its heuristic score stands.
	if out.Confidences["SL-1"] >= 0.5 {
		t.Fatalf("hedged short section should score below neutral, got %v", out.Confidences["SL-1"])
	}
	if _, ok := out.Confidences["ghost"]; ok {
		t.Fatalf("assessment key without a section must be ignored")
	}
}

func TestParseDropsInvalidAssessment(t *testing.T) {
	raw := "## Synthesis\n" + longFiller + "\n\n```rai-assessment\n{\"sections\": {\"Synthesis\": 1.5}}\n```\n"
	out, err := NewParser().Parse(raw)
	if err != nil {
		t.Fatalf("invalid assessment must not be fatal: %v", err)
	}
	if !approx(out.Confidences["Synthesis"], 0.7) {
		t.Fatalf("heuristic score should stand after dropped assessment, got %v", out.Confidences["Synthesis"])
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := NewParser().Parse("no structure at all, just prose")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected malformed response error, got %v", err)
	}
}

func TestParseIgnoresHeadersInsideFences(t *testing.T) {
	raw := "## Synthesis\ntext\n```\n## NotASection: code\n```\nmore\n"
	out, err := NewParser().Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(out.Order) != 1 || out.Order[0] != "Synthesis" {
		t.Fatalf("fenced header leaked into sections: %v", out.Order)
	}
}

func TestScoreSection(t *testing.T) {
	if got := scoreSection(""); !approx(got, 0.1) {
		t.Fatalf("empty section scored %v", got)
	}
	if got := scoreSection("short"); !approx(got, 0.3) {
		t.Fatalf("short section scored %v, want 0.3", got)
	}
	if got := scoreSection(longFiller); !approx(got, 0.7) {
		t.Fatalf("complete section scored %v, want 0.7", got)
	}
	hedged := "It might be true, or possibly not. " + longFiller
	if got := scoreSection(hedged); !approx(got, 0.6) {
		t.Fatalf("hedged section scored %v, want 0.6", got)
	}
}

func approx(got, want float64) bool {
	d := got - want
	return d < 1e-9 && d > -1e-9
}
