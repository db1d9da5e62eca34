package prompt

import (
	"errors"
	"fmt"
	"strings"

	"raicompanion/internal/analysis"
	"raicompanion/internal/premise"
	"raicompanion/internal/scoring"
)

// ErrPromptTooLarge is returned when even the minimal composition (all
// primary premises, one module, the input) exceeds the provider budget.
var ErrPromptTooLarge = errors.New("prompt: assembled prompt exceeds token budget")

// Assembler composes the final prompt from a selection. Pure: no I/O, no
// state; identical arguments produce identical prompts.
type Assembler struct {
	estimator scoring.Estimator
}

func NewAssembler(estimator scoring.Estimator) *Assembler {
	return &Assembler{estimator: estimator}
}

// Assemble renders premises, modules and the input into a single prompt kept
// under maxTokens. Over budget it drops secondary premises first (lowest
// score first), then the lowest-scored modules, always preserving every
// primary premise and at least one module.
func (a *Assembler) Assemble(sel premise.Selection, modules []analysis.Scored, inputText string, mode analysis.Mode, maxTokens int) (string, error) {
	if len(modules) == 0 {
		return "", errors.New("prompt: no modules selected")
	}

	secondary := sel.Secondary()
	keptModules := append([]analysis.Scored(nil), modules...)

	for {
		text := render(sel.Primary(), secondary, keptModules, inputText, mode, sel.WisdomOverlay)
		if maxTokens <= 0 || a.estimator.Estimate(text) <= maxTokens {
			return text, nil
		}
		if len(secondary) > 0 {
			secondary = dropLowestPremise(secondary)
			continue
		}
		if len(keptModules) > 1 {
			keptModules = dropLowestModule(keptModules)
			continue
		}
		return "", fmt.Errorf("%w: minimal composition needs %d tokens, budget %d",
			ErrPromptTooLarge, a.estimator.Estimate(text), maxTokens)
	}
}

func dropLowestPremise(premises []premise.Scored) []premise.Scored {
	lowest := 0
	for i, p := range premises {
		if p.Score < premises[lowest].Score {
			lowest = i
		}
	}
	return append(premises[:lowest:lowest], premises[lowest+1:]...)
}

func dropLowestModule(modules []analysis.Scored) []analysis.Scored {
	lowest := 0
	for i, m := range modules {
		if m.Score < modules[lowest].Score {
			lowest = i
		}
	}
	return append(modules[:lowest:lowest], modules[lowest+1:]...)
}

func render(primary, secondary []premise.Scored, modules []analysis.Scored, inputText string, mode analysis.Mode, wisdomOverlay bool) string {
	var b strings.Builder

	b.WriteString("You are an analytical reasoning assistant. Analyze the input below by working\n")
	b.WriteString("through the listed analytical modules, grounded in the listed interpretive premises.\n\n")

	fmt.Fprintf(&b, "Analysis mode: %s (output: %s, focus: %s)\n\n", mode.Name, mode.OutputMode, mode.Focus)

	if len(primary) > 0 {
		b.WriteString("PRIMARY INTERPRETIVE LENSES:\n")
		for _, p := range primary {
			fmt.Fprintf(&b, "[PREMISE %s] %s\n%s\n\n", p.Premise.ID, p.Premise.Title, p.Premise.Content)
		}
	}
	if len(secondary) > 0 {
		b.WriteString("SUPPORTING CONTEXT:\n")
		for _, p := range secondary {
			fmt.Fprintf(&b, "[PREMISE %s] %s\n\n", p.Premise.ID, p.Premise.Title)
		}
	}
	if wisdomOverlay {
		b.WriteString("WISDOM OVERLAY ACTIVE: apply the premises as deep interpretive lenses, not surface constraints.\n\n")
	}

	b.WriteString("ANALYTICAL MODULES (run in this order):\n")
	for _, m := range modules {
		fmt.Fprintf(&b, "[MODULE %s] %s\nPurpose: %s\n", m.Module.ID, m.Module.Name, m.Module.Purpose)
		for _, q := range m.Module.CoreQuestions {
			fmt.Fprintf(&b, "- %s\n", q)
		}
		b.WriteString("\n")
	}

	b.WriteString("RESPONSE FORMAT:\n")
	b.WriteString("Write one markdown section per module, headed exactly \"## <module id>: <module name>\".\n")
	if mode.OutputMode == "brief" {
		b.WriteString("Keep each section to a short paragraph.\n")
	} else {
		b.WriteString("Develop each section fully, citing the premise ids you rely on.\n")
	}
	b.WriteString("Close with a \"## Synthesis\" section. Optionally append a fenced ```rai-assessment\n")
	b.WriteString("code block containing JSON {\"sections\": {\"<id>\": <confidence 0..1>, ...}}.\n\n")

	b.WriteString("INPUT:\n")
	b.WriteString(inputText)
	b.WriteString("\n")

	return b.String()
}

// Markers re-derives the premise and module identifiers embedded in an
// assembled prompt. The structural [PREMISE x]/[MODULE y] convention exists
// so a selection can be recovered from its prompt.
func Markers(text string) (premiseIDs, moduleIDs []string) {
	for _, line := range strings.Split(text, "\n") {
		if id, ok := marker(line, "[PREMISE "); ok {
			premiseIDs = append(premiseIDs, id)
		}
		if id, ok := marker(line, "[MODULE "); ok {
			moduleIDs = append(moduleIDs, id)
		}
	}
	return premiseIDs, moduleIDs
}

func marker(line, prefix string) (string, bool) {
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return "", false
	}
	return line[len(prefix):end], true
}
