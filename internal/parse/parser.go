// Package parse decomposes raw model responses into named sections with
// per-section confidence scores. It trusts the model to format content and
// only enforces the structural contract: markdown section headers plus an
// optional self-assessment block.
package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrMalformedResponse means the raw text had no recoverable section
// structure. Low-quality content inside well-formed sections is never an
// error; only structural non-conformance is.
var ErrMalformedResponse = errors.New("parse: response has no section structure")

// neutralConfidence is used when the heuristics find no signal either way.
const neutralConfidence = 0.5

// assessmentFence delimits the optional model self-assessment JSON block.
const assessmentFence = "```rai-assessment"

// assessmentSchema constrains the self-assessment block: confidence values
// must be numbers in [0,1] keyed by section name.
const assessmentSchema = `{
	"type": "object",
	"required": ["sections"],
	"properties": {
		"sections": {
			"type": "object",
			"additionalProperties": {"type": "number", "minimum": 0, "maximum": 1}
		}
	}
}`

var compiledAssessment = mustCompileAssessment()

func mustCompileAssessment() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("assessment.json", strings.NewReader(assessmentSchema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("assessment.json")
}

// Output is a fully parsed response. It is constructed whole or not at all;
// callers never see a partially populated Output.
type Output struct {
	// Sections maps section key (the module id or title before the colon)
	// to the section body text.
	Sections map[string]string `json:"sections"`
	// Order preserves the section sequence from the raw response.
	Order []string `json:"order"`
	// Confidences holds one score in [0,1] per section.
	Confidences map[string]float64 `json:"confidences"`
}

// Synthesis returns the synthesis section body, if present.
func (o *Output) Synthesis() string { return o.Sections["Synthesis"] }

type Parser struct{}

func NewParser() *Parser { return &Parser{} }

// Parse decomposes rawText into sections, scores each section, and merges
// the model's own assessment when a valid one is present. An invalid
// assessment block is dropped, not fatal.
func (p *Parser) Parse(rawText string) (*Output, error) {
	body, assessment := splitAssessment(rawText)

	out := &Output{
		Sections:    make(map[string]string),
		Confidences: make(map[string]float64),
	}

	var key string
	var buf strings.Builder
	inFence := false
	flush := func() {
		if key == "" {
			return
		}
		text := strings.TrimSpace(buf.String())
		out.Sections[key] = text
		out.Order = append(out.Order, key)
		out.Confidences[key] = scoreSection(text)
		buf.Reset()
	}

	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
		}
		if !inFence && strings.HasPrefix(trimmed, "## ") && !strings.HasPrefix(trimmed, "###") {
			flush()
			key = sectionKey(strings.TrimSpace(trimmed[3:]))
			continue
		}
		if key != "" {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	flush()

	if len(out.Order) == 0 {
		return nil, fmt.Errorf("%w: %d bytes of unsectioned text", ErrMalformedResponse, len(rawText))
	}

	if assessment != "" {
		p.mergeAssessment(out, assessment)
	}
	return out, nil
}

// sectionKey reduces a header like "CL-0: Normalization Check" to "CL-0".
// Headers without a colon keep the full title.
func sectionKey(header string) string {
	if i := strings.IndexByte(header, ':'); i > 0 {
		return strings.TrimSpace(header[:i])
	}
	return header
}

// splitAssessment removes the fenced self-assessment block from the text
// and returns its JSON payload separately.
func splitAssessment(text string) (body, assessment string) {
	start := strings.Index(text, assessmentFence)
	if start < 0 {
		return text, ""
	}
	rest := text[start+len(assessmentFence):]
	end := strings.Index(rest, "```")
	if end < 0 {
		return text, ""
	}
	body = text[:start] + rest[end+3:]
	return body, strings.TrimSpace(rest[:end])
}

// mergeAssessment overrides heuristic scores with the model's own, after
// schema validation. A malformed block is logged and ignored.
func (p *Parser) mergeAssessment(out *Output, payload string) {
	var decoded any
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		log.Printf("parse assessment=dropped reason=%q", err)
		return
	}
	if err := compiledAssessment.Validate(decoded); err != nil {
		log.Printf("parse assessment=dropped reason=%q", err)
		return
	}
	sections := decoded.(map[string]any)["sections"].(map[string]any)
	for key, v := range sections {
		score, ok := v.(float64)
		if !ok {
			continue
		}
		if _, present := out.Sections[key]; present {
			out.Confidences[key] = score
		}
	}
}

// hedges are phrases that lower the completeness-derived confidence.
var hedges = []string{
	"might", "may be", "possibly", "perhaps", "unclear",
	"uncertain", "hard to say", "cannot determine", "it depends",
}

// scoreSection derives a confidence score from completeness and hedging
// language. Scores stay in [0,1]; an empty section bottoms out low rather
// than failing.
func scoreSection(text string) float64 {
	score := neutralConfidence

	switch n := len(text); {
	case n == 0:
		return 0.1
	case n < 40:
		score -= 0.2
	case n >= 150:
		score += 0.2
	}

	lower := strings.ToLower(text)
	penalty := 0.0
	for _, h := range hedges {
		penalty += 0.05 * float64(strings.Count(lower, h))
	}
	if penalty > 0.2 {
		penalty = 0.2
	}
	score -= penalty

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}
