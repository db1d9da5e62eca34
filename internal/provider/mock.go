package provider

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Mock is the injectable test double behind the mock_llm_responses and
// simulate_delays dev flags. It produces a deterministic sectioned response
// echoing the module markers found in the prompt, so the full pipeline
// (assemble, dispatch, parse) runs without a network.
type Mock struct {
	model string
	delay time.Duration
}

func NewMock(model string, delay time.Duration) *Mock {
	if model == "" {
		model = "mock-analyst"
	}
	return &Mock{model: model, delay: delay}
}

func (m *Mock) Name() string  { return "mock" }
func (m *Mock) Model() string { return m.model }

func (m *Mock) Send(ctx context.Context, req Request) (*Response, error) {
	callCtx, cancel := callContext(ctx, req)
	defer cancel()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-callCtx.Done():
			return nil, classifyTransport(m.Name(), callCtx.Err())
		}
	}

	start := time.Now()
	var b strings.Builder
	for _, id := range moduleMarkers(req.Prompt) {
		fmt.Fprintf(&b, "## %s: Simulated Analysis\nThe input was examined under module %s. "+
			"No external model was consulted; this is a development response.\n\n", id, id)
	}
	if b.Len() == 0 {
		b.WriteString("## CL-0: Simulated Analysis\nDevelopment response without module markers.\n\n")
	}
	b.WriteString("## Synthesis\nSimulated synthesis of the analysis above.\n\n")
	b.WriteString("```rai-assessment\n{\"sections\": {\"Synthesis\": 0.5}}\n```\n")

	text := b.String()
	return &Response{
		Text:       text,
		TokensUsed: len(text) / 4,
		Latency:    time.Since(start),
	}, nil
}

func moduleMarkers(prompt string) []string {
	var ids []string
	for _, line := range strings.Split(prompt, "\n") {
		const prefix = "[MODULE "
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		if end := strings.IndexByte(line, ']'); end > len(prefix) {
			ids = append(ids, line[len(prefix):end])
		}
	}
	return ids
}
