package companion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"raicompanion/internal/analysis"
	"raicompanion/internal/cache"
	"raicompanion/internal/dispatch"
	"raicompanion/internal/parse"
	"raicompanion/internal/premise"
	"raicompanion/internal/prompt"
	"raicompanion/internal/store"
)

// mockDelay approximates real provider latency when simulate_delays is on.
const mockDelay = 800 * time.Millisecond

var ErrEmptyInput = errors.New("companion: empty input")

// InputTooLongError rejects oversized inputs before any selection work.
type InputTooLongError struct {
	Length int
	Max    int
}

func (e *InputTooLongError) Error() string {
	return fmt.Sprintf("companion: input length %d exceeds limit %d", e.Length, e.Max)
}

// Request is one analysis invocation.
type Request struct {
	Input    string
	Mode     string
	Provider string
	// Modules forces an explicit module list instead of auto-selection.
	Modules []string
}

// Result is the structured outcome of a completed analysis.
type Result struct {
	ID          string               `json:"id"`
	Mode        string               `json:"mode"`
	Provider    string               `json:"provider"`
	Model       string               `json:"model"`
	Sections    map[string]string    `json:"sections"`
	Order       []string             `json:"order"`
	Confidences map[string]float64   `json:"confidences"`
	Premises    []string             `json:"premises"`
	Modules     []string             `json:"modules"`
	Attempts    []dispatch.Attempt   `json:"attempts"`
	TokensUsed  int                  `json:"tokens_used"`
	LatencyMS   int                  `json:"latency_ms"`
	Cached      bool                 `json:"cached"`
}

// Engine runs the analysis pipeline. One instance serves all requests;
// every stage is either stateless or synchronized.
type Engine struct {
	premises     *premise.Selector
	modules      *analysis.Selector
	assembler    *prompt.Assembler
	dispatcher   *dispatch.Engine
	parser       *parse.Parser
	store        *store.Store
	cache        *cache.Cache
	defaultModel string
	fallbacks    []string
	maxInput     int
	promptBudget int
}

// Analyze validates the input, selects premises and modules concurrently,
// assembles the prompt, dispatches it, and parses the response. The history
// store and cache are best effort: their failures are logged, never fatal.
func (e *Engine) Analyze(ctx context.Context, req Request) (*Result, error) {
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return nil, ErrEmptyInput
	}
	if e.maxInput > 0 && len(input) > e.maxInput {
		return nil, &InputTooLongError{Length: len(input), Max: e.maxInput}
	}

	providerName := req.Provider
	if providerName == "" {
		providerName = e.defaultModel
	}
	modeName := req.Mode
	if modeName == "" {
		modeName = "guided"
	}

	key := cache.Key(input, modeName, providerName)
	if e.cache != nil && len(req.Modules) == 0 {
		var cached Result
		if err := e.cache.GetAnalysis(ctx, key, &cached); err == nil {
			cached.Cached = true
			e.countUsage(ctx, "cache_hits")
			return &cached, nil
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Printf("companion cache=get_failed key=%s err=%q", key, err)
		}
	}

	e.countUsage(ctx, "requests_total")
	start := time.Now()

	// Premise and module selection are independent reads of the library.
	var (
		wg        sync.WaitGroup
		selection premise.Selection
		modules   []analysis.Scored
		mode      analysis.Mode
		selErr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		selection = e.premises.Select(input)
	}()
	go func() {
		defer wg.Done()
		modules, mode, selErr = e.modules.Select(modeName, input, req.Modules)
	}()
	wg.Wait()
	if selErr != nil {
		e.countUsage(ctx, "requests_failed")
		return nil, selErr
	}

	text, err := e.assembler.Assemble(selection, modules, input, mode, e.promptBudget)
	if err != nil {
		e.countUsage(ctx, "requests_failed")
		return nil, err
	}

	dres, err := e.dispatcher.Dispatch(ctx, providerName, text, e.fallbacks)
	if err != nil {
		e.countUsage(ctx, "requests_failed")
		return nil, err
	}

	output, err := e.parser.Parse(dres.Text)
	if err != nil {
		e.countUsage(ctx, "requests_failed")
		return nil, err
	}

	res := &Result{
		ID:          uuid.NewString(),
		Mode:        mode.Name,
		Provider:    dres.Provider,
		Model:       dres.Model,
		Sections:    output.Sections,
		Order:       output.Order,
		Confidences: output.Confidences,
		Premises:    premiseIDs(selection),
		Modules:     moduleIDs(modules),
		Attempts:    dres.Attempts,
		TokensUsed:  dres.TokensUsed,
		LatencyMS:   int(time.Since(start).Milliseconds()),
	}

	e.record(ctx, input, res)
	if e.cache != nil && len(req.Modules) == 0 {
		if err := e.cache.PutAnalysis(ctx, key, res); err != nil {
			log.Printf("companion cache=put_failed key=%s err=%q", key, err)
		}
	}
	e.countUsage(ctx, "requests_succeeded")
	return res, nil
}

func (e *Engine) record(ctx context.Context, input string, res *Result) {
	if e.store == nil {
		return
	}
	attemptsJSON, _ := json.Marshal(res.Attempts)
	if _, err := e.store.RecordAnalysis(ctx, store.Analysis{
		ID:          res.ID,
		Input:       input,
		Mode:        res.Mode,
		Provider:    res.Provider,
		Model:       res.Model,
		Sections:    res.Sections,
		Confidences: res.Confidences,
		Attempts:    attemptsJSON,
		TokensUsed:  res.TokensUsed,
		LatencyMS:   res.LatencyMS,
	}); err != nil {
		log.Printf("companion store=record_failed id=%s err=%q", res.ID, err)
	}
}

func (e *Engine) countUsage(ctx context.Context, name string) {
	if e.cache == nil {
		return
	}
	if err := e.cache.IncrUsage(ctx, name); err != nil {
		log.Printf("companion usage=incr_failed counter=%s err=%q", name, err)
	}
}

func premiseIDs(sel premise.Selection) []string {
	out := make([]string, 0, len(sel.Premises))
	for _, p := range sel.Premises {
		out = append(out, p.Premise.ID)
	}
	return out
}

func moduleIDs(modules []analysis.Scored) []string {
	out := make([]string, 0, len(modules))
	for _, m := range modules {
		out = append(out, m.Module.ID)
	}
	return out
}
