package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"raicompanion/internal/provider"
)

// ErrUnknownProvider covers both unresolved names and disabled providers.
var ErrUnknownProvider = errors.New("dispatch: unknown provider")

// errOverallDeadline marks the engine's own wall-clock ceiling as the cause
// of context expiry, so it can be told apart from caller cancellation.
var errOverallDeadline = errors.New("dispatch: overall deadline exceeded")

// Failure kinds surfaced by the engine on top of the adapter taxonomy.
const (
	KindUnknownProvider provider.FailureKind = "unknown_provider"
	KindOverallTimeout  provider.FailureKind = "overall_timeout"
	KindCanceled        provider.FailureKind = "canceled"
)

// Attempt records one outbound call for observability.
type Attempt struct {
	Provider string               `json:"provider"`
	Kind     provider.FailureKind `json:"kind,omitempty"`
	Latency  time.Duration        `json:"latency"`
	Message  string               `json:"message,omitempty"`
}

// Result is a successful dispatch with its full attempt history.
type Result struct {
	Text       string
	Provider   string
	Model      string
	TokensUsed int
	Latency    time.Duration
	Attempts   []Attempt
}

// Error is a failed dispatch carrying the discriminant kind and every
// attempt made across retries and failover.
type Error struct {
	Kind     provider.FailureKind
	Attempts []Attempt
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("dispatch: %s after %d attempts: %v", e.Kind, len(e.Attempts), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Observer receives one event per outbound attempt. A nil observer is valid.
type Observer interface {
	ObserveAttempt(providerName string, kind provider.FailureKind, latency time.Duration, attempt int)
}

// Engine resolves a provider by name or alias and drives the bounded
// retry/failover state machine. Safe for concurrent use; all fields are
// read-only after construction.
type Engine struct {
	reg         *Registry
	backoffBase time.Duration
	overall     time.Duration
	observer    Observer
}

func NewEngine(reg *Registry, backoffBase, overallTimeout time.Duration, observer Observer) *Engine {
	if backoffBase <= 0 {
		backoffBase = 500 * time.Millisecond
	}
	return &Engine{reg: reg, backoffBase: backoffBase, overall: overallTimeout, observer: observer}
}

// machineState enumerates the retry/failover state machine. Transitions:
// attempting -> attempting (retryable failure, budget left),
// attempting -> success, attempting -> exhausted (budget spent on the last
// provider in the chain).
type machineState int

const (
	stateAttempting machineState = iota
	stateSuccess
	stateExhausted
)

// Dispatch sends the prompt to the named provider, retrying only
// rate-limited and transient-network failures, then fails over to each
// fallback in order with the same prompt. The total number of outbound
// calls never exceeds the sum over the chain of (max_retries + 1), and the
// engine-wide wall clock never exceeds the configured overall timeout.
func (e *Engine) Dispatch(ctx context.Context, name, prompt string, fallbacks []string) (*Result, error) {
	primary, err := e.reg.resolve(name)
	if err != nil {
		return nil, &Error{Kind: KindUnknownProvider, Err: err}
	}

	chain := []target{primary}
	var attempts []Attempt
	for _, fb := range fallbacks {
		t, err := e.reg.resolve(fb)
		if err != nil {
			// An unresolvable fallback is recorded, not fatal; the
			// chain simply skips it.
			attempts = append(attempts, Attempt{Provider: fb, Kind: KindUnknownProvider, Message: err.Error()})
			continue
		}
		chain = append(chain, t)
	}

	if e.overall > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, e.overall, errOverallDeadline)
		defer cancel()
	}
	start := time.Now()

	state := stateAttempting
	var lastErr error
	var lastKind provider.FailureKind

	for i := 0; i < len(chain) && state == stateAttempting; i++ {
		t := chain[i]
		res, provAttempts, kind, err := e.attemptProvider(ctx, t, prompt)
		attempts = append(attempts, provAttempts...)
		if err == nil {
			state = stateSuccess
			res.Attempts = attempts
			res.Latency = time.Since(start)
			return res, nil
		}
		lastErr = err
		lastKind = kind
		if kind == KindOverallTimeout || kind == KindCanceled {
			state = stateExhausted
			break
		}
		if i == len(chain)-1 {
			state = stateExhausted
		}
	}

	return nil, &Error{Kind: lastKind, Attempts: attempts, Err: lastErr}
}

// attemptProvider runs the bounded retry loop against one provider:
// at most settings.MaxRetries+1 calls, exponential backoff with jitter
// capped at the provider timeout between retryable failures.
func (e *Engine) attemptProvider(ctx context.Context, t target, prompt string) (*Result, []Attempt, provider.FailureKind, error) {
	backoff := retry.WithCappedDuration(t.settings.Timeout,
		retry.WithJitterPercent(20, retry.NewExponential(e.backoffBase)))

	req := provider.Request{
		Model:       t.model,
		Prompt:      prompt,
		MaxTokens:   t.settings.MaxTokens,
		Temperature: t.settings.Temperature,
		Timeout:     t.settings.Timeout,
	}

	var attempts []Attempt
	var lastErr error
	lastKind := provider.UnknownError

	for call := 0; call <= t.settings.MaxRetries; call++ {
		if ctx.Err() != nil {
			kind, err := ctxFailure(ctx)
			return nil, attempts, kind, err
		}

		callStart := time.Now()
		resp, err := t.provider.Send(ctx, req)
		latency := time.Since(callStart)

		if err == nil {
			attempts = append(attempts, Attempt{Provider: t.provider.Name(), Latency: latency})
			e.observe(t.provider.Name(), "", latency, len(attempts))
			model := t.model
			if model == "" {
				model = t.provider.Model()
			}
			return &Result{
				Text:       resp.Text,
				Provider:   t.provider.Name(),
				Model:      model,
				TokensUsed: resp.TokensUsed,
			}, attempts, "", nil
		}

		kind := provider.KindOf(err)
		attempts = append(attempts, Attempt{Provider: t.provider.Name(), Kind: kind, Latency: latency, Message: err.Error()})
		e.observe(t.provider.Name(), kind, latency, len(attempts))
		lastErr = err
		lastKind = kind

		if !kind.Retryable() {
			break
		}
		if call == t.settings.MaxRetries {
			break
		}
		delay, stop := backoff.Next()
		if stop {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			kind, err := ctxFailure(ctx)
			return nil, attempts, kind, err
		}
	}
	return nil, attempts, lastKind, lastErr
}

// ctxFailure labels an expired context. Only the engine's own wall-clock
// ceiling counts as overall_timeout; a caller cancelling (or a caller
// deadline expiring) abandons the dispatch instead.
func ctxFailure(ctx context.Context) (provider.FailureKind, error) {
	cause := context.Cause(ctx)
	if errors.Is(cause, errOverallDeadline) {
		return KindOverallTimeout, fmt.Errorf("dispatch: overall deadline exceeded: %w", ctx.Err())
	}
	return KindCanceled, fmt.Errorf("dispatch: abandoned: %w", cause)
}

func (e *Engine) observe(name string, kind provider.FailureKind, latency time.Duration, attempt int) {
	if e.observer == nil {
		return
	}
	e.observer.ObserveAttempt(name, kind, latency, attempt)
}
