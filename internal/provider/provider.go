package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Request is the immutable payload for one outbound model call.
type Request struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// Response is a successful completion from a backend.
type Response struct {
	Text       string
	TokensUsed int
	Latency    time.Duration
}

// FailureKind normalizes heterogeneous backend failures into one taxonomy.
type FailureKind string

const (
	AuthError             FailureKind = "auth_error"
	RateLimited           FailureKind = "rate_limited"
	Timeout               FailureKind = "timeout"
	InvalidResponse       FailureKind = "invalid_response"
	TransientNetworkError FailureKind = "transient_network_error"
	UnknownError          FailureKind = "unknown_error"
)

// Retryable reports whether the dispatch engine may retry this kind.
func (k FailureKind) Retryable() bool {
	return k == RateLimited || k == TransientNetworkError
}

// Error is a classified backend failure.
type Error struct {
	Provider string
	Kind     FailureKind
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the failure kind from an adapter error.
func KindOf(err error) FailureKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return UnknownError
}

// Provider is one LLM backend behind the uniform adapter interface.
// Send performs exactly one outbound call: no internal retries, and the
// request timeout is a hard upper bound on call duration.
type Provider interface {
	Send(ctx context.Context, req Request) (*Response, error)
	Name() string
	Model() string
}

func classifyStatus(name string, status int, body string) *Error {
	kind := UnknownError
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = AuthError
	case status == http.StatusTooManyRequests:
		kind = RateLimited
	case status >= 500:
		kind = TransientNetworkError
	case status == http.StatusRequestTimeout:
		kind = Timeout
	}
	return &Error{Provider: name, Kind: kind, Err: fmt.Errorf("http %d: %s", status, body)}
}

func classifyTransport(name string, err error) *Error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Provider: name, Kind: Timeout, Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Provider: name, Kind: Timeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Provider: name, Kind: Timeout, Err: err}
		}
		return &Error{Provider: name, Kind: TransientNetworkError, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &Error{Provider: name, Kind: TransientNetworkError, Err: err}
	}
	return &Error{Provider: name, Kind: UnknownError, Err: err}
}

// callContext bounds a single outbound call by the request timeout.
func callContext(ctx context.Context, req Request) (context.Context, context.CancelFunc) {
	if req.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, req.Timeout)
}
