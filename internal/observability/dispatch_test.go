package observability

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"

	"raicompanion/internal/provider"
)

func TestObserveAttemptCounters(t *testing.T) {
	o := NewDispatchObserver(log.New(&bytes.Buffer{}, "", 0))

	o.ObserveAttempt("openai", "", 10*time.Millisecond, 1)
	o.ObserveAttempt("openai", provider.RateLimited, 5*time.Millisecond, 2)
	o.ObserveAttempt("anthropic", "", time.Millisecond, 1)

	calls, failures := o.Counters()
	if calls["openai"] != 2 || calls["anthropic"] != 1 {
		t.Fatalf("call counts wrong: %v", calls)
	}
	if failures["openai"] != 1 || failures["anthropic"] != 0 {
		t.Fatalf("failure counts wrong: %v", failures)
	}
}

func TestObserveAttemptLogsOutcome(t *testing.T) {
	var buf bytes.Buffer
	o := NewDispatchObserver(log.New(&buf, "", 0))

	o.ObserveAttempt("ollama", provider.Timeout, 30*time.Millisecond, 1)
	if !strings.Contains(buf.String(), "provider=ollama") || !strings.Contains(buf.String(), "outcome=timeout") {
		t.Fatalf("log line missing fields: %q", buf.String())
	}
}

func TestWarningFiresOnceAboveFailureRate(t *testing.T) {
	var buf bytes.Buffer
	o := NewDispatchObserver(log.New(&buf, "", 0))

	for i := 0; i < 12; i++ {
		o.ObserveAttempt("gemini", provider.TransientNetworkError, time.Millisecond, 1)
	}
	if n := strings.Count(buf.String(), "dispatch warning provider=gemini"); n != 1 {
		t.Fatalf("expected exactly one warning, got %d", n)
	}
}
