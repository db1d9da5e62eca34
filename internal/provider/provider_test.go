package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		status int
		kind   FailureKind
	}{
		{http.StatusUnauthorized, AuthError},
		{http.StatusForbidden, AuthError},
		{http.StatusTooManyRequests, RateLimited},
		{http.StatusInternalServerError, TransientNetworkError},
		{http.StatusBadGateway, TransientNetworkError},
		{http.StatusRequestTimeout, Timeout},
		{http.StatusTeapot, UnknownError},
	}
	for _, c := range cases {
		err := classifyStatus("test", c.status, "body")
		if err.Kind != c.kind {
			t.Fatalf("status %d classified %s, want %s", c.status, err.Kind, c.kind)
		}
	}
}

func TestClassifyTransportDeadline(t *testing.T) {
	err := classifyTransport("test", context.DeadlineExceeded)
	if err.Kind != Timeout {
		t.Fatalf("deadline classified %s, want timeout", err.Kind)
	}
}

func TestRetryableKinds(t *testing.T) {
	if !RateLimited.Retryable() || !TransientNetworkError.Retryable() {
		t.Fatalf("rate-limited and transient must be retryable")
	}
	for _, k := range []FailureKind{AuthError, Timeout, InvalidResponse, UnknownError} {
		if k.Retryable() {
			t.Fatalf("%s must not be retryable", k)
		}
	}
}

func TestKindOf(t *testing.T) {
	err := &Error{Provider: "p", Kind: RateLimited, Err: errors.New("x")}
	if KindOf(err) != RateLimited {
		t.Fatalf("expected rate_limited")
	}
	if KindOf(errors.New("plain")) != UnknownError {
		t.Fatalf("expected unknown for unclassified error")
	}
}

func TestOllamaSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"response":"## CL-0: done\ntext","eval_count":12,"done":true}`))
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "llama3")
	resp, err := o.Send(context.Background(), Request{Prompt: "hello", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(resp.Text, "## CL-0") || resp.TokensUsed != 12 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAnthropicErrorClassification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	a := NewAnthropic("key", "claude-3-sonnet-20240229", srv.URL)
	_, err := a.Send(context.Background(), Request{Prompt: "hi", Timeout: 5 * time.Second})
	if KindOf(err) != RateLimited {
		t.Fatalf("expected rate_limited, got %v", err)
	}
}

func TestGeminiSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"analysis text"}]}}],"usageMetadata":{"totalTokenCount":7}}`))
	}))
	defer srv.Close()

	g := NewGemini("key", "gemini-pro", srv.URL)
	resp, err := g.Send(context.Background(), Request{Prompt: "hi", Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if resp.Text != "analysis text" || resp.TokensUsed != 7 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestSendHonorsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "llama3")
	start := time.Now()
	_, err := o.Send(context.Background(), Request{Prompt: "hi", Timeout: 50 * time.Millisecond})
	if KindOf(err) != Timeout {
		t.Fatalf("expected timeout kind, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("timeout not enforced as hard bound")
	}
}

func TestMockEchoesModules(t *testing.T) {
	m := NewMock("", 0)
	prompt := "[MODULE CL-0] Normalization\n[MODULE SL-1] Power\nINPUT:\nx\n"
	resp, err := m.Send(context.Background(), Request{Prompt: prompt, Timeout: time.Second})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(resp.Text, "## CL-0:") || !strings.Contains(resp.Text, "## SL-1:") {
		t.Fatalf("mock response missing module sections:\n%s", resp.Text)
	}
	if !strings.Contains(resp.Text, "## Synthesis") {
		t.Fatalf("mock response missing synthesis")
	}
}

func TestMockSimulatedDelayCancellable(t *testing.T) {
	m := NewMock("", time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	_, err := m.Send(ctx, Request{Prompt: "x"})
	if err == nil {
		t.Fatalf("expected error after cancellation")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("cancellation did not abandon the simulated call")
	}
}
