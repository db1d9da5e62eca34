package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestKeyStableAndDistinct(t *testing.T) {
	a := Key("input text", "guided", "openai")
	b := Key("input text", "guided", "openai")
	if a != b {
		t.Fatalf("identical requests must share a key: %s vs %s", a, b)
	}
	if Key("input text", "quick", "openai") == a {
		t.Fatalf("mode must contribute to the key")
	}
	if Key("input text", "guided", "anthropic") == a {
		t.Fatalf("provider must contribute to the key")
	}
	if len(a) != len("analysis:")+64 {
		t.Fatalf("unexpected key shape: %s", a)
	}
}

func testCache(t *testing.T) *Cache {
	t.Helper()
	url := os.Getenv("RAI_TEST_REDIS_URL")
	if url == "" {
		url = "redis://127.0.0.1:6379/15"
	}
	c, err := New(url, time.Minute)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		t.Skipf("redis unavailable for cache tests: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestPutGetRoundTrip(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	type payload struct {
		Sections map[string]string `json:"sections"`
	}
	key := Key("round trip input", "guided", "mock")
	want := payload{Sections: map[string]string{"Synthesis": "cached text"}}
	if err := c.PutAnalysis(ctx, key, want); err != nil {
		t.Fatalf("put: %v", err)
	}

	var got payload
	if err := c.GetAnalysis(ctx, key, &got); err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Sections["Synthesis"] != "cached text" {
		t.Fatalf("round trip lost data: %+v", got)
	}
}

func TestGetMiss(t *testing.T) {
	c := testCache(t)
	var v map[string]any
	err := c.GetAnalysis(context.Background(), Key("never stored", "quick", "mock"), &v)
	if !errors.Is(err, ErrMiss) {
		t.Fatalf("expected miss, got %v", err)
	}
}

func TestUsageCounters(t *testing.T) {
	c := testCache(t)
	ctx := context.Background()

	name := "test_counter_" + time.Now().Format("150405.000000000")
	before, err := c.Usage(ctx, name)
	if err != nil || before != 0 {
		t.Fatalf("fresh counter = %d (%v), want 0", before, err)
	}
	for i := 0; i < 3; i++ {
		if err := c.IncrUsage(ctx, name); err != nil {
			t.Fatalf("incr: %v", err)
		}
	}
	after, err := c.Usage(ctx, name)
	if err != nil || after != 3 {
		t.Fatalf("counter = %d (%v), want 3", after, err)
	}
}
