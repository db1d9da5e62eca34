package observability

import (
	"log"
	"sync"
	"time"

	"raicompanion/internal/provider"
)

// DispatchObserver logs every outbound provider attempt and keeps
// per-provider counters for the health endpoint.
type DispatchObserver struct {
	logger *log.Logger

	mu       sync.Mutex
	calls    map[string]int64
	failures map[string]int64
	warned   map[string]bool
}

func NewDispatchObserver(logger *log.Logger) *DispatchObserver {
	if logger == nil {
		logger = log.Default()
	}
	return &DispatchObserver{
		logger:   logger,
		calls:    make(map[string]int64),
		failures: make(map[string]int64),
		warned:   make(map[string]bool),
	}
}

func (o *DispatchObserver) ObserveAttempt(providerName string, kind provider.FailureKind, latency time.Duration, attempt int) {
	if o == nil {
		return
	}
	o.mu.Lock()
	o.calls[providerName]++
	if kind != "" {
		o.failures[providerName]++
	}
	calls := o.calls[providerName]
	failures := o.failures[providerName]
	o.mu.Unlock()

	if kind == "" {
		o.logger.Printf("dispatch attempt provider=%s outcome=ok latency_ms=%d attempt=%d", providerName, latency.Milliseconds(), attempt)
	} else {
		o.logger.Printf("dispatch attempt provider=%s outcome=%s latency_ms=%d attempt=%d", providerName, kind, latency.Milliseconds(), attempt)
	}

	// Alert hook once a provider's failure rate crosses half its traffic.
	if calls >= 10 && failures*2 > calls {
		o.mu.Lock()
		alreadyWarned := o.warned[providerName]
		if !alreadyWarned {
			o.warned[providerName] = true
		}
		o.mu.Unlock()
		if !alreadyWarned {
			o.logger.Printf("dispatch warning provider=%s calls=%d failures=%d", providerName, calls, failures)
		}
	}
}

// Counters returns a snapshot of per-provider call and failure counts.
func (o *DispatchObserver) Counters() (calls, failures map[string]int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	calls = make(map[string]int64, len(o.calls))
	failures = make(map[string]int64, len(o.failures))
	for k, v := range o.calls {
		calls[k] = v
	}
	for k, v := range o.failures {
		failures[k] = v
	}
	return calls, failures
}
