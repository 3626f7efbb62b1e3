package sdk

import (
	"errors"
	"sync"
	"time"
)

// Observer provides hooks for monitoring client operations. Implement it to
// export metrics or debug retry behavior. The client calls observer methods
// inline, so implementations should be fast and non-blocking.
//
// Example:
//
//	type LogObserver struct{ log *logrus.Logger }
//
//	func (o *LogObserver) OnRetryAttempt(method, path string, attempt int, delay time.Duration, err error) {
//	    o.log.WithError(err).Warnf("retrying %s %s (attempt %d, waiting %s)", method, path, attempt, delay)
//	}
type Observer interface {
	// OnRequestStart is called when a logical call starts, before the
	// first attempt.
	OnRequestStart(method, path string)

	// OnRequestEnd is called when a logical call completes, after all
	// retries. err is nil on success.
	OnRequestEnd(method, path string, duration time.Duration, err error)

	// OnRetryAttempt is called before each retry wait. attempt starts at 1
	// and delay is the wait about to be taken.
	OnRetryAttempt(method, path string, attempt int, delay time.Duration, err error)

	// OnRateLimitUpdate is called whenever a response carried rate-limit
	// headers, with the freshly observed window.
	OnRateLimitUpdate(state RateLimitState)
}

// NoopObserver is the default Observer. It does nothing and has no overhead.
type NoopObserver struct{}

// OnRequestStart does nothing
func (n *NoopObserver) OnRequestStart(method, path string) {}

// OnRequestEnd does nothing
func (n *NoopObserver) OnRequestEnd(method, path string, duration time.Duration, err error) {}

// OnRetryAttempt does nothing
func (n *NoopObserver) OnRetryAttempt(method, path string, attempt int, delay time.Duration, err error) {
}

// OnRateLimitUpdate does nothing
func (n *NoopObserver) OnRateLimitUpdate(state RateLimitState) {}

// MetricsCollector is a simple in-memory Observer. It counts requests,
// failures by classification, retries, and remembers the last rate-limit
// window. Intended for tests and diagnostics; production systems should
// export to their own monitoring instead.
type MetricsCollector struct {
	mu sync.Mutex

	requests      int64
	failures      int64
	retries       int64
	totalDuration time.Duration
	errorsByType  map[string]int64
	lastRateLimit *RateLimitState
}

// NewMetricsCollector creates an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		errorsByType: make(map[string]int64),
	}
}

// OnRequestStart records a request
func (m *MetricsCollector) OnRequestStart(method, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
}

// OnRequestEnd records the outcome and latency
func (m *MetricsCollector) OnRequestEnd(method, path string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalDuration += duration
	if err != nil {
		m.failures++
		m.errorsByType[errorTypeOf(err).String()]++
	}
}

// OnRetryAttempt records a retry
func (m *MetricsCollector) OnRetryAttempt(method, path string, attempt int, delay time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries++
}

// OnRateLimitUpdate remembers the last observed window
func (m *MetricsCollector) OnRateLimitUpdate(state RateLimitState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRateLimit = &state
}

// Snapshot returns the collected metrics as a map.
func (m *MetricsCollector) Snapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	byType := make(map[string]int64, len(m.errorsByType))
	for k, v := range m.errorsByType {
		byType[k] = v
	}

	snapshot := map[string]interface{}{
		"requests":       m.requests,
		"failures":       m.failures,
		"retries":        m.retries,
		"total_duration": m.totalDuration,
		"errors_by_type": byType,
	}
	if m.lastRateLimit != nil {
		state := *m.lastRateLimit
		snapshot["rate_limit"] = state
	}
	return snapshot
}

func errorTypeOf(err error) ErrorType {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Type
	}
	return ErrorTypeUnknown
}
