package sdk

import (
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Rate-limit headers sent by the payment API on every response.
const (
	headerRateLimitLimit     = "x-ratelimit-limit"
	headerRateLimitRemaining = "x-ratelimit-remaining"
	headerRateLimitReset     = "x-ratelimit-reset"
	headerRetryAfter         = "Retry-After"
)

// RateLimitState is the most recently observed rate-limit window.
//
// It is a best-effort hint, not an authoritative counter: concurrent calls
// update it in whatever order their responses arrive, so readers should treat
// it as advisory when deciding whether to back off pre-emptively.
type RateLimitState struct {
	// Limit is the maximum number of requests per window
	Limit int `json:"limit"`
	// Remaining is the number of requests left in the current window
	Remaining int `json:"remaining"`
	// Reset is the epoch second at which the window resets
	Reset int64 `json:"reset"`
}

// ResetTime returns the window reset as a time.Time.
func (s RateLimitState) ResetTime() time.Time {
	return time.Unix(s.Reset, 0)
}

// Exhausted reports whether the observed window has no requests left and
// has not yet reset.
func (s RateLimitState) Exhausted(now time.Time) bool {
	return s.Remaining <= 0 && now.Before(s.ResetTime())
}

// rateLimitTracker holds the last rate-limit window parsed from response
// headers. It is shared by all calls on one client; last response wins.
type rateLimitTracker struct {
	mu    sync.RWMutex
	state *RateLimitState
}

func newRateLimitTracker() *rateLimitTracker {
	return &rateLimitTracker{}
}

// update parses the rate-limit headers if present. Absent headers leave the
// prior value of each field untouched, so the state never regresses to nil
// once populated. Malformed values are dropped silently; reporting them is
// the caller's concern.
func (t *rateLimitTracker) update(header http.Header) {
	limit, hasLimit := parseIntHeader(header, headerRateLimitLimit)
	remaining, hasRemaining := parseIntHeader(header, headerRateLimitRemaining)
	reset, hasReset := parseInt64Header(header, headerRateLimitReset)

	if !hasLimit && !hasRemaining && !hasReset {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == nil {
		t.state = &RateLimitState{}
	}
	if hasLimit {
		t.state.Limit = limit
	}
	if hasRemaining {
		t.state.Remaining = remaining
	}
	if hasReset {
		t.state.Reset = reset
	}
}

// snapshot returns a copy of the current state, or nil before the first
// response carrying rate-limit headers has been observed.
func (t *rateLimitTracker) snapshot() *RateLimitState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.state == nil {
		return nil
	}
	state := *t.state
	return &state
}

func parseIntHeader(header http.Header, name string) (int, bool) {
	raw := header.Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

func parseInt64Header(header http.Header, name string) (int64, bool) {
	raw := header.Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
