// Package testdata provides a scriptable in-process payment API mock used by
// the SDK and web handler tests.
package testdata

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// MockServer is a configurable test HTTP server mimicking the payment API:
// it can verify request signatures, script per-route status sequences
// (e.g. 429, 429, 200), emit rate-limit headers, and record every request
// it receives.
type MockServer struct {
	*httptest.Server
	mu           sync.RWMutex
	handlers     map[string]HandlerFunc
	scripts      map[string]*responseScript
	secret       string
	rateLimit    *RateLimitHeaders
	requestCount atomic.Int32
	requests     []RecordedRequest
}

// HandlerFunc is a custom handler returning a status and a JSON body.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) (int, interface{})

// RecordedRequest stores information about a received request
type RecordedRequest struct {
	Method  string
	Path    string
	Headers http.Header
	Body    []byte
	Time    time.Time
}

// RateLimitHeaders configures the x-ratelimit-* headers the mock attaches to
// every response while set.
type RateLimitHeaders struct {
	Limit     int
	Remaining int
	Reset     int64
}

// responseScript replays a fixed status sequence, then repeats its last entry.
type responseScript struct {
	steps []ScriptedResponse
	index int
}

// ScriptedResponse is one step of a scripted route.
type ScriptedResponse struct {
	Status  int
	Headers map[string]string
	Body    interface{}
}

// NewMockServer creates a mock payment API with working default routes.
func NewMockServer() *MockServer {
	ms := &MockServer{
		handlers: make(map[string]HandlerFunc),
		scripts:  make(map[string]*responseScript),
		requests: make([]RecordedRequest, 0),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", ms.handleRequest)

	ms.Server = httptest.NewServer(mux)
	ms.setupDefaultHandlers()

	return ms
}

// setupDefaultHandlers installs the happy-path payment API routes.
func (ms *MockServer) setupDefaultHandlers() {
	ms.RegisterHandler("GET /api/v1/auth/validate", func(w http.ResponseWriter, r *http.Request) (int, interface{}) {
		return http.StatusOK, map[string]interface{}{
			"valid":   true,
			"account": "acct_test",
		}
	})

	ms.RegisterHandler("POST /api/v1/payments/initiate", func(w http.ResponseWriter, r *http.Request) (int, interface{}) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)

		return http.StatusCreated, map[string]interface{}{
			"payment_url":    ms.URL + "/checkout/txn_0001",
			"transaction_id": "txn_0001",
		}
	})

	ms.RegisterHandler("GET /api/v1/payments/", func(w http.ResponseWriter, r *http.Request) (int, interface{}) {
		id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		if id == "txn_missing" {
			return http.StatusNotFound, map[string]string{
				"error": "transaction not found",
				"code":  "NOT_FOUND",
			}
		}
		return http.StatusOK, map[string]interface{}{
			"transaction_id": id,
			"status":         "PENDING",
			"amount":         2500.0,
			"currency":       "XAF",
			"created_at":     time.Now().Format(time.RFC3339),
			"updated_at":     time.Now().Format(time.RFC3339),
			"callback_url":   "https://shop.example.com/hooks/paysim",
		}
	})
}

// RegisterHandler registers a handler for "METHOD /path". Patterns ending in
// "/" match as prefixes.
func (ms *MockServer) RegisterHandler(pattern string, handler HandlerFunc) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.handlers[pattern] = handler
}

// ScriptResponses replays the given steps for a route, one per request,
// repeating the last step once the script runs out.
func (ms *MockServer) ScriptResponses(pattern string, steps ...ScriptedResponse) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.scripts[pattern] = &responseScript{steps: steps}
}

// RequireSignature makes the mock verify X-Client-ID, X-Timestamp and
// X-Signature on every request with the given secret, answering 401 on
// mismatch. The digest matches the SDK signer: HMAC-SHA256 over
// METHOD\nPATH\nTIMESTAMP\nBODY with the path's leading slash stripped.
func (ms *MockServer) RequireSignature(secret string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.secret = secret
}

// SetRateLimitHeaders attaches the given window headers to every response.
func (ms *MockServer) SetRateLimitHeaders(h RateLimitHeaders) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.rateLimit = &h
}

// handleRequest records, optionally verifies, then routes the request.
func (ms *MockServer) handleRequest(w http.ResponseWriter, r *http.Request) {
	body := make([]byte, 0)
	if r.Body != nil {
		body, _ = io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	ms.mu.Lock()
	ms.requests = append(ms.requests, RecordedRequest{
		Method:  r.Method,
		Path:    r.URL.Path,
		Headers: r.Header.Clone(),
		Body:    body,
		Time:    time.Now(),
	})
	secret := ms.secret
	rateLimit := ms.rateLimit
	ms.mu.Unlock()

	ms.requestCount.Add(1)

	if rateLimit != nil {
		w.Header().Set("x-ratelimit-limit", fmt.Sprint(rateLimit.Limit))
		w.Header().Set("x-ratelimit-remaining", fmt.Sprint(rateLimit.Remaining))
		w.Header().Set("x-ratelimit-reset", fmt.Sprint(rateLimit.Reset))
	}

	if secret != "" {
		if ok, reason := verifySignature(secret, r, body); !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error": reason,
				"code":  "INVALID_SIGNATURE",
			})
			return
		}
	}

	pattern := r.Method + " " + r.URL.Path

	// Scripted sequences take precedence over handlers.
	ms.mu.Lock()
	script := ms.scripts[pattern]
	if script == nil {
		script = ms.matchScriptPrefixLocked(pattern)
	}
	var step *ScriptedResponse
	if script != nil {
		s := script.steps[min(script.index, len(script.steps)-1)]
		script.index++
		step = &s
	}
	ms.mu.Unlock()

	if step != nil {
		for k, v := range step.Headers {
			w.Header().Set(k, v)
		}
		writeJSON(w, step.Status, step.Body)
		return
	}

	ms.mu.RLock()
	handler, exact := ms.handlers[pattern]
	if !exact {
		for p, h := range ms.handlers {
			if strings.HasSuffix(p, "/") && strings.HasPrefix(pattern, p) {
				handler = h
				break
			}
		}
	}
	ms.mu.RUnlock()

	if handler == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "not found",
			"code":  "NOT_FOUND",
		})
		return
	}

	status, response := handler(w, r)
	writeJSON(w, status, response)
}

func (ms *MockServer) matchScriptPrefixLocked(pattern string) *responseScript {
	for p, s := range ms.scripts {
		if strings.HasSuffix(p, "/") && strings.HasPrefix(pattern, p) {
			return s
		}
	}
	return nil
}

// GetRequestCount returns the total number of requests received
func (ms *MockServer) GetRequestCount() int {
	return int(ms.requestCount.Load())
}

// GetRequests returns all recorded requests
func (ms *MockServer) GetRequests() []RecordedRequest {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make([]RecordedRequest, len(ms.requests))
	copy(result, ms.requests)
	return result
}

// Reset clears recorded requests and rewinds all scripts.
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.requestCount.Store(0)
	ms.requests = ms.requests[:0]
	for _, s := range ms.scripts {
		s.index = 0
	}
}

func verifySignature(secret string, r *http.Request, body []byte) (bool, string) {
	timestamp := r.Header.Get("X-Timestamp")
	provided := r.Header.Get("X-Signature")
	if r.Header.Get("X-Client-ID") == "" {
		return false, "missing X-Client-ID"
	}
	if timestamp == "" || provided == "" {
		return false, "missing signature headers"
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s\n%s\n%s\n", r.Method, strings.TrimPrefix(r.URL.Path, "/"), timestamp)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(provided)) {
		return false, "signature mismatch"
	}
	return true, ""
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}
