package sdk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const userAgent = "paysim-go/1.0.0"

// httpTransport is the request pipeline. One logical call moves through
// build → send → classify, looping back through the retry wait until it
// succeeds, exhausts its budget, or hits a non-retryable classification.
//
// The rate-limit tracker is updated from every response the pipeline sees,
// success or failure, so callers always have the freshest window.
type httpTransport struct {
	client        *http.Client
	config        *Config
	baseURL       *url.URL
	prefix        string
	signer        *signer
	tracker       *rateLimitTracker
	retryExecutor *retryExecutor
	observer      Observer
}

// newHTTPTransport creates the transport for a validated configuration.
// The path prefix is resolved here, once; request paths never branch on it.
func newHTTPTransport(config *Config) (*httpTransport, error) {
	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, configError("invalid base URL: %v", err)
	}
	if baseURL.Scheme == "" || baseURL.Host == "" {
		return nil, configError("base URL must have a scheme and host")
	}

	sig, err := newSigner(config.SecretKey)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		MaxIdleConns:        config.TransportConfig.MaxIdleConns,
		MaxConnsPerHost:     config.TransportConfig.MaxConnsPerHost,
		IdleConnTimeout:     config.TransportConfig.IdleConnTimeout,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	t := &httpTransport{
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		config:  config,
		baseURL: baseURL,
		prefix:  strings.Trim(config.PathPrefix, "/"),
		signer:  sig,
		tracker: newRateLimitTracker(),
	}

	t.observer = config.Observer
	if t.observer == nil {
		t.observer = &NoopObserver{}
	}
	t.retryExecutor = newRetryExecutor(config.retryStrategy())
	return t, nil
}

// do executes one logical call: it runs the attempt loop and enriches the
// surfaced error with the attempt count and total elapsed time.
func (t *httpTransport) do(ctx context.Context, method, path string, body, result interface{}) error {
	t.observer.OnRequestStart(method, path)
	start := time.Now()

	// The body is serialized once; the bytes are shared by every attempt
	// and by the signature. Only the timestamp and signature are fresh
	// per attempt.
	payload, err := marshalBody(body)
	if err != nil {
		t.observer.OnRequestEnd(method, path, time.Since(start), err)
		return err
	}

	attempts := 0
	executor := *t.retryExecutor
	executor.onRetry = func(attempt int, delay time.Duration, attemptErr error) {
		t.observer.OnRetryAttempt(method, path, attempt, delay, attemptErr)
	}

	finalErr := executor.execute(ctx, func() error {
		attempts++
		return t.performHTTPRequest(ctx, method, path, payload, result)
	})

	elapsed := time.Since(start)
	if finalErr != nil {
		var classified *Error
		if errors.As(finalErr, &classified) {
			classified.Attempts = attempts
			classified.Elapsed = elapsed
			if classified.RateLimit == nil {
				classified.RateLimit = t.tracker.snapshot()
			}
		}
	}

	t.observer.OnRequestEnd(method, path, elapsed, finalErr)
	return finalErr
}

// performHTTPRequest performs a single attempt: fresh timestamp, fresh
// signature over the exact transmitted fields, one network round trip.
func (t *httpTransport) performHTTPRequest(ctx context.Context, method, path string, payload []byte, result interface{}) error {
	fullURL := t.requestURL(path)
	signPath := strings.TrimPrefix(fullURL.Path, "/")

	// The timestamp is regenerated on every attempt so the signature stays
	// within the server's allowed clock skew however long the retries took.
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)
	signature := t.signer.sign(method, signPath, timestamp, payload)

	var bodyReader io.Reader
	if len(payload) > 0 {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL.String(), bodyReader)
	if err != nil {
		return NewError(ErrorTypeFatal, fmt.Sprintf("failed to create request: %v", err), err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for key, value := range t.config.Headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("X-Client-ID", t.config.ClientID)
	req.Header.Set("X-Timestamp", timestamp)
	req.Header.Set("X-Signature", signature)

	resp, err := t.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			// Canceled by the caller; do not dress this up as a
			// retryable network failure.
			return NewError(ErrorTypeFatal, "request canceled", ctx.Err())
		}
		return classifyTransportError(method+" "+path, err)
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return classifyTransportError("reading response", err)
	}

	t.updateRateLimit(resp.Header)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return decodeResponse(respBody, result)
	}

	classified := classifyResponse(resp.StatusCode, resp.Header, respBody)
	if reqID := resp.Header.Get("X-Request-ID"); reqID != "" {
		classified.WithDetail("request_id", reqID)
	}
	return classified
}

// updateRateLimit feeds the tracker and notifies the observer when the
// response actually carried rate-limit headers.
func (t *httpTransport) updateRateLimit(header http.Header) {
	before := t.tracker.snapshot()
	t.tracker.update(header)
	after := t.tracker.snapshot()
	if after != nil && (before == nil || *before != *after) {
		t.observer.OnRateLimitUpdate(*after)
	}
}

// requestURL joins the base URL, the resolved prefix and the request path.
// The path arrives already percent-escaped (see buildPath), so it is kept as
// the raw form; decoding it only for the Path field stops the URL machinery
// from escaping the percent signs a second time.
func (t *httpTransport) requestURL(path string) *url.URL {
	segments := make([]string, 0, 2)
	if t.prefix != "" {
		segments = append(segments, t.prefix)
	}
	segments = append(segments, strings.TrimPrefix(path, "/"))
	raw := "/" + strings.Join(segments, "/")

	u := *t.baseURL
	u.RawQuery = ""
	u.Fragment = ""
	u.RawPath = raw
	if decoded, err := url.PathUnescape(raw); err == nil {
		u.Path = decoded
	} else {
		u.Path = raw
	}
	return &u
}

// rateLimit returns the last observed rate-limit window, nil before the
// first response.
func (t *httpTransport) rateLimit() *RateLimitState {
	return t.tracker.snapshot()
}

// get performs a GET request
func (t *httpTransport) get(ctx context.Context, path string, result interface{}) error {
	return t.do(ctx, http.MethodGet, path, nil, result)
}

// post performs a POST request
func (t *httpTransport) post(ctx context.Context, path string, body, result interface{}) error {
	return t.do(ctx, http.MethodPost, path, body, result)
}

// close closes the transport
func (t *httpTransport) close() error {
	t.client.CloseIdleConnections()
	return nil
}

// buildPath builds a request path with proper escaping for path parameters.
// Placeholders {0}, {1}, ... are replaced by the URL-escaped arguments, so
// transaction ids with slashes or spaces cannot break the path.
func buildPath(pattern string, args ...string) string {
	path := pattern
	for i, arg := range args {
		placeholder := fmt.Sprintf("{%d}", i)
		escaped := url.QueryEscape(arg)
		escaped = strings.ReplaceAll(escaped, "+", "%20")
		path = strings.Replace(path, placeholder, escaped, 1)
	}
	return path
}
