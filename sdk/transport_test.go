package sdk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paysimlabs/paysim-go/sdk/testdata"
)

func testConfig(baseURL string) *Config {
	return DefaultConfig().
		WithCredentials("client-test", "secret-test").
		WithBaseURL(baseURL).
		WithRetries(0)
}

func newTestTransport(t *testing.T, config *Config) *httpTransport {
	t.Helper()
	require.NoError(t, config.Validate())
	transport, err := newHTTPTransport(config)
	require.NoError(t, err)
	return transport
}

func TestTransport_SignedHeaders(t *testing.T) {
	server := testdata.NewMockServer()
	defer server.Close()
	server.RequireSignature("secret-test")

	transport := newTestTransport(t, testConfig(server.URL))
	defer transport.close()

	var resp validateResponse
	err := transport.get(context.Background(), pathValidate, &resp)
	require.NoError(t, err, "the mock rejects bad signatures with 401")
	assert.True(t, resp.Valid)

	requests := server.GetRequests()
	require.Len(t, requests, 1)
	req := requests[0]

	assert.Equal(t, "client-test", req.Headers.Get("X-Client-ID"))
	assert.Equal(t, "application/json", req.Headers.Get("Content-Type"))
	assert.Equal(t, "application/json", req.Headers.Get("Accept"))
	assert.Regexp(t, "^[0-9a-f]{64}$", req.Headers.Get("X-Signature"))

	ts, err := strconv.ParseInt(req.Headers.Get("X-Timestamp"), 10, 64)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Unix(), ts, 5, "timestamp is whole seconds, generated at send time")
}

func TestTransport_PathPrefixResolvedOnce(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"valid":true}`))
	}))
	defer server.Close()

	t.Run("default prefix", func(t *testing.T) {
		transport := newTestTransport(t, testConfig(server.URL))
		require.NoError(t, transport.get(context.Background(), pathValidate, nil))
		assert.Equal(t, "/api/v1/auth/validate", gotPath)
	})

	t.Run("bare host", func(t *testing.T) {
		transport := newTestTransport(t, testConfig(server.URL).WithPathPrefix(""))
		require.NoError(t, transport.get(context.Background(), pathValidate, nil))
		assert.Equal(t, "/auth/validate", gotPath)
	})

	t.Run("custom prefix with stray slashes", func(t *testing.T) {
		transport := newTestTransport(t, testConfig(server.URL).WithPathPrefix("/gateway/v2/"))
		require.NoError(t, transport.get(context.Background(), pathValidate, nil))
		assert.Equal(t, "/gateway/v2/auth/validate", gotPath)
	})
}

func TestTransport_FreshTimestampPerAttempt(t *testing.T) {
	server := testdata.NewMockServer()
	defer server.Close()
	server.ScriptResponses("GET /api/v1/auth/validate",
		testdata.ScriptedResponse{Status: http.StatusInternalServerError, Body: map[string]string{"error": "boom"}},
		testdata.ScriptedResponse{Status: http.StatusOK, Body: map[string]bool{"valid": true}},
	)

	config := testConfig(server.URL).WithRetries(2)
	config.RetryConfig.InitialInterval = 1100 * time.Millisecond
	config.RetryConfig.Jitter = 0
	transport := newTestTransport(t, config)

	require.NoError(t, transport.get(context.Background(), pathValidate, nil))

	requests := server.GetRequests()
	require.Len(t, requests, 2)
	first, _ := strconv.ParseInt(requests[0].Headers.Get("X-Timestamp"), 10, 64)
	second, _ := strconv.ParseInt(requests[1].Headers.Get("X-Timestamp"), 10, 64)
	assert.Greater(t, second, first, "each attempt signs a fresh timestamp")
}

func TestTransport_TrackerUpdatedFromEveryResponse(t *testing.T) {
	server := testdata.NewMockServer()
	defer server.Close()
	server.SetRateLimitHeaders(testdata.RateLimitHeaders{Limit: 60, Remaining: 12, Reset: 1700000600})

	transport := newTestTransport(t, testConfig(server.URL))
	assert.Nil(t, transport.rateLimit(), "no window before the first response")

	require.NoError(t, transport.get(context.Background(), pathValidate, nil))

	state := transport.rateLimit()
	require.NotNil(t, state)
	assert.Equal(t, 60, state.Limit)
	assert.Equal(t, 12, state.Remaining)

	// Failing responses update the tracker too.
	server.SetRateLimitHeaders(testdata.RateLimitHeaders{Limit: 60, Remaining: 0, Reset: 1700000660})
	err := transport.get(context.Background(), "payments/txn_missing", nil)
	require.Error(t, err)

	state = transport.rateLimit()
	require.NotNil(t, state)
	assert.Equal(t, 0, state.Remaining)
}

func TestTransport_ErrorEnrichedWithAttemptsAndElapsed(t *testing.T) {
	server := testdata.NewMockServer()
	defer server.Close()
	server.ScriptResponses("GET /api/v1/auth/validate",
		testdata.ScriptedResponse{Status: http.StatusServiceUnavailable, Body: map[string]string{"error": "maintenance"}},
	)

	config := testConfig(server.URL).WithRetries(2)
	config.RetryConfig.InitialInterval = time.Millisecond
	config.RetryConfig.MaxInterval = 2 * time.Millisecond
	transport := newTestTransport(t, config)

	err := transport.get(context.Background(), pathValidate, nil)
	require.Error(t, err)

	var classified *Error
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, ErrorTypeTransient, classified.Type)
	assert.Equal(t, 3, classified.Attempts)
	assert.Greater(t, classified.Elapsed, time.Duration(0))
	assert.Equal(t, 3, server.GetRequestCount())
}

func TestTransport_TimeoutIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	config := testConfig(server.URL).WithTimeout(20 * time.Millisecond)
	transport := newTestTransport(t, config)

	err := transport.get(context.Background(), pathValidate, nil)
	require.Error(t, err)

	var classified *Error
	require.True(t, errors.As(err, &classified))
	assert.Equal(t, ErrorTypeTransient, classified.Type)
}

func TestTransport_CancellationIsNotRetried(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	config := testConfig(server.URL).WithRetries(3)
	transport := newTestTransport(t, config)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := transport.get(ctx, pathValidate, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "cancellation must not wait out retries")
}

func TestTransport_PathParametersSingleEncoded(t *testing.T) {
	var gotEscaped, gotDecoded string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEscaped = r.URL.EscapedPath()
		gotDecoded = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	transport := newTestTransport(t, testConfig(server.URL))
	require.NoError(t, transport.get(context.Background(), buildPath("payments/{0}", "a/b c"), nil))

	assert.Equal(t, "/api/v1/payments/a%2Fb%20c", gotEscaped, "escaped segments must not be escaped again")
	assert.Equal(t, "/api/v1/payments/a/b c", gotDecoded)
}

func TestTransport_SignatureCoversEscapedPathParameter(t *testing.T) {
	server := testdata.NewMockServer()
	defer server.Close()
	server.RequireSignature("secret-test")

	transport := newTestTransport(t, testConfig(server.URL))
	defer transport.close()

	var tx Transaction
	err := transport.get(context.Background(), buildPath("payments/{0}", "txn 0001"), &tx)
	require.NoError(t, err, "client and server must agree on the signed path for escaped ids")
	assert.Equal(t, "txn 0001", tx.TransactionID)
}

func TestBuildPath(t *testing.T) {
	assert.Equal(t, "payments/txn_0001", buildPath("payments/{0}", "txn_0001"))
	assert.Equal(t, "payments/a%2Fb%20c", buildPath("payments/{0}", "a/b c"))
	assert.Equal(t, "a/b", buildPath("{0}/{1}", "a", "b"))
}
