package sdk

import (
	"context"
	"math"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paysimlabs/paysim-go/sdk/testdata"
)

func newTestClient(t *testing.T, server *testdata.MockServer) Client {
	t.Helper()
	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNewClient_ConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
	}{
		{"nil config has no credentials", nil},
		{"missing client ID", DefaultConfig().WithCredentials("", "secret")},
		{"missing secret", DefaultConfig().WithCredentials("client", "")},
		{"missing base URL", DefaultConfig().WithCredentials("client", "secret").WithBaseURL("")},
		{"relative base URL", DefaultConfig().WithCredentials("client", "secret").WithBaseURL("api.paysim.dev")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.config)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestClient_ValidateCredentials(t *testing.T) {
	server := testdata.NewMockServer()
	defer server.Close()

	client := newTestClient(t, server)

	ok, err := client.ValidateCredentials(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	// The server rejecting the credentials is an answer, not an error.
	server.ScriptResponses("GET /api/v1/auth/validate",
		testdata.ScriptedResponse{Status: http.StatusUnauthorized, Body: map[string]string{"error": "unknown client"}},
	)
	ok, err = client.ValidateCredentials(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClient_InitiatePayment(t *testing.T) {
	server := testdata.NewMockServer()
	defer server.Close()
	server.RequireSignature("secret-test")

	client := newTestClient(t, server)

	intent, err := client.InitiatePayment(context.Background(), PaymentRequest{
		Amount:      2500,
		Currency:    "XAF",
		CallbackURL: "https://shop.example.com/hooks/paysim",
		BackURL:     "https://shop.example.com/checkout/done",
	})
	require.NoError(t, err)
	assert.Equal(t, "txn_0001", intent.TransactionID)
	assert.NotEmpty(t, intent.PaymentURL)

	// The signed body is the exact JSON that was transmitted.
	requests := server.GetRequests()
	require.Len(t, requests, 1)
	assert.JSONEq(t,
		`{"amount":2500,"currency":"XAF","callback_url":"https://shop.example.com/hooks/paysim","back_url":"https://shop.example.com/checkout/done"}`,
		string(requests[0].Body))
}

func TestClient_InitiatePayment_ValidationBeforeNetwork(t *testing.T) {
	server := testdata.NewMockServer()
	defer server.Close()

	client := newTestClient(t, server)

	tests := []struct {
		name string
		req  PaymentRequest
	}{
		{"negative amount", PaymentRequest{Amount: -5, CallbackURL: "http://x.example", BackURL: "http://y.example"}},
		{"zero amount", PaymentRequest{Amount: 0, CallbackURL: "http://x.example"}},
		{"NaN amount", PaymentRequest{Amount: math.NaN(), CallbackURL: "http://x.example"}},
		{"infinite amount", PaymentRequest{Amount: math.Inf(1), CallbackURL: "http://x.example"}},
		{"empty callback", PaymentRequest{Amount: 10}},
		{"relative callback", PaymentRequest{Amount: 10, CallbackURL: "/hooks/paysim"}},
		{"non-http callback", PaymentRequest{Amount: 10, CallbackURL: "ftp://x.example/hook"}},
		{"malformed back URL", PaymentRequest{Amount: 10, CallbackURL: "https://x.example/hook", BackURL: "::notaurl"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.InitiatePayment(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}

	assert.Equal(t, 0, server.GetRequestCount(), "validation failures must never touch the network")
}

func TestClient_GetPaymentStatus(t *testing.T) {
	server := testdata.NewMockServer()
	defer server.Close()

	client := newTestClient(t, server)

	tx, err := client.GetPaymentStatus(context.Background(), "txn_0042")
	require.NoError(t, err)
	assert.Equal(t, "txn_0042", tx.TransactionID)
	assert.Equal(t, "PENDING", tx.Status)
	assert.Equal(t, 2500.0, tx.Amount)
	assert.NotEmpty(t, tx.CreatedAt)
	assert.NotEmpty(t, tx.UpdatedAt)
}

func TestClient_GetPaymentStatus_NotFound(t *testing.T) {
	server := testdata.NewMockServer()
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.GetPaymentStatus(context.Background(), "txn_missing")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 1, server.GetRequestCount(), "not-found is never retried")
}

func TestClient_GetPaymentStatus_EmptyID(t *testing.T) {
	server := testdata.NewMockServer()
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.GetPaymentStatus(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, server.GetRequestCount())
}

func TestClient_LegacyIDField(t *testing.T) {
	server := testdata.NewMockServer()
	defer server.Close()
	server.RegisterHandler("GET /api/v1/payments/", func(w http.ResponseWriter, r *http.Request) (int, interface{}) {
		return http.StatusOK, map[string]interface{}{
			"id":         "txn_legacy",
			"status":     "SUCCESS",
			"amount":     100.0,
			"created_at": "2026-01-01T00:00:00Z",
			"updated_at": "2026-01-01T00:05:00Z",
		}
	})

	client := newTestClient(t, server)

	tx, err := client.GetPaymentStatus(context.Background(), "txn_legacy")
	require.NoError(t, err)
	assert.Equal(t, "txn_legacy", tx.TransactionID)
}

func TestClient_Describe(t *testing.T) {
	server := testdata.NewMockServer()
	defer server.Close()
	server.SetRateLimitHeaders(testdata.RateLimitHeaders{Limit: 60, Remaining: 59, Reset: 1700000600})

	client := newTestClient(t, server)

	d := client.Describe()
	assert.Equal(t, server.URL, d.BaseURL)
	assert.Equal(t, "api/v1", d.PathPrefix)
	assert.Equal(t, 0, d.Retry.MaxRetries)
	assert.Nil(t, d.RateLimit, "no window observed yet")

	_, err := client.ValidateCredentials(context.Background())
	require.NoError(t, err)

	d = client.Describe()
	require.NotNil(t, d.RateLimit)
	assert.Equal(t, 59, d.RateLimit.Remaining)
	assert.Equal(t, d.RateLimit, client.RateLimit())
}

func TestClient_Closed(t *testing.T) {
	server := testdata.NewMockServer()
	defer server.Close()

	client, err := NewClient(testConfig(server.URL))
	require.NoError(t, err)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close(), "close is idempotent")

	_, err = client.ValidateCredentials(context.Background())
	assert.Error(t, err)
	_, err = client.InitiatePayment(context.Background(), PaymentRequest{Amount: 1, CallbackURL: "https://x.example"})
	assert.Error(t, err)
	_, err = client.GetPaymentStatus(context.Background(), "txn_0001")
	assert.Error(t, err)
}
