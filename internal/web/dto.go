package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/paysimlabs/paysim-go/sdk"
)

// CreatePaymentRequest is the body accepted by POST /api/payments
type CreatePaymentRequest struct {
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	CallbackURL string  `json:"callback_url"`
	BackURL     string  `json:"back_url,omitempty"`
}

// PaymentCreatedResponse is returned when a payment was initiated upstream
type PaymentCreatedResponse struct {
	TransactionID string `json:"transaction_id"`
	PaymentURL    string `json:"payment_url"`
}

// PaymentStatusResponse mirrors the upstream transaction record
type PaymentStatusResponse struct {
	TransactionID string  `json:"transaction_id"`
	Status        string  `json:"status"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	CreatedAt     string  `json:"created_at,omitempty"`
	UpdatedAt     string  `json:"updated_at,omitempty"`
}

// CredentialsResponse is returned by GET /api/credentials/validate
type CredentialsResponse struct {
	Valid bool `json:"valid"`
}

// DiagnosticsResponse exposes the client's resolved configuration and the
// last observed rate-limit window.
type DiagnosticsResponse struct {
	BaseURL    string              `json:"base_url"`
	PathPrefix string              `json:"path_prefix"`
	MaxRetries int                 `json:"max_retries"`
	RateLimit  *sdk.RateLimitState `json:"rate_limit,omitempty"`
}

// ErrorResponse is the uniform error envelope for all API errors
type ErrorResponse struct {
	Error      string                 `json:"error"`
	Kind       string                 `json:"kind"`
	RetryAfter int                    `json:"retry_after_seconds,omitempty"`
	Hint       string                 `json:"hint,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// HealthResponse for health checks
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// mapError translates a classified client error into an HTTP status and a
// response envelope the frontend can act on.
func mapError(err error) (int, ErrorResponse) {
	var apiErr *sdk.Error
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError, ErrorResponse{
			Error: "internal error",
			Kind:  "unknown",
		}
	}

	resp := ErrorResponse{
		Error: apiErr.Message,
		Kind:  apiErr.Type.String(),
	}

	switch apiErr.Type {
	case sdk.ErrorTypeValidation:
		return http.StatusBadRequest, resp
	case sdk.ErrorTypeNotFound:
		return http.StatusNotFound, resp
	case sdk.ErrorTypeRateLimited:
		if apiErr.RetryAfter > 0 {
			resp.RetryAfter = int(apiErr.RetryAfter / time.Second)
		}
		resp.Hint = apiErr.UpgradeHint
		return http.StatusTooManyRequests, resp
	case sdk.ErrorTypeChallenge:
		resp.Hint = "the upstream gateway requires a browser challenge; retrying will not help"
		return http.StatusBadGateway, resp
	case sdk.ErrorTypeTransient:
		resp.Hint = "the upstream API is temporarily unavailable"
		return http.StatusBadGateway, resp
	case sdk.ErrorTypeConfiguration:
		return http.StatusInternalServerError, resp
	default:
		return http.StatusBadGateway, resp
	}
}
