package sdk

import (
	"errors"
	"fmt"
	"time"
)

// Common errors returned by the SDK. These can be used with errors.Is()
// to check for specific error conditions.
//
// Example:
//
//	_, err := client.GetPaymentStatus(ctx, id)
//	if errors.Is(err, sdk.ErrNotFound) {
//	    // Unknown transaction
//	} else if errors.Is(err, sdk.ErrRateLimited) {
//	    // Back off, inspect client.RateLimit()
//	}
var (
	// ErrInvalidConfig is returned when the client configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrValidation is returned when caller input is rejected before any
	// request is sent
	ErrValidation = errors.New("invalid input")

	// ErrNotFound is returned when a transaction is not found
	ErrNotFound = errors.New("transaction not found")

	// ErrRateLimited is returned when the API rate limit is exceeded
	ErrRateLimited = errors.New("rate limited")

	// ErrChallenge is returned when the API is shielded by a browser
	// verification challenge
	ErrChallenge = errors.New("protection challenge")

	// ErrServerError is returned for 5xx server errors
	ErrServerError = errors.New("server error")

	// ErrTimeout is returned when a request times out
	ErrTimeout = errors.New("request timeout")
)

// ErrorType categorizes a failure so callers and the retry logic can make
// decisions from the kind alone instead of scattering status-code checks.
type ErrorType int

const (
	// ErrorTypeUnknown represents an unclassified error
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeValidation represents bad caller input, rejected before the wire
	ErrorTypeValidation
	// ErrorTypeConfiguration represents bad client setup
	ErrorTypeConfiguration
	// ErrorTypeRateLimited represents 429 responses
	ErrorTypeRateLimited
	// ErrorTypeChallenge represents a browser-verification challenge page
	ErrorTypeChallenge
	// ErrorTypeNotFound represents missing resources (404 or not-found bodies)
	ErrorTypeNotFound
	// ErrorTypeTransient represents 5xx responses and network-level failures
	ErrorTypeTransient
	// ErrorTypeFatal represents other non-2xx responses that are not worth retrying
	ErrorTypeFatal
)

// String returns the string representation of the error type
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeConfiguration:
		return "configuration"
	case ErrorTypeRateLimited:
		return "rate_limited"
	case ErrorTypeChallenge:
		return "challenge"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeTransient:
		return "transient"
	case ErrorTypeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is the classified failure surfaced by the request pipeline. It keeps
// enough structured data for a caller to render a specific message: the kind,
// the raw status, the server's retry hint, the rate-limit window observed on
// the failing response, and how many attempts were made.
//
// Error supports errors.Is() against the sentinel errors and errors.As()
// for direct field access:
//
//	var perr *sdk.Error
//	if errors.As(err, &perr) && perr.Type == sdk.ErrorTypeRateLimited {
//	    log.Printf("limited, retry after %s (%s)", perr.RetryAfter, perr.UpgradeHint)
//	}
type Error struct {
	// Type categorizes the error for handling decisions
	Type ErrorType `json:"type"`
	// Code is an optional error code from the server
	Code string `json:"code,omitempty"`
	// Message is a human-readable error description
	Message string `json:"message"`
	// StatusCode is the HTTP status of the failing response, 0 for
	// failures that never produced one
	StatusCode int `json:"status_code,omitempty"`
	// RetryAfter is the server-provided wait hint, if any
	RetryAfter time.Duration `json:"retry_after,omitempty"`
	// UpgradeHint suggests a higher account tier when the server reported one
	UpgradeHint string `json:"upgrade_hint,omitempty"`
	// ChallengeType tags the kind of protection challenge that was served
	ChallengeType string `json:"challenge_type,omitempty"`
	// RateLimit is the rate-limit window observed on the failing response
	RateLimit *RateLimitState `json:"rate_limit,omitempty"`
	// Attempts is the number of attempts the pipeline made before giving up
	Attempts int `json:"attempts,omitempty"`
	// Elapsed is the total time spent across all attempts
	Elapsed time.Duration `json:"elapsed,omitempty"`
	// Details contains additional error metadata
	Details map[string]interface{} `json:"details,omitempty"`
	// wrapped is the underlying error, if any
	wrapped error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("%s error: %s (attempts: %d, elapsed: %s)", e.Type, e.Message, e.Attempts, e.Elapsed.Round(time.Millisecond))
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.wrapped
}

// Is implements errors.Is against the package sentinels
func (e *Error) Is(target error) bool {
	switch e.Type {
	case ErrorTypeValidation:
		return errors.Is(target, ErrValidation)
	case ErrorTypeConfiguration:
		return errors.Is(target, ErrInvalidConfig)
	case ErrorTypeRateLimited:
		return errors.Is(target, ErrRateLimited)
	case ErrorTypeChallenge:
		return errors.Is(target, ErrChallenge)
	case ErrorTypeNotFound:
		return errors.Is(target, ErrNotFound)
	case ErrorTypeTransient:
		return errors.Is(target, ErrServerError) || errors.Is(target, ErrTimeout)
	}
	return false
}

// IsRetryable returns true if the error is retryable
func (e *Error) IsRetryable() bool {
	return isRetryableType(e.Type)
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewError creates a new classified error
func NewError(errType ErrorType, message string, wrapped error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		wrapped: wrapped,
	}
}

// isRetryableType determines if an error type is retryable
func isRetryableType(errType ErrorType) bool {
	switch errType {
	case ErrorTypeRateLimited, ErrorTypeTransient:
		return true
	default:
		return false
	}
}

// validationError builds a caller-input error that is never sent over the wire
func validationError(format string, args ...interface{}) *Error {
	return NewError(ErrorTypeValidation, fmt.Sprintf(format, args...), ErrValidation)
}

// configError builds a client-setup error
func configError(format string, args ...interface{}) *Error {
	return NewError(ErrorTypeConfiguration, fmt.Sprintf(format, args...), ErrInvalidConfig)
}

// IsNotFound checks if the error represents a missing transaction.
//
// Example:
//
//	tx, err := client.GetPaymentStatus(ctx, id)
//	if sdk.IsNotFound(err) {
//	    // id was never issued, or the record expired
//	}
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimited checks if the error was caused by the API rate limit.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsChallenge checks if the error was caused by a protection challenge.
// Challenges are not retried: bypassing them is a concern for a higher
// layer, not this client.
func IsChallenge(err error) bool {
	return errors.Is(err, ErrChallenge)
}

// IsValidation checks if the error was a caller-input rejection that
// happened before any request was sent.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsRetryable checks if an error is retryable. Rate-limited and transient
// failures are retryable; validation, configuration, not-found, challenge
// and fatal failures are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var classified *Error
	if errors.As(err, &classified) {
		return classified.IsRetryable()
	}

	return errors.Is(err, ErrServerError) || errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimited)
}
