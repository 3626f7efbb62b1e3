package sdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Challenge markers. The protection layer in front of the API serves an HTML
// interstitial instead of JSON; these are the stable fingerprints of it.
var challengeBodyMarkers = []string{
	"just a moment",
	"challenge-platform",
	"_cf_chl_opt",
	"cf-browser-verification",
}

const highestTier = "enterprise"

// classifyResponse inspects a non-2xx response and produces exactly one
// classified error kind. The taxonomy exists so the retry policy can treat
// "worth retrying" as a pure function of the classification instead of
// ad hoc status checks at every call site.
func classifyResponse(status int, header http.Header, body []byte) *Error {
	var envelope apiEnvelope
	if len(body) > 0 {
		// Tolerate HTML and truncated bodies; classification then
		// relies on status and headers alone.
		_ = json.Unmarshal(body, &envelope)
	}

	message := envelope.message()
	if message == "" {
		message = http.StatusText(status)
	}

	switch {
	case status == http.StatusTooManyRequests:
		return classifyRateLimited(header, &envelope, message)

	case status == http.StatusForbidden && isChallengeResponse(header, &envelope, body):
		err := NewError(ErrorTypeChallenge, "request blocked by a browser verification challenge", ErrChallenge)
		err.StatusCode = status
		err.ChallengeType = challengeType(header, &envelope)
		return err

	case status == http.StatusNotFound || isNotFoundMessage(message):
		err := NewError(ErrorTypeNotFound, message, ErrNotFound)
		err.StatusCode = status
		err.Code = envelope.Code
		return err

	case status >= http.StatusInternalServerError:
		err := NewError(ErrorTypeTransient, fmt.Sprintf("server error: %s", message), ErrServerError)
		err.StatusCode = status
		err.Code = envelope.Code
		return err

	default:
		err := NewError(ErrorTypeFatal, fmt.Sprintf("request failed with status %d: %s", status, message), nil)
		err.StatusCode = status
		err.Code = envelope.Code
		return err
	}
}

func classifyRateLimited(header http.Header, envelope *apiEnvelope, message string) *Error {
	err := NewError(ErrorTypeRateLimited, message, ErrRateLimited)
	err.StatusCode = http.StatusTooManyRequests
	err.Code = envelope.Code
	err.RetryAfter = parseRetryAfter(header.Get(headerRetryAfter), envelope.RetryAfter)

	if limit, ok := parseIntHeader(header, headerRateLimitLimit); ok {
		remaining, _ := parseIntHeader(header, headerRateLimitRemaining)
		reset, _ := parseInt64Header(header, headerRateLimitReset)
		err.RateLimit = &RateLimitState{Limit: limit, Remaining: remaining, Reset: reset}
	}

	// The upgrade hint is derived from the tier the server reported, never
	// guessed from the limit values.
	if envelope.Tier != "" && envelope.Tier != highestTier {
		err.UpgradeHint = fmt.Sprintf("the %s tier has lower rate limits; upgrading raises them", envelope.Tier)
	}
	return err
}

// classifyTransportError maps a network-level failure (timeout, connection
// reset, DNS) to a transient classification so it follows the same retry
// path as a 5xx.
func classifyTransportError(op string, cause error) *Error {
	if errors.Is(cause, context.DeadlineExceeded) {
		err := NewError(ErrorTypeTransient, fmt.Sprintf("timeout during %s", op), ErrTimeout)
		return err
	}

	var netErr net.Error
	if errors.As(cause, &netErr) && netErr.Timeout() {
		return NewError(ErrorTypeTransient, fmt.Sprintf("timeout during %s", op), ErrTimeout)
	}

	return NewError(ErrorTypeTransient, fmt.Sprintf("network error during %s: %v", op, cause), cause)
}

// parseRetryAfter resolves the server's wait hint: the Retry-After header as
// integer seconds or an HTTP-date, falling back to the retry_after body field.
func parseRetryAfter(header string, bodySeconds int) time.Duration {
	if header != "" {
		if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
		if t, err := http.ParseTime(header); err == nil {
			if d := time.Until(t); d > 0 {
				return d
			}
			return 0
		}
	}
	if bodySeconds > 0 {
		return time.Duration(bodySeconds) * time.Second
	}
	return 0
}

func isChallengeResponse(header http.Header, envelope *apiEnvelope, body []byte) bool {
	if header.Get("cf-mitigated") != "" || envelope.Challenge != "" {
		return true
	}
	lower := strings.ToLower(string(body))
	for _, marker := range challengeBodyMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func challengeType(header http.Header, envelope *apiEnvelope) string {
	if tag := header.Get("cf-mitigated"); tag != "" {
		return tag
	}
	if envelope.Challenge != "" {
		return envelope.Challenge
	}
	return "browser_check"
}

func isNotFoundMessage(message string) bool {
	return strings.Contains(strings.ToLower(message), "not found")
}
