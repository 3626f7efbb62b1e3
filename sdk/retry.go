package sdk

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// RetryStrategy defines how retries should be performed.
//
// The SDK provides two built-in strategies:
//   - ExponentialBackoffStrategy: exponentially increasing delays with jitter
//   - NoRetryStrategy: disables retries entirely
//
// Custom strategies can be supplied through Config.WithRetryStrategy:
//
//	type FixedStrategy struct{}
//
//	func (s *FixedStrategy) NextInterval(attempt int) time.Duration {
//	    return time.Second
//	}
//
//	func (s *FixedStrategy) ShouldRetry(err error, attempt int) bool {
//	    return sdk.IsRetryable(err) && attempt <= 2
//	}
type RetryStrategy interface {
	// NextInterval returns the delay before the next retry attempt.
	// The attempt parameter starts at 1 for the first retry.
	NextInterval(attempt int) time.Duration

	// ShouldRetry determines if the error is retryable for the given attempt.
	ShouldRetry(err error, attempt int) bool
}

// RetryBudget limits retry attempts by count and duration so one call cannot
// keep hammering a failing service indefinitely.
type RetryBudget struct {
	// MaxAttempts is the maximum total number of attempts including the
	// first one. 1 means a single attempt and no retries.
	MaxAttempts int

	// MaxDuration is the maximum total time for all attempts including
	// retry delays. Zero means no time limit.
	MaxDuration time.Duration
}

// IsExhausted checks if the retry budget is exhausted
func (rb *RetryBudget) IsExhausted(attempt int, elapsed time.Duration) bool {
	if rb.MaxAttempts > 0 && attempt >= rb.MaxAttempts {
		return true
	}
	if rb.MaxDuration > 0 && elapsed >= rb.MaxDuration {
		return true
	}
	return false
}

// ExponentialBackoffStrategy implements exponential backoff with jitter.
//
// The delay calculation is:
//
//	base  = InitialInterval * (Multiplier ^ (attempt-1))
//	delay = min(base, MaxInterval) ± Jitter*delay
//
// Jitter desynchronizes concurrent callers that started failing at the same
// moment, so their retries do not land in lockstep.
type ExponentialBackoffStrategy struct {
	// InitialInterval is the delay before the first retry.
	InitialInterval time.Duration

	// MaxInterval caps the computed delay.
	MaxInterval time.Duration

	// Multiplier is the exponential growth factor.
	Multiplier float64

	// Jitter is the randomization factor (0.0 to 1.0). 0.3 means the
	// computed delay is perturbed by up to ±30%.
	Jitter float64

	// Budget limits retry attempts by count and duration.
	Budget RetryBudget
}

// DefaultExponentialBackoff returns an exponential backoff strategy with
// sensible defaults: 100ms initial, 5s cap, doubling, ±30% jitter, 4 attempts
// (one initial call plus 3 retries) within 30 seconds.
func DefaultExponentialBackoff() *ExponentialBackoffStrategy {
	return &ExponentialBackoffStrategy{
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      2.0,
		Jitter:          0.3,
		Budget: RetryBudget{
			MaxAttempts: 4,
			MaxDuration: 30 * time.Second,
		},
	}
}

// BaseInterval returns the pre-jitter delay for the given retry attempt.
// It is non-decreasing in attempt and bounded by MaxInterval.
func (s *ExponentialBackoffStrategy) BaseInterval(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	interval := float64(s.InitialInterval) * math.Pow(s.Multiplier, float64(attempt-1))
	if interval > float64(s.MaxInterval) {
		interval = float64(s.MaxInterval)
	}
	return time.Duration(interval)
}

// NextInterval calculates the next retry interval with jitter applied
func (s *ExponentialBackoffStrategy) NextInterval(attempt int) time.Duration {
	interval := float64(s.BaseInterval(attempt))
	if interval <= 0 {
		return 0
	}

	if s.Jitter > 0 {
		jitterRange := interval * s.Jitter
		interval += jitterRange * (2*rand.Float64() - 1)
	}

	if interval < 0 {
		interval = 0
	}
	return time.Duration(interval)
}

// ShouldRetry determines if the error is retryable for this attempt
func (s *ExponentialBackoffStrategy) ShouldRetry(err error, attempt int) bool {
	if s.Budget.MaxAttempts > 0 && attempt >= s.Budget.MaxAttempts {
		return false
	}
	return IsRetryable(err)
}

// NoRetryStrategy disables retries entirely. Every call makes exactly one
// attempt regardless of how it fails.
type NoRetryStrategy struct{}

// NextInterval always returns 0
func (s *NoRetryStrategy) NextInterval(attempt int) time.Duration {
	return 0
}

// ShouldRetry always returns false
func (s *NoRetryStrategy) ShouldRetry(err error, attempt int) bool {
	return false
}

// retryExecutor drives the retry loop for one logical call. The only
// suspension point is the wait between attempts; the waiting call holds no
// lock and blocks no other caller.
type retryExecutor struct {
	strategy RetryStrategy

	// onRetry, if set, is invoked before each retry wait.
	onRetry func(attempt int, delay time.Duration, err error)
}

// newRetryExecutor creates a new retry executor
func newRetryExecutor(strategy RetryStrategy) *retryExecutor {
	if strategy == nil {
		strategy = DefaultExponentialBackoff()
	}
	return &retryExecutor{strategy: strategy}
}

// execute runs fn until it succeeds, the strategy declines to retry, the
// budget runs out, or ctx is canceled. It returns the last error observed.
func (re *retryExecutor) execute(ctx context.Context, fn func() error) error {
	var lastErr error
	startTime := time.Now()

	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !re.strategy.ShouldRetry(err, attempt+1) {
			break
		}

		if ctx.Err() != nil {
			return NewError(ErrorTypeTransient, "context canceled during retry", ctx.Err())
		}

		if budget := strategyBudget(re.strategy); budget != nil {
			if budget.IsExhausted(attempt+1, time.Since(startTime)) {
				break
			}
		}

		interval := re.strategy.NextInterval(attempt + 1)

		// A server-provided Retry-After hint takes precedence over the
		// computed backoff when it is larger: never retry sooner than
		// the server asked.
		if hint := retryAfterHint(err); hint > interval {
			interval = hint
		}

		if interval <= 0 {
			break
		}

		if re.onRetry != nil {
			re.onRetry(attempt+1, interval, err)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return NewError(ErrorTypeTransient, "context canceled during retry wait", ctx.Err())
		case <-timer.C:
		}
	}

	return lastErr
}

// strategyBudget exposes the budget of the built-in strategies so the
// executor can enforce the elapsed-time limit. Custom strategies enforce
// their own limits in ShouldRetry.
func strategyBudget(strategy RetryStrategy) *RetryBudget {
	if s, ok := strategy.(*ExponentialBackoffStrategy); ok {
		return &s.Budget
	}
	return nil
}

// retryAfterHint extracts the server's Retry-After hint from a classified
// error, or 0 if there is none.
func retryAfterHint(err error) time.Duration {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.RetryAfter
	}
	return 0
}
