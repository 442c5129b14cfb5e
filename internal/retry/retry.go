// Package retry runs model calls with capped exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *RetryableError
	return errors.As(err, &retryErr)
}

// IsRetryableStatus reports whether an HTTP status code denotes a transient failure.
func IsRetryableStatus(code int) bool {
	return code == 429 || code >= 500
}

// Policy bounds the attempts and delays for one call.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy makes three attempts starting at one second.
var DefaultPolicy = Policy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func (p Policy) Backoff(attempt int) time.Duration {
	base := p.BaseDelay << uint(attempt)
	if base > p.MaxDelay || base <= 0 {
		base = p.MaxDelay
	}
	if base <= 1 {
		return base
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

// Do calls fn until it succeeds, returns a non-retryable error, or attempts run out.
// onRetry, if non-nil, is told about each retried failure.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error, onRetry func(attempt int, err error)) error {
	attempts := max(p.MaxAttempts, 1)
	var lastErr error
	for attempt := range attempts {
		lastErr = fn(ctx)
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == attempts-1 {
			break
		}
		if onRetry != nil {
			onRetry(attempt, lastErr)
		}
		select {
		case <-time.After(p.Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
