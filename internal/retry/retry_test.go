package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

var fast = Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

func TestDo_SucceedsAfterRetry(t *testing.T) {
	calls := 0
	var retried []int
	err := fast.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return &RetryableError{StatusCode: 503, Message: "busy"}
		}
		return nil
	}, func(attempt int, err error) { retried = append(retried, attempt) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
	if len(retried) != 2 {
		t.Errorf("expected 2 retry callbacks, got %v", retried)
	}
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	calls := 0
	perm := errors.New("bad request")
	err := fast.Do(context.Background(), func(context.Context) error {
		calls++
		return perm
	}, nil)
	if !errors.Is(err, perm) {
		t.Errorf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single call, got %d", calls)
	}
}

func TestDo_GivesUp(t *testing.T) {
	calls := 0
	err := fast.Do(context.Background(), func(context.Context) error {
		calls++
		return &RetryableError{StatusCode: 429}
	}, nil)
	if !IsRetryable(err) {
		t.Errorf("expected wrapped retryable error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := Policy{MaxAttempts: 3, BaseDelay: time.Hour, MaxDelay: time.Hour}
	err := slow.Do(ctx, func(context.Context) error {
		cancel()
		return &RetryableError{StatusCode: 500}
	}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBackoff_Capped(t *testing.T) {
	for attempt := range 10 {
		d := DefaultPolicy.Backoff(attempt)
		if d < time.Second || d > 45*time.Second {
			t.Errorf("attempt %d: backoff %v out of range", attempt, d)
		}
	}
}

func TestIsRetryableStatus(t *testing.T) {
	for code, want := range map[int]bool{200: false, 400: false, 404: false, 429: true, 500: true, 503: true} {
		if got := IsRetryableStatus(code); got != want {
			t.Errorf("IsRetryableStatus(%d) = %v, want %v", code, got, want)
		}
	}
}
