package semantic

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWithRetrySucceedsAfterTransientFailure(t *testing.T) {
	t.Parallel()

	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	attempts := 0
	err := withRetry(context.Background(), cfg, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("503 service unavailable")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("withRetry() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestWithRetryStopsOnPermanentError(t *testing.T) {
	t.Parallel()

	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	attempts := 0
	err := withRetry(context.Background(), cfg, func() error {
		attempts++
		return errors.New("401 unauthorized")
	})
	if err == nil {
		t.Fatal("withRetry() error = nil, want error")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (permanent errors must not retry)", attempts)
	}
}

func TestWithRetryDoesNotRetryInvalidJSON(t *testing.T) {
	t.Parallel()

	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	attempts := 0
	err := withRetry(context.Background(), cfg, func() error {
		attempts++
		return ErrInvalidJSON
	})
	if !errors.Is(err, ErrInvalidJSON) {
		t.Fatalf("withRetry() error = %v, want ErrInvalidJSON", err)
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
}

func TestWithRetryRespectsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	err := withRetry(ctx, cfg, func() error {
		t.Error("fn must not run with cancelled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("withRetry() error = %v, want context.Canceled", err)
	}
}

func TestBackoffBounds(t *testing.T) {
	t.Parallel()

	initial := 100 * time.Millisecond
	max := 400 * time.Millisecond

	if d := backoff(0, initial, max); d != 0 {
		t.Errorf("backoff(0) = %v, want 0", d)
	}
	for attempt := 1; attempt <= 6; attempt++ {
		d := backoff(attempt, initial, max)
		if d < 0 || d >= max {
			t.Errorf("backoff(%d) = %v, want in [0, %v)", attempt, d, max)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", errors.New("429 too many requests"), true},
		{"server error", errors.New("internal server error (500)"), true},
		{"auth", errors.New("invalid api key"), false},
		{"api error status", &APIError{Err: errors.New("x"), StatusCode: 503}, true},
		{"api error bad request", &APIError{Err: errors.New("x"), StatusCode: 400}, false},
		{"context canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"empty response", ErrEmptyResponse, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
