// Package semantic provides the LLM-backed extraction path.
// This file contains retry logic with exponential backoff and jitter.
package semantic

import (
	"context"
	"crypto/rand"
	"math"
	"math/big"
	"time"
)

// backoff calculates the delay before the next retry attempt using the
// Full Jitter algorithm: random(0, min(maxDelay, initialDelay * 2^attempt)).
func backoff(attempt int, initial, max time.Duration) time.Duration {
	if attempt <= 0 {
		return 0
	}

	exp := math.Pow(2, float64(attempt-1))
	delay := time.Duration(float64(initial) * exp)
	if delay > max {
		delay = max
	}
	if delay <= 0 {
		return 0
	}

	jitter, err := rand.Int(rand.Reader, big.NewInt(int64(delay)))
	if err != nil {
		return delay / 2
	}
	return time.Duration(jitter.Int64())
}

// withRetry executes fn up to cfg.MaxAttempts times, backing off between
// attempts. Permanent errors and context cancellation stop immediately.
func withRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return err
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-time.After(backoff(attempt+1, cfg.InitialDelay, cfg.MaxDelay)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
