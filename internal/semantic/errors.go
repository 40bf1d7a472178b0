// Package semantic provides the LLM-backed extraction path.
// This file contains error classification for retry decisions.
package semantic

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
)

// Sentinel errors returned by response decoding.
var (
	// ErrEmptyResponse indicates the model returned no usable content.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrInvalidJSON indicates the model output could not be decoded.
	ErrInvalidJSON = errors.New("invalid JSON response from model")
)

// APIError wraps a provider error with the HTTP status code, when known,
// so retry decisions do not depend on message scraping.
type APIError struct {
	Err        error
	StatusCode int
	Provider   Provider
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return e.Err.Error() + " (status: " + strconv.Itoa(e.StatusCode) + ")"
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the error is transient. Rate limits,
// timeouts, and server errors are retried; malformed requests, auth
// failures, and undecodable model output are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, ErrInvalidJSON) || errors.Is(err, ErrEmptyResponse) {
		// Bad model output is not transient at temperature 0.1; retrying
		// burns quota for the same answer.
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		return retryableStatus(apiErr.StatusCode)
	}

	errStr := strings.ToLower(err.Error())
	if containsAny(errStr, "401", "unauthorized", "invalid api key",
		"403", "forbidden", "400", "bad request", "404", "not found") {
		return false
	}
	if containsAny(errStr, "429", "rate limit", "too many requests",
		"500", "502", "503", "504", "unavailable", "overloaded",
		"timeout", "deadline", "connection") {
		return true
	}

	// Unknown errors get one more chance.
	return true
}

func retryableStatus(statusCode int) bool {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return true
	case statusCode == http.StatusRequestTimeout:
		return true
	case statusCode >= 500 && statusCode < 600:
		return true
	default:
		return false
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
