// Package ctxutil provides type-safe context value management.
// Uses private key types to prevent collisions.
package ctxutil

import (
	"context"
)

type contextKey string

const (
	requestIDKey contextKey = "ctxutil.requestID"
	runIDKey     contextKey = "ctxutil.runID"
	cellHashKey  contextKey = "ctxutil.cellHash"
)

// WithRequestID adds a request ID to the context for tracing.
// Request ID is generated per HTTP request for log correlation.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
// Returns the request ID and true if found, empty string and false otherwise.
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	return requestID, ok
}

// WithRunID adds an orchestration run ID to the context.
// Every batch resolution run gets one so that semantic calls, fallbacks and
// audit records belonging to the same run can be correlated in logs.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// GetRunID retrieves the run ID from the context.
// Returns the run ID if found, empty string otherwise.
func GetRunID(ctx context.Context) string {
	if v := ctx.Value(runIDKey); v != nil {
		if runID, ok := v.(string); ok && runID != "" {
			return runID
		}
	}
	return ""
}

// WithCellHash adds the hash of the cell currently being resolved.
// Only the hash travels through logging; raw cell text never does.
func WithCellHash(ctx context.Context, hash string) context.Context {
	return context.WithValue(ctx, cellHashKey, hash)
}

// GetCellHash retrieves the cell hash from the context.
// Returns the hash if found, empty string otherwise.
func GetCellHash(ctx context.Context) string {
	if v := ctx.Value(cellHashKey); v != nil {
		if hash, ok := v.(string); ok && hash != "" {
			return hash
		}
	}
	return ""
}

// PreserveTracing creates a detached context that preserves tracing values.
// The new context is independent of the parent's cancellation and deadlines.
//
// Use for async operations that need tracing but must outlive the parent
// context, such as audit-record shipping after the HTTP response is sent.
func PreserveTracing(ctx context.Context) context.Context {
	newCtx := context.Background()

	if requestID, ok := GetRequestID(ctx); ok && requestID != "" {
		newCtx = WithRequestID(newCtx, requestID)
	}
	if runID := GetRunID(ctx); runID != "" {
		newCtx = WithRunID(newCtx, runID)
	}
	if hash := GetCellHash(ctx); hash != "" {
		newCtx = WithCellHash(newCtx, hash)
	}

	return newCtx
}
