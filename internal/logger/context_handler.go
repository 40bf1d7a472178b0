// Package logger provides structured logging for the extraction pipeline.
package logger

import (
	"context"
	"log/slog"

	"github.com/schedulellm/schedulellm-go/internal/ctxutil"
)

// ContextHandler is a slog.Handler decorator that extracts tracing
// values from the context and adds them as attributes to log records,
// so call sites never pass request_id or run_id by hand.
//
// Only identifiers travel this way. Cell content is identified by its
// hash; the text itself is never attached to a record.
type ContextHandler struct {
	handler slog.Handler
}

// NewContextHandler creates a new ContextHandler that wraps the provided handler.
func NewContextHandler(handler slog.Handler) *ContextHandler {
	return &ContextHandler{handler: handler}
}

// Enabled reports whether the wrapped handler handles records at the given level.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle adds tracing attributes from the context before delegating to
// the wrapped handler.
//
// Context values extracted:
// - request_id: HTTP request ID for log correlation
// - run_id: extraction run ID tying all cell records of a run together
// - cell_hash: hash of the cell currently being processed
func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if requestID, ok := ctxutil.GetRequestID(ctx); ok && requestID != "" {
		r.AddAttrs(slog.String("request_id", requestID))
	}

	if runID := ctxutil.GetRunID(ctx); runID != "" {
		r.AddAttrs(slog.String("run_id", runID))
	}

	if cellHash := ctxutil.GetCellHash(ctx); cellHash != "" {
		r.AddAttrs(slog.String("cell_hash", cellHash))
	}

	return h.handler.Handle(ctx, r)
}

// WithAttrs returns a new ContextHandler whose attributes consist of
// both the receiver's attributes and the arguments.
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{handler: h.handler.WithAttrs(attrs)}
}

// WithGroup returns a new ContextHandler with the given group name.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{handler: h.handler.WithGroup(name)}
}
