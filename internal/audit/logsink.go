package audit

import (
	"context"
	"log/slog"
)

// LogSink emits audit records as structured log entries. Useful on its
// own during development and alongside the SQLite sink in a MultiSink.
type LogSink struct {
	log *slog.Logger
}

// NewLogSink creates a sink writing to log. A nil log uses slog.Default.
func NewLogSink(log *slog.Logger) *LogSink {
	if log == nil {
		log = slog.Default()
	}
	return &LogSink{log: log}
}

// Write logs the record at info level with one attribute per non-zero
// field.
func (s *LogSink) Write(ctx context.Context, rec Record) error {
	attrs := make([]any, 0, 16)
	attrs = append(attrs, slog.String("type", rec.Type))
	if rec.RunID != "" {
		attrs = append(attrs, slog.String("run_id", rec.RunID))
	}
	if rec.Provider != "" {
		attrs = append(attrs, slog.String("provider", rec.Provider))
	}
	if rec.Model != "" {
		attrs = append(attrs, slog.String("model", rec.Model))
	}
	if rec.BaseURL != "" {
		attrs = append(attrs, slog.String("base_url", rec.BaseURL))
	}
	if rec.CellHash != "" {
		attrs = append(attrs, slog.String("cell_hash", rec.CellHash))
	}
	if rec.CellLen > 0 {
		attrs = append(attrs, slog.Int("cell_len", rec.CellLen))
	}
	if rec.Courses > 0 {
		attrs = append(attrs, slog.Int("courses", rec.Courses))
	}
	if rec.LLMCourses > 0 {
		attrs = append(attrs, slog.Int("llm_courses", rec.LLMCourses))
	}
	if rec.RuleFallback > 0 {
		attrs = append(attrs, slog.Int("rule_fallback", rec.RuleFallback))
	}
	if rec.Reason != "" {
		attrs = append(attrs, slog.String("reason", rec.Reason))
	}
	if rec.RawCells > 0 {
		attrs = append(attrs, slog.Int("raw_cells", rec.RawCells))
	}
	if rec.Processed > 0 {
		attrs = append(attrs, slog.Int("processed", rec.Processed))
	}
	if rec.Extracted > 0 {
		attrs = append(attrs, slog.Int("extracted", rec.Extracted))
	}
	if rec.Failures > 0 {
		attrs = append(attrs, slog.Int("failures", rec.Failures))
	}
	s.log.InfoContext(ctx, "audit record", attrs...)
	return nil
}

// Close is a no-op.
func (s *LogSink) Close() error {
	return nil
}
