package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/schedulellm/schedulellm-go/internal/ctxutil"
)

func TestNewWithWriterJSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)
	log.WithModule("resolver").WithField("cells", 12).Info("run finished")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["message"] != "run finished" {
		t.Errorf("message = %v, want run finished", entry["message"])
	}
	if entry["module"] != "resolver" {
		t.Errorf("module = %v, want resolver", entry["module"])
	}
	if entry["level"] != "info" {
		t.Errorf("level = %v, want info", entry["level"])
	}
	if _, ok := entry["timestamp"]; !ok {
		t.Error("timestamp key missing")
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("warn", &buf)

	log.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info record written at warn level: %s", buf.String())
	}

	log.Warn("kept")
	if buf.Len() == 0 {
		t.Error("warn record not written")
	}
}

func TestWarnLevelRendersAsWarning(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("debug", &buf)
	log.Warn("careful")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["level"] != "warning" {
		t.Errorf("level = %v, want warning", entry["level"])
	}
}

func TestContextHandlerInjectsTracingValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWithWriter("info", &buf)

	ctx := ctxutil.WithRequestID(context.Background(), "req-1")
	ctx = ctxutil.WithRunID(ctx, "run-7")
	ctx = ctxutil.WithCellHash(ctx, "a1b2c3")

	log.InfoContext(ctx, "cell processed")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", entry["request_id"])
	}
	if entry["run_id"] != "run-7" {
		t.Errorf("run_id = %v, want run-7", entry["run_id"])
	}
	if entry["cell_hash"] != "a1b2c3" {
		t.Errorf("cell_hash = %v, want a1b2c3", entry["cell_hash"])
	}
}

func TestMultiHandlerFanout(t *testing.T) {
	t.Parallel()

	var buf1, buf2 bytes.Buffer
	h := NewMultiHandler(
		slog.NewJSONHandler(&buf1, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&buf2, &slog.HandlerOptions{Level: slog.LevelError}),
		nil,
	)
	log := slog.New(h)

	log.Info("info only")
	if buf1.Len() == 0 {
		t.Error("info handler received nothing")
	}
	if buf2.Len() != 0 {
		t.Error("error handler received an info record")
	}

	log.Error("both")
	if buf2.Len() == 0 {
		t.Error("error handler received nothing for error record")
	}
}

func TestAsyncHandlerDeliversAndFlushes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	h := NewAsyncHandler(inner, AsyncOptions{BufferSize: 8})
	log := slog.New(h)

	log.Info("shipped")
	if err := h.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if buf.Len() == 0 {
		t.Error("record not delivered after flush")
	}
	if h.Dropped() != 0 {
		t.Errorf("Dropped() = %d, want 0", h.Dropped())
	}
}
