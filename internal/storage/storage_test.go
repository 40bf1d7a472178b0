package storage

import (
	"context"
	"testing"
	"time"

	"github.com/schedulellm/schedulellm-go/internal/audit"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestAuditSinkWriteAndRecent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	sink := NewAuditSink(db, 0)
	ctx := context.Background()

	records := []audit.Record{
		{Type: audit.TypeRunStart, RunID: "run-1", Provider: "openai", Model: "qwen-flash", RawCells: 5, Timestamp: time.Now().UTC()},
		{Type: audit.TypeLLMSuccess, RunID: "run-1", CellHash: "a1b2c3", CellLen: 42, Courses: 2, Timestamp: time.Now().UTC()},
		{Type: audit.TypeLLMFailure, RunID: "run-1", CellHash: "d4e5f6", Reason: "empty courses array", RuleFallback: 1, Timestamp: time.Now().UTC()},
	}
	for _, rec := range records {
		if err := sink.Write(ctx, rec); err != nil {
			t.Fatalf("Write(%s) error = %v", rec.Type, err)
		}
	}

	got, err := sink.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent() returned %d records, want 3", len(got))
	}

	// Newest first.
	if got[0].Type != audit.TypeLLMFailure {
		t.Errorf("got[0].Type = %q, want %q", got[0].Type, audit.TypeLLMFailure)
	}
	if got[0].Reason != "empty courses array" {
		t.Errorf("got[0].Reason = %q, want %q", got[0].Reason, "empty courses array")
	}
	if got[0].RuleFallback != 1 {
		t.Errorf("got[0].RuleFallback = %d, want 1", got[0].RuleFallback)
	}
	if got[2].Type != audit.TypeRunStart {
		t.Errorf("got[2].Type = %q, want %q", got[2].Type, audit.TypeRunStart)
	}
	if got[2].Provider != "openai" || got[2].Model != "qwen-flash" {
		t.Errorf("got[2] provider/model = %q/%q", got[2].Provider, got[2].Model)
	}
	if got[2].Timestamp.IsZero() {
		t.Error("got[2].Timestamp is zero, want parsed time")
	}
}

func TestAuditSinkZeroTimestamp(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	sink := NewAuditSink(db, 0)
	ctx := context.Background()

	if err := sink.Write(ctx, audit.Record{Type: audit.TypeRunStart, RunID: "r"}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := sink.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 || got[0].Timestamp.IsZero() {
		t.Error("zero record timestamp should be filled in at write time")
	}
}

func TestAuditSinkPrune(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	sink := NewAuditSink(db, 3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := sink.Write(ctx, audit.Record{Type: audit.TypeLLMSuccess, RunID: "r", CellHash: "h"}); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}
	// Run-end triggers the prune.
	if err := sink.Write(ctx, audit.Record{Type: audit.TypeRunEnd, RunID: "r", Processed: 5}); err != nil {
		t.Fatalf("Write(run_end) error = %v", err)
	}

	got, err := sink.Recent(ctx, 100)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Errorf("after prune got %d records, want 3", len(got))
	}
	if got[0].Type != audit.TypeRunEnd {
		t.Errorf("newest surviving record = %q, want %q", got[0].Type, audit.TypeRunEnd)
	}
}

func TestAuditSinkCountByType(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	sink := NewAuditSink(db, 0)
	ctx := context.Background()

	for _, typ := range []string{
		audit.TypeRunStart,
		audit.TypeLLMSuccess, audit.TypeLLMSuccess,
		audit.TypeLLMFailure,
		audit.TypeRunEnd,
	} {
		if err := sink.Write(ctx, audit.Record{Type: typ, RunID: "r"}); err != nil {
			t.Fatalf("Write(%s) error = %v", typ, err)
		}
	}

	counts, err := sink.CountByType(ctx)
	if err != nil {
		t.Fatalf("CountByType() error = %v", err)
	}
	if counts[audit.TypeLLMSuccess] != 2 {
		t.Errorf("llm_success count = %d, want 2", counts[audit.TypeLLMSuccess])
	}
	if counts[audit.TypeRunStart] != 1 || counts[audit.TypeRunEnd] != 1 {
		t.Errorf("run_start/run_end counts = %d/%d, want 1/1",
			counts[audit.TypeRunStart], counts[audit.TypeRunEnd])
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	t.Parallel()

	path := t.TempDir() + "/nested/dir/audit.db"
	db, err := New(path)
	if err != nil {
		t.Fatalf("New(%q) error = %v", path, err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	if db.Conn() == nil {
		t.Error("Conn() returned nil")
	}
}
