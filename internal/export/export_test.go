package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/schedulellm/schedulellm-go/internal/audit"
)

type fakeSource struct {
	records []audit.Record
	err     error
	limit   int
}

func (f *fakeSource) Recent(_ context.Context, limit int) ([]audit.Record, error) {
	f.limit = limit
	return f.records, f.err
}

type fakeUploader struct {
	key         string
	contentType string
	body        []byte
	err         error
}

func (f *fakeUploader) Upload(_ context.Context, key string, body io.Reader, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.key = key
	f.contentType = contentType
	f.body = data
	return "etag-1", nil
}

func TestExporterRoundTrip(t *testing.T) {
	t.Parallel()

	source := &fakeSource{records: []audit.Record{
		{Type: audit.TypeRunStart, RunID: "run-1", RawCells: 3, Timestamp: time.Now().UTC()},
		{Type: audit.TypeLLMSuccess, RunID: "run-1", CellHash: "abc123", Courses: 2},
		{Type: audit.TypeRunEnd, RunID: "run-1", Processed: 3, Extracted: 4},
	}}
	store := &fakeUploader{}
	exporter := NewExporter(source, store, "snapshots", 0, nil)

	key, err := exporter.Export(context.Background())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	if !strings.HasPrefix(key, "snapshots/audit-") || !strings.HasSuffix(key, ".json.zst") {
		t.Errorf("key = %q, want snapshots/audit-*.json.zst", key)
	}
	if store.key != key {
		t.Errorf("uploaded key = %q, want %q", store.key, key)
	}
	if store.contentType != "application/zstd" {
		t.Errorf("contentType = %q, want application/zstd", store.contentType)
	}
	if source.limit != DefaultSnapshotLimit {
		t.Errorf("source limit = %d, want %d", source.limit, DefaultSnapshotLimit)
	}

	snap, err := DecodeSnapshot(bytes.NewReader(store.body))
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if snap.Count != 3 || len(snap.Records) != 3 {
		t.Fatalf("snapshot count = %d/%d, want 3", snap.Count, len(snap.Records))
	}
	if snap.Records[1].CellHash != "abc123" {
		t.Errorf("Records[1].CellHash = %q, want abc123", snap.Records[1].CellHash)
	}
	if snap.ExportedAt.IsZero() {
		t.Error("ExportedAt is zero")
	}
}

func TestExporterEmptySource(t *testing.T) {
	t.Parallel()

	source := &fakeSource{}
	store := &fakeUploader{}
	exporter := NewExporter(source, store, "", 10, nil)

	key, err := exporter.Export(context.Background())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if strings.Contains(key, "/") {
		t.Errorf("key %q should have no prefix", key)
	}

	snap, err := DecodeSnapshot(bytes.NewReader(store.body))
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if snap.Count != 0 || snap.Records == nil {
		t.Errorf("empty snapshot should have Count 0 and non-nil Records, got %d/%v",
			snap.Count, snap.Records)
	}
}

func TestExporterSourceError(t *testing.T) {
	t.Parallel()

	failed := errors.New("database locked")
	exporter := NewExporter(&fakeSource{err: failed}, &fakeUploader{}, "", 0, nil)

	if _, err := exporter.Export(context.Background()); !errors.Is(err, failed) {
		t.Errorf("Export() error = %v, want wrapping %v", err, failed)
	}
}

func TestExporterUploadError(t *testing.T) {
	t.Parallel()

	failed := errors.New("access denied")
	exporter := NewExporter(&fakeSource{}, &fakeUploader{err: failed}, "", 0, nil)

	if _, err := exporter.Export(context.Background()); !errors.Is(err, failed) {
		t.Errorf("Export() error = %v, want wrapping %v", err, failed)
	}
}
