package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/schedulellm/schedulellm-go/internal/audit"
	"github.com/schedulellm/schedulellm-go/internal/logger"
)

// DefaultSnapshotLimit bounds how many audit records one snapshot holds.
const DefaultSnapshotLimit = 5000

// RecordSource supplies the audit records to export. Satisfied by
// storage.AuditSink.
type RecordSource interface {
	Recent(ctx context.Context, limit int) ([]audit.Record, error)
}

// Uploader receives compressed snapshots. Satisfied by ObjStore.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Snapshot is the JSON document stored in the bucket.
type Snapshot struct {
	ExportedAt time.Time      `json:"exportedAt"`
	Count      int            `json:"count"`
	Records    []audit.Record `json:"records"`
}

// Exporter marshals recent audit records, compresses them with zstd,
// and uploads the result under a timestamped key.
type Exporter struct {
	source RecordSource
	store  Uploader
	prefix string
	limit  int
	log    *logger.Logger
}

// NewExporter creates an exporter. prefix namespaces the snapshot keys
// in the bucket; limit <= 0 uses DefaultSnapshotLimit.
func NewExporter(source RecordSource, store Uploader, prefix string, limit int, log *logger.Logger) *Exporter {
	if limit <= 0 {
		limit = DefaultSnapshotLimit
	}
	return &Exporter{
		source: source,
		store:  store,
		prefix: prefix,
		limit:  limit,
		log:    log,
	}
}

// Export takes a snapshot of recent audit records and uploads it.
// Returns the object key it wrote.
func (e *Exporter) Export(ctx context.Context) (string, error) {
	start := time.Now()

	records, err := e.source.Recent(ctx, e.limit)
	if err != nil {
		return "", fmt.Errorf("export: fetch records: %w", err)
	}
	if records == nil {
		records = []audit.Record{}
	}

	snap := Snapshot{
		ExportedAt: time.Now().UTC(),
		Count:      len(records),
		Records:    records,
	}

	compressed, err := encodeSnapshot(snap)
	if err != nil {
		return "", err
	}

	key := e.key(snap.ExportedAt)
	if _, err := e.store.Upload(ctx, key, bytes.NewReader(compressed), "application/zstd"); err != nil {
		return "", err
	}

	if e.log != nil {
		e.log.Info("audit snapshot exported",
			"key", key,
			"records", len(records),
			"bytes", len(compressed),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return key, nil
}

func (e *Exporter) key(ts time.Time) string {
	name := fmt.Sprintf("audit-%s.json.zst", ts.Format("20060102T150405Z"))
	if e.prefix == "" {
		return name
	}
	return e.prefix + "/" + name
}

func encodeSnapshot(snap Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("export: marshal snapshot: %w", err)
	}

	var buf bytes.Buffer
	encoder, err := zstd.NewWriter(&buf, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("export: create encoder: %w", err)
	}
	if _, err := encoder.Write(data); err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("export: compress snapshot: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("export: flush encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot reads a compressed snapshot back, for verification and
// tooling.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("export: create decoder: %w", err)
	}
	defer decoder.Close()

	data, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("export: decompress snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("export: unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
