package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/schedulellm/schedulellm-go/internal/audit"
)

// AuditSink writes audit records to SQLite. It implements audit.Sink.
type AuditSink struct {
	db  *DB
	max int
}

// DefaultMaxRecords caps the audit table size. Old records are pruned
// after each run ends.
const DefaultMaxRecords = 10000

// NewAuditSink creates a sink backed by db. maxRecords <= 0 uses
// DefaultMaxRecords.
func NewAuditSink(db *DB, maxRecords int) *AuditSink {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	return &AuditSink{db: db, max: maxRecords}
}

// Write persists one audit record. Run-end records also trigger pruning
// so the table cannot grow without bound.
func (s *AuditSink) Write(ctx context.Context, rec audit.Record) error {
	ts := rec.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := s.db.conn.ExecContext(ctx, `
INSERT INTO audit_records
	(type, ts, run_id, provider, model, cell_hash, cell_len, courses,
	 llm_courses, rule_fallback, reason, raw_cells, processed, extracted, failures)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Type, ts.Format(time.RFC3339Nano), rec.RunID, rec.Provider, rec.Model,
		rec.CellHash, rec.CellLen, rec.Courses,
		rec.LLMCourses, rec.RuleFallback, rec.Reason,
		rec.RawCells, rec.Processed, rec.Extracted, rec.Failures)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}

	if rec.Type == audit.TypeRunEnd {
		return s.prune(ctx)
	}
	return nil
}

func (s *AuditSink) prune(ctx context.Context) error {
	_, err := s.db.conn.ExecContext(ctx, `
DELETE FROM audit_records
WHERE id NOT IN (SELECT id FROM audit_records ORDER BY id DESC LIMIT ?)`, s.max)
	if err != nil {
		return fmt.Errorf("prune audit records: %w", err)
	}
	return nil
}

// Close is a no-op; the sink does not own the database connection.
func (s *AuditSink) Close() error {
	return nil
}

// Recent returns up to limit audit records, newest first.
func (s *AuditSink) Recent(ctx context.Context, limit int) ([]audit.Record, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.conn.QueryContext(ctx, `
SELECT type, ts, run_id, provider, model, cell_hash, cell_len, courses,
       llm_courses, rule_fallback, reason, raw_cells, processed, extracted, failures
FROM audit_records ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var records []audit.Record
	for rows.Next() {
		var rec audit.Record
		var ts string
		if err := rows.Scan(&rec.Type, &ts, &rec.RunID, &rec.Provider, &rec.Model,
			&rec.CellHash, &rec.CellLen, &rec.Courses,
			&rec.LLMCourses, &rec.RuleFallback, &rec.Reason,
			&rec.RawCells, &rec.Processed, &rec.Extracted, &rec.Failures); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		if parsed, perr := time.Parse(time.RFC3339Nano, ts); perr == nil {
			rec.Timestamp = parsed
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountByType returns record counts grouped by type, for the summary
// endpoint.
func (s *AuditSink) CountByType(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.conn.QueryContext(ctx,
		`SELECT type, COUNT(*) FROM audit_records GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("count audit records: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan audit count: %w", err)
		}
		counts[typ] = n
	}
	return counts, rows.Err()
}
