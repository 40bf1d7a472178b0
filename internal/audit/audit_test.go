package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestCellHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty string",
			input: "",
			want:  "811c9dc5",
		},
		{
			name:  "ascii",
			input: "a",
			want:  "e40c292c",
		},
		{
			name:  "stable for same input",
			input: "软件工程/1-16周/N608",
			want:  CellHash("软件工程/1-16周/N608"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CellHash(tt.input); got != tt.want {
				t.Errorf("CellHash(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	if CellHash("软件工程") == CellHash("数据结构") {
		t.Error("distinct cells should hash differently")
	}
}

func TestRecordJSONOmitsZeroFields(t *testing.T) {
	t.Parallel()

	rec := Record{Type: TypeLLMSuccess, RunID: "r1", CellHash: "abc", Courses: 1}
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	s := string(data)
	for _, want := range []string{`"type":"llm_success"`, `"runId":"r1"`, `"cellHash":"abc"`} {
		if !strings.Contains(s, want) {
			t.Errorf("JSON missing %s: %s", want, s)
		}
	}
	for _, absent := range []string{"reason", "provider", "failures", "rawCells"} {
		if strings.Contains(s, absent) {
			t.Errorf("JSON should omit zero field %q: %s", absent, s)
		}
	}
}

type recordingSink struct {
	mu      sync.Mutex
	records []Record
	err     error
	closed  bool
}

func (s *recordingSink) Write(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return s.err
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.err
}

func TestMultiSinkFanout(t *testing.T) {
	t.Parallel()

	a := &recordingSink{}
	b := &recordingSink{}
	multi := NewMultiSink(a, b)

	rec := Record{Type: TypeRunStart, RunID: "r1"}
	if err := multi.Write(context.Background(), rec); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(a.records) != 1 || len(b.records) != 1 {
		t.Errorf("record counts = %d/%d, want 1/1", len(a.records), len(b.records))
	}

	if err := multi.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("Close() should close every member sink")
	}
}

func TestMultiSinkJoinsErrors(t *testing.T) {
	t.Parallel()

	failed := errors.New("disk full")
	a := &recordingSink{err: failed}
	b := &recordingSink{}
	multi := NewMultiSink(a, b)

	err := multi.Write(context.Background(), Record{Type: TypeRunEnd})
	if !errors.Is(err, failed) {
		t.Errorf("Write() error = %v, want wrapping %v", err, failed)
	}
	if len(b.records) != 1 {
		t.Error("failing sink should not stop delivery to the others")
	}
}

func TestLogSink(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sink := NewLogSink(slog.New(slog.NewJSONHandler(&buf, nil)))

	rec := Record{
		Type:     TypeLLMException,
		RunID:    "run-9",
		CellHash: "deadbeef",
		CellLen:  37,
		Reason:   "timeout",
	}
	if err := sink.Write(context.Background(), rec); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["type"] != "llm_exception" {
		t.Errorf("type = %v, want llm_exception", entry["type"])
	}
	if entry["cell_hash"] != "deadbeef" {
		t.Errorf("cell_hash = %v, want deadbeef", entry["cell_hash"])
	}
	if entry["reason"] != "timeout" {
		t.Errorf("reason = %v, want timeout", entry["reason"])
	}
	if _, ok := entry["courses"]; ok {
		t.Error("zero fields should not be logged")
	}
}
