// Package audit records what the extraction pipeline did without ever
// storing what it saw. Cell content is identified only by an FNV-1a hash
// and its length; raw timetable text and API keys never enter a record.
package audit

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"time"
)

// Record types emitted by the resolver.
const (
	TypeRunStart     = "run_start"
	TypeLLMSuccess   = "llm_success"
	TypeLLMFailure   = "llm_failure"
	TypeLLMException = "llm_exception"
	TypeRunEnd       = "run_end"
)

// Record is one audit event. Fields that do not apply to the record
// type stay zero and are omitted from JSON output.
type Record struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"ts"`
	RunID     string    `json:"runId,omitempty"`
	Provider  string    `json:"provider,omitempty"`
	Model     string    `json:"model,omitempty"`
	BaseURL   string    `json:"baseUrl,omitempty"`

	CellHash string `json:"cellHash,omitempty"`
	CellLen  int    `json:"cellLen,omitempty"`

	Courses      int    `json:"courses,omitempty"`
	LLMCourses   int    `json:"llmCourses,omitempty"`
	RuleFallback int    `json:"ruleFallback,omitempty"`
	Reason       string `json:"reason,omitempty"`

	RawCells  int `json:"rawCells,omitempty"`
	Processed int `json:"processed,omitempty"`
	Extracted int `json:"extracted,omitempty"`
	Failures  int `json:"failures,omitempty"`
}

// CellHash returns the lowercase hex FNV-1a 32-bit hash of a cell's
// text. The hash ties success and failure records to a cell across runs
// while keeping the cell content itself out of the audit trail.
func CellHash(s string) string {
	h := fnv.New32a()
	h.Write([]byte(s))
	return strconv.FormatUint(uint64(h.Sum32()), 16)
}

// Sink receives audit records. Implementations must tolerate concurrent
// writers.
type Sink interface {
	Write(ctx context.Context, rec Record) error
	Close() error
}

// MultiSink fans every record out to all member sinks. Write errors are
// joined so one failing sink does not hide another's.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a sink that writes to all of the given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Write sends the record to every member sink.
func (m *MultiSink) Write(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every member sink.
func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
