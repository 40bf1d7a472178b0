// Package resolve orchestrates the two extraction paths over a batch of
// timetable cells. The semantic path is consulted first when enabled;
// any failure, exception, or empty answer falls back to the rule-based
// parser so a cell is never silently dropped. Cells are processed
// sequentially with a single run in flight at a time.
package resolve

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/schedulellm/schedulellm-go/internal/audit"
	"github.com/schedulellm/schedulellm-go/internal/course"
	"github.com/schedulellm/schedulellm-go/internal/ctxutil"
	"github.com/schedulellm/schedulellm-go/internal/location"
	"github.com/schedulellm/schedulellm-go/internal/logger"
	"github.com/schedulellm/schedulellm-go/internal/metrics"
	"github.com/schedulellm/schedulellm-go/internal/parser"
	"github.com/schedulellm/schedulellm-go/internal/semantic"
	"github.com/schedulellm/schedulellm-go/internal/sliceutil"
	"github.com/schedulellm/schedulellm-go/internal/textnorm"
)

// ErrBusy is returned when a run is requested while another is in flight.
var ErrBusy = errors.New("extraction run already in progress")

// DefaultSlowThreshold is how long a single cell may take before the
// progress callback flags the run as slow.
const DefaultSlowThreshold = 3 * time.Second

// Sources recorded on cell results.
const (
	SourceSemantic = "semantic"
	SourceRules    = "rules"
)

// Options configures an Orchestrator. Parser may be nil, which disables
// the semantic path entirely; Sink and Metrics may be nil.
type Options struct {
	Parser        semantic.Parser
	Sink          audit.Sink
	Metrics       *metrics.Metrics
	Log           *logger.Logger
	SlowThreshold time.Duration
}

// Orchestrator runs hybrid extraction over batches of cells.
type Orchestrator struct {
	parser        semantic.Parser
	sink          audit.Sink
	metrics       *metrics.Metrics
	log           *logger.Logger
	slowThreshold time.Duration
	sem           *semaphore.Weighted
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	log := opts.Log
	if log == nil {
		log = logger.New("info")
	}
	threshold := opts.SlowThreshold
	if threshold <= 0 {
		threshold = DefaultSlowThreshold
	}
	return &Orchestrator{
		parser:        opts.Parser,
		sink:          opts.Sink,
		metrics:       opts.Metrics,
		log:           log.WithModule("resolve"),
		slowThreshold: threshold,
		sem:           semaphore.NewWeighted(1),
	}
}

// Progress reports per-cell advancement of a run. Slow is set when the
// current cell has been in flight longer than the slow threshold.
type Progress struct {
	Processed int
	Total     int
	Extracted int
	Slow      bool
}

// CellResult is the outcome for one unique cell.
type CellResult struct {
	Cell    string          `json:"cell"`
	Courses []course.Record `json:"courses"`
	Source  string          `json:"source"`
}

// RunResult summarizes a finished run.
type RunResult struct {
	RunID     string       `json:"runId"`
	Cells     []CellResult `json:"cells"`
	Processed int          `json:"processed"`
	Extracted int          `json:"extracted"`
	Failures  int          `json:"failures"`
}

// Run extracts courses from the given cells. Cells are canonicalized,
// filtered against the ignore patterns, and deduplicated before
// processing; onProgress, when non-nil, is invoked after every cell and
// from the slow timer. Returns ErrBusy when another run is in flight.
func (o *Orchestrator) Run(ctx context.Context, cells []string, onProgress func(Progress)) (*RunResult, error) {
	return o.run(ctx, cells, onProgress, true)
}

// RunRules behaves like Run but bypasses the semantic parser, so every
// cell goes through rule extraction. Shares the single-run guarantee
// with Run.
func (o *Orchestrator) RunRules(ctx context.Context, cells []string, onProgress func(Progress)) (*RunResult, error) {
	return o.run(ctx, cells, onProgress, false)
}

func (o *Orchestrator) run(ctx context.Context, cells []string, onProgress func(Progress), useSemantic bool) (*RunResult, error) {
	if !o.sem.TryAcquire(1) {
		return nil, ErrBusy
	}
	defer o.sem.Release(1)

	runID := uuid.NewString()
	ctx = ctxutil.WithRunID(ctx, runID)

	unique := o.collect(cells)
	result := &RunResult{RunID: runID, Cells: make([]CellResult, 0, len(unique))}

	o.emit(ctx, audit.Record{
		Type:     audit.TypeRunStart,
		RunID:    runID,
		Provider: o.providerName(),
		Model:    o.modelName(),
		RawCells: len(cells),
	})
	o.log.WithRunID(runID).WithField("raw_cells", len(cells)).
		WithField("unique_cells", len(unique)).Info("extraction run started")

	start := time.Now()
	for _, cell := range unique {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cellCtx := ctxutil.WithCellHash(ctx, audit.CellHash(cell))

		var slowTimer *time.Timer
		if onProgress != nil {
			processed, extracted := result.Processed, result.Extracted
			slowTimer = time.AfterFunc(o.slowThreshold, func() {
				onProgress(Progress{
					Processed: processed,
					Total:     len(unique),
					Extracted: extracted,
					Slow:      true,
				})
			})
		}

		cr := o.processCell(cellCtx, cell, result, useSemantic)
		if slowTimer != nil {
			slowTimer.Stop()
		}
		result.Cells = append(result.Cells, cr)
		result.Processed++
		result.Extracted += len(cr.Courses)

		if onProgress != nil {
			onProgress(Progress{
				Processed: result.Processed,
				Total:     len(unique),
				Extracted: result.Extracted,
			})
		}
	}

	o.emit(ctx, audit.Record{
		Type:      audit.TypeRunEnd,
		RunID:     runID,
		Provider:  o.providerName(),
		Model:     o.modelName(),
		Processed: result.Processed,
		Extracted: result.Extracted,
		Failures:  result.Failures,
	})
	if o.metrics != nil {
		o.metrics.RecordRun(result.Processed, time.Since(start).Seconds())
	}
	o.log.WithRunID(runID).
		WithField("processed", result.Processed).
		WithField("extracted", result.Extracted).
		WithField("failures", result.Failures).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("extraction run finished")

	return result, nil
}

// collect canonicalizes, filters, and deduplicates the raw cells while
// preserving first-seen order.
func (o *Orchestrator) collect(cells []string) []string {
	canonical := make([]string, 0, len(cells))
	for _, cell := range cells {
		if strings.TrimSpace(cell) == "" {
			continue
		}
		key := textnorm.CanonicalCellKey(cell)
		if key == "" || IsIgnorable(key) {
			continue
		}
		canonical = append(canonical, key)
	}
	return sliceutil.Deduplicate(canonical, func(s string) string { return s })
}

// processCell runs one cell through the semantic path with rule-based
// fallback. The slow timer fires the progress callback out of band so a
// stuck model call is visible before the cell finishes.
func (o *Orchestrator) processCell(ctx context.Context, cell string, result *RunResult, useSemantic bool) CellResult {
	if !useSemantic || o.parser == nil || !o.parser.IsEnabled() {
		return CellResult{Cell: cell, Courses: parser.ParseCell(cell), Source: SourceRules}
	}

	hash := audit.CellHash(cell)
	start := time.Now()

	semResult, err := o.parser.Parse(ctx, cell)
	duration := time.Since(start)

	switch {
	case err != nil:
		result.Failures++
		o.recordSemantic("exception", duration)
		fallback := parser.ParseCell(cell)
		o.emit(ctx, audit.Record{
			Type:         audit.TypeLLMException,
			Provider:     o.providerName(),
			Model:        o.modelName(),
			CellHash:     hash,
			CellLen:      len([]rune(cell)),
			Reason:       err.Error(),
			RuleFallback: len(fallback),
		})
		o.logFallback(ctx, len(fallback))
		return CellResult{Cell: cell, Courses: fallback, Source: SourceRules}

	case len(semResult.Courses) == 0:
		o.recordSemantic("failure", duration)
		fallback := parser.ParseCell(cell)
		o.emit(ctx, audit.Record{
			Type:         audit.TypeLLMFailure,
			Provider:     o.providerName(),
			Model:        o.modelName(),
			CellHash:     hash,
			CellLen:      len([]rune(cell)),
			Reason:       "empty courses array",
			RuleFallback: len(fallback),
		})
		o.logFallback(ctx, len(fallback))
		return CellResult{Cell: cell, Courses: fallback, Source: SourceRules}

	default:
		o.recordSemantic("success", duration)
		records := toRecords(semResult, cell)
		o.emit(ctx, audit.Record{
			Type:     audit.TypeLLMSuccess,
			Provider: o.providerName(),
			Model:    o.modelName(),
			CellHash: hash,
			CellLen:  len([]rune(cell)),
			Courses:  len(records),
		})
		if o.metrics != nil {
			o.metrics.RecordCoursesExtracted(SourceSemantic, len(records))
		}
		return CellResult{Cell: cell, Courses: records, Source: SourceSemantic}
	}
}

func (o *Orchestrator) logFallback(ctx context.Context, recovered int) {
	if o.metrics != nil {
		o.metrics.RecordRuleFallback(recovered > 0)
		o.metrics.RecordCoursesExtracted(SourceRules, recovered)
	}
	if recovered > 0 {
		o.log.InfoContext(ctx, "rule-based fallback recovered courses", "courses", recovered)
	} else {
		o.log.WarnContext(ctx, "both extraction paths returned nothing")
	}
}

func (o *Orchestrator) recordSemantic(status string, duration time.Duration) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordSemanticRequest(o.providerName(), o.modelName(), status, duration.Seconds())
}

func (o *Orchestrator) emit(ctx context.Context, rec audit.Record) {
	if o.sink == nil {
		return
	}
	rec.Timestamp = time.Now().UTC()
	if rec.RunID == "" {
		rec.RunID = ctxutil.GetRunID(ctx)
	}
	if err := o.sink.Write(ctx, rec); err != nil {
		o.log.WithError(err).WarnContext(ctx, "audit record write failed", "type", rec.Type)
	}
}

func (o *Orchestrator) providerName() string {
	if o.parser == nil {
		return ""
	}
	return o.parser.Provider().String()
}

func (o *Orchestrator) modelName() string {
	if o.parser == nil {
		return ""
	}
	return o.parser.Model()
}

// toRecords converts a semantic result into standardized course records.
// Repair notes from postprocessing are carried onto every record of the
// cell so they stay visible in the run output.
func toRecords(res *semantic.Result, cell string) []course.Record {
	var repairs []course.Repair
	for _, note := range res.Repairs {
		repairs = append(repairs, course.Repair{
			Field:      note.Field,
			From:       note.From,
			To:         note.To,
			Reason:     note.Reason,
			Confidence: note.Confidence,
		})
	}

	records := make([]course.Record, 0, len(res.Courses))
	for _, c := range res.Courses {
		locSeed := c.Location
		if c.Building != "" && c.Room != "" {
			locSeed = location.Merge(c.Building, c.Room)
		}

		rec := course.Record{
			RawName:     c.Name,
			DisplayName: c.Name,
			Weeks:       c.Weeks,
			WeeksRaw:    c.RawWeeks,
			Location:    locSeed,
			ClassName:   c.ClassName,
			PeriodRange: c.PeriodRange,
			Teacher:     c.Teacher,
			RawStr:      cell,
			Repairs:     repairs,
		}
		if rec.Weeks == nil {
			rec.Weeks = []int{}
		}
		rec.Confidence = course.ComputeConfidence(rec)
		course.Standardize(&rec)
		records = append(records, rec)
	}
	return records
}
