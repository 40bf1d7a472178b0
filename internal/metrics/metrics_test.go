package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordSemanticRequest(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	m.RecordSemanticRequest("openai", "qwen-flash", "success", 1.2)
	m.RecordSemanticRequest("openai", "qwen-flash", "failure", 0.4)

	if got := testutil.ToFloat64(m.SemanticRequestsTotal.WithLabelValues("openai", "qwen-flash", "success")); got != 1 {
		t.Errorf("success counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SemanticRequestsTotal.WithLabelValues("openai", "qwen-flash", "failure")); got != 1 {
		t.Errorf("failure counter = %v, want 1", got)
	}
}

func TestRecordRuleFallback(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	m.RecordRuleFallback(true)
	m.RecordRuleFallback(true)
	m.RecordRuleFallback(false)

	if got := testutil.ToFloat64(m.RuleFallbacksTotal.WithLabelValues("recovered")); got != 2 {
		t.Errorf("recovered = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.RuleFallbacksTotal.WithLabelValues("empty")); got != 1 {
		t.Errorf("empty = %v, want 1", got)
	}
}

func TestRecordCoursesExtractedIgnoresZero(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	m.RecordCoursesExtracted("semantic", 0)
	m.RecordCoursesExtracted("semantic", 3)

	if got := testutil.ToFloat64(m.CoursesExtracted.WithLabelValues("semantic")); got != 3 {
		t.Errorf("courses extracted = %v, want 3", got)
	}
}

func TestRecordCaches(t *testing.T) {
	t.Parallel()

	m := New(prometheus.NewRegistry())
	m.RecordCacheHit("semantic")
	m.RecordCacheMiss("semantic")
	m.RecordCacheMiss("cell")

	if got := testutil.ToFloat64(m.CacheHitsTotal.WithLabelValues("semantic")); got != 1 {
		t.Errorf("hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CacheMissesTotal.WithLabelValues("cell")); got != 1 {
		t.Errorf("cell misses = %v, want 1", got)
	}
}
