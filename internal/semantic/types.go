// Package semantic provides the LLM-backed extraction path for
// timetable cells. It integrates with OpenAI-compatible APIs (DashScope,
// OpenAI) and Google's Gemini.
//
// Architecture:
// - OpenAI-compatible: Uses github.com/openai/openai-go/v3 with a custom BaseURL
// - Gemini: Uses google.golang.org/genai (official SDK)
//
// Every provider implements the Parser interface and returns the same
// Result shape, so the resolver never cares which backend answered.
package semantic

import (
	"context"
	"time"
)

// Provider represents an LLM provider.
type Provider string

const (
	// ProviderOpenAI represents any OpenAI-compatible API, including
	// Alibaba Cloud DashScope's compatible mode.
	ProviderOpenAI Provider = "openai"
	// ProviderGemini represents Google's Gemini API (non-OpenAI-compatible).
	ProviderGemini Provider = "gemini"
)

// String returns the string representation of the provider.
func (p Provider) String() string {
	return string(p)
}

const (
	// DefaultBaseURL is DashScope's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	// DefaultModel is the model used when none is configured.
	DefaultModel = "qwen-flash"
	// DefaultGeminiModel is the Gemini model used when none is configured.
	DefaultGeminiModel = "gemini-2.0-flash"
	// DefaultTemperature keeps extraction output stable across runs.
	DefaultTemperature = 0.1
)

// Config holds everything needed to construct a Parser.
type Config struct {
	Provider    Provider
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Retry       RetryConfig
}

// RetryConfig controls the retry behavior for transient API errors.
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     8 * time.Second,
	}
}

// Parser defines the interface for semantic cell extraction.
type Parser interface {
	// Parse extracts structured course data from one raw cell.
	Parse(ctx context.Context, rawText string) (*Result, error)
	// IsEnabled returns true if the parser is properly initialized.
	IsEnabled() bool
	// Provider returns the provider type for logging and metrics.
	Provider() Provider
	// Model returns the configured model name.
	Model() string
	// Close releases any resources held by the parser.
	Close() error
}

// Result is the structured answer for one cell.
type Result struct {
	Courses    []CourseResult `json:"courses"`
	Confidence float64        `json:"confidence"`
	Repairs    []RepairNote   `json:"repairs,omitempty"`
}

// CourseResult is one course as the model reported it, after local
// postprocessing. Weeks are always recomputed from RawWeeks when the
// model supplied one, since models frequently botch range expansion.
type CourseResult struct {
	Name        string `json:"name"`
	Weeks       []int  `json:"weeks"`
	RawWeeks    string `json:"raw_weeks"`
	Location    string `json:"location"`
	Building    string `json:"building"`
	Room        string `json:"room"`
	ClassName   string `json:"className"`
	PeriodRange string `json:"periodRange"`
	Teacher     string `json:"teacher"`
	NameSpan    []int  `json:"nameSpan,omitempty"`
}

// RepairNote documents a field fix the model or the postprocessor made,
// kept for audit review.
type RepairNote struct {
	Field      string  `json:"field,omitempty"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence,omitempty"`
	Spans      [][]int `json:"spans,omitempty"`
}
