// Package semantic provides the LLM-backed extraction path.
// This file contains the Gemini implementation.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

// geminiParser extracts course data using the Gemini API. It implements
// the Parser interface.
type geminiParser struct {
	client      *genai.Client
	model       string
	temperature float64
	retry       RetryConfig
}

// newGeminiParser creates a new Gemini-based parser.
// Returns nil if apiKey is empty (semantic path disabled).
func newGeminiParser(ctx context.Context, cfg Config) (*geminiParser, error) {
	if cfg.APIKey == "" {
		return nil, nil //nolint:nilnil // Intentional: semantic path disabled when no API key
	}

	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiParser{
		client:      client,
		model:       model,
		temperature: temperature,
		retry:       cfg.Retry,
	}, nil
}

// Parse sends one cell to the model and decodes the structured answer.
func (p *geminiParser) Parse(ctx context.Context, rawText string) (*Result, error) {
	if p == nil {
		return nil, errors.New("semantic parser is nil")
	}
	if strings.TrimSpace(rawText) == "" {
		return &Result{Courses: []CourseResult{}, Confidence: 1.0}, nil
	}

	payload, err := BuildPayload(rawText)
	if err != nil {
		return nil, err
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](float32(p.temperature)),
		ResponseMIMEType:  "application/json",
	}

	var result *Result
	start := time.Now()
	err = withRetry(ctx, p.retry, func() error {
		resp, apiErr := p.client.Models.GenerateContent(ctx, p.model, genai.Text(payload), config)
		if apiErr != nil {
			return fmt.Errorf("generate content failed: %w", apiErr)
		}

		decoded, decodeErr := decodeResult(resp.Text(), rawText)
		if decodeErr != nil {
			return decodeErr
		}
		result = decoded

		if resp.UsageMetadata != nil {
			slog.DebugContext(ctx, "semantic extraction completed",
				"provider", ProviderGemini,
				"model", p.model,
				"input_tokens", resp.UsageMetadata.PromptTokenCount,
				"output_tokens", resp.UsageMetadata.CandidatesTokenCount,
				"total_tokens", resp.UsageMetadata.TotalTokenCount,
				"duration_ms", time.Since(start).Milliseconds(),
				"courses", len(decoded.Courses))
		}
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "semantic extraction failed",
			"provider", ProviderGemini,
			"model", p.model,
			"input_length", len(rawText),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return nil, err
	}

	return result, nil
}

// IsEnabled returns true if the parser is enabled.
func (p *geminiParser) IsEnabled() bool {
	return p != nil
}

// Provider returns the provider type for this parser.
func (p *geminiParser) Provider() Provider {
	return ProviderGemini
}

// Model returns the configured model name.
func (p *geminiParser) Model() string {
	if p == nil {
		return ""
	}
	return p.model
}

// Close releases resources held by the parser.
// Safe to call on nil receiver.
func (p *geminiParser) Close() error {
	// genai client doesn't require explicit cleanup
	return nil
}
