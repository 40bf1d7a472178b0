// Package semantic provides the LLM-backed extraction path.
// This file contains the unified OpenAI-compatible implementation.
// It works with any OpenAI-compatible provider (DashScope, OpenAI proper)
// via custom BaseURL.
package semantic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// openaiParser extracts course data through an OpenAI-compatible chat
// completion API. It implements the Parser interface.
type openaiParser struct {
	client      openai.Client
	model       string
	temperature float64
	retry       RetryConfig
}

// newOpenAIParser creates a new OpenAI-compatible parser.
// Returns nil if apiKey is empty (semantic path disabled).
func newOpenAIParser(cfg Config) (*openaiParser, error) {
	if cfg.APIKey == "" {
		return nil, nil //nolint:nilnil // Intentional: semantic path disabled when no API key
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(cfg.APIKey),
	)

	return &openaiParser{
		client:      client,
		model:       model,
		temperature: temperature,
		retry:       cfg.Retry,
	}, nil
}

// Parse sends one cell to the model and decodes the structured answer.
func (p *openaiParser) Parse(ctx context.Context, rawText string) (*Result, error) {
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

	params := openai.ChatCompletionNewParams{
		Model: p.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(payload),
		},
		Temperature: openai.Float(p.temperature),
	}

	var result *Result
	start := time.Now()
	err = withRetry(ctx, p.retry, func() error {
		resp, apiErr := p.client.Chat.Completions.New(ctx, params)
		if apiErr != nil {
			return fmt.Errorf("chat completion failed: %w", apiErr)
		}
		if len(resp.Choices) == 0 {
			return ErrEmptyResponse
		}

		decoded, decodeErr := decodeResult(resp.Choices[0].Message.Content, rawText)
		if decodeErr != nil {
			return decodeErr
		}
		result = decoded

		if resp.Usage.TotalTokens > 0 {
			slog.DebugContext(ctx, "semantic extraction completed",
				"provider", ProviderOpenAI,
				"model", p.model,
				"input_tokens", resp.Usage.PromptTokens,
				"output_tokens", resp.Usage.CompletionTokens,
				"total_tokens", resp.Usage.TotalTokens,
				"duration_ms", time.Since(start).Milliseconds(),
				"courses", len(decoded.Courses))
		}
		return nil
	})
	if err != nil {
		slog.WarnContext(ctx, "semantic extraction failed",
			"provider", ProviderOpenAI,
			"model", p.model,
			"input_length", len(rawText),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return nil, err
	}

	return result, nil
}

// IsEnabled returns true if the parser is enabled.
func (p *openaiParser) IsEnabled() bool {
	return p != nil
}

// Provider returns the provider type for this parser.
func (p *openaiParser) Provider() Provider {
	return ProviderOpenAI
}

// Model returns the configured model name.
func (p *openaiParser) Model() string {
	if p == nil {
		return ""
	}
	return p.model
}

// Close releases resources held by the parser.
// Safe to call on nil receiver.
func (p *openaiParser) Close() error {
	// openai-go client doesn't require cleanup
	return nil
}
