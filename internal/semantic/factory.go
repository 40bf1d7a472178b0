// Package semantic provides the LLM-backed extraction path.
// This file contains the factory for creating parsers.
package semantic

import (
	"context"
	"fmt"
	"log/slog"
)

// New creates a Parser for the configured provider, wrapped in a result
// cache keyed by model and cell text. Returns (nil, nil) when no API key
// is configured; the resolver treats a nil parser as "semantic path
// disabled" and runs rule-based extraction only.
func New(ctx context.Context, cfg Config) (Parser, error) {
	if cfg.APIKey == "" {
		slog.InfoContext(ctx, "no API key configured, semantic extraction disabled")
		return nil, nil //nolint:nilnil // Intentional: semantic path optional
	}

	var (
		parser Parser
		err    error
	)
	switch cfg.Provider {
	case ProviderGemini:
		var p *geminiParser
		p, err = newGeminiParser(ctx, cfg)
		if p != nil {
			parser = p
		}
	case ProviderOpenAI, "":
		var p *openaiParser
		p, err = newOpenAIParser(cfg)
		if p != nil {
			parser = p
		}
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	if parser == nil {
		return nil, nil //nolint:nilnil
	}

	slog.InfoContext(ctx, "semantic parser configured",
		"provider", parser.Provider(),
		"model", parser.Model())

	return NewCachedParser(parser), nil
}
