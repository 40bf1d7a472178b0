// Package main provides a one-shot command line extractor. It reads
// timetable cells from a file or stdin and prints the extraction result
// as JSON. Input is either a JSON array of strings or one cell per line
// with \n escapes for line breaks inside a cell.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/schedulellm/schedulellm-go/internal/config"
	"github.com/schedulellm/schedulellm-go/internal/logger"
	"github.com/schedulellm/schedulellm-go/internal/resolve"
	"github.com/schedulellm/schedulellm-go/internal/semantic"
)

func main() {
	var (
		inputPath   = flag.String("input", "-", "cells file (\"-\" for stdin)")
		useSemantic = flag.Bool("semantic", false, "use the LLM with rule fallback instead of rules only")
		timeout     = flag.Duration("timeout", config.RunProcessing, "overall run deadline")
		logLevel    = flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	log := logger.New(*logLevel)

	cells, err := readCells(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		os.Exit(1)
	}
	if len(cells) == 0 {
		fmt.Fprintln(os.Stderr, "no cells to parse")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	var parser semantic.Parser
	if *useSemantic {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		if !cfg.HasLLMProvider() {
			fmt.Fprintln(os.Stderr, "-semantic requires an LLM API key in the environment")
			os.Exit(1)
		}
		apiKey := cfg.LLMAPIKey
		if cfg.LLMProvider == "gemini" {
			apiKey = cfg.GeminiAPIKey
		}
		parser, err = semantic.New(ctx, semantic.Config{
			Provider:    semantic.Provider(cfg.LLMProvider),
			BaseURL:     cfg.LLMBaseURL,
			APIKey:      apiKey,
			Model:       cfg.LLMModel,
			Temperature: cfg.LLMTemperature,
			Retry:       semantic.DefaultRetryConfig(),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "semantic parser: %v\n", err)
			os.Exit(1)
		}
		// New returns a nil parser when the selected provider has no
		// API key, even if the other provider's key is set.
		if parser == nil {
			fmt.Fprintf(os.Stderr, "-semantic requires an API key for provider %q\n", cfg.LLMProvider)
			os.Exit(1)
		}
		defer func() { _ = parser.Close() }()
	}

	orchestrator := resolve.New(resolve.Options{
		Parser: parser,
		Log:    log,
	})

	start := time.Now()
	onProgress := func(p resolve.Progress) {
		if p.Slow {
			fmt.Fprintln(os.Stderr, "still parsing...")
		}
	}

	var result *resolve.RunResult
	if parser != nil {
		result, err = orchestrator.Run(ctx, cells, onProgress)
	} else {
		result, err = orchestrator.RunRules(ctx, cells, onProgress)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "run: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "encode result: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "%d cells, %d courses in %s\n",
		result.Processed, result.Extracted, time.Since(start).Round(time.Millisecond))

	if result.Extracted == 0 {
		os.Exit(1)
	}
}

// readCells loads the input cells. A leading "[" means a JSON array of
// strings; otherwise one cell per line with literal \n treated as a
// line break inside the cell.
func readCells(path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(bufio.NewReader(r))
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var cells []string
		if err := json.Unmarshal([]byte(trimmed), &cells); err != nil {
			return nil, fmt.Errorf("parse JSON array: %w", err)
		}
		return cells, nil
	}

	var cells []string
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cells = append(cells, strings.ReplaceAll(line, `\n`, "\n"))
	}
	return cells, nil
}
