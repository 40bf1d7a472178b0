// Package config provides centralized timeout constants for the application.
//
// These values are tuned around:
//   - LLM chat completion latency (small prompts, JSON output)
//   - SQLite performance characteristics (WAL mode, busy timeout)
//   - Object storage upload times for compressed snapshots
package config

import "time"

// HTTP server timeouts
const (
	// HTTPRead is the server read timeout. Parse requests carry small
	// JSON payloads, so reading should be fast.
	HTTPRead = 10 * time.Second

	// HTTPWrite is the server write timeout. A full extraction run over
	// a timetable can involve dozens of LLM calls, so writes get the
	// same headroom as the run itself.
	HTTPWrite = 130 * time.Second

	// HTTPIdle is the idle timeout for keep-alive connections.
	HTTPIdle = 120 * time.Second
)

// Extraction timeouts
const (
	// RunProcessing is the overall deadline for one extraction run.
	RunProcessing = 120 * time.Second

	// LLMRequest is the deadline for a single chat completion call,
	// including its retries.
	LLMRequest = 30 * time.Second

	// SlowParse is how long a single cell may take before a slow-parse
	// progress signal fires. Matches the semantic parser's typical
	// response time at the 95th percentile.
	SlowParse = 3 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is the SQLite busy_timeout pragma value.
	// Handles write contention between the resolver and the exporter.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database
	// connections.
	DatabaseConnMaxLifetime = time.Hour
)

// Export timeouts
const (
	// ExportUpload is the deadline for one snapshot upload.
	ExportUpload = 60 * time.Second

	// ExportInterval is how often audit snapshots are shipped to object
	// storage when the export feature is enabled.
	ExportInterval = 1 * time.Hour

	// ExportInitialDelay is the delay before the first snapshot export.
	// Allows the server to stabilize before uploading.
	ExportInitialDelay = 5 * time.Minute
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight extraction runs to complete.
	GracefulShutdown = 30 * time.Second
)
