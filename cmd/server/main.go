// Package main provides the schedule extraction server entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/schedulellm/schedulellm-go/internal/audit"
	"github.com/schedulellm/schedulellm-go/internal/buildinfo"
	"github.com/schedulellm/schedulellm-go/internal/config"
	"github.com/schedulellm/schedulellm-go/internal/export"
	"github.com/schedulellm/schedulellm-go/internal/logger"
	"github.com/schedulellm/schedulellm-go/internal/metrics"
	"github.com/schedulellm/schedulellm-go/internal/resolve"
	"github.com/schedulellm/schedulellm-go/internal/semantic"
	"github.com/schedulellm/schedulellm-go/internal/sentry"
	"github.com/schedulellm/schedulellm-go/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, logger.Options{
		BetterStackToken:    cfg.BetterStackToken,
		BetterStackEndpoint: cfg.BetterStackEndpoint,
	})
	log = log.WithField("service", "schedulellm-go")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Set as default logger to enable context value extraction
	// (request_id, run_id, cell_hash) via ContextHandler in
	// package-level slog.*Context() calls.
	slog.SetDefault(log.Logger)

	log.WithField("version", buildinfo.Version).
		WithField("commit", buildinfo.Commit).
		Info("Starting schedule extraction server")
	if cfg.BetterStackToken != "" {
		log.WithField("endpoint", cfg.BetterStackEndpoint).Info("Better Stack logging enabled")
	}

	// Initialize Sentry (no-op when disabled)
	if cfg.SentryEnabled {
		release := cfg.SentryRelease
		if release == "" {
			release = buildinfo.Version
		}
		if err := sentry.Initialize(sentry.Config{
			DSN:         cfg.SentryDSN,
			Environment: cfg.SentryEnvironment,
			Release:     release,
			SampleRate:  cfg.SentrySampleRate,
		}); err != nil {
			log.WithError(err).Warn("Sentry initialization failed")
		} else {
			log.WithField("environment", cfg.SentryEnvironment).Info("Sentry enabled")
		}
	}

	// Connect to the audit database
	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Errorf("Failed to open database")
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()
	log.WithField("path", cfg.SQLitePath()).Info("Database connected")

	auditSink := storage.NewAuditSink(db, cfg.AuditMaxRecords)
	sink := audit.NewMultiSink(auditSink, audit.NewLogSink(log.WithModule("audit").Logger))

	// Create Prometheus registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Create the semantic parser (optional, needs an API key)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var parser semantic.Parser
	if cfg.HasLLMProvider() {
		parser, err = semantic.New(ctx, buildSemanticConfig(cfg))
		if err != nil {
			log.WithError(err).Warn("Semantic parser initialization failed, rule extraction only")
		}
		if cached, ok := parser.(*semantic.CachedParser); ok {
			cached.SetObserver(m)
		}
	} else {
		log.Info("No LLM API key configured, rule extraction only")
	}

	orchestrator := resolve.New(resolve.Options{
		Parser:        parser,
		Sink:          sink,
		Metrics:       m,
		Log:           log,
		SlowThreshold: cfg.SlowParseThreshold,
	})

	// Create the snapshot exporter (optional)
	var exporter *export.Exporter
	if cfg.Export.Enabled {
		store, err := export.NewObjStore(ctx, export.ObjStoreConfig{
			Endpoint:    cfg.Export.Endpoint,
			AccessKeyID: cfg.Export.AccessKeyID,
			SecretKey:   cfg.Export.SecretKey,
			Bucket:      cfg.Export.Bucket,
		})
		if err != nil {
			log.WithError(err).Warn("Snapshot export initialization failed")
		} else {
			exporter = export.NewExporter(auditSink, store, cfg.Export.Prefix, cfg.Export.SnapshotLimit, log)
			log.WithField("bucket", cfg.Export.Bucket).Info("Snapshot export enabled")
		}
	}

	// Set Gin mode based on log level
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(securityHeadersMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log, m))

	setupRoutes(router, &serverDeps{
		cfg:          cfg,
		log:          log,
		db:           db,
		auditSink:    auditSink,
		orchestrator: orchestrator,
		parser:       parser,
		registry:     registry,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  config.HTTPRead,
		WriteTimeout: config.HTTPWrite,
		IdleTimeout:  config.HTTPIdle,
	}

	var wg sync.WaitGroup

	// Periodic snapshot export goroutine
	if exporter != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithField("panic", r).Errorf("Panic in snapshot export goroutine")
				}
			}()
			runPeriodicExport(ctx, exporter, log)
		}()
	}

	// Start server in goroutine
	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Errorf("Failed to start server")
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Stop background goroutines
	cancel()

	goDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(goDone)
	}()
	select {
	case <-goDone:
		log.Info("All background goroutines stopped")
	case <-time.After(5 * time.Second):
		log.Warn("Timeout waiting for goroutines to stop")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Errorf("Server forced to shutdown")
	}

	if parser != nil {
		if err := parser.Close(); err != nil {
			log.WithError(err).Errorf("Failed to close semantic parser")
		}
	}

	if err := sink.Close(); err != nil {
		log.WithError(err).Errorf("Failed to close audit sink")
	}

	if err := db.Close(); err != nil {
		log.WithError(err).Errorf("Failed to close database")
	}

	if cfg.SentryEnabled {
		sentry.Flush(2 * time.Second)
	}

	if async := log.Async(); async != nil {
		_ = async.Shutdown(shutdownCtx)
	}

	log.Info("Server stopped")
}

// buildSemanticConfig creates a semantic.Config from the application config.
func buildSemanticConfig(cfg *config.Config) semantic.Config {
	apiKey := cfg.LLMAPIKey
	if cfg.LLMProvider == "gemini" {
		apiKey = cfg.GeminiAPIKey
	}
	return semantic.Config{
		Provider:    semantic.Provider(cfg.LLMProvider),
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      apiKey,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		Retry:       semantic.DefaultRetryConfig(),
	}
}

// runPeriodicExport ships audit snapshots to object storage on a fixed
// interval until the context is canceled.
func runPeriodicExport(ctx context.Context, exporter *export.Exporter, log *logger.Logger) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(config.ExportInitialDelay):
	}

	ticker := time.NewTicker(config.ExportInterval)
	defer ticker.Stop()

	for {
		exportCtx, cancel := context.WithTimeout(ctx, config.ExportUpload)
		if _, err := exporter.Export(exportCtx); err != nil {
			log.WithError(err).Warn("Snapshot export failed")
			sentry.CaptureException(err)
		}
		cancel()

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
