// Package main provides the schedule extraction server entry point.
package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/schedulellm/schedulellm-go/internal/config"
	"github.com/schedulellm/schedulellm-go/internal/logger"
	"github.com/schedulellm/schedulellm-go/internal/resolve"
	"github.com/schedulellm/schedulellm-go/internal/semantic"
	"github.com/schedulellm/schedulellm-go/internal/sentry"
	"github.com/schedulellm/schedulellm-go/internal/storage"
)

type serverDeps struct {
	cfg          *config.Config
	log          *logger.Logger
	db           *storage.DB
	auditSink    *storage.AuditSink
	orchestrator *resolve.Orchestrator
	parser       semantic.Parser
	registry     *prometheus.Registry
}

// parseRequest is the body of POST /api/parse. UseSemantic defaults to
// true; setting it false forces rule extraction even when an LLM is
// configured.
type parseRequest struct {
	Cells       []string `json:"cells" binding:"required"`
	UseSemantic *bool    `json:"useSemantic"`
}

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, deps *serverDeps) {
	// Health check endpoints
	// Liveness Probe - checks if the application is alive (minimal check)
	// This should NEVER check dependencies - only that the process is running
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness Probe - checks if the application is ready to serve traffic
	readyHandler := func(c *gin.Context) {
		if err := deps.db.Conn().PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": "database unavailable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "ready",
			"database": "connected",
			"features": gin.H{
				"semantic_parser": deps.parser != nil && deps.parser.IsEnabled(),
			},
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Extraction endpoint
	router.POST("/api/parse", func(c *gin.Context) {
		var req parseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cells array is required"})
			return
		}

		run := deps.orchestrator.Run
		if req.UseSemantic != nil && !*req.UseSemantic {
			run = deps.orchestrator.RunRules
		}

		result, err := run(c.Request.Context(), req.Cells, nil)
		if err != nil {
			if errors.Is(err, resolve.ErrBusy) {
				c.JSON(http.StatusConflict, gin.H{"error": "extraction run already in progress"})
				return
			}
			deps.log.WithError(err).Error("Extraction run failed")
			sentry.CaptureExceptionWithContext(c.Request.Context(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "extraction failed"})
			return
		}

		c.JSON(http.StatusOK, result)
	})

	// Audit endpoints
	router.GET("/api/audit/recent", func(c *gin.Context) {
		limit := 100
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 1000 {
				limit = n
			}
		}

		records, err := deps.auditSink.Recent(c.Request.Context(), limit)
		if err != nil {
			deps.log.WithError(err).Error("Audit query failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "audit query failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"records": records})
	})

	router.GET("/api/audit/summary", func(c *gin.Context) {
		counts, err := deps.auditSink.CountByType(c.Request.Context())
		if err != nil {
			deps.log.WithError(err).Error("Audit summary failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "audit summary failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"counts": counts})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics",
		metricsAuthMiddleware(deps.cfg.MetricsUsername, deps.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(deps.registry, promhttp.HandlerOpts{})))
}
