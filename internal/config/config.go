// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults
// for the server, the semantic parser, audit storage, and exports.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Semantic Parser Configuration
	LLMProvider    string  // "openai" (any OpenAI-compatible endpoint) or "gemini"
	LLMBaseURL     string  // Base URL for OpenAI-compatible endpoints (empty = DashScope default)
	LLMAPIKey      string  // API key for the OpenAI-compatible provider
	LLMModel       string  // Model name (empty = provider default)
	LLMTemperature float64 // Sampling temperature (low keeps extraction deterministic)
	GeminiAPIKey   string  // Gemini API key (used when LLMProvider is "gemini")

	// Resolver Configuration
	SlowParseThreshold time.Duration // Per-cell duration before a slow-parse signal fires

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir         string // Data directory for the SQLite audit database
	AuditMaxRecords int    // Audit table size cap (pruned after each run)

	// Export Configuration (embedded)
	Export ExportConfig

	// Sentry Configuration
	SentryEnabled     bool
	SentryDSN         string
	SentryEnvironment string
	SentryRelease     string
	SentrySampleRate  float64

	// Better Stack Configuration
	BetterStackToken    string
	BetterStackEndpoint string

	// Metrics Authentication
	MetricsUsername string // Username for /metrics endpoint Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics endpoint Basic Auth (empty = no auth)
}

// ExportConfig holds audit snapshot export configuration
type ExportConfig struct {
	Enabled       bool
	Endpoint      string // S3-compatible endpoint URL
	AccessKeyID   string
	SecretKey     string
	Bucket        string
	Prefix        string // Key prefix inside the bucket
	SnapshotLimit int    // Max records per snapshot
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first, then reads from env vars.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// Semantic Parser Configuration
		LLMProvider:    getEnv(EnvLLMProvider, "openai"),
		LLMBaseURL:     getEnv(EnvLLMBaseURL, ""),
		LLMAPIKey:      getEnv(EnvLLMAPIKey, ""),
		LLMModel:       getEnv(EnvLLMModel, ""),
		LLMTemperature: getFloatEnv(EnvLLMTemperature, 0.1),
		GeminiAPIKey:   getEnv(EnvGeminiAPIKey, ""),

		// Resolver Configuration
		SlowParseThreshold: getDurationEnv(EnvSlowParseThreshold, SlowParse),

		// Server Configuration
		Port:            getEnv(EnvPort, "10000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, GracefulShutdown),

		// Data Configuration
		DataDir:         getEnv(EnvDataDir, getDefaultDataDir()),
		AuditMaxRecords: getIntEnv(EnvAuditMaxRecords, 10000),

		// Export Configuration
		Export: ExportConfig{
			Enabled:       getBoolEnv(EnvExportEnabled, false),
			Endpoint:      getEnv(EnvExportEndpoint, ""),
			AccessKeyID:   getEnv(EnvExportAccessKeyID, ""),
			SecretKey:     getEnv(EnvExportSecretKey, ""),
			Bucket:        getEnv(EnvExportBucket, ""),
			Prefix:        getEnv(EnvExportPrefix, "snapshots"),
			SnapshotLimit: getIntEnv(EnvExportSnapshotLimit, 5000),
		},

		// Sentry Configuration
		SentryEnabled:     getBoolEnv(EnvSentryEnabled, false),
		SentryDSN:         getEnv(EnvSentryDSN, ""),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),
		SentryRelease:     getEnv(EnvSentryRelease, ""),
		SentrySampleRate:  getFloatEnv(EnvSentrySampleRate, 1.0),

		// Better Stack Configuration
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),

		// Metrics Authentication
		MetricsUsername: getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword: getEnv(EnvMetricsPassword, ""),
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New(EnvPort+" is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New(EnvDataDir+" is required"))
	}
	switch c.LLMProvider {
	case "openai", "gemini":
	default:
		errs = append(errs, fmt.Errorf("%s must be \"openai\" or \"gemini\", got %q", EnvLLMProvider, c.LLMProvider))
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		errs = append(errs, fmt.Errorf("%s must be in [0, 2], got %v", EnvLLMTemperature, c.LLMTemperature))
	}
	if c.SlowParseThreshold <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvSlowParseThreshold, c.SlowParseThreshold))
	}
	if c.AuditMaxRecords <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %d", EnvAuditMaxRecords, c.AuditMaxRecords))
	}
	if c.Export.Enabled {
		if c.Export.Endpoint == "" || c.Export.AccessKeyID == "" || c.Export.SecretKey == "" || c.Export.Bucket == "" {
			errs = append(errs, errors.New("export requires endpoint, access key, secret key, and bucket when enabled"))
		}
	}
	if c.SentryEnabled && c.SentryDSN == "" {
		errs = append(errs, errors.New(EnvSentryDSN+" is required when Sentry is enabled"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite audit database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "audit.db")
}

// HasLLMProvider returns true if a semantic parser can be configured.
func (c *Config) HasLLMProvider() bool {
	return c.LLMAPIKey != "" || c.GeminiAPIKey != ""
}
