// Package config defines environment variable keys for configuration.
package config

//nolint:gosec,revive // Environment variable keys are not credentials and do not need per-const comments.
const (
	// Server
	EnvPort            = "SCHED_PORT"
	EnvLogLevel        = "SCHED_LOG_LEVEL"
	EnvShutdownTimeout = "SCHED_SHUTDOWN_TIMEOUT"

	// Data
	EnvDataDir         = "SCHED_DATA_DIR"
	EnvAuditMaxRecords = "SCHED_AUDIT_MAX_RECORDS"

	// LLM Feature
	EnvLLMProvider    = "SCHED_LLM_PROVIDER"
	EnvLLMBaseURL     = "SCHED_LLM_BASE_URL"
	EnvLLMAPIKey      = "SCHED_LLM_API_KEY"
	EnvLLMModel       = "SCHED_LLM_MODEL"
	EnvLLMTemperature = "SCHED_LLM_TEMPERATURE"
	EnvGeminiAPIKey   = "SCHED_GEMINI_API_KEY"

	// Resolver
	EnvSlowParseThreshold = "SCHED_SLOW_PARSE_THRESHOLD"

	// Export Feature
	EnvExportEnabled       = "SCHED_EXPORT_ENABLED"
	EnvExportEndpoint      = "SCHED_EXPORT_ENDPOINT"
	EnvExportAccessKeyID   = "SCHED_EXPORT_ACCESS_KEY_ID"
	EnvExportSecretKey     = "SCHED_EXPORT_SECRET_ACCESS_KEY"
	EnvExportBucket        = "SCHED_EXPORT_BUCKET"
	EnvExportPrefix        = "SCHED_EXPORT_PREFIX"
	EnvExportSnapshotLimit = "SCHED_EXPORT_SNAPSHOT_LIMIT"

	// Sentry Feature
	EnvSentryEnabled     = "SCHED_SENTRY_ENABLED"
	EnvSentryDSN         = "SCHED_SENTRY_DSN"
	EnvSentryEnvironment = "SCHED_SENTRY_ENVIRONMENT"
	EnvSentryRelease     = "SCHED_SENTRY_RELEASE"
	EnvSentrySampleRate  = "SCHED_SENTRY_SAMPLE_RATE"

	// Better Stack Feature
	EnvBetterStackToken    = "SCHED_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "SCHED_BETTERSTACK_ENDPOINT"

	// Metrics Auth Feature
	EnvMetricsUsername = "SCHED_METRICS_USERNAME"
	EnvMetricsPassword = "SCHED_METRICS_PASSWORD"
)
