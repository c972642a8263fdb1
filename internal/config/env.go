// Package config defines environment variable keys for configuration.
package config

//nolint:gosec // Environment variable keys are not credentials.
const (
	// Server
	EnvPort            = "OZELDERS_PORT"
	EnvLogLevel        = "OZELDERS_LOG_LEVEL"
	EnvShutdownTimeout = "OZELDERS_SHUTDOWN_TIMEOUT"

	// Data
	EnvDataDir = "OZELDERS_DATA_DIR"

	// Assistant / LLM
	EnvLLMEnabled   = "OZELDERS_LLM_ENABLED"
	EnvLLMAPIKey    = "OZELDERS_LLM_API_KEY"
	EnvLLMBaseURL   = "OZELDERS_LLM_BASE_URL"
	EnvLLMModel     = "OZELDERS_LLM_MODEL"
	EnvLLMProvider  = "OZELDERS_LLM_PROVIDER"
	EnvLLMTimeout   = "OZELDERS_LLM_TIMEOUT"
	EnvGeminiAPIKey = "OZELDERS_GEMINI_API_KEY"
	EnvGeminiModel  = "OZELDERS_GEMINI_MODEL"

	// Metrics Auth
	EnvMetricsAuthEnabled = "OZELDERS_METRICS_AUTH_ENABLED"
	EnvMetricsUsername    = "OZELDERS_METRICS_USERNAME"
	EnvMetricsPassword    = "OZELDERS_METRICS_PASSWORD"

	// Sentry (Better Stack Errors)
	EnvSentryToken       = "OZELDERS_SENTRY_TOKEN"
	EnvSentryHost        = "OZELDERS_SENTRY_HOST"
	EnvSentryEnvironment = "OZELDERS_SENTRY_ENVIRONMENT"

	// Better Stack Logs
	EnvBetterStackToken    = "OZELDERS_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "OZELDERS_BETTERSTACK_ENDPOINT"
)
