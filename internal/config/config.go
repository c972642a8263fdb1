// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the server, the SQLite store, and the assistant's LLM integration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// LLMProvider selects the API dialect quirks for the assistant's extractor,
// not the vendor. "standard" providers accept the JSON-object response format
// flag; "local-compatible" endpoints (e.g. Ollama's OpenAI shim) reject it.
type LLMProvider string

const (
	// ProviderStandard is a fully OpenAI-compatible hosted endpoint.
	ProviderStandard LLMProvider = "standard"
	// ProviderLocalCompatible is a partially compatible local endpoint.
	ProviderLocalCompatible LLMProvider = "local-compatible"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir string // Data directory for the SQLite database

	// Assistant LLM Configuration
	LLMEnabled  bool
	LLMAPIKey   string
	LLMBaseURL  string        // Empty means the provider's default endpoint
	LLMModel    string        // Chat model used for intent extraction
	LLMProvider LLMProvider   // Empty means infer from LLMBaseURL
	LLMTimeout  time.Duration // Upper bound for a single extraction request

	// Optional secondary extractor (Gemini)
	GeminiAPIKey string
	GeminiModel  string

	// Metrics Authentication
	MetricsAuthEnabled bool
	MetricsUsername    string
	MetricsPassword    string

	// Sentry (Better Stack Errors)
	SentryToken       string
	SentryHost        string
	SentryEnvironment string

	// Better Stack Logs
	BetterStackToken    string
	BetterStackEndpoint string
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first, then reads from env vars.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv(EnvPort, "5174"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, 30*time.Second),

		DataDir: getEnv(EnvDataDir, "./data"),

		LLMEnabled:  getBoolEnv(EnvLLMEnabled, true),
		LLMAPIKey:   getEnv(EnvLLMAPIKey, ""),
		LLMBaseURL:  getEnv(EnvLLMBaseURL, ""),
		LLMModel:    getEnv(EnvLLMModel, "gpt-4o-mini"),
		LLMProvider: LLMProvider(getEnv(EnvLLMProvider, "")),
		LLMTimeout:  getDurationEnv(EnvLLMTimeout, 15*time.Second),

		GeminiAPIKey: getEnv(EnvGeminiAPIKey, ""),
		GeminiModel:  getEnv(EnvGeminiModel, "gemini-2.5-flash-lite"),

		MetricsAuthEnabled: getBoolEnv(EnvMetricsAuthEnabled, false),
		MetricsUsername:    getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:    getEnv(EnvMetricsPassword, ""),

		SentryToken:       getEnv(EnvSentryToken, ""),
		SentryHost:        getEnv(EnvSentryHost, "errors.betterstack.com"),
		SentryEnvironment: getEnv(EnvSentryEnvironment, "production"),

		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),
	}

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
	if c.LLMTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%s must be positive, got %v", EnvLLMTimeout, c.LLMTimeout))
	}
	switch c.LLMProvider {
	case "", ProviderStandard, ProviderLocalCompatible:
	default:
		errs = append(errs, fmt.Errorf("%s must be %q or %q, got %q",
			EnvLLMProvider, ProviderStandard, ProviderLocalCompatible, c.LLMProvider))
	}
	if c.MetricsAuthEnabled && c.MetricsPassword == "" {
		errs = append(errs, errors.New(EnvMetricsPassword+" is required when metrics auth is enabled"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// SQLitePath returns the path of the SQLite database file.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "ozelders.db")
}

// HasLLM reports whether the OpenAI-compatible extractor can be constructed.
func (c *Config) HasLLM() bool {
	return c.LLMEnabled && c.LLMAPIKey != ""
}

// HasGemini reports whether the Gemini extractor can be constructed.
func (c *Config) HasGemini() bool {
	return c.LLMEnabled && c.GeminiAPIKey != ""
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
