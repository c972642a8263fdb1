package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "5174" {
		t.Errorf("default port = %q, want 5174", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("default log level = %q, want info", cfg.LogLevel)
	}
	if cfg.LLMTimeout != 15*time.Second {
		t.Errorf("default LLM timeout = %v, want 15s", cfg.LLMTimeout)
	}
	if cfg.LLMModel != "gpt-4o-mini" {
		t.Errorf("default LLM model = %q, want gpt-4o-mini", cfg.LLMModel)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvPort, "9999")
	t.Setenv(EnvLLMProvider, "local-compatible")
	t.Setenv(EnvLLMTimeout, "5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "9999" {
		t.Errorf("port = %q, want 9999", cfg.Port)
	}
	if cfg.LLMProvider != ProviderLocalCompatible {
		t.Errorf("provider = %q, want local-compatible", cfg.LLMProvider)
	}
	if cfg.LLMTimeout != 5*time.Second {
		t.Errorf("LLM timeout = %v, want 5s", cfg.LLMTimeout)
	}
}

func TestValidate_RejectsUnknownProvider(t *testing.T) {
	t.Setenv(EnvLLMProvider, "ollama")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject unknown provider value")
	}
}

func TestValidate_MetricsAuthRequiresPassword(t *testing.T) {
	t.Setenv(EnvMetricsAuthEnabled, "true")

	if _, err := Load(); err == nil {
		t.Error("Load() should require metrics password when auth enabled")
	}
}

func TestHasLLM(t *testing.T) {
	cfg := &Config{LLMEnabled: true, LLMAPIKey: "sk-test"}
	if !cfg.HasLLM() {
		t.Error("HasLLM() = false with key set")
	}

	cfg.LLMAPIKey = ""
	if cfg.HasLLM() {
		t.Error("HasLLM() = true with empty key")
	}

	cfg = &Config{LLMEnabled: false, LLMAPIKey: "sk-test"}
	if cfg.HasLLM() {
		t.Error("HasLLM() = true with feature disabled")
	}
}
