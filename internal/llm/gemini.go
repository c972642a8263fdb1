package llm

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"google.golang.org/genai"

	"github.com/ozelders/ozelders-api/internal/assistant"
	"github.com/ozelders/ozelders-api/internal/config"
	"github.com/ozelders/ozelders-api/internal/metrics"
)

// GeminiExtractor is an alternative extractor backed by the Gemini API.
// It sits behind the OpenAI-compatible extractor in the chain and uses
// the API's native JSON response mode.
type GeminiExtractor struct {
	apiKey  string
	model   string
	timeout time.Duration
	metrics *metrics.Metrics

	once      sync.Once
	client    *genai.Client
	clientErr error
}

// NewGeminiExtractor creates the extractor from configuration.
// Returns nil when no Gemini API key is configured.
func NewGeminiExtractor(cfg *config.Config, m *metrics.Metrics) *GeminiExtractor {
	if !cfg.HasGemini() {
		return nil
	}
	return &GeminiExtractor{
		apiKey:  cfg.GeminiAPIKey,
		model:   cfg.GeminiModel,
		timeout: cfg.LLMTimeout,
		metrics: m,
	}
}

// Extract asks Gemini to classify the text. One attempt per call with a
// bounded timeout; any failure yields nil.
func (e *GeminiExtractor) Extract(ctx context.Context, text string) *assistant.Intent {
	if e == nil {
		return nil
	}
	e.once.Do(func() {
		e.client, e.clientErr = genai.NewClient(context.Background(), &genai.ClientConfig{
			APIKey: e.apiKey,
		})
	})
	if e.clientErr != nil {
		slog.WarnContext(ctx, "gemini client unavailable", "error", e.clientErr)
		e.recordFailure("client")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(intentSystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		Temperature:       genai.Ptr[float32](0.2), // classification, not generation
		MaxOutputTokens:   512,
	}

	start := time.Now()
	result, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(text), genCfg)
	duration := time.Since(start)
	e.recordDuration(duration)

	if err != nil {
		slog.WarnContext(ctx, "intent extraction request failed",
			"provider", "gemini",
			"model", e.model,
			"input_length", len(text),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		e.recordFailure("request")
		return nil
	}

	intent := ParseIntentJSON(result.Text())
	if intent == nil {
		slog.WarnContext(ctx, "intent extraction returned unusable output",
			"provider", "gemini",
			"model", e.model)
		e.recordFailure("parse")
		return nil
	}

	slog.DebugContext(ctx, "intent extraction completed",
		"provider", "gemini",
		"model", e.model,
		"action", intent.Action,
		"duration_ms", duration.Milliseconds())
	return intent
}

func (e *GeminiExtractor) recordDuration(d time.Duration) {
	if e.metrics != nil {
		e.metrics.RecordExtractionDuration("gemini", d.Seconds())
	}
}

func (e *GeminiExtractor) recordFailure(reason string) {
	if e.metrics != nil {
		e.metrics.RecordExtractionFailure("gemini", reason)
	}
}
