package llm

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/ozelders/ozelders-api/internal/assistant"
	"github.com/ozelders/ozelders-api/internal/config"
	"github.com/ozelders/ozelders-api/internal/metrics"
)

// OpenAIExtractor classifies queries through an OpenAI-compatible chat
// completion endpoint. The client is created lazily on first use and
// reused for the process lifetime; missing credentials mean the
// extractor is never constructed at all.
type OpenAIExtractor struct {
	apiKey   string
	baseURL  string
	model    string
	provider config.LLMProvider
	timeout  time.Duration
	metrics  *metrics.Metrics

	once   sync.Once
	client openai.Client
}

// NewOpenAIExtractor creates the extractor from configuration.
// Returns nil when no API key is configured.
func NewOpenAIExtractor(cfg *config.Config, m *metrics.Metrics) *OpenAIExtractor {
	if !cfg.HasLLM() {
		return nil
	}
	provider := cfg.LLMProvider
	if provider == "" {
		provider = InferProvider(cfg.LLMBaseURL)
	}
	return &OpenAIExtractor{
		apiKey:   cfg.LLMAPIKey,
		baseURL:  cfg.LLMBaseURL,
		model:    cfg.LLMModel,
		provider: provider,
		timeout:  cfg.LLMTimeout,
		metrics:  m,
	}
}

// InferProvider guesses the provider capability class from the endpoint
// when no explicit configuration is present. Local OpenAI-compatible
// servers conventionally listen on port 11434 and reject the JSON
// response mode.
func InferProvider(baseURL string) config.LLMProvider {
	if strings.Contains(baseURL, ":11434") {
		return config.ProviderLocalCompatible
	}
	return config.ProviderStandard
}

// Extract asks the model to classify the text. One attempt per call
// with a bounded timeout; any failure yields nil.
func (e *OpenAIExtractor) Extract(ctx context.Context, text string) *assistant.Intent {
	if e == nil {
		return nil
	}
	e.once.Do(func() {
		opts := []option.RequestOption{option.WithAPIKey(e.apiKey)}
		if e.baseURL != "" {
			opts = append(opts, option.WithBaseURL(e.baseURL))
		}
		e.client = openai.NewClient(opts...)
	})

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: e.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(intentSystemPrompt),
			openai.UserMessage(text),
		},
		Temperature: openai.Float(0.2), // classification, not generation
	}
	// Forcing the JSON response mode on endpoints that lack it turns
	// into a hard request failure, so only standard providers get it.
	if e.provider == config.ProviderStandard {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	start := time.Now()
	resp, err := e.client.Chat.Completions.New(ctx, params)
	duration := time.Since(start)
	e.recordDuration(duration)

	if err != nil {
		slog.WarnContext(ctx, "intent extraction request failed",
			"provider", "openai",
			"model", e.model,
			"input_length", len(text),
			"duration_ms", duration.Milliseconds(),
			"error", err)
		e.recordFailure("request")
		return nil
	}
	if len(resp.Choices) == 0 {
		e.recordFailure("empty")
		return nil
	}

	intent := ParseIntentJSON(resp.Choices[0].Message.Content)
	if intent == nil {
		slog.WarnContext(ctx, "intent extraction returned unusable output",
			"provider", "openai",
			"model", e.model,
			"output_length", len(resp.Choices[0].Message.Content))
		e.recordFailure("parse")
		return nil
	}

	slog.DebugContext(ctx, "intent extraction completed",
		"provider", "openai",
		"model", e.model,
		"action", intent.Action,
		"duration_ms", duration.Milliseconds())
	return intent
}

func (e *OpenAIExtractor) recordDuration(d time.Duration) {
	if e.metrics != nil {
		e.metrics.RecordExtractionDuration("openai", d.Seconds())
	}
}

func (e *OpenAIExtractor) recordFailure(reason string) {
	if e.metrics != nil {
		e.metrics.RecordExtractionFailure("openai", reason)
	}
}
