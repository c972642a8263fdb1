package llm

import (
	"context"
	"log/slog"

	"github.com/ozelders/ozelders-api/internal/assistant"
	"github.com/ozelders/ozelders-api/internal/config"
	"github.com/ozelders/ozelders-api/internal/metrics"
)

// Chain tries each extractor in order and returns the first usable
// intent.
type Chain []assistant.Extractor

// Extract implements assistant.Extractor.
func (c Chain) Extract(ctx context.Context, text string) *assistant.Intent {
	for _, e := range c {
		if intent := e.Extract(ctx, text); intent != nil {
			return intent
		}
	}
	return nil
}

// NewExtractor builds the extractor chain from configuration. The
// OpenAI-compatible extractor is primary, Gemini secondary. Returns nil
// when no provider is configured, which leaves the assistant on the
// rule parser alone.
func NewExtractor(cfg *config.Config, m *metrics.Metrics) assistant.Extractor {
	var chain Chain
	if e := NewOpenAIExtractor(cfg, m); e != nil {
		chain = append(chain, e)
	}
	if e := NewGeminiExtractor(cfg, m); e != nil {
		chain = append(chain, e)
	}

	switch len(chain) {
	case 0:
		slog.Info("no LLM provider configured, assistant runs on the rule parser only")
		return nil
	case 1:
		return chain[0]
	default:
		slog.Info("intent extractor chain configured", "chain_size", len(chain))
		return chain
	}
}
