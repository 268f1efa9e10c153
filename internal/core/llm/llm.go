// Package llm generates narrative trend summaries from scored batches.
package llm

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
	"github.com/lueurxax/trend-pulse/internal/platform/config"
)

// SummaryRequest carries everything a summary needs: the scored items,
// the request scope, and optional article context keyed by item display
// name.
type SummaryRequest struct {
	Country  string
	Category domain.Category
	Window   domain.TimeWindow
	Items    []*domain.TrendItem
	Context  map[string]string
}

type Client interface {
	// GenerateTrendSummary returns a short narrative covering the given
	// scored items. An empty batch yields an empty summary and no error.
	GenerateTrendSummary(ctx context.Context, req SummaryRequest) (string, error)
	// StreamTrendSummary emits the summary incrementally through emit.
	// Emit errors abort the stream and are returned as-is.
	StreamTrendSummary(ctx context.Context, req SummaryRequest, emit func(chunk string) error) error
}

// New returns the OpenAI-backed client when an API key is configured and
// a deterministic mock otherwise, so summary endpoints keep working in
// development environments.
func New(cfg *config.Config, logger *zerolog.Logger) Client {
	if cfg.LLMAPIKey == "" {
		logger.Warn().Msg("LLM_API_KEY not set, narrative summaries use the mock client")

		return NewMock()
	}

	return NewOpenAI(cfg, logger)
}
