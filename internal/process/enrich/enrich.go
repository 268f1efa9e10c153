package enrich

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
	"github.com/lueurxax/trend-pulse/internal/platform/observability"
)

// Log field names.
const (
	logFieldURL  = "url"
	logFieldItem = "item"
)

// Fetcher downloads a page body. Implemented by WebFetcher.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// Enricher turns the news links attached to trend items into short
// article context strings for the summary prompt.
type Enricher struct {
	fetcher Fetcher
	maxLen  int
	logger  *zerolog.Logger
}

func New(fetcher Fetcher, maxLen int, logger *zerolog.Logger) *Enricher {
	return &Enricher{
		fetcher: fetcher,
		maxLen:  maxLen,
		logger:  logger,
	}
}

// ContextFor fetches article context for the first topN items that carry a
// news link. Fetch and parse failures are logged and skipped so a dead
// link never blocks the summary; the result holds whatever succeeded,
// keyed by item display name.
func (e *Enricher) ContextFor(ctx context.Context, items []*domain.TrendItem, topN int) map[string]string {
	contexts := make(map[string]string)

	if topN > len(items) {
		topN = len(items)
	}

	for _, item := range items[:topN] {
		if item.NewsURL == "" {
			continue
		}

		body, err := e.fetcher.Fetch(ctx, item.NewsURL)
		if err != nil {
			observability.EnrichmentFetches.WithLabelValues("error").Inc()
			e.logger.Debug().Err(err).
				Str(logFieldURL, item.NewsURL).
				Str(logFieldItem, item.DisplayName()).
				Msg("Article fetch failed, skipping context")

			continue
		}

		article := ExtractArticle(body, item.NewsURL, e.maxLen)

		snippet := coalesce(article.Content, article.Description, article.Title)
		if snippet == "" {
			observability.EnrichmentFetches.WithLabelValues("empty").Inc()

			continue
		}

		observability.EnrichmentFetches.WithLabelValues("ok").Inc()
		contexts[item.DisplayName()] = snippet
	}

	return contexts
}
