package ingest

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
	"github.com/lueurxax/trend-pulse/internal/ingest/searchtrends"
	"github.com/lueurxax/trend-pulse/internal/ingest/shortvideo"
	"github.com/lueurxax/trend-pulse/internal/ingest/video"
	"github.com/lueurxax/trend-pulse/internal/platform/observability"
)

const defaultFetchTimeout = 2 * time.Minute

// Query selects what one aggregation run fetches from every platform.
// An empty Platform selects all platforms; naming one fetches it alone.
type Query struct {
	Country  string
	Category domain.Category
	Window   domain.TimeWindow
	Platform domain.Platform
	Limit    int
}

// SearchTrendsFetcher produces trending searches for a country and category.
type SearchTrendsFetcher interface {
	Fetch(ctx context.Context, country string, category domain.Category, limit int) ([]searchtrends.TrendingSearch, error)
	IsAvailable() bool
}

// VideoFetcher produces trending videos for a region and category.
type VideoFetcher interface {
	Fetch(ctx context.Context, region string, category domain.Category, limit int) ([]video.Video, error)
	IsAvailable() bool
}

// ShortVideoFetcher produces one scrape batch of short-video entities.
type ShortVideoFetcher interface {
	Fetch(ctx context.Context, country string, category domain.Category, window domain.TimeWindow, limit int) (shortvideo.Batch, error)
	IsAvailable() bool
}

// Coordinator fans a query out to every platform concurrently and merges
// the normalized results in platform order. A platform that is not
// configured, fails, times out or has its circuit open contributes an
// empty list; the remaining platforms still count.
type Coordinator struct {
	searches SearchTrendsFetcher
	videos   VideoFetcher
	shorts   ShortVideoFetcher

	timeout  time.Duration
	breakers map[domain.Platform]*circuitBreaker
	logger   *zerolog.Logger
}

func NewCoordinator(
	searches SearchTrendsFetcher,
	videos VideoFetcher,
	shorts ShortVideoFetcher,
	timeout time.Duration,
	logger *zerolog.Logger,
) *Coordinator {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	breakers := make(map[domain.Platform]*circuitBreaker)
	for _, platform := range domain.Platforms() {
		breakers[platform] = newCircuitBreaker()
	}

	return &Coordinator{
		searches: searches,
		videos:   videos,
		shorts:   shorts,
		timeout:  timeout,
		breakers: breakers,
		logger:   logger,
	}
}

type platformFetch struct {
	platform  domain.Platform
	available func() bool
	run       func(context.Context) ([]*domain.TrendItem, error)
}

type platformResult struct {
	platform domain.Platform
	items    []*domain.TrendItem
}

// FetchAll runs the three platform fetches concurrently and returns the
// merged normalized items, ordered google trends, youtube, tiktok.
func (c *Coordinator) FetchAll(ctx context.Context, query Query) []*domain.TrendItem {
	fetches := []platformFetch{
		{
			platform:  domain.PlatformGoogleTrends,
			available: c.searches.IsAvailable,
			run: func(ctx context.Context) ([]*domain.TrendItem, error) {
				trends, err := c.searches.Fetch(ctx, query.Country, query.Category, query.Limit)
				if err != nil {
					return nil, err
				}

				return NormalizeGoogleTrends(trends), nil
			},
		},
		{
			platform:  domain.PlatformYouTube,
			available: c.videos.IsAvailable,
			run: func(ctx context.Context) ([]*domain.TrendItem, error) {
				videos, err := c.videos.Fetch(ctx, query.Country, query.Category, query.Limit)
				if err != nil {
					return nil, err
				}

				return NormalizeYouTube(videos), nil
			},
		},
		{
			platform:  domain.PlatformTikTok,
			available: c.shorts.IsAvailable,
			run: func(ctx context.Context) ([]*domain.TrendItem, error) {
				batch, err := c.shorts.Fetch(ctx, query.Country, query.Category, query.Window, query.Limit)
				if err != nil {
					return nil, err
				}

				return NormalizeTikTok(batch), nil
			},
		},
	}

	if query.Platform != "" {
		selected := fetches[:0]

		for _, fetch := range fetches {
			if fetch.platform == query.Platform {
				selected = append(selected, fetch)
			}
		}

		fetches = selected
	}

	results := make(chan platformResult, len(fetches))

	for _, fetch := range fetches {
		go func(fetch platformFetch) {
			results <- platformResult{
				platform: fetch.platform,
				items:    c.fetchPlatform(ctx, fetch),
			}
		}(fetch)
	}

	collected := make(map[domain.Platform][]*domain.TrendItem, len(fetches))
	for range fetches {
		result := <-results
		collected[result.platform] = result.items
	}

	items := make([]*domain.TrendItem, 0)
	for _, platform := range domain.Platforms() {
		items = append(items, collected[platform]...)
	}

	return items
}

func (c *Coordinator) fetchPlatform(ctx context.Context, fetch platformFetch) []*domain.TrendItem {
	if !fetch.available() {
		c.logger.Debug().Str("platform", string(fetch.platform)).Msg("fetcher not configured, skipping")

		return nil
	}

	breaker := c.breakers[fetch.platform]
	if !breaker.canAttempt() {
		c.logger.Warn().Str("platform", string(fetch.platform)).Msg("circuit open, skipping fetch")

		return nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	items, err := fetch.run(fetchCtx)

	observability.PlatformFetchDuration.WithLabelValues(string(fetch.platform)).Observe(time.Since(start).Seconds())

	if err != nil {
		if breaker.recordFailure() {
			observability.BreakerOpens.WithLabelValues(string(fetch.platform)).Inc()
		}

		observability.PlatformFetches.WithLabelValues(string(fetch.platform), "error").Inc()
		c.logger.Warn().Err(err).Str("platform", string(fetch.platform)).Msg("platform fetch failed")

		return nil
	}

	breaker.recordSuccess()
	observability.PlatformFetches.WithLabelValues(string(fetch.platform), "ok").Inc()
	observability.ItemsFetched.WithLabelValues(string(fetch.platform)).Add(float64(len(items)))

	c.logger.Debug().
		Str("platform", string(fetch.platform)).
		Int("items", len(items)).
		Msg("platform fetch complete")

	return items
}
