// Package app wires the application together and exposes its run modes:
//
//   - Server mode: HTTP API serving scored trend lists and summaries
//   - Worker mode: background refresh cycles, daily digest, retention
//   - Score mode: one-shot aggregation printed to stdout, nothing persisted
//
// Modes can run as separate deployments against the same database.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
	"github.com/lueurxax/trend-pulse/internal/core/llm"
	"github.com/lueurxax/trend-pulse/internal/core/scoring"
	"github.com/lueurxax/trend-pulse/internal/ingest"
	"github.com/lueurxax/trend-pulse/internal/ingest/searchtrends"
	"github.com/lueurxax/trend-pulse/internal/ingest/shortvideo"
	"github.com/lueurxax/trend-pulse/internal/ingest/video"
	"github.com/lueurxax/trend-pulse/internal/output/httpapi"
	"github.com/lueurxax/trend-pulse/internal/output/notify"
	"github.com/lueurxax/trend-pulse/internal/platform/config"
	"github.com/lueurxax/trend-pulse/internal/platform/observability"
	"github.com/lueurxax/trend-pulse/internal/platform/worker"
	"github.com/lueurxax/trend-pulse/internal/process/aggregate"
	"github.com/lueurxax/trend-pulse/internal/process/enrich"
	db "github.com/lueurxax/trend-pulse/internal/storage"
)

const (
	// cycleGrace covers scoring and persistence on top of the fetch
	// timeout when bounding a whole aggregation cycle.
	cycleGrace = time.Minute

	// digestCheckInterval is how often the worker checks whether the
	// daily digest is due.
	digestCheckInterval = time.Minute

	// retentionInterval is how often old snapshots are pruned.
	retentionInterval = 6 * time.Hour
)

// App holds the wired dependencies for every run mode.
type App struct {
	cfg         *config.Config
	db          *db.DB
	logger      *zerolog.Logger
	engine      *scoring.Engine
	coordinator *ingest.Coordinator
	aggregator  *aggregate.Service
	summarizer  llm.Client
	enricher    *enrich.Enricher
	notifier    *notify.Poster
	apiHandler  *httpapi.Handler
}

// New wires the application. The context is used for the one-time
// settings read that can override the scoring weight table.
func New(ctx context.Context, cfg *config.Config, database *db.DB, logger *zerolog.Logger) (*App, error) {
	engine := scoring.NewWithOptions(scoring.Options{
		Table: loadWeightOverrides(ctx, database, logger),
	}, logger)

	coordinator := ingest.NewCoordinator(
		searchtrends.NewClient(searchtrends.Config{
			APIKey:         cfg.SerpAPIKey,
			RequestsPerMin: cfg.SerpAPIRequestsPerMin,
			Timeout:        cfg.SerpAPITimeout,
		}),
		video.NewClient(video.Config{
			APIKey:         cfg.YouTubeAPIKey,
			RequestsPerMin: cfg.YouTubeRequestsPerMin,
			Timeout:        cfg.YouTubeTimeout,
		}),
		shortvideo.NewClient(shortvideo.Config{
			Token:          cfg.ApifyToken,
			ActorID:        cfg.ApifyActorID,
			RequestsPerMin: cfg.ApifyRequestsPerMin,
			Timeout:        cfg.ApifyTimeout,
		}),
		cfg.FetchTimeout,
		logger,
	)

	aggregator := aggregate.New(coordinator, engine, database, logger)
	summarizer := llm.New(cfg, logger)

	var enricher *enrich.Enricher
	if cfg.EnrichmentEnabled {
		enricher = enrich.New(enrich.NewWebFetcher(cfg.WebFetchRPS, cfg.WebFetchTimeout), cfg.MaxContextLength, logger)
	}

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		return nil, err
	}

	var contexts httpapi.ContextProvider
	if enricher != nil {
		contexts = enricher
	}

	apiHandler := httpapi.NewHandler(cfg, aggregator, database, summarizer, contexts, logger)

	return &App{
		cfg:         cfg,
		db:          database,
		logger:      logger,
		engine:      engine,
		coordinator: coordinator,
		aggregator:  aggregator,
		summarizer:  summarizer,
		enricher:    enricher,
		notifier:    notifier,
		apiHandler:  apiHandler,
	}, nil
}

// loadWeightOverrides reads the optional scoring weight override from
// settings. Any problem keeps the built-in table; a bad override must
// never take scoring down.
func loadWeightOverrides(ctx context.Context, database *db.DB, logger *zerolog.Logger) *scoring.WeightTable {
	overrides := make(map[string]domain.WeightVector)
	if err := database.GetSetting(ctx, db.SettingScoringWeights, &overrides); err != nil {
		logger.Warn().Err(err).Msg("Failed to read scoring weight overrides, using defaults")

		return nil
	}

	if len(overrides) == 0 {
		return nil
	}

	table, err := scoring.TableFromOverrides(overrides)
	if err != nil {
		logger.Warn().Err(err).Msg("Invalid scoring weight overrides, using defaults")

		return nil
	}

	logger.Info().Int("rows", len(overrides)).Msg("Scoring weight overrides loaded")

	return &table
}

func buildNotifier(cfg *config.Config, logger *zerolog.Logger) (*notify.Poster, error) {
	if cfg.BotToken == "" || cfg.DigestChatID == 0 {
		logger.Info().Msg("Telegram digest not configured, daily digest disabled")

		return nil, nil //nolint:nilnil // absent notifier is a valid configuration
	}

	notifier, err := notify.New(cfg.BotToken, cfg.DigestChatID, logger)
	if err != nil {
		return nil, fmt.Errorf("notifier init: %w", err)
	}

	return notifier, nil
}

// RunServer serves the trends API together with health and metrics
// endpoints until the context is canceled.
func (a *App) RunServer(ctx context.Context) error {
	server := observability.NewServerWithAPI(a.db, a.cfg.HealthPort, a.apiHandler, a.logger)

	return server.Start(ctx)
}

// RunWorker runs the background loops: periodic aggregation for every
// configured (country, category, window) selection, the daily Telegram
// digest, and snapshot retention.
func (a *App) RunWorker(ctx context.Context) error {
	go func() {
		server := observability.NewServer(a.db, a.cfg.HealthPort, a.logger)
		if err := server.Start(ctx); err != nil {
			a.logger.Error().Err(err).Msg("health server error")
		}
	}()

	digest := &worker.DailyTask{
		Hour: a.cfg.DigestHour,
		Run:  func() { a.postDigest(ctx) },
	}

	tasks := []worker.Task{
		{
			Name:       "aggregation",
			Interval:   a.cfg.RefreshInterval,
			Jitter:     a.cfg.RefreshJitter,
			RunOnStart: true,
			Run:        a.runAllCycles,
		},
		{
			Name:     "retention",
			Interval: retentionInterval,
			Run:      a.pruneSnapshots,
		},
	}

	if a.notifier != nil {
		tasks = append(tasks, worker.Task{
			Name:     "daily_digest",
			Interval: digestCheckInterval,
			Run:      func(context.Context) { digest.Check(time.Now()) },
		})
	}

	return worker.Loop(ctx, worker.Config{
		Name:   "trend-pulse",
		Tasks:  tasks,
		Logger: a.logger,
	})
}

// RunScore runs one aggregation cycle per configured selection and
// writes each scored snapshot as a JSON line to stdout. Nothing is
// persisted; this mode exists for ad-hoc runs and pipeline debugging.
func (a *App) RunScore(ctx context.Context) error {
	oneShot := aggregate.New(a.coordinator, a.engine, nil, a.logger)
	encoder := json.NewEncoder(os.Stdout)

	for _, query := range a.queries() {
		snap, err := oneShot.Run(ctx, query)
		if err != nil {
			return fmt.Errorf("score run: %w", err)
		}

		snap.Items = domain.TopN(snap.Items, a.cfg.TrendLimit)

		if err := encoder.Encode(snap); err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
	}

	return nil
}

// queries expands the configured countries, categories, and windows into
// the full list of selections each refresh covers.
func (a *App) queries() []ingest.Query {
	queries := make([]ingest.Query, 0, len(a.cfg.Countries)*len(a.cfg.Categories)*len(a.cfg.Windows))

	for _, country := range a.cfg.Countries {
		for _, category := range a.cfg.Categories {
			for _, window := range a.cfg.Windows {
				queries = append(queries, ingest.Query{
					Country:  country,
					Category: domain.ParseCategory(category),
					Window:   domain.ParseTimeWindow(window),
					Limit:    a.cfg.TrendLimit,
				})
			}
		}
	}

	return queries
}

func (a *App) runAllCycles(ctx context.Context) {
	defer worker.RecoverPanic(a.logger, "aggregation cycle")

	for _, query := range a.queries() {
		err := worker.RunWithTimeout(ctx, a.cfg.FetchTimeout+cycleGrace, func(ctx context.Context) error {
			_, err := a.aggregator.Run(ctx, query)

			return err
		})
		if err != nil {
			a.logger.Error().Err(err).
				Str("country", query.Country).
				Str("category", string(query.Category)).
				Str("window", string(query.Window)).
				Msg("Aggregation cycle failed")
		}

		if ctx.Err() != nil {
			return
		}
	}
}

// postDigest posts the most recent snapshot for the first configured
// selection. Worker and digest share one refresh schedule, so the latest
// snapshot is at most one refresh interval old.
func (a *App) postDigest(ctx context.Context) {
	defer worker.RecoverPanic(a.logger, "daily digest")

	queries := a.queries()
	if len(queries) == 0 {
		return
	}

	first := queries[0]

	snap, err := a.db.LatestSnapshot(ctx, first.Country, first.Category, first.Window)
	if err != nil {
		a.logger.Error().Err(err).Msg("Digest skipped, no snapshot available")

		return
	}

	if err := a.notifier.PostDigest(snap, a.cfg.DigestTopN); err != nil {
		a.logger.Error().Err(err).Msg("Digest post failed")
	}
}

func (a *App) pruneSnapshots(ctx context.Context) {
	defer worker.RecoverPanic(a.logger, "snapshot retention")

	cutoff := time.Now().Add(-a.cfg.SnapshotRetention)

	deleted, err := a.db.DeleteSnapshotsBefore(ctx, cutoff)
	if err != nil {
		a.logger.Error().Err(err).Msg("Snapshot retention failed")

		return
	}

	if deleted > 0 {
		a.logger.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("Old snapshots pruned")
	}
}
