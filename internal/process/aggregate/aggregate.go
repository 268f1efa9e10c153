// Package aggregate runs one full trend aggregation cycle: fetch from all
// platforms, filter by window, score, and persist the result as a snapshot.
package aggregate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
	"github.com/lueurxax/trend-pulse/internal/core/scoring"
	"github.com/lueurxax/trend-pulse/internal/ingest"
	"github.com/lueurxax/trend-pulse/internal/platform/observability"
)

// Log field names.
const (
	logFieldCycleID  = "cycle_id"
	logFieldCountry  = "country"
	logFieldCategory = "category"
	logFieldWindow   = "window"
	logFieldFetched  = "fetched"
	logFieldScored   = "scored"
	logFieldDuration = "duration"
)

// Metric status label values.
const (
	statusOK       = "ok"
	statusError    = "error"
	statusCanceled = "canceled"
)

// Fetcher produces the merged normalized batch for a query. Implemented
// by ingest.Coordinator.
type Fetcher interface {
	FetchAll(ctx context.Context, query ingest.Query) []*domain.TrendItem
}

// SnapshotStore persists finished cycles. Implemented by the storage DB.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap *domain.Snapshot) error
}

// Service wires fetching, scoring and persistence into one cycle.
type Service struct {
	fetcher Fetcher
	engine  *scoring.Engine
	store   SnapshotStore
	logger  *zerolog.Logger
	now     func() time.Time
}

// New creates the cycle service. A nil store disables persistence, which
// one-shot scoring runs use.
func New(fetcher Fetcher, engine *scoring.Engine, store SnapshotStore, logger *zerolog.Logger) *Service {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Service{
		fetcher: fetcher,
		engine:  engine,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// Run executes one aggregation cycle and returns the snapshot holding the
// full scored batch, sorted by trending score. Items are never truncated
// here; limits apply at the serving edge so component shares always
// reflect the whole batch. A snapshot save failure is logged but does not
// fail the cycle — the fresh result is still returned.
func (s *Service) Run(ctx context.Context, query ingest.Query) (*domain.Snapshot, error) {
	cycleID := uuid.NewString()
	start := s.now()

	logger := s.logger.With().
		Str(logFieldCycleID, cycleID).
		Str(logFieldCountry, query.Country).
		Str(logFieldCategory, string(query.Category)).
		Str(logFieldWindow, string(query.Window)).
		Logger()

	logger.Info().Msg("Aggregation cycle starting")

	items := s.fetcher.FetchAll(ctx, query)

	if err := ctx.Err(); err != nil {
		observability.CyclesTotal.WithLabelValues(statusCanceled).Inc()

		return nil, fmt.Errorf("aggregation cycle canceled: %w", err)
	}

	filtered := s.engine.FilterByWindow(items, query.Window)
	observability.ItemsScored.Observe(float64(len(filtered)))

	scored := s.engine.ScoreBatch(filtered)

	for _, item := range scored {
		observability.TrendingScore.WithLabelValues(string(item.Platform)).Observe(item.TrendingScore)
	}

	snap := &domain.Snapshot{
		ID:             cycleID,
		Country:        query.Country,
		Category:       query.Category,
		Window:         query.Window,
		ItemCount:      len(scored),
		PlatformCounts: domain.CountByPlatform(scored),
		Items:          scored,
		CreatedAt:      s.now().UTC(),
	}

	if s.store != nil {
		if err := s.store.SaveSnapshot(ctx, snap); err != nil {
			observability.SnapshotsSaved.WithLabelValues(statusError).Inc()
			logger.Warn().Err(err).Msg("Snapshot save failed, serving fresh result anyway")
		} else {
			observability.SnapshotsSaved.WithLabelValues(statusOK).Inc()
		}
	}

	duration := s.now().Sub(start)
	observability.CycleDuration.Observe(duration.Seconds())
	observability.CyclesTotal.WithLabelValues(statusOK).Inc()

	logger.Info().
		Int(logFieldFetched, len(items)).
		Int(logFieldScored, len(scored)).
		Dur(logFieldDuration, duration).
		Msg("Aggregation cycle complete")

	return snap, nil
}
