// Package scoring implements the unified trending score engine: it takes
// a batch of normalized trend items from any mix of platforms and
// produces one comparable, explainable 0-100 score per item.
//
// The pipeline per batch:
//
//  1. Five raw component scores per item (volume, engagement, velocity,
//     recency, cross-platform), each on platform-local scales.
//  2. Google Trends engagement rescaled into the other platforms' range.
//  3. Percentage-of-total normalization of volume, engagement, and
//     velocity across the batch (each component sums to 100). Recency is
//     already bounded by decay and cross-platform is already 0/50/100.
//  4. Weighted combination per (platform, entity type), breakdown and
//     weights attached, batch sorted descending.
//
// The engine is a pure synchronous transform: no internal goroutines, no
// state shared between calls, items mutated in place and returned.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
)

// Engine computes unified trending scores for mixed-platform batches.
type Engine struct {
	unified        WeightTable
	singlePlatform WeightTable
	now            func() time.Time
	logger         *zerolog.Logger
}

// Options configures an Engine beyond its defaults.
type Options struct {
	// Table overrides the built-in unified weight table. The
	// single-platform table is always derived from it.
	Table *WeightTable
	// Now supplies the reference time; defaults to time.Now.
	Now func() time.Time
}

// New creates an engine with the built-in weight tables.
func New(logger *zerolog.Logger) *Engine {
	return NewWithOptions(Options{}, logger)
}

// NewWithOptions creates an engine with custom tables or clock.
func NewWithOptions(opts Options, logger *zerolog.Logger) *Engine {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	table := DefaultWeightTable()
	if opts.Table != nil {
		table = *opts.Table
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		unified:        table,
		singlePlatform: table.SinglePlatform(),
		now:            now,
		logger:         logger,
	}
}

// ScoreBatch scores and ranks a batch in place and returns the same
// slice sorted by trending score, highest first. Properties callers can
// rely on:
//
//   - trending_score is a convex combination of the five components,
//     so it stays within [0, 100].
//   - After this call volume, engagement, and velocity each sum to 100
//     across the batch.
//   - Rescoring an already scored batch is deterministic for a fixed
//     reference time.
//
// Truncating to a top-N must happen after this call: the normalization
// pass needs the full candidate set or every share shifts.
func (e *Engine) ScoreBatch(items []*domain.TrendItem) []*domain.TrendItem {
	if len(items) == 0 {
		return items
	}

	now := e.now()
	stats := collectBatchStats(items)

	for _, item := range items {
		item.VolumeScore = volumeScore(item)
		item.EngagementScore = engagementScore(item, stats)
		item.VelocityScore = velocityScore(item, now)
		item.RecencyScore = recencyScore(item, now)
	}

	crossPlatformScores(items)

	rescaleSearchEngagement(items)
	normalizeComponent(items, componentVolume)
	normalizeComponent(items, componentEngagement)
	normalizeComponent(items, componentVelocity)

	table := e.unified
	if singlePlatformBatch(items) {
		table = e.singlePlatform
	}

	for _, item := range items {
		weights := table.For(item.Platform, item.EntityType)

		item.TrendingScore = round2(weights.Volume*item.VolumeScore +
			weights.Engagement*item.EngagementScore +
			weights.Velocity*item.VelocityScore +
			weights.Recency*item.RecencyScore +
			weights.CrossPlatform*item.CrossPlatformScore)

		item.ScoreBreakdown = &domain.ScoreBreakdown{
			Volume:        round2(item.VolumeScore),
			Engagement:    round2(item.EngagementScore),
			Velocity:      round2(item.VelocityScore),
			Recency:       round2(item.RecencyScore),
			CrossPlatform: round2(item.CrossPlatformScore),
		}

		used := weights
		item.WeightsUsed = &used
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].TrendingScore > items[j].TrendingScore
	})

	e.logger.Debug().Int(logFieldItems, len(items)).Msg("batch scored")

	return items
}

// singlePlatformBatch reports whether every item comes from one
// platform, in which case cross-platform weighting is dropped.
func singlePlatformBatch(items []*domain.TrendItem) bool {
	first := items[0].Platform

	for _, item := range items[1:] {
		if item.Platform != first {
			return false
		}
	}

	return true
}

func round2(v float64) float64 {
	return math.Round(v*scoreRoundFactor) / scoreRoundFactor
}
