package scoring

import (
	"fmt"
	"strings"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
)

// tableKey addresses one weight table row. An empty entity type means
// the row applies to every entity on that platform.
type tableKey struct {
	platform domain.Platform
	entity   domain.EntityType
}

// WeightTable maps (platform, entity type) pairs to weight vectors.
// Rows are configuration, not logic: which metric a platform is "good
// at" is a tunable business decision.
type WeightTable struct {
	rows       map[tableKey]domain.WeightVector
	defaultRow domain.WeightVector
}

// DefaultWeightTable returns the built-in unified table used when no
// override is configured.
//
// Google Trends leans on volume and velocity (its strengths), TikTok
// hashtags on engagement, TikTok creators on velocity; YouTube and the
// fallback row stay balanced.
func DefaultWeightTable() WeightTable {
	return WeightTable{
		rows: map[tableKey]domain.WeightVector{
			{domain.PlatformGoogleTrends, ""}: {Volume: 0.35, Engagement: 0.15, Velocity: 0.30, Recency: 0.15, CrossPlatform: 0.05},
			{domain.PlatformYouTube, ""}:      {Volume: 0.30, Engagement: 0.25, Velocity: 0.20, Recency: 0.15, CrossPlatform: 0.10},

			{domain.PlatformTikTok, domain.EntityHashtag}:    {Volume: 0.25, Engagement: 0.40, Velocity: 0.20, Recency: 0.10, CrossPlatform: 0.05},
			{domain.PlatformTikTok, domain.EntityCreator}:    {Volume: 0.25, Engagement: 0.25, Velocity: 0.35, Recency: 0.10, CrossPlatform: 0.05},
			{domain.PlatformTikTok, domain.EntitySound}:      {Volume: 0.25, Engagement: 0.30, Velocity: 0.25, Recency: 0.10, CrossPlatform: 0.10},
			{domain.PlatformTikTok, domain.EntityShortVideo}: {Volume: 0.25, Engagement: 0.30, Velocity: 0.25, Recency: 0.10, CrossPlatform: 0.10},
		},
		defaultRow: domain.WeightVector{Volume: 0.30, Engagement: 0.25, Velocity: 0.20, Recency: 0.15, CrossPlatform: 0.10},
	}
}

// For selects the weight vector for an item: exact (platform, entity)
// row first, then the platform-wide row, then the default.
func (t WeightTable) For(platform domain.Platform, entity domain.EntityType) domain.WeightVector {
	if w, ok := t.rows[tableKey{platform, entity}]; ok {
		return w
	}

	if w, ok := t.rows[tableKey{platform, ""}]; ok {
		return w
	}

	return t.defaultRow
}

// Validate checks every row, including the default, sums to 1.0.
func (t WeightTable) Validate() error {
	for key, w := range t.rows {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("weight row %s/%s: %w", key.platform, key.entity, err)
		}
	}

	if err := t.defaultRow.Validate(); err != nil {
		return fmt.Errorf("default weight row: %w", err)
	}

	return nil
}

// SinglePlatform derives the table used when a batch spans only one
// platform: cross-platform presence is meaningless there, so its weight
// is zeroed and the remainder renormalized to keep the sum at 1.0.
func (t WeightTable) SinglePlatform() WeightTable {
	derived := WeightTable{
		rows:       make(map[tableKey]domain.WeightVector, len(t.rows)),
		defaultRow: dropCrossPlatform(t.defaultRow),
	}

	for key, w := range t.rows {
		derived.rows[key] = dropCrossPlatform(w)
	}

	return derived
}

func dropCrossPlatform(w domain.WeightVector) domain.WeightVector {
	remainder := w.Sum() - w.CrossPlatform
	if remainder <= 0 {
		// Degenerate row; fall back to recency-only rather than NaN.
		return domain.WeightVector{Recency: 1}
	}

	return domain.WeightVector{
		Volume:     w.Volume / remainder,
		Engagement: w.Engagement / remainder,
		Velocity:   w.Velocity / remainder,
		Recency:    w.Recency / remainder,
	}
}

// overrideKeySeparator splits "platform/entity_type" override keys.
const overrideKeySeparator = "/"

// TableFromOverrides builds a weight table from a settings payload keyed
// by "platform", "platform/entity_type", or "default". Any row that does
// not sum to 1.0 rejects the whole override so a typo can't silently
// skew scoring.
func TableFromOverrides(overrides map[string]domain.WeightVector) (WeightTable, error) {
	table := DefaultWeightTable()

	for key, w := range overrides {
		if err := w.Validate(); err != nil {
			return WeightTable{}, fmt.Errorf("override row %q: %w", key, err)
		}

		if key == "default" {
			table.defaultRow = w

			continue
		}

		platform, entity, found := strings.Cut(key, overrideKeySeparator)
		if !found {
			table.rows[tableKey{domain.Platform(platform), ""}] = w

			continue
		}

		table.rows[tableKey{domain.Platform(platform), domain.EntityType(entity)}] = w
	}

	return table, nil
}
