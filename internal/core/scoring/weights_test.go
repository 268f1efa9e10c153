package scoring

import (
	"math"
	"testing"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
)

func TestDefaultWeightTableRowsSumToOne(t *testing.T) {
	if err := DefaultWeightTable().Validate(); err != nil {
		t.Fatalf("default table invalid: %v", err)
	}
}

func TestSinglePlatformTable(t *testing.T) {
	derived := DefaultWeightTable().SinglePlatform()

	if err := derived.Validate(); err != nil {
		t.Fatalf("derived table invalid: %v", err)
	}

	pairs := []struct {
		platform domain.Platform
		entity   domain.EntityType
	}{
		{domain.PlatformGoogleTrends, domain.EntitySearchQuery},
		{domain.PlatformYouTube, domain.EntityVideo},
		{domain.PlatformTikTok, domain.EntityHashtag},
		{domain.PlatformTikTok, domain.EntityCreator},
		{domain.PlatformTikTok, domain.EntitySound},
		{domain.PlatformTikTok, domain.EntityShortVideo},
		{"unknown", ""},
	}

	for _, pair := range pairs {
		w := derived.For(pair.platform, pair.entity)

		if w.CrossPlatform != 0 {
			t.Errorf("%s/%s: cross-platform weight = %v, want 0", pair.platform, pair.entity, w.CrossPlatform)
		}

		if math.Abs(w.Sum()-1.0) > 1e-9 {
			t.Errorf("%s/%s: weights sum = %v, want 1.0", pair.platform, pair.entity, w.Sum())
		}
	}
}

func TestWeightTableFor(t *testing.T) {
	table := DefaultWeightTable()

	tests := []struct {
		name       string
		platform   domain.Platform
		entity     domain.EntityType
		wantVolume float64
	}{
		{"google trends ignores entity", domain.PlatformGoogleTrends, domain.EntitySearchQuery, 0.35},
		{"youtube row", domain.PlatformYouTube, domain.EntityVideo, 0.30},
		{"tiktok hashtag row", domain.PlatformTikTok, domain.EntityHashtag, 0.25},
		{"tiktok unknown entity falls to default", domain.PlatformTikTok, "story", 0.30},
		{"unknown platform falls to default", "threads", "", 0.30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.For(tt.platform, tt.entity)
			if got.Volume != tt.wantVolume {
				t.Errorf("For(%s, %s).Volume = %v, want %v", tt.platform, tt.entity, got.Volume, tt.wantVolume)
			}
		})
	}
}

func TestTableFromOverrides(t *testing.T) {
	t.Run("valid override replaces row", func(t *testing.T) {
		table, err := TableFromOverrides(map[string]domain.WeightVector{
			"youtube": {Volume: 0.50, Engagement: 0.20, Velocity: 0.10, Recency: 0.10, CrossPlatform: 0.10},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := table.For(domain.PlatformYouTube, domain.EntityVideo).Volume; got != 0.50 {
			t.Errorf("overridden volume = %v, want 0.50", got)
		}

		// Untouched rows keep their defaults.
		if got := table.For(domain.PlatformGoogleTrends, "").Volume; got != 0.35 {
			t.Errorf("google trends volume = %v, want default 0.35", got)
		}
	})

	t.Run("entity-level override", func(t *testing.T) {
		table, err := TableFromOverrides(map[string]domain.WeightVector{
			"tiktok/hashtag": {Volume: 0.20, Engagement: 0.45, Velocity: 0.20, Recency: 0.10, CrossPlatform: 0.05},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := table.For(domain.PlatformTikTok, domain.EntityHashtag).Engagement; got != 0.45 {
			t.Errorf("overridden engagement = %v, want 0.45", got)
		}
	})

	t.Run("default row override", func(t *testing.T) {
		table, err := TableFromOverrides(map[string]domain.WeightVector{
			"default": {Volume: 0.40, Engagement: 0.20, Velocity: 0.20, Recency: 0.10, CrossPlatform: 0.10},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := table.For("somewhere", "new").Volume; got != 0.40 {
			t.Errorf("default volume = %v, want 0.40", got)
		}
	})

	t.Run("row not summing to one is rejected", func(t *testing.T) {
		_, err := TableFromOverrides(map[string]domain.WeightVector{
			"youtube": {Volume: 0.50, Engagement: 0.50, Velocity: 0.50},
		})
		if err == nil {
			t.Fatal("expected error for row summing to 1.5")
		}
	})

	t.Run("negative weight is rejected", func(t *testing.T) {
		_, err := TableFromOverrides(map[string]domain.WeightVector{
			"youtube": {Volume: 1.20, Engagement: -0.20},
		})
		if err == nil {
			t.Fatal("expected error for negative weight")
		}
	})
}
