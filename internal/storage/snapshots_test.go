package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
)

func TestSnapshotItemsRoundTrip(t *testing.T) {
	published := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

	items := []*domain.TrendItem{
		{
			Platform:           domain.PlatformYouTube,
			EntityType:         domain.EntityVideo,
			ID:                 "dQw4w9WgXcQ",
			Title:              "Launch Highlights",
			URL:                "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			ViewCount:          1200000,
			LikeCount:          54000,
			CommentCount:       3100,
			PublishedAt:        published,
			ChannelTitle:       "SpaceDaily",
			VolumeScore:        81.2,
			EngagementScore:    74.9,
			VelocityScore:      0,
			RecencyScore:       88.4,
			CrossPlatformScore: 50,
			TrendingScore:      71.53,
			ScoreBreakdown: &domain.ScoreBreakdown{
				Volume:        81.2,
				Engagement:    74.9,
				Velocity:      0,
				Recency:       88.4,
				CrossPlatform: 50,
			},
			WeightsUsed: &domain.WeightVector{
				Volume:        0.30,
				Engagement:    0.30,
				Velocity:      0.10,
				Recency:       0.20,
				CrossPlatform: 0.10,
			},
		},
		{
			Platform:      domain.PlatformTikTok,
			EntityType:    domain.EntityHashtag,
			Name:          "rocketlaunch",
			Title:         "#rocketlaunch",
			VideoCount:    48000,
			TrendingScore: 28.47,
			TrendingHistogram: []domain.HistogramPoint{
				{Date: published, Value: 40},
				{Date: published.Add(time.Hour), Value: 55},
			},
		},
	}

	data, err := marshalItems(items)
	require.NoError(t, err)

	got, err := unmarshalItems(data)
	require.NoError(t, err)
	require.Len(t, got, len(items))

	first := got[0]
	require.InDelta(t, 71.53, first.TrendingScore, 1e-9)
	require.NotNil(t, first.ScoreBreakdown)
	require.InDelta(t, 88.4, first.ScoreBreakdown.Recency, 1e-9)
	require.NotNil(t, first.WeightsUsed)
	require.InDelta(t, 0.30, first.WeightsUsed.Volume, 1e-9)
	require.True(t, first.PublishedAt.Equal(published))

	second := got[1]
	require.Equal(t, domain.EntityHashtag, second.EntityType)
	require.Len(t, second.TrendingHistogram, 2)
	require.InDelta(t, 55, second.TrendingHistogram[1].Value, 1e-9)
}

func TestPlatformCountsRoundTrip(t *testing.T) {
	counts := domain.PlatformCounts{
		domain.PlatformGoogleTrends: 18,
		domain.PlatformYouTube:      25,
		domain.PlatformTikTok:       40,
	}

	data, err := marshalPlatformCounts(counts)
	require.NoError(t, err)

	got, err := unmarshalPlatformCounts(data)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, 40, got[domain.PlatformTikTok])
}

func TestMarshalItemsNil(t *testing.T) {
	data, err := marshalItems(nil)
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(data))
}
