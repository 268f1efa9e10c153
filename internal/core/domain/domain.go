package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Platform identifies the source platform of a trend item.
type Platform string

const (
	PlatformGoogleTrends Platform = "google_trends"
	PlatformYouTube      Platform = "youtube"
	PlatformTikTok       Platform = "tiktok"
)

// Platforms lists every supported platform in fetch order.
func Platforms() []Platform {
	return []Platform{PlatformGoogleTrends, PlatformYouTube, PlatformTikTok}
}

// ParsePlatform maps a request parameter onto a known platform. Empty,
// "all" and unknown values select no platform, meaning all of them.
func ParsePlatform(s string) Platform {
	p := Platform(s)
	for _, known := range Platforms() {
		if p == known {
			return p
		}
	}

	return ""
}

// EntityType identifies what kind of entity a trend item describes.
// Google Trends items are always search queries and YouTube items are
// always videos; TikTok records carry their own type tag.
type EntityType string

const (
	EntitySearchQuery EntityType = "search_query"
	EntityVideo       EntityType = "video"
	EntityHashtag     EntityType = "hashtag"
	EntityCreator     EntityType = "creator"
	EntitySound       EntityType = "sound"
	EntityShortVideo  EntityType = "short_video"
)

// HistogramPoint is one dated sample of a trending metric time series.
type HistogramPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// RelatedVideo is a sub-entity attached to TikTok creators and sounds.
type RelatedVideo struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	ViewCount    float64   `json:"view_count"`
	LikeCount    float64   `json:"like_count"`
	CommentCount float64   `json:"comment_count"`
	CreateTime   time.Time `json:"create_time"`
}

// ScoreBreakdown carries the five component scores attached to a scored
// item so every trending score can be audited without recomputation.
type ScoreBreakdown struct {
	Volume        float64 `json:"volume"`
	Engagement    float64 `json:"engagement"`
	Velocity      float64 `json:"velocity"`
	Recency       float64 `json:"recency"`
	CrossPlatform float64 `json:"cross_platform"`
}

// WeightVector holds the five per-component multipliers used to combine
// component scores into the final trending score. A valid vector sums
// to 1.0.
type WeightVector struct {
	Volume        float64 `json:"volume"`
	Engagement    float64 `json:"engagement"`
	Velocity      float64 `json:"velocity"`
	Recency       float64 `json:"recency"`
	CrossPlatform float64 `json:"cross_platform"`
}

const weightSumEpsilon = 1e-9

var (
	errWeightSum      = errors.New("weight vector must sum to 1.0")
	errWeightNegative = errors.New("weight vector components must be non-negative")
)

// Sum returns the total of the five weights.
func (w WeightVector) Sum() float64 {
	return w.Volume + w.Engagement + w.Velocity + w.Recency + w.CrossPlatform
}

// Validate checks that all weights are non-negative and sum to 1.0.
func (w WeightVector) Validate() error {
	if w.Volume < 0 || w.Engagement < 0 || w.Velocity < 0 || w.Recency < 0 || w.CrossPlatform < 0 {
		return errWeightNegative
	}

	if math.Abs(w.Sum()-1.0) > weightSumEpsilon {
		return fmt.Errorf("%w: got %v", errWeightSum, w.Sum())
	}

	return nil
}

// TrendItem is the unified trending entity every platform's records are
// normalized into. Raw platform metrics are carried through untouched;
// the scoring engine fills the score fields in place.
type TrendItem struct {
	Platform   Platform   `json:"platform"`
	EntityType EntityType `json:"entity_type"`
	ID         string     `json:"id,omitempty"`
	Name       string     `json:"name,omitempty"`
	Title      string     `json:"title,omitempty"`
	URL        string     `json:"url,omitempty"`

	// Google Trends metrics.
	SearchVolume       float64   `json:"search_volume,omitempty"`
	IncreasePercentage float64   `json:"increase_percentage,omitempty"`
	Active             bool      `json:"active,omitempty"`
	Categories         []string  `json:"categories,omitempty"`
	NewsURL            string    `json:"news_url,omitempty"`
	StartedAt          time.Time `json:"started_at"`

	// YouTube metrics.
	ViewCount    float64   `json:"view_count,omitempty"`
	LikeCount    float64   `json:"like_count,omitempty"`
	CommentCount float64   `json:"comment_count,omitempty"`
	PublishedAt  time.Time `json:"published_at"`
	DurationSec  float64   `json:"duration_sec,omitempty"`
	ChannelTitle string    `json:"channel_title,omitempty"`
	CategoryID   string    `json:"category_id,omitempty"`
	Thumbnail    string    `json:"thumbnail,omitempty"`

	// TikTok metrics.
	Rank              int              `json:"rank,omitempty"`
	VideoCount        float64          `json:"video_count,omitempty"`
	FollowerCount     float64          `json:"follower_count,omitempty"`
	LikedCount        float64          `json:"liked_count,omitempty"`
	TrendingHistogram []HistogramPoint `json:"trending_histogram,omitempty"`
	RelatedVideos     []RelatedVideo   `json:"related_videos,omitempty"`
	Industry          string           `json:"industry,omitempty"`
	CoverURL          string           `json:"cover_url,omitempty"`
	Author            string           `json:"author,omitempty"`

	// Computed by the scoring engine.
	VolumeScore        float64         `json:"volume_score"`
	EngagementScore    float64         `json:"engagement_score"`
	VelocityScore      float64         `json:"velocity_score"`
	RecencyScore       float64         `json:"recency_score"`
	CrossPlatformScore float64         `json:"cross_platform_score"`
	TrendingScore      float64         `json:"trending_score"`
	ScoreBreakdown     *ScoreBreakdown `json:"score_breakdown,omitempty"`
	WeightsUsed        *WeightVector   `json:"weights_used,omitempty"`
}

// DisplayName returns the best human-readable label for the item.
func (t *TrendItem) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}

	if t.Title != "" {
		return t.Title
	}

	return t.ID
}

// TopN returns the first n items of an already-sorted batch without
// copying. n <= 0 or n >= len(items) returns the batch unchanged.
func TopN(items []*TrendItem, n int) []*TrendItem {
	if n <= 0 || n >= len(items) {
		return items
	}

	return items[:n]
}

// PlatformCounts tallies how many items each platform contributed to a
// batch.
type PlatformCounts map[Platform]int

// CountByPlatform builds the per-platform tally for a batch.
func CountByPlatform(items []*TrendItem) PlatformCounts {
	counts := make(PlatformCounts)
	for _, item := range items {
		counts[item.Platform]++
	}

	return counts
}

// Snapshot is one stored aggregation result: the scored, sorted batch for
// a (country, category, window) request at a point in time.
type Snapshot struct {
	ID             string         `json:"id"`
	Country        string         `json:"country"`
	Category       Category       `json:"category"`
	Window         TimeWindow     `json:"window"`
	ItemCount      int            `json:"item_count"`
	PlatformCounts PlatformCounts `json:"platform_counts"`
	Items          []*TrendItem   `json:"items"`
	CreatedAt      time.Time      `json:"created_at"`
}
