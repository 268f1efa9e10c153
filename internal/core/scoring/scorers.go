package scoring

import (
	"math"
	"time"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
)

// batchStats holds the per-entity-type maxima TikTok engagement formulas
// normalize against. Computed once per ScoreBatch call so concurrent
// batches never share state.
type batchStats struct {
	maxViewCount  map[domain.EntityType]float64
	maxVideoCount map[domain.EntityType]float64
	maxRank       map[domain.EntityType]float64
}

func collectBatchStats(items []*domain.TrendItem) batchStats {
	stats := batchStats{
		maxViewCount:  make(map[domain.EntityType]float64),
		maxVideoCount: make(map[domain.EntityType]float64),
		maxRank:       make(map[domain.EntityType]float64),
	}

	for _, item := range items {
		if item.Platform != domain.PlatformTikTok {
			continue
		}

		et := item.EntityType

		if item.ViewCount > stats.maxViewCount[et] {
			stats.maxViewCount[et] = item.ViewCount
		}

		if item.VideoCount > stats.maxVideoCount[et] {
			stats.maxVideoCount[et] = item.VideoCount
		}

		if rank := float64(item.Rank); rank > stats.maxRank[et] {
			stats.maxRank[et] = rank
		}
	}

	return stats
}

// volumeScore estimates raw reach. Values are platform-local at this
// point; the normalization pass makes them comparable.
func volumeScore(item *domain.TrendItem) float64 {
	switch item.Platform {
	case domain.PlatformGoogleTrends:
		return item.SearchVolume * searchVolumeBoost
	case domain.PlatformYouTube:
		return item.ViewCount
	case domain.PlatformTikTok:
		switch item.EntityType {
		case domain.EntityHashtag:
			return item.ViewCount
		case domain.EntityCreator:
			// Follower counts are a steadier reach signal than views.
			return item.FollowerCount * creatorFollowerWeight
		case domain.EntitySound, domain.EntityShortVideo:
			if item.ViewCount > 0 {
				return item.ViewCount
			}

			// Ordinal chart position is the only reach signal left.
			return float64(item.Rank)
		default:
			return item.ViewCount
		}
	}

	return 0
}

// engagementScore estimates interaction quality per platform and entity
// type. TikTok formulas lean on per-batch maxima from stats.
func engagementScore(item *domain.TrendItem, stats batchStats) float64 {
	switch item.Platform {
	case domain.PlatformGoogleTrends:
		// Raw percentage increase; rescaled against the other
		// platforms' range before the normalization pass.
		return item.IncreasePercentage
	case domain.PlatformYouTube:
		if item.ViewCount == 0 {
			return 0
		}

		rate := (item.LikeCount + item.CommentCount) / item.ViewCount

		return rate * videoEngagementScale
	case domain.PlatformTikTok:
		return tiktokEngagement(item, stats)
	}

	return 0
}

func tiktokEngagement(item *domain.TrendItem, stats batchStats) float64 {
	et := item.EntityType

	switch et {
	case domain.EntityHashtag:
		var viewNorm, videoNorm, rankNorm float64

		if maxViews := stats.maxViewCount[et]; maxViews > 0 {
			viewNorm = item.ViewCount / maxViews
		}

		if maxVideos := stats.maxVideoCount[et]; maxVideos > 0 {
			videoNorm = item.VideoCount / maxVideos
		}

		if maxRank := stats.maxRank[et]; maxRank > 0 {
			rankNorm = 1 - float64(item.Rank)/maxRank
		}

		momentumNorm := momentum(item.TrendingHistogram)

		return hashtagViewWeight*viewNorm +
			hashtagVideoWeight*videoNorm +
			hashtagRankWeight*rankNorm +
			hashtagMomentumWeight*momentumNorm
	case domain.EntityCreator:
		if item.FollowerCount == 0 {
			return 0
		}

		return item.LikedCount / item.FollowerCount * creatorEngagementScale
	case domain.EntitySound, domain.EntityShortVideo:
		// No real interaction data upstream for these; invert the
		// chart position as a weak proxy.
		maxRank := stats.maxRank[et]
		if maxRank == 0 {
			return 0
		}

		return (1 - float64(item.Rank)/maxRank) * rankInversionScale
	default:
		return 0
	}
}

// velocityScore estimates growth speed.
func velocityScore(item *domain.TrendItem, now time.Time) float64 {
	switch item.Platform {
	case domain.PlatformGoogleTrends:
		return searchVelocity(item)
	case domain.PlatformYouTube:
		return videoVelocity(item, now)
	case domain.PlatformTikTok:
		if item.EntityType == domain.EntityCreator {
			if v, ok := creatorVelocity(item); ok {
				return v
			}
		}

		return histogramVelocity(item)
	}

	return 0
}

func searchVelocity(item *domain.TrendItem) float64 {
	activeMultiplier := 1.0
	if item.Active {
		activeMultiplier = activeVelocityBonus
	}

	velocity := item.IncreasePercentage * searchVelocityBoost * activeMultiplier

	if item.IncreasePercentage >= viralIncreaseThreshold {
		velocity *= viralVelocityBonus
	}

	return math.Max(0, velocity)
}

func videoVelocity(item *domain.TrendItem, now time.Time) float64 {
	hours := defaultPublishAgeHours
	if !item.PublishedAt.IsZero() {
		hours = math.Max(minPublishAgeHours, now.Sub(item.PublishedAt).Hours())
	}

	viewsPerHour := item.ViewCount / hours
	reactionsPerHour := (item.LikeCount + item.CommentCount) / hours

	return viewVelocityWeight*viewsPerHour + reactionVelocityWeight*reactionsPerHour
}

// creatorVelocity derives posting-cadence velocity from a creator's
// related videos. Needs at least two timestamped videos to establish a
// span; otherwise the caller falls back to the histogram.
func creatorVelocity(item *domain.TrendItem) (float64, bool) {
	var (
		earliest, latest       time.Time
		totalViews, totalLikes float64
		timestamped            int
	)

	for _, video := range item.RelatedVideos {
		totalViews += video.ViewCount
		totalLikes += video.LikeCount

		if video.CreateTime.IsZero() {
			continue
		}

		timestamped++

		if earliest.IsZero() || video.CreateTime.Before(earliest) {
			earliest = video.CreateTime
		}

		if video.CreateTime.After(latest) {
			latest = video.CreateTime
		}
	}

	if timestamped < minRelatedVideosForSpan {
		return 0, false
	}

	spanDays := math.Max(minSpanDays, latest.Sub(earliest).Hours()/hoursPerDay)
	perDayCount := float64(len(item.RelatedVideos)) / spanDays

	velocity := creatorViewSpanWeight*(totalViews/spanDays) +
		creatorLikeSpanWeight*(totalLikes/spanDays) +
		creatorCountSpanWeight*perDayCount*creatorCountSpanScale

	return velocity, true
}

func histogramVelocity(item *domain.TrendItem) float64 {
	histogram := item.TrendingHistogram
	if len(histogram) >= minHistogramSize {
		growth := histogram[len(histogram)-1].Value - histogram[0].Value

		return math.Max(0, growth) * histogramGrowthScale
	}

	return math.Max(0, (rankFallbackBase-float64(item.Rank))*rankFallbackScale)
}

// recencyScore applies exponential decay with a 24-hour half life:
// brand new items score 100, day-old items 50, two-day-old items 25.
// Items with no resolvable timestamp get a fixed mid-range default so
// missing metadata neither buries nor boosts them.
func recencyScore(item *domain.TrendItem, now time.Time) float64 {
	ts := resolveTimestamp(item)
	if ts.IsZero() {
		return defaultRecencyScore
	}

	ageHours := math.Max(0, now.Sub(ts).Hours())
	score := maxComponentScore * math.Pow(0.5, ageHours/recencyHalfLifeHours)

	return math.Max(0, math.Min(maxComponentScore, score))
}

// resolveTimestamp picks the platform-appropriate timestamp for recency
// scoring and window filtering. Zero time means unknown.
func resolveTimestamp(item *domain.TrendItem) time.Time {
	switch item.Platform {
	case domain.PlatformGoogleTrends:
		return item.StartedAt
	case domain.PlatformYouTube:
		return item.PublishedAt
	case domain.PlatformTikTok:
		if item.EntityType == domain.EntityCreator {
			if latest := latestRelatedVideoTime(item.RelatedVideos); !latest.IsZero() {
				return latest
			}
		}

		if n := len(item.TrendingHistogram); n > 0 {
			return item.TrendingHistogram[n-1].Date
		}
	}

	return time.Time{}
}

func latestRelatedVideoTime(videos []domain.RelatedVideo) time.Time {
	var latest time.Time

	for _, video := range videos {
		if video.CreateTime.After(latest) {
			latest = video.CreateTime
		}
	}

	return latest
}

// crossPlatformScores fills CrossPlatformScore for every item: 0 when a
// trend only exists on its own platform, 50 when it matches one other
// platform, 100 for two or more. Pairwise comparison over the batch is
// fine at the batch sizes involved (tens to low hundreds).
func crossPlatformScores(items []*domain.TrendItem) {
	termSets := make([]map[string]bool, len(items))
	for i, item := range items {
		termSets[i] = significantTerms(item)
	}

	for i, item := range items {
		if len(termSets[i]) == 0 {
			item.CrossPlatformScore = 0

			continue
		}

		platformsFound := map[domain.Platform]bool{item.Platform: true}

		for j, other := range items {
			if i == j || platformsFound[other.Platform] {
				continue
			}

			if termsOverlap(termSets[i], termSets[j]) {
				platformsFound[other.Platform] = true
			}
		}

		switch len(platformsFound) {
		case 1:
			item.CrossPlatformScore = 0
		case 2:
			item.CrossPlatformScore = twoPlatformsScore
		default:
			item.CrossPlatformScore = threePlatformsScore
		}
	}
}
