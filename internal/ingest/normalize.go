package ingest

import (
	"time"

	"github.com/araddon/dateparse"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
	"github.com/lueurxax/trend-pulse/internal/ingest/searchtrends"
	"github.com/lueurxax/trend-pulse/internal/ingest/shortvideo"
	"github.com/lueurxax/trend-pulse/internal/ingest/video"
)

const youTubeWatchURL = "https://www.youtube.com/watch?v="

// NormalizeGoogleTrends converts raw trending searches into unified trend
// items. The query doubles as id, name and title; records without one are
// dropped.
func NormalizeGoogleTrends(trends []searchtrends.TrendingSearch) []*domain.TrendItem {
	items := make([]*domain.TrendItem, 0, len(trends))

	for _, trend := range trends {
		if trend.Query == "" {
			continue
		}

		item := &domain.TrendItem{
			Platform:           domain.PlatformGoogleTrends,
			EntityType:         domain.EntitySearchQuery,
			ID:                 trend.Query,
			Name:               trend.Query,
			Title:              trend.Query,
			URL:                trend.NewsURL,
			SearchVolume:       trend.SearchVolume,
			IncreasePercentage: trend.IncreasePercentage,
			Active:             trend.Active,
			Categories:         trend.Categories,
			NewsURL:            trend.NewsURL,
		}

		if trend.StartTimestamp > 0 {
			item.StartedAt = time.Unix(trend.StartTimestamp, 0).UTC()
		}

		items = append(items, item)
	}

	return items
}

// NormalizeYouTube converts raw trending videos into unified trend items.
// Records without a video id are dropped since the watch URL cannot be
// built for them.
func NormalizeYouTube(videos []video.Video) []*domain.TrendItem {
	items := make([]*domain.TrendItem, 0, len(videos))

	for _, v := range videos {
		if v.ID == "" {
			continue
		}

		items = append(items, &domain.TrendItem{
			Platform:     domain.PlatformYouTube,
			EntityType:   domain.EntityVideo,
			ID:           v.ID,
			Name:         v.Title,
			Title:        v.Title,
			URL:          youTubeWatchURL + v.ID,
			ViewCount:    v.ViewCount,
			LikeCount:    v.LikeCount,
			CommentCount: v.CommentCount,
			PublishedAt:  parseTimestamp(v.PublishedAt),
			DurationSec:  v.DurationSec,
			ChannelTitle: v.ChannelTitle,
			CategoryID:   v.CategoryID,
			Thumbnail:    v.Thumbnail,
		})
	}

	return items
}

// NormalizeTikTok flattens one scrape batch into unified trend items:
// hashtags, then creators, sounds and standalone videos. Hashtags are
// identified by name and rendered with a # title; the other entities use
// their page URL as id.
func NormalizeTikTok(batch shortvideo.Batch) []*domain.TrendItem {
	size := len(batch.Hashtags) + len(batch.Creators) + len(batch.Sounds) + len(batch.Videos)
	items := make([]*domain.TrendItem, 0, size)

	for _, hashtag := range batch.Hashtags {
		if hashtag.Name == "" {
			continue
		}

		items = append(items, &domain.TrendItem{
			Platform:          domain.PlatformTikTok,
			EntityType:        domain.EntityHashtag,
			ID:                hashtag.Name,
			Name:              hashtag.Name,
			Title:             "#" + hashtag.Name,
			URL:               hashtag.URL,
			Rank:              hashtag.Rank,
			ViewCount:         hashtag.ViewCount,
			VideoCount:        hashtag.VideoCount,
			Industry:          hashtag.Industry,
			TrendingHistogram: histogramPoints(hashtag.Histogram),
		})
	}

	for _, creator := range batch.Creators {
		if creator.Name == "" && creator.URL == "" {
			continue
		}

		items = append(items, &domain.TrendItem{
			Platform:      domain.PlatformTikTok,
			EntityType:    domain.EntityCreator,
			ID:            creator.URL,
			Name:          creator.Name,
			Title:         creator.Name,
			URL:           creator.URL,
			Rank:          creator.Rank,
			FollowerCount: creator.FollowerCount,
			LikedCount:    creator.LikedCount,
			Thumbnail:     creator.Avatar,
			RelatedVideos: relatedVideos(creator.RelatedVideos),
		})
	}

	for _, sound := range batch.Sounds {
		if sound.Name == "" && sound.URL == "" {
			continue
		}

		items = append(items, &domain.TrendItem{
			Platform:          domain.PlatformTikTok,
			EntityType:        domain.EntitySound,
			ID:                sound.URL,
			Name:              sound.Name,
			Title:             sound.Name,
			URL:               sound.URL,
			Rank:              sound.Rank,
			Author:            sound.Author,
			DurationSec:       sound.DurationSec,
			CoverURL:          sound.CoverURL,
			TrendingHistogram: histogramPoints(sound.Histogram),
		})
	}

	for _, clip := range batch.Videos {
		if clip.Name == "" && clip.URL == "" {
			continue
		}

		items = append(items, &domain.TrendItem{
			Platform:     domain.PlatformTikTok,
			EntityType:   domain.EntityShortVideo,
			ID:           clip.URL,
			Name:         clip.Name,
			Title:        clip.Name,
			URL:          clip.URL,
			Rank:         clip.Rank,
			ViewCount:    clip.ViewCount,
			LikeCount:    clip.LikeCount,
			CommentCount: clip.CommentCount,
			DurationSec:  clip.DurationSec,
			CoverURL:     clip.CoverURL,
			PublishedAt:  epochTime(clip.CreateTime),
		})
	}

	return items
}

func histogramPoints(entries []shortvideo.HistogramEntry) []domain.HistogramPoint {
	if len(entries) == 0 {
		return nil
	}

	points := make([]domain.HistogramPoint, len(entries))
	for i, entry := range entries {
		points[i] = domain.HistogramPoint{
			Date:  parseTimestamp(entry.Date),
			Value: entry.Value,
		}
	}

	return points
}

func relatedVideos(clips []shortvideo.Clip) []domain.RelatedVideo {
	if len(clips) == 0 {
		return nil
	}

	videos := make([]domain.RelatedVideo, len(clips))
	for i, clip := range clips {
		videos[i] = domain.RelatedVideo{
			ID:           clip.ID,
			Title:        clip.Name,
			ViewCount:    clip.ViewCount,
			LikeCount:    clip.LikeCount,
			CommentCount: clip.CommentCount,
			CreateTime:   epochTime(clip.CreateTime),
		}
	}

	return videos
}

// parseTimestamp parses the loosely formatted date strings the upstream
// APIs return. Anything unparseable maps to the zero time, which the
// scoring engine treats as unknown.
func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	ts, err := dateparse.ParseAny(raw)
	if err != nil {
		return time.Time{}
	}

	return ts.UTC()
}

func epochTime(seconds int64) time.Time {
	if seconds <= 0 {
		return time.Time{}
	}

	return time.Unix(seconds, 0).UTC()
}
