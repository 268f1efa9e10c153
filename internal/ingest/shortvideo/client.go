// Package shortvideo fetches TikTok trending entities (hashtags,
// creators, sounds, clips) through an Apify scraping actor's
// synchronous run endpoint.
package shortvideo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
)

const (
	apifyBaseURL     = "https://api.apify.com/v2/acts"
	apifyRunSyncPath = "run-sync-get-dataset-items"
	defaultActorID   = "sDvA9jM4WRTDX4Syr"

	rankTypePopular  = "popular"
	sortCreatorsBy   = "follower"
	sortVideosBy     = "vv"
	timeRangeWeek    = "7"
	timeRangeMonth   = "30"
	timeRangeQuarter = "120"

	itemTypeHashtag = "hashtag"
	itemTypeVideo   = "video"
	itemTypeCreator = "creator"
	itemTypeSound   = "sound"

	defaultTimeout        = 120 * time.Second
	defaultRequestsPerMin = 6
	secondsPerMinute      = 60.0

	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"

	responseTruncateLen = 200
)

var (
	errMissingToken     = errors.New("apify token not configured")
	errUnexpectedStatus = errors.New("apify unexpected status")
	errAPIError         = errors.New("apify api error")
	errRateLimited      = errors.New("apify rate limited")
)

// HistogramEntry is one point of a trending histogram as scraped, date
// still a string for the normalizer to parse.
type HistogramEntry struct {
	Date  string
	Value float64
}

// Clip is one raw short video, standalone or attached to a creator.
type Clip struct {
	ID           string
	Name         string
	URL          string
	CoverURL     string
	Rank         int
	DurationSec  float64
	ViewCount    float64
	LikeCount    float64
	CommentCount float64
	CreateTime   int64
}

// Hashtag is one raw trending hashtag.
type Hashtag struct {
	Name       string
	URL        string
	Rank       int
	ViewCount  float64
	VideoCount float64
	Industry   string
	Histogram  []HistogramEntry
}

// Creator is one raw trending creator.
type Creator struct {
	Name          string
	URL           string
	Avatar        string
	Rank          int
	FollowerCount float64
	LikedCount    float64
	RelatedVideos []Clip
}

// Sound is one raw trending sound.
type Sound struct {
	Name        string
	Author      string
	URL         string
	CoverURL    string
	Rank        int
	DurationSec float64
	Histogram   []HistogramEntry
}

// Batch carries one scrape's typed sub-lists.
type Batch struct {
	Hashtags []Hashtag
	Creators []Creator
	Sounds   []Sound
	Videos   []Clip
}

// Empty reports whether the scrape produced nothing at all.
func (b Batch) Empty() bool {
	return len(b.Hashtags) == 0 && len(b.Creators) == 0 && len(b.Sounds) == 0 && len(b.Videos) == 0
}

// Config holds the client configuration.
type Config struct {
	Token          string
	ActorID        string
	RequestsPerMin int
	Timeout        time.Duration
}

// Client runs the scraping actor synchronously and splits the dataset
// by entity type.
type Client struct {
	baseURL     string
	actorID     string
	token       string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewClient creates an Apify-backed TikTok client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rpm := cfg.RequestsPerMin
	if rpm <= 0 {
		rpm = defaultRequestsPerMin
	}

	actorID := cfg.ActorID
	if actorID == "" {
		actorID = defaultActorID
	}

	return &Client{
		baseURL: apifyBaseURL,
		actorID: actorID,
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(float64(rpm)/secondsPerMinute), 1),
	}
}

// IsAvailable reports whether the client is configured.
func (c *Client) IsAvailable() bool {
	return c.token != ""
}

// runInput is the actor's request body.
type runInput struct {
	ScrapeHashtags         bool   `json:"adsScrapeHashtags"`            //nolint:tagliatelle // actor input schema
	ScrapeCreators         bool   `json:"adsScrapeCreators"`            //nolint:tagliatelle // actor input schema
	ScrapeSounds           bool   `json:"adsScrapeSounds"`              //nolint:tagliatelle // actor input schema
	ScrapeVideos           bool   `json:"adsScrapeVideos"`              //nolint:tagliatelle // actor input schema
	ResultsPerPage         int    `json:"resultsPerPage"`               //nolint:tagliatelle // actor input schema
	CountryCode            string `json:"adsCountryCode"`               //nolint:tagliatelle // actor input schema
	TimeRange              string `json:"adsTimeRange"`                 //nolint:tagliatelle // actor input schema
	NewOnBoard             bool   `json:"adsNewOnBoard"`                //nolint:tagliatelle // actor input schema
	RankType               string `json:"adsRankType"`                  //nolint:tagliatelle // actor input schema
	ApprovedForBusinessUse bool   `json:"adsApprovedForBusinessUse"`    //nolint:tagliatelle // actor input schema
	SortCreatorsBy         string `json:"adsSortCreatorsBy"`            //nolint:tagliatelle // actor input schema
	SortVideosBy           string `json:"adsSortVideosBy"`              //nolint:tagliatelle // actor input schema
	HashtagIndustry        string `json:"adsHashtagIndustry,omitempty"` //nolint:tagliatelle // actor input schema
}

// Fetch scrapes the trending lists for a country. The window picks the
// closest supported scrape range; limit bounds each sub-list.
func (c *Client) Fetch(ctx context.Context, country string, category domain.Category, window domain.TimeWindow, limit int) (Batch, error) {
	if c.token == "" {
		return Batch{}, errMissingToken
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return Batch{}, fmt.Errorf("apify rate limit: %w", err)
	}

	input := runInput{
		ScrapeHashtags:         true,
		ScrapeCreators:         true,
		ScrapeSounds:           true,
		ScrapeVideos:           true,
		ResultsPerPage:         limit,
		CountryCode:            country,
		TimeRange:              scrapeTimeRange(window),
		NewOnBoard:             true,
		RankType:               rankTypePopular,
		ApprovedForBusinessUse: false,
		SortCreatorsBy:         sortCreatorsBy,
		SortVideosBy:           sortVideosBy,
		HashtagIndustry:        tiktokIndustries[category],
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return Batch{}, fmt.Errorf("encode apify input: %w", err)
	}

	params := url.Values{}
	params.Set("token", c.token)

	requestURL := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.actorID, apifyRunSyncPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(payload))
	if err != nil {
		return Batch{}, fmt.Errorf("create apify request: %w", err)
	}

	req.Header.Set(headerContentType, contentTypeJSON)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Batch{}, fmt.Errorf("apify request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Batch{}, fmt.Errorf("read apify response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return Batch{}, errRateLimited
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		if err := checkAPIError(body); err != nil {
			return Batch{}, err
		}

		return Batch{}, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
	}

	return parseDataset(body)
}

// scrapeTimeRange picks the nearest scrape range the actor supports.
func scrapeTimeRange(window domain.TimeWindow) string {
	duration, ok := window.Duration()
	if !ok {
		return timeRangeWeek
	}

	switch {
	case duration <= 7*24*time.Hour:
		return timeRangeWeek
	case duration <= 30*24*time.Hour:
		return timeRangeMonth
	default:
		return timeRangeQuarter
	}
}

// datasetItem is the wire shape of one scraped entity; the type field
// discriminates which of the other fields mean anything.
type datasetItem struct {
	Type          string             `json:"type"`
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	URL           string             `json:"url"`
	Rank          int                `json:"rank"`
	ViewCount     float64            `json:"viewCount"`     //nolint:tagliatelle // actor output schema
	VideoCount    float64            `json:"videoCount"`    //nolint:tagliatelle // actor output schema
	FollowerCount float64            `json:"followerCount"` //nolint:tagliatelle // actor output schema
	LikedCount    float64            `json:"likedCount"`    //nolint:tagliatelle // actor output schema
	LikeCount     float64            `json:"likeCount"`     //nolint:tagliatelle // actor output schema
	CommentCount  float64            `json:"commentCount"`  //nolint:tagliatelle // actor output schema
	IndustryName  string             `json:"industryName"`  //nolint:tagliatelle // actor output schema
	Author        string             `json:"author"`
	Avatar        string             `json:"avatar"`
	CoverURL      string             `json:"coverUrl"`          //nolint:tagliatelle // actor output schema
	DurationSec   float64            `json:"durationSec"`       //nolint:tagliatelle // actor output schema
	CreateTime    int64              `json:"createTime"`        //nolint:tagliatelle // actor output schema
	Histogram     []histogramEntry   `json:"trendingHistogram"` //nolint:tagliatelle // actor output schema
	RelatedVideos []relatedVideoItem `json:"relatedVideos"`     //nolint:tagliatelle // actor output schema
}

type histogramEntry struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type relatedVideoItem struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	ViewCount    float64 `json:"viewCount"`    //nolint:tagliatelle // actor output schema
	LikeCount    float64 `json:"likeCount"`    //nolint:tagliatelle // actor output schema
	CommentCount float64 `json:"commentCount"` //nolint:tagliatelle // actor output schema
	CreateTime   int64   `json:"createTime"`   //nolint:tagliatelle // actor output schema
}

func parseDataset(body []byte) (Batch, error) {
	var items []datasetItem
	if err := json.Unmarshal(body, &items); err != nil {
		return Batch{}, fmt.Errorf("parse apify dataset: %w", err)
	}

	var batch Batch

	for _, item := range items {
		switch item.Type {
		case itemTypeHashtag:
			batch.Hashtags = append(batch.Hashtags, Hashtag{
				Name:       item.Name,
				URL:        item.URL,
				Rank:       rankOrPosition(item.Rank, len(batch.Hashtags)),
				ViewCount:  item.ViewCount,
				VideoCount: item.VideoCount,
				Industry:   item.IndustryName,
				Histogram:  histogramOf(item.Histogram),
			})
		case itemTypeCreator:
			batch.Creators = append(batch.Creators, Creator{
				Name:          item.Name,
				URL:           item.URL,
				Avatar:        item.Avatar,
				Rank:          rankOrPosition(item.Rank, len(batch.Creators)),
				FollowerCount: item.FollowerCount,
				LikedCount:    item.LikedCount,
				RelatedVideos: clipsOf(item.RelatedVideos),
			})
		case itemTypeSound:
			batch.Sounds = append(batch.Sounds, Sound{
				Name:        item.Name,
				Author:      item.Author,
				URL:         item.URL,
				CoverURL:    item.CoverURL,
				Rank:        rankOrPosition(item.Rank, len(batch.Sounds)),
				DurationSec: item.DurationSec,
				Histogram:   histogramOf(item.Histogram),
			})
		case itemTypeVideo:
			batch.Videos = append(batch.Videos, Clip{
				ID:           item.ID,
				Name:         item.Name,
				URL:          item.URL,
				CoverURL:     item.CoverURL,
				Rank:         rankOrPosition(item.Rank, len(batch.Videos)),
				DurationSec:  item.DurationSec,
				ViewCount:    item.ViewCount,
				LikeCount:    item.LikeCount,
				CommentCount: item.CommentCount,
				CreateTime:   item.CreateTime,
			})
		}
	}

	return batch, nil
}

// rankOrPosition keeps the scraped rank, substituting the list position
// when the actor omits it.
func rankOrPosition(rank, position int) int {
	if rank > 0 {
		return rank
	}

	return position + 1
}

func histogramOf(entries []histogramEntry) []HistogramEntry {
	if len(entries) == 0 {
		return nil
	}

	histogram := make([]HistogramEntry, len(entries))
	for i, e := range entries {
		histogram[i] = HistogramEntry{Date: e.Date, Value: e.Value}
	}

	return histogram
}

func clipsOf(items []relatedVideoItem) []Clip {
	if len(items) == 0 {
		return nil
	}

	clips := make([]Clip, len(items))
	for i, item := range items {
		clips[i] = Clip{
			ID:           item.ID,
			Name:         item.Title,
			ViewCount:    item.ViewCount,
			LikeCount:    item.LikeCount,
			CommentCount: item.CommentCount,
			CreateTime:   item.CreateTime,
		}
	}

	return clips
}

type apifyErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func checkAPIError(body []byte) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}

	if trimmed[0] != '{' && trimmed[0] != '[' {
		errMsg := string(trimmed)
		if len(errMsg) > responseTruncateLen {
			errMsg = errMsg[:responseTruncateLen] + "..."
		}

		return fmt.Errorf("%w: %s", errAPIError, errMsg)
	}

	var errResp apifyErrorResponse
	if err := json.Unmarshal(trimmed, &errResp); err == nil && errResp.Error.Message != "" {
		return fmt.Errorf("%w: %s (%s)", errAPIError, errResp.Error.Message, errResp.Error.Type)
	}

	return nil
}
