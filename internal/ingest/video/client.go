// Package video fetches the most-popular chart from the YouTube Data
// API v3.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
)

const (
	youTubeBaseURL   = "https://www.googleapis.com/youtube/v3/videos"
	youTubeChart     = "mostPopular"
	youTubeParts     = "snippet,statistics,contentDetails"
	youTubeMaxPage   = 50
	secondsPerMinute = 60.0
	secondsPerHour   = 3600.0

	defaultTimeout        = 30 * time.Second
	defaultRequestsPerMin = 60

	responseTruncateLen = 200
)

var (
	errMissingAPIKey    = errors.New("youtube api key not configured")
	errUnexpectedStatus = errors.New("youtube unexpected status")
	errAPIError         = errors.New("youtube api error")
	errRateLimited      = errors.New("youtube rate limited")
)

// Video is one raw chart entry. Counts arrive as string-encoded ints
// and durations as ISO-8601; both are decoded here, while the publish
// timestamp stays a string for the normalizer.
type Video struct {
	ID           string
	Title        string
	ChannelTitle string
	CategoryID   string
	PublishedAt  string
	Thumbnail    string
	ViewCount    float64
	LikeCount    float64
	CommentCount float64
	DurationSec  float64
}

// Config holds the client configuration.
type Config struct {
	APIKey         string
	RequestsPerMin int
	Timeout        time.Duration
}

// Client fetches trending videos.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewClient creates a YouTube client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	rpm := cfg.RequestsPerMin
	if rpm <= 0 {
		rpm = defaultRequestsPerMin
	}

	return &Client{
		baseURL: youTubeBaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(float64(rpm)/secondsPerMinute), 1),
	}
}

// IsAvailable reports whether the client is configured.
func (c *Client) IsAvailable() bool {
	return c.apiKey != ""
}

// Fetch returns the most-popular chart for a region, truncated to limit
// when limit is positive. The API caps one page at 50 entries.
func (c *Client) Fetch(ctx context.Context, region string, category domain.Category, limit int) ([]Video, error) {
	if c.apiKey == "" {
		return nil, errMissingAPIKey
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("youtube rate limit: %w", err)
	}

	maxResults := youTubeMaxPage
	if limit > 0 && limit < maxResults {
		maxResults = limit
	}

	params := url.Values{}
	params.Set("part", youTubeParts)
	params.Set("chart", youTubeChart)
	params.Set("regionCode", region)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("key", c.apiKey)

	if id, ok := youTubeCategoryIDs[category]; ok {
		params.Set("videoCategoryId", id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create youtube request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read youtube response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, errRateLimited
	}

	if resp.StatusCode != http.StatusOK {
		if err := checkAPIError(body); err != nil {
			return nil, err
		}

		return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
	}

	return parseResponse(body)
}

type youTubeResponse struct {
	Items []youTubeItem `json:"items"`
}

type youTubeItem struct {
	ID      string `json:"id"`
	Snippet struct {
		PublishedAt  string `json:"publishedAt"`  //nolint:tagliatelle // YouTube uses camelCase
		ChannelTitle string `json:"channelTitle"` //nolint:tagliatelle // YouTube uses camelCase
		Title        string `json:"title"`
		CategoryID   string `json:"categoryId"` //nolint:tagliatelle // YouTube uses camelCase
		Thumbnails   struct {
			High struct {
				URL string `json:"url"`
			} `json:"high"`
		} `json:"thumbnails"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`    //nolint:tagliatelle // YouTube uses camelCase
		LikeCount    string `json:"likeCount"`    //nolint:tagliatelle // YouTube uses camelCase
		CommentCount string `json:"commentCount"` //nolint:tagliatelle // YouTube uses camelCase
	} `json:"statistics"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"` //nolint:tagliatelle // YouTube uses camelCase
}

func parseResponse(body []byte) ([]Video, error) {
	var resp youTubeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse youtube json: %w", err)
	}

	videos := make([]Video, 0, len(resp.Items))

	for _, item := range resp.Items {
		if item.ID == "" {
			continue
		}

		videos = append(videos, Video{
			ID:           item.ID,
			Title:        item.Snippet.Title,
			ChannelTitle: item.Snippet.ChannelTitle,
			CategoryID:   item.Snippet.CategoryID,
			PublishedAt:  item.Snippet.PublishedAt,
			Thumbnail:    item.Snippet.Thumbnails.High.URL,
			ViewCount:    parseCount(item.Statistics.ViewCount),
			LikeCount:    parseCount(item.Statistics.LikeCount),
			CommentCount: parseCount(item.Statistics.CommentCount),
			DurationSec:  parseISODuration(item.ContentDetails.Duration),
		})
	}

	return videos, nil
}

type youTubeErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
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

	var errResp youTubeErrorResponse
	if err := json.Unmarshal(trimmed, &errResp); err == nil && errResp.Error.Message != "" {
		return fmt.Errorf("%w: %s (%d)", errAPIError, errResp.Error.Message, errResp.Error.Code)
	}

	return nil
}

// parseCount decodes the API's string-encoded counters. Hidden counters
// (empty or absent) count as zero.
func parseCount(s string) float64 {
	if s == "" {
		return 0
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}

	return value
}

// parseISODuration converts the API's ISO-8601 durations (PT1H2M30S,
// P1DT2H) into seconds. Anything unparseable counts as zero.
func parseISODuration(s string) float64 {
	s = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "P")
	if s == "" {
		return 0
	}

	var (
		total  float64
		num    strings.Builder
		inTime bool
	)

	for _, r := range s {
		switch {
		case r == 'T':
			inTime = true
		case r >= '0' && r <= '9' || r == '.':
			num.WriteRune(r)
		default:
			value, err := strconv.ParseFloat(num.String(), 64)
			num.Reset()

			if err != nil {
				continue
			}

			switch {
			case r == 'D':
				total += value * 24 * secondsPerHour
			case r == 'H':
				total += value * secondsPerHour
			case r == 'M' && inTime:
				total += value * secondsPerMinute
			case r == 'S':
				total += value
			}
		}
	}

	return total
}
