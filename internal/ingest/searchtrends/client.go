// Package searchtrends fetches trending search queries from Google
// Trends, through SerpAPI when a key is configured and through the
// public RSS feed otherwise.
package searchtrends

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

	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
)

const (
	serpAPIBaseURL = "https://serpapi.com/search.json"
	serpAPIEngine  = "google_trends_trending_now"
	rssBaseURL     = "https://trends.google.com/trending/rss"

	defaultTimeout        = 30 * time.Second
	defaultRequestsPerMin = 20
	secondsPerMinute      = 60.0

	headerUserAgent  = "User-Agent"
	defaultUserAgent = "trend-pulse/1.0"

	trafficExtNamespace = "ht"
	trafficExtKey       = "approx_traffic"
	newsURLExtKey       = "news_item_url"

	responseTruncateLen = 200
)

var (
	errUnexpectedStatus = errors.New("search trends unexpected status")
	errAPIError         = errors.New("search trends api error")
	errRateLimited      = errors.New("search trends rate limited")
)

// TrendingSearch is one raw trending query as reported upstream.
// Timestamps stay epoch seconds here; the normalizer converts them.
type TrendingSearch struct {
	Query              string
	SearchVolume       float64
	IncreasePercentage float64
	Active             bool
	Categories         []string
	StartTimestamp     int64
	NewsURL            string
}

// Config holds the client configuration.
type Config struct {
	APIKey         string
	RequestsPerMin int
	Timeout        time.Duration
}

// Client fetches trending searches. With an API key it queries SerpAPI;
// without one it degrades to the public RSS feed, which reports
// approximate traffic instead of exact volume and no growth figures.
type Client struct {
	baseURL     string
	rssURL      string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	feedParser  *gofeed.Parser
}

// NewClient creates a Google Trends client.
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
		baseURL: serpAPIBaseURL,
		rssURL:  rssBaseURL,
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(float64(rpm)/secondsPerMinute), 1),
		feedParser:  gofeed.NewParser(),
	}
}

// IsAvailable always reports true: the RSS fallback needs no key.
func (c *Client) IsAvailable() bool {
	return true
}

// Fetch returns the current trending searches for a country, truncated
// to limit when limit is positive.
func (c *Client) Fetch(ctx context.Context, country string, category domain.Category, limit int) ([]TrendingSearch, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("search trends rate limit: %w", err)
	}

	var (
		searches []TrendingSearch
		err      error
	)

	if c.apiKey != "" {
		searches, err = c.fetchSerpAPI(ctx, country, category)
	} else {
		searches, err = c.fetchRSS(ctx, country)
	}

	if err != nil {
		return nil, err
	}

	if limit > 0 && len(searches) > limit {
		searches = searches[:limit]
	}

	return searches, nil
}

func (c *Client) fetchSerpAPI(ctx context.Context, country string, category domain.Category) ([]TrendingSearch, error) {
	params := url.Values{}
	params.Set("engine", serpAPIEngine)
	params.Set("geo", country)
	params.Set("api_key", c.apiKey)

	if id, ok := googleCategoryIDs[category]; ok {
		params.Set("category_id", id)
	}

	body, err := c.get(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	return parseSerpAPIResponse(body)
}

func (c *Client) fetchRSS(ctx context.Context, country string) ([]TrendingSearch, error) {
	params := url.Values{}
	params.Set("geo", country)

	body, err := c.get(ctx, c.rssURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	feed, err := c.feedParser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse trends feed: %w", err)
	}

	searches := make([]TrendingSearch, 0, len(feed.Items))

	for _, item := range feed.Items {
		if item.Title == "" {
			continue
		}

		search := TrendingSearch{
			Query:        item.Title,
			SearchVolume: parseApproxTraffic(feedExtension(item, trafficExtKey)),
			Active:       true,
			NewsURL:      feedExtension(item, newsURLExtKey),
		}

		if search.NewsURL == "" {
			search.NewsURL = item.Link
		}

		if item.PublishedParsed != nil {
			search.StartTimestamp = item.PublishedParsed.Unix()
		}

		searches = append(searches, search)
	}

	return searches, nil
}

func (c *Client) get(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create search trends request: %w", err)
	}

	req.Header.Set(headerUserAgent, defaultUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search trends request: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search trends response: %w", err)
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

	return body, nil
}

// serpAPIResponse is the trending-now payload. Category entries arrive
// as {id, name} objects; only names survive into records.
type serpAPIResponse struct {
	TrendingSearches []serpAPITrend `json:"trending_searches"`
	Error            string         `json:"error"`
}

type serpAPITrend struct {
	Query              string            `json:"query"`
	StartTimestamp     int64             `json:"start_timestamp"`
	Active             bool              `json:"active"`
	SearchVolume       float64           `json:"search_volume"`
	IncreasePercentage float64           `json:"increase_percentage"`
	Categories         []serpAPICategory `json:"categories"`
	NewsLink           string            `json:"serpapi_news_link"`
}

type serpAPICategory struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func parseSerpAPIResponse(body []byte) ([]TrendingSearch, error) {
	var resp serpAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse search trends json: %w", err)
	}

	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", errAPIError, resp.Error)
	}

	searches := make([]TrendingSearch, 0, len(resp.TrendingSearches))

	for _, trend := range resp.TrendingSearches {
		if trend.Query == "" {
			continue
		}

		categories := make([]string, 0, len(trend.Categories))
		for _, cat := range trend.Categories {
			if cat.Name != "" {
				categories = append(categories, cat.Name)
			}
		}

		searches = append(searches, TrendingSearch{
			Query:              trend.Query,
			SearchVolume:       trend.SearchVolume,
			IncreasePercentage: trend.IncreasePercentage,
			Active:             trend.Active,
			Categories:         categories,
			StartTimestamp:     trend.StartTimestamp,
			NewsURL:            trend.NewsLink,
		})
	}

	return searches, nil
}

type serpAPIErrorResponse struct {
	Error string `json:"error"`
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

	var errResp serpAPIErrorResponse
	if err := json.Unmarshal(trimmed, &errResp); err == nil && errResp.Error != "" {
		return fmt.Errorf("%w: %s", errAPIError, errResp.Error)
	}

	return nil
}

// feedExtension reads one value from the feed item's ht namespace,
// where the trends feed stores traffic estimates and news links.
func feedExtension(item *gofeed.Item, key string) string {
	ns, ok := item.Extensions[trafficExtNamespace]
	if !ok {
		return ""
	}

	values := ns[key]
	if len(values) == 0 {
		return ""
	}

	return strings.TrimSpace(values[0].Value)
}

// parseApproxTraffic converts feed traffic estimates like "2M+", "500K+"
// or "1000+" into a numeric volume. Unparseable input counts as zero.
func parseApproxTraffic(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(s, "+"))
	if s == "" {
		return 0
	}

	multiplier := 1.0

	switch {
	case strings.HasSuffix(s, "B"):
		multiplier = 1_000_000_000
		s = strings.TrimSuffix(s, "B")
	case strings.HasSuffix(s, "M"):
		multiplier = 1_000_000
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		multiplier = 1_000
		s = strings.TrimSuffix(s, "K")
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}

	return value * multiplier
}
