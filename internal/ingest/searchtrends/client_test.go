package searchtrends

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
)

func TestParseApproxTraffic(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2M+", 2000000},
		{"500K+", 500000},
		{"1000+", 1000},
		{"1,000+", 1000},
		{"1B+", 1000000000},
		{"50K", 50000},
		{" 20K+ ", 20000},
		{"", 0},
		{"lots", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseApproxTraffic(tt.in); got != tt.want {
				t.Errorf("parseApproxTraffic(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestClientFetchSerpAPI(t *testing.T) {
	var capturedQuery map[string][]string

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedQuery = r.URL.Query()

		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte(`{
			"trending_searches": [
				{
					"query": "solar eclipse",
					"start_timestamp": 1717500000,
					"active": true,
					"search_volume": 2000000,
					"increase_percentage": 900,
					"categories": [{"id": 15, "name": "Science"}],
					"serpapi_news_link": "https://serpapi.com/search.json?engine=google_trends_news"
				},
				{
					"query": "",
					"search_volume": 10
				}
			]
		}`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer ts.Close()

	c := NewClient(Config{APIKey: "test-key", RequestsPerMin: 600})
	c.baseURL = ts.URL

	searches, err := c.Fetch(context.Background(), "US", domain.CategoryScienceTechnology, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(searches) != 1 {
		t.Fatalf("got %d searches, want 1", len(searches))
	}

	got := searches[0]

	if got.Query != "solar eclipse" {
		t.Errorf("Query = %q, want %q", got.Query, "solar eclipse")
	}

	if got.SearchVolume != 2000000 {
		t.Errorf("SearchVolume = %v, want 2000000", got.SearchVolume)
	}

	if got.IncreasePercentage != 900 {
		t.Errorf("IncreasePercentage = %v, want 900", got.IncreasePercentage)
	}

	if !got.Active {
		t.Error("Active = false, want true")
	}

	if got.StartTimestamp != 1717500000 {
		t.Errorf("StartTimestamp = %v, want 1717500000", got.StartTimestamp)
	}

	if len(got.Categories) != 1 || got.Categories[0] != "Science" {
		t.Errorf("Categories = %v, want [Science]", got.Categories)
	}

	if got.NewsURL == "" {
		t.Error("NewsURL empty")
	}

	if capturedQuery["engine"][0] != serpAPIEngine {
		t.Errorf("engine param = %q, want %q", capturedQuery["engine"][0], serpAPIEngine)
	}

	if capturedQuery["geo"][0] != "US" {
		t.Errorf("geo param = %q, want US", capturedQuery["geo"][0])
	}

	if capturedQuery["category_id"][0] != "18" {
		t.Errorf("category_id param = %q, want 18", capturedQuery["category_id"][0])
	}
}

func TestClientFetchRSSFallback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<rss xmlns:ht="https://trends.google.com/trending/rss" version="2.0">
  <channel>
    <title>Daily Search Trends</title>
    <item>
      <title>solar eclipse</title>
      <link>https://trends.google.com/trending?geo=US</link>
      <pubDate>Tue, 04 Jun 2024 12:00:00 +0000</pubDate>
      <ht:approx_traffic>2M+</ht:approx_traffic>
      <ht:news_item_url>https://example.com/eclipse-news</ht:news_item_url>
    </item>
  </channel>
</rss>`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer ts.Close()

	c := NewClient(Config{RequestsPerMin: 600})
	c.rssURL = ts.URL

	searches, err := c.Fetch(context.Background(), "US", domain.CategoryAll, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(searches) != 1 {
		t.Fatalf("got %d searches, want 1", len(searches))
	}

	got := searches[0]

	if got.Query != "solar eclipse" {
		t.Errorf("Query = %q, want %q", got.Query, "solar eclipse")
	}

	if got.SearchVolume != 2000000 {
		t.Errorf("SearchVolume = %v, want 2000000", got.SearchVolume)
	}

	if got.NewsURL != "https://example.com/eclipse-news" {
		t.Errorf("NewsURL = %q, want the news item url", got.NewsURL)
	}

	if got.StartTimestamp == 0 {
		t.Error("StartTimestamp not parsed from pubDate")
	}

	if !got.Active {
		t.Error("Active = false, want true for a live feed entry")
	}
}

func TestClientFetchAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)

		if _, err := w.Write([]byte(`{"error": "Invalid API key."}`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer ts.Close()

	c := NewClient(Config{APIKey: "bad-key", RequestsPerMin: 600})
	c.baseURL = ts.URL

	_, err := c.Fetch(context.Background(), "US", domain.CategoryAll, 10)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if !errors.Is(err, errAPIError) {
		t.Errorf("expected errAPIError, got %v", err)
	}
}

func TestClientFetchRateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := NewClient(Config{APIKey: "test-key", RequestsPerMin: 600})
	c.baseURL = ts.URL

	_, err := c.Fetch(context.Background(), "US", domain.CategoryAll, 10)
	if !errors.Is(err, errRateLimited) {
		t.Errorf("expected errRateLimited, got %v", err)
	}
}

func TestClientFetchLimit(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte(`{
			"trending_searches": [
				{"query": "one", "search_volume": 1},
				{"query": "two", "search_volume": 2},
				{"query": "three", "search_volume": 3}
			]
		}`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer ts.Close()

	c := NewClient(Config{APIKey: "test-key", RequestsPerMin: 600})
	c.baseURL = ts.URL

	searches, err := c.Fetch(context.Background(), "US", domain.CategoryAll, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(searches) != 2 {
		t.Errorf("got %d searches, want 2", len(searches))
	}
}
