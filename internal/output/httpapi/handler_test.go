package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
	"github.com/lueurxax/trend-pulse/internal/core/llm"
	"github.com/lueurxax/trend-pulse/internal/ingest"
	"github.com/lueurxax/trend-pulse/internal/platform/config"
	db "github.com/lueurxax/trend-pulse/internal/storage"
)

var fixedNow = time.Date(2024, 6, 4, 12, 0, 0, 0, time.UTC)

func testItems() []*domain.TrendItem {
	return []*domain.TrendItem{
		{
			Platform:      domain.PlatformGoogleTrends,
			EntityType:    domain.EntitySearchQuery,
			Name:          "solar eclipse",
			TrendingScore: 91.2,
		},
		{
			Platform:      domain.PlatformYouTube,
			EntityType:    domain.EntityVideo,
			ID:            "abc123",
			Title:         "Eclipse Live",
			TrendingScore: 74.5,
		},
		{
			Platform:      domain.PlatformTikTok,
			EntityType:    domain.EntityHashtag,
			Name:          "eclipse",
			TrendingScore: 40.1,
		},
	}
}

type fakeAggregator struct {
	items   []*domain.TrendItem
	err     error
	queries []ingest.Query
}

func (f *fakeAggregator) Run(_ context.Context, query ingest.Query) (*domain.Snapshot, error) {
	f.queries = append(f.queries, query)

	if f.err != nil {
		return nil, f.err
	}

	return &domain.Snapshot{
		ID:             "cycle-1",
		Country:        query.Country,
		Category:       query.Category,
		Window:         query.Window,
		ItemCount:      len(f.items),
		PlatformCounts: domain.CountByPlatform(f.items),
		Items:          f.items,
		CreatedAt:      fixedNow,
	}, nil
}

type fakeSnapshots struct {
	latest    *domain.Snapshot
	latestErr error
	list      []*domain.Snapshot
	listErr   error
}

func (f *fakeSnapshots) LatestSnapshot(_ context.Context, _ string, _ domain.Category, _ domain.TimeWindow) (*domain.Snapshot, error) {
	return f.latest, f.latestErr
}

func (f *fakeSnapshots) ListSnapshots(_ context.Context, _ string, _ domain.Category, _ domain.TimeWindow, _ int) ([]*domain.Snapshot, error) {
	return f.list, f.listErr
}

type fakeSummarizer struct {
	text string
	err  error
	reqs []llm.SummaryRequest
}

func (f *fakeSummarizer) GenerateTrendSummary(_ context.Context, req llm.SummaryRequest) (string, error) {
	f.reqs = append(f.reqs, req)

	return f.text, f.err
}

func (f *fakeSummarizer) StreamTrendSummary(_ context.Context, req llm.SummaryRequest, emit func(chunk string) error) error {
	f.reqs = append(f.reqs, req)

	if f.err != nil {
		return f.err
	}

	for _, word := range strings.Fields(f.text) {
		if err := emit(word + " "); err != nil {
			return err
		}
	}

	return nil
}

type fakeContexts struct {
	contexts map[string]string
	calls    int
}

func (f *fakeContexts) ContextFor(_ context.Context, _ []*domain.TrendItem, _ int) map[string]string {
	f.calls++

	return f.contexts
}

func newTestConfig() *config.Config {
	return &config.Config{
		TrendLimit:  25,
		SummaryTopN: 2,
	}
}

func newTestHandler(t *testing.T, agg Aggregator, snaps SnapshotReader, sum llm.Client, ctxs ContextProvider) *Handler {
	t.Helper()

	logger := zerolog.Nop()

	return NewHandler(newTestConfig(), agg, snaps, sum, ctxs, &logger)
}

func doRequest(t *testing.T, h *Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestTrendsFresh(t *testing.T) {
	agg := &fakeAggregator{items: testItems()}
	handler := newTestHandler(t, agg, &fakeSnapshots{}, &fakeSummarizer{}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/trends?country=us&window=24h")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp TrendsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Total != 3 || len(resp.Items) != 3 {
		t.Errorf("total/items = %d/%d, want 3/3", resp.Total, len(resp.Items))
	}

	if resp.Country != "US" {
		t.Errorf("country = %q, want uppercased US", resp.Country)
	}

	if len(agg.queries) != 1 {
		t.Fatalf("aggregator called %d times, want 1", len(agg.queries))
	}

	query := agg.queries[0]
	if query.Country != "US" || query.Limit != 25 || query.Platform != "" {
		t.Errorf("query = %+v", query)
	}
}

func TestTrendsLimitTruncatesAfterScoring(t *testing.T) {
	agg := &fakeAggregator{items: testItems()}
	handler := newTestHandler(t, agg, &fakeSnapshots{}, &fakeSummarizer{}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/trends?limit=2")

	var resp TrendsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(resp.Items) != 2 {
		t.Errorf("items = %d, want 2", len(resp.Items))
	}

	if resp.Total != 3 {
		t.Errorf("total = %d, want full batch size 3", resp.Total)
	}

	// Counts describe the whole scored batch, not the truncated page.
	if resp.PlatformCounts[domain.PlatformTikTok] != 1 {
		t.Errorf("platform_counts = %v", resp.PlatformCounts)
	}
}

func TestTrendsLenientParams(t *testing.T) {
	agg := &fakeAggregator{items: testItems()}
	handler := newTestHandler(t, agg, &fakeSnapshots{}, &fakeSummarizer{}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/trends?category=bogus&window=bogus&platform=bogus&limit=bogus")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 for lenient params", rec.Code)
	}

	query := agg.queries[0]
	if query.Category != domain.CategoryAll {
		t.Errorf("category = %q, want fallback to all", query.Category)
	}

	if query.Window != domain.DefaultTimeWindow {
		t.Errorf("window = %q, want default", query.Window)
	}

	if query.Platform != "" {
		t.Errorf("platform = %q, want all platforms", query.Platform)
	}
}

func TestTrendsPlatformFilter(t *testing.T) {
	agg := &fakeAggregator{items: testItems()}
	handler := newTestHandler(t, agg, &fakeSnapshots{}, &fakeSummarizer{}, nil)

	doRequest(t, handler, http.MethodGet, "/trends?platform=youtube")

	if agg.queries[0].Platform != domain.PlatformYouTube {
		t.Errorf("platform = %q, want youtube", agg.queries[0].Platform)
	}
}

func TestTrendsSnapshotSource(t *testing.T) {
	stored := &domain.Snapshot{
		ID:        "stored-1",
		Country:   "US",
		Category:  domain.CategoryAll,
		Window:    domain.WindowDay,
		ItemCount: 3,
		Items:     testItems(),
		CreatedAt: fixedNow,
	}
	agg := &fakeAggregator{items: testItems()}
	handler := newTestHandler(t, agg, &fakeSnapshots{latest: stored}, &fakeSummarizer{}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/trends?source=snapshot")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	if len(agg.queries) != 0 {
		t.Error("snapshot source must not trigger a fresh aggregation")
	}

	var resp TrendsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.GeneratedAt.IsZero() {
		t.Error("generated_at missing from snapshot response")
	}
}

func TestTrendsSnapshotMissing(t *testing.T) {
	handler := newTestHandler(t, &fakeAggregator{}, &fakeSnapshots{latestErr: db.ErrNoSnapshot}, &fakeSummarizer{}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/trends?source=snapshot")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}

	if body["error"] == "" {
		t.Error("error body missing message")
	}
}

func TestTrendsAggregationFailure(t *testing.T) {
	agg := &fakeAggregator{err: errors.New("all platforms down")}
	handler := newTestHandler(t, agg, &fakeSnapshots{}, &fakeSummarizer{}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/trends")

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	if strings.Contains(rec.Body.String(), "all platforms down") {
		t.Error("internal error detail leaked to client")
	}
}

func TestSummaryJSON(t *testing.T) {
	sum := &fakeSummarizer{text: "Eclipse mania everywhere."}
	ctxs := &fakeContexts{contexts: map[string]string{"solar eclipse": "article text"}}
	handler := newTestHandler(t, &fakeAggregator{items: testItems()}, &fakeSnapshots{}, sum, ctxs)

	rec := doRequest(t, handler, http.MethodGet, "/trends/summary")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp SummaryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Summary != "Eclipse mania everywhere." {
		t.Errorf("summary = %q", resp.Summary)
	}

	if resp.ItemCount != 2 {
		t.Errorf("item_count = %d, want top 2 of 3", resp.ItemCount)
	}

	if len(sum.reqs) != 1 {
		t.Fatalf("summarizer called %d times", len(sum.reqs))
	}

	req := sum.reqs[0]
	if len(req.Items) != 2 {
		t.Errorf("summary request items = %d, want SummaryTopN", len(req.Items))
	}

	if req.Context["solar eclipse"] != "article text" {
		t.Error("enrichment context not passed to summarizer")
	}

	if ctxs.calls != 1 {
		t.Errorf("context provider called %d times", ctxs.calls)
	}
}

func TestSummaryStream(t *testing.T) {
	sum := &fakeSummarizer{text: "Eclipse mania everywhere."}
	handler := newTestHandler(t, &fakeAggregator{items: testItems()}, &fakeSnapshots{}, sum, nil)

	rec := doRequest(t, handler, http.MethodGet, "/trends/summary?stream=1")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	if ct := rec.Header().Get("Content-Type"); ct != contentTypeEventStream {
		t.Errorf("content type = %q", ct)
	}

	body := rec.Body.String()
	if !strings.HasSuffix(body, sseDone) {
		t.Errorf("stream missing terminator: %q", body)
	}

	var rebuilt strings.Builder

	for _, line := range strings.Split(body, "\n") {
		if !strings.HasPrefix(line, "data: ") || strings.HasSuffix(line, "[DONE]") {
			continue
		}

		var chunk string
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &chunk); err != nil {
			t.Fatalf("chunk not JSON encoded: %q", line)
		}

		rebuilt.WriteString(chunk)
	}

	if got := strings.TrimSpace(rebuilt.String()); got != "Eclipse mania everywhere." {
		t.Errorf("rebuilt stream = %q", got)
	}
}

func TestSummaryStreamFailsBeforeOutput(t *testing.T) {
	sum := &fakeSummarizer{err: errors.New("model unavailable")}
	handler := newTestHandler(t, &fakeAggregator{items: testItems()}, &fakeSnapshots{}, sum, nil)

	rec := doRequest(t, handler, http.MethodGet, "/trends/summary?stream=1")

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502 when stream fails before output", rec.Code)
	}
}

func TestSummaryFailure(t *testing.T) {
	sum := &fakeSummarizer{err: errors.New("model unavailable")}
	handler := newTestHandler(t, &fakeAggregator{items: testItems()}, &fakeSnapshots{}, sum, nil)

	rec := doRequest(t, handler, http.MethodGet, "/trends/summary")

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}

func TestHistory(t *testing.T) {
	snaps := &fakeSnapshots{list: []*domain.Snapshot{
		{ID: "snap-2", ItemCount: 5, CreatedAt: fixedNow},
		{ID: "snap-1", ItemCount: 4, CreatedAt: fixedNow.Add(-6 * time.Hour)},
	}}
	handler := newTestHandler(t, &fakeAggregator{}, snaps, &fakeSummarizer{}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/trends/history")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(resp.Snapshots) != 2 || resp.Snapshots[0].ID != "snap-2" {
		t.Errorf("snapshots = %+v", resp.Snapshots)
	}
}

func TestUnknownRoute(t *testing.T) {
	handler := newTestHandler(t, &fakeAggregator{}, &fakeSnapshots{}, &fakeSummarizer{}, nil)

	rec := doRequest(t, handler, http.MethodGet, "/nope")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	handler := newTestHandler(t, &fakeAggregator{}, &fakeSnapshots{}, &fakeSummarizer{}, nil)

	rec := doRequest(t, handler, http.MethodPost, "/trends")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
