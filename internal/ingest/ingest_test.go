package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
	"github.com/lueurxax/trend-pulse/internal/ingest/searchtrends"
	"github.com/lueurxax/trend-pulse/internal/ingest/shortvideo"
	"github.com/lueurxax/trend-pulse/internal/ingest/video"
)

type fakeSearches struct {
	trends    []searchtrends.TrendingSearch
	err       error
	available bool
	calls     int
}

func (f *fakeSearches) Fetch(_ context.Context, _ string, _ domain.Category, _ int) ([]searchtrends.TrendingSearch, error) {
	f.calls++

	return f.trends, f.err
}

func (f *fakeSearches) IsAvailable() bool { return f.available }

type fakeVideos struct {
	videos    []video.Video
	err       error
	available bool
	calls     int
}

func (f *fakeVideos) Fetch(_ context.Context, _ string, _ domain.Category, _ int) ([]video.Video, error) {
	f.calls++

	return f.videos, f.err
}

func (f *fakeVideos) IsAvailable() bool { return f.available }

type fakeShorts struct {
	batch     shortvideo.Batch
	err       error
	available bool
	calls     int
}

func (f *fakeShorts) Fetch(_ context.Context, _ string, _ domain.Category, _ domain.TimeWindow, _ int) (shortvideo.Batch, error) {
	f.calls++

	return f.batch, f.err
}

func (f *fakeShorts) IsAvailable() bool { return f.available }

func testQuery() Query {
	return Query{
		Country:  "US",
		Category: domain.CategoryAll,
		Window:   domain.WindowDay,
		Limit:    50,
	}
}

func TestFetchAllMergesInPlatformOrder(t *testing.T) {
	searches := &fakeSearches{
		available: true,
		trends:    []searchtrends.TrendingSearch{{Query: "solar eclipse", SearchVolume: 500000}},
	}
	videos := &fakeVideos{
		available: true,
		videos:    []video.Video{{ID: "abc123", Title: "Eclipse Live", ViewCount: 1000000}},
	}
	shorts := &fakeShorts{
		available: true,
		batch: shortvideo.Batch{
			Hashtags: []shortvideo.Hashtag{{Name: "eclipse", VideoCount: 42000}},
		},
	}

	c := NewCoordinator(searches, videos, shorts, time.Second, nil)

	items := c.FetchAll(context.Background(), testQuery())

	if len(items) != 3 {
		t.Fatalf("items = %d, want 3", len(items))
	}

	wantOrder := []domain.Platform{domain.PlatformGoogleTrends, domain.PlatformYouTube, domain.PlatformTikTok}
	for i, want := range wantOrder {
		if items[i].Platform != want {
			t.Errorf("items[%d].Platform = %q, want %q", i, items[i].Platform, want)
		}
	}
}

func TestFetchAllPartialFailure(t *testing.T) {
	searches := &fakeSearches{available: true, err: errors.New("quota exceeded")}
	videos := &fakeVideos{
		available: true,
		videos:    []video.Video{{ID: "abc123", Title: "Eclipse Live"}},
	}
	shorts := &fakeShorts{available: false}

	c := NewCoordinator(searches, videos, shorts, time.Second, nil)

	items := c.FetchAll(context.Background(), testQuery())

	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 (only youtube)", len(items))
	}

	if items[0].Platform != domain.PlatformYouTube {
		t.Errorf("Platform = %q, want youtube", items[0].Platform)
	}

	if shorts.calls != 0 {
		t.Errorf("unavailable fetcher was called %d times", shorts.calls)
	}
}

func TestFetchAllSinglePlatform(t *testing.T) {
	searches := &fakeSearches{
		available: true,
		trends:    []searchtrends.TrendingSearch{{Query: "solar eclipse"}},
	}
	videos := &fakeVideos{
		available: true,
		videos:    []video.Video{{ID: "abc123"}},
	}
	shorts := &fakeShorts{available: true}

	c := NewCoordinator(searches, videos, shorts, time.Second, nil)

	query := testQuery()
	query.Platform = domain.PlatformYouTube

	items := c.FetchAll(context.Background(), query)

	if len(items) != 1 || items[0].Platform != domain.PlatformYouTube {
		t.Fatalf("items = %+v, want single youtube item", items)
	}

	if searches.calls != 0 || shorts.calls != 0 {
		t.Errorf("non-selected platforms were fetched: searches=%d shorts=%d", searches.calls, shorts.calls)
	}
}

func TestFetchAllCircuitOpensAfterRepeatedFailures(t *testing.T) {
	searches := &fakeSearches{available: true, err: errors.New("boom")}
	videos := &fakeVideos{available: false}
	shorts := &fakeShorts{available: false}

	c := NewCoordinator(searches, videos, shorts, time.Second, nil)

	for i := 0; i < breakerFailureThreshold; i++ {
		c.FetchAll(context.Background(), testQuery())
	}

	if searches.calls != breakerFailureThreshold {
		t.Fatalf("calls before open = %d, want %d", searches.calls, breakerFailureThreshold)
	}

	// Circuit is open now; the next cycle must not hit the fetcher.
	c.FetchAll(context.Background(), testQuery())

	if searches.calls != breakerFailureThreshold {
		t.Errorf("calls after open = %d, want still %d", searches.calls, breakerFailureThreshold)
	}
}

func TestCircuitBreakerLifecycle(t *testing.T) {
	cb := newCircuitBreaker()

	if !cb.canAttempt() {
		t.Fatal("new breaker should allow attempts")
	}

	for i := 0; i < breakerFailureThreshold-1; i++ {
		if tripped := cb.recordFailure(); tripped {
			t.Fatalf("breaker tripped after %d failures", i+1)
		}
	}

	if tripped := cb.recordFailure(); !tripped {
		t.Fatal("breaker should trip on the threshold failure")
	}

	if cb.canAttempt() {
		t.Fatal("open breaker should block attempts")
	}

	// After the reset window a probe is allowed.
	cb.mu.Lock()
	cb.lastFailure = time.Now().Add(-breakerResetAfter - time.Second)
	cb.mu.Unlock()

	if !cb.canAttempt() {
		t.Fatal("breaker should half-open after the reset window")
	}

	cb.recordSuccess()

	if !cb.canAttempt() {
		t.Fatal("half-open breaker should allow second probe")
	}

	cb.recordSuccess()

	if cb.state != circuitClosed {
		t.Errorf("state after probe successes = %v, want closed", cb.state)
	}
}

func TestCircuitBreakerReopensOnProbeFailure(t *testing.T) {
	cb := newCircuitBreaker()

	for i := 0; i < breakerFailureThreshold; i++ {
		cb.recordFailure()
	}

	cb.mu.Lock()
	cb.lastFailure = time.Now().Add(-breakerResetAfter - time.Second)
	cb.mu.Unlock()

	if !cb.canAttempt() {
		t.Fatal("breaker should half-open after the reset window")
	}

	if tripped := cb.recordFailure(); !tripped {
		t.Error("probe failure should reopen the breaker")
	}

	if cb.canAttempt() {
		t.Error("reopened breaker should block attempts")
	}
}
