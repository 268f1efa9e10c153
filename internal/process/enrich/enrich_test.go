package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
)

type fakeFetcher struct {
	pages map[string][]byte
	calls []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) ([]byte, error) {
	f.calls = append(f.calls, rawURL)

	page, ok := f.pages[rawURL]
	if !ok {
		return nil, errors.New("connection refused")
	}

	return page, nil
}

func TestContextFor(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string][]byte{
			"https://example.com/eclipse": []byte(fixtureHTML),
		},
	}

	logger := zerolog.Nop()
	enricher := New(fetcher, 500, &logger)

	items := []*domain.TrendItem{
		{
			Platform:   domain.PlatformGoogleTrends,
			EntityType: domain.EntitySearchQuery,
			Name:       "solar eclipse",
			NewsURL:    "https://example.com/eclipse",
		},
		{
			Platform:   domain.PlatformGoogleTrends,
			EntityType: domain.EntitySearchQuery,
			Name:       "no link",
		},
		{
			Platform:   domain.PlatformGoogleTrends,
			EntityType: domain.EntitySearchQuery,
			Name:       "dead link",
			NewsURL:    "https://example.com/404",
		},
	}

	contexts := enricher.ContextFor(context.Background(), items, 10)

	if len(contexts) != 1 {
		t.Fatalf("contexts = %v, want one entry", contexts)
	}

	if contexts["solar eclipse"] == "" {
		t.Error("expected context for solar eclipse")
	}

	// The linkless item must not trigger a fetch.
	if len(fetcher.calls) != 2 {
		t.Errorf("fetch calls = %v, want 2", fetcher.calls)
	}
}

func TestContextForHonorsTopN(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string][]byte{}}
	logger := zerolog.Nop()
	enricher := New(fetcher, 500, &logger)

	items := []*domain.TrendItem{
		{Name: "first", NewsURL: "https://example.com/1"},
		{Name: "second", NewsURL: "https://example.com/2"},
		{Name: "third", NewsURL: "https://example.com/3"},
	}

	enricher.ContextFor(context.Background(), items, 2)

	if len(fetcher.calls) != 2 {
		t.Errorf("fetch calls = %v, want only top 2", fetcher.calls)
	}
}
