package scoring

import (
	"testing"
	"time"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
)

func TestFilterByWindow(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	engine := NewWithOptions(Options{Now: func() time.Time { return now }}, nil)

	fresh := &domain.TrendItem{Platform: domain.PlatformGoogleTrends, Name: "fresh", StartedAt: now.Add(-2 * time.Hour)}
	stale := &domain.TrendItem{Platform: domain.PlatformGoogleTrends, Name: "stale", StartedAt: now.Add(-40 * time.Hour)}
	future := &domain.TrendItem{Platform: domain.PlatformYouTube, Name: "future", PublishedAt: now.Add(time.Hour)}
	unknown := &domain.TrendItem{Platform: domain.PlatformGoogleTrends, Name: "unknown"}
	boundary := &domain.TrendItem{Platform: domain.PlatformYouTube, Name: "boundary", PublishedAt: now.Add(-24 * time.Hour)}

	items := []*domain.TrendItem{fresh, stale, future, unknown, boundary}

	tests := []struct {
		name   string
		window domain.TimeWindow
		want   []string
	}{
		{
			"day window",
			domain.WindowDay,
			[]string{"fresh", "unknown", "boundary"},
		},
		{
			"hour window",
			domain.WindowHour,
			[]string{"unknown"},
		},
		{
			"week window keeps everything but the future",
			domain.WindowWeek,
			[]string{"fresh", "stale", "unknown", "boundary"},
		},
		{
			"unknown window filters nothing",
			domain.TimeWindow("fortnight"),
			[]string{"fresh", "stale", "future", "unknown", "boundary"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept := engine.FilterByWindow(items, tt.window)

			if len(kept) != len(tt.want) {
				t.Fatalf("kept %d items, want %d", len(kept), len(tt.want))
			}

			for i, item := range kept {
				if item.Name != tt.want[i] {
					t.Errorf("kept[%d] = %q, want %q", i, item.Name, tt.want[i])
				}
			}
		})
	}
}

func TestFilterByWindowEmptyInput(t *testing.T) {
	engine := New(nil)

	if kept := engine.FilterByWindow(nil, domain.WindowDay); len(kept) != 0 {
		t.Errorf("kept %d items from empty input", len(kept))
	}
}
