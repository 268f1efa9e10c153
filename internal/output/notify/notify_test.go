package notify

import (
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}

	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, nil
	}

	f.sent = append(f.sent, msg)

	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func testSnapshot() *domain.Snapshot {
	items := []*domain.TrendItem{
		{
			Platform:      domain.PlatformGoogleTrends,
			EntityType:    domain.EntitySearchQuery,
			Name:          "solar eclipse",
			TrendingScore: 91.5,
		},
		{
			Platform:      domain.PlatformYouTube,
			EntityType:    domain.EntityVideo,
			Title:         "Rocket launch <live>",
			URL:           "https://www.youtube.com/watch?v=abc",
			TrendingScore: 74.2,
		},
		{
			Platform:      domain.PlatformTikTok,
			EntityType:    domain.EntityHashtag,
			Name:          "#eclipse2024",
			TrendingScore: 60,
		},
		{
			Platform:      domain.PlatformTikTok,
			EntityType:    domain.EntityCreator,
			Name:          "stargazer",
			TrendingScore: 41.7,
		},
	}

	return &domain.Snapshot{
		ID:             "snap-1",
		Country:        "US",
		Category:       domain.CategoryAll,
		Window:         domain.WindowDay,
		ItemCount:      len(items),
		PlatformCounts: domain.CountByPlatform(items),
		Items:          items,
		CreatedAt:      time.Date(2024, time.April, 8, 18, 0, 0, 0, time.UTC),
	}
}

func TestRenderDigest(t *testing.T) {
	text := RenderDigest(testSnapshot(), 3)

	for _, want := range []string{
		"Trending now — US",
		"🥇 <b>solar eclipse</b> — <b>91.5</b>",
		`🥈 <a href="https://www.youtube.com/watch?v=abc">Rocket launch &lt;live&gt;</a>`,
		"🥉 <b>#eclipse2024</b>",
		"TikTok · Hashtag",
		"Sources: Google Trends 1 · YouTube 1 · TikTok 2",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("digest missing %q in:\n%s", want, text)
		}
	}

	// topN of 3 must drop the fourth item.
	if strings.Contains(text, "stargazer") {
		t.Errorf("digest should only contain the top 3 items:\n%s", text)
	}
}

func TestRenderDigestNumbersAfterMedals(t *testing.T) {
	text := RenderDigest(testSnapshot(), 10)

	if !strings.Contains(text, "4. <b>stargazer</b>") {
		t.Errorf("fourth item should be numbered, got:\n%s", text)
	}
}

func TestPlatformTag(t *testing.T) {
	tests := []struct {
		name string
		item *domain.TrendItem
		want string
	}{
		{
			name: "google trends",
			item: &domain.TrendItem{Platform: domain.PlatformGoogleTrends, EntityType: domain.EntitySearchQuery},
			want: "Google Trends",
		},
		{
			name: "tiktok includes entity type",
			item: &domain.TrendItem{Platform: domain.PlatformTikTok, EntityType: domain.EntityShortVideo},
			want: "TikTok · Short Video",
		},
		{
			name: "unknown platform title cased",
			item: &domain.TrendItem{Platform: domain.Platform("mastodon")},
			want: "Mastodon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := platformTag(tt.item); got != tt.want {
				t.Errorf("platformTag() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPostDigest(t *testing.T) {
	sender := &fakeSender{}
	logger := zerolog.Nop()
	poster := &Poster{api: sender, chatID: 42, logger: &logger}

	if err := poster.PostDigest(testSnapshot(), 3); err != nil {
		t.Fatalf("PostDigest() error = %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(sender.sent))
	}

	msg := sender.sent[0]
	if msg.ChatID != 42 {
		t.Errorf("chat id = %d, want 42", msg.ChatID)
	}

	if msg.ParseMode != tgbotapi.ModeHTML {
		t.Errorf("parse mode = %q, want HTML", msg.ParseMode)
	}
}

func TestPostDigestSplitsLongDigests(t *testing.T) {
	snap := testSnapshot()
	longName := strings.Repeat("trend ", 200)

	items := make([]*domain.TrendItem, 0, 30)
	for i := 0; i < 30; i++ {
		items = append(items, &domain.TrendItem{
			Platform:      domain.PlatformYouTube,
			EntityType:    domain.EntityVideo,
			Title:         longName,
			TrendingScore: float64(100 - i),
		})
	}

	snap.Items = items
	snap.PlatformCounts = domain.CountByPlatform(items)

	sender := &fakeSender{}
	logger := zerolog.Nop()
	poster := &Poster{api: sender, chatID: 1, logger: &logger}

	if err := poster.PostDigest(snap, 30); err != nil {
		t.Fatalf("PostDigest() error = %v", err)
	}

	if len(sender.sent) < 2 {
		t.Fatalf("long digest should split into multiple messages, got %d", len(sender.sent))
	}
}

func TestPostDigestEmptySnapshot(t *testing.T) {
	sender := &fakeSender{}
	logger := zerolog.Nop()
	poster := &Poster{api: sender, chatID: 1, logger: &logger}

	if err := poster.PostDigest(&domain.Snapshot{}, 10); err != nil {
		t.Fatalf("PostDigest() on empty snapshot error = %v", err)
	}

	if len(sender.sent) != 0 {
		t.Errorf("empty snapshot should send nothing, sent %d", len(sender.sent))
	}
}
