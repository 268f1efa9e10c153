// Package notify posts scheduled trend digests to a Telegram chat. It is
// a one-way poster: no commands, no callbacks, just the daily top-N.
package notify

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lueurxax/trend-pulse/internal/core/domain"
	"github.com/lueurxax/trend-pulse/internal/platform/htmlutils"
	"github.com/lueurxax/trend-pulse/internal/platform/observability"
)

const (
	// telegramMessageLimit is Telegram's visible-text limit per message,
	// counted in UTF-16 code units.
	telegramMessageLimit = 4096

	// medalCount is how many leading items get a medal instead of a number.
	medalCount = 3

	statusOK    = "ok"
	statusError = "error"
)

var medals = []string{"🥇", "🥈", "🥉"}

var platformLabels = map[domain.Platform]string{
	domain.PlatformGoogleTrends: "Google Trends",
	domain.PlatformYouTube:      "YouTube",
	domain.PlatformTikTok:       "TikTok",
}

var titleCaser = cases.Title(language.English)

// sender is the slice of the Telegram API the poster needs. Satisfied by
// *tgbotapi.BotAPI.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Poster publishes trend digests to a single Telegram chat.
type Poster struct {
	api    sender
	chatID int64
	logger *zerolog.Logger
}

// New creates a Telegram digest poster.
func New(botToken string, chatID int64, logger *zerolog.Logger) (*Poster, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}

	return &Poster{
		api:    api,
		chatID: chatID,
		logger: logger,
	}, nil
}

// PostDigest renders the snapshot's top items as an HTML digest and sends
// it, split across messages when it exceeds the Telegram limit.
func (p *Poster) PostDigest(snap *domain.Snapshot, topN int) error {
	if snap == nil || len(snap.Items) == 0 {
		p.logger.Info().Msg("Digest skipped, snapshot has no items")

		return nil
	}

	text := RenderDigest(snap, topN)

	for _, part := range htmlutils.SplitHTML(text, telegramMessageLimit) {
		msg := tgbotapi.NewMessage(p.chatID, part)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true

		if _, err := p.api.Send(msg); err != nil {
			observability.DigestsPosted.WithLabelValues(statusError).Inc()

			return fmt.Errorf("send digest message: %w", err)
		}
	}

	observability.DigestsPosted.WithLabelValues(statusOK).Inc()
	p.logger.Info().
		Str("country", snap.Country).
		Str("window", string(snap.Window)).
		Int("items", min(topN, len(snap.Items))).
		Msg("Digest posted")

	return nil
}

// RenderDigest builds the Telegram HTML for a snapshot's top items.
func RenderDigest(snap *domain.Snapshot, topN int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("🔥 <b>Trending now — %s</b>\n", html.EscapeString(snap.Country)))
	sb.WriteString(fmt.Sprintf("%s · last %s · %s\n\n",
		html.EscapeString(snap.Category.DisplayName()),
		html.EscapeString(string(snap.Window)),
		snap.CreatedAt.Format("Jan 2 15:04 MST"),
	))

	for i, item := range domain.TopN(snap.Items, topN) {
		sb.WriteString(renderItem(i, item))
	}

	sb.WriteString("\n")
	sb.WriteString(renderFooter(snap))

	return sb.String()
}

func renderItem(index int, item *domain.TrendItem) string {
	var sb strings.Builder

	sb.WriteString(rankMarker(index))
	sb.WriteString(" ")

	name := html.EscapeString(item.DisplayName())
	if item.URL != "" {
		sb.WriteString(fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(item.URL), name))
	} else {
		sb.WriteString(fmt.Sprintf("<b>%s</b>", name))
	}

	sb.WriteString(fmt.Sprintf(" — <b>%.1f</b>\n", item.TrendingScore))
	sb.WriteString(fmt.Sprintf("      <i>%s</i>\n", platformTag(item)))

	return sb.String()
}

func rankMarker(index int) string {
	if index < medalCount {
		return medals[index]
	}

	return fmt.Sprintf("%d.", index+1)
}

// platformTag labels an item with its platform and, for TikTok, the
// entity type, e.g. "TikTok · Hashtag".
func platformTag(item *domain.TrendItem) string {
	label, ok := platformLabels[item.Platform]
	if !ok {
		label = titleCaser.String(string(item.Platform))
	}

	if item.Platform == domain.PlatformTikTok && item.EntityType != "" {
		return label + " · " + titleCaser.String(strings.ReplaceAll(string(item.EntityType), "_", " "))
	}

	return label
}

func renderFooter(snap *domain.Snapshot) string {
	parts := make([]string, 0, len(snap.PlatformCounts))

	for _, platform := range domain.Platforms() {
		if count := snap.PlatformCounts[platform]; count > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", platformLabels[platform], count))
		}
	}

	if len(parts) == 0 {
		return ""
	}

	return fmt.Sprintf("<i>Sources: %s</i>", strings.Join(parts, " · "))
}
