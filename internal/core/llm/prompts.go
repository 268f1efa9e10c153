package llm

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are a trends analyst. Given a ranked list of trending items aggregated " +
	"from Google Trends, YouTube and TikTok, write a short narrative summary (2-4 paragraphs) of " +
	"what is trending and why. Lead with items that appear on multiple platforms, call out notable " +
	"momentum, and keep a neutral, factual tone. Never invent items that are not in the list."

// buildSummaryPrompt renders the scored batch into the user prompt. Each
// item carries its rank, platform, final score and component breakdown so
// the narrative can explain why something ranks where it does.
func buildSummaryPrompt(req SummaryRequest) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Trending items for %s / %s over the last %s:\n\n",
		req.Country, req.Category.DisplayName(), req.Window)

	for i, item := range req.Items {
		name := item.DisplayName()

		fmt.Fprintf(&sb, "%d. %q (%s, %s) score %.1f\n",
			i+1, name, item.Platform, item.EntityType, item.TrendingScore)

		if item.ScoreBreakdown != nil {
			b := item.ScoreBreakdown
			fmt.Fprintf(&sb, "   components: volume %.1f, engagement %.1f, velocity %.1f, recency %.1f, cross-platform %.1f\n",
				b.Volume, b.Engagement, b.Velocity, b.Recency, b.CrossPlatform)
		}

		if context := req.Context[name]; context != "" {
			fmt.Fprintf(&sb, "   context: %s\n", context)
		}
	}

	sb.WriteString("\nWrite the summary now.")

	return sb.String()
}
