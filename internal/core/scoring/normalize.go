package scoring

import "github.com/lueurxax/trend-pulse/internal/core/domain"

// component pairs a score field's accessors so the normalization pass
// can run over any of the three batch-normalized components.
type component struct {
	name string
	get  func(*domain.TrendItem) float64
	set  func(*domain.TrendItem, float64)
}

var (
	componentVolume = component{
		name: ComponentVolume,
		get:  func(t *domain.TrendItem) float64 { return t.VolumeScore },
		set:  func(t *domain.TrendItem, v float64) { t.VolumeScore = v },
	}
	componentEngagement = component{
		name: ComponentEngagement,
		get:  func(t *domain.TrendItem) float64 { return t.EngagementScore },
		set:  func(t *domain.TrendItem, v float64) { t.EngagementScore = v },
	}
	componentVelocity = component{
		name: ComponentVelocity,
		get:  func(t *domain.TrendItem) float64 { return t.VelocityScore },
		set:  func(t *domain.TrendItem, v float64) { t.VelocityScore = v },
	}
)

// normalizeComponent rescales one component across the whole batch so
// the values sum to 100: each item ends up with its share of the batch's
// aggregate signal. A single dominant item therefore compresses everyone
// else's share, which is the intent. An all-zero batch splits the total
// evenly to keep the sum invariant without dividing by zero.
func normalizeComponent(items []*domain.TrendItem, c component) {
	if len(items) == 0 {
		return
	}

	var total float64
	for _, item := range items {
		total += c.get(item)
	}

	if total == 0 {
		share := percentTotal / float64(len(items))
		for _, item := range items {
			c.set(item, share)
		}

		return
	}

	for _, item := range items {
		c.set(item, c.get(item)/total*percentTotal)
	}
}

// rescaleSearchEngagement maps Google Trends' raw engagement (percent
// increase) into the raw-value range the other platforms' engagement
// occupies, so the percentage-of-total pass compares like with like.
// Skipped when the batch has no positive engagement from other platforms
// to anchor the range.
func rescaleSearchEngagement(items []*domain.TrendItem) {
	var searchItems, otherItems []*domain.TrendItem

	for _, item := range items {
		if item.Platform == domain.PlatformGoogleTrends {
			searchItems = append(searchItems, item)
		} else {
			otherItems = append(otherItems, item)
		}
	}

	if len(searchItems) == 0 || len(otherItems) == 0 {
		return
	}

	otherMin, otherMax, havePositive := positiveRange(otherItems)
	if !havePositive {
		return
	}

	searchMin, searchMax := fullRange(searchItems)

	searchRange := searchMax - searchMin
	if searchRange == 0 {
		searchRange = 1
	}

	for _, item := range searchItems {
		normalized := (item.EngagementScore - searchMin) / searchRange
		item.EngagementScore = otherMin + normalized*(otherMax-otherMin)
	}
}

func positiveRange(items []*domain.TrendItem) (minVal, maxVal float64, ok bool) {
	for _, item := range items {
		score := item.EngagementScore
		if score <= 0 {
			continue
		}

		if !ok || score < minVal {
			minVal = score
		}

		if score > maxVal {
			maxVal = score
		}

		ok = true
	}

	return minVal, maxVal, ok
}

func fullRange(items []*domain.TrendItem) (minVal, maxVal float64) {
	minVal = items[0].EngagementScore
	maxVal = items[0].EngagementScore

	for _, item := range items[1:] {
		if item.EngagementScore < minVal {
			minVal = item.EngagementScore
		}

		if item.EngagementScore > maxVal {
			maxVal = item.EngagementScore
		}
	}

	return minVal, maxVal
}
