package scoring

import "github.com/lueurxax/trend-pulse/internal/core/domain"

// FilterByWindow drops items whose resolved timestamp falls outside
// [now-window, now]. Items with no resolvable timestamp are kept:
// upstream timestamps are too unreliable to make absence disqualifying.
// Unknown windows filter nothing. The filter never touches scores; it
// only shrinks the candidate set before scoring.
func (e *Engine) FilterByWindow(items []*domain.TrendItem, window domain.TimeWindow) []*domain.TrendItem {
	duration, ok := window.Duration()
	if !ok {
		return items
	}

	now := e.now()
	cutoff := now.Add(-duration)

	kept := make([]*domain.TrendItem, 0, len(items))

	for _, item := range items {
		ts := resolveTimestamp(item)
		if ts.IsZero() || (!ts.Before(cutoff) && !ts.After(now)) {
			kept = append(kept, item)
		}
	}

	if dropped := len(items) - len(kept); dropped > 0 {
		e.logger.Debug().
			Str(logFieldWindow, string(window)).
			Int(logFieldKept, len(kept)).
			Int(logFieldDropped, dropped).
			Msg("window filter applied")
	}

	return kept
}
