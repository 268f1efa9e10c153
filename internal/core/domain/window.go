package domain

import "time"

// TimeWindow is a requested recency window for pre-filtering items
// before scoring.
type TimeWindow string

const (
	WindowHour        TimeWindow = "1h"
	WindowDay         TimeWindow = "24h"
	WindowWeek        TimeWindow = "7d"
	WindowMonth       TimeWindow = "30d"
	WindowQuarter     TimeWindow = "3m"
	WindowHalfYear    TimeWindow = "6m"
	WindowYear        TimeWindow = "1y"
	DefaultTimeWindow            = WindowDay
)

const hoursPerDay = 24

var windowDurations = map[TimeWindow]time.Duration{
	WindowHour:     time.Hour,
	WindowDay:      hoursPerDay * time.Hour,
	WindowWeek:     7 * hoursPerDay * time.Hour,
	WindowMonth:    30 * hoursPerDay * time.Hour,
	WindowQuarter:  90 * hoursPerDay * time.Hour,
	WindowHalfYear: 180 * hoursPerDay * time.Hour,
	WindowYear:     365 * hoursPerDay * time.Hour,
}

// Duration resolves the window to a concrete duration. The second return
// is false for unknown windows, which callers treat as "no filtering".
func (w TimeWindow) Duration() (time.Duration, bool) {
	d, ok := windowDurations[w]

	return d, ok
}

// ParseTimeWindow maps a request parameter onto a known window, falling
// back to the default for empty or unknown values.
func ParseTimeWindow(s string) TimeWindow {
	w := TimeWindow(s)
	if _, ok := windowDurations[w]; ok {
		return w
	}

	return DefaultTimeWindow
}
