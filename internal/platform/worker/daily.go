package worker

import "time"

// dailyGracePeriod prevents a second run within the same day when the
// check fires more than once during the scheduled hour.
const dailyGracePeriod = 20 * time.Hour

// ShouldRunDaily reports whether a once-a-day task scheduled for the
// given local hour is due. It fires during the whole scheduled hour but
// at most once per day.
func ShouldRunDaily(now time.Time, hour int, lastRun time.Time) bool {
	if now.Hour() != hour {
		return false
	}

	return lastRun.IsZero() || now.Sub(lastRun) > dailyGracePeriod
}

// DailyTask tracks the last run of a once-a-day job so a periodic check
// can drive it. Not safe for concurrent use; call from one loop.
type DailyTask struct {
	Hour    int
	Run     func()
	lastRun time.Time
}

// Check runs the task when it is due at now.
func (d *DailyTask) Check(now time.Time) {
	if d.Run == nil || !ShouldRunDaily(now, d.Hour, d.lastRun) {
		return
	}

	d.lastRun = now
	d.Run()
}
