// Package quiethours decides whether a notification instant falls inside the
// configured blackout window and, if so, where it gets deferred to.
package quiethours

import (
	"time"

	"github.com/hray3182/plannerd/internal/models"
)

// Blocked reports whether candidate's local time-of-day falls inside the
// window. A window with start > end spans midnight.
func Blocked(candidate time.Time, w models.QuietHoursWindow) bool {
	start, end, ok := windowMinutes(w)
	if !ok || start == end {
		return false
	}

	t := candidate.Hour()*60 + candidate.Minute()

	if start > end {
		// Overnight window, e.g. 22:00-07:00.
		return t >= start || t < end
	}
	return t >= start && t < end
}

// Apply returns candidate unchanged when it is outside the window, otherwise
// the deferred instant: candidate's date with the time set to the window end,
// advanced one day when the candidate sits on the late-night side of an
// overnight window. A single pass suffices: the deferred time-of-day is the
// window's own boundary, which is never itself blocked.
func Apply(candidate time.Time, w models.QuietHoursWindow) time.Time {
	if !Blocked(candidate, w) {
		return candidate
	}

	start, end, _ := windowMinutes(w)
	t := candidate.Hour()*60 + candidate.Minute()

	day := candidate
	if start > end && t >= start {
		day = day.AddDate(0, 0, 1)
	}

	return time.Date(day.Year(), day.Month(), day.Day(),
		end/60, end%60, 0, 0, candidate.Location())
}

// windowMinutes parses the HH:MM bounds into minutes-of-day. An unparsable
// window disables quiet hours rather than erroring.
func windowMinutes(w models.QuietHoursWindow) (start, end int, ok bool) {
	s, err := time.Parse("15:04", w.Start)
	if err != nil {
		return 0, 0, false
	}
	e, err := time.Parse("15:04", w.End)
	if err != nil {
		return 0, 0, false
	}
	return s.Hour()*60 + s.Minute(), e.Hour()*60 + e.Minute(), true
}
