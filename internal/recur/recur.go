// Package recur evaluates recurrence rules against time. Next and Expand are
// pure date arithmetic; the RFC 5545 codec for persisted rules lives in
// rrule.go.
package recur

import (
	"sort"
	"time"

	"github.com/hray3182/plannerd/internal/clock"
	"github.com/hray3182/plannerd/internal/models"
)

// maxWalk bounds any recurrence walk so a degenerate rule can never spin.
// Large enough to step a daily rule from over a decade back into the window.
const maxWalk = 5000

// Next returns the occurrence that follows anchor under the given rule,
// preserving the anchor's time-of-day on the wall clock.
//
// Monthly and Yearly advance by calendar unit; if the day-of-month overflows a
// shorter month the date normalizes into the following month (Jan 31 -> Mar 2
// or Mar 3), which is the intended behavior.
func Next(anchor time.Time, repeat models.Repeat, cfg *models.CustomConfig) time.Time {
	switch repeat {
	case models.RepeatDaily:
		return anchor.AddDate(0, 0, 1)
	case models.RepeatWeekly:
		return anchor.AddDate(0, 0, 7)
	case models.RepeatMonthly:
		return anchor.AddDate(0, 1, 0)
	case models.RepeatYearly:
		return anchor.AddDate(1, 0, 0)
	case models.RepeatCustom:
		return nextCustom(anchor, cfg)
	default:
		return anchor
	}
}

// nextCustom finds the smallest date at least one day after anchor that lands
// on a selected weekday in the anchor's week; when the week is exhausted it
// jumps (intervalWeeks-1) extra weeks to the first selected weekday. A custom
// rule with no selected days degrades to weekly cadence.
func nextCustom(anchor time.Time, cfg *models.CustomConfig) time.Time {
	days, interval := normalizeCustom(cfg)
	if len(days) == 0 {
		return anchor.AddDate(0, 0, 7)
	}

	w := int(anchor.Weekday())
	for _, d := range days {
		if d > w {
			return anchor.AddDate(0, 0, d-w)
		}
	}

	// No selected weekday remains this week.
	delta := (7 - w) + days[0] + (interval-1)*7
	return anchor.AddDate(0, 0, delta)
}

// customSelects reports whether t's weekday is one of the rule's selected
// days. A rule with no selected days runs on weekly cadence from the anchor,
// so any weekday counts as selected.
func customSelects(t time.Time, cfg *models.CustomConfig) bool {
	days, _ := normalizeCustom(cfg)
	if len(days) == 0 {
		return true
	}
	w := int(t.Weekday())
	for _, d := range days {
		if d == w {
			return true
		}
	}
	return false
}

// normalizeCustom returns the selected weekdays sorted and deduplicated, with
// out-of-range indices dropped, and the interval clamped to at least 1.
func normalizeCustom(cfg *models.CustomConfig) ([]int, int) {
	if cfg == nil {
		return nil, 1
	}
	seen := make(map[int]bool, len(cfg.Days))
	var days []int
	for _, d := range cfg.Days {
		if d < 0 || d > 6 || seen[d] {
			continue
		}
		seen[d] = true
		days = append(days, d)
	}
	sort.Ints(days)

	interval := cfg.IntervalWeeks
	if interval < 1 {
		interval = 1
	}
	return days, interval
}

// Expand produces the item's occurrence instants inside the half-open window
// [today, today+windowDays) by walking Next from the template time. Dates
// whose date-key precedes the item's creation date are excluded. Expand is
// time-window-pure: it does not drop a first-day occurrence whose time has
// already passed; callers that want an upcoming view apply FilterUpcoming.
func Expand(item *models.Item, windowDays int, clk clock.Clock) []time.Time {
	loc := clk.Location()
	now := clk.Now().In(loc)
	from := startOfDay(now, loc)
	until := from.AddDate(0, 0, windowDays)
	return ExpandRange(item, from, until, loc)
}

// ExpandRange walks occurrences into the half-open interval [from, until).
func ExpandRange(item *models.Item, from, until time.Time, loc *time.Location) []time.Time {
	if !item.IsRecurring() {
		return nil
	}
	tmpl := item.TemplateTime()
	if tmpl == nil {
		return nil
	}

	createdKey := models.DateKey(item.CreatedAt, loc)

	var out []time.Time
	cur := tmpl.In(loc)
	// A custom rule's template may sit on a weekday the rule never selects
	// (rule edited after creation, say). Every step after the first lands on a
	// selected day, so only the anchor needs the check.
	if item.Repeat == models.RepeatCustom && !customSelects(cur, item.Custom) {
		cur = Next(cur, item.Repeat, item.Custom)
	}
	for i := 0; i < maxWalk; i++ {
		if !cur.Before(until) {
			break
		}
		if !cur.Before(from) && models.DateKey(cur, loc) >= createdKey {
			out = append(out, cur)
		}
		next := Next(cur, item.Repeat, item.Custom)
		if !next.After(cur) {
			break
		}
		cur = next
	}
	return out
}

// FilterUpcoming drops instants that are not strictly after now. Forward-looking
// displays use it to push today's already-passed occurrence into the
// today/overdue logic instead of the upcoming list.
func FilterUpcoming(dates []time.Time, now time.Time) []time.Time {
	var out []time.Time
	for _, d := range dates {
		if d.After(now) {
			out = append(out, d)
		}
	}
	return out
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
