// Package occurrence resolves rule-expanded dates against an item's persisted
// markers into typed occurrences, groups them for display, and derives the
// badge count.
package occurrence

import (
	"sort"
	"time"

	"github.com/hray3182/plannerd/internal/clock"
	"github.com/hray3182/plannerd/internal/models"
	"github.com/hray3182/plannerd/internal/recur"
)

// Resolve combines an item's expanded dates with its completion and skip
// markers. Skipped occurrences are dropped entirely: they are never rendered
// and never notified. A one-time item resolves to exactly one occurrence and
// ignores dates.
func Resolve(item *models.Item, dates []time.Time, loc *time.Location) []models.Occurrence {
	if !item.IsRecurring() {
		at := item.DisplayTime()
		if at == nil {
			return nil
		}
		return []models.Occurrence{{
			ItemID:      item.ID,
			Title:       item.Title,
			DisplayDate: at.In(loc),
			IsCompleted: item.Status == models.StatusDone,
		}}
	}

	var out []models.Occurrence
	for _, d := range dates {
		key := models.DateKey(d, loc)
		if item.SkippedDates.Contains(key) {
			continue
		}
		out = append(out, models.Occurrence{
			ItemID:      item.ID,
			Title:       item.Title,
			DisplayDate: d.In(loc),
			IsCompleted: item.CompletedDates.Contains(key),
			IsVirtual:   true,
		})
	}
	return out
}

// Groups buckets occurrences for the UI. Overdue holds pending occurrences
// dated strictly before today within the lookback window; an occurrence dated
// today whose time has passed stays in Today with TimePassed set.
type Groups struct {
	Overdue  []models.Occurrence
	Today    []models.Occurrence
	Tomorrow []models.Occurrence
	Upcoming []models.Occurrence
}

// Group expands and resolves every active item over [today-lookbackDays,
// today+windowDays) and buckets the result by calendar day.
func Group(items []*models.Item, windowDays, lookbackDays int, clk clock.Clock) Groups {
	loc := clk.Location()
	now := clk.Now().In(loc)
	today := startOfDay(now, loc)
	from := today.AddDate(0, 0, -lookbackDays)
	until := today.AddDate(0, 0, windowDays)

	todayKey := models.DateKey(today, loc)
	tomorrowKey := models.DateKey(today.AddDate(0, 0, 1), loc)

	var g Groups
	for _, item := range items {
		if item.Status == models.StatusArchived {
			continue
		}
		occs := Resolve(item, recur.ExpandRange(item, from, until, loc), loc)
		for _, occ := range occs {
			key := occ.DateKey(loc)
			switch {
			case key < todayKey:
				if occ.Pending() && key >= models.DateKey(from, loc) {
					g.Overdue = append(g.Overdue, occ)
				}
			case key == todayKey:
				occ.TimePassed = !occ.DisplayDate.After(now)
				g.Today = append(g.Today, occ)
			case key == tomorrowKey:
				g.Tomorrow = append(g.Tomorrow, occ)
			case occ.DisplayDate.Before(until):
				g.Upcoming = append(g.Upcoming, occ)
			}
		}
	}

	sortByDate(g.Overdue)
	sortByDate(g.Today)
	sortByDate(g.Tomorrow)
	sortByDate(g.Upcoming)
	return g
}

func sortByDate(occs []models.Occurrence) {
	sort.SliceStable(occs, func(i, j int) bool {
		return occs[i].DisplayDate.Before(occs[j].DisplayDate)
	})
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
