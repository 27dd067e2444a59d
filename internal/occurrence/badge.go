package occurrence

import (
	"github.com/hray3182/plannerd/internal/clock"
	"github.com/hray3182/plannerd/internal/models"
	"github.com/hray3182/plannerd/internal/recur"
)

// BadgeCount derives the app badge from scratch. Per active item with a
// reminder: a one-time item counts 1 once its reminder time has passed; a
// recurring item counts 1 only when today's occurrence exists, its time has
// passed, and today is neither completed nor skipped. Historical misses are
// never summed, so the badge cannot grow without bound.
func BadgeCount(items []*models.Item, clk clock.Clock) int {
	loc := clk.Location()
	now := clk.Now().In(loc)
	today := startOfDay(now, loc)
	tomorrow := today.AddDate(0, 0, 1)

	count := 0
	for _, item := range items {
		if item.Status != models.StatusActive || item.RemindAt == nil {
			continue
		}

		if !item.IsRecurring() {
			if !item.RemindAt.After(now) {
				count++
			}
			continue
		}

		for _, d := range recur.ExpandRange(item, today, tomorrow, loc) {
			if d.After(now) {
				continue
			}
			key := models.DateKey(d, loc)
			if item.CompletedDates.Contains(key) || item.SkippedDates.Contains(key) {
				continue
			}
			count++
			break
		}
	}
	return count
}
