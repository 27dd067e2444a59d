package recur

import (
	"testing"
	"time"

	"github.com/hray3182/plannerd/internal/clock"
	"github.com/hray3182/plannerd/internal/models"
)

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestNext(t *testing.T) {
	tests := []struct {
		name   string
		anchor time.Time
		repeat models.Repeat
		cfg    *models.CustomConfig
		want   time.Time
	}{
		{"daily", date(2024, 1, 1, 9, 0), models.RepeatDaily, nil, date(2024, 1, 2, 9, 0)},
		{"weekly", date(2024, 1, 1, 9, 0), models.RepeatWeekly, nil, date(2024, 1, 8, 9, 0)},
		{"monthly", date(2024, 1, 15, 9, 0), models.RepeatMonthly, nil, date(2024, 2, 15, 9, 0)},
		// Day-of-month overflow normalizes into the following month.
		{"monthly overflow", date(2024, 1, 31, 9, 0), models.RepeatMonthly, nil, date(2024, 3, 2, 9, 0)},
		{"yearly", date(2024, 5, 4, 9, 0), models.RepeatYearly, nil, date(2025, 5, 4, 9, 0)},
		{"yearly leap day", date(2024, 2, 29, 9, 0), models.RepeatYearly, nil, date(2025, 3, 1, 9, 0)},
		{"custom empty days falls back to weekly", date(2024, 1, 1, 9, 0), models.RepeatCustom,
			&models.CustomConfig{IntervalWeeks: 2}, date(2024, 1, 8, 9, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Next(tt.anchor, tt.repeat, tt.cfg)
			if !got.Equal(tt.want) {
				t.Errorf("Next(%v) = %v, want %v", tt.anchor, got, tt.want)
			}
		})
	}
}

func TestNextCustomAlternation(t *testing.T) {
	// Mon/Wed every two weeks: Mon -> Wed inside the week, then a full week
	// is skipped before the next Mon.
	cfg := &models.CustomConfig{Days: []int{1, 3}, IntervalWeeks: 2}

	cur := date(2024, 1, 1, 9, 0) // Monday
	want := []time.Time{
		date(2024, 1, 3, 9, 0),  // Wednesday, same week
		date(2024, 1, 15, 9, 0), // Monday, one week skipped
		date(2024, 1, 17, 9, 0), // Wednesday
		date(2024, 1, 29, 9, 0), // Monday again
	}
	for i, w := range want {
		cur = Next(cur, models.RepeatCustom, cfg)
		if !cur.Equal(w) {
			t.Fatalf("step %d: got %v, want %v", i, cur, w)
		}
	}
}

func TestNextCustomFromUnselectedDay(t *testing.T) {
	cfg := &models.CustomConfig{Days: []int{1, 3}, IntervalWeeks: 1}

	// Sunday anchor: next Monday is tomorrow.
	got := Next(date(2024, 1, 7, 9, 0), models.RepeatCustom, cfg)
	if want := date(2024, 1, 8, 9, 0); !got.Equal(want) {
		t.Errorf("from Sunday: got %v, want %v", got, want)
	}

	// Friday anchor with interval 1: wraps to next week's Monday.
	got = Next(date(2024, 1, 5, 9, 0), models.RepeatCustom, cfg)
	if want := date(2024, 1, 8, 9, 0); !got.Equal(want) {
		t.Errorf("from Friday: got %v, want %v", got, want)
	}
}

func dailyItem(remindAt, createdAt time.Time) *models.Item {
	return &models.Item{
		ID:             "item-1",
		Title:          "water the plants",
		Status:         models.StatusActive,
		RemindAt:       &remindAt,
		Repeat:         models.RepeatDaily,
		CompletedDates: models.NewDateSet(),
		SkippedDates:   models.NewDateSet(),
		CreatedAt:      createdAt,
	}
}

func TestExpandDaily(t *testing.T) {
	tmpl := date(2024, 1, 1, 9, 0)
	item := dailyItem(tmpl, tmpl)
	clk := clock.NewFixed(date(2024, 1, 1, 8, 0))

	got := Expand(item, 14, clk)
	if len(got) != 14 {
		t.Fatalf("expected 14 occurrences, got %d", len(got))
	}
	for i, d := range got {
		if d.Hour() != 9 || d.Minute() != 0 {
			t.Errorf("occurrence %d lost template time-of-day: %v", i, d)
		}
		if i > 0 && !got[i-1].Before(d) {
			t.Errorf("occurrences not strictly increasing at %d", i)
		}
	}

	// Forward filter drops today's already-passed occurrence.
	upcoming := FilterUpcoming(got, date(2024, 1, 1, 10, 0))
	if len(upcoming) != 13 {
		t.Errorf("expected 13 upcoming occurrences, got %d", len(upcoming))
	}
}

func TestExpandExcludesBeforeCreation(t *testing.T) {
	item := dailyItem(date(2024, 1, 1, 9, 0), date(2024, 1, 5, 12, 0))
	clk := clock.NewFixed(date(2024, 1, 1, 8, 0))

	got := Expand(item, 14, clk)
	if len(got) == 0 {
		t.Fatal("expected occurrences")
	}
	if want := date(2024, 1, 5, 9, 0); !got[0].Equal(want) {
		t.Errorf("first occurrence %v, want %v", got[0], want)
	}
	if len(got) != 10 {
		t.Errorf("expected 10 occurrences, got %d", len(got))
	}
}

func TestExpandWeeklyWindow(t *testing.T) {
	tmpl := date(2024, 1, 1, 9, 0)
	item := dailyItem(tmpl, tmpl)
	item.Repeat = models.RepeatWeekly
	clk := clock.NewFixed(date(2024, 1, 1, 10, 0))

	got := Expand(item, 14, clk)
	// Pure window: the anchor day plus one weekly step; day 15 is outside the
	// half-open window.
	if len(got) != 2 || !got[0].Equal(date(2024, 1, 1, 9, 0)) || !got[1].Equal(date(2024, 1, 8, 9, 0)) {
		t.Fatalf("unexpected expansion: %v", got)
	}

	// The upcoming view sees only next week's occurrence.
	upcoming := FilterUpcoming(got, clk.Now())
	if len(upcoming) != 1 || !upcoming[0].Equal(date(2024, 1, 8, 9, 0)) {
		t.Fatalf("unexpected upcoming: %v", upcoming)
	}
}

func TestExpandCustomSkipsUnselectedAnchor(t *testing.T) {
	// Friday template under a Mon/Wed rule: the anchor weekday is never
	// selected, so the expansion starts at the following Monday.
	tmpl := date(2024, 1, 5, 9, 0) // Friday
	item := dailyItem(tmpl, tmpl)
	item.Repeat = models.RepeatCustom
	item.Custom = &models.CustomConfig{Days: []int{1, 3}, IntervalWeeks: 1}
	clk := clock.NewFixed(date(2024, 1, 5, 8, 0))

	got := Expand(item, 10, clk)
	want := []time.Time{date(2024, 1, 8, 9, 0), date(2024, 1, 10, 9, 0)}
	if len(got) != len(want) {
		t.Fatalf("unexpected expansion: %v", got)
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("occurrence %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestExpandTemplateFarInPast(t *testing.T) {
	tmpl := date(2020, 6, 1, 7, 30)
	item := dailyItem(tmpl, tmpl)
	clk := clock.NewFixed(date(2024, 1, 10, 6, 0))

	got := Expand(item, 3, clk)
	if len(got) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(got))
	}
	if want := date(2024, 1, 10, 7, 30); !got[0].Equal(want) {
		t.Errorf("first occurrence %v, want %v", got[0], want)
	}
}

func TestExpandNonRecurring(t *testing.T) {
	at := date(2024, 1, 2, 9, 0)
	item := &models.Item{ID: "x", RemindAt: &at, CreatedAt: at}
	if got := Expand(item, 14, clock.NewFixed(date(2024, 1, 1, 0, 0))); got != nil {
		t.Errorf("expected nil for non-recurring item, got %v", got)
	}
}
