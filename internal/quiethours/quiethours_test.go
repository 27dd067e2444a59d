package quiethours

import (
	"testing"
	"time"

	"github.com/hray3182/plannerd/internal/models"
)

func at(hh, mm int) time.Time {
	return time.Date(2024, 3, 15, hh, mm, 0, 0, time.UTC)
}

func TestApplyOvernightWindow(t *testing.T) {
	w := models.QuietHoursWindow{Start: "22:00", End: "07:00"}

	tests := []struct {
		name      string
		candidate time.Time
		want      time.Time
	}{
		{"late night defers to next morning", at(23, 30), time.Date(2024, 3, 16, 7, 0, 0, 0, time.UTC)},
		{"early morning defers to same morning", at(6, 0), at(7, 0)},
		{"daytime passes through", at(12, 0), at(12, 0)},
		{"window start is blocked", at(22, 0), time.Date(2024, 3, 16, 7, 0, 0, 0, time.UTC)},
		{"window end is open", at(7, 0), at(7, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.candidate, w)
			if !got.Equal(tt.want) {
				t.Errorf("Apply(%v) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestApplySameDayWindow(t *testing.T) {
	w := models.QuietHoursWindow{Start: "13:00", End: "15:00"}

	if got := Apply(at(13, 30), w); !got.Equal(at(15, 0)) {
		t.Errorf("blocked candidate deferred to %v", got)
	}
	if got := Apply(at(12, 59), w); !got.Equal(at(12, 59)) {
		t.Errorf("open candidate moved to %v", got)
	}
	if got := Apply(at(15, 0), w); !got.Equal(at(15, 0)) {
		t.Errorf("window end moved to %v", got)
	}
}

func TestDeferredInstantNeverBlocked(t *testing.T) {
	// A single deferral pass suffices: the deferred time-of-day is the
	// window's own end boundary.
	windows := []models.QuietHoursWindow{
		{Start: "22:00", End: "07:00"},
		{Start: "09:00", End: "17:00"},
	}
	for _, w := range windows {
		for _, c := range []time.Time{at(23, 59), at(0, 0), at(10, 30), at(22, 0)} {
			if deferred := Apply(c, w); Blocked(deferred, w) {
				t.Errorf("deferred instant %v still blocked by %+v", deferred, w)
			}
		}
	}
}

func TestApplyDegenerateWindows(t *testing.T) {
	// Unparsable or empty windows disable quiet hours.
	for _, w := range []models.QuietHoursWindow{
		{Start: "", End: ""},
		{Start: "25:00", End: "07:00"},
		{Start: "22:00", End: "22:00"},
	} {
		if got := Apply(at(23, 0), w); !got.Equal(at(23, 0)) {
			t.Errorf("window %+v deferred to %v", w, got)
		}
	}
}
