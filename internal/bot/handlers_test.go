package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/hray3182/plannerd/internal/models"
	"github.com/hray3182/plannerd/internal/occurrence"
)

func occ(itemID, title string, at time.Time) models.Occurrence {
	return models.Occurrence{ItemID: itemID, Title: title, DisplayDate: at}
}

func TestRenderToday(t *testing.T) {
	at := time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)

	t.Run("lists today's occurrences only", func(t *testing.T) {
		done := occ("aaaabbbb-1", "stretch", at)
		done.IsCompleted = true
		passed := occ("ccccdddd-2", "water the plants", at.Add(2*time.Hour))
		passed.TimePassed = true

		out := renderToday([]models.Occurrence{done, passed})
		if !strings.Contains(out, "📋 Today") {
			t.Errorf("missing header: %q", out)
		}
		if !strings.Contains(out, "✅ 09:30 stretch (aaaabbbb)") {
			t.Errorf("completed line wrong: %q", out)
		}
		if !strings.Contains(out, "⬜ 11:30 water the plants (ccccdddd) ⚠️") {
			t.Errorf("pending passed line wrong: %q", out)
		}
		if strings.Contains(out, "Overdue") || strings.Contains(out, "Upcoming") {
			t.Errorf("other sections leaked in: %q", out)
		}
	})

	t.Run("empty day", func(t *testing.T) {
		if out := renderToday(nil); out != "Nothing due today 🎉" {
			t.Errorf("unexpected empty rendering: %q", out)
		}
	})
}

func TestRenderGroups(t *testing.T) {
	at := time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)
	groups := occurrence.Groups{
		Today:    []models.Occurrence{occ("aaaabbbb-1", "stretch", at)},
		Upcoming: []models.Occurrence{occ("ccccdddd-2", "dentist", at.AddDate(0, 0, 3))},
	}

	out := renderGroups(groups)
	if !strings.Contains(out, "📋 Today") || !strings.Contains(out, "📅 Upcoming") {
		t.Errorf("missing sections: %q", out)
	}
	if !strings.Contains(out, "01/08 09:30 dentist") {
		t.Errorf("upcoming line wrong: %q", out)
	}

	if got := renderGroups(occurrence.Groups{}); got != "Nothing scheduled 🎉" {
		t.Errorf("unexpected empty rendering: %q", got)
	}
}

func TestParseRepeatRule(t *testing.T) {
	repeat, custom, err := parseRepeatRule("mon,wed/2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repeat != models.RepeatCustom || custom == nil {
		t.Fatalf("expected custom rule, got %v %v", repeat, custom)
	}
	if len(custom.Days) != 2 || custom.Days[0] != 1 || custom.Days[1] != 3 || custom.IntervalWeeks != 2 {
		t.Errorf("unexpected custom config: %+v", custom)
	}

	if repeat, _, err := parseRepeatRule("daily"); err != nil || repeat != models.RepeatDaily {
		t.Errorf("daily: got %v, %v", repeat, err)
	}
	if _, _, err := parseRepeatRule("mon,funday"); err == nil {
		t.Error("expected error for unknown weekday")
	}
	if _, _, err := parseRepeatRule("mon/0"); err == nil {
		t.Error("expected error for zero interval")
	}
}
