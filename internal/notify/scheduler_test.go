package notify

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hray3182/plannerd/internal/clock"
	"github.com/hray3182/plannerd/internal/models"
)

type fakePlatform struct {
	scheduled map[string]models.NotificationRequest
	failNext  bool
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{scheduled: make(map[string]models.NotificationRequest)}
}

func (p *fakePlatform) ScheduleAt(_ context.Context, identifier string, req models.NotificationRequest) error {
	if p.failNext {
		p.failNext = false
		return fmt.Errorf("platform unavailable")
	}
	p.scheduled[identifier] = req
	return nil
}

func (p *fakePlatform) Cancel(_ context.Context, identifier string) error {
	delete(p.scheduled, identifier)
	return nil
}

func (p *fakePlatform) ListScheduled(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(p.scheduled))
	for id := range p.scheduled {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func testScheduler(p Platform, now time.Time) *Scheduler {
	return NewScheduler(p, clock.NewFixed(now), zap.NewNop().Sugar())
}

func date(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func TestScheduleIsIdempotent(t *testing.T) {
	p := newFakePlatform()
	s := testScheduler(p, date(2024, 1, 1, 8, 0))

	req := models.NotificationRequest{
		Identifier: "item1_2024-01-02",
		FiringAt:   date(2024, 1, 2, 9, 0),
		Title:      "water the plants",
	}
	s.Schedule(context.Background(), req, models.Settings{})
	s.Schedule(context.Background(), req, models.Settings{})

	if len(p.scheduled) != 1 {
		t.Fatalf("expected exactly one outstanding request, got %d", len(p.scheduled))
	}
}

func TestScheduleDropsPastInstant(t *testing.T) {
	p := newFakePlatform()
	s := testScheduler(p, date(2024, 1, 1, 10, 0))

	s.Schedule(context.Background(), models.NotificationRequest{
		Identifier: "item1",
		FiringAt:   date(2024, 1, 1, 9, 0),
	}, models.Settings{})

	if len(p.scheduled) != 0 {
		t.Errorf("past request was scheduled: %v", p.scheduled)
	}
}

func TestScheduleAppliesQuietHours(t *testing.T) {
	p := newFakePlatform()
	s := testScheduler(p, date(2024, 1, 1, 8, 0))

	settings := models.Settings{
		QuietHoursEnabled: true,
		QuietHours:        models.QuietHoursWindow{Start: "22:00", End: "07:00"},
	}
	s.Schedule(context.Background(), models.NotificationRequest{
		Identifier: "item1",
		FiringAt:   date(2024, 1, 1, 23, 30),
	}, settings)

	got := p.scheduled["item1"]
	if want := date(2024, 1, 2, 7, 0); !got.FiringAt.Equal(want) {
		t.Errorf("firing at %v, want deferred %v", got.FiringAt, want)
	}
}

func TestScheduleQuietHoursDisabled(t *testing.T) {
	p := newFakePlatform()
	s := testScheduler(p, date(2024, 1, 1, 8, 0))

	settings := models.Settings{
		QuietHours: models.QuietHoursWindow{Start: "22:00", End: "07:00"},
	}
	at := date(2024, 1, 1, 23, 30)
	s.Schedule(context.Background(), models.NotificationRequest{Identifier: "item1", FiringAt: at}, settings)

	if got := p.scheduled["item1"]; !got.FiringAt.Equal(at) {
		t.Errorf("firing at %v, want %v", got.FiringAt, at)
	}
}

func TestScheduleSwallowsPlatformFailure(t *testing.T) {
	p := newFakePlatform()
	p.failNext = true
	s := testScheduler(p, date(2024, 1, 1, 8, 0))

	// Must not panic or return; a missed schedule degrades silently.
	s.Schedule(context.Background(), models.NotificationRequest{
		Identifier: "item1",
		FiringAt:   date(2024, 1, 1, 9, 0),
	}, models.Settings{})

	if len(p.scheduled) != 0 {
		t.Errorf("unexpected outstanding requests: %v", p.scheduled)
	}
}

func TestCancelAllForItem(t *testing.T) {
	p := newFakePlatform()
	s := testScheduler(p, date(2024, 1, 1, 8, 0))
	ctx := context.Background()

	for day := 2; day <= 6; day++ {
		s.Schedule(ctx, models.NotificationRequest{
			Identifier: fmt.Sprintf("item1_2024-01-%02d", day),
			FiringAt:   date(2024, 1, day, 9, 0),
		}, models.Settings{})
	}
	s.Schedule(ctx, models.NotificationRequest{Identifier: "item1", FiringAt: date(2024, 1, 2, 9, 0)}, models.Settings{})
	// Neighbors that must survive: a different item and an id sharing the
	// bare prefix without the underscore separator.
	s.Schedule(ctx, models.NotificationRequest{Identifier: "item2_2024-01-02", FiringAt: date(2024, 1, 2, 9, 0)}, models.Settings{})
	s.Schedule(ctx, models.NotificationRequest{Identifier: "item10", FiringAt: date(2024, 1, 2, 9, 0)}, models.Settings{})

	s.CancelAllForItem(ctx, "item1")

	ids, _ := p.ListScheduled(ctx)
	if len(ids) != 2 {
		t.Fatalf("outstanding after delete: %v", ids)
	}
	for _, id := range ids {
		if id != "item2_2024-01-02" && id != "item10" {
			t.Errorf("unexpected survivor %q", id)
		}
	}
}
