// Package notify maps occurrences to platform notification requests and keeps
// the outstanding set consistent across reschedules, cancels and deletes.
package notify

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/hray3182/plannerd/internal/clock"
	"github.com/hray3182/plannerd/internal/models"
	"github.com/hray3182/plannerd/internal/quiethours"
)

// Platform is the OS/transport notification collaborator. Delivery is best
// effort; the engine never treats a platform failure as fatal.
type Platform interface {
	ScheduleAt(ctx context.Context, identifier string, req models.NotificationRequest) error
	Cancel(ctx context.Context, identifier string) error
	ListScheduled(ctx context.Context) ([]string, error)
}

// Scheduler applies the quiet-hours policy and the identifier discipline on
// top of a Platform. Scheduling with an existing identifier cancels the old
// request first, so a reschedule can never duplicate.
type Scheduler struct {
	platform Platform
	clock    clock.Clock
	log      *zap.SugaredLogger
}

func NewScheduler(platform Platform, clk clock.Clock, log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{platform: platform, clock: clk, log: log}
}

// Schedule registers req, deferring its firing time out of quiet hours when
// enabled. Requests whose resulting instant is already in the past are
// dropped. Platform failures are logged and swallowed: a missed schedule call
// degrades to "no notification", never to a failed mutation.
func (s *Scheduler) Schedule(ctx context.Context, req models.NotificationRequest, settings models.Settings) {
	if err := s.platform.Cancel(ctx, req.Identifier); err != nil {
		s.log.Warnw("failed to cancel before reschedule", "identifier", req.Identifier, "error", err)
	}

	fireAt := req.FiringAt
	if settings.QuietHoursEnabled {
		fireAt = quiethours.Apply(fireAt, settings.QuietHours)
	}

	if !fireAt.After(s.clock.Now()) {
		s.log.Debugw("skipping past notification", "identifier", req.Identifier, "firing_at", fireAt)
		return
	}

	req.FiringAt = fireAt
	if err := s.platform.ScheduleAt(ctx, req.Identifier, req); err != nil {
		s.log.Warnw("failed to schedule notification", "identifier", req.Identifier, "error", err)
	}
}

// Cancel removes one outstanding request.
func (s *Scheduler) Cancel(ctx context.Context, identifier string) {
	if err := s.platform.Cancel(ctx, identifier); err != nil {
		s.log.Warnw("failed to cancel notification", "identifier", identifier, "error", err)
	}
}

// CancelAllForItem removes every outstanding request owned by the item: the
// bare item identifier plus every per-occurrence "itemID_YYYY-MM-DD" one.
// Run before a whole-item delete so no occurrence notification is orphaned.
func (s *Scheduler) CancelAllForItem(ctx context.Context, itemID string) {
	ids, err := s.platform.ListScheduled(ctx)
	if err != nil {
		s.log.Warnw("failed to list scheduled notifications", "item_id", itemID, "error", err)
		return
	}
	for _, id := range ids {
		if id == itemID || strings.HasPrefix(id, itemID+"_") {
			s.Cancel(ctx, id)
		}
	}
}

// Outstanding lists the identifiers currently scheduled on the platform.
func (s *Scheduler) Outstanding(ctx context.Context) []string {
	ids, err := s.platform.ListScheduled(ctx)
	if err != nil {
		s.log.Warnw("failed to list scheduled notifications", "error", err)
		return nil
	}
	return ids
}
