// Package store is the mutation orchestrator: the façade the UI talks to for
// complete/undo/skip/delete/edit, plus the reconciliation pass that keeps
// notifications and the badge consistent with persisted markers.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hray3182/plannerd/internal/clock"
	"github.com/hray3182/plannerd/internal/models"
	"github.com/hray3182/plannerd/internal/notify"
	"github.com/hray3182/plannerd/internal/occurrence"
	"github.com/hray3182/plannerd/internal/recur"
)

// ItemRepository is the persistence collaborator. Failures from it are
// propagated to the caller; silently losing a user edit is unacceptable.
type ItemRepository interface {
	ListActive(ctx context.Context) ([]*models.Item, error)
	Get(ctx context.Context, id string) (*models.Item, error)
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) error
	UpdateMarkers(ctx context.Context, id string, completed, skipped models.DateSet) error
	SetStatus(ctx context.Context, id string, status models.Status) error
	Delete(ctx context.Context, id string) error
}

// SettingsRepository supplies the notification settings snapshot.
type SettingsRepository interface {
	Get(ctx context.Context) (models.Settings, error)
}

// Store serializes every mutation and reconciliation behind one mutex, so a
// foreground reload can never clobber an in-progress completion. Notification
// state is always recomputed from markers, never incrementally trusted.
type Store struct {
	mu sync.Mutex

	items    ItemRepository
	settings SettingsRepository
	sched    *notify.Scheduler
	clock    clock.Clock
	log      *zap.SugaredLogger

	windowDays   int
	lookbackDays int

	// onChange, when set, pokes the dispatcher after a mutation.
	onChange func()
}

func New(items ItemRepository, settings SettingsRepository, sched *notify.Scheduler, clk clock.Clock, windowDays, lookbackDays int, log *zap.SugaredLogger) *Store {
	return &Store{
		items:        items,
		settings:     settings,
		sched:        sched,
		clock:        clk,
		log:          log,
		windowDays:   windowDays,
		lookbackDays: lookbackDays,
	}
}

// OnChange registers a callback fired after every successful mutation.
func (s *Store) OnChange(fn func()) {
	s.onChange = fn
}

// Add persists a new item and schedules its next reminder.
func (s *Store) Add(ctx context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Status == "" {
		item.Status = models.StatusActive
	}
	if item.CompletedDates == nil {
		item.CompletedDates = models.NewDateSet()
	}
	if item.SkippedDates == nil {
		item.SkippedDates = models.NewDateSet()
	}
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := s.items.Create(ctx, item); err != nil {
		return fmt.Errorf("create item: %w", err)
	}

	s.scheduleNext(ctx, item, s.loadSettings(ctx))
	s.refreshBadge(ctx)
	s.changed()
	return nil
}

// Complete marks one occurrence done. For a one-time item the whole item
// transitions to Done; for a recurring item only occurrenceDate's date-key is
// marked, and the template reminder is never mutated.
func (s *Store) Complete(ctx context.Context, itemID string, occurrenceDate *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return fmt.Errorf("load item: %w", err)
	}

	if !item.IsRecurring() {
		if err := s.items.SetStatus(ctx, itemID, models.StatusDone); err != nil {
			return fmt.Errorf("mark item done: %w", err)
		}
		s.sched.Cancel(ctx, itemID)
	} else {
		if occurrenceDate == nil {
			return fmt.Errorf("completing recurring item %s requires an occurrence date", itemID)
		}
		key := models.DateKey(*occurrenceDate, s.clock.Location())
		item.CompletedDates.Add(key)
		item.SkippedDates.Remove(key)
		if err := s.items.UpdateMarkers(ctx, itemID, item.CompletedDates, item.SkippedDates); err != nil {
			return fmt.Errorf("update markers: %w", err)
		}
		s.sched.Cancel(ctx, models.OccurrenceIdentifier(itemID, key))
	}

	s.refreshBadge(ctx)
	s.changed()
	return nil
}

// Undo reverses a completion. If the occurrence time is still ahead its
// notification is put back.
func (s *Store) Undo(ctx context.Context, itemID string, occurrenceDate *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return fmt.Errorf("load item: %w", err)
	}

	if !item.IsRecurring() {
		if err := s.items.SetStatus(ctx, itemID, models.StatusActive); err != nil {
			return fmt.Errorf("reactivate item: %w", err)
		}
		item.Status = models.StatusActive
	} else {
		if occurrenceDate == nil {
			return fmt.Errorf("undoing recurring item %s requires an occurrence date", itemID)
		}
		key := models.DateKey(*occurrenceDate, s.clock.Location())
		item.CompletedDates.Remove(key)
		if err := s.items.UpdateMarkers(ctx, itemID, item.CompletedDates, item.SkippedDates); err != nil {
			return fmt.Errorf("update markers: %w", err)
		}
	}

	s.scheduleNext(ctx, item, s.loadSettings(ctx))
	s.refreshBadge(ctx)
	s.changed()
	return nil
}

// Skip drops one occurrence of a recurring series permanently.
func (s *Store) Skip(ctx context.Context, itemID string, occurrenceDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return fmt.Errorf("load item: %w", err)
	}
	if !item.IsRecurring() {
		return fmt.Errorf("item %s is not recurring; delete it instead of skipping", itemID)
	}

	key := models.DateKey(occurrenceDate, s.clock.Location())
	item.SkippedDates.Add(key)
	item.CompletedDates.Remove(key)
	if err := s.items.UpdateMarkers(ctx, itemID, item.CompletedDates, item.SkippedDates); err != nil {
		return fmt.Errorf("update markers: %w", err)
	}

	s.sched.Cancel(ctx, models.OccurrenceIdentifier(itemID, key))
	s.refreshBadge(ctx)
	s.changed()
	return nil
}

// Delete removes the item and every notification it owns, occurrence
// notifications included.
func (s *Store) Delete(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sched.CancelAllForItem(ctx, itemID)
	if err := s.items.Delete(ctx, itemID); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	s.refreshBadge(ctx)
	s.changed()
	return nil
}

// Edit persists the updated item and re-synchronizes its notifications: a
// cleared reminder cancels, a changed time or title reschedules under the
// same identifier.
func (s *Store) Edit(ctx context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item.UpdatedAt = s.clock.Now()
	if err := s.items.Update(ctx, item); err != nil {
		return fmt.Errorf("update item: %w", err)
	}

	s.sched.CancelAllForItem(ctx, item.ID)
	s.scheduleNext(ctx, item, s.loadSettings(ctx))
	s.refreshBadge(ctx)
	s.changed()
	return nil
}

// Get loads one item.
func (s *Store) Get(ctx context.Context, itemID string) (*models.Item, error) {
	return s.items.Get(ctx, itemID)
}

// ListActive lists the non-archived items.
func (s *Store) ListActive(ctx context.Context) ([]*models.Item, error) {
	return s.items.ListActive(ctx)
}

// DisplayOccurrences resolves every active item into the UI buckets.
func (s *Store) DisplayOccurrences(ctx context.Context) (occurrence.Groups, error) {
	items, err := s.items.ListActive(ctx)
	if err != nil {
		return occurrence.Groups{}, fmt.Errorf("list items: %w", err)
	}
	return occurrence.Group(items, s.windowDays, s.lookbackDays, s.clock), nil
}

// BadgeCount recomputes the badge from scratch.
func (s *Store) BadgeCount(ctx context.Context) (int, error) {
	items, err := s.items.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list items: %w", err)
	}
	return occurrence.BadgeCount(items, s.clock), nil
}

// Reconcile rebuilds the outstanding notification set from persisted state:
// every item's next pending reminder is (re)scheduled and identifiers that no
// longer correspond to a pending occurrence are cancelled. Idempotent; safe
// to run on every foreground resume and dispatcher tick.
func (s *Store) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.items.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}

	settings := s.loadSettings(ctx)
	now := s.clock.Now()

	desired := make(map[string]bool)
	for _, item := range items {
		req := s.nextPending(item, now)
		if req == nil {
			continue
		}
		desired[req.Identifier] = true
		// A request already due stays outstanding for delivery; scheduling it
		// again would cancel-and-drop it.
		if req.FiringAt.After(now) {
			s.sched.Schedule(ctx, *req, settings)
		}
	}

	for _, id := range s.sched.Outstanding(ctx) {
		if !desired[id] {
			s.sched.Cancel(ctx, id)
		}
	}

	badge := occurrence.BadgeCount(items, s.clock)
	s.log.Debugw("reconciled", "items", len(items), "outstanding", len(desired), "badge", badge)
	return nil
}

// nextPending returns the notification request for the item's next pending
// occurrence, or nil when nothing should be outstanding.
func (s *Store) nextPending(item *models.Item, now time.Time) *models.NotificationRequest {
	if item.Status != models.StatusActive || item.RemindAt == nil {
		return nil
	}

	loc := s.clock.Location()
	if !item.IsRecurring() {
		return &models.NotificationRequest{
			Identifier: item.ID,
			FiringAt:   item.RemindAt.In(loc),
			Title:      item.Title,
			Body:       item.Description,
		}
	}

	for _, d := range recur.Expand(item, s.windowDays, s.clock) {
		key := models.DateKey(d, loc)
		if item.CompletedDates.Contains(key) || item.SkippedDates.Contains(key) {
			continue
		}
		return &models.NotificationRequest{
			Identifier: models.OccurrenceIdentifier(item.ID, key),
			FiringAt:   d,
			Title:      item.Title,
			Body:       item.Description,
		}
	}
	return nil
}

// scheduleNext schedules the item's next pending reminder if it lies ahead.
func (s *Store) scheduleNext(ctx context.Context, item *models.Item, settings models.Settings) {
	req := s.nextPending(item, s.clock.Now())
	if req == nil || !req.FiringAt.After(s.clock.Now()) {
		return
	}
	s.sched.Schedule(ctx, *req, settings)
}

// loadSettings fetches the snapshot, degrading to defaults on failure: a
// broken settings row should not block a mutation.
func (s *Store) loadSettings(ctx context.Context) models.Settings {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.log.Warnw("failed to load settings, using defaults", "error", err)
		return models.Settings{}
	}
	return settings
}

// refreshBadge recomputes the badge after a mutation. Failures are logged and
// swallowed; the next reconciliation pass recomputes it anyway.
func (s *Store) refreshBadge(ctx context.Context) {
	items, err := s.items.ListActive(ctx)
	if err != nil {
		s.log.Warnw("failed to recompute badge", "error", err)
		return
	}
	s.log.Debugw("badge recomputed", "count", occurrence.BadgeCount(items, s.clock))
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
