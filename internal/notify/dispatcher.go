package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/hray3182/plannerd/internal/clock"
	"github.com/hray3182/plannerd/internal/occurrence"
)

// Engine is the store-level façade the dispatcher drives.
type Engine interface {
	Reconcile(ctx context.Context) error
	DisplayOccurrences(ctx context.Context) (occurrence.Groups, error)
	BadgeCount(ctx context.Context) (int, error)
}

// Dispatcher runs the periodic reconciliation pass: recompute engine state,
// deliver due notifications, and send the daily summary. Mutation paths poke
// it through Notify so a user action is reflected without waiting a tick.
type Dispatcher struct {
	engine   Engine
	platform *TelegramPlatform
	clock    clock.Clock
	log      *zap.SugaredLogger

	cron      *cron.Cron
	notifyCh  chan struct{}
	summaryCh chan struct{}

	interval  time.Duration
	summaryAt string
}

func NewDispatcher(engine Engine, platform *TelegramPlatform, clk clock.Clock, interval time.Duration, summaryAt string, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		engine:    engine,
		platform:  platform,
		clock:     clk,
		log:       log,
		cron:      cron.New(cron.WithLocation(clk.Location()), cron.WithSeconds()),
		notifyCh:  make(chan struct{}, 1),
		summaryCh: make(chan struct{}, 1),
		interval:  interval,
		summaryAt: summaryAt,
	}
}

// Notify triggers an immediate pass. Non-blocking if one is already pending.
func (d *Dispatcher) Notify() {
	select {
	case d.notifyCh <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) Start(ctx context.Context) {
	if _, err := d.cron.AddFunc(intervalSpec(d.interval), d.Notify); err != nil {
		d.log.Errorw("failed to register reconcile job", "error", err)
		return
	}
	if d.summaryAt != "" {
		spec, err := dailySpec(d.summaryAt)
		if err != nil {
			d.log.Warnw("invalid summary time, daily summary disabled", "summary_at", d.summaryAt, "error", err)
		} else if _, err := d.cron.AddFunc(spec, func() {
			select {
			case d.summaryCh <- struct{}{}:
			default:
			}
		}); err != nil {
			d.log.Warnw("failed to register summary job", "error", err)
		}
	}

	d.cron.Start()
	defer func() {
		stopped := d.cron.Stop()
		<-stopped.Done()
	}()

	d.log.Info("dispatcher started")
	d.pass(ctx)

	for {
		select {
		case <-ctx.Done():
			d.log.Info("dispatcher stopped")
			return
		case <-d.notifyCh:
			d.pass(ctx)
		case <-d.summaryCh:
			d.sendSummary(ctx)
		}
	}
}

func (d *Dispatcher) pass(ctx context.Context) {
	if err := d.engine.Reconcile(ctx); err != nil {
		d.log.Warnw("reconciliation failed", "error", err)
	}
	d.platform.Deliver(ctx, d.clock.Now())
}

func (d *Dispatcher) sendSummary(ctx context.Context) {
	groups, err := d.engine.DisplayOccurrences(ctx)
	if err != nil {
		d.log.Warnw("failed to build daily summary", "error", err)
		return
	}
	badge, err := d.engine.BadgeCount(ctx)
	if err != nil {
		d.log.Warnw("failed to compute badge for summary", "error", err)
		return
	}
	if err := d.platform.Send(Summary(groups, badge, d.clock.Now())); err != nil {
		d.log.Warnw("failed to send daily summary", "error", err)
		return
	}
	d.log.Info("sent daily summary")
}

// intervalSpec converts a duration into a cron "@every" expression.
func intervalSpec(interval time.Duration) string {
	seconds := int(interval.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return fmt.Sprintf("@every %ds", seconds)
}

// dailySpec converts an HH:MM time string into a daily cron expression.
func dailySpec(timeStr string) (string, error) {
	parts := strings.Split(timeStr, ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", timeStr)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", timeStr)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", timeStr)
	}
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}
