package notify

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/hray3182/plannerd/internal/models"
)

// TelegramPlatform implements Platform with an in-memory timetable delivered
// over Telegram. Requests sit in the table until their firing time; the
// dispatcher's tick calls Deliver, which sends everything due. A failed send
// keeps the request in the table so the next tick retries it.
type TelegramPlatform struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *zap.SugaredLogger

	mu      sync.Mutex
	pending map[string]models.NotificationRequest
}

func NewTelegramPlatform(api *tgbotapi.BotAPI, chatID int64, log *zap.SugaredLogger) *TelegramPlatform {
	return &TelegramPlatform{
		api:     api,
		chatID:  chatID,
		log:     log,
		pending: make(map[string]models.NotificationRequest),
	}
}

func (p *TelegramPlatform) ScheduleAt(ctx context.Context, identifier string, req models.NotificationRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[identifier] = req
	return nil
}

func (p *TelegramPlatform) Cancel(ctx context.Context, identifier string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pending, identifier)
	return nil
}

func (p *TelegramPlatform) ListScheduled(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ids := make([]string, 0, len(p.pending))
	for id := range p.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Deliver sends every request whose firing time has passed.
func (p *TelegramPlatform) Deliver(ctx context.Context, now time.Time) {
	for _, req := range p.due(now) {
		text := "⏰ " + req.Title
		if req.Body != "" {
			text += "\n" + req.Body
		}
		msg := tgbotapi.NewMessage(p.chatID, text)
		if _, err := p.api.Send(msg); err != nil {
			p.log.Warnw("failed to send notification", "identifier", req.Identifier, "error", err)
			continue
		}
		p.mu.Lock()
		delete(p.pending, req.Identifier)
		p.mu.Unlock()
		p.log.Infow("delivered notification", "identifier", req.Identifier)
	}
}

// Send pushes a message immediately, outside the timetable. Used for the
// daily summary.
func (p *TelegramPlatform) Send(text string) error {
	msg := tgbotapi.NewMessage(p.chatID, text)
	if _, err := p.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func (p *TelegramPlatform) due(now time.Time) []models.NotificationRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.NotificationRequest
	for _, req := range p.pending {
		if !req.FiringAt.After(now) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FiringAt.Before(out[j].FiringAt) })
	return out
}
