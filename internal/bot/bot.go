package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/hray3182/plannerd/internal/clock"
	"github.com/hray3182/plannerd/internal/store"
)

// Bot is the Telegram command front end over the store façade.
type Bot struct {
	api    *tgbotapi.BotAPI
	store  *store.Store
	clock  clock.Clock
	chatID int64
	log    *zap.SugaredLogger
}

func New(api *tgbotapi.BotAPI, st *store.Store, clk clock.Clock, chatID int64, log *zap.SugaredLogger) *Bot {
	return &Bot{api: api, store: st, clock: clk, chatID: chatID, log: log}
}

func (b *Bot) Start(ctx context.Context) error {
	b.log.Infow("bot authorized", "account", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}
	// Single-user daemon: ignore chats other than the configured one.
	if b.chatID != 0 && update.Message.Chat.ID != b.chatID {
		return
	}
	b.handleCommand(ctx, update.Message)
}

func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warnw("failed to send reply", "error", err)
	}
}
