package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/plannerd/internal/bot"
	"github.com/hray3182/plannerd/internal/clock"
	"github.com/hray3182/plannerd/internal/config"
	"github.com/hray3182/plannerd/internal/database"
	"github.com/hray3182/plannerd/internal/logger"
	"github.com/hray3182/plannerd/internal/models"
	"github.com/hray3182/plannerd/internal/notify"
	"github.com/hray3182/plannerd/internal/repository"
	"github.com/hray3182/plannerd/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.DatabaseURI == "" {
		log.Fatal("DATABASE_URI is required")
	}
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()

	loc, err := cfg.Location()
	if err != nil {
		zlog.Fatalf("Failed to resolve timezone: %v", err)
	}
	clk := clock.System(loc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		zlog.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	zlog.Info("connected to database")

	if err := db.Migrate(ctx); err != nil {
		zlog.Fatalf("Failed to run migrations: %v", err)
	}
	zlog.Info("database migrations completed")

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		zlog.Fatalf("Failed to create Telegram API: %v", err)
	}

	itemRepo := repository.NewItemRepository(db, loc, zlog)
	settingsRepo := repository.NewSettingsRepository(db, models.Settings{
		QuietHoursEnabled: cfg.QuietHoursEnabled,
		QuietHours:        models.QuietHoursWindow{Start: cfg.QuietStart, End: cfg.QuietEnd},
	})

	platform := notify.NewTelegramPlatform(api, cfg.ChatID, zlog)
	sched := notify.NewScheduler(platform, clk, zlog)
	st := store.New(itemRepo, settingsRepo, sched, clk, cfg.WindowDays, cfg.OverdueLookbackDays, zlog)

	dispatcher := notify.NewDispatcher(st, platform, clk, cfg.CheckInterval, cfg.SummaryTime, zlog)
	st.OnChange(dispatcher.Notify)
	go dispatcher.Start(ctx)

	b := bot.New(api, st, clk, cfg.ChatID, zlog)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		zlog.Info("shutting down")
		cancel()
	}()

	zlog.Info("starting bot")
	if err := b.Start(ctx); err != nil && err != context.Canceled {
		zlog.Fatalf("Bot error: %v", err)
	}
}
