package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURI   string
	TelegramToken string
	ChatID        int64

	Timezone            string
	CheckInterval       time.Duration
	WindowDays          int
	OverdueLookbackDays int
	SummaryTime         string // HH:MM, empty disables the daily summary

	// Quiet-hours defaults seed the settings row until the user changes it.
	QuietHoursEnabled bool
	QuietStart        string
	QuietEnd          string

	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env file is optional in production
	}

	cfg := &Config{
		DatabaseURI:         os.Getenv("DATABASE_URI"),
		TelegramToken:       os.Getenv("TELEGRAM_TOKEN"),
		Timezone:            getEnvOrDefault("TIMEZONE", "Local"),
		CheckInterval:       time.Minute,
		WindowDays:          intEnvOrDefault("WINDOW_DAYS", 30),
		OverdueLookbackDays: intEnvOrDefault("OVERDUE_LOOKBACK_DAYS", 3),
		SummaryTime:         getEnvOrDefault("SUMMARY_TIME", "08:00"),
		QuietHoursEnabled:   boolEnvOrDefault("QUIET_HOURS_ENABLED", false),
		QuietStart:          getEnvOrDefault("QUIET_START", "22:00"),
		QuietEnd:            getEnvOrDefault("QUIET_END", "07:00"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "console"),
	}

	if raw := os.Getenv("CHECK_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil || interval <= 0 {
			return nil, fmt.Errorf("invalid CHECK_INTERVAL %q", raw)
		}
		cfg.CheckInterval = interval
	}

	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		chatID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q", raw)
		}
		cfg.ChatID = chatID
	}

	for _, hhmm := range []string{cfg.QuietStart, cfg.QuietEnd, cfg.SummaryTime} {
		if hhmm == "" {
			continue
		}
		if _, err := time.Parse("15:04", hhmm); err != nil {
			return nil, fmt.Errorf("invalid HH:MM value %q", hhmm)
		}
	}

	if cfg.WindowDays < 1 {
		return nil, fmt.Errorf("WINDOW_DAYS must be positive")
	}
	if cfg.OverdueLookbackDays < 0 {
		return nil, fmt.Errorf("OVERDUE_LOOKBACK_DAYS must not be negative")
	}

	return cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func intEnvOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func boolEnvOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
