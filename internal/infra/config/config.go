package config

import (
	"fmt"
	"os"
	"strconv"
	"strings" // For LogLevel normalization
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken    string
	DatabaseURL      string
	LogLevel         string
	Environment      string
	TimetableFile    string        // Optional; the embedded timetable is used when empty
	TickInterval     time.Duration // Period re-evaluation cadence
	NotifyQueueSize  int
	CronSpecDayStart string // Remounts the timers so every period notifies again
	CronSpecDigest   string // Morning broadcast of today's classes
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.TimetableFile = os.Getenv("TIMETABLE_FILE")

	cfg.TickInterval = time.Second
	if v := os.Getenv("TICK_INTERVAL"); v != "" {
		cfg.TickInterval, err = time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TICK_INTERVAL: %w", err)
		}
		if cfg.TickInterval <= 0 {
			return nil, fmt.Errorf("invalid TICK_INTERVAL: must be positive, got %s", v)
		}
	}

	cfg.NotifyQueueSize = 64
	if v := os.Getenv("NOTIFY_QUEUE_SIZE"); v != "" {
		cfg.NotifyQueueSize, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid NOTIFY_QUEUE_SIZE: %w", err)
		}
	}

	cfg.CronSpecDayStart = os.Getenv("CRON_SPEC_DAY_START")
	if cfg.CronSpecDayStart == "" {
		cfg.CronSpecDayStart = "0 0 * * *" // Default: midnight
	}

	cfg.CronSpecDigest = os.Getenv("CRON_SPEC_DIGEST")
	if cfg.CronSpecDigest == "" {
		cfg.CronSpecDigest = "0 8 * * 1-5" // Default: 08:00 on weekdays
	}

	return cfg, nil
}
