// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the Telegram transport, scraper, storage, and background jobs.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Telegram Configuration
	TelegramToken string // Bot API token
	WebhookURL    string // Public base URL for webhook delivery (empty = long polling)
	WebhookSecret string // Path segment guarding the webhook endpoint

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir string // Directory for the SQLite database

	// Remote source Configuration
	ScheduleBaseURL string // ISU timetable endpoint
	AcademicYear    string // e.g. "2024/2025", used to match semester labels

	// Scraper Configuration
	ScraperTimeout    time.Duration
	ScraperMaxRetries int
	ScraperWorkers    int // Bounded concurrency for refresh fetches

	// Job Configuration (cron expressions, standard 5-field syntax)
	RefreshSchedule   string // Catalog + schedule refresh interval
	BroadcastSchedule string // Daily timetable broadcast

	// Error tracking
	SentryDSN   string
	Environment string
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first, then reads from env vars.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:    getEnv("WEBHOOK_URL", ""),
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),

		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),

		DataDir: getEnv("DATA_DIR", "./data"),

		ScheduleBaseURL: getEnv("SCHEDULE_BASE_URL", "https://isu.ugatu.su/api/new_schedule_api/"),
		AcademicYear:    getEnv("ACADEMIC_YEAR", defaultAcademicYear()),

		ScraperTimeout:    getEnvDuration("SCRAPER_TIMEOUT", 60*time.Second),
		ScraperMaxRetries: getEnvInt("SCRAPER_MAX_RETRIES", 3),
		ScraperWorkers:    getEnvInt("SCRAPER_WORKERS", 10),

		RefreshSchedule:   getEnv("REFRESH_SCHEDULE", "0 */6 * * *"),
		BroadcastSchedule: getEnv("BROADCAST_SCHEDULE", "30 6 * * 1-6"),

		SentryDSN:   getEnv("SENTRY_DSN", ""),
		Environment: getEnv("ENVIRONMENT", "production"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration values are present and sane
func (c *Config) Validate() error {
	if c.TelegramToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	if c.ScheduleBaseURL == "" {
		return errors.New("SCHEDULE_BASE_URL must not be empty")
	}
	if c.ScraperWorkers <= 0 {
		return fmt.Errorf("SCRAPER_WORKERS must be positive, got %d", c.ScraperWorkers)
	}
	if c.ScraperMaxRetries < 0 {
		return fmt.Errorf("SCRAPER_MAX_RETRIES must not be negative, got %d", c.ScraperMaxRetries)
	}
	if c.ScraperTimeout < time.Second {
		return fmt.Errorf("SCRAPER_TIMEOUT too small: %s", c.ScraperTimeout)
	}
	return nil
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "timetable.db")
}

// defaultAcademicYear derives the "YYYY/YYYY+1" label from the current date.
// The academic year rolls over in August.
func defaultAcademicYear() string {
	now := time.Now()
	year := now.Year()
	if now.Month() < time.August {
		year--
	}
	return fmt.Sprintf("%d/%d", year, year+1)
}
