package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://isu.ugatu.su/api/new_schedule_api/", cfg.ScheduleBaseURL)
	assert.Equal(t, 10, cfg.ScraperWorkers)
	assert.Equal(t, 60*time.Second, cfg.ScraperTimeout)
	assert.Equal(t, "0 */6 * * *", cfg.RefreshSchedule)
	assert.Contains(t, cfg.SQLitePath(), "timetable.db")
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	base := func() *Config {
		return &Config{
			TelegramToken:   "123:abc",
			ScheduleBaseURL: "https://isu.ugatu.su/api/new_schedule_api/",
			ScraperTimeout:  30 * time.Second,
			ScraperWorkers:  10,
		}
	}

	cfg := base()
	cfg.ScraperWorkers = 0
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.ScraperMaxRetries = -1
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.ScraperTimeout = 100 * time.Millisecond
	assert.Error(t, cfg.Validate())

	assert.NoError(t, base().Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("SCRAPER_WORKERS", "4")
	t.Setenv("SCRAPER_TIMEOUT", "45s")
	t.Setenv("ACADEMIC_YEAR", "2024/2025")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.ScraperWorkers)
	assert.Equal(t, 45*time.Second, cfg.ScraperTimeout)
	assert.Equal(t, "2024/2025", cfg.AcademicYear)
}
