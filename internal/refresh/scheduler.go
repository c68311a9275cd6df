package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/isu-schedule/telebot-go/internal/config"
	"github.com/isu-schedule/telebot-go/internal/logger"
)

// Scheduler runs the job bundle on cron schedules.
type Scheduler struct {
	cron *cron.Cron
	jobs *Jobs
	log  *logger.Logger
}

// NewScheduler creates a scheduler with standard 5-field cron specs.
func NewScheduler(jobs *Jobs, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		jobs: jobs,
		log:  log.WithModule("scheduler"),
	}
}

// Start registers the jobs and starts the cron loop. refreshSpec drives the
// catalog and schedule refresh, broadcastSpec the daily broadcast; expired
// cache entries are reaped hourly.
func (s *Scheduler) Start(refreshSpec, broadcastSpec string) error {
	if _, err := s.cron.AddFunc(refreshSpec, func() {
		s.run("catalog refresh", config.CatalogRefreshTimeout, s.jobs.RefreshCatalog)
		s.run("schedule refresh", config.ScheduleRefreshTimeout, s.jobs.RefreshSchedules)
	}); err != nil {
		return fmt.Errorf("register refresh job: %w", err)
	}

	if _, err := s.cron.AddFunc(broadcastSpec, func() {
		s.run("broadcast", config.BroadcastTimeout, s.jobs.Broadcast)
	}); err != nil {
		return fmt.Errorf("register broadcast job: %w", err)
	}

	if _, err := s.cron.AddFunc("@hourly", func() {
		s.run("cache cleanup", time.Minute, s.jobs.CleanupCache)
	}); err != nil {
		return fmt.Errorf("register cleanup job: %w", err)
	}

	s.cron.Start()
	s.log.Info("scheduler started",
		"refresh_schedule", refreshSpec, "broadcast_schedule", broadcastSpec)
	return nil
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) run(name string, timeout time.Duration, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		s.log.Error("job finished with errors", "job", name, "error", err)
	}
}
