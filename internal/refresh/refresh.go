// Package refresh holds the background jobs: catalog refresh, schedule
// refresh, cache maintenance and the daily broadcast.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/isu-schedule/telebot-go/internal/bot"
	domerrors "github.com/isu-schedule/telebot-go/internal/errors"
	"github.com/isu-schedule/telebot-go/internal/logger"
	"github.com/isu-schedule/telebot-go/internal/metrics"
	"github.com/isu-schedule/telebot-go/internal/scraper/isu"
	"github.com/isu-schedule/telebot-go/internal/storage"
	"github.com/isu-schedule/telebot-go/internal/timetable"
)

// refreshWorkers caps concurrent schedule fetches during a refresh run.
const refreshWorkers = 10

// Fetcher is the remote-source surface the jobs need.
type Fetcher interface {
	FetchTimetable(ctx context.Context, sel isu.Selection) (*goquery.Document, error)
	ListSubjects(ctx context.Context, kind timetable.SubjectKind, semester int) ([]isu.CatalogEntry, error)
	FetchWeekLabel(ctx context.Context, semester int) (string, error)
}

// Store is the persistence surface the jobs need.
type Store interface {
	SaveSubjectsBatch(ctx context.Context, subjects []timetable.Subject) error
	GetSubject(ctx context.Context, kind timetable.SubjectKind, name string, semester int) (*timetable.Subject, error)
	SaveTimetable(ctx context.Context, ref storage.SubjectRef, schedule *timetable.Schedule, now time.Time) error
	DistinctUserSubjects(ctx context.Context) ([]storage.SubjectRef, error)
	ListSubscribedUsers(ctx context.Context) ([]storage.User, error)
	CacheFlush(ctx context.Context) error
	CacheCleanup(ctx context.Context) (int64, error)
}

// DayResolver renders one day of a user's schedule, cache-aware.
type DayResolver interface {
	ResolveDay(ctx context.Context, user *storage.User, day string) (string, error)
}

// Sender delivers broadcast text to a chat.
type Sender interface {
	SendChunked(chatID int64, text string)
}

// Jobs bundles the background job implementations.
type Jobs struct {
	store    Store
	fetcher  Fetcher
	resolver DayResolver
	sender   Sender
	metrics  *metrics.Metrics
	log      *logger.Logger
	now      func() time.Time
}

// New creates the job bundle.
func New(store Store, fetcher Fetcher, res DayResolver, sender Sender, m *metrics.Metrics, log *logger.Logger) *Jobs {
	return &Jobs{
		store:    store,
		fetcher:  fetcher,
		resolver: res,
		sender:   sender,
		metrics:  m,
		log:      log.WithModule("refresh"),
		now:      time.Now,
	}
}

// RefreshCatalog re-scrapes the group and teacher lists for both semesters
// and upserts them into the catalog. A failed (kind, semester) pair is logged
// and skipped; the rest of the catalog still refreshes.
func (j *Jobs) RefreshCatalog(ctx context.Context) error {
	start := j.now()
	var failed int

	for _, kind := range []timetable.SubjectKind{timetable.SubjectGroup, timetable.SubjectTeacher} {
		for semester := 1; semester <= 2; semester++ {
			listStart := j.now()
			entries, err := j.fetcher.ListSubjects(ctx, kind, semester)
			if err != nil {
				j.metrics.RecordScraperRequest("catalog", "error", j.now().Sub(listStart).Seconds())
				j.log.Error("catalog listing failed",
					"kind", kind, "semester", semester, "error", err)
				failed++
				continue
			}
			j.metrics.RecordScraperRequest("catalog", "success", j.now().Sub(listStart).Seconds())

			subjects := make([]timetable.Subject, 0, len(entries))
			for _, entry := range entries {
				subjects = append(subjects, timetable.Subject{
					Kind:       kind,
					Name:       entry.Name,
					ExternalID: entry.ExternalID,
					Semester:   semester,
				})
			}
			if err := j.store.SaveSubjectsBatch(ctx, subjects); err != nil {
				j.log.Error("catalog save failed",
					"kind", kind, "semester", semester, "error", err)
				failed++
				continue
			}
			j.log.Info("catalog refreshed",
				"kind", kind, "semester", semester, "subjects", len(subjects))
		}
	}

	status := "success"
	var err error
	if failed > 0 {
		status = "error"
		err = fmt.Errorf("catalog refresh: %d of 4 listings failed", failed)
	}
	j.metrics.RecordJobRun("catalog_refresh", status, j.now().Sub(start).Seconds())
	return err
}

// RefreshSchedules re-fetches every subject at least one user follows,
// persists the parsed schedules and flushes the rendered-text cache so the
// next request re-renders from fresh data. Per-subject failures are logged,
// not fatal.
func (j *Jobs) RefreshSchedules(ctx context.Context) error {
	start := j.now()

	refs, err := j.store.DistinctUserSubjects(ctx)
	if err != nil {
		j.metrics.RecordJobRun("schedule_refresh", "error", j.now().Sub(start).Seconds())
		return fmt.Errorf("list followed subjects: %w", err)
	}

	var group errgroup.Group
	group.SetLimit(refreshWorkers)
	failures := make([]error, len(refs))

	for i, ref := range refs {
		group.Go(func() error {
			if err := j.refreshOne(ctx, ref); err != nil {
				j.log.Error("schedule refresh failed",
					"kind", ref.Kind, "name", ref.Name, "semester", ref.Semester, "error", err)
				failures[i] = err
			}
			return nil
		})
	}
	_ = group.Wait()

	var failed int
	for _, err := range failures {
		if err != nil {
			failed++
		}
	}

	if err := j.store.CacheFlush(ctx); err != nil {
		j.log.Error("cache flush failed", "error", err)
	}

	status := "success"
	if failed > 0 {
		status = "error"
		err = fmt.Errorf("schedule refresh: %d of %d subjects failed", failed, len(refs))
	}
	j.log.Info("schedule refresh finished",
		"subjects", len(refs), "failed", failed, "duration", j.now().Sub(start).String())
	j.metrics.RecordJobRun("schedule_refresh", status, j.now().Sub(start).Seconds())
	return err
}

func (j *Jobs) refreshOne(ctx context.Context, ref storage.SubjectRef) error {
	subject, err := j.store.GetSubject(ctx, ref.Kind, ref.Name, ref.Semester)
	if err != nil {
		return fmt.Errorf("lookup subject: %w", err)
	}

	doc, err := j.fetcher.FetchTimetable(ctx, isu.Selection{
		Kind:       subject.Kind,
		ExternalID: subject.ExternalID,
		Semester:   subject.Semester,
	})
	if err != nil {
		return err
	}

	schedule, err := timetable.Parse(doc)
	if err != nil {
		return err
	}
	return j.store.SaveTimetable(ctx, ref, schedule, j.now())
}

// CleanupCache drops expired rendered-text entries.
func (j *Jobs) CleanupCache(ctx context.Context) error {
	start := j.now()
	deleted, err := j.store.CacheCleanup(ctx)
	status := "success"
	if err != nil {
		status = "error"
		j.log.Error("cache cleanup failed", "error", err)
	} else if deleted > 0 {
		j.log.Info("cache cleanup finished", "deleted", deleted)
	}
	j.metrics.RecordJobRun("cache_cleanup", status, j.now().Sub(start).Seconds())
	return err
}

// Broadcast sends today's schedule to every user with a configured subject,
// prefixed with the current "N-я неделя" banner when the source publishes
// one. Per-user failures are logged, not fatal.
func (j *Jobs) Broadcast(ctx context.Context) error {
	start := j.now()
	today := bot.DayForTime(j.now())

	users, err := j.store.ListSubscribedUsers(ctx)
	if err != nil {
		j.metrics.RecordJobRun("broadcast", "error", j.now().Sub(start).Seconds())
		return fmt.Errorf("list subscribed users: %w", err)
	}

	weekLabels := make(map[int]string)
	var failed int

	for _, user := range users {
		text, err := j.resolver.ResolveDay(ctx, &user, today)
		if err != nil {
			if errors.Is(err, domerrors.ErrNoSchedule) || errors.Is(err, domerrors.ErrSubjectNotFound) {
				j.metrics.RecordBroadcastMessage("skipped")
				continue
			}
			j.log.Error("broadcast resolution failed", "chat_id", user.ChatID, "error", err)
			j.metrics.RecordBroadcastMessage("error")
			failed++
			continue
		}

		if label, err := j.weekLabel(ctx, weekLabels, user.Semester); err == nil && label != "" {
			text = label + "\n\n" + text
		}

		j.sender.SendChunked(user.ChatID, text)
		j.metrics.RecordBroadcastMessage("sent")
	}

	status := "success"
	if failed > 0 {
		status = "error"
		err = fmt.Errorf("broadcast: %d of %d users failed", failed, len(users))
	} else {
		err = nil
	}
	j.log.Info("broadcast finished", "users", len(users), "failed", failed, "day", today)
	j.metrics.RecordJobRun("broadcast", status, j.now().Sub(start).Seconds())
	return err
}

// weekLabel fetches and memoizes the week banner per semester for one
// broadcast run.
func (j *Jobs) weekLabel(ctx context.Context, cache map[int]string, semester int) (string, error) {
	if label, ok := cache[semester]; ok {
		return label, nil
	}
	start := j.now()
	label, err := j.fetcher.FetchWeekLabel(ctx, semester)
	if err != nil {
		j.metrics.RecordScraperRequest("week", "error", j.now().Sub(start).Seconds())
		j.log.Warn("week label fetch failed", "semester", semester, "error", err)
		cache[semester] = ""
		return "", err
	}
	j.metrics.RecordScraperRequest("week", "success", j.now().Sub(start).Seconds())
	cache[semester] = label
	return label, nil
}
