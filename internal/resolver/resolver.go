// Package resolver turns a user's subject selection and a requested day into
// rendered schedule text, going through the rendered-text cache, the persisted
// schedule store, and finally a live fetch, in that order.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/isu-schedule/telebot-go/internal/ctxutil"
	domerrors "github.com/isu-schedule/telebot-go/internal/errors"
	"github.com/isu-schedule/telebot-go/internal/logger"
	"github.com/isu-schedule/telebot-go/internal/metrics"
	"github.com/isu-schedule/telebot-go/internal/scraper"
	"github.com/isu-schedule/telebot-go/internal/scraper/isu"
	"github.com/isu-schedule/telebot-go/internal/storage"
	"github.com/isu-schedule/telebot-go/internal/timetable"
)

// Resolution sources reported to metrics.
const (
	sourceCache = "cache"
	sourceStore = "store"
	sourceLive  = "live"
)

// Store is the persistence surface the resolver needs.
type Store interface {
	GetSubject(ctx context.Context, kind timetable.SubjectKind, name string, semester int) (*timetable.Subject, error)
	GetTimetable(ctx context.Context, ref storage.SubjectRef) (*storage.TimetableRecord, error)
	SaveTimetable(ctx context.Context, ref storage.SubjectRef, schedule *timetable.Schedule, now time.Time) error
	CacheGet(ctx context.Context, key string) (string, bool, error)
	CacheSet(ctx context.Context, key, value string) error
}

// Fetcher retrieves live schedule markup from the remote source.
type Fetcher interface {
	FetchTimetable(ctx context.Context, sel isu.Selection) (*goquery.Document, error)
}

// Resolver resolves schedule text for users. Safe for concurrent use;
// concurrent live fetches for the same subject collapse into one request.
type Resolver struct {
	store   Store
	fetcher Fetcher
	metrics *metrics.Metrics
	log     *logger.Logger
	flight  *scraper.FlightGroup
	now     func() time.Time
}

// New creates a resolver.
func New(store Store, fetcher Fetcher, m *metrics.Metrics, log *logger.Logger) *Resolver {
	return &Resolver{
		store:   store,
		fetcher: fetcher,
		metrics: m,
		log:     log.WithModule("resolver"),
		flight:  scraper.NewFlightGroup(),
		now:     time.Now,
	}
}

// ResolveDay returns the rendered schedule text for one day of the user's
// selected subject. Returns ErrNoSubject when the user has not picked a group
// or teacher, and ErrNoSchedule when the subject's schedule is entirely empty.
func (r *Resolver) ResolveDay(ctx context.Context, user *storage.User, day string) (string, error) {
	if !user.HasSubject() {
		return "", domerrors.ErrNoSubject
	}

	start := r.now()
	key := timetable.CacheKey(user.SubjectName, user.Semester, day)

	if text, hit := r.cached(ctx, key); hit {
		r.record(sourceCache, "success", start)
		return text, nil
	}

	schedule, source, err := r.schedule(ctx, user)
	if err != nil {
		r.record(source, "error", start)
		return "", err
	}

	text := timetable.ComposeDay(schedule, day)
	r.cacheStore(ctx, key, text)
	r.record(source, "success", start)
	return text, nil
}

// ResolveWeek returns the rendered schedule for every published day of the
// user's subject, one string per day. The whole week is cached as a single
// bundled value.
func (r *Resolver) ResolveWeek(ctx context.Context, user *storage.User) ([]string, error) {
	if !user.HasSubject() {
		return nil, domerrors.ErrNoSubject
	}

	start := r.now()
	key := timetable.WeekCacheKey(user.SubjectName, user.Semester)

	if bundle, hit := r.cached(ctx, key); hit {
		r.record(sourceCache, "success", start)
		return timetable.SplitBundle(bundle), nil
	}

	schedule, source, err := r.schedule(ctx, user)
	if err != nil {
		r.record(source, "error", start)
		return nil, err
	}

	messages := timetable.ComposeAll(schedule)
	r.cacheStore(ctx, key, timetable.JoinBundle(messages))
	r.record(source, "success", start)
	return messages, nil
}

// schedule returns a usable parsed schedule for the user's subject: a fresh
// persisted one when available, otherwise a live fetch. A stale persisted
// schedule is served as a fallback when the live fetch fails.
func (r *Resolver) schedule(ctx context.Context, user *storage.User) (*timetable.Schedule, string, error) {
	ref := storage.SubjectRef{Kind: user.SubjectKind, Name: user.SubjectName, Semester: user.Semester}

	record, err := r.store.GetTimetable(ctx, ref)
	if err != nil && !errors.Is(err, domerrors.ErrNotFound) {
		return nil, sourceStore, fmt.Errorf("load timetable: %w", err)
	}
	if record != nil && !timetable.IsStale(time.Unix(record.LastUpdated, 0), r.now()) {
		if len(record.Schedule.Days) == 0 {
			return nil, sourceStore, domerrors.ErrNoSchedule
		}
		return record.Schedule, sourceStore, nil
	}

	schedule, err := r.fetchLive(ctx, ref)
	if err != nil {
		if record != nil && len(record.Schedule.Days) > 0 {
			r.log.Warn("live fetch failed, serving stale schedule",
				"kind", ref.Kind, "name", ref.Name,
				"chat_id", ctxutil.GetChatID(ctx), "error", err)
			return record.Schedule, sourceStore, nil
		}
		return nil, sourceLive, err
	}
	if len(schedule.Days) == 0 {
		return nil, sourceLive, domerrors.ErrNoSchedule
	}
	return schedule, sourceLive, nil
}

// fetchLive fetches, parses and persists the subject's schedule. Concurrent
// calls for the same subject share one fetch.
func (r *Resolver) fetchLive(ctx context.Context, ref storage.SubjectRef) (*timetable.Schedule, error) {
	flightKey := timetable.WeekCacheKey(ref.Name, ref.Semester)
	ran := false

	value, err := r.flight.Do(ctx, flightKey, func() (interface{}, error) {
		ran = true
		subject, err := r.store.GetSubject(ctx, ref.Kind, ref.Name, ref.Semester)
		if err != nil {
			if errors.Is(err, domerrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: %s %q", domerrors.ErrSubjectNotFound, ref.Kind, ref.Name)
			}
			return nil, fmt.Errorf("lookup subject: %w", err)
		}

		fetchStart := r.now()
		doc, err := r.fetcher.FetchTimetable(ctx, isu.Selection{
			Kind:       subject.Kind,
			ExternalID: subject.ExternalID,
			Semester:   subject.Semester,
		})
		elapsed := r.now().Sub(fetchStart).Seconds()
		if err != nil {
			if errors.Is(err, domerrors.ErrSubjectNotFound) {
				r.metrics.RecordScraperRequest(string(ref.Kind), "not_found", elapsed)
				return nil, err
			}
			r.metrics.RecordScraperRequest(string(ref.Kind), "error", elapsed)
			return nil, domerrors.NewUpstreamError("fetch", err)
		}
		r.metrics.RecordScraperRequest(string(ref.Kind), "success", elapsed)

		schedule, err := timetable.Parse(doc)
		if err != nil {
			return nil, domerrors.NewUpstreamError("parse", err)
		}

		if err := r.store.SaveTimetable(ctx, ref, schedule, r.now()); err != nil {
			r.log.Error("failed to persist fetched schedule",
				"kind", ref.Kind, "name", ref.Name, "error", err)
		}
		return schedule, nil
	})
	if !ran {
		// This call joined a fetch already in flight for the same subject.
		r.metrics.RecordSingleflightDedup("timetable")
	}
	if err != nil {
		return nil, err
	}
	return value.(*timetable.Schedule), nil
}

func (r *Resolver) cached(ctx context.Context, key string) (string, bool) {
	text, hit, err := r.store.CacheGet(ctx, key)
	if err != nil {
		r.log.Error("cache read failed", "key", key, "error", err)
		return "", false
	}
	if hit {
		r.metrics.RecordCacheHit("resolve")
		return text, true
	}
	r.metrics.RecordCacheMiss("resolve")
	return "", false
}

func (r *Resolver) cacheStore(ctx context.Context, key, value string) {
	if err := r.store.CacheSet(ctx, key, value); err != nil {
		r.log.Error("cache write failed", "key", key, "error", err)
	}
}

func (r *Resolver) record(source, status string, start time.Time) {
	r.metrics.RecordResolve(source, status, r.now().Sub(start).Seconds())
}
