// Package isu fetches raw timetable markup from the ISU schedule service
// using direct parameterized HTTP requests against the same form endpoint the
// browser UI submits to.
package isu

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	domerrors "github.com/isu-schedule/telebot-go/internal/errors"
	"github.com/isu-schedule/telebot-go/internal/scraper"
	"github.com/isu-schedule/telebot-go/internal/sliceutil"
	"github.com/isu-schedule/telebot-go/internal/timetable"
)

// Query parameter names of the ISU schedule form.
const (
	semesterParam = "schedule_semestr_id"
	whatShowParam = "WhatShow"
	groupParam    = "student_group_id"
	teacherParam  = "teacher"

	whatShowGroup   = "1"
	whatShowTeacher = "2"
)

// semesterLabels maps the internal semester number to the label shown in the
// semester <select>, parameterized by academic year.
var semesterLabels = map[int]string{
	1: "Осенний семестр %s",
	2: "Весенний семестр %s",
}

var weekLabelRegex = regexp.MustCompile(`\d+-я\s+неделя`)

// Selection identifies what to fetch: one subject kind, its remote
// identifier, and the semester.
type Selection struct {
	Kind       timetable.SubjectKind
	ExternalID string
	Semester   int
}

// CatalogEntry is one (externalID, name) pair from the subject selection form.
type CatalogEntry struct {
	ExternalID string
	Name       string
}

// Fetcher issues requests against the ISU schedule endpoint. One external
// HTTP call per fetch; retries live in the transport client, not here.
type Fetcher struct {
	client       *scraper.Client
	flight       *scraper.FlightGroup
	baseURL      string
	academicYear string

	mu          sync.RWMutex
	semesterIDs map[int]string // semester number -> remote select value
}

// NewFetcher creates a fetcher for the given schedule endpoint.
// academicYear (e.g. "2024/2025") selects the right semester options.
func NewFetcher(client *scraper.Client, baseURL, academicYear string) *Fetcher {
	return &Fetcher{
		client:       client,
		flight:       scraper.NewFlightGroup(),
		baseURL:      strings.TrimRight(baseURL, "/") + "/",
		academicYear: academicYear,
		semesterIDs:  make(map[int]string),
	}
}

// FetchTimetable retrieves the schedule page for a selection.
// Returns ErrSubjectNotFound when the remote system renders no schedule table
// for the selection, and a ScraperError on transport failure.
func (f *Fetcher) FetchTimetable(ctx context.Context, sel Selection) (*goquery.Document, error) {
	semesterID, err := f.semesterID(ctx, sel.Semester)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set(semesterParam, semesterID)
	switch sel.Kind {
	case timetable.SubjectTeacher:
		params.Set(whatShowParam, whatShowTeacher)
		params.Set(teacherParam, sel.ExternalID)
	default:
		params.Set(whatShowParam, whatShowGroup)
		params.Set(groupParam, sel.ExternalID)
	}

	doc, err := f.client.GetDocument(ctx, f.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	if doc.Find("table").Length() == 0 {
		return nil, fmt.Errorf("%w: %s %s, semester %d",
			domerrors.ErrSubjectNotFound, sel.Kind, sel.ExternalID, sel.Semester)
	}

	return doc, nil
}

// ListSubjects enumerates all valid subjects of a kind for a semester from
// the selection form's <select> options. Used by the catalog refresh job.
func (f *Fetcher) ListSubjects(ctx context.Context, kind timetable.SubjectKind, semester int) ([]CatalogEntry, error) {
	semesterID, err := f.semesterID(ctx, semester)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set(semesterParam, semesterID)
	selectName := groupParam
	if kind == timetable.SubjectTeacher {
		params.Set(whatShowParam, whatShowTeacher)
		selectName = teacherParam
	} else {
		params.Set(whatShowParam, whatShowGroup)
	}

	doc, err := f.client.GetDocument(ctx, f.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var entries []CatalogEntry
	doc.Find(fmt.Sprintf("select[name=%s] option", selectName)).Each(func(_ int, option *goquery.Selection) {
		value, _ := option.Attr("value")
		name := strings.TrimSpace(option.Text())
		// The first option is a "choose..." placeholder with an empty value.
		if value == "" || name == "" {
			return
		}
		entries = append(entries, CatalogEntry{ExternalID: value, Name: name})
	})

	// The form occasionally repeats options; keep the first of each id.
	return sliceutil.Deduplicate(entries, func(e CatalogEntry) string { return e.ExternalID }), nil
}

// FetchWeekLabel retrieves the "N-я неделя" banner for the semester, used in
// daily broadcast messages. Returns an empty string when the page carries no
// banner; broadcasts simply omit it.
func (f *Fetcher) FetchWeekLabel(ctx context.Context, semester int) (string, error) {
	semesterID, err := f.semesterID(ctx, semester)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set(semesterParam, semesterID)

	doc, err := f.client.GetDocument(ctx, f.baseURL+"?"+params.Encode())
	if err != nil {
		return "", err
	}

	return weekLabelRegex.FindString(doc.Text()), nil
}

// semesterID resolves the remote select value for a semester number, fetching
// and caching the semester form once. Concurrent resolutions of a cold cache
// collapse into a single request.
func (f *Fetcher) semesterID(ctx context.Context, semester int) (string, error) {
	labelFormat, ok := semesterLabels[semester]
	if !ok {
		return "", fmt.Errorf("%w: semester must be 1 or 2, got %d", domerrors.ErrInvalidInput, semester)
	}
	label := fmt.Sprintf(labelFormat, f.academicYear)

	f.mu.RLock()
	id, cached := f.semesterIDs[semester]
	f.mu.RUnlock()
	if cached {
		return id, nil
	}

	_, err := f.flight.Do(ctx, "semester-form", func() (interface{}, error) {
		doc, err := f.client.GetDocument(ctx, f.baseURL)
		if err != nil {
			return nil, err
		}

		resolved := make(map[string]string)
		doc.Find(fmt.Sprintf("select[name=%s] option", semesterParam)).Each(func(_ int, option *goquery.Selection) {
			value, _ := option.Attr("value")
			if value == "" {
				return
			}
			resolved[strings.TrimSpace(option.Text())] = value
		})

		f.mu.Lock()
		for num, format := range semesterLabels {
			if value, ok := resolved[fmt.Sprintf(format, f.academicYear)]; ok {
				f.semesterIDs[num] = value
			}
		}
		f.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		return "", err
	}

	f.mu.RLock()
	id, cached = f.semesterIDs[semester]
	f.mu.RUnlock()
	if !cached {
		f.flight.Forget("semester-form")
		return "", fmt.Errorf("%w: semester option %q not on form", domerrors.ErrSubjectNotFound, label)
	}
	return id, nil
}
