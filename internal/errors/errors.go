// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found in storage.
	ErrNotFound = errors.New("resource not found")

	// ErrSubjectNotFound indicates the remote timetable system knows no such
	// group or teacher.
	ErrSubjectNotFound = errors.New("subject not found on remote source")

	// ErrNoTimetable indicates the fetched markup contains no schedule table.
	ErrNoTimetable = errors.New("no timetable found")

	// ErrNoSubject indicates the user has configured neither a group nor a teacher.
	ErrNoSubject = errors.New("no group or teacher configured")

	// ErrNoSchedule indicates no schedule exists for the resolved subject,
	// neither persisted nor via a live fetch.
	ErrNoSchedule = errors.New("no schedule available")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")
)

// ScraperError represents a failure while talking to the remote timetable
// source, with enough context to log for operators.
type ScraperError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *ScraperError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("scraper error (url=%s, status=%d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("scraper error (url=%s): %v", e.URL, e.Err)
}

func (e *ScraperError) Unwrap() error {
	return e.Err
}

// NewScraperError creates a new scraper error.
func NewScraperError(url string, statusCode int, err error) *ScraperError {
	return &ScraperError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// UpstreamError wraps a fetch or parse failure so the bot layer can translate
// it into a user-facing "try again" message while keeping the cause for logs.
type UpstreamError struct {
	Stage string // "fetch" or "parse"
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s failed: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError wraps err with the pipeline stage that produced it.
// Returns nil if err is nil.
func NewUpstreamError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Stage: stage, Err: err}
}
