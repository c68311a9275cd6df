// Package sentry wraps Sentry SDK initialization for error tracking.
package sentry

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// Initialize sets up the Sentry SDK. An empty DSN disables error tracking
// and returns nil.
func Initialize(dsn, environment, release string) error {
	if dsn == "" {
		return nil // Sentry disabled
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
	})
}

// Flush waits for buffered events to be sent to the server.
// Returns true if all events were sent within the timeout.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}

// IsEnabled returns true if Sentry is initialized and active.
func IsEnabled() bool {
	return sentry.CurrentHub().Client() != nil
}

// CaptureException captures an error and sends it to Sentry.
func CaptureException(err error) {
	sentry.CaptureException(err)
}
