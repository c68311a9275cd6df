package config

import "time"

// Centralized timeout constants. Scraping the ISU page is slow (seconds per
// request), so scraper-facing timeouts are generous; user-facing ones are not.
const (
	// ResolveTimeout bounds a single /day resolution, including a possible
	// live fetch and parse.
	ResolveTimeout = 90 * time.Second

	// CatalogRefreshTimeout bounds one full catalog refresh run (both kinds,
	// both semesters).
	CatalogRefreshTimeout = 10 * time.Minute

	// ScheduleRefreshTimeout bounds one full schedule refresh run across all
	// persisted subjects.
	ScheduleRefreshTimeout = 30 * time.Minute

	// BroadcastTimeout bounds the daily broadcast to all configured users.
	BroadcastTimeout = 15 * time.Minute

	// HTTPReadTimeout is the server-side read timeout for webhook requests.
	HTTPReadTimeout = 10 * time.Second

	// HTTPWriteTimeout is the server-side write timeout.
	HTTPWriteTimeout = 30 * time.Second
)
