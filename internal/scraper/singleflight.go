package scraper

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// FlightGroup deduplicates concurrent scrape operations for the same key,
// e.g. the semester-form landing page that every fetch needs first.
type FlightGroup struct {
	group singleflight.Group
}

// NewFlightGroup creates a new flight group
func NewFlightGroup() *FlightGroup {
	return &FlightGroup{}
}

// Do executes fn, collapsing concurrent calls with the same key into a
// single execution whose result is shared.
func (f *FlightGroup) Do(ctx context.Context, key string, fn func() (interface{}, error)) (interface{}, error) {
	result, err, _ := f.group.Do(key, func() (interface{}, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return fn()
	})
	return result, err
}

// Forget removes a key, allowing the next call to execute fresh.
func (f *FlightGroup) Forget(key string) {
	f.group.Forget(key)
}
