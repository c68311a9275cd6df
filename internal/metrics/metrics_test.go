package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNew(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	if m == nil {
		t.Fatal("New() returned nil")
	}

	// Verify all metric fields are initialized
	if m.ScraperRequestsTotal == nil {
		t.Error("ScraperRequestsTotal is nil")
	}
	if m.ScraperDurationSeconds == nil {
		t.Error("ScraperDurationSeconds is nil")
	}
	if m.CacheHitsTotal == nil {
		t.Error("CacheHitsTotal is nil")
	}
	if m.CacheMissesTotal == nil {
		t.Error("CacheMissesTotal is nil")
	}
	if m.ResolveDurationSeconds == nil {
		t.Error("ResolveDurationSeconds is nil")
	}
	if m.ResolveRequestsTotal == nil {
		t.Error("ResolveRequestsTotal is nil")
	}
	if m.UpdateDurationSeconds == nil {
		t.Error("UpdateDurationSeconds is nil")
	}
	if m.UpdatesTotal == nil {
		t.Error("UpdatesTotal is nil")
	}
	if m.JobRunsTotal == nil {
		t.Error("JobRunsTotal is nil")
	}
	if m.JobDurationSeconds == nil {
		t.Error("JobDurationSeconds is nil")
	}
	if m.BroadcastMessagesTotal == nil {
		t.Error("BroadcastMessagesTotal is nil")
	}
	if m.SingleflightDedupTotal == nil {
		t.Error("SingleflightDedupTotal is nil")
	}
}

func TestRecordHelpers(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := New(registry)

	// Should not panic
	m.RecordScraperRequest("group", "success", 1.5)
	m.RecordScraperRequest("teacher", "not_found", 0.8)
	m.RecordCacheHit("day")
	m.RecordCacheMiss("week")
	m.RecordResolve("cache", "success", 0.002)
	m.RecordResolve("live", "error", 12.5)
	m.RecordUpdate("day", "success", 0.1)
	m.RecordJobRun("schedule_refresh", "success", 240)
	m.RecordBroadcastMessage("sent")
	m.RecordSingleflightDedup("semester_form")

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() failed: %v", err)
	}
	if len(families) == 0 {
		t.Error("expected gathered metric families after recording")
	}
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	_ = New(registry)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	_ = New(registry)
}
