package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Scraper metrics
	ScraperRequestsTotal   *prometheus.CounterVec
	ScraperDurationSeconds *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// Resolve metrics
	ResolveDurationSeconds *prometheus.HistogramVec
	ResolveRequestsTotal   *prometheus.CounterVec

	// Bot update metrics
	UpdateDurationSeconds *prometheus.HistogramVec
	UpdatesTotal          *prometheus.CounterVec

	// Background job metrics
	JobRunsTotal       *prometheus.CounterVec
	JobDurationSeconds *prometheus.HistogramVec

	// Broadcast metrics
	BroadcastMessagesTotal *prometheus.CounterVec

	// Singleflight metrics
	SingleflightDedupTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Scraper metrics
		ScraperRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "isubot_scraper_requests_total",
				Help: "Total number of scraper requests by kind and status",
			},
			[]string{"kind", "status"}, // status: success, error, not_found
		),

		ScraperDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "isubot_scraper_duration_seconds",
				Help:    "Scraper request duration in seconds by kind",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60}, // Matches 60s timeout + backoff
			},
			[]string{"kind"}, // kind: group, teacher, catalog, week
		),

		// Cache metrics
		CacheHitsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "isubot_cache_hits_total",
				Help: "Total number of rendered-text cache hits by kind",
			},
			[]string{"kind"},
		),

		CacheMissesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "isubot_cache_misses_total",
				Help: "Total number of rendered-text cache misses by kind",
			},
			[]string{"kind"},
		),

		// Resolve metrics
		ResolveDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "isubot_resolve_duration_seconds",
				Help:    "End-to-end schedule resolution duration by source",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"source"}, // source: cache, store, live
		),

		ResolveRequestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "isubot_resolve_requests_total",
				Help: "Total schedule resolutions by source and status",
			},
			[]string{"source", "status"}, // status: success, error
		),

		// Bot update metrics
		UpdateDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "isubot_update_duration_seconds",
				Help:    "Telegram update processing duration by handler",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 30},
			},
			[]string{"handler"}, // handler: start, day, week, group, teacher, semester, callback
		),

		UpdatesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "isubot_updates_total",
				Help: "Total Telegram updates by handler and status",
			},
			[]string{"handler", "status"}, // status: success, error
		),

		// Background job metrics
		JobRunsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "isubot_job_runs_total",
				Help: "Total background job runs by job and status",
			},
			[]string{"job", "status"}, // job: catalog_refresh, schedule_refresh, broadcast, cache_cleanup
		),

		JobDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "isubot_job_duration_seconds",
				Help:    "Background job duration in seconds by job",
				Buckets: []float64{1, 10, 30, 60, 120, 300, 600, 1800}, // 1s to 30min
			},
			[]string{"job"},
		),

		// Broadcast metrics
		BroadcastMessagesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "isubot_broadcast_messages_total",
				Help: "Total daily broadcast messages by status",
			},
			[]string{"status"}, // status: sent, skipped, error
		),

		// Singleflight metrics
		SingleflightDedupTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "isubot_singleflight_dedup_total",
				Help: "Total number of deduplicated requests (requests that waited instead of executing)",
			},
			[]string{"kind"},
		),
	}

	return m
}

// RecordScraperRequest records a scraper request with status
func (m *Metrics) RecordScraperRequest(kind, status string, duration float64) {
	m.ScraperRequestsTotal.WithLabelValues(kind, status).Inc()
	m.ScraperDurationSeconds.WithLabelValues(kind).Observe(duration)
}

// RecordCacheHit records a rendered-text cache hit
func (m *Metrics) RecordCacheHit(kind string) {
	m.CacheHitsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheMiss records a rendered-text cache miss
func (m *Metrics) RecordCacheMiss(kind string) {
	m.CacheMissesTotal.WithLabelValues(kind).Inc()
}

// RecordResolve records one schedule resolution
func (m *Metrics) RecordResolve(source, status string, duration float64) {
	m.ResolveRequestsTotal.WithLabelValues(source, status).Inc()
	m.ResolveDurationSeconds.WithLabelValues(source).Observe(duration)
}

// RecordUpdate records a processed Telegram update
func (m *Metrics) RecordUpdate(handler, status string, duration float64) {
	m.UpdatesTotal.WithLabelValues(handler, status).Inc()
	m.UpdateDurationSeconds.WithLabelValues(handler).Observe(duration)
}

// RecordJobRun records a background job run
func (m *Metrics) RecordJobRun(job, status string, duration float64) {
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
	m.JobDurationSeconds.WithLabelValues(job).Observe(duration)
}

// RecordBroadcastMessage records one broadcast delivery attempt
func (m *Metrics) RecordBroadcastMessage(status string) {
	m.BroadcastMessagesTotal.WithLabelValues(status).Inc()
}

// RecordSingleflightDedup records a deduplicated request
func (m *Metrics) RecordSingleflightDedup(kind string) {
	m.SingleflightDedupTotal.WithLabelValues(kind).Inc()
}
