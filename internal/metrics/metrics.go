// Package metrics defines the Prometheus metrics exported at /metrics.
//
// All Record methods are no-ops on a nil *Metrics so components can be
// constructed without instrumentation in tests.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Portal search index
	PortalRequestsTotal    *prometheus.CounterVec
	PortalDurationSeconds  prometheus.Histogram
	SingleflightDedupTotal *prometheus.CounterVec

	// Search pipeline
	FallbackAttempts    *prometheus.HistogramVec
	FallbackTopicsTotal *prometheus.CounterVec
	ChatRequestsTotal   *prometheus.CounterVec
	ChatDuration        *prometheus.HistogramVec
	AutocompleteTotal   *prometheus.CounterVec

	// LLM collaborators (translation, greeting)
	LLMRequestsTotal *prometheus.CounterVec
	LLMDuration      *prometheus.HistogramVec

	// Persistence
	PersistenceErrorsTotal *prometheus.CounterVec
	StoredRows             *prometheus.GaugeVec
	BackupsTotal           *prometheus.CounterVec

	// Webhook / HTTP
	WebhookRequestsTotal   *prometheus.CounterVec
	WebhookDurationSeconds *prometheus.HistogramVec
	HTTPErrorsTotal        *prometheus.CounterVec
	RateLimiterDropped     *prometheus.CounterVec
	RateLimiterActive      *prometheus.GaugeVec

	// Logging
	LogRecordsDroppedTotal prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		PortalRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_search_requests_total",
				Help: "Portal index requests by outcome",
			},
			[]string{"status"}, // status: hit, empty, error
		),
		PortalDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "portal_search_duration_seconds",
				Help:    "Portal index request latency",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
			},
		),
		SingleflightDedupTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_singleflight_dedup_total",
				Help: "Requests that shared an in-flight identical portal call",
			},
			[]string{"module"},
		),

		FallbackAttempts: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_fallback_attempts",
				Help:    "Candidates tried before a non-empty result or exhaustion",
				Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
			},
			[]string{"stage", "outcome"}, // stage: chain, topic; outcome: hit, exhausted
		),
		FallbackTopicsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_fallback_topic_total",
				Help: "Generic topic chosen after the candidate chain was exhausted",
			},
			[]string{"topic"},
		),
		ChatRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_requests_total",
				Help: "Chat requests by channel and search type",
			},
			[]string{"channel", "search_type"}, // search_type: greeting, direct_search, no_results
		),
		ChatDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chat_duration_seconds",
				Help:    "End-to-end chat pipeline latency",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"search_type"},
		),
		AutocompleteTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autocomplete_requests_total",
				Help: "Autocomplete requests by outcome",
			},
			[]string{"status"}, // status: short_query, results, no_results
		),

		LLMRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_requests_total",
				Help: "LLM calls by operation, provider and status",
			},
			[]string{"operation", "provider", "status"}, // operation: translate, greeting
		),
		LLMDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_duration_seconds",
				Help:    "LLM call latency",
				Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 12},
			},
			[]string{"operation"},
		),

		PersistenceErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "persistence_errors_total",
				Help: "Swallowed persistence failures by operation",
			},
			[]string{"operation"}, // operation: save_message, log_search
		),
		StoredRows: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "storage_rows",
				Help: "Rows currently stored by table",
			},
			[]string{"table"},
		),
		BackupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "storage_backups_total",
				Help: "Database backup attempts by status",
			},
			[]string{"status"}, // status: success, error, skipped
		),

		WebhookRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_requests_total",
				Help: "LINE webhook events by type and status",
			},
			[]string{"event_type", "status"},
		),
		WebhookDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "webhook_duration_seconds",
				Help:    "LINE event processing duration",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"event_type"},
		),
		HTTPErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_errors_total",
				Help: "HTTP errors by type and module",
			},
			[]string{"error_type", "module"}, // error_type: bad_request, invalid_signature, reply_failed
		),
		RateLimiterDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limiter_dropped_total",
				Help: "Requests denied by a rate limiter",
			},
			[]string{"limiter"},
		),
		RateLimiterActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rate_limiter_active_keys",
				Help: "Keys currently tracked by a keyed rate limiter",
			},
			[]string{"limiter"},
		),

		LogRecordsDroppedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "log_remote_dropped_records_total",
				Help: "Log records dropped by the remote log sink buffer",
			},
		),
	}
}

// RecordPortalRequest records one portal index call.
func (m *Metrics) RecordPortalRequest(status string, seconds float64) {
	if m == nil {
		return
	}
	m.PortalRequestsTotal.WithLabelValues(status).Inc()
	m.PortalDurationSeconds.Observe(seconds)
}

// RecordSingleflightDedup records a request that joined an in-flight call.
func (m *Metrics) RecordSingleflightDedup(module string) {
	if m == nil {
		return
	}
	m.SingleflightDedupTotal.WithLabelValues(module).Inc()
}

// RecordFallback records how many candidates a fallback stage tried.
func (m *Metrics) RecordFallback(stage string, attempts int, hit bool) {
	if m == nil {
		return
	}
	outcome := "exhausted"
	if hit {
		outcome = "hit"
	}
	m.FallbackAttempts.WithLabelValues(stage, outcome).Observe(float64(attempts))
}

// RecordFallbackTopic records the topic chosen by the topic fallback.
func (m *Metrics) RecordFallbackTopic(topic string) {
	if m == nil {
		return
	}
	m.FallbackTopicsTotal.WithLabelValues(topic).Inc()
}

// RecordChat records a completed chat request.
func (m *Metrics) RecordChat(channel, searchType string, seconds float64) {
	if m == nil {
		return
	}
	m.ChatRequestsTotal.WithLabelValues(channel, searchType).Inc()
	m.ChatDuration.WithLabelValues(searchType).Observe(seconds)
}

// RecordAutocomplete records an autocomplete request.
func (m *Metrics) RecordAutocomplete(status string) {
	if m == nil {
		return
	}
	m.AutocompleteTotal.WithLabelValues(status).Inc()
}

// RecordLLM records an LLM call.
func (m *Metrics) RecordLLM(operation, provider, status string, seconds float64) {
	if m == nil {
		return
	}
	m.LLMRequestsTotal.WithLabelValues(operation, provider, status).Inc()
	m.LLMDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordPersistenceError records a swallowed persistence failure.
func (m *Metrics) RecordPersistenceError(operation string) {
	if m == nil {
		return
	}
	m.PersistenceErrorsTotal.WithLabelValues(operation).Inc()
}

// SetStoredRows updates the row gauge for table.
func (m *Metrics) SetStoredRows(table string, n int64) {
	if m == nil {
		return
	}
	m.StoredRows.WithLabelValues(table).Set(float64(n))
}

// RecordBackup records a backup attempt.
func (m *Metrics) RecordBackup(status string) {
	if m == nil {
		return
	}
	m.BackupsTotal.WithLabelValues(status).Inc()
}

// RecordWebhook records a webhook event.
func (m *Metrics) RecordWebhook(eventType, status string, seconds float64) {
	if m == nil {
		return
	}
	m.WebhookRequestsTotal.WithLabelValues(eventType, status).Inc()
	m.WebhookDurationSeconds.WithLabelValues(eventType).Observe(seconds)
}

// RecordHTTPError records HTTP error metrics
func (m *Metrics) RecordHTTPError(errorType, module string) {
	if m == nil {
		return
	}
	m.HTTPErrorsTotal.WithLabelValues(errorType, module).Inc()
}

// RecordRateLimiterDrop records a request dropped by rate limiter
func (m *Metrics) RecordRateLimiterDrop(limiter string) {
	if m == nil {
		return
	}
	m.RateLimiterDropped.WithLabelValues(limiter).Inc()
}

// SetRateLimiterActive updates the number of tracked keys for a limiter.
func (m *Metrics) SetRateLimiterActive(limiter string, n int) {
	if m == nil {
		return
	}
	m.RateLimiterActive.WithLabelValues(limiter).Set(float64(n))
}

// RecordLogDrop counts one record the remote log sink could not queue.
func (m *Metrics) RecordLogDrop() {
	if m == nil {
		return
	}
	m.LogRecordsDroppedTotal.Inc()
}
