// Package metrics exposes prometheus collectors for sync runs, the
// outbound CRM and object storage calls they make, and the HTTP triggers.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
)

var (
	// Sync Metrics
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crmsync_sync_runs_total",
			Help: "Total number of synchronization runs by entity and outcome",
		},
		[]string{"entity", "outcome"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crmsync_sync_duration_seconds",
			Help:    "Duration of synchronization runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"entity"},
	)

	SyncRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crmsync_sync_records_total",
			Help: "Total number of source records handled by entity and result",
		},
		[]string{"entity", "result"}, // "processed", "failed"
	)

	SyncLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crmsync_sync_last_success_timestamp",
			Help: "Unix timestamp of the last successful run per entity",
		},
		[]string{"entity"},
	)

	// CRM Metrics
	CRMRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crmsync_crm_requests_total",
			Help: "Total number of CRM API requests by operation and outcome",
		},
		[]string{"operation", "outcome"}, // operation: "token", "select", "search"
	)

	CRMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crmsync_crm_request_duration_seconds",
			Help:    "Duration of CRM API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "crmsync_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	// Object Storage Metrics
	ObjectListingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crmsync_object_listings_total",
			Help: "Total number of object storage prefix listings by outcome",
		},
		[]string{"outcome"},
	)

	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crmsync_http_requests_total",
			Help: "Total number of HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "crmsync_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 30, 120, 600},
		},
		[]string{"method", "route"},
	)
)

// UnmatchedRoute labels requests that did not match a registered route,
// keeping arbitrary paths out of the label set.
const UnmatchedRoute = "unmatched"

// RecordSyncRun records the outcome and duration of one synchronizer run.
func RecordSyncRun(entity string, duration time.Duration, processed, failed int, err error) {
	SyncDuration.WithLabelValues(entity).Observe(duration.Seconds())
	SyncRecordsTotal.WithLabelValues(entity, "processed").Add(float64(processed))
	SyncRecordsTotal.WithLabelValues(entity, "failed").Add(float64(failed))

	if err != nil {
		SyncRunsTotal.WithLabelValues(entity, OutcomeFailure).Inc()
		return
	}
	SyncRunsTotal.WithLabelValues(entity, OutcomeSuccess).Inc()
	SyncLastSuccess.WithLabelValues(entity).Set(float64(time.Now().Unix()))
}

// RecordCRMRequest records one CRM API call.
func RecordCRMRequest(operation, outcome string, duration time.Duration) {
	CRMRequestsTotal.WithLabelValues(operation, outcome).Inc()
	CRMRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordObjectListing records one object storage listing.
func RecordObjectListing(err error) {
	if err != nil {
		ObjectListingsTotal.WithLabelValues(OutcomeFailure).Inc()
		return
	}
	ObjectListingsTotal.WithLabelValues(OutcomeSuccess).Inc()
}

// RecordHTTPRequest records one served HTTP request. route is the
// registered route pattern, or empty when nothing matched.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = UnmatchedRoute
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
