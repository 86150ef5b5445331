package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the series service.
type Metrics struct {
	Registry         *prometheus.Registry
	RequestsTotal    *prometheus.CounterVec
	FetchDuration    prometheus.Histogram
	FetchErrorsTotal *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	CacheWriteErrors prometheus.Counter
	FieldsParsed     prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mangaseries_requests_total",
			Help: "Total API requests by endpoint and response status.",
		},
		[]string{"endpoint", "status"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mangaseries_fetch_duration_seconds",
			Help:    "Latency of series page fetches.",
			Buckets: prometheus.DefBuckets,
		},
	)
	fetchErrors := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mangaseries_fetch_errors_total",
			Help: "Total number of failed page fetches by type.",
		},
		[]string{"error_type"},
	)
	cacheLookups := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mangaseries_cache_lookups_total",
			Help: "Cache lookups by kind (series, field) and result (hit, miss, error).",
		},
		[]string{"kind", "result"},
	)
	cacheWriteErrors := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mangaseries_cache_write_errors_total",
			Help: "Total number of failed cache writes.",
		},
	)
	fieldsParsed := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mangaseries_fields_parsed_total",
			Help: "Total number of field values extracted from fetched pages.",
		},
	)

	registry.MustRegister(requests, fetchDuration, fetchErrors, cacheLookups, cacheWriteErrors, fieldsParsed)

	return &Metrics{
		Registry:         registry,
		RequestsTotal:    requests,
		FetchDuration:    fetchDuration,
		FetchErrorsTotal: fetchErrors,
		CacheLookups:     cacheLookups,
		CacheWriteErrors: cacheWriteErrors,
		FieldsParsed:     fieldsParsed,
	}
}

// IncRequest counts one API response.
func (m *Metrics) IncRequest(endpoint, status string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(endpoint, status).Inc()
}

// ObserveFetch records a page fetch duration.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// IncFetchError increments the fetch errors counter for a type label.
func (m *Metrics) IncFetchError(errorType string) {
	if m == nil {
		return
	}
	m.FetchErrorsTotal.WithLabelValues(errorType).Inc()
}

// IncCacheLookup counts a cache read.
func (m *Metrics) IncCacheLookup(kind, result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(kind, result).Inc()
}

// IncCacheWriteError counts a cache write that was dropped.
func (m *Metrics) IncCacheWriteError() {
	if m == nil {
		return
	}
	m.CacheWriteErrors.Inc()
}

// AddFieldsParsed adds n extracted field values.
func (m *Metrics) AddFieldsParsed(n int) {
	if m == nil {
		return
	}
	m.FieldsParsed.Add(float64(n))
}
