package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics tracks calls made by the sightings REST client.
type APIMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
}

// NewAPIMetrics creates and registers the REST client metrics.
func NewAPIMetrics(registry *prometheus.Registry) (*APIMetrics, error) {
	m := &APIMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register API metrics: %w", err)
	}
	return m, nil
}

func (m *APIMetrics) initMetrics() {
	m.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckwatch_api_requests_total",
			Help: "Total number of requests to the sightings backend",
		},
		[]string{"operation", "status"}, // operation: list_sightings, list_species, create_sighting
	)

	m.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckwatch_api_request_duration_seconds",
			Help:    "Time taken for requests to the sightings backend",
			Buckets: prometheus.ExponentialBuckets(BucketStart1ms, BucketFactor2, BucketCount12), // 1ms to ~4s
		},
		[]string{"operation"},
	)

	m.errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckwatch_api_errors_total",
			Help: "Total number of failed requests by error category",
		},
		[]string{"operation", "error_type"}, // error_type: network, http-request, file-parsing
	)

	m.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "duckwatch_species_cache_hits_total",
		Help: "Species lookups served from the cache",
	})

	m.cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "duckwatch_species_cache_misses_total",
		Help: "Species lookups that went to the backend",
	})
}

// RecordOperation implements Recorder.
func (m *APIMetrics) RecordOperation(operation, status string) {
	m.requestsTotal.WithLabelValues(operation, status).Inc()
}

// RecordDuration implements Recorder.
func (m *APIMetrics) RecordDuration(operation string, seconds float64) {
	m.requestDuration.WithLabelValues(operation).Observe(seconds)
}

// RecordError implements Recorder.
func (m *APIMetrics) RecordError(operation, errorType string) {
	m.errorsTotal.WithLabelValues(operation, errorType).Inc()
}

// RecordCacheHit counts a species lookup answered from the cache.
func (m *APIMetrics) RecordCacheHit() {
	m.cacheHits.Inc()
}

// RecordCacheMiss counts a species lookup that reached the backend.
func (m *APIMetrics) RecordCacheMiss() {
	m.cacheMisses.Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *APIMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.requestsTotal.Describe(ch)
	m.requestDuration.Describe(ch)
	m.errorsTotal.Describe(ch)
	m.cacheHits.Describe(ch)
	m.cacheMisses.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *APIMetrics) Collect(ch chan<- prometheus.Metric) {
	m.requestsTotal.Collect(ch)
	m.requestDuration.Collect(ch)
	m.errorsTotal.Collect(ch)
	m.cacheHits.Collect(ch)
	m.cacheMisses.Collect(ch)
}

var _ Recorder = (*APIMetrics)(nil)
