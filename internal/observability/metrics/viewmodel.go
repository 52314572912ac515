package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// ViewModelMetrics tracks what the list and form view-models do.
type ViewModelMetrics struct {
	recordsDisplayed   prometheus.Gauge
	refreshesTotal     *prometheus.CounterVec
	submissionsTotal   *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	sortSelections     *prometheus.CounterVec
}

// NewViewModelMetrics creates and registers the view-model metrics.
func NewViewModelMetrics(registry *prometheus.Registry) (*ViewModelMetrics, error) {
	m := &ViewModelMetrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register view-model metrics: %w", err)
	}
	return m, nil
}

func (m *ViewModelMetrics) initMetrics() {
	m.recordsDisplayed = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "duckwatch_list_records",
		Help: "Number of sightings currently held by the list",
	})

	m.refreshesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckwatch_list_refreshes_total",
			Help: "Total number of list refreshes",
		},
		[]string{"status"},
	)

	m.submissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckwatch_form_submissions_total",
			Help: "Total number of form submissions by outcome",
		},
		[]string{"result"}, // result: created, invalid, failed
	)

	m.validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckwatch_form_validation_failures_total",
			Help: "Total number of rejected form fields",
		},
		[]string{"field"},
	)

	m.sortSelections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckwatch_list_sort_selections_total",
			Help: "Total number of column header selections",
		},
		[]string{"column"},
	)
}

// SetRecords sets the number of records held by the list.
func (m *ViewModelMetrics) SetRecords(n int) {
	m.recordsDisplayed.Set(float64(n))
}

// RecordRefresh counts a list refresh with its status.
func (m *ViewModelMetrics) RecordRefresh(status string) {
	m.refreshesTotal.WithLabelValues(status).Inc()
}

// RecordSubmission counts a form submission by outcome.
func (m *ViewModelMetrics) RecordSubmission(result string) {
	m.submissionsTotal.WithLabelValues(result).Inc()
}

// RecordValidationFailure counts a rejected field.
func (m *ViewModelMetrics) RecordValidationFailure(field string) {
	m.validationFailures.WithLabelValues(field).Inc()
}

// RecordSortSelection counts a header selection.
func (m *ViewModelMetrics) RecordSortSelection(column string) {
	m.sortSelections.WithLabelValues(column).Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *ViewModelMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.recordsDisplayed.Describe(ch)
	m.refreshesTotal.Describe(ch)
	m.submissionsTotal.Describe(ch)
	m.validationFailures.Describe(ch)
	m.sortSelections.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *ViewModelMetrics) Collect(ch chan<- prometheus.Metric) {
	m.recordsDisplayed.Collect(ch)
	m.refreshesTotal.Collect(ch)
	m.submissionsTotal.Collect(ch)
	m.validationFailures.Collect(ch)
	m.sortSelections.Collect(ch)
}
