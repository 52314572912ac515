package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewAPIMetrics(registry)
	require.NoError(t, err)

	m.RecordOperation(OpListSightings, StatusSuccess)
	m.RecordOperation(OpListSightings, StatusSuccess)
	m.RecordOperation(OpCreateSighting, StatusError)
	m.RecordError(OpCreateSighting, "http-request")
	m.RecordDuration(OpListSightings, 0.05)
	m.RecordCacheHit()
	m.RecordCacheMiss()
	m.RecordCacheMiss()

	assert.InDelta(t, 2, testutil.ToFloat64(m.requestsTotal.WithLabelValues(OpListSightings, StatusSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.errorsTotal.WithLabelValues(OpCreateSighting, "http-request")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.cacheHits), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.cacheMisses), 0)

	expected := `
# HELP duckwatch_api_errors_total Total number of failed requests by error category
# TYPE duckwatch_api_errors_total counter
duckwatch_api_errors_total{error_type="http-request",operation="create_sighting"} 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected), "duckwatch_api_errors_total"))
}

func TestAPIMetricsDuplicateRegistration(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	_, err := NewAPIMetrics(registry)
	require.NoError(t, err)

	_, err = NewAPIMetrics(registry)
	assert.Error(t, err)
}

func TestViewModelMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewViewModelMetrics(registry)
	require.NoError(t, err)

	m.SetRecords(12)
	m.RecordRefresh(StatusSuccess)
	m.RecordSubmission(SubmitInvalid)
	m.RecordValidationFailure("count")
	m.RecordSortSelection("Species")

	assert.InDelta(t, 12, testutil.ToFloat64(m.recordsDisplayed), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.submissionsTotal.WithLabelValues(SubmitInvalid)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.validationFailures.WithLabelValues("count")), 0)

	count, err := testutil.GatherAndCount(registry, "duckwatch_list_sort_selections_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHTTPMetricsHistogram(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewHTTPMetrics(registry)
	require.NoError(t, err)

	m.RecordHTTPRequest("GET", "/sightings", 200, 0.003)
	m.RecordHTTPRequest("GET", "/sightings", 200, 0.004)
	m.RecordHTTPResponseSize("GET", "/sightings", 512)
	m.SetSightingsStored(5)

	families, err := registry.Gather()
	require.NoError(t, err)

	var duration *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "http_request_duration_seconds" {
			duration = f
		}
	}
	require.NotNil(t, duration)
	require.Len(t, duration.GetMetric(), 1)
	assert.Equal(t, uint64(2), duration.GetMetric()[0].GetHistogram().GetSampleCount())
	assert.InDelta(t, 5, testutil.ToFloat64(m.sightingsStored), 0)
}

func TestMQTTMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := NewMQTTMetrics(registry)
	require.NoError(t, err)

	m.UpdateConnectionStatus(true)
	m.IncrementMessagesDelivered()
	timer := m.StartPublishTimer()
	timer.ObserveDuration()

	assert.InDelta(t, 1, testutil.ToFloat64(m.ConnectionStatus), 0)
	assert.Positive(t, testutil.ToFloat64(m.LastConnectTime))

	m.UpdateConnectionStatus(false)
	assert.InDelta(t, 0, testutil.ToFloat64(m.ConnectionStatus), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.MessagesDelivered), 0)
}
