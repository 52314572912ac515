package devserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/duckwatch/internal/errors"
	"github.com/tphakala/duckwatch/internal/logging"
	"github.com/tphakala/duckwatch/internal/observability/metrics"
	"github.com/tphakala/duckwatch/internal/sighting"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T, store *Store, opts ...Option) *Server {
	t.Helper()
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	return New(store, opts...)
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestListSightingsHandler(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, NewSeededStore())
	rec := doRequest(t, srv, http.MethodGet, "/sightings", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var dtos []sighting.RecordDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dtos))
	require.Len(t, dtos, 5)
	assert.Equal(t, sighting.FlexInt(1), dtos[0].ID)
	assert.Equal(t, "2016-10-01T01:00:00.000Z", dtos[0].DateTime)
}

func TestListSightingsEmpty(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, NewStore(DefaultSpecies))
	rec := doRequest(t, srv, http.MethodGet, "/sightings", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestListSpeciesHandler(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, NewSeededStore())
	rec := doRequest(t, srv, http.MethodGet, "/species", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`[{"name":"Mallard"},{"name":"Redhead"},{"name":"Gadwall"},{"name":"Canvasback"},{"name":"Lesser Scaup"}]`,
		rec.Body.String())
}

func TestCreateSightingHandler(t *testing.T) {
	t.Parallel()

	store := NewStore(DefaultSpecies)
	srv := newTestServer(t, store)

	body := `{"species":"Mallard","description":"seen near pond","dateTime":"2020-03-05T14:30:00.000Z","count":2}`
	rec := doRequest(t, srv, http.MethodPost, "/sightings", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t,
		`{"id":1,"dateTime":"2020-03-05T14:30:00.000Z","description":"seen near pond","species":"Mallard","count":2}`,
		rec.Body.String())
	assert.Equal(t, 1, store.Len())
}

func TestCreateSightingRejectsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"unknown species", `{"species":"Swan","description":"x","dateTime":"2020-03-05T14:30:00.000Z","count":2}`},
		{"zero count", `{"species":"Mallard","description":"x","dateTime":"2020-03-05T14:30:00.000Z","count":0}`},
		{"malformed json", `{"species":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := NewStore(DefaultSpecies)
			srv := newTestServer(t, store)
			rec := doRequest(t, srv, http.MethodPost, "/sightings", tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, http.StatusBadRequest, resp.Code)
			assert.Len(t, resp.CorrelationID, 8)
			assert.Zero(t, store.Len())
		})
	}
}

func TestMetricsMiddleware(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := metrics.NewHTTPMetrics(registry)
	require.NoError(t, err)

	srv := newTestServer(t, NewSeededStore(), WithMetrics(m))

	doRequest(t, srv, http.MethodGet, "/sightings", "")
	doRequest(t, srv, http.MethodPost, "/sightings",
		`{"species":"Gadwall","description":"x","dateTime":"2020-03-05T14:30:00.000Z","count":1}`)
	doRequest(t, srv, http.MethodPost, "/sightings", `{"species":"Swan"}`)

	expected := `
# HELP devserver_sightings_stored Number of sightings held by the dev backend
# TYPE devserver_sightings_stored gauge
devserver_sightings_stored 6
# HELP http_requests_total Total number of HTTP requests
# TYPE http_requests_total counter
http_requests_total{method="GET",path="/sightings",status_code="200"} 1
http_requests_total{method="POST",path="/sightings",status_code="201"} 1
http_requests_total{method="POST",path="/sightings",status_code="400"} 1
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"devserver_sightings_stored", "http_requests_total"))
}

func TestListenAndServe(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, NewSeededStore())
	addr, err := srv.Listen("127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, fmt.Sprintf("http://%s/species", addr), http.NoBody)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, resp.Body.Close())

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServeWithoutListen(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, NewSeededStore())
	err := srv.Serve(t.Context())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryState))
}
