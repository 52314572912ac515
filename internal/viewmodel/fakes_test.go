package viewmodel

import (
	"context"
	"sync"

	"github.com/tphakala/duckwatch/internal/sighting"
)

// fakeBackend is an in-memory stand-in for the REST client.
type fakeBackend struct {
	mu         sync.Mutex
	records    []sighting.Record
	species    []string
	listErr    error
	speciesErr error
	createErr  error

	created       []sighting.CreateRequest
	listCalls     int
	speciesCalls  int
	createStarted chan struct{}
	releaseCreate chan struct{}
}

func (f *fakeBackend) ListSightings(context.Context) ([]sighting.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]sighting.Record{}, f.records...), nil
}

func (f *fakeBackend) ListSpecies(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.speciesCalls++
	if f.speciesErr != nil {
		return nil, f.speciesErr
	}
	return append([]string{}, f.species...), nil
}

func (f *fakeBackend) CreateSighting(_ context.Context, req sighting.CreateRequest) error {
	if f.createStarted != nil {
		close(f.createStarted)
		<-f.releaseCreate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, req)
	f.records = append(f.records, sighting.Record{
		ID:          len(f.records) + 1,
		Species:     req.Species,
		Description: req.Description,
		Count:       req.Count,
	})
	return nil
}

// fakeMetrics counts view-model metric calls.
type fakeMetrics struct {
	mu          sync.Mutex
	records     int
	refreshes   map[string]int
	submissions map[string]int
	fields      map[string]int
	sorts       map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		refreshes:   map[string]int{},
		submissions: map[string]int{},
		fields:      map[string]int{},
		sorts:       map[string]int{},
	}
}

func (m *fakeMetrics) SetRecords(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = n
}

func (m *fakeMetrics) RecordRefresh(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshes[status]++
}

func (m *fakeMetrics) RecordSortSelection(column string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sorts[column]++
}

func (m *fakeMetrics) RecordSubmission(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submissions[result]++
}

func (m *fakeMetrics) RecordValidationFailure(field string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fields[field]++
}
