// Package viewmodel holds the presentation state of the sightings list and
// the creation form, independent of how they are rendered.
package viewmodel

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/tphakala/duckwatch/internal/logging"
	"github.com/tphakala/duckwatch/internal/observability/metrics"
	"github.com/tphakala/duckwatch/internal/sighting"
)

// State is the lifecycle of the list.
type State int

const (
	StateLoading State = iota
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	}
	return "unknown"
}

// SightingLister fetches the full sightings list.
type SightingLister interface {
	ListSightings(ctx context.Context) ([]sighting.Record, error)
}

// Refresher is what the form needs from the list after a successful create.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// ListMetrics is implemented by *metrics.ViewModelMetrics.
type ListMetrics interface {
	SetRecords(n int)
	RecordRefresh(status string)
	RecordSortSelection(column string)
}

// ListOption customizes a ListViewModel.
type ListOption func(*ListViewModel)

// WithListMetrics records refreshes and sort selections.
func WithListMetrics(m ListMetrics) ListOption {
	return func(vm *ListViewModel) {
		vm.metrics = m
	}
}

// WithListLogger replaces the service logger.
func WithListLogger(l *slog.Logger) ListOption {
	return func(vm *ListViewModel) {
		vm.logger = l
	}
}

// ListViewModel holds the fetched sightings and the active sort.
type ListViewModel struct {
	source  SightingLister
	metrics ListMetrics
	logger  *slog.Logger

	mu        sync.RWMutex
	records   []sighting.Record
	sort      sighting.SortState
	state     State
	err       error
	listeners []func()
}

// NewListViewModel creates a list in the Loading state sorted by ID ascending.
func NewListViewModel(source SightingLister, opts ...ListOption) *ListViewModel {
	vm := &ListViewModel{
		source: source,
		sort:   sighting.DefaultSortState(),
		state:  StateLoading,
		logger: logging.ForService("viewmodel"),
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Initialize performs the first fetch.
func (vm *ListViewModel) Initialize(ctx context.Context) error {
	return vm.Refresh(ctx)
}

// Refresh replaces the list with a fresh fetch and reapplies the current
// sort. On failure the previous list is kept and the error is exposed
// through Err.
func (vm *ListViewModel) Refresh(ctx context.Context) error {
	records, err := vm.source.ListSightings(ctx)

	vm.mu.Lock()
	if err != nil {
		vm.err = err
		vm.mu.Unlock()

		vm.logger.Warn("refresh failed, keeping previous sightings", "error", err)
		if vm.metrics != nil {
			vm.metrics.RecordRefresh(metrics.StatusError)
		}
		vm.notify()
		return err
	}

	vm.records = vm.sort.Apply(records)
	vm.state = StateLoaded
	vm.err = nil
	n := len(vm.records)
	vm.mu.Unlock()

	vm.logger.Debug("sightings refreshed", "count", n)
	if vm.metrics != nil {
		vm.metrics.RecordRefresh(metrics.StatusSuccess)
		vm.metrics.SetRecords(n)
	}
	vm.notify()
	return nil
}

// SelectColumn applies a header selection by column name. Unknown names
// leave the state unchanged and report false.
func (vm *ListViewModel) SelectColumn(name string) bool {
	column, ok := sighting.ParseColumn(name)
	if !ok {
		return false
	}
	vm.SelectSortColumn(column)
	return true
}

// SelectSortColumn applies the toggle rule and re-sorts the held records.
func (vm *ListViewModel) SelectSortColumn(column sighting.Column) {
	if !column.Valid() {
		return
	}

	vm.mu.Lock()
	vm.sort = vm.sort.Select(column)
	vm.records = vm.sort.Apply(vm.records)
	vm.mu.Unlock()

	if vm.metrics != nil {
		vm.metrics.RecordSortSelection(column.String())
	}
	vm.notify()
}

// Records returns a copy of the sorted records.
func (vm *ListViewModel) Records() []sighting.Record {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return slices.Clone(vm.records)
}

// Len returns the number of held records.
func (vm *ListViewModel) Len() int {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return len(vm.records)
}

func (vm *ListViewModel) SortState() sighting.SortState {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.sort
}

func (vm *ListViewModel) State() State {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.state
}

// Err returns the error of the last refresh, nil after a successful one.
func (vm *ListViewModel) Err() error {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.err
}

// OnChange registers fn to run after every state change.
func (vm *ListViewModel) OnChange(fn func()) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.listeners = append(vm.listeners, fn)
}

func (vm *ListViewModel) notify() {
	vm.mu.RLock()
	listeners := slices.Clone(vm.listeners)
	vm.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}
