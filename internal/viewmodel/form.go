package viewmodel

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/tphakala/duckwatch/internal/errors"
	"github.com/tphakala/duckwatch/internal/logging"
	"github.com/tphakala/duckwatch/internal/observability/metrics"
	"github.com/tphakala/duckwatch/internal/sighting"
)

// SpeciesLister fetches the known species names.
type SpeciesLister interface {
	ListSpecies(ctx context.Context) ([]string, error)
}

// SightingCreator posts a new sighting.
type SightingCreator interface {
	CreateSighting(ctx context.Context, req sighting.CreateRequest) error
}

// FormBackend is everything the form needs from the REST client.
type FormBackend interface {
	SpeciesLister
	SightingCreator
}

// CreatedHook runs after a sighting was accepted by the backend and before
// the list is refreshed.
type CreatedHook func(ctx context.Context, req sighting.CreateRequest)

// FormMetrics is implemented by *metrics.ViewModelMetrics.
type FormMetrics interface {
	RecordSubmission(result string)
	RecordValidationFailure(field string)
}

// FormOption customizes a FormViewModel.
type FormOption func(*FormViewModel)

// WithRefresher sets the list refreshed after a successful submit.
func WithRefresher(r Refresher) FormOption {
	return func(vm *FormViewModel) {
		vm.refresher = r
	}
}

// WithLocation sets the zone entered dates and times are read in.
func WithLocation(loc *time.Location) FormOption {
	return func(vm *FormViewModel) {
		if loc != nil {
			vm.loc = loc
		}
	}
}

// WithResetOnOpen clears the draft every time the form opens.
func WithResetOnOpen(reset bool) FormOption {
	return func(vm *FormViewModel) {
		vm.resetOnOpen = reset
	}
}

// WithCreatedHook adds a hook run after each successful create.
func WithCreatedHook(h CreatedHook) FormOption {
	return func(vm *FormViewModel) {
		vm.hooks = append(vm.hooks, h)
	}
}

// WithFormMetrics records submissions and rejected fields.
func WithFormMetrics(m FormMetrics) FormOption {
	return func(vm *FormViewModel) {
		vm.metrics = m
	}
}

// WithFormLogger replaces the service logger.
func WithFormLogger(l *slog.Logger) FormOption {
	return func(vm *FormViewModel) {
		vm.logger = l
	}
}

// ErrSubmitInProgress is returned when Submit is called while a create is
// still pending.
var ErrSubmitInProgress = errors.NewStd("submission already in progress")

// FormViewModel holds the draft of a new sighting and drives its submission.
type FormViewModel struct {
	backend     FormBackend
	refresher   Refresher
	loc         *time.Location
	resetOnOpen bool
	hooks       []CreatedHook
	metrics     FormMetrics
	logger      *slog.Logger

	mu            sync.RWMutex
	open          bool
	submitting    bool
	draft         sighting.Draft
	species       []string
	speciesLoaded bool
	err           error
	listeners     []func()
}

// NewFormViewModel creates a closed form with a default draft.
func NewFormViewModel(backend FormBackend, opts ...FormOption) *FormViewModel {
	vm := &FormViewModel{
		backend: backend,
		loc:     time.Local,
		draft:   sighting.NewDraft(""),
		logger:  logging.ForService("viewmodel"),
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Initialize loads the species list.
func (vm *FormViewModel) Initialize(ctx context.Context) error {
	return vm.LoadSpeciesOnce(ctx)
}

// LoadSpeciesOnce fetches the known species on the first successful call
// and selects the first one. Later calls do nothing.
func (vm *FormViewModel) LoadSpeciesOnce(ctx context.Context) error {
	vm.mu.RLock()
	loaded := vm.speciesLoaded
	vm.mu.RUnlock()
	if loaded {
		return nil
	}

	names, err := vm.backend.ListSpecies(ctx)

	vm.mu.Lock()
	if err != nil {
		vm.err = err
		vm.mu.Unlock()
		vm.logger.Warn("failed to load species", "error", err)
		vm.notify()
		return err
	}
	if !vm.speciesLoaded {
		vm.species = slices.Clone(names)
		vm.speciesLoaded = true
		if len(names) > 0 {
			vm.draft.Species = names[0]
		}
	}
	vm.err = nil
	vm.mu.Unlock()

	vm.logger.Debug("species loaded", "count", len(names))
	vm.notify()
	return nil
}

// Open shows the dialog. The draft survives a close and reopen unless the
// form was created with WithResetOnOpen.
func (vm *FormViewModel) Open() {
	vm.mu.Lock()
	if vm.resetOnOpen {
		vm.draft = sighting.NewDraft(vm.firstSpeciesLocked())
	}
	vm.open = true
	vm.err = nil
	vm.mu.Unlock()
	vm.notify()
}

// Close hides the dialog without touching the draft.
func (vm *FormViewModel) Close() {
	vm.mu.Lock()
	vm.open = false
	vm.mu.Unlock()
	vm.notify()
}

// SetDate stores the calendar date of t as D.M.YYYY.
func (vm *FormViewModel) SetDate(t time.Time) {
	vm.setField(sighting.FieldDate, sighting.FormatDate(t))
}

// SetTime stores the clock time of t as H:MM.
func (vm *FormViewModel) SetTime(t time.Time) {
	vm.setField(sighting.FieldTime, sighting.FormatTime(t))
}

// UpdateField assigns a typed value. Dates and times are normalized, and
// text that does not parse is stored as empty so validation reports it.
func (vm *FormViewModel) UpdateField(field sighting.Field, value string) error {
	switch field {
	case sighting.FieldDate:
		value = sighting.NormalizeDate(value)
	case sighting.FieldTime:
		value = sighting.NormalizeTime(value)
	case sighting.FieldSpecies, sighting.FieldDescription, sighting.FieldCount:
	default:
		return errors.Newf("unknown form field %q", field).
			Component("viewmodel").
			Category(errors.CategoryValidation).
			Build()
	}
	vm.setField(field, value)
	return nil
}

// SelectSpecies picks the species at index in the known list.
func (vm *FormViewModel) SelectSpecies(index int) error {
	vm.mu.RLock()
	if index < 0 || index >= len(vm.species) {
		n := len(vm.species)
		vm.mu.RUnlock()
		return errors.Newf("species index %d out of range", index).
			Component("viewmodel").
			Category(errors.CategoryValidation).
			Context("known_species", n).
			Build()
	}
	name := vm.species[index]
	vm.mu.RUnlock()

	vm.setField(sighting.FieldSpecies, name)
	return nil
}

func (vm *FormViewModel) setField(field sighting.Field, value string) {
	vm.mu.Lock()
	switch field {
	case sighting.FieldDate:
		vm.draft.Date = value
	case sighting.FieldTime:
		vm.draft.Time = value
	case sighting.FieldSpecies:
		vm.draft.Species = value
	case sighting.FieldDescription:
		vm.draft.Description = value
	case sighting.FieldCount:
		vm.draft.Count = value
	}
	vm.mu.Unlock()
	vm.notify()
}

// Submit validates the draft and creates the sighting. A rejected draft
// keeps the dialog open with per-field errors. A failed create keeps the
// draft and exposes the error through Err. After a successful create the
// draft is reset, the dialog closes, created hooks run and then the list
// is refreshed.
func (vm *FormViewModel) Submit(ctx context.Context) error {
	vm.mu.Lock()
	if vm.submitting {
		vm.mu.Unlock()
		return errors.New(ErrSubmitInProgress).
			Component("viewmodel").
			Category(errors.CategoryState).
			Build()
	}

	req, fieldErrs := vm.buildRequestLocked()
	if len(fieldErrs) > 0 {
		vm.draft.Errors = fieldErrs
		vm.mu.Unlock()

		vm.recordInvalid(fieldErrs)
		vm.notify()
		return sighting.FieldsError(fieldErrs)
	}

	vm.draft.Errors = nil
	vm.submitting = true
	vm.mu.Unlock()
	vm.notify()

	err := vm.backend.CreateSighting(ctx, req)

	vm.mu.Lock()
	vm.submitting = false
	if err != nil {
		vm.err = err
		vm.mu.Unlock()

		vm.logger.Warn("failed to create sighting, keeping draft", "error", err, "species", req.Species)
		if vm.metrics != nil {
			vm.metrics.RecordSubmission(metrics.SubmitFailed)
		}
		vm.notify()
		return err
	}

	vm.draft = sighting.NewDraft(vm.firstSpeciesLocked())
	vm.open = false
	vm.err = nil
	vm.mu.Unlock()

	if vm.metrics != nil {
		vm.metrics.RecordSubmission(metrics.SubmitCreated)
	}
	vm.notify()

	for _, hook := range vm.hooks {
		hook(ctx, req)
	}

	if vm.refresher != nil {
		// a failed refresh is reported by the list itself
		_ = vm.refresher.Refresh(ctx)
	}
	return nil
}

// buildRequestLocked validates the draft and builds the payload.
func (vm *FormViewModel) buildRequestLocked() (sighting.CreateRequest, sighting.FieldErrors) {
	fieldErrs := sighting.Validate(vm.draft, vm.species)
	if len(fieldErrs) > 0 {
		return sighting.CreateRequest{}, fieldErrs
	}

	dateTime, err := sighting.CombineDateTime(vm.draft.Date, vm.draft.Time, vm.loc)
	if err != nil {
		return sighting.CreateRequest{}, sighting.FieldErrors{
			sighting.FieldDate: sighting.ErrTextDate,
			sighting.FieldTime: sighting.ErrTextTime,
		}
	}
	count, _ := sighting.CountValue(vm.draft.Count)

	return sighting.CreateRequest{
		Species:     vm.draft.Species,
		Description: vm.draft.Description,
		DateTime:    dateTime,
		Count:       count,
	}, nil
}

func (vm *FormViewModel) recordInvalid(fieldErrs sighting.FieldErrors) {
	vm.logger.Debug("draft rejected", "fields", fieldErrs.Fields())
	if vm.metrics == nil {
		return
	}
	vm.metrics.RecordSubmission(metrics.SubmitInvalid)
	for _, f := range fieldErrs.Fields() {
		vm.metrics.RecordValidationFailure(string(f))
	}
}

func (vm *FormViewModel) firstSpeciesLocked() string {
	if len(vm.species) == 0 {
		return ""
	}
	return vm.species[0]
}

func (vm *FormViewModel) IsOpen() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.open
}

func (vm *FormViewModel) IsSubmitting() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.submitting
}

// Draft returns a copy of the current draft.
func (vm *FormViewModel) Draft() sighting.Draft {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	d := vm.draft
	d.Errors = vm.draft.Errors.Clone()
	return d
}

// Species returns the known species in server order.
func (vm *FormViewModel) Species() []string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return slices.Clone(vm.species)
}

// Err returns the last species load or create failure.
func (vm *FormViewModel) Err() error {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.err
}

// OnChange registers fn to run after every state change.
func (vm *FormViewModel) OnChange(fn func()) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.listeners = append(vm.listeners, fn)
}

func (vm *FormViewModel) notify() {
	vm.mu.RLock()
	listeners := slices.Clone(vm.listeners)
	vm.mu.RUnlock()
	for _, fn := range listeners {
		fn()
	}
}
