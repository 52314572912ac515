package viewmodel

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/duckwatch/internal/errors"
	"github.com/tphakala/duckwatch/internal/logging"
	"github.com/tphakala/duckwatch/internal/sighting"
)

var duckSpecies = []string{"Mallard", "Redhead", "Gadwall", "Canvasback", "Lesser Scaup"}

func newForm(t *testing.T, backend *fakeBackend, opts ...FormOption) *FormViewModel {
	t.Helper()
	base := []FormOption{WithLocation(time.UTC), WithFormLogger(logging.Discard())}
	vm := NewFormViewModel(backend, append(base, opts...)...)
	require.NoError(t, vm.Initialize(t.Context()))
	return vm
}

func fillDraft(t *testing.T, vm *FormViewModel) {
	t.Helper()
	require.NoError(t, vm.UpdateField(sighting.FieldDate, "5.3.2020"))
	require.NoError(t, vm.UpdateField(sighting.FieldTime, "14:30"))
	require.NoError(t, vm.UpdateField(sighting.FieldSpecies, "Mallard"))
	require.NoError(t, vm.UpdateField(sighting.FieldDescription, "seen near pond"))
	require.NoError(t, vm.UpdateField(sighting.FieldCount, "2"))
}

func TestFormSubmitEndToEnd(t *testing.T) {
	backend := &fakeBackend{species: duckSpecies}
	list := newList(backend)
	require.NoError(t, list.Initialize(t.Context()))

	metrics := newFakeMetrics()
	vm := newForm(t, backend, WithRefresher(list), WithFormMetrics(metrics))

	vm.Open()
	fillDraft(t, vm)
	require.NoError(t, vm.Submit(t.Context()))

	require.Len(t, backend.created, 1)
	assert.Equal(t, sighting.CreateRequest{
		Species:     "Mallard",
		Description: "seen near pond",
		DateTime:    "2020-03-05T14:30:00.000Z",
		Count:       2,
	}, backend.created[0])

	assert.Equal(t, sighting.Draft{Species: "Mallard", Count: "1"}, vm.Draft())
	assert.False(t, vm.IsOpen())
	assert.NoError(t, vm.Err())

	assert.Equal(t, 1, list.Len(), "list refreshed after create")
	assert.Equal(t, 2, backend.listCalls)
	assert.Equal(t, 1, metrics.submissions["created"])
}

func TestFormLoadSpeciesSelectsFirst(t *testing.T) {
	backend := &fakeBackend{species: duckSpecies}
	vm := newForm(t, backend)

	assert.Equal(t, duckSpecies, vm.Species())
	assert.Equal(t, "Mallard", vm.Draft().Species)

	require.NoError(t, vm.LoadSpeciesOnce(t.Context()))
	assert.Equal(t, 1, backend.speciesCalls, "species are loaded once")
}

func TestFormLoadSpeciesEmpty(t *testing.T) {
	vm := newForm(t, &fakeBackend{})

	assert.Empty(t, vm.Species())
	assert.Empty(t, vm.Draft().Species)
}

func TestFormLoadSpeciesRetriesAfterFailure(t *testing.T) {
	backend := &fakeBackend{speciesErr: fmt.Errorf("timeout")}
	vm := NewFormViewModel(backend, WithFormLogger(logging.Discard()))

	require.Error(t, vm.Initialize(t.Context()))
	require.Error(t, vm.Err())

	backend.speciesErr = nil
	backend.species = duckSpecies
	require.NoError(t, vm.LoadSpeciesOnce(t.Context()))
	assert.NoError(t, vm.Err())
	assert.Equal(t, "Mallard", vm.Draft().Species)
}

func TestFormSubmitInvalidDraft(t *testing.T) {
	backend := &fakeBackend{species: duckSpecies}
	metrics := newFakeMetrics()
	vm := newForm(t, backend, WithFormMetrics(metrics))
	vm.Open()

	err := vm.Submit(t.Context())
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	d := vm.Draft()
	assert.Equal(t, sighting.FieldErrors{
		sighting.FieldDate:        sighting.ErrTextDate,
		sighting.FieldTime:        sighting.ErrTextTime,
		sighting.FieldDescription: sighting.ErrTextDescription,
	}, d.Errors)
	assert.True(t, vm.IsOpen())
	assert.Empty(t, backend.created)
	assert.Equal(t, 1, metrics.submissions["invalid"])
	assert.Equal(t, 1, metrics.fields["date"])
}

func TestFormErrorsClearOnResubmit(t *testing.T) {
	backend := &fakeBackend{species: duckSpecies}
	vm := newForm(t, backend)
	vm.Open()

	require.NoError(t, vm.UpdateField(sighting.FieldCount, "abc"))
	require.Error(t, vm.Submit(t.Context()))
	assert.Contains(t, vm.Draft().Errors, sighting.FieldCount)

	fillDraft(t, vm)
	require.NoError(t, vm.UpdateField(sighting.FieldDescription, ""))
	require.Error(t, vm.Submit(t.Context()))
	assert.Equal(t, []sighting.Field{sighting.FieldDescription}, vm.Draft().Errors.Fields())
}

func TestFormFailedCreateKeepsDraft(t *testing.T) {
	backend := &fakeBackend{species: duckSpecies, createErr: fmt.Errorf("503 service unavailable")}
	list := newList(backend)
	metrics := newFakeMetrics()
	vm := newForm(t, backend, WithRefresher(list), WithFormMetrics(metrics))

	vm.Open()
	fillDraft(t, vm)
	before := vm.Draft()

	err := vm.Submit(t.Context())
	require.Error(t, err)

	assert.Equal(t, err, vm.Err())
	assert.True(t, vm.IsOpen())
	assert.Equal(t, before, vm.Draft())
	assert.False(t, vm.IsSubmitting())
	assert.Zero(t, backend.listCalls, "no refresh after a failed create")
	assert.Equal(t, 1, metrics.submissions["failed"])
}

func TestFormReopenKeepsDraft(t *testing.T) {
	vm := newForm(t, &fakeBackend{species: duckSpecies})

	vm.Open()
	require.NoError(t, vm.UpdateField(sighting.FieldDescription, "half written"))
	vm.Close()
	assert.False(t, vm.IsOpen())

	vm.Open()
	assert.Equal(t, "half written", vm.Draft().Description)
}

func TestFormResetOnOpen(t *testing.T) {
	vm := newForm(t, &fakeBackend{species: duckSpecies}, WithResetOnOpen(true))

	vm.Open()
	require.NoError(t, vm.UpdateField(sighting.FieldDescription, "half written"))
	require.NoError(t, vm.SelectSpecies(2))
	vm.Close()

	vm.Open()
	assert.Equal(t, sighting.NewDraft("Mallard"), vm.Draft())
}

func TestFormUpdateFieldNormalizes(t *testing.T) {
	vm := newForm(t, &fakeBackend{species: duckSpecies})

	require.NoError(t, vm.UpdateField(sighting.FieldDate, "05.03.2020"))
	require.NoError(t, vm.UpdateField(sighting.FieldTime, "09:05"))
	assert.Equal(t, "5.3.2020", vm.Draft().Date)
	assert.Equal(t, "9:05", vm.Draft().Time)

	require.NoError(t, vm.UpdateField(sighting.FieldDate, "not a date"))
	assert.Empty(t, vm.Draft().Date)

	err := vm.UpdateField(sighting.Field("weight"), "3")
	assert.True(t, errors.IsValidation(err))
}

func TestFormSetDateAndTime(t *testing.T) {
	vm := newForm(t, &fakeBackend{species: duckSpecies})

	picked := time.Date(2021, time.July, 4, 7, 3, 0, 0, time.UTC)
	vm.SetDate(picked)
	vm.SetTime(picked)

	assert.Equal(t, "4.7.2021", vm.Draft().Date)
	assert.Equal(t, "7:03", vm.Draft().Time)
}

func TestFormSelectSpecies(t *testing.T) {
	vm := newForm(t, &fakeBackend{species: duckSpecies})

	require.NoError(t, vm.SelectSpecies(4))
	assert.Equal(t, "Lesser Scaup", vm.Draft().Species)

	assert.Error(t, vm.SelectSpecies(5))
	assert.Error(t, vm.SelectSpecies(-1))
	assert.Equal(t, "Lesser Scaup", vm.Draft().Species)
}

func TestFormSubmitLocation(t *testing.T) {
	backend := &fakeBackend{species: duckSpecies}
	vm := newForm(t, backend, WithLocation(time.FixedZone("EET", 2*60*60)))

	fillDraft(t, vm)
	require.NoError(t, vm.Submit(t.Context()))
	assert.Equal(t, "2020-03-05T12:30:00.000Z", backend.created[0].DateTime)
}

func TestFormCreatedHookRunsBeforeRefresh(t *testing.T) {
	backend := &fakeBackend{species: duckSpecies}
	list := newList(backend)

	var order []string
	list.OnChange(func() { order = append(order, "refresh") })

	vm := newForm(t, backend,
		WithRefresher(list),
		WithCreatedHook(func(_ context.Context, req sighting.CreateRequest) {
			order = append(order, "hook:"+req.Species)
		}))

	fillDraft(t, vm)
	require.NoError(t, vm.Submit(t.Context()))
	assert.Equal(t, []string{"hook:Mallard", "refresh"}, order)
}

func TestFormRejectsConcurrentSubmit(t *testing.T) {
	backend := &fakeBackend{
		species:       duckSpecies,
		createStarted: make(chan struct{}),
		releaseCreate: make(chan struct{}),
	}
	vm := newForm(t, backend)
	fillDraft(t, vm)

	done := make(chan error, 1)
	go func() { done <- vm.Submit(t.Context()) }()

	<-backend.createStarted
	assert.True(t, vm.IsSubmitting())

	err := vm.Submit(t.Context())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSubmitInProgress))
	assert.True(t, errors.IsCategory(err, errors.CategoryState))

	close(backend.releaseCreate)
	require.NoError(t, <-done)
	assert.False(t, vm.IsSubmitting())
}

func TestFormDraftReturnsCopy(t *testing.T) {
	vm := newForm(t, &fakeBackend{species: duckSpecies})
	require.Error(t, vm.Submit(t.Context()))

	d := vm.Draft()
	d.Errors[sighting.FieldCount] = "changed"
	assert.NotContains(t, vm.Draft().Errors, sighting.FieldCount)
}
