package devserver

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/duckwatch/internal/errors"
	"github.com/tphakala/duckwatch/internal/sighting"
)

func validRequest() sighting.CreateRequest {
	return sighting.CreateRequest{
		Species:     "Mallard",
		Description: "seen near pond",
		DateTime:    "2020-03-05T14:30:00.000Z",
		Count:       2,
	}
}

func TestSeededStore(t *testing.T) {
	t.Parallel()

	s := NewSeededStore()
	assert.Equal(t, DefaultSpecies, s.Species())

	records := s.List()
	require.Len(t, records, 5)
	for i, r := range records {
		assert.Equal(t, i+1, r.ID)
		assert.Contains(t, DefaultSpecies, r.Species)
		assert.GreaterOrEqual(t, r.Count, 1)
	}
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	t.Parallel()

	s := NewStore(DefaultSpecies)

	first, err := s.Add(validRequest())
	require.NoError(t, err)
	second, err := s.Add(validRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, time.Date(2020, 3, 5, 14, 30, 0, 0, time.UTC), first.DateTime.UTC())
	assert.Equal(t, 2, s.Len())
}

func TestAddRejectsInvalidSightings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*sighting.CreateRequest)
		field  string
	}{
		{"unknown species", func(r *sighting.CreateRequest) { r.Species = "Swan" }, "species"},
		{"zero count", func(r *sighting.CreateRequest) { r.Count = 0 }, "count"},
		{"negative count", func(r *sighting.CreateRequest) { r.Count = -3 }, "count"},
		{"blank description", func(r *sighting.CreateRequest) { r.Description = " " }, "description"},
		{"bad timestamp", func(r *sighting.CreateRequest) { r.DateTime = "yesterday" }, "dateTime"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := NewStore(DefaultSpecies)
			req := validRequest()
			tt.mutate(&req)

			_, err := s.Add(req)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.field)
			assert.Zero(t, s.Len())
		})
	}
}

func TestListReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewSeededStore()
	records := s.List()
	records[0].Species = "changed"

	assert.Equal(t, "Mallard", s.List()[0].Species)
}

func TestConcurrentAdds(t *testing.T) {
	t.Parallel()

	s := NewStore(DefaultSpecies)
	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			_, err := s.Add(validRequest())
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	records := s.List()
	require.Len(t, records, 50)
	seen := make(map[int]bool, len(records))
	for _, r := range records {
		assert.False(t, seen[r.ID], "duplicate id %d", r.ID)
		seen[r.ID] = true
	}
}
