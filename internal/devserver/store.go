// Package devserver implements the sightings REST backend in memory for
// local development and end-to-end tests.
package devserver

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/tphakala/duckwatch/internal/errors"
	"github.com/tphakala/duckwatch/internal/sighting"
)

// DefaultSpecies is the species list served when no other list is given.
var DefaultSpecies = []string{
	"Mallard",
	"Redhead",
	"Gadwall",
	"Canvasback",
	"Lesser Scaup",
}

// Store holds sightings and the species list.
//
// Thread-safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	species []string
	records []sighting.Record
	nextID  int
}

// NewStore creates an empty store that accepts the given species.
func NewStore(species []string) *Store {
	return &Store{
		species: slices.Clone(species),
		nextID:  1,
	}
}

// NewSeededStore creates a store with DefaultSpecies and a few sample sightings.
func NewSeededStore() *Store {
	s := NewStore(DefaultSpecies)
	for _, r := range seedRecords() {
		s.insert(r)
	}
	return s
}

func seedRecords() []sighting.Record {
	day := time.Date(2016, 10, 1, 0, 0, 0, 0, time.UTC)
	return []sighting.Record{
		{DateTime: day.Add(1 * time.Hour), Species: "Mallard", Description: "All your ducks are belong to us", Count: 1},
		{DateTime: day.Add(13*time.Hour + 15*time.Minute), Species: "Redhead", Description: "Flying around the pond", Count: 3},
		{DateTime: day.Add(34 * time.Hour), Species: "Gadwall", Description: "Resting on the shore", Count: 2},
		{DateTime: day.Add(50*time.Hour + 30*time.Minute), Species: "Canvasback", Description: "Diving near the reeds", Count: 5},
		{DateTime: day.Add(75 * time.Hour), Species: "Lesser Scaup", Description: "Small flock far out", Count: 12},
	}
}

// List returns a copy of all sightings in insertion order.
func (s *Store) List() []sighting.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Species returns a copy of the accepted species.
func (s *Store) Species() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.species)
}

// Len returns the number of stored sightings.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Add validates req and stores it as a new sighting with the next ID.
func (s *Store) Add(req sighting.CreateRequest) (sighting.Record, error) {
	var invalid []string

	ts, err := sighting.ParseTimestamp(req.DateTime)
	if err != nil {
		invalid = append(invalid, "dateTime")
	}
	if strings.TrimSpace(req.Description) == "" {
		invalid = append(invalid, "description")
	}
	if req.Count < 1 {
		invalid = append(invalid, "count")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.species, req.Species) {
		invalid = append(invalid, "species")
	}
	if len(invalid) > 0 {
		return sighting.Record{}, errors.Newf("invalid sighting: %s", strings.Join(invalid, ", ")).
			Component("devserver").
			Category(errors.CategoryValidation).
			Context("fields", invalid).
			Build()
	}

	return s.insert(sighting.Record{
		DateTime:    ts,
		Description: req.Description,
		Species:     req.Species,
		Count:       req.Count,
	}), nil
}

// insert assigns the next ID. Callers hold the write lock or own the store.
func (s *Store) insert(r sighting.Record) sighting.Record {
	r.ID = s.nextID
	s.nextID++
	s.records = append(s.records, r)
	return r
}
