package sighting

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/tphakala/duckwatch/internal/errors"
)

// Field names a draft input.
type Field string

const (
	FieldDate        Field = "date"
	FieldTime        Field = "time"
	FieldSpecies     Field = "species"
	FieldDescription Field = "description"
	FieldCount       Field = "count"
)

// FormFields lists the draft fields in form order.
var FormFields = []Field{FieldDate, FieldTime, FieldSpecies, FieldDescription, FieldCount}

// Error texts shown next to a failing field.
const (
	ErrTextDate        = "A valid date must be given"
	ErrTextTime        = "A valid time must be given"
	ErrTextSpecies     = "Invalid species"
	ErrTextDescription = "Description cannot be empty"
	ErrTextCount       = "Count must be a valid number higher than 0"
)

// DefaultCount is the count a fresh draft starts with.
const DefaultCount = "1"

// Draft is the in-progress state of a new sighting.
type Draft struct {
	Date        string
	Time        string
	Species     string
	Description string
	Count       string
	Errors      FieldErrors
}

// NewDraft returns a draft with default values, preselecting species.
func NewDraft(species string) Draft {
	return Draft{Species: species, Count: DefaultCount}
}

// Value returns the raw text of a field.
func (d Draft) Value(field Field) string {
	switch field {
	case FieldDate:
		return d.Date
	case FieldTime:
		return d.Time
	case FieldSpecies:
		return d.Species
	case FieldDescription:
		return d.Description
	case FieldCount:
		return d.Count
	}
	return ""
}

// FieldErrors maps failing fields to their message. Passing fields are absent.
type FieldErrors map[Field]string

// Fields returns the failing fields in form order.
func (fe FieldErrors) Fields() []Field {
	fields := make([]Field, 0, len(fe))
	for _, f := range FormFields {
		if _, ok := fe[f]; ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// Clone returns an independent copy, nil when empty.
func (fe FieldErrors) Clone() FieldErrors {
	if len(fe) == 0 {
		return nil
	}
	return maps.Clone(fe)
}

// Validate checks every field of draft. All rules run; the result holds
// only the failures and is empty for a valid draft.
func Validate(draft Draft, knownSpecies []string) FieldErrors {
	errs := FieldErrors{}

	if draft.Date == "" {
		errs[FieldDate] = ErrTextDate
	}
	if draft.Time == "" {
		errs[FieldTime] = ErrTextTime
	}
	if !slices.Contains(knownSpecies, draft.Species) {
		errs[FieldSpecies] = ErrTextSpecies
	}
	if draft.Description == "" {
		errs[FieldDescription] = ErrTextDescription
	}
	if _, err := CountValue(draft.Count); err != nil {
		errs[FieldCount] = ErrTextCount
	}

	return errs
}

// CountValue parses a count entry. The text must be a whole number >= 1.
func CountValue(text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || n < 1 {
		return 0, errors.Newf("count %q is not a number higher than 0", text).
			Component("sighting").
			Category(errors.CategoryValidation).
			Context("field", string(FieldCount)).
			Build()
	}
	return n, nil
}

// FieldsError reports a rejected draft. The failing fields are kept in the
// error context under "fields".
func FieldsError(fe FieldErrors) error {
	names := make([]string, 0, len(fe))
	for _, f := range fe.Fields() {
		names = append(names, string(f))
	}
	return errors.Newf("invalid sighting: %s", strings.Join(names, ", ")).
		Component("sighting").
		Category(errors.CategoryValidation).
		Context("fields", names).
		Build()
}
