// Package sighting holds the duck sighting model together with the sorting,
// validation and date/time rules shared by the client and the dev backend.
package sighting

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/tphakala/duckwatch/internal/errors"
)

// Record is a single observation as returned by the backend.
type Record struct {
	ID          int       `json:"id" yaml:"id"`
	DateTime    time.Time `json:"dateTime" yaml:"dateTime"`
	Description string    `json:"description" yaml:"description"`
	Species     string    `json:"species" yaml:"species"`
	Count       int       `json:"count" yaml:"count"`
}

// RecordDTO is the wire form of a sighting. The backend has been seen
// sending id and count both as numbers and as numeric strings.
type RecordDTO struct {
	ID          FlexInt `json:"id"`
	DateTime    string  `json:"dateTime"`
	Description string  `json:"description"`
	Species     string  `json:"species"`
	Count       FlexInt `json:"count"`
}

// ToRecord converts the wire form into a Record.
func (d RecordDTO) ToRecord() (Record, error) {
	ts, err := ParseTimestamp(d.DateTime)
	if err != nil {
		return Record{}, errors.New(err).
			Component("sighting").
			Category(errors.CategoryFileParsing).
			Context("field", "dateTime").
			Context("id", int(d.ID)).
			Build()
	}
	return Record{
		ID:          int(d.ID),
		DateTime:    ts,
		Description: d.Description,
		Species:     d.Species,
		Count:       int(d.Count),
	}, nil
}

// NewRecordDTO is the inverse of ToRecord.
func NewRecordDTO(r Record) RecordDTO {
	return RecordDTO{
		ID:          FlexInt(r.ID),
		DateTime:    FormatTimestamp(r.DateTime),
		Description: r.Description,
		Species:     r.Species,
		Count:       FlexInt(r.Count),
	}
}

// DecodeRecords converts list entries one at a time. An entry that does not
// decode is left out and its error is returned in skipped with the entry
// index in the context, so one bad row never hides the others.
func DecodeRecords(entries []json.RawMessage) (records []Record, skipped []error) {
	records = make([]Record, 0, len(entries))
	for i, raw := range entries {
		var dto RecordDTO
		if err := json.Unmarshal(raw, &dto); err != nil {
			skipped = append(skipped, errors.New(err).
				Component("sighting").
				Category(errors.CategoryFileParsing).
				Context("index", i).
				Build())
			continue
		}
		r, err := dto.ToRecord()
		if err != nil {
			skipped = append(skipped, errors.New(err).
				Component("sighting").
				Category(errors.CategoryFileParsing).
				Context("index", i).
				Build())
			continue
		}
		records = append(records, r)
	}
	return records, skipped
}

// SpeciesDTO is one entry of GET /species.
type SpeciesDTO struct {
	Name string `json:"name"`
}

// SpeciesNames flattens the species list, keeping server order.
func SpeciesNames(dtos []SpeciesDTO) []string {
	names := make([]string, 0, len(dtos))
	for _, d := range dtos {
		names = append(names, d.Name)
	}
	return names
}

// CreateRequest is the POST /sightings payload.
type CreateRequest struct {
	Species     string `json:"species"`
	Description string `json:"description"`
	DateTime    string `json:"dateTime"`
	Count       int    `json:"count"`
}

// FlexInt decodes from a JSON number or a numeric string. Like parseInt it
// takes the leading integer and ignores anything after it.
type FlexInt int

var errNoDigits = errors.NewStd("no leading integer")

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	text := string(bytes.TrimSpace(data))
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		text = s
	}

	n, err := ParseLeadingInt(text)
	if err != nil {
		return errors.New(err).
			Component("sighting").
			Category(errors.CategoryFileParsing).
			Context("value", text).
			Build()
	}
	*f = FlexInt(n)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexInt) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(f))), nil
}

// ParseLeadingInt reads an optionally signed base-10 integer from the start
// of s after leading whitespace. "12abc" is 12, "2.5" is 2, "abc" fails.
func ParseLeadingInt(s string) (int, error) {
	s = strings.TrimLeft(s, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, errNoDigits
	}
	return strconv.Atoi(s[:end])
}
