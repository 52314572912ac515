package sighting

import (
	"fmt"
	"strings"
	"time"

	"github.com/tphakala/duckwatch/internal/errors"
)

const (
	// DateLayout is the textual date form kept in a draft, e.g. 5.3.2020.
	DateLayout = "2.1.2006"
	// TimeLayout is the textual time form kept in a draft, e.g. 9:05.
	TimeLayout = "15:04"

	submitLayout    = DateLayout + "|" + TimeLayout
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

var (
	dateInputLayouts = []string{DateLayout, "02.01.2006", "2006-01-02"}
	timeInputLayouts = []string{"15:04", "3:04PM", "3:04 PM"}

	// zone-less forms are read as UTC
	timestampLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
	}
)

// FormatDate renders t as D.M.YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatTime renders t as H:MM.
func FormatTime(t time.Time) string {
	return fmt.Sprintf("%d:%02d", t.Hour(), t.Minute())
}

// NormalizeDate parses a typed date and returns it as D.M.YYYY, or "" when
// the text is not a date.
func NormalizeDate(text string) string {
	text = strings.TrimSpace(text)
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return FormatDate(t)
		}
	}
	return ""
}

// NormalizeTime parses a typed time and returns it as H:MM, or "" when the
// text is not a time of day.
func NormalizeTime(text string) string {
	text = strings.ToUpper(strings.TrimSpace(text))
	for _, layout := range timeInputLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return FormatTime(t)
		}
	}
	return ""
}

// CombineDateTime strictly parses date (D.M.YYYY) and clock (H:MM) in loc
// and returns the ISO-8601 UTC timestamp sent to the backend.
func CombineDateTime(date, clock string, loc *time.Location) (string, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(submitLayout, date+"|"+clock, loc)
	if err != nil {
		return "", errors.New(err).
			Component("sighting").
			Category(errors.CategoryValidation).
			Context("date", date).
			Context("time", clock).
			Build()
	}
	return FormatTimestamp(t), nil
}

// FormatTimestamp renders t in UTC with millisecond precision and a Z suffix.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp accepts RFC 3339 with or without fractional seconds and a
// few zone-less variants.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
