package list

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/tphakala/duckwatch/internal/sighting"
	"gopkg.in/yaml.v3"
)

type format string

const (
	formatTable format = "table"
	formatJSON  format = "json"
	formatYAML  format = "yaml"
)

func parseFormat(s string) (format, error) {
	switch f := format(strings.ToLower(strings.TrimSpace(s))); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func write(w io.Writer, f format, records []sighting.Record, state sighting.SortState, loc *time.Location) error {
	switch f {
	case formatJSON:
		dtos := toDTOs(records)
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(dtos)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(w, renderTable(records, state, loc))
		return err
	}
}

// toDTOs keeps the JSON output in the same shape the backend serves.
func toDTOs(records []sighting.Record) []sighting.RecordDTO {
	dtos := make([]sighting.RecordDTO, 0, len(records))
	for _, r := range records {
		dtos = append(dtos, sighting.NewRecordDTO(r))
	}
	return dtos
}

func renderTable(records []sighting.Record, state sighting.SortState, loc *time.Location) string {
	headers := make([]string, 0, len(sighting.Columns))
	for _, c := range sighting.Columns {
		title := c.String()
		if arrow := state.Indicator(c); arrow != "" {
			title += " " + arrow
		}
		headers = append(headers, title)
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		local := r.DateTime.In(loc)
		rows = append(rows, []string{
			strconv.Itoa(r.ID),
			sighting.FormatDate(local) + " " + sighting.FormatTime(local),
			r.Species,
			r.Description,
			strconv.Itoa(r.Count),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}
