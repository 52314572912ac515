// Package tui renders the sightings list and the creation form in the terminal.
package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	ColorPrimary     = lipgloss.Color("#2E7D32") // reed green
	ColorAccent      = lipgloss.Color("#F9A825") // bill yellow
	ColorMuted       = lipgloss.Color("#8A8F98")
	ColorBorder      = lipgloss.Color("#4A5360")
	ColorDestructive = lipgloss.Color("#E53935")
)

// Styles groups every style the UI uses.
type Styles struct {
	Title        lipgloss.Style
	Status       lipgloss.Style
	Error        lipgloss.Style
	Muted        lipgloss.Style
	Dialog       lipgloss.Style
	Label        lipgloss.Style
	FocusedLabel lipgloss.Style
	FieldError   lipgloss.Style
	Table        table.Styles
}

// DefaultStyles returns the standard look.
func DefaultStyles() Styles {
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorBorder).
		BorderBottom(true).
		Bold(true)
	ts.Selected = ts.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(ColorPrimary).
		Bold(false)

	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(0, 1),
		Status: lipgloss.NewStyle().
			Foreground(ColorMuted).
			Padding(0, 1),
		Error: lipgloss.NewStyle().
			Foreground(ColorDestructive).
			Bold(true).
			Padding(0, 1),
		Muted: lipgloss.NewStyle().
			Foreground(ColorMuted),
		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(1, 2),
		Label: lipgloss.NewStyle().
			Width(labelWidth).
			Foreground(ColorMuted),
		FocusedLabel: lipgloss.NewStyle().
			Width(labelWidth).
			Foreground(ColorAccent).
			Bold(true),
		FieldError: lipgloss.NewStyle().
			Foreground(ColorDestructive).
			PaddingLeft(labelWidth),
		Table: ts,
	}
}
