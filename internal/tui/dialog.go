package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tphakala/duckwatch/internal/sighting"
	"github.com/tphakala/duckwatch/internal/viewmodel"
)

const labelWidth = 14

var fieldLabels = map[sighting.Field]string{
	sighting.FieldDate:        "Date",
	sighting.FieldTime:        "Time",
	sighting.FieldSpecies:     "Species",
	sighting.FieldDescription: "Description",
	sighting.FieldCount:       "Count",
}

var fieldPlaceholders = map[sighting.Field]string{
	sighting.FieldDate:        "D.M.YYYY",
	sighting.FieldTime:        "H:MM",
	sighting.FieldDescription: "what did you see?",
	sighting.FieldCount:       "1",
}

// dialog is the modal creation form. Text fields are bubbles textinputs,
// the species field cycles through the known list.
type dialog struct {
	inputs map[sighting.Field]*textinput.Model
	focus  int
}

func newDialog() dialog {
	d := dialog{inputs: make(map[sighting.Field]*textinput.Model)}
	for _, field := range sighting.FormFields {
		if field == sighting.FieldSpecies {
			continue
		}
		ti := textinput.New()
		ti.Prompt = ""
		ti.Placeholder = fieldPlaceholders[field]
		ti.CharLimit = 120
		ti.Width = 36
		d.inputs[field] = &ti
	}
	return d
}

func (d *dialog) focusedField() sighting.Field {
	return sighting.FormFields[d.focus]
}

// load copies the draft into the inputs and focuses the first field.
func (d *dialog) load(draft sighting.Draft) tea.Cmd {
	for field, ti := range d.inputs {
		ti.SetValue(draft.Value(field))
	}
	d.focus = 0
	return d.refocus()
}

func (d *dialog) move(delta int) tea.Cmd {
	n := len(sighting.FormFields)
	d.focus = (d.focus + delta + n) % n
	return d.refocus()
}

func (d *dialog) refocus() tea.Cmd {
	var cmd tea.Cmd
	for field, ti := range d.inputs {
		if field == d.focusedField() {
			cmd = ti.Focus()
		} else {
			ti.Blur()
		}
	}
	return cmd
}

func (d *dialog) update(msg tea.Msg) tea.Cmd {
	ti, ok := d.inputs[d.focusedField()]
	if !ok {
		return nil
	}
	updated, cmd := ti.Update(msg)
	*ti = updated
	return cmd
}

// push writes the typed text into the form view-model.
func (d *dialog) push(form *viewmodel.FormViewModel) {
	for field, ti := range d.inputs {
		// fields come from FormFields, UpdateField cannot reject them
		_ = form.UpdateField(field, ti.Value())
	}
}

// cycleSpecies selects the neighbour of the current species.
func cycleSpecies(form *viewmodel.FormViewModel, delta int) {
	species := form.Species()
	if len(species) == 0 {
		return
	}
	current := slices.Index(species, form.Draft().Species)
	next := (current + delta + len(species)) % len(species)
	if current < 0 && delta < 0 {
		next = len(species) - 1
	}
	_ = form.SelectSpecies(next)
}

func (d *dialog) view(form *viewmodel.FormViewModel, s Styles) string {
	draft := form.Draft()

	var sb strings.Builder
	sb.WriteString(s.Title.Render("New sighting"))
	sb.WriteString("\n\n")

	for i, field := range sighting.FormFields {
		label := s.Label
		if i == d.focus {
			label = s.FocusedLabel
		}
		sb.WriteString(label.Render(fieldLabels[field]))

		if ti, ok := d.inputs[field]; ok {
			sb.WriteString(ti.View())
		} else {
			sb.WriteString(speciesSelector(draft.Species, i == d.focus, s))
		}
		sb.WriteString("\n")

		if msg, ok := draft.Errors[field]; ok {
			sb.WriteString(s.FieldError.Render(msg))
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	switch {
	case form.IsSubmitting():
		sb.WriteString(s.Muted.Render("Saving..."))
	case form.Err() != nil:
		sb.WriteString(s.Error.Render(fmt.Sprintf("Could not save: %v", form.Err())))
	default:
		sb.WriteString(s.Muted.Render("[Enter] Save  [Esc] Cancel  [Tab] Next field  [←/→] Species"))
	}

	return s.Dialog.Render(sb.String())
}

func speciesSelector(species string, focused bool, s Styles) string {
	if species == "" {
		species = "(no species)"
	}
	if focused {
		return "◀ " + species + " ▶"
	}
	return "  " + species
}
