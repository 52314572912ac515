package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tphakala/duckwatch/internal/errors"
	"github.com/tphakala/duckwatch/internal/sighting"
	"github.com/tphakala/duckwatch/internal/viewmodel"
)

// Column widths, in table order.
var columnWidths = map[sighting.Column]int{
	sighting.ColumnID:          7,
	sighting.ColumnDateTime:    17,
	sighting.ColumnSpecies:     14,
	sighting.ColumnDescription: 40,
	sighting.ColumnCount:       9,
}

// chromeHeight is the number of lines around the table: title, status and help.
const chromeHeight = 6

type refreshedMsg struct{ err error }

type speciesLoadedMsg struct{ err error }

type submittedMsg struct{ err error }

// Option customizes a Model.
type Option func(*Model)

// WithLocation sets the zone sighting times are shown in.
func WithLocation(loc *time.Location) Option {
	return func(m *Model) {
		if loc != nil {
			m.loc = loc
		}
	}
}

// WithStyles replaces DefaultStyles.
func WithStyles(s Styles) Option {
	return func(m *Model) { m.styles = s }
}

// Model is the bubbletea model wrapping the list and form view-models.
type Model struct {
	ctx    context.Context
	list   *viewmodel.ListViewModel
	form   *viewmodel.FormViewModel
	table  table.Model
	dialog dialog
	styles Styles
	loc    *time.Location
	width  int
	height int

	// set from the Enter that issued submitCmd until its submittedMsg arrives
	submitting bool
}

// New creates the model. ctx bounds every backend call made from the UI.
func New(ctx context.Context, list *viewmodel.ListViewModel, form *viewmodel.FormViewModel, opts ...Option) Model {
	m := Model{
		ctx:    ctx,
		list:   list,
		form:   form,
		dialog: newDialog(),
		styles: DefaultStyles(),
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.table = table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(15),
		table.WithStyles(m.styles.Table),
	)
	m.syncTable()
	return m
}

// Init fetches the list and the species.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.loadSpeciesCmd())
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return refreshedMsg{err: m.list.Refresh(m.ctx)}
	}
}

func (m Model) loadSpeciesCmd() tea.Cmd {
	return func() tea.Msg {
		return speciesLoadedMsg{err: m.form.LoadSpeciesOnce(m.ctx)}
	}
}

func (m Model) submitCmd() tea.Cmd {
	return func() tea.Msg {
		return submittedMsg{err: m.form.Submit(m.ctx)}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.table.SetHeight(max(msg.Height-chromeHeight, 3))
		return m, nil

	case submittedMsg:
		m.submitting = false
		m.syncTable()
		return m, nil

	case refreshedMsg, speciesLoadedMsg:
		// the view-models hold the outcome, only the table needs rebuilding
		m.syncTable()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.form.IsOpen() {
			return m.updateDialog(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	if m.form.IsOpen() {
		cmd = m.dialog.update(msg)
	} else {
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "q":
		return m, tea.Quit
	case "r":
		return m, m.refreshCmd()
	case "n":
		m.form.Open()
		return m, tea.Batch(m.dialog.load(m.form.Draft()), m.loadSpeciesCmd())
	case "1", "2", "3", "4", "5":
		idx, _ := strconv.Atoi(key)
		m.list.SelectSortColumn(sighting.Columns[idx-1])
		m.syncTable()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) updateDialog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.submitting || m.form.IsSubmitting() {
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.form.Close()
		return m, nil
	case "tab", "down":
		return m, m.dialog.move(1)
	case "shift+tab", "up":
		return m, m.dialog.move(-1)
	case "enter":
		m.dialog.push(m.form)
		m.submitting = true
		return m, m.submitCmd()
	case "left", "right":
		if m.dialog.focusedField() == sighting.FieldSpecies {
			delta := 1
			if msg.String() == "left" {
				delta = -1
			}
			cycleSpecies(m.form, delta)
			return m, nil
		}
	}

	return m, m.dialog.update(msg)
}

func (m Model) columns() []table.Column {
	state := m.list.SortState()
	cols := make([]table.Column, 0, len(sighting.Columns))
	for i, c := range sighting.Columns {
		title := fmt.Sprintf("%d %s", i+1, c.String())
		if arrow := state.Indicator(c); arrow != "" {
			title += " " + arrow
		}
		cols = append(cols, table.Column{Title: title, Width: columnWidths[c]})
	}
	return cols
}

// syncTable rebuilds headers and rows from the list view-model.
func (m *Model) syncTable() {
	records := m.list.Records()
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		local := r.DateTime.In(m.loc)
		rows = append(rows, table.Row{
			strconv.Itoa(r.ID),
			sighting.FormatDate(local) + " " + sighting.FormatTime(local),
			r.Species,
			r.Description,
			strconv.Itoa(r.Count),
		})
	}
	// columns first: SetRows renders against the current column set
	m.table.SetColumns(m.columns())
	m.table.SetRows(rows)
}

// View renders the list, or the dialog on top of it when the form is open.
func (m Model) View() string {
	if m.form.IsOpen() {
		box := m.dialog.view(m.form, m.styles)
		if m.width == 0 || m.height == 0 {
			return box
		}
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	var sb strings.Builder
	sb.WriteString(m.styles.Title.Render("Duck sightings"))
	sb.WriteString("\n\n")
	sb.WriteString(m.table.View())
	sb.WriteString("\n")
	sb.WriteString(m.statusLine())
	sb.WriteString("\n")
	sb.WriteString(m.styles.Muted.Render(" [1-5] Sort  [n] New sighting  [r] Refresh  [q] Quit"))
	return sb.String()
}

func (m Model) statusLine() string {
	if err := m.list.Err(); err != nil {
		return m.styles.Error.Render("Could not load sightings: " + describe(err))
	}
	if err := m.form.Err(); err != nil {
		return m.styles.Error.Render("Sighting form: " + describe(err))
	}
	if m.list.State() == viewmodel.StateLoading {
		return m.styles.Status.Render("Loading...")
	}
	return m.styles.Status.Render(fmt.Sprintf("%d sightings", m.list.Len()))
}

// describe prefers the short message of an enhanced error.
func describe(err error) string {
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		return ee.GetMessage()
	}
	return err.Error()
}
