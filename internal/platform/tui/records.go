package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tui-stacker/internal/registry"
	"github.com/vovakirdan/tui-stacker/internal/stacker/replay"
	"github.com/vovakirdan/tui-stacker/internal/storage"
)

const maxRecords = 200

// RecordsKeyMap defines the key bindings for the record browser.
type RecordsKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Watch  key.Binding
	Delete key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k RecordsKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Watch, k.Delete, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k RecordsKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Watch},
		{k.Delete, k.Back, k.Quit},
	}
}

// DefaultRecordsKeyMap returns default key bindings.
func DefaultRecordsKeyMap() RecordsKeyMap {
	return RecordsKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "down"),
		),
		Watch: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "watch"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// RecordsModel lists stored records and lets the user pick one to watch.
type RecordsModel struct {
	store     *storage.Store
	records   []storage.RecordEntry
	summary   string
	err       error
	table     table.Model
	help      help.Model
	keys      RecordsKeyMap
	width     int
	height    int
	quitting  bool
	goingBack bool
	selected  string
}

// NewRecordsModel creates a record browser over store.
func NewRecordsModel(store *storage.Store, width, height int) RecordsModel {
	m := RecordsModel{
		store:  store,
		keys:   DefaultRecordsKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.table = m.createTable()
	m.load()
	return m
}

func (m *RecordsModel) createTable() table.Model {
	columns := []table.Column{
		{Title: "Mode", Width: 12},
		{Title: "Score", Width: 9},
		{Title: "Lines", Width: 6},
		{Title: "Time", Width: 9},
		{Title: "Branches", Width: 8},
		{Title: "Date", Width: 12},
		{Title: "ID", Width: 8},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(max(m.height-9, 3)),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// load refreshes the table and the per-mode summary from the store.
func (m *RecordsModel) load() {
	m.records, m.err = nil, nil
	if m.store == nil {
		m.table.SetRows(nil)
		return
	}

	m.records, m.err = m.store.RecentRecords(maxRecords)

	var parts []string
	for _, g := range registry.List() {
		stats, err := m.store.GetGameStats(g.ID)
		if err != nil || stats.GamesCount == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %d played, best %d", g.Title, stats.GamesCount, stats.HighScore))
	}
	m.summary = strings.Join(parts, "   ")

	rows := make([]table.Row, len(m.records))
	for i, r := range m.records {
		rows[i] = table.Row{
			r.Header.Game,
			fmt.Sprintf("%d", r.Header.Score),
			fmt.Sprintf("%d", r.Header.Lines),
			replay.Duration(r.Header.Frames).Round(100 * time.Millisecond).String(),
			fmt.Sprintf("%d", r.Header.Segments-1),
			r.CreatedAt.Format("Jan 02 15:04"),
			r.ID[:min(8, len(r.ID))],
		}
	}
	m.table.SetRows(rows)
}

// Init initializes the record browser.
func (m RecordsModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the record browser.
func (m RecordsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Watch):
			if r, ok := m.current(); ok {
				m.selected = r.ID
				return m, tea.Quit
			}
			return m, nil

		case key.Matches(msg, m.keys.Delete):
			if r, ok := m.current(); ok && m.store != nil {
				m.err = m.store.DeleteRecord(r.ID)
				if m.err == nil {
					m.load()
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table = m.createTable()
		m.load()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m RecordsModel) current() (storage.RecordEntry, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.records) {
		return storage.RecordEntry{}, false
	}
	return m.records[i], true
}

// View renders the record browser.
func (m RecordsModel) View() string {
	if m.quitting || m.goingBack || m.selected != "" {
		return ""
	}

	var b strings.Builder
	b.WriteString(menuTitleStyle.MarginBottom(1).Render(centerText("RECORDS", m.width)))
	b.WriteString("\n")
	if m.summary != "" {
		b.WriteString(centerText(m.summary, m.width))
	}
	b.WriteString("\n\n")

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	content := m.table.View()
	if len(m.records) == 0 {
		content = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true).
			Padding(2, 4).
			Render("No records yet.\nFinish a round to keep its replay here.")
	}
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, boxStyle.Render(content)))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.err.Error()))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// Selected returns the id of the record to watch, or empty.
func (m RecordsModel) Selected() string {
	return m.selected
}

// IsGoingBack returns true if user wants to go back to menu.
func (m RecordsModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m RecordsModel) IsQuitting() bool {
	return m.quitting
}

// RunRecords runs the record browser and returns the record to watch, if
// any, and whether the user wants the menu back.
func RunRecords(store *storage.Store, width, height int) (selected string, goBack bool, err error) {
	p := tea.NewProgram(NewRecordsModel(store, width, height), tea.WithAltScreen())

	finalModel, err := p.Run()
	if err != nil {
		return "", false, err
	}

	m, ok := finalModel.(RecordsModel)
	if !ok {
		return "", false, nil
	}
	return m.Selected(), m.IsGoingBack(), nil
}
