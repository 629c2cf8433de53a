// Package tui is the terminal rendition of the dashboard: a category
// picker, a loading spinner, the error banner and the comparison bars and
// table, all driven by the shared view state store.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/seenimoa/disciplineviz/internal/render"
	"github.com/seenimoa/disciplineviz/internal/store"
	"github.com/seenimoa/disciplineviz/internal/viewmodel"
	"github.com/seenimoa/disciplineviz/pkg/models"
)

var (
	accentPrimary   = lipgloss.Color("#8b5cf6")
	accentSecondary = lipgloss.Color("#f59e0b")
	mutedText       = lipgloss.Color("#6b7280")
	warningText     = lipgloss.Color("#ef4444")
	panelBorder     = lipgloss.Color("#4f46e5")
)

var (
	headerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(accentPrimary)

	statusStyle = lipgloss.NewStyle().
			Foreground(accentSecondary).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(warningText).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(mutedText)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(accentPrimary).
			Bold(true)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(panelBorder).
			Padding(0, 1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(accentSecondary).
			Bold(true)
)

// stateMsg carries a store snapshot published after a state change.
type stateMsg struct {
	state store.State
}

// actionDoneMsg reports the outcome of a toggle, clear or reload.
type actionDoneMsg struct {
	action string
	err    error
}

// Model is the bubbletea model of the terminal dashboard.
type Model struct {
	store       *store.Store
	schema      models.TableSchema
	categories  []models.Category
	loadOnStart bool

	updates chan store.State
	unsub   func()

	state   store.State
	cursor  int
	spinner spinner.Model
	width   int
	status  string
}

// NewModel builds a model over st. When loadOnStart is set, Init fetches
// every category.
func NewModel(st *store.Store, schema models.TableSchema, loadOnStart bool) Model {
	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = lipgloss.NewStyle().Foreground(accentSecondary)

	updates := make(chan store.State, 1)
	unsub := st.Subscribe(func(s store.State) {
		// Keep only the latest snapshot for the UI loop.
		for {
			select {
			case updates <- s:
				return
			default:
			}
			select {
			case <-updates:
			default:
			}
		}
	})

	return Model{
		store:       st,
		schema:      schema,
		categories:  models.AllCategories(),
		loadOnStart: loadOnStart,
		updates:     updates,
		unsub:       unsub,
		state:       st.Snapshot(),
		spinner:     spin,
		width:       80,
	}
}

// Close detaches the model from the store.
func (m Model) Close() {
	if m.unsub != nil {
		m.unsub()
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, waitForStateCmd(m.updates)}
	if m.loadOnStart {
		cmds = append(cmds, loadAllCmd(m.store))
	}
	return tea.Batch(cmds...)
}

func waitForStateCmd(ch <-chan store.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg{state: s}
	}
}

func toggleCmd(st *store.Store, c models.Category) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{action: "toggle " + string(c), err: st.Toggle(context.Background(), c)}
	}
}

func clearCmd(st *store.Store) tea.Cmd {
	return func() tea.Msg {
		st.Clear()
		return actionDoneMsg{action: "clear"}
	}
}

func loadAllCmd(st *store.Store) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{action: "reload", err: st.LoadAll(context.Background())}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stateMsg:
		m.state = msg.state
		return m, waitForStateCmd(m.updates)

	case actionDoneMsg:
		m.state = m.store.Snapshot()
		switch {
		case errors.Is(msg.err, store.ErrStale):
			m.status = msg.action + ": superseded"
		case msg.err != nil:
			m.status = msg.action + ": failed"
		default:
			m.status = msg.action + ": done"
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.Close()
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.categories)-1 {
				m.cursor++
			}
			return m, nil
		case " ", "enter", "x":
			c := m.categories[m.cursor]
			m.status = "toggling " + string(c)
			return m, toggleCmd(m.store, c)
		case "c":
			if len(m.state.Selected) == 0 {
				return m, nil
			}
			return m, clearCmd(m.store)
		case "r":
			m.status = "reloading"
			return m, loadAllCmd(m.store)
		}
	}
	return m, nil
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(render.PageTitle))
	sb.WriteString("\n\n")

	sb.WriteString(renderPanel("Select Categories (Multiple Selection)", m.renderCategories()))
	sb.WriteString("\n")

	if m.state.Loading {
		sb.WriteString(statusStyle.Render(m.spinner.View() + " Loading data..."))
		sb.WriteString("\n")
	}
	if m.state.Err != "" {
		sb.WriteString(errorStyle.Render("Error: " + m.state.Err))
		sb.WriteString("\n")
		sb.WriteString(hintStyle.Render(render.ErrorHint))
		sb.WriteString("\n")
	}

	switch {
	case m.state.Loading:
	case len(m.state.Selected) > 0:
		body := renderBars(viewmodel.ChartRows(m.state), m.barWidth()) + "\n" +
			render.TextTable(viewmodel.BuildTable(viewmodel.TableRows(m.state), m.schema))
		sb.WriteString(renderPanel(viewmodel.Title(m.state), strings.TrimRight(body, "\n")))
		sb.WriteString("\n")
	default:
		sb.WriteString(hintStyle.Render("Select one or more categories above to view data"))
		sb.WriteString("\n")
	}

	if m.status != "" {
		sb.WriteString(hintStyle.Render(m.status))
		sb.WriteString("\n")
	}
	sb.WriteString(hintStyle.Render("↑/↓ move • space toggle • c clear • r reload • q quit"))
	return sb.String()
}

func (m Model) renderCategories() string {
	lines := make([]string, len(m.categories))
	for i, c := range m.categories {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		box := "[ ]"
		if m.state.IsSelected(c) {
			box = "[x]"
		}
		label := lipgloss.NewStyle().Foreground(lipgloss.Color(c.Color())).Render(string(c))
		lines[i] = fmt.Sprintf("%s%s %s", cursor, box, label)
	}
	return strings.Join(lines, "\n")
}

func (m Model) barWidth() int {
	w := m.width - 50
	if w < 10 {
		w = 10
	}
	if w > 60 {
		w = 60
	}
	return w
}

// renderBars draws one colored horizontal bar per chart row.
func renderBars(rows []models.ChartRow, width int) string {
	if len(rows) == 0 {
		return hintStyle.Render("No data")
	}
	maxVal := 0.0
	labelW := 0
	for _, r := range rows {
		maxVal = math.Max(maxVal, r.PctEnrollment)
		if n := lipgloss.Width(string(r.Name)); n > labelW {
			labelW = n
		}
	}
	var sb strings.Builder
	for _, r := range rows {
		n := 0
		if maxVal > 0 {
			n = int(math.Round(r.PctEnrollment / maxVal * float64(width)))
		}
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(r.Fill)).Render(strings.Repeat("█", n))
		name := lipgloss.NewStyle().Width(labelW).Render(string(r.Name))
		sb.WriteString(fmt.Sprintf("%s %s %g  %s\n", name, bar, r.PctEnrollment, hintStyle.Render(render.Tooltip(r))))
	}
	return sb.String()
}

func renderPanel(title, body string) string {
	return panelStyle.Render(panelTitleStyle.Render(title) + "\n" + body)
}

// Run starts the terminal dashboard and blocks until the user quits.
func Run(st *store.Store, schema models.TableSchema, loadOnStart bool) error {
	m := NewModel(st, schema, loadOnStart)
	defer m.Close()
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
