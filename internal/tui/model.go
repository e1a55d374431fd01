// Package tui implements the interactive calendar over the scheduling
// engine: window paging, day selection, skip/status/generate actions.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mkowalczyk/platecal/internal/api"
	"github.com/mkowalczyk/platecal/internal/domain"
	"github.com/mkowalczyk/platecal/internal/engine"
)

type keyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Today    key.Binding
	Skip     key.Binding
	Generate key.Binding
	Cooked   key.Binding
	Frozen   key.Binding
	Consumed key.Binding
	Planned  key.Binding
	Delete   key.Binding
	Refresh  key.Binding
	Quit     key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev day")),
		Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next day")),
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev week")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next week")),
		NextPage: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next window")),
		PrevPage: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev window")),
		Today:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
		Skip:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip/unskip")),
		Generate: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "generate")),
		Cooked:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "cooked")),
		Frozen:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "frozen")),
		Consumed: key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "eaten")),
		Planned:  key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "back to planned")),
		Delete:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete plan")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:  key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "overwrite")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.NextPage, k.PrevPage, k.Skip, k.Generate, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down, k.Today},
		{k.NextPage, k.PrevPage, k.Refresh},
		{k.Skip, k.Cooked, k.Frozen, k.Consumed, k.Planned},
		{k.Generate, k.Delete, k.Quit},
	}
}

type bootedMsg struct{ err error }
type refreshedMsg struct{ err error }

// actionMsg reports a completed mutation: its error (if any) and a short
// note for the status line.
type actionMsg struct {
	err  error
	note string
}

// Model is the interactive calendar. All engine calls run inside tea.Cmds
// so the update loop never blocks on the network.
type Model struct {
	eng      *engine.Engine
	view     engine.View
	selected time.Time

	keys    keyMap
	help    help.Model
	spinner spinner.Model

	booted     bool
	busy       bool
	confirming bool
	status     string
	err        error
}

// New creates the calendar model. The engine must not be bootstrapped yet;
// Init does that asynchronously.
func New(eng *engine.Engine) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		eng:     eng,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		return bootedMsg{err: m.eng.Bootstrap(context.Background())}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case bootedMsg:
		m.booted = true
		m.busy = false
		m.err = msg.err
		m.view = m.eng.View()
		m.selected = m.view.Cursor
		return m, nil

	case refreshedMsg:
		m.busy = false
		m.err = msg.err
		m.view = m.eng.View()
		m.clampSelection()
		return m, nil

	case actionMsg:
		m.busy = false
		m.view = m.eng.View()
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrConflict) {
				m.confirming = true
				m.status = "A plan already covers this window. Press o to overwrite, esc to keep it."
				return m, nil
			}
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = msg.note
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if !m.booted || m.busy {
		return m, nil
	}

	if m.confirming {
		switch {
		case key.Matches(msg, m.keys.Confirm):
			m.confirming = false
			return m.runAction("Regenerated the window.", func(ctx context.Context) error {
				return m.eng.Overwrite(ctx)
			})
		case key.Matches(msg, m.keys.Cancel):
			m.confirming = false
			m.status = "Kept the existing plan."
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Left):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-7)
	case key.Matches(msg, m.keys.Down):
		m.moveSelection(7)

	case key.Matches(msg, m.keys.NextPage):
		return m.page(1)
	case key.Matches(msg, m.keys.PrevPage):
		return m.page(-1)
	case key.Matches(msg, m.keys.Today):
		m.eng.Today(context.Background())
		return m.refresh()
	case key.Matches(msg, m.keys.Refresh):
		return m.refresh()

	case key.Matches(msg, m.keys.Skip):
		date := m.selected
		return m.runAction("Toggled skip for "+domain.DateKey(date)+".", func(ctx context.Context) error {
			return m.eng.ToggleSkip(ctx, date)
		})
	case key.Matches(msg, m.keys.Generate):
		return m.runAction("Generated a plan.", func(ctx context.Context) error {
			return m.eng.Generate(ctx)
		})
	case key.Matches(msg, m.keys.Cooked):
		return m.setStatus(domain.StatusCooked)
	case key.Matches(msg, m.keys.Frozen):
		return m.setStatus(domain.StatusFrozen)
	case key.Matches(msg, m.keys.Consumed):
		return m.setStatus(domain.StatusConsumed)
	case key.Matches(msg, m.keys.Planned):
		return m.setStatus(domain.StatusPlanned)
	case key.Matches(msg, m.keys.Delete):
		if slot, ok := m.selectedSlot(); ok {
			planID := slot.PlanID
			return m.runAction("Deleted plan "+planID+".", func(ctx context.Context) error {
				return m.eng.DeletePlan(ctx, planID)
			})
		}
		m.status = "No plan on the selected day."
	}
	return m, nil
}

func (m Model) page(direction int) (tea.Model, tea.Cmd) {
	m.busy = true
	m.status = ""
	return m, func() tea.Msg {
		return refreshedMsg{err: m.eng.NavigateNow(context.Background(), direction)}
	}
}

func (m Model) refresh() (tea.Model, tea.Cmd) {
	m.busy = true
	m.status = ""
	return m, func() tea.Msg {
		return refreshedMsg{err: m.eng.Refresh(context.Background())}
	}
}

func (m Model) runAction(note string, fn func(context.Context) error) (tea.Model, tea.Cmd) {
	m.busy = true
	m.status = ""
	return m, func() tea.Msg {
		return actionMsg{err: fn(context.Background()), note: note}
	}
}

func (m Model) setStatus(status domain.MealStatus) (tea.Model, tea.Cmd) {
	slot, ok := m.selectedSlot()
	if !ok {
		m.status = "No meal on the selected day."
		return m, nil
	}
	return m.runAction("Marked "+domain.DateKey(slot.Date)+" "+string(status)+".",
		func(ctx context.Context) error {
			return m.eng.SetStatus(ctx, slot.PlanID, slot.DayIndex, status)
		})
}

func (m *Model) selectedSlot() (domain.MealSlot, bool) {
	slot, ok := m.view.Index[domain.DateKey(m.selected)]
	return slot, ok
}

func (m *Model) moveSelection(days int) {
	next := m.selected.AddDate(0, 0, days)
	if m.view.Window.ContainsDate(next) {
		m.selected = next
	}
}

// clampSelection keeps the selection inside the window after paging.
func (m *Model) clampSelection() {
	if m.view.Window.DurationDays == 0 {
		return
	}
	if !m.view.Window.ContainsDate(m.selected) {
		m.selected = m.view.Window.StartDate
	}
}

// Run starts the interactive calendar.
func Run(eng *engine.Engine) error {
	_, err := tea.NewProgram(New(eng), tea.WithAltScreen()).Run()
	return err
}
