package tui

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tatianab/chosa/internal/content"
	"github.com/tatianab/chosa/internal/engine"
	"github.com/tatianab/chosa/internal/narrative"
)

type sessionState int

const (
	stateLoading sessionState = iota
	statePlaying
	stateError
)

// BootFunc loads content and builds the engine.
type BootFunc func(ctx context.Context) (*engine.Engine, error)

// Options tunes the presentation.
type Options struct {
	TypingDelay time.Duration
}

type model struct {
	state  sessionState
	boot   BootFunc
	engine *engine.Engine
	opts   Options
	err    error

	view     engine.View
	story    []string
	partial  []narrative.Segment
	ambience narrative.Ambience
	typing   bool
	next     func() (narrative.Event, bool)
	stop     func()
	gen      int

	cursor   int
	dropping bool
	notice   string

	viewport viewport.Model
	help     help.Model
	width    int
	height   int
}

type engineReadyMsg struct {
	engine *engine.Engine
}

type bootFailedMsg struct {
	err error
}

type typeTickMsg struct {
	gen int
}

func NewModel(boot BootFunc, opts Options) model {
	if opts.TypingDelay <= 0 {
		opts.TypingDelay = 30 * time.Millisecond
	}
	return model{
		state:    stateLoading,
		boot:     boot,
		opts:     opts,
		help:     help.New(),
		viewport: viewport.New(80, 20),
		width:    100,
		height:   26,
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		eng, err := m.boot(context.Background())
		if err != nil {
			return bootFailedMsg{err}
		}
		return engineReadyMsg{eng}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = m.storyWidth()
		m.viewport.Height = msg.Height - 4
		m.help.Width = msg.Width

	case engineReadyMsg:
		m.engine = msg.engine
		m.state = statePlaying
		view, err := m.engine.Resume(context.Background())
		if err != nil && !errors.Is(err, engine.ErrSceneNotFound) {
			m.err = err
			m.state = stateError
			return m, nil
		}
		cmd = m.show(view, true)

	case bootFailedMsg:
		m.err = msg.err
		m.state = stateError
		return m, nil

	case typeTickMsg:
		if msg.gen != m.gen || !m.typing {
			return m, nil
		}
		if m.step() {
			cmd = m.tick()
		}

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.stopTyping()
			return m, tea.Quit
		}
		if m.state != statePlaying {
			return m, nil
		}
		cmd = m.handleKey(msg)
	}

	if m.state == statePlaying {
		m.refresh()
	}
	return m, cmd
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	ctx := context.Background()
	m.notice = ""

	if m.engine.ResetPending() {
		switch {
		case key.Matches(msg, keys.Confirm):
			view, err := m.engine.ConfirmReset(ctx)
			if err != nil && !errors.Is(err, engine.ErrSceneNotFound) {
				m.notice = err.Error()
				return nil
			}
			m.ambience = narrative.Night
			return m.show(view, true)
		case key.Matches(msg, keys.Cancel):
			m.engine.CancelReset()
		}
		return nil
	}

	// Panels toggle at any time, even while text is typing.
	switch {
	case key.Matches(msg, keys.Inventory):
		m.engine.TogglePanel(engine.PanelInventory)
		return nil
	case key.Matches(msg, keys.Menu):
		m.engine.TogglePanel(engine.PanelMenu)
		return nil
	case key.Matches(msg, keys.Stats):
		m.engine.TogglePanel(engine.PanelStats)
		return nil
	}

	if m.typing {
		for m.typing {
			m.step()
		}
		return nil
	}

	if m.dropping {
		if n, ok := digit(msg); ok {
			if err := m.engine.DropItem(ctx, n-1); err != nil {
				m.notice = fmt.Sprintf("There is no item %d.", n)
			}
		}
		m.dropping = false
		return nil
	}

	switch {
	case key.Matches(msg, keys.Save):
		if err := m.engine.Save(ctx); err != nil {
			m.notice = err.Error()
		}
	case key.Matches(msg, keys.Reset):
		m.engine.RequestReset()
	case key.Matches(msg, keys.Drop):
		if len(m.engine.Player().Inventory()) > 0 {
			m.dropping = true
		}
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.view.Choices)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Choose):
		return m.activate(m.cursor)
	default:
		if n, ok := digit(msg); ok {
			return m.activate(n - 1)
		}
	}
	return nil
}

func digit(msg tea.KeyMsg) (int, bool) {
	s := msg.String()
	if len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return int(s[0] - '0'), true
	}
	return 0, false
}

func (m *model) activate(n int) tea.Cmd {
	if m.view.NotFound || n < 0 || n >= len(m.view.Choices) {
		return nil
	}
	view, err := m.engine.Activate(context.Background(), n)
	switch {
	case err == nil, errors.Is(err, engine.ErrSceneNotFound):
		return m.show(view, false)
	case errors.Is(err, engine.ErrInventoryFull):
		// The engine message explains; the scene stays put.
	default:
		m.notice = err.Error()
	}
	return nil
}

// show starts typing a view. A not-found view replaces the whole story.
func (m *model) show(view engine.View, clear bool) tea.Cmd {
	m.stopTyping()
	m.view = view
	m.cursor = 0
	m.dropping = false

	if view.NotFound {
		m.story = nil
		for _, l := range view.Lines {
			m.story = append(m.story, errorStyle.Render(l))
		}
		return nil
	}

	if clear {
		m.story = nil
	} else if len(m.story) > 0 {
		m.story = append(m.story, "")
	}
	m.next, m.stop = iter.Pull(narrative.Typewriter(view.Lines))
	m.typing = true
	m.gen++
	return m.tick()
}

func (m model) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.opts.TypingDelay, func(time.Time) tea.Msg {
		return typeTickMsg{gen: gen}
	})
}

// step applies one typing event and reports whether more remain.
func (m *model) step() bool {
	ev, ok := m.next()
	if !ok {
		m.stopTyping()
		return false
	}
	switch ev.Kind {
	case narrative.AmbienceChanged:
		m.ambience = ev.Ambience
	case narrative.LineStarted:
		m.partial = nil
	case narrative.Revealed:
		m.partial = ev.Visible
	case narrative.LineEnded:
		m.story = append(m.story, renderSegments(ev.Visible, m.ambience))
		m.partial = nil
	}
	return true
}

func (m *model) stopTyping() {
	if m.stop != nil {
		m.stop()
	}
	m.next, m.stop = nil, nil
	m.typing = false
	m.partial = nil
}

func (m model) storyWidth() int {
	return int(float64(m.width) * 0.7)
}

func (m *model) refresh() {
	m.viewport.SetContent(m.renderStory())
	m.viewport.GotoBottom()
}

func (m model) renderStory() string {
	w := m.storyWidth()
	lines := append([]string(nil), m.story...)
	if m.typing && len(m.partial) > 0 {
		lines = append(lines, renderSegments(m.partial, m.ambience))
	}

	if !m.typing && !m.view.NotFound {
		lines = append(lines, "")
		for i, c := range m.view.Choices {
			label := fmt.Sprintf("%d. %s", i+1, c.Choice.Text)
			if i == m.cursor {
				lines = append(lines, selectedChoiceStyle.Render("> "+label))
				if c.Hover != "" {
					lines = append(lines, hoverStyle.Render(c.Hover))
				}
			} else {
				lines = append(lines, choiceStyle.Render(label))
			}
		}
	}

	msg := m.notice
	if msg == "" && m.engine != nil {
		msg = m.engine.Message()
	}
	if msg != "" {
		lines = append(lines, "", messageStyle.Render(msg))
	}
	return lipgloss.NewStyle().Width(w).Render(strings.Join(lines, "\n"))
}

func (m model) renderPanels() string {
	var sections []string

	if m.engine.PanelVisible(engine.PanelInventory) {
		title := "INVENTORY"
		if m.dropping {
			title = "DROP WHICH? (1-5)"
		}
		var b strings.Builder
		b.WriteString(titleStyle.Render(title) + "\n")
		items := m.engine.InventoryDisplay()
		if len(items) == 0 {
			b.WriteString("(empty)\n")
		}
		for _, it := range items {
			fmt.Fprintf(&b, "%d. %s\n", it.Index+1, it.ID)
			if it.Description != "" {
				b.WriteString(helpStyle.Render("   "+it.Description) + "\n")
			}
		}
		sections = append(sections, b.String())
	}

	if m.engine.PanelVisible(engine.PanelStats) {
		var b strings.Builder
		b.WriteString(titleStyle.Render("STATS") + "\n")
		for _, s := range m.engine.StatsDisplay() {
			fmt.Fprintf(&b, "%s: %s\n", s.Name, s.Value)
		}
		sections = append(sections, b.String())
	}

	if m.engine.PanelVisible(engine.PanelMenu) {
		sections = append(sections, titleStyle.Render("MENU")+"\n"+
			"[w] save\n[r] restart\n[d] drop item\n[q] quit\n")
	}

	panelWidth := m.width - m.storyWidth() - 3
	return panelStyle.Width(panelWidth).Height(m.viewport.Height).Render(strings.Join(sections, "\n"))
}

func (m model) View() string {
	var s string

	switch m.state {
	case stateLoading:
		s = "\n  Loading story... please wait.\n"

	case stateError:
		s = fmt.Sprintf("\n  %s\n\n%s",
			errorStyle.Render(failureText(m.err)),
			helpStyle.Render("  Press q to quit."))

	case statePlaying:
		if m.engine.ResetPending() {
			popup := popupStyle.Render(engine.MsgConfirmReset + "\n\n[y] yes    [n] no")
			return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, popup)
		}
		main := lipgloss.JoinHorizontal(lipgloss.Top, m.viewport.View(), m.renderPanels())
		s = lipgloss.JoinVertical(lipgloss.Left, main, "\n"+m.help.View(keys))
	}

	return "\n" + s + "\n"
}

func failureText(err error) string {
	if errors.Is(err, content.ErrFetch) || errors.Is(err, content.ErrParse) {
		return content.FailureMessage(err)
	}
	return "Error: " + err.Error()
}

// Run starts the terminal UI and blocks until the player quits.
func Run(boot BootFunc, opts Options) error {
	p := tea.NewProgram(NewModel(boot, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
