package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bell345/zapper/internal/epg"
	"github.com/bell345/zapper/internal/source"
	"github.com/bell345/zapper/internal/tui/styles"
)

const banner = "-- zapper --"

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateLoadingChannels ApplicationState = iota
	StatePicking
	StateLoadingGuide
	StateBrowsing
)

// Deps carries everything the model needs from main.
type Deps struct {
	Fetch      func(ctx context.Context, id string) ([]byte, error)
	Source     *source.Source
	ChannelURL string

	// PreselectIDs skips the picker when non-empty.
	PreselectIDs []string

	Start    time.Time
	Range    time.Duration
	Quantum  time.Duration
	Cooldown time.Duration

	Logger *slog.Logger
}

// Model is the main Bubble Tea model for the application
type Model struct {
	deps   Deps
	logger *slog.Logger

	State ApplicationState

	nav    *Navigator
	picker Picker

	spinner spinner.Model
	Width   int
	Height  int

	// Busy is set while a navigation or load command is in flight; further
	// navigation input is dropped until it reports back, keeping state
	// transitions strictly sequential.
	Busy bool

	StatusMsg string
	infoText  string

	fatalErr error
}

// NewModel creates a new application model
func NewModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentStyle
	return Model{
		deps:    deps,
		logger:  deps.Logger,
		spinner: sp,
		State:   StateLoadingChannels,
		Busy:    true,
	}
}

// FatalErr returns the error that terminated the session, if any. main
// reports it after the program exits.
func (m Model) FatalErr() error { return m.fatalErr }

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		loadChannelsCmd(m.deps.Fetch, m.deps.ChannelURL),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.picker = m.picker.SetWidth(msg.Width)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ErrMsg:
		if msg.Fatal {
			m.logger.Error("fatal error", "error", msg.Err, "context", msg.Context)
			m.fatalErr = msg
			return m, tea.Quit
		}
		m.Busy = false
		m.StatusMsg = msg.Error()
		return m, clearStatusCmd(3 * time.Second)

	case ChannelsLoadedMsg:
		return m.handleChannelsLoaded(msg)

	case GuideReadyMsg:
		m.State = StateBrowsing
		m.Busy = false
		m.infoText = banner
		return m, nil

	case NavAppliedMsg:
		m.Busy = false
		if msg.Err != nil {
			if errors.Is(msg.Err, epg.ErrDecode) {
				m.logger.Error("malformed listing document", "error", msg.Err)
				m.fatalErr = msg.Err
				return m, tea.Quit
			}
			m.logger.Warn("navigation fetch failed", "error", msg.Err)
			m.StatusMsg = "fetch failed; showing cached data"
			return m, clearStatusCmd(3 * time.Second)
		}
		return m, nil

	case ClearStatusMsg:
		m.StatusMsg = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	if m.State == StatePicking {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleChannelsLoaded(msg ChannelsLoadedMsg) (tea.Model, tea.Cmd) {
	m.logger.Info("channel index loaded", "channels", len(msg.Channels))

	if len(m.deps.PreselectIDs) > 0 {
		var selected []*epg.Channel
		for _, id := range m.deps.PreselectIDs {
			if i := epg.IndexOf(msg.Channels, id); i != -1 {
				selected = append(selected, msg.Channels[i])
			} else {
				m.logger.Warn("channel not found", "channel", id)
			}
		}
		if len(selected) > 0 {
			return m.startGuide(selected)
		}
	}

	m.State = StatePicking
	m.Busy = false
	m.picker = NewPicker(msg.Channels).SetWidth(m.Width)
	return m, textinput.Blink
}

func (m Model) startGuide(channels []*epg.Channel) (tea.Model, tea.Cmd) {
	m.nav = NewNavigator(
		channels,
		m.deps.Source.Store(),
		m.deps.Source,
		m.deps.Quantum,
		m.deps.Cooldown,
		m.logger,
	)
	m.State = StateLoadingGuide
	m.Busy = true
	w := epg.NewWindow(m.deps.Start, m.deps.Range, m.deps.Quantum)
	return m, tea.Batch(m.spinner.Tick, initGuideCmd(m.nav, w))
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the picker's text input has focus, plain "q" is query text;
	// only ctrl+c quits.
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.State != StatePicking && key.Matches(msg, Keys.Quit) {
		return m, tea.Quit
	}

	switch m.State {
	case StatePicking:
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		if m.picker.Done() {
			return m.startGuide(m.picker.Selection())
		}
		return m, cmd

	case StateBrowsing:
		if m.Busy {
			// A transition is still fetching; drop the key.
			return m, nil
		}
		sym := decodeKey(msg)
		if sym == SymNone {
			return m, nil
		}
		if sym == SymSelect {
			if p := m.nav.Highlighted(); p != nil {
				m.infoText = renderDetail(p)
			}
		}
		m.Busy = true
		return m, tea.Batch(m.spinner.Tick, applyCmd(m.nav, sym))
	}
	return m, nil
}

// decodeKey maps a key event onto the closed input alphabet the navigator
// understands.
func decodeKey(msg tea.KeyMsg) Symbol {
	switch {
	case key.Matches(msg, Keys.Left):
		return SymLeft
	case key.Matches(msg, Keys.Right):
		return SymRight
	case key.Matches(msg, Keys.Up):
		return SymUp
	case key.Matches(msg, Keys.Down):
		return SymDown
	case key.Matches(msg, Keys.Select):
		return SymSelect
	case key.Matches(msg, Keys.Reset):
		return SymReset
	case key.Matches(msg, Keys.NextDay):
		return SymNextDay
	case key.Matches(msg, Keys.PrevDay):
		return SymPrevDay
	}
	return SymNone
}

func (m Model) View() string {
	switch m.State {
	case StateLoadingChannels:
		return "\n " + m.spinner.View() + " Loading channels…\n"
	case StateLoadingGuide:
		return "\n " + m.spinner.View() + " Loading guide…\n"
	case StatePicking:
		return m.picker.View()
	case StateBrowsing:
		return m.viewGuide()
	}
	return ""
}

func (m Model) viewGuide() string {
	width := m.Width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder

	listings, _ := m.nav.Store().Listings(m.nav.Channels(), m.nav.Window())
	rows, err := RenderGrid(m.nav.Channels(), listings, m.nav.Window(), m.nav.Highlighted(), width, m.nav.Now())
	if err != nil {
		// Empty window: report it and leave navigation state alone so a
		// later correction can recover.
		b.WriteString(styles.ErrorStyle.Render("No programmes found in this window."))
		b.WriteString("\n")
	} else {
		b.WriteString(strings.Join(rows, "\n"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	info := m.infoText
	if info == "" {
		info = banner
	}
	b.WriteString(lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(info))
	b.WriteString("\n\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderFooter() string {
	if m.Busy {
		return m.spinner.View() + " " + styles.DimStyle.Render("Loading…")
	}
	if m.StatusMsg != "" {
		return styles.ErrorStyle.Render(m.StatusMsg)
	}
	return styles.DimStyle.Render("←/→ move · ↑/↓ channel · n/p day · enter details · r reset · q quit")
}
