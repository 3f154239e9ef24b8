package dashboard

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/adminctl/internal/api"
	"github.com/rileyhilliard/adminctl/internal/hook"
	"github.com/rileyhilliard/adminctl/internal/ui"
)

// Source is the part of *hook.Dashboard the view drives.
type Source interface {
	Start()
	State() hook.DashboardState
	Refresh()
	Refetch()
	NotifyFocus()
	NotifyVisibility(visible bool)
	Close()
}

// HistorySize is how many snapshots the sparklines remember.
const HistorySize = 40

// clockInterval drives the "updated N ago" text.
const clockInterval = time.Second

// Options configures the dashboard view.
type Options struct {
	Title      string
	MaxRetries int
	// Now defaults to time.Now.
	Now func() time.Time
}

// Model is the Bubble Tea model for the metrics dashboard.
type Model struct {
	src     Source
	changes <-chan struct{}
	opts    Options

	state    hook.DashboardState
	shown    *api.MetricsSnapshot
	sessions *ui.Series
	latency  *ui.Series

	keys     DashboardKeys
	help     help.Model
	spinner  spinner.Model
	now      time.Time
	width    int
	height   int
	showHelp bool
	quitting bool
}

// stateMsg carries a fresh copy of the hook state.
type stateMsg hook.DashboardState

// clockMsg advances the model's notion of now.
type clockMsg time.Time

// New creates the dashboard model. changes must be the channel paired with
// the OnChange callback src was built with (see Signal).
func New(src Source, changes <-chan struct{}, opts Options) Model {
	if opts.Title == "" {
		opts.Title = "adminctl dashboard"
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = hook.DefaultMaxRetries
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return Model{
		src:      src,
		changes:  changes,
		opts:     opts,
		sessions: ui.NewSeries(HistorySize),
		latency:  ui.NewSeries(HistorySize),
		keys:     DefaultDashboardKeys(),
		help:     help.New(),
		spinner:  ui.NewSpinner(),
		now:      opts.Now(),
	}
}

// Init starts the hook and the background commands.
func (m Model) Init() tea.Cmd {
	src := m.src
	return tea.Batch(
		func() tea.Msg {
			src.Start()
			return stateMsg(src.State())
		},
		m.waitCmd(),
		m.spinner.Tick,
		m.clockCmd(),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.FocusMsg:
		m.src.NotifyFocus()

	case tea.ResumeMsg:
		m.src.NotifyVisibility(true)

	case stateMsg:
		m.apply(hook.DashboardState(msg))
		return m, m.waitCmd()

	case clockMsg:
		m.now = time.Time(msg)
		return m, m.clockCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Help) {
		m.showHelp = !m.showHelp
		return m, nil
	}
	if m.showHelp && msg.String() == "esc" {
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.src.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		m.src.Refresh()
	case key.Matches(msg, m.keys.Refetch):
		m.src.Refetch()
	case key.Matches(msg, m.keys.Suspend):
		m.src.NotifyVisibility(false)
		return m, tea.Suspend
	}
	return m, nil
}

// apply stores s, dropping copies older than what is already shown.
func (m *Model) apply(s hook.DashboardState) {
	if s.Version < m.state.Version {
		return
	}
	m.state = s
	if s.Data != nil && s.Data != m.shown {
		m.shown = s.Data
		m.sessions.Push(float64(s.Data.System.ActiveSessions))
		m.latency.Push(s.Data.System.AvgResponseMs)
	}
}

func (m Model) waitCmd() tea.Cmd {
	return waitCmd(m.changes, m.src.State, func(s hook.DashboardState) tea.Msg { return stateMsg(s) })
}

func (m Model) clockCmd() tea.Cmd {
	now := m.opts.Now
	return tea.Tick(clockInterval, func(time.Time) tea.Msg {
		return clockMsg(now())
	})
}

// State returns the last hook state the view received.
func (m Model) State() hook.DashboardState {
	return m.state
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}
