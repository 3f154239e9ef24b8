package dashboard

import (
	"github.com/charmbracelet/bubbles/key"
)

// DashboardKeys are the metrics dashboard bindings.
type DashboardKeys struct {
	Refresh key.Binding
	Refetch key.Binding
	Suspend key.Binding
	Help    key.Binding
	Quit    key.Binding
}

// DefaultDashboardKeys returns the standard bindings.
func DefaultDashboardKeys() DashboardKeys {
	return DashboardKeys{
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Refetch: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
		Suspend: key.NewBinding(key.WithKeys("ctrl+z"), key.WithHelp("ctrl+z", "suspend")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k DashboardKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Refresh, k.Help, k.Quit}
}

func (k DashboardKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Refresh, k.Refetch}, {k.Suspend, k.Help, k.Quit}}
}

// BrowserKeys are the list browser bindings.
type BrowserKeys struct {
	Up       key.Binding
	Down     key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Search   key.Binding
	Clear    key.Binding
	Toggle   key.Binding
	Refetch  key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultBrowserKeys returns the standard bindings.
func DefaultBrowserKeys() BrowserKeys {
	return BrowserKeys{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		NextPage: key.NewBinding(key.WithKeys("n", "right", "l"), key.WithHelp("n/→", "next page")),
		PrevPage: key.NewBinding(key.WithKeys("p", "left", "h"), key.WithHelp("p/←", "prev page")),
		Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Clear:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear search")),
		Toggle:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "suspend/activate")),
		Refetch:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k BrowserKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.NextPage, k.PrevPage, k.Search, k.Help, k.Quit}
}

func (k BrowserKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.NextPage, k.PrevPage},
		{k.Search, k.Clear, k.Toggle, k.Refetch},
		{k.Help, k.Quit},
	}
}
