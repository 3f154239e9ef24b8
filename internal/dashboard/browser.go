package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/adminctl/internal/api"
	"github.com/rileyhilliard/adminctl/internal/hook"
	"github.com/rileyhilliard/adminctl/internal/ui"
)

// ListSource is the part of *hook.List the browser drives.
type ListSource[T any] interface {
	Start()
	State() hook.ListState[T]
	SetPage(n int)
	SetFilters(f api.Filters)
	Refetch()
	Suspend(ctx context.Context, id, reason string) error
	Activate(ctx context.Context, id string) error
	Close()
}

// Layout describes how a record type is shown in the browser.
type Layout[T any] struct {
	Title   string
	Columns []ui.TableColumn
	Row     func(T) table.Row
	ID      func(T) string
	Status  func(T) string
}

// UserLayout shows users.
var UserLayout = Layout[api.User]{
	Title: "Users",
	Columns: []ui.TableColumn{
		{Title: "ID", Width: 10},
		{Title: "Name", Width: 22},
		{Title: "Email", Width: 30},
		{Title: "Role", Width: 8},
		{Title: "Status", Width: 10},
		{Title: "Organization", Width: 18},
		{Title: "Joined", Width: 10},
	},
	Row: func(u api.User) table.Row {
		return table.Row{u.ID, u.Name, u.Email, u.Role, u.Status, u.OrganizationName, ui.FormatDate(u.CreatedAt)}
	},
	ID:     func(u api.User) string { return u.ID },
	Status: func(u api.User) string { return u.Status },
}

// OrganizationLayout shows organizations.
var OrganizationLayout = Layout[api.Organization]{
	Title: "Organizations",
	Columns: []ui.TableColumn{
		{Title: "ID", Width: 8},
		{Title: "Name", Width: 24},
		{Title: "Plan", Width: 10},
		{Title: "Status", Width: 10},
		{Title: "Members", Width: 8},
		{Title: "Owner", Width: 28},
		{Title: "Created", Width: 10},
	},
	Row: func(o api.Organization) table.Row {
		return table.Row{o.ID, o.Name, o.Plan, o.Status, ui.FormatCount(int64(o.MemberCount)), o.OwnerEmail, ui.FormatDate(o.CreatedAt)}
	},
	ID:     func(o api.Organization) string { return o.ID },
	Status: func(o api.Organization) string { return o.Status },
}

// mutationTimeout bounds a suspend or activate issued from the browser.
const mutationTimeout = 15 * time.Second

type listMsg[T any] hook.ListState[T]

type mutationMsg struct {
	verb string
	id   string
	err  error
}

// Browser is the Bubble Tea model for paging through users or organizations.
type Browser[T any] struct {
	src     ListSource[T]
	changes <-chan struct{}
	layout  Layout[T]

	state     hook.ListState[T]
	table     table.Model
	search    textinput.Model
	searching bool
	notice    string
	noticeErr bool

	keys     BrowserKeys
	help     help.Model
	spinner  spinner.Model
	width    int
	height   int
	showHelp bool
	quitting bool
}

// NewBrowser creates a browser over src. changes must be paired with the
// OnChange callback src was built with (see Signal).
func NewBrowser[T any](src ListSource[T], changes <-chan struct{}, layout Layout[T]) Browser[T] {
	search := textinput.New()
	search.Placeholder = "name or email"
	search.Prompt = "/ "
	search.CharLimit = 64

	return Browser[T]{
		src:     src,
		changes: changes,
		layout:  layout,
		state:   src.State(),
		table:   ui.NewTable(layout.Columns, nil, 15, true),
		search:  search,
		keys:    DefaultBrowserKeys(),
		help:    help.New(),
		spinner: ui.NewSpinner(),
	}
}

// Init starts the list hook.
func (b Browser[T]) Init() tea.Cmd {
	src := b.src
	return tea.Batch(
		func() tea.Msg {
			src.Start()
			return listMsg[T](src.State())
		},
		b.waitCmd(),
		b.spinner.Tick,
	)
}

// Update handles messages and updates the browser state.
func (b Browser[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if b.searching {
			return b.handleSearchKey(msg)
		}
		return b.handleKey(msg)

	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.help.Width = msg.Width
		// header, notice, footer
		b.table.SetHeight(max(msg.Height-6, 3))

	case listMsg[T]:
		b.apply(hook.ListState[T](msg))
		return b, b.waitCmd()

	case mutationMsg:
		if msg.err != nil {
			b.notice = fmt.Sprintf("%s %s failed: %v", msg.verb, msg.id, msg.err)
			b.noticeErr = true
		} else {
			b.notice = fmt.Sprintf("%s %s", msg.id, msg.verb)
			b.noticeErr = false
		}

	default:
		var cmd tea.Cmd
		b.spinner, cmd = b.spinner.Update(msg)
		return b, cmd
	}
	return b, nil
}

func (b Browser[T]) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, b.keys.Help) {
		b.showHelp = !b.showHelp
		return b, nil
	}

	page := b.state.Pagination.Page
	switch {
	case key.Matches(msg, b.keys.Quit):
		b.quitting = true
		b.src.Close()
		return b, tea.Quit
	case key.Matches(msg, b.keys.NextPage):
		if page < b.state.Pages() {
			b.src.SetPage(page + 1)
			b.apply(b.src.State())
		}
	case key.Matches(msg, b.keys.PrevPage):
		if page > 1 {
			b.src.SetPage(page - 1)
			b.apply(b.src.State())
		}
	case key.Matches(msg, b.keys.Search):
		b.searching = true
		b.search.SetValue(b.state.Filters["search"])
		return b, b.search.Focus()
	case key.Matches(msg, b.keys.Clear):
		b.setSearch("")
	case key.Matches(msg, b.keys.Refetch):
		b.src.Refetch()
	case key.Matches(msg, b.keys.Toggle):
		return b, b.toggleCmd()
	default:
		var cmd tea.Cmd
		b.table, cmd = b.table.Update(msg)
		return b, cmd
	}
	return b, nil
}

func (b Browser[T]) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		b.searching = false
		b.search.Blur()
		b.setSearch(strings.TrimSpace(b.search.Value()))
		return b, nil
	case tea.KeyEsc:
		b.searching = false
		b.search.Blur()
		return b, nil
	}
	var cmd tea.Cmd
	b.search, cmd = b.search.Update(msg)
	return b, cmd
}

// setSearch replaces the search filter, keeping the other filters.
func (b *Browser[T]) setSearch(q string) {
	filters := b.state.Filters.Clone()
	if filters == nil {
		filters = api.Filters{}
	}
	if q == "" {
		delete(filters, "search")
	} else {
		filters["search"] = q
	}
	b.src.SetFilters(filters)
	b.apply(b.src.State())
}

// toggleCmd suspends an active record or activates any other.
func (b Browser[T]) toggleCmd() tea.Cmd {
	item, ok := b.Selected()
	if !ok {
		return nil
	}
	src := b.src
	id := b.layout.ID(item)
	suspend := b.layout.Status(item) == api.StatusActive
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		if suspend {
			return mutationMsg{verb: "suspended", id: id, err: src.Suspend(ctx, id, "")}
		}
		return mutationMsg{verb: "activated", id: id, err: src.Activate(ctx, id)}
	}
}

// apply stores s and rebuilds the table rows, dropping stale copies.
func (b *Browser[T]) apply(s hook.ListState[T]) {
	if s.Version < b.state.Version {
		return
	}
	b.state = s
	rows := make([]table.Row, len(s.Data))
	for i, item := range s.Data {
		rows[i] = b.layout.Row(item)
	}
	b.table.SetRows(rows)
	if c := b.table.Cursor(); c >= len(rows) {
		b.table.SetCursor(max(len(rows)-1, 0))
	}
}

// Selected returns the record under the cursor.
func (b Browser[T]) Selected() (T, bool) {
	var zero T
	c := b.table.Cursor()
	if c < 0 || c >= len(b.state.Data) {
		return zero, false
	}
	return b.state.Data[c], true
}

// State returns the last list state the view received.
func (b Browser[T]) State() hook.ListState[T] {
	return b.state
}

func (b Browser[T]) waitCmd() tea.Cmd {
	return waitCmd(b.changes, b.src.State, func(s hook.ListState[T]) tea.Msg { return listMsg[T](s) })
}

// View renders the browser.
func (b Browser[T]) View() string {
	if b.quitting {
		return ""
	}
	if b.showHelp {
		h := b.help
		h.ShowAll = true
		return helpBoxStyle.Render(TitleStyle.Render("Keyboard Shortcuts") + "\n\n" + h.View(b.keys))
	}

	var sb strings.Builder
	sb.WriteString(HeaderStyle.Render(TitleStyle.Render(b.layout.Title) + LabelStyle.Render(" | ") + b.renderStatus()))
	sb.WriteString("\n")
	switch {
	case b.searching:
		sb.WriteString(" " + b.search.View())
	case b.state.Error != nil:
		e := b.state.Error
		line := e.Message
		if e.Cause != nil {
			line += ": " + e.Cause.Error()
		}
		sb.WriteString(" " + ErrorStyle.Render(ui.SymbolFail+" "+line))
	case b.notice != "":
		style := LabelStyle
		if b.noticeErr {
			style = ErrorStyle
		}
		sb.WriteString(" " + style.Render(b.notice))
	case b.state.Filters["search"] != "":
		sb.WriteString(" " + LabelStyle.Render("search: "+b.state.Filters["search"]))
	}
	sb.WriteString("\n")
	if len(b.state.Data) == 0 && !b.state.IsLoading {
		sb.WriteString(LabelStyle.Render(" No results."))
	} else {
		sb.WriteString(b.table.View())
	}
	sb.WriteString("\n")
	sb.WriteString(FooterStyle.Render(b.help.ShortHelpView(b.keys.ShortHelp())))
	return sb.String()
}

func (b Browser[T]) renderStatus() string {
	s := b.state
	text := LabelStyle.Render(fmt.Sprintf("page %d/%d | %s total", s.Pagination.Page, s.Pages(), ui.FormatCount(int64(s.Total))))
	if s.IsLoading {
		text = b.spinner.View() + " " + text
	}
	return text
}
