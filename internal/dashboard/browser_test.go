package dashboard

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/adminctl/internal/api"
	"github.com/rileyhilliard/adminctl/internal/hook"
	hooktesting "github.com/rileyhilliard/adminctl/internal/hook/testing"
	"github.com/rileyhilliard/adminctl/internal/logger"
)

type recordingMutator struct {
	mu    sync.Mutex
	calls []string
}

func (m *recordingMutator) record(s string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, s)
	return nil
}

func (m *recordingMutator) Update(_ context.Context, resource, id string, _ map[string]any) error {
	return m.record("update " + resource + " " + id)
}

func (m *recordingMutator) Suspend(_ context.Context, resource, id, _ string) error {
	return m.record("suspend " + resource + " " + id)
}

func (m *recordingMutator) Activate(_ context.Context, resource, id string) error {
	return m.record("activate " + resource + " " + id)
}

func (m *recordingMutator) Delete(_ context.Context, resource, id string) error {
	return m.record("delete " + resource + " " + id)
}

func (m *recordingMutator) Bulk(_ context.Context, resource, action string, ids []string, _ map[string]any) (*api.BulkResult, error) {
	return &api.BulkResult{Affected: len(ids)}, m.record("bulk " + resource + " " + action)
}

func (m *recordingMutator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

const (
	browserTotal = 45
	waitFor      = 2 * time.Second
	tick         = 5 * time.Millisecond
)

func browserUsers(p api.Pagination, f api.Filters) (*api.Page[api.User], error) {
	total := browserTotal
	if f["search"] != "" {
		total = 1
	}
	start := (p.Page - 1) * p.Limit
	end := min(start+p.Limit, total)
	items := make([]api.User, 0, p.Limit)
	for i := start; i < end; i++ {
		status := api.StatusActive
		if i%2 == 1 {
			status = api.StatusSuspended
		}
		items = append(items, api.User{
			ID:     fmt.Sprintf("usr_%04d", i+1),
			Name:   fmt.Sprintf("User %d", i+1),
			Email:  fmt.Sprintf("user%d@example.com", i+1),
			Status: status,
		})
	}
	return &api.Page[api.User]{Items: items, Total: total, Page: p.Page, Limit: p.Limit}, nil
}

func newBrowser(t *testing.T) (Browser[api.User], *hooktesting.FakePager[api.User], *recordingMutator) {
	t.Helper()
	pager := hooktesting.NewFakePagerFunc(browserUsers)
	mut := &recordingMutator{}
	onChange, changes := Signal[hook.ListState[api.User]]()
	l := hook.NewList(api.ResourceUsers, pager.Fetch, mut, hook.ListOptions[api.User]{
		PageSize: 20,
		Logger:   logger.Noop(),
		OnChange: onChange,
	})
	t.Cleanup(l.Close)

	b := NewBrowser[api.User](l, changes, UserLayout)
	batch := b.Init()().(tea.BatchMsg)
	b = step(t, b, batch[0]())
	return settle(t, b), pager, mut
}

func step(t *testing.T, b Browser[api.User], msg tea.Msg) Browser[api.User] {
	t.Helper()
	next, _ := b.Update(msg)
	return next.(Browser[api.User])
}

// settle pumps state changes until the current fetch has landed.
func settle(t *testing.T, b Browser[api.User]) Browser[api.User] {
	t.Helper()
	for b.State().IsLoading || b.State().Data == nil {
		b = step(t, b, await(t, b.waitCmd()))
	}
	return b
}

func keypress(b Browser[api.User], k string) (Browser[api.User], tea.Cmd) {
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	}
	next, cmd := b.Update(msg)
	return next.(Browser[api.User]), cmd
}

func TestBrowser_FirstPage(t *testing.T) {
	b, _, _ := newBrowser(t)

	s := b.State()
	assert.Len(t, s.Data, 20)
	assert.Equal(t, 3, s.Pages())

	view := b.View()
	assert.Contains(t, view, "Users")
	assert.Contains(t, view, "page 1/3 | 45 total")
	assert.Contains(t, view, "user1@example.com")
}

func TestBrowser_Paging(t *testing.T) {
	b, pager, _ := newBrowser(t)

	b, _ = keypress(b, "p")
	assert.Equal(t, 1, b.State().Pagination.Page, "no page before the first")

	b, _ = keypress(b, "n")
	assert.Equal(t, 2, b.State().Pagination.Page, "page changes before the fetch lands")
	b = settle(t, b)
	assert.Equal(t, "usr_0021", b.State().Data[0].ID)

	b, _ = keypress(b, "n")
	b = settle(t, b)
	assert.Len(t, b.State().Data, 5)
	b, _ = keypress(b, "n")
	assert.Equal(t, 3, b.State().Pagination.Page, "no page past the last")

	b, _ = keypress(b, "p")
	b = settle(t, b)
	assert.Equal(t, 2, b.State().Pagination.Page)
	assert.Equal(t, 4, pager.Calls())
}

func TestBrowser_Search(t *testing.T) {
	b, pager, _ := newBrowser(t)
	b, _ = keypress(b, "n")
	b = settle(t, b)

	b, _ = keypress(b, "/")
	assert.True(t, b.searching)
	for _, r := range "ada" {
		b, _ = keypress(b, string(r))
	}
	b, _ = keypress(b, "enter")
	assert.False(t, b.searching)

	s := b.State()
	assert.Equal(t, "ada", s.Filters["search"])
	assert.Equal(t, 1, s.Pagination.Page, "search resets to the first page")

	b = settle(t, b)
	assert.Len(t, b.State().Data, 1)
	assert.Contains(t, b.View(), "search: ada")
	calls := pager.Calls()
	assert.Equal(t, "ada", pager.Call(calls-1).Filters["search"])

	b, _ = keypress(b, "c")
	assert.Empty(t, b.State().Filters["search"])
}

func TestBrowser_SearchEscKeepsFilters(t *testing.T) {
	b, _, _ := newBrowser(t)

	b, _ = keypress(b, "/")
	b, _ = keypress(b, "x")
	b, _ = keypress(b, "esc")
	assert.False(t, b.searching)
	assert.Empty(t, b.State().Filters["search"])
}

func TestBrowser_ToggleStatus(t *testing.T) {
	b, pager, mut := newBrowser(t)

	b, cmd := keypress(b, "s")
	require.NotNil(t, cmd)
	b = step(t, b, cmd())
	assert.Contains(t, b.View(), "usr_0001 suspended")

	b, _ = keypress(b, "down")
	sel, ok := b.Selected()
	require.True(t, ok)
	assert.Equal(t, "usr_0002", sel.ID)

	_, cmd = keypress(b, "s")
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, []string{"suspend users usr_0001", "activate users usr_0002"}, mut.Calls())
	require.Eventually(t, func() bool { return pager.Calls() >= 3 }, waitFor, tick, "mutations refetch")
}

func TestBrowser_QuitClosesList(t *testing.T) {
	b, _, _ := newBrowser(t)

	b, cmd := keypress(b, "q")
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, b.View())

	_, cmd = keypress(b, "?")
	assert.Nil(t, cmd)
}

func TestBrowser_Help(t *testing.T) {
	b, _, _ := newBrowser(t)

	b, _ = keypress(b, "?")
	view := b.View()
	assert.Contains(t, view, "Keyboard Shortcuts")
	assert.True(t, strings.Contains(view, "next page"))
}
