package dashboard

import tea "github.com/charmbracelet/bubbletea"

// Signal returns an OnChange callback and the channel it pokes. Sends never
// block; pending signals coalesce into one.
func Signal[S any]() (func(S), <-chan struct{}) {
	ch := make(chan struct{}, 1)
	return func(S) {
		select {
		case ch <- struct{}{}:
		default:
		}
	}, ch
}

// waitCmd blocks until the next signal and then reads the current state.
func waitCmd[S any](changes <-chan struct{}, read func() S, wrap func(S) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return wrap(read())
	}
}
