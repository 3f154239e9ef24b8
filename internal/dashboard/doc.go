// Package dashboard implements the full-screen views: the live metrics
// dashboard and the paginated user and organization browsers.
//
// # Architecture
//
// Both views follow The Elm Architecture (Model-Update-View) through Bubble
// Tea. They do not fetch anything themselves; each wraps a hook from
// internal/hook and renders the hook's state.
//
// # Message Flow
//
// A hook reports changes through its OnChange callback, which runs on the
// hook's goroutines. Signal turns that callback into a coalescing channel:
//
//  1. The hook commits a new state and calls the Signal callback
//  2. The callback does a non-blocking send on a one-slot channel
//  3. waitCmd receives from the channel and reads State() from the hook
//  4. Update stores the copy and re-arms waitCmd
//
// Coalescing means a burst of transitions renders once with the newest
// state, and the hook never blocks on a slow terminal.
//
// # Focus and Visibility
//
// Terminal focus reports (tea.WithReportFocus) call NotifyFocus. Resuming
// after Ctrl+Z calls NotifyVisibility(true).
package dashboard
