package hook

import "sync"

// listener serializes change notifications. States are delivered in
// version order; an older state that loses the race to a newer one is
// dropped.
type listener[S any] struct {
	mu   sync.Mutex
	last uint64
	fn   func(S)
}

func newListener[S any](fn func(S)) *listener[S] {
	return &listener[S]{fn: fn}
}

// deliver calls the listener with s unless closed reports true or a state
// at least as new was already delivered.
func (l *listener[S]) deliver(version uint64, s S, closed func() bool) {
	if l.fn == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if closed() || version <= l.last {
		return
	}
	l.last = version
	l.fn(s)
}

// drain blocks until any delivery in progress has returned.
func (l *listener[S]) drain() {
	l.mu.Lock()
	defer l.mu.Unlock()
}
