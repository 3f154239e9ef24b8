// Package hook holds the data-fetching layer the views observe: the live
// dashboard metrics hook with retry, polling and focus refresh, and the
// paginated list hooks for users and organizations.
//
// Every hook serializes its state transitions behind a mutex and a
// generation counter. A fetch commits only if no newer fetch has started
// since it began and the hook is still open, so results land in start
// order regardless of completion order.
package hook

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rileyhilliard/adminctl/internal/api"
	adminerrors "github.com/rileyhilliard/adminctl/internal/errors"
	"github.com/rileyhilliard/adminctl/internal/logger"
)

// FetchFailedMessage is the only failure text the dashboard exposes.
const FetchFailedMessage = adminerrors.FetchFailedMessage

// Dashboard defaults.
const (
	DefaultRefreshInterval = 30 * time.Second
	DefaultMaxRetries      = 3
	DefaultBaseDelay       = time.Second
)

// MetricsFetcher loads one metrics snapshot. *api.Client implements it.
type MetricsFetcher interface {
	Metrics(ctx context.Context) (*api.MetricsSnapshot, error)
}

// Phase is where the current fetch is in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseFetching
	PhaseRetrying
	PhaseSuccess
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseFetching:
		return "fetching"
	case PhaseRetrying:
		return "retrying"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// DashboardState is a point-in-time copy of the dashboard hook state.
type DashboardState struct {
	// Data is the last good snapshot. A failed refresh keeps it; a failed
	// initial load leaves it nil.
	Data         *api.MetricsSnapshot
	IsLoading    bool
	IsRefreshing bool
	// Error is set only when the retry budget is exhausted.
	Error       *adminerrors.Error
	LastUpdated time.Time
	RetryCount  int
	Phase       Phase
	// NextRetry is when the pending retry fires; zero unless Phase is
	// PhaseRetrying.
	NextRetry time.Time
	// Version increases with every state change.
	Version uint64
}

// DashboardOptions configures a Dashboard. Zero values take the defaults.
type DashboardOptions struct {
	RefreshInterval time.Duration
	// EnableRealTime gates both the interval timer and focus refresh.
	// Nil means true.
	EnableRealTime *bool
	// AutoRefresh gates the interval timer. Nil means true.
	AutoRefresh *bool
	// MaxRetries is the retry budget per fetch. Nil means 3; zero disables
	// retry.
	MaxRetries *int
	BaseDelay  time.Duration
	Clock      Clock
	Logger     logger.Logger
	// OnChange is called after every state change, in version order, never
	// after Close returns. It must not call back into the Dashboard
	// synchronously.
	OnChange func(DashboardState)
}

// Bool returns a pointer to v, for the optional fields of DashboardOptions.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v, for the optional fields of DashboardOptions.
func Int(v int) *int { return &v }

type trigger int

const (
	triggerMount trigger = iota
	triggerRefetch
	triggerRefresh
	triggerInterval
	triggerFocus
	triggerRetry
)

func (t trigger) String() string {
	switch t {
	case triggerMount:
		return "mount"
	case triggerRefetch:
		return "refetch"
	case triggerRefresh:
		return "refresh"
	case triggerInterval:
		return "interval"
	case triggerFocus:
		return "focus"
	default:
		return "retry"
	}
}

// blocking reports whether the trigger shows a full loading state rather
// than a background refresh.
func (t trigger) blocking() bool {
	return t == triggerMount || t == triggerRefetch
}

// Dashboard is the live metrics hook. Create it with NewDashboard, call
// Start once the view is shown and Close when it goes away.
type Dashboard struct {
	fetcher         MetricsFetcher
	clock           Clock
	log             logger.Logger
	listener        *listener[DashboardState]
	refreshInterval time.Duration
	realTime        bool
	autoRefresh     bool
	maxRetries      int
	baseDelay       time.Duration

	mu         sync.Mutex
	state      DashboardState
	gen        uint64
	cancel     context.CancelFunc
	retryTimer Timer
	tickTimer  Timer
	origin     trigger
	visible    bool
	started    bool
	closed     bool
}

// NewDashboard creates a dashboard hook. No fetch happens until Start.
func NewDashboard(fetcher MetricsFetcher, opts DashboardOptions) *Dashboard {
	d := &Dashboard{
		fetcher:         fetcher,
		clock:           opts.Clock,
		log:             opts.Logger,
		listener:        newListener(opts.OnChange),
		refreshInterval: opts.RefreshInterval,
		realTime:        true,
		autoRefresh:     true,
		maxRetries:      DefaultMaxRetries,
		baseDelay:       opts.BaseDelay,
		visible:         true,
	}
	if d.clock == nil {
		d.clock = RealClock()
	}
	if d.log == nil {
		d.log = logger.New("hook.dashboard")
	}
	if d.refreshInterval <= 0 {
		d.refreshInterval = DefaultRefreshInterval
	}
	if d.baseDelay <= 0 {
		d.baseDelay = DefaultBaseDelay
	}
	if opts.EnableRealTime != nil {
		d.realTime = *opts.EnableRealTime
	}
	if opts.AutoRefresh != nil {
		d.autoRefresh = *opts.AutoRefresh
	}
	if opts.MaxRetries != nil && *opts.MaxRetries >= 0 {
		d.maxRetries = *opts.MaxRetries
	}
	return d
}

// State returns a copy of the current state.
func (d *Dashboard) State() DashboardState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Start runs the initial fetch and, when real-time auto refresh is on,
// starts the interval timer. Calls after the first are no-ops.
func (d *Dashboard) Start() {
	d.mu.Lock()
	if d.started || d.closed {
		d.mu.Unlock()
		return
	}
	d.started = true
	if d.autoRefresh && d.realTime {
		d.tickTimer = d.clock.AfterFunc(d.refreshInterval, d.tick)
	}
	d.mu.Unlock()

	d.fetch(triggerMount)
}

// Refresh fetches in the background, keeping the current data visible.
// Concurrent calls are allowed; only the last one's result is observable.
func (d *Dashboard) Refresh() {
	d.fetch(triggerRefresh)
}

// Refetch fetches with a full loading state.
func (d *Dashboard) Refetch() {
	d.fetch(triggerRefetch)
}

// NotifyFocus reports that the view regained focus.
func (d *Dashboard) NotifyFocus() {
	if !d.realTime {
		return
	}
	d.mu.Lock()
	ready := d.started && !d.closed
	d.mu.Unlock()
	if ready {
		d.fetch(triggerFocus)
	}
}

// NotifyVisibility reports whether the view is visible. A change to
// visible refreshes like a focus event.
func (d *Dashboard) NotifyVisibility(visible bool) {
	d.mu.Lock()
	became := visible && !d.visible
	d.visible = visible
	d.mu.Unlock()
	if became {
		d.NotifyFocus()
	}
}

// Close stops all timers and cancels the in-flight fetch. No state change
// or OnChange call happens after Close returns.
func (d *Dashboard) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.retryTimer != nil {
		d.retryTimer.Stop()
		d.retryTimer = nil
	}
	if d.tickTimer != nil {
		d.tickTimer.Stop()
		d.tickTimer = nil
	}
	d.mu.Unlock()

	// Wait out a listener call that was already in progress.
	d.listener.drain()
}

func (d *Dashboard) tick() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.tickTimer = d.clock.AfterFunc(d.refreshInterval, d.tick)
	d.mu.Unlock()

	d.fetch(triggerInterval)
}

func (d *Dashboard) fetch(t trigger) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	// Background triggers never interrupt a retry chain, so a persistent
	// failure still reaches the terminal error.
	if (t == triggerInterval || t == triggerFocus) && d.retryingLocked() {
		retry := d.state.RetryCount
		d.mu.Unlock()
		d.log.Debug("skipping %s fetch, retry %d/%d pending", t, retry, d.maxRetries)
		return
	}
	run := d.beginLocked(t)
	snap := d.state
	d.mu.Unlock()

	d.notify(snap)
	go run()
}

// retryingLocked reports whether a retry is scheduled or in flight.
func (d *Dashboard) retryingLocked() bool {
	switch d.state.Phase {
	case PhaseRetrying:
		return true
	case PhaseFetching:
		return d.state.RetryCount > 0
	}
	return false
}

// retry is the retry timer callback for generation gen.
func (d *Dashboard) retry(gen uint64) {
	d.mu.Lock()
	if d.closed || gen != d.gen || d.state.Phase != PhaseRetrying {
		d.mu.Unlock()
		return
	}
	run := d.beginLocked(triggerRetry)
	snap := d.state
	d.mu.Unlock()

	d.notify(snap)
	go run()
}

// beginLocked supersedes whatever is in flight and starts a new
// generation. It returns the function that performs the request.
func (d *Dashboard) beginLocked(t trigger) func() {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.retryTimer != nil {
		d.retryTimer.Stop()
		d.retryTimer = nil
	}
	if t != triggerRetry {
		d.origin = t
		d.state.RetryCount = 0
	}

	d.gen++
	gen := d.gen
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel

	if d.origin.blocking() {
		d.state.IsLoading = true
	} else {
		d.state.IsRefreshing = true
	}
	d.state.Error = nil
	d.state.Phase = PhaseFetching
	d.state.NextRetry = time.Time{}
	d.state.Version++

	d.log.Debug("fetch gen=%d trigger=%s retry=%d", gen, t, d.state.RetryCount)

	return func() {
		data, err := d.fetcher.Metrics(ctx)
		d.resolve(ctx, gen, data, err)
	}
}

func (d *Dashboard) resolve(ctx context.Context, gen uint64, data *api.MetricsSnapshot, err error) {
	d.mu.Lock()
	if d.closed || gen != d.gen {
		d.mu.Unlock()
		d.log.Debug("discarding result of superseded fetch gen=%d", gen)
		return
	}
	if ctx.Err() != nil {
		d.mu.Unlock()
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}

	d.state.IsLoading = false
	d.state.IsRefreshing = false

	switch {
	case err == nil && data != nil:
		d.state.Data = data
		d.state.LastUpdated = d.clock.Now()
		d.state.RetryCount = 0
		d.state.Error = nil
		d.state.Phase = PhaseSuccess
	case d.state.RetryCount < d.maxRetries:
		if err == nil {
			err = errors.New("empty metrics response")
		}
		d.state.RetryCount++
		delay := Backoff(d.baseDelay, d.state.RetryCount)
		d.state.Phase = PhaseRetrying
		d.state.NextRetry = d.clock.Now().Add(delay)
		d.retryTimer = d.clock.AfterFunc(delay, func() { d.retry(gen) })
		d.log.Warn("fetch failed, retry %d/%d in %s: %v", d.state.RetryCount, d.maxRetries, delay, err)
	default:
		if err == nil {
			err = errors.New("empty metrics response")
		}
		d.state.Error = adminerrors.FetchFailed("Press r to retry.")
		d.state.Phase = PhaseFailed
		d.log.Error("fetch failed after %d retries: %v", d.maxRetries, err)
	}
	d.state.Version++
	snap := d.state
	d.mu.Unlock()

	d.notify(snap)
}

func (d *Dashboard) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Dashboard) notify(s DashboardState) {
	d.listener.deliver(s.Version, s, d.isClosed)
}
