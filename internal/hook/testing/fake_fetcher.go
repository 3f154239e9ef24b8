package testing

import (
	"context"
	"sync"

	"github.com/rileyhilliard/adminctl/internal/api"
)

type outcome[T any] struct {
	value T
	err   error
}

// Call is one request made against a fake fetcher. It blocks the caller
// until Resolve or Fail is called, unless the fetcher honours
// cancellation and the request context ends first.
type Call[T any] struct {
	ctx        context.Context
	Pagination api.Pagination
	Filters    api.Filters
	done       chan outcome[T]
	once       sync.Once
}

func newCall[T any](ctx context.Context) *Call[T] {
	return &Call[T]{ctx: ctx, done: make(chan outcome[T], 1)}
}

// Resolve completes the call successfully with v.
func (c *Call[T]) Resolve(v T) {
	c.once.Do(func() { c.done <- outcome[T]{value: v} })
}

// Fail completes the call with err.
func (c *Call[T]) Fail(err error) {
	c.once.Do(func() { c.done <- outcome[T]{err: err} })
}

// Cancelled reports whether the caller cancelled the request.
func (c *Call[T]) Cancelled() bool {
	return c.ctx.Err() != nil
}

// recorder tracks calls and answers them, shared by the fakes below.
type recorder[T any] struct {
	mu    sync.Mutex
	calls []*Call[T]

	// honorCancel and answer are set before use and read-only after.
	honorCancel bool
	answer      func(n int, c *Call[T]) (T, error)
}

func (r *recorder[T]) do(ctx context.Context, p api.Pagination, f api.Filters) (T, error) {
	c := newCall[T](ctx)
	c.Pagination = p
	c.Filters = f.Clone()

	r.mu.Lock()
	r.calls = append(r.calls, c)
	n := len(r.calls)
	answer := r.answer
	r.mu.Unlock()

	if answer != nil {
		return answer(n, c)
	}

	if r.honorCancel {
		select {
		case out := <-c.done:
			return out.value, out.err
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
	out := <-c.done
	return out.value, out.err
}

func (r *recorder[T]) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recorder[T]) call(i int) *Call[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.calls) {
		return nil
	}
	return r.calls[i]
}

// FakeMetrics is a controllable hook.MetricsFetcher. By default every call
// blocks until the test resolves it, and ignores cancellation the way a
// transport that never honours it would.
type FakeMetrics struct {
	rec recorder[*api.MetricsSnapshot]
}

// NewFakeMetrics creates a blocking fake.
func NewFakeMetrics() *FakeMetrics {
	return &FakeMetrics{}
}

// NewFakeMetricsFunc creates a fake that answers call n (1-based)
// immediately with fn.
func NewFakeMetricsFunc(fn func(n int) (*api.MetricsSnapshot, error)) *FakeMetrics {
	f := &FakeMetrics{}
	f.rec.answer = func(n int, _ *Call[*api.MetricsSnapshot]) (*api.MetricsSnapshot, error) {
		return fn(n)
	}
	return f
}

// HonorCancel makes pending calls return the context error as soon as the
// request is cancelled. Call before the fake is used.
func (f *FakeMetrics) HonorCancel() *FakeMetrics {
	f.rec.honorCancel = true
	return f
}

// Metrics implements hook.MetricsFetcher.
func (f *FakeMetrics) Metrics(ctx context.Context) (*api.MetricsSnapshot, error) {
	return f.rec.do(ctx, api.Pagination{}, nil)
}

// Calls returns how many fetches were started.
func (f *FakeMetrics) Calls() int { return f.rec.count() }

// Call returns the i-th call (0-based), or nil.
func (f *FakeMetrics) Call(i int) *Call[*api.MetricsSnapshot] { return f.rec.call(i) }

// FakePager is a controllable list fetcher for hook.List.
type FakePager[T any] struct {
	rec recorder[*api.Page[T]]
}

// NewFakePager creates a blocking fake pager.
func NewFakePager[T any]() *FakePager[T] {
	return &FakePager[T]{}
}

// NewFakePagerFunc creates a pager that answers immediately with fn.
func NewFakePagerFunc[T any](fn func(p api.Pagination, f api.Filters) (*api.Page[T], error)) *FakePager[T] {
	pager := &FakePager[T]{}
	pager.rec.answer = func(_ int, c *Call[*api.Page[T]]) (*api.Page[T], error) {
		return fn(c.Pagination, c.Filters)
	}
	return pager
}

// Fetch matches hook.PageFunc.
func (f *FakePager[T]) Fetch(ctx context.Context, p api.Pagination, filters api.Filters) (*api.Page[T], error) {
	return f.rec.do(ctx, p, filters)
}

// Calls returns how many fetches were started.
func (f *FakePager[T]) Calls() int { return f.rec.count() }

// Call returns the i-th call (0-based), or nil.
func (f *FakePager[T]) Call(i int) *Call[*api.Page[T]] { return f.rec.call(i) }
