package hook

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rileyhilliard/adminctl/internal/api"
	adminerrors "github.com/rileyhilliard/adminctl/internal/errors"
	"github.com/rileyhilliard/adminctl/internal/logger"
)

// DefaultPageSize is used when ListOptions.PageSize is zero.
const DefaultPageSize = 20

// PageFunc loads one page of a list endpoint.
type PageFunc[T any] func(ctx context.Context, p api.Pagination, f api.Filters) (*api.Page[T], error)

// Mutator applies changes to a resource. *api.Client implements it.
type Mutator interface {
	Update(ctx context.Context, resource, id string, fields map[string]any) error
	Suspend(ctx context.Context, resource, id, reason string) error
	Activate(ctx context.Context, resource, id string) error
	Delete(ctx context.Context, resource, id string) error
	Bulk(ctx context.Context, resource, action string, ids []string, extra map[string]any) (*api.BulkResult, error)
}

// ListState is a point-in-time copy of a list hook's state.
type ListState[T any] struct {
	Data       []T
	IsLoading  bool
	Error      *adminerrors.Error
	Total      int
	Pagination api.Pagination
	Filters    api.Filters
	Version    uint64
}

// Pages returns the number of pages Total spans, at least 1.
func (s ListState[T]) Pages() int {
	if s.Pagination.Limit <= 0 || s.Total <= 0 {
		return 1
	}
	return (s.Total + s.Pagination.Limit - 1) / s.Pagination.Limit
}

// ListOptions configures a List.
type ListOptions[T any] struct {
	PageSize int
	Sort     string
	Order    string
	Filters  api.Filters
	Logger   logger.Logger
	// OnChange has the same contract as DashboardOptions.OnChange.
	OnChange func(ListState[T])
}

// List is a paginated, filterable view over one resource. It fetches on
// every pagination or filter change; there is no retry or polling.
type List[T any] struct {
	resource string
	fetch    PageFunc[T]
	mutator  Mutator
	log      logger.Logger
	listener *listener[ListState[T]]

	mu      sync.Mutex
	state   ListState[T]
	gen     uint64
	cancel  context.CancelFunc
	started bool
	closed  bool
}

// NewList creates a list hook for resource. mutator may be nil for a
// read-only list. No fetch happens until Start or a setter is called.
func NewList[T any](resource string, fetch PageFunc[T], mutator Mutator, opts ListOptions[T]) *List[T] {
	l := &List[T]{
		resource: resource,
		fetch:    fetch,
		mutator:  mutator,
		log:      opts.Logger,
		listener: newListener(opts.OnChange),
	}
	if l.log == nil {
		l.log = logger.New("hook." + resource)
	}
	size := opts.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	l.state.Pagination = api.Pagination{Page: 1, Limit: size, Sort: opts.Sort, Order: opts.Order}
	l.state.Filters = opts.Filters.Clone()
	if l.state.Filters == nil {
		l.state.Filters = api.Filters{}
	}
	return l
}

// UserAPI is what Users needs from the API client.
type UserAPI interface {
	Mutator
	ListUsers(ctx context.Context, p api.Pagination, f api.Filters) (*api.Page[api.User], error)
}

// OrganizationAPI is what Organizations needs from the API client.
type OrganizationAPI interface {
	Mutator
	ListOrganizations(ctx context.Context, p api.Pagination, f api.Filters) (*api.Page[api.Organization], error)
}

// Users creates the user management list hook.
func Users(c UserAPI, opts ListOptions[api.User]) *List[api.User] {
	return NewList(api.ResourceUsers, c.ListUsers, c, opts)
}

// Organizations creates the organization management list hook.
func Organizations(c OrganizationAPI, opts ListOptions[api.Organization]) *List[api.Organization] {
	return NewList(api.ResourceOrganizations, c.ListOrganizations, c, opts)
}

// Resource returns the API resource name the list is bound to.
func (l *List[T]) Resource() string {
	return l.resource
}

// State returns a copy of the current state.
func (l *List[T]) State() ListState[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.copyLocked()
}

func (l *List[T]) copyLocked() ListState[T] {
	s := l.state
	s.Filters = l.state.Filters.Clone()
	return s
}

// Start runs the first fetch. Calls after the first are no-ops.
func (l *List[T]) Start() {
	l.mu.Lock()
	if l.started || l.closed {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.dispatchLocked()
}

// SetPagination replaces the pagination and fetches. Page and limit below
// 1 fall back to the first page and the current limit.
func (l *List[T]) SetPagination(p api.Pagination) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = l.state.Pagination.Limit
	}
	l.state.Pagination = p
	l.started = true
	l.dispatchLocked()
}

// SetPage moves to page n, keeping limit and sort.
func (l *List[T]) SetPage(n int) {
	l.mu.Lock()
	p := l.state.Pagination
	l.mu.Unlock()
	p.Page = n
	l.SetPagination(p)
}

// SetFilters replaces the filters, resets to the first page and fetches.
func (l *List[T]) SetFilters(f api.Filters) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.state.Filters = f.Clone()
	if l.state.Filters == nil {
		l.state.Filters = api.Filters{}
	}
	l.state.Pagination.Page = 1
	l.started = true
	l.dispatchLocked()
}

// Refetch reloads the current page.
func (l *List[T]) Refetch() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.started = true
	l.dispatchLocked()
}

// Close cancels the in-flight fetch. No state change or OnChange call
// happens after Close returns.
func (l *List[T]) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.mu.Unlock()

	l.listener.drain()
}

// dispatchLocked starts a new generation and releases l.mu.
func (l *List[T]) dispatchLocked() {
	if l.cancel != nil {
		l.cancel()
	}
	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel

	l.state.IsLoading = true
	l.state.Error = nil
	l.state.Version++
	p := l.state.Pagination
	f := l.state.Filters.Clone()
	snap := l.copyLocked()
	l.mu.Unlock()

	l.notify(snap)

	go func() {
		page, err := l.fetch(ctx, p, f)
		l.resolve(ctx, gen, page, err)
	}()
}

func (l *List[T]) resolve(ctx context.Context, gen uint64, page *api.Page[T], err error) {
	l.mu.Lock()
	if l.closed || gen != l.gen {
		l.mu.Unlock()
		return
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		l.mu.Unlock()
		return
	}
	l.cancel()
	l.cancel = nil

	l.state.IsLoading = false
	switch {
	case err != nil:
		l.state.Error = adminerrors.WrapWithCode(err, adminerrors.ErrFetch,
			fmt.Sprintf("Failed to fetch %s", l.resource), "Press r to retry.")
		l.log.Error("list %s failed: %v", l.resource, err)
	case page == nil:
		l.state.Error = adminerrors.New(adminerrors.ErrFetch,
			fmt.Sprintf("Failed to fetch %s", l.resource), "Press r to retry.")
		l.log.Error("list %s returned no page", l.resource)
	default:
		l.state.Data = page.Items
		l.state.Total = page.Total
	}
	l.state.Version++
	snap := l.copyLocked()
	l.mu.Unlock()

	l.notify(snap)
}

func (l *List[T]) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *List[T]) notify(s ListState[T]) {
	l.listener.deliver(s.Version, s, l.isClosed)
}

// ErrReadOnly is returned by mutations on a list created without a Mutator.
var ErrReadOnly = errors.New("list has no mutator")

// mutate runs op and refetches on success.
func (l *List[T]) mutate(what, id string, op func(Mutator) error) error {
	if l.mutator == nil {
		return ErrReadOnly
	}
	if err := op(l.mutator); err != nil {
		l.log.Error("%s %s %s failed: %v", what, l.resource, id, err)
		return err
	}
	l.log.Info("%s %s %s", what, l.resource, id)
	l.Refetch()
	return nil
}

// Update changes fields of one record, then refetches.
func (l *List[T]) Update(ctx context.Context, id string, fields map[string]any) error {
	return l.mutate("update", id, func(m Mutator) error {
		return m.Update(ctx, l.resource, id, fields)
	})
}

// Suspend suspends one record, then refetches.
func (l *List[T]) Suspend(ctx context.Context, id, reason string) error {
	return l.mutate("suspend", id, func(m Mutator) error {
		return m.Suspend(ctx, l.resource, id, reason)
	})
}

// Activate reactivates one record, then refetches.
func (l *List[T]) Activate(ctx context.Context, id string) error {
	return l.mutate("activate", id, func(m Mutator) error {
		return m.Activate(ctx, l.resource, id)
	})
}

// Delete removes one record, then refetches.
func (l *List[T]) Delete(ctx context.Context, id string) error {
	return l.mutate("delete", id, func(m Mutator) error {
		return m.Delete(ctx, l.resource, id)
	})
}

// Bulk applies action to ids, then refetches.
func (l *List[T]) Bulk(ctx context.Context, action string, ids []string, extra map[string]any) (*api.BulkResult, error) {
	var result *api.BulkResult
	err := l.mutate("bulk "+action, fmt.Sprintf("(%d ids)", len(ids)), func(m Mutator) error {
		var err error
		result, err = m.Bulk(ctx, l.resource, action, ids, extra)
		return err
	})
	return result, err
}
