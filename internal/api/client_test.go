package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	nop := zerolog.Nop()
	c, err := NewClient(Options{
		BaseURL: srv.URL + "/api/admin/",
		Token:   "test-token",
		Timeout: 2 * time.Second,
		Logger:  &nop,
	})
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	_, err := NewClient(Options{})
	assert.Error(t, err)

	_, err = NewClient(Options{BaseURL: "not a url"})
	assert.Error(t, err)

	c, err := NewClient(Options{BaseURL: "https://admin.example.com/api/"})
	require.NoError(t, err)
	assert.Equal(t, "https://admin.example.com/api", c.BaseURL())
}

func TestMetrics(t *testing.T) {
	activity := `{"id":"a","type":"signup","actor":"x","description":"d","occurredAt":"2026-01-01T00:00:00Z"}`
	feed := "[" + activity
	for i := 0; i < 14; i++ {
		feed += "," + activity
	}
	feed += "]"

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/metrics", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"success":true,"data":{"metrics":{"totalUsers":1000,"activeUsers":800,`+
			`"revenue":{"currency":"USD","mrr":1200.5},"system":{"uptimePercent":99.9},"recentActivity":`+feed+`}}}`)
	})

	m, err := c.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1000), m.TotalUsers)
	assert.Equal(t, int64(800), m.ActiveUsers)
	assert.InDelta(t, 1200.5, m.Revenue.MRR, 0.001)
	assert.InDelta(t, 99.9, m.System.UptimePercent, 0.001)
	assert.Len(t, m.RecentActivity, MaxRecentActivity)
}

func TestMetrics_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`, wantErr: ErrUnavailable},
		{name: "unavailable", status: http.StatusServiceUnavailable, wantErr: ErrUnavailable},
		{name: "rate limited", status: http.StatusTooManyRequests, wantErr: ErrUnavailable},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"bad token"}`, wantErr: ErrRequest},
		{name: "not found", status: http.StatusNotFound, wantErr: ErrRequest},
		{name: "success false", status: http.StatusOK, body: `{"success":false,"error":"db down"}`, wantErr: ErrUnavailable},
		{name: "missing data", status: http.StatusOK, body: `{"success":true}`, wantErr: ErrUnavailable},
		{name: "malformed body", status: http.StatusOK, body: `{"success":`, wantErr: ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Metrics(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMetrics_StatusErrorMessage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":"admin role required"}`)
	})

	_, err := c.Metrics(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Equal(t, "admin role required", statusErr.Message)
}

func TestMetrics_Cancelled(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.Metrics(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestMetrics_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(Options{BaseURL: url})
	require.NoError(t, err)

	_, err = c.Metrics(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestListUsers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/users", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "email", q.Get("sort"))
		assert.Equal(t, "desc", q.Get("order"))
		assert.Equal(t, "suspended", q.Get("status"))
		assert.False(t, q.Has("search"), "empty filters are not sent")

		_, _ = io.WriteString(w, `{"success":true,"data":[{"id":"u1","email":"a@example.com","status":"suspended"}],`+
			`"metadata":{"total":31,"page":2,"limit":10}}`)
	})

	page, err := c.ListUsers(context.Background(),
		Pagination{Page: 2, Limit: 10, Sort: "email", Order: OrderDesc},
		Filters{"status": "suspended", "search": ""})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "u1", page.Items[0].ID)
	assert.Equal(t, 31, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.Limit)
}

func TestListOrganizations_NoMetadata(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/organizations", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"data":[{"id":"o1"},{"id":"o2"}]}`)
	})

	page, err := c.ListOrganizations(context.Background(), Pagination{Page: 1, Limit: 20}, nil)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.Total, "total falls back to item count")
	assert.Equal(t, 1, page.Page)
}

func TestMutations(t *testing.T) {
	type call struct {
		method string
		path   string
		body   map[string]any
	}
	var calls []call

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
		}
		calls = append(calls, call{method: r.Method, path: r.URL.Path, body: body})
		if r.Method == http.MethodPost {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			_, _ = io.WriteString(w, `{"success":true,"data":{"affected":2}}`)
			return
		}
		_, _ = io.WriteString(w, `{"success":true}`)
	})
	ctx := context.Background()

	require.NoError(t, c.Suspend(ctx, ResourceUsers, "u1", "spam"))
	require.NoError(t, c.Activate(ctx, ResourceOrganizations, "o1"))
	require.NoError(t, c.Update(ctx, ResourceUsers, "u2", map[string]any{"role": "admin"}))
	require.NoError(t, c.Delete(ctx, ResourceUsers, "u3"))
	result, err := c.Bulk(ctx, ResourceOrganizations, BulkSuspend, []string{"o1", "o2"}, map[string]any{"reason": "audit"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Affected)

	require.Len(t, calls, 5)

	assert.Equal(t, http.MethodPatch, calls[0].method)
	assert.Equal(t, "/api/admin/users/u1", calls[0].path)
	assert.Equal(t, true, calls[0].body["suspend"])
	assert.Equal(t, "spam", calls[0].body["reason"])

	assert.Equal(t, "/api/admin/organizations/o1", calls[1].path)
	assert.Equal(t, true, calls[1].body["activate"])

	assert.Equal(t, "admin", calls[2].body["role"])

	assert.Equal(t, http.MethodDelete, calls[3].method)
	assert.Equal(t, "/api/admin/users/u3", calls[3].path)

	assert.Equal(t, "/api/admin/organizations/bulk", calls[4].path)
	assert.Equal(t, "suspend", calls[4].body["action"])
	assert.Equal(t, "audit", calls[4].body["reason"])
	assert.Equal(t, []any{"o1", "o2"}, calls[4].body["organizationIds"])
}

func TestMutations_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"success":false,"error":"user not found"}`)
	})
	ctx := context.Background()

	err := c.Suspend(ctx, ResourceUsers, "missing", "")
	assert.ErrorIs(t, err, ErrRequest)
	assert.Contains(t, err.Error(), "user not found")

	assert.ErrorIs(t, c.Delete(ctx, ResourceUsers, ""), ErrRequest)
	_, err = c.Bulk(ctx, ResourceUsers, BulkDelete, nil, nil)
	assert.ErrorIs(t, err, ErrRequest)
}

func TestRateLimit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, `{"success":true,"data":{"metrics":{}}}`)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Options{BaseURL: srv.URL, RateLimit: 1})
	require.NoError(t, err)

	_, err = c.Metrics(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Metrics(ctx)
	require.Error(t, err, "second call should wait for a token and hit the deadline")
	assert.Equal(t, int32(1), hits.Load())
}
