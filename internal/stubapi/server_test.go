package stubapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/adminctl/internal/api"
)

func startServer(t *testing.T, opts Options) (*Server, *api.Client) {
	t.Helper()
	srv := New(NewStore(11, 40, 6, fixedNow), opts)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	client, err := api.NewClient(api.Options{BaseURL: ts.URL, Token: opts.Token})
	require.NoError(t, err)
	return srv, client
}

func TestServer_Metrics(t *testing.T) {
	srv, client := startServer(t, Options{})

	m, err := client.Metrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(40), m.TotalUsers)
	assert.Equal(t, int64(6), m.TotalOrganizations)
	assert.Equal(t, int64(1), srv.MetricsCalls())
}

func TestServer_FailEvery(t *testing.T) {
	_, client := startServer(t, Options{FailEvery: 2})
	ctx := context.Background()

	_, err := client.Metrics(ctx)
	require.NoError(t, err)
	_, err = client.Metrics(ctx)
	assert.ErrorIs(t, err, api.ErrUnavailable)
	_, err = client.Metrics(ctx)
	require.NoError(t, err)
}

func TestServer_Auth(t *testing.T) {
	srv := New(NewStore(1, 5, 1, fixedNow), Options{Token: "s3cret"})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	bad, err := api.NewClient(api.Options{BaseURL: ts.URL, Token: "wrong"})
	require.NoError(t, err)
	_, err = bad.Metrics(context.Background())
	assert.ErrorIs(t, err, api.ErrRequest)

	good, err := api.NewClient(api.Options{BaseURL: ts.URL, Token: "s3cret"})
	require.NoError(t, err)
	_, err = good.Metrics(context.Background())
	assert.NoError(t, err)
}

func TestServer_Latency(t *testing.T) {
	_, client := startServer(t, Options{Latency: 200 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.Metrics(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestServer_List(t *testing.T) {
	_, client := startServer(t, Options{})
	ctx := context.Background()

	page, err := client.ListUsers(ctx, api.Pagination{Page: 2, Limit: 15}, nil)
	require.NoError(t, err)
	assert.Equal(t, 40, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Items, 15)
	assert.Equal(t, "usr_0016", page.Items[0].ID)

	orgs, err := client.ListOrganizations(ctx, api.Pagination{Page: 1, Limit: 100, Sort: "name"}, api.Filters{"search": "acme"})
	require.NoError(t, err)
	require.Equal(t, 1, orgs.Total)
	assert.Equal(t, "Acme", orgs.Items[0].Name)
}

func TestServer_ListBadQuery(t *testing.T) {
	srv := New(NewStore(1, 5, 1, fixedNow), Options{})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	for _, q := range []string{"page=0", "limit=abc", "order=sideways"} {
		res, err := http.Get(ts.URL + "/users?" + q)
		require.NoError(t, err)
		body, _ := io.ReadAll(res.Body)
		_ = res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode, q)
		assert.Contains(t, string(body), `"success":false`, q)
	}
}

func TestServer_Mutations(t *testing.T) {
	_, client := startServer(t, Options{})
	ctx := context.Background()

	require.NoError(t, client.Suspend(ctx, api.ResourceUsers, "usr_0001", "abuse"))
	page, err := client.ListUsers(ctx, api.Pagination{Page: 1, Limit: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, api.StatusSuspended, page.Items[0].Status)
	assert.Equal(t, "abuse", page.Items[0].SuspendReason)

	require.NoError(t, client.Activate(ctx, api.ResourceUsers, "usr_0001"))
	require.NoError(t, client.Update(ctx, api.ResourceOrganizations, "org_001", map[string]any{"plan": "pro"}))
	require.NoError(t, client.Delete(ctx, api.ResourceUsers, "usr_0040"))

	err = client.Delete(ctx, api.ResourceUsers, "usr_0040")
	assert.ErrorIs(t, err, api.ErrRequest)
	assert.Contains(t, err.Error(), "user not found")

	err = client.Update(ctx, api.ResourceUsers, "usr_0002", map[string]any{"createdAt": "yesterday"})
	assert.ErrorIs(t, err, api.ErrRequest)

	result, err := client.Bulk(ctx, api.ResourceUsers, api.BulkSuspend, []string{"usr_0002", "usr_0003", "nope"}, map[string]any{"reason": "audit"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Affected)
	assert.Equal(t, []string{"nope"}, result.Failed)

	result, err = client.Bulk(ctx, api.ResourceOrganizations, api.BulkDelete, []string{"org_005", "org_006"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Affected)

	_, err = client.Bulk(ctx, api.ResourceUsers, "explode", []string{"usr_0004"}, nil)
	assert.ErrorIs(t, err, api.ErrRequest)

	m, err := client.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(39), m.TotalUsers)
	assert.Equal(t, int64(4), m.TotalOrganizations)
	assert.True(t, strings.HasPrefix(m.RecentActivity[0].Type, "organization."))
}
