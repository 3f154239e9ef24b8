package stubapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/adminctl/internal/api"
)

var fixedNow = func() time.Time {
	return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
}

func TestNewStore_Deterministic(t *testing.T) {
	a := NewStore(42, 50, 8, fixedNow)
	b := NewStore(42, 50, 8, fixedNow)

	usersA, totalA := a.Users(query{Page: 1, Limit: 100})
	usersB, totalB := b.Users(query{Page: 1, Limit: 100})
	assert.Equal(t, 50, totalA)
	assert.Equal(t, totalA, totalB)
	assert.Equal(t, usersA, usersB)

	members := 0
	orgs, _ := a.Organizations(query{Page: 1, Limit: 100})
	for _, o := range orgs {
		members += o.MemberCount
	}
	assert.Equal(t, 50, members, "every user belongs to exactly one org")
}

func TestStore_Metrics(t *testing.T) {
	s := NewStore(1, 30, 5, fixedNow)
	m := s.Metrics()

	assert.Equal(t, int64(30), m.TotalUsers)
	assert.Equal(t, int64(5), m.TotalOrganizations)
	assert.LessOrEqual(t, m.ActiveUsers+m.SuspendedUsers, m.TotalUsers)
	assert.InDelta(t, m.Revenue.MRR*12, m.Revenue.ARR, 0.001)
	assert.Len(t, m.RecentActivity, api.MaxRecentActivity)
	assert.Equal(t, fixedNow(), m.GeneratedAt)
}

func TestStore_UsersFilterSortPaginate(t *testing.T) {
	s := NewStore(7, 45, 4, fixedNow)

	page1, total := s.Users(query{Page: 1, Limit: 20})
	assert.Equal(t, 45, total)
	assert.Len(t, page1, 20)
	assert.Equal(t, "usr_0001", page1[0].ID)

	page3, _ := s.Users(query{Page: 3, Limit: 20})
	assert.Len(t, page3, 5)

	beyond, _ := s.Users(query{Page: 9, Limit: 20})
	assert.Empty(t, beyond)

	desc, _ := s.Users(query{Page: 1, Limit: 5, Sort: "email", Order: api.OrderDesc})
	for i := 1; i < len(desc); i++ {
		assert.GreaterOrEqual(t, desc[i-1].Email, desc[i].Email)
	}

	_, err := s.UpdateUser("usr_0003", map[string]any{"suspend": true})
	require.NoError(t, err)
	suspended, n := s.Users(query{Page: 1, Limit: 100, Filters: api.Filters{"status": api.StatusSuspended}})
	assert.Equal(t, len(suspended), n)
	for _, u := range suspended {
		assert.Equal(t, api.StatusSuspended, u.Status)
	}

	found, _ := s.Users(query{Page: 1, Limit: 100, Filters: api.Filters{"search": "USR_0003"}})
	assert.Empty(t, found, "search matches name and email, not id")

	found, _ = s.Users(query{Page: 1, Limit: 100, Filters: api.Filters{"search": page1[1].Email}})
	require.Len(t, found, 1)
	assert.Equal(t, page1[1].ID, found[0].ID)
}

func TestStore_UpdateUser(t *testing.T) {
	s := NewStore(3, 10, 2, fixedNow)

	u, err := s.UpdateUser("usr_0001", map[string]any{"suspend": true, "reason": "chargeback"})
	require.NoError(t, err)
	assert.Equal(t, api.StatusSuspended, u.Status)
	assert.Equal(t, "chargeback", u.SuspendReason)

	u, err = s.UpdateUser("usr_0001", map[string]any{"activate": true})
	require.NoError(t, err)
	assert.Equal(t, api.StatusActive, u.Status)
	assert.Empty(t, u.SuspendReason)

	u, err = s.UpdateUser("usr_0001", map[string]any{"role": "admin", "name": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "admin", u.Role)
	assert.Equal(t, "Renamed", u.Name)

	_, err = s.UpdateUser("usr_9999", map[string]any{"role": "admin"})
	assert.ErrorIs(t, err, ErrNotFound)

	var fieldErr *FieldError
	_, err = s.UpdateUser("usr_0001", map[string]any{"id": "hijack"})
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "id", fieldErr.Field)

	_, err = s.UpdateUser("usr_0001", map[string]any{"suspend": true, "activate": true})
	assert.ErrorAs(t, err, &fieldErr)

	_, err = s.UpdateUser("usr_0001", map[string]any{"name": ""})
	assert.ErrorAs(t, err, &fieldErr)

	m := s.Metrics()
	assert.Equal(t, "user.updated", m.RecentActivity[0].Type, "newest activity first")
}

func TestStore_UpdateOrganization(t *testing.T) {
	s := NewStore(3, 10, 2, fixedNow)

	o, err := s.UpdateOrganization("org_001", map[string]any{"plan": "enterprise"})
	require.NoError(t, err)
	assert.Equal(t, "enterprise", o.Plan)

	_, err = s.UpdateOrganization("org_001", map[string]any{"plan": "platinum"})
	var fieldErr *FieldError
	assert.ErrorAs(t, err, &fieldErr)

	o, err = s.UpdateOrganization("org_002", map[string]any{"suspend": true})
	require.NoError(t, err)
	assert.Equal(t, api.StatusSuspended, o.Status)
}

func TestStore_Delete(t *testing.T) {
	s := NewStore(5, 12, 3, fixedNow)

	require.NoError(t, s.DeleteUser("usr_0002"))
	assert.ErrorIs(t, s.DeleteUser("usr_0002"), ErrNotFound)
	_, total := s.Users(query{Page: 1, Limit: 100})
	assert.Equal(t, 11, total)

	require.NoError(t, s.DeleteOrganization("org_001"))
	users, _ := s.Users(query{Page: 1, Limit: 100, Filters: api.Filters{"organizationId": "org_001"}})
	assert.Empty(t, users, "members are detached")
	_, total = s.Organizations(query{Page: 1, Limit: 100})
	assert.Equal(t, 2, total)
}

func TestStore_ActivityBounded(t *testing.T) {
	s := NewStore(9, 3, 1, fixedNow)
	for i := 0; i < 200; i++ {
		_, err := s.UpdateUser("usr_0001", map[string]any{"role": "member"})
		require.NoError(t, err)
	}
	s.mu.RLock()
	n := len(s.activity)
	s.mu.RUnlock()
	assert.LessOrEqual(t, n, 4*api.MaxRecentActivity)
	assert.Len(t, s.Metrics().RecentActivity, api.MaxRecentActivity)
}
