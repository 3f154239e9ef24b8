package stubapi

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/adminctl/internal/api"
)

// ErrNotFound is returned for unknown ids.
var ErrNotFound = errors.New("not found")

// FieldError reports an update the store refuses.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// planPrice is the monthly price per plan, used to derive revenue.
var planPrice = map[string]float64{
	"free":       0,
	"starter":    29,
	"pro":        99,
	"enterprise": 499,
}

var (
	firstNames = []string{"Ada", "Grace", "Linus", "Margaret", "Ken", "Barbara", "Dennis", "Frances", "Alan", "Radia", "Edsger", "Hedy"}
	lastNames  = []string{"Lovelace", "Hopper", "Torvalds", "Hamilton", "Thompson", "Liskov", "Ritchie", "Allen", "Turing", "Perlman", "Dijkstra", "Lamarr"}
	orgWords   = []string{"Acme", "Globex", "Initech", "Umbrella", "Hooli", "Vandelay", "Stark", "Wayne", "Tyrell", "Cyberdyne", "Soylent", "Wonka"}
	roles      = []string{"member", "member", "member", "admin", "owner"}
	plans      = []string{"free", "starter", "pro", "pro", "enterprise"}
)

// Store is an in-memory dataset behind the stub API. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	users    []api.User
	orgs     []api.Organization
	activity []api.Activity
	seq      int
	now      func() time.Time
}

// NewStore seeds a deterministic dataset. The same seed and now always
// produce the same records.
func NewStore(seed uint64, users, orgs int, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	s := &Store{now: now}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	base := now().UTC().Truncate(time.Hour)

	for i := 0; i < orgs; i++ {
		word := orgWords[i%len(orgWords)]
		name := word
		if i >= len(orgWords) {
			name = fmt.Sprintf("%s %d", word, i/len(orgWords)+1)
		}
		status := api.StatusActive
		if rng.IntN(10) == 0 {
			status = api.StatusSuspended
		}
		s.orgs = append(s.orgs, api.Organization{
			ID:        fmt.Sprintf("org_%03d", i+1),
			Name:      name,
			Slug:      strings.ReplaceAll(strings.ToLower(name), " ", "-"),
			Plan:      plans[rng.IntN(len(plans))],
			Status:    status,
			CreatedAt: base.Add(-time.Duration(rng.IntN(24*365)) * time.Hour),
		})
	}

	for i := 0; i < users; i++ {
		first := firstNames[rng.IntN(len(firstNames))]
		last := lastNames[rng.IntN(len(lastNames))]
		u := api.User{
			ID:        fmt.Sprintf("usr_%04d", i+1),
			Name:      first + " " + last,
			Email:     fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i+1),
			Role:      roles[rng.IntN(len(roles))],
			Status:    api.StatusActive,
			CreatedAt: base.Add(-time.Duration(rng.IntN(24*180)) * time.Hour),
		}
		switch rng.IntN(12) {
		case 0:
			u.Status = api.StatusSuspended
			u.SuspendReason = "seeded"
		case 1:
			u.Status = api.StatusPending
		}
		if len(s.orgs) > 0 {
			org := &s.orgs[rng.IntN(len(s.orgs))]
			u.OrganizationID = org.ID
			u.OrganizationName = org.Name
			org.MemberCount++
			if org.OwnerEmail == "" {
				org.OwnerEmail = u.Email
			}
		}
		if u.Status == api.StatusActive {
			seen := base.Add(-time.Duration(rng.IntN(24*14)) * time.Hour)
			u.LastSignInAt = &seen
		}
		s.users = append(s.users, u)
	}

	for i := 0; i < api.MaxRecentActivity && i < len(s.users); i++ {
		u := s.users[len(s.users)-1-i]
		s.record("user.signup", u.Email, fmt.Sprintf("%s signed up", u.Name))
	}
	return s
}

// record appends to the activity feed. Caller holds mu.
func (s *Store) record(kind, actor, description string) {
	s.seq++
	s.activity = append(s.activity, api.Activity{
		ID:          fmt.Sprintf("act_%05d", s.seq),
		Type:        kind,
		Actor:       actor,
		Description: description,
		OccurredAt:  s.now().UTC(),
	})
	if n := len(s.activity); n > 4*api.MaxRecentActivity {
		s.activity = slices.Clone(s.activity[n-api.MaxRecentActivity:])
	}
}

// Metrics derives a snapshot from the current dataset.
func (s *Store) Metrics() *api.MetricsSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now().UTC()
	m := &api.MetricsSnapshot{
		TotalUsers:         int64(len(s.users)),
		TotalOrganizations: int64(len(s.orgs)),
		GeneratedAt:        now,
		Revenue: api.RevenueStats{
			Currency:   "USD",
			GrowthRate: 4.2,
			Churn:      1.3,
		},
		System: api.SystemStats{
			UptimePercent:     99.95,
			AvgResponseMs:     42,
			ErrorRate:         0.12,
			StorageLimitBytes: 500 << 30,
		},
	}

	for _, u := range s.users {
		switch u.Status {
		case api.StatusActive:
			m.ActiveUsers++
		case api.StatusSuspended:
			m.SuspendedUsers++
		}
		if now.Sub(u.CreatedAt) < 24*time.Hour {
			m.NewUsersToday++
		}
		if u.LastSignInAt != nil && now.Sub(*u.LastSignInAt) < time.Hour*24 {
			m.System.ActiveSessions++
		}
	}
	for _, o := range s.orgs {
		if o.Status != api.StatusActive {
			continue
		}
		m.ActiveOrganizations++
		m.Revenue.MRR += planPrice[o.Plan]
	}
	m.Revenue.ARR = m.Revenue.MRR * 12
	m.System.StorageUsedBytes = int64(len(s.users))*(48<<20) + int64(len(s.orgs))*(1<<30)

	for i := len(s.activity) - 1; i >= 0 && len(m.RecentActivity) < api.MaxRecentActivity; i-- {
		m.RecentActivity = append(m.RecentActivity, s.activity[i])
	}
	return m
}

// query is a parsed list request.
type query struct {
	Page    int
	Limit   int
	Sort    string
	Order   string
	Filters api.Filters
}

func paginate[T any](items []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := min(start+limit, len(items))
	return slices.Clone(items[start:end])
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func direction(order string) int {
	if order == api.OrderDesc {
		return -1
	}
	return 1
}

// Users returns one page of users matching q, and the total match count.
func (s *Store) Users(q query) ([]api.User, int) {
	s.mu.RLock()
	matched := make([]api.User, 0, len(s.users))
	for _, u := range s.users {
		if v := q.Filters["search"]; v != "" && !containsFold(u.Name, v) && !containsFold(u.Email, v) {
			continue
		}
		if v := q.Filters["status"]; v != "" && u.Status != v {
			continue
		}
		if v := q.Filters["role"]; v != "" && u.Role != v {
			continue
		}
		if v := q.Filters["organizationId"]; v != "" && u.OrganizationID != v {
			continue
		}
		matched = append(matched, u)
	}
	s.mu.RUnlock()

	dir := direction(q.Order)
	slices.SortStableFunc(matched, func(a, b api.User) int {
		var c int
		switch q.Sort {
		case "name":
			c = cmp.Compare(a.Name, b.Name)
		case "email":
			c = cmp.Compare(a.Email, b.Email)
		case "role":
			c = cmp.Compare(a.Role, b.Role)
		case "status":
			c = cmp.Compare(a.Status, b.Status)
		case "createdAt":
			c = a.CreatedAt.Compare(b.CreatedAt)
		default:
			c = cmp.Compare(a.ID, b.ID)
		}
		return c * dir
	})
	return paginate(matched, q.Page, q.Limit), len(matched)
}

// Organizations returns one page of organizations matching q, and the
// total match count.
func (s *Store) Organizations(q query) ([]api.Organization, int) {
	s.mu.RLock()
	matched := make([]api.Organization, 0, len(s.orgs))
	for _, o := range s.orgs {
		if v := q.Filters["search"]; v != "" && !containsFold(o.Name, v) && !containsFold(o.Slug, v) {
			continue
		}
		if v := q.Filters["status"]; v != "" && o.Status != v {
			continue
		}
		if v := q.Filters["plan"]; v != "" && o.Plan != v {
			continue
		}
		matched = append(matched, o)
	}
	s.mu.RUnlock()

	dir := direction(q.Order)
	slices.SortStableFunc(matched, func(a, b api.Organization) int {
		var c int
		switch q.Sort {
		case "name":
			c = cmp.Compare(a.Name, b.Name)
		case "plan":
			c = cmp.Compare(a.Plan, b.Plan)
		case "status":
			c = cmp.Compare(a.Status, b.Status)
		case "memberCount":
			c = cmp.Compare(a.MemberCount, b.MemberCount)
		case "createdAt":
			c = a.CreatedAt.Compare(b.CreatedAt)
		default:
			c = cmp.Compare(a.ID, b.ID)
		}
		return c * dir
	})
	return paginate(matched, q.Page, q.Limit), len(matched)
}

// statusChange interprets the suspend/activate flags of an update body.
// It returns the new status, or "" when the body changes no status.
func statusChange(fields map[string]any) (string, error) {
	suspend, _ := fields["suspend"].(bool)
	activate, _ := fields["activate"].(bool)
	switch {
	case suspend && activate:
		return "", &FieldError{Field: "suspend", Reason: "cannot suspend and activate at once"}
	case suspend:
		return api.StatusSuspended, nil
	case activate:
		return api.StatusActive, nil
	}
	if v, ok := fields["status"]; ok {
		status, _ := v.(string)
		switch status {
		case api.StatusActive, api.StatusSuspended, api.StatusPending:
			return status, nil
		}
		return "", &FieldError{Field: "status", Reason: "must be active, suspended or pending"}
	}
	return "", nil
}

func stringField(fields map[string]any, key string) (string, bool, error) {
	v, ok := fields[key]
	if !ok {
		return "", false, nil
	}
	str, isStr := v.(string)
	if !isStr || strings.TrimSpace(str) == "" {
		return "", false, &FieldError{Field: key, Reason: "must be a non-empty string"}
	}
	return str, true, nil
}

func checkFields(fields map[string]any, allowed ...string) error {
	for k := range fields {
		switch k {
		case "suspend", "activate", "reason", "status":
			continue
		}
		if !slices.Contains(allowed, k) {
			return &FieldError{Field: k, Reason: "unknown or read-only field"}
		}
	}
	return nil
}

// UpdateUser applies fields to one user and returns the result.
func (s *Store) UpdateUser(id string, fields map[string]any) (api.User, error) {
	if err := checkFields(fields, "name", "email", "role"); err != nil {
		return api.User{}, err
	}
	status, err := statusChange(fields)
	if err != nil {
		return api.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.users, func(u api.User) bool { return u.ID == id })
	if i < 0 {
		return api.User{}, ErrNotFound
	}
	u := s.users[i]

	for _, key := range []string{"name", "email", "role"} {
		v, ok, err := stringField(fields, key)
		if err != nil {
			return api.User{}, err
		}
		if !ok {
			continue
		}
		switch key {
		case "name":
			u.Name = v
		case "email":
			u.Email = v
		case "role":
			u.Role = v
		}
	}
	if status != "" {
		u.Status = status
		u.SuspendReason = ""
		if status == api.StatusSuspended {
			u.SuspendReason, _ = fields["reason"].(string)
		}
		s.record("user."+status, u.Email, fmt.Sprintf("%s is now %s", u.Name, status))
	} else {
		s.record("user.updated", u.Email, fmt.Sprintf("%s was updated", u.Name))
	}
	s.users[i] = u
	return u, nil
}

// UpdateOrganization applies fields to one organization and returns the result.
func (s *Store) UpdateOrganization(id string, fields map[string]any) (api.Organization, error) {
	if err := checkFields(fields, "name", "plan"); err != nil {
		return api.Organization{}, err
	}
	status, err := statusChange(fields)
	if err != nil {
		return api.Organization{}, err
	}
	if v, ok := fields["plan"].(string); ok {
		if _, known := planPrice[v]; !known {
			return api.Organization{}, &FieldError{Field: "plan", Reason: "unknown plan"}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.orgs, func(o api.Organization) bool { return o.ID == id })
	if i < 0 {
		return api.Organization{}, ErrNotFound
	}
	o := s.orgs[i]

	if v, ok, err := stringField(fields, "name"); err != nil {
		return api.Organization{}, err
	} else if ok {
		o.Name = v
	}
	if v, ok, err := stringField(fields, "plan"); err != nil {
		return api.Organization{}, err
	} else if ok {
		o.Plan = v
	}
	if status != "" {
		o.Status = status
		o.SuspendReason = ""
		if status == api.StatusSuspended {
			o.SuspendReason, _ = fields["reason"].(string)
		}
		s.record("organization."+status, o.Slug, fmt.Sprintf("%s is now %s", o.Name, status))
	} else {
		s.record("organization.updated", o.Slug, fmt.Sprintf("%s was updated", o.Name))
	}
	s.orgs[i] = o
	return o, nil
}

// DeleteUser removes one user.
func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.users, func(u api.User) bool { return u.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	u := s.users[i]
	s.users = slices.Delete(s.users, i, i+1)
	for j := range s.orgs {
		if s.orgs[j].ID == u.OrganizationID && s.orgs[j].MemberCount > 0 {
			s.orgs[j].MemberCount--
		}
	}
	s.record("user.deleted", u.Email, fmt.Sprintf("%s was deleted", u.Name))
	return nil
}

// DeleteOrganization removes one organization and detaches its members.
func (s *Store) DeleteOrganization(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.orgs, func(o api.Organization) bool { return o.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	o := s.orgs[i]
	s.orgs = slices.Delete(s.orgs, i, i+1)
	for j := range s.users {
		if s.users[j].OrganizationID == id {
			s.users[j].OrganizationID = ""
			s.users[j].OrganizationName = ""
		}
	}
	s.record("organization.deleted", o.Slug, fmt.Sprintf("%s was deleted", o.Name))
	return nil
}
