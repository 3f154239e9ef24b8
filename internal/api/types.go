package api

import "time"

// MaxRecentActivity bounds MetricsSnapshot.RecentActivity.
const MaxRecentActivity = 10

// Resource names as they appear in endpoint paths.
const (
	ResourceUsers         = "users"
	ResourceOrganizations = "organizations"
)

// MetricsSnapshot is one consistent set of aggregate counters. A new
// snapshot replaces the previous one wholesale; it is never merged.
type MetricsSnapshot struct {
	TotalUsers          int64        `json:"totalUsers" yaml:"totalUsers"`
	ActiveUsers         int64        `json:"activeUsers" yaml:"activeUsers"`
	NewUsersToday       int64        `json:"newUsersToday" yaml:"newUsersToday"`
	SuspendedUsers      int64        `json:"suspendedUsers" yaml:"suspendedUsers"`
	TotalOrganizations  int64        `json:"totalOrganizations" yaml:"totalOrganizations"`
	ActiveOrganizations int64        `json:"activeOrganizations" yaml:"activeOrganizations"`
	Revenue             RevenueStats `json:"revenue" yaml:"revenue"`
	System              SystemStats  `json:"system" yaml:"system"`
	RecentActivity      []Activity   `json:"recentActivity" yaml:"recentActivity"`
	GeneratedAt         time.Time    `json:"generatedAt" yaml:"generatedAt"`
}

// RevenueStats holds revenue figures in the account's billing currency.
type RevenueStats struct {
	Currency   string  `json:"currency" yaml:"currency"`
	MRR        float64 `json:"mrr" yaml:"mrr"`
	ARR        float64 `json:"arr" yaml:"arr"`
	GrowthRate float64 `json:"growthRate" yaml:"growthRate"` // percent vs previous period
	Churn      float64 `json:"churnRate" yaml:"churnRate"`   // percent
}

// SystemStats holds platform health figures.
type SystemStats struct {
	UptimePercent     float64 `json:"uptimePercent" yaml:"uptimePercent"`
	AvgResponseMs     float64 `json:"avgResponseMs" yaml:"avgResponseMs"`
	ErrorRate         float64 `json:"errorRate" yaml:"errorRate"` // percent
	ActiveSessions    int64   `json:"activeSessions" yaml:"activeSessions"`
	StorageUsedBytes  int64   `json:"storageUsedBytes" yaml:"storageUsedBytes"`
	StorageLimitBytes int64   `json:"storageLimitBytes" yaml:"storageLimitBytes"`
}

// Activity is one entry in the recent-activity feed.
type Activity struct {
	ID          string    `json:"id" yaml:"id"`
	Type        string    `json:"type" yaml:"type"`
	Actor       string    `json:"actor" yaml:"actor"`
	Description string    `json:"description" yaml:"description"`
	OccurredAt  time.Time `json:"occurredAt" yaml:"occurredAt"`
}

// Status values shared by users and organizations.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusPending   = "pending"
)

// User is an end user of the platform.
type User struct {
	ID               string     `json:"id" yaml:"id"`
	Email            string     `json:"email" yaml:"email"`
	Name             string     `json:"name" yaml:"name"`
	Role             string     `json:"role" yaml:"role"`
	Status           string     `json:"status" yaml:"status"`
	OrganizationID   string     `json:"organizationId,omitempty" yaml:"organizationId,omitempty"`
	OrganizationName string     `json:"organizationName,omitempty" yaml:"organizationName,omitempty"`
	SuspendReason    string     `json:"suspendReason,omitempty" yaml:"suspendReason,omitempty"`
	CreatedAt        time.Time  `json:"createdAt" yaml:"createdAt"`
	LastSignInAt     *time.Time `json:"lastSignInAt,omitempty" yaml:"lastSignInAt,omitempty"`
}

// Organization is a tenant.
type Organization struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Slug          string    `json:"slug" yaml:"slug"`
	Plan          string    `json:"plan" yaml:"plan"`
	Status        string    `json:"status" yaml:"status"`
	MemberCount   int       `json:"memberCount" yaml:"memberCount"`
	OwnerEmail    string    `json:"ownerEmail" yaml:"ownerEmail"`
	SuspendReason string    `json:"suspendReason,omitempty" yaml:"suspendReason,omitempty"`
	CreatedAt     time.Time `json:"createdAt" yaml:"createdAt"`
}

// Sort orders.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Pagination selects a page of a list endpoint.
type Pagination struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Sort  string `json:"sort,omitempty"`
	Order string `json:"order,omitempty"`
}

// Filters are resource-specific query filters (search, status, role, plan).
// Empty values are not sent.
type Filters map[string]string

// Clone returns an independent copy.
func (f Filters) Clone() Filters {
	if f == nil {
		return nil
	}
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Page is one page of a list endpoint.
type Page[T any] struct {
	Items []T
	Total int
	Page  int
	Limit int
}

// BulkResult reports the outcome of a bulk action.
type BulkResult struct {
	Affected int      `json:"affected"`
	Failed   []string `json:"failed,omitempty"`
}

// Bulk actions understood by the API.
const (
	BulkSuspend  = "suspend"
	BulkActivate = "activate"
	BulkDelete   = "delete"
)

// metricsEnvelope is the GET /metrics response body.
type metricsEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    *struct {
		Metrics *MetricsSnapshot `json:"metrics"`
	} `json:"data"`
}

// listEnvelope is the list endpoint response body.
type listEnvelope[T any] struct {
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Data     []T    `json:"data"`
	Metadata *struct {
		Total int `json:"total"`
		Page  int `json:"page"`
		Limit int `json:"limit"`
	} `json:"metadata,omitempty"`
}

// mutationEnvelope is the response body of PATCH, DELETE and bulk calls.
type mutationEnvelope struct {
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Data    *BulkResult `json:"data,omitempty"`
}

// errorBody is decoded from non-2xx responses to pull out a message.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
