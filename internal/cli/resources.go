package cli

import (
	"strconv"

	"github.com/rileyhilliard/adminctl/internal/api"
	"github.com/rileyhilliard/adminctl/internal/dashboard"
	"github.com/rileyhilliard/adminctl/internal/export"
	"github.com/rileyhilliard/adminctl/internal/hook"
	"github.com/rileyhilliard/adminctl/internal/ui"
)

// resource describes one manageable record type for the generic commands.
type resource[T any] struct {
	Use      string
	Aliases  []string
	Name     string // api path segment
	Singular string
	Plural   string
	Example  string

	// Updatable lists the fields "update --set" accepts.
	Updatable []string
	Filters   []filterFlag

	Columns []ui.TableColumn
	Row     func(T) []string
	Export  []export.Column[T]
	Layout  dashboard.Layout[T]

	Fetch func(*api.Client) hook.PageFunc[T]
}

var usersResource = resource[api.User]{
	Use:       "users",
	Aliases:   []string{"user"},
	Name:      api.ResourceUsers,
	Singular:  "user",
	Plural:    "users",
	Example:   "usr_0001",
	Updatable: []string{"name", "email", "role"},
	Filters: []filterFlag{
		{Name: "search", Key: "search", Usage: "match name or email"},
		{Name: "status", Key: "status", Usage: "active, suspended or pending"},
		{Name: "role", Key: "role", Usage: "owner, admin or member"},
		{Name: "org", Key: "organizationId", Usage: "organization id"},
	},
	Columns: []ui.TableColumn{
		{Title: "ID", Width: 10},
		{Title: "NAME", Width: 22},
		{Title: "EMAIL", Width: 30},
		{Title: "ROLE", Width: 8},
		{Title: "STATUS", Width: 12},
		{Title: "ORGANIZATION", Width: 18},
		{Title: "LAST SEEN", Width: 16},
	},
	Row: func(u api.User) []string {
		seen := "never"
		if u.LastSignInAt != nil {
			seen = ui.FormatDate(*u.LastSignInAt)
		}
		return []string{u.ID, u.Name, u.Email, u.Role, ui.StatusBadge(u.Status), u.OrganizationName, seen}
	},
	Export: export.UserColumns,
	Layout: dashboard.UserLayout,
	Fetch: func(c *api.Client) hook.PageFunc[api.User] {
		return c.ListUsers
	},
}

var organizationsResource = resource[api.Organization]{
	Use:       "orgs",
	Aliases:   []string{"org", "organizations"},
	Name:      api.ResourceOrganizations,
	Singular:  "organization",
	Plural:    "organizations",
	Example:   "org_012",
	Updatable: []string{"name", "plan"},
	Filters: []filterFlag{
		{Name: "search", Key: "search", Usage: "match name or slug"},
		{Name: "status", Key: "status", Usage: "active, suspended or pending"},
		{Name: "plan", Key: "plan", Usage: "free, starter, pro or enterprise"},
	},
	Columns: []ui.TableColumn{
		{Title: "ID", Width: 8},
		{Title: "NAME", Width: 24},
		{Title: "PLAN", Width: 10},
		{Title: "STATUS", Width: 12},
		{Title: "MEMBERS", Width: 8},
		{Title: "OWNER", Width: 28},
	},
	Row: func(o api.Organization) []string {
		return []string{o.ID, o.Name, o.Plan, ui.StatusBadge(o.Status), strconv.Itoa(o.MemberCount), o.OwnerEmail}
	},
	Export: export.OrganizationColumns,
	Layout: dashboard.OrganizationLayout,
	Fetch: func(c *api.Client) hook.PageFunc[api.Organization] {
		return c.ListOrganizations
	},
}

func init() {
	rootCmd.AddCommand(newResourceCmd(usersResource))
	rootCmd.AddCommand(newResourceCmd(organizationsResource))
}
