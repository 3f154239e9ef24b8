// Package export dumps users and organizations to CSV, JSON or YAML.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/adminctl/internal/api"
	"github.com/rileyhilliard/adminctl/internal/hook"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Format is an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatCSV, FormatJSON, FormatYAML}

// ParseFormat validates a format name. "yml" is accepted as YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or yaml)", s)
}

const (
	defaultPageSize    = 100
	defaultConcurrency = 4
)

// Options controls FetchAll.
type Options struct {
	Filters     api.Filters
	Sort        string
	Order       string
	PageSize    int
	Concurrency int
}

// FetchAll loads every page matching opts. The first page is fetched alone
// to learn the total; the rest are fetched concurrently and reassembled in
// page order.
func FetchAll[T any](ctx context.Context, fetch hook.PageFunc[T], opts Options) ([]T, error) {
	size := opts.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	workers := opts.Concurrency
	if workers <= 0 {
		workers = defaultConcurrency
	}
	base := api.Pagination{Page: 1, Limit: size, Sort: opts.Sort, Order: opts.Order}

	first, err := fetch(ctx, base, opts.Filters)
	if err != nil {
		return nil, fmt.Errorf("page 1: %w", err)
	}
	if first.Total <= len(first.Items) {
		return first.Items, nil
	}
	// The server may cap the page size; page by what it applied.
	if first.Limit > 0 && first.Limit != size {
		size = first.Limit
		base.Limit = size
	}

	pages := (first.Total + size - 1) / size
	results := make([][]T, pages)
	results[0] = first.Items

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for page := 2; page <= pages; page++ {
		g.Go(func() error {
			p := base
			p.Page = page
			res, err := fetch(gctx, p, opts.Filters)
			if err != nil {
				return fmt.Errorf("page %d: %w", page, err)
			}
			results[page-1] = res.Items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make([]T, 0, first.Total)
	for _, items := range results {
		all = append(all, items...)
	}
	if len(all) != first.Total {
		return nil, fmt.Errorf("fetched %d of %d records; the list changed during export", len(all), first.Total)
	}
	return all, nil
}

// Column is one CSV column.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// UserColumns is the CSV layout for users.
var UserColumns = []Column[api.User]{
	{Header: "id", Value: func(u api.User) string { return u.ID }},
	{Header: "email", Value: func(u api.User) string { return u.Email }},
	{Header: "name", Value: func(u api.User) string { return u.Name }},
	{Header: "role", Value: func(u api.User) string { return u.Role }},
	{Header: "status", Value: func(u api.User) string { return u.Status }},
	{Header: "organization_id", Value: func(u api.User) string { return u.OrganizationID }},
	{Header: "organization_name", Value: func(u api.User) string { return u.OrganizationName }},
	{Header: "created_at", Value: func(u api.User) string { return formatTime(u.CreatedAt) }},
	{Header: "last_sign_in_at", Value: func(u api.User) string {
		if u.LastSignInAt == nil {
			return ""
		}
		return formatTime(*u.LastSignInAt)
	}},
}

// OrganizationColumns is the CSV layout for organizations.
var OrganizationColumns = []Column[api.Organization]{
	{Header: "id", Value: func(o api.Organization) string { return o.ID }},
	{Header: "name", Value: func(o api.Organization) string { return o.Name }},
	{Header: "slug", Value: func(o api.Organization) string { return o.Slug }},
	{Header: "plan", Value: func(o api.Organization) string { return o.Plan }},
	{Header: "status", Value: func(o api.Organization) string { return o.Status }},
	{Header: "member_count", Value: func(o api.Organization) string { return strconv.Itoa(o.MemberCount) }},
	{Header: "owner_email", Value: func(o api.Organization) string { return o.OwnerEmail }},
	{Header: "created_at", Value: func(o api.Organization) string { return formatTime(o.CreatedAt) }},
}

// Write encodes items to w. Columns only apply to CSV; JSON and YAML
// carry every field.
func Write[T any](w io.Writer, format Format, items []T, columns []Column[T]) error {
	if items == nil {
		items = []T{}
	}
	switch format {
	case FormatCSV:
		return writeCSV(w, items, columns)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(items); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown export format %q", format)
}

func writeCSV[T any](w io.Writer, items []T, columns []Column[T]) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Header
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(columns))
	for _, item := range items {
		for i, c := range columns {
			row[i] = c.Value(item)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
