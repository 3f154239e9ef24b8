package cli

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/adminctl/internal/api"
	"github.com/rileyhilliard/adminctl/internal/errors"
)

// filterFlag maps a command-line flag onto an API filter key.
type filterFlag struct {
	Name  string
	Key   string
	Usage string
}

// QueryFlags holds the listing flags shared by list, browse and export.
type QueryFlags struct {
	Page    int
	Limit   int
	Sort    string
	Order   string
	filters map[string]*string
}

// AddQueryFlags registers --sort, --order and the resource's filter flags.
// Paging flags are only added when paged is set.
func AddQueryFlags(cmd *cobra.Command, q *QueryFlags, defs []filterFlag, paged bool) {
	if paged {
		cmd.Flags().IntVar(&q.Page, "page", 1, "page number")
		cmd.Flags().IntVar(&q.Limit, "limit", 0, "rows per page (default: lists.page_size)")
	}
	cmd.Flags().StringVar(&q.Sort, "sort", "", "sort field")
	cmd.Flags().StringVar(&q.Order, "order", "", "sort order: asc or desc")

	q.filters = make(map[string]*string, len(defs))
	for _, def := range defs {
		v := new(string)
		q.filters[def.Key] = v
		cmd.Flags().StringVar(v, def.Name, "", def.Usage)
	}
}

// Validate checks paging and sort order values.
func (q *QueryFlags) Validate() error {
	if q.Page < 0 || q.Limit < 0 {
		return errors.New(errors.ErrInput,
			"--page and --limit can't be negative",
			"Pages start at 1.")
	}
	switch q.Order {
	case "", api.OrderAsc, api.OrderDesc:
		return nil
	}
	return errors.New(errors.ErrInput,
		fmt.Sprintf("'%s' isn't a sort order", q.Order),
		"Use --order asc or --order desc.")
}

// Pagination builds the request page, falling back to pageSize.
func (q *QueryFlags) Pagination(pageSize int) api.Pagination {
	p := api.Pagination{Page: q.Page, Limit: q.Limit, Sort: q.Sort, Order: q.Order}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = pageSize
	}
	return p
}

// Filters returns the non-empty filter flags.
func (q *QueryFlags) Filters() api.Filters {
	f := api.Filters{}
	for key, v := range q.filters {
		if s := strings.TrimSpace(*v); s != "" {
			f[key] = s
		}
	}
	return f
}

// ParseFields turns key=value pairs into an update body. Keys must be in
// allowed. "true"/"false" become booleans, anything else stays a string.
func ParseFields(pairs, allowed []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, errors.New(errors.ErrInput,
			"Nothing to update",
			"Pass one or more --set key=value, e.g. --set role=admin.")
	}
	fields := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, errors.New(errors.ErrInput,
				fmt.Sprintf("'%s' isn't a key=value pair", pair),
				"Use --set key=value.")
		}
		if !contains(allowed, k) {
			return nil, errors.New(errors.ErrInput,
				fmt.Sprintf("'%s' can't be updated", k),
				"Updatable fields: "+strings.Join(allowed, ", "))
		}
		switch v {
		case "true", "false":
			fields[k] = v == "true"
		default:
			fields[k] = v
		}
	}
	return fields, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ParseInterval parses a refresh interval flag. Empty means zero.
func ParseInterval(flag string, minimum time.Duration) (time.Duration, error) {
	if flag == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(flag)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrInput,
			fmt.Sprintf("'%s' doesn't look like a valid interval", flag),
			"Try something like 5s, 30s, or 1m.")
	}
	if d < minimum {
		return 0, errors.New(errors.ErrInput,
			fmt.Sprintf("Interval %s is too short", d),
			fmt.Sprintf("Use at least %s.", minimum))
	}
	return d, nil
}

// apiError turns a client error into a structured error for msg.
func apiError(err error, msg string) error {
	var adminErr *errors.Error
	if stderrors.As(err, &adminErr) {
		return err
	}
	switch {
	case stderrors.Is(err, api.ErrUnavailable):
		suggestion := "Check that the admin API is reachable."
		if appConfig != nil {
			suggestion = fmt.Sprintf("Check that the admin API is reachable at %s.", appConfig.API.BaseURL)
		}
		return errors.WrapWithCode(err, errors.ErrAPI, msg, suggestion)
	case stderrors.Is(err, api.ErrRequest):
		return errors.WrapWithCode(err, errors.ErrAPI, msg,
			"Check the id and that your API token has admin access.")
	}
	return errors.Wrap(err, msg)
}
