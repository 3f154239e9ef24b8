package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/adminctl/internal/api"
	"github.com/rileyhilliard/adminctl/internal/dashboard"
	"github.com/rileyhilliard/adminctl/internal/errors"
	"github.com/rileyhilliard/adminctl/internal/export"
	"github.com/rileyhilliard/adminctl/internal/hook"
	"github.com/rileyhilliard/adminctl/internal/logger"
	"github.com/rileyhilliard/adminctl/internal/ui"
)

// listResult is the --json payload of "list".
type listResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// actionResult is the --json payload of suspend, activate, delete and bulk.
type actionResult struct {
	Action   string   `json:"action"`
	IDs      []string `json:"ids"`
	Affected int      `json:"affected"`
	Failed   []string `json:"failed,omitempty"`
}

// pastTense of the bulk actions, for output.
var pastTense = map[string]string{
	api.BulkSuspend:  "Suspended",
	api.BulkActivate: "Activated",
	api.BulkDelete:   "Deleted",
}

// newResourceCmd builds the command tree for one resource.
func newResourceCmd[T any](r resource[T]) *cobra.Command {
	cmd := &cobra.Command{
		Use:     r.Use,
		Aliases: r.Aliases,
		Short:   fmt.Sprintf("List and manage %s", r.Plural),
		Long: fmt.Sprintf(`List, browse, update, suspend, activate, delete and export %[1]s.

Examples:
  adminctl %[2]s list --status active
  adminctl %[2]s browse
  adminctl %[2]s suspend %[3]s --reason "abuse report"
  adminctl %[2]s export --format csv -o %[1]s.csv`, r.Plural, r.Use, r.Example),
	}
	cmd.AddCommand(
		r.listCmd(),
		r.browseCmd(),
		r.updateCmd(),
		r.actionCmd(api.BulkSuspend),
		r.actionCmd(api.BulkActivate),
		r.actionCmd(api.BulkDelete),
		r.bulkCmd(),
		r.exportCmd(),
	)
	return cmd
}

func (r resource[T]) listCmd() *cobra.Command {
	var q QueryFlags
	cmd := &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s", r.Plural),
		Long: fmt.Sprintf(`Print one page of %[1]s as a table.

Examples:
  adminctl %[2]s list
  adminctl %[2]s list --page 2 --limit 50
  adminctl %[2]s list --search ada --sort createdAt --order desc`, r.Plural, r.Use),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := q.Validate(); err != nil {
				return err
			}
			client, err := defaultClient()
			if err != nil {
				return err
			}
			p := q.Pagination(appConfig.Lists.PageSize)
			page, err := r.Fetch(client)(cmd.Context(), p, q.Filters())
			if err != nil {
				return apiError(err, "Failed to fetch "+r.Plural)
			}
			state := hook.ListState[T]{Data: page.Items, Total: page.Total, Pagination: p}
			return r.printList(cmd.OutOrStdout(), state)
		},
	}
	AddQueryFlags(cmd, &q, r.Filters, true)
	return cmd
}

func (r resource[T]) printList(w io.Writer, s hook.ListState[T]) error {
	if machineMode {
		items := s.Data
		if items == nil {
			items = []T{}
		}
		return WriteJSONSuccess(w, listResult[T]{
			Items: items,
			Total: s.Total,
			Page:  s.Pagination.Page,
			Limit: s.Pagination.Limit,
			Pages: s.Pages(),
		})
	}
	if len(s.Data) == 0 {
		fmt.Fprintf(w, "No %s found.\n", r.Plural)
		return nil
	}
	rows := make([][]string, len(s.Data))
	for i, item := range s.Data {
		rows[i] = r.Row(item)
	}
	fmt.Fprint(w, ui.RenderSimpleTable(r.Columns, rows))
	fmt.Fprintln(w, ui.Style(ui.ColorMuted).Render(fmt.Sprintf("page %d/%d | %s total",
		s.Pagination.Page, s.Pages(), ui.FormatCount(int64(s.Total)))))
	return nil
}

func (r resource[T]) browseCmd() *cobra.Command {
	var q QueryFlags
	cmd := &cobra.Command{
		Use:   "browse",
		Short: fmt.Sprintf("Browse %s interactively", r.Plural),
		Long: fmt.Sprintf(`Open a full-screen, paginated %[1]s table.

Keys: n/p page, / search, c clear search, s suspend/activate, r refetch, q quit.

Examples:
  adminctl %[2]s browse
  adminctl %[2]s browse --status suspended`, r.Plural, r.Use),
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationFullScreen: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := q.Validate(); err != nil {
				return err
			}
			if machineMode {
				return errors.New(errors.ErrInput,
					"browse is interactive and has no JSON output",
					fmt.Sprintf("Use 'adminctl %s list --json' instead.", r.Use))
			}
			client, err := defaultClient()
			if err != nil {
				return err
			}

			onChange, changes := dashboard.Signal[hook.ListState[T]]()
			list := hook.NewList(r.Name, r.Fetch(client), client, hook.ListOptions[T]{
				PageSize: appConfig.Lists.PageSize,
				Sort:     q.Sort,
				Order:    q.Order,
				Filters:  q.Filters(),
				Logger:   logger.New(r.Name),
				OnChange: onChange,
			})
			defer list.Close()

			model := dashboard.NewBrowser[T](list, changes, r.Layout)
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil && cmd.Context().Err() == nil {
				return errors.WrapWithCode(err, errors.ErrInput,
					"The browser exited unexpectedly",
					"Check the log file for details: "+logger.DefaultLogFile())
			}
			return nil
		},
	}
	AddQueryFlags(cmd, &q, r.Filters, false)
	return cmd
}

func (r resource[T]) updateCmd() *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: fmt.Sprintf("Update fields of a %s", r.Singular),
		Long: fmt.Sprintf(`Change one or more fields of a %[1]s.

Updatable fields: %[4]s

Examples:
  adminctl %[2]s update %[3]s --set name="New Name"`, r.Singular, r.Use, r.Example, strings.Join(r.Updatable, ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := ParseFields(sets, r.Updatable)
			if err != nil {
				return err
			}
			client, err := defaultClient()
			if err != nil {
				return err
			}
			id := args[0]
			if err := client.Update(cmd.Context(), r.Name, id, fields); err != nil {
				return apiError(err, fmt.Sprintf("Failed to update %s %s", r.Singular, id))
			}
			if machineMode {
				return WriteJSONSuccess(cmd.OutOrStdout(), map[string]any{"id": id, "fields": fields})
			}
			printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Updated %s %s", r.Singular, id))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field to change as key=value (repeatable)")
	return cmd
}

// actionCmd builds suspend, activate or delete. More than one id goes
// through the bulk endpoint.
func (r resource[T]) actionCmd(action string) *cobra.Command {
	var (
		reason  string
		autoYes bool
	)
	cmd := &cobra.Command{
		Use:   action + " <id>...",
		Short: fmt.Sprintf("%s one or more %s", verb(action), r.Plural),
		Long: fmt.Sprintf(`%[1]s one or more %[2]s by id.

Examples:
  adminctl %[3]s %[4]s %[5]s
  adminctl %[3]s %[4]s %[5]s other_id --yes`, verb(action), r.Plural, r.Use, action, r.Example),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.runAction(cmd, action, args, reason, autoYes)
		},
	}
	if action == api.BulkSuspend {
		cmd.Flags().StringVar(&reason, "reason", "", "reason recorded with the suspension")
	}
	if action != api.BulkActivate {
		cmd.Flags().BoolVarP(&autoYes, "yes", "y", false, "skip the confirmation prompt")
	}
	return cmd
}

func (r resource[T]) bulkCmd() *cobra.Command {
	var (
		reason  string
		autoYes bool
	)
	cmd := &cobra.Command{
		Use:   "bulk <suspend|activate|delete> <id>...",
		Short: fmt.Sprintf("Apply one action to many %s", r.Plural),
		Long: fmt.Sprintf(`Apply suspend, activate or delete to many %[1]s in one request.
Ids that fail are reported; the rest still apply.

Examples:
  adminctl %[2]s bulk suspend id1 id2 id3 --reason "fraud ring"
  adminctl %[2]s bulk delete id1 id2 --yes`, r.Plural, r.Use),
		Args: cobra.MinimumNArgs(2),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return []string{api.BulkSuspend, api.BulkActivate, api.BulkDelete}, cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := args[0]
			if _, ok := pastTense[action]; !ok {
				return errors.New(errors.ErrInput,
					fmt.Sprintf("'%s' isn't a bulk action", action),
					"Use suspend, activate or delete.")
			}
			return r.runBulk(cmd, action, args[1:], reason, autoYes)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason recorded with a suspension")
	cmd.Flags().BoolVarP(&autoYes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (r resource[T]) runAction(cmd *cobra.Command, action string, ids []string, reason string, autoYes bool) error {
	if len(ids) > 1 {
		return r.runBulk(cmd, action, ids, reason, autoYes)
	}
	if ok, err := r.confirmAction(action, ids, autoYes); err != nil || !ok {
		return cancelled(cmd.OutOrStdout(), err)
	}

	client, err := defaultClient()
	if err != nil {
		return err
	}
	id, ctx := ids[0], cmd.Context()
	switch action {
	case api.BulkSuspend:
		err = client.Suspend(ctx, r.Name, id, reason)
	case api.BulkActivate:
		err = client.Activate(ctx, r.Name, id)
	case api.BulkDelete:
		err = client.Delete(ctx, r.Name, id)
	}
	if err != nil {
		return apiError(err, fmt.Sprintf("Failed to %s %s %s", action, r.Singular, id))
	}
	logger.New(r.Name).Info("%s %s %s", action, r.Singular, id)

	if machineMode {
		return WriteJSONSuccess(cmd.OutOrStdout(), actionResult{Action: action, IDs: ids, Affected: 1})
	}
	printSuccess(cmd.OutOrStdout(), fmt.Sprintf("%s %s %s", pastTense[action], r.Singular, id))
	return nil
}

func (r resource[T]) runBulk(cmd *cobra.Command, action string, ids []string, reason string, autoYes bool) error {
	if ok, err := r.confirmAction(action, ids, autoYes); err != nil || !ok {
		return cancelled(cmd.OutOrStdout(), err)
	}

	client, err := defaultClient()
	if err != nil {
		return err
	}
	var extra map[string]any
	if reason != "" && action == api.BulkSuspend {
		extra = map[string]any{"reason": reason}
	}
	res, err := client.Bulk(cmd.Context(), r.Name, action, ids, extra)
	if err != nil {
		return apiError(err, fmt.Sprintf("Failed to %s %d %s", action, len(ids), r.Plural))
	}
	logger.New(r.Name).Info("bulk %s: %d affected, %d failed", action, res.Affected, len(res.Failed))

	w := cmd.OutOrStdout()
	if machineMode {
		return WriteJSONSuccess(w, actionResult{Action: action, IDs: ids, Affected: res.Affected, Failed: res.Failed})
	}
	printSuccess(w, fmt.Sprintf("%s %d %s", pastTense[action], res.Affected, r.Plural))
	if len(res.Failed) > 0 {
		fmt.Fprintf(w, "%s Failed: %s\n", ui.Style(ui.ColorError).Render(ui.SymbolFail), strings.Join(res.Failed, ", "))
	}
	return nil
}

// confirmAction asks before suspend and delete. Activation is harmless and
// never prompts.
func (r resource[T]) confirmAction(action string, ids []string, autoYes bool) (bool, error) {
	if action == api.BulkActivate {
		return true, nil
	}
	noun := r.Singular
	if len(ids) > 1 {
		noun = fmt.Sprintf("%d %s", len(ids), r.Plural)
	} else {
		noun += " " + ids[0]
	}
	title := fmt.Sprintf("%s %s?", verb(action), noun)
	desc := "They can be reactivated later."
	if action == api.BulkDelete {
		desc = "This cannot be undone."
	}
	return confirm(autoYes, title, desc)
}

func (r resource[T]) exportCmd() *cobra.Command {
	var (
		q           QueryFlags
		format      string
		output      string
		pageSize    int
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: fmt.Sprintf("Export every matching %s", r.Singular),
		Long: fmt.Sprintf(`Fetch every page of %[1]s matching the filters and write them as
csv, json or yaml. Pages are fetched concurrently.

Examples:
  adminctl %[2]s export > %[1]s.csv
  adminctl %[2]s export --format json --status suspended -o suspended.json`, r.Plural, r.Use),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := q.Validate(); err != nil {
				return err
			}
			f, err := export.ParseFormat(format)
			if err != nil {
				return errors.WrapWithCode(err, errors.ErrInput,
					fmt.Sprintf("Unknown export format '%s'", format),
					"Use --format csv, json or yaml.")
			}
			client, err := defaultClient()
			if err != nil {
				return err
			}
			items, err := export.FetchAll(cmd.Context(), r.Fetch(client), export.Options{
				Filters:     q.Filters(),
				Sort:        q.Sort,
				Order:       q.Order,
				PageSize:    pageSize,
				Concurrency: concurrency,
			})
			if err != nil {
				return apiError(err, "Failed to fetch "+r.Plural)
			}
			return r.writeExport(cmd, f, output, items)
		},
	}
	AddQueryFlags(cmd, &q, r.Filters, false)
	cmd.Flags().StringVarP(&format, "format", "f", string(export.FormatCSV), "csv, json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "rows fetched per request (default 100)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "pages fetched in parallel (default 4)")
	return cmd
}

func (r resource[T]) writeExport(cmd *cobra.Command, format export.Format, output string, items []T) error {
	w := cmd.OutOrStdout()
	if output != "" && output != "-" {
		file, err := os.Create(output)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrExport,
				"Can't create "+output,
				"Check the directory exists and is writable.")
		}
		defer file.Close()
		w = file
	}
	if err := export.Write(w, format, items, r.Export); err != nil {
		return errors.WrapWithCode(err, errors.ErrExport,
			fmt.Sprintf("Failed to write %s export", format),
			"")
	}
	if w != cmd.OutOrStdout() {
		printSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Exported %s %s to %s",
			ui.FormatCount(int64(len(items))), r.Plural, output))
	}
	return nil
}

// verb capitalizes a bulk action for prompts and help text.
func verb(action string) string {
	if action == "" {
		return action
	}
	return strings.ToUpper(action[:1]) + action[1:]
}

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintf(w, "%s %s\n", ui.Style(ui.ColorSuccess).Render(ui.SymbolSuccess), msg)
}

// cancelled reports a declined prompt. A refusal to prompt is an error.
func cancelled(w io.Writer, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Cancelled.")
	return nil
}
