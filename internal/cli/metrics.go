package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/adminctl/internal/api"
	"github.com/rileyhilliard/adminctl/internal/errors"
	"github.com/rileyhilliard/adminctl/internal/logger"
	"github.com/rileyhilliard/adminctl/internal/ui"
)

// metricsNow is swapped out by tests.
var metricsNow = time.Now

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print a one-shot metrics snapshot",
	Long: `Fetch the dashboard metrics once and print them.

Use 'adminctl dashboard' for a live, auto-refreshing view.

Examples:
  adminctl metrics
  adminctl metrics --json | jq .data.revenue.mrr`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := defaultClient()
		if err != nil {
			return err
		}
		snap, err := client.Metrics(cmd.Context())
		if err != nil {
			// The cause is logged; the user only sees the generic message.
			logger.New("metrics").Error("fetch failed: %v", err)
			return errors.FetchFailed(
				fmt.Sprintf("Check that the admin API is reachable at %s, or run with --verbose.", appConfig.API.BaseURL))
		}
		if machineMode {
			return WriteJSONSuccess(cmd.OutOrStdout(), snap)
		}
		renderMetrics(cmd.OutOrStdout(), snap, metricsNow())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}

var (
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(ui.ColorSecondary)
	labelStyle   = lipgloss.NewStyle().Foreground(ui.ColorMuted).Width(16)
)

func renderMetrics(w io.Writer, m *api.MetricsSnapshot, now time.Time) {
	section := func(title string, rows [][2]string) {
		fmt.Fprintln(w, sectionStyle.Render(title))
		for _, r := range rows {
			fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(r[0]), r[1])
		}
		fmt.Fprintln(w)
	}

	section("Users", [][2]string{
		{"Total", ui.FormatCount(m.TotalUsers)},
		{"Active", ui.FormatCount(m.ActiveUsers)},
		{"New today", ui.FormatCount(m.NewUsersToday)},
		{"Suspended", ui.FormatCount(m.SuspendedUsers)},
	})
	section("Organizations", [][2]string{
		{"Total", ui.FormatCount(m.TotalOrganizations)},
		{"Active", ui.FormatCount(m.ActiveOrganizations)},
	})
	section("Revenue", [][2]string{
		{"MRR", ui.FormatMoney(m.Revenue.MRR, m.Revenue.Currency)},
		{"ARR", ui.FormatMoney(m.Revenue.ARR, m.Revenue.Currency)},
		{"Growth", ui.FormatDelta(m.Revenue.GrowthRate)},
		{"Churn", ui.FormatPercent(m.Revenue.Churn)},
	})
	section("System", [][2]string{
		{"Uptime", ui.FormatPercent(m.System.UptimePercent)},
		{"Avg response", fmt.Sprintf("%.0f ms", m.System.AvgResponseMs)},
		{"Error rate", ui.FormatPercent(m.System.ErrorRate)},
		{"Sessions", ui.FormatCount(m.System.ActiveSessions)},
		{"Storage", ui.FormatBytes(m.System.StorageUsedBytes) + " / " + ui.FormatBytes(m.System.StorageLimitBytes)},
	})

	if len(m.RecentActivity) > 0 {
		fmt.Fprintln(w, sectionStyle.Render("Recent activity"))
		for _, a := range m.RecentActivity {
			fmt.Fprintf(w, "  %s %s %s\n",
				labelStyle.Render(ui.FormatAgo(a.OccurredAt, now)),
				a.Actor,
				ui.Style(ui.ColorMuted).Render(a.Description))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, ui.Style(ui.ColorMuted).Render("generated "+ui.FormatAgo(m.GeneratedAt, now)))
}
