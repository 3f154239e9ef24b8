package cli

import (
	"fmt"
	"net/url"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/adminctl/internal/config"
	"github.com/rileyhilliard/adminctl/internal/dashboard"
	"github.com/rileyhilliard/adminctl/internal/errors"
	"github.com/rileyhilliard/adminctl/internal/hook"
	"github.com/rileyhilliard/adminctl/internal/logger"
)

var (
	dashboardInterval      string
	dashboardNoRealTime    bool
	dashboardNoAutoRefresh bool
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Live metrics dashboard",
	Long: `Open a full-screen dashboard of platform metrics.

Metrics refresh on an interval and when the terminal regains focus. Failed
fetches retry with exponential backoff (2s, 4s, 8s) while the last good
numbers stay on screen.

Keys: r refresh, R refetch, ? help, q quit.

Examples:
  adminctl dashboard
  adminctl dashboard --interval 10s
  adminctl dashboard --no-auto-refresh`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationFullScreen: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if machineMode {
			return errors.New(errors.ErrInput,
				"dashboard is interactive and has no JSON output",
				"Use 'adminctl metrics --json' instead.")
		}
		interval, err := ParseInterval(dashboardInterval, config.MinRefreshInterval)
		if err != nil {
			return err
		}
		client, err := defaultClient()
		if err != nil {
			return err
		}

		opts := dashboardOptions(appConfig.Dashboard, interval)
		onChange, changes := dashboard.Signal[hook.DashboardState]()
		opts.OnChange = onChange
		d := hook.NewDashboard(client, opts)
		defer d.Close()

		model := dashboard.New(d, changes, dashboard.Options{
			Title:      dashboardTitle(client.BaseURL()),
			MaxRetries: *opts.MaxRetries,
		})
		p := tea.NewProgram(model,
			tea.WithAltScreen(),
			tea.WithReportFocus(),
			tea.WithContext(cmd.Context()),
		)
		if _, err := p.Run(); err != nil && cmd.Context().Err() == nil {
			return errors.WrapWithCode(err, errors.ErrInput,
				"The dashboard exited unexpectedly",
				"Check the log file for details: "+logger.DefaultLogFile())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	dashboardCmd.Flags().StringVarP(&dashboardInterval, "interval", "i", "", "refresh interval (default: dashboard.refresh_interval)")
	dashboardCmd.Flags().BoolVar(&dashboardNoRealTime, "no-realtime", false, "disable auto-refresh and focus refresh")
	dashboardCmd.Flags().BoolVar(&dashboardNoAutoRefresh, "no-auto-refresh", false, "disable the refresh timer only")
}

// dashboardOptions merges config with the command-line overrides.
func dashboardOptions(cfg config.DashboardConfig, interval time.Duration) hook.DashboardOptions {
	if interval <= 0 {
		interval = cfg.RefreshInterval
	}
	return hook.DashboardOptions{
		RefreshInterval: interval,
		EnableRealTime:  hook.Bool(cfg.EnableRealTime && !dashboardNoRealTime),
		AutoRefresh:     hook.Bool(cfg.AutoRefresh && !dashboardNoAutoRefresh),
		MaxRetries:      hook.Int(cfg.MaxRetries),
		Logger:          logger.New("dashboard"),
	}
}

func dashboardTitle(baseURL string) string {
	if u, err := url.Parse(baseURL); err == nil && u.Host != "" {
		return fmt.Sprintf("adminctl | %s", u.Host)
	}
	return "adminctl"
}
