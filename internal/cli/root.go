package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/adminctl/internal/api"
	"github.com/rileyhilliard/adminctl/internal/config"
	"github.com/rileyhilliard/adminctl/internal/errors"
	"github.com/rileyhilliard/adminctl/internal/logger"
	"github.com/rileyhilliard/adminctl/internal/ui"
)

const (
	// annotationSkipConfig marks commands that must work without a config.
	annotationSkipConfig = "adminctl/skip-config"
	// annotationFullScreen marks commands that take over the terminal.
	annotationFullScreen = "adminctl/full-screen"
)

// Global flags
var (
	cfgFile string
	noColor bool
	verbose bool
)

// Loaded by PersistentPreRunE.
var (
	appConfig     *config.Config
	appConfigPath string
	logCloser     io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "adminctl",
	Short: "Admin dashboard and user management for the platform API",
	Long: `adminctl watches platform metrics and manages users and organizations
through the admin REST API.

Examples:
  adminctl dashboard
  adminctl users list --status suspended
  adminctl orgs suspend org_012 --reason "unpaid invoice"
  adminctl stub-server --fail-every 3`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadApp(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLog()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: .adminctl.yaml, then ~/.config/adminctl/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&machineMode, "json", false, "machine-readable JSON output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadApp reads config, sets up color and logging, and registers the
// process-wide API client factory.
func loadApp(cmd *cobra.Command) error {
	if cmd.Annotations[annotationSkipConfig] != "" {
		appConfig = config.DefaultConfig()
		return setupOutput(cmd, appConfig)
	}

	cfg, path, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	appConfig, appConfigPath = cfg, path

	if err := setupOutput(cmd, cfg); err != nil {
		return err
	}

	api.RegisterDefault(func() (*api.Client, error) {
		return newClient(cfg)
	})
	logger.New("cli").Debug("config loaded from %q", path)
	return nil
}

func setupOutput(cmd *cobra.Command, cfg *config.Config) error {
	mode := cfg.Output.Color
	if noColor {
		mode = ui.ColorModeNever
	}
	if err := ui.SetColorMode(mode, cmd.OutOrStdout()); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid output.color setting",
			"Use auto, always, or never.")
	}

	level := cfg.Log.Level
	if verbose {
		level = "debug"
	}
	file := config.ExpandTilde(cfg.Log.File)
	if file == "" && cmd.Annotations[annotationFullScreen] != "" {
		file = logger.DefaultLogFile()
	}
	closer, err := logger.Setup(logger.Options{File: file, Level: level, Out: cmd.ErrOrStderr()})
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't set up logging",
			"Check log.file and log.level in your config.")
	}
	closeLog()
	logCloser = closer
	return nil
}

func closeLog() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

func newClient(cfg *config.Config) (*api.Client, error) {
	zl := logger.Zerolog("api")
	client, err := api.NewClient(api.Options{
		BaseURL:   cfg.API.BaseURL,
		Token:     cfg.API.Token,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		UserAgent: "adminctl/" + version,
		Logger:    &zl,
	})
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't build the API client",
			"Check api.base_url in your config.")
	}
	return client, nil
}

// defaultClient returns the process-wide API client.
func defaultClient() (*api.Client, error) {
	client, err := api.Default()
	if err != nil {
		if errors.IsCode(err, errors.ErrConfig) {
			return nil, err
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"No API client configured",
			"Run 'adminctl config init' to create a config.")
	}
	return client, nil
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	closeLog()
	if err != nil {
		if machineMode {
			_ = WriteJSONFromError(os.Stdout, err)
		} else {
			fmt.Fprint(os.Stderr, renderError(err))
		}
		os.Exit(1)
	}
}

// renderError formats err for a terminal. Structured errors carry their own
// layout; anything else gets the failure symbol.
func renderError(err error) string {
	if _, ok := err.(*errors.Error); ok {
		return err.Error()
	}
	return fmt.Sprintf("%s %s\n", ui.SymbolFail, err)
}
