package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/adminctl/internal/config"
	"github.com/rileyhilliard/adminctl/internal/errors"
)

var (
	configInitForce   bool
	configInitGlobal  bool
	configInitBaseURL string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create, inspect and edit the config file",
	Long: `Create, inspect and edit the adminctl config file.

Config is read from --config, then .adminctl.yaml in this or a parent
directory, then ~/.config/adminctl/config.yaml. Any key can be overridden
with an ADMINCTL_ environment variable, e.g. ADMINCTL_API_TOKEN.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a commented default config file.

Examples:
  adminctl config init
  adminctl config init --base-url https://admin.example.com/api/admin
  adminctl config init --global`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationSkipConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configInitPath()
		if err != nil {
			return err
		}
		if err := config.WriteDefault(path, configInitBaseURL, configInitForce); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Couldn't write "+path,
				"Use --force to overwrite an existing file.")
		}
		if machineMode {
			return WriteJSONSuccess(cmd.OutOrStdout(), map[string]string{"path": path})
		}
		printSuccess(cmd.OutOrStdout(), "Wrote "+path)
		return nil
	},
}

func configInitPath() (string, error) {
	switch {
	case cfgFile != "":
		return config.ExpandTilde(cfgFile), nil
	case configInitGlobal:
		if p := config.GlobalConfigPath(); p != "" {
			return p, nil
		}
		return "", errors.New(errors.ErrConfig,
			"Can't find your home directory",
			"Pass an explicit path with --config.")
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory", "")
	}
	return filepath.Join(cwd, config.ConfigFileName), nil
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one config value",
	Long: `Set a dotted key in the config file, keeping its comments.

Examples:
  adminctl config set dashboard.refresh_interval 10s
  adminctl config set api.base_url https://admin.example.com/api/admin`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if appConfigPath == "" {
			return errors.New(errors.ErrConfig,
				"Config file not found",
				"Run 'adminctl config init' first.")
		}
		key, value := args[0], args[1]
		if err := config.SetValue(appConfigPath, key, value); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Couldn't set %s", key), "")
		}
		cfg, err := config.Load(appConfigPath)
		if err != nil {
			return err
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Set %s = %s in %s", key, value, appConfigPath))
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective config",
	Long: `Print the config after defaults and environment overrides are applied.
The API token is masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *appConfig
		cfg.API.Token = maskToken(cfg.API.Token)
		if machineMode {
			return WriteJSONSuccess(cmd.OutOrStdout(), map[string]any{"path": appConfigPath, "config": cfg})
		}
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, "Couldn't encode config", "")
		}
		if appConfigPath != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", appConfigPath)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "# defaults (no config file found)")
		}
		fmt.Fprint(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if machineMode {
			return WriteJSONSuccess(cmd.OutOrStdout(), map[string]string{"path": appConfigPath})
		}
		if appConfigPath == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "(none, using defaults)")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), appConfigPath)
		return nil
	},
}

// maskToken keeps the last four characters of long tokens.
func maskToken(token string) string {
	switch {
	case token == "":
		return ""
	case len(token) <= 8:
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configSetCmd, configShowCmd, configPathCmd)
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")
	configInitCmd.Flags().BoolVar(&configInitGlobal, "global", false, "write ~/.config/adminctl/config.yaml")
	configInitCmd.Flags().StringVar(&configInitBaseURL, "base-url", "", "admin API base URL")
}
