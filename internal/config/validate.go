package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/rileyhilliard/adminctl/internal/errors"
	"github.com/rs/zerolog"
)

const (
	// MinRefreshInterval keeps the dashboard from hammering the API.
	MinRefreshInterval = time.Second
	// MaxPageSize mirrors the API's own limit cap.
	MaxPageSize = 100
	// MaxRetries bounds dashboard retries; 2^10s is already well past useful.
	MaxRetries = 10
)

// validColors are the accepted output.color values.
var validColors = map[string]bool{
	"auto":   true,
	"always": true,
	"never":  true,
}

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but adminctl only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade adminctl to the latest release")
	}

	if err := validateAPI(cfg.API); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'api' section in your .adminctl.yaml.")
	}

	if err := validateDashboard(cfg.Dashboard); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'dashboard' section in your .adminctl.yaml.")
	}

	if cfg.Lists.PageSize < 1 || cfg.Lists.PageSize > MaxPageSize {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("lists.page_size must be between 1 and %d, got %d", MaxPageSize, cfg.Lists.PageSize),
			"Pick a page size like 20 or 50.")
	}

	if cfg.Log.Level != "" {
		if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Unknown log.level %q", cfg.Log.Level),
				"Use one of: trace, debug, info, warn, error.")
		}
	}

	if !validColors[cfg.Output.Color] {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown output.color %q", cfg.Output.Color),
			"Use one of: auto, always, never.")
	}

	return nil
}

func validateAPI(api APIConfig) error {
	if api.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	parsed, err := url.Parse(api.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url is not a valid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api.base_url must use http or https, got %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("api.base_url is missing a host")
	}
	if api.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}
	if api.RateLimit < 0 {
		return fmt.Errorf("api.rate_limit cannot be negative")
	}
	return nil
}

func validateDashboard(d DashboardConfig) error {
	if d.RefreshInterval < MinRefreshInterval {
		return fmt.Errorf("dashboard.refresh_interval must be at least %s, got %s", MinRefreshInterval, d.RefreshInterval)
	}
	if d.MaxRetries < 0 || d.MaxRetries > MaxRetries {
		return fmt.Errorf("dashboard.max_retries must be between 0 and %d, got %d", MaxRetries, d.MaxRetries)
	}
	return nil
}
