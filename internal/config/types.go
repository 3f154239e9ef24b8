package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .adminctl.yaml configuration file.
type Config struct {
	Version   int             `yaml:"version" mapstructure:"version"`
	API       APIConfig       `yaml:"api" mapstructure:"api"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Lists     ListsConfig     `yaml:"lists" mapstructure:"lists"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
}

// APIConfig describes how to reach the admin REST API.
type APIConfig struct {
	// BaseURL is the prefix every endpoint path is joined to,
	// e.g. https://example.com/api/admin.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Token is sent as a bearer token. Prefer ADMINCTL_API_TOKEN over
	// writing it into a file.
	Token string `yaml:"token" mapstructure:"token"`

	// Timeout bounds a single HTTP request.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// RateLimit caps outgoing requests per second. 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// DashboardConfig controls the live metrics dashboard.
type DashboardConfig struct {
	// RefreshInterval is the auto-refresh period.
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`

	// EnableRealTime gates both the auto-refresh timer and focus refreshes.
	EnableRealTime bool `yaml:"enable_realtime" mapstructure:"enable_realtime"`

	// AutoRefresh gates the timer only.
	AutoRefresh bool `yaml:"auto_refresh" mapstructure:"auto_refresh"`

	// MaxRetries is how many times a failed fetch is retried before giving up.
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
}

// ListsConfig controls user and organization listings.
type ListsConfig struct {
	PageSize int `yaml:"page_size" mapstructure:"page_size"`
}

// LogConfig controls where logs go.
type LogConfig struct {
	// File is the log file path. Empty logs to stderr, except full-screen
	// commands which fall back to a file in the user cache dir.
	File string `yaml:"file" mapstructure:"file"`

	// Level is one of trace, debug, info, warn, error.
	Level string `yaml:"level" mapstructure:"level"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	Color string `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		API: APIConfig{
			BaseURL:   "http://localhost:8787/api/admin",
			Timeout:   30 * time.Second,
			RateLimit: 10,
		},
		Dashboard: DashboardConfig{
			RefreshInterval: 30 * time.Second,
			EnableRealTime:  true,
			AutoRefresh:     true,
			MaxRetries:      3,
		},
		Lists: ListsConfig{
			PageSize: 20,
		},
		Log: LogConfig{
			Level: "info",
		},
		Output: OutputConfig{
			Color: "auto",
		},
	}
}
