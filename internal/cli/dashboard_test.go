package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/adminctl/internal/config"
)

func TestDashboardOptions(t *testing.T) {
	t.Cleanup(func() { dashboardNoRealTime, dashboardNoAutoRefresh = false, false })
	cfg := config.DefaultConfig().Dashboard

	opts := dashboardOptions(cfg, 0)
	assert.Equal(t, 30*time.Second, opts.RefreshInterval)
	assert.True(t, *opts.EnableRealTime)
	assert.True(t, *opts.AutoRefresh)
	assert.Equal(t, 3, *opts.MaxRetries)

	opts = dashboardOptions(cfg, 5*time.Second)
	assert.Equal(t, 5*time.Second, opts.RefreshInterval, "flag overrides config")

	dashboardNoAutoRefresh = true
	opts = dashboardOptions(cfg, 0)
	assert.True(t, *opts.EnableRealTime)
	assert.False(t, *opts.AutoRefresh)

	dashboardNoRealTime = true
	cfg.MaxRetries = 0
	opts = dashboardOptions(cfg, 0)
	assert.False(t, *opts.EnableRealTime)
	assert.Equal(t, 0, *opts.MaxRetries, "zero disables retry")
}

func TestDashboardTitle(t *testing.T) {
	assert.Equal(t, "adminctl | admin.example.com", dashboardTitle("https://admin.example.com/api/admin"))
	assert.Equal(t, "adminctl", dashboardTitle("::bad"))
}

func TestDashboard_RejectsJSONAndBadInterval(t *testing.T) {
	cfg := seededStub(t)

	res := execute(t, "--config", cfg, "--json", "dashboard")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "metrics --json")

	res = execute(t, "--config", cfg, "dashboard", "--interval", "10ms")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "too short")
}
