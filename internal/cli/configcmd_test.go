package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/adminctl/internal/config"
)

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "adminctl.yaml")

	res := execute(t, "--config", path, "config", "init", "--base-url", "https://admin.example.com/api/admin")
	require.NoError(t, res.err)
	assert.Equal(t, "✓ Wrote "+path+"\n", res.stdout)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://admin.example.com/api/admin", cfg.API.BaseURL)
	require.NoError(t, config.Validate(cfg))

	res = execute(t, "--config", path, "config", "init")
	require.Error(t, res.err, "refuses to overwrite")
	assert.Contains(t, res.err.Error(), "--force")

	res = execute(t, "--config", path, "config", "init", "--force")
	require.NoError(t, res.err)
}

func TestConfigSetAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".adminctl.yaml")
	require.NoError(t, config.WriteDefault(path, "", false))

	res := execute(t, "--config", path, "config", "set", "dashboard.refresh_interval", "10s")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "Set dashboard.refresh_interval = 10s")

	res = execute(t, "--config", path, "config", "set", "api.token", "tok_abcdefgh1234")
	require.NoError(t, res.err)

	res = execute(t, "--config", path, "config", "show")
	require.NoError(t, res.err)
	assert.True(t, strings.HasPrefix(res.stdout, "# "+path+"\n"))
	assert.Contains(t, res.stdout, "refresh_interval: 10s")
	assert.Contains(t, res.stdout, "************1234")
	assert.NotContains(t, res.stdout, "tok_abcdefgh1234")
}

func TestConfigSet_RejectsInvalidValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".adminctl.yaml")
	require.NoError(t, config.WriteDefault(path, "", false))

	res := execute(t, "--config", path, "config", "set", "dashboard.refresh_interval", "10ms")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "refresh_interval must be at least")
}

func TestConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".adminctl.yaml")
	require.NoError(t, config.WriteDefault(path, "", false))

	res := execute(t, "--config", path, "config", "path")
	require.NoError(t, res.err)
	assert.Equal(t, path+"\n", res.stdout)

	res = execute(t, "--config", path, "--json", "config", "path")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, `"path": "`+path+`"`)
}

func TestConfigSet_NoFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	res := execute(t, "config", "set", "lists.page_size", "50")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "config init")
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", maskToken(""))
	assert.Equal(t, "*****", maskToken("short"))
	assert.Equal(t, "*****6789", maskToken("123456789"))
}
