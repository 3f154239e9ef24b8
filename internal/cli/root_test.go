package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/adminctl/internal/api"
	"github.com/rileyhilliard/adminctl/internal/errors"
	"github.com/rileyhilliard/adminctl/internal/logger"
)

// resetCommandState puts every flag back to its default so commands can be
// executed more than once per process.
func resetCommandState(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetCommandState(sub)
	}
}

type result struct {
	stdout string
	stderr string
	err    error
}

// execute runs adminctl with args and captures its output.
func execute(t *testing.T, args ...string) result {
	t.Helper()
	resetCommandState(rootCmd)
	appConfig, appConfigPath = nil, ""
	api.ResetDefault()

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	closeLog()
	_, _ = logger.Setup(logger.Options{Out: io.Discard})
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// stubAPI starts a seeded stub API and writes a config pointing at it.
// It returns the config path.
func stubAPI(t *testing.T, opts StubOptions) string {
	t.Helper()
	// Full-screen commands log to the user cache dir.
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	_, _ = logger.Setup(logger.Options{Out: io.Discard})
	if opts.Seed == 0 {
		opts.Seed = 1
	}
	ts := httptest.NewServer(StubHandler(opts))
	t.Cleanup(ts.Close)
	return writeConfig(t, ts.URL+stubBasePath, opts.Token)
}

func writeConfig(t *testing.T, baseURL, token string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".adminctl.yaml")
	content := fmt.Sprintf(`version: 1
api:
  base_url: %s
  token: %q
  timeout: 5s
  rate_limit: 0
lists:
  page_size: 20
log:
  level: info
output:
  color: never
`, baseURL, token)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRoot_HelpListsCommands(t *testing.T) {
	res := execute(t, "--help")
	require.NoError(t, res.err)
	for _, name := range []string{"dashboard", "metrics", "users", "orgs", "config", "stub-server", "version", "completion"} {
		assert.Contains(t, res.stdout, name)
	}
}

func TestRoot_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  base_url: ftp://nope\n"), 0o600))

	res := execute(t, "--config", path, "metrics")
	require.Error(t, res.err)
	assert.True(t, errors.IsCode(res.err, errors.ErrConfig))
	assert.Contains(t, res.err.Error(), "http or https")
}

func TestRoot_MissingExplicitConfig(t *testing.T) {
	res := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "users", "list")
	require.Error(t, res.err)
	assert.Equal(t, ErrCodeConfigNotFound, ErrorToJSON(res.err).Code)
}

func TestRoot_SkipConfigCommandsIgnoreBadConfig(t *testing.T) {
	res := execute(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "version", "--short")
	require.NoError(t, res.err)
	assert.Equal(t, version+"\n", res.stdout)
}

func TestRenderError(t *testing.T) {
	structured := errors.New(errors.ErrInput, "Bad input", "Try again.")
	assert.Equal(t, structured.Error(), renderError(structured))
	assert.Equal(t, "✗ plain failure\n", renderError(fmt.Errorf("plain failure")))
}
