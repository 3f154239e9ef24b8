package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureGlobal swaps the global zerolog logger for one writing to a buffer.
func captureGlobal(t *testing.T, level zerolog.Level) *bytes.Buffer {
	t.Helper()
	original := log.Logger
	t.Cleanup(func() { log.Logger = original })

	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf).Level(level)
	return &buf
}

func TestZeroLogger_Levels(t *testing.T) {
	tests := []struct {
		name      string
		level     zerolog.Level
		logFn     func(Logger)
		expectLog bool
		contains  []string
	}{
		{
			name:      "debug suppressed at info",
			level:     zerolog.InfoLevel,
			logFn:     func(l Logger) { l.Debug("hidden %s", "msg") },
			expectLog: false,
		},
		{
			name:      "debug shown at debug",
			level:     zerolog.DebugLevel,
			logFn:     func(l Logger) { l.Debug("visible %s", "msg") },
			expectLog: true,
			contains:  []string{`"level":"debug"`, "visible msg"},
		},
		{
			name:      "info",
			level:     zerolog.InfoLevel,
			logFn:     func(l Logger) { l.Info("info message %d", 42) },
			expectLog: true,
			contains:  []string{`"level":"info"`, "info message 42"},
		},
		{
			name:      "warn",
			level:     zerolog.InfoLevel,
			logFn:     func(l Logger) { l.Warn("warning message") },
			expectLog: true,
			contains:  []string{`"level":"warn"`},
		},
		{
			name:      "error",
			level:     zerolog.InfoLevel,
			logFn:     func(l Logger) { l.Error("error message") },
			expectLog: true,
			contains:  []string{`"level":"error"`, "error message"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureGlobal(t, tt.level)

			tt.logFn(New("test"))

			if !tt.expectLog {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), `"component":"test"`)
			for _, part := range tt.contains {
				assert.Contains(t, buf.String(), part)
			}
		})
	}
}

func TestZeroLogger_FollowsLaterSetup(t *testing.T) {
	l := New("late")
	buf := captureGlobal(t, zerolog.InfoLevel)

	l.Info("after swap")

	assert.Contains(t, buf.String(), "after swap")
}

func TestSetup_File(t *testing.T) {
	original := log.Logger
	defer func() { log.Logger = original }()

	path := filepath.Join(t.TempDir(), "nested", "adminctl.log")
	closer, err := Setup(Options{File: path, Level: "debug"})
	require.NoError(t, err)

	New("file").Debug("written to %s", "disk")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to disk")
	assert.Contains(t, string(data), `"component":"file"`)
}

func TestSetup_Console(t *testing.T) {
	original := log.Logger
	defer func() { log.Logger = original }()

	var buf bytes.Buffer
	closer, err := Setup(Options{Out: &buf})
	require.NoError(t, err)
	defer closer.Close()

	New("console").Info("hello")
	assert.Contains(t, buf.String(), "hello")
}

func TestSetup_InvalidLevel(t *testing.T) {
	_, err := Setup(Options{Level: "chatty"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chatty")
}

func TestSetup_DebugEnv(t *testing.T) {
	original := log.Logger
	defer func() { log.Logger = original }()
	t.Setenv(DebugEnv, "1")

	var buf bytes.Buffer
	_, err := Setup(Options{Out: &buf, Level: "error"})
	require.NoError(t, err)

	New("env").Debug("debug forced")
	assert.Contains(t, buf.String(), "debug forced")
}

func TestNoopLogger(t *testing.T) {
	buf := captureGlobal(t, zerolog.DebugLevel)

	l := Noop()
	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	assert.Empty(t, buf.String(), "noop logger should not produce any output")
}

func TestBufferLogger(t *testing.T) {
	l := NewBufferLogger()

	l.Debug("debug %s", "msg")
	l.Info("info %s", "msg")
	l.Warn("warn %s", "msg")
	l.Error("error %s", "msg")

	msgs := l.Snapshot()
	require.Len(t, msgs, 4)
	assert.Equal(t, LogMessage{Level: "debug", Message: "debug msg"}, msgs[0])
	assert.Equal(t, LogMessage{Level: "info", Message: "info msg"}, msgs[1])
	assert.Equal(t, LogMessage{Level: "warn", Message: "warn msg"}, msgs[2])
	assert.Equal(t, LogMessage{Level: "error", Message: "error msg"}, msgs[3])
}

func TestBufferLogger_HasLevel(t *testing.T) {
	l := NewBufferLogger()

	assert.False(t, l.HasLevel("debug"))

	l.Debug("test")
	assert.True(t, l.HasLevel("debug"))
	assert.False(t, l.HasLevel("error"))

	l.Error("test")
	assert.True(t, l.HasLevel("error"))

	l.Clear()
	assert.Empty(t, l.Snapshot())
}

func TestDefaultLogFile(t *testing.T) {
	path := DefaultLogFile()
	assert.Equal(t, "adminctl.log", filepath.Base(path))
	assert.Equal(t, "adminctl", filepath.Base(filepath.Dir(path)))
}
