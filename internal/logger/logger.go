// Package logger provides a simple logging interface for adminctl components.
// It allows packages to log debug, info, warn, and error messages without
// being coupled to a specific logging implementation. The default backend
// is zerolog, optionally writing to a rotating file.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DebugEnv forces debug level logging when set to any non-empty value.
const DebugEnv = "ADMINCTL_DEBUG"

const (
	logMaxSizeMB   = 5
	logMaxAgeDays  = 14
	logMaxBackups  = 3
	defaultLogFile = "adminctl.log"
)

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Options controls where and how verbosely logs are written.
type Options struct {
	// File is the log file path. Empty means Out (stderr by default).
	File string
	// Level is a zerolog level name ("debug", "info", ...). Empty means info.
	Level string
	// Out overrides the console writer target when File is empty.
	Out io.Writer
}

// Setup configures the global zerolog logger. The returned closer flushes the
// log file, if any, and is safe to call when no file was opened.
func Setup(opts Options) (io.Closer, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return nopCloser{}, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	if os.Getenv(DebugEnv) != "" {
		level = zerolog.DebugLevel
	}

	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return closer, fmt.Errorf("create log directory: %w", err)
		}
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    logMaxSizeMB,
			MaxAge:     logMaxAgeDays,
			MaxBackups: logMaxBackups,
		}
		out = rotating
		closer = rotating
	} else {
		target := opts.Out
		if target == nil {
			target = os.Stderr
		}
		out = zerolog.ConsoleWriter{Out: target, TimeFormat: time.Stamp}
	}

	log.Logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return closer, nil
}

// DefaultLogFile returns the log path used by full-screen commands when no
// file is configured, so log output never lands on the alt-screen.
func DefaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "adminctl", defaultLogFile)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// zeroLogger implements Logger on top of the global zerolog logger.
// The global is resolved on every call so loggers created before Setup
// still follow its configuration.
type zeroLogger struct {
	component string
}

// New creates a logger that tags every message with the given component
// (e.g., "hook" or "api").
func New(component string) Logger {
	return &zeroLogger{component: component}
}

// Zerolog returns the underlying zerolog logger for a component, for code
// that needs structured fields or zerolog middleware.
func Zerolog(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}

func (l *zeroLogger) emit(level zerolog.Level, format string, args []interface{}) {
	ev := log.Logger.WithLevel(level)
	if ev == nil {
		return
	}
	if l.component != "" {
		ev = ev.Str("component", l.component)
	}
	ev.Msgf(format, args...)
}

func (l *zeroLogger) Debug(format string, args ...interface{}) {
	l.emit(zerolog.DebugLevel, format, args)
}

func (l *zeroLogger) Info(format string, args ...interface{}) {
	l.emit(zerolog.InfoLevel, format, args)
}

func (l *zeroLogger) Warn(format string, args ...interface{}) {
	l.emit(zerolog.WarnLevel, format, args)
}

func (l *zeroLogger) Error(format string, args ...interface{}) {
	l.emit(zerolog.ErrorLevel, format, args)
}

// noopLogger implements Logger but discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing.
// Safe for use from multiple goroutines.
type BufferLogger struct {
	mu       sync.Mutex
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) add(level, format string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, LogMessage{Level: level, Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Debug(format string, args ...interface{}) { l.add("debug", format, args) }
func (l *BufferLogger) Info(format string, args ...interface{})  { l.add("info", format, args) }
func (l *BufferLogger) Warn(format string, args ...interface{})  { l.add("warn", format, args) }
func (l *BufferLogger) Error(format string, args ...interface{}) { l.add("error", format, args) }

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Snapshot returns a copy of the captured messages.
func (l *BufferLogger) Snapshot() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogMessage, len(l.Messages))
	copy(out, l.Messages)
	return out
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = l.Messages[:0]
}
