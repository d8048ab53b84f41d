// Package logger wraps log/slog for the ggufy command line. Diagnostics go
// to stderr so that stdout stays reserved for command output such as the
// resolved artifact path.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Fields is a set of key/value pairs attached to a log record.
type Fields map[string]any

var (
	mu     sync.Mutex
	output io.Writer = os.Stderr
	logger *slog.Logger
)

// SetOutput redirects log output. Passing nil restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	output = w
	logger = nil
}

// ParseLevel maps a level name to a slog level. Unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a text logger writing to w at the given level.
func New(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// InitLogger (re)initializes the global logger.
func InitLogger(level string) {
	mu.Lock()
	defer mu.Unlock()
	logger = New(output, level)
}

// GetLogger returns the global logger, initializing it at info level.
func GetLogger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if logger == nil {
		logger = New(output, "info")
	}
	return logger
}

// Info logs an info message.
func Info(msg string, fields ...Fields) {
	GetLogger().Info(msg, mergeFields(fields...)...)
}

// Infof logs a formatted info message.
func Infof(format string, args ...any) {
	GetLogger().Info(fmt.Sprintf(format, args...))
}

// Debug logs a debug message.
func Debug(msg string, fields ...Fields) {
	GetLogger().Debug(msg, mergeFields(fields...)...)
}

// DebugfWithFields logs a formatted debug message with fields.
func DebugfWithFields(fields Fields, format string, args ...any) {
	GetLogger().Debug(fmt.Sprintf(format, args...), mergeFields(fields)...)
}

// Warn logs a warning message.
func Warn(msg string, fields ...Fields) {
	GetLogger().Warn(msg, mergeFields(fields...)...)
}

// Error logs an error message.
func Error(msg string, fields ...Fields) {
	GetLogger().Error(msg, mergeFields(fields...)...)
}

// Success logs an info message tagged status=success.
func Success(msg string, fields ...Fields) {
	attrs := append(mergeFields(fields...), "status", "success")
	GetLogger().Info(msg, attrs...)
}

func mergeFields(fields ...Fields) []any {
	merged := Fields{}
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	result := make([]any, 0, len(merged)*2)
	for k, v := range merged {
		result = append(result, k, v)
	}
	return result
}
