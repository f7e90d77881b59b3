// Package log is a leveled front-end over [log/slog] with a runtime
// adjustable level, so the log-level marker file can switch verbosity
// without restarting the governor.
package log

import (
	"io"
	"log/slog"
	"os"
)

var level slog.LevelVar

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &level}))

// SetHandler sets the package logger's handler to the one given.
func SetHandler(h slog.Handler) {
	logger = slog.New(h)
}

// SetTextHandler directs text formatted output to w.
func SetTextHandler(w io.Writer) {
	SetHandler(slog.NewTextHandler(w, &slog.HandlerOptions{Level: &level}))
}

// SetJSONHandler directs JSON formatted output to w.
func SetJSONHandler(w io.Writer) {
	SetHandler(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: &level}))
}

// SetLogLevel sets the minimum level logged.
func SetLogLevel(l Level) {
	level.Set(slog.Level(l))
}

// LogLevel returns the current minimum logged level.
func LogLevel() Level {
	return Level(level.Level())
}

// Debug logs at [LevelDebug].
func Debug(msg string, args ...any) {
	logger.Debug(msg, args...)
}

// Info logs at [LevelInfo].
func Info(msg string, args ...any) {
	logger.Info(msg, args...)
}

// Warn logs at [LevelWarn].
func Warn(msg string, args ...any) {
	logger.Warn(msg, args...)
}

// Error logs at [LevelError] with err attached as the "cause" attribute.
func Error(msg string, err error, args ...any) {
	if err != nil {
		args = append([]any{"cause", err}, args...)
	}
	logger.Error(msg, args...)
}
