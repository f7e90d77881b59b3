package watcher

import (
	"context"

	"github.com/seyud/gpugov/internal/file"
	"github.com/seyud/gpugov/internal/paths"
	"github.com/seyud/gpugov/log"
)

// LogLevel hot-switches the log level from the log-level marker file.
// Unrecognized content falls back to info.
type LogLevel struct{}

// NewLogLevel returns a log-level marker watcher.
func NewLogLevel() *LogLevel { return &LogLevel{} }

// Run applies the marker's current value once, then blocks until ctx is
// canceled reapplying it on every change.
func (l *LogLevel) Run(ctx context.Context) error {
	if file.Exists(paths.LogLevel) {
		l.reload()
	}
	return watchFile(ctx, paths.LogLevel, l.reload)
}

func (l *LogLevel) reload() {
	s, err := file.ReadString(paths.LogLevel)
	if err != nil {
		log.Warn("Log level marker unreadable", "cause", err)
		return
	}

	var lvl log.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		log.Warn("Unknown log level, using info", "level", s)
		lvl = log.LevelInfo
	}
	log.SetLogLevel(lvl)
	log.Info("Log level set", "level", lvl)
}
