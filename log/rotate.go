package log

import (
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileWriter returns a size-capped rotating writer for path. The cap keeps
// long-running devices from filling /data with debug output.
func FileWriter(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5, // MB
		MaxBackups: 2,
	}
}
