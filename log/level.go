package log

import (
	"bytes"
	"log/slog"
)

// A Level is the importance or severity of a log event.
// The higher the level, the more important or severe the event.
type Level slog.Level

// Names for common levels.
const (
	LevelDebug    = Level(slog.LevelDebug)
	LevelInfo     = Level(slog.LevelInfo)
	LevelWarn     = Level(slog.LevelWarn)
	LevelError    = Level(slog.LevelError)
	LevelDisabled = Level(1<<31 - 1)
)

// String returns a name for the level.
func (l Level) String() string {
	if l >= LevelDisabled {
		return "DISABLED"
	}

	return slog.Level(l).String()
}

// AppendText implements [encoding.TextAppender] by calling [Level.String].
func (l Level) AppendText(b []byte) ([]byte, error) {
	return append(b, l.String()...), nil
}

// MarshalText implements [encoding.TextMarshaler] by calling [Level.AppendText].
func (l Level) MarshalText() ([]byte, error) {
	return l.AppendText(nil)
}

// UnmarshalText implements [encoding.TextUnmarshaler].
// It accepts any string produced by [Level.MarshalText], ignoring case.
// It also accepts numeric offsets that would result in a different string on
// output. For example, "Error-8" would unmarshal as "INFO".
func (l *Level) UnmarshalText(data []byte) (err error) {
	switch string(bytes.ToLower(data)) {
	case "disable", "disabled", "false":
		*l = LevelDisabled
	default:
		err = (*slog.Level)(l).UnmarshalText(data)
	}

	return
}

// Level returns the receiver. It implements [slog.Leveler].
func (l Level) Level() Level { return l }

// LevelFlag implements the interfaces needed to be used as a command-line flag.
type LevelFlag Level

func (lf *LevelFlag) String() string {
	return (Level)(*lf).String()
}

func (lf *LevelFlag) Set(s string) error {
	return lf.UnmarshalText([]byte(s))
}

func (lf *LevelFlag) Get() any {
	return (Level)(*lf)
}

func (lf *LevelFlag) Type() string {
	return "level"
}

func (lf *LevelFlag) UnmarshalText(b []byte) error {
	return (*Level)(lf).UnmarshalText(b)
}
