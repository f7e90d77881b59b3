package log

import "testing"

func TestLevelUnmarshalText(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"Warn", LevelWarn},
		{"error", LevelError},
		{"disabled", LevelDisabled},
	}
	for _, tt := range tests {
		var l Level
		if err := l.UnmarshalText([]byte(tt.in)); err != nil {
			t.Errorf("UnmarshalText(%q): %v", tt.in, err)
			continue
		}
		if l != tt.want {
			t.Errorf("UnmarshalText(%q): want %v, got %v", tt.in, tt.want, l)
		}
	}
}

func TestLevelString(t *testing.T) {
	if want, got := "WARN", LevelWarn.String(); got != want {
		t.Errorf("String: want %q, got %q", want, got)
	}
	if want, got := "DISABLED", LevelDisabled.String(); got != want {
		t.Errorf("String: want %q, got %q", want, got)
	}
}

func TestSetLogLevel(t *testing.T) {
	defer SetLogLevel(LevelInfo)

	SetLogLevel(LevelDebug)
	if want, got := LevelDebug, LogLevel(); got != want {
		t.Errorf("LogLevel: want %v, got %v", want, got)
	}
}
