package gpu

import (
	"slices"
	"time"

	"github.com/seyud/gpugov/log"
)

// State aggregates everything the control loop needs to make a decision.
// It is never shared between goroutines: each watcher works on its own
// Clone and influences the loop only through config deltas and the
// filesystem.
type State struct {
	Table  *Table
	Policy Policy
	Driver *Driver
	DDR    *DDR
	Idle   *IdleDetector
	Trend  *TrendAnalyzer

	Version     Version
	V2Supported []int64
	DCSEnabled  bool
	NeedDCS     bool

	Gaming  bool
	Precise bool
	Mode    string

	CurFreq    int64
	CurIdx     int
	CurVolt    int64
	LastAdjust time.Time
}

// NewState builds the initial governor state for the detected driver.
func NewState(table *Table, version Version, dcsEnabled bool) *State {
	s := &State{
		Table:      table,
		Driver:     NewDriver(version),
		DDR:        NewDDR(version == V2),
		Idle:       NewIdleDetector(),
		Trend:      &TrendAnalyzer{},
		Version:    version,
		DCSEnabled: dcsEnabled,
		Mode:       "balance",
	}
	s.CurFreq = table.MaxFreq()
	s.CurIdx = table.IndexOf(s.CurFreq)
	s.CurVolt = table.VoltFor(s.CurFreq)
	return s
}

// Clone deep-copies the state so a watcher can mutate its own view without
// racing the control loop.
func (s *State) Clone() *State {
	c := *s
	c.Driver = s.Driver.clone()
	c.DDR = s.DDR.clone()
	c.Idle = s.Idle.clone()
	c.Trend = s.Trend.clone()
	c.V2Supported = slices.Clone(s.V2Supported)
	return &c
}

// Snap maps a clamped raw target onto a programmable frequency: nearest
// table entry first, then on v2 hardware the nearest kernel-supported
// value. Equidistant candidates resolve to the lower frequency at both
// stages.
func (s *State) Snap(freq int64) int64 {
	snapped := s.Table.Nearest(freq)
	if s.Version == V2 && len(s.V2Supported) > 0 {
		snapped = NearestIn(s.V2Supported, snapped)
	}
	return snapped
}

// SetCurrent records the hardware frequency reported by the kernel and
// derives the table index and voltage from it.
func (s *State) SetCurrent(freq int64) {
	s.CurFreq = freq
	s.CurIdx = s.Table.IndexOf(freq)
	s.CurVolt = s.Table.VoltFor(freq)
}

// WarnUnsupported logs config table entries outside the kernel-reported
// supported set. They stay in the table: the config file is trusted over
// the kernel.
func (s *State) WarnUnsupported() {
	if s.Version != V2 || len(s.V2Supported) == 0 {
		return
	}
	for _, f := range s.Table.Freqs() {
		if !slices.Contains(s.V2Supported, f) {
			log.Warn("Config frequency not in kernel supported set, keeping it",
				"freq", f,
			)
		}
	}
}
