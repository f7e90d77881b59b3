// Package governor implements the control loop: sample load, classify
// trend and idleness, pick a target operating point, and write it through
// the driver adapter. The loop owns the authoritative state; watchers
// influence it only through config deltas.
package governor

import (
	"context"
	"fmt"
	"time"

	"github.com/seyud/gpugov/config"
	"github.com/seyud/gpugov/gpu"
	"github.com/seyud/gpugov/log"
)

// LoadSource is the sampler surface the loop consumes.
type LoadSource interface {
	// Load returns the GPU load in percent.
	Load() int
	// Precise reports whether delta counters back the readings; the loop
	// drops its inter-sample sleep when they do.
	Precise() bool
	// CurrentFreq returns the live hardware frequency, 0 when the node is
	// unavailable, or an error the loop escalates to fatal.
	CurrentFreq() (int64, error)
}

// Margin adjustments applied on top of the mode's base margin.
const (
	gamingMarginBonus = 5
	trendMarginStep   = 3
)

// Idle sleep durations. Non-precise sampling pays a longer idle sleep
// since each wakeup costs a full cascade read.
const (
	idleSleepPrecise    = 160 * time.Millisecond
	idleSleepNonPrecise = 200 * time.Millisecond
)

// Governor drives one GPU. It is not safe for concurrent use; the single
// control-loop goroutine owns it.
type Governor struct {
	state  *gpu.State
	source LoadSource
	deltas <-chan config.Delta

	prevLoad int

	// injectable for tests
	now   func() time.Time
	sleep func(time.Duration)
}

// New returns a governor over the given state, load source and delta
// channel.
func New(state *gpu.State, source LoadSource, deltas <-chan config.Delta) *Governor {
	return &Governor{
		state:  state,
		source: source,
		deltas: deltas,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Run executes ticks until the context is canceled or a tick fails.
// The only fatal tick failure is losing the hardware frequency read; the
// loop cannot reason about the controlled system without it.
func (g *Governor) Run(ctx context.Context) error {
	log.Info("Control loop started",
		"driver", g.state.Version,
		"precise", g.source.Precise(),
		"mode", g.state.Mode,
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := g.tick(); err != nil {
			return err
		}
	}
}

// tick runs one decision cycle.
func (g *Governor) tick() error {
	g.applyDeltas()

	if err := g.readHardwareFreq(); err != nil {
		return err
	}

	load := g.source.Load()
	trend := g.state.Trend.Push(load)

	if g.state.Idle.Update(load) {
		g.releaseIdle(load)
		return nil
	}

	margin := g.margin(trend)
	raw := rawTarget(g.state.CurFreq, load, margin)
	target := g.state.Snap(g.state.Table.Clamp(raw))

	if target != g.state.CurFreq {
		g.adjust(target, raw, load)
	}

	g.sleepSample(load)
	return nil
}

// applyDeltas drains the config channel without blocking. Several queued
// deltas collapse to the last one.
func (g *Governor) applyDeltas() {
	for {
		select {
		case d := <-g.deltas:
			g.apply(d)
		default:
			return
		}
	}
}

func (g *Governor) apply(d config.Delta) {
	wasGaming := g.state.Gaming

	g.state.Policy = d.Policy
	g.state.Gaming = d.Gaming
	if d.Mode != "" {
		g.state.Mode = d.Mode
	}
	if d.IdleThreshold > 0 {
		g.state.Idle.Threshold = d.IdleThreshold
	}

	if wasGaming && !d.Gaming {
		if err := g.state.DDR.Auto(); err != nil {
			log.Warn("DDR release failed", "cause", err)
		}
	}
	log.Info("Policy applied", "mode", g.state.Mode, "gaming", g.state.Gaming)
}

// readHardwareFreq refreshes the state from the kernel's own frequency
// report. The last write is never trusted: thermal throttling or another
// writer may have moved the clock.
func (g *Governor) readHardwareFreq() error {
	f, err := g.source.CurrentFreq()
	if err != nil {
		return fmt.Errorf("governor: hardware frequency read: %w", err)
	}
	if f > 0 && f != g.state.CurFreq {
		g.state.SetCurrent(f)
	}
	return nil
}

func (g *Governor) releaseIdle(load int) {
	if err := g.state.Driver.Release(); err != nil {
		log.Warn("Idle release failed", "cause", err)
	}
	d := idleSleepNonPrecise
	if g.source.Precise() {
		d = idleSleepPrecise
	}
	g.prevLoad = load
	g.sleep(d)
}

// margin is the headroom added to the load before computing the target:
// the mode's base, a gaming bonus, and a trend nudge.
func (g *Governor) margin(trend gpu.Trend) int64 {
	m := g.state.Policy.Margin
	if g.state.Gaming {
		m += gamingMarginBonus
	}
	switch trend {
	case gpu.TrendRising:
		m += trendMarginStep
	case gpu.TrendFalling:
		m -= trendMarginStep
	}
	return m
}

func rawTarget(cur int64, load int, margin int64) int64 {
	return cur * (int64(load) + margin) / 100
}

// adjust moves the GPU to target if the direction's debounce has elapsed.
// raw is the unclamped target; it decides the DCS fallback.
func (g *Governor) adjust(target, raw int64, load int) {
	up := target > g.state.CurFreq
	now := g.now()
	if now.Sub(g.state.LastAdjust) < g.state.Policy.Debounce(up) {
		log.Debug("Adjustment debounced",
			"target", target, "up", up, "since", now.Sub(g.state.LastAdjust),
		)
		return
	}

	volt := g.state.Table.VoltFor(target)
	g.state.NeedDCS = g.state.DCSEnabled && g.state.Version == gpu.V2 &&
		raw < g.state.Table.MinFreq() && g.state.CurIdx == 0

	var err error
	if g.state.NeedDCS {
		log.Debug("DCS fallback, releasing control", "raw", raw)
		err = g.state.Driver.Release()
	} else {
		err = g.state.Driver.Write(target, volt)
	}
	if err != nil {
		log.Warn("Frequency write failed", "freq", target, "cause", err)
		return
	}

	log.Debug("Frequency adjusted",
		"freq", target, "volt", volt, "load", load, "up", up,
	)
	g.state.CurFreq = target
	g.state.CurIdx = g.state.Table.IndexOf(target)
	g.state.CurVolt = volt

	if g.state.Gaming {
		if err := g.state.DDR.Set(g.state.Table.DDROppFor(target)); err != nil {
			log.Warn("DDR OPP write failed", "cause", err)
		}
	}

	g.state.Idle.Reset()
	g.state.LastAdjust = now
}

// sleepSample pauses until the next sample. Precise counters need no
// pacing; otherwise the adaptive interval follows the load swing.
func (g *Governor) sleepSample(load int) {
	swing := load - g.prevLoad
	g.prevLoad = load
	if g.source.Precise() {
		return
	}
	g.sleep(g.state.Policy.SampleInterval(swing))
}
