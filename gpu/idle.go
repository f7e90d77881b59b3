package gpu

// IdleDetector tracks whether the GPU has gone quiet. Entry and exit are
// deliberately asymmetric: idle is declared only after Window consecutive
// samples at or below Threshold, but a single sample at or above Recovery
// clears it immediately. The gap prevents idle/active thrashing around
// the threshold.
type IdleDetector struct {
	// Threshold is the load at or below which a sample counts toward
	// idle.
	Threshold int
	// Recovery is the load at or above which one sample clears idle.
	Recovery int
	// Window is the number of consecutive low samples required to
	// declare idle.
	Window int

	count int
	idle  bool
}

// Defaults for the detector. The threshold itself is configurable from
// the policy file's global section.
const (
	DefaultIdleThreshold = 5
	DefaultIdleRecovery  = 50
	DefaultIdleWindow    = 5
)

// NewIdleDetector returns a detector with the default thresholds.
func NewIdleDetector() *IdleDetector {
	return &IdleDetector{
		Threshold: DefaultIdleThreshold,
		Recovery:  DefaultIdleRecovery,
		Window:    DefaultIdleWindow,
	}
}

// Update feeds one load sample and returns the resulting idle state.
func (d *IdleDetector) Update(load int) bool {
	if load <= d.Threshold {
		d.count++
		if d.count >= d.Window {
			d.idle = true
		}
		return d.idle
	}

	d.count = 0
	if load >= d.Recovery {
		d.idle = false
	}
	return d.idle
}

// Idle reports the current idle state.
func (d *IdleDetector) Idle() bool { return d.idle }

// Reset clears the consecutive-sample counter after a frequency
// adjustment.
func (d *IdleDetector) Reset() { d.count = 0 }

func (d *IdleDetector) clone() *IdleDetector {
	c := *d
	return &c
}
