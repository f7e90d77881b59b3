package gpu

import (
	"time"
)

// Policy is the governor's tunable bundle. It is always swapped as a unit
// (mode changes and the gaming toggle replace the whole value) so the
// control loop never observes a half-applied mix of two modes.
type Policy struct {
	// Margin is the headroom in percentage points added to the observed
	// load before computing the target frequency.
	Margin int64

	// UpDebounce and DownDebounce are the minimum elapsed times between
	// two frequency changes in the respective direction.
	UpDebounce   time.Duration
	DownDebounce time.Duration

	// AggressiveDown bypasses the down debounce so the frequency drops
	// as soon as the load does.
	AggressiveDown bool

	// Interval is the inter-sample sleep when adaptive sampling is off.
	Interval time.Duration

	// Adaptive scales the inter-sample sleep inversely with the load
	// swing between consecutive samples, bounded by MinInterval and
	// MaxInterval.
	Adaptive    bool
	MinInterval time.Duration
	MaxInterval time.Duration

	// Gaming marks the bundle applied while a configured game is in the
	// foreground.
	Gaming bool
}

// maxSwing is the load delta (percentage points) at which adaptive
// sampling reaches MinInterval.
const maxSwing = 50

// SampleInterval returns the inter-sample sleep for a load change of
// swing percentage points since the previous sample. With adaptive
// sampling disabled the interval is pinned to Interval. Gaming mode
// halves the result so bursts are caught within a frame or two.
func (p Policy) SampleInterval(swing int) time.Duration {
	iv := p.Interval
	if p.Adaptive {
		if swing < 0 {
			swing = -swing
		}
		if swing > maxSwing {
			swing = maxSwing
		}
		span := p.MaxInterval - p.MinInterval
		iv = p.MaxInterval - span*time.Duration(swing)/maxSwing
		if iv < p.MinInterval {
			iv = p.MinInterval
		}
		if iv > p.MaxInterval {
			iv = p.MaxInterval
		}
	}
	if p.Gaming {
		iv /= 2
	}
	return iv
}

// Debounce returns the minimum time between adjustments in the given
// direction. AggressiveDown removes the down-direction debounce.
func (p Policy) Debounce(up bool) time.Duration {
	if up {
		return p.UpDebounce
	}
	if p.AggressiveDown {
		return 0
	}
	return p.DownDebounce
}
