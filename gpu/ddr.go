package gpu

import (
	"errors"
	"strconv"

	"github.com/seyud/gpugov/internal/file"
	"github.com/seyud/gpugov/internal/paths"
	"github.com/seyud/gpugov/log"
)

// DDR OPP tiers. Index 0 is the highest frequency and voltage, 4 the
// lowest of the five canonical tiers.
const (
	DDROppHighest int64 = 0
	DDROppLowest  int64 = 4
)

// Auto sentinels written to the DVFSRC force node to release the DDR
// frequency back to the platform. The value the node expects differs by
// driver generation.
const (
	DDRAutoV1 int64 = -1
	DDRAutoV2 int64 = 999
)

// ErrDDRWriteFailed is reported when no platform-variant force node
// accepted the value. Non-fatal: the GPU side keeps governing.
var ErrDDRWriteFailed = errors.New("gpu: no DVFSRC node accepted the DDR OPP")

// DDR couples the memory frequency to the governor. It holds either a
// fixed OPP tier or the auto sentinel, and writes changes through an
// ordered list of platform-variant sysfs paths.
type DDR struct {
	v2    bool
	fixed bool
	opp   int64

	lastWritten int64
	wrote       bool
}

// NewDDR returns a coupler in auto mode for the given driver generation.
func NewDDR(v2 bool) *DDR {
	return &DDR{v2: v2, opp: autoSentinel(v2)}
}

func autoSentinel(v2 bool) int64 {
	if v2 {
		return DDRAutoV2
	}
	return DDRAutoV1
}

// Fixed reports whether the DDR frequency is pinned to an OPP tier.
func (d *DDR) Fixed() bool { return d.fixed }

// OPP returns the current OPP tier, or the auto sentinel.
func (d *DDR) OPP() int64 { return d.opp }

// Set pins the DDR frequency. Values 0..4 select an OPP tier directly;
// the auto sentinel of either generation, or any negative value, releases
// back to auto. Values of 100 or more are raw frequencies from a table
// column and pin the highest tier.
func (d *DDR) Set(opp int64) error {
	switch {
	case opp == DDRAutoV2 || opp < 0:
		return d.Auto()
	case opp <= DDROppLowest:
		d.opp = opp
		d.fixed = true
	default:
		d.opp = DDROppHighest
		d.fixed = true
	}
	return d.write(d.opp)
}

// Auto releases the DDR frequency to the platform's own selection.
func (d *DDR) Auto() error {
	d.opp = autoSentinel(d.v2)
	d.fixed = false
	d.wrote = false
	return d.write(d.opp)
}

func (d *DDR) forcePaths() []string {
	if d.v2 {
		return paths.DDRForceV2
	}
	return paths.DDRForceV1
}

// write attempts the platform-variant force nodes in order and stops at
// the first success.
func (d *DDR) write(value int64) error {
	if d.wrote && d.lastWritten == value {
		return nil
	}

	s := strconv.FormatInt(value, 10)
	for _, p := range d.forcePaths() {
		if !file.Exists(p) {
			continue
		}
		if err := file.WriteString(p, s); err != nil {
			log.Debug("DVFSRC node rejected value", "path", p, "value", s, "cause", err)
			continue
		}
		log.Debug("DDR OPP written", "path", p, "value", s)
		d.lastWritten = value
		d.wrote = true
		return nil
	}
	return ErrDDRWriteFailed
}

func (d *DDR) clone() *DDR {
	c := *d
	return &c
}
