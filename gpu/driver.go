package gpu

import (
	"strconv"
	"time"

	"github.com/seyud/gpugov/internal/file"
	"github.com/seyud/gpugov/internal/paths"
	"github.com/seyud/gpugov/log"
)

// Version identifies the Mediatek driver generation.
type Version int

const (
	V1 Version = iota + 1 // gpufreq
	V2                    // gpufreqv2
)

func (v Version) String() string {
	if v == V2 {
		return "gpufreqv2"
	}
	return "gpufreq"
}

// v2Settle is the pause between unlocking the v2 manual override and
// writing the voltage pair. Writing sooner races the kernel's mode switch
// and the pair is dropped.
const v2Settle = 10 * time.Millisecond

const (
	voltReset    = "0 0"
	oppUnlock    = "-1"
	oppFallback  = "0"
	policyManual = "always_on"
	policyAuto   = "coarse_demand"
)

// Driver writes operating points through the control files of one driver
// generation. All writes are best-effort: a missing control file turns the
// operation into a debug-logged no-op so the governor keeps running on
// partially capable hardware.
type Driver struct {
	version Version

	// policyOverridden tracks the one-time best-effort disable of the
	// Mali driver's own power management on v1 hardware.
	policyOverridden bool

	sleep func(time.Duration)
}

// NewDriver returns an adapter for the given generation.
func NewDriver(v Version) *Driver {
	return &Driver{version: v, sleep: time.Sleep}
}

// Version returns the driver generation.
func (d *Driver) Version() Version { return d.version }

func (d *Driver) voltPath() string {
	if d.version == V2 {
		return paths.V2Volt
	}
	return paths.V1Volt
}

func (d *Driver) oppPath() string {
	if d.version == V2 {
		return paths.V2OPP
	}
	return paths.V1OPP
}

func (d *Driver) available() bool {
	if file.Exists(d.voltPath()) && file.Exists(d.oppPath()) {
		return true
	}
	log.Debug("Control files missing, skipping write", "driver", d.version)
	return false
}

func (d *Driver) put(path, s string) bool {
	if err := file.WriteString(path, s); err != nil {
		log.Debug("Control write rejected", "path", path, "value", s, "cause", err)
		return false
	}
	return true
}

// unlock switches the v2 driver into manual override. Some kernels reject
// the -1 sentinel and expect 0 instead.
func (d *Driver) unlock() {
	if !d.put(d.oppPath(), oppUnlock) {
		d.put(d.oppPath(), oppFallback)
	}
}

// Write pins the GPU to the given frequency and voltage. A zero voltage
// pins the frequency alone and leaves the voltage to the kernel's own
// mapping.
func (d *Driver) Write(freq, volt int64) error {
	if !d.available() {
		return nil
	}

	if volt == 0 {
		d.put(d.voltPath(), voltReset)
		d.put(d.oppPath(), strconv.FormatInt(freq, 10))
		return nil
	}

	pair := strconv.FormatInt(freq, 10) + " " + strconv.FormatInt(volt, 10)
	if d.version == V2 {
		d.put(d.voltPath(), voltReset)
		d.unlock()
		d.sleep(v2Settle)
		d.put(d.voltPath(), pair)
		return nil
	}

	d.overridePolicy()
	d.put(d.oppPath(), oppFallback)
	d.put(d.voltPath(), pair)
	return nil
}

// Release hands frequency selection back to the kernel. Used on idle and
// for the v2 DCS fallback when the target falls below the table minimum.
func (d *Driver) Release() error {
	if !d.available() {
		return nil
	}

	d.put(d.voltPath(), voltReset)
	if d.version == V2 {
		d.unlock()
		return nil
	}

	d.put(d.oppPath(), oppFallback)
	d.restorePolicy()
	return nil
}

// overridePolicy disables the Mali driver's autonomous power management
// once, so v1 fixed-frequency writes stick. Best-effort: the node is absent
// on many kernels.
func (d *Driver) overridePolicy() {
	if d.policyOverridden || !file.Exists(paths.PowerPolicy) {
		return
	}
	if err := file.WriteString(paths.PowerPolicy, policyManual); err != nil {
		log.Debug("Power policy override rejected", "cause", err)
		return
	}
	d.policyOverridden = true
}

func (d *Driver) restorePolicy() {
	if !d.policyOverridden {
		return
	}
	if err := file.WriteString(paths.PowerPolicy, policyAuto); err != nil {
		log.Debug("Power policy restore rejected", "cause", err)
		return
	}
	d.policyOverridden = false
}

func (d *Driver) clone() *Driver {
	c := *d
	return &c
}
