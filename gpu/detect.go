package gpu

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/seyud/gpugov/internal/byteutil"
	"github.com/seyud/gpugov/internal/file"
	"github.com/seyud/gpugov/internal/paths"
	"github.com/seyud/gpugov/log"
)

// Detect probes the control files of both driver generations and returns
// the detected one plus whether DCS is enabled. DCS exists only on
// gpufreqv2. When neither generation is present the governor defaults to v1
// and keeps running with no-op writes.
func Detect() (Version, bool) {
	v1 := file.Readable(paths.V1Volt) || file.Readable(paths.V1OPP)
	v2 := file.Readable(paths.V2Volt) || file.Readable(paths.V2OPP)

	switch {
	case v1:
		log.Info("Detected gpufreq driver (v1)")
		if !file.Readable(paths.V1Volt) {
			log.Warn("v1 voltage control file not found", "path", paths.V1Volt)
		}
		if !file.Readable(paths.V1OPP) {
			log.Warn("v1 frequency control file not found", "path", paths.V1OPP)
		}
		return V1, false
	case v2:
		log.Info("Detected gpufreqv2 driver (v2)")
		if !file.Readable(paths.V2Volt) {
			log.Warn("v2 voltage control file not found", "path", paths.V2Volt)
		}
		if !file.Readable(paths.V2OPP) {
			log.Warn("v2 frequency control file not found", "path", paths.V2OPP)
		}
		return V2, true
	}

	log.Warn("No GPU frequency driver detected, defaulting to gpufreq (v1)")
	log.Warn("Frequency writes will be no-ops on this kernel")
	return V1, false
}

// SupportedFreqs reads the kernel's working OPP table on v2 hardware and
// returns the ascending frequency list. The list bounds nearest-match
// snapping only; config entries outside it stay valid. A missing or
// unparsable table returns an empty list, which disables subset snapping.
func SupportedFreqs() []int64 {
	b, err := file.Read(paths.V2Table)
	if err != nil {
		log.Debug("No v2 working OPP table", "cause", err)
		return nil
	}

	freqs := parseOPPDump(b)
	if len(freqs) == 0 {
		log.Debug("v2 working OPP table empty or unparsable")
		return nil
	}
	slices.Sort(freqs)
	freqs = slices.Compact(freqs)
	log.Info(fmt.Sprintf("Kernel reports %d supported frequencies", len(freqs)),
		"min", freqs[0], "max", freqs[len(freqs)-1],
	)
	return freqs
}

// parseOPPDump extracts the freq field from each line of a kernel OPP
// dump. Lines look like "[00] freq: 886000, volt: 80000, ...".
func parseOPPDump(b []byte) []int64 {
	var freqs []int64
	for _, line := range bytes.Split(b, []byte{'\n'}) {
		i := bytes.Index(line, []byte("freq"))
		if i < 0 {
			continue
		}
		rest := line[i+len("freq"):]
		if j := bytes.IndexByte(rest, ','); j >= 0 {
			rest = rest[:j]
		}
		_, val := byteutil.Pair(rest, ':')
		if len(val) == 0 {
			continue
		}
		f := byteutil.Btoi(val)
		if f <= 0 {
			continue
		}
		freqs = append(freqs, f)
	}
	return freqs
}
