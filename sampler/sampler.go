// Package sampler reads GPU load and the live hardware frequency from the
// kernel. Load comes from a prioritized cascade of interfaces probed once
// at startup; a source that reads zero falls through to the next so a
// stalled counter never masks real activity.
package sampler

import (
	"bytes"
	"errors"

	"github.com/seyud/gpugov/internal/byteutil"
	"github.com/seyud/gpugov/internal/file"
	"github.com/seyud/gpugov/internal/paths"
	"github.com/seyud/gpugov/log"
)

// ErrNoLoadSource is returned when no load interface is readable. The
// governor cannot run blind, so this is fatal at startup.
var ErrNoLoadSource = errors.New("sampler: no GPU load interface available")

// Sampler holds the probed source set and the previous counter values for
// the precise delta computation. One Sampler belongs to one goroutine.
type Sampler struct {
	dvfsNode string
	varDump  bool
	mtk      bool
	mali     bool
	gedNodes []string
	modIdle  bool
	modLoad  bool
	freqOK   bool

	prevBusy  int64
	prevIdle  int64
	prevProtm int64
}

// New probes every known load interface and returns a sampler over the
// readable ones. The probe result for each node is logged so a report from
// the field identifies the kernel's capabilities.
func New() (*Sampler, error) {
	s := &Sampler{}

	probe := func(node string) bool {
		ok := file.Readable(node)
		log.Info("Load interface probe", "node", node, "readable", ok)
		return ok
	}

	log.Info("Probing load interfaces")
	switch {
	case probe(paths.MaliDVFSUtil):
		s.dvfsNode = paths.MaliDVFSUtil
	case probe(paths.MaliDVFSUtilOld):
		s.dvfsNode = paths.MaliDVFSUtilOld
	}
	s.varDump = probe(paths.GPUFreqVarDump)
	s.mtk = probe(paths.MTKMaliUtil)
	s.mali = probe(paths.MaliUtil)
	for _, node := range []string{paths.GEDDebugUtil, paths.GEDDUtil, paths.GEDHALUtil} {
		if probe(node) {
			s.gedNodes = append(s.gedNodes, node)
		}
	}
	s.modIdle = probe(paths.GEDModuleIdle)
	s.modLoad = probe(paths.GEDModuleLoad)

	if s.dvfsNode == "" && !s.varDump && !s.mtk && !s.mali &&
		len(s.gedNodes) == 0 && !s.modIdle && !s.modLoad {
		return nil, ErrNoLoadSource
	}

	s.freqOK = file.Readable(paths.GEDCurrentFreq)
	if !s.freqOK {
		if s.varDump {
			log.Info("Reading current frequency from the gpufreq state dump")
		} else {
			log.Warn("Current frequency node unavailable, keeping last known frequency",
				"node", paths.GEDCurrentFreq,
			)
		}
	}

	if s.Precise() {
		log.Info("Precise load counters available", "node", s.dvfsNode)
	}
	return s, nil
}

// Precise reports whether the Mali delta counters back the load readings.
// The control loop skips its inter-sample sleep in precise mode.
func (s *Sampler) Precise() bool { return s.dvfsNode != "" }

// Load returns the GPU load in percent. Sources are tried in precision
// order and a zero reading falls through; all sources zero or unavailable
// reads as a genuinely idle GPU.
func (s *Sampler) Load() int {
	if s.dvfsNode != "" {
		if v, ok := s.preciseLoad(); ok && v > 0 {
			return clampLoad(v)
		}
	}
	if s.varDump {
		if v, ok := s.varDumpLoad(); ok && v > 0 {
			return clampLoad(v)
		}
	}
	if s.mtk {
		if v, ok := readTagged(paths.MTKMaliUtil, "ACTIVE="); ok && v > 0 {
			return clampLoad(v)
		}
	}
	if s.mali {
		if v, ok := readTagged(paths.MaliUtil, "="); ok && v > 0 {
			return clampLoad(v)
		}
	}
	for _, node := range s.gedNodes {
		if v, ok := readGEDUtil(node); ok && v > 0 {
			return clampLoad(v)
		}
	}
	if s.modIdle {
		if idle, err := file.ReadInt(paths.GEDModuleIdle); err == nil {
			if v := 100 - int(idle); v > 0 {
				return clampLoad(v)
			}
		}
	}
	if s.modLoad {
		if v, err := file.ReadInt(paths.GEDModuleLoad); err == nil && v > 0 {
			return clampLoad(int(v))
		}
	}
	return 0
}

// preciseLoad derives load from the Mali busy/idle/protected-mode tick
// counters. The counters are cumulative, so the load is the busy share of
// the delta since the previous sample.
func (s *Sampler) preciseLoad() (int, bool) {
	b, err := file.ReadBytes(s.dvfsNode)
	if err != nil {
		return 0, false
	}
	_, rest := byteutil.Pair(b, '\n')
	if len(rest) == 0 {
		return 0, false
	}

	bb, rest := byteutil.Column(rest)
	ib, rest := byteutil.Column(rest)
	pb, _ := byteutil.Column(rest)
	if len(bb) == 0 || len(ib) == 0 || len(pb) == 0 {
		return 0, false
	}
	busy, idle, protm := byteutil.Btoi(bb), byteutil.Btoi(ib), byteutil.Btoi(pb)

	dBusy := busy - s.prevBusy
	dIdle := idle - s.prevIdle
	dProtm := protm - s.prevProtm
	s.prevBusy, s.prevIdle, s.prevProtm = busy, idle, protm

	total := dBusy + dIdle + dProtm
	if total <= 0 {
		return 0, false
	}
	load := int((dBusy + dProtm) * 100 / total)
	if load < 0 {
		load = 0
	}
	return load, true
}

// varDumpLoad scans the gpufreq state dump for its gpu_loading line.
func (s *Sampler) varDumpLoad() (int, bool) {
	b, err := file.Read(paths.GPUFreqVarDump)
	if err != nil {
		return 0, false
	}
	for _, line := range bytes.Split(b, []byte{'\n'}) {
		if !bytes.Contains(line, []byte("gpu_loading")) {
			continue
		}
		_, val := byteutil.Pair(line, '=')
		if len(val) == 0 {
			continue
		}
		return int(byteutil.Btoi(val)), true
	}
	return 0, false
}

// readTagged reads a node of the form "<anything><tag><value>", as in
// "ACTIVE=32" or "gpu/cljs0/cljs1=57".
func readTagged(node, tag string) (int, bool) {
	b, err := file.ReadBytes(node)
	if err != nil {
		return 0, false
	}
	i := bytes.Index(b, []byte(tag))
	if i < 0 {
		return 0, false
	}
	val, _ := byteutil.Column(b[i+len(tag):])
	if len(val) == 0 {
		return 0, false
	}
	return int(byteutil.Btoi(val)), true
}

// readGEDUtil reads a three-column GED utilization node whose third column
// is the idle percentage.
func readGEDUtil(node string) (int, bool) {
	b, err := file.ReadBytes(node)
	if err != nil {
		return 0, false
	}
	_, rest := byteutil.Column(b)
	_, rest = byteutil.Column(rest)
	idle, _ := byteutil.Column(rest)
	if len(idle) == 0 {
		return 0, false
	}
	return 100 - int(byteutil.Btoi(idle)), true
}

// varDumpFreq scans the gpufreq state dump for the real frequency line,
// "real freq: 800000, real volt: 65000" on most v1 kernels.
func (s *Sampler) varDumpFreq() (int64, error) {
	b, err := file.Read(paths.GPUFreqVarDump)
	if err != nil {
		return 0, err
	}
	for _, line := range bytes.Split(b, []byte{'\n'}) {
		i := bytes.Index(line, []byte("real freq"))
		if i < 0 {
			continue
		}
		rest := line[i:]
		if j := bytes.IndexByte(rest, ','); j >= 0 {
			rest = rest[:j]
		}
		_, val := byteutil.Pair(rest, ':')
		if len(val) == 0 {
			continue
		}
		return byteutil.Btoi(val), nil
	}
	return 0, nil
}

func clampLoad(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// CurrentFreq reads the live hardware frequency in kHz. An unavailable
// node returns (0, nil) so the loop keeps the last known frequency; a read
// failure on a node that probed fine is an error the loop treats as fatal.
// Older v1 kernels lack the GED node and report the frequency in the
// gpufreq state dump instead.
func (s *Sampler) CurrentFreq() (int64, error) {
	if !s.freqOK {
		if s.varDump {
			return s.varDumpFreq()
		}
		return 0, nil
	}
	b, err := file.ReadBytes(paths.GEDCurrentFreq)
	if err != nil {
		return 0, err
	}

	// The node reports "<opp> <freq>"; the second column is the frequency.
	_, rest := byteutil.Column(b)
	freq, _ := byteutil.Column(rest)
	if len(freq) == 0 {
		log.Debug("Unparsable current frequency node", "content", string(b))
		return 0, nil
	}
	return byteutil.Btoi(freq), nil
}
