// Package gpu models the controlled hardware: the frequency/voltage/DDR
// operating point table, the two Mediatek driver generations and their
// control-file semantics, the DDR coupler, and the governor's decision
// state.
package gpu

import (
	"errors"
	"slices"

	"github.com/seyud/gpugov/log"
)

// VoltStep is the regulator's resolution in µV. Voltages that are not a
// positive multiple of it cannot be programmed and are rejected at load
// time.
const VoltStep = 625

// Entry is one operating point: frequency in kHz, voltage in µV, and the
// DDR OPP index coupled to it in gaming mode.
type Entry struct {
	Freq   int64
	Volt   int64
	DDROpp int64
}

// ValidVolt reports whether v can be programmed into the regulator.
func ValidVolt(v int64) bool {
	return v != 0 && v%VoltStep == 0
}

// ErrEmptyTable is returned when no valid entries survive validation.
var ErrEmptyTable = errors.New("gpu: no valid frequency table entries")

// Table is the ordered set of supported operating points. The frequency
// set is immutable; reloading the table file replaces the whole Table.
type Table struct {
	entries []Entry
	volts   map[int64]int64
	ddr     map[int64]int64
}

// NewTable validates entries and builds a Table sorted ascending by
// frequency. Entries with an invalid voltage are dropped and logged, never
// stored. An empty result is an error.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{
		volts: make(map[int64]int64, len(entries)),
		ddr:   make(map[int64]int64, len(entries)),
	}

	for _, e := range entries {
		if !ValidVolt(e.Volt) {
			log.Warn("Dropping invalid table entry",
				"freq", e.Freq, "volt", e.Volt, "ddr_opp", e.DDROpp,
				"reason", "volt must be a nonzero multiple of 625",
			)
			continue
		}
		t.entries = append(t.entries, e)
		t.volts[e.Freq] = e.Volt
		t.ddr[e.Freq] = e.DDROpp
	}

	if len(t.entries) == 0 {
		return nil, ErrEmptyTable
	}

	slices.SortFunc(t.entries, func(a, b Entry) int {
		switch {
		case a.Freq < b.Freq:
			return -1
		case a.Freq > b.Freq:
			return 1
		}
		return 0
	})

	return t, nil
}

// Len returns the number of operating points.
func (t *Table) Len() int { return len(t.entries) }

// Freqs returns the ascending frequency list.
func (t *Table) Freqs() []int64 {
	freqs := make([]int64, len(t.entries))
	for i, e := range t.entries {
		freqs[i] = e.Freq
	}
	return freqs
}

func (t *Table) clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(t.entries) {
		return len(t.entries) - 1
	}
	return i
}

// FreqByIndex returns the frequency at index i, clamped to the table
// bounds.
func (t *Table) FreqByIndex(i int) int64 {
	return t.entries[t.clampIndex(i)].Freq
}

// IndexOf returns the index of an exact frequency match, or 0 when freq is
// not in the table.
func (t *Table) IndexOf(freq int64) int {
	for i, e := range t.entries {
		if e.Freq == freq {
			return i
		}
	}
	return 0
}

// MinFreq returns the lowest supported frequency.
func (t *Table) MinFreq() int64 { return t.entries[0].Freq }

// MaxFreq returns the highest supported frequency.
func (t *Table) MaxFreq() int64 { return t.entries[len(t.entries)-1].Freq }

// MiddleFreq returns the frequency at the middle of the table.
func (t *Table) MiddleFreq() int64 {
	return t.entries[len(t.entries)/2].Freq
}

// SecondHighestFreq returns the second highest frequency, or the highest
// when the table has a single entry.
func (t *Table) SecondHighestFreq() int64 {
	if len(t.entries) < 2 {
		return t.MaxFreq()
	}
	return t.entries[len(t.entries)-2].Freq
}

// StartFreq returns the assumed frequency at governor start for a mode.
// Powersave starts mid-table and balance one step below the ceiling so
// the first ticks climb on demand; performance modes start at the ceiling.
func (t *Table) StartFreq(mode string) int64 {
	switch mode {
	case "powersave":
		return t.MiddleFreq()
	case "performance", "fast":
		return t.MaxFreq()
	}
	return t.SecondHighestFreq()
}

// Clamp bounds freq to the table range.
func (t *Table) Clamp(freq int64) int64 {
	if freq < t.MinFreq() {
		return t.MinFreq()
	}
	if freq > t.MaxFreq() {
		return t.MaxFreq()
	}
	return freq
}

// Nearest returns the table frequency with the minimal absolute distance
// to freq. Equidistant candidates resolve to the lower one.
func (t *Table) Nearest(freq int64) int64 {
	freqs := make([]int64, len(t.entries))
	for i, e := range t.entries {
		freqs[i] = e.Freq
	}
	return NearestIn(freqs, freq)
}

// NearestIn returns the member of set with the minimal absolute distance
// to freq. The scan keeps the first of two equidistant candidates, so with
// an ascending set ties resolve to the lower frequency. An empty set
// returns freq unchanged.
func NearestIn(set []int64, freq int64) int64 {
	if len(set) == 0 {
		return freq
	}
	closest := set[0]
	minDiff := abs64(freq - closest)
	for _, f := range set[1:] {
		if d := abs64(freq - f); d < minDiff {
			minDiff = d
			closest = f
		}
	}
	return closest
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// VoltFor returns the voltage mapped to freq, substituting the nearest
// table frequency's voltage when freq has no exact mapping.
func (t *Table) VoltFor(freq int64) int64 {
	if v, ok := t.volts[freq]; ok {
		return v
	}
	return t.volts[t.Nearest(freq)]
}

// DDROppFor returns the DDR OPP mapped to freq, substituting the highest
// tier when freq has no exact mapping.
func (t *Table) DDROppFor(freq int64) int64 {
	if opp, ok := t.ddr[freq]; ok {
		return opp
	}
	return DDROppHighest
}
