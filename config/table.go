package config

import (
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"

	"github.com/seyud/gpugov/gpu"
	"github.com/seyud/gpugov/internal/file"
	"github.com/seyud/gpugov/log"
)

type tableEntry struct {
	Freq   int64 `toml:"freq"`
	Volt   int64 `toml:"volt"`
	DDROpp int64 `toml:"ddr_opp"`
}

type tableFile struct {
	FreqTable []tableEntry `toml:"freq_table"`
}

// ReadTable parses a frequency table from r. Entries with an invalid
// voltage are dropped inside gpu.NewTable; an empty result is an error the
// caller treats as fatal.
func ReadTable(r io.Reader) (*gpu.Table, error) {
	var tf tableFile
	if err := toml.NewDecoder(r).Decode(&tf); err != nil {
		return nil, fmt.Errorf("config: freq table: %w", err)
	}
	return buildTable(tf)
}

// LoadTable parses the frequency table at path through the redirectable
// root.
func LoadTable(path string) (*gpu.Table, error) {
	log.Info("Loading frequency table", "path", path)
	b, err := file.Read(path)
	if err != nil {
		return nil, fmt.Errorf("config: freq table: %w", err)
	}
	var tf tableFile
	if err := toml.Unmarshal(b, &tf); err != nil {
		return nil, fmt.Errorf("config: freq table: %w", err)
	}
	return buildTable(tf)
}

func buildTable(tf tableFile) (*gpu.Table, error) {
	entries := make([]gpu.Entry, len(tf.FreqTable))
	for i, e := range tf.FreqTable {
		entries[i] = gpu.Entry{Freq: e.Freq, Volt: e.Volt, DDROpp: e.DDROpp}
	}
	tab, err := gpu.NewTable(entries)
	if err != nil {
		return nil, fmt.Errorf("config: freq table: %w", err)
	}
	log.Info("Frequency table loaded",
		"entries", tab.Len(), "min", tab.MinFreq(), "max", tab.MaxFreq(),
	)
	return tab, nil
}
