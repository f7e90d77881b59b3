// Package config provides the structures used for configuration: the
// policy file with its per-mode tuning blocks, the frequency table file,
// and the games list. All three are TOML, the format the companion module
// ships.
package config

import (
	"fmt"
	"io"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/seyud/gpugov/gpu"
	"github.com/seyud/gpugov/internal/file"
	"github.com/seyud/gpugov/log"
)

// Config is the parsed policy file: a global section plus one tuning block
// per mode. Config should be created with a call to [Default], [Read], or
// [Load].
type Config struct {
	Global      Global `toml:"global"`
	Powersave   Mode   `toml:"powersave"`
	Balance     Mode   `toml:"balance"`
	Performance Mode   `toml:"performance"`
	Fast        Mode   `toml:"fast"`
}

// Global selects the active mode and the idle threshold shared by all
// modes.
type Global struct {
	Mode          string `toml:"mode"`
	IdleThreshold int    `toml:"idle_threshold"`
}

// Mode is one tuning block. Intervals and delays are in milliseconds.
type Mode struct {
	Margin              int64 `toml:"margin"`
	AggressiveDown      bool  `toml:"aggressive_down"`
	SamplingInterval    int64 `toml:"sampling_interval"`
	Gaming              bool  `toml:"gaming_mode"`
	AdaptiveSampling    bool  `toml:"adaptive_sampling"`
	MinAdaptiveInterval int64 `toml:"min_adaptive_interval"`
	MaxAdaptiveInterval int64 `toml:"max_adaptive_interval"`
	UpRateDelay         int64 `toml:"up_rate_delay"`
	DownRateDelay       int64 `toml:"down_rate_delay"`
}

var defaultCfg = Config{
	Global: Global{
		Mode:          "balance",
		IdleThreshold: gpu.DefaultIdleThreshold,
	},
	Powersave: Mode{
		Margin:              5,
		AggressiveDown:      true,
		SamplingInterval:    32,
		AdaptiveSampling:    true,
		MinAdaptiveInterval: 10,
		MaxAdaptiveInterval: 100,
		UpRateDelay:         100,
		DownRateDelay:       50,
	},
	Balance: Mode{
		Margin:              10,
		AggressiveDown:      true,
		SamplingInterval:    16,
		AdaptiveSampling:    true,
		MinAdaptiveInterval: 10,
		MaxAdaptiveInterval: 100,
		UpRateDelay:         50,
		DownRateDelay:       50,
	},
	Performance: Mode{
		Margin:              20,
		AggressiveDown:      false,
		SamplingInterval:    16,
		AdaptiveSampling:    true,
		MinAdaptiveInterval: 8,
		MaxAdaptiveInterval: 50,
		UpRateDelay:         20,
		DownRateDelay:       100,
	},
	Fast: Mode{
		Margin:              30,
		AggressiveDown:      false,
		SamplingInterval:    8,
		Gaming:              true,
		AdaptiveSampling:    true,
		MinAdaptiveInterval: 8,
		MaxAdaptiveInterval: 50,
		UpRateDelay:         20,
		DownRateDelay:       200,
	},
}

// Default returns the built-in configuration used when no policy file is
// readable.
func Default() *Config {
	cfg := defaultCfg
	return &cfg
}

// Read returns the Config parsed from the TOML encoded config from r.
// Fields absent from the file keep their defaults.
func Read(r io.Reader) (*Config, error) {
	cfg := defaultCfg
	if err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Load returns the Config parsed from the given path through the
// redirectable root.
func Load(path string) (*Config, error) {
	log.Info("Loading policy config", "path", path)
	b, err := file.Read(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := defaultCfg
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// ModeNames lists the valid mode selectors in the policy file's order.
var ModeNames = []string{"powersave", "balance", "performance", "fast"}

// Mode returns the tuning block for name. An unknown name substitutes
// balance with a warning.
func (cfg *Config) Mode(name string) Mode {
	switch name {
	case "powersave":
		return cfg.Powersave
	case "balance":
		return cfg.Balance
	case "performance":
		return cfg.Performance
	case "fast":
		return cfg.Fast
	}
	log.Warn("Unknown mode, using balance", "mode", name)
	return cfg.Balance
}

// Policy converts the named tuning block into the governor's policy
// bundle.
func (cfg *Config) Policy(name string) gpu.Policy {
	m := cfg.Mode(name)
	return gpu.Policy{
		Margin:         m.Margin,
		UpDebounce:     time.Duration(m.UpRateDelay) * time.Millisecond,
		DownDebounce:   time.Duration(m.DownRateDelay) * time.Millisecond,
		AggressiveDown: m.AggressiveDown,
		Interval:       time.Duration(m.SamplingInterval) * time.Millisecond,
		Adaptive:       m.AdaptiveSampling,
		MinInterval:    time.Duration(m.MinAdaptiveInterval) * time.Millisecond,
		MaxInterval:    time.Duration(m.MaxAdaptiveInterval) * time.Millisecond,
		Gaming:         m.Gaming,
	}
}

// Delta is the message watchers send to the control loop: one full policy
// bundle plus the mode it came from. The loop drains its channel
// non-blockingly each tick; the latest delta wins.
type Delta struct {
	Policy        gpu.Policy
	Mode          string
	IdleThreshold int
	Gaming        bool
}

// DeltaFor builds the Delta for the named mode. Gaming forces the bundle's
// gaming flag regardless of the block's own setting, for the game-mode
// marker path.
func (cfg *Config) DeltaFor(name string, gaming bool) Delta {
	p := cfg.Policy(name)
	p.Gaming = p.Gaming || gaming
	return Delta{
		Policy:        p,
		Mode:          name,
		IdleThreshold: cfg.Global.IdleThreshold,
		Gaming:        p.Gaming,
	}
}
