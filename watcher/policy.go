package watcher

import (
	"context"

	"github.com/seyud/gpugov/config"
	"github.com/seyud/gpugov/internal/file"
	"github.com/seyud/gpugov/internal/paths"
	"github.com/seyud/gpugov/log"
)

// Policy reloads the policy file on change and hands the control loop the
// bundle for the file's global mode. It also maintains the current-mode
// marker the companion UI polls.
type Policy struct {
	deltas chan<- config.Delta
}

// NewPolicy returns a policy-file watcher emitting on deltas.
func NewPolicy(deltas chan<- config.Delta) *Policy {
	return &Policy{deltas: deltas}
}

// Run blocks until ctx is canceled, reloading on every change of the
// policy file. Parse failures keep the previous policy active.
func (p *Policy) Run(ctx context.Context) error {
	return watchFile(ctx, paths.PolicyFile, p.reload)
}

func (p *Policy) reload() {
	cfg, err := config.Load(paths.PolicyFile)
	if err != nil {
		log.Error("Policy reload failed, keeping previous", err)
		return
	}

	mode := cfg.Global.Mode
	notify(p.deltas, cfg.DeltaFor(mode, false))
	writeModeMarker(mode)
	log.Info("Policy reloaded", "mode", mode)
}

func writeModeMarker(mode string) {
	if err := file.WriteMarker(paths.CurrentMode, mode); err != nil {
		log.Warn("Current-mode marker write failed", "cause", err)
	}
}
