package watcher

import (
	"context"

	"github.com/seyud/gpugov/config"
	"github.com/seyud/gpugov/internal/file"
	"github.com/seyud/gpugov/internal/paths"
	"github.com/seyud/gpugov/log"
)

// GameMode follows the game-mode marker file the companion UI writes
// ("1" in game, "0" out) and swaps the whole policy bundle accordingly.
type GameMode struct {
	deltas chan<- config.Delta
	gaming bool
}

// NewGameMode returns a game-mode marker watcher emitting on deltas.
func NewGameMode(deltas chan<- config.Delta) *GameMode {
	return &GameMode{deltas: deltas}
}

// Run applies the marker's current value once, then blocks until ctx is
// canceled reapplying it on every change.
func (g *GameMode) Run(ctx context.Context) error {
	if file.Exists(paths.GameMode) {
		g.reload()
	} else {
		log.Info("No game mode marker", "path", paths.GameMode)
	}
	return watchFile(ctx, paths.GameMode, g.reload)
}

func (g *GameMode) reload() {
	v, err := file.ReadInt(paths.GameMode)
	if err != nil {
		log.Warn("Game mode marker unreadable, assuming normal mode", "cause", err)
		v = 0
	}
	gaming := v != 0
	if gaming == g.gaming {
		return
	}
	g.gaming = gaming

	cfg := loadOrDefault()
	notify(g.deltas, cfg.DeltaFor(cfg.Global.Mode, gaming))
	if gaming {
		log.Info("Game mode enabled")
	} else {
		log.Info("Game mode disabled")
	}
}
