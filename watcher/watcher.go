// Package watcher contains the goroutines that react to the outside
// world: policy and table file changes, the game-mode and log-level
// markers, and the foreground application. Watchers never touch the
// control loop's state; they emit config deltas and write marker files.
package watcher

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/seyud/gpugov/config"
	"github.com/seyud/gpugov/internal/file"
	"github.com/seyud/gpugov/log"
)

// notify delivers a delta without blocking. The control loop drains its
// channel every tick, so a full channel means older deltas are already
// superseded.
func notify(deltas chan<- config.Delta, d config.Delta) {
	select {
	case deltas <- d:
	default:
		log.Debug("Delta channel full, dropping", "mode", d.Mode)
	}
}

// watchFile blocks on inotify events for one file, watching its parent
// directory so recreation by editors and the companion UI is seen, and
// invokes onChange for every write or create of the target.
func watchFile(ctx context.Context, path string, onChange func()) error {
	path, err := file.Abs(path)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	log.Debug("Watching", "path", path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watch error", "path", path, "cause", err)
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) != path {
				continue
			}
			if e.Op.Has(fsnotify.Write) || e.Op.Has(fsnotify.Create) {
				onChange()
			}
		}
	}
}
