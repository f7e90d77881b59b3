package watcher

import (
	"context"

	"github.com/seyud/gpugov/config"
	"github.com/seyud/gpugov/gpu"
	"github.com/seyud/gpugov/internal/paths"
	"github.com/seyud/gpugov/log"
)

// Table revalidates the frequency table file on change. It works on its
// own state clone: the control loop's frequency set stays immutable for
// the life of the process, and a changed table takes effect on restart.
// Reparsing here still surfaces mistakes in an edited file immediately.
type Table struct {
	state *gpu.State
}

// NewTable returns a table-file watcher over its own state clone.
func NewTable(state *gpu.State) *Table {
	return &Table{state: state}
}

// Run blocks until ctx is canceled, reparsing on every change of the
// table file.
func (t *Table) Run(ctx context.Context) error {
	return watchFile(ctx, paths.TableFile, t.reload)
}

func (t *Table) reload() {
	tab, err := config.LoadTable(paths.TableFile)
	if err != nil {
		log.Error("Frequency table reparse failed", err, "path", paths.TableFile)
		return
	}
	t.state.Table = tab
	t.state.WarnUnsupported()
	log.Info("Frequency table revalidated, effective after restart",
		"entries", tab.Len(),
	)
}
