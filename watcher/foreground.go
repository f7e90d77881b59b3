package watcher

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/seyud/gpugov/config"
	"github.com/seyud/gpugov/internal/file"
	"github.com/seyud/gpugov/internal/paths"
	"github.com/seyud/gpugov/log"
)

const (
	// fgSettleDelay defers polling until boot-time churn is over.
	fgSettleDelay  = time.Minute
	fgPollInterval = time.Second

	// fgWarnEvery throttles repeated pid-resolution warnings. The node is
	// absent on many kernels and would otherwise flood the log every second.
	fgWarnEvery = 12 * time.Hour
)

// Foreground polls the foreground render pid and switches the policy
// bundle when the running package appears in the games list. Leaving a
// game reverts to the policy file's global mode.
type Foreground struct {
	deltas chan<- config.Delta

	settle time.Duration
	poll   time.Duration

	games    map[string]string
	lastPkg  string
	inGame   bool
	lastWarn time.Time
}

// NewForeground returns a foreground-application watcher emitting on deltas.
func NewForeground(deltas chan<- config.Delta) *Foreground {
	return &Foreground{
		deltas: deltas,
		settle: fgSettleDelay,
		poll:   fgPollInterval,
	}
}

// Run blocks until ctx is canceled, polling the foreground package once a
// second after an initial settle delay. The games list is reloaded on
// change so edits apply without a restart.
func (f *Foreground) Run(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(f.settle):
	}

	f.reloadGames()

	gamesPath, err := file.Abs(paths.GamesFile)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(gamesPath)); err != nil {
		return err
	}

	tick := time.NewTicker(f.poll)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("Watch error", "path", gamesPath, "cause", err)
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(e.Name) == gamesPath &&
				(e.Op.Has(fsnotify.Write) || e.Op.Has(fsnotify.Create)) {
				f.reloadGames()
			}
		case <-tick.C:
			f.step()
		}
	}
}

func (f *Foreground) reloadGames() {
	games, err := config.LoadGames(paths.GamesFile)
	if err != nil {
		log.Warn("Games list unreadable, keeping previous", "cause", err)
		return
	}
	f.games = games
}

func (f *Foreground) step() {
	pkg := f.foregroundPackage()
	if pkg == f.lastPkg {
		return
	}
	f.lastPkg = pkg

	mode, isGame := f.games[pkg]
	switch {
	case isGame:
		f.inGame = true
		f.switchTo(mode, true)
		log.Info("Game in foreground", "package", pkg, "mode", mode)
	case f.inGame:
		f.inGame = false
		f.switchTo("", false)
		log.Info("Game left foreground", "package", pkg)
	}
}

// switchTo emits the bundle for mode, or for the policy file's global mode
// when mode is empty.
func (f *Foreground) switchTo(mode string, gaming bool) {
	cfg := loadOrDefault()
	if mode == "" {
		mode = cfg.Global.Mode
	}
	notify(f.deltas, cfg.DeltaFor(mode, gaming))
	writeModeMarker(mode)
}

// foregroundPackage resolves the foreground render pid to its package
// name. Any failure along the way reads as "no foreground app".
func (f *Foreground) foregroundPackage() string {
	pid, err := file.ReadInt(paths.FgPID)
	if err != nil {
		f.warn("Foreground pid unreadable", err)
		return ""
	}
	if pid <= 0 {
		return ""
	}

	cmdline, err := file.Read(fmt.Sprintf("/proc/%d/cmdline", pid))
	if err != nil {
		// The process can exit between the pid read and here.
		log.Debug("Foreground cmdline unreadable", "pid", pid, "cause", err)
		return ""
	}
	return packageName(cmdline)
}

// packageName extracts the package from a cmdline: the first NUL-separated
// argument, with any process-suffix after ':' stripped
// ("com.example.game:render" names com.example.game).
func packageName(cmdline []byte) string {
	arg0, _, _ := bytes.Cut(cmdline, []byte{0})
	name, _, _ := strings.Cut(string(bytes.TrimSpace(arg0)), ":")
	return name
}

func (f *Foreground) warn(msg string, err error) {
	if time.Since(f.lastWarn) < fgWarnEvery {
		return
	}
	f.lastWarn = time.Now()
	log.Warn(msg, "cause", err)
}

func loadOrDefault() *config.Config {
	cfg, err := config.Load(paths.PolicyFile)
	if err != nil {
		log.Warn("Policy file unreadable, using defaults", "cause", err)
		return config.Default()
	}
	return cfg
}
