package cmd

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"slices"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seyud/gpugov/config"
	"github.com/seyud/gpugov/governor"
	"github.com/seyud/gpugov/gpu"
	"github.com/seyud/gpugov/internal/build"
	"github.com/seyud/gpugov/internal/file"
	"github.com/seyud/gpugov/internal/paths"
	"github.com/seyud/gpugov/log"
	"github.com/seyud/gpugov/sampler"
	"github.com/seyud/gpugov/watcher"
)

// Flags for [RunCommand]
var (
	LogLevel log.LevelFlag // Log level
	JSONLog  bool          // Log in JSON format
	Stderr   bool          // Log to stderr instead of the rotating log file
	Detach   bool          // Run detached (in background)
)

// RunCommand is the main [cobra.Command] used for running the governor.
var RunCommand = &cobra.Command{
	Use:     "run [flags]",
	Aliases: []string{"start"},
	Short:   "Run the governor",
	Long: `Run the DVFS governor in the foreground until a signal is received.

	- SIGINT or SIGTERM will gracefully shut down the governor and hand
	  frequency control back to the kernel driver.

The governor reads its frequency table from ` + paths.TableFile + ` and its
policy config from ` + paths.PolicyFile + `. The policy config, the games
list, and the game-mode and log-level marker files are watched for changes
and apply without a restart.

The log level marker at ` + paths.LogLevel + ` overrides --log when present.`,
	Example: `  gpugov run
  gpugov run --log debug --stderr`,
	GroupID: "commands",
	Args:    cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) (err error) {
		if Detach {
			var code int
			if err = runDetached(cmd, args); err != nil {
				code = 1
			}
			return &ExitError{err, code}
		}

		if err = PrintBanner(cmd); err != nil {
			cmd.Println(err)
			return
		}

		if cmd.Flags().Changed("log") {
			log.SetLogLevel(log.Level(LogLevel))
		}
		switch {
		case !Stderr:
			w := log.FileWriter(mustAbs(paths.LogFile))
			AddCleanup(func() { w.Close() })
			if JSONLog {
				log.SetJSONHandler(w)
			} else {
				log.SetTextHandler(w)
			}
		case JSONLog:
			log.SetJSONHandler(os.Stderr)
		}
		return
	},
	RunE: runGovernor,

	DisableFlagsInUseLine: true,
}

func init() {
	RunCommand.Flags().SortFlags = false
	RunCommand.Flags().VarP(&LogLevel, "log", "l", "Log level")
	RunCommand.Flags().BoolVar(&JSONLog, "json", false, "Log in JSON format")
	RunCommand.Flags().BoolVar(&Stderr, "stderr", false, "Log to stderr instead of the log file")
	RunCommand.Flags().BoolVarP(&Detach, "detach", "d", false, "Run detached (in background)")

	RunCommand.SetHelpTemplate(RunCommand.HelpTemplate() + "\n" + fullDocsFooter + "\n")

	RootCommand.AddCommand(RunCommand)
}

// mustAbs resolves a node path through the redirectable root, falling back
// to the raw path.
func mustAbs(name string) string {
	abs, err := file.Abs(name)
	if err != nil {
		return name
	}
	return abs
}

func runDetached(cmd *cobra.Command, args []string) error {
	c := exec.Command(os.Args[0], os.Args[1:]...)
	if errors.Is(c.Err, exec.ErrDot) {
		c.Err = nil
	}
	c.Args = slices.DeleteFunc(c.Args, func(s string) bool { return s == "-d" || s == "--detach" })
	return c.Start()
}

func runGovernor(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table, err := config.LoadTable(paths.TableFile)
	if err != nil {
		log.Error("Frequency table unusable", err, "path", paths.TableFile)
		return &ExitError{err, 1}
	}

	version, dcs := gpu.Detect()
	state := gpu.NewState(table, version, dcs)
	if version == gpu.V2 {
		state.V2Supported = gpu.SupportedFreqs()
	}
	state.WarnUnsupported()

	src, err := sampler.New()
	if err != nil {
		log.Error("No usable load source", err)
		return &ExitError{err, 1}
	}
	state.Precise = src.Precise()

	cfg, err := config.Load(paths.PolicyFile)
	if err != nil {
		log.Warn("Policy file unreadable, using defaults", "cause", err)
		cfg = config.Default()
	}
	initial := cfg.DeltaFor(cfg.Global.Mode, false)
	state.Policy = initial.Policy
	state.Mode = initial.Mode
	state.Gaming = initial.Gaming
	if initial.IdleThreshold > 0 {
		state.Idle.Threshold = initial.IdleThreshold
	}
	state.SetCurrent(table.StartFreq(state.Mode))
	if err := file.WriteMarker(paths.CurrentMode, state.Mode); err != nil {
		log.Warn("Current-mode marker write failed", "cause", err)
	}

	log.Info("Governor starting",
		"version", build.Version(),
		"driver", state.Version,
		"dcs", state.DCSEnabled,
		"precise", state.Precise,
		"mode", state.Mode,
		"freq_min", table.MinFreq(),
		"freq_max", table.MaxFreq(),
		"entries", table.Len(),
	)

	deltas := make(chan config.Delta, 8)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return governor.New(state, src, deltas).Run(ctx) })
	g.Go(func() error { return watcher.NewPolicy(deltas).Run(ctx) })
	g.Go(func() error { return watcher.NewTable(state.Clone()).Run(ctx) })
	g.Go(func() error { return watcher.NewGameMode(deltas).Run(ctx) })
	g.Go(func() error { return watcher.NewLogLevel().Run(ctx) })
	g.Go(func() error { return watcher.NewForeground(deltas).Run(ctx) })

	err = g.Wait()

	// Hand frequency control back before exiting.
	if rerr := state.Driver.Release(); rerr != nil {
		log.Warn("Final release failed", "cause", rerr)
	}
	if state.Gaming {
		if rerr := state.DDR.Auto(); rerr != nil {
			log.Warn("Final DDR release failed", "cause", rerr)
		}
	}

	if errors.Is(err, context.Canceled) {
		log.Info("Done")
		return nil
	}
	return &ExitError{err, 1}
}
