package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/seyud/gpugov/config"
	"github.com/seyud/gpugov/gpu"
	"github.com/seyud/gpugov/internal/paths"
	"github.com/seyud/gpugov/log"
)

// Flags for gpugov list
var (
	ListSummary bool // Display a summary instead of full tuning blocks
)

// NewCmdList returns the [cobra.Command] used for listing the configured
// modes and the frequency table.
//
// If --summary is specified, the list is a single line of mode names and
// the table range. Otherwise every tuning block and table entry is printed.
//
// Usage:
//
//	gpugov list [flags]
//
// Aliases:
//
//	list, l
func NewCmdList() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"l"},
		Short:   "List configured modes and the frequency table",
		GroupID: "commands",
		Args:    cobra.NoArgs,
		RunE:    listConfig,
	}

	cmd.Flags().SortFlags = false
	cmd.Flags().BoolVarP(&ListSummary, "summary", "s", false, "Display a summary")

	cmd.SetHelpTemplate(cmd.HelpTemplate() + "\n" + fullDocsFooter + "\n")

	return cmd
}

func init() {
	RootCommand.AddCommand(NewCmdList())
}

func printModes(w io.Writer, cfg *config.Config) {
	for _, name := range config.ModeNames {
		m := cfg.Mode(name)
		active := " "
		if name == cfg.Global.Mode {
			active = "*"
		}
		fmt.Fprintf(w, "%s [%s]\n", active, name)
		fmt.Fprintf(w, "    margin: %d%%\n", m.Margin)
		fmt.Fprintf(w, "    sampling_interval: %dms", m.SamplingInterval)
		if m.AdaptiveSampling {
			fmt.Fprintf(w, " (adaptive %d-%dms)", m.MinAdaptiveInterval, m.MaxAdaptiveInterval)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "    up/down delay: %dms/%dms\n", m.UpRateDelay, m.DownRateDelay)
		fmt.Fprintf(w, "    aggressive_down: %v  gaming_mode: %v\n", m.AggressiveDown, m.Gaming)
	}
}

func printTable(w io.Writer, table *gpu.Table) {
	fmt.Fprintln(w, "[freq_table]")
	for _, f := range table.Freqs() {
		fmt.Fprintf(w, "    %d kHz  %d uV  ddr_opp %d\n",
			f, table.VoltFor(f), table.DDROppFor(f),
		)
	}
}

func listConfig(cmd *cobra.Command, _ []string) error {
	log.SetLogLevel(log.LevelWarn)

	cfg, err := config.Load(paths.PolicyFile)
	if err != nil {
		cfg = config.Default()
	}

	table, err := config.LoadTable(paths.TableFile)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if ListSummary {
		for i, name := range config.ModeNames {
			if i > 0 {
				io.WriteString(w, ", ")
			}
			io.WriteString(w, name)
			if name == cfg.Global.Mode {
				io.WriteString(w, "*")
			}
		}
		fmt.Fprintf(w, " (%d entries, %d-%d kHz)\n",
			table.Len(), table.MinFreq(), table.MaxFreq(),
		)
		return nil
	}

	printModes(w, cfg)
	printTable(w, table)
	return nil
}
