package cmd

import (
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/seyud/gpugov/log"
)

// NewCmdStop returns the [cobra.Command] used for stopping a running
// governor. SIGINT triggers the graceful shutdown path that hands
// frequency control back to the kernel driver.
//
// Usage:
//
//	gpugov stop [flags]
//
// Flags:
//
//	-P, --pid int   PID of the process
//	-h, --help      help for stop
func NewCmdStop() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stop",
		Short:   "Stop a running governor",
		GroupID: "commands",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pid := cmd.Flags().Lookup("pid"); pid != nil && pid.Changed && pid.Value.String() != pid.DefValue {
				c := "ps cax | grep -qe '" + pid.Value.String() + "[[:space:]].*gpugov' && kill -2 " + pid.Value.String()
				log.Debug("Stopping", "pid", pid.Value)
				return exec.Command("sh", "-c", c).Run()
			}
			return exec.Command("sh", "-c", "kill -2 $(pidof gpugov)").Run()
		},
	}

	cmd.Flags().IntP("pid", "P", 0, "PID of the process")

	cmd.SetHelpTemplate(cmd.HelpTemplate() + "\n" + fullDocsFooter + "\n")

	return cmd
}

func init() {
	RootCommand.AddCommand(NewCmdStop())
}
