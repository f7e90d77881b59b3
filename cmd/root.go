// Package cmd implements the gpugov command line.
package cmd

import (
	"fmt"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/seyud/gpugov/internal/build"
)

// CleanupFunc is run after the invoked command returns.
type CleanupFunc func()

var cleanup []CleanupFunc

// AddCleanup registers f to run when the command finishes.
func AddCleanup(f CleanupFunc) {
	cleanup = append(cleanup, f)
}

// RootCommand is the base [cobra.Command] all subcommands hang off.
var RootCommand = &cobra.Command{
	Use:     "gpugov",
	Short:   "Userspace GPU DVFS governor for Mediatek Mali devices",
	Version: build.Version(),
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		for _, f := range cleanup {
			f()
		}
	},
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
}

func init() {
	RootCommand.AddGroup(
		&cobra.Group{ID: "commands", Title: "Commands:"},
	)
}

// Execute runs the root command.
func Execute() error {
	return RootCommand.Execute()
}

// Error prints err on the root command's error output.
func Error(err error) {
	RootCommand.PrintErrln("Error:", err)
}

// Usage prints the root command's usage.
func Usage() {
	RootCommand.Usage()
}

// ExitError is an error that should cause the program to exit with the
// given code.
type ExitError struct {
	Err  error
	Code int
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

const banner = `┌──────────────────────────────────────────┐
│                                          │
│    ██████╗ ██████╗ ██╗   ██╗             │
│   ██╔════╝ ██╔══██╗██║   ██║             │
│   ██║  ███╗██████╔╝██║   ██║             │
│   ██║   ██║██╔═══╝ ██║   ██║             │
│   ╚██████╔╝██║     ╚██████╔╝             │
│    ╚═════╝ ╚═╝      ╚═════╝ governor     │
│                                          │
│     Version: {{printf "%%-18.18s" .Version}}          │
│     Build Time: %-24.24s │
│                                          │
└──────────────────────────────────────────┘
`

// BannerTemplate returns the string used for templating the banner.
func BannerTemplate() string {
	return fmt.Sprintf(banner, build.BuildTime())
}

// PrintBanner prints the banner to the given command's output.
func PrintBanner(cmd *cobra.Command) error {
	t := template.New("banner")

	template.Must(t.Parse(BannerTemplate()))

	return t.Execute(cmd.OutOrStdout(), cmd.Root())
}

const fullDocsFooter = `Full documentation is available at:
https://pkg.go.dev/github.com/seyud/gpugov`
