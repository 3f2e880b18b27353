// Package cmd implements the remux command surface.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grovetools/remux/cli"
	"github.com/grovetools/remux/pkg/profiling"
	"github.com/grovetools/remux/tui"
	"github.com/grovetools/remux/version"
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the remux command tree. Session commands obtain
// their collaborators from factory.
func NewRootCmd(factory AppFactory) *cobra.Command {
	root := cli.NewStandardCommand("remux", "Durable remote-work sessions: tmux plus a public tunnel")
	root.Long = `remux pairs a tmux session running your coding assistant with an ngrok
tunnel to the same port, and remembers the public URL so you can reach the
session from anywhere.

Examples:
  # Create a session for the current directory and attach
  remux init

  # Create a named session without attaching
  remux init demo --no-attach

  # Replace a dead tunnel
  remux recover demo`
	cli.SetVersionTemplate(root, version.GetInfo())

	profiler := profiling.NewCobraProfiler()
	profiler.AddFlags(root)
	profiler.Wrap(root)

	root.AddCommand(
		newInitCmd(factory),
		newAttachCmd(factory),
		newStopCmd(factory),
		newListCmd(factory),
		newRenameCmd(factory),
		newInfoCmd(factory),
		newRecoverCmd(factory),
		NewDoctorCmd(),
		NewLogsCmd(),
		NewPathsCmd(),
		NewSchemaCmd(),
		NewConfigCmd(),
		cli.NewVersionCommand(),
	)
	cli.ApplyStyledHelpRecursive(root)
	return root
}

// Execute runs remux and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tui.InitializeTerminal()
	root := NewRootCmd(NewApp)
	if err := root.ExecuteContext(ctx); err != nil {
		verbose, _ := root.PersistentFlags().GetBool("verbose")
		cli.NewErrorHandler(verbose).Handle(err)
		return 1
	}
	return 0
}
