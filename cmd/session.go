package cmd

import (
	"fmt"
	"os"

	"github.com/grovetools/remux/cli"
	"github.com/grovetools/remux/pkg/lifecycle"
	"github.com/grovetools/remux/pkg/naming"
	"github.com/spf13/cobra"
)

func newAttachCmd(factory AppFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "attach [name]",
		Short: "Attach to a running session",
		Long: `Attaches the terminal to a session. Inside tmux the current client is
switched instead. Without a name, the session named after the current
directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory(cmd)
			if err != nil {
				return err
			}
			name, err := nameOrDefault(args)
			if err != nil {
				return err
			}
			return app.Controller.Attach(cmd.Context(), name)
		},
	}
}

func newStopCmd(factory AppFactory) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "stop <name>",
		Short: "Kill a session and delete its record",
		Long: `Kills the tmux session and deletes the record. The record is deleted
even when killing the session fails, so a stopped session never lingers
in 'remux list'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory(cmd)
			if err != nil {
				return err
			}

			var confirm lifecycle.ConfirmFunc
			switch {
			case yes:
				confirm = func(string) bool { return true }
			case app.Prompter != nil:
				confirm = app.Prompter.ConfirmStop
			}

			res, err := app.Controller.Stop(cmd.Context(), args[0], confirm)
			if err != nil {
				return err
			}
			if cli.GetOptions(cmd).JSONOutput {
				return printJSON(app.out(), res)
			}
			p := pretty(cmd)
			p.Success(fmt.Sprintf("Stopped %s", res.Name))
			if !res.WasLive {
				p.Hint("tmux session was not running; removed the stale record")
			}
			if !res.HadRecord {
				p.Hint("there was no record for this session")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func newRenameCmd(factory AppFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a session",
		Long: `Renames the tmux session and moves the record. The new name must be
free; it is never suffixed automatically.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory(cmd)
			if err != nil {
				return err
			}
			rec, err := app.Controller.Rename(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if cli.GetOptions(cmd).JSONOutput {
				return printJSON(app.out(), rec)
			}
			p := pretty(cmd)
			p.Success(fmt.Sprintf("Renamed %s to %s", args[0], rec.Name))
			sessionHints(p, rec.Name)
			return nil
		},
	}
}

func newRecoverCmd(factory AppFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "recover <name>",
		Short: "Restart a session's tunnel and rediscover its URL",
		Long: `Replaces only the tunnel window of a running session, waits for the new
public URL and updates the record. The assistant window is untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory(cmd)
			if err != nil {
				return err
			}
			if err := app.RequireBinaries("tunnel"); err != nil {
				return err
			}
			rec, err := app.Controller.Recover(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if cli.GetOptions(cmd).JSONOutput {
				return printJSON(app.out(), rec)
			}
			p := pretty(cmd)
			p.Success(fmt.Sprintf("Recovered %s", rec.Name))
			printSession(p, rec)
			return nil
		},
	}
}

func nameOrDefault(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return naming.DefaultName(wd), nil
}
