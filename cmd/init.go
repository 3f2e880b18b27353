package cmd

import (
	"fmt"

	"github.com/grovetools/remux/cli"
	"github.com/grovetools/remux/pkg/lifecycle"
	"github.com/grovetools/remux/pkg/naming"
	"github.com/grovetools/remux/pkg/sessions"
	"github.com/spf13/cobra"
)

const collisionPrompt = "prompt"

type initOutput struct {
	Session   sessions.Record `json:"session"`
	Requested string          `json:"requested"`
	Reused    bool            `json:"reused"`
}

func newInitCmd(factory AppFactory) *cobra.Command {
	var (
		onCollision string
		dir         string
		noAttach    bool
	)

	cmd := &cobra.Command{
		Use:   "init [name]",
		Short: "Create a session and attach to it",
		Long: `Creates a tmux session with an assistant window and a tunnel window,
waits for the tunnel's public URL, records the session and attaches.

Without a name the session is named after the working directory. If the
name is taken you are asked whether to reuse the existing session, create
a numbered one, or abort.

If the public URL does not appear in time, the session is still recorded
without a URL and init fails with a discovery timeout. 'remux list' shows
'-' for its URL until 'remux recover <name>' restarts the tunnel.

Examples:
  remux init
  remux init demo --no-attach
  remux init demo --on-collision suffix`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory(cmd)
			if err != nil {
				return err
			}
			if err := app.RequireBinaries("tunnel", "assistant"); err != nil {
				return err
			}
			wd, err := workingDirectory(dir)
			if err != nil {
				return err
			}
			decide, err := collisionDecider(app, onCollision)
			if err != nil {
				return err
			}

			var name string
			if len(args) == 1 {
				name = args[0]
			}

			log := cli.GetLogger(cmd)
			log.WithField("dir", wd).Debug("Initializing session")
			res, err := app.Controller.Init(cmd.Context(), lifecycle.InitOptions{
				Name:             name,
				WorkingDirectory: wd,
				Decide:           decide,
			})
			if err != nil {
				return err
			}

			opts := cli.GetOptions(cmd)
			if opts.JSONOutput {
				return printJSON(app.out(), initOutput{Session: res.Record, Requested: res.Requested, Reused: res.Reused})
			}

			p := pretty(cmd)
			switch {
			case res.Reused:
				p.Success(fmt.Sprintf("Reusing session %s", res.Record.Name))
			case res.Record.Name != res.Requested:
				p.Success(fmt.Sprintf("Session %s ready (%s was taken)", res.Record.Name, res.Requested))
			default:
				p.Success(fmt.Sprintf("Session %s ready", res.Record.Name))
			}
			printSession(p, res.Record)

			if noAttach {
				sessionHints(p, res.Record.Name)
				return nil
			}
			return app.Controller.Attach(cmd.Context(), res.Record.Name)
		},
	}

	cmd.Flags().StringVar(&onCollision, "on-collision", collisionPrompt, "When the name is taken: prompt, reuse, suffix, or abort")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Working directory for both windows (default: current directory)")
	cmd.Flags().BoolVar(&noAttach, "no-attach", false, "Do not attach after creating the session")
	return cmd
}

// collisionDecider maps --on-collision to a DecideFunc.
func collisionDecider(app *App, mode string) (lifecycle.DecideFunc, error) {
	if mode == "" || mode == collisionPrompt {
		if app.Prompter == nil {
			return nil, nil
		}
		return app.Prompter.DecideCollision, nil
	}
	decision, err := naming.ParseDecision(mode)
	if err != nil {
		return nil, err
	}
	return func(naming.Resolution) naming.Decision { return decision }, nil
}
