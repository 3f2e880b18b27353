package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/grovetools/remux/cli"
	"github.com/grovetools/remux/pkg/lifecycle"
	"github.com/grovetools/remux/tui/components/table"
	"github.com/grovetools/remux/tui/theme"
	"github.com/spf13/cobra"
)

func newInfoCmd(factory AppFactory) *cobra.Command {
	var asYAML bool
	cmd := &cobra.Command{
		Use:   "info <name>",
		Short: "Show a session's record next to its live tmux state",
		Long: `Shows what is recorded on disk and what tmux reports right now, labelled
separately since the two can disagree. Disagreements are listed as
warnings; nothing is changed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := factory(cmd)
			if err != nil {
				return err
			}
			info, err := app.Controller.Info(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			switch {
			case cli.GetOptions(cmd).JSONOutput:
				return printJSON(app.out(), info)
			case asYAML:
				return printYAML(app.out(), info)
			default:
				renderInfo(app.out(), info)
				return nil
			}
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Output in YAML format")
	return cmd
}

func renderInfo(w io.Writer, info lifecycle.Info) {
	t := theme.DefaultTheme
	fmt.Fprintln(w, t.SessionName.Render(info.Name))

	fmt.Fprintln(w, "\n"+t.Bold.Render("disk"))
	switch {
	case info.Disk != nil:
		url := info.Disk.PublicURL
		if url == "" {
			url = t.Muted.Render("(not discovered)")
		} else {
			url = t.URL.Render(url)
		}
		fmt.Fprintln(w, table.StatusTable([][2]string{
			{"url", url},
			{"directory", info.Disk.WorkingDirectory},
			{"created", info.Disk.CreatedAt.Local().Format(time.RFC3339)},
			{"updated", info.Disk.UpdatedAt.Local().Format(time.RFC3339)},
		}))
	case info.DiskErr != "":
		fmt.Fprintln(w, "  "+t.Error.Render(info.DiskErr))
	default:
		fmt.Fprintln(w, "  "+t.Muted.Render("no record"))
	}

	fmt.Fprintln(w, "\n"+t.Bold.Render("live")+"  "+theme.RenderLiveness(info.Live.Running))
	if len(info.Live.Windows) > 0 {
		rows := make([][]string, 0, len(info.Live.Windows))
		for _, win := range info.Live.Windows {
			pid := "-"
			if win.PID > 0 {
				pid = strconv.Itoa(win.PID)
			}
			rows = append(rows, []string{win.Name, win.Command, pid, string(win.Process)})
		}
		fmt.Fprintln(w, table.SimpleTable([]string{"WINDOW", "COMMAND", "PID", "PROCESS"}, rows))
	}

	if len(info.Warnings) > 0 {
		fmt.Fprintln(w)
		for _, warning := range info.Warnings {
			fmt.Fprintln(w, t.Warning.Render(theme.IconWarning+" "+warning))
		}
	}
}
