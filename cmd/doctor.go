package cmd

import (
	"fmt"

	"github.com/grovetools/remux/cli"
	"github.com/grovetools/remux/logging"
	"github.com/grovetools/remux/pkg/doctor"
	"github.com/grovetools/remux/tui/components/table"
	"github.com/grovetools/remux/tui/theme"
	"github.com/spf13/cobra"
)

// NewDoctorCmd checks the external tools, the record directory and the
// tunnel API.
func NewDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that tmux, ngrok and the assistant are usable",
		Long: `Check every external dependency remux drives.

Required binaries that are missing make doctor exit non-zero. The tunnel API
check only warns: it is expected to fail while no tunnel is running. Live
remux tmux sessions that have no record are reported as orphans.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			report := doctor.NewFromConfig(cfg, logging.NewLogger("doctor")).Run(cmd.Context())

			if cli.GetOptions(cmd).JSONOutput {
				if err := printJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
				return report.Err()
			}
			renderReport(cmd, report)
			return report.Err()
		},
	}
	return cmd
}

func renderReport(cmd *cobra.Command, report doctor.Report) {
	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		detail := res.Detail
		if res.Version != "" {
			detail = res.Version
		}
		rows = append(rows, []string{statusCell(res.Status), res.Name, detail})
	}
	fmt.Fprintln(cmd.OutOrStdout(), table.SimpleTable([]string{"", "CHECK", "DETAIL"}, rows))

	p := pretty(cmd)
	for _, res := range report.Results {
		if res.Status != doctor.StatusOK && res.Hint != "" {
			p.Hint(fmt.Sprintf("%s: %s", res.Name, res.Hint))
		}
	}
	if report.Healthy() {
		p.Success("All required dependencies are available")
	}
}

func statusCell(s doctor.Status) string {
	switch s {
	case doctor.StatusOK:
		return theme.RenderStatus("success", theme.IconSuccess)
	case doctor.StatusWarn:
		return theme.RenderStatus("warning", theme.IconWarning)
	default:
		return theme.RenderStatus("error", theme.IconError)
	}
}
