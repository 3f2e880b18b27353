package cmd

import (
	"github.com/grovetools/remux/cli"
	"github.com/grovetools/remux/pkg/paths"
	"github.com/spf13/cobra"
)

// PathsOutput lists the files and directories remux reads and writes.
type PathsOutput struct {
	ConfigDir  string `json:"config_dir"`
	ConfigFile string `json:"config_file,omitempty"`
	StateDir   string `json:"state_dir"`
	StoreDir   string `json:"store_dir"`
	LogsDir    string `json:"logs_dir"`
	CacheDir   string `json:"cache_dir"`
}

// NewPathsCmd prints the resolved remux paths as JSON.
func NewPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the paths used by remux",
		Long: `Print the paths used by remux as JSON.

- config_dir: where remux.yml is looked up
- config_file: the configuration file in effect, if any
- state_dir: runtime state (records, logs)
- store_dir: one JSON record per session
- logs_dir: the shared log file
- cache_dir: regenerable data

Set REMUX_HOME to keep everything under a single directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := PathsOutput{
				ConfigDir:  paths.ConfigDir(),
				ConfigFile: cli.InitConfig(cli.GetOptions(cmd).ConfigFile),
				StateDir:   paths.StateDir(),
				StoreDir:   paths.SessionsDir(),
				LogsDir:    paths.LogsDir(),
				CacheDir:   paths.CacheDir(),
			}
			if cfg, err := cli.LoadConfig(cmd); err == nil && cfg.Store.Dir != "" {
				output.StoreDir = cfg.Store.Dir
			}
			return printJSON(cmd.OutOrStdout(), output)
		},
	}

	return cmd
}
