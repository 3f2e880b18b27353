package cmd

import (
	"fmt"

	"github.com/grovetools/remux/cli"
	"github.com/grovetools/remux/errors"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

// NewConfigCmd prints the effective configuration after defaults and
// environment overrides.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration remux runs with: the file in effect merged over the
built-in defaults, with REMUX_* environment overrides applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if source := cli.InitConfig(cli.GetOptions(cmd).ConfigFile); source != "" {
				fmt.Fprintf(out, "# Source: %s\n", source)
			} else {
				fmt.Fprintln(out, "# Source: built-in defaults")
			}

			switch format {
			case "yaml", "yml":
				return printYAML(out, cfg)
			case "toml":
				data, err := toml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to marshal TOML: %w", err)
				}
				_, err = out.Write(data)
				return err
			default:
				return errors.New(errors.ErrCodeInvalidInput,
					fmt.Sprintf("unknown format %q (want yaml or toml)", format))
			}
		},
	}
	cmd.Flags().String("format", "yaml", "Output format: yaml or toml")
	return cmd
}
