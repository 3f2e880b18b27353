// Package cli holds the cobra plumbing shared by every remux command:
// standard flags, styled help, error reporting and interactive prompts.
package cli

import (
	"os"

	"github.com/grovetools/remux/config"
	"github.com/grovetools/remux/logging"
	"github.com/grovetools/remux/pkg/paths"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommandOptions holds the persistent flags shared by all commands.
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a root command carrying the standard flags.
// Before any subcommand runs, --config is exported as REMUX_CONFIG and
// --verbose/--json are applied to the shared logger.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts := GetOptions(cmd)
			if opts.ConfigFile != "" {
				if err := os.Setenv(config.EnvConfigPath, opts.ConfigFile); err != nil {
					return err
				}
				logging.Reset()
			}
			logging.SetVerbose(opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to remux.yml config file")

	SetStyledHelp(cmd)
	return cmd
}

// GetLogger returns the logger for the running command.
func GetLogger(cmd *cobra.Command) *logrus.Entry {
	return logging.NewLogger("cli").WithField("command", cmd.Name())
}

// GetOptions extracts the persistent flags.
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}

// InitConfig returns the config file in effect: the flag value, then
// $REMUX_CONFIG, then the first file found in the config directory. An
// empty result means defaults are used.
func InitConfig(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if env := os.Getenv(config.EnvConfigPath); env != "" {
		return env
	}
	found, err := config.FindConfigFile(paths.ConfigDir())
	if err != nil {
		return ""
	}
	return found
}

// LoadConfig loads the configuration selected by the command's flags.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	if path := GetOptions(cmd).ConfigFile; path != "" {
		return config.Load(path)
	}
	return config.LoadDefault()
}
