package cmd

import (
	"fmt"

	"github.com/grovetools/remux/config"
	"github.com/grovetools/remux/pkg/sessions"
	"github.com/spf13/cobra"
)

// NewSchemaCmd prints the JSON Schema of session records or of the
// configuration file.
func NewSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of session records",
		Long: `Print the JSON Schema that session record files conform to.

With --config, print the schema of remux.yml instead; point your editor's YAML
language server at it for completion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			forConfig, _ := cmd.Flags().GetBool("config-file")

			generate := sessions.GenerateSchema
			if forConfig {
				generate = config.GenerateSchema
			}
			data, err := generate()
			if err != nil {
				return fmt.Errorf("failed to generate schema: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().Bool("config-file", false, "Print the configuration file schema")
	return cmd
}
