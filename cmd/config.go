package cmd

import (
	"fmt"

	"github.com/huangsam/starspin/internal/contract"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// configCmd prints the resolved configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration as YAML.",
	Long: `Show the configuration after merging defaults, .starspin.yaml, STARSPIN_*
environment variables and flags, in that order of precedence.

Connection strings and object store credentials are never printed.

Examples:
  # Start a config file from the current settings
  starspin config > .starspin.yaml`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(cmd *cobra.Command, _ []string) {
		out, err := renderConfig(cfg)
		if err != nil {
			contract.LogFatal("Cannot render configuration", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
	},
}

// renderConfig marshals the config; secret fields are tagged out of the YAML.
func renderConfig(c *contract.Config) (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}
