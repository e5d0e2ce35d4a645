package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlane/pkg/config"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as TOML",
		Long: `Config prints the configuration flowlane would run with: the file named
by --config or $` + configEnv + ` merged over the defaults. Use --defaults
to print a complete starting point for a config file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if !defaults {
				var err error
				if cfg, err = c.loadConfig(); err != nil {
					return err
				}
			}
			return cfg.Encode(cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "ignore config files and print the defaults")
	return cmd
}
