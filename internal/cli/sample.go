package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlane/pkg/process"
)

// sampleCommand creates the sample command.
func (c *CLI) sampleCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write an example process table to start from",
		Example: `  flowlane sample -o orders.yaml
  flowlane sample -o - > orders.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := process.Sample()
			if output == "-" {
				return process.WriteSnapshot(cmd.OutOrStdout(), snap, process.FormatJSON)
			}
			if output == "" {
				output = snap.ID() + ".yaml"
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := process.WriteSnapshot(f, snap, process.FormatFromPath(output)); err != nil {
				f.Close()
				return fmt.Errorf("write %s: %w", output, err)
			}
			if err := f.Close(); err != nil {
				return err
			}

			printSuccess("Sample table %s", snap.DisplayName())
			printFile(output)
			printNextStep("Export it", "flowlane export "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `output file, .json or .yaml ("-" for JSON on stdout)`)
	return cmd
}
