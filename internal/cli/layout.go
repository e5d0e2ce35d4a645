package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlane/pkg/pipeline"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "layout [file]",
		Short: "Write the computed layout of a process table as JSON",
		Long: `Layout runs the export pipeline up to lane colors and writes node
bounds, flow waypoints, lane bands and colors as JSON instead of BPMN.
It is useful for custom renderers and for checking how a table will be
arranged.`,
		Example: `  flowlane layout orders.yaml
  flowlane layout orders.yaml -o - | jq '.layout.lanes'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.Context(), &flags, args, ".layout.json", (*pipeline.Service).Layout)
		},
	}

	flags.register(cmd)
	return cmd
}
