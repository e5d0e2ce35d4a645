package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlane/pkg/pipeline"
)

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export a process table as a BPMN 2.0 document",
		Long: `Export lays out a process table and writes it as BPMN 2.0 XML with
diagram interchange.

The table is read from a JSON or YAML snapshot file, or from MongoDB with
--mongo-uri. Files holding several tables need --table unless the command
runs in a terminal, where a picker is shown.`,
		Example: `  flowlane export orders.yaml
  flowlane export tables.json --table order-intake -o diagrams/intake.bpmn
  flowlane export orders.yaml --direction TB --engine layered
  flowlane export --mongo-uri mongodb://localhost:27017 --table order-intake -o -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.Context(), &flags, args, ".bpmn", (*pipeline.Service).Export)
		},
	}

	flags.register(cmd)
	return cmd
}
