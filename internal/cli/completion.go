package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlane/pkg/pipeline"
	"github.com/matzehuels/flowlane/pkg/source/file"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for your shell. Besides commands and flags it
completes --engine, --direction and, once a snapshot file is given,
the table ids inside it for --table.

  $ source <(flowlane completion bash)
  $ flowlane completion zsh > "${fpath[1]}/_flowlane"
  $ flowlane completion fish > ~/.config/fish/completions/flowlane.fish
  PS> flowlane completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return fmt.Errorf("unsupported shell %q", args[0])
		},
	}
}

// registerCompletions wires dynamic completions for the export and layout
// flags.
func registerCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("table", completeTables)
	_ = cmd.RegisterFlagCompletionFunc("engine", completeEngines)
	_ = cmd.RegisterFlagCompletionFunc("direction", completeDirections)
}

// completeTables lists the table ids of the snapshot file given as first
// argument. Without a file there is nothing to offer.
func completeTables(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	src, err := file.Open(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer src.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	tables, err := src.Tables(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var out []string
	for _, t := range tables {
		if !strings.HasPrefix(t.TableID, toComplete) {
			continue
		}
		entry := t.TableID
		if t.Name != "" {
			entry += "\t" + t.Name
		}
		out = append(out, entry)
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func completeEngines(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, name := range pipeline.EngineNames() {
		if strings.HasPrefix(name, toComplete) {
			out = append(out, name)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func completeDirections(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, d := range []string{"LR\tleft to right", "TB\ttop to bottom"} {
		if strings.HasPrefix(d, strings.ToUpper(toComplete)) {
			out = append(out, d)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}
