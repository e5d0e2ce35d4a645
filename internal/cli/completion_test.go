package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlane/pkg/process"
)

func writeTwoTables(t *testing.T) string {
	t.Helper()
	a, b := process.Sample(), process.Sample()
	b.TableID, b.Name = "second", "Second table"
	data, err := json.Marshal(process.Bundle{Tables: []process.Snapshot{a, b}})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "tables.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func complete(t *testing.T, args ...string) []string {
	t.Helper()
	out, err := execute(t, append([]string{cobra.ShellCompRequestCmd}, args...)...)
	if err != nil {
		t.Fatalf("complete %v: %v", args, err)
	}
	var items []string
	for _, line := range strings.Split(out, "\n") {
		if line == "" || strings.HasPrefix(line, ":") || strings.HasPrefix(line, "Completion ended") {
			continue
		}
		items = append(items, line)
	}
	return items
}

func TestFlagCompletions(t *testing.T) {
	tables := writeTwoTables(t)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"tables", []string{"export", tables, "--table", ""}, []string{"order-intake\tOrder intake", "second\tSecond table"}},
		{"tables by prefix", []string{"layout", tables, "--table", "sec"}, []string{"second\tSecond table"}},
		{"tables without file", []string{"export", "--table", ""}, nil},
		{"engines", []string{"export", "--engine", ""}, []string{"graphviz", "layered"}},
		{"engines by prefix", []string{"export", "--engine", "la"}, []string{"layered"}},
		{"directions", []string{"export", "--direction", "t"}, []string{"TB\ttop to bottom"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := complete(t, tt.args...)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("completions = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCompletionScripts(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := execute(t, "completion", shell)
		if err != nil {
			t.Fatalf("%s: %v", shell, err)
		}
		if !strings.Contains(out, appName) {
			t.Errorf("%s script does not mention %s", shell, appName)
		}
	}
}
