package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/flowlane/pkg/process"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv(configEnv, "")
	stdinIsTerminal = func() bool { return false }

	var logs bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSampleThenExport(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "orders.yaml")
	out := filepath.Join(dir, "out", "orders.bpmn")

	if _, err := execute(t, "sample", "-o", in); err != nil {
		t.Fatalf("sample: %v", err)
	}
	if _, err := os.Stat(in); err != nil {
		t.Fatalf("sample file: %v", err)
	}

	if _, err := execute(t, "export", in, "-o", out, "--engine", "layered"); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("bpmn:definitions")) {
		t.Errorf("output is not a BPMN document:\n%s", data)
	}
}

func TestLayoutWritesJSON(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "orders.json")
	out := filepath.Join(dir, "orders.layout.json")

	if _, err := execute(t, "sample", "-o", in); err != nil {
		t.Fatalf("sample: %v", err)
	}
	if _, err := execute(t, "layout", in, "-o", out, "-e", "layered", "--no-cache"); err != nil {
		t.Fatalf("layout: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"tableId": "order-intake"`)) {
		t.Errorf("layout JSON missing table id:\n%s", data)
	}
}

func TestExportErrors(t *testing.T) {
	dir := t.TempDir()
	single := filepath.Join(dir, "orders.json")
	if _, err := execute(t, "sample", "-o", single); err != nil {
		t.Fatal(err)
	}

	bundle := filepath.Join(dir, "bundle.json")
	a, b := process.Sample(), process.Sample()
	b.TableID = "second"
	data, err := json.Marshal(process.Bundle{Tables: []process.Snapshot{a, b}})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(bundle, data, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no input", []string{"export"}, "no input"},
		{"missing file", []string{"export", filepath.Join(dir, "nope.json")}, "nope.json"},
		{"unknown engine", []string{"export", single, "-e", "dot"}, "dot"},
		{"bad direction", []string{"export", single, "-d", "RL"}, "direction"},
		{"unknown table", []string{"export", single, "-t", "missing"}, "missing"},
		{"ambiguous bundle", []string{"export", bundle}, "--table"},
		{"file and mongo", []string{"export", single, "--mongo-uri", "mongodb://localhost"}, "not both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	out, err := execute(t, "config", "--defaults")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[layout]", "[cache]", "engine = \"graphviz\""} {
		if !strings.Contains(out, want) {
			t.Errorf("config output missing %q:\n%s", want, out)
		}
	}
}

func TestCachePath(t *testing.T) {
	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), appName) {
		t.Errorf("cache path = %q", out)
	}
}

func TestDefaultOutputStaysInWorkingDir(t *testing.T) {
	root := t.TempDir()
	work := filepath.Join(root, "work")
	if err := os.Mkdir(work, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(work)

	for _, id := range []string{"../escaped", "sales/q1"} {
		t.Run(id, func(t *testing.T) {
			snap := process.Sample()
			snap.TableID = id
			data, err := json.Marshal(snap)
			if err != nil {
				t.Fatal(err)
			}
			in := filepath.Join(root, "table.json")
			if err := os.WriteFile(in, data, 0o644); err != nil {
				t.Fatal(err)
			}

			_, err = execute(t, "export", in, "-e", "layered", "--no-cache")
			if err == nil || !strings.Contains(err.Error(), "-o") {
				t.Fatalf("err = %v, want a hint to pass -o", err)
			}
			for _, p := range []string{
				filepath.Join(root, "escaped.bpmn"),
				filepath.Join(work, "sales", "q1.bpmn"),
			} {
				if _, err := os.Stat(p); err == nil {
					t.Errorf("%s was written", p)
				}
			}

			out := filepath.Join(work, "named.bpmn")
			if _, err := execute(t, "export", in, "-e", "layered", "--no-cache", "-o", out); err != nil {
				t.Fatalf("explicit -o: %v", err)
			}
		})
	}
}

func TestTableFlagRejectsPaths(t *testing.T) {
	in := filepath.Join(t.TempDir(), "orders.json")
	if _, err := execute(t, "sample", "-o", in); err != nil {
		t.Fatal(err)
	}
	_, err := execute(t, "export", in, "--table", "../order-intake")
	if err == nil || !strings.Contains(err.Error(), "invalid characters") {
		t.Errorf("err = %v, want invalid table id", err)
	}
}
