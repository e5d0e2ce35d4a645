package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/layout"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	opts := cfg.PipelineOptions()
	if opts.Geometry.MinLaneHeight != 150 || opts.Colors.MixRatio != 0.75 {
		t.Errorf("options = %+v", opts)
	}
	if opts.Layout.Direction != layout.LeftToRight || opts.Geometry.Direction != layout.LeftToRight {
		t.Errorf("direction = %s/%s", opts.Layout.Direction, opts.Geometry.Direction)
	}
}

func TestDecodeOverlaysDefaults(t *testing.T) {
	src := `
[layout]
engine = "layered"
direction = "tb"

[layout.sizes]
task = { width = 120, height = 90 }

[geometry]
min_lane_height = 200

[document]
executable = true

[cache]
backend = "none"
ttl = "1h"
`
	cfg, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cfg.Layout.Engine != "layered" || cfg.Geometry.MinLaneHeight != 200 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if !cfg.PipelineOptions().Document.Executable {
		t.Error("[document] executable not carried into the export options")
	}
	if cfg.Layout.NodeSpacing != Default().Layout.NodeSpacing {
		t.Errorf("NodeSpacing = %v, want default", cfg.Layout.NodeSpacing)
	}
	if got := cfg.Layout.Sizes["task"]; got != (layout.Size{Width: 120, Height: 90}) {
		t.Errorf("task size = %+v", got)
	}
	if got := cfg.Layout.Sizes["event"]; got != (layout.Size{Width: 36, Height: 36}) {
		t.Errorf("event size = %+v, want default", got)
	}
	if cfg.Cache.TTL.Duration != time.Hour {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
	if cfg.PipelineOptions().Layout.Direction != layout.TopToBottom {
		t.Error("direction should be upper-cased")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"Syntax", "[layout\n"},
		{"UnknownKey", "[layout]\nengin = \"dot\"\n"},
		{"Engine", "[layout]\nengine = \"neato\"\n"},
		{"MixRatio", "[colors]\nmix_ratio = 1.5\n"},
		{"SizeKey", "[layout.sizes]\nwidget = { width = 1, height = 1 }\n"},
		{"ZeroSize", "[layout.sizes]\ntask = { width = 0, height = 1 }\n"},
		{"Backend", "[cache]\nbackend = \"memcached\"\n"},
		{"RedisURL", "[cache]\nbackend = \"redis\"\nredis_url = \"http://x\"\n"},
		{"MongoURI", "[source]\nmongo_uri = \"postgres://x\"\n"},
		{"TTL", "[cache]\nttl = \"soon\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.src))
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("err = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestEncodeRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := Default().Encode(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"[layout]", "[geometry]", "min_lane_height = 150.0", "[cache]", `ttl = "168h0m0s"`} {
		if !strings.Contains(out, want) {
			t.Errorf("encoded config lacks %q:\n%s", want, out)
		}
	}

	cfg, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode encoded defaults: %v", err)
	}
	if cfg.Cache.TTL != Default().Cache.TTL || len(cfg.Layout.Sizes) != len(Default().Layout.Sizes) {
		t.Errorf("round trip changed the config: %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flowlane.toml")
	if err := os.WriteFile(path, []byte("[server]\naddr = \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("missing file err = %v", err)
	}
}
