// Package color derives the fill, stroke and text colors of a lane from
// its configured base color.
//
// The stroke is the base color itself, the fill is the base blended toward
// white by a fixed ratio, and the text color is a fixed dark neutral. A
// missing or malformed base color silently resolves to the fallback color,
// so resolution never fails.
package color

import (
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/flowlane/pkg/flowgraph"
)

// Defaults.
const (
	DefaultMixRatio = 0.75
	DefaultFallback = "#94A3B8"
	DefaultFont     = "#1F2937"
)

var hexPattern = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Config holds the color constants.
type Config struct {
	// MixRatio is the share of white in the fill, in [0, 1].
	MixRatio float64 `json:"mixRatio"`
	Fallback string  `json:"fallback"`
	Font     string  `json:"font"`
}

// DefaultConfig returns the stock color constants.
func DefaultConfig() Config {
	return Config{MixRatio: DefaultMixRatio, Fallback: DefaultFallback, Font: DefaultFont}
}

// Triple is the resolved color set of a lane, each as upper-case #RRGGBB.
type Triple struct {
	Fill   string `json:"fill"`
	Stroke string `json:"stroke"`
	Font   string `json:"font"`
}

// Parse reads #RGB, RGB, #RRGGBB or RRGGBB in any case.
func Parse(s string) (colorful.Color, bool) {
	s = strings.TrimSpace(s)
	if !hexPattern.MatchString(s) {
		return colorful.Color{}, false
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return colorful.Color{}, false
	}
	return c, true
}

// Normalize returns s as upper-case #RRGGBB, or false if it does not parse.
func Normalize(s string) (string, bool) {
	c, ok := Parse(s)
	if !ok {
		return "", false
	}
	return hex(c), true
}

// Resolve derives the triple for a base color. Unparseable input uses the
// fallback; an unparseable fallback or font uses the package defaults.
func Resolve(base string, cfg Config) Triple {
	c, ok := Parse(base)
	if !ok {
		if c, ok = Parse(cfg.Fallback); !ok {
			c, _ = Parse(DefaultFallback)
		}
	}
	font, ok := Normalize(cfg.Font)
	if !ok {
		font = DefaultFont
	}
	ratio := min(max(cfg.MixRatio, 0), 1)
	white := colorful.Color{R: 1, G: 1, B: 1}
	return Triple{
		Fill:   hex(c.BlendRgb(white, ratio).Clamped()),
		Stroke: hex(c),
		Font:   font,
	}
}

// ResolveLanes resolves every lane of g, keyed by lane id.
func ResolveLanes(g *flowgraph.Graph, cfg Config) map[string]Triple {
	out := make(map[string]Triple, len(g.Lanes()))
	for _, l := range g.Lanes() {
		out[l.ID] = Resolve(l.Color, cfg)
	}
	return out
}

func hex(c colorful.Color) string { return strings.ToUpper(c.Hex()) }
