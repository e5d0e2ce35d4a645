package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/flowlane/pkg/process"
)

// Direction is the primary flow axis.
type Direction string

const (
	LeftToRight Direction = "LR"
	TopToBottom Direction = "TB"
)

// ParseDirection accepts LR/TB in any case. Empty means LeftToRight.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "LR":
		return LeftToRight, nil
	case "TB":
		return TopToBottom, nil
	default:
		return "", fmt.Errorf("unknown direction %q (want LR or TB)", s)
	}
}

// Horizontal reports whether flow runs left to right, with lanes stacked
// top to bottom.
func (d Direction) Horizontal() bool { return d != TopToBottom }

// SizeTable holds element sizes keyed by "kind" or "kind/subtype".
type SizeTable map[string]Size

// DefaultSize is used for kinds missing from a SizeTable.
var DefaultSize = Size{Width: 100, Height: 80}

// DefaultSizes returns the stock element sizes.
func DefaultSizes() SizeTable {
	return SizeTable{
		string(process.KindEvent):   {Width: 36, Height: 36},
		string(process.KindTask):    {Width: 100, Height: 80},
		string(process.KindGateway): {Width: 50, Height: 50},
		string(process.KindTask) + "/" + process.SubtypeSubprocess: {Width: 350, Height: 200},
	}
}

// Lookup returns the size for kind/subtype, then kind, then DefaultSize.
func (t SizeTable) Lookup(kind process.Kind, subtype string) Size {
	if subtype != "" {
		if s, ok := t[string(kind)+"/"+subtype]; ok {
			return s
		}
	}
	if s, ok := t[string(kind)]; ok {
		return s
	}
	return DefaultSize
}

// Config is the fixed layout configuration of one export.
type Config struct {
	Engine      string    `json:"engine"`
	Direction   Direction `json:"direction"`
	NodeSpacing float64   `json:"nodeSpacing"`
	RankSpacing float64   `json:"rankSpacing"`
	Sizes       SizeTable `json:"sizes"`
}

// DefaultConfig returns the stock configuration: Graphviz, left to right.
func DefaultConfig() Config {
	return Config{
		Engine:      "graphviz",
		Direction:   LeftToRight,
		NodeSpacing: 40,
		RankSpacing: 60,
		Sizes:       DefaultSizes(),
	}
}

// Validate rejects unusable settings.
func (c Config) Validate() error {
	if _, err := ParseDirection(string(c.Direction)); err != nil {
		return err
	}
	if c.NodeSpacing < 0 || c.RankSpacing < 0 {
		return fmt.Errorf("spacing must not be negative")
	}
	for key, s := range c.Sizes {
		if s.Width <= 0 || s.Height <= 0 {
			return fmt.Errorf("size %q must be positive, got %gx%g", key, s.Width, s.Height)
		}
	}
	return nil
}
