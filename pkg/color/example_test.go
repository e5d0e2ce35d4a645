package color_test

import (
	"fmt"

	"github.com/matzehuels/flowlane/pkg/color"
)

func ExampleResolve() {
	cfg := color.DefaultConfig()

	blue := color.Resolve("#3B82F6", cfg)
	fmt.Println("fill:", blue.Fill)
	fmt.Println("stroke:", blue.Stroke)

	// Short form and lower case are accepted.
	fmt.Println("short:", color.Resolve("3bf", cfg).Stroke)

	// Anything unparseable falls back.
	fallback := color.Resolve("blue", cfg)
	fmt.Println("fallback:", fallback.Fill, fallback.Stroke)
	// Output:
	// fill: #CEE0FD
	// stroke: #3B82F6
	// short: #33BBFF
	// fallback: #E4E8ED #94A3B8
}
