package graphviz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/flowlane/pkg/layout"
)

// box is a Graphviz bounding box in points, y up.
type box struct {
	llx, lly, urx, ury float64
}

// rect converts b to a y-down rect given the y of the canvas top.
func (b box) rect(top float64) layout.Rect {
	return layout.Rect{X: b.llx, Y: top - b.ury, Width: b.urx - b.llx, Height: b.ury - b.lly}
}

// parseBB reads a "llx,lly,urx,ury" attribute.
func parseBB(s string) (box, error) {
	v, err := floats(s, 4)
	if err != nil {
		return box{}, fmt.Errorf("bb %q: %w", s, err)
	}
	return box{llx: v[0], lly: v[1], urx: v[2], ury: v[3]}, nil
}

// parsePoint reads an "x,y" attribute. A trailing "!" (pinned) is allowed.
func parsePoint(s string) (layout.Point, error) {
	v, err := floats(strings.TrimSuffix(s, "!"), 2)
	if err != nil {
		return layout.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	return layout.Point{X: v[0], Y: v[1]}, nil
}

// parseEdgePos reads an edge "pos" attribute into waypoints.
//
// The attribute is a B-spline: optional "s,x,y" and "e,x,y" arrow
// endpoints followed by 3n+1 control points. With splines=polyline the
// on-curve points (every third) are the polyline corners. Only the first
// spline of a multi-spline attribute is used.
func parseEdgePos(s string) ([]layout.Point, error) {
	spline, _, _ := strings.Cut(strings.TrimSpace(s), ";")
	var start, end *layout.Point
	var ctrl []layout.Point
	for _, f := range strings.Fields(spline) {
		switch {
		case strings.HasPrefix(f, "s,"):
			p, err := parsePoint(f[2:])
			if err != nil {
				return nil, err
			}
			start = &p
		case strings.HasPrefix(f, "e,"):
			p, err := parsePoint(f[2:])
			if err != nil {
				return nil, err
			}
			end = &p
		default:
			p, err := parsePoint(f)
			if err != nil {
				return nil, err
			}
			ctrl = append(ctrl, p)
		}
	}
	if len(ctrl) == 0 {
		return nil, fmt.Errorf("edge pos %q has no control points", s)
	}

	var pts []layout.Point
	if start != nil {
		pts = append(pts, *start)
	}
	for i := 0; i < len(ctrl); i += 3 {
		pts = appendDistinct(pts, ctrl[i])
	}
	if last := ctrl[len(ctrl)-1]; (len(ctrl)-1)%3 != 0 {
		pts = appendDistinct(pts, last)
	}
	if end != nil {
		pts = appendDistinct(pts, *end)
	}
	if len(pts) == 1 {
		pts = append(pts, pts[0])
	}
	return pts, nil
}

func appendDistinct(pts []layout.Point, p layout.Point) []layout.Point {
	if n := len(pts); n > 0 && pts[n-1] == p {
		return pts
	}
	return append(pts, p)
}

func floats(s string, n int) ([]float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(parts))
	}
	v := make([]float64, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		v[i] = f
	}
	return v, nil
}
