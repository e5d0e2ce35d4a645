package layout

import "math"

// Point is a coordinate in layout units. y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Transpose swaps the axes.
func (p Point) Transpose() Point { return Point{X: p.Y, Y: p.X} }

// Rect is an axis-aligned box anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// IsEmpty reports whether r has no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether inner lies within r, edges included.
func (r Rect) Contains(inner Rect) bool {
	const eps = 1e-6
	return inner.X >= r.X-eps && inner.Y >= r.Y-eps &&
		inner.Right() <= r.Right()+eps && inner.Bottom() <= r.Bottom()+eps
}

// Union returns the smallest rect covering r and o. An empty operand is
// ignored.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	x, y := math.Min(r.X, o.X), math.Min(r.Y, o.Y)
	return Rect{
		X: x, Y: y,
		Width:  math.Max(r.Right(), o.Right()) - x,
		Height: math.Max(r.Bottom(), o.Bottom()) - y,
	}
}

// Translate moves r by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Inset grows r by d on every side; negative d shrinks it.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, Width: r.Width + 2*d, Height: r.Height + 2*d}
}

// Transpose swaps the axes.
func (r Rect) Transpose() Rect {
	return Rect{X: r.Y, Y: r.X, Width: r.Height, Height: r.Width}
}

func (r Rect) finite() bool {
	for _, v := range [...]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// Result maps lane, node and edge ids to geometry. Engines fill Lanes,
// Nodes and Edges; the geometry resolver fills the totals and Pool.
type Result struct {
	Lanes       map[string]Rect    `json:"lanes"`
	Nodes       map[string]Rect    `json:"nodes"`
	Edges       map[string][]Point `json:"edges"`
	TotalWidth  float64            `json:"totalWidth"`
	TotalHeight float64            `json:"totalHeight"`
	Pool        Rect               `json:"pool"`
}

// NewResult returns a Result with allocated maps.
func NewResult() Result {
	return Result{
		Lanes: make(map[string]Rect),
		Nodes: make(map[string]Rect),
		Edges: make(map[string][]Point),
	}
}

// Clone returns a deep copy of r.
func (r Result) Clone() Result {
	c := NewResult()
	for k, v := range r.Lanes {
		c.Lanes[k] = v
	}
	for k, v := range r.Nodes {
		c.Nodes[k] = v
	}
	for k, pts := range r.Edges {
		c.Edges[k] = append([]Point(nil), pts...)
	}
	c.TotalWidth, c.TotalHeight, c.Pool = r.TotalWidth, r.TotalHeight, r.Pool
	return c
}

// Transpose swaps the axes of every coordinate in r.
func (r Result) Transpose() Result {
	t := NewResult()
	for k, v := range r.Lanes {
		t.Lanes[k] = v.Transpose()
	}
	for k, v := range r.Nodes {
		t.Nodes[k] = v.Transpose()
	}
	for k, pts := range r.Edges {
		tp := make([]Point, len(pts))
		for i, p := range pts {
			tp[i] = p.Transpose()
		}
		t.Edges[k] = tp
	}
	t.TotalWidth, t.TotalHeight = r.TotalHeight, r.TotalWidth
	t.Pool = r.Pool.Transpose()
	return t
}
