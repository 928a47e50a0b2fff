package fitz

import (
	"math"

	"github.com/gogpu/fitz/internal/raster"
	"github.com/gogpu/fitz/internal/stroke"
)

// PathVerb identifies one path segment kind.
type PathVerb uint8

const (
	// VerbMoveTo starts a new subpath (1 point).
	VerbMoveTo PathVerb = iota
	// VerbLineTo adds a straight segment (1 point).
	VerbLineTo
	// VerbQuadTo adds a quadratic Bezier segment (2 points).
	VerbQuadTo
	// VerbCubicTo adds a cubic Bezier segment (3 points).
	VerbCubicTo
	// VerbClose closes the current subpath (0 points).
	VerbClose
)

// points returns the number of coordinates the verb consumes.
func (v PathVerb) points() int {
	switch v {
	case VerbMoveTo, VerbLineTo:
		return 1
	case VerbQuadTo:
		return 2
	case VerbCubicTo:
		return 3
	default:
		return 0
	}
}

// String returns the verb name.
func (v PathVerb) String() string {
	switch v {
	case VerbMoveTo:
		return "moveto"
	case VerbLineTo:
		return "lineto"
	case VerbQuadTo:
		return "quadto"
	case VerbCubicTo:
		return "curveto"
	case VerbClose:
		return "closepath"
	default:
		return "unknown"
	}
}

// Path is a vector outline in user space, stored as a verb stream and a
// flat point array. A Path is mutable while it is being built; once handed
// to a device that records it, the recorder keeps its own copy.
type Path struct {
	verbs   []PathVerb
	pts     []Point
	start   Point
	current Point
	open    bool
}

// NewPath creates an empty path.
func NewPath() *Path {
	return &Path{}
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) {
	pt := Pt(x, y)
	// Consecutive moves collapse into one.
	if n := len(p.verbs); n > 0 && p.verbs[n-1] == VerbMoveTo {
		p.pts[len(p.pts)-1] = pt
	} else {
		p.verbs = append(p.verbs, VerbMoveTo)
		p.pts = append(p.pts, pt)
	}
	p.start, p.current, p.open = pt, pt, true
}

// LineTo adds a line from the current point to (x, y).
func (p *Path) LineTo(x, y float64) {
	p.ensureStarted(x, y)
	pt := Pt(x, y)
	p.verbs = append(p.verbs, VerbLineTo)
	p.pts = append(p.pts, pt)
	p.current = pt
}

// QuadTo adds a quadratic Bezier curve with control point (cx, cy).
func (p *Path) QuadTo(cx, cy, x, y float64) {
	p.ensureStarted(cx, cy)
	pt := Pt(x, y)
	p.verbs = append(p.verbs, VerbQuadTo)
	p.pts = append(p.pts, Pt(cx, cy), pt)
	p.current = pt
}

// CubicTo adds a cubic Bezier curve with control points (c1x, c1y) and
// (c2x, c2y).
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.ensureStarted(c1x, c1y)
	pt := Pt(x, y)
	p.verbs = append(p.verbs, VerbCubicTo)
	p.pts = append(p.pts, Pt(c1x, c1y), Pt(c2x, c2y), pt)
	p.current = pt
}

// ClosePath closes the current subpath. The current point returns to the
// subpath start.
func (p *Path) ClosePath() {
	if !p.open {
		return
	}
	p.verbs = append(p.verbs, VerbClose)
	p.current = p.start
	p.open = false
}

// Rect adds a closed rectangle subpath with corners (x0, y0) and (x1, y1).
func (p *Path) Rect(x0, y0, x1, y1 float64) {
	p.MoveTo(x0, y0)
	p.LineTo(x1, y0)
	p.LineTo(x1, y1)
	p.LineTo(x0, y1)
	p.ClosePath()
}

// Circle adds a closed circle approximated by four cubic curves.
func (p *Path) Circle(cx, cy, r float64) {
	const k = 0.5522847498307936 // 4/3 * (sqrt(2) - 1)
	kr := k * r
	p.MoveTo(cx+r, cy)
	p.CubicTo(cx+r, cy+kr, cx+kr, cy+r, cx, cy+r)
	p.CubicTo(cx-kr, cy+r, cx-r, cy+kr, cx-r, cy)
	p.CubicTo(cx-r, cy-kr, cx-kr, cy-r, cx, cy-r)
	p.CubicTo(cx+kr, cy-r, cx+r, cy-kr, cx+r, cy)
	p.ClosePath()
}

func (p *Path) ensureStarted(x, y float64) {
	if len(p.verbs) == 0 {
		p.MoveTo(x, y)
	}
	p.open = true
}

// CurrentPoint returns the current point.
func (p *Path) CurrentPoint() Point {
	return p.current
}

// Len returns the number of verbs in the path.
func (p *Path) Len() int {
	return len(p.verbs)
}

// IsEmpty reports whether the path has no segments.
func (p *Path) IsEmpty() bool {
	return p == nil || len(p.verbs) == 0
}

// Walk calls fn for every segment with the points it consumes. The points
// slice must not be retained.
func (p *Path) Walk(fn func(verb PathVerb, pts []Point)) {
	i := 0
	for _, v := range p.verbs {
		n := v.points()
		fn(v, p.pts[i:i+n])
		i += n
	}
}

// Clone returns a deep copy of the path.
func (p *Path) Clone() *Path {
	if p == nil {
		return nil
	}
	c := *p
	c.verbs = append([]PathVerb(nil), p.verbs...)
	c.pts = append([]Point(nil), p.pts...)
	return &c
}

// Transform returns a copy of the path with every point mapped by m.
func (p *Path) Transform(m Matrix) *Path {
	c := p.Clone()
	for i, pt := range c.pts {
		c.pts[i] = m.TransformPoint(pt)
	}
	c.start = m.TransformPoint(c.start)
	c.current = m.TransformPoint(c.current)
	return c
}

// Bounds returns the bounding box of all path points, control points
// included, after transforming them by ctm. An empty path has EmptyRect
// bounds.
func (p *Path) Bounds(ctm Matrix) Rect {
	if p.IsEmpty() {
		return EmptyRect
	}
	r := EmptyRect
	for _, pt := range p.pts {
		r = r.IncludePoint(ctm.TransformPoint(pt))
	}
	return r
}

// flatten converts the path into polylines in the space of ctm. Curves are
// subdivided so that no chord deviates more than tol from the curve.
func (p *Path) flatten(ctm Matrix, tol float64) []stroke.Polyline {
	if tol <= 0 {
		tol = flatness
	}
	var (
		out []stroke.Polyline
		cur []raster.Point
		i   int
	)
	flush := func(closed bool) {
		if len(cur) > 1 || (closed && len(cur) == 1) {
			out = append(out, stroke.Polyline{Points: cur, Closed: closed})
		}
		cur = nil
	}
	dev := func(pt Point) raster.Point {
		d := ctm.TransformPoint(pt)
		return raster.Point{X: d.X, Y: d.Y}
	}

	// After a close the next segment continues from the subpath start.
	var start raster.Point
	resume := func() {
		if cur == nil {
			cur = append(cur, start)
		}
	}
	for _, v := range p.verbs {
		switch v {
		case VerbMoveTo:
			flush(false)
			start = dev(p.pts[i])
			cur = append(cur, start)
		case VerbLineTo:
			resume()
			cur = append(cur, dev(p.pts[i]))
		case VerbQuadTo:
			resume()
			cur = flattenQuad(cur, cur[len(cur)-1], dev(p.pts[i]), dev(p.pts[i+1]), tol)
		case VerbCubicTo:
			resume()
			cur = flattenCubic(cur, cur[len(cur)-1], dev(p.pts[i]), dev(p.pts[i+1]), dev(p.pts[i+2]), tol)
		case VerbClose:
			flush(true)
		}
		i += v.points()
	}
	flush(false)
	return out
}

// flatness is the default curve tolerance in device pixels.
const flatness = 0.25

func segmentsFor(dd, tol float64) int {
	n := int(math.Ceil(math.Sqrt(dd / tol)))
	return min(max(n, 1), 1000)
}

func flattenQuad(dst []raster.Point, p0, p1, p2 raster.Point, tol float64) []raster.Point {
	dd := math.Hypot(p0.X-2*p1.X+p2.X, p0.Y-2*p1.Y+p2.Y) / 4
	n := segmentsFor(dd, tol)
	for k := 1; k <= n; k++ {
		t := float64(k) / float64(n)
		mt := 1 - t
		dst = append(dst, raster.Point{
			X: mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X,
			Y: mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y,
		})
	}
	return dst
}

func flattenCubic(dst []raster.Point, p0, p1, p2, p3 raster.Point, tol float64) []raster.Point {
	d1 := math.Hypot(p0.X-2*p1.X+p2.X, p0.Y-2*p1.Y+p2.Y)
	d2 := math.Hypot(p1.X-2*p2.X+p3.X, p1.Y-2*p2.Y+p3.Y)
	n := segmentsFor(0.75*math.Max(d1, d2), tol)
	for k := 1; k <= n; k++ {
		t := float64(k) / float64(n)
		mt := 1 - t
		a, b, c, d := mt*mt*mt, 3*mt*mt*t, 3*mt*t*t, t*t*t
		dst = append(dst, raster.Point{
			X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
			Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
		})
	}
	return dst
}
