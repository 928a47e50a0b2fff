package stroke

import (
	"math"

	"github.com/gogpu/fitz/internal/raster"
)

// LineCap specifies the shape of line endpoints.
type LineCap int

const (
	// LineCapButt specifies a flat line cap.
	LineCapButt LineCap = iota
	// LineCapRound specifies a rounded line cap.
	LineCapRound
	// LineCapSquare specifies a square line cap.
	LineCapSquare
	// LineCapTriangle specifies a pointed line cap.
	LineCapTriangle
)

// LineJoin specifies the shape of line joins.
type LineJoin int

const (
	// LineJoinMiter specifies a sharp (mitered) join.
	LineJoinMiter LineJoin = iota
	// LineJoinRound specifies a rounded join.
	LineJoinRound
	// LineJoinBevel specifies a beveled join.
	LineJoinBevel
)

// Style defines the stroke parameters.
type Style struct {
	Width      float64
	StartCap   LineCap
	EndCap     LineCap
	Join       LineJoin
	MiterLimit float64
	Dash       []float64
	DashPhase  float64
}

// DefaultStyle returns a 1 unit wide butt-capped mitered stroke.
func DefaultStyle() Style {
	return Style{
		Width:      1.0,
		MiterLimit: 10.0,
	}
}

// Polyline is a flattened subpath.
type Polyline struct {
	Points []raster.Point
	Closed bool
}

type vec struct{ x, y float64 }

func sub(a, b raster.Point) vec              { return vec{a.X - b.X, a.Y - b.Y} }
func add(p raster.Point, v vec) raster.Point { return raster.Point{X: p.X + v.x, Y: p.Y + v.y} }
func (v vec) scale(s float64) vec            { return vec{v.x * s, v.y * s} }
func (v vec) neg() vec                       { return vec{-v.x, -v.y} }
func (v vec) perp() vec                      { return vec{-v.y, v.x} }
func (v vec) dot(w vec) float64              { return v.x*w.x + v.y*w.y }
func (v vec) cross(w vec) float64            { return v.x*w.y - v.y*w.x }
func (v vec) length() float64                { return math.Hypot(v.x, v.y) }

func (v vec) normalize() vec {
	l := v.length()
	if l < 1e-12 {
		return vec{}
	}
	return vec{v.x / l, v.y / l}
}

// Stroke expands the polylines into polygons. tol is the maximum
// deviation allowed when approximating round caps and joins, in the same
// units as the points.
func Stroke(lines []Polyline, style Style, tol float64) []raster.Contour {
	if style.Width <= 0 {
		return nil
	}
	if tol <= 0 {
		tol = 0.1
	}
	if dashing(style) {
		lines = Dash(lines, style.Dash, style.DashPhase)
	}

	e := expander{style: style, hw: style.Width / 2, tol: tol}
	for _, l := range lines {
		e.polyline(l)
	}
	return e.out
}

type expander struct {
	style Style
	hw    float64
	tol   float64
	out   []raster.Contour
}

func (e *expander) emit(c raster.Contour) {
	if signedArea(c) < 0 {
		for i, j := 0, len(c)-1; i < j; i, j = i+1, j-1 {
			c[i], c[j] = c[j], c[i]
		}
	}
	e.out = append(e.out, c)
}

func (e *expander) polyline(l Polyline) {
	pts := dedup(l.Points)
	closed := l.Closed
	if closed && len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}

	switch {
	case len(pts) == 0:
		return
	case len(pts) == 1:
		e.dot(pts[0])
		return
	case len(pts) == 2:
		closed = false
	}

	n := len(pts)
	segs := n - 1
	if closed {
		segs = n
	}
	for i := range segs {
		e.segment(pts[i], pts[(i+1)%n])
	}

	if closed {
		for i := range n {
			prev := pts[(i+n-1)%n]
			next := pts[(i+1)%n]
			e.join(pts[i], sub(pts[i], prev).normalize(), sub(next, pts[i]).normalize())
		}
		return
	}

	for i := 1; i < n-1; i++ {
		e.join(pts[i], sub(pts[i], pts[i-1]).normalize(), sub(pts[i+1], pts[i]).normalize())
	}
	e.cap(pts[0], sub(pts[0], pts[1]).normalize(), e.style.StartCap)
	e.cap(pts[n-1], sub(pts[n-1], pts[n-2]).normalize(), e.style.EndCap)
}

func (e *expander) segment(p0, p1 raster.Point) {
	n := sub(p1, p0).normalize().perp().scale(e.hw)
	e.emit(raster.Contour{add(p0, n), add(p1, n), add(p1, n.neg()), add(p0, n.neg())})
}

// join fills the wedge at p between incoming direction d0 and outgoing d1.
func (e *expander) join(p raster.Point, d0, d1 vec) {
	cross := d0.cross(d1)
	dot := d0.dot(d1)
	if math.Abs(cross) < 1e-9 && dot > 0 {
		return
	}

	if e.style.Join == LineJoinRound {
		e.emit(circle(p, e.hw, e.tol))
		return
	}
	if math.Abs(cross) < 1e-9 {
		// Full reversal has no outer side.
		return
	}

	s := -1.0
	if cross < 0 {
		s = 1.0
	}
	n0 := d0.perp().scale(s * e.hw)
	n1 := d1.perp().scale(s * e.hw)
	a := add(p, n0)
	b := add(p, n1)

	if e.style.Join == LineJoinMiter {
		cosHalf := math.Sqrt((1 + dot) / 2)
		if cosHalf > 1e-9 {
			ratio := 1 / cosHalf
			if ratio <= e.style.MiterLimit {
				bis := vec{n0.x + n1.x, n0.y + n1.y}.normalize()
				m := add(p, bis.scale(e.hw*ratio))
				e.emit(raster.Contour{p, a, m, b})
				return
			}
		}
	}
	e.emit(raster.Contour{p, a, b})
}

// cap closes the line at p; d points away from the line.
func (e *expander) cap(p raster.Point, d vec, c LineCap) {
	n := d.perp().scale(e.hw)
	ext := d.scale(e.hw)
	switch c {
	case LineCapRound:
		e.emit(circle(p, e.hw, e.tol))
	case LineCapSquare:
		e.emit(raster.Contour{add(p, n), add(add(p, n), ext), add(add(p, n.neg()), ext), add(p, n.neg())})
	case LineCapTriangle:
		e.emit(raster.Contour{add(p, n), add(p, ext), add(p, n.neg())})
	}
}

// dot draws a zero-length subpath.
func (e *expander) dot(p raster.Point) {
	switch {
	case e.style.StartCap == LineCapRound || e.style.EndCap == LineCapRound:
		e.emit(circle(p, e.hw, e.tol))
	case e.style.StartCap == LineCapSquare || e.style.EndCap == LineCapSquare:
		h := e.hw
		e.emit(raster.Contour{{X: p.X - h, Y: p.Y - h}, {X: p.X + h, Y: p.Y - h}, {X: p.X + h, Y: p.Y + h}, {X: p.X - h, Y: p.Y + h}})
	}
}

// circle approximates a circle so that no chord deviates more than tol.
func circle(c raster.Point, r, tol float64) raster.Contour {
	n := 8
	if r > tol {
		n = max(n, int(math.Ceil(math.Pi/math.Acos(1-tol/r))))
	}
	n = min(n, 256)
	out := make(raster.Contour, n)
	for i := range n {
		a := 2 * math.Pi * float64(i) / float64(n)
		out[i] = raster.Point{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return out
}

func signedArea(c raster.Contour) float64 {
	var a float64
	for i := range c {
		j := (i + 1) % len(c)
		a += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return a / 2
}

func dedup(pts []raster.Point) []raster.Point {
	out := make([]raster.Point, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return out
}
