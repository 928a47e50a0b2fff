package fitz

import "math"

// Quad is a quadrilateral given by its four corners. For text it marks the
// area of a glyph run: UL/UR on the ascender line, LL/LR on the descender.
type Quad struct {
	UL, UR, LL, LR Point
}

// QuadFromRect returns the quad with the corners of r.
func QuadFromRect(r Rect) Quad {
	return Quad{
		UL: Point{X: r.X0, Y: r.Y0},
		UR: Point{X: r.X1, Y: r.Y0},
		LL: Point{X: r.X0, Y: r.Y1},
		LR: Point{X: r.X1, Y: r.Y1},
	}
}

// Transform maps every corner through m.
func (q Quad) Transform(m Matrix) Quad {
	return Quad{
		UL: m.TransformPoint(q.UL),
		UR: m.TransformPoint(q.UR),
		LL: m.TransformPoint(q.LL),
		LR: m.TransformPoint(q.LR),
	}
}

// Rect returns the bounding box of the quad.
func (q Quad) Rect() Rect {
	return Rect{
		X0: math.Min(math.Min(q.UL.X, q.UR.X), math.Min(q.LL.X, q.LR.X)),
		Y0: math.Min(math.Min(q.UL.Y, q.UR.Y), math.Min(q.LL.Y, q.LR.Y)),
		X1: math.Max(math.Max(q.UL.X, q.UR.X), math.Max(q.LL.X, q.LR.X)),
		Y1: math.Max(math.Max(q.UL.Y, q.UR.Y), math.Max(q.LL.Y, q.LR.Y)),
	}
}

// IsEmpty reports whether the quad encloses no area.
func (q Quad) IsEmpty() bool {
	return q.Rect().IsEmpty()
}

// Union returns a quad spanning from q's left edge to o's right edge.
// Both quads are expected to lie on the same text line.
func (q Quad) Union(o Quad) Quad {
	return Quad{UL: q.UL, LL: q.LL, UR: o.UR, LR: o.LR}
}
