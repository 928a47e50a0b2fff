package fitz

import (
	"fmt"
	"image"
	"math"
)

// Rect is an axis-aligned rectangle in page or device space (y grows down).
// A rectangle with X0 >= X1 or Y0 >= Y1 is empty.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

// Bounds used to represent "no limit". Coordinates beyond these do not occur
// in real pages, and transforming them stays finite.
const (
	minInf = -(1 << 30)
	maxInf = 1 << 30
)

var (
	// EmptyRect is the canonical empty rectangle; Union treats it as identity.
	EmptyRect = Rect{X0: maxInf, Y0: maxInf, X1: minInf, Y1: minInf}

	// InfiniteRect disables area culling when passed to Run.
	InfiniteRect = Rect{X0: minInf, Y0: minInf, X1: maxInf, Y1: maxInf}
)

// NewRect returns the rectangle with origin (x, y) and size w x h.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X0: x, Y0: y, X1: x + w, Y1: y + h}
}

// IsEmpty reports whether the rectangle encloses no area.
func (r Rect) IsEmpty() bool {
	return !(r.X0 < r.X1 && r.Y0 < r.Y1)
}

// isInverted reports whether r has no points at all. Zero-width or
// zero-height rectangles still have a location and are not inverted.
func (r Rect) isInverted() bool {
	return r.X0 > r.X1 || r.Y0 > r.Y1 || math.IsNaN(r.X0) || math.IsNaN(r.Y0)
}

// IsInfinite reports whether r is (or contains) the infinite rectangle.
func (r Rect) IsInfinite() bool {
	return r.X0 <= minInf && r.Y0 <= minInf && r.X1 >= maxInf && r.Y1 >= maxInf
}

// IsValid reports whether all coordinates are finite numbers.
func (r Rect) IsValid() bool {
	for _, v := range [4]float64{r.X0, r.Y0, r.X1, r.Y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Width returns the width of the rectangle, or 0 if empty.
func (r Rect) Width() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.X1 - r.X0
}

// Height returns the height of the rectangle, or 0 if empty.
func (r Rect) Height() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.Y1 - r.Y0
}

// Union returns the smallest rectangle containing r and s.
func (r Rect) Union(s Rect) Rect {
	if s.IsEmpty() {
		return r
	}
	if r.IsEmpty() {
		return s
	}
	return Rect{
		X0: math.Min(r.X0, s.X0),
		Y0: math.Min(r.Y0, s.Y0),
		X1: math.Max(r.X1, s.X1),
		Y1: math.Max(r.Y1, s.Y1),
	}
}

// Intersect returns the overlap of r and s, or EmptyRect.
func (r Rect) Intersect(s Rect) Rect {
	out := Rect{
		X0: math.Max(r.X0, s.X0),
		Y0: math.Max(r.Y0, s.Y0),
		X1: math.Min(r.X1, s.X1),
		Y1: math.Min(r.Y1, s.Y1),
	}
	if out.IsEmpty() {
		return EmptyRect
	}
	return out
}

// Intersects reports whether r and s overlap.
func (r Rect) Intersects(s Rect) bool {
	return !r.Intersect(s).IsEmpty()
}

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X0 && p.X <= r.X1 && p.Y >= r.Y0 && p.Y <= r.Y1
}

// ContainsRect reports whether s lies entirely inside r.
func (r Rect) ContainsRect(s Rect) bool {
	if s.IsEmpty() {
		return true
	}
	return s.X0 >= r.X0 && s.Y0 >= r.Y0 && s.X1 <= r.X1 && s.Y1 <= r.Y1
}

// IncludePoint grows r to contain p.
func (r Rect) IncludePoint(p Point) Rect {
	if r.isInverted() {
		return Rect{X0: p.X, Y0: p.Y, X1: p.X, Y1: p.Y}
	}
	return Rect{
		X0: math.Min(r.X0, p.X),
		Y0: math.Min(r.Y0, p.Y),
		X1: math.Max(r.X1, p.X),
		Y1: math.Max(r.Y1, p.Y),
	}
}

// Expand grows the rectangle by d on every side.
func (r Rect) Expand(d float64) Rect {
	if r.isInverted() || r.IsInfinite() {
		return r
	}
	return Rect{X0: r.X0 - d, Y0: r.Y0 - d, X1: r.X1 + d, Y1: r.Y1 + d}
}

// Transform returns the bounding box of r mapped through m. Inverted and
// infinite rectangles map to themselves; zero-area ones are mapped.
func (r Rect) Transform(m Matrix) Rect {
	if r.IsInfinite() || r.isInverted() {
		return r
	}
	return QuadFromRect(r).Transform(m).Rect()
}

// RoundOut returns the smallest integer rectangle containing r.
// Coordinates within 0.001 of an integer snap to it first and are
// clamped to the infinite rectangle.
func (r Rect) RoundOut() IRect {
	if r.IsEmpty() {
		return IRect{}
	}
	const eps = 0.001
	return IRect{
		X0: pixelCoord(math.Floor(r.X0 + eps)),
		Y0: pixelCoord(math.Floor(r.Y0 + eps)),
		X1: pixelCoord(math.Ceil(r.X1 - eps)),
		Y1: pixelCoord(math.Ceil(r.Y1 - eps)),
	}
}

func pixelCoord(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v > maxInf:
		return maxInf
	case v < minInf:
		return minInf
	}
	return int(v)
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g %g %g %g]", r.X0, r.Y0, r.X1, r.Y1)
}

// IRect is an integer rectangle in device space.
type IRect struct {
	X0, Y0, X1, Y1 int
}

// IsEmpty reports whether the rectangle encloses no pixels.
func (r IRect) IsEmpty() bool {
	return r.X0 >= r.X1 || r.Y0 >= r.Y1
}

// Width returns the width in pixels.
func (r IRect) Width() int {
	if r.IsEmpty() {
		return 0
	}
	return r.X1 - r.X0
}

// Height returns the height in pixels.
func (r IRect) Height() int {
	if r.IsEmpty() {
		return 0
	}
	return r.Y1 - r.Y0
}

// Rect converts r to a float rectangle.
func (r IRect) Rect() Rect {
	if r.IsEmpty() {
		return EmptyRect
	}
	return Rect{X0: float64(r.X0), Y0: float64(r.Y0), X1: float64(r.X1), Y1: float64(r.Y1)}
}

// Image converts r to an image.Rectangle.
func (r IRect) Image() image.Rectangle {
	return image.Rect(r.X0, r.Y0, r.X1, r.Y1)
}
