package fitz

import (
	"math"
	"slices"
)

// ShadeType selects the shading geometry.
type ShadeType int

const (
	// ShadeLinear varies colour along the axis from P0 to P1.
	ShadeLinear ShadeType = iota
	// ShadeRadial varies colour between the circles (P0, R0) and (P1, R1).
	ShadeRadial
)

// ColorStop is a colour at a position along the shading axis.
type ColorStop struct {
	Offset float64 // Position on the axis, 0.0 to 1.0
	Color  Color
}

// Shade is an axial or radial smooth shading.
//
// Example:
//
//	sh := fitz.NewLinearShade(0, 0, 100, 0).
//	    AddColorStop(0, fitz.RGB(1, 0, 0)).
//	    AddColorStop(1, fitz.RGB(0, 0, 1)).
//	    SetExtend(true, true)
type Shade struct {
	Type   ShadeType
	P0, P1 Point
	R0, R1 float64
	Stops  []ColorStop

	// ExtendStart and ExtendEnd continue the end colours beyond the axis.
	ExtendStart bool
	ExtendEnd   bool

	// Matrix maps shading space to user space.
	Matrix Matrix

	// BBox limits the shading in shading space when HasBBox is set.
	BBox    Rect
	HasBBox bool
}

// NewLinearShade creates an axial shading from (x0, y0) to (x1, y1).
func NewLinearShade(x0, y0, x1, y1 float64) *Shade {
	return &Shade{
		Type:   ShadeLinear,
		P0:     Pt(x0, y0),
		P1:     Pt(x1, y1),
		Matrix: Identity(),
	}
}

// NewRadialShade creates a radial shading between two circles.
func NewRadialShade(x0, y0, r0, x1, y1, r1 float64) *Shade {
	return &Shade{
		Type:   ShadeRadial,
		P0:     Pt(x0, y0),
		P1:     Pt(x1, y1),
		R0:     r0,
		R1:     r1,
		Matrix: Identity(),
	}
}

// AddColorStop adds a colour stop and keeps stops ordered by offset.
// Returns the shade for method chaining.
func (s *Shade) AddColorStop(offset float64, c Color) *Shade {
	s.Stops = append(s.Stops, ColorStop{Offset: clamp01(offset), Color: c})
	slices.SortStableFunc(s.Stops, func(a, b ColorStop) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		default:
			return 0
		}
	})
	return s
}

// SetExtend sets whether the shading continues past each end.
// Returns the shade for method chaining.
func (s *Shade) SetExtend(start, end bool) *Shade {
	s.ExtendStart, s.ExtendEnd = start, end
	return s
}

// SetBBox limits the shading to r in shading space.
// Returns the shade for method chaining.
func (s *Shade) SetBBox(r Rect) *Shade {
	s.BBox, s.HasBBox = r, true
	return s
}

// Clone returns a deep copy of the shade.
func (s *Shade) Clone() *Shade {
	c := *s
	c.Stops = slices.Clone(s.Stops)
	return &c
}

// Bounds returns the device space area the shading can paint under ctm.
// Without a bounding box a shading fills whatever clip is active.
func (s *Shade) Bounds(ctm Matrix) Rect {
	if !s.HasBBox {
		return InfiniteRect
	}
	return s.BBox.Transform(Concat(s.Matrix, ctm))
}

// ColorAt returns the colour at p in shading space, and false where the
// shading paints nothing.
func (s *Shade) ColorAt(p Point) (Color, bool) {
	if s.HasBBox && !s.BBox.Contains(p) {
		return Color{}, false
	}
	var t float64
	var ok bool
	if s.Type == ShadeRadial {
		t, ok = s.radialT(p)
	} else {
		t, ok = s.linearT(p)
	}
	if !ok {
		return Color{}, false
	}
	switch {
	case t < 0 && !s.ExtendStart, t > 1 && !s.ExtendEnd:
		return Color{}, false
	}
	return s.colorAtOffset(clamp01(t)), true
}

func (s *Shade) linearT(p Point) (float64, bool) {
	d := s.P1.Sub(s.P0)
	l2 := d.Dot(d)
	if l2 < 1e-12 {
		return 0, false
	}
	return p.Sub(s.P0).Dot(d) / l2, true
}

// radialT solves |p - c(t)| = r(t) for the largest t with r(t) >= 0,
// where c and r interpolate the two circles.
func (s *Shade) radialT(p Point) (float64, bool) {
	cd := s.P1.Sub(s.P0)
	pd := p.Sub(s.P0)
	dr := s.R1 - s.R0

	a := cd.Dot(cd) - dr*dr
	b := pd.Dot(cd) + s.R0*dr
	c := pd.Dot(pd) - s.R0*s.R0

	valid := func(t float64) bool { return s.R0+t*dr >= 0 }

	if math.Abs(a) < 1e-12 {
		if math.Abs(b) < 1e-12 {
			return 0, false
		}
		t := c / (2 * b)
		return t, valid(t)
	}
	disc := b*b - a*c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t1 := (b + sq) / a
	t2 := (b - sq) / a
	if t1 < t2 {
		t1, t2 = t2, t1
	}
	// Prefer a parameter inside the painted range.
	for _, t := range [2]float64{t1, t2} {
		if valid(t) && s.inRange(t) {
			return t, true
		}
	}
	if valid(t1) {
		return t1, true
	}
	return t2, valid(t2)
}

func (s *Shade) inRange(t float64) bool {
	return (t >= 0 || s.ExtendStart) && (t <= 1 || s.ExtendEnd)
}

// colorAtOffset interpolates the stops in RGB at t in [0, 1].
func (s *Shade) colorAtOffset(t float64) Color {
	switch len(s.Stops) {
	case 0:
		return Black
	case 1:
		return s.Stops[0].Color
	}
	if t <= s.Stops[0].Offset {
		return s.Stops[0].Color
	}
	last := s.Stops[len(s.Stops)-1]
	if t >= last.Offset {
		return last.Color
	}
	i, _ := slices.BinarySearchFunc(s.Stops, t, func(st ColorStop, t float64) int {
		switch {
		case st.Offset < t:
			return -1
		case st.Offset > t:
			return 1
		default:
			return 0
		}
	})
	if i == 0 {
		return s.Stops[0].Color
	}
	a, b := s.Stops[i-1], s.Stops[i]
	span := b.Offset - a.Offset
	if span <= 0 {
		return b.Color
	}
	f := (t - a.Offset) / span
	r0, g0, b0 := a.Color.RGB()
	r1, g1, b1 := b.Color.RGB()
	return RGB(r0+(r1-r0)*f, g0+(g1-g0)*f, b0+(b1-b0)*f)
}
