package fitz

import (
	"math"
	"slices"

	"github.com/gogpu/fitz/internal/stroke"
)

// LineCap specifies the shape of line endpoints.
type LineCap int

const (
	// LineCapButt ends the stroke flat at the endpoint.
	LineCapButt LineCap = iota
	// LineCapRound ends the stroke with a semicircle.
	LineCapRound
	// LineCapSquare extends the stroke by half its width.
	LineCapSquare
	// LineCapTriangle ends the stroke with a point.
	LineCapTriangle
)

// LineJoin specifies the shape of line joins.
type LineJoin int

const (
	// LineJoinMiter joins segments with a sharp corner.
	LineJoinMiter LineJoin = iota
	// LineJoinRound joins segments with an arc.
	LineJoinRound
	// LineJoinBevel cuts the corner off.
	LineJoinBevel
)

// StrokeState describes how a path is stroked. A zero Width draws the
// thinnest line the output device can show.
type StrokeState struct {
	// Width is the line width in user space units. Default: 1.0
	Width float64

	// StartCap and EndCap shape the ends of open subpaths and dashes.
	StartCap LineCap
	EndCap   LineCap

	// Join is the shape of line joins. Default: LineJoinMiter
	Join LineJoin

	// MiterLimit bounds the miter length relative to Width before a miter
	// join falls back to a bevel. Default: 10
	MiterLimit float64

	// Dash is the on/off pattern in user space units; nil draws solid.
	Dash      []float64
	DashPhase float64
}

// NewStrokeState returns a solid 1 unit wide stroke with butt caps and
// miter joins.
func NewStrokeState() *StrokeState {
	return &StrokeState{
		Width:      1.0,
		MiterLimit: 10,
	}
}

// WithWidth returns a copy of the state with the given width.
func (s StrokeState) WithWidth(w float64) *StrokeState {
	s.Width = w
	return &s
}

// WithCap returns a copy of the state with both caps set to c.
func (s StrokeState) WithCap(c LineCap) *StrokeState {
	s.StartCap, s.EndCap = c, c
	return &s
}

// WithJoin returns a copy of the state with the given join.
func (s StrokeState) WithJoin(j LineJoin) *StrokeState {
	s.Join = j
	return &s
}

// WithDash returns a copy of the state with the given dash pattern.
func (s StrokeState) WithDash(phase float64, pattern ...float64) *StrokeState {
	s.Dash = slices.Clone(pattern)
	s.DashPhase = phase
	return &s
}

// Clone returns a deep copy of the state.
func (s *StrokeState) Clone() *StrokeState {
	if s == nil {
		return nil
	}
	c := *s
	c.Dash = slices.Clone(s.Dash)
	return &c
}

// style converts the state into expander parameters. width is the
// effective line width in user space.
func (s *StrokeState) style(width float64) stroke.Style {
	return stroke.Style{
		Width:      width,
		StartCap:   stroke.LineCap(s.StartCap),
		EndCap:     stroke.LineCap(s.EndCap),
		Join:       stroke.LineJoin(s.Join),
		MiterLimit: s.MiterLimit,
		Dash:       s.Dash,
		DashPhase:  s.DashPhase,
	}
}

// effectiveWidth returns the stroke width in user space, widened so that
// the line is at least one device pixel wide under ctm.
func (s *StrokeState) effectiveWidth(ctm Matrix) float64 {
	exp := ctm.Expansion()
	if exp < 1e-12 {
		return s.Width
	}
	return math.Max(s.Width, 1/exp)
}

// expansion returns how far beyond the path outline the stroke may reach,
// in user space units.
func (s *StrokeState) expansion(ctm Matrix) float64 {
	hw := s.effectiveWidth(ctm) / 2
	e := hw
	if s.Join == LineJoinMiter {
		e = hw * math.Max(s.MiterLimit, 1)
	}
	if s.StartCap == LineCapSquare || s.EndCap == LineCapSquare {
		e = math.Max(e, hw*math.Sqrt2)
	}
	return e
}

// StrokedBounds returns the device space bounds of path stroked with s
// under ctm.
func StrokedBounds(path *Path, s *StrokeState, ctm Matrix) Rect {
	if path.IsEmpty() {
		return EmptyRect
	}
	if s == nil {
		s = NewStrokeState()
	}
	return path.Bounds(Identity()).Expand(s.expansion(ctm)).Transform(ctm)
}
