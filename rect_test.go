package fitz

import (
	"math"
	"testing"
)

func TestRectEmpty(t *testing.T) {
	tests := []struct {
		name string
		r    Rect
		want bool
	}{
		{"canonical empty", EmptyRect, true},
		{"zero width", Rect{0, 0, 0, 10}, true},
		{"inverted", Rect{5, 5, 1, 1}, true},
		{"unit", Rect{0, 0, 1, 1}, false},
		{"infinite", InfiniteRect, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectUnionIntersect(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	b := Rect{5, 5, 20, 20}

	if got := a.Union(b); got != (Rect{0, 0, 20, 20}) {
		t.Errorf("Union = %v", got)
	}
	if got := a.Intersect(b); got != (Rect{5, 5, 10, 10}) {
		t.Errorf("Intersect = %v", got)
	}
	if got := a.Union(EmptyRect); got != a {
		t.Errorf("Union with empty = %v, want %v", got, a)
	}
	if got := a.Intersect(Rect{20, 20, 30, 30}); !got.IsEmpty() {
		t.Errorf("disjoint Intersect = %v, want empty", got)
	}
	if !a.Intersects(b) || a.Intersects(Rect{11, 0, 12, 1}) {
		t.Error("Intersects disagrees with Intersect")
	}
}

func TestRectTransform(t *testing.T) {
	r := Rect{0, 0, 10, 20}
	got := r.Transform(Rotate(math.Pi / 2))
	want := Rect{-20, 0, 0, 10}
	if math.Abs(got.X0-want.X0) > 1e-9 || math.Abs(got.X1-want.X1) > 1e-9 ||
		math.Abs(got.Y0-want.Y0) > 1e-9 || math.Abs(got.Y1-want.Y1) > 1e-9 {
		t.Errorf("Transform = %v, want %v", got, want)
	}
	if got := EmptyRect.Transform(Scale(2, 2)); got != EmptyRect {
		t.Errorf("empty rect transformed to %v", got)
	}
	if got := InfiniteRect.Transform(Translate(5, 5)); !got.IsInfinite() {
		t.Errorf("infinite rect transformed to %v", got)
	}
}

func TestRectIncludePoint(t *testing.T) {
	r := EmptyRect.IncludePoint(Pt(3, 4))
	r = r.IncludePoint(Pt(-1, 8))
	if r != (Rect{-1, 4, 3, 8}) {
		t.Errorf("IncludePoint = %v", r)
	}
}

func TestRectExpandDegenerate(t *testing.T) {
	// A horizontal line has zero height but still grows when stroked.
	line := Rect{0, 10, 20, 10}
	if got := line.Expand(2); got != (Rect{-2, 8, 22, 12}) {
		t.Errorf("Expand = %v", got)
	}
	if got := EmptyRect.Expand(2); got != EmptyRect {
		t.Errorf("empty Expand = %v", got)
	}
}

func TestRectRoundOut(t *testing.T) {
	tests := []struct {
		r    Rect
		want IRect
	}{
		{Rect{0.5, 0.5, 10.2, 10.8}, IRect{0, 0, 11, 11}},
		{Rect{0.0001, 0, 9.9995, 10}, IRect{0, 0, 10, 10}},
		{Rect{-1.5, -2.5, 1.5, 2.5}, IRect{-2, -3, 2, 3}},
		{EmptyRect, IRect{}},
		{Rect{-1e300, 0, 1e300, 1e20}, IRect{minInf, 0, maxInf, maxInf}},
		{Rect{0, 0, math.NaN(), 10}, IRect{}},
	}
	for _, tt := range tests {
		if got := tt.r.RoundOut(); got != tt.want {
			t.Errorf("RoundOut(%v) = %+v, want %+v", tt.r, got, tt.want)
		}
	}
}

func TestQuadFromRect(t *testing.T) {
	r := Rect{1, 2, 3, 4}
	q := QuadFromRect(r)
	if q.Rect() != r {
		t.Errorf("QuadFromRect(%v).Rect() = %v", r, q.Rect())
	}
	moved := q.Transform(Translate(10, 0))
	if moved.UL != Pt(11, 2) || moved.LR != Pt(13, 4) {
		t.Errorf("Transform = %+v", moved)
	}
}
