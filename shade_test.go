package fitz

import (
	"math"
	"testing"
)

func TestShadeLinear(t *testing.T) {
	sh := NewLinearShade(0, 0, 100, 0).
		AddColorStop(1, RGB(0, 0, 1)).
		AddColorStop(0, RGB(1, 0, 0))

	tests := []struct {
		x       float64
		r, b    float64
		painted bool
	}{
		{0, 1, 0, true},
		{50, 0.5, 0.5, true},
		{100, 0, 1, true},
		{-10, 0, 0, false},
		{150, 0, 0, false},
	}
	for _, tt := range tests {
		c, ok := sh.ColorAt(Pt(tt.x, 30))
		if ok != tt.painted {
			t.Errorf("x=%v painted = %v, want %v", tt.x, ok, tt.painted)
			continue
		}
		if !ok {
			continue
		}
		r, _, b := c.RGB()
		if math.Abs(r-tt.r) > 1e-9 || math.Abs(b-tt.b) > 1e-9 {
			t.Errorf("x=%v colour = (%v, %v), want (%v, %v)", tt.x, r, b, tt.r, tt.b)
		}
	}

	sh.SetExtend(true, true)
	if c, ok := sh.ColorAt(Pt(150, 0)); !ok {
		t.Error("extended shade should paint past the end")
	} else if _, _, b := c.RGB(); b != 1 {
		t.Errorf("extended colour blue = %v, want 1", b)
	}
}

func TestShadeRadial(t *testing.T) {
	sh := NewRadialShade(50, 50, 0, 50, 50, 40).
		AddColorStop(0, White).
		AddColorStop(1, Black)

	c, ok := sh.ColorAt(Pt(50, 50))
	if !ok {
		t.Fatal("centre not painted")
	}
	if r, _, _ := c.RGB(); math.Abs(r-1) > 1e-9 {
		t.Errorf("centre = %v, want white", r)
	}
	c, ok = sh.ColorAt(Pt(70, 50))
	if !ok {
		t.Fatal("mid radius not painted")
	}
	if r, _, _ := c.RGB(); math.Abs(r-0.5) > 1e-9 {
		t.Errorf("mid radius = %v, want 0.5", r)
	}
	if _, ok := sh.ColorAt(Pt(100, 50)); ok {
		t.Error("outside outer circle painted without extend")
	}
}

func TestShadeBounds(t *testing.T) {
	sh := NewLinearShade(0, 0, 1, 0)
	if !sh.Bounds(Identity()).IsInfinite() {
		t.Error("shade without bbox should be unbounded")
	}
	sh.SetBBox(Rect{0, 0, 10, 10})
	if got := sh.Bounds(Scale(2, 2)); got != (Rect{0, 0, 20, 20}) {
		t.Errorf("Bounds = %v", got)
	}
	if _, ok := sh.ColorAt(Pt(20, 5)); ok {
		t.Error("point outside bbox painted")
	}
}
