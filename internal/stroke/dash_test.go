package stroke

import (
	"math"
	"testing"
)

func TestDashSplitsLine(t *testing.T) {
	out := Dash([]Polyline{{Points: pts(0, 0, 10, 0)}}, []float64{2, 2}, 0)
	if len(out) != 3 {
		t.Fatalf("got %d dashes, want 3", len(out))
	}
	wantStarts := []float64{0, 4, 8}
	for i, d := range out {
		if got := d.Points[0].X; math.Abs(got-wantStarts[i]) > 1e-9 {
			t.Errorf("dash %d starts at %v, want %v", i, got, wantStarts[i])
		}
	}
}

func TestDashPhase(t *testing.T) {
	out := Dash([]Polyline{{Points: pts(0, 0, 10, 0)}}, []float64{2, 2}, 3)
	if len(out) == 0 {
		t.Fatal("no dashes")
	}
	// Phase 3 starts in the gap; the first dash begins at 1.
	if got := out[0].Points[0].X; math.Abs(got-1) > 1e-9 {
		t.Errorf("first dash starts at %v, want 1", got)
	}
}

func TestDashAcrossCorner(t *testing.T) {
	out := Dash([]Polyline{{Points: pts(0, 0, 3, 0, 3, 3)}}, []float64{4, 10}, 0)
	if len(out) != 1 {
		t.Fatalf("got %d dashes, want 1", len(out))
	}
	if n := len(out[0].Points); n != 3 {
		t.Errorf("dash through corner has %d points, want 3", n)
	}
}

func TestDashOddPattern(t *testing.T) {
	// [3] behaves like [3 3].
	out := Dash([]Polyline{{Points: pts(0, 0, 12, 0)}}, []float64{3}, 0)
	if len(out) != 2 {
		t.Errorf("got %d dashes, want 2", len(out))
	}
}

func TestDashingIgnoresInvalidPatterns(t *testing.T) {
	tests := []struct {
		name    string
		pattern []float64
	}{
		{"empty", nil},
		{"zero", []float64{0, 0}},
		{"negative", []float64{2, -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if dashing(Style{Dash: tt.pattern}) {
				t.Error("pattern should be ignored")
			}
		})
	}
}
