package stroke

import (
	"math"

	"github.com/gogpu/fitz/internal/raster"
)

func dashing(style Style) bool {
	if len(style.Dash) == 0 {
		return false
	}
	var total float64
	for _, d := range style.Dash {
		if d < 0 || math.IsNaN(d) {
			return false
		}
		total += d
	}
	return total > 0
}

// Dash splits polylines into the "on" intervals of pattern starting at
// phase. The result contains open polylines only.
func Dash(lines []Polyline, pattern []float64, phase float64) []Polyline {
	var total float64
	for _, d := range pattern {
		total += d
	}
	if total <= 0 {
		return lines
	}
	// Odd-length patterns repeat with alternating sense.
	if len(pattern)%2 == 1 {
		pattern = append(append([]float64(nil), pattern...), pattern...)
		total *= 2
	}

	var out []Polyline
	for _, l := range lines {
		out = dashOne(out, l, pattern, total, phase)
	}
	return out
}

func dashOne(out []Polyline, l Polyline, pattern []float64, total, phase float64) []Polyline {
	pts := l.Points
	if l.Closed && len(pts) > 1 && pts[0] != pts[len(pts)-1] {
		pts = append(append([]raster.Point(nil), pts...), pts[0])
	}
	if len(pts) < 2 {
		return out
	}

	idx := 0
	phase = math.Mod(phase, total)
	if phase < 0 {
		phase += total
	}
	for phase >= pattern[idx] {
		phase -= pattern[idx]
		idx = (idx + 1) % len(pattern)
	}
	remain := pattern[idx] - phase
	on := idx%2 == 0

	var cur []raster.Point
	if on {
		cur = []raster.Point{pts[0]}
	}
	for i := 1; i < len(pts); i++ {
		p0, p1 := pts[i-1], pts[i]
		segLen := math.Hypot(p1.X-p0.X, p1.Y-p0.Y)
		pos := 0.0
		for segLen-pos > remain {
			pos += remain
			t := pos / segLen
			q := raster.Point{X: p0.X + (p1.X-p0.X)*t, Y: p0.Y + (p1.Y-p0.Y)*t}
			if on {
				cur = append(cur, q)
				out = append(out, Polyline{Points: cur})
				cur = nil
			} else {
				cur = []raster.Point{q}
			}
			on = !on
			idx = (idx + 1) % len(pattern)
			remain = pattern[idx]
		}
		remain -= segLen - pos
		if on {
			cur = append(cur, p1)
		}
	}
	if on && len(cur) > 0 {
		out = append(out, Polyline{Points: cur})
	}
	return out
}
