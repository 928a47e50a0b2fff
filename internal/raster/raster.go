// Package raster provides anti-aliased scanline rasterization of polygons
// into 8-bit coverage masks.
//
// Coverage is computed per pixel from a configurable number of vertical
// subsamples; within a subsample row the horizontal coverage of every span
// is exact. The output is deterministic for a given input.
package raster

import (
	"image"
	"math"
	"slices"
)

// Point represents a 2D point in device space (internal copy to avoid import cycle).
type Point struct {
	X, Y float64
}

// Contour is a closed polygon. The closing edge from the last point back to
// the first is implicit.
type Contour []Point

// FillRule specifies how to determine which areas are inside a path.
type FillRule int

const (
	// NonZero uses the non-zero winding rule.
	NonZero FillRule = iota
	// EvenOdd uses the even-odd rule.
	EvenOdd
)

// edge is a non-horizontal polygon edge with y0 < y1.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	slope  float64 // dx/dy
	dir    int     // +1 downward in the source polygon, -1 upward
}

func newEdge(p0, p1 Point) (edge, bool) {
	dir := 1
	if p0.Y > p1.Y {
		dir = -1
		p0, p1 = p1, p0
	}
	if p1.Y-p0.Y < 1e-9 {
		return edge{}, false
	}
	return edge{
		x0:    p0.X,
		y0:    p0.Y,
		x1:    p1.X,
		y1:    p1.Y,
		slope: (p1.X - p0.X) / (p1.Y - p0.Y),
		dir:   dir,
	}, true
}

// crossing is the intersection of an edge with a sample row.
type crossing struct {
	x   float64
	dir int
}

// Rasterizer accumulates polygon edges and converts them to coverage.
// It is not safe for concurrent use; buffers are reused across calls.
type Rasterizer struct {
	clip       image.Rectangle
	subsamples int

	edges  []edge
	minY   float64
	maxY   float64
	active []int
	xs     []crossing
	frac   []float64
	delta  []float64
}

// NewRasterizer creates a rasterizer writing into clip with the given
// number of vertical subsamples per pixel (at least 1).
func NewRasterizer(clip image.Rectangle, subsamples int) *Rasterizer {
	r := &Rasterizer{subsamples: max(subsamples, 1)}
	r.SetClip(clip)
	return r
}

// SetClip changes the device rectangle and resets the rasterizer.
func (r *Rasterizer) SetClip(clip image.Rectangle) {
	r.clip = clip
	w := clip.Dx() + 2
	if cap(r.frac) < w {
		r.frac = make([]float64, w)
		r.delta = make([]float64, w)
	}
	r.frac = r.frac[:w]
	r.delta = r.delta[:w]
	r.Reset()
}

// Reset removes all edges.
func (r *Rasterizer) Reset() {
	r.edges = r.edges[:0]
	r.minY = math.Inf(1)
	r.maxY = math.Inf(-1)
}

// AddContour adds a closed polygon.
func (r *Rasterizer) AddContour(c Contour) {
	if len(c) < 2 {
		return
	}
	for i := range c {
		j := i + 1
		if j == len(c) {
			j = 0
		}
		e, ok := newEdge(c[i], c[j])
		if !ok {
			continue
		}
		r.edges = append(r.edges, e)
		r.minY = math.Min(r.minY, e.y0)
		r.maxY = math.Max(r.maxY, e.y1)
	}
}

// Empty reports whether no edges have been added.
func (r *Rasterizer) Empty() bool {
	return len(r.edges) == 0
}

// Bounds returns the pixel rectangle that may receive coverage.
func (r *Rasterizer) Bounds() image.Rectangle {
	if len(r.edges) == 0 {
		return image.Rectangle{}
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, e := range r.edges {
		minX = math.Min(minX, math.Min(e.x0, e.x1))
		maxX = math.Max(maxX, math.Max(e.x0, e.x1))
	}
	b := image.Rect(
		int(math.Floor(minX)), int(math.Floor(r.minY)),
		int(math.Ceil(maxX)), int(math.Ceil(r.maxY)),
	)
	return b.Intersect(r.clip)
}

// Rasterize writes the coverage of the accumulated edges into dst, which
// must be an image.Alpha covering the rasterizer's clip. Only pixels in
// Bounds are written; other pixels keep their value.
func (r *Rasterizer) Rasterize(rule FillRule, dst *image.Alpha) {
	bounds := r.Bounds()
	if bounds.Empty() {
		return
	}

	slices.SortFunc(r.edges, func(a, b edge) int {
		switch {
		case a.y0 < b.y0:
			return -1
		case a.y0 > b.y0:
			return 1
		default:
			return 0
		}
	})

	s := r.subsamples
	weight := 1.0 / float64(s)
	next := 0
	r.active = r.active[:0]

	for py := bounds.Min.Y; py < bounds.Max.Y; py++ {
		clear(r.frac)
		clear(r.delta)

		for j := 0; j < s; j++ {
			sy := float64(py) + (float64(j)+0.5)*weight

			for next < len(r.edges) && r.edges[next].y0 <= sy {
				r.active = append(r.active, next)
				next++
			}
			r.active = slices.DeleteFunc(r.active, func(i int) bool {
				return r.edges[i].y1 <= sy
			})

			r.xs = r.xs[:0]
			for _, i := range r.active {
				e := &r.edges[i]
				if sy < e.y0 {
					continue
				}
				r.xs = append(r.xs, crossing{x: e.x0 + (sy-e.y0)*e.slope, dir: e.dir})
			}
			slices.SortFunc(r.xs, func(a, b crossing) int {
				switch {
				case a.x < b.x:
					return -1
				case a.x > b.x:
					return 1
				default:
					return 0
				}
			})

			winding := 0
			var start float64
			for _, c := range r.xs {
				wasInside := inside(rule, winding)
				winding += c.dir
				nowInside := inside(rule, winding)
				switch {
				case !wasInside && nowInside:
					start = c.x
				case wasInside && !nowInside:
					r.addSpan(start, c.x, weight)
				}
			}
		}

		r.emitRow(py, bounds, dst)
	}
}

func inside(rule FillRule, winding int) bool {
	if rule == EvenOdd {
		return winding&1 != 0
	}
	return winding != 0
}

// addSpan accumulates coverage w for the horizontal span [xa, xb).
func (r *Rasterizer) addSpan(xa, xb, w float64) {
	minX := float64(r.clip.Min.X)
	maxX := float64(r.clip.Max.X)
	xa = math.Max(xa, minX)
	xb = math.Min(xb, maxX)
	if xb <= xa {
		return
	}

	ia := int(math.Floor(xa))
	ib := int(math.Floor(xb))
	oa := ia - r.clip.Min.X
	if ia == ib {
		r.frac[oa] += (xb - xa) * w
		return
	}
	r.frac[oa] += (float64(ia+1) - xa) * w
	// Full pixels ia+1 .. ib-1 via the difference array.
	r.delta[oa+1] += w
	r.delta[ib-r.clip.Min.X] -= w
	if ib < r.clip.Max.X {
		r.frac[ib-r.clip.Min.X] += (xb - float64(ib)) * w
	}
}

// emitRow converts the accumulated row into 8-bit coverage.
func (r *Rasterizer) emitRow(py int, bounds image.Rectangle, dst *image.Alpha) {
	aliased := r.subsamples == 1
	run := 0.0
	for x := r.clip.Min.X; x < bounds.Max.X; x++ {
		o := x - r.clip.Min.X
		run += r.delta[o]
		if x < bounds.Min.X {
			continue
		}
		cov := r.frac[o] + run
		var v uint8
		switch {
		case aliased:
			if cov >= 0.5 {
				v = 0xff
			}
		case cov >= 1:
			v = 0xff
		case cov > 0:
			v = uint8(cov*255 + 0.5)
		}
		dst.Pix[dst.PixOffset(x, py)] = v
	}
}
