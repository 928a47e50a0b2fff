package fitz

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/fitz/internal/raster"
	"github.com/gogpu/fitz/internal/stroke"
)

var (
	errUnbalancedClip  = errors.New("pop clip without matching clip")
	errUnbalancedGroup = errors.New("end group without matching begin group")
	errDeviceClosed    = errors.New("device is closed")
)

// drawState is the clip in effect: a scissor rectangle and an optional
// coverage mask over it.
type drawState struct {
	scissor image.Rectangle
	mask    *image.Alpha
}

type drawEntry struct {
	prev  drawState
	group bool
	dest  *image.RGBA // canvas the group composites onto
	alpha float64
}

// DrawDevice rasterizes drawing operations into a pixmap. Drawing happens
// on a premultiplied RGBA canvas; Close converts it into the pixmap's
// colour space.
type DrawDevice struct {
	pix    *Pixmap
	canvas *image.RGBA
	rast   *raster.Rasterizer
	state  drawState
	stack  []drawEntry
	closed bool
}

// NewDrawDevice returns a device that renders into pix. The current pixmap
// contents are the backdrop. ctx selects the anti-aliasing level; nil
// means the default context.
func NewDrawDevice(pix *Pixmap, ctx *Context) *DrawDevice {
	if ctx == nil {
		ctx = DefaultContext()
	}
	canvas := pix.RGBA()
	return &DrawDevice{
		pix:    pix,
		canvas: canvas,
		rast:   raster.NewRasterizer(canvas.Bounds(), ctx.subsamples()),
		state:  drawState{scissor: canvas.Bounds()},
	}
}

// deviceRect converts a device space rectangle to the pixels it touches.
func deviceRect(r Rect) image.Rectangle {
	if r.IsInfinite() {
		return image.Rect(minInf, minInf, maxInf, maxInf)
	}
	return r.RoundOut().Image()
}

// coverage rasterizes contours inside the current scissor and applies the
// clip mask. It returns nil when nothing is covered.
func (d *DrawDevice) coverage(contours []raster.Contour, rule raster.FillRule) *image.Alpha {
	if d.state.scissor.Empty() || len(contours) == 0 {
		return nil
	}
	d.rast.SetClip(d.state.scissor)
	for _, c := range contours {
		d.rast.AddContour(c)
	}
	b := d.rast.Bounds()
	if b.Empty() {
		return nil
	}
	mask := image.NewAlpha(b)
	d.rast.Rasterize(rule, mask)
	d.applyClip(mask)
	return mask
}

// applyClip multiplies mask by the clip mask in effect.
func (d *DrawDevice) applyClip(mask *image.Alpha) {
	clip := d.state.mask
	if clip == nil {
		return
	}
	b := mask.Rect
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			i := mask.PixOffset(x, y)
			if mask.Pix[i] == 0 {
				continue
			}
			mask.Pix[i] = mul8(mask.Pix[i], clip.AlphaAt(x, y).A)
		}
	}
}

func mul8(a, b uint8) uint8 {
	t := uint32(a)*uint32(b) + 128
	return uint8((t + t>>8) >> 8)
}

// pathContours flattens a filled path into device space contours.
func pathContours(path *Path, ctm Matrix) []raster.Contour {
	if path.IsEmpty() {
		return nil
	}
	lines := path.flatten(ctm, flatness)
	out := make([]raster.Contour, 0, len(lines))
	for _, l := range lines {
		out = append(out, raster.Contour(l.Points))
	}
	return out
}

// strokeContours strokes path in user space and maps the outline to device
// space, so non-uniform matrices distort the pen the same way they do the
// path.
func strokeContours(path *Path, s *StrokeState, ctm Matrix) []raster.Contour {
	if path.IsEmpty() {
		return nil
	}
	if s == nil {
		s = NewStrokeState()
	}
	exp := ctm.Expansion()
	if exp < 1e-12 {
		return nil
	}
	tol := flatness / exp
	lines := path.flatten(Identity(), tol)
	contours := stroke.Stroke(lines, s.style(s.effectiveWidth(ctm)), tol)
	for _, c := range contours {
		for i, p := range c {
			q := ctm.TransformPoint(Pt(p.X, p.Y))
			c[i] = raster.Point{X: q.X, Y: q.Y}
		}
	}
	return contours
}

// textContours returns the device space outlines of every glyph.
func textContours(text *Text, s *StrokeState, ctm Matrix) []raster.Contour {
	if text.IsEmpty() {
		return nil
	}
	var out []raster.Contour
	for _, span := range text.Spans {
		for i, item := range span.Items {
			outline := span.Font.Outline(item.GID)
			if outline.IsEmpty() {
				continue
			}
			gm := span.glyphMatrix(i)
			if s != nil {
				out = append(out, strokeContours(outline.Transform(gm), s, ctm)...)
			} else {
				out = append(out, pathContours(outline, Concat(gm, ctm))...)
			}
		}
	}
	return out
}

func fillRule(evenOdd bool) raster.FillRule {
	if evenOdd {
		return raster.EvenOdd
	}
	return raster.NonZero
}

// paint composites color through mask onto the canvas.
func (d *DrawDevice) paint(mask *image.Alpha, c Color, alpha float64) {
	if mask == nil || alpha <= 0 {
		return
	}
	src := image.NewUniform(c.premul(alpha))
	draw.DrawMask(d.canvas, mask.Rect, src, image.Point{}, mask, mask.Rect.Min, draw.Over)
}

func (d *DrawDevice) check() error {
	if d.closed {
		return errDeviceClosed
	}
	return nil
}

// FillPath implements Device.
func (d *DrawDevice) FillPath(path *Path, evenOdd bool, ctm Matrix, c Color, alpha float64) error {
	if err := d.check(); err != nil {
		return err
	}
	d.paint(d.coverage(pathContours(path, ctm), fillRule(evenOdd)), c, alpha)
	return nil
}

// StrokePath implements Device.
func (d *DrawDevice) StrokePath(path *Path, s *StrokeState, ctm Matrix, c Color, alpha float64) error {
	if err := d.check(); err != nil {
		return err
	}
	d.paint(d.coverage(strokeContours(path, s, ctm), raster.NonZero), c, alpha)
	return nil
}

// FillText implements Device.
func (d *DrawDevice) FillText(text *Text, ctm Matrix, c Color, alpha float64) error {
	if err := d.check(); err != nil {
		return err
	}
	d.paint(d.coverage(textContours(text, nil, ctm), raster.NonZero), c, alpha)
	return nil
}

// StrokeText implements Device.
func (d *DrawDevice) StrokeText(text *Text, s *StrokeState, ctm Matrix, c Color, alpha float64) error {
	if err := d.check(); err != nil {
		return err
	}
	d.paint(d.coverage(textContours(text, s, ctm), raster.NonZero), c, alpha)
	return nil
}

// IgnoreText implements Device. Invisible text paints nothing.
func (d *DrawDevice) IgnoreText(*Text, Matrix) error {
	return d.check()
}

// pushClip narrows the clip to mask (nil clips everything) intersected
// with the device space scissor.
func (d *DrawDevice) pushClip(mask *image.Alpha, scissor Rect) {
	d.stack = append(d.stack, drawEntry{prev: d.state})
	next := drawState{scissor: d.state.scissor.Intersect(deviceRect(scissor))}
	if mask == nil {
		next.scissor = image.Rectangle{}
	} else {
		next.scissor = next.scissor.Intersect(mask.Rect)
		next.mask = mask
	}
	d.state = next
}

// ClipPath implements Device.
func (d *DrawDevice) ClipPath(path *Path, evenOdd bool, ctm Matrix, scissor Rect) error {
	if err := d.check(); err != nil {
		return err
	}
	d.pushClip(d.coverage(pathContours(path, ctm), fillRule(evenOdd)), scissor)
	return nil
}

// ClipStrokePath implements Device.
func (d *DrawDevice) ClipStrokePath(path *Path, s *StrokeState, ctm Matrix, scissor Rect) error {
	if err := d.check(); err != nil {
		return err
	}
	d.pushClip(d.coverage(strokeContours(path, s, ctm), raster.NonZero), scissor)
	return nil
}

// ClipText implements Device.
func (d *DrawDevice) ClipText(text *Text, ctm Matrix, scissor Rect) error {
	if err := d.check(); err != nil {
		return err
	}
	d.pushClip(d.coverage(textContours(text, nil, ctm), raster.NonZero), scissor)
	return nil
}

// ClipStrokeText implements Device.
func (d *DrawDevice) ClipStrokeText(text *Text, s *StrokeState, ctm Matrix, scissor Rect) error {
	if err := d.check(); err != nil {
		return err
	}
	d.pushClip(d.coverage(textContours(text, s, ctm), raster.NonZero), scissor)
	return nil
}

// FillShade implements Device.
func (d *DrawDevice) FillShade(shade *Shade, ctm Matrix, alpha float64) error {
	if err := d.check(); err != nil {
		return err
	}
	full := Concat(shade.Matrix, ctm)
	inv, ok := full.Invert()
	if !ok || alpha <= 0 {
		return nil
	}
	b := d.state.scissor.Intersect(deviceRect(shade.Bounds(ctm)))
	if b.Empty() {
		return nil
	}
	layer := image.NewRGBA(b)
	mask := image.NewAlpha(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := inv.TransformPoint(Pt(float64(x)+0.5, float64(y)+0.5))
			c, ok := shade.ColorAt(p)
			if !ok {
				continue
			}
			layer.SetRGBA(x, y, c.premul(1))
			mask.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}
	d.applyClip(mask)
	d.composite(layer, mask, alpha)
	return nil
}

// composite draws layer onto the canvas through mask scaled by alpha.
func (d *DrawDevice) composite(layer *image.RGBA, mask *image.Alpha, alpha float64) {
	if alpha < 1 {
		a := uint8(clamp01(alpha)*255 + 0.5)
		for i, v := range mask.Pix {
			mask.Pix[i] = mul8(v, a)
		}
	}
	draw.DrawMask(d.canvas, mask.Rect, layer, mask.Rect.Min, mask, mask.Rect.Min, draw.Over)
}

// placeImage resamples img into a layer covering its device footprint
// inside the scissor.
func (d *DrawDevice) placeImage(img *Image, ctm Matrix) (*image.RGBA, error) {
	src, err := img.Decode()
	if err != nil {
		return nil, err
	}
	if img.w == 0 || img.h == 0 {
		return nil, nil
	}
	m := Concat(Scale(1/float64(img.w), 1/float64(img.h)), ctm)
	if m.Determinant() == 0 {
		return nil, nil
	}
	area := QuadFromRect(Rect{X1: float64(img.w), Y1: float64(img.h)}).Transform(m).Rect()
	b := d.state.scissor.Intersect(deviceRect(area))
	if b.Empty() {
		return nil, nil
	}
	layer := image.NewRGBA(b)
	s2d := f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}
	draw.ApproxBiLinear.Transform(layer, s2d, src, src.Bounds(), draw.Src, nil)
	return layer, nil
}

// alphaOf returns the alpha channel of layer as a mask.
func alphaOf(layer *image.RGBA) *image.Alpha {
	mask := image.NewAlpha(layer.Rect)
	for i := range mask.Pix {
		mask.Pix[i] = layer.Pix[4*i+3]
	}
	return mask
}

// FillImage implements Device. The image fills the unit square under ctm.
func (d *DrawDevice) FillImage(img *Image, ctm Matrix, alpha float64) error {
	if err := d.check(); err != nil {
		return err
	}
	layer, err := d.placeImage(img, ctm)
	if err != nil || layer == nil {
		return err
	}
	mask := image.NewAlpha(layer.Rect)
	for i := range mask.Pix {
		mask.Pix[i] = 255
	}
	d.applyClip(mask)
	d.composite(layer, mask, alpha)
	return nil
}

// FillImageMask implements Device. The image's alpha channel is the mask
// through which color is painted.
func (d *DrawDevice) FillImageMask(img *Image, ctm Matrix, c Color, alpha float64) error {
	if err := d.check(); err != nil {
		return err
	}
	layer, err := d.placeImage(img, ctm)
	if err != nil || layer == nil {
		return err
	}
	mask := alphaOf(layer)
	d.applyClip(mask)
	d.paint(mask, c, alpha)
	return nil
}

// ClipImageMask implements Device.
func (d *DrawDevice) ClipImageMask(img *Image, ctm Matrix, scissor Rect) error {
	if err := d.check(); err != nil {
		return err
	}
	layer, err := d.placeImage(img, ctm)
	if err != nil {
		return err
	}
	var mask *image.Alpha
	if layer != nil {
		mask = alphaOf(layer)
		d.applyClip(mask)
	}
	d.pushClip(mask, scissor)
	return nil
}

// PopClip implements Device.
func (d *DrawDevice) PopClip() error {
	if err := d.check(); err != nil {
		return err
	}
	n := len(d.stack)
	if n == 0 || d.stack[n-1].group {
		return errUnbalancedClip
	}
	d.state = d.stack[n-1].prev
	d.stack = d.stack[:n-1]
	return nil
}

// BeginGroup implements Device. Groups render into a transparent layer
// that EndGroup composites with the group alpha. Knockout groups are
// rendered as ordinary isolated groups.
func (d *DrawDevice) BeginGroup(area Rect, _, _ bool, alpha float64) error {
	if err := d.check(); err != nil {
		return err
	}
	d.stack = append(d.stack, drawEntry{prev: d.state, group: true, dest: d.canvas, alpha: alpha})
	d.state.scissor = d.state.scissor.Intersect(deviceRect(area))
	d.canvas = image.NewRGBA(d.canvas.Rect)
	return nil
}

// EndGroup implements Device.
func (d *DrawDevice) EndGroup() error {
	if err := d.check(); err != nil {
		return err
	}
	n := len(d.stack)
	if n == 0 || !d.stack[n-1].group {
		return errUnbalancedGroup
	}
	e := d.stack[n-1]
	d.stack = d.stack[:n-1]

	layer := d.canvas
	b := d.state.scissor
	d.canvas, d.state = e.dest, e.prev
	if b.Empty() || e.alpha <= 0 {
		return nil
	}
	a := uint8(clamp01(e.alpha)*255 + 0.5)
	draw.DrawMask(d.canvas, b, layer, b.Min, image.NewUniform(color.Alpha{A: a}), image.Point{}, draw.Over)
	return nil
}

// Close finishes pending groups, discards pending clips and writes the
// canvas into the pixmap. Further calls are no-ops.
func (d *DrawDevice) Close() error {
	if d.closed {
		return nil
	}
	for len(d.stack) > 0 {
		if d.stack[len(d.stack)-1].group {
			_ = d.EndGroup()
		} else {
			_ = d.PopClip()
		}
	}
	d.pix.loadRGBA(d.canvas)
	d.closed = true
	return nil
}

var _ Device = (*DrawDevice)(nil)
