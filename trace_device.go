package fitz

import (
	"fmt"
	"io"
	"strings"
)

// TraceDevice writes one line per device call, indented by clip and
// group nesting. It is meant for debugging recordings.
//
// Output looks like:
//
//	fill_path nonzero ctm=[1 0 0 0 1 0] color=DeviceRGB(1 0 0) alpha=1 bbox=[0 0 10 10]
//	clip_path evenodd ctm=[1 0 0 0 1 0] bbox=[0 0 5 5]
//	  fill_text glyphs=5 ctm=[1 0 0 0 1 0] color=DeviceGray(0) alpha=1 text="Hello"
//	pop_clip
type TraceDevice struct {
	w     io.Writer
	depth int
}

// NewTraceDevice returns a device that writes to w.
func NewTraceDevice(w io.Writer) *TraceDevice {
	return &TraceDevice{w: w}
}

func (d *TraceDevice) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(d.w, strings.Repeat("  ", d.depth)+format+"\n", args...)
	return err
}

func ruleName(evenOdd bool) string {
	if evenOdd {
		return "evenodd"
	}
	return "nonzero"
}

func textString(text *Text) string {
	var sb strings.Builder
	if text == nil {
		return ""
	}
	for _, s := range text.Spans {
		for _, it := range s.Items {
			if it.Rune >= 0 {
				sb.WriteRune(it.Rune)
			}
		}
	}
	return sb.String()
}

// FillPath implements Device.
func (d *TraceDevice) FillPath(path *Path, evenOdd bool, ctm Matrix, c Color, alpha float64) error {
	return d.printf("fill_path %s ctm=%v color=%v alpha=%g bbox=%v", ruleName(evenOdd), ctm, c, alpha, path.Bounds(ctm))
}

// StrokePath implements Device.
func (d *TraceDevice) StrokePath(path *Path, s *StrokeState, ctm Matrix, c Color, alpha float64) error {
	return d.printf("stroke_path width=%g ctm=%v color=%v alpha=%g bbox=%v", strokeWidth(s), ctm, c, alpha, StrokedBounds(path, s, ctm))
}

func strokeWidth(s *StrokeState) float64 {
	if s == nil {
		return 1
	}
	return s.Width
}

// ClipPath implements Device.
func (d *TraceDevice) ClipPath(path *Path, evenOdd bool, ctm Matrix, scissor Rect) error {
	err := d.printf("clip_path %s ctm=%v bbox=%v", ruleName(evenOdd), ctm, path.Bounds(ctm).Intersect(scissor))
	d.depth++
	return err
}

// ClipStrokePath implements Device.
func (d *TraceDevice) ClipStrokePath(path *Path, s *StrokeState, ctm Matrix, scissor Rect) error {
	err := d.printf("clip_stroke_path width=%g ctm=%v bbox=%v", strokeWidth(s), ctm, StrokedBounds(path, s, ctm).Intersect(scissor))
	d.depth++
	return err
}

// FillText implements Device.
func (d *TraceDevice) FillText(text *Text, ctm Matrix, c Color, alpha float64) error {
	return d.printf("fill_text glyphs=%d ctm=%v color=%v alpha=%g text=%q", text.Len(), ctm, c, alpha, textString(text))
}

// StrokeText implements Device.
func (d *TraceDevice) StrokeText(text *Text, s *StrokeState, ctm Matrix, c Color, alpha float64) error {
	return d.printf("stroke_text glyphs=%d width=%g ctm=%v color=%v alpha=%g text=%q", text.Len(), strokeWidth(s), ctm, c, alpha, textString(text))
}

// ClipText implements Device.
func (d *TraceDevice) ClipText(text *Text, ctm Matrix, _ Rect) error {
	err := d.printf("clip_text glyphs=%d ctm=%v text=%q", text.Len(), ctm, textString(text))
	d.depth++
	return err
}

// ClipStrokeText implements Device.
func (d *TraceDevice) ClipStrokeText(text *Text, s *StrokeState, ctm Matrix, _ Rect) error {
	err := d.printf("clip_stroke_text glyphs=%d width=%g ctm=%v text=%q", text.Len(), strokeWidth(s), ctm, textString(text))
	d.depth++
	return err
}

// IgnoreText implements Device.
func (d *TraceDevice) IgnoreText(text *Text, ctm Matrix) error {
	return d.printf("ignore_text glyphs=%d ctm=%v text=%q", text.Len(), ctm, textString(text))
}

// FillShade implements Device.
func (d *TraceDevice) FillShade(shade *Shade, ctm Matrix, alpha float64) error {
	kind := "linear"
	if shade.Type == ShadeRadial {
		kind = "radial"
	}
	return d.printf("fill_shade %s stops=%d ctm=%v alpha=%g", kind, len(shade.Stops), ctm, alpha)
}

// FillImage implements Device.
func (d *TraceDevice) FillImage(img *Image, ctm Matrix, alpha float64) error {
	return d.printf("fill_image %dx%d ctm=%v alpha=%g", img.Width(), img.Height(), ctm, alpha)
}

// FillImageMask implements Device.
func (d *TraceDevice) FillImageMask(img *Image, ctm Matrix, c Color, alpha float64) error {
	return d.printf("fill_image_mask %dx%d ctm=%v color=%v alpha=%g", img.Width(), img.Height(), ctm, c, alpha)
}

// ClipImageMask implements Device.
func (d *TraceDevice) ClipImageMask(img *Image, ctm Matrix, _ Rect) error {
	err := d.printf("clip_image_mask %dx%d ctm=%v", img.Width(), img.Height(), ctm)
	d.depth++
	return err
}

// PopClip implements Device.
func (d *TraceDevice) PopClip() error {
	d.depth = max(d.depth-1, 0)
	return d.printf("pop_clip")
}

// BeginGroup implements Device.
func (d *TraceDevice) BeginGroup(area Rect, isolated, knockout bool, alpha float64) error {
	err := d.printf("begin_group bbox=%v isolated=%t knockout=%t alpha=%g", area, isolated, knockout, alpha)
	d.depth++
	return err
}

// EndGroup implements Device.
func (d *TraceDevice) EndGroup() error {
	d.depth = max(d.depth-1, 0)
	return d.printf("end_group")
}

// Close implements Device.
func (d *TraceDevice) Close() error {
	return nil
}

var _ Device = (*TraceDevice)(nil)
