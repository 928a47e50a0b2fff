package fitz

import (
	"math"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Layout thresholds relative to the font size.
const (
	baselineTolerance = 0.5  // perpendicular drift still on the same line
	backtrackLimit    = 0.5  // backwards step still on the same line
	columnGap         = 5.0  // forward gap that starts a new line
	spaceGap          = 0.15 // forward gap that implies a space
	lineSpacing       = 2.0  // baseline distance still in the same block
)

// TextDevice collects characters from text operations into a TextPage.
// Every text operation contributes, including clipping and invisible
// text. Characters are grouped into lines by baseline and into blocks by
// line spacing.
type TextDevice struct {
	BaseDevice

	page  *TextPage
	flags TextPageFlags
	clips []Rect

	block  *TextBlock
	line   *TextLine
	pen    Point // expected origin of the next character on the line
	closed bool
}

// NewTextDevice returns a device that appends to page.
func NewTextDevice(page *TextPage, flags TextPageFlags) *TextDevice {
	page.flags = flags
	return &TextDevice{
		page:  page,
		flags: flags,
		clips: []Rect{InfiniteRect},
	}
}

func (d *TextDevice) has(f TextPageFlags) bool {
	return d.flags&f != 0
}

func (d *TextDevice) check() error {
	if d.closed {
		return errDeviceClosed
	}
	return nil
}

func (d *TextDevice) clip() Rect {
	return d.clips[len(d.clips)-1]
}

// extract adds every glyph of text to the page.
func (d *TextDevice) extract(text *Text, ctm Matrix, c Color) error {
	if err := d.check(); err != nil {
		return err
	}
	if text.IsEmpty() {
		return nil
	}
	for _, span := range text.Spans {
		if d.has(TextPreserveSpans) {
			d.line = nil
		}
		for i, item := range span.Items {
			trm := Concat(span.glyphMatrix(i), ctm)
			box := span.glyphBox(i)
			q := Quad{
				UL: trm.TransformPoint(Pt(box.X0, box.Y1)),
				UR: trm.TransformPoint(Pt(box.X1, box.Y1)),
				LL: trm.TransformPoint(Pt(box.X0, box.Y0)),
				LR: trm.TransformPoint(Pt(box.X1, box.Y0)),
			}
			origin := trm.TransformPoint(Pt(0, 0))
			adv := Pt(box.X1, 0)
			if span.Wmode == 1 {
				adv = Pt(0, -box.X1)
			}
			next := trm.TransformPoint(adv)

			if item.Rune < 0 {
				d.extendLast(q, next)
				continue
			}
			if d.has(TextMediaBoxClip) && !q.Rect().Intersects(d.page.MediaBox) {
				continue
			}
			if d.has(TextClipToVisible) && !q.Rect().Intersects(d.clip()) {
				continue
			}

			dir := next.Sub(origin).Normalize()
			if dir == (Point{}) {
				dir = trm.TransformVector(Pt(1, 0)).Normalize()
			}
			ch := TextChar{
				Rune:   item.Rune,
				Origin: origin,
				Quad:   q,
				Size:   trm.Expansion(),
				Font:   span.Font,
				Color:  c,
			}
			if !d.has(TextPreserveWhitespace) && unicode.IsSpace(ch.Rune) {
				ch.Rune = ' '
			}
			d.place(ch, dir, span.Wmode)
			d.addChar(ch, next)
		}
	}
	return nil
}

// extendLast widens the previous character to cover a glyph that belongs
// to the same cluster.
func (d *TextDevice) extendLast(q Quad, next Point) {
	if d.line == nil || len(d.line.Chars) == 0 {
		return
	}
	last := &d.line.Chars[len(d.line.Chars)-1]
	last.Quad = last.Quad.Union(q)
	d.line.Bbox = d.line.Bbox.Union(q.Rect())
	d.block.Bbox = d.block.Bbox.Union(q.Rect())
	d.pen = next
}

// place starts a new line or block for ch when it does not continue the
// current line, and inserts an inferred space for a wide gap.
func (d *TextDevice) place(ch TextChar, dir Point, wmode int) {
	size := math.Max(ch.Size, 1e-6)
	if l := d.line; l != nil && l.Wmode == wmode && l.Dir.Dot(dir) > 0.95 {
		delta := ch.Origin.Sub(d.pen)
		along := delta.Dot(l.Dir)
		perp := math.Abs(l.Dir.Cross(delta))
		if perp < size*baselineTolerance && along > -size*backtrackLimit && along < size*columnGap {
			if along > size*spaceGap && !d.has(TextInhibitSpaces) && ch.Rune != ' ' {
				d.inferSpace(ch)
			}
			return
		}
	}

	newBlock := true
	if l := d.line; l != nil && d.block != nil && l.Wmode == wmode && l.Dir.Dot(dir) > 0.95 && len(l.Chars) > 0 {
		first := l.Chars[0]
		down := l.Dir.Cross(ch.Origin.Sub(first.Origin))
		if down > 0 && down < lineSpacing*math.Max(size, first.Size) {
			newBlock = false
		}
	}
	if newBlock {
		d.block = &TextBlock{Bbox: EmptyRect}
		d.page.Blocks = append(d.page.Blocks, d.block)
	}
	d.line = &TextLine{Bbox: EmptyRect, Dir: dir, Wmode: wmode}
	d.block.Lines = append(d.block.Lines, d.line)
}

// inferSpace appends a space spanning the gap before ch.
func (d *TextDevice) inferSpace(ch TextChar) {
	n := len(d.line.Chars)
	if n == 0 || d.line.Chars[n-1].Rune == ' ' {
		return
	}
	last := d.line.Chars[n-1]
	d.appendChar(TextChar{
		Rune:   ' ',
		Origin: d.pen,
		Quad:   Quad{UL: last.Quad.UR, UR: ch.Quad.UL, LL: last.Quad.LR, LR: ch.Quad.LL},
		Size:   last.Size,
		Font:   last.Font,
		Color:  last.Color,
	})
}

// addChar appends ch to the current line, expanding ligatures unless they
// are preserved.
func (d *TextDevice) addChar(ch TextChar, next Point) {
	d.pen = next
	if d.has(TextPreserveLigatures) || ch.Rune < 0xFB00 || ch.Rune > 0xFB4F {
		d.appendChar(ch)
		return
	}
	parts := []rune(norm.NFKC.String(string(ch.Rune)))
	if len(parts) < 2 {
		d.appendChar(ch)
		return
	}
	n := float64(len(parts))
	q := ch.Quad
	for k, r := range parts {
		t0, t1 := float64(k)/n, float64(k+1)/n
		sub := ch
		sub.Rune = r
		sub.Origin = lerp(ch.Origin, next, t0)
		sub.Quad = Quad{
			UL: lerp(q.UL, q.UR, t0),
			UR: lerp(q.UL, q.UR, t1),
			LL: lerp(q.LL, q.LR, t0),
			LR: lerp(q.LL, q.LR, t1),
		}
		d.appendChar(sub)
	}
}

func (d *TextDevice) appendChar(ch TextChar) {
	d.line.Chars = append(d.line.Chars, ch)
	r := ch.Quad.Rect()
	d.line.Bbox = d.line.Bbox.Union(r)
	d.block.Bbox = d.block.Bbox.Union(r)
}

func lerp(a, b Point, t float64) Point {
	return Pt(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t)
}

// FillText implements Device.
func (d *TextDevice) FillText(text *Text, ctm Matrix, c Color, _ float64) error {
	return d.extract(text, ctm, c)
}

// StrokeText implements Device.
func (d *TextDevice) StrokeText(text *Text, _ *StrokeState, ctm Matrix, c Color, _ float64) error {
	return d.extract(text, ctm, c)
}

// ClipText implements Device.
func (d *TextDevice) ClipText(text *Text, ctm Matrix, scissor Rect) error {
	if err := d.extract(text, ctm, Black); err != nil {
		return err
	}
	d.pushClip(text.Bounds(nil, ctm), scissor)
	return nil
}

// ClipStrokeText implements Device.
func (d *TextDevice) ClipStrokeText(text *Text, s *StrokeState, ctm Matrix, scissor Rect) error {
	if err := d.extract(text, ctm, Black); err != nil {
		return err
	}
	d.pushClip(text.Bounds(s, ctm), scissor)
	return nil
}

// IgnoreText implements Device. Invisible text is extracted like any
// other text.
func (d *TextDevice) IgnoreText(text *Text, ctm Matrix) error {
	return d.extract(text, ctm, Black)
}

func (d *TextDevice) pushClip(area, scissor Rect) {
	d.clips = append(d.clips, d.clip().Intersect(area).Intersect(scissor))
}

// ClipPath implements Device.
func (d *TextDevice) ClipPath(path *Path, _ bool, ctm Matrix, scissor Rect) error {
	if err := d.check(); err != nil {
		return err
	}
	d.pushClip(path.Bounds(ctm), scissor)
	return nil
}

// ClipStrokePath implements Device.
func (d *TextDevice) ClipStrokePath(path *Path, s *StrokeState, ctm Matrix, scissor Rect) error {
	if err := d.check(); err != nil {
		return err
	}
	d.pushClip(StrokedBounds(path, s, ctm), scissor)
	return nil
}

// ClipImageMask implements Device.
func (d *TextDevice) ClipImageMask(_ *Image, ctm Matrix, scissor Rect) error {
	if err := d.check(); err != nil {
		return err
	}
	d.pushClip(unitRect.Transform(ctm), scissor)
	return nil
}

// PopClip implements Device.
func (d *TextDevice) PopClip() error {
	if err := d.check(); err != nil {
		return err
	}
	if len(d.clips) == 1 {
		return errUnbalancedClip
	}
	d.clips = d.clips[:len(d.clips)-1]
	return nil
}

// FillImage implements Device. With TextPreserveImages the placement is
// recorded as an image block.
func (d *TextDevice) FillImage(img *Image, ctm Matrix, _ float64) error {
	if err := d.check(); err != nil {
		return err
	}
	if !d.has(TextPreserveImages) {
		return nil
	}
	d.page.Blocks = append(d.page.Blocks, &TextBlock{
		Bbox:      unitRect.Transform(ctm),
		Image:     img,
		Transform: ctm,
	})
	d.block, d.line = nil, nil
	return nil
}

// FillImageMask implements Device.
func (d *TextDevice) FillImageMask(img *Image, ctm Matrix, _ Color, alpha float64) error {
	return d.FillImage(img, ctm, alpha)
}

// Close implements Device. Further calls are no-ops.
func (d *TextDevice) Close() error {
	d.closed = true
	d.block, d.line = nil, nil
	return nil
}

var _ Device = (*TextDevice)(nil)
