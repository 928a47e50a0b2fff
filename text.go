package fitz

// TextItem is one positioned glyph. X and Y are the glyph origin in user
// space; Rune is the Unicode value it represents, or -1 when the glyph is
// part of a multi-glyph cluster already covered by an earlier item.
type TextItem struct {
	GID  GlyphID
	Rune rune
	X, Y float64
}

// TextSpan is a run of glyphs sharing a font and a text rendering matrix.
// Trm maps em units (y up) to user space; its translation is ignored and
// taken from each item instead.
type TextSpan struct {
	Font  *Font
	Trm   Matrix
	Wmode int // 0 horizontal, 1 vertical
	Items []TextItem
}

// glyphMatrix returns the em-to-user transform for item i.
func (s *TextSpan) glyphMatrix(i int) Matrix {
	m := s.Trm
	m.C, m.F = s.Items[i].X, s.Items[i].Y
	return m
}

// glyphBox returns the em space box of item i: its advance by the font's
// ascender and descender.
func (s *TextSpan) glyphBox(i int) Rect {
	adv := s.Font.Advance(s.Items[i].GID)
	return Rect{X0: 0, Y0: s.Font.Descender(), X1: adv, Y1: s.Font.Ascender()}
}

// TextMatrix returns the text rendering matrix for upright text of the
// given size with its baseline origin at (x, y) in y-down user space.
func TextMatrix(size, x, y float64) Matrix {
	return Matrix{A: size, E: -size, C: x, F: y}
}

// Text is a sequence of spans. Text values are built before being handed
// to a device; a recording device keeps its own copy.
type Text struct {
	Spans []*TextSpan
}

// NewText returns empty text.
func NewText() *Text {
	return &Text{}
}

// IsEmpty reports whether the text has no glyphs.
func (t *Text) IsEmpty() bool {
	return t == nil || t.Len() == 0
}

// Len returns the number of glyphs.
func (t *Text) Len() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, s := range t.Spans {
		n += len(s.Items)
	}
	return n
}

// ShowGlyph appends a glyph at the origin given by trm's translation.
func (t *Text) ShowGlyph(font *Font, trm Matrix, gid GlyphID, r rune) {
	tm := trm.WithoutTranslation()
	var span *TextSpan
	if n := len(t.Spans); n > 0 && t.Spans[n-1].Font == font && t.Spans[n-1].Trm == tm {
		span = t.Spans[n-1]
	} else {
		span = &TextSpan{Font: font, Trm: tm}
		t.Spans = append(t.Spans, span)
	}
	span.Items = append(span.Items, TextItem{GID: gid, Rune: r, X: trm.C, Y: trm.F})
}

// ShowString lays out s with nominal advances, one glyph per rune, and
// returns trm advanced past the last glyph. Runes missing from the font
// use glyph 0. No shaping or kerning is applied.
func (t *Text) ShowString(font *Font, trm Matrix, s string) Matrix {
	for _, r := range s {
		gid, _ := font.EncodeRune(r)
		t.ShowGlyph(font, trm, gid, r)
		next := trm.TransformPoint(Pt(font.Advance(gid), 0))
		trm.C, trm.F = next.X, next.Y
	}
	return trm
}

// Bounds returns the device space bounds of the text under ctm, widened
// for stroking when s is non-nil. Each glyph contributes its advance box
// from descender to ascender and its ink.
func (t *Text) Bounds(s *StrokeState, ctm Matrix) Rect {
	if t.IsEmpty() {
		return EmptyRect
	}
	r := EmptyRect
	for _, span := range t.Spans {
		for i := range span.Items {
			box := span.glyphBox(i).Union(span.Font.GlyphBounds(span.Items[i].GID))
			gm := span.glyphMatrix(i)
			if s != nil {
				box = box.Transform(gm).Expand(s.expansion(ctm))
				r = r.Union(box.Transform(ctm))
				continue
			}
			r = r.Union(box.Transform(Concat(gm, ctm)))
		}
	}
	return r
}

// Clone returns a deep copy of the text. Fonts are shared.
func (t *Text) Clone() *Text {
	if t == nil {
		return nil
	}
	c := &Text{Spans: make([]*TextSpan, len(t.Spans))}
	for i, s := range t.Spans {
		cs := *s
		cs.Items = append([]TextItem(nil), s.Items...)
		c.Spans[i] = &cs
	}
	return c
}
