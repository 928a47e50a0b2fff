package fitz

import (
	"errors"
	"image"
	"strings"
	"testing"
)

// extract runs draw into a text device and returns the page.
func extract(t *testing.T, flags TextPageFlags, draw func(dev Device) error) *TextPage {
	t.Helper()
	page := NewTextPage(Rect{X1: 612, Y1: 792})
	dev := NewTextDevice(page, flags)
	if err := draw(dev); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return page
}

func showText(dev Device, font *Font, size, x, y float64, s string) error {
	text := NewText()
	text.ShowString(font, TextMatrix(size, x, y), s)
	return dev.FillText(text, Identity(), Black, 1)
}

func stringWidth(font *Font, size float64, s string) float64 {
	w := 0.0
	for _, r := range s {
		gid, _ := font.EncodeRune(r)
		w += size * font.Advance(gid)
	}
	return w
}

func TestTextDeviceLines(t *testing.T) {
	font := DefaultFont()
	page := extract(t, 0, func(dev Device) error {
		if err := showText(dev, font, 10, 50, 100, "first line"); err != nil {
			return err
		}
		if err := showText(dev, font, 10, 50, 112, "second line"); err != nil {
			return err
		}
		return showText(dev, font, 10, 50, 300, "new block")
	})

	if got, want := page.Text(), "first line\nsecond line\n\nnew block\n\n"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	if len(page.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(page.Blocks))
	}
	l := page.Blocks[0].Lines[0]
	if l.Dir != Pt(1, 0) {
		t.Errorf("line direction = %v, want (1,0)", l.Dir)
	}
	if c := l.Chars[0]; c.Size != 10 || c.Origin != Pt(50, 100) || c.Font != font {
		t.Errorf("first char = %+v", c)
	}
	if page.CharCount() != len("first line")+len("second line")+len("new block") {
		t.Errorf("CharCount = %d", page.CharCount())
	}
}

func TestTextDeviceSpaces(t *testing.T) {
	font := DefaultFont()
	gap := 5.0
	draw := func(dev Device) error {
		if err := showText(dev, font, 10, 50, 100, "foo"); err != nil {
			return err
		}
		return showText(dev, font, 10, 50+stringWidth(font, 10, "foo")+gap, 100, "bar")
	}
	tests := []struct {
		name  string
		flags TextPageFlags
		want  string
	}{
		{"inferred", 0, "foo bar"},
		{"inhibited", TextInhibitSpaces, "foobar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := extract(t, tt.flags, draw)
			if len(page.Blocks) != 1 || len(page.Blocks[0].Lines) != 1 {
				t.Fatalf("layout = %q, want one line", page.Text())
			}
			line := page.Blocks[0].Lines[0]
			if got := line.String(); got != tt.want {
				t.Errorf("line = %q, want %q", got, tt.want)
			}
		})
	}

	page := extract(t, 0, draw)
	space := page.Blocks[0].Lines[0].Chars[3]
	if w := space.Quad.UR.X - space.Quad.UL.X; w < gap-1e-9 || w > gap+1e-9 {
		t.Errorf("inferred space width = %g, want %g", w, gap)
	}
}

func TestTextDeviceColumnGap(t *testing.T) {
	font := DefaultFont()
	page := extract(t, 0, func(dev Device) error {
		if err := showText(dev, font, 10, 50, 100, "left"); err != nil {
			return err
		}
		return showText(dev, font, 10, 400, 100, "right")
	})
	if got := page.CharCount(); got != len("leftright") {
		t.Errorf("CharCount = %d; a column gap must not infer a space", got)
	}
	lines := 0
	for _, b := range page.Blocks {
		lines += len(b.Lines)
	}
	if lines != 2 {
		t.Errorf("lines = %d, want 2", lines)
	}
}

func TestTextDeviceLigatures(t *testing.T) {
	font := DefaultFont()
	draw := func(dev Device) error {
		text := NewText()
		trm := text.ShowString(font, TextMatrix(10, 50, 100), "de")
		gid, _ := font.EncodeRune('\ufb01')
		text.ShowGlyph(font, trm, gid, '\ufb01')
		return dev.FillText(text, Identity(), Black, 1)
	}

	page := extract(t, 0, draw)
	line := page.Blocks[0].Lines[0]
	if got := line.String(); got != "defi" {
		t.Fatalf("expanded = %q, want %q", got, "defi")
	}
	f, i := line.Chars[2], line.Chars[3]
	if f.Quad.UR != i.Quad.UL || f.Quad.LR != i.Quad.LL {
		t.Errorf("ligature parts do not tile: %+v %+v", f.Quad, i.Quad)
	}
	if f.Quad.UL.X >= i.Quad.UL.X {
		t.Error("ligature parts out of order")
	}

	page = extract(t, TextPreserveLigatures, draw)
	if got := page.Blocks[0].Lines[0].String(); got != "de\ufb01" {
		t.Errorf("preserved = %q, want %q", got, "de\ufb01")
	}
}

func TestTextDeviceWhitespace(t *testing.T) {
	font := DefaultFont()
	draw := func(dev Device) error {
		return showText(dev, font, 10, 50, 100, "a\tb c")
	}
	tests := []struct {
		flags TextPageFlags
		want  string
	}{
		{0, "a b c"},
		{TextPreserveWhitespace, "a\tb c"},
	}
	for _, tt := range tests {
		page := extract(t, tt.flags, draw)
		if got := page.Blocks[0].Lines[0].String(); got != tt.want {
			t.Errorf("flags %b: line = %q, want %q", tt.flags, got, tt.want)
		}
	}
}

func TestTextDeviceClusters(t *testing.T) {
	font := DefaultFont()
	page := extract(t, 0, func(dev Device) error {
		text := NewText()
		trm := text.ShowString(font, TextMatrix(10, 50, 100), "e")
		gid, _ := font.EncodeRune('x')
		text.ShowGlyph(font, trm, gid, -1)
		return dev.FillText(text, Identity(), Black, 1)
	})
	line := page.Blocks[0].Lines[0]
	if len(line.Chars) != 1 {
		t.Fatalf("chars = %d, want 1", len(line.Chars))
	}
	if line.Chars[0].Quad.UR.X <= 50+stringWidth(font, 10, "e") {
		t.Error("continuation glyph did not extend the character")
	}
}

func TestTextDeviceMediaBoxClip(t *testing.T) {
	font := DefaultFont()
	draw := func(dev Device) error {
		if err := showText(dev, font, 10, -500, 100, "outside"); err != nil {
			return err
		}
		return showText(dev, font, 10, 50, 100, "inside")
	}
	if got := extract(t, 0, draw).Text(); !strings.Contains(got, "outside") {
		t.Errorf("without clipping: %q", got)
	}
	if got := extract(t, TextMediaBoxClip, draw).Text(); got != "inside\n\n" {
		t.Errorf("with media box clip: %q, want %q", got, "inside\n\n")
	}
}

func TestTextDeviceClipToVisible(t *testing.T) {
	font := DefaultFont()
	draw := func(dev Device) error {
		if err := dev.ClipPath(rectPath(0, 0, 200, 200), false, Identity(), InfiniteRect); err != nil {
			return err
		}
		if err := showText(dev, font, 10, 50, 100, "seen"); err != nil {
			return err
		}
		if err := showText(dev, font, 10, 50, 400, "hidden"); err != nil {
			return err
		}
		if err := dev.PopClip(); err != nil {
			return err
		}
		return showText(dev, font, 10, 50, 600, "after")
	}

	if got := extract(t, 0, draw).Text(); !strings.Contains(got, "hidden") {
		t.Errorf("without clipping: %q", got)
	}
	got := extract(t, TextClipToVisible, draw).Text()
	if want := "seen\n\nafter\n\n"; got != want {
		t.Errorf("with clip to visible: %q, want %q", got, want)
	}
}

func TestTextDeviceImages(t *testing.T) {
	font := DefaultFont()
	img := NewImage(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	ctm := Matrix{A: 100, E: 50, C: 10, F: 20}
	draw := func(dev Device) error {
		if err := showText(dev, font, 10, 50, 10, "caption"); err != nil {
			return err
		}
		return dev.FillImage(img, ctm, 1)
	}

	if page := extract(t, 0, draw); len(page.Blocks) != 1 {
		t.Errorf("blocks = %d, want images dropped", len(page.Blocks))
	}

	page := extract(t, TextPreserveImages, draw)
	if len(page.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(page.Blocks))
	}
	b := page.Blocks[1]
	if b.Image != img || b.Transform != ctm {
		t.Errorf("image block = %+v", b)
	}
	if want := (Rect{X0: 10, Y0: 20, X1: 110, Y1: 70}); b.Bbox != want {
		t.Errorf("image bbox = %v, want %v", b.Bbox, want)
	}
	if got := page.Text(); got != "caption\n\n" {
		t.Errorf("Text() = %q, want image blocks skipped", got)
	}
}

func TestTextDeviceInvisibleText(t *testing.T) {
	font := DefaultFont()
	page := extract(t, 0, func(dev Device) error {
		text := NewText()
		text.ShowString(font, TextMatrix(10, 50, 100), "ocr")
		return dev.IgnoreText(text, Identity())
	})
	if got := page.Text(); got != "ocr\n\n" {
		t.Errorf("Text() = %q", got)
	}
}

func TestTextDevicePreserveSpans(t *testing.T) {
	regular := DefaultFont()
	bold, err := LoadBuiltinFont("Helvetica-Bold")
	if err != nil {
		t.Fatalf("LoadBuiltinFont: %v", err)
	}
	draw := func(dev Device) error {
		text := NewText()
		trm := text.ShowString(regular, TextMatrix(10, 50, 100), "plain")
		text.ShowString(bold, trm, "bold")
		return dev.FillText(text, Identity(), Black, 1)
	}

	lines := func(p *TextPage) int {
		n := 0
		for _, b := range p.Blocks {
			n += len(b.Lines)
		}
		return n
	}
	if n := lines(extract(t, 0, draw)); n != 1 {
		t.Errorf("lines = %d, want 1", n)
	}
	page := extract(t, TextPreserveSpans, draw)
	if n := lines(page); n != 2 {
		t.Errorf("lines with preserved spans = %d, want 2", n)
	}
	if page.Flags() != TextPreserveSpans {
		t.Errorf("Flags() = %b", page.Flags())
	}
}

func TestTextDeviceTransformed(t *testing.T) {
	font := DefaultFont()
	page := extract(t, 0, func(dev Device) error {
		text := NewText()
		text.ShowString(font, TextMatrix(10, 0, 0), "up")
		return dev.FillText(text, Concat(Rotate(-1.5707963267948966), Translate(100, 200)), Black, 1)
	})
	line := page.Blocks[0].Lines[0]
	if line.String() != "up" {
		t.Fatalf("line = %q", line.String())
	}
	if line.Dir.Y > -0.99 {
		t.Errorf("direction = %v, want pointing up the page", line.Dir)
	}
}

func TestTextDeviceErrors(t *testing.T) {
	page := NewTextPage(Rect{X1: 10, Y1: 10})
	dev := NewTextDevice(page, 0)
	if err := dev.PopClip(); !errors.Is(err, errUnbalancedClip) {
		t.Errorf("unbalanced pop: err = %v", err)
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := dev.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	text := NewText()
	text.ShowString(DefaultFont(), TextMatrix(10, 0, 5), "x")
	if err := dev.FillText(text, Identity(), Black, 1); !errors.Is(err, errDeviceClosed) {
		t.Errorf("FillText after Close: err = %v", err)
	}
}

func TestTextPageWriteText(t *testing.T) {
	page := extract(t, 0, func(dev Device) error {
		return showText(dev, DefaultFont(), 10, 50, 100, "hello")
	})
	var sb strings.Builder
	if err := page.WriteText(&sb); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if sb.String() != page.Text() || sb.String() != "hello\n\n" {
		t.Errorf("WriteText = %q", sb.String())
	}
}
