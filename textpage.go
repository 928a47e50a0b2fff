package fitz

import (
	"bufio"
	"io"
	"strings"
)

// TextPageFlags control text extraction. Flags are independent bits; any
// combination is valid.
type TextPageFlags uint32

const (
	// TextPreserveLigatures keeps ligature characters such as U+FB01 instead
	// of expanding them to their component letters.
	TextPreserveLigatures TextPageFlags = 1 << iota
	// TextPreserveWhitespace keeps tabs and other whitespace instead of
	// converting them to spaces.
	TextPreserveWhitespace
	// TextPreserveImages records image placements as image blocks.
	TextPreserveImages
	// TextInhibitSpaces disables spaces inferred from gaps between glyphs.
	TextInhibitSpaces
	// TextDehyphenate joins words hyphenated across line ends when searching.
	TextDehyphenate
	// TextPreserveSpans starts a new line for every text span.
	TextPreserveSpans
	// TextMediaBoxClip drops characters entirely outside the media box.
	TextMediaBoxClip
	// TextClipToVisible drops characters entirely outside the active clip.
	TextClipToVisible
)

// TextChar is one extracted character.
type TextChar struct {
	Rune   rune
	Origin Point // baseline origin in device space
	Quad   Quad  // glyph box from descender to ascender
	Size   float64
	Font   *Font
	Color  Color
}

// TextLine is a run of characters sharing a baseline.
type TextLine struct {
	Bbox  Rect
	Dir   Point // unit vector along the baseline
	Wmode int
	Chars []TextChar
}

// String returns the characters of the line.
func (l *TextLine) String() string {
	var sb strings.Builder
	for _, c := range l.Chars {
		sb.WriteRune(c.Rune)
	}
	return sb.String()
}

// hyphenated reports whether the line ends with a hyphen.
func (l *TextLine) hyphenated() bool {
	n := len(l.Chars)
	return n > 0 && isHyphen(l.Chars[n-1].Rune)
}

func isHyphen(r rune) bool {
	return r == '-' || r == '\u2010' || r == '\u00ad'
}

// TextBlock is either a paragraph of lines or, with TextPreserveImages, an
// image placement.
type TextBlock struct {
	Bbox  Rect
	Lines []*TextLine

	// Image and Transform describe an image block. Image is nil for text.
	Image     *Image
	Transform Matrix
}

// TextPage holds the text of a page in reading order: blocks of lines of
// characters, positioned in device space.
type TextPage struct {
	MediaBox Rect
	Blocks   []*TextBlock

	flags TextPageFlags
}

// NewTextPage returns an empty text page for the given media box.
func NewTextPage(mediabox Rect) *TextPage {
	return &TextPage{MediaBox: mediabox}
}

// Flags returns the flags the page was extracted with.
func (p *TextPage) Flags() TextPageFlags {
	return p.flags
}

// CharCount returns the number of characters on the page.
func (p *TextPage) CharCount() int {
	n := 0
	for _, b := range p.Blocks {
		for _, l := range b.Lines {
			n += len(l.Chars)
		}
	}
	return n
}

// WriteText writes the plain text of the page: one line per text line and
// an empty line after each block.
func (p *TextPage) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, b := range p.Blocks {
		if b.Image != nil {
			continue
		}
		for _, l := range b.Lines {
			for _, c := range l.Chars {
				bw.WriteRune(c.Rune)
			}
			bw.WriteByte('\n')
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Text returns the plain text of the page as written by WriteText.
func (p *TextPage) Text() string {
	var sb strings.Builder
	_ = p.WriteText(&sb)
	return sb.String()
}
