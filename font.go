package fitz

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	gtfont "github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/fitz/internal/cache"
)

// ErrEmptyFontData is returned when NewFont is given no data.
var ErrEmptyFontData = errors.New("fitz: empty font data")

// DefaultGlyphCacheSize is the number of glyph outlines a Font keeps.
const DefaultGlyphCacheSize = 512

// Font is a parsed OpenType/TrueType font. Metrics are in em units (font
// units divided by units per em) with y pointing up.
//
// Font is safe for concurrent use: the parsed tables are read-only and
// per-call lookup state comes from an internal pool of faces.
type Font struct {
	name string
	font *gtfont.Font
	upem float64

	ascender  float64
	descender float64

	faces  sync.Pool
	glyphs *cache.Cache[GlyphID, *Path]
}

// GlyphID identifies a glyph inside a font.
type GlyphID = uint32

// FontOption configures a Font during creation.
type FontOption func(*fontOptions)

type fontOptions struct {
	name      string
	cacheSize int
}

// WithFontName sets the name reported by Font.Name.
func WithFontName(name string) FontOption {
	return func(o *fontOptions) {
		o.name = name
	}
}

// WithGlyphCacheSize sets how many glyph outlines are cached. A value <= 0
// disables the limit.
func WithGlyphCacheSize(n int) FontOption {
	return func(o *fontOptions) {
		o.cacheSize = n
	}
}

// NewFont parses font data. The data slice must not be modified afterwards.
func NewFont(data []byte, opts ...FontOption) (*Font, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	o := fontOptions{cacheSize: DefaultGlyphCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	face, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("fitz: parse font: %w", err)
	}

	f := &Font{
		name:   o.name,
		font:   face.Font,
		upem:   float64(face.Upem()),
		glyphs: cache.New[GlyphID, *Path](o.cacheSize),
	}
	if f.upem <= 0 {
		f.upem = 1000
	}
	if f.name == "" {
		f.name = face.Describe().Family
	}
	f.faces.New = func() any { return gtfont.NewFace(f.font) }
	f.faces.Put(face)

	if ext, ok := face.FontHExtents(); ok {
		f.ascender = float64(ext.Ascender) / f.upem
		f.descender = float64(ext.Descender) / f.upem
	}
	if f.ascender <= f.descender {
		f.ascender, f.descender = 0.8, -0.2
	}
	return f, nil
}

var builtinFonts = map[string][]byte{
	"helvetica":      goregular.TTF,
	"helvetica-bold": gobold.TTF,
	"courier":        gomono.TTF,
}

var (
	builtinMu    sync.Mutex
	builtinCache = map[string]*Font{}
)

// LoadBuiltinFont returns one of the embedded fonts: "Helvetica",
// "Helvetica-Bold" or "Courier" (case-insensitive). The Go font family
// stands in for the standard faces. Repeated calls return the same Font.
func LoadBuiltinFont(name string) (*Font, error) {
	key := strings.ToLower(name)
	data, ok := builtinFonts[key]
	if !ok {
		return nil, newError(KindInvalidArgument, "load font", nil, "unknown builtin font %q", name)
	}

	builtinMu.Lock()
	defer builtinMu.Unlock()
	if f, ok := builtinCache[key]; ok {
		return f, nil
	}
	f, err := NewFont(data, WithFontName(name))
	if err != nil {
		return nil, err
	}
	builtinCache[key] = f
	return f, nil
}

// DefaultFont returns the builtin Helvetica substitute.
func DefaultFont() *Font {
	f, err := LoadBuiltinFont("Helvetica")
	if err != nil {
		// The embedded font is known to parse.
		panic(err)
	}
	return f
}

// Name returns the font name.
func (f *Font) Name() string { return f.name }

// Ascender returns the typographic ascender in em units.
func (f *Font) Ascender() float64 { return f.ascender }

// Descender returns the typographic descender in em units (usually negative).
func (f *Font) Descender() float64 { return f.descender }

func (f *Font) face() *gtfont.Face {
	return f.faces.Get().(*gtfont.Face)
}

// EncodeRune returns the glyph for r from the font's cmap.
func (f *Font) EncodeRune(r rune) (GlyphID, bool) {
	gid, ok := f.font.NominalGlyph(r)
	return GlyphID(gid), ok
}

// Advance returns the horizontal advance of gid in em units.
func (f *Font) Advance(gid GlyphID) float64 {
	face := f.face()
	defer f.faces.Put(face)
	return float64(face.HorizontalAdvance(gtfont.GID(gid))) / f.upem
}

// GlyphBounds returns the ink bounds of gid in em units (y up). Glyphs
// without ink, such as spaces, have empty bounds.
func (f *Font) GlyphBounds(gid GlyphID) Rect {
	face := f.face()
	defer f.faces.Put(face)
	ext, ok := face.GlyphExtents(gtfont.GID(gid))
	if !ok || ext.Width == 0 || ext.Height == 0 {
		return EmptyRect
	}
	x0 := float64(ext.XBearing) / f.upem
	y1 := float64(ext.YBearing) / f.upem
	return Rect{
		X0: x0,
		Y0: y1 + float64(ext.Height)/f.upem,
		X1: x0 + float64(ext.Width)/f.upem,
		Y1: y1,
	}
}

// Outline returns the glyph outline in em units (y up). The returned path
// is shared and must not be modified. Glyphs without a vector outline
// yield an empty path.
func (f *Font) Outline(gid GlyphID) *Path {
	return f.glyphs.GetOrCreate(gid, func() *Path {
		return f.loadOutline(gid)
	})
}

func (f *Font) loadOutline(gid GlyphID) *Path {
	face := f.face()
	defer f.faces.Put(face)

	p := NewPath()
	outline, ok := face.GlyphData(gtfont.GID(gid)).(gtfont.GlyphOutline)
	if !ok {
		return p
	}
	s := 1 / f.upem
	pt := func(sp gtfont.SegmentPoint) (float64, float64) {
		return float64(sp.X) * s, float64(sp.Y) * s
	}
	for _, seg := range outline.Segments {
		switch seg.Op {
		case ot.SegmentOpMoveTo:
			p.ClosePath()
			x, y := pt(seg.Args[0])
			p.MoveTo(x, y)
		case ot.SegmentOpLineTo:
			x, y := pt(seg.Args[0])
			p.LineTo(x, y)
		case ot.SegmentOpQuadTo:
			cx, cy := pt(seg.Args[0])
			x, y := pt(seg.Args[1])
			p.QuadTo(cx, cy, x, y)
		case ot.SegmentOpCubeTo:
			c1x, c1y := pt(seg.Args[0])
			c2x, c2y := pt(seg.Args[1])
			x, y := pt(seg.Args[2])
			p.CubicTo(c1x, c1y, c2x, c2y, x, y)
		}
	}
	p.ClosePath()
	return p
}
