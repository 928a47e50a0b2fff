package fitz

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"math/bits"
	"os"
)

// Pixmap is a rectangular pixel buffer in a device colour space with an
// optional alpha channel. Samples are interleaved, n bytes per pixel
// (colour components followed by alpha), and premultiplied when alpha is
// present. A pixmap with a nil colour space holds alpha only.
//
// Pixmap implements image.Image.
type Pixmap struct {
	x, y    int
	w, h    int
	n       int
	alpha   bool
	cs      *Colorspace
	stride  int
	samples []byte
}

// NewPixmap allocates a pixmap covering bbox in device space. cs may be
// nil only when alpha is set.
func NewPixmap(cs *Colorspace, bbox IRect, alpha bool) (*Pixmap, error) {
	return newPixmap(nil, cs, bbox, alpha)
}

// maxPixmapAlloc is the largest sample buffer newPixmap will request,
// whatever the context limit.
const maxPixmapAlloc = min(math.MaxInt, 1<<47)

// pixmapSize returns w*h*n, or false when the product exceeds
// maxPixmapAlloc.
func pixmapSize(w, h, n int) (int, bool) {
	if w < 0 || h < 0 || n < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(w), uint64(h))
	if hi != 0 {
		return 0, false
	}
	hi, lo = bits.Mul64(lo, uint64(n))
	if hi != 0 || lo > maxPixmapAlloc {
		return 0, false
	}
	return int(lo), true
}

func newPixmap(ctx *Context, cs *Colorspace, bbox IRect, alpha bool) (*Pixmap, error) {
	if cs == nil && !alpha {
		return nil, newError(KindInvalidArgument, "new pixmap", nil, "pixmap needs a colorspace or alpha")
	}
	if cs != nil && !cs.known() {
		return nil, newError(KindInvalidArgument, "new pixmap", nil, "unsupported colorspace %s", cs)
	}
	if ctx == nil {
		ctx = DefaultContext()
	}
	n := 0
	if cs != nil {
		n = cs.N()
	}
	if alpha {
		n++
	}
	w, h := bbox.Width(), bbox.Height()
	size, ok := pixmapSize(w, h, n)
	if !ok {
		return nil, newError(KindAllocation, "new pixmap", nil, "%dx%d pixmap is too large", w, h)
	}
	if limit := ctx.MaxPixmapBytes(); limit > 0 && size > limit {
		return nil, newError(KindAllocation, "new pixmap", nil, "%dx%d pixmap exceeds %d byte limit", w, h, limit)
	}
	return &Pixmap{
		x:       bbox.X0,
		y:       bbox.Y0,
		w:       w,
		h:       h,
		n:       n,
		alpha:   alpha,
		cs:      cs,
		stride:  w * n,
		samples: make([]byte, size),
	}, nil
}

// X returns the device x coordinate of the left column.
func (p *Pixmap) X() int { return p.x }

// Y returns the device y coordinate of the top row.
func (p *Pixmap) Y() int { return p.y }

// Width returns the width in pixels.
func (p *Pixmap) Width() int { return p.w }

// Height returns the height in pixels.
func (p *Pixmap) Height() int { return p.h }

// N returns the number of bytes per pixel.
func (p *Pixmap) N() int { return p.n }

// Alpha reports whether the pixmap has an alpha channel.
func (p *Pixmap) Alpha() bool { return p.alpha }

// Colorspace returns the colour space, or nil for alpha-only pixmaps.
func (p *Pixmap) Colorspace() *Colorspace { return p.cs }

// Stride returns the number of bytes per row.
func (p *Pixmap) Stride() int { return p.stride }

// Samples returns the raw sample bytes.
func (p *Pixmap) Samples() []byte { return p.samples }

// IRect returns the device rectangle covered by the pixmap.
func (p *Pixmap) IRect() IRect {
	return IRect{X0: p.x, Y0: p.y, X1: p.x + p.w, Y1: p.y + p.h}
}

// Pixel returns the samples of the pixel at device coordinates (x, y), or
// nil outside the pixmap. The slice aliases the pixmap.
func (p *Pixmap) Pixel(x, y int) []byte {
	x -= p.x
	y -= p.y
	if x < 0 || x >= p.w || y < 0 || y >= p.h {
		return nil
	}
	i := y*p.stride + x*p.n
	return p.samples[i : i+p.n : i+p.n]
}

// Clear sets every sample to zero: transparent with alpha, black (or
// white for CMYK) without.
func (p *Pixmap) Clear() {
	clear(p.samples)
}

// ClearWithValue sets every pixel to the grey level v and alpha to
// opaque. CMYK pixmaps carry the level in the black channel only.
func (p *Pixmap) ClearWithValue(v byte) {
	nc := p.n
	if p.alpha {
		nc--
	}
	for i := 0; i < len(p.samples); i += p.n {
		px := p.samples[i : i+p.n]
		if p.cs == DeviceCMYK {
			px[0], px[1], px[2], px[3] = 0, 0, 0, 255-v
		} else {
			for k := range nc {
				px[k] = v
			}
		}
		if p.alpha {
			px[nc] = 255
		}
	}
}

// rgbaAt returns the premultiplied colour of the pixel at offset i.
func (p *Pixmap) rgbaAt(i int) color.RGBA {
	a := uint8(255)
	if p.alpha {
		a = p.samples[i+p.n-1]
	}
	if p.cs == nil {
		return color.RGBA{A: a}
	}
	s := p.samples[i:]
	switch p.cs {
	case DeviceGray:
		return color.RGBA{R: s[0], G: s[0], B: s[0], A: a}
	case DeviceBGR:
		return color.RGBA{R: s[2], G: s[1], B: s[0], A: a}
	case DeviceCMYK:
		// Premultiplied CMYK: each ink is scaled by alpha like RGB.
		k := int(s[3])
		return color.RGBA{
			R: uint8(max(int(a)-min(int(a), int(s[0])+k), 0)),
			G: uint8(max(int(a)-min(int(a), int(s[1])+k), 0)),
			B: uint8(max(int(a)-min(int(a), int(s[2])+k), 0)),
			A: a,
		}
	default:
		return color.RGBA{R: s[0], G: s[1], B: s[2], A: a}
	}
}

// setRGBA stores a premultiplied RGBA colour at offset i.
func (p *Pixmap) setRGBA(i int, c color.RGBA) {
	s := p.samples[i : i+p.n]
	if p.alpha {
		s[p.n-1] = c.A
	}
	if p.cs == nil {
		return
	}
	if !p.alpha && c.A != 255 {
		// Flatten onto white.
		inv := 255 - uint32(c.A)
		c.R = uint8(uint32(c.R) + inv)
		c.G = uint8(uint32(c.G) + inv)
		c.B = uint8(uint32(c.B) + inv)
		c.A = 255
	}
	switch p.cs {
	case DeviceGray:
		s[0] = uint8((77*uint32(c.R) + 151*uint32(c.G) + 28*uint32(c.B) + 128) >> 8)
	case DeviceBGR:
		s[0], s[1], s[2] = c.B, c.G, c.R
	case DeviceCMYK:
		cc, m, y := c.A-c.R, c.A-c.G, c.A-c.B
		k := min(cc, m, y)
		s[0], s[1], s[2], s[3] = cc-k, m-k, y-k, k
	default:
		s[0], s[1], s[2] = c.R, c.G, c.B
	}
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	x -= p.x
	y -= p.y
	if x < 0 || x >= p.w || y < 0 || y >= p.h {
		return color.RGBA{}
	}
	return p.rgbaAt(y*p.stride + x*p.n)
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return p.IRect().Image()
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.RGBAModel
}

// RGBA converts the pixmap to a premultiplied RGBA image with the same
// bounds.
func (p *Pixmap) RGBA() *image.RGBA {
	img := image.NewRGBA(p.Bounds())
	for y := range p.h {
		for x := range p.w {
			c := p.rgbaAt(y*p.stride + x*p.n)
			o := y*img.Stride + x*4
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = c.R, c.G, c.B, c.A
		}
	}
	return img
}

// loadRGBA overwrites the pixmap from a premultiplied RGBA image with the
// same bounds.
func (p *Pixmap) loadRGBA(img *image.RGBA) {
	for y := range p.h {
		for x := range p.w {
			o := y*img.Stride + x*4
			px := img.Pix[o : o+4 : o+4]
			p.setRGBA(y*p.stride+x*p.n, color.RGBA{R: px[0], G: px[1], B: px[2], A: px[3]})
		}
	}
}

// NewPixmapFromImage converts img into a pixmap in cs.
func NewPixmapFromImage(img image.Image, cs *Colorspace, alpha bool) (*Pixmap, error) {
	b := img.Bounds()
	pix, err := NewPixmap(cs, IRect{X0: b.Min.X, Y0: b.Min.Y, X1: b.Max.X, Y1: b.Max.Y}, alpha)
	if err != nil {
		return nil, err
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			pix.setRGBA((y-b.Min.Y)*pix.stride+(x-b.Min.X)*pix.n, c)
		}
	}
	return pix, nil
}

// WritePNG encodes the pixmap as PNG.
func (p *Pixmap) WritePNG(w io.Writer) error {
	return png.Encode(w, p)
}

// SavePNG saves the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := p.WritePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
