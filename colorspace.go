package fitz

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

type colorspaceKind uint8

const (
	kindGray colorspaceKind = iota
	kindRGB
	kindBGR
	kindCMYK
)

// Colorspace describes how colour components map to device colour. The
// engine knows the device spaces only; colour management is out of scope.
type Colorspace struct {
	name string
	n    int
	kind colorspaceKind
}

// Device colour spaces.
var (
	DeviceGray = &Colorspace{name: "DeviceGray", n: 1, kind: kindGray}
	DeviceRGB  = &Colorspace{name: "DeviceRGB", n: 3, kind: kindRGB}
	DeviceBGR  = &Colorspace{name: "DeviceBGR", n: 3, kind: kindBGR}
	DeviceCMYK = &Colorspace{name: "DeviceCMYK", n: 4, kind: kindCMYK}
)

// Name returns the colour space name.
func (cs *Colorspace) Name() string { return cs.name }

// N returns the number of colour components.
func (cs *Colorspace) N() int { return cs.n }

func (cs *Colorspace) String() string { return cs.name }

// known reports whether cs is one of the device spaces.
func (cs *Colorspace) known() bool {
	return cs == DeviceGray || cs == DeviceRGB || cs == DeviceBGR || cs == DeviceCMYK
}

// toRGB converts n components in cs to RGB in [0, 1].
func (cs *Colorspace) toRGB(c []float64) (r, g, b float64) {
	switch cs.kind {
	case kindGray:
		return c[0], c[0], c[0]
	case kindBGR:
		return c[2], c[1], c[0]
	case kindCMYK:
		k := c[3]
		return 1 - math.Min(1, c[0]+k), 1 - math.Min(1, c[1]+k), 1 - math.Min(1, c[2]+k)
	default:
		return c[0], c[1], c[2]
	}
}

// fromRGB writes the components of an RGB colour in cs into dst.
func (cs *Colorspace) fromRGB(r, g, b float64, dst []float64) {
	switch cs.kind {
	case kindGray:
		dst[0] = 0.3*r + 0.59*g + 0.11*b
	case kindBGR:
		dst[0], dst[1], dst[2] = b, g, r
	case kindCMYK:
		c, m, y := 1-r, 1-g, 1-b
		k := math.Min(c, math.Min(m, y))
		dst[0], dst[1], dst[2], dst[3] = c-k, m-k, y-k, k
	default:
		dst[0], dst[1], dst[2] = r, g, b
	}
}

// Color is a colour value in a device colour space. Components are in
// [0, 1]; only the first Space.N() are used.
type Color struct {
	Space *Colorspace
	Comps [4]float64
}

// Gray returns a DeviceGray colour.
func Gray(v float64) Color {
	return Color{Space: DeviceGray, Comps: [4]float64{v}}
}

// RGB returns a DeviceRGB colour.
func RGB(r, g, b float64) Color {
	return Color{Space: DeviceRGB, Comps: [4]float64{r, g, b}}
}

// CMYK returns a DeviceCMYK colour.
func CMYK(c, m, y, k float64) Color {
	return Color{Space: DeviceCMYK, Comps: [4]float64{c, m, y, k}}
}

func (c Color) String() string {
	if c.Space == nil {
		return "none"
	}
	var sb strings.Builder
	sb.WriteString(c.Space.name)
	sb.WriteByte('(')
	for i := range c.Space.n {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%g", c.Comps[i])
	}
	sb.WriteByte(')')
	return sb.String()
}

// Common colours.
var (
	Black = Gray(0)
	White = Gray(1)
)

// Hex parses "RGB" or "RRGGBB" with an optional leading '#' into a
// DeviceRGB colour. Malformed input yields black.
func Hex(s string) Color {
	if s != "" && s[0] == '#' {
		s = s[1:]
	}
	var v [3]uint32
	switch len(s) {
	case 3:
		for i := range 3 {
			d, ok := hexDigit(s[i])
			if !ok {
				return RGB(0, 0, 0)
			}
			v[i] = d * 17
		}
	case 6:
		for i := range 3 {
			hi, ok1 := hexDigit(s[2*i])
			lo, ok2 := hexDigit(s[2*i+1])
			if !ok1 || !ok2 {
				return RGB(0, 0, 0)
			}
			v[i] = hi<<4 | lo
		}
	default:
		return RGB(0, 0, 0)
	}
	return RGB(float64(v[0])/255, float64(v[1])/255, float64(v[2])/255)
}

func hexDigit(c byte) (uint32, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint32(c - '0'), true
	case 'a' <= c && c <= 'f':
		return uint32(c-'a') + 10, true
	case 'A' <= c && c <= 'F':
		return uint32(c-'A') + 10, true
	default:
		return 0, false
	}
}

// RGB returns the colour converted to RGB components in [0, 1]. A colour
// without a space is treated as black.
func (c Color) RGB() (r, g, b float64) {
	if c.Space == nil {
		return 0, 0, 0
	}
	r, g, b = c.Space.toRGB(c.Comps[:c.Space.n])
	return clamp01(r), clamp01(g), clamp01(b)
}

// premul returns the colour as premultiplied 8-bit RGBA at the given
// opacity.
func (c Color) premul(alpha float64) color.RGBA {
	r, g, b := c.RGB()
	a := clamp01(alpha)
	return color.RGBA{
		R: uint8(r*a*255 + 0.5),
		G: uint8(g*a*255 + 0.5),
		B: uint8(b*a*255 + 0.5),
		A: uint8(a*255 + 0.5),
	}
}

func clamp01(x float64) float64 {
	switch {
	case x < 0, math.IsNaN(x):
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
