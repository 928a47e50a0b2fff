package fitz

import (
	"image"
	"math"
	"sync"

	"golang.org/x/image/draw"
)

// Image is a raster image that can be placed on a page. It is backed
// either by a decoded image.Image or by a display list that is rendered
// on first use.
//
// An image occupies the unit square in its own space: pixel (x, y) maps to
// (x/Width, y/Height) before the placement matrix is applied.
//
// Image is safe for concurrent use.
type Image struct {
	w, h int
	src  image.Image
	list *DisplayList

	once sync.Once
	rgba *image.RGBA
	err  error
}

// unitRect is the area an image occupies in image space.
var unitRect = Rect{X1: 1, Y1: 1}

// NewImage wraps a decoded image.
func NewImage(img image.Image) *Image {
	b := img.Bounds()
	return &Image{w: b.Dx(), h: b.Dy(), src: img}
}

// NewImageFromDisplayList returns an image that renders list at w x h
// pixels. The image holds its own reference to the list; Close releases it.
func NewImageFromDisplayList(list *DisplayList, w, h int) (*Image, error) {
	if w <= 0 || h <= 0 {
		return nil, newError(KindInvalidArgument, "new image", nil, "invalid image size %dx%d", w, h)
	}
	clone, err := list.Clone()
	if err != nil {
		return nil, err
	}
	return &Image{w: w, h: h, list: clone}, nil
}

// Width returns the width in pixels.
func (img *Image) Width() int { return img.w }

// Height returns the height in pixels.
func (img *Image) Height() int { return img.h }

// Decode returns the image pixels as premultiplied RGBA with bounds
// (0, 0, Width, Height). The result is computed once and shared; callers
// must not modify it.
func (img *Image) Decode() (*image.RGBA, error) {
	img.once.Do(func() {
		if img.list != nil {
			img.rgba, img.err = img.renderList()
			return
		}
		dst := image.NewRGBA(image.Rect(0, 0, img.w, img.h))
		draw.Draw(dst, dst.Bounds(), img.src, img.src.Bounds().Min, draw.Src)
		img.rgba = dst
	})
	return img.rgba, img.err
}

func (img *Image) renderList() (*image.RGBA, error) {
	mb := img.list.MediaBox()
	ctm := Identity()
	if w, h := mb.Width(), mb.Height(); w > 0 && h > 0 {
		ctm = Concat(Translate(-mb.X0, -mb.Y0), Scale(float64(img.w)/w, float64(img.h)/h))
	}
	pix, err := img.list.ToPixmap(ctm, DeviceRGB, true)
	if err != nil {
		return nil, err
	}
	dst := image.NewRGBA(image.Rect(0, 0, img.w, img.h))
	draw.Draw(dst, dst.Bounds(), pix.RGBA(), image.Point{}, draw.Src)
	return dst, nil
}

// Pixmap converts the image to a pixmap in cs with alpha.
func (img *Image) Pixmap(cs *Colorspace) (*Pixmap, error) {
	rgba, err := img.Decode()
	if err != nil {
		return nil, err
	}
	return NewPixmapFromImage(rgba, cs, true)
}

// Close releases the display list behind the image, if any. Pixels
// already decoded stay available.
func (img *Image) Close() error {
	if img.list == nil {
		return nil
	}
	return img.list.Close()
}

// ToImage renders the list into a width x height image. Dimensions are
// rounded up to whole pixels. Rendering happens on first Decode.
func (l *DisplayList) ToImage(width, height float64) (*Image, error) {
	w, h := math.Ceil(width), math.Ceil(height)
	if !(w >= 1 && h >= 1) || w > math.MaxInt32 || h > math.MaxInt32 {
		return nil, newError(KindRender, "to image", ErrInvalidArgument, "invalid image size %gx%g", width, height)
	}
	img, err := NewImageFromDisplayList(l, int(w), int(h))
	if err != nil {
		return nil, wrapRender("to image", err)
	}
	return img, nil
}
