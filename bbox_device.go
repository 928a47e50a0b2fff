package fitz

// BBoxDevice accumulates the device space bounds of everything painted,
// limited by the clips in effect. Clips themselves paint nothing.
type BBoxDevice struct {
	BaseDevice

	result *Rect
	stack  []bboxEntry
}

type bboxEntry struct {
	clip  Rect
	group bool
}

// NewBBoxDevice returns a device that stores the bounds in *result. The
// result starts out as EmptyRect.
func NewBBoxDevice(result *Rect) *BBoxDevice {
	*result = EmptyRect
	return &BBoxDevice{
		result: result,
		stack:  []bboxEntry{{clip: InfiniteRect}},
	}
}

func (d *BBoxDevice) clip() Rect {
	return d.stack[len(d.stack)-1].clip
}

func (d *BBoxDevice) add(r Rect) {
	r = r.Intersect(d.clip())
	if !r.IsEmpty() {
		*d.result = d.result.Union(r)
	}
}

func (d *BBoxDevice) push(r Rect, group bool) {
	d.stack = append(d.stack, bboxEntry{clip: d.clip().Intersect(r), group: group})
}

func (d *BBoxDevice) pop(group bool) error {
	n := len(d.stack)
	if n == 1 || d.stack[n-1].group != group {
		if group {
			return errUnbalancedGroup
		}
		return errUnbalancedClip
	}
	d.stack = d.stack[:n-1]
	return nil
}

// FillPath implements Device.
func (d *BBoxDevice) FillPath(path *Path, _ bool, ctm Matrix, _ Color, _ float64) error {
	d.add(path.Bounds(ctm))
	return nil
}

// StrokePath implements Device.
func (d *BBoxDevice) StrokePath(path *Path, s *StrokeState, ctm Matrix, _ Color, _ float64) error {
	d.add(StrokedBounds(path, s, ctm))
	return nil
}

// FillText implements Device.
func (d *BBoxDevice) FillText(text *Text, ctm Matrix, _ Color, _ float64) error {
	d.add(text.Bounds(nil, ctm))
	return nil
}

// StrokeText implements Device.
func (d *BBoxDevice) StrokeText(text *Text, s *StrokeState, ctm Matrix, _ Color, _ float64) error {
	d.add(text.Bounds(s, ctm))
	return nil
}

// FillShade implements Device.
func (d *BBoxDevice) FillShade(shade *Shade, ctm Matrix, _ float64) error {
	d.add(shade.Bounds(ctm))
	return nil
}

// FillImage implements Device.
func (d *BBoxDevice) FillImage(_ *Image, ctm Matrix, _ float64) error {
	d.add(unitRect.Transform(ctm))
	return nil
}

// FillImageMask implements Device.
func (d *BBoxDevice) FillImageMask(_ *Image, ctm Matrix, _ Color, _ float64) error {
	d.add(unitRect.Transform(ctm))
	return nil
}

// ClipPath implements Device.
func (d *BBoxDevice) ClipPath(path *Path, _ bool, ctm Matrix, scissor Rect) error {
	d.push(path.Bounds(ctm).Intersect(scissor), false)
	return nil
}

// ClipStrokePath implements Device.
func (d *BBoxDevice) ClipStrokePath(path *Path, s *StrokeState, ctm Matrix, scissor Rect) error {
	d.push(StrokedBounds(path, s, ctm).Intersect(scissor), false)
	return nil
}

// ClipText implements Device.
func (d *BBoxDevice) ClipText(text *Text, ctm Matrix, scissor Rect) error {
	d.push(text.Bounds(nil, ctm).Intersect(scissor), false)
	return nil
}

// ClipStrokeText implements Device.
func (d *BBoxDevice) ClipStrokeText(text *Text, s *StrokeState, ctm Matrix, scissor Rect) error {
	d.push(text.Bounds(s, ctm).Intersect(scissor), false)
	return nil
}

// ClipImageMask implements Device.
func (d *BBoxDevice) ClipImageMask(_ *Image, ctm Matrix, scissor Rect) error {
	d.push(unitRect.Transform(ctm).Intersect(scissor), false)
	return nil
}

// PopClip implements Device.
func (d *BBoxDevice) PopClip() error {
	return d.pop(false)
}

// BeginGroup implements Device. Nothing in a group paints outside its
// area.
func (d *BBoxDevice) BeginGroup(area Rect, _, _ bool, _ float64) error {
	d.push(area, true)
	return nil
}

// EndGroup implements Device.
func (d *BBoxDevice) EndGroup() error {
	return d.pop(true)
}

var _ Device = (*BBoxDevice)(nil)
