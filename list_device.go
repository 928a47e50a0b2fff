package fitz

// ListDevice records device calls into a display list. Inputs are copied,
// so callers may reuse their paths and text after each call. Close seals
// the list; later calls fail.
//
// A ListDevice is used by one goroutine at a time. Replays of the list
// may run concurrently with recording and see the nodes recorded so far.
type ListDevice struct {
	rec    *recording
	err    error
	closed bool
}

// NewListDevice returns a device recording into list. The device holds
// its own reference to the recording until Close.
func NewListDevice(list *DisplayList) *ListDevice {
	rec, err := list.recording()
	if err != nil {
		return &ListDevice{err: err}
	}
	rec.keep()
	return &ListDevice{rec: rec}
}

func (d *ListDevice) record(n node) error {
	if d.err != nil {
		return d.err
	}
	if d.closed {
		return newError(KindInvalidArgument, "record", nil, "list device is closed")
	}
	return d.rec.append(n)
}

// FillPath implements Device.
func (d *ListDevice) FillPath(path *Path, evenOdd bool, ctm Matrix, c Color, alpha float64) error {
	return d.record(node{
		kind:    nodeFillPath,
		rect:    path.Bounds(ctm),
		ctm:     ctm,
		path:    path.Clone(),
		evenOdd: evenOdd,
		color:   c,
		alpha:   alpha,
	})
}

// StrokePath implements Device.
func (d *ListDevice) StrokePath(path *Path, s *StrokeState, ctm Matrix, c Color, alpha float64) error {
	return d.record(node{
		kind:   nodeStrokePath,
		rect:   StrokedBounds(path, s, ctm),
		ctm:    ctm,
		path:   path.Clone(),
		stroke: s.Clone(),
		color:  c,
		alpha:  alpha,
	})
}

// ClipPath implements Device.
func (d *ListDevice) ClipPath(path *Path, evenOdd bool, ctm Matrix, scissor Rect) error {
	return d.record(node{
		kind:    nodeClipPath,
		rect:    path.Bounds(ctm).Intersect(scissor),
		ctm:     ctm,
		path:    path.Clone(),
		evenOdd: evenOdd,
	})
}

// ClipStrokePath implements Device.
func (d *ListDevice) ClipStrokePath(path *Path, s *StrokeState, ctm Matrix, scissor Rect) error {
	return d.record(node{
		kind:   nodeClipStrokePath,
		rect:   StrokedBounds(path, s, ctm).Intersect(scissor),
		ctm:    ctm,
		path:   path.Clone(),
		stroke: s.Clone(),
	})
}

// FillText implements Device.
func (d *ListDevice) FillText(text *Text, ctm Matrix, c Color, alpha float64) error {
	return d.record(node{
		kind:  nodeFillText,
		rect:  text.Bounds(nil, ctm),
		ctm:   ctm,
		text:  text.Clone(),
		color: c,
		alpha: alpha,
	})
}

// StrokeText implements Device.
func (d *ListDevice) StrokeText(text *Text, s *StrokeState, ctm Matrix, c Color, alpha float64) error {
	return d.record(node{
		kind:   nodeStrokeText,
		rect:   text.Bounds(s, ctm),
		ctm:    ctm,
		text:   text.Clone(),
		stroke: s.Clone(),
		color:  c,
		alpha:  alpha,
	})
}

// ClipText implements Device.
func (d *ListDevice) ClipText(text *Text, ctm Matrix, scissor Rect) error {
	return d.record(node{
		kind: nodeClipText,
		rect: text.Bounds(nil, ctm).Intersect(scissor),
		ctm:  ctm,
		text: text.Clone(),
	})
}

// ClipStrokeText implements Device.
func (d *ListDevice) ClipStrokeText(text *Text, s *StrokeState, ctm Matrix, scissor Rect) error {
	return d.record(node{
		kind:   nodeClipStrokeText,
		rect:   text.Bounds(s, ctm).Intersect(scissor),
		ctm:    ctm,
		text:   text.Clone(),
		stroke: s.Clone(),
	})
}

// IgnoreText implements Device.
func (d *ListDevice) IgnoreText(text *Text, ctm Matrix) error {
	return d.record(node{
		kind: nodeIgnoreText,
		rect: text.Bounds(nil, ctm),
		ctm:  ctm,
		text: text.Clone(),
	})
}

// FillShade implements Device.
func (d *ListDevice) FillShade(shade *Shade, ctm Matrix, alpha float64) error {
	return d.record(node{
		kind:  nodeFillShade,
		rect:  shade.Bounds(ctm),
		ctm:   ctm,
		shade: shade.Clone(),
		alpha: alpha,
	})
}

// FillImage implements Device. Images are immutable and shared.
func (d *ListDevice) FillImage(img *Image, ctm Matrix, alpha float64) error {
	return d.record(node{
		kind:  nodeFillImage,
		rect:  unitRect.Transform(ctm),
		ctm:   ctm,
		image: img,
		alpha: alpha,
	})
}

// FillImageMask implements Device.
func (d *ListDevice) FillImageMask(img *Image, ctm Matrix, c Color, alpha float64) error {
	return d.record(node{
		kind:  nodeFillImageMask,
		rect:  unitRect.Transform(ctm),
		ctm:   ctm,
		image: img,
		color: c,
		alpha: alpha,
	})
}

// ClipImageMask implements Device.
func (d *ListDevice) ClipImageMask(img *Image, ctm Matrix, scissor Rect) error {
	return d.record(node{
		kind:  nodeClipImageMask,
		rect:  unitRect.Transform(ctm).Intersect(scissor),
		ctm:   ctm,
		image: img,
	})
}

// PopClip implements Device.
func (d *ListDevice) PopClip() error {
	return d.record(node{kind: nodePopClip, rect: InfiniteRect, ctm: Identity()})
}

// BeginGroup implements Device.
func (d *ListDevice) BeginGroup(area Rect, isolated, knockout bool, alpha float64) error {
	return d.record(node{
		kind:     nodeBeginGroup,
		rect:     area,
		ctm:      Identity(),
		isolated: isolated,
		knockout: knockout,
		alpha:    alpha,
	})
}

// EndGroup implements Device.
func (d *ListDevice) EndGroup() error {
	return d.record(node{kind: nodeEndGroup, rect: InfiniteRect, ctm: Identity()})
}

// Close seals the list and releases the device's reference. Further
// calls are no-ops.
func (d *ListDevice) Close() error {
	if d.closed || d.rec == nil {
		d.closed = true
		return nil
	}
	d.closed = true
	d.rec.seal()
	d.rec.drop()
	return nil
}

var _ Device = (*ListDevice)(nil)
