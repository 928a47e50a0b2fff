package fitz

// Device receives drawing operations, either from a producer recording a
// page or from a display list replaying one. Every method may fail; a
// failing device stops the replay that called it.
//
// Matrices map the operation's own space (path user space, text space,
// unit image square, shading space) to device space. Clip operations push
// onto a stack that PopClip unwinds; BeginGroup/EndGroup bracket a
// transparency group. Devices are used by one goroutine at a time.
type Device interface {
	FillPath(path *Path, evenOdd bool, ctm Matrix, color Color, alpha float64) error
	StrokePath(path *Path, stroke *StrokeState, ctm Matrix, color Color, alpha float64) error
	ClipPath(path *Path, evenOdd bool, ctm Matrix, scissor Rect) error
	ClipStrokePath(path *Path, stroke *StrokeState, ctm Matrix, scissor Rect) error

	FillText(text *Text, ctm Matrix, color Color, alpha float64) error
	StrokeText(text *Text, stroke *StrokeState, ctm Matrix, color Color, alpha float64) error
	ClipText(text *Text, ctm Matrix, scissor Rect) error
	ClipStrokeText(text *Text, stroke *StrokeState, ctm Matrix, scissor Rect) error
	IgnoreText(text *Text, ctm Matrix) error

	FillShade(shade *Shade, ctm Matrix, alpha float64) error
	FillImage(img *Image, ctm Matrix, alpha float64) error
	FillImageMask(img *Image, ctm Matrix, color Color, alpha float64) error
	ClipImageMask(img *Image, ctm Matrix, scissor Rect) error

	PopClip() error
	BeginGroup(area Rect, isolated, knockout bool, alpha float64) error
	EndGroup() error

	Close() error
}

// BaseDevice implements Device with no-ops. Embed it to implement only
// the operations a device cares about.
type BaseDevice struct{}

func (BaseDevice) FillPath(*Path, bool, Matrix, Color, float64) error           { return nil }
func (BaseDevice) StrokePath(*Path, *StrokeState, Matrix, Color, float64) error { return nil }
func (BaseDevice) ClipPath(*Path, bool, Matrix, Rect) error                     { return nil }
func (BaseDevice) ClipStrokePath(*Path, *StrokeState, Matrix, Rect) error       { return nil }
func (BaseDevice) FillText(*Text, Matrix, Color, float64) error                 { return nil }
func (BaseDevice) StrokeText(*Text, *StrokeState, Matrix, Color, float64) error { return nil }
func (BaseDevice) ClipText(*Text, Matrix, Rect) error                           { return nil }
func (BaseDevice) ClipStrokeText(*Text, *StrokeState, Matrix, Rect) error       { return nil }
func (BaseDevice) IgnoreText(*Text, Matrix) error                               { return nil }
func (BaseDevice) FillShade(*Shade, Matrix, float64) error                      { return nil }
func (BaseDevice) FillImage(*Image, Matrix, float64) error                      { return nil }
func (BaseDevice) FillImageMask(*Image, Matrix, Color, float64) error           { return nil }
func (BaseDevice) ClipImageMask(*Image, Matrix, Rect) error                     { return nil }
func (BaseDevice) PopClip() error                                               { return nil }
func (BaseDevice) BeginGroup(Rect, bool, bool, float64) error                   { return nil }
func (BaseDevice) EndGroup() error                                              { return nil }
func (BaseDevice) Close() error                                                 { return nil }

var _ Device = BaseDevice{}
