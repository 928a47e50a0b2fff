package fitz

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
)

// record builds a sealed list by running draw on a list device.
func record(t *testing.T, mediabox Rect, draw func(dev Device) error, opts ...ListOption) *DisplayList {
	t.Helper()
	list, err := NewDisplayList(mediabox, opts...)
	if err != nil {
		t.Fatalf("NewDisplayList: %v", err)
	}
	t.Cleanup(func() { list.Close() })

	dev := NewListDevice(list)
	if err := draw(dev); err != nil {
		t.Fatalf("recording: %v", err)
	}
	if err := dev.Close(); err != nil {
		t.Fatalf("ListDevice.Close: %v", err)
	}
	return list
}

func rectPath(x0, y0, x1, y1 float64) *Path {
	p := NewPath()
	p.Rect(x0, y0, x1, y1)
	return p
}

// callDevice records the names of the calls it receives.
type callDevice struct {
	BaseDevice
	calls []string
	fail  error
}

func (d *callDevice) FillPath(*Path, bool, Matrix, Color, float64) error {
	d.calls = append(d.calls, "fill_path")
	return d.fail
}

func (d *callDevice) ClipPath(*Path, bool, Matrix, Rect) error {
	d.calls = append(d.calls, "clip_path")
	return nil
}

func (d *callDevice) PopClip() error {
	d.calls = append(d.calls, "pop_clip")
	return nil
}

func TestNewDisplayListEmpty(t *testing.T) {
	mb := Rect{X1: 100, Y1: 50}
	list, err := NewDisplayList(mb)
	if err != nil {
		t.Fatalf("NewDisplayList: %v", err)
	}
	defer list.Close()

	if !list.IsEmpty() || list.Len() != 0 {
		t.Errorf("IsEmpty = %v, Len = %d", list.IsEmpty(), list.Len())
	}
	if list.MediaBox() != mb {
		t.Errorf("MediaBox = %v, want %v", list.MediaBox(), mb)
	}
	if b := list.Bounds(); !b.IsEmpty() {
		t.Errorf("Bounds = %v, want empty", b)
	}
	for _, needle := range []string{"a", "Dummy", " "} {
		hits, err := list.Search(needle, 0)
		if err != nil {
			t.Fatalf("Search(%q): %v", needle, err)
		}
		if hits == nil || len(hits) != 0 {
			t.Errorf("Search(%q) = %v, want empty non-nil slice", needle, hits)
		}
	}
}

func TestNewDisplayListInvalid(t *testing.T) {
	tests := []struct {
		name string
		mb   Rect
		opts []ListOption
		want error
	}{
		{"nan", Rect{X0: math.NaN(), X1: 10, Y1: 10}, nil, ErrInvalidArgument},
		{"inf", Rect{X1: math.Inf(1), Y1: 10}, nil, ErrInvalidArgument},
		{"negative capacity", Rect{X1: 10, Y1: 10}, []ListOption{WithCapacity(-1)}, ErrInvalidArgument},
		{"huge capacity", Rect{X1: 1, Y1: 1}, []ListOption{WithCapacity(math.MaxInt / 2)}, ErrAllocation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := NewDisplayList(tt.mb, tt.opts...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if list != nil {
				t.Error("a handle was returned on failure")
			}
		})
	}
}

func TestNewDisplayListDefaultCapacity(t *testing.T) {
	list, _ := NewDisplayList(Rect{X1: 1, Y1: 1})
	defer list.Close()
	if got := cap(list.rec.nodes); got != defaultListCapacity {
		t.Errorf("capacity = %d, want %d", got, defaultListCapacity)
	}

	ctx := NewContext(WithMaxListNodes(4))
	small, _ := NewDisplayList(Rect{X1: 1, Y1: 1}, WithContext(ctx))
	defer small.Close()
	if got := cap(small.rec.nodes); got != 4 {
		t.Errorf("capacity under limit = %d, want 4", got)
	}
}

func TestListDeviceSealed(t *testing.T) {
	list := record(t, Rect{X1: 10, Y1: 10}, func(dev Device) error {
		return dev.FillPath(rectPath(0, 0, 5, 5), false, Identity(), Black, 1)
	})

	dev := NewListDevice(list)
	defer dev.Close()
	err := dev.FillPath(rectPath(0, 0, 5, 5), false, Identity(), Black, 1)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("write after seal: err = %v, want invalid argument", err)
	}
	if list.Len() != 1 {
		t.Errorf("Len = %d, want 1", list.Len())
	}
}

func TestListDeviceNodeLimit(t *testing.T) {
	ctx := NewContext(WithMaxListNodes(2))
	list, _ := NewDisplayList(Rect{X1: 10, Y1: 10}, WithContext(ctx))
	defer list.Close()

	dev := NewListDevice(list)
	defer dev.Close()
	for i := range 2 {
		if err := dev.FillPath(rectPath(0, 0, 1, 1), false, Identity(), Black, 1); err != nil {
			t.Fatalf("node %d: %v", i, err)
		}
	}
	err := dev.FillPath(rectPath(0, 0, 1, 1), false, Identity(), Black, 1)
	if !errors.Is(err, ErrAllocation) {
		t.Fatalf("err = %v, want allocation", err)
	}
}

func TestListDeviceClosedList(t *testing.T) {
	list, _ := NewDisplayList(Rect{X1: 10, Y1: 10})
	list.Close()
	dev := NewListDevice(list)
	if err := dev.PopClip(); !errors.Is(err, ErrClosed) {
		t.Errorf("err = %v, want ErrClosed", err)
	}
}

func TestListDeviceCopiesInputs(t *testing.T) {
	p := rectPath(0, 0, 10, 10)
	s := NewStrokeState().WithWidth(2)
	list := record(t, Rect{X1: 100, Y1: 100}, func(dev Device) error {
		return dev.StrokePath(p, s, Identity(), Black, 1)
	})
	before := list.Bounds()

	p.Rect(50, 50, 90, 90)
	s.Width = 20
	if after := list.Bounds(); after != before {
		t.Errorf("Bounds changed after mutating inputs: %v -> %v", before, after)
	}
}

func TestBoundsClipAware(t *testing.T) {
	list := record(t, Rect{X1: 100, Y1: 100}, func(dev Device) error {
		if err := dev.ClipPath(rectPath(10, 10, 20, 20), false, Identity(), InfiniteRect); err != nil {
			return err
		}
		if err := dev.FillPath(rectPath(0, 0, 100, 100), false, Identity(), Black, 1); err != nil {
			return err
		}
		return dev.PopClip()
	})
	want := Rect{X0: 10, Y0: 10, X1: 20, Y1: 20}
	if got := list.Bounds(); got != want {
		t.Errorf("Bounds = %v, want %v", got, want)
	}
}

func TestBoundsContainsRenderedPixels(t *testing.T) {
	font := DefaultFont()
	list := record(t, Rect{X1: 120, Y1: 80}, func(dev Device) error {
		star := NewPath()
		star.MoveTo(30, 5)
		star.LineTo(45, 50)
		star.LineTo(8, 20)
		star.LineTo(52, 20)
		star.LineTo(15, 50)
		star.ClosePath()
		if err := dev.StrokePath(star, NewStrokeState().WithWidth(3), Identity(), RGB(0, 0, 1), 1); err != nil {
			return err
		}
		c := NewPath()
		c.Circle(90, 25, 12.3)
		if err := dev.FillPath(c, false, Identity(), RGB(1, 0, 0), 1); err != nil {
			return err
		}
		text := NewText()
		text.ShowString(font, TextMatrix(14, 10, 70), "Bounds")
		return dev.FillText(text, Identity(), Black, 1)
	})

	b := list.Bounds()
	pix, err := list.ToPixmap(Identity(), DeviceRGB, false)
	if err != nil {
		t.Fatalf("ToPixmap: %v", err)
	}
	inked := 0
	for y := range pix.Height() {
		for x := range pix.Width() {
			px := pix.Pixel(x, y)
			if px[0] == 255 && px[1] == 255 && px[2] == 255 {
				continue
			}
			inked++
			cell := Rect{X0: float64(x), Y0: float64(y), X1: float64(x + 1), Y1: float64(y + 1)}
			if !cell.Intersects(b) {
				t.Fatalf("pixel (%d,%d) painted outside bounds %v", x, y, b)
			}
		}
	}
	if inked == 0 {
		t.Fatal("nothing was rendered")
	}
}

func TestToPixmapBackground(t *testing.T) {
	list := record(t, Rect{X1: 4, Y1: 4}, func(Device) error { return nil })

	opaque, err := list.ToPixmap(Identity(), DeviceRGB, false)
	if err != nil {
		t.Fatalf("ToPixmap: %v", err)
	}
	for _, v := range opaque.Samples() {
		if v != 255 {
			t.Fatalf("opaque background sample = %d, want 255", v)
		}
	}

	transparent, err := list.ToPixmap(Identity(), DeviceRGB, true)
	if err != nil {
		t.Fatalf("ToPixmap: %v", err)
	}
	for _, v := range transparent.Samples() {
		if v != 0 {
			t.Fatalf("transparent background sample = %d, want 0", v)
		}
	}
}

func TestToPixmapFill(t *testing.T) {
	list := record(t, Rect{X1: 40, Y1: 40}, func(dev Device) error {
		return dev.FillPath(rectPath(10, 10, 30, 30), false, Identity(), RGB(1, 0, 0), 1)
	})
	pix, err := list.ToPixmap(Identity(), DeviceRGB, false)
	if err != nil {
		t.Fatalf("ToPixmap: %v", err)
	}
	if pix.Width() != 40 || pix.Height() != 40 {
		t.Fatalf("size = %dx%d", pix.Width(), pix.Height())
	}
	tests := []struct {
		x, y    int
		r, g, b byte
	}{
		{20, 20, 255, 0, 0},
		{10, 10, 255, 0, 0},
		{29, 29, 255, 0, 0},
		{5, 5, 255, 255, 255},
		{30, 30, 255, 255, 255},
	}
	for _, tt := range tests {
		px := pix.Pixel(tt.x, tt.y)
		if px[0] != tt.r || px[1] != tt.g || px[2] != tt.b {
			t.Errorf("pixel (%d,%d) = %v, want [%d %d %d]", tt.x, tt.y, px, tt.r, tt.g, tt.b)
		}
	}
}

func TestToPixmapTransform(t *testing.T) {
	list := record(t, Rect{X1: 50, Y1: 25}, func(Device) error { return nil })
	tests := []struct {
		name       string
		ctm        Matrix
		x, y, w, h int
	}{
		{"identity", Identity(), 0, 0, 50, 25},
		{"scale", Scale(2, 2), 0, 0, 100, 50},
		{"translate", Translate(10, 20), 10, 20, 50, 25},
		{"rotate", Rotate(math.Pi / 2), -25, 0, 25, 50},
		{"degenerate", Scale(0, 0), 0, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pix, err := list.ToPixmap(tt.ctm, DeviceGray, false)
			if err != nil {
				t.Fatalf("ToPixmap: %v", err)
			}
			if pix.X() != tt.x || pix.Y() != tt.y || pix.Width() != tt.w || pix.Height() != tt.h {
				t.Errorf("pixmap = %v (%dx%d), want origin (%d,%d) size %dx%d",
					pix.IRect(), pix.Width(), pix.Height(), tt.x, tt.y, tt.w, tt.h)
			}
		})
	}
}

func TestToPixmapErrors(t *testing.T) {
	list := record(t, Rect{X1: 100, Y1: 100}, func(Device) error { return nil }, WithContext(NewContext(WithMaxPixmapBytes(1000))))

	if _, err := list.ToPixmap(Identity(), nil, false); !errors.Is(err, ErrRender) {
		t.Errorf("nil colorspace: err = %v, want render error", err)
	}
	lab := &Colorspace{name: "Lab", n: 3}
	if _, err := list.ToPixmap(Identity(), lab, false); !errors.Is(err, ErrRender) {
		t.Errorf("unknown colorspace: err = %v, want render error", err)
	}

	_, err := list.ToPixmap(Identity(), DeviceRGB, false)
	if !errors.Is(err, ErrRender) || !errors.Is(err, ErrAllocation) {
		t.Errorf("oversized pixmap: err = %v, want render error caused by allocation", err)
	}
	if _, err := list.ToPixmap(Scale(0.1, 0.1), DeviceRGB, false); err != nil {
		t.Errorf("small pixmap: %v", err)
	}

	unlimited := record(t, Rect{X1: 612, Y1: 792}, func(Device) error { return nil }, WithContext(NewContext(WithMaxPixmapBytes(0))))
	for _, ctm := range []Matrix{Scale(3.1e9, 3.1e9), Scale(1e300, 1e300)} {
		_, err := unlimited.ToPixmap(ctm, DeviceRGB, false)
		if !errors.Is(err, ErrRender) || !errors.Is(err, ErrAllocation) {
			t.Errorf("ToPixmap(%v): err = %v, want render error caused by allocation", ctm, err)
		}
	}
}

func TestToPixmapDeterministic(t *testing.T) {
	font := DefaultFont()
	list := record(t, Rect{X1: 80, Y1: 60}, func(dev Device) error {
		p := NewPath()
		p.Circle(30, 30, 17.5)
		if err := dev.FillPath(p, true, Identity(), RGB(0.2, 0.4, 0.8), 0.7); err != nil {
			return err
		}
		text := NewText()
		text.ShowString(font, TextMatrix(16, 5, 50), "Same")
		return dev.FillText(text, Identity(), Black, 1)
	})
	ctm := Concat(Rotate(0.3), Scale(1.7, 1.7))
	a, err := list.ToPixmap(ctm, DeviceRGB, true)
	if err != nil {
		t.Fatalf("ToPixmap: %v", err)
	}
	b, err := list.ToPixmap(ctm, DeviceRGB, true)
	if err != nil {
		t.Fatalf("ToPixmap: %v", err)
	}
	if a.IRect() != b.IRect() || !bytes.Equal(a.Samples(), b.Samples()) {
		t.Error("two renders of the same list differ")
	}
}

func TestRunCulling(t *testing.T) {
	list := record(t, Rect{X1: 200, Y1: 200}, func(dev Device) error {
		if err := dev.FillPath(rectPath(0, 0, 10, 10), false, Identity(), Black, 1); err != nil {
			return err
		}
		if err := dev.ClipPath(rectPath(150, 150, 160, 160), false, Identity(), InfiniteRect); err != nil {
			return err
		}
		if err := dev.FillPath(rectPath(150, 150, 160, 160), false, Identity(), Black, 1); err != nil {
			return err
		}
		return dev.PopClip()
	})

	dev := &callDevice{}
	if err := list.Run(dev, Identity(), Rect{X1: 50, Y1: 50}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := "fill_path clip_path pop_clip"
	if got := strings.Join(dev.calls, " "); got != want {
		t.Errorf("calls = %q, want %q", got, want)
	}

	// The replay matrix moves the far rectangle into the area.
	dev = &callDevice{}
	if err := list.Run(dev, Translate(-140, -140), Rect{X1: 50, Y1: 50}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want = "clip_path fill_path pop_clip"
	if got := strings.Join(dev.calls, " "); got != want {
		t.Errorf("translated calls = %q, want %q", got, want)
	}
}

func TestRunWithCookieAborted(t *testing.T) {
	list := record(t, Rect{X1: 10, Y1: 10}, func(dev Device) error {
		return dev.FillPath(rectPath(0, 0, 5, 5), false, Identity(), Black, 1)
	})

	cookie := new(Cookie)
	cookie.Abort()
	var buf bytes.Buffer
	if err := list.RunWithCookie(NewTraceDevice(&buf), Identity(), InfiniteRect, cookie); err != nil {
		t.Fatalf("aborted run returned %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("device received calls after abort:\n%s", buf.String())
	}
	if !cookie.Incomplete.Load() {
		t.Error("Incomplete not set")
	}
}

func TestRunWithCookieProgress(t *testing.T) {
	list := record(t, Rect{X1: 10, Y1: 10}, func(dev Device) error {
		for range 3 {
			if err := dev.FillPath(rectPath(0, 0, 5, 5), false, Identity(), Black, 1); err != nil {
				return err
			}
		}
		return nil
	})
	cookie := new(Cookie)
	if err := list.RunWithCookie(&callDevice{}, Identity(), InfiniteRect, cookie); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cookie.Progress.Load() != 3 || cookie.ProgressMax.Load() != 3 {
		t.Errorf("progress = %d/%d, want 3/3", cookie.Progress.Load(), cookie.ProgressMax.Load())
	}
	if cookie.Incomplete.Load() || cookie.Errors.Load() != 0 {
		t.Error("complete run flagged as incomplete or failed")
	}
}

func TestRunDeviceError(t *testing.T) {
	boom := errors.New("boom")
	list := record(t, Rect{X1: 10, Y1: 10}, func(dev Device) error {
		if err := dev.FillPath(rectPath(0, 0, 5, 5), false, Identity(), Black, 1); err != nil {
			return err
		}
		return dev.FillPath(rectPath(0, 0, 5, 5), false, Identity(), Black, 1)
	})

	cookie := new(Cookie)
	dev := &callDevice{fail: boom}
	err := list.RunWithCookie(dev, Identity(), InfiniteRect, cookie)
	if !errors.Is(err, ErrRender) || !errors.Is(err, boom) {
		t.Fatalf("err = %v, want render error wrapping boom", err)
	}
	if len(dev.calls) != 1 {
		t.Errorf("replay continued after error: %v", dev.calls)
	}
	if cookie.Errors.Load() != 1 {
		t.Errorf("cookie errors = %d, want 1", cookie.Errors.Load())
	}
}

func TestCloneAndClose(t *testing.T) {
	list, _ := NewDisplayList(Rect{X1: 10, Y1: 10})
	dev := NewListDevice(list)
	_ = dev.FillPath(rectPath(0, 0, 5, 5), false, Identity(), Black, 1)
	_ = dev.Close()
	rec := list.rec

	clone, err := list.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}
	if got := rec.refs.Load(); got != 2 {
		t.Errorf("refs = %d, want 2", got)
	}

	if err := list.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := list.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if got := rec.refs.Load(); got != 1 {
		t.Errorf("refs after double close = %d, want 1", got)
	}

	if err := list.Run(&callDevice{}, Identity(), InfiniteRect); !errors.Is(err, ErrClosed) {
		t.Errorf("Run on closed handle: err = %v, want ErrClosed", err)
	}
	if _, err := list.ToPixmap(Identity(), DeviceRGB, false); !errors.Is(err, ErrClosed) {
		t.Errorf("ToPixmap on closed handle: err = %v, want ErrClosed", err)
	}
	if _, err := list.Clone(); !errors.Is(err, ErrClosed) {
		t.Errorf("Clone on closed handle: err = %v, want ErrClosed", err)
	}

	if clone.Len() != 1 {
		t.Errorf("clone Len = %d, want 1", clone.Len())
	}
	if _, err := clone.ToPixmap(Identity(), DeviceRGB, false); err != nil {
		t.Errorf("clone ToPixmap: %v", err)
	}

	clone.Close()
	if rec.refs.Load() != 0 || rec.nodes != nil {
		t.Error("recording not freed after last Close")
	}
}

func TestConcurrentReplay(t *testing.T) {
	list := record(t, Rect{X1: 64, Y1: 64}, func(dev Device) error {
		p := NewPath()
		p.Circle(32, 32, 20)
		return dev.StrokePath(p, NewStrokeState().WithWidth(5), Identity(), RGB(0, 0.5, 0), 1)
	})
	want, err := list.ToPixmap(Identity(), DeviceRGB, false)
	if err != nil {
		t.Fatalf("ToPixmap: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := list.Clone()
			if err != nil {
				errs <- err
				return
			}
			defer h.Close()
			pix, err := h.ToPixmap(Identity(), DeviceRGB, false)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(pix.Samples(), want.Samples()) {
				errs <- errors.New("concurrent render differs")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestToImage(t *testing.T) {
	list := record(t, Rect{X1: 10, Y1: 10}, func(dev Device) error {
		return dev.FillPath(rectPath(0, 0, 10, 10), false, Identity(), RGB(1, 0, 0), 1)
	})

	img, err := list.ToImage(20, 19.5)
	if err != nil {
		t.Fatalf("ToImage: %v", err)
	}
	defer img.Close()
	if img.Width() != 20 || img.Height() != 20 {
		t.Fatalf("size = %dx%d, want 20x20", img.Width(), img.Height())
	}

	// The image keeps its own reference to the recording.
	list.Close()

	rgba, err := img.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := rgba.RGBAAt(10, 10); got.R != 255 || got.G != 0 || got.A != 255 {
		t.Errorf("pixel = %v, want opaque red", got)
	}
	again, _ := img.Decode()
	if again != rgba {
		t.Error("Decode should cache its result")
	}
}

func TestToImageInvalidSize(t *testing.T) {
	list := record(t, Rect{X1: 10, Y1: 10}, func(Device) error { return nil })
	for _, sz := range [][2]float64{{0, 10}, {10, -1}, {math.NaN(), 5}, {math.Inf(1), 5}} {
		_, err := list.ToImage(sz[0], sz[1])
		if !errors.Is(err, ErrRender) || !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("ToImage(%v, %v): err = %v", sz[0], sz[1], err)
		}
	}
}
