package fitz

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// defaultListCapacity is the initial node capacity of a new list.
const defaultListCapacity = 64

// recording is the shared node storage behind one or more DisplayList
// handles. Nodes are appended by a list device until it is sealed and are
// never modified afterwards.
type recording struct {
	mu       sync.RWMutex
	mediabox Rect
	nodes    []node
	sealed   bool
	ctx      *Context

	refs atomic.Int32
}

func newRecording(mediabox Rect, ctx *Context, capacity int) *recording {
	return &recording{
		mediabox: mediabox,
		nodes:    make([]node, 0, capacity),
		ctx:      ctx,
	}
}

// snapshot returns the nodes recorded so far. Later appends never touch
// the returned slice.
func (r *recording) snapshot() []node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nodes[:len(r.nodes):len(r.nodes)]
}

func (r *recording) append(n node) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return newError(KindInvalidArgument, "record", nil, "display list is sealed")
	}
	if limit := r.ctx.MaxListNodes(); limit > 0 && len(r.nodes) >= limit {
		return newError(KindAllocation, "record", nil, "display list exceeds %d nodes", limit)
	}
	r.nodes = append(r.nodes, n)
	return nil
}

func (r *recording) seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

func (r *recording) keep() {
	r.refs.Add(1)
}

// drop releases one reference and frees the nodes with the last one.
func (r *recording) drop() {
	switch n := r.refs.Add(-1); {
	case n == 0:
		r.mu.Lock()
		r.nodes = nil
		r.sealed = true
		r.mu.Unlock()
	case n < 0:
		r.ctx.logger().Warn("display list reference released more than once", "refs", n)
	}
}

// DisplayList is a recorded sequence of drawing operations that can be
// replayed any number of times: rasterized to a pixmap, extracted to a
// text page, searched, or run against any Device.
//
// A DisplayList is a handle to a reference counted recording. Clone
// returns another handle to the same recording; the recording is freed
// when the last handle is closed. All read operations are safe for
// concurrent use, on one handle or on clones.
type DisplayList struct {
	rec     *recording
	closed  atomic.Bool
	cleanup runtime.Cleanup
}

// NewDisplayList creates an empty display list for a page covering
// mediabox. Populate it with a list device:
//
//	list, err := fitz.NewDisplayList(fitz.Rect{X1: 595, Y1: 842})
//	if err != nil {
//	    return err
//	}
//	defer list.Close()
//
//	dev := fitz.NewListDevice(list)
//	_ = dev.FillPath(path, false, fitz.Identity(), fitz.Black, 1)
//	_ = dev.Close()
func NewDisplayList(mediabox Rect, opts ...ListOption) (*DisplayList, error) {
	if !mediabox.IsValid() {
		return nil, newError(KindInvalidArgument, "new display list", nil, "invalid media box %v", mediabox)
	}
	ctx, capacity, err := resolveListOptions("new display list", opts)
	if err != nil {
		return nil, err
	}
	return adoptRecording(newRecording(mediabox, ctx, capacity)), nil
}

// adoptRecording wraps rec in a new handle that owns one reference.
func adoptRecording(rec *recording) *DisplayList {
	rec.keep()
	l := &DisplayList{rec: rec}
	l.cleanup = runtime.AddCleanup(l, func(r *recording) { r.drop() }, rec)
	return l
}

// recording returns the storage of an open handle.
func (l *DisplayList) recording() (*recording, error) {
	if l == nil || l.closed.Load() {
		return nil, ErrClosed
	}
	return l.rec, nil
}

// Clone returns a new handle to the same recording.
func (l *DisplayList) Clone() (*DisplayList, error) {
	rec, err := l.recording()
	if err != nil {
		return nil, err
	}
	return adoptRecording(rec), nil
}

// Close releases the handle's reference to the recording. It never fails
// and closing a handle twice has no further effect.
func (l *DisplayList) Close() error {
	if l == nil || !l.closed.CompareAndSwap(false, true) {
		return nil
	}
	l.cleanup.Stop()
	l.rec.drop()
	return nil
}

// MediaBox returns the page area the list was created for.
func (l *DisplayList) MediaBox() Rect {
	rec, err := l.recording()
	if err != nil {
		return EmptyRect
	}
	return rec.mediabox
}

// Len returns the number of recorded nodes.
func (l *DisplayList) Len() int {
	rec, err := l.recording()
	if err != nil {
		return 0
	}
	return len(rec.snapshot())
}

// IsEmpty reports whether nothing has been recorded.
func (l *DisplayList) IsEmpty() bool {
	return l.Len() == 0
}

// Bounds returns the area painted by the recording, limited by its clips.
// An empty list has EmptyRect bounds.
func (l *DisplayList) Bounds() Rect {
	var r Rect
	if err := l.Run(NewBBoxDevice(&r), Identity(), InfiniteRect); err != nil {
		return EmptyRect
	}
	return r
}

// Run replays the recording into dev. Every node's matrix is concatenated
// with ctm, and drawing whose device bounds miss area is skipped.
func (l *DisplayList) Run(dev Device, ctm Matrix, area Rect) error {
	return l.RunWithCookie(dev, ctm, area, nil)
}

// RunWithCookie is like Run but polls cookie before every node. An
// aborted replay stops early and returns nil; the device holds whatever
// was drawn so far. A device error stops the replay and is returned as a
// render error.
func (l *DisplayList) RunWithCookie(dev Device, ctm Matrix, area Rect, cookie *Cookie) error {
	rec, err := l.recording()
	if err != nil {
		return err
	}
	nodes := rec.snapshot()
	log := rec.ctx.logger()
	if cookie != nil {
		cookie.ProgressMax.Store(int64(len(nodes)))
		cookie.Progress.Store(0)
	}

	culled := 0
	for i := range nodes {
		if cookie.Aborted() {
			cookie.Incomplete.Store(true)
			log.Debug("display list run aborted", "node", i, "nodes", len(nodes))
			return nil
		}
		n := &nodes[i]
		if n.kind.cullable() && !n.rect.IsInfinite() && !n.rect.Transform(ctm).Intersects(area) {
			culled++
		} else if err := n.replay(dev, ctm); err != nil {
			if cookie != nil {
				cookie.Errors.Add(1)
			}
			log.Warn("display list device error", "node", i, "op", n.kind.String(), "err", err)
			return &Error{Kind: KindRender, Op: "run", Msg: n.kind.String(), Err: err}
		}
		if cookie != nil {
			cookie.Progress.Store(int64(i + 1))
		}
	}
	log.Debug("display list run", "nodes", len(nodes), "culled", culled)
	return nil
}

// ToPixmap renders the media box transformed by ctm into a new pixmap.
// Without alpha the background is white; with alpha it is transparent.
// A matrix that collapses the page yields an empty pixmap.
func (l *DisplayList) ToPixmap(ctm Matrix, cs *Colorspace, alpha bool) (*Pixmap, error) {
	const op = "to pixmap"
	rec, err := l.recording()
	if err != nil {
		return nil, err
	}
	if cs == nil || !cs.known() {
		return nil, newError(KindRender, op, ErrInvalidArgument, "unsupported colorspace %v", cs)
	}
	bbox := rec.mediabox.Transform(ctm).RoundOut()
	pix, err := newPixmap(rec.ctx, cs, bbox, alpha)
	if err != nil {
		return nil, wrapRender(op, err)
	}
	if alpha {
		pix.Clear()
	} else {
		pix.ClearWithValue(255)
	}
	rec.ctx.logger().Debug("display list to pixmap", "width", pix.Width(), "height", pix.Height(), "colorspace", cs.Name())

	dev := NewDrawDevice(pix, rec.ctx)
	err = l.Run(dev, ctm, bbox.Rect())
	if cerr := dev.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, wrapRender(op, err)
	}
	return pix, nil
}

// ToTextPage extracts the text of the recording.
func (l *DisplayList) ToTextPage(flags TextPageFlags) (*TextPage, error) {
	const op = "to text page"
	rec, err := l.recording()
	if err != nil {
		return nil, err
	}
	page := NewTextPage(rec.mediabox)
	dev := NewTextDevice(page, flags)
	err = l.Run(dev, Identity(), InfiniteRect)
	if cerr := dev.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, wrapRender(op, err)
	}
	return page, nil
}
