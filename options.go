package fitz

import (
	"log/slog"
	"sync"
)

// Context holds engine-wide rendering configuration shared by display
// lists, devices and pixmaps. A Context is immutable after creation and safe
// for concurrent use.
//
// Example:
//
//	// Default configuration
//	list, _ := fitz.NewDisplayList(mediabox)
//
//	// Aliased rendering with a 64 MiB pixmap limit
//	ctx := fitz.NewContext(fitz.WithAntiAlias(0), fitz.WithMaxPixmapBytes(64<<20))
//	list, _ := fitz.NewDisplayList(mediabox, fitz.WithContext(ctx))
type Context struct {
	aaLevel        int
	maxPixmapBytes int
	maxListNodes   int
	log            *slog.Logger // package Logger() when nil
}

// Option configures a Context during creation.
type Option func(*Context)

// Default engine limits.
const (
	// DefaultAntiAlias is the default anti-aliasing level (bits of subsampling).
	DefaultAntiAlias = 2

	// DefaultMaxPixmapBytes bounds a single pixmap allocation (1 GiB).
	DefaultMaxPixmapBytes = 1 << 30
)

// NewContext creates an engine context with the given options applied over
// the defaults.
func NewContext(opts ...Option) *Context {
	c := &Context{
		aaLevel:        DefaultAntiAlias,
		maxPixmapBytes: DefaultMaxPixmapBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultContext = sync.OnceValue(func() *Context { return NewContext() })

// DefaultContext returns the process-wide context used when no context is
// supplied. It is created on first use.
func DefaultContext() *Context {
	return defaultContext()
}

// WithAntiAlias sets the anti-aliasing level from 0 (aliased) to 4
// (16 vertical subsamples per pixel). Values outside the range are clamped.
func WithAntiAlias(level int) Option {
	return func(c *Context) {
		c.aaLevel = min(max(level, 0), 4)
	}
}

// WithMaxPixmapBytes limits the size of any pixmap the engine allocates.
// A value <= 0 removes the limit.
func WithMaxPixmapBytes(n int) Option {
	return func(c *Context) {
		c.maxPixmapBytes = n
	}
}

// WithMaxListNodes limits the number of nodes a display list may hold.
// A value <= 0 removes the limit.
func WithMaxListNodes(n int) Option {
	return func(c *Context) {
		c.maxListNodes = n
	}
}

// AntiAlias returns the anti-aliasing level.
func (c *Context) AntiAlias() int { return c.aaLevel }

// MaxPixmapBytes returns the pixmap size limit, or 0 if unlimited.
func (c *Context) MaxPixmapBytes() int { return max(c.maxPixmapBytes, 0) }

// MaxListNodes returns the display list node limit, or 0 if unlimited.
func (c *Context) MaxListNodes() int { return max(c.maxListNodes, 0) }

// subsamples returns the vertical subsample count for the AA level.
func (c *Context) subsamples() int {
	return 1 << c.aaLevel
}

// ListOption configures a DisplayList during creation.
type ListOption func(*listOptions)

// listOptions holds optional configuration for NewDisplayList.
type listOptions struct {
	ctx      *Context
	capacity int
}

// defaultListOptions returns the default list options.
func defaultListOptions() listOptions {
	return listOptions{
		ctx:      nil, // DefaultContext() when nil
		capacity: 0,   // defaultListCapacity when 0
	}
}

// WithContext binds the list to an engine context.
func WithContext(ctx *Context) ListOption {
	return func(o *listOptions) {
		o.ctx = ctx
	}
}

// WithCapacity pre-allocates room for n recorded nodes. Requesting more
// nodes than the context's node limit, or more than maxListCapacity,
// fails with an allocation error.
func WithCapacity(n int) ListOption {
	return func(o *listOptions) {
		o.capacity = n
	}
}

// maxListCapacity is the largest node capacity a list pre-allocates.
const maxListCapacity = 1 << 20

// resolveListOptions applies opts and returns the context and initial
// node capacity for a new list.
func resolveListOptions(op string, opts []ListOption) (*Context, int, error) {
	o := defaultListOptions()
	for _, opt := range opts {
		opt(&o)
	}
	ctx := o.ctx
	if ctx == nil {
		ctx = DefaultContext()
	}

	limit := ctx.MaxListNodes()
	capacity := o.capacity
	switch {
	case capacity < 0:
		return nil, 0, newError(KindInvalidArgument, op, nil, "negative capacity %d", capacity)
	case limit > 0 && capacity > limit:
		return nil, 0, newError(KindAllocation, op, nil, "capacity %d exceeds node limit %d", capacity, limit)
	case capacity > maxListCapacity:
		return nil, 0, newError(KindAllocation, op, nil, "capacity %d exceeds %d", capacity, maxListCapacity)
	case capacity == 0:
		capacity = defaultListCapacity
		if limit > 0 {
			capacity = min(capacity, limit)
		}
	}
	return ctx, capacity, nil
}
