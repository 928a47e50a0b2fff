package fitz

import (
	"context"
	"sync/atomic"
)

// Cookie lets a caller observe and cancel a long replay. The caller owns
// the cookie; the engine only polls Aborted and updates the counters.
// A nil *Cookie means no cancellation is requested.
//
// A Cookie may be shared between the goroutine running the replay and any
// number of observers.
type Cookie struct {
	abort atomic.Bool

	// Progress counts replayed nodes; ProgressMax is the total.
	Progress    atomic.Int64
	ProgressMax atomic.Int64

	// Errors counts device failures seen during replay.
	Errors atomic.Int64

	// Incomplete is set when a replay stopped before the last node.
	Incomplete atomic.Bool
}

// Abort requests that replays using this cookie stop at the next node.
func (c *Cookie) Abort() {
	if c != nil {
		c.abort.Store(true)
	}
}

// Aborted reports whether Abort has been called.
func (c *Cookie) Aborted() bool {
	return c != nil && c.abort.Load()
}

// NewCookieContext returns a cookie that is aborted when ctx is done.
// Call stop to release the context registration once the replay returns;
// stop reports whether it prevented the abort.
func NewCookieContext(ctx context.Context) (*Cookie, func() bool) {
	c := new(Cookie)
	stop := context.AfterFunc(ctx, c.Abort)
	return c, stop
}
