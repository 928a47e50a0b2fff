package fitz

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine failures.
type ErrorKind uint8

const (
	// KindAllocation reports that a list, buffer or pixmap could not be allocated.
	KindAllocation ErrorKind = iota + 1
	// KindRender reports a failure during rasterization, text extraction or replay.
	KindRender
	// KindInvalidArgument reports caller input the engine cannot accept.
	KindInvalidArgument
)

// String returns the name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindAllocation:
		return "allocation"
	case KindRender:
		return "render"
	case KindInvalidArgument:
		return "invalid argument"
	default:
		return "unknown"
	}
}

// Error is the error type returned by every fallible fitz operation.
// Match kinds with errors.Is against ErrAllocation, ErrRender and
// ErrInvalidArgument.
type Error struct {
	Kind ErrorKind
	Op   string // operation that failed, e.g. "search"
	Msg  string // engine diagnostic
	Err  error  // underlying cause, may be nil
}

// Sentinel errors for kind matching.
var (
	ErrAllocation      = &Error{Kind: KindAllocation}
	ErrRender          = &Error{Kind: KindRender}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}

	// ErrClosed is returned by operations on a released display list handle.
	ErrClosed = &Error{Kind: KindInvalidArgument, Msg: "display list is closed"}
)

func (e *Error) Error() string {
	msg := "fitz"
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	} else if e.Err == nil {
		msg += ": " + e.Kind.String() + " error"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a kind sentinel matching e, or the same
// fully specified error (Kind and Msg equal, Op empty on the target).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind != e.Kind || t.Op != "" || t.Err != nil {
		return false
	}
	return t.Msg == "" || t.Msg == e.Msg
}

// newError builds an *Error of the given kind.
func newError(kind ErrorKind, op string, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// wrapRender converts an arbitrary failure into a render error for op,
// leaving fitz errors of another kind reachable through Unwrap.
func wrapRender(op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) && fe.Kind == KindRender {
		return err
	}
	return &Error{Kind: KindRender, Op: op, Err: err}
}
