package fitz

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled reports false so callers skip
// building attributes.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr is the package logger used by contexts without their own.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger sets the package logger. Contexts created with WithLogger keep
// their own logger; every other context, including DefaultContext, logs
// here. Pass nil to silence it again. Safe for concurrent use.
//
// fitz logs at two levels:
//   - [slog.LevelDebug]: replay diagnostics (node counts, culling, cookie aborts, pixmap sizes)
//   - [slog.LevelWarn]: device failures and over-released references
//
// Example:
//
//	fitz.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the package logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// WithLogger routes the diagnostics of display lists using the context
// to l instead of the package logger. A nil l keeps the package logger.
//
// Example:
//
//	ctx := fitz.NewContext(fitz.WithLogger(slog.Default().With("doc", name)))
func WithLogger(l *slog.Logger) Option {
	return func(c *Context) {
		c.log = l
	}
}

// logger returns the logger for work done under c.
func (c *Context) logger() *slog.Logger {
	if c == nil || c.log == nil {
		return Logger()
	}
	return c.log
}
