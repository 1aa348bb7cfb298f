// Package ioctx carries the process's output streams through a context so
// commands can be pointed at buffers in tests.
package ioctx

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

type stdoutKey struct{}
type stderrKey struct{}

func StderrFromContext(ctx context.Context) io.Writer {
	w, ok := ctx.Value(stderrKey{}).(io.Writer)
	if !ok {
		return io.Discard
	}
	return w
}

func StderrToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stderrKey{}, w)
}

func StdoutFromContext(ctx context.Context) io.Writer {
	w, ok := ctx.Value(stdoutKey{}).(io.Writer)
	if !ok {
		return io.Discard
	}
	return w
}

func StdoutToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, stdoutKey{}, w)
}

// WithStdio points both streams at the process's own.
func WithStdio(ctx context.Context) context.Context {
	ctx = StdoutToContext(ctx, os.Stdout)
	return StderrToContext(ctx, os.Stderr)
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
