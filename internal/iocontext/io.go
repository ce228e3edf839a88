// Package iocontext provides injectable I/O streams via context for testability.
package iocontext

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"
)

// IO holds the input/output streams for commands.
type IO struct {
	Out    io.Writer // stdout
	ErrOut io.Writer // stderr
	In     io.Reader // stdin
}

// DefaultIO returns the standard IO streams.
func DefaultIO() *IO {
	return &IO{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
		In:     os.Stdin,
	}
}

// InFd returns the file descriptor behind In, or -1 when In is not a file.
func (s *IO) InFd() int {
	if f, ok := s.In.(*os.File); ok {
		return int(f.Fd())
	}
	return -1
}

// IsInteractive reports whether In is attached to a terminal.
func (s *IO) IsInteractive() bool {
	fd := s.InFd()
	return fd >= 0 && term.IsTerminal(fd)
}

// IsOutTerminal reports whether Out is attached to a terminal.
func (s *IO) IsOutTerminal() bool {
	f, ok := s.Out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type ioKey struct{}

// WithIO adds IO streams to a context.
func WithIO(ctx context.Context, streams *IO) context.Context {
	return context.WithValue(ctx, ioKey{}, streams)
}

// GetIO retrieves IO streams from context, defaulting to standard streams.
func GetIO(ctx context.Context) *IO {
	if streams, ok := ctx.Value(ioKey{}).(*IO); ok && streams != nil {
		return streams
	}
	return DefaultIO()
}
