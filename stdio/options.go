package stdio

import (
	"io"
	"log/slog"
	"time"

	"github.com/ggoodman/lsp-server-go/handshake"
	"github.com/ggoodman/lsp-server-go/internal/engine"
)

// Option customizes a Handler.
type Option func(*Handler)

// WithIO sets the reader and writer for the handler.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(h *Handler) {
		if r != nil {
			h.r = r
		}
		if w != nil {
			h.w = w
		}
	}
}

// WithReader overrides the input stream.
func WithReader(r io.Reader) Option {
	return func(h *Handler) {
		if r != nil {
			h.r = r
		}
	}
}

// WithWriter overrides the output stream.
func WithWriter(w io.Writer) Option {
	return func(h *Handler) {
		if w != nil {
			h.w = w
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.l = l
			h.engineOpts = append(h.engineOpts, engine.WithLogger(l))
		}
	}
}

// WithConcurrency bounds the number of requests handled at once.
func WithConcurrency(n int) Option {
	return func(h *Handler) { h.engineOpts = append(h.engineOpts, engine.WithConcurrency(n)) }
}

// WithProcessWatchInterval sets how often the client process announced in
// initialize is polled. Zero disables the watch.
func WithProcessWatchInterval(d time.Duration) Option {
	return func(h *Handler) { h.engineOpts = append(h.engineOpts, engine.WithProcessWatchInterval(d)) }
}

// WithHandshake supplies the lifecycle machine, so the caller can inspect
// the exit report or register exit hooks.
func WithHandshake(m *handshake.Machine) Option {
	return func(h *Handler) {
		if m != nil {
			h.hs = m
		}
	}
}
