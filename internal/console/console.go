// Package console writes progress lines to a display surface.
//
// A Console with no writer stands in for a page without a console element:
// every call is accepted and nothing is written.
package console

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

const (
	textPrefix = " > "
	htmlPrefix = "<br> > "
)

type flusher interface {
	Flush() error
}

type syncer interface {
	Sync() error
}

// Console appends " > message" lines to a writer.
// Safe for concurrent use. A nil *Console is valid and discards everything.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	html   bool
	logger *slog.Logger
}

// Option configures a Console.
type Option func(*Console)

// WithHTML emits "<br> > message" fragments instead of text lines,
// for writers that feed an HTML page.
func WithHTML() Option {
	return func(c *Console) { c.html = true }
}

// WithLogger sets the logger used to report write failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Console writing to w. w may be nil.
func New(w io.Writer, opts ...Option) *Console {
	c := &Console{w: w, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether the console has a display to write to.
func (c *Console) Enabled() bool {
	return c != nil && c.w != nil
}

// Log appends msg to the display and flushes it.
func (c *Console) Log(msg string) {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var line string
	if c.html {
		line = htmlPrefix + msg
	} else {
		line = textPrefix + msg + "\n"
	}
	if _, err := io.WriteString(c.w, line); err != nil {
		c.logger.Debug("console write failed", "error", err)
		return
	}
	c.flush()
}

// Logf formats according to format and calls Log.
func (c *Console) Logf(format string, args ...any) {
	if !c.Enabled() {
		return
	}
	c.Log(fmt.Sprintf(format, args...))
}

// flush keeps the newest line visible; the caller holds mu.
func (c *Console) flush() {
	var err error
	switch w := c.w.(type) {
	case flusher:
		err = w.Flush()
	case syncer:
		err = w.Sync()
	}
	if err != nil {
		c.logger.Debug("console flush failed", "error", err)
	}
}
