package logging

import (
	"io"
	"os"
	"sync"
)

// Transport is a single log output sink bound to a severity filter. A
// transport receives fully formatted lines; each Log call is one atomic
// write.
type Transport interface {
	Name() string
	Admits(Severity) bool
	Log(line string) error
	Close() error
}

// consoleTransport accepts every severity up to silly. It is always the last
// transport of a logger, present regardless of the configured level.
type consoleTransport struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsoleTransport returns the catch-all console transport. A nil writer
// defaults to stdout.
func NewConsoleTransport(w io.Writer) Transport {
	if w == nil {
		w = os.Stdout
	}
	return &consoleTransport{w: w}
}

func (c *consoleTransport) Name() string { return "console" }

func (c *consoleTransport) Admits(Severity) bool { return true }

func (c *consoleTransport) Log(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.w, line)
	return err
}

func (c *consoleTransport) Close() error { return nil }
