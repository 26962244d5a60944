// Package sink publishes the status line.
package sink

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Sink displays status lines.
type Sink interface {
	Write(text string) error
	Close() error
}

// Console prints each line to an io.Writer, stdout by default.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsole returns a console sink writing to out, or stdout when nil.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

// Write prints text followed by a newline.
func (c *Console) Write(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintln(c.out, text); err != nil {
		return errors.Wrap(err, "write console")
	}
	return nil
}

// Close is a no-op.
func (c *Console) Close() error {
	return nil
}

// Open returns the console sink when console is set, else the X root
// window of display.
func Open(console bool, display string) (Sink, error) {
	if console {
		logrus.Info("writing status to console")
		return NewConsole(nil), nil
	}
	return NewXRoot(display)
}
