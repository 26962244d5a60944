// Package composer renders the composite state into the status line and
// suppresses lines identical to the last one written.
package composer

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/statusbar/dwmstatus/pkg/state"
)

const (
	DefaultSeparator = " | "
	DefaultPadding   = " "
	// Placeholder is shown for categories that were never refreshed.
	Placeholder = "-"
)

// Writer receives composed lines.
type Writer interface {
	Write(text string) error
}

// Format controls the layout of the line.
type Format struct {
	Order     []state.Category
	Separator string
	Padding   string
}

// DefaultFormat is network | volume | date | battery.
func DefaultFormat() Format {
	return Format{
		Order:     append([]state.Category(nil), state.Categories...),
		Separator: DefaultSeparator,
		Padding:   DefaultPadding,
	}
}

// Compose renders snap. Stale categories show their fallback.
func (f Format) Compose(snap state.Snapshot) string {
	fields := make([]string, 0, len(f.Order))
	for _, c := range f.Order {
		e := snap.Get(c)
		if !e.Filled() {
			fields = append(fields, Placeholder)
			continue
		}
		fields = append(fields, e.Display())
	}
	return f.Padding + strings.Join(fields, f.Separator) + f.Padding
}

// Stats counts what Emit did.
type Stats struct {
	Written    uint64 `json:"written"`
	Suppressed uint64 `json:"suppressed"`
	Failed     uint64 `json:"failed"`
}

// Composer writes composed lines to w, skipping repeats.
type Composer struct {
	w Writer

	mu      sync.Mutex
	format  Format
	last    string
	emitted bool
	stats   Stats
}

// New returns a composer writing to w.
func New(w Writer, f Format) *Composer {
	return &Composer{w: w, format: f}
}

// SetFormat changes the layout. Repeats are detected on the composed line,
// so a layout change is written by the next Emit.
func (c *Composer) SetFormat(f Format) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.format = f
}

// Emit composes snap and writes it unless it equals the last line written.
// The first line is always written. A failed write leaves the last line
// unchanged, so the same text is tried again next time.
func (c *Composer) Emit(snap state.Snapshot) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	line := c.format.Compose(snap)
	if c.emitted && line == c.last {
		c.stats.Suppressed++
		return false, nil
	}

	if err := c.w.Write(line); err != nil {
		c.stats.Failed++
		return false, errors.Wrap(err, "write status line")
	}

	logrus.WithField("line", line).Trace("status line written")
	c.last = line
	c.emitted = true
	c.stats.Written++
	return true, nil
}

// Last returns the last line written, if any.
func (c *Composer) Last() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.emitted
}

// Stats returns the write counters.
func (c *Composer) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
