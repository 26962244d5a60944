// Package rate turns cumulative byte counters into throughput.
package rate

import "time"

// Counters is a cumulative (rx, tx) byte count sampled from an interface.
type Counters struct {
	Rx uint64 `json:"rx"`
	Tx uint64 `json:"tx"`
}

// Sample is a throughput in bytes per second.
type Sample struct {
	Rx float64 `json:"rx"`
	Tx float64 `json:"tx"`
}

// Counter derives throughput from successive Counters observations taken at
// a fixed nominal interval. It is not safe for concurrent use.
type Counter struct {
	interval time.Duration

	// MaxGap re-seeds the baseline when two observations are further apart
	// than this, e.g. after a suspend. Zero disables the check.
	MaxGap time.Duration

	prev      Counters
	prevAt    time.Time
	baselined bool
}

// NewCounter returns a Counter for the given poll interval.
func NewCounter(interval time.Duration) *Counter {
	if interval <= 0 {
		interval = time.Second
	}
	return &Counter{interval: interval}
}

// Observe records c and returns the throughput since the previous
// observation. ok is false when c only seeds the baseline.
func (r *Counter) Observe(c Counters, at time.Time) (s Sample, ok bool) {
	defer func() {
		r.prev = c
		r.prevAt = at
		r.baselined = true
	}()

	if !r.baselined {
		return Sample{}, false
	}
	if r.MaxGap > 0 && !r.prevAt.IsZero() && at.Sub(r.prevAt) > r.MaxGap {
		return Sample{}, false
	}

	seconds := r.interval.Seconds()
	return Sample{
		Rx: float64(delta(r.prev.Rx, c.Rx)) / seconds,
		Tx: float64(delta(r.prev.Tx, c.Tx)) / seconds,
	}, true
}

// Reset forgets the baseline, e.g. when the interface disappeared.
func (r *Counter) Reset() {
	r.prev = Counters{}
	r.prevAt = time.Time{}
	r.baselined = false
}

// delta clamps a counter reset to zero instead of going negative.
func delta(prev, cur uint64) uint64 {
	if cur < prev {
		return 0
	}
	return cur - prev
}

// KB scales bytes to kilobytes.
func KB(bytes float64) float64 {
	return bytes / 1024
}
