package sources

import "time"

// DefaultDateLayout renders as 2024.03.05 09:07.
const DefaultDateLayout = "2006.01.02 15:04"

// Clock tells the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the local wall clock.
type SystemClock struct{}

// Now returns the local time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}
