// Package clock abstracts time so services can derive elapsed/remaining
// values deterministically in tests.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System is the real wall clock.
type System struct{}

// Now returns the current time.
func (System) Now() time.Time {
	return time.Now()
}

// Fixed is a controllable clock for tests.
type Fixed struct {
	current time.Time
}

// NewFixed creates a clock pinned to t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{current: t}
}

// Now returns the pinned time.
func (f *Fixed) Now() time.Time {
	return f.current
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.current = f.current.Add(d)
}

// Set pins the clock to t.
func (f *Fixed) Set(t time.Time) {
	f.current = t
}
