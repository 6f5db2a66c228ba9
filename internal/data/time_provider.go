package data

import "time"

// TimeProvider abstracts time.Now so repository timestamps are testable.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider returns the wall clock.
type RealTimeProvider struct{}

// Now implements TimeProvider.
func (*RealTimeProvider) Now() time.Time { return time.Now() }

// FixedTimeProvider returns a fixed instant, for tests.
type FixedTimeProvider struct {
	Fixed time.Time
}

// Now implements TimeProvider.
func (f *FixedTimeProvider) Now() time.Time { return f.Fixed }
