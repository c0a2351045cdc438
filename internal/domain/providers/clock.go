package providers

import "time"

// Clock supplies the current time. Services that classify slot dates or
// expire session state take a Clock instead of calling time.Now directly.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real clock
type SystemClock struct{}

// Now returns the current local time
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant (used for tests)
type FixedClock struct {
	Instant time.Time
}

// Now returns the fixed instant
func (c FixedClock) Now() time.Time {
	return c.Instant
}
