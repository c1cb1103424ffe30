package services

import "time"

// Clock provides the current time. Injected into services instead of reading
// the wall clock directly so tests can fix "now" and assert exact schedules.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock used in production
type SystemClock struct{}

// Now returns the current UTC time
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
