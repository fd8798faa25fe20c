package providers

import "time"

// Clock supplies the current instant to slot filtering and horizon checks.
// Injected so tests can pin time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock used in production.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time {
	return time.Now()
}
