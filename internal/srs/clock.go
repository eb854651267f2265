package srs

import "time"

// Clock supplies the current time. Scheduling code never calls time.Now directly
// so tests can substitute a fixed or advancing clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}
