package timer

import "time"

// Clock abstracts time.Now so the engine can be driven by a fake clock in
// tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
