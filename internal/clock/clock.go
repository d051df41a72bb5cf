// Package clock abstracts time and timer scheduling so cascade timing can
// be driven deterministically in tests.
package clock

import "time"

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// callback from firing.
	Stop() bool
}

// Clock provides the current time and one-shot timers.
type Clock interface {
	Now() time.Time

	// AfterFunc schedules fn to run once after d. The callback runs on
	// its own goroutine for the system clock and inline during Advance
	// for the fake clock.
	AfterFunc(d time.Duration, fn func()) Timer
}

type systemClock struct{}

// System returns the wall clock backed by the time package.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
