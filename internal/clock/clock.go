// Package clock abstracts time so game timing can be driven by a real or a
// manually advanced clock.
package clock

import "time"

// Timer represents a pending AfterFunc callback.
type Timer interface {
	// Stop prevents the Timer from firing. Returns false if the timer has
	// already fired or been stopped.
	Stop() bool
}

// Clock provides time-related operations.
type Clock interface {
	// AfterFunc calls f after d has elapsed. With System the call happens
	// in its own goroutine.
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

// System is the Clock backed by the time package.
var System Clock = systemClock{}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Delay resumes with resume once d has elapsed on c. There is no way to
// cancel it; callers that may be torn down must check their own state
// inside resume.
func Delay(c Clock, d time.Duration, resume func()) {
	c.AfterFunc(d, resume)
}
