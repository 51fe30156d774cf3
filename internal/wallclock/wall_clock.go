// Package wallclock abstracts a subset of package time so that code which
// schedules work against the wall clock can be driven by a virtual clock in
// tests.
package wallclock

import "time"

type (
	// WallClock abstracts the subset of package time used by the streaming
	// engine.
	WallClock interface {
		After(d time.Duration) <-chan time.Time
		NewTimer(d time.Duration) Timer
		Now() time.Time
	}

	// Timer abstracts the functionality of time.Timer.
	Timer interface {
		C() <-chan time.Time
		Reset(d time.Duration) bool
		Stop() bool
	}

	wallClock struct{}

	timer struct {
		*time.Timer
	}
)

// After indirects time.After.
func (wallClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// NewTimer indirects time.NewTimer.
func (wallClock) NewTimer(d time.Duration) Timer {
	return timer{Timer: time.NewTimer(d)}
}

// Now indirects time.Now.
func (wallClock) Now() time.Time {
	return time.Now()
}

// C indirects time.Timer.C.
func (t timer) C() <-chan time.Time {
	return t.Timer.C
}

// Instance is a WallClock singleton used for indirect time-based references
// to package time. It is the default clock for engines that do not inject
// their own.
var Instance WallClock = wallClock{}
