package core

import "time"

// Clock abstracts time for the edit window and period summaries; tests
// substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
