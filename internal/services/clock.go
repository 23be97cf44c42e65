package services

import "time"

// Clock supplies the current time. The synchronizer never reads the ambient
// clock directly so tests can pin the current period.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
