package playback

import "time"

// Timer is a pending delayed callback.
type Timer interface {
	Stop() bool
}

// Clock schedules delayed callbacks. The scheduler never sleeps; it only
// arms one callback at a time through its Clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// RealClock is backed by time.AfterFunc.
func RealClock() Clock { return realClock{} }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
