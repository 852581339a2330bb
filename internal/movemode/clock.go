package movemode

import "time"

// Timer is a pending timer callback.
type Timer interface {
	Stop() bool
}

// Clock is the controller's time source.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// PostingClock fires timer callbacks through post, so they run on the
// goroutine that owns the controller.
func PostingClock(post func(func())) Clock {
	return postingClock{post: post}
}

type postingClock struct {
	post func(func())
}

func (postingClock) Now() time.Time { return time.Now() }

func (p postingClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, func() { p.post(f) })
}
