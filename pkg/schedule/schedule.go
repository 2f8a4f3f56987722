// Package schedule runs one-shot tasks after a delay and hands back a handle that can cancel them.
package schedule

import "time"

// Handle refers to a scheduled task.
type Handle interface {
	// Stop cancels the task. It returns false if the task already ran or was stopped.
	Stop() bool
}

type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Handle
}

type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// TimerScheduler runs tasks on runtime timers. Tasks fire on their own goroutine.
type TimerScheduler struct{}

func NewTimer() TimerScheduler {
	return TimerScheduler{}
}

func (TimerScheduler) AfterFunc(d time.Duration, f func()) Handle {
	return time.AfterFunc(d, f)
}
