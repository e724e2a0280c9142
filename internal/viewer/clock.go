package viewer

import (
	"sync"
	"time"
)

// Clock schedules deferred work. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock is the wall-clock implementation of Clock.
var SystemClock Clock = realClock{}

// Throttle admits at most one event per window. Events arriving while the
// window is open are dropped, not queued.
type Throttle struct {
	mu      sync.Mutex
	clock   Clock
	window  time.Duration
	blocked bool
}

// NewThrottle returns a throttle with the given window.
func NewThrottle(clock Clock, window time.Duration) *Throttle {
	return &Throttle{clock: clock, window: window}
}

// Allow reports whether an event may proceed now, and if so opens a new
// window.
func (t *Throttle) Allow() bool {
	if t.window <= 0 {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.blocked {
		return false
	}
	t.blocked = true
	t.clock.AfterFunc(t.window, func() {
		t.mu.Lock()
		t.blocked = false
		t.mu.Unlock()
	})
	return true
}
