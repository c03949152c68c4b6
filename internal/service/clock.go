package service

import (
	"sync"
	"time"
)

// Clock provides time operations. This interface enables deterministic testing.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// TestClock implements Clock with a manually advanced time for testing.
// Each call to Now returns the current time and then advances it by Step.
type TestClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewTestClock returns a clock starting at start that moves forward by
// step on every reading. A zero step keeps the time fixed.
func NewTestClock(start time.Time, step time.Duration) *TestClock {
	return &TestClock{now: start, step: step}
}

// Now returns the clock's current time.
func (t *TestClock) Now() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now
	t.now = t.now.Add(t.step)
	return now
}

// ClockFunc adapts a Clock to the func form used by the recent store.
func ClockFunc(c Clock) func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}
