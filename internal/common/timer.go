// Package common holds small utilities shared across the pipeline stages
// that do not belong to any single spec.md component: wall-clock timing
// (this file) and the process-wide benchmark summary in benchmark.go.
package common

import (
	"fmt"
	"time"
)

// Timer records the wall-clock span of one stage invocation. A zero Timer
// is not ready to use; construct one with NewTimer or NewNamedTimer.
type Timer struct {
	name    string
	start   time.Time
	end     time.Time
	stopped bool
}

// NewTimer starts an anonymous timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// NewNamedTimer starts a timer tagged with name, for callers reporting more
// than one timing (e.g. per-stage breakdowns in a benchmark run).
func NewNamedTimer(name string) *Timer {
	return &Timer{name: name, start: time.Now()}
}

// Elapsed returns the time since the timer started without stopping it,
// useful for progress reporting mid-operation.
func (t *Timer) Elapsed() time.Duration {
	if t.stopped {
		return t.end.Sub(t.start)
	}
	return time.Since(t.start)
}

// Stop freezes the timer and returns the elapsed duration. Calling Stop
// again is a no-op that returns the same duration.
func (t *Timer) Stop() time.Duration {
	if !t.stopped {
		t.end = time.Now()
		t.stopped = true
	}
	return t.Duration()
}

// Duration returns the span recorded by Stop; it is zero until Stop runs.
func (t *Timer) Duration() time.Duration {
	if !t.stopped {
		return 0
	}
	return t.end.Sub(t.start)
}

// Name returns the timer's label, or "" if it was built with NewTimer.
func (t *Timer) Name() string {
	return t.name
}

// String renders "name: duration", or just the duration for unnamed timers.
func (t *Timer) String() string {
	if t.name == "" {
		return t.Duration().String()
	}
	return fmt.Sprintf("%s: %s", t.name, t.Duration())
}
