package wirebit

import "time"

// Clock is the monotonic nanosecond time source used by all pacing and
// timestamps in wirebit. All durations and timestamps are comparable as
// plain int64 on this one scale.
type Clock interface {
	NowNs() int64
}

// SystemClock reads the process's monotonic clock via time.Now, which on
// every platform Go supports carries a monotonic reading alongside the
// wall clock. It is the default Clock for links and endpoints.
type SystemClock struct{ start time.Time }

// NewSystemClock returns a SystemClock anchored to the current instant.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// NowNs returns nanoseconds elapsed since the clock was created.
func (c *SystemClock) NowNs() int64 {
	return time.Since(c.start).Nanoseconds()
}

// FakeClock is a manually-advanced Clock for deterministic tests.
type FakeClock struct{ ns int64 }

// NewFakeClock returns a FakeClock starting at ns.
func NewFakeClock(ns int64) *FakeClock { return &FakeClock{ns: ns} }

// NowNs returns the current fake time.
func (c *FakeClock) NowNs() int64 { return c.ns }

// Advance moves the fake clock forward by d nanoseconds and returns the
// new time.
func (c *FakeClock) Advance(d int64) int64 {
	c.ns += d
	return c.ns
}

// Set pins the fake clock to an absolute nanosecond value.
func (c *FakeClock) Set(ns int64) { c.ns = ns }
