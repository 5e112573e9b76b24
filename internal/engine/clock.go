package engine

import (
	"sync/atomic"
	"time"
)

// Clock supplies creation timestamps for posts, likes and tips.
// Values are opaque ordering keys; only their relative order matters.
type Clock interface {
	Now() int64
}

// LogicalClock is a monotonic counter. Each Now call returns a strictly
// increasing value, which makes runs reproducible.
//
// Thread-safety: LogicalClock is safe for concurrent use (atomic operations).
type LogicalClock struct {
	seq atomic.Int64
}

// NewLogicalClock creates a clock starting at 0.
func NewLogicalClock() *LogicalClock {
	return &LogicalClock{}
}

// NewLogicalClockAt creates a clock that resumes after start.
func NewLogicalClockAt(start int64) *LogicalClock {
	c := &LogicalClock{}
	c.seq.Store(start)
	return c
}

// Next returns the next value and increments the clock.
func (c *LogicalClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out without incrementing.
func (c *LogicalClock) Current() int64 {
	return c.seq.Load()
}

func (c *LogicalClock) Now() int64 {
	return c.Next()
}

// WallClock reads the system clock in Unix nanoseconds.
type WallClock struct{}

func (WallClock) Now() int64 {
	return time.Now().UnixNano()
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() int64

func (f ClockFunc) Now() int64 { return f() }
