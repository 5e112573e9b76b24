package testutil

import "sync"

// DeterministicClock provides a thread-safe monotonic logical clock for tests.
//
// Unlike engine.LogicalClock, DeterministicClock can be reset and stepped
// explicitly. Scenarios that run against it produce identical post, like and
// tip timestamps on every run.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	seq  int64
	step int64
}

// NewDeterministicClock creates a new deterministic clock starting at 0.
//
// The first call to Next() returns 1.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{seq: 0, step: 1}
}

// NewDeterministicClockAt creates a clock whose first Now returns start+step.
// A step of 0 freezes time, which is how tests produce equal timestamps.
func NewDeterministicClockAt(start, step int64) *DeterministicClock {
	return &DeterministicClock{seq: start, step: step}
}

// Next advances by step and returns the new value.
//
// Thread-safe: uses mutex to protect seq access.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq += c.step
	return c.seq
}

// Now implements engine.Clock.
func (c *DeterministicClock) Now() int64 {
	return c.Next()
}

// Set moves the clock so the next call returns v+step.
func (c *DeterministicClock) Set(v int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = v
}

// Current returns the current sequence number without incrementing.
//
// Thread-safe: uses mutex to protect seq access.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset resets the clock to 0.
//
// Used for test reuse. After Reset(), the next call to Next() returns 1.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
