package testutil

import (
	"sync"
	"time"
)

// DeterministicClock hands out a fixed, strictly increasing sequence of
// UTC timestamps so event logs written in tests are byte-reproducible.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	base time.Time
	step time.Duration
	n    int64
}

// NewDeterministicClock creates a clock starting at base and advancing
// one second per call to Now.
func NewDeterministicClock(base time.Time) *DeterministicClock {
	return &DeterministicClock{base: base.UTC(), step: time.Second}
}

// Now returns the next timestamp in the sequence.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.base.Add(time.Duration(c.n) * c.step)
	c.n++
	return t
}

// Reset rewinds the clock to its base time. After Reset the next call
// to Now returns base again.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = 0
}
