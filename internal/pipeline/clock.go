package pipeline

import "sync/atomic"

// Clock is a monotonic logical clock for stage event ordering.
//
// Every stage outcome is stamped with a strictly increasing seq number,
// so run logs order deterministically without wall-clock races.
//
// Thread-safety: safe for concurrent use (atomic operations), though
// the runner's sequential design means a single goroutine calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
