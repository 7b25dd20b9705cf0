package engine

import "sync/atomic"

// Clock is a monotonic logical clock for ordering execution records.
//
// Every record handed to the RecordSink is stamped with a strictly increasing
// seq number from this clock, so history reads back in dispatch order
// regardless of wall-clock skew.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes after start.
// Used to continue numbering on top of an existing history.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
