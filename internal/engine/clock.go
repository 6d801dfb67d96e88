package engine

import "time"

// Clock is the external time source the engine advances once per tick.
// The engine ignores anything the clock does in response.
type Clock interface {
	Advance(d time.Duration)
}

type nopClock struct{}

func (nopClock) Advance(time.Duration) {}

// ManualClock is an in-memory time source.
type ManualClock struct {
	Elapsed  time.Duration
	Advances int
}

func (c *ManualClock) Advance(d time.Duration) {
	c.Elapsed += d
	c.Advances++
}
