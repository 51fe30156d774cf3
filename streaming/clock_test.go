package streaming_test

import (
	"sync"
	"time"

	"github.com/Leesungkyoung/Cpastone02/internal/wallclock"
)

type (
	// virtualClock is a manually-advanced clock driving the engine scheduler
	// in tests. Timers fire when Advance moves the clock past their
	// deadline; a timer created with a non-positive duration fires
	// immediately, matching time.NewTimer.
	virtualClock struct {
		mu     sync.Mutex
		cond   *sync.Cond
		now    time.Time
		timers []*virtualTimer
	}

	virtualTimer struct {
		clock *virtualClock
		ch    chan time.Time
		due   time.Time
		fired bool
	}
)

func newVirtualClock(start time.Time) *virtualClock {
	c := &virtualClock{now: start}
	c.cond = sync.NewCond(&c.mu)
	return c
}

func (c *virtualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *virtualClock) After(d time.Duration) <-chan time.Time {
	return c.NewTimer(d).C()
}

func (c *virtualClock) NewTimer(d time.Duration) wallclock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &virtualTimer{
		clock: c,
		ch:    make(chan time.Time, 1),
		due:   c.now.Add(d),
	}
	if d <= 0 {
		t.fired = true
		t.ch <- c.now
	} else {
		c.timers = append(c.timers, t)
		c.cond.Broadcast()
	}
	return t
}

// Advance moves the clock forward, firing every timer whose deadline has
// elapsed.
func (c *virtualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)

	remaining := c.timers[:0]
	for _, t := range c.timers {
		if t.due.After(c.now) {
			remaining = append(remaining, t)
			continue
		}
		t.fired = true
		t.ch <- c.now
	}
	c.timers = remaining
}

// BlockUntil waits until at least n timers are waiting on the clock, i.e.
// until the scheduler has re-armed after processing.
func (c *virtualClock) BlockUntil(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.timers) < n {
		c.cond.Wait()
	}
}

// Step advances the clock once the scheduler is armed; shorthand for the
// BlockUntil/Advance pair used in almost every timing test.
func (c *virtualClock) Step(d time.Duration) {
	c.BlockUntil(1)
	c.Advance(d)
}

func (t *virtualTimer) C() <-chan time.Time {
	return t.ch
}

func (t *virtualTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, other := range c.timers {
		if other == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return !t.fired
}

func (t *virtualTimer) Reset(d time.Duration) bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()

	active := false
	for i, other := range c.timers {
		if other == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			active = true
			break
		}
	}

	t.due = c.now.Add(d)
	if d <= 0 {
		t.fired = true
		select {
		case t.ch <- c.now:
		default:
		}
		return active
	}
	t.fired = false
	c.timers = append(c.timers, t)
	c.cond.Broadcast()
	return active
}
