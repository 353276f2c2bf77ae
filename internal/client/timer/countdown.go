// Package timer provides the resend cooldown: a countdown that ticks once
// per second through individually scheduled one-shot callbacks.
package timer

import (
	"sync"
	"time"
)

// Stopper cancels a scheduled callback.
type Stopper interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// RealScheduler is backed by time.AfterFunc.
func RealScheduler() Scheduler {
	return realScheduler{}
}

// Countdown never goes below zero and stops by itself when it gets there.
// Every state change cancels the outstanding tick before scheduling the next
// one; a tick that already fired for an older generation is dropped.
type Countdown struct {
	mu      sync.Mutex
	sched   Scheduler
	left    int
	gen     uint64
	pending Stopper
	onTick  func(left int)
}

// New returns a stopped countdown at zero. A nil scheduler means
// RealScheduler.
func New(s Scheduler) *Countdown {
	if s == nil {
		s = RealScheduler()
	}
	return &Countdown{sched: s}
}

// OnTick registers f to run after every tick with the new value. f runs on
// the scheduler's goroutine without the countdown's lock held.
func (c *Countdown) OnTick(f func(left int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTick = f
}

// Start begins counting down from seconds.
func (c *Countdown) Start(seconds int) {
	c.Reset(seconds)
}

// Reset cancels the pending tick and restarts from seconds.
func (c *Countdown) Reset(seconds int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancel()
	c.left = max(seconds, 0)
	c.schedule()
}

// Stop cancels the pending tick and freezes the current value.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel()
}

// TimeLeft returns the remaining seconds.
func (c *Countdown) TimeLeft() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.left
}

// Running reports whether a tick is scheduled.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

func (c *Countdown) tick(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	if c.left > 0 {
		c.left--
	}
	left, f := c.left, c.onTick
	c.schedule()
	c.mu.Unlock()

	if f != nil {
		f(left)
	}
}

// cancel must be called with mu held.
func (c *Countdown) cancel() {
	c.gen++
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

// schedule must be called with mu held.
func (c *Countdown) schedule() {
	if c.left == 0 {
		return
	}
	gen := c.gen
	c.pending = c.sched.AfterFunc(time.Second, func() { c.tick(gen) })
}
