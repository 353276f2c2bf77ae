package timer

import (
	"sync"
	"time"
)

// FakeScheduler fires callbacks only when Advance is called. It is exported
// for tests of packages that drive a Countdown.
type FakeScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	entries []*fakeEntry
}

type fakeEntry struct {
	s       *FakeScheduler
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (e *fakeEntry) Stop() bool {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	if e.stopped || e.fired {
		return false
	}
	e.stopped = true
	return true
}

func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{}
}

func (s *FakeScheduler) AfterFunc(d time.Duration, f func()) Stopper {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &fakeEntry{s: s, at: s.now + d, f: f}
	s.entries = append(s.entries, e)
	return e
}

// Advance moves the clock forward by d, firing due callbacks in order.
// Callbacks scheduled while advancing fire too if they fall due.
func (s *FakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var next *fakeEntry
		for _, e := range s.entries {
			if e.stopped || e.fired || e.at > target {
				continue
			}
			if next == nil || e.at < next.at {
				next = e
			}
		}
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		next.fired = true
		s.now = next.at
		s.mu.Unlock()

		next.f()
	}
}

// Pending counts callbacks that are scheduled and not cancelled.
func (s *FakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if !e.stopped && !e.fired {
			n++
		}
	}
	return n
}

// FireStale runs every cancelled callback anyway, the way a timer that
// fired just before Stop would.
func (s *FakeScheduler) FireStale() {
	s.mu.Lock()
	var stale []func()
	for _, e := range s.entries {
		if e.stopped {
			stale = append(stale, e.f)
		}
	}
	s.mu.Unlock()
	for _, f := range stale {
		f()
	}
}
