package keypad

import (
	"sync"
	"time"
)

// Timer is a cancellable scheduled callback. Stop reports whether the call
// prevented the callback from running.
type Timer interface {
	Stop() bool
}

// Scheduler supplies time to the engine. Callbacks run on a goroutine owned
// by the scheduler.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

// RealScheduler uses the runtime timer heap.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (RealScheduler) Now() time.Time {
	return time.Now()
}

// FakeScheduler is a manually advanced clock. Due callbacks run on the
// goroutine calling Advance, in deadline order.
type FakeScheduler struct {
	mu     sync.Mutex
	now    time.Time
	seq    uint64
	timers []*fakeTimer
}

type fakeTimer struct {
	s       *FakeScheduler
	when    time.Time
	seq     uint64
	f       func()
	stopped bool
}

// NewFakeScheduler returns a fake clock starting at start.
func NewFakeScheduler(start time.Time) *FakeScheduler {
	return &FakeScheduler{now: start}
}

func (s *FakeScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *FakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &fakeTimer{s: s, when: s.now.Add(d), seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	for i, other := range t.s.timers {
		if other == t {
			t.s.timers = append(t.s.timers[:i], t.s.timers[i+1:]...)
			return true
		}
	}
	return false
}

// Advance moves the clock forward by d, firing every timer that falls due,
// including timers scheduled by callbacks during the advance.
func (s *FakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := -1
		for i, t := range s.timers {
			if t.when.After(target) {
				continue
			}
			if next < 0 || t.when.Before(s.timers[next].when) ||
				(t.when.Equal(s.timers[next].when) && t.seq < s.timers[next].seq) {
				next = i
			}
		}
		if next < 0 {
			s.now = target
			s.mu.Unlock()
			return
		}
		t := s.timers[next]
		s.timers = append(s.timers[:next], s.timers[next+1:]...)
		t.stopped = true
		if t.when.After(s.now) {
			s.now = t.when
		}
		s.mu.Unlock()

		t.f()
	}
}

// Pending returns the number of timers waiting to fire.
func (s *FakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
