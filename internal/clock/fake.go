package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manually advanced Clock. Timers fire inside Advance, in
// chronological order, with ties broken by scheduling order.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *Fake
	at      time.Time
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

// NewFake creates a fake clock starting at the given instant.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the current fake time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// AfterFunc registers fn to fire when the clock advances past d.
func (f *Fake) AfterFunc(d time.Duration, fn func()) Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	t := &fakeTimer{clock: f, at: f.now.Add(d), seq: f.seq, fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every due timer in order.
// Callbacks run without the clock lock held, so they may schedule or stop
// other timers.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)

	for {
		next := f.nextDueLocked(target)
		if next == nil {
			break
		}
		// Advance to the timer's instant before firing so callbacks
		// observe a consistent Now.
		f.now = next.at
		next.fired = true
		f.mu.Unlock()
		next.fn()
		f.mu.Lock()
	}

	f.now = target
	f.mu.Unlock()
}

// nextDueLocked returns the earliest unfired, unstopped timer at or before
// target, or nil.
func (f *Fake) nextDueLocked(target time.Time) *fakeTimer {
	pending := f.timers[:0]
	for _, t := range f.timers {
		if !t.fired && !t.stopped {
			pending = append(pending, t)
		}
	}
	f.timers = pending

	sort.SliceStable(f.timers, func(i, j int) bool {
		if f.timers[i].at.Equal(f.timers[j].at) {
			return f.timers[i].seq < f.timers[j].seq
		}
		return f.timers[i].at.Before(f.timers[j].at)
	})

	for _, t := range f.timers {
		if !t.at.After(target) {
			return t
		}
	}
	return nil
}

// Pending returns the number of timers that have not fired or been stopped.
func (f *Fake) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, t := range f.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

// Stop cancels the timer if it has not fired yet.
func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}
