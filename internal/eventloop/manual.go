package eventloop

import (
	"sync"
	"time"
)

// Manual is a Scheduler for tests. Callbacks only run when the owning
// goroutine calls RunPending or WaitFor, and timers only fire when told to,
// so the caller controls both ordering and time.
type Manual struct {
	mu     sync.Mutex
	posted []func()
	timers []*ManualTimer
	notify chan struct{}
}

// ManualTimer is a pending AfterFunc registered with a Manual scheduler.
type ManualTimer struct {
	Delay time.Duration

	m       *Manual
	fn      func()
	stopped bool
	fired   bool
}

// NewManual creates an empty Manual scheduler.
func NewManual() *Manual {
	return &Manual{notify: make(chan struct{}, 1)}
}

// Post queues fn. Safe to call from any goroutine.
func (m *Manual) Post(fn func()) {
	m.mu.Lock()
	m.posted = append(m.posted, fn)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// AfterFunc records a timer; it runs only after Fire is called.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	t := &ManualTimer{Delay: d, m: m, fn: fn}
	m.mu.Lock()
	m.timers = append(m.timers, t)
	m.mu.Unlock()
	return t
}

// Stop cancels the timer.
func (t *ManualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Fire posts the timer's callback as if its delay had elapsed.
func (t *ManualTimer) Fire() {
	t.m.mu.Lock()
	if t.stopped || t.fired {
		t.m.mu.Unlock()
		return
	}
	t.fired = true
	t.m.mu.Unlock()
	t.m.Post(t.fn)
}

// Pending returns timers that have neither fired nor been stopped, oldest first.
func (m *Manual) Pending() []*ManualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*ManualTimer
	for _, t := range m.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// RunPending executes queued callbacks, including ones queued while running,
// until the queue is empty. It returns the number of callbacks run.
func (m *Manual) RunPending() int {
	n := 0
	for {
		m.mu.Lock()
		if len(m.posted) == 0 {
			m.mu.Unlock()
			return n
		}
		fn := m.posted[0]
		m.posted = m.posted[1:]
		m.mu.Unlock()

		fn()
		n++
	}
}

// WaitFor runs callbacks as they arrive until cond returns true or the
// timeout elapses. It reports whether cond was satisfied.
func (m *Manual) WaitFor(timeout time.Duration, cond func() bool) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		m.RunPending()
		if cond() {
			return true
		}
		select {
		case <-m.notify:
		case <-deadline.C:
			m.RunPending()
			return cond()
		}
	}
}

var _ Scheduler = (*Manual)(nil)
