// Package eventloop runs the client's network-side state on a single goroutine.
//
// Every piece of connection state (the current socket, retry counters, the
// discovered address) is only touched from callbacks executed by a Loop, so
// none of it needs locking. Delayed work is scheduled with AfterFunc, which
// re-enters the loop when the timer fires instead of running on the timer's
// own goroutine.
package eventloop

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

const queueSize = 256

// Timer is a handle to a pending AfterFunc callback.
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback has already been queued or run.
	Stop() bool
}

// Scheduler runs callbacks on a single logical thread.
type Scheduler interface {
	Post(fn func())
	AfterFunc(d time.Duration, fn func()) Timer
}

// Loop is the clockwork-backed Scheduler used in production.
type Loop struct {
	clock clockwork.Clock
	queue chan func()

	closeOnce sync.Once
	done      chan struct{}
}

// New creates a Loop driven by the given clock.
func New(clock clockwork.Clock) *Loop {
	return &Loop{
		clock: clock,
		queue: make(chan func(), queueSize),
		done:  make(chan struct{}),
	}
}

// Clock returns the clock the loop schedules against.
func (l *Loop) Clock() clockwork.Clock {
	return l.clock
}

// Run executes posted callbacks in FIFO order until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer l.closeOnce.Do(func() { close(l.done) })

	for {
		select {
		case fn := <-l.queue:
			l.invoke(fn)
		case <-ctx.Done():
			return
		}
	}
}

// Post queues fn for execution on the loop. Posting after the loop has
// stopped is a no-op.
func (l *Loop) Post(fn func()) {
	select {
	case l.queue <- fn:
	case <-l.done:
	}
}

// AfterFunc runs fn on the loop once d has elapsed on the loop's clock.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	return l.clock.AfterFunc(d, func() {
		l.Post(fn)
	})
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("eventloop.callback_panic",
				"component", "eventloop",
				"panic", r,
			)
		}
	}()
	fn()
}

var _ Scheduler = (*Loop)(nil)
