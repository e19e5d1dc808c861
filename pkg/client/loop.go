package client

import (
	"context"
	"sync"
)

// Scheduler runs posted closures one at a time, in order.
type Scheduler interface {
	Post(f func())
}

// DefaultLoopBuffer is the number of closures a Loop queues before Post
// blocks.
const DefaultLoopBuffer = 256

// Loop is a single-goroutine Scheduler.
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop returns a Loop. Closures run once Run is called.
func NewLoop(buffer int) *Loop {
	if buffer <= 0 {
		buffer = DefaultLoopBuffer
	}
	return &Loop{
		queue: make(chan func(), buffer),
		done:  make(chan struct{}),
	}
}

// Post queues f. It blocks while the queue is full and drops f once the
// loop has stopped.
func (l *Loop) Post(f func()) {
	select {
	case <-l.done:
		return
	default:
	}
	select {
	case l.queue <- f:
	case <-l.done:
	}
}

// Run executes posted closures until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-l.queue:
			f()
		}
	}
}

// Do runs f on the loop and waits for it to return.
func (l *Loop) Do(ctx context.Context, f func()) error {
	finished := make(chan struct{})
	job := func() {
		defer close(finished)
		f()
	}

	select {
	case l.queue <- job:
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} { return l.done }

func (l *Loop) stop() {
	l.once.Do(func() { close(l.done) })
}
