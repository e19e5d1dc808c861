package events

import (
	"time"

	"github.com/vango-dev/whistle/internal/clock"
)

// DefaultDebounceDelay is the input debounce window.
const DefaultDebounceDelay = 250 * time.Millisecond

// Debouncer coalesces rapid calls into one trailing call.
//
// Timer expiry is handed to post so the trailing call runs on the same
// goroutine as Trigger and Flush. A generation counter discards expiries
// that were superseded after the timer had already fired.
type Debouncer struct {
	clock clock.Clock
	post  func(func())
	delay time.Duration
	fn    func(arg any)

	timer   *clock.Timer
	gen     uint64
	pending bool
	arg     any
	stopped bool
}

// NewDebouncer returns a Debouncer calling fn. A nil post runs expiries on
// the timer's goroutine.
func NewDebouncer(c clock.Clock, delay time.Duration, post func(func()), fn func(arg any)) *Debouncer {
	if post == nil {
		post = func(f func()) { f() }
	}
	return &Debouncer{clock: c, post: post, delay: delay, fn: fn}
}

// Trigger records arg and restarts the window. fn runs with the latest arg
// once delay passes without another Trigger.
func (d *Debouncer) Trigger(arg any) {
	if d.stopped {
		return
	}
	d.cancel()
	d.pending = true
	d.arg = arg
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		d.post(func() { d.expire(gen) })
	})
}

// Flush cancels any pending call and runs fn with arg now.
func (d *Debouncer) Flush(arg any) {
	if d.stopped {
		return
	}
	d.cancel()
	d.fn(arg)
}

// Stop cancels any pending call. Later Trigger and Flush calls do nothing.
func (d *Debouncer) Stop() {
	d.cancel()
	d.stopped = true
}

// Pending reports whether a trailing call is scheduled.
func (d *Debouncer) Pending() bool { return d.pending }

func (d *Debouncer) cancel() {
	d.timer.Stop()
	d.timer = nil
	d.gen++
	d.pending = false
	d.arg = nil
}

func (d *Debouncer) expire(gen uint64) {
	if d.stopped || gen != d.gen || !d.pending {
		return
	}
	arg := d.arg
	d.pending = false
	d.arg = nil
	d.timer = nil
	d.fn(arg)
}
