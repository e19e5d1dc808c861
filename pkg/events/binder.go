package events

import (
	"errors"
	"time"

	"github.com/vango-dev/whistle/internal/clock"
	"github.com/vango-dev/whistle/pkg/dom"
	"github.com/vango-dev/whistle/pkg/protocol"
)

var (
	// ErrEmptyEvent is returned for a descriptor without an event name.
	ErrEmptyEvent = errors.New("events: empty event name")

	// ErrNilNode is returned when a node event is attached to nothing.
	ErrNilNode = errors.New("events: nil node")
)

// FireFunc receives the value derived from an event.
type FireFunc func(arg any)

// Binder attaches handlers on one surface.
type Binder struct {
	surface dom.Surface
	clock   clock.Clock
	post    func(func())
	delay   time.Duration
}

// Option configures a Binder.
type Option func(*Binder)

// WithClock sets the clock used for debouncing.
func WithClock(c clock.Clock) Option {
	return func(b *Binder) { b.clock = c }
}

// WithPost sets how debounce expiries are handed back to the caller's
// goroutine.
func WithPost(post func(func())) Option {
	return func(b *Binder) { b.post = post }
}

// WithDebounceDelay sets the input debounce window.
func WithDebounceDelay(d time.Duration) Option {
	return func(b *Binder) { b.delay = d }
}

// NewBinder returns a Binder for surface.
func NewBinder(surface dom.Surface, opts ...Option) *Binder {
	b := &Binder{
		surface: surface,
		clock:   clock.Real(),
		delay:   DefaultDebounceDelay,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach binds d on node and returns the function that undoes exactly this
// binding. Calling detach more than once is safe.
func (b *Binder) Attach(node dom.Node, d protocol.HandlerDescriptor, onFire FireFunc) (detach func(), err error) {
	if d.Event == "" {
		return nil, ErrEmptyEvent
	}
	if d.Event == protocol.EventHistory {
		return b.attachHistory(onFire), nil
	}
	if node == nil {
		return nil, ErrNilNode
	}
	if d.Event == protocol.EventInput {
		return b.attachInput(node, d, onFire), nil
	}
	return b.attachDirect(node, d, onFire), nil
}

func (b *Binder) attachHistory(onFire FireFunc) func() {
	id := b.surface.AddHistoryListener(func(state any) {
		onFire(HistoryURI(state, b.surface.Location()))
	})
	return once(func() {
		b.surface.RemoveHistoryListener(id)
	})
}

func (b *Binder) attachInput(node dom.Node, d protocol.HandlerDescriptor, onFire FireFunc) func() {
	deb := NewDebouncer(b.clock, b.delay, b.post, onFire)

	inputID := b.surface.AddEventListener(node, protocol.EventInput, func(e *dom.Event) {
		if d.PreventDefault {
			e.PreventDefault()
		}
		deb.Trigger(Value(node, e.Target, e.Type))
	})
	changeID := b.surface.AddEventListener(node, protocol.EventChange, func(e *dom.Event) {
		if d.PreventDefault {
			e.PreventDefault()
		}
		deb.Flush(Value(node, e.Target, e.Type))
	})

	return once(func() {
		b.surface.RemoveEventListener(node, protocol.EventInput, inputID)
		b.surface.RemoveEventListener(node, protocol.EventChange, changeID)
		deb.Stop()
	})
}

func (b *Binder) attachDirect(node dom.Node, d protocol.HandlerDescriptor, onFire FireFunc) func() {
	id := b.surface.AddEventListener(node, d.Event, func(e *dom.Event) {
		if d.PreventDefault {
			e.PreventDefault()
		}
		onFire(Value(node, e.Target, e.Type))
	})
	return once(func() {
		b.surface.RemoveEventListener(node, d.Event, id)
	})
}

// HistoryURI extracts the navigation target from a history state: the
// "uri" field of a map, the state itself when it is a string, or fallback.
func HistoryURI(state any, fallback string) string {
	switch s := state.(type) {
	case string:
		if s != "" {
			return s
		}
	case map[string]any:
		if uri, ok := s["uri"].(string); ok && uri != "" {
			return uri
		}
	}
	return fallback
}

func once(f func()) func() {
	done := false
	return func() {
		if done {
			return
		}
		done = true
		f()
	}
}
