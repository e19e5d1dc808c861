package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/whistle/internal/clock"
	werrors "github.com/vango-dev/whistle/internal/errors"
	"github.com/vango-dev/whistle/pkg/dom"
	"github.com/vango-dev/whistle/pkg/events"
	"github.com/vango-dev/whistle/pkg/protocol"
)

// Signal is a connection state change broadcast to listeners.
type Signal uint8

const (
	SignalConnect Signal = iota + 1
	SignalDisconnect
)

// String returns the string representation of the Signal.
func (s Signal) String() string {
	switch s {
	case SignalConnect:
		return "connect"
	case SignalDisconnect:
		return "disconnect"
	default:
		return "unknown"
	}
}

// SocketOptions configures a Socket. Zero values select defaults.
type SocketOptions struct {
	// Config holds delays and limits. Default: DefaultSocketConfig().
	Config *SocketConfig

	// Loop runs all protocol work. Default: a Loop owned by the socket,
	// stopped by Close.
	Loop Scheduler

	// Clock drives reconnect and debounce timers. Default: clock.Real().
	Clock clock.Clock

	// Logger is the base logger. Default: slog.Default().
	Logger *slog.Logger

	// Metrics records client metrics. Default: none.
	Metrics *Metrics

	// TracerProvider supplies the render tracer. Default: the global
	// OpenTelemetry provider.
	TracerProvider trace.TracerProvider
}

// Socket multiplexes programs over one transport.
type Socket struct {
	url       string
	transport Transport
	surface   dom.Surface
	config    *SocketConfig
	loop      Scheduler
	clock     clock.Clock
	logger    *slog.Logger
	metrics   *Metrics
	tracer    trace.Tracer
	binder    *events.Binder
	stopLoop  context.CancelFunc

	open       bool
	connecting bool
	closed     bool
	attempt    uint64
	connID     string
	retryCount int
	retryTimer *clock.Timer

	programs  []*Program
	byID      map[string]*Program
	byRequest map[string]*Program

	listeners    []signalListener
	nextListener int
}

type signalListener struct {
	id int
	fn func(Signal)
}

// NewSocket returns a socket for url. It does not connect until Connect.
func NewSocket(url string, t Transport, surface dom.Surface, opts SocketOptions) *Socket {
	s := &Socket{
		url:        url,
		transport:  t,
		surface:    surface,
		config:     opts.Config,
		loop:       opts.Loop,
		clock:      opts.Clock,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		tracer:     newTracer(opts.TracerProvider),
		retryCount: 1,
		byID:       make(map[string]*Program),
		byRequest:  make(map[string]*Program),
	}
	if s.config == nil {
		s.config = DefaultSocketConfig()
	}
	if s.clock == nil {
		s.clock = clock.Real()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("url", url)
	if s.loop == nil {
		loop := NewLoop(DefaultLoopBuffer)
		ctx, cancel := context.WithCancel(context.Background())
		go loop.Run(ctx)
		s.loop = loop
		s.stopLoop = cancel
	}
	s.binder = events.NewBinder(surface,
		events.WithClock(s.clock),
		events.WithPost(s.loop.Post),
		events.WithDebounceDelay(s.config.DebounceDelay),
	)
	return s
}

// URL returns the endpoint of the socket.
func (s *Socket) URL() string { return s.url }

// IsOpen reports whether the transport is open.
func (s *Socket) IsOpen() bool { return s.open }

// RetryCount returns the current reconnect multiplier.
func (s *Socket) RetryCount() int { return s.retryCount }

// Config returns the socket configuration.
func (s *Socket) Config() *SocketConfig { return s.config }

// Programs returns the tracked programs in mount order.
func (s *Socket) Programs() []*Program {
	out := make([]*Program, len(s.programs))
	copy(out, s.programs)
	return out
}

// Program returns the program with server id, if tracked.
func (s *Socket) Program(id string) (*Program, bool) {
	p, ok := s.byID[id]
	return p, ok
}

// OnSignal registers fn for connect and disconnect signals. The returned
// function unregisters it.
func (s *Socket) OnSignal(fn func(Signal)) func() {
	id := s.nextListener
	s.nextListener++
	s.listeners = append(s.listeners, signalListener{id: id, fn: fn})
	return func() {
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Connect starts connecting. It is a no-op while connected or connecting.
func (s *Socket) Connect() error {
	if s.closed {
		return ErrSocketClosed
	}
	if s.open || s.connecting {
		return nil
	}
	s.dial()
	return nil
}

func (s *Socket) dial() {
	s.attempt++
	s.connID = ulid.Make().String()
	s.connecting = true
	s.logger.Debug("connecting", "conn_id", s.connID, "retry", s.retryCount)
	s.transport.Connect(s.url, &connHandler{socket: s, attempt: s.attempt})
}

func (s *Socket) handleOpen() {
	s.connecting = false
	s.open = true
	s.logger.Info("connected", "conn_id", s.connID)
	s.broadcast(SignalConnect)
	s.retryCount = 1

	for _, p := range s.Programs() {
		if p.state == StateNone {
			p.join()
		}
	}
}

func (s *Socket) handleClose(err error) {
	wasOpen := s.open
	s.open = false
	s.connecting = false
	if s.closed {
		return
	}

	if wasOpen {
		s.logger.Warn("disconnected", "conn_id", s.connID, "error", err)
	} else {
		s.logger.Warn("connection failed", "conn_id", s.connID, "error", err)
	}

	clear(s.byID)
	clear(s.byRequest)
	for _, p := range s.Programs() {
		p.reset()
	}
	s.broadcast(SignalDisconnect)

	s.retryCount++
	s.scheduleReconnect(s.config.ReconnectDelay(s.retryCount))
}

// scheduleReconnect arms the single reconnect timer.
func (s *Socket) scheduleReconnect(delay time.Duration) {
	s.retryTimer.Stop()
	s.metrics.reconnect()
	s.logger.Info("reconnect scheduled", "delay", delay, "retry", s.retryCount)
	s.retryTimer = s.clock.AfterFunc(delay, func() {
		s.loop.Post(func() {
			s.retryTimer = nil
			if !s.closed && !s.open && !s.connecting {
				s.dial()
			}
		})
	})
}

func (s *Socket) handleMessage(data []byte) {
	s.metrics.messageReceived()

	msgs, err := protocol.DecodeInbound(data)
	if err != nil {
		s.logger.Warn("malformed message", "error", werrors.New("W200").WithDetail(err.Error()).Wrap(err))
	}
	for _, m := range msgs {
		s.dispatch(m)
	}
}

func (s *Socket) dispatch(m protocol.Inbound) {
	if m.IsJoinAck() {
		p, ok := s.byRequest[m.RequestID]
		if !ok || p.state != StateJoining {
			s.logger.Debug("stale join ack", "request_id", m.RequestID)
			return
		}
		p.handleJoinAck(m.ProgramID)
		return
	}

	p, ok := s.byID[m.Program]
	if !ok {
		s.logger.Debug("message for unknown program dropped", "program_id", m.Program, "type", m.Type)
		return
	}
	switch m.Type {
	case protocol.TypeRender:
		p.handleRender(m)
	case protocol.TypeMsg:
		p.handleMsg(m)
	default:
		p.logger.Debug("unknown message type", "type", m.Type)
	}
}

// Send marshals v and writes it to the transport.
func (s *Socket) Send(v any) error {
	if !s.open {
		return ErrNotConnected
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("client: encode message: %w", err)
	}
	if err := s.transport.Send(data); err != nil {
		return fmt.Errorf("client: send: %w", err)
	}
	return nil
}

// Mount starts a program on root. The program joins at once when the
// transport is open, otherwise on the next connect.
func (s *Socket) Mount(root dom.Node, name string, params map[string]any, opts ...MountOption) (*Program, error) {
	if s.closed {
		return nil, ErrSocketClosed
	}
	if root == nil || name == "" {
		return nil, ErrInvalidMount
	}

	var cfg mountConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	hooks, err := compileHooks(cfg.hooks)
	if err != nil {
		return nil, err
	}

	p := newProgram(s, nil, root, name, params)
	p.hooks = hooks
	p.onMessage = cfg.onMessage
	s.track(p)
	return p, nil
}

// mountChild starts a nested program on a placeholder of parent.
func (s *Socket) mountChild(parent *Program, root dom.Node, name string, params map[string]any) *Program {
	p := newProgram(s, parent, root, name, params)
	p.hooks = parent.hooks
	p.onMessage = parent.onMessage
	parent.children = append(parent.children, p)
	s.track(p)
	return p
}

func (s *Socket) track(p *Program) {
	s.programs = append(s.programs, p)
	s.metrics.programCreated()
	p.logger.Debug("program mounted")
	if s.open {
		p.join()
	}
}

// removeProgram stops tracking p.
func (s *Socket) removeProgram(p *Program) error {
	for i, tracked := range s.programs {
		if tracked == p {
			s.programs = append(s.programs[:i], s.programs[i+1:]...)
			return nil
		}
	}
	return NewProgramError(p, "remove", ErrUnknownProgram)
}

// Close leaves every program, stops reconnecting and closes the transport.
func (s *Socket) Close() error {
	if s.closed {
		return nil
	}
	for _, p := range s.Programs() {
		if p.parent == nil {
			p.Leave()
		}
	}
	s.closed = true
	s.retryTimer.Stop()
	s.retryTimer = nil
	s.open = false
	s.connecting = false

	err := s.transport.Close()
	if s.stopLoop != nil {
		s.stopLoop()
	}
	return err
}

func (s *Socket) broadcast(sig Signal) {
	listeners := make([]signalListener, len(s.listeners))
	copy(listeners, s.listeners)
	for _, l := range listeners {
		l.fn(sig)
	}
}
