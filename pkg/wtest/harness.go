package wtest

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/whistle/internal/clock"
	"github.com/vango-dev/whistle/pkg/client"
	"github.com/vango-dev/whistle/pkg/dom/memdom"
	"github.com/vango-dev/whistle/pkg/protocol"
)

// TestURL is the endpoint used by NewHarness.
const TestURL = "ws://whistle.test/socket"

// Harness is a socket over a FakeTransport, an InlineLoop, a fake clock and
// an in-memory document.
type Harness struct {
	Doc       *memdom.Document
	Transport *FakeTransport
	Clock     *clock.FakeClock
	Loop      *InlineLoop
	Socket    *client.Socket
}

// Option adjusts the socket options of a harness.
type Option func(*client.SocketOptions)

// WithConfig sets the socket config.
func WithConfig(cfg *client.SocketConfig) Option {
	return func(o *client.SocketOptions) { o.Config = cfg }
}

// WithMetrics sets the socket metrics.
func WithMetrics(m *client.Metrics) Option {
	return func(o *client.SocketOptions) { o.Metrics = m }
}

// WithLogger sets the socket logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *client.SocketOptions) { o.Logger = l }
}

// WithTracerProvider sets the provider of the render tracer.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *client.SocketOptions) { o.TracerProvider = tp }
}

// NewHarness parses html and builds a socket that has not connected yet.
func NewHarness(t testing.TB, html string, opts ...Option) *Harness {
	t.Helper()
	doc := ParseHTML(t, html)
	h := &Harness{
		Doc:       doc,
		Transport: NewFakeTransport(),
		Clock:     clock.Fake(time.Unix(0, 0)),
		Loop:      &InlineLoop{},
	}
	so := client.SocketOptions{
		Loop:   h.Loop,
		Clock:  h.Clock,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&so)
	}
	h.Socket = client.NewSocket(TestURL, h.Transport, doc, so)
	return h
}

// Connect connects the socket and opens the transport.
func (h *Harness) Connect(t testing.TB) {
	t.Helper()
	if err := h.Socket.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	h.Transport.Open()
}

// Mount mounts a program on the first node matched by selector.
func (h *Harness) Mount(t testing.TB, selector, name string, params map[string]any, opts ...client.MountOption) *client.Program {
	t.Helper()
	root := h.Doc.Query(selector)
	if root == nil {
		t.Fatalf("no node matches %q", selector)
	}
	p, err := h.Socket.Mount(root, name, params, opts...)
	if err != nil {
		t.Fatalf("Mount(%q) error = %v", name, err)
	}
	return p
}

// LastJoin returns the most recent join sent for program name.
func (h *Harness) LastJoin(t testing.TB, name string) map[string]any {
	t.Helper()
	joins := h.Transport.MessagesOfType(protocol.TypeJoin)
	for i := len(joins) - 1; i >= 0; i-- {
		if joins[i]["program"] == name {
			return joins[i]
		}
	}
	t.Fatalf("no join sent for %q", name)
	return nil
}

// Ack answers the most recent join of program name with programID.
func (h *Harness) Ack(t testing.TB, name, programID string) {
	t.Helper()
	join := h.LastJoin(t, name)
	requestID, _ := join["requestId"].(string)
	h.Deliver(t, protocol.JoinAck{RequestID: requestID, ProgramID: programID})
}

// Render delivers a render message for programID.
func (h *Harness) Render(t testing.TB, programID string, patches ...protocol.Patch) {
	t.Helper()
	h.Deliver(t, protocol.NewRender(programID, patches...))
}

// Deliver sends v to the client.
func (h *Harness) Deliver(t testing.TB, v any) {
	t.Helper()
	if err := h.Transport.Deliver(v); err != nil {
		t.Fatal(err)
	}
}

// ParseHTML parses a document located at "/".
func ParseHTML(t testing.TB, html string) *memdom.Document {
	t.Helper()
	doc, err := memdom.ParseString(html, "/")
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}
