package wtest

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/vango-dev/whistle/pkg/client"
)

// ErrTransportClosed is returned by FakeTransport.Send while not open.
var ErrTransportClosed = errors.New("wtest: transport closed")

// FakeTransport is a client.Transport driven by the test. Connect only
// records the attempt; the test decides its outcome with Open or Fail.
type FakeTransport struct {
	mu       sync.Mutex
	handler  client.TransportHandler
	url      string
	open     bool
	connects int
	closes   int
	sent     []json.RawMessage

	// SendErr, when set, is returned by Send instead of recording.
	SendErr error
}

var _ client.Transport = (*FakeTransport)(nil)

// NewFakeTransport returns an idle FakeTransport.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{}
}

// Connect records a connection attempt.
func (t *FakeTransport) Connect(url string, h client.TransportHandler) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.url = url
	t.handler = h
	t.connects++
}

// Send records data.
func (t *FakeTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.SendErr != nil {
		return t.SendErr
	}
	if !t.open {
		return ErrTransportClosed
	}
	t.sent = append(t.sent, append(json.RawMessage(nil), data...))
	return nil
}

// Close closes the connection and reports it to the handler.
func (t *FakeTransport) Close() error {
	t.mu.Lock()
	t.closes++
	wasOpen := t.open
	t.open = false
	h := t.handler
	t.mu.Unlock()

	if wasOpen && h != nil {
		h.OnClose(nil)
	}
	return nil
}

// Open completes the pending connection attempt.
func (t *FakeTransport) Open() {
	t.mu.Lock()
	t.open = true
	h := t.handler
	t.mu.Unlock()
	h.OnOpen()
}

// Fail ends the pending connection attempt without opening.
func (t *FakeTransport) Fail(err error) {
	t.mu.Lock()
	h := t.handler
	t.mu.Unlock()
	h.OnClose(err)
}

// Drop closes an open connection from the server side.
func (t *FakeTransport) Drop(err error) {
	t.mu.Lock()
	t.open = false
	h := t.handler
	t.mu.Unlock()
	h.OnClose(err)
}

// Deliver sends a message to the client. Strings and byte slices are sent
// as is; anything else is JSON-encoded.
func (t *FakeTransport) Deliver(v any) error {
	var data []byte
	switch m := v.(type) {
	case string:
		data = []byte(m)
	case []byte:
		data = m
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			return fmt.Errorf("wtest: encode: %w", err)
		}
	}
	t.mu.Lock()
	h := t.handler
	t.mu.Unlock()
	h.OnMessage(data)
	return nil
}

// IsOpen reports whether the connection is open.
func (t *FakeTransport) IsOpen() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.open
}

// URL returns the URL of the last Connect.
func (t *FakeTransport) URL() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.url
}

// Connects returns the number of connection attempts.
func (t *FakeTransport) Connects() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connects
}

// Closes returns the number of Close calls.
func (t *FakeTransport) Closes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closes
}

// Sent returns every message sent so far.
func (t *FakeTransport) Sent() []json.RawMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]json.RawMessage, len(t.sent))
	copy(out, t.sent)
	return out
}

// Messages decodes every sent message into a map.
func (t *FakeTransport) Messages() []map[string]any {
	var out []map[string]any
	for _, raw := range t.Sent() {
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err == nil {
			out = append(out, m)
		}
	}
	return out
}

// MessagesOfType returns the sent messages whose "type" is typ.
func (t *FakeTransport) MessagesOfType(typ string) []map[string]any {
	var out []map[string]any
	for _, m := range t.Messages() {
		if m["type"] == typ {
			out = append(out, m)
		}
	}
	return out
}

// ClearSent forgets the recorded messages.
func (t *FakeTransport) ClearSent() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = nil
}
