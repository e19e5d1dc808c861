package client

// Transport carries whole text messages to and from one server endpoint.
type Transport interface {
	// Connect starts a connection attempt and returns at once. The outcome
	// is reported through h: OnOpen once connected, then OnMessage for each
	// message and finally OnClose. A failed attempt reports only OnClose.
	Connect(url string, h TransportHandler)

	// Send writes one message. It fails if the connection is not open.
	Send(data []byte) error

	// Close closes the current connection, if any.
	Close() error
}

// TransportHandler receives transport events. Implementations may be
// called from any goroutine.
type TransportHandler interface {
	OnOpen()
	OnMessage(data []byte)
	OnClose(err error)
}

// connHandler routes the events of one connection attempt back to the
// socket's loop. Events from superseded attempts are ignored.
type connHandler struct {
	socket  *Socket
	attempt uint64
}

func (h *connHandler) OnOpen() {
	h.socket.loop.Post(func() {
		if h.current() {
			h.socket.handleOpen()
		}
	})
}

func (h *connHandler) OnMessage(data []byte) {
	h.socket.loop.Post(func() {
		if h.current() {
			h.socket.handleMessage(data)
		}
	})
}

func (h *connHandler) OnClose(err error) {
	h.socket.loop.Post(func() {
		if h.current() {
			h.socket.handleClose(err)
		}
	})
}

func (h *connHandler) current() bool {
	return h.attempt == h.socket.attempt
}
