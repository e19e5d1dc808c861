package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/whistle/pkg/client"
)

// ErrNotOpen is returned by Send while no connection is open.
var ErrNotOpen = errors.New("transport: connection not open")

// Options configures a WebSocket transport.
type Options struct {
	// HandshakeTimeout bounds the opening handshake.
	// Default: 10 seconds.
	HandshakeTimeout time.Duration

	// WriteTimeout bounds each message write. Zero disables the deadline.
	WriteTimeout time.Duration

	// MaxMessageSize is the read limit per message. Zero disables it.
	MaxMessageSize int64

	// Header is sent with the handshake request.
	Header http.Header

	// Logger is the base logger. Default: slog.Default().
	Logger *slog.Logger
}

// OptionsFromConfig takes the transport settings of a socket config.
func OptionsFromConfig(cfg *client.SocketConfig) Options {
	return Options{
		HandshakeTimeout: cfg.HandshakeTimeout,
		WriteTimeout:     cfg.WriteTimeout,
		MaxMessageSize:   cfg.MaxMessageSize,
	}
}

// WebSocket is a client.Transport over gorilla/websocket. Messages are
// sent as text frames.
type WebSocket struct {
	opts   Options
	dialer *websocket.Dialer
	logger *slog.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	gen    uint64
}

var _ client.Transport = (*WebSocket)(nil)

// New returns an idle WebSocket transport.
func New(opts Options) *WebSocket {
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = 10 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocket{
		opts: opts,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: opts.HandshakeTimeout,
		},
		logger: logger,
	}
}

// Connect dials url in the background. An attempt still in flight is
// abandoned.
func (w *WebSocket) Connect(url string, h client.TransportHandler) {
	ctx, cancel := context.WithCancel(context.Background())

	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
	}
	w.cancel = cancel
	w.gen++
	gen := w.gen
	w.mu.Unlock()

	go w.run(ctx, gen, url, h)
}

func (w *WebSocket) run(ctx context.Context, gen uint64, url string, h client.TransportHandler) {
	conn, resp, err := w.dialer.DialContext(ctx, url, w.opts.Header)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("transport: dial %s: %w (status %d)", url, err, resp.StatusCode)
		} else {
			err = fmt.Errorf("transport: dial %s: %w", url, err)
		}
		h.OnClose(err)
		return
	}
	if w.opts.MaxMessageSize > 0 {
		conn.SetReadLimit(w.opts.MaxMessageSize)
	}

	w.mu.Lock()
	if w.gen != gen {
		w.mu.Unlock()
		conn.Close()
		h.OnClose(ErrNotOpen)
		return
	}
	w.conn = conn
	w.mu.Unlock()

	h.OnOpen()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			w.mu.Lock()
			if w.conn == conn {
				w.conn = nil
			}
			w.mu.Unlock()
			conn.Close()

			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				err = nil
			} else if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure) {
				w.logger.Debug("read error", "url", url, "error", err)
			}
			h.OnClose(err)
			return
		}
		h.OnMessage(msg)
	}
}

// Send writes data as one text message.
func (w *WebSocket) Send(data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return ErrNotOpen
	}
	if w.opts.WriteTimeout > 0 {
		w.conn.SetWriteDeadline(time.Now().Add(w.opts.WriteTimeout))
	}
	return w.conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a normal close frame and closes the connection. The handler
// of the closed connection still receives OnClose.
func (w *WebSocket) Close() error {
	w.mu.Lock()
	conn := w.conn
	w.conn = nil
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.gen++
	w.mu.Unlock()

	if conn == nil {
		return nil
	}
	conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return conn.Close()
}
