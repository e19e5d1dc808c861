package client

import "time"

// SocketConfig holds the tunables of a Socket and its transport.
type SocketConfig struct {
	// Reconnect

	// BaseDelay is multiplied by the retry count to get the delay before
	// the next connection attempt.
	// Default: 1 second.
	BaseDelay time.Duration

	// MaxDelay caps the reconnect delay. Zero leaves it uncapped.
	// Default: 0.
	MaxDelay time.Duration

	// Events

	// DebounceDelay is the window for coalescing input events.
	// Default: 250 milliseconds.
	DebounceDelay time.Duration

	// Transport

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HandshakeTimeout is the maximum time for the connection handshake.
	// Default: 10 seconds.
	HandshakeTimeout time.Duration

	// MaxMessageSize is the maximum size of an incoming message.
	// Default: 1MB.
	MaxMessageSize int64
}

// DefaultSocketConfig returns a SocketConfig with sensible defaults.
func DefaultSocketConfig() *SocketConfig {
	return &SocketConfig{
		BaseDelay:        time.Second,
		MaxDelay:         0,
		DebounceDelay:    250 * time.Millisecond,
		WriteTimeout:     10 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		MaxMessageSize:   1 << 20,
	}
}

// Clone returns a copy of the config.
func (c *SocketConfig) Clone() *SocketConfig {
	clone := *c
	return &clone
}

// ReconnectDelay returns the delay before attempt number retry:
// retry × BaseDelay, capped by MaxDelay when it is set.
func (c *SocketConfig) ReconnectDelay(retry int) time.Duration {
	if retry < 1 {
		retry = 1
	}
	d := time.Duration(retry) * c.BaseDelay
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}
