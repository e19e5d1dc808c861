// Package transport provides the WebSocket implementation of
// client.Transport.
//
// Each Connect dials in its own goroutine and then reads until the
// connection ends. Handler callbacks arrive on that goroutine; the socket
// hands them to its loop.
//
//	t := transport.New(transport.OptionsFromConfig(cfg))
//	s := client.NewSocket("ws://localhost:4000/ws", t, doc, client.SocketOptions{Config: cfg})
package transport
