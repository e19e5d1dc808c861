// Package client is the whistle session engine.
//
// A Socket owns one transport to a whistle server and multiplexes any number
// of Programs over it. Each Program owns a subtree of a dom.Surface: it
// joins the server with a snapshot of that subtree, applies the patch
// batches the server sends back and forwards user events bound by those
// patches. When the transport drops, the Socket reconnects with linear
// backoff and every Program it still tracks joins again from scratch.
//
// # Threading
//
// All protocol state is confined to one goroutine. Transport callbacks,
// timers and debounced input only Post closures to a Scheduler, normally a
// Loop. Socket and Program methods must be called from that goroutine; use
// Loop.Do from anywhere else.
//
// # Patch application
//
// The patches of one render message are applied in array order inside a
// single closure, so each path is resolved against the tree left by the
// patches before it. Nested programs discovered during the batch are
// mounted only after its last patch.
package client
