// Package memdom is an in-memory dom.Surface.
//
// It parses HTML with golang.org/x/net/html, keeps the tree, live
// properties, event listeners and a navigation history in memory, and can
// render the tree back to HTML. It is what the whistle CLI and the tests use
// in place of a browser.
//
// A Document is not safe for concurrent use. Callers confine it to the
// goroutine that owns the client loop.
package memdom
