// Package wtest provides test doubles for code built on the whistle client:
// a scriptable transport, a synchronous scheduler and a harness that wires
// both to a socket over an in-memory document.
package wtest
