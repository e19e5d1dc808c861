// Package events attaches server-requested event handlers to live nodes.
//
// A Binder maps a protocol.HandlerDescriptor to listeners on a dom.Surface
// and returns the function that removes exactly those listeners. Handlers
// never see the surface's event object: the Binder derives the value the
// server expects (a control's value, or every named control of a form) and
// passes only that.
//
// Two event names are special. "history" binds to navigation-history
// changes instead of the node. "input" is debounced: input events coalesce
// and fire once the delay has passed since the last one, while a "change"
// event fires at once and cancels the pending call.
package events
