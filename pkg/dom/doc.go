// Package dom defines the capability interface the client uses to reach the
// live UI tree, together with the pure helpers that operate on it.
//
// The tree is owned by someone else (a browser, a test double, the headless
// memdom package). The client never holds more than Node handles and asks a
// Surface to create and mutate nodes, so the patch engine can be exercised
// against any implementation.
//
// # Addressing
//
// A Path is a sequence of child indexes from a program's root. Resolve walks
// it one level at a time through ChildNodes. When the root is a document, a
// leading doctype is skipped at the top level so paths are the same whether
// a program is mounted on an element or on a whole document.
//
// # Attributes
//
// SetAttribute implements the attribute-setting rule shared by the tree
// builder and the patch executor: value, checked and required are written
// as live properties, scroll_top scrolls, "on" is never written, everything
// else becomes a plain string attribute.
package dom
