// Package vdom describes UI trees as plain values and converts between
// them and a live dom tree.
//
// A Node is the serialized form exchanged with the server: text, an element
// with attributes and ordered children, or a reference to a nested program.
// Build turns a Node into live nodes on a dom.Surface; Serialize captures a
// live tree back into a Node, which is what a program sends when it joins.
//
// # Tree literal
//
// On the wire a Node is a three-element JSON array:
//
//	["text", "", "hello"]              text
//	["div", {"class": "x"}, [...]]     element
//	["program", "modal", {"id": 1}]    nested program
package vdom
