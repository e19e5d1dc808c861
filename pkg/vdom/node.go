package vdom

import (
	"reflect"
	"sort"
)

// Kind is the node type discriminator.
type Kind uint8

const (
	KindText    Kind = iota + 1 // Plain text
	KindElement                 // Element with attributes and children
	KindProgram                 // Mount point of a nested program
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "Text"
	case KindElement:
		return "Element"
	case KindProgram:
		return "Program"
	default:
		return "Unknown"
	}
}

// Attrs maps attribute names to values. Values are strings or bools once
// serialized from a live tree; the server may also send numbers and the
// "on" event-name list.
type Attrs map[string]any

// Keys returns the attribute names in sorted order.
func (a Attrs) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Node is a serialized UI tree node.
type Node struct {
	Kind     Kind
	Tag      string         // KindElement
	Attrs    Attrs          // KindElement
	Children []*Node        // KindElement
	Text     string         // KindText
	Program  string         // KindProgram
	Params   map[string]any // KindProgram
}

// Text returns a text node.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s}
}

// Element returns an element node.
func Element(tag string, attrs Attrs, children ...*Node) *Node {
	return &Node{Kind: KindElement, Tag: tag, Attrs: attrs, Children: children}
}

// ProgramRef returns a nested program mount point.
func ProgramRef(name string, params map[string]any) *Node {
	return &Node{Kind: KindProgram, Program: name, Params: params}
}

// Equal reports whether a and b describe the same tree. Nil and empty
// attribute maps, children and params are equal.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindText:
		return a.Text == b.Text
	case KindProgram:
		return a.Program == b.Program && mapsEqual(a.Params, b.Params)
	case KindElement:
		if a.Tag != b.Tag || !mapsEqual(a.Attrs, b.Attrs) || len(a.Children) != len(b.Children) {
			return false
		}
		for i := range a.Children {
			if !Equal(a.Children[i], b.Children[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func mapsEqual[M ~map[string]any](a, b M) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || !reflect.DeepEqual(av, bv) {
			return false
		}
	}
	return true
}
