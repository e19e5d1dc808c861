package memdom

import (
	"github.com/vango-dev/whistle/pkg/dom"
)

// Node is a node of a Document.
type Node struct {
	typ      dom.NodeType
	tag      string
	data     string
	attrs    []dom.Attribute
	props    map[string]any
	parent   *Node
	children []*Node

	listeners []listener
}

type listener struct {
	id    dom.ListenerID
	event string
	fn    dom.Listener
}

var _ dom.Node = (*Node)(nil)

// Type returns the node type.
func (n *Node) Type() dom.NodeType { return n.typ }

// TagName returns the lowercase tag of an element.
func (n *Node) TagName() string { return n.tag }

// Data returns the content of a text, comment or doctype node.
func (n *Node) Data() string { return n.data }

// Attributes returns a copy of the element's attributes.
func (n *Node) Attributes() []dom.Attribute {
	out := make([]dom.Attribute, len(n.attrs))
	copy(out, n.attrs)
	return out
}

// Attribute returns the value of the attribute key.
func (n *Node) Attribute(key string) (string, bool) {
	for _, a := range n.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Property returns a live property.
func (n *Node) Property(name string) (any, bool) {
	v, ok := n.props[name]
	return v, ok
}

// Parent returns the parent node, or nil for a detached node or the
// document root.
func (n *Node) Parent() dom.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// ChildNodes returns the children of n.
func (n *Node) ChildNodes() []dom.Node {
	out := make([]dom.Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

// Children returns the children of n as concrete nodes.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// ListenerCount returns the number of listeners registered for event.
// An empty event counts every listener.
func (n *Node) ListenerCount(event string) int {
	count := 0
	for _, l := range n.listeners {
		if event == "" || l.event == event {
			count++
		}
	}
	return count
}

func (n *Node) setAttr(key, value string) {
	for i := range n.attrs {
		if n.attrs[i].Key == key {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, dom.Attribute{Key: key, Value: value})
}

func (n *Node) removeAttr(key string) {
	for i, a := range n.attrs {
		if a.Key == key {
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			return
		}
	}
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

func (n *Node) detach() {
	if n.parent == nil {
		return
	}
	p := n.parent
	if i := p.indexOf(n); i >= 0 {
		p.children = append(p.children[:i], p.children[i+1:]...)
	}
	n.parent = nil
}
