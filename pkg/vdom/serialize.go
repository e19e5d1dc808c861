package vdom

import (
	"github.com/vango-dev/whistle/pkg/dom"
)

// DocumentTag is the tag given to a serialized document root.
const DocumentTag = "#document"

// Serialize captures the live tree under n. Placeholders become program
// references and private attributes are dropped. The string "true" becomes
// a bool. Comments and doctypes are skipped; Serialize returns nil for them.
func Serialize(n dom.Node) *Node {
	if n == nil {
		return nil
	}
	if n.Type() == dom.ElementNode {
		if name, params, ok := PlaceholderInfo(n); ok {
			return ProgramRef(name, params)
		}
	}
	return serializeNode(n)
}

// SerializeRoot serializes the root of a program. The root is always an
// element, even when it is a placeholder for the program itself.
func SerializeRoot(n dom.Node) *Node {
	if n == nil {
		return nil
	}
	return serializeNode(n)
}

func serializeNode(n dom.Node) *Node {
	switch n.Type() {
	case dom.TextNode:
		return Text(n.Data())
	case dom.ElementNode:
		return &Node{
			Kind:     KindElement,
			Tag:      n.TagName(),
			Attrs:    serializeAttrs(n),
			Children: serializeChildren(n),
		}
	case dom.DocumentNode:
		return &Node{
			Kind:     KindElement,
			Tag:      DocumentTag,
			Attrs:    Attrs{},
			Children: serializeChildren(n),
		}
	default:
		return nil
	}
}

func serializeAttrs(n dom.Node) Attrs {
	attrs := Attrs{}
	for _, a := range n.Attributes() {
		if IsPrivate(a.Key) {
			continue
		}
		if a.Value == "true" {
			attrs[a.Key] = true
			continue
		}
		attrs[a.Key] = a.Value
	}

	// Live form state wins over the markup it was parsed from.
	if v, ok := n.Property(dom.PropValue); ok {
		attrs[dom.AttrValue] = dom.FormatValue(v)
	}
	for _, key := range []string{dom.AttrChecked, dom.AttrRequired} {
		v, ok := n.Property(key)
		if !ok {
			continue
		}
		if !dom.Truthy(v) {
			delete(attrs, key)
		} else if _, has := attrs[key]; !has {
			attrs[key] = true
		}
	}
	return attrs
}

func serializeChildren(n dom.Node) []*Node {
	children := []*Node{}
	for _, c := range n.ChildNodes() {
		if s := Serialize(c); s != nil {
			children = append(children, s)
		}
	}
	return children
}
