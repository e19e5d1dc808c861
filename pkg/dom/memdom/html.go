package memdom

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/whistle/pkg/dom"
)

// Parse reads an HTML document. Comments are dropped.
func Parse(r io.Reader, location string) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	d := New(location)
	copyChildren(d.root, root)
	return d, nil
}

// ParseString is Parse on a string.
func ParseString(s, location string) (*Document, error) {
	return Parse(strings.NewReader(s), location)
}

func copyChildren(dst *Node, src *html.Node) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		n := convert(c)
		if n == nil {
			continue
		}
		n.parent = dst
		dst.children = append(dst.children, n)
		copyChildren(n, c)
	}
}

func convert(src *html.Node) *Node {
	switch src.Type {
	case html.ElementNode:
		n := &Node{typ: dom.ElementNode, tag: src.Data}
		for _, a := range src.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			n.attrs = append(n.attrs, dom.Attribute{Key: key, Value: a.Val})
		}
		return n
	case html.TextNode:
		return &Node{typ: dom.TextNode, data: src.Data}
	case html.DoctypeNode:
		return &Node{typ: dom.DoctypeNode, data: src.Data}
	default:
		return nil
	}
}

// Render writes n and its subtree as HTML. Live value and checked
// properties are rendered as attributes.
func Render(w io.Writer, n *Node) error {
	return html.Render(w, toHTML(n))
}

// RenderString renders n to a string.
func RenderString(n *Node) string {
	var buf bytes.Buffer
	if err := Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// String renders the whole document.
func (d *Document) String() string {
	return RenderString(d.root)
}

func toHTML(n *Node) *html.Node {
	var out *html.Node
	switch n.typ {
	case dom.DocumentNode:
		out = &html.Node{Type: html.DocumentNode}
	case dom.TextNode:
		return &html.Node{Type: html.TextNode, Data: n.data}
	case dom.CommentNode:
		return &html.Node{Type: html.CommentNode, Data: n.data}
	case dom.DoctypeNode:
		return &html.Node{Type: html.DoctypeNode, Data: n.data}
	default:
		out = &html.Node{Type: html.ElementNode, Data: n.tag}
		out.Attr = renderAttrs(n)
	}
	for _, c := range n.children {
		out.AppendChild(toHTML(c))
	}
	return out
}

func renderAttrs(n *Node) []html.Attribute {
	attrs := make([]html.Attribute, 0, len(n.attrs)+2)
	for _, a := range n.attrs {
		if _, live := n.props[a.Key]; live && (a.Key == dom.PropValue || a.Key == dom.PropChecked) {
			continue
		}
		attrs = append(attrs, html.Attribute{Key: a.Key, Val: a.Value})
	}
	if v, ok := n.props[dom.PropValue]; ok {
		attrs = append(attrs, html.Attribute{Key: "value", Val: dom.FormatValue(v)})
	}
	if v, ok := n.props[dom.PropChecked]; ok && dom.Truthy(v) {
		attrs = append(attrs, html.Attribute{Key: "checked", Val: ""})
	}
	return attrs
}
