package vdom

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vango-dev/whistle/pkg/dom"
)

// Private attributes never leave the client.
const (
	PrivatePrefix = "__whistle"

	// AttrProgram holds the program name on a placeholder element.
	AttrProgram = PrivatePrefix + "-program"

	// AttrParams holds the JSON-encoded params on a placeholder element.
	AttrParams = PrivatePrefix + "-params"

	placeholderTag = "div"
)

// ErrEmptyTag is returned when an element node has no tag.
var ErrEmptyTag = errors.New("vdom: element without tag")

// Builder creates live nodes from serialized nodes.
type Builder struct {
	Surface dom.Surface

	// OnProgram is called for each program placeholder created during a
	// build, in document order. The owner mounts the nested program later;
	// the placeholder is already attached to its built parent but the
	// subtree may not be attached to the live tree yet.
	OnProgram func(placeholder dom.Node, name string, params map[string]any)

	// OnEvents is called for each element whose literal carries an "on"
	// list, in document order, with the element's "key" attribute and the
	// event names. The element is detached when it is called.
	OnEvents func(el dom.Node, key string, events []string)
}

// AttrKey names the handler prefix of the events an element declares.
const AttrKey = "key"

// Build constructs the live subtree for n. The result is detached.
func (b *Builder) Build(n *Node) (dom.Node, error) {
	if n == nil {
		return nil, fmt.Errorf("vdom: build: nil node")
	}

	switch n.Kind {
	case KindText:
		return b.Surface.CreateTextNode(n.Text), nil

	case KindProgram:
		placeholder := b.Surface.CreateElement(placeholderTag)
		if err := MarkPlaceholder(b.Surface, placeholder, n.Program, n.Params); err != nil {
			return nil, err
		}
		if b.OnProgram != nil {
			b.OnProgram(placeholder, n.Program, n.Params)
		}
		return placeholder, nil

	case KindElement:
		if n.Tag == "" {
			return nil, ErrEmptyTag
		}
		el := b.Surface.CreateElement(n.Tag)
		for _, key := range n.Attrs.Keys() {
			dom.SetAttribute(b.Surface, el, key, n.Attrs[key])
		}
		if names := EventNames(n.Attrs[dom.AttrOn]); len(names) > 0 && b.OnEvents != nil {
			key := ""
			if v, ok := n.Attrs[AttrKey]; ok {
				key = dom.FormatValue(v)
			}
			b.OnEvents(el, key, names)
		}
		for _, child := range n.Children {
			c, err := b.Build(child)
			if err != nil {
				return nil, err
			}
			b.Surface.AppendChild(el, c)
		}
		return el, nil

	default:
		return nil, fmt.Errorf("vdom: build: unknown node kind %v", n.Kind)
	}
}

// EventNames reads the "on" attribute of a literal: a list of event names
// or a single name. Empty names are skipped.
func EventNames(on any) []string {
	var names []string
	switch v := on.(type) {
	case string:
		if v != "" {
			names = append(names, v)
		}
	case []string:
		for _, name := range v {
			if name != "" {
				names = append(names, name)
			}
		}
	case []any:
		for _, item := range v {
			if name, ok := item.(string); ok && name != "" {
				names = append(names, name)
			}
		}
	}
	return names
}

// MarkPlaceholder records a program mount on el.
func MarkPlaceholder(s dom.Surface, el dom.Node, name string, params map[string]any) error {
	encoded, err := EncodeParams(name, params)
	if err != nil {
		return err
	}
	s.SetAttribute(el, AttrProgram, name)
	s.SetAttribute(el, AttrParams, encoded)
	return nil
}

// EncodeParams encodes the params of program name the way MarkPlaceholder
// records them.
func EncodeParams(name string, params map[string]any) (string, error) {
	if params == nil {
		params = map[string]any{}
	}
	encoded, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("vdom: encode params for %q: %w", name, err)
	}
	return string(encoded), nil
}

// PlaceholderInfo returns the program recorded on a placeholder element.
func PlaceholderInfo(n dom.Node) (name string, params map[string]any, ok bool) {
	if n == nil || n.Type() != dom.ElementNode {
		return "", nil, false
	}
	name, ok = n.Attribute(AttrProgram)
	if !ok {
		return "", nil, false
	}
	params = map[string]any{}
	if raw, has := n.Attribute(AttrParams); has && raw != "" {
		if err := json.Unmarshal([]byte(raw), &params); err != nil {
			params = map[string]any{}
		}
	}
	return name, params, true
}

// IsPrivate reports whether an attribute name is client bookkeeping.
func IsPrivate(key string) bool {
	return strings.HasPrefix(key, PrivatePrefix)
}
