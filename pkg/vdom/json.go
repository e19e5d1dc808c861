package vdom

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedNode is returned when a tree literal cannot be decoded.
var ErrMalformedNode = errors.New("vdom: malformed tree literal")

const (
	literalText    = "text"
	literalProgram = "program"
)

// MarshalJSON encodes n as a tree literal.
func (n *Node) MarshalJSON() ([]byte, error) {
	switch n.Kind {
	case KindText:
		return json.Marshal([]any{literalText, "", n.Text})
	case KindProgram:
		params := n.Params
		if params == nil {
			params = map[string]any{}
		}
		return json.Marshal([]any{literalProgram, n.Program, params})
	case KindElement:
		attrs := n.Attrs
		if attrs == nil {
			attrs = Attrs{}
		}
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		return json.Marshal([]any{n.Tag, attrs, children})
	default:
		return nil, fmt.Errorf("vdom: cannot encode node kind %v", n.Kind)
	}
}

// UnmarshalJSON decodes a tree literal.
func (n *Node) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedNode, err)
	}
	if len(parts) != 3 {
		return fmt.Errorf("%w: want 3 elements, got %d", ErrMalformedNode, len(parts))
	}

	var tag string
	if err := json.Unmarshal(parts[0], &tag); err != nil || tag == "" {
		return fmt.Errorf("%w: first element must be a tag", ErrMalformedNode)
	}

	switch {
	case tag == literalText && isString(parts[2]):
		var text string
		if err := json.Unmarshal(parts[2], &text); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedNode, err)
		}
		*n = Node{Kind: KindText, Text: text}
		return nil

	case tag == literalProgram && isString(parts[1]):
		var name string
		var params map[string]any
		if err := json.Unmarshal(parts[1], &name); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedNode, err)
		}
		if err := json.Unmarshal(parts[2], &params); err != nil {
			return fmt.Errorf("%w: program params: %v", ErrMalformedNode, err)
		}
		*n = Node{Kind: KindProgram, Program: name, Params: params}
		return nil
	}

	var attrs Attrs
	if err := json.Unmarshal(parts[1], &attrs); err != nil {
		return fmt.Errorf("%w: attributes of <%s>: %v", ErrMalformedNode, tag, err)
	}
	var children []*Node
	if err := json.Unmarshal(parts[2], &children); err != nil {
		return fmt.Errorf("%w: children of <%s>: %v", ErrMalformedNode, tag, err)
	}
	for i, c := range children {
		if c == nil {
			return fmt.Errorf("%w: child %d of <%s> is null", ErrMalformedNode, i, tag)
		}
	}
	*n = Node{Kind: KindElement, Tag: tag, Attrs: attrs, Children: children}
	return nil
}

// Decode parses a single tree literal.
func Decode(data []byte) (*Node, error) {
	n := new(Node)
	if err := json.Unmarshal(data, n); err != nil {
		return nil, err
	}
	return n, nil
}

func isString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}
