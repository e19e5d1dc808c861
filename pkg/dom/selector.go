package dom

import (
	"fmt"
	"strings"
)

// Selector matches elements against a simple CSS selector group.
//
// Supported: tag names, "*", #id, .class, [attr] and [attr=value] (value
// optionally quoted), combined into compound selectors and separated by
// commas. Combinators are not supported.
type Selector struct {
	source string
	groups []compound
}

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
}

type attrMatch struct {
	key      string
	value    string
	hasValue bool
}

// ParseSelector parses a selector group.
func ParseSelector(s string) (*Selector, error) {
	sel := &Selector{source: s}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, fmt.Errorf("dom: empty selector in %q", s)
		}
		c, err := parseCompound(part)
		if err != nil {
			return nil, fmt.Errorf("dom: selector %q: %w", s, err)
		}
		sel.groups = append(sel.groups, c)
	}
	return sel, nil
}

// MustParseSelector is like ParseSelector but panics on error.
func MustParseSelector(s string) *Selector {
	sel, err := ParseSelector(s)
	if err != nil {
		panic(err)
	}
	return sel
}

// String returns the source text of the selector.
func (s *Selector) String() string { return s.source }

// Match reports whether n is an element matched by any selector in the group.
func (s *Selector) Match(n Node) bool {
	if s == nil || n == nil || n.Type() != ElementNode {
		return false
	}
	for _, c := range s.groups {
		if c.match(n) {
			return true
		}
	}
	return false
}

// MatchAll returns root and its descendants matched by s, in document order.
func (s *Selector) MatchAll(root Node) []Node {
	var out []Node
	Walk(root, func(n Node) bool {
		if s.Match(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

func (c compound) match(n Node) bool {
	if c.tag != "" && c.tag != "*" && c.tag != n.TagName() {
		return false
	}
	if c.id != "" {
		if id, ok := n.Attribute("id"); !ok || id != c.id {
			return false
		}
	}
	if len(c.classes) > 0 {
		class, _ := n.Attribute("class")
		have := strings.Fields(class)
		for _, want := range c.classes {
			if !containsString(have, want) {
				return false
			}
		}
	}
	for _, a := range c.attrs {
		v, ok := n.Attribute(a.key)
		if !ok || (a.hasValue && v != a.value) {
			return false
		}
	}
	return true
}

func parseCompound(s string) (compound, error) {
	var c compound
	i := 0
	tagEnd := scanIdent(s, 0)
	if tagEnd > 0 {
		c.tag = strings.ToLower(s[:tagEnd])
		i = tagEnd
	} else if strings.HasPrefix(s, "*") {
		c.tag = "*"
		i = 1
	}

	for i < len(s) {
		switch s[i] {
		case '#':
			end := scanIdent(s, i+1)
			if end == i+1 {
				return c, fmt.Errorf("missing id after '#'")
			}
			c.id = s[i+1 : end]
			i = end
		case '.':
			end := scanIdent(s, i+1)
			if end == i+1 {
				return c, fmt.Errorf("missing class after '.'")
			}
			c.classes = append(c.classes, s[i+1:end])
			i = end
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end < 0 {
				return c, fmt.Errorf("unterminated attribute selector")
			}
			a, err := parseAttrMatch(s[i+1 : i+end])
			if err != nil {
				return c, err
			}
			c.attrs = append(c.attrs, a)
			i += end + 1
		default:
			return c, fmt.Errorf("unexpected %q", s[i])
		}
	}

	if c.tag == "" && c.id == "" && len(c.classes) == 0 && len(c.attrs) == 0 {
		return c, fmt.Errorf("empty compound selector")
	}
	return c, nil
}

func parseAttrMatch(s string) (attrMatch, error) {
	key, value, hasValue := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if key == "" {
		return attrMatch{}, fmt.Errorf("missing attribute name")
	}
	a := attrMatch{key: strings.ToLower(key), hasValue: hasValue}
	if hasValue {
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		a.value = value
	}
	return a, nil
}

func scanIdent(s string, start int) int {
	i := start
	for i < len(s) {
		ch := s[i]
		if ch == '-' || ch == '_' || (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') {
			i++
			continue
		}
		break
	}
	return i
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
