package dom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrPathResolution is wrapped by every *PathError.
var ErrPathResolution = errors.New("dom: path does not resolve")

// Path locates a node by child indexes from a root.
type Path []int

// String joins the indexes with "." ([0 1 2] → "0.1.2", root → "").
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	for i, idx := range p {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(strconv.Itoa(idx))
	}
	return b.String()
}

// ParsePath is the inverse of Path.String.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	parts := strings.Split(s, ".")
	p := make(Path, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("dom: invalid path %q", s)
		}
		p[i] = n
	}
	return p, nil
}

// PathError reports where a path stopped resolving.
type PathError struct {
	Path  Path
	Depth int // position in Path of the failing index
	Len   int // number of children available at that depth
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("dom: path [%s]: index %d at depth %d out of range (%d children)",
		e.Path, e.Path[e.Depth], e.Depth, e.Len)
}

// Unwrap lets errors.Is match ErrPathResolution.
func (e *PathError) Unwrap() error {
	return ErrPathResolution
}

// Resolve walks path from root and returns the node it addresses.
func Resolve(root Node, path Path) (Node, error) {
	if root == nil {
		return nil, ErrPathResolution
	}

	node := root
	for depth, idx := range path {
		children := node.ChildNodes()
		if depth == 0 {
			children = skipDoctype(root, children)
		}
		if idx < 0 || idx >= len(children) {
			return nil, &PathError{Path: path, Depth: depth, Len: len(children)}
		}
		node = children[idx]
	}
	return node, nil
}

// skipDoctype drops a leading doctype when root is a whole document.
func skipDoctype(root Node, children []Node) []Node {
	if root.Type() == DocumentNode && len(children) > 0 && children[0].Type() == DoctypeNode {
		return children[1:]
	}
	return children
}

// PathOf computes the path from root to n. It is the inverse of Resolve and
// returns false when n is not inside root.
func PathOf(root, n Node) (Path, bool) {
	var rev []int
	for cur := n; cur != root; {
		if cur == nil {
			return nil, false
		}
		parent := cur.Parent()
		if parent == nil {
			return nil, false
		}
		siblings := parent.ChildNodes()
		if parent == root {
			siblings = skipDoctype(root, siblings)
		}
		idx := -1
		for i, s := range siblings {
			if s == cur {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, false
		}
		rev = append(rev, idx)
		cur = parent
	}

	p := make(Path, len(rev))
	for i := range rev {
		p[i] = rev[len(rev)-1-i]
	}
	return p, true
}
