package dom

// NodeType is the node type discriminator.
type NodeType uint8

const (
	ElementNode NodeType = iota + 1
	TextNode
	CommentNode
	DocumentNode
	DoctypeNode
)

// String returns the string representation of the NodeType.
func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "Element"
	case TextNode:
		return "Text"
	case CommentNode:
		return "Comment"
	case DocumentNode:
		return "Document"
	case DoctypeNode:
		return "Doctype"
	default:
		return "Unknown"
	}
}

// Attribute is a single element attribute.
type Attribute struct {
	Key   string
	Value string
}

// Node is a read-only handle on a node owned by a Surface.
type Node interface {
	Type() NodeType

	// TagName is the lowercase tag for elements, "" otherwise.
	TagName() string

	// Data is the content of text and comment nodes.
	Data() string

	// Attributes returns the element's attributes in document order.
	Attributes() []Attribute
	Attribute(key string) (string, bool)

	// Property returns a live property (value, checked, required,
	// scrollTop, scrollHeight) if it has been set.
	Property(name string) (any, bool)

	Parent() Node
	ChildNodes() []Node
}

// Event is delivered to listeners registered through a Surface.
type Event struct {
	// Type is the event name ("click", "input", ...).
	Type string

	// Target is the node the event was dispatched on.
	Target Node

	// CurrentTarget is the node whose listener is running.
	CurrentTarget Node

	defaultPrevented bool
}

// PreventDefault suppresses the surface's default action for the event.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Listener handles an event.
type Listener func(*Event)

// ListenerID identifies a registered listener for later removal.
type ListenerID uint64

// History is the navigation-history capability of a surface.
type History interface {
	// AddHistoryListener subscribes to navigation-history changes
	// (back/forward). fn receives the state stored with the entry.
	AddHistoryListener(fn func(state any)) ListenerID
	RemoveHistoryListener(id ListenerID)

	// PushHistory pushes a new entry without notifying listeners.
	PushHistory(state any, uri string)

	// Location is the current URI.
	Location() string
}

// Surface is the minimal capability set the patch engine needs from the
// rendering surface that owns the tree.
type Surface interface {
	History

	CreateElement(tag string) Node
	CreateTextNode(text string) Node

	SetAttribute(n Node, key, value string)
	RemoveAttribute(n Node, key string)
	SetProperty(n Node, name string, value any)
	SetText(n Node, text string)

	AppendChild(parent, child Node)
	ReplaceNode(old, replacement Node)
	RemoveNode(n Node)

	AddEventListener(n Node, event string, l Listener) ListenerID
	RemoveEventListener(n Node, event string, id ListenerID)
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the children of the visited node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.ChildNodes() {
		Walk(child, fn)
	}
}

// Contains reports whether n is ancestor or one of its descendants.
func Contains(ancestor, n Node) bool {
	if ancestor == nil || n == nil {
		return false
	}
	for cur := n; cur != nil; cur = cur.Parent() {
		if cur == ancestor {
			return true
		}
	}
	return false
}

// TextContent concatenates the text of n and its descendants.
func TextContent(n Node) string {
	var out []byte
	Walk(n, func(c Node) bool {
		if c.Type() == TextNode {
			out = append(out, c.Data()...)
		}
		return true
	})
	return string(out)
}
