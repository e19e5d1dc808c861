package memdom

import (
	"fmt"
	"strings"

	"github.com/vango-dev/whistle/pkg/dom"
)

// Document is an in-memory tree that implements dom.Surface.
type Document struct {
	root *Node

	nextID   dom.ListenerID
	history  []historyEntry
	watchers []historyWatcher
}

type historyEntry struct {
	state any
	uri   string
}

type historyWatcher struct {
	id dom.ListenerID
	fn func(state any)
}

var _ dom.Surface = (*Document)(nil)

// New returns an empty document located at location.
func New(location string) *Document {
	return &Document{
		root:    &Node{typ: dom.DocumentNode},
		history: []historyEntry{{uri: location}},
	}
}

// Root returns the document node.
func (d *Document) Root() *Node { return d.root }

// Body returns the body element, or nil when there is none.
func (d *Document) Body() *Node {
	return d.Query("body")
}

// Query returns the first node matched by selector, or nil.
func (d *Document) Query(selector string) *Node {
	nodes := d.QueryAll(selector)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// QueryAll returns every node matched by selector in document order. An
// invalid selector matches nothing.
func (d *Document) QueryAll(selector string) []*Node {
	sel, err := dom.ParseSelector(selector)
	if err != nil {
		return nil
	}
	var out []*Node
	for _, n := range sel.MatchAll(d.root) {
		out = append(out, n.(*Node))
	}
	return out
}

// CreateElement creates a detached element.
func (d *Document) CreateElement(tag string) dom.Node {
	return &Node{typ: dom.ElementNode, tag: strings.ToLower(tag)}
}

// CreateTextNode creates a detached text node.
func (d *Document) CreateTextNode(text string) dom.Node {
	return &Node{typ: dom.TextNode, data: text}
}

// SetAttribute sets a plain attribute.
func (d *Document) SetAttribute(n dom.Node, key, value string) {
	asNode(n).setAttr(key, value)
}

// RemoveAttribute removes a plain attribute.
func (d *Document) RemoveAttribute(n dom.Node, key string) {
	asNode(n).removeAttr(key)
}

// SetProperty sets a live property.
func (d *Document) SetProperty(n dom.Node, name string, value any) {
	node := asNode(n)
	if node.props == nil {
		node.props = make(map[string]any)
	}
	node.props[name] = value
}

// SetText sets the content of a text node, or replaces the children of an
// element with a single text node.
func (d *Document) SetText(n dom.Node, text string) {
	node := asNode(n)
	if node.typ == dom.TextNode || node.typ == dom.CommentNode {
		node.data = text
		return
	}
	for _, c := range node.children {
		c.parent = nil
	}
	node.children = nil
	d.AppendChild(node, d.CreateTextNode(text))
}

// AppendChild moves child to the end of parent's children.
func (d *Document) AppendChild(parent, child dom.Node) {
	p, c := asNode(parent), asNode(child)
	c.detach()
	c.parent = p
	p.children = append(p.children, c)
}

// ReplaceNode puts replacement in old's position and detaches old.
func (d *Document) ReplaceNode(old, replacement dom.Node) {
	o, r := asNode(old), asNode(replacement)
	if o == r || o.parent == nil {
		return
	}
	r.detach()
	p := o.parent
	i := p.indexOf(o)
	p.children[i] = r
	r.parent = p
	o.parent = nil
}

// RemoveNode detaches n from its parent.
func (d *Document) RemoveNode(n dom.Node) {
	asNode(n).detach()
}

// AddEventListener registers l for event on n.
func (d *Document) AddEventListener(n dom.Node, event string, l dom.Listener) dom.ListenerID {
	node := asNode(n)
	d.nextID++
	node.listeners = append(node.listeners, listener{id: d.nextID, event: event, fn: l})
	return d.nextID
}

// RemoveEventListener unregisters a listener. Unknown ids are ignored.
func (d *Document) RemoveEventListener(n dom.Node, event string, id dom.ListenerID) {
	node := asNode(n)
	for i, l := range node.listeners {
		if l.id == id && l.event == event {
			node.listeners = append(node.listeners[:i], node.listeners[i+1:]...)
			return
		}
	}
}

// Dispatch fires an event of type typ at target and bubbles it to the root.
// It returns the event so callers can check DefaultPrevented.
func (d *Document) Dispatch(target *Node, typ string) *dom.Event {
	ev := &dom.Event{Type: typ, Target: target}
	for cur := target; cur != nil; cur = cur.parent {
		ev.CurrentTarget = cur
		snapshot := make([]listener, len(cur.listeners))
		copy(snapshot, cur.listeners)
		for _, l := range snapshot {
			if l.event == typ {
				l.fn(ev)
			}
		}
	}
	return ev
}

// SetValue sets the value property of a form control, the way typing does.
func (d *Document) SetValue(n *Node, value string) {
	d.SetProperty(n, dom.PropValue, value)
}

// SetChecked sets the checked property of a checkbox or radio control.
func (d *Document) SetChecked(n *Node, checked bool) {
	d.SetProperty(n, dom.PropChecked, checked)
}

// AddHistoryListener subscribes fn to navigation-history changes.
func (d *Document) AddHistoryListener(fn func(state any)) dom.ListenerID {
	d.nextID++
	d.watchers = append(d.watchers, historyWatcher{id: d.nextID, fn: fn})
	return d.nextID
}

// RemoveHistoryListener unsubscribes a history listener.
func (d *Document) RemoveHistoryListener(id dom.ListenerID) {
	for i, w := range d.watchers {
		if w.id == id {
			d.watchers = append(d.watchers[:i], d.watchers[i+1:]...)
			return
		}
	}
}

// PushHistory records a new history entry. Listeners are not notified.
func (d *Document) PushHistory(state any, uri string) {
	d.history = append(d.history, historyEntry{state: state, uri: uri})
}

// Location returns the URI of the current history entry.
func (d *Document) Location() string {
	return d.history[len(d.history)-1].uri
}

// HistoryLen returns the number of history entries.
func (d *Document) HistoryLen() int { return len(d.history) }

// Back pops the current history entry and notifies listeners with the
// state of the entry that becomes current. It reports false when there is
// nothing to go back to.
func (d *Document) Back() bool {
	if len(d.history) < 2 {
		return false
	}
	d.history = d.history[:len(d.history)-1]
	d.notifyHistory(d.history[len(d.history)-1].state)
	return true
}

// PopState notifies history listeners with state, as a browser does when
// the user navigates to an entry.
func (d *Document) PopState(state any) {
	d.notifyHistory(state)
}

func (d *Document) notifyHistory(state any) {
	snapshot := make([]historyWatcher, len(d.watchers))
	copy(snapshot, d.watchers)
	for _, w := range snapshot {
		w.fn(state)
	}
}

func asNode(n dom.Node) *Node {
	node, ok := n.(*Node)
	if !ok || node == nil {
		panic(fmt.Sprintf("memdom: foreign node %T", n))
	}
	return node
}
