package client_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/vango-dev/whistle/pkg/client"
	"github.com/vango-dev/whistle/pkg/dom"
	"github.com/vango-dev/whistle/pkg/dom/memdom"
	"github.com/vango-dev/whistle/pkg/protocol"
	"github.com/vango-dev/whistle/pkg/vdom"
)

func TestRenderSetsValueProperty(t *testing.T) {
	h, _ := joined(t)
	h.Deliver(t, `{"type":"render","program":"p1","dom_patches":[[5,[0],["value","1"]]]}`)

	input := h.Doc.Query("#count")
	if v, _ := input.Property(dom.PropValue); v != "1" {
		t.Errorf("value property = %v, want 1", v)
	}
	if v, _ := input.Attribute("value"); v != "0" {
		t.Errorf("value attribute = %q, want it untouched", v)
	}
}

func TestRenderReplacesNodeWithText(t *testing.T) {
	h, _ := joined(t)
	h.Deliver(t, `{"type":"render","program":"p1","dom_patches":[[3,[1],["text","","5"]]]}`)

	app := h.Doc.Query("#app")
	child := app.ChildNodes()[1]
	if child.Type() != dom.TextNode || child.Data() != "5" {
		t.Errorf("child 1 = %v %q, want text 5", child.Type(), child.Data())
	}
	if h.Doc.Query("span") != nil {
		t.Error("span should be gone")
	}
}

func TestRenderRemount(t *testing.T) {
	h, p := joined(t)

	h.Render(t, "p1", protocol.Remount(dom.Path{2}, "first", nil))
	first := findChild(p, "first")
	if first == nil {
		t.Fatal("first not mounted")
	}
	h.Ack(t, "first", "c1")
	h.Transport.ClearSent()

	h.Deliver(t, `{"type":"render","program":"p1","dom_patches":[[9,[2],"modal",{}]]}`)

	leaves := h.Transport.MessagesOfType(protocol.TypeLeave)
	if len(leaves) != 1 || leaves[0]["program"] != "c1" {
		t.Errorf("leaves = %v, want one for c1", leaves)
	}
	if first.State() != client.StateLeft {
		t.Errorf("first state = %v, want left", first.State())
	}

	modal := findChild(p, "modal")
	if modal == nil {
		t.Fatal("modal not mounted")
	}
	if modal.Root() != dom.Node(h.Doc.Query("#slot")) {
		t.Error("modal should be mounted on the remounted node")
	}
	join := h.LastJoin(t, "modal")
	if !reflect.DeepEqual(join["params"], map[string]any{}) {
		t.Errorf("params = %v, want {}", join["params"])
	}
	wantDOM := []any{"div", map[string]any{"id": "slot"}, []any{}}
	if !reflect.DeepEqual(join["dom"], wantDOM) {
		t.Errorf("dom = %v, want %v", join["dom"], wantDOM)
	}
}

func TestRenderAppliesInOrder(t *testing.T) {
	h, _ := joined(t)
	h.Render(t, "p1",
		protocol.AddNode(nil, vdom.Element("p", nil, vdom.Text("new"))),
		protocol.SetAttribute(dom.Path{3}, "class", "fresh"),
		protocol.RemoveNode(dom.Path{0}),
		protocol.ReplaceText(dom.Path{0, 0}, "changed"),
	)

	got := memdom.RenderString(h.Doc.Query("#app"))
	want := `<div id="app"><span>changed</span><div id="slot"></div><p class="fresh">new</p></div>`
	if got != want {
		t.Errorf("tree = %s\nwant   %s", got, want)
	}
}

func TestRenderSkipsFailedPatch(t *testing.T) {
	h, _ := joined(t)
	h.Deliver(t, `{"type":"render","program":"p1","dom_patches":[
		[5,[9,9],["title","lost"]],
		[42,[0],"future"],
		[5],
		[4,[]],
		[5,[],["title","kept"]]
	]}`)

	app := h.Doc.Query("#app")
	if v, _ := app.Attribute("title"); v != "kept" {
		t.Errorf("title = %q, want kept", v)
	}
	if len(app.Children()) != 3 {
		t.Errorf("children = %d, want 3", len(app.Children()))
	}
}

func TestRenderAttributes(t *testing.T) {
	h, _ := joined(t)
	h.Render(t, "p1",
		protocol.SetAttribute(dom.Path{2}, "hidden", true),
		protocol.SetAttribute(dom.Path{2}, "data-n", float64(3)),
		protocol.SetAttribute(dom.Path{0}, "checked", true),
		protocol.RemoveAttribute(dom.Path{2}, "id"),
	)

	slot := h.Doc.Query("#app").Children()[2]
	if v, _ := slot.Attribute("hidden"); v != "true" {
		t.Errorf("hidden = %q", v)
	}
	if v, _ := slot.Attribute("data-n"); v != "3" {
		t.Errorf("data-n = %q", v)
	}
	if _, ok := slot.Attribute("id"); ok {
		t.Error("id should be removed")
	}
	if v, _ := h.Doc.Query("#count").Property(dom.PropChecked); v != true {
		t.Errorf("checked property = %v, want true", v)
	}
}

func TestReplaceProgramRoot(t *testing.T) {
	h, p := joined(t)
	h.Render(t, "p1", protocol.ReplaceNode(nil, vdom.Element("section", vdom.Attrs{"id": "app2"})))

	if p.Root().TagName() != "section" {
		t.Fatalf("root = %s, want section", p.Root().TagName())
	}
	h.Render(t, "p1", protocol.SetAttribute(nil, "title", "x"))
	if v, _ := h.Doc.Query("#app2").Attribute("title"); v != "x" {
		t.Error("paths should resolve against the new root")
	}
}

func TestEventHandlerFires(t *testing.T) {
	h, p := joined(t)
	h.Render(t, "p1",
		protocol.AddEventHandler(dom.Path{0}, "click", false),
		protocol.AddEventHandler(nil, "submit", true),
	)
	if !p.HasHandler(dom.Path{0}, "click") {
		t.Fatal("click handler not registered")
	}

	h.Doc.Dispatch(h.Doc.Query("#count"), "click")
	ev := h.Doc.Dispatch(h.Doc.Query("#app"), "submit")
	if !ev.DefaultPrevented() {
		t.Error("submit default should be prevented")
	}

	events := h.Transport.MessagesOfType(protocol.TypeEvent)
	if len(events) != 2 {
		t.Fatalf("events = %v, want 2", events)
	}
	want := []map[string]any{
		{"type": "event", "program": "p1", "handler": "0.click", "args": []any{"0"}},
		{"type": "event", "program": "p1", "handler": ".submit", "args": []any{nil}},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v\nwant     %v", events, want)
	}
}

func TestInputHandlerDebounced(t *testing.T) {
	h, _ := joined(t)
	h.Render(t, "p1", protocol.AddEventHandler(dom.Path{0}, "input", false))

	input := h.Doc.Query("#count")
	h.Doc.SetValue(input, "4")
	h.Doc.Dispatch(input, "input")
	h.Doc.SetValue(input, "42")
	h.Doc.Dispatch(input, "input")
	h.Clock.Advance(249 * time.Millisecond)
	if n := len(h.Transport.MessagesOfType(protocol.TypeEvent)); n != 0 {
		t.Fatalf("sent %d events inside the debounce window", n)
	}

	h.Clock.Advance(time.Millisecond)
	events := h.Transport.MessagesOfType(protocol.TypeEvent)
	if len(events) != 1 || events[0]["handler"] != "0.input" {
		t.Fatalf("events = %v", events)
	}
	if !reflect.DeepEqual(events[0]["args"], []any{"42"}) {
		t.Errorf("args = %v, want [42]", events[0]["args"])
	}
}

func TestEventHandlerKeys(t *testing.T) {
	h, p := joined(t)
	input := h.Doc.Query("#count")

	h.Render(t, "p1",
		protocol.AddEventHandler(dom.Path{0}, "click", false),
		protocol.AddEventHandler(dom.Path{0}, "focus", false),
		protocol.AddEventHandler(dom.Path{0}, "click", false),
	)
	if p.HandlerCount() != 2 {
		t.Errorf("HandlerCount = %d, want 2", p.HandlerCount())
	}
	if n := input.ListenerCount("click"); n != 1 {
		t.Errorf("click listeners = %d, want 1 after re-adding", n)
	}

	h.Render(t, "p1",
		protocol.RemoveEventHandler(dom.Path{0}, "click"),
		protocol.RemoveEventHandler(dom.Path{0}, "blur"),
		protocol.RemoveEventHandler(dom.Path{1}, "focus"),
	)
	if p.HasHandler(dom.Path{0}, "click") {
		t.Error("click should be removed")
	}
	if !p.HasHandler(dom.Path{0}, "focus") {
		t.Error("focus must survive removals for other keys")
	}
	if input.ListenerCount("click") != 0 || input.ListenerCount("focus") != 1 {
		t.Errorf("listeners click=%d focus=%d", input.ListenerCount("click"), input.ListenerCount("focus"))
	}
}

func TestRemoveNodeDetachesHandlers(t *testing.T) {
	h, p := joined(t)
	h.Render(t, "p1",
		protocol.AddEventHandler(dom.Path{0}, "click", false),
		protocol.AddEventHandler(dom.Path{2}, "click", false),
		protocol.RemoveNode(dom.Path{0}),
	)
	if p.HandlerCount() != 1 {
		t.Errorf("HandlerCount = %d, want 1", p.HandlerCount())
	}
}

func TestNestedProgramMountedAfterBatch(t *testing.T) {
	h, p := joined(t)

	// The attribute lands on the placeholder before the child joins, so the
	// join snapshot carries it.
	h.Render(t, "p1",
		protocol.AddNode(dom.Path{2}, vdom.ProgramRef("child", map[string]any{"a": float64(1)})),
		protocol.SetAttribute(dom.Path{2, 0}, "class", "box"),
	)

	child := findChild(p, "child")
	if child == nil {
		t.Fatal("child not mounted")
	}
	if child.Parent() != p {
		t.Error("child parent mismatch")
	}
	join := h.LastJoin(t, "child")
	if !reflect.DeepEqual(join["params"], map[string]any{"a": float64(1)}) {
		t.Errorf("params = %v", join["params"])
	}
	wantDOM := []any{"div", map[string]any{"class": "box"}, []any{}}
	if !reflect.DeepEqual(join["dom"], wantDOM) {
		t.Errorf("dom = %v, want %v", join["dom"], wantDOM)
	}
}

func TestNestedProgramDiscardedWhenRemoved(t *testing.T) {
	h, p := joined(t)
	h.Render(t, "p1",
		protocol.AddNode(dom.Path{2}, vdom.ProgramRef("child", nil)),
		protocol.RemoveNode(dom.Path{2}),
	)
	if len(p.Children()) != 0 {
		t.Error("child mounted on a removed placeholder")
	}
	if n := len(h.Transport.MessagesOfType(protocol.TypeJoin)); n != 0 {
		t.Errorf("joins = %d, want 0", n)
	}
}

func TestRemoveSubtreeLeavesNestedPrograms(t *testing.T) {
	h, p := joined(t)
	h.Render(t, "p1", protocol.AddNode(dom.Path{2}, vdom.ProgramRef("child", nil)))
	child := findChild(p, "child")
	h.Ack(t, "child", "c1")
	h.Render(t, "c1", protocol.AddNode(nil, vdom.ProgramRef("grandchild", nil)))
	grandchild := findChild(child, "grandchild")
	if grandchild == nil {
		t.Fatal("grandchild not mounted")
	}
	h.Ack(t, "grandchild", "g1")
	h.Transport.ClearSent()

	h.Render(t, "p1", protocol.RemoveNode(dom.Path{2}))

	leaves := h.Transport.MessagesOfType(protocol.TypeLeave)
	var order []any
	for _, l := range leaves {
		order = append(order, l["program"])
	}
	if !reflect.DeepEqual(order, []any{"g1", "c1"}) {
		t.Errorf("leave order = %v, want children first", order)
	}
	if len(p.Children()) != 0 || len(h.Socket.Programs()) != 1 {
		t.Errorf("children = %d programs = %d", len(p.Children()), len(h.Socket.Programs()))
	}
}

func TestHooks(t *testing.T) {
	var created, removed []string
	hooks := client.Hooks{
		".item": {
			CreatingElement: func(_ *client.Program, n dom.Node) {
				v, _ := n.Attribute("id")
				created = append(created, v)
			},
			RemovingElement: func(_ *client.Program, n dom.Node) {
				v, _ := n.Attribute("id")
				removed = append(removed, v)
			},
		},
	}
	h, _ := joined(t, client.WithHooks(hooks))

	h.Render(t, "p1", protocol.AddNode(dom.Path{2}, vdom.Element("ul", nil,
		vdom.Element("li", vdom.Attrs{"class": "item", "id": "a"}),
		vdom.Element("li", vdom.Attrs{"class": "item", "id": "b"}),
	)))
	if !reflect.DeepEqual(created, []string{"a", "b"}) {
		t.Errorf("created = %v", created)
	}

	h.Render(t, "p1", protocol.RemoveNode(dom.Path{2, 0}))
	if !reflect.DeepEqual(removed, []string{"a", "b"}) {
		t.Errorf("removed = %v", removed)
	}
}

func TestHooksInherited(t *testing.T) {
	var created int
	hooks := client.Hooks{"b": {CreatingElement: func(*client.Program, dom.Node) { created++ }}}
	h, _ := joined(t, client.WithHooks(hooks))

	h.Render(t, "p1", protocol.AddNode(dom.Path{2}, vdom.ProgramRef("child", nil)))
	h.Ack(t, "child", "c1")
	h.Render(t, "c1", protocol.AddNode(nil, vdom.Element("b", nil)))

	if created != 1 {
		t.Errorf("created = %d, want nested program to inherit hooks", created)
	}
}

func TestDeclaredEventsBound(t *testing.T) {
	h, p := joined(t)
	h.Deliver(t, `{"type":"render","program":"p1","dom_patches":[
		[2,[2],["button",{"id":"b","key":"inc","value":"7","on":["click","focus"]},[["text","","+"]]]],
		[2,[2],["a",{"id":"plain","on":["click"]},[]]]
	]}`)

	button := h.Doc.Query("#b")
	if _, ok := button.Attribute("on"); ok {
		t.Error("on must not be written as an attribute")
	}
	if !p.HasHandler(dom.Path{2, 0}, "click") || !p.HasHandler(dom.Path{2, 0}, "focus") {
		t.Fatal("declared events not registered under their path")
	}

	h.Doc.Dispatch(button, "click")
	h.Doc.Dispatch(h.Doc.Query("#plain"), "click")

	events := h.Transport.MessagesOfType(protocol.TypeEvent)
	want := []map[string]any{
		{"type": "event", "program": "p1", "handler": "inc.click", "args": []any{"7"}},
		{"type": "event", "program": "p1", "handler": "2.1.click", "args": []any{nil}},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v\nwant     %v", events, want)
	}

	h.Transport.ClearSent()
	h.Render(t, "p1", protocol.RemoveEventHandler(dom.Path{2, 0}, "click"))
	if button.ListenerCount("click") != 0 || button.ListenerCount("focus") != 1 {
		t.Errorf("listeners click=%d focus=%d after op 8", button.ListenerCount("click"), button.ListenerCount("focus"))
	}

	h.Render(t, "p1", protocol.RemoveNode(dom.Path{2}))
	if p.HandlerCount() != 0 {
		t.Errorf("HandlerCount = %d after removing the subtree, want 0", p.HandlerCount())
	}
	h.Doc.Dispatch(button, "focus")
	if n := len(h.Transport.MessagesOfType(protocol.TypeEvent)); n != 0 {
		t.Errorf("removed element still sent %d events", n)
	}
}
