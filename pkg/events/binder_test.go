package events_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/vango-dev/whistle/internal/clock"
	"github.com/vango-dev/whistle/pkg/dom/memdom"
	"github.com/vango-dev/whistle/pkg/events"
	"github.com/vango-dev/whistle/pkg/protocol"
)

func setup(t *testing.T, html string) (*memdom.Document, *clock.FakeClock, *events.Binder) {
	t.Helper()
	d, err := memdom.ParseString(html, "/start")
	if err != nil {
		t.Fatal(err)
	}
	c := clock.Fake(time.Unix(0, 0))
	return d, c, events.NewBinder(d, events.WithClock(c), events.WithDebounceDelay(250*time.Millisecond))
}

func TestAttachClick(t *testing.T) {
	d, _, b := setup(t, `<button value="7">go</button>`)
	btn := d.Query("button")

	var got []any
	detach, err := b.Attach(btn, protocol.HandlerDescriptor{Event: "click", PreventDefault: true}, func(arg any) {
		got = append(got, arg)
	})
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	ev := d.Dispatch(btn, "click")
	if !ev.DefaultPrevented() {
		t.Error("preventDefault not applied")
	}
	if len(got) != 1 || got[0] != "7" {
		t.Errorf("args = %v, want [7]", got)
	}

	detach()
	detach()
	d.Dispatch(btn, "click")
	if len(got) != 1 {
		t.Error("handler fired after detach")
	}
	if btn.ListenerCount("") != 0 {
		t.Errorf("listeners left = %d", btn.ListenerCount(""))
	}
}

func TestAttachWithoutPreventDefault(t *testing.T) {
	d, _, b := setup(t, `<a href="/x">x</a>`)
	a := d.Query("a")
	if _, err := b.Attach(a, protocol.HandlerDescriptor{Event: "click"}, func(any) {}); err != nil {
		t.Fatal(err)
	}
	if d.Dispatch(a, "click").DefaultPrevented() {
		t.Error("default should not be prevented")
	}
}

func TestAttachInputDebounced(t *testing.T) {
	d, c, b := setup(t, `<input name="q">`)
	input := d.Query("input")

	var got []any
	detach, err := b.Attach(input, protocol.HandlerDescriptor{Event: "input"}, func(arg any) {
		got = append(got, arg)
	})
	if err != nil {
		t.Fatal(err)
	}

	d.SetValue(input, "h")
	d.Dispatch(input, "input")
	c.Advance(100 * time.Millisecond)
	d.SetValue(input, "he")
	d.Dispatch(input, "input")
	c.Advance(249 * time.Millisecond)
	if len(got) != 0 {
		t.Fatalf("fired before the window closed: %v", got)
	}
	c.Advance(time.Millisecond)
	if !reflect.DeepEqual(got, []any{"he"}) {
		t.Fatalf("got %v, want [he]", got)
	}

	d.SetValue(input, "hey")
	d.Dispatch(input, "input")
	d.Dispatch(input, "change")
	if !reflect.DeepEqual(got, []any{"he", "hey"}) {
		t.Fatalf("change should flush, got %v", got)
	}
	c.Advance(time.Second)
	if len(got) != 2 {
		t.Errorf("trailing call after change: %v", got)
	}

	detach()
	if input.ListenerCount("") != 0 {
		t.Errorf("detach should remove input and change listeners, %d left", input.ListenerCount(""))
	}
	d.Dispatch(input, "input")
	c.Advance(time.Second)
	if len(got) != 2 {
		t.Error("fired after detach")
	}
}

func TestDetachCancelsPendingInput(t *testing.T) {
	d, c, b := setup(t, `<input>`)
	input := d.Query("input")
	fired := 0
	detach, _ := b.Attach(input, protocol.HandlerDescriptor{Event: "input"}, func(any) { fired++ })

	d.Dispatch(input, "input")
	detach()
	c.Advance(time.Second)
	if fired != 0 {
		t.Errorf("fired = %d, want 0", fired)
	}
}

func TestAttachFormSubmit(t *testing.T) {
	d, _, b := setup(t, `<form>
		<input name="user" value="ann">
		<input name="remember" type="checkbox" checked>
		<input name="news" type="checkbox">
		<input name="plan" type="radio" value="free">
		<input name="plan" type="radio" value="pro" checked>
		<select name="size"><option value="s">S</option><option value="m" selected>M</option></select>
		<textarea name="bio">hi</textarea>
		<input value="unnamed">
		<button name="go" value="send">Send</button>
	</form>`)
	form := d.Query("form")
	d.SetValue(d.Query("[name=user]"), "bob")

	var got any
	if _, err := b.Attach(form, protocol.HandlerDescriptor{Event: "submit", PreventDefault: true}, func(arg any) { got = arg }); err != nil {
		t.Fatal(err)
	}
	if !d.Dispatch(form, "submit").DefaultPrevented() {
		t.Error("submit default should be prevented")
	}

	want := map[string]any{
		"user":     "bob",
		"remember": true,
		"news":     false,
		"plan":     "pro",
		"size":     "m",
		"bio":      "hi",
		"go":       "send",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("form values = %v, want %v", got, want)
	}
}

func TestFormClickSendsTargetValue(t *testing.T) {
	d, _, b := setup(t, `<form><input name="a" value="1"></form>`)
	var got any = "unset"
	b.Attach(d.Query("form"), protocol.HandlerDescriptor{Event: "click"}, func(arg any) { got = arg })

	d.Dispatch(d.Query("input"), "click")
	if got != "1" {
		t.Errorf("click on form control = %v, want the control's value", got)
	}
}

func TestAttachHistory(t *testing.T) {
	d, _, b := setup(t, `<div></div>`)

	var got []any
	detach, err := b.Attach(nil, protocol.HandlerDescriptor{Event: "history"}, func(arg any) {
		got = append(got, arg)
	})
	if err != nil {
		t.Fatalf("Attach(history) error = %v", err)
	}

	d.PopState(map[string]any{"uri": "/a"})
	d.PopState("/b")
	d.PushHistory(nil, "/c")
	d.PushHistory(nil, "/d")
	d.Back()

	if !reflect.DeepEqual(got, []any{"/a", "/b", "/c"}) {
		t.Errorf("history args = %v, want [/a /b /c]", got)
	}

	detach()
	d.PopState("/e")
	if len(got) != 3 {
		t.Error("history listener fired after detach")
	}
}

func TestAttachErrors(t *testing.T) {
	d, _, b := setup(t, `<div></div>`)
	if _, err := b.Attach(d.Query("div"), protocol.HandlerDescriptor{}, func(any) {}); !errors.Is(err, events.ErrEmptyEvent) {
		t.Errorf("empty event error = %v", err)
	}
	if _, err := b.Attach(nil, protocol.HandlerDescriptor{Event: "click"}, func(any) {}); !errors.Is(err, events.ErrNilNode) {
		t.Errorf("nil node error = %v", err)
	}
}

func TestControlValue(t *testing.T) {
	d, _, _ := setup(t, `<input id="a" value="attr"><input id="b"><p id="c">x</p>`)

	a := d.Query("#a")
	if got := events.ControlValue(a); got != "attr" {
		t.Errorf("attribute value = %v", got)
	}
	d.SetValue(a, "live")
	if got := events.ControlValue(a); got != "live" {
		t.Errorf("property value = %v", got)
	}
	if got := events.ControlValue(d.Query("#b")); got != nil {
		t.Errorf("no value = %v, want nil", got)
	}
	if got := events.ControlValue(nil); got != nil {
		t.Errorf("nil node = %v", got)
	}
}

func TestHistoryURI(t *testing.T) {
	tests := []struct {
		state any
		want  string
	}{
		{"/x", "/x"},
		{map[string]any{"uri": "/y"}, "/y"},
		{map[string]any{"other": 1}, "/fallback"},
		{nil, "/fallback"},
		{"", "/fallback"},
	}
	for _, tt := range tests {
		if got := events.HistoryURI(tt.state, "/fallback"); got != tt.want {
			t.Errorf("HistoryURI(%v) = %q, want %q", tt.state, got, tt.want)
		}
	}
}
