package vdom_test

import (
	"encoding/json"
	"testing"

	"github.com/vango-dev/whistle/pkg/dom/memdom"
	"github.com/vango-dev/whistle/pkg/vdom"
)

func TestSerialize(t *testing.T) {
	d, err := memdom.ParseString(`<div id="app" data-on="true"><p class="x">hi</p><input value="a"></div>`, "/")
	if err != nil {
		t.Fatal(err)
	}
	app := d.Query("#app")
	d.SetAttribute(app, vdom.PrivatePrefix+"-seen", "1")
	d.SetValue(d.Query("input"), "typed")

	got := vdom.Serialize(app)
	want := vdom.Element("div", vdom.Attrs{"id": "app", "data-on": true},
		vdom.Element("p", vdom.Attrs{"class": "x"}, vdom.Text("hi")),
		vdom.Element("input", vdom.Attrs{"value": "typed"}),
	)
	if !vdom.Equal(got, want) {
		a, _ := json.Marshal(got)
		b, _ := json.Marshal(want)
		t.Errorf("Serialize() = %s, want %s", a, b)
	}
}

func TestSerializePlaceholder(t *testing.T) {
	d := memdom.New("/")
	root := d.CreateElement("section")
	holder := d.CreateElement("div")
	if err := vdom.MarkPlaceholder(d, holder, "modal", map[string]any{"n": float64(1)}); err != nil {
		t.Fatal(err)
	}
	d.AppendChild(holder, d.CreateTextNode("inner"))
	d.AppendChild(root, holder)

	got := vdom.Serialize(root)
	want := vdom.Element("section", nil, vdom.ProgramRef("modal", map[string]any{"n": float64(1)}))
	if !vdom.Equal(got, want) {
		t.Errorf("Serialize() = %+v, want %+v", got, want)
	}

	// The program's own root is sent as an element without bookkeeping.
	self := vdom.SerializeRoot(holder)
	if self.Kind != vdom.KindElement || self.Tag != "div" || len(self.Attrs) != 0 {
		t.Errorf("SerializeRoot() = %+v, want plain div", self)
	}
	if len(self.Children) != 1 || self.Children[0].Text != "inner" {
		t.Errorf("SerializeRoot() children = %+v", self.Children)
	}
}

func TestSerializeDocument(t *testing.T) {
	d, err := memdom.ParseString(`<!DOCTYPE html><html><head></head><body>x</body></html>`, "/")
	if err != nil {
		t.Fatal(err)
	}
	got := vdom.SerializeRoot(d.Root())
	if got.Tag != vdom.DocumentTag {
		t.Errorf("Tag = %q, want %q", got.Tag, vdom.DocumentTag)
	}
	if len(got.Children) != 1 || got.Children[0].Tag != "html" {
		t.Errorf("document children = %+v, want only <html>", got.Children)
	}
}

func TestRoundTrip(t *testing.T) {
	trees := []string{
		`<div><p>a</p><p>b</p></div>`,
		`<ul class="list"><li data-k="1">one</li><li data-k="2" hidden="true">two</li></ul>`,
		`<form><input name="q" value="x"><textarea name="t">body</textarea><button type="submit">go</button></form>`,
		`<div> spaced <b>bold</b> text </div>`,
		`<input name="a" required>`,
		`<input name="a" required="true">`,
		`<input type="checkbox" name="c" checked>`,
		`<form><input type="radio" name="r" value="1" checked="true"><input type="radio" name="r" value="2"></form>`,
	}
	for _, src := range trees {
		t.Run(src, func(t *testing.T) {
			d, err := memdom.ParseString(src, "/")
			if err != nil {
				t.Fatal(err)
			}
			original := vdom.Serialize(d.Body().Children()[0])

			b := &vdom.Builder{Surface: d}
			built, err := b.Build(original)
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			again := vdom.Serialize(built)
			if !vdom.Equal(again, original) {
				a, _ := json.Marshal(again)
				o, _ := json.Marshal(original)
				t.Errorf("round trip = %s, want %s", a, o)
			}
		})
	}
}
