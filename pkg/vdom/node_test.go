package vdom

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindText, "Text"},
		{KindElement, "Element"},
		{KindProgram, "Program"},
		{Kind(0), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestDecodeLiterals(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *Node
	}{
		{"text empty slot", `["text", "", "5"]`, Text("5")},
		{"text object slot", `["text", {}, "hi"]`, Text("hi")},
		{"element", `["p", {"class": "x", "hidden": true}, [["text", "", "a"]]]`,
			Element("p", Attrs{"class": "x", "hidden": true}, Text("a"))},
		{"null attrs", `["br", null, []]`, Element("br", nil)},
		{"element named text", `["text", {}, []]`, Element("text", nil)},
		{"program", `["program", "modal", {"id": 1}]`, ProgramRef("modal", map[string]any{"id": float64(1)})},
		{"element named program", `["program", {}, []]`, Element("program", nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !Equal(got, tt.want) {
				t.Errorf("Decode() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	for _, in := range []string{
		`{}`,
		`["p", {}]`,
		`[1, {}, []]`,
		`["", {}, []]`,
		`["p", [], []]`,
		`["p", {}, {}]`,
		`["p", {}, [null]]`,
		`["program", "m", []]`,
	} {
		t.Run(in, func(t *testing.T) {
			_, err := Decode([]byte(in))
			if !errors.Is(err, ErrMalformedNode) {
				t.Errorf("Decode(%s) error = %v, want ErrMalformedNode", in, err)
			}
		})
	}
}

func TestMarshalLiteral(t *testing.T) {
	n := Element("div", Attrs{"id": "a"},
		Text("x"),
		ProgramRef("modal", nil),
		Element("span", nil),
	)
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `["div",{"id":"a"},[["text","","x"],["program","modal",{}],["span",{},[]]]]`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}

	back, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !Equal(back, n) {
		t.Errorf("Decode(Marshal(n)) = %+v, want %+v", back, n)
	}
}

func TestEqual(t *testing.T) {
	base := Element("ul", Attrs{"a": "1"}, Text("x"))
	tests := []struct {
		name  string
		other *Node
		want  bool
	}{
		{"same", Element("ul", Attrs{"a": "1"}, Text("x")), true},
		{"tag", Element("ol", Attrs{"a": "1"}, Text("x")), false},
		{"attr value", Element("ul", Attrs{"a": "2"}, Text("x")), false},
		{"attr type", Element("ul", Attrs{"a": true}, Text("x")), false},
		{"child order", Element("ul", Attrs{"a": "1"}, Text("x"), Text("y")), false},
		{"text", Element("ul", Attrs{"a": "1"}, Text("z")), false},
		{"kind", Text("ul"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(base, tt.other); got != tt.want {
				t.Errorf("Equal() = %v, want %v", got, tt.want)
			}
		})
	}
	if !Equal(nil, nil) {
		t.Error("Equal(nil, nil) = false")
	}
}
