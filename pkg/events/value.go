package events

import (
	"github.com/vango-dev/whistle/pkg/dom"
	"github.com/vango-dev/whistle/pkg/protocol"
)

// Value derives the argument sent with an event of type eventType that was
// handled on node, with target being where the event was dispatched.
//
// change, input and submit handled on a form produce FormValues(node).
// Everything else produces ControlValue of the target.
func Value(node, target dom.Node, eventType string) any {
	if node != nil && node.TagName() == "form" {
		switch eventType {
		case protocol.EventChange, protocol.EventInput, protocol.EventSubmit:
			return FormValues(node)
		}
	}
	if target == nil {
		target = node
	}
	return ControlValue(target)
}

// ControlValue returns the current value of a control: the live value
// property, then the value attribute, then nil.
func ControlValue(n dom.Node) any {
	if n == nil || n.Type() != dom.ElementNode {
		return nil
	}
	if v, ok := n.Property(dom.PropValue); ok {
		return dom.FormatValue(v)
	}
	if v, ok := n.Attribute("value"); ok {
		return v
	}
	return nil
}

// FormValues maps the name of every named control inside form to its
// current value. Checkboxes report whether they are checked; a radio group
// reports the value of its checked member and is absent when none is.
func FormValues(form dom.Node) map[string]any {
	values := map[string]any{}
	dom.Walk(form, func(n dom.Node) bool {
		if n.Type() != dom.ElementNode {
			return true
		}
		switch n.TagName() {
		case "input", "select", "textarea", "button":
		default:
			return true
		}
		name, _ := n.Attribute("name")
		if name == "" {
			return true
		}

		switch inputType(n) {
		case "checkbox":
			values[name] = checked(n)
		case "radio":
			if checked(n) {
				values[name] = radioValue(n)
			}
		default:
			values[name] = currentValue(n)
		}
		return true
	})
	return values
}

func inputType(n dom.Node) string {
	if n.TagName() != "input" {
		return ""
	}
	t, _ := n.Attribute("type")
	return t
}

func checked(n dom.Node) bool {
	if v, ok := n.Property(dom.PropChecked); ok {
		return dom.Truthy(v)
	}
	_, ok := n.Attribute("checked")
	return ok
}

func radioValue(n dom.Node) any {
	if v, ok := n.Attribute("value"); ok {
		return v
	}
	return "on"
}

func currentValue(n dom.Node) any {
	if v, ok := n.Property(dom.PropValue); ok {
		return dom.FormatValue(v)
	}
	switch n.TagName() {
	case "textarea":
		return dom.TextContent(n)
	case "select":
		return selectValue(n)
	}
	if v, ok := n.Attribute("value"); ok {
		return v
	}
	return ""
}

func selectValue(sel dom.Node) string {
	var first, selected dom.Node
	dom.Walk(sel, func(n dom.Node) bool {
		if n.TagName() != "option" {
			return true
		}
		if first == nil {
			first = n
		}
		if _, ok := n.Attribute("selected"); ok && selected == nil {
			selected = n
		}
		return false
	})
	opt := selected
	if opt == nil {
		opt = first
	}
	if opt == nil {
		return ""
	}
	if v, ok := opt.Attribute("value"); ok {
		return v
	}
	return dom.TextContent(opt)
}
