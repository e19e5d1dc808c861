package dom

import (
	"fmt"
	"strconv"
)

// Attribute keys with special handling.
const (
	AttrValue     = "value"
	AttrChecked   = "checked"
	AttrRequired  = "required"
	AttrScrollTop = "scroll_top"
	AttrOn        = "on"

	// ScrollBottom as the scroll_top value scrolls to the end.
	ScrollBottom = "bottom"
)

// Live property names.
const (
	PropValue        = "value"
	PropChecked      = "checked"
	PropRequired     = "required"
	PropScrollTop    = "scrollTop"
	PropScrollHeight = "scrollHeight"
)

// SetAttribute applies the attribute-setting rule to n.
//
// value, checked and required are written as live properties so form
// state updates immediately. checked and required are boolean attributes:
// any value but nil, false and "false" turns them on, the empty string
// included, and the markup keeps the value they were given. scroll_top
// sets the scroll offset ("bottom" scrolls to the node's scrollHeight);
// "on" is never written. For every other key, true becomes the string
// "true", false or nil removes the attribute and anything else is
// formatted as a string.
func SetAttribute(s Surface, n Node, key string, value any) {
	switch key {
	case AttrOn:
		return
	case AttrValue:
		s.SetProperty(n, PropValue, FormatValue(value))
	case AttrChecked, AttrRequired:
		on := BoolAttr(value)
		s.SetProperty(n, key, on)
		if on {
			s.SetAttribute(n, key, FormatValue(value))
		} else {
			s.RemoveAttribute(n, key)
		}
	case AttrScrollTop:
		s.SetProperty(n, PropScrollTop, scrollOffset(n, value))
	default:
		switch v := value.(type) {
		case nil:
			s.RemoveAttribute(n, key)
		case bool:
			if v {
				s.SetAttribute(n, key, "true")
			} else {
				s.RemoveAttribute(n, key)
			}
		default:
			s.SetAttribute(n, key, FormatValue(value))
		}
	}
}

// RemoveAttribute undoes SetAttribute for key, resetting live properties to
// their zero value.
func RemoveAttribute(s Surface, n Node, key string) {
	switch key {
	case AttrOn:
		return
	case AttrValue:
		s.SetProperty(n, PropValue, "")
	case AttrChecked:
		s.SetProperty(n, PropChecked, false)
	case AttrRequired:
		s.SetProperty(n, PropRequired, false)
	case AttrScrollTop:
		s.SetProperty(n, PropScrollTop, float64(0))
	}
	s.RemoveAttribute(n, key)
}

// FormatValue renders an attribute value as a string.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

// Truthy converts a property value to a bool. Strings other than "" and
// "false" are true.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != "" && v != "false"
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return true
	}
}

// BoolAttr reports whether value turns a boolean attribute on. Presence
// is what counts, so the empty string is true; false, nil and "false" are
// off.
func BoolAttr(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != "false"
	default:
		return Truthy(value)
	}
}

func scrollOffset(n Node, value any) float64 {
	if s, ok := value.(string); ok && s == ScrollBottom {
		if h, ok := n.Property(PropScrollHeight); ok {
			return toFloat(h)
		}
		return 0
	}
	return toFloat(value)
}

func toFloat(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}
