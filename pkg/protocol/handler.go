package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Virtual and special-cased event names.
const (
	EventHistory = "history"
	EventInput   = "input"
	EventChange  = "change"
	EventSubmit  = "submit"
)

// HandlerDescriptor describes an event handler to attach.
type HandlerDescriptor struct {
	Event          string `json:"event"`
	PreventDefault bool   `json:"preventDefault,omitempty"`
}

// UnmarshalJSON accepts {"event": "click", "preventDefault": true},
// ["click", true] or "click".
func (h *HandlerDescriptor) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errors.New("empty handler descriptor")
	}

	var d HandlerDescriptor
	switch data[0] {
	case '"':
		if err := json.Unmarshal(data, &d.Event); err != nil {
			return err
		}
	case '[':
		var parts []json.RawMessage
		if err := json.Unmarshal(data, &parts); err != nil {
			return err
		}
		if len(parts) == 0 || len(parts) > 2 {
			return fmt.Errorf("handler descriptor: want [event, preventDefault], got %d elements", len(parts))
		}
		if err := json.Unmarshal(parts[0], &d.Event); err != nil {
			return err
		}
		if len(parts) == 2 {
			if err := json.Unmarshal(parts[1], &d.PreventDefault); err != nil {
				return err
			}
		}
	case '{':
		type plain HandlerDescriptor
		if err := json.Unmarshal(data, (*plain)(&d)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("handler descriptor: unexpected %s", data)
	}

	if d.Event == "" {
		return errors.New("handler descriptor: empty event")
	}
	*h = d
	return nil
}
