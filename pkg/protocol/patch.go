package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vango-dev/whistle/pkg/dom"
	"github.com/vango-dev/whistle/pkg/vdom"
)

// Op is a patch opcode.
type Op int

// Patch opcodes.
const (
	OpReplaceText        Op = 1
	OpAddNode            Op = 2
	OpReplaceNode        Op = 3
	OpRemoveNode         Op = 4
	OpSetAttribute       Op = 5
	OpRemoveAttribute    Op = 6
	OpAddEventHandler    Op = 7
	OpRemoveEventHandler Op = 8
	OpRemount            Op = 9
)

// String returns the wire name of the opcode.
func (op Op) String() string {
	switch op {
	case OpReplaceText:
		return "replace_text"
	case OpAddNode:
		return "add_node"
	case OpReplaceNode:
		return "replace_node"
	case OpRemoveNode:
		return "remove_node"
	case OpSetAttribute:
		return "set_attribute"
	case OpRemoveAttribute:
		return "remove_attribute"
	case OpAddEventHandler:
		return "add_event_handler"
	case OpRemoveEventHandler:
		return "remove_event_handler"
	case OpRemount:
		return "remount"
	default:
		return "unknown"
	}
}

// Known reports whether op is one this client understands.
func (op Op) Known() bool {
	return op >= OpReplaceText && op <= OpRemount
}

var (
	// ErrMalformedPatch is returned when a patch does not have the shape
	// its opcode requires.
	ErrMalformedPatch = errors.New("protocol: malformed patch")

	// ErrUnknownOp is returned for opcodes this client does not know. The
	// decoded Patch still carries Op and Path.
	ErrUnknownOp = errors.New("protocol: unknown patch op")
)

// Patch is one decoded tree mutation. Which payload fields are set depends
// on Op.
type Patch struct {
	Op   Op
	Path dom.Path

	Text    string            // OpReplaceText
	Node    *vdom.Node        // OpAddNode, OpReplaceNode
	Key     string            // OpSetAttribute, OpRemoveAttribute
	Value   any               // OpSetAttribute
	Handler HandlerDescriptor // OpAddEventHandler
	Event   string            // OpRemoveEventHandler
	Program string            // OpRemount
	Params  map[string]any    // OpRemount
}

// DecodePatch decodes one [op, path, payload...] array.
func DecodePatch(raw json.RawMessage) (Patch, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return Patch{}, fmt.Errorf("%w: %v", ErrMalformedPatch, err)
	}
	if len(parts) < 2 {
		return Patch{}, fmt.Errorf("%w: want at least op and path", ErrMalformedPatch)
	}

	var p Patch
	if err := json.Unmarshal(parts[0], &p.Op); err != nil {
		return Patch{}, fmt.Errorf("%w: op: %v", ErrMalformedPatch, err)
	}
	path, err := decodePath(parts[1])
	if err != nil {
		return Patch{Op: p.Op}, err
	}
	p.Path = path

	if !p.Op.Known() {
		return p, fmt.Errorf("%w: %d", ErrUnknownOp, p.Op)
	}

	payload := parts[2:]
	need := 1
	if p.Op == OpRemoveNode {
		need = 0
	}
	if len(payload) < need {
		return p, fmt.Errorf("%w: %s needs a payload", ErrMalformedPatch, p.Op)
	}

	if err := p.decodePayload(payload); err != nil {
		return p, fmt.Errorf("%w: %s: %v", ErrMalformedPatch, p.Op, err)
	}
	return p, nil
}

func (p *Patch) decodePayload(payload []json.RawMessage) error {
	switch p.Op {
	case OpReplaceText:
		return json.Unmarshal(payload[0], &p.Text)

	case OpAddNode, OpReplaceNode:
		n, err := vdom.Decode(payload[0])
		if err != nil {
			return err
		}
		p.Node = n
		return nil

	case OpRemoveNode:
		return nil

	case OpSetAttribute:
		var kv []json.RawMessage
		if err := json.Unmarshal(payload[0], &kv); err != nil {
			return err
		}
		if len(kv) != 2 {
			return fmt.Errorf("want [key, value], got %d elements", len(kv))
		}
		if err := json.Unmarshal(kv[0], &p.Key); err != nil {
			return err
		}
		if p.Key == "" {
			return errors.New("empty attribute key")
		}
		return json.Unmarshal(kv[1], &p.Value)

	case OpRemoveAttribute:
		if err := json.Unmarshal(payload[0], &p.Key); err != nil {
			return err
		}
		if p.Key == "" {
			return errors.New("empty attribute key")
		}
		return nil

	case OpAddEventHandler:
		return json.Unmarshal(payload[0], &p.Handler)

	case OpRemoveEventHandler:
		if err := json.Unmarshal(payload[0], &p.Event); err != nil {
			return err
		}
		if p.Event == "" {
			return errors.New("empty event name")
		}
		return nil

	case OpRemount:
		if err := json.Unmarshal(payload[0], &p.Program); err != nil {
			return err
		}
		if p.Program == "" {
			return errors.New("empty program name")
		}
		p.Params = map[string]any{}
		if len(payload) > 1 {
			var params map[string]any
			if err := json.Unmarshal(payload[1], &params); err != nil {
				return err
			}
			if params != nil {
				p.Params = params
			}
		}
		return nil
	}
	return nil
}

func decodePath(raw json.RawMessage) (dom.Path, error) {
	var idx []int
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, fmt.Errorf("%w: path: %v", ErrMalformedPatch, err)
	}
	for _, i := range idx {
		if i < 0 {
			return nil, fmt.Errorf("%w: negative path index %d", ErrMalformedPatch, i)
		}
	}
	if idx == nil {
		idx = []int{}
	}
	return dom.Path(idx), nil
}

// MarshalJSON encodes p as [op, path, payload...].
func (p Patch) MarshalJSON() ([]byte, error) {
	path := p.Path
	if path == nil {
		path = dom.Path{}
	}
	out := []any{int(p.Op), []int(path)}

	switch p.Op {
	case OpReplaceText:
		out = append(out, p.Text)
	case OpAddNode, OpReplaceNode:
		out = append(out, p.Node)
	case OpRemoveNode:
	case OpSetAttribute:
		out = append(out, []any{p.Key, p.Value})
	case OpRemoveAttribute:
		out = append(out, p.Key)
	case OpAddEventHandler:
		out = append(out, p.Handler)
	case OpRemoveEventHandler:
		out = append(out, p.Event)
	case OpRemount:
		params := p.Params
		if params == nil {
			params = map[string]any{}
		}
		out = append(out, p.Program, params)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownOp, p.Op)
	}
	return json.Marshal(out)
}

// ReplaceText builds an op 1 patch.
func ReplaceText(path dom.Path, text string) Patch {
	return Patch{Op: OpReplaceText, Path: path, Text: text}
}

// AddNode builds an op 2 patch.
func AddNode(path dom.Path, n *vdom.Node) Patch {
	return Patch{Op: OpAddNode, Path: path, Node: n}
}

// ReplaceNode builds an op 3 patch.
func ReplaceNode(path dom.Path, n *vdom.Node) Patch {
	return Patch{Op: OpReplaceNode, Path: path, Node: n}
}

// RemoveNode builds an op 4 patch.
func RemoveNode(path dom.Path) Patch {
	return Patch{Op: OpRemoveNode, Path: path}
}

// SetAttribute builds an op 5 patch.
func SetAttribute(path dom.Path, key string, value any) Patch {
	return Patch{Op: OpSetAttribute, Path: path, Key: key, Value: value}
}

// RemoveAttribute builds an op 6 patch.
func RemoveAttribute(path dom.Path, key string) Patch {
	return Patch{Op: OpRemoveAttribute, Path: path, Key: key}
}

// AddEventHandler builds an op 7 patch.
func AddEventHandler(path dom.Path, event string, preventDefault bool) Patch {
	return Patch{Op: OpAddEventHandler, Path: path, Handler: HandlerDescriptor{Event: event, PreventDefault: preventDefault}}
}

// RemoveEventHandler builds an op 8 patch.
func RemoveEventHandler(path dom.Path, event string) Patch {
	return Patch{Op: OpRemoveEventHandler, Path: path, Event: event}
}

// Remount builds an op 9 patch.
func Remount(path dom.Path, program string, params map[string]any) Patch {
	return Patch{Op: OpRemount, Path: path, Program: program, Params: params}
}
