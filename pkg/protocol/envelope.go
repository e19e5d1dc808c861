package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vango-dev/whistle/pkg/dom"
	"github.com/vango-dev/whistle/pkg/vdom"
)

// Envelope types.
const (
	TypeJoin   = "join"
	TypeLeave  = "leave"
	TypeEvent  = "event"
	TypeMsg    = "msg"
	TypeRoute  = "route"
	TypeRender = "render"
)

// TagPushHistory is the msg tag that pushes a navigation-history entry:
// ["push_history", uri] or ["push_history", uri, state].
const TagPushHistory = "push_history"

// ErrMalformedMessage is returned for inbound data that is not an envelope
// or an array of envelopes.
var ErrMalformedMessage = errors.New("protocol: malformed message")

// Join asks the server to start a program.
type Join struct {
	Type      string         `json:"type"`
	RequestID string         `json:"requestId"`
	Program   string         `json:"program"`
	Params    map[string]any `json:"params"`
	DOM       *vdom.Node     `json:"dom"`
	URI       string         `json:"uri"`
}

// NewJoin builds a join envelope.
func NewJoin(requestID, program string, params map[string]any, tree *vdom.Node, uri string) Join {
	if params == nil {
		params = map[string]any{}
	}
	return Join{
		Type:      TypeJoin,
		RequestID: requestID,
		Program:   program,
		Params:    params,
		DOM:       tree,
		URI:       uri,
	}
}

// Leave ends a program on the server.
type Leave struct {
	Type    string `json:"type"`
	Program string `json:"program"`
}

// NewLeave builds a leave envelope for a server-assigned program id.
func NewLeave(programID string) Leave {
	return Leave{Type: TypeLeave, Program: programID}
}

// Event forwards a user interaction.
type Event struct {
	Type    string `json:"type"`
	Program string `json:"program"`
	Handler string `json:"handler"`
	Args    []any  `json:"args"`
}

// NewEvent builds an event envelope.
func NewEvent(programID, handler string, args ...any) Event {
	if args == nil {
		args = []any{}
	}
	return Event{Type: TypeEvent, Program: programID, Handler: handler, Args: args}
}

// HandlerName is the handler key the server registered for an event on the
// node at path: "<path>.<event>".
func HandlerName(path dom.Path, event string) string {
	return path.String() + "." + event
}

// Msg carries an application message to the program.
type Msg struct {
	Type    string `json:"type"`
	Program string `json:"program"`
	Payload any    `json:"payload"`
}

// NewMsg builds a msg envelope.
func NewMsg(programID string, payload any) Msg {
	return Msg{Type: TypeMsg, Program: programID, Payload: payload}
}

// Route tells the program the client navigated.
type Route struct {
	Type    string `json:"type"`
	Program string `json:"program"`
	URI     string `json:"uri"`
}

// NewRoute builds a route envelope.
func NewRoute(programID, uri string) Route {
	return Route{Type: TypeRoute, Program: programID, URI: uri}
}

// Inbound is any message from the server.
type Inbound struct {
	Type      string            `json:"type,omitempty"`
	Program   string            `json:"program,omitempty"`
	RequestID string            `json:"requestId,omitempty"`
	ProgramID string            `json:"programId,omitempty"`
	Patches   []json.RawMessage `json:"dom_patches,omitempty"`
	Payload   json.RawMessage   `json:"payload,omitempty"`
}

// IsJoinAck reports whether m answers a join.
func (m *Inbound) IsJoinAck() bool {
	return m.RequestID != "" && m.ProgramID != ""
}

// MsgTag splits a msg payload of the form [tag, args...]. ok is false for
// any other payload shape.
func (m *Inbound) MsgTag() (tag string, args []json.RawMessage, ok bool) {
	var parts []json.RawMessage
	if err := json.Unmarshal(m.Payload, &parts); err != nil || len(parts) == 0 {
		return "", nil, false
	}
	if err := json.Unmarshal(parts[0], &tag); err != nil {
		return "", nil, false
	}
	return tag, parts[1:], true
}

// DecodeInbound parses one envelope or an array of envelopes. Elements of an
// array are decoded independently: the ones that decode are returned in
// order even when others fail, and the failures are joined into err.
func DecodeInbound(data []byte) ([]Inbound, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrMalformedMessage
	}

	switch data[0] {
	case '{':
		var m Inbound
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		return []Inbound{m}, nil

	case '[':
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		msgs := make([]Inbound, 0, len(raws))
		var errs []error
		for i, raw := range raws {
			var m Inbound
			if err := json.Unmarshal(raw, &m); err != nil {
				errs = append(errs, fmt.Errorf("%w: element %d: %v", ErrMalformedMessage, i, err))
				continue
			}
			msgs = append(msgs, m)
		}
		return msgs, errors.Join(errs...)

	default:
		return nil, ErrMalformedMessage
	}
}

// JoinAck is the server's answer to a join.
type JoinAck struct {
	RequestID string `json:"requestId"`
	ProgramID string `json:"programId"`
}

// Render is a patch batch for one program.
type Render struct {
	Type    string  `json:"type"`
	Program string  `json:"program"`
	Patches []Patch `json:"dom_patches"`
}

// NewRender builds a render envelope.
func NewRender(programID string, patches ...Patch) Render {
	if patches == nil {
		patches = []Patch{}
	}
	return Render{Type: TypeRender, Program: programID, Patches: patches}
}

// ServerMsg is a msg sent by the server to a program.
type ServerMsg struct {
	Type    string `json:"type"`
	Program string `json:"program"`
	Payload []any  `json:"payload"`
}

// NewPushHistory builds the msg that pushes uri onto the client's history.
func NewPushHistory(programID, uri string) ServerMsg {
	return ServerMsg{Type: TypeMsg, Program: programID, Payload: []any{TagPushHistory, uri}}
}
