package client

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vango-dev/whistle/pkg/dom"
	"github.com/vango-dev/whistle/pkg/protocol"
	"github.com/vango-dev/whistle/pkg/vdom"
)

// MessageHandler receives msg payloads that are not handled by the client
// itself.
type MessageHandler func(p *Program, payload json.RawMessage)

// MountOption configures a Program at mount time.
type MountOption func(*mountConfig)

type mountConfig struct {
	hooks     Hooks
	onMessage MessageHandler
}

// WithHooks registers selector-scoped lifecycle hooks. Nested programs
// mounted by the program inherit them.
func WithHooks(h Hooks) MountOption {
	return func(c *mountConfig) { c.hooks = h }
}

// WithMessageHandler sets the callback for application messages. Nested
// programs inherit it.
func WithMessageHandler(fn MessageHandler) MountOption {
	return func(c *mountConfig) { c.onMessage = fn }
}

type handlerKey struct {
	path  string
	event string
}

type activeHandler struct {
	node   dom.Node
	detach func()
}

type pendingMount struct {
	placeholder dom.Node
	name        string
	params      map[string]any
}

// Program is one server-side session bound to a subtree.
type Program struct {
	socket *Socket
	parent *Program

	name   string
	params map[string]any
	root   dom.Node

	state        State
	id           string
	requestID    string
	pendingLeave bool
	joinSent     time.Time

	hooks     []hook
	onMessage MessageHandler
	handlers  map[handlerKey]activeHandler
	children  []*Program
	pending   []pendingMount

	executor *Executor
	logger   *slog.Logger
}

func newProgram(s *Socket, parent *Program, root dom.Node, name string, params map[string]any) *Program {
	if params == nil {
		params = map[string]any{}
	}
	p := &Program{
		socket:   s,
		parent:   parent,
		name:     name,
		params:   params,
		root:     root,
		state:    StateNone,
		handlers: make(map[handlerKey]activeHandler),
		logger:   s.logger.With("program", name),
	}
	p.executor = newExecutor(p)
	return p
}

// Name returns the program name.
func (p *Program) Name() string { return p.name }

// ID returns the server-assigned id, or "" before the join ack.
func (p *Program) ID() string { return p.id }

// State returns the lifecycle state.
func (p *Program) State() State { return p.state }

// Root returns the node the program is mounted on.
func (p *Program) Root() dom.Node { return p.root }

// Params returns the mount params.
func (p *Program) Params() map[string]any { return p.params }

// Parent returns the program that mounted p, or nil.
func (p *Program) Parent() *Program { return p.parent }

// Children returns the nested programs mounted by p.
func (p *Program) Children() []*Program {
	out := make([]*Program, len(p.children))
	copy(out, p.children)
	return out
}

// HandlerCount returns the number of active event handlers.
func (p *Program) HandlerCount() int { return len(p.handlers) }

// HasHandler reports whether a handler for event is attached at path.
func (p *Program) HasHandler(path dom.Path, event string) bool {
	_, ok := p.handlers[handlerKey{path: path.String(), event: event}]
	return ok
}

func (p *Program) transition(to State) error {
	from := p.state
	if !from.CanTransition(to) {
		err := NewProgramError(p, "transition", ErrInvalidTransition)
		p.logger.Warn("invalid state transition", "from", from, "to", to)
		return err
	}
	p.state = to
	p.socket.metrics.programState(from, to)
	return nil
}

// join sends a join with a fresh request id and a fresh snapshot of the
// subtree. The program must be in StateNone and the transport open.
func (p *Program) join() {
	if err := p.transition(StateJoining); err != nil {
		return
	}

	p.requestID = uuid.NewString()
	msg := protocol.NewJoin(p.requestID, p.name, p.params, vdom.SerializeRoot(p.root), p.socket.surface.Location())
	if err := p.socket.Send(msg); err != nil {
		p.logger.Warn("join not sent", "error", err)
		p.requestID = ""
		p.transition(StateNone)
		return
	}

	p.joinSent = p.socket.clock.Now()
	p.socket.byRequest[p.requestID] = p
	p.logger.Debug("join sent", "request_id", p.requestID)
}

func (p *Program) handleJoinAck(programID string) {
	delete(p.socket.byRequest, p.requestID)
	p.requestID = ""
	p.id = programID
	p.socket.byID[programID] = p
	p.logger = p.logger.With("program_id", programID)
	p.socket.metrics.joinObserved(p.socket.clock.Now().Sub(p.joinSent))

	if p.pendingLeave {
		p.logger.Debug("join acknowledged with leave pending")
		if err := p.transition(StateLeaving); err != nil {
			return
		}
		p.sendLeave()
		p.finishLeave()
		return
	}

	if err := p.transition(StateJoined); err != nil {
		return
	}
	p.logger.Info("program joined")
}

// Leave ends the program. A joined program sends a leave and finishes at
// once. A program still joining finishes when its join is acknowledged, so
// a leave is never sent without a server id. A program that never joined
// finishes without a message. Leaving detaches every handler, leaves the
// nested programs first and stops tracking the program.
func (p *Program) Leave() {
	switch p.state {
	case StateJoined:
		for _, child := range p.Children() {
			child.Leave()
		}
		if err := p.transition(StateLeaving); err != nil {
			return
		}
		p.sendLeave()
		p.finishLeave()
	case StateJoining:
		p.pendingLeave = true
		p.logger.Debug("leave deferred until join ack")
	case StateNone:
		p.finishLeave()
	}
}

func (p *Program) sendLeave() {
	if err := p.socket.Send(protocol.NewLeave(p.id)); err != nil {
		p.logger.Warn("leave not sent", "error", err)
	}
}

func (p *Program) finishLeave() {
	for _, child := range p.Children() {
		child.Leave()
	}
	p.detachAll()
	p.pending = nil
	p.pendingLeave = false

	if err := p.transition(StateLeft); err != nil {
		return
	}
	if p.id != "" {
		delete(p.socket.byID, p.id)
	}
	if p.requestID != "" {
		delete(p.socket.byRequest, p.requestID)
		p.requestID = ""
	}
	if err := p.socket.removeProgram(p); err != nil {
		p.logger.Error("program registry inconsistent", "error", err)
	}
	if p.parent != nil {
		p.parent.removeChild(p)
	}
	p.logger.Info("program left")
}

// reset drops all server-side state after the transport closed. A program
// with a deferred leave finishes instead.
func (p *Program) reset() {
	if p.state != StateNone {
		p.transition(StateNone)
	}
	if p.pendingLeave {
		p.finishLeave()
		return
	}
	p.id = ""
	p.requestID = ""
	p.logger = p.socket.logger.With("program", p.name)
	p.detachAll()
}

func (p *Program) removeChild(child *Program) {
	for i, c := range p.children {
		if c == child {
			p.children = append(p.children[:i], p.children[i+1:]...)
			return
		}
	}
}

func (p *Program) detachAll() {
	for key, h := range p.handlers {
		h.detach()
		delete(p.handlers, key)
	}
}

// handleRender applies a patch batch in order, then mounts the nested
// programs the batch discovered.
func (p *Program) handleRender(m protocol.Inbound) {
	if p.state != StateJoined {
		p.logger.Debug("render ignored", "state", p.state)
		return
	}

	span := startRenderSpan(p.socket.tracer, p, len(m.Patches))
	for i, raw := range m.Patches {
		if err := p.executor.ApplyRaw(raw); err != nil {
			span.recordError(err)
			p.logger.Warn("patch skipped", "index", i, "error", err)
		}
		if p.state != StateJoined {
			// A hook left the program.
			break
		}
	}
	mounts := p.flushMounts()
	span.end(mounts)
}

// flushMounts mounts the nested programs queued during the batch whose
// placeholders are still in the tree.
func (p *Program) flushMounts() int {
	pending := p.pending
	p.pending = nil

	mounted := 0
	for _, m := range pending {
		if !dom.Contains(p.root, m.placeholder) {
			p.logger.Debug("nested program discarded", "name", m.name)
			continue
		}
		p.socket.mountChild(p, m.placeholder, m.name, m.params)
		mounted++
	}
	return mounted
}

func (p *Program) queueMount(placeholder dom.Node, name string, params map[string]any) {
	p.pending = append(p.pending, pendingMount{placeholder: placeholder, name: name, params: params})
}

// dropPending forgets queued mounts whose placeholder lies in subtree.
func (p *Program) dropPending(subtree dom.Node) {
	kept := p.pending[:0]
	for _, m := range p.pending {
		if !dom.Contains(subtree, m.placeholder) {
			kept = append(kept, m)
		}
	}
	p.pending = kept
}

func (p *Program) handleMsg(m protocol.Inbound) {
	tag, args, ok := m.MsgTag()
	if ok && tag == protocol.TagPushHistory {
		p.pushHistory(args)
		return
	}
	if p.onMessage != nil {
		p.onMessage(p, m.Payload)
		return
	}
	p.logger.Debug("message ignored", "tag", tag)
}

func (p *Program) pushHistory(args []json.RawMessage) {
	var uri string
	if len(args) == 0 || json.Unmarshal(args[0], &uri) != nil || uri == "" {
		p.logger.Warn("push_history without uri")
		return
	}
	var state any = map[string]any{"uri": uri}
	if len(args) > 1 {
		var custom any
		if err := json.Unmarshal(args[1], &custom); err == nil && custom != nil {
			state = custom
		}
	}
	p.socket.surface.PushHistory(state, uri)
}

// pushEvent forwards a fired handler. Events are dropped unless the program
// is joined on an open transport.
func (p *Program) pushEvent(handler string, arg any) {
	if p.state != StateJoined || !p.socket.open {
		p.socket.metrics.eventDropped()
		p.logger.Debug("event dropped", "handler", handler, "state", p.state)
		return
	}
	if err := p.socket.Send(protocol.NewEvent(p.id, handler, arg)); err != nil {
		p.socket.metrics.eventDropped()
		p.logger.Warn("event not sent", "handler", handler, "error", err)
		return
	}
	p.socket.metrics.eventSent()
}

// Send delivers an application message to the server-side program.
func (p *Program) Send(payload any) error {
	if p.state != StateJoined {
		return NewProgramError(p, "send", ErrNotJoined)
	}
	return p.socket.Send(protocol.NewMsg(p.id, payload))
}

// Navigate pushes uri onto the navigation history and tells the server.
// The history entry is pushed even when the route cannot be sent.
func (p *Program) Navigate(uri string) error {
	p.socket.surface.PushHistory(map[string]any{"uri": uri}, uri)
	if p.state != StateJoined {
		return NewProgramError(p, "navigate", ErrNotJoined)
	}
	return p.socket.Send(protocol.NewRoute(p.id, uri))
}
