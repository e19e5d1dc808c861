package client

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vango-dev/whistle/pkg/dom"
	"github.com/vango-dev/whistle/pkg/events"
	"github.com/vango-dev/whistle/pkg/protocol"
	"github.com/vango-dev/whistle/pkg/vdom"
)

// Patch error reasons, as reported in whistle_patch_errors_total.
const (
	reasonMalformed = "malformed"
	reasonUnknownOp = "unknown_op"
	reasonPath      = "path"
	reasonApply     = "apply"
)

// Executor applies patches to the subtree of one program.
type Executor struct {
	program  *Program
	builder  *vdom.Builder
	binder   *events.Binder
	declared []declaredEvents
}

// declaredEvents are the "on" events of an element built by the current
// patch, bound once the element is in the tree.
type declaredEvents struct {
	node   dom.Node
	key    string
	events []string
}

func newExecutor(p *Program) *Executor {
	e := &Executor{
		program: p,
		binder:  p.socket.binder,
	}
	e.builder = &vdom.Builder{
		Surface:   p.socket.surface,
		OnProgram: p.queueMount,
		OnEvents: func(el dom.Node, key string, names []string) {
			e.declared = append(e.declared, declaredEvents{node: el, key: key, events: names})
		},
	}
	return e
}

// ApplyRaw decodes and applies one wire patch. Unknown ops are ignored and
// reported as an error wrapping protocol.ErrUnknownOp.
func (e *Executor) ApplyRaw(raw json.RawMessage) error {
	patch, err := protocol.DecodePatch(raw)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownOp) {
			e.program.socket.metrics.patchError(reasonUnknownOp)
		} else {
			e.program.socket.metrics.patchError(reasonMalformed)
		}
		return err
	}
	return e.Apply(patch)
}

// Apply applies one decoded patch. Paths, payloads and op 9 params are
// checked before anything is unmounted or mutated, so a rejected patch
// leaves the tree as it was.
func (e *Executor) Apply(patch protocol.Patch) error {
	p := e.program
	m := p.socket.metrics

	node, err := dom.Resolve(p.root, patch.Path)
	if err != nil {
		m.patchError(reasonPath)
		return fmt.Errorf("%s: %w", patch.Op, err)
	}

	switch patch.Op {
	case protocol.OpReplaceText:
		err = e.replaceText(node, patch)
	case protocol.OpAddNode:
		err = e.addNode(node, patch)
	case protocol.OpReplaceNode:
		err = e.replaceNode(node, patch)
	case protocol.OpRemoveNode:
		err = e.removeNode(node, patch)
	case protocol.OpSetAttribute:
		dom.SetAttribute(p.socket.surface, node, patch.Key, patch.Value)
	case protocol.OpRemoveAttribute:
		dom.RemoveAttribute(p.socket.surface, node, patch.Key)
	case protocol.OpAddEventHandler:
		err = e.addHandler(node, patch)
	case protocol.OpRemoveEventHandler:
		e.removeHandler(patch)
	case protocol.OpRemount:
		err = e.remount(node, patch)
	default:
		m.patchError(reasonUnknownOp)
		return fmt.Errorf("%w: %d", protocol.ErrUnknownOp, patch.Op)
	}

	if err != nil {
		m.patchError(reasonApply)
		return fmt.Errorf("%s [%s]: %w", patch.Op, patch.Path, err)
	}
	m.patchApplied(patch.Op.String())
	return nil
}

// replaceText sets the text of a text node. Any other node is replaced by
// a text node.
func (e *Executor) replaceText(node dom.Node, patch protocol.Patch) error {
	s := e.program.socket.surface
	if node.Type() == dom.TextNode {
		s.SetText(node, patch.Text)
		return nil
	}
	return e.replace(node, patch.Path, s.CreateTextNode(patch.Text))
}

func (e *Executor) addNode(parent dom.Node, patch protocol.Patch) error {
	built, err := e.build(patch.Node)
	if err != nil {
		return err
	}
	e.program.socket.surface.AppendChild(parent, built)
	if err := e.bindDeclared(); err != nil {
		return err
	}
	e.program.runCreating(built)
	return nil
}

func (e *Executor) replaceNode(node dom.Node, patch protocol.Patch) error {
	built, err := e.build(patch.Node)
	if err != nil {
		return err
	}
	if err := e.replace(node, patch.Path, built); err != nil {
		return err
	}
	if err := e.bindDeclared(); err != nil {
		return err
	}
	e.program.runCreating(built)
	return nil
}

func (e *Executor) build(n *vdom.Node) (dom.Node, error) {
	e.declared = nil
	built, err := e.builder.Build(n)
	if err != nil {
		e.declared = nil
		return nil, err
	}
	return built, nil
}

// bindDeclared binds the "on" events of the elements just inserted. The
// handler is named "<key>.<event>" when the element has a key, and after
// its path otherwise, and is keyed by (path, event) like an op 7 handler.
func (e *Executor) bindDeclared() error {
	declared := e.declared
	e.declared = nil

	p := e.program
	for _, d := range declared {
		path, ok := dom.PathOf(p.root, d.node)
		if !ok {
			continue
		}
		for _, event := range d.events {
			name := protocol.HandlerName(path, event)
			if d.key != "" {
				name = d.key + "." + event
			}
			if err := e.bind(d.node, path, protocol.HandlerDescriptor{Event: event}, name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Executor) replace(old dom.Node, path dom.Path, replacement dom.Node) error {
	p := e.program
	e.beforeRemove(old, false)
	p.socket.surface.ReplaceNode(old, replacement)
	if len(path) == 0 {
		p.root = replacement
	}
	return nil
}

func (e *Executor) removeNode(node dom.Node, patch protocol.Patch) error {
	if len(patch.Path) == 0 {
		return ErrRemoveRoot
	}
	e.beforeRemove(node, false)
	e.program.socket.surface.RemoveNode(node)
	return nil
}

// beforeRemove runs before subtree is removed, replaced or remounted:
// nested programs rooted inside it leave (children first), removing hooks
// run, and handlers bound inside it are detached. keepRoot preserves the
// handlers bound on subtree itself.
func (e *Executor) beforeRemove(subtree dom.Node, keepRoot bool) {
	p := e.program

	for _, child := range p.Children() {
		if dom.Contains(subtree, child.root) {
			child.Leave()
		}
	}
	p.dropPending(subtree)
	p.runRemoving(subtree)

	for key, h := range p.handlers {
		if keepRoot && h.node == subtree {
			continue
		}
		if dom.Contains(subtree, h.node) {
			h.detach()
			delete(p.handlers, key)
		}
	}
}

func (e *Executor) addHandler(node dom.Node, patch protocol.Patch) error {
	return e.bind(node, patch.Path, patch.Handler, protocol.HandlerName(patch.Path, patch.Handler.Event))
}

// bind attaches a handler keyed by (path, event), replacing any handler
// already bound under that key. Fired events are sent as name.
func (e *Executor) bind(node dom.Node, path dom.Path, d protocol.HandlerDescriptor, name string) error {
	p := e.program
	key := handlerKey{path: path.String(), event: d.Event}
	if old, ok := p.handlers[key]; ok {
		old.detach()
		delete(p.handlers, key)
	}

	detach, err := e.binder.Attach(node, d, func(arg any) {
		p.pushEvent(name, arg)
	})
	if err != nil {
		return err
	}
	p.handlers[key] = activeHandler{node: node, detach: detach}
	return nil
}

// removeHandler calls the detach recorded for (path, event). Unknown keys
// are a no-op.
func (e *Executor) removeHandler(patch protocol.Patch) {
	p := e.program
	key := handlerKey{path: patch.Path.String(), event: patch.Event}
	h, ok := p.handlers[key]
	if !ok {
		p.logger.Debug("no handler to remove", "path", key.path, "event", key.event)
		return
	}
	h.detach()
	delete(p.handlers, key)
}

// remount unmounts whatever is mounted on node and queues a new nested
// program there for the end of the batch.
func (e *Executor) remount(node dom.Node, patch protocol.Patch) error {
	if len(patch.Path) == 0 {
		return ErrRemoveRoot
	}
	if node.Type() != dom.ElementNode {
		return fmt.Errorf("client: remount target is a %s node", node.Type())
	}
	if _, err := vdom.EncodeParams(patch.Program, patch.Params); err != nil {
		return err
	}
	p := e.program
	e.beforeRemove(node, true)
	if err := vdom.MarkPlaceholder(p.socket.surface, node, patch.Program, patch.Params); err != nil {
		return err
	}
	p.queueMount(node, patch.Program, patch.Params)
	return nil
}
