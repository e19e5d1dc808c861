package client

import (
	"fmt"
	"sort"

	"github.com/vango-dev/whistle/pkg/dom"
)

// HookFuncs are the lifecycle callbacks of one hook. Either may be nil.
type HookFuncs struct {
	// CreatingElement runs after a patch inserts a matching node.
	CreatingElement func(p *Program, n dom.Node)

	// RemovingElement runs before a patch removes or replaces a matching
	// node, while it is still attached.
	RemovingElement func(p *Program, n dom.Node)
}

// Hooks maps selectors to lifecycle callbacks.
type Hooks map[string]HookFuncs

type hook struct {
	selector *dom.Selector
	funcs    HookFuncs
}

// compileHooks parses every selector. Hooks run in selector order.
func compileHooks(h Hooks) ([]hook, error) {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	compiled := make([]hook, 0, len(keys))
	for _, k := range keys {
		sel, err := dom.ParseSelector(k)
		if err != nil {
			return nil, fmt.Errorf("client: hook: %w", err)
		}
		compiled = append(compiled, hook{selector: sel, funcs: h[k]})
	}
	return compiled, nil
}

// runCreating invokes CreatingElement for every node of subtree matched by
// a hook, in document order.
func (p *Program) runCreating(subtree dom.Node) {
	p.runHooks(subtree, func(f HookFuncs) func(*Program, dom.Node) { return f.CreatingElement })
}

// runRemoving invokes RemovingElement for every node of subtree matched by
// a hook, in document order.
func (p *Program) runRemoving(subtree dom.Node) {
	p.runHooks(subtree, func(f HookFuncs) func(*Program, dom.Node) { return f.RemovingElement })
}

func (p *Program) runHooks(subtree dom.Node, pick func(HookFuncs) func(*Program, dom.Node)) {
	if len(p.hooks) == 0 || subtree == nil {
		return
	}
	dom.Walk(subtree, func(n dom.Node) bool {
		for _, h := range p.hooks {
			fn := pick(h.funcs)
			if fn != nil && h.selector.Match(n) {
				fn(p, n)
			}
		}
		return true
	})
}
