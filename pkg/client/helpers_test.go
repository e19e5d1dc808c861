package client_test

import (
	"testing"

	"github.com/vango-dev/whistle/pkg/client"
	"github.com/vango-dev/whistle/pkg/wtest"
)

const appHTML = `<div id="app"><input id="count" value="0"><span>0</span><div id="slot"></div></div>`

// joined returns a harness with program "counter" mounted on #app and
// joined as p1.
func joined(t *testing.T, opts ...client.MountOption) (*wtest.Harness, *client.Program) {
	t.Helper()
	h := wtest.NewHarness(t, appHTML)
	h.Connect(t)
	p := h.Mount(t, "#app", "counter", nil, opts...)
	h.Ack(t, "counter", "p1")
	if p.State() != client.StateJoined {
		t.Fatalf("state = %v, want joined", p.State())
	}
	h.Transport.ClearSent()
	return h, p
}

func findChild(p *client.Program, name string) *client.Program {
	for _, c := range p.Children() {
		if c.Name() == name {
			return c
		}
	}
	return nil
}
