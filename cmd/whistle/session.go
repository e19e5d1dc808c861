package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vango-dev/whistle/internal/errors"
	"github.com/vango-dev/whistle/pkg/client"
	"github.com/vango-dev/whistle/pkg/dom"
	"github.com/vango-dev/whistle/pkg/dom/memdom"
)

// session is a page with its programs mounted. Its methods must run on the
// loop the sockets use.
type session struct {
	doc      *memdom.Document
	registry *client.Registry
	programs []*client.Program
	logger   *slog.Logger
}

func newSession(doc *memdom.Document, factory client.SocketFactory, logger *slog.Logger) *session {
	return &session{
		doc:      doc,
		registry: client.NewRegistry(factory),
		logger:   logger,
	}
}

// mount opens the socket of each mount point and mounts its program.
func (s *session) mount(points []mountPoint) error {
	for _, mp := range points {
		socket, err := s.registry.Open(mp.Socket)
		if err != nil {
			return err
		}
		p, err := socket.Mount(mp.Node, mp.Program, mp.Params)
		if err != nil {
			return err
		}
		s.programs = append(s.programs, p)
		s.logger.Info("program mounted", "program", mp.Program, "url", mp.Socket)
	}
	return nil
}

// exec runs one interactive command and reports whether the session should
// end.
//
//	fire <path> <event> [value]   dispatch event at path below <body>
//	back                          go back one history entry
//	tree                          print the page
//	programs                      list the mounted programs
//	quit                          end the session
func (s *session) exec(line string, out io.Writer) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "fire":
		if len(fields) < 3 {
			return false, fmt.Errorf("usage: fire <path> <event> [value]")
		}
		value := ""
		if len(fields) > 3 {
			value = strings.Join(fields[3:], " ")
		}
		return false, s.fire(fields[1], fields[2], value, len(fields) > 3)
	case "back":
		if !s.doc.Back() {
			fmt.Fprintln(out, "no history")
		}
		return false, nil
	case "tree":
		s.writeTree(out)
		return false, nil
	case "programs":
		return false, s.writePrograms(out)
	case "quit", "exit":
		return true, nil
	default:
		return false, errors.New("W302").WithDetail(fmt.Sprintf("Unknown command %q", fields[0])).
			WithSuggestion("Commands: fire, back, tree, programs, quit")
	}
}

// fire dispatches event at the node addressed by path from <body>. When
// setValue is true the node's value is set first, the way typing would.
func (s *session) fire(rawPath, event, value string, setValue bool) error {
	path, err := dom.ParsePath(rawPath)
	if err != nil {
		return err
	}
	body := s.doc.Body()
	if body == nil {
		return fmt.Errorf("page has no body")
	}
	target, err := dom.Resolve(body, path)
	if err != nil {
		return err
	}
	node, ok := target.(*memdom.Node)
	if !ok {
		return fmt.Errorf("path %s is not a page node", path)
	}
	if setValue {
		s.doc.SetValue(node, value)
	}
	s.doc.Dispatch(node, event)
	return nil
}

func (s *session) writeTree(w io.Writer) {
	fmt.Fprintln(w, s.doc.String())
}

// programInfo describes a program for the programs command and the debug
// server.
type programInfo struct {
	Name     string         `json:"name"`
	ID       string         `json:"id,omitempty"`
	State    string         `json:"state"`
	URL      string         `json:"url"`
	Parent   string         `json:"parent,omitempty"`
	Handlers int            `json:"handlers"`
	Params   map[string]any `json:"params"`
}

// snapshot lists every tracked program of every socket.
func (s *session) snapshot() []programInfo {
	var out []programInfo
	for _, socket := range s.registry.Sockets() {
		for _, p := range socket.Programs() {
			info := programInfo{
				Name:     p.Name(),
				ID:       p.ID(),
				State:    p.State().String(),
				URL:      socket.URL(),
				Handlers: p.HandlerCount(),
				Params:   p.Params(),
			}
			if parent := p.Parent(); parent != nil {
				info.Parent = parent.Name()
			}
			out = append(out, info)
		}
	}
	return out
}

func (s *session) writePrograms(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.snapshot())
}

// close leaves every program and closes the sockets.
func (s *session) close() error {
	return s.registry.Close()
}
