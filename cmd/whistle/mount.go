package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vango-dev/whistle/internal/errors"
	"github.com/vango-dev/whistle/pkg/dom"
	"github.com/vango-dev/whistle/pkg/dom/memdom"
)

// Mount point attributes.
const (
	attrSocket  = "data-whistle-socket"
	attrProgram = "data-whistle-program"
	attrParams  = "data-whistle-params"
)

// mountPoint is an element of the page that starts a program.
type mountPoint struct {
	Node    *memdom.Node
	Socket  string
	Program string
	Params  map[string]any
}

// scanMountPoints finds the elements carrying data-whistle-program, in
// document order. Mount points inside another mount point belong to the
// outer program and are skipped. defaultSocket fills in a missing
// data-whistle-socket.
func scanMountPoints(doc *memdom.Document, defaultSocket string) ([]mountPoint, error) {
	var points []mountPoint
	for _, n := range doc.QueryAll("[" + attrProgram + "]") {
		if insideAny(points, n) {
			continue
		}
		name, _ := n.Attribute(attrProgram)
		if name == "" {
			continue
		}

		mp := mountPoint{Node: n, Program: name, Socket: defaultSocket, Params: map[string]any{}}
		if url, ok := n.Attribute(attrSocket); ok && url != "" {
			mp.Socket = url
		}
		if raw, ok := n.Attribute(attrParams); ok && raw != "" {
			if err := json.Unmarshal([]byte(raw), &mp.Params); err != nil || mp.Params == nil {
				return nil, errors.New("W201").
					WithDetail(fmt.Sprintf("%s on program %q is not a JSON object", attrParams, name))
			}
		}
		points = append(points, mp)
	}
	if len(points) == 0 {
		return nil, errors.New("W301")
	}
	return points, nil
}

func insideAny(points []mountPoint, n *memdom.Node) bool {
	for _, p := range points {
		if dom.Contains(p.Node, n) {
			return true
		}
	}
	return false
}

// requireSockets checks that every mount point has a socket URL.
func requireSockets(points []mountPoint) error {
	for _, p := range points {
		if p.Socket == "" {
			return errors.New("W303").
				WithDetail(fmt.Sprintf("Program %q has no %s", p.Program, attrSocket)).
				WithSuggestion("Set socket.url in whistle.json")
		}
	}
	return nil
}

// loadPage parses the page at path, located at location.
func loadPage(path, location string) (*memdom.Document, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.New("W300").Wrap(err)
		}
		defer f.Close()
		r = f
	}
	doc, err := memdom.Parse(r, location)
	if err != nil {
		return nil, errors.New("W300").Wrap(err)
	}
	return doc, nil
}
