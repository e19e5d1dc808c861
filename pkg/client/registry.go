package client

import (
	"errors"
	"sort"
	"sync"
)

// SocketFactory creates the socket for an endpoint.
type SocketFactory func(url string) *Socket

// Registry keeps at most one socket per endpoint. Sockets are created on
// the first Open of their URL and live until Close.
type Registry struct {
	mu      sync.Mutex
	factory SocketFactory
	sockets map[string]*Socket
	closed  bool
}

// NewRegistry returns a registry that builds sockets with factory.
func NewRegistry(factory SocketFactory) *Registry {
	return &Registry{
		factory: factory,
		sockets: make(map[string]*Socket),
	}
}

// Open returns the socket for url, creating and connecting it on first use.
// It must be called from the loop goroutine the sockets run on.
func (r *Registry) Open(url string) (*Socket, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrSocketClosed
	}
	s, ok := r.sockets[url]
	if !ok {
		s = r.factory(url)
		r.sockets[url] = s
	}
	r.mu.Unlock()

	if err := s.Connect(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the socket for url without creating it.
func (r *Registry) Get(url string) (*Socket, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sockets[url]
	return s, ok
}

// Sockets returns every socket ordered by URL.
func (r *Registry) Sockets() []*Socket {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Socket, 0, len(r.sockets))
	for _, s := range r.sockets {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].url < out[j].url })
	return out
}

// Close closes every socket. Later Opens fail with ErrSocketClosed.
func (r *Registry) Close() error {
	r.mu.Lock()
	sockets := make([]*Socket, 0, len(r.sockets))
	for _, s := range r.sockets {
		sockets = append(sockets, s)
	}
	r.sockets = make(map[string]*Socket)
	r.closed = true
	r.mu.Unlock()

	var errs []error
	for _, s := range sockets {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
