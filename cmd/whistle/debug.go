package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// runner runs f on the session loop and waits for it.
type runner func(f func()) error

// debugRouter serves the page, the program list and the client metrics.
func debugRouter(s *session, gatherer prometheus.Gatherer, run runner) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/tree", func(w http.ResponseWriter, req *http.Request) {
		var page string
		if err := run(func() { page = s.doc.String() }); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(page))
	})

	r.Get("/programs", func(w http.ResponseWriter, req *http.Request) {
		var programs []programInfo
		if err := run(func() { programs = s.snapshot() }); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if programs == nil {
			programs = []programInfo{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(programs)
	})

	return r
}
