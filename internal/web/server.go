// Package web serves the gpiod status page and its JSON views over HTTP.
package web

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/sweeney/gpiod/internal/status"
)

// Server exposes a status.Tracker read-only over HTTP.
type Server struct {
	tracker *status.Tracker
	handler http.Handler
	srv     *http.Server
}

// New creates a Server for addr. Nothing listens until Start.
func New(addr string, tracker *status.Tracker) *Server {
	s := &Server{tracker: tracker}

	mux := http.NewServeMux()
	for path, h := range map[string]http.HandlerFunc{
		"/":                s.page,
		"/index.html":      s.page,
		"/index.json":      s.statusJSON,
		"/status.json":     s.statusJSON,
		"/interrupts.json": s.interruptsJSON,
		"/healthz":         s.health,
	} {
		mux.Handle(path, readOnly(h))
	}
	s.handler = mux
	s.srv = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Handler returns the routing handler, for mounting elsewhere.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the listen address and serves in the background. Bind
// failures are returned here rather than logged later.
func (s *Server) Start() (net.Addr, error) {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("http listen %s: %w", s.srv.Addr, err)
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("web: serve: %v", err)
		}
	}()
	return ln.Addr(), nil
}

// Shutdown stops serving, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// readOnly rejects anything but GET and HEAD.
func readOnly(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	})
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, s.tracker.Snapshot())
}

func (s *Server) statusJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, status.FormatJSON(s.tracker.Snapshot()))
}

func (s *Server) interruptsJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, status.FormatInterrupts(s.tracker.Snapshot()))
}

// health answers 200 with the connected client's id, or "idle".
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	snap := s.tracker.Snapshot()
	if snap.Session == nil {
		fmt.Fprintln(w, "ok idle")
		return
	}
	fmt.Fprintf(w, "ok client %s\n", snap.Session.ID)
}

func writeJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(body)
}
