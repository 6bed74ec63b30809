// Package web provides the HTTP status, log and frame endpoints for the
// evcc-panel daemon.
package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/sweeney/evcc-panel/internal/logstore"
	"github.com/sweeney/evcc-panel/internal/status"
)

// Server serves the status pages over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	logs       *logstore.Store
}

// New creates a Server that reads state from the given tracker and log
// store.
func New(addr string, tracker *status.Tracker, logs *logstore.Store) *Server {
	s := &Server{tracker: tracker, logs: logs}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/logs", s.handleLogs)
	mux.HandleFunc("/frame.json", s.handleFrame)
	mux.HandleFunc("/debug/toggle", s.handleDebugToggle)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderIndex(w, s.tracker.View(), s.logs.Stats(), s.logs.Echo())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatStatus(s.tracker.View(), s.logs.Stats(), s.logs.Echo()))
}

// handleLogs renders the log ring, optionally narrowed by a
// ?level=error|warn|info|debug|verbose filter.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	stats := s.logs.Stats()
	filter := logstore.ParseLevel(r.URL.Query().Get("level"), stats.MinLevel)

	records := s.logs.Snapshot()
	visible := records[:0:0]
	for _, rec := range records {
		if rec.Level >= filter {
			visible = append(visible, rec)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderLogs(w, visible, stats)
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	v := s.tracker.View()
	w.Header().Set("Content-Type", "application/json")
	if !v.FrameValid {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"no frame rendered yet"}`))
		return
	}
	data, _ := json.MarshalIndent(v.Frame, "", "  ")
	w.Write(data)
}

func (s *Server) handleDebugToggle(w http.ResponseWriter, r *http.Request) {
	s.logs.SetEcho(!s.logs.Echo())
	state := "OFF"
	if s.logs.Echo() {
		state = "ON"
	}
	s.logs.Infof("Debug echo is now %s", state)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderDebugToggle(w, state)
}
