// Package httpapi exposes the live reading, summary statistics, history
// window, and Prometheus metrics over HTTP while a recording session runs.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/kovar/sps5000x/internal/history"
	"github.com/kovar/sps5000x/internal/logger"
	"github.com/kovar/sps5000x/internal/psu"
	"github.com/kovar/sps5000x/internal/stats"
)

// StatusFunc reports the connection state and instrument identity for the
// health endpoint.
type StatusFunc func() (state, identity string)

// Server is a read-only HTTP view over one monitoring session.
type Server struct {
	addr    string
	log     logger.Logger
	metrics *Metrics
	board   *stats.Board
	window  *history.Window
	status  StatusFunc

	mu   sync.Mutex
	last *psu.Reading

	httpSrv *http.Server
}

// New creates a server for the given listen address. Start actually binds.
func New(addr string, board *stats.Board, window *history.Window) *Server {
	return &Server{
		addr:    addr,
		log:     logger.Default(),
		metrics: NewMetrics(),
		board:   board,
		window:  window,
		status:  func() (string, string) { return "unknown", "" },
	}
}

// SetLogger replaces the server's logger.
func (s *Server) SetLogger(l logger.Logger) {
	if l != nil {
		s.log = l
	}
}

// SetStatus wires the health endpoint to the session's state.
func (s *Server) SetStatus(fn StatusFunc) {
	if fn != nil {
		s.status = fn
	}
}

// Metrics returns the server's collectors for counter wiring.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Observe records a completed reading: it becomes the /api/reading payload
// and updates the gauges. Meant to hang off the poller's OnReading.
func (s *Server) Observe(r psu.Reading) {
	s.mu.Lock()
	s.last = &r
	s.mu.Unlock()
	s.metrics.ObserveReading(r)
	s.metrics.ObserveCycle(time.Since(r.At))
}

// Router builds the route table. Exposed for handler tests.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/reading", s.handleReading).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)

	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	return r
}

// Start serves in the background until Shutdown.
func (s *Server) Start() {
	s.httpSrv = &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		s.log.Info("[http] listening on %s", s.addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("[http] server stopped: %v", err)
		}
	}()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

type channelJSON struct {
	Voltage *float64 `json:"voltage"`
	Current *float64 `json:"current"`
	Power   *float64 `json:"power"`
	Mode    string   `json:"mode"`
}

type readingJSON struct {
	At       time.Time     `json:"at"`
	Channels []channelJSON `json:"channels"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	state, identity := s.status()
	s.respond(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"state":    state,
		"identity": identity,
	})
}

func (s *Server) handleReading(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	last := s.last
	s.mu.Unlock()

	if last == nil {
		s.respond(w, http.StatusNotFound, map[string]string{"error": "no reading yet"})
		return
	}

	out := readingJSON{At: last.At, Channels: make([]channelJSON, len(last.Channels))}
	for i, ch := range last.Channels {
		out.Channels[i] = channelJSON{
			Voltage: ch.Voltage,
			Current: ch.Current,
			Power:   ch.Power(),
			Mode:    string(ch.Mode),
		}
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	summaries := s.board.Summaries()
	out := make(map[string]stats.Summary, len(summaries))
	for q, summary := range summaries {
		out[q.Key()] = summary
	}
	s.respond(w, http.StatusOK, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("q")

	series := make(map[string][]history.Sample)
	for _, q := range s.window.Quantities() {
		key := q.Key()
		if filter != "" && key != filter {
			continue
		}
		series[key] = s.window.Series(q)
	}

	s.respond(w, http.StatusOK, map[string]interface{}{
		"span_seconds": s.window.Span().Seconds(),
		"series":       series,
	})
}

func (s *Server) respond(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("[http] response encoding failed: %v", err)
	}
}
