// Package admin serves the operator HTTP API: state, intents, metrics and a
// websocket snapshot stream.
package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"spoofdefense-sim/internal/engine"
	"spoofdefense-sim/internal/scenario"
	"spoofdefense-sim/internal/sim"
)

const (
	wsBuffer       = 8
	wsWriteTimeout = 5 * time.Second
)

//go:embed templates/index.html
var content embed.FS

type Server struct {
	Sim      *sim.Simulator
	metrics  http.Handler
	tpl      *template.Template
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewServer creates an admin server for sim. metrics may be nil to disable
// the /metrics endpoint.
func NewServer(s *sim.Simulator, metrics http.Handler) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	return &Server{
		Sim:      s,
		metrics:  metrics,
		tpl:      tpl,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		logger:   slog.Default().With("component", "admin"),
	}
}

// Router returns the chi router with every admin route mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/state", s.handleState)
	r.Get("/scenarios", s.handleScenarios)
	r.Get("/events", s.handleEvents)
	r.Get("/ws", s.handleWebSocket)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Post("/scenario/{id}", s.intent(func(r *http.Request) error {
		return s.Sim.SelectScenario(chi.URLParam(r, "id"))
	}))
	r.Post("/start", s.intent(func(*http.Request) error { return s.Sim.Start() }))
	r.Post("/pause", s.intent(func(*http.Request) error { return s.Sim.Pause() }))
	r.Post("/resume", s.intent(func(*http.Request) error { return s.Sim.Resume() }))
	r.Post("/toggle-pause", s.intent(func(*http.Request) error { return s.Sim.TogglePause() }))
	r.Post("/reset", s.intent(func(*http.Request) error {
		s.Sim.Reset()
		return nil
	}))
	r.Post("/defense", s.intent(func(*http.Request) error { return s.Sim.ActivateDefense() }))
	r.Post("/alert/dismiss", s.intent(func(*http.Request) error { return s.Sim.DismissAlert() }))
	r.Post("/zone/{id}", s.intent(func(r *http.Request) error {
		return s.Sim.SelectZone(chi.URLParam(r, "id"))
	}))
	r.Post("/intensity", s.intent(s.setIntensity))
	r.Post("/drones", s.intent(s.setDrones))
	return r
}

// Start serves the API on addr until ctx is done. status, if non-nil, is told
// when the listener is up and when it stops.
func (s *Server) Start(ctx context.Context, addr string, status sim.AdminStatusWriter) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: s.Router(), ReadHeaderTimeout: 5 * time.Second}
	if status != nil {
		status.SetAdminStatus(true)
		defer status.SetAdminStatus(false)
	}
	s.logger.Info("admin API listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// badRequest marks parameter errors that map to 400.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

type stateResponse struct {
	RunID    string       `json:"run_id"`
	Briefing string       `json:"briefing,omitempty"`
	State    engine.State `json:"state"`
}

func (s *Server) currentState() stateResponse {
	return stateResponse{RunID: s.Sim.RunID(), Briefing: s.Sim.Briefing(), State: s.Sim.Snapshot()}
}

func (s *Server) intent(fn func(*http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r); err != nil {
			s.writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, s.currentState())
	}
}

func (s *Server) setIntensity(r *http.Request) error {
	v, err := strconv.ParseFloat(r.URL.Query().Get("value"), 64)
	if err != nil {
		return badRequest{"value must be a number"}
	}
	s.Sim.SetIntensity(v)
	return nil
}

func (s *Server) setDrones(r *http.Request) error {
	q := r.URL.Query()
	countStr, control := q.Get("count"), q.Get("control")
	if countStr == "" && control == "" {
		return badRequest{"count or control is required"}
	}
	// Validate both before applying either.
	n := 0
	if countStr != "" {
		var err error
		if n, err = strconv.Atoi(countStr); err != nil {
			return badRequest{"count must be an integer"}
		}
	}
	ctl := engine.ControlType(control)
	if control != "" && !ctl.Valid() {
		return fmt.Errorf("control type %q: %w", control, sim.ErrUnknown)
	}
	if control != "" && s.Sim.Snapshot().Run != engine.RunIdle {
		return fmt.Errorf("set_control:%s: %w", control, sim.ErrRejected)
	}
	if countStr != "" {
		if err := s.Sim.SetDroneCount(n); err != nil {
			return err
		}
	}
	if control != "" {
		return s.Sim.SetControlType(ctl)
	}
	return nil
}

func statusFor(err error) int {
	var br badRequest
	switch {
	case errors.As(err, &br):
		return http.StatusBadRequest
	case errors.Is(err, sim.ErrUnknown):
		return http.StatusNotFound
	case errors.Is(err, sim.ErrRejected):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		RunID     string
		Scenarios []scenario.Scenario
		Zones     []engine.Zone
	}{
		RunID:     s.Sim.RunID(),
		Scenarios: sortedScenarios(s.Sim.Scenarios()),
		Zones:     s.Sim.Params().Zones,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, data); err != nil {
		s.logger.Error("render index", "err", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currentState())
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sortedScenarios(s.Sim.Scenarios()))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.Events())
}

// handleWebSocket streams a snapshot after every frame and intent until the
// client goes away.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	updates, cancel := s.Sim.Subscribe(wsBuffer)
	defer cancel()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(st engine.State) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(st) == nil
	}
	if !send(s.Sim.Snapshot()) {
		return
	}
	for {
		select {
		case st, ok := <-updates:
			if !ok || !send(st) {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func sortedScenarios(cat scenario.Catalogue) []scenario.Scenario {
	out := make([]scenario.Scenario, 0, len(cat))
	for _, id := range cat.IDs() {
		out = append(out, cat[id])
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", msg)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}
