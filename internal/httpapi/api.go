// Package httpapi serves the tiling state over HTTP and streams layout
// events over a websocket.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/1broseidon/stacktile/internal/actions"
	"github.com/1broseidon/stacktile/internal/events"
	"github.com/1broseidon/stacktile/internal/ipc"
	"github.com/1broseidon/stacktile/internal/platform"
	"github.com/1broseidon/stacktile/internal/tiling"
)

// Backend is the daemon surface the API exposes.
type Backend interface {
	Status(ctx context.Context) (ipc.StatusData, error)
	Desk(ctx context.Context, desk platform.Desk) (tiling.DeskState, error)
	RunAction(ctx context.Context, name, param string) error
	SetDesk(ctx context.Context, desk ipc.SetDeskPayload) error
}

// Server is the HTTP status API.
type Server struct {
	server  *http.Server
	backend Backend
	bus     *events.Bus
	log     *slog.Logger
}

// NewServer builds the router. bus may be nil, which disables /events.
func NewServer(listenAddr string, backend Backend, bus *events.Bus, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{backend: backend, bus: bus, log: logger}

	router := mux.NewRouter()
	router.HandleFunc("/status", s.handleStatus).Methods("GET")
	router.HandleFunc("/desks/{zone:[0-9]+}/{x:[0-9]+}/{y:[0-9]+}", s.handleGetDesk).Methods("GET")
	router.HandleFunc("/desks/{zone:[0-9]+}/{x:[0-9]+}/{y:[0-9]+}", s.handlePutDesk).Methods("PUT")
	router.HandleFunc("/actions/{name}", s.handleAction).Methods("POST")
	router.HandleFunc("/events", s.handleEvents).Methods("GET")

	s.server = &http.Server{
		Addr:              listenAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	s.log.Info("HTTP API listening", "addr", ln.Addr().String())
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP API stopped", "err", err)
		}
	}()
	return nil
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) jsonResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	s.log.Debug("http", "status", status, "method", r.Method, "path", r.URL.Path)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Warn("failed to encode response", "path", r.URL.Path, "err", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.jsonResponse(w, r, status, errorBody{Error: err.Error()})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.backend.Status(r.Context())
	if err != nil {
		s.jsonError(w, r, http.StatusServiceUnavailable, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, st)
}

func deskFromVars(r *http.Request) (platform.Desk, error) {
	vars := mux.Vars(r)
	var out [3]int
	for i, key := range []string{"zone", "x", "y"} {
		v, err := strconv.Atoi(vars[key])
		if err != nil {
			return platform.Desk{}, fmt.Errorf("invalid %s: %w", key, err)
		}
		out[i] = v
	}
	return platform.Desk{Zone: out[0], X: out[1], Y: out[2]}, nil
}

func (s *Server) handleGetDesk(w http.ResponseWriter, r *http.Request) {
	desk, err := deskFromVars(r)
	if err != nil {
		s.jsonError(w, r, http.StatusBadRequest, err)
		return
	}
	st, err := s.backend.Desk(r.Context(), desk)
	if err != nil {
		s.jsonError(w, r, http.StatusServiceUnavailable, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, st)
}

// deskBody is the PUT payload; the desk itself comes from the path.
type deskBody struct {
	NbStacks *int   `json:"nb_stacks"`
	UseRows  bool   `json:"use_rows"`
	Layout   string `json:"layout"`
}

func (s *Server) handlePutDesk(w http.ResponseWriter, r *http.Request) {
	desk, err := deskFromVars(r)
	if err != nil {
		s.jsonError(w, r, http.StatusBadRequest, err)
		return
	}
	var body deskBody
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		s.jsonError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	if body.NbStacks == nil {
		s.jsonError(w, r, http.StatusUnprocessableEntity, errors.New("nb_stacks is required"))
		return
	}
	payload := ipc.SetDeskPayload{
		X:        desk.X,
		Y:        desk.Y,
		Zone:     desk.Zone,
		NbStacks: *body.NbStacks,
		UseRows:  body.UseRows,
		Layout:   body.Layout,
	}
	if err := payload.Validate(); err != nil {
		s.jsonError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	if err := s.backend.SetDesk(r.Context(), payload); err != nil {
		s.jsonError(w, r, http.StatusServiceUnavailable, err)
		return
	}
	s.handleGetDesk(w, r)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	param := r.URL.Query().Get("param")

	err := s.backend.RunAction(r.Context(), name, param)
	switch {
	case err == nil:
		s.jsonResponse(w, r, http.StatusOK, map[string]string{"action": name})
	case errors.Is(err, actions.ErrUnknownAction):
		s.jsonError(w, r, http.StatusNotFound, err)
	case errors.Is(err, actions.ErrNoFocus),
		errors.Is(err, actions.ErrOffDesk),
		errors.Is(err, actions.ErrNotTiling),
		errors.Is(err, actions.ErrModeNotEntered):
		s.jsonError(w, r, http.StatusConflict, err)
	default:
		s.jsonError(w, r, http.StatusInternalServerError, err)
	}
}
