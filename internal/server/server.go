// Package server exposes hosted agents over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"file-appender/internal/agents"
	"file-appender/internal/event"
	"file-appender/internal/runtime"
	"file-appender/internal/storage"
)

const maxBodyBytes = 1 << 20

// Handler serves the agent API.
type Handler struct {
	runner *runtime.Runner
}

func NewHandler(runner *runtime.Runner) *Handler {
	return &Handler{runner: runner}
}

// Router builds the full route table, including /metrics.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return r
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")
	r.HandleFunc("/agents", h.ListAgents).Methods("GET")
	r.HandleFunc("/agents/{id}", h.GetAgent).Methods("GET")
	r.HandleFunc("/agents/{id}/events", h.PostEvents).Methods("POST")
	r.HandleFunc("/agents/{id}/logs", h.GetLogs).Methods("GET")
	r.HandleFunc("/agents/{id}/logs", h.DeleteLogs).Methods("DELETE")
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (h *Handler) ListAgents(w http.ResponseWriter, r *http.Request) {
	statuses := h.runner.Statuses(r.Context())
	if statuses == nil {
		statuses = []runtime.Status{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"agents": statuses})
}

func (h *Handler) GetAgent(w http.ResponseWriter, r *http.Request) {
	st, err := h.runner.Status(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, lookupStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type eventsRequest struct {
	Events []struct {
		Payload map[string]any `json:"payload"`
	} `json:"events"`
}

// PostEvents accepts {"events":[{"payload":{...}}]} or a bare payload object.
func (h *Handler) PostEvents(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	events, err := decodeEvents(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.runner.Deliver(r.Context(), id, events); err != nil {
		writeError(w, deliveryStatus(err), err.Error())
		return
	}

	ids := make([]string, 0, len(events))
	for _, ev := range events {
		ids = append(ids, ev.ID)
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"accepted": len(events), "event_ids": ids})
}

func decodeEvents(body io.Reader) ([]event.Event, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		return nil, err
	}

	if list, ok := raw["events"]; ok {
		var req eventsRequest
		if err := json.Unmarshal(list, &req.Events); err != nil {
			return nil, err
		}
		events := make([]event.Event, 0, len(req.Events))
		for _, e := range req.Events {
			events = append(events, event.New(e.Payload))
		}
		return events, nil
	}

	payload := make(map[string]any, len(raw))
	for k, v := range raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		payload[k] = val
	}
	return []event.Event{event.New(payload)}, nil
}

func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.runner.Logs(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, lookupStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

func (h *Handler) DeleteLogs(w http.ResponseWriter, r *http.Request) {
	if err := h.runner.ClearLogs(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, lookupStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func lookupStatus(err error) int {
	if errors.Is(err, runtime.ErrUnknownAgent) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func deliveryStatus(err error) int {
	var cfgErr *agents.ConfigurationError
	var storageErr *storage.Error
	switch {
	case errors.Is(err, runtime.ErrUnknownAgent), errors.Is(err, runtime.ErrAgentDisabled):
		return http.StatusUnprocessableEntity
	case errors.As(err, &cfgErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &storageErr), errors.Is(err, storage.ErrNotFound):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("⚠️ error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{"code": status, "message": message},
	})
}

// Server wraps http.Server with the agent routes.
type Server struct {
	http *http.Server
}

func New(addr string, runner *runtime.Runner) *Server {
	return &Server{http: &http.Server{
		Addr:              addr,
		Handler:           NewHandler(runner).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// Start serves in the background; listen errors are logged.
func (s *Server) Start() {
	go func() {
		log.Printf("🌐 HTTP API listening on %s", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("❌ HTTP server error: %v", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
