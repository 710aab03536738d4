package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/moneypilot/moneypilot/agui"
	"github.com/moneypilot/moneypilot/workflow"
)

// RunRequest is the body of the run and stream endpoints.
type RunRequest struct {
	State    map[string]any `json:"state"`
	ThreadID string         `json:"thread_id,omitempty"`
	RunID    string         `json:"run_id,omitempty"`
}

// RunResponse is the result of a completed run.
type RunResponse struct {
	RunID string         `json:"run_id"`
	State map[string]any `json:"state"`
}

// HealthResponse reports basic application status.
type HealthResponse struct {
	Status    string    `json:"status"`
	AppName   string    `json:"app_name"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Debug     bool      `json:"debug"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("health check requested")
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		AppName:   s.settings.AppName,
		Version:   s.settings.Version,
		Timestamp: s.now().UTC(),
		Debug:     s.settings.Debug,
	})
}

func (s *Server) listTools(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.tools.ListSchemas())
}

func (s *Server) listWorkflows(w http.ResponseWriter, r *http.Request) {
	descs := s.workflows.Describe()
	if descs == nil {
		descs = []workflow.Description{}
	}
	s.writeJSON(w, http.StatusOK, descs)
}

func (s *Server) decodeRun(w http.ResponseWriter, r *http.Request) (RunRequest, bool) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.logger.Warn("invalid request body", "error", err)
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid request body: " + err.Error()})
		return req, false
	}
	if req.State == nil {
		req.State = map[string]any{}
	}
	if req.RunID == "" {
		req.RunID = uuid.NewString()
	}
	return req, true
}

func (s *Server) runWorkflow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	req, ok := s.decodeRun(w, r)
	if !ok {
		return
	}

	out, err := s.workflows.Run(r.Context(), name, req.State, workflow.WithRunID(req.RunID))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, RunResponse{RunID: req.RunID, State: out})
}

// streamWorkflow runs a workflow and streams its progress as AG-UI events.
// Errors after the stream has started are reported as RUN_ERROR events.
func (s *Server) streamWorkflow(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if _, err := s.workflows.Get(name); err != nil {
		s.writeError(w, r, err)
		return
	}
	req, ok := s.decodeRun(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	log := s.logger.With("workflow", name, "run_id", req.RunID)
	mapper := agui.NewMapper(req.ThreadID, req.RunID)
	agui.SetSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	start := time.Now()
	count := 0
	for ev := range s.workflows.RunStream(r.Context(), name, req.State, workflow.WithRunID(req.RunID)) {
		for _, out := range mapper.Map(ev) {
			if err := agui.WriteSSE(w, flusher, out); err != nil {
				log.Warn("stream write failed", "error", err)
				continue
			}
			count++
		}
	}
	log.Info("stream completed", "events", count, "duration", time.Since(start))
}
