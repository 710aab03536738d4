package server

import (
	"encoding/json"
	"errors"
	"net/http"

	ai "github.com/moneypilot/moneypilot"
	"github.com/moneypilot/moneypilot/state"
	"github.com/moneypilot/moneypilot/tool"
	"github.com/moneypilot/moneypilot/workflow"
)

// statusOf maps an error to its HTTP status. Failures inside a step are
// reported as 422 even when the step's own cause was a validation error.
func statusOf(err error) int {
	var (
		stepErr  *workflow.StepError
		routeErr *workflow.RouteError
		loopErr  *workflow.LoopLimitError
		valErr   *state.ValidationError
		paramErr *tool.ParamError
		notFound *tool.ErrToolNotFound
	)
	switch {
	case errors.As(err, &stepErr), errors.As(err, &routeErr), errors.As(err, &loopErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &valErr), errors.As(err, &paramErr), ai.IsUserInput(err):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrWorkflowNotFound), errors.As(err, &notFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("writing response failed", "status", status, "error", err)
	}
}

// writeError reports err as {"detail": ...}. Internal errors are logged and
// hidden from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("unhandled error", "path", r.URL.Path, "method", r.Method, "error", err)
		s.writeJSON(w, status, map[string]string{"detail": "Internal server error"})
		return
	}
	s.logger.Warn("request failed", "path", r.URL.Path, "status", status, "error", err)
	s.writeJSON(w, status, map[string]string{"detail": err.Error()})
}
