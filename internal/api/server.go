// Package api provides the JSON HTTP interface.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/tigerhq/tiger/internal/models"
	"github.com/tigerhq/tiger/internal/recurrence"
	"github.com/tigerhq/tiger/internal/service"
)

// Server provides the HTTP API.
type Server struct {
	svc    *service.Service
	logger *logrus.Logger
	mux    *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(svc *service.Service, logger *logrus.Logger) *Server {
	s := &Server{svc: svc, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return instrument(s.mux)
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	// Tasks
	s.mux.HandleFunc("GET /api/tasks", s.handleListTasks)
	s.mux.HandleFunc("POST /api/tasks", s.handleCreateTask)
	s.mux.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	s.mux.HandleFunc("PATCH /api/tasks/{id}", s.handleUpdateTask)
	s.mux.HandleFunc("PUT /api/tasks/{id}/done", s.handleCompleteTask)
	s.mux.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)

	// Subtasks
	s.mux.HandleFunc("POST /api/tasks/{id}/subtasks", s.handleCreateSubtask)
	s.mux.HandleFunc("POST /api/tasks/{id}/subtasks/generate", s.handleGenerateSubtasks)
	s.mux.HandleFunc("PUT /api/subtasks/{id}/done", s.handleCompleteSubtask)
	s.mux.HandleFunc("DELETE /api/subtasks/{id}", s.handleDeleteSubtask)

	// Notes
	s.mux.HandleFunc("GET /api/notes", s.handleListNotes)
	s.mux.HandleFunc("POST /api/notes", s.handleCreateNote)
	s.mux.HandleFunc("PATCH /api/notes/{id}", s.handleUpdateNote)
	s.mux.HandleFunc("PUT /api/notes/{id}/pin", s.handlePinNote)
	s.mux.HandleFunc("PUT /api/notes/reorder", s.handleReorderNotes)
	s.mux.HandleFunc("DELETE /api/notes/{id}", s.handleDeleteNote)

	// Appointments
	s.mux.HandleFunc("GET /api/appointments", s.handleListAppointments)
	s.mux.HandleFunc("POST /api/appointments", s.handleCreateAppointment)
	s.mux.HandleFunc("PATCH /api/appointments/{id}", s.handleUpdateAppointment)
	s.mux.HandleFunc("DELETE /api/appointments/{id}", s.handleDeleteAppointment)

	// Meetings
	s.mux.HandleFunc("GET /api/meetings", s.handleListMeetings)
	s.mux.HandleFunc("POST /api/meetings", s.handleCreateMeeting)
	s.mux.HandleFunc("PATCH /api/meetings/{id}", s.handleUpdateMeeting)
	s.mux.HandleFunc("DELETE /api/meetings/{id}", s.handleDeleteMeeting)

	// Pomodoro & study
	s.mux.HandleFunc("POST /api/pomodoro", s.handleStartPomodoro)
	s.mux.HandleFunc("PUT /api/pomodoro/{id}/done", s.handleCompletePomodoro)
	s.mux.HandleFunc("GET /api/pomodoro/stats", s.handlePomodoroStats)
	s.mux.HandleFunc("POST /api/study", s.handleLogStudySession)
	s.mux.HandleFunc("GET /api/study/totals", s.handleStudyTotals)

	// Usage & calendar feed
	s.mux.HandleFunc("GET /api/usage", s.handleUsage)
	s.mux.HandleFunc("GET /api/calendar.ics", s.handleCalendarFeed)

	// Operational endpoints
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", metricsHandler())
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Unknown errors are logged and reported as a generic 500 so internals never
// leak to clients.
func (s *Server) respondServiceError(w http.ResponseWriter, err error, action string) {
	var verr *recurrence.ValidationError
	switch {
	case errors.As(err, &verr):
		s.respondError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, service.ErrOccurrenceEdit):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrNotFound):
		s.respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrQuotaExceeded):
		s.respondError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, service.ErrAIUnavailable):
		s.respondError(w, http.StatusServiceUnavailable, err.Error())
	default:
		s.logger.WithError(err).Errorf("failed to %s", action)
		s.respondError(w, http.StatusInternalServerError, "failed to "+action)
	}
}

// decodeJSON reads the request body into dst and returns an error message on
// failure.  The caller should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// pathID extracts the {id} path value and converts it to int64.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, fmt.Errorf("missing id in path")
	}
	return strconv.ParseInt(raw, 10, 64)
}

// requireUserID reads the user_id query parameter.  It writes an error
// response and returns 0 when the parameter is absent or invalid.
func (s *Server) requireUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		s.respondError(w, http.StatusBadRequest, "user_id query parameter is required")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "user_id must be an integer")
		return 0, false
	}
	return id, true
}
