package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/tigerhq/tiger/internal/models"
)

// ---------------------------------------------------------------------------
// Pomodoro
// ---------------------------------------------------------------------------

type startPomodoroRequest struct {
	UserID  int64  `json:"user_id"`
	Kind    string `json:"kind"`    // focus, short_break, long_break
	Minutes int    `json:"minutes"` // defaults to 25 for focus, 5 otherwise
}

func (s *Server) handleStartPomodoro(w http.ResponseWriter, r *http.Request) {
	var req startPomodoroRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.UserID == 0 {
		s.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	kind := models.PomodoroFocus
	if req.Kind != "" {
		kind = models.PomodoroKind(req.Kind)
	}
	minutes := req.Minutes
	if minutes == 0 {
		if kind == models.PomodoroFocus {
			minutes = 25
		} else {
			minutes = 5
		}
	}

	session, err := s.svc.StartPomodoro(r.Context(), req.UserID, kind, time.Duration(minutes)*time.Minute)
	if err != nil {
		s.respondServiceError(w, err, "start pomodoro")
		return
	}

	s.respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleCompletePomodoro(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	if err := s.svc.CompletePomodoro(r.Context(), userID, id); err != nil {
		s.respondServiceError(w, err, "complete pomodoro")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"completed": true})
}

func (s *Server) handlePomodoroStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	day := time.Now()
	if raw := r.URL.Query().Get("day"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "day must be YYYY-MM-DD")
			return
		}
		day = t
	}

	stats, err := s.svc.PomodoroStats(r.Context(), userID, day)
	if err != nil {
		s.respondServiceError(w, err, "get pomodoro stats")
		return
	}

	s.respondJSON(w, http.StatusOK, stats)
}

// ---------------------------------------------------------------------------
// Study sessions
// ---------------------------------------------------------------------------

type logStudyRequest struct {
	UserID    int64  `json:"user_id"`
	Subject   string `json:"subject"`
	Notes     string `json:"notes"`
	StartedAt string `json:"started_at"` // RFC 3339
	EndedAt   string `json:"ended_at"`   // RFC 3339, optional
	Minutes   int    `json:"minutes"`
}

func (s *Server) handleLogStudySession(w http.ResponseWriter, r *http.Request) {
	var req logStudyRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if req.UserID == 0 {
		s.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	if strings.TrimSpace(req.Subject) == "" {
		s.respondError(w, http.StatusBadRequest, "subject is required")
		return
	}

	session := &models.StudySession{
		UserID:  req.UserID,
		Subject: strings.TrimSpace(req.Subject),
		Notes:   req.Notes,
		Minutes: req.Minutes,
	}
	if req.StartedAt != "" {
		t, err := time.Parse(time.RFC3339, req.StartedAt)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "started_at must be RFC 3339 format")
			return
		}
		session.StartedAt = t
	}
	if req.EndedAt != "" {
		t, err := time.Parse(time.RFC3339, req.EndedAt)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "ended_at must be RFC 3339 format")
			return
		}
		session.EndedAt = &t
	}

	created, err := s.svc.LogStudySession(r.Context(), session)
	if err != nil {
		s.respondServiceError(w, err, "log study session")
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleStudyTotals(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	totals, err := s.svc.StudyTotals(r.Context(), userID)
	if err != nil {
		s.respondServiceError(w, err, "get study totals")
		return
	}

	s.respondJSON(w, http.StatusOK, totals)
}
