package api

import (
	"net/http"

	"github.com/tigerhq/tiger/internal/ics"
	"github.com/tigerhq/tiger/internal/repository"
)

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	status, err := s.svc.UsageStatus(r.Context(), userID)
	if err != nil {
		s.respondServiceError(w, err, "get usage")
		return
	}

	s.respondJSON(w, http.StatusOK, status)
}

// handleCalendarFeed serves the user's schedule as an iCalendar document so
// external calendar apps can subscribe to it.
func (s *Server) handleCalendarFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	tasks, err := s.svc.Tasks.ListByUser(ctx, userID, repository.TaskFilters{ParentsOnly: true})
	if err != nil {
		s.respondServiceError(w, err, "build calendar feed")
		return
	}
	appts, err := s.svc.Appointments.ListByUser(ctx, userID, repository.EventFilters{ParentsOnly: true})
	if err != nil {
		s.respondServiceError(w, err, "build calendar feed")
		return
	}
	meetings, err := s.svc.Meetings.ListByUser(ctx, userID, repository.EventFilters{ParentsOnly: true})
	if err != nil {
		s.respondServiceError(w, err, "build calendar feed")
		return
	}

	doc, err := ics.Export(ics.Feed{Tasks: tasks, Appointments: appts, Meetings: meetings})
	if err != nil {
		s.respondServiceError(w, err, "build calendar feed")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tiger.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(doc)); err != nil {
		s.logger.WithError(err).Error("failed to write calendar feed")
	}
}
