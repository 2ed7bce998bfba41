package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tigerhq/tiger/internal/models"
	"github.com/tigerhq/tiger/internal/recurrence"
	"github.com/tigerhq/tiger/internal/repository"
	"github.com/tigerhq/tiger/internal/service"
)

// ---------------------------------------------------------------------------
// Appointments & meetings
// ---------------------------------------------------------------------------

// createEventRequest is shared by appointments and meetings; Location applies
// to the former, Attendees to the latter.
type createEventRequest struct {
	UserID             int64  `json:"user_id"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	Location           string `json:"location"`
	Attendees          string `json:"attendees"`
	StartTime          string `json:"start_time"` // RFC 3339
	EndTime            string `json:"end_time"`   // RFC 3339
	IsRecurring        bool   `json:"is_recurring"`
	RecurrencePattern  string `json:"recurrence_pattern"`
	RecurrenceInterval *int   `json:"recurrence_interval"`
	RecurrenceEndDate  string `json:"recurrence_end_date"` // RFC 3339
}

type updateEventRequest struct {
	Title              *string `json:"title"`
	Description        *string `json:"description"`
	Location           *string `json:"location"`
	Attendees          *string `json:"attendees"`
	Completed          *bool   `json:"completed"`
	StartTime          *string `json:"start_time"` // RFC 3339
	EndTime            *string `json:"end_time"`   // RFC 3339
	IsRecurring        *bool   `json:"is_recurring"`
	RecurrencePattern  *string `json:"recurrence_pattern"`
	RecurrenceInterval *int    `json:"recurrence_interval"`
	RecurrenceEndDate  *string `json:"recurrence_end_date"` // RFC 3339
	Propagate          bool    `json:"propagate"`
}

// validate checks the required fields and parses the timestamps. On failure
// the error message is ready for a 400 response.
func (req *createEventRequest) validate() (start, end time.Time, errMsg string) {
	if strings.TrimSpace(req.Title) == "" {
		return start, end, "title is required"
	}
	if req.UserID == 0 {
		return start, end, "user_id is required"
	}
	if req.StartTime == "" || req.EndTime == "" {
		return start, end, "start_time and end_time are required"
	}
	var err error
	if start, err = time.Parse(time.RFC3339, req.StartTime); err != nil {
		return start, end, "start_time must be RFC 3339 format"
	}
	if end, err = time.Parse(time.RFC3339, req.EndTime); err != nil {
		return start, end, "end_time must be RFC 3339 format"
	}
	return start, end, ""
}

// toUpdate converts the request into a service.EventUpdate, parsing the
// timestamp strings. On failure the error message is ready for a 400.
func (req *updateEventRequest) toUpdate() (service.EventUpdate, string) {
	upd := service.EventUpdate{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Attendees:   req.Attendees,
		Completed:   req.Completed,
		IsRecurring: req.IsRecurring,
		Interval:    req.RecurrenceInterval,
		Propagate:   req.Propagate,
	}
	if req.StartTime != nil {
		t, err := time.Parse(time.RFC3339, *req.StartTime)
		if err != nil {
			return upd, "start_time must be RFC 3339 format"
		}
		upd.StartTime = &t
	}
	if req.EndTime != nil {
		t, err := time.Parse(time.RFC3339, *req.EndTime)
		if err != nil {
			return upd, "end_time must be RFC 3339 format"
		}
		upd.EndTime = &t
	}
	if req.RecurrencePattern != nil {
		p := recurrence.Pattern(*req.RecurrencePattern)
		upd.Pattern = &p
	}
	if req.RecurrenceEndDate != nil {
		t, err := time.Parse(time.RFC3339, *req.RecurrenceEndDate)
		if err != nil {
			return upd, "recurrence_end_date must be RFC 3339 format"
		}
		upd.EndDate = &t
	}
	return upd, ""
}

// eventFilters parses the shared from/to/limit query parameters.
func (s *Server) eventFilters(w http.ResponseWriter, r *http.Request) (repository.EventFilters, bool) {
	q := r.URL.Query()
	var filters repository.EventFilters

	if from := q.Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "from must be RFC 3339 format")
			return filters, false
		}
		filters.From = &t
	}
	if to := q.Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "to must be RFC 3339 format")
			return filters, false
		}
		filters.To = &t
	}
	filters.ParentsOnly = q.Get("parents_only") == "true"
	if limit := q.Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			filters.Limit = v
		}
	}
	return filters, true
}

func (s *Server) handleListAppointments(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	filters, ok := s.eventFilters(w, r)
	if !ok {
		return
	}

	appts, err := s.svc.Appointments.ListByUser(r.Context(), userID, filters)
	if err != nil {
		s.respondServiceError(w, err, "list appointments")
		return
	}

	s.respondJSON(w, http.StatusOK, appts)
}

func (s *Server) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	start, end, msg := req.validate()
	if msg != "" {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	appt := &models.Appointment{
		UserID:      req.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Location:    strings.TrimSpace(req.Location),
		StartTime:   start,
		EndTime:     end,
		IsRecurring: req.IsRecurring,
	}
	if req.RecurrencePattern != "" {
		p := recurrence.Pattern(req.RecurrencePattern)
		appt.RecurrencePattern = &p
	}
	appt.RecurrenceInterval = req.RecurrenceInterval
	if req.RecurrenceEndDate != "" {
		t, err := time.Parse(time.RFC3339, req.RecurrenceEndDate)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "recurrence_end_date must be RFC 3339 format")
			return
		}
		appt.RecurrenceEndDate = &t
	}

	created, err := s.svc.CreateAppointment(r.Context(), appt)
	if err != nil {
		s.respondServiceError(w, err, "create appointment")
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateAppointment(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	var req updateEventRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	upd, msg := req.toUpdate()
	if msg != "" {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := s.svc.UpdateAppointment(r.Context(), userID, id, upd)
	if err != nil {
		s.respondServiceError(w, err, "update appointment")
		return
	}

	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteAppointment(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	if err := s.svc.DeleteAppointment(r.Context(), userID, id); err != nil {
		s.respondServiceError(w, err, "delete appointment")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListMeetings(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	filters, ok := s.eventFilters(w, r)
	if !ok {
		return
	}

	meetings, err := s.svc.Meetings.ListByUser(r.Context(), userID, filters)
	if err != nil {
		s.respondServiceError(w, err, "list meetings")
		return
	}

	s.respondJSON(w, http.StatusOK, meetings)
}

func (s *Server) handleCreateMeeting(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	start, end, msg := req.validate()
	if msg != "" {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	meeting := &models.Meeting{
		UserID:      req.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Attendees:   strings.TrimSpace(req.Attendees),
		StartTime:   start,
		EndTime:     end,
		IsRecurring: req.IsRecurring,
	}
	if req.RecurrencePattern != "" {
		p := recurrence.Pattern(req.RecurrencePattern)
		meeting.RecurrencePattern = &p
	}
	meeting.RecurrenceInterval = req.RecurrenceInterval
	if req.RecurrenceEndDate != "" {
		t, err := time.Parse(time.RFC3339, req.RecurrenceEndDate)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "recurrence_end_date must be RFC 3339 format")
			return
		}
		meeting.RecurrenceEndDate = &t
	}

	created, err := s.svc.CreateMeeting(r.Context(), meeting)
	if err != nil {
		s.respondServiceError(w, err, "create meeting")
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateMeeting(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid meeting id")
		return
	}

	var req updateEventRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	upd, msg := req.toUpdate()
	if msg != "" {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := s.svc.UpdateMeeting(r.Context(), userID, id, upd)
	if err != nil {
		s.respondServiceError(w, err, "update meeting")
		return
	}

	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteMeeting(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid meeting id")
		return
	}

	if err := s.svc.DeleteMeeting(r.Context(), userID, id); err != nil {
		s.respondServiceError(w, err, "delete meeting")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}
