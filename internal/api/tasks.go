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
// Tasks
// ---------------------------------------------------------------------------

type createTaskRequest struct {
	UserID             int64  `json:"user_id"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	Priority           string `json:"priority"`
	DueDate            string `json:"due_date"` // RFC 3339
	IsRecurring        bool   `json:"is_recurring"`
	RecurrencePattern  string `json:"recurrence_pattern"`
	RecurrenceInterval *int   `json:"recurrence_interval"`
	RecurrenceEndDate  string `json:"recurrence_end_date"` // RFC 3339
}

type updateTaskRequest struct {
	Title              *string `json:"title"`
	Description        *string `json:"description"`
	Priority           *string `json:"priority"`
	Completed          *bool   `json:"completed"`
	DueDate            *string `json:"due_date"` // RFC 3339
	IsRecurring        *bool   `json:"is_recurring"`
	RecurrencePattern  *string `json:"recurrence_pattern"`
	RecurrenceInterval *int    `json:"recurrence_interval"`
	RecurrenceEndDate  *string `json:"recurrence_end_date"` // RFC 3339
	Propagate          bool    `json:"propagate"`
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	var filters repository.TaskFilters

	if completed := q.Get("completed"); completed != "" {
		v := completed == "true"
		filters.Completed = &v
	}
	if priority := q.Get("priority"); priority != "" {
		pr := models.TaskPriority(priority)
		filters.Priority = &pr
	}
	if from := q.Get("due_from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "due_from must be RFC 3339 format")
			return
		}
		filters.DueFrom = &t
	}
	if to := q.Get("due_to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "due_to must be RFC 3339 format")
			return
		}
		filters.DueTo = &t
	}
	filters.ParentsOnly = q.Get("parents_only") == "true"
	if limit := q.Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil {
			filters.Limit = v
		}
	}
	if offset := q.Get("offset"); offset != "" {
		if v, err := strconv.Atoi(offset); err == nil {
			filters.Offset = v
		}
	}

	tasks, err := s.svc.Tasks.ListByUser(r.Context(), userID, filters)
	if err != nil {
		s.respondServiceError(w, err, "list tasks")
		return
	}

	s.respondJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		s.respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.UserID == 0 {
		s.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	priority := models.TaskPriorityMedium
	if req.Priority != "" {
		priority = models.TaskPriority(req.Priority)
	}

	task := &models.Task{
		UserID:      req.UserID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Priority:    priority,
		IsRecurring: req.IsRecurring,
	}

	if req.DueDate != "" {
		t, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "due_date must be RFC 3339 format")
			return
		}
		task.DueDate = &t
	}
	if req.RecurrencePattern != "" {
		p := recurrence.Pattern(req.RecurrencePattern)
		task.RecurrencePattern = &p
	}
	task.RecurrenceInterval = req.RecurrenceInterval
	if req.RecurrenceEndDate != "" {
		t, err := time.Parse(time.RFC3339, req.RecurrenceEndDate)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "recurrence_end_date must be RFC 3339 format")
			return
		}
		task.RecurrenceEndDate = &t
	}

	created, err := s.svc.CreateTask(r.Context(), task)
	if err != nil {
		s.respondServiceError(w, err, "create task")
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	task, err := s.svc.GetTaskWithSubtasks(r.Context(), userID, id)
	if err != nil {
		s.respondServiceError(w, err, "get task")
		return
	}

	s.respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req updateTaskRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	upd := service.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		IsRecurring: req.IsRecurring,
		Interval:    req.RecurrenceInterval,
		Propagate:   req.Propagate,
	}
	if req.Priority != nil {
		pr := models.TaskPriority(*req.Priority)
		upd.Priority = &pr
	}
	if req.DueDate != nil {
		t, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "due_date must be RFC 3339 format")
			return
		}
		upd.DueDate = &t
	}
	if req.RecurrencePattern != nil {
		p := recurrence.Pattern(*req.RecurrencePattern)
		upd.Pattern = &p
	}
	if req.RecurrenceEndDate != nil {
		t, err := time.Parse(time.RFC3339, *req.RecurrenceEndDate)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "recurrence_end_date must be RFC 3339 format")
			return
		}
		upd.EndDate = &t
	}

	updated, err := s.svc.UpdateTask(r.Context(), userID, id, upd)
	if err != nil {
		s.respondServiceError(w, err, "update task")
		return
	}

	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	completed := r.URL.Query().Get("completed") != "false"
	if err := s.svc.CompleteTask(r.Context(), userID, id, completed); err != nil {
		s.respondServiceError(w, err, "complete task")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"completed": completed})
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := s.svc.DeleteTask(r.Context(), userID, id); err != nil {
		s.respondServiceError(w, err, "delete task")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

// ---------------------------------------------------------------------------
// Subtasks
// ---------------------------------------------------------------------------

type createSubtaskRequest struct {
	Title string `json:"title"`
}

func (s *Server) handleCreateSubtask(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	taskID, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var req createSubtaskRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	// Scope check: the task must belong to the caller.
	if _, err := s.svc.Tasks.GetByID(r.Context(), taskID, userID); err != nil {
		s.respondServiceError(w, err, "get task")
		return
	}

	created, err := s.svc.Subtasks.Create(r.Context(), &models.Subtask{
		TaskID: taskID,
		Title:  strings.TrimSpace(req.Title),
	})
	if err != nil {
		s.respondServiceError(w, err, "create subtask")
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGenerateSubtasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	taskID, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	subtasks, err := s.svc.GenerateSubtasks(r.Context(), userID, taskID)
	if err != nil {
		s.respondServiceError(w, err, "generate subtasks")
		return
	}

	s.respondJSON(w, http.StatusCreated, subtasks)
}

func (s *Server) handleCompleteSubtask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid subtask id")
		return
	}

	done := r.URL.Query().Get("done") != "false"
	if err := s.svc.Subtasks.SetDone(r.Context(), id, done); err != nil {
		s.respondServiceError(w, err, "complete subtask")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"done": done})
}

func (s *Server) handleDeleteSubtask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid subtask id")
		return
	}

	if err := s.svc.Subtasks.Delete(r.Context(), id); err != nil {
		s.respondServiceError(w, err, "delete subtask")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}
