package api

import (
	"net/http"
	"strings"

	"github.com/tigerhq/tiger/internal/models"
	"github.com/tigerhq/tiger/internal/service"
)

// ---------------------------------------------------------------------------
// Notes
// ---------------------------------------------------------------------------

type createNoteRequest struct {
	UserID  int64  `json:"user_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Color   string `json:"color"`
}

type updateNoteRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Color   *string `json:"color"`
}

type pinNoteRequest struct {
	Pinned bool `json:"pinned"`
}

type reorderNotesRequest struct {
	OrderedIDs []int64 `json:"ordered_ids"`
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	notes, err := s.svc.Notes.ListByUser(r.Context(), userID)
	if err != nil {
		s.respondServiceError(w, err, "list notes")
		return
	}

	s.respondJSON(w, http.StatusOK, notes)
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req createNoteRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Content) == "" {
		s.respondError(w, http.StatusBadRequest, "a note needs a title or content")
		return
	}
	if req.UserID == 0 {
		s.respondError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	created, err := s.svc.CreateNote(r.Context(), &models.Note{
		UserID:  req.UserID,
		Title:   strings.TrimSpace(req.Title),
		Content: req.Content,
		Color:   req.Color,
	})
	if err != nil {
		s.respondServiceError(w, err, "create note")
		return
	}

	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	var req updateNoteRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	updated, err := s.svc.UpdateNote(r.Context(), userID, id, service.NoteUpdate{
		Title:   req.Title,
		Content: req.Content,
		Color:   req.Color,
	})
	if err != nil {
		s.respondServiceError(w, err, "update note")
		return
	}

	s.respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handlePinNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	var req pinNoteRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	if err := s.svc.PinNote(r.Context(), userID, id, req.Pinned); err != nil {
		s.respondServiceError(w, err, "pin note")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]bool{"pinned": req.Pinned})
}

func (s *Server) handleReorderNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}

	var req reorderNotesRequest
	if ok, msg := s.decodeJSON(r, &req); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if len(req.OrderedIDs) == 0 {
		s.respondError(w, http.StatusBadRequest, "ordered_ids is required")
		return
	}

	if err := s.svc.ReorderNotes(r.Context(), userID, req.OrderedIDs); err != nil {
		s.respondServiceError(w, err, "reorder notes")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.requireUserID(w, r)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid note id")
		return
	}

	if err := s.svc.DeleteNote(r.Context(), userID, id); err != nil {
		s.respondServiceError(w, err, "delete note")
		return
	}

	s.respondJSON(w, http.StatusNoContent, nil)
}
