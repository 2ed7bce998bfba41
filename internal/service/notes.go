package service

import (
	"context"

	"github.com/tigerhq/tiger/internal/models"
)

// NoteUpdate is a validated description of a note edit.
type NoteUpdate struct {
	Title   *string
	Content *string
	Color   *string
}

// CreateNote persists a new note at the end of the user's board.
func (s *Service) CreateNote(ctx context.Context, note *models.Note) (*models.Note, error) {
	return s.Notes.Create(ctx, note)
}

// UpdateNote applies a content edit to a note.
func (s *Service) UpdateNote(ctx context.Context, userID, id int64, upd NoteUpdate) (*models.Note, error) {
	note, err := s.Notes.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if upd.Title != nil {
		note.Title = *upd.Title
	}
	if upd.Content != nil {
		note.Content = *upd.Content
	}
	if upd.Color != nil {
		note.Color = *upd.Color
	}
	return s.Notes.Update(ctx, note)
}

// PinNote toggles the pinned flag; pinned notes sort before the rest.
func (s *Service) PinNote(ctx context.Context, userID, id int64, pinned bool) error {
	return s.Notes.SetPinned(ctx, id, userID, pinned)
}

// ReorderNotes persists a drag-reorder: orderedIDs is the user's full board
// in its new order.
func (s *Service) ReorderNotes(ctx context.Context, userID int64, orderedIDs []int64) error {
	return s.Notes.Reorder(ctx, userID, orderedIDs)
}

// DeleteNote removes a note.
func (s *Service) DeleteNote(ctx context.Context, userID, id int64) error {
	return s.Notes.Delete(ctx, id, userID)
}
