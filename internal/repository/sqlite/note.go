package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tigerhq/tiger/internal/models"
	"github.com/tigerhq/tiger/internal/repository"
)

type noteRepository struct {
	db *sql.DB
}

// NewNoteRepository creates a new note repository
func NewNoteRepository(db *sql.DB) repository.NoteRepository {
	return &noteRepository{db: db}
}

func (r *noteRepository) Create(ctx context.Context, note *models.Note) (*models.Note, error) {
	// New notes land at the end of the user's board.
	query := `INSERT INTO notes (user_id, title, content, color, pinned, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(position), 0) + 1 FROM notes WHERE user_id = ?),
			?, ?)`
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now
	res, err := r.db.ExecContext(ctx, query,
		note.UserID, note.Title, note.Content, note.Color, note.Pinned,
		note.UserID, note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	note.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read note id: %w", err)
	}
	return r.GetByID(ctx, note.ID, note.UserID)
}

func (r *noteRepository) GetByID(ctx context.Context, id, userID int64) (*models.Note, error) {
	query := `SELECT id, user_id, title, content, color, pinned, position, created_at, updated_at
		FROM notes WHERE id = ? AND user_id = ?`
	note := &models.Note{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&note.ID, &note.UserID, &note.Title, &note.Content, &note.Color,
		&note.Pinned, &note.Position, &note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get note: %w", err)
	}
	return note, nil
}

func (r *noteRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Note, error) {
	query := `SELECT id, user_id, title, content, color, pinned, position, created_at, updated_at
		FROM notes WHERE user_id = ?
		ORDER BY pinned DESC, position ASC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note := &models.Note{}
		if err := rows.Scan(
			&note.ID, &note.UserID, &note.Title, &note.Content, &note.Color,
			&note.Pinned, &note.Position, &note.CreatedAt, &note.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	return notes, rows.Err()
}

func (r *noteRepository) Update(ctx context.Context, note *models.Note) (*models.Note, error) {
	query := `UPDATE notes SET title=?, content=?, color=?, updated_at=? WHERE id=? AND user_id=?`
	note.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		note.Title, note.Content, note.Color, note.UpdatedAt, note.ID, note.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to update note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, models.ErrNotFound
	}
	return note, nil
}

func (r *noteRepository) SetPinned(ctx context.Context, id, userID int64, pinned bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notes SET pinned=?, updated_at=? WHERE id=? AND user_id=?`,
		pinned, time.Now(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to pin note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Reorder rewrites the position column so the user's notes sort in the order
// of orderedIDs. The whole rewrite happens in one transaction so a failed
// drag never leaves the board half-shuffled.
func (r *noteRepository) Reorder(ctx context.Context, userID int64, orderedIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reorder: %w", err)
	}
	defer tx.Rollback()

	for pos, id := range orderedIDs {
		res, err := tx.ExecContext(ctx,
			`UPDATE notes SET position=?, updated_at=? WHERE id=? AND user_id=?`,
			pos+1, time.Now(), id, userID)
		if err != nil {
			return fmt.Errorf("failed to reorder note %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return models.ErrNotFound
		}
	}
	return tx.Commit()
}

func (r *noteRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}
