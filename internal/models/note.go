package models

import "time"

// Note represents a free-form note. Position is an explicit sort key so the
// UI can drag-reorder notes; pinned notes sort before unpinned ones
// regardless of position.
type Note struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Color     string    `json:"color" db:"color"`
	Pinned    bool      `json:"pinned" db:"pinned"`
	Position  int       `json:"position" db:"position"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
