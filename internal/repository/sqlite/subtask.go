package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tigerhq/tiger/internal/models"
	"github.com/tigerhq/tiger/internal/repository"
)

type subtaskRepository struct {
	db repository.DBTX
}

// NewSubtaskRepository creates a new subtask repository
func NewSubtaskRepository(db repository.DBTX) repository.SubtaskRepository {
	return &subtaskRepository{db: db}
}

func (r *subtaskRepository) WithTx(tx *sql.Tx) repository.SubtaskRepository {
	return &subtaskRepository{db: tx}
}

func (r *subtaskRepository) Create(ctx context.Context, subtask *models.Subtask) (*models.Subtask, error) {
	query := `INSERT INTO subtasks (task_id, title, done, generated, created_at)
		VALUES (?, ?, ?, ?, ?)`
	subtask.CreatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		subtask.TaskID, subtask.Title, subtask.Done, subtask.Generated, subtask.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create subtask: %w", err)
	}
	subtask.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read subtask id: %w", err)
	}
	return subtask, nil
}

func (r *subtaskRepository) CreateBatch(ctx context.Context, subtasks []*models.Subtask) error {
	for _, subtask := range subtasks {
		if _, err := r.Create(ctx, subtask); err != nil {
			return err
		}
	}
	return nil
}

func (r *subtaskRepository) ListByTask(ctx context.Context, taskID int64) ([]models.Subtask, error) {
	query := `SELECT id, task_id, title, done, generated, created_at
		FROM subtasks WHERE task_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subtasks: %w", err)
	}
	defer rows.Close()

	var subtasks []models.Subtask
	for rows.Next() {
		var st models.Subtask
		if err := rows.Scan(&st.ID, &st.TaskID, &st.Title, &st.Done, &st.Generated, &st.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subtask: %w", err)
		}
		subtasks = append(subtasks, st)
	}
	return subtasks, rows.Err()
}

func (r *subtaskRepository) SetDone(ctx context.Context, id int64, done bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE subtasks SET done=? WHERE id=?`, done, id)
	if err != nil {
		return fmt.Errorf("failed to set subtask done: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *subtaskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subtasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete subtask: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}
