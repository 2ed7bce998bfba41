package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tigerhq/tiger/internal/models"
	"github.com/tigerhq/tiger/internal/repository"
)

const taskColumns = `id, user_id, title, description, priority, due_date, completed,
	is_recurring, recurrence_pattern, recurrence_interval, recurrence_end_date,
	parent_id, created_at, updated_at`

type taskRepository struct {
	db repository.DBTX
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db repository.DBTX) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) WithTx(tx *sql.Tx) repository.TaskRepository {
	return &taskRepository{db: tx}
}

func scanTask(row interface{ Scan(dest ...any) error }) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(
		&task.ID, &task.UserID, &task.Title, &task.Description, &task.Priority,
		&task.DueDate, &task.Completed, &task.IsRecurring, &task.RecurrencePattern,
		&task.RecurrenceInterval, &task.RecurrenceEndDate, &task.ParentID,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `INSERT INTO tasks (user_id, title, description, priority, due_date, completed,
		is_recurring, recurrence_pattern, recurrence_interval, recurrence_end_date, parent_id,
		created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Priority == "" {
		task.Priority = models.TaskPriorityMedium
	}
	res, err := r.db.ExecContext(ctx, query,
		task.UserID, task.Title, task.Description, task.Priority, task.DueDate,
		task.Completed, task.IsRecurring, task.RecurrencePattern, task.RecurrenceInterval,
		task.RecurrenceEndDate, task.ParentID, task.CreatedAt, task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	task.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read task id: %w", err)
	}
	return task, nil
}

func (r *taskRepository) CreateBatch(ctx context.Context, tasks []*models.Task) error {
	for _, task := range tasks {
		if _, err := r.Create(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id, userID int64) (*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND user_id = ?`
	task, err := scanTask(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

func (r *taskRepository) ListByUser(ctx context.Context, userID int64, filters repository.TaskFilters) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{userID}

	if filters.Completed != nil {
		query += " AND completed = ?"
		args = append(args, *filters.Completed)
	}
	if filters.Priority != nil {
		query += " AND priority = ?"
		args = append(args, *filters.Priority)
	}
	if filters.DueFrom != nil {
		query += " AND due_date >= ?"
		args = append(args, *filters.DueFrom)
	}
	if filters.DueTo != nil {
		query += " AND due_date <= ?"
		args = append(args, *filters.DueTo)
	}
	if filters.ParentsOnly {
		query += " AND parent_id IS NULL"
	}

	query += " ORDER BY due_date IS NULL, due_date ASC, created_at DESC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}
	if filters.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filters.Offset)
	}

	return r.queryTasks(ctx, query, args...)
}

func (r *taskRepository) ListChildren(ctx context.Context, parentID int64) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE parent_id = ? ORDER BY due_date ASC`
	return r.queryTasks(ctx, query, parentID)
}

func (r *taskRepository) ListRecurringParents(ctx context.Context) ([]*models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE is_recurring = 1 AND parent_id IS NULL`
	return r.queryTasks(ctx, query)
}

func (r *taskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *taskRepository) Update(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := `UPDATE tasks SET title=?, description=?, priority=?, due_date=?, completed=?,
		is_recurring=?, recurrence_pattern=?, recurrence_interval=?, recurrence_end_date=?,
		updated_at=?
		WHERE id=? AND user_id=?`
	task.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.Priority, task.DueDate, task.Completed,
		task.IsRecurring, task.RecurrencePattern, task.RecurrenceInterval,
		task.RecurrenceEndDate, task.UpdatedAt, task.ID, task.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, models.ErrNotFound
	}
	return task, nil
}

func (r *taskRepository) UpdateChildrenContent(ctx context.Context, parentID int64, patch repository.ContentPatch) error {
	query := `UPDATE tasks SET title=?, description=?, priority=?, updated_at=? WHERE parent_id=?`
	_, err := r.db.ExecContext(ctx, query,
		patch.Title, patch.Description, patch.Priority, time.Now(), parentID)
	if err != nil {
		return fmt.Errorf("failed to update task occurrences: %w", err)
	}
	return nil
}

func (r *taskRepository) SetCompleted(ctx context.Context, id, userID int64, completed bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks SET completed=?, updated_at=? WHERE id=? AND user_id=?`,
		completed, time.Now(), id, userID)
	if err != nil {
		return fmt.Errorf("failed to set task completed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *taskRepository) DeleteChildren(ctx context.Context, parentID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE parent_id = ?`, parentID); err != nil {
		return fmt.Errorf("failed to delete task occurrences: %w", err)
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}
