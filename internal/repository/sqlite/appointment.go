package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tigerhq/tiger/internal/models"
	"github.com/tigerhq/tiger/internal/repository"
)

const appointmentColumns = `id, user_id, title, description, location, start_time, end_time,
	completed, is_recurring, recurrence_pattern, recurrence_interval, recurrence_end_date,
	parent_id, created_at, updated_at`

type appointmentRepository struct {
	db repository.DBTX
}

// NewAppointmentRepository creates a new appointment repository
func NewAppointmentRepository(db repository.DBTX) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func (r *appointmentRepository) WithTx(tx *sql.Tx) repository.AppointmentRepository {
	return &appointmentRepository{db: tx}
}

func scanAppointment(row interface{ Scan(dest ...any) error }) (*models.Appointment, error) {
	a := &models.Appointment{}
	err := row.Scan(
		&a.ID, &a.UserID, &a.Title, &a.Description, &a.Location, &a.StartTime, &a.EndTime,
		&a.Completed, &a.IsRecurring, &a.RecurrencePattern, &a.RecurrenceInterval,
		&a.RecurrenceEndDate, &a.ParentID, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *appointmentRepository) Create(ctx context.Context, appt *models.Appointment) (*models.Appointment, error) {
	query := `INSERT INTO appointments (user_id, title, description, location, start_time, end_time,
		completed, is_recurring, recurrence_pattern, recurrence_interval, recurrence_end_date,
		parent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	res, err := r.db.ExecContext(ctx, query,
		appt.UserID, appt.Title, appt.Description, appt.Location, appt.StartTime, appt.EndTime,
		appt.Completed, appt.IsRecurring, appt.RecurrencePattern, appt.RecurrenceInterval,
		appt.RecurrenceEndDate, appt.ParentID, appt.CreatedAt, appt.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	appt.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read appointment id: %w", err)
	}
	return appt, nil
}

func (r *appointmentRepository) CreateBatch(ctx context.Context, appts []*models.Appointment) error {
	for _, appt := range appts {
		if _, err := r.Create(ctx, appt); err != nil {
			return err
		}
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id, userID int64) (*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = ? AND user_id = ?`
	appt, err := scanAppointment(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return appt, nil
}

func (r *appointmentRepository) ListByUser(ctx context.Context, userID int64, filters repository.EventFilters) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE user_id = ?`
	args := []any{userID}

	if filters.From != nil {
		query += " AND start_time >= ?"
		args = append(args, *filters.From)
	}
	if filters.To != nil {
		query += " AND start_time <= ?"
		args = append(args, *filters.To)
	}
	if filters.ParentsOnly {
		query += " AND parent_id IS NULL"
	}

	query += " ORDER BY start_time ASC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	return r.queryAppointments(ctx, query, args...)
}

func (r *appointmentRepository) ListChildren(ctx context.Context, parentID int64) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE parent_id = ? ORDER BY start_time ASC`
	return r.queryAppointments(ctx, query, parentID)
}

func (r *appointmentRepository) ListRecurringParents(ctx context.Context) ([]*models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE is_recurring = 1 AND parent_id IS NULL`
	return r.queryAppointments(ctx, query)
}

func (r *appointmentRepository) queryAppointments(ctx context.Context, query string, args ...any) ([]*models.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	var appts []*models.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		appts = append(appts, appt)
	}
	return appts, rows.Err()
}

func (r *appointmentRepository) Update(ctx context.Context, appt *models.Appointment) (*models.Appointment, error) {
	query := `UPDATE appointments SET title=?, description=?, location=?, start_time=?, end_time=?,
		completed=?, is_recurring=?, recurrence_pattern=?, recurrence_interval=?,
		recurrence_end_date=?, updated_at=?
		WHERE id=? AND user_id=?`
	appt.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		appt.Title, appt.Description, appt.Location, appt.StartTime, appt.EndTime,
		appt.Completed, appt.IsRecurring, appt.RecurrencePattern, appt.RecurrenceInterval,
		appt.RecurrenceEndDate, appt.UpdatedAt, appt.ID, appt.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, models.ErrNotFound
	}
	return appt, nil
}

func (r *appointmentRepository) UpdateChildrenContent(ctx context.Context, parentID int64, patch repository.ContentPatch) error {
	query := `UPDATE appointments SET title=?, description=?, location=?, updated_at=? WHERE parent_id=?`
	_, err := r.db.ExecContext(ctx, query,
		patch.Title, patch.Description, patch.Location, time.Now(), parentID)
	if err != nil {
		return fmt.Errorf("failed to update appointment occurrences: %w", err)
	}
	return nil
}

func (r *appointmentRepository) DeleteChildren(ctx context.Context, parentID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE parent_id = ?`, parentID); err != nil {
		return fmt.Errorf("failed to delete appointment occurrences: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}
