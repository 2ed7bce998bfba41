package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tigerhq/tiger/internal/models"
	"github.com/tigerhq/tiger/internal/repository"
)

const meetingColumns = `id, user_id, title, description, attendees, start_time, end_time,
	completed, is_recurring, recurrence_pattern, recurrence_interval, recurrence_end_date,
	parent_id, created_at, updated_at`

type meetingRepository struct {
	db repository.DBTX
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db repository.DBTX) repository.MeetingRepository {
	return &meetingRepository{db: db}
}

func (r *meetingRepository) WithTx(tx *sql.Tx) repository.MeetingRepository {
	return &meetingRepository{db: tx}
}

func scanMeeting(row interface{ Scan(dest ...any) error }) (*models.Meeting, error) {
	m := &models.Meeting{}
	err := row.Scan(
		&m.ID, &m.UserID, &m.Title, &m.Description, &m.Attendees, &m.StartTime, &m.EndTime,
		&m.Completed, &m.IsRecurring, &m.RecurrencePattern, &m.RecurrenceInterval,
		&m.RecurrenceEndDate, &m.ParentID, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *meetingRepository) Create(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error) {
	query := `INSERT INTO meetings (user_id, title, description, attendees, start_time, end_time,
		completed, is_recurring, recurrence_pattern, recurrence_interval, recurrence_end_date,
		parent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	meeting.CreatedAt = now
	meeting.UpdatedAt = now
	res, err := r.db.ExecContext(ctx, query,
		meeting.UserID, meeting.Title, meeting.Description, meeting.Attendees,
		meeting.StartTime, meeting.EndTime, meeting.Completed, meeting.IsRecurring,
		meeting.RecurrencePattern, meeting.RecurrenceInterval, meeting.RecurrenceEndDate,
		meeting.ParentID, meeting.CreatedAt, meeting.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}
	meeting.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read meeting id: %w", err)
	}
	return meeting, nil
}

func (r *meetingRepository) CreateBatch(ctx context.Context, meetings []*models.Meeting) error {
	for _, meeting := range meetings {
		if _, err := r.Create(ctx, meeting); err != nil {
			return err
		}
	}
	return nil
}

func (r *meetingRepository) GetByID(ctx context.Context, id, userID int64) (*models.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE id = ? AND user_id = ?`
	meeting, err := scanMeeting(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}
	return meeting, nil
}

func (r *meetingRepository) ListByUser(ctx context.Context, userID int64, filters repository.EventFilters) ([]*models.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE user_id = ?`
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

	return r.queryMeetings(ctx, query, args...)
}

func (r *meetingRepository) ListChildren(ctx context.Context, parentID int64) ([]*models.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE parent_id = ? ORDER BY start_time ASC`
	return r.queryMeetings(ctx, query, parentID)
}

func (r *meetingRepository) ListRecurringParents(ctx context.Context) ([]*models.Meeting, error) {
	query := `SELECT ` + meetingColumns + ` FROM meetings WHERE is_recurring = 1 AND parent_id IS NULL`
	return r.queryMeetings(ctx, query)
}

func (r *meetingRepository) queryMeetings(ctx context.Context, query string, args ...any) ([]*models.Meeting, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meetings: %w", err)
	}
	defer rows.Close()

	var meetings []*models.Meeting
	for rows.Next() {
		meeting, err := scanMeeting(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}
		meetings = append(meetings, meeting)
	}
	return meetings, rows.Err()
}

func (r *meetingRepository) Update(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error) {
	query := `UPDATE meetings SET title=?, description=?, attendees=?, start_time=?, end_time=?,
		completed=?, is_recurring=?, recurrence_pattern=?, recurrence_interval=?,
		recurrence_end_date=?, updated_at=?
		WHERE id=? AND user_id=?`
	meeting.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, query,
		meeting.Title, meeting.Description, meeting.Attendees, meeting.StartTime,
		meeting.EndTime, meeting.Completed, meeting.IsRecurring, meeting.RecurrencePattern,
		meeting.RecurrenceInterval, meeting.RecurrenceEndDate, meeting.UpdatedAt,
		meeting.ID, meeting.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update meeting: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, models.ErrNotFound
	}
	return meeting, nil
}

func (r *meetingRepository) UpdateChildrenContent(ctx context.Context, parentID int64, patch repository.ContentPatch) error {
	query := `UPDATE meetings SET title=?, description=?, attendees=?, updated_at=? WHERE parent_id=?`
	_, err := r.db.ExecContext(ctx, query,
		patch.Title, patch.Description, patch.Attendees, time.Now(), parentID)
	if err != nil {
		return fmt.Errorf("failed to update meeting occurrences: %w", err)
	}
	return nil
}

func (r *meetingRepository) DeleteChildren(ctx context.Context, parentID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM meetings WHERE parent_id = ?`, parentID); err != nil {
		return fmt.Errorf("failed to delete meeting occurrences: %w", err)
	}
	return nil
}

func (r *meetingRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM meetings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}
