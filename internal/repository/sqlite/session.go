package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tigerhq/tiger/internal/models"
	"github.com/tigerhq/tiger/internal/repository"
)

type pomodoroRepository struct {
	db *sql.DB
}

// NewPomodoroRepository creates a new pomodoro session repository
func NewPomodoroRepository(db *sql.DB) repository.PomodoroRepository {
	return &pomodoroRepository{db: db}
}

func (r *pomodoroRepository) Create(ctx context.Context, session *models.PomodoroSession) (*models.PomodoroSession, error) {
	query := `INSERT INTO pomodoro_sessions (user_id, kind, started_at, duration_seconds, completed)
		VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		session.UserID, session.Kind, session.StartedAt,
		int64(session.Duration.Seconds()), session.Completed)
	if err != nil {
		return nil, fmt.Errorf("failed to create pomodoro session: %w", err)
	}
	session.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read pomodoro session id: %w", err)
	}
	return session, nil
}

func (r *pomodoroRepository) ListByUserAndDay(ctx context.Context, userID int64, day time.Time) ([]*models.PomodoroSession, error) {
	from, to := dayBounds(day)
	query := `SELECT id, user_id, kind, started_at, duration_seconds, completed
		FROM pomodoro_sessions
		WHERE user_id = ? AND started_at >= ? AND started_at < ?
		ORDER BY started_at ASC`
	rows, err := r.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query pomodoro sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.PomodoroSession
	for rows.Next() {
		s := &models.PomodoroSession{}
		var seconds int64
		if err := rows.Scan(&s.ID, &s.UserID, &s.Kind, &s.StartedAt, &seconds, &s.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan pomodoro session: %w", err)
		}
		s.Duration = time.Duration(seconds) * time.Second
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *pomodoroRepository) Complete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE pomodoro_sessions SET completed=1 WHERE id=? AND user_id=?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to complete pomodoro session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *pomodoroRepository) StatsForDay(ctx context.Context, userID int64, day time.Time) (*models.PomodoroStats, error) {
	from, to := dayBounds(day)
	query := `SELECT COUNT(*), COALESCE(SUM(duration_seconds), 0)
		FROM pomodoro_sessions
		WHERE user_id = ? AND kind = ? AND completed = 1 AND started_at >= ? AND started_at < ?`
	var count int
	var seconds int64
	err := r.db.QueryRowContext(ctx, query, userID, models.PomodoroFocus, from, to).Scan(&count, &seconds)
	if err != nil {
		return nil, fmt.Errorf("failed to compute pomodoro stats: %w", err)
	}
	return &models.PomodoroStats{
		Day:            from.Format("2006-01-02"),
		CompletedFocus: count,
		FocusedMinutes: int(seconds / 60),
	}, nil
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return from, from.AddDate(0, 0, 1)
}

type studyRepository struct {
	db *sql.DB
}

// NewStudyRepository creates a new study session repository
func NewStudyRepository(db *sql.DB) repository.StudyRepository {
	return &studyRepository{db: db}
}

func (r *studyRepository) Create(ctx context.Context, session *models.StudySession) (*models.StudySession, error) {
	query := `INSERT INTO study_sessions (user_id, subject, notes, started_at, ended_at, minutes)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		session.UserID, session.Subject, session.Notes,
		session.StartedAt, session.EndedAt, session.Minutes)
	if err != nil {
		return nil, fmt.Errorf("failed to create study session: %w", err)
	}
	session.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read study session id: %w", err)
	}
	return session, nil
}

func (r *studyRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*models.StudySession, error) {
	query := `SELECT id, user_id, subject, notes, started_at, ended_at, minutes
		FROM study_sessions WHERE user_id = ? ORDER BY started_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query study sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.StudySession
	for rows.Next() {
		s := &models.StudySession{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.Subject, &s.Notes, &s.StartedAt, &s.EndedAt, &s.Minutes); err != nil {
			return nil, fmt.Errorf("failed to scan study session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *studyRepository) SubjectTotals(ctx context.Context, userID int64) ([]models.SubjectTotal, error) {
	query := `SELECT subject, COALESCE(SUM(minutes), 0)
		FROM study_sessions WHERE user_id = ?
		GROUP BY subject ORDER BY SUM(minutes) DESC`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query study totals: %w", err)
	}
	defer rows.Close()

	var totals []models.SubjectTotal
	for rows.Next() {
		var t models.SubjectTotal
		if err := rows.Scan(&t.Subject, &t.Minutes); err != nil {
			return nil, fmt.Errorf("failed to scan study total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
