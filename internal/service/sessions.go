package service

import (
	"context"
	"errors"
	"time"

	"github.com/tigerhq/tiger/internal/models"
)

// StartPomodoro records the start of a timer interval.
func (s *Service) StartPomodoro(ctx context.Context, userID int64, kind models.PomodoroKind, duration time.Duration) (*models.PomodoroSession, error) {
	if duration <= 0 {
		return nil, errors.New("pomodoro duration must be positive")
	}
	session := &models.PomodoroSession{
		UserID:    userID,
		Kind:      kind,
		StartedAt: time.Now(),
		Duration:  duration,
	}
	return s.Pomodoro.Create(ctx, session)
}

// CompletePomodoro marks a timer interval as finished.
func (s *Service) CompletePomodoro(ctx context.Context, userID, id int64) error {
	return s.Pomodoro.Complete(ctx, id, userID)
}

// PomodoroStats aggregates completed focus intervals for one day.
func (s *Service) PomodoroStats(ctx context.Context, userID int64, day time.Time) (*models.PomodoroStats, error) {
	return s.Pomodoro.StatsForDay(ctx, userID, day)
}

// LogStudySession records a finished block of study time. Minutes is derived
// from the start/end pair when both are present and minutes was not supplied.
func (s *Service) LogStudySession(ctx context.Context, session *models.StudySession) (*models.StudySession, error) {
	if session.Subject == "" {
		return nil, errors.New("study session requires a subject")
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now()
	}
	if session.Minutes == 0 && session.EndedAt != nil {
		session.Minutes = int(session.EndedAt.Sub(session.StartedAt).Minutes())
	}
	if session.Minutes < 0 {
		return nil, errors.New("study session cannot end before it starts")
	}
	return s.Study.Create(ctx, session)
}

// StudyTotals aggregates logged study time per subject.
func (s *Service) StudyTotals(ctx context.Context, userID int64) ([]models.SubjectTotal, error) {
	return s.Study.SubjectTotals(ctx, userID)
}
