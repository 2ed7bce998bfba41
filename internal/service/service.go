package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tigerhq/tiger/internal/ai"
	"github.com/tigerhq/tiger/internal/models"
	"github.com/tigerhq/tiger/internal/repository"
)

// ErrOccurrenceEdit is returned when a mutation tries to change schedule or
// recurrence fields on a generated occurrence. Those fields belong to the
// parent; only content and completion are editable per occurrence.
var ErrOccurrenceEdit = errors.New("schedule and recurrence fields cannot be edited on a generated occurrence")

// ErrQuotaExceeded is returned when a metered feature is used past the
// user's plan limit for the current period.
var ErrQuotaExceeded = errors.New("monthly AI generation quota exceeded")

// ErrAIUnavailable is returned when AI generation is requested but no
// generator is configured.
var ErrAIUnavailable = errors.New("AI generation is not configured")

// Options holds the tunables the service needs beyond its collaborators.
type Options struct {
	// Lookahead is how many future occurrences are materialized per recurring
	// parent. Defaults to recurrence.DefaultLookahead when zero.
	Lookahead int
	// FreePlanGenerations is the monthly AI generation allowance on the free
	// plan. The pro plan is unmetered.
	FreePlanGenerations int
}

// Service is the central business logic layer that holds all repositories
// and provides high-level methods for the application.
type Service struct {
	runner    repository.TxRunner
	logger    *logrus.Logger
	opts      Options
	generator ai.SubtaskGenerator

	Users        repository.UserRepository
	Tasks        repository.TaskRepository
	Subtasks     repository.SubtaskRepository
	Notes        repository.NoteRepository
	Appointments repository.AppointmentRepository
	Meetings     repository.MeetingRepository
	Pomodoro     repository.PomodoroRepository
	Study        repository.StudyRepository
	Usage        repository.UsageRepository
}

// New creates a new Service with all required dependencies. generator may be
// nil, which disables AI subtask generation.
func New(runner repository.TxRunner, logger *logrus.Logger, opts Options, generator ai.SubtaskGenerator,
	users repository.UserRepository,
	tasks repository.TaskRepository,
	subtasks repository.SubtaskRepository,
	notes repository.NoteRepository,
	appointments repository.AppointmentRepository,
	meetings repository.MeetingRepository,
	pomodoro repository.PomodoroRepository,
	study repository.StudyRepository,
	usage repository.UsageRepository,
) *Service {
	return &Service{
		runner: runner, logger: logger, opts: opts, generator: generator,
		Users: users, Tasks: tasks, Subtasks: subtasks, Notes: notes,
		Appointments: appointments, Meetings: meetings,
		Pomodoro: pomodoro, Study: study, Usage: usage,
	}
}

// EnsureTelegramUser retrieves the user linked to a Telegram chat, creating
// an account on first contact so the bot works without prior signup.
func (s *Service) EnsureTelegramUser(ctx context.Context, chatID int64, name string) (*models.User, error) {
	name = strings.TrimSpace(name)

	user, err := s.Users.GetByTelegramChatID(ctx, chatID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to lookup user (chat_id=%d): %w", chatID, err)
	}

	now := time.Now()
	user = &models.User{
		Name:           name,
		Plan:           models.PlanFree,
		TelegramChatID: &chatID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	user, err = s.Users.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user (chat_id=%d): %w", chatID, err)
	}
	s.logger.Infof("Created new user %q for Telegram chat %d", name, chatID)
	return user, nil
}
