package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tigerhq/tiger/internal/models"
)

// UsageStatus describes a user's position against their plan's AI allowance.
type UsageStatus struct {
	Plan      models.Plan `json:"plan"`
	Period    string      `json:"period"`
	Used      int         `json:"used"`
	Limit     int         `json:"limit"` // 0 means unmetered
	Remaining int         `json:"remaining"`
}

// UsageStatus reports the current period's AI usage for a user.
func (s *Service) UsageStatus(ctx context.Context, userID int64) (*UsageStatus, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	period := models.UsagePeriod(time.Now())
	used, err := s.Usage.Get(ctx, userID, period)
	if err != nil {
		return nil, err
	}

	status := &UsageStatus{Plan: user.Plan, Period: period, Used: used}
	if user.Plan == models.PlanFree {
		status.Limit = s.opts.FreePlanGenerations
		if status.Remaining = status.Limit - used; status.Remaining < 0 {
			status.Remaining = 0
		}
	}
	return status, nil
}

// GenerateSubtasks asks the configured AI generator to break a task down into
// subtasks, meters the call against the user's plan, and persists the result.
// The quota check, the increment and the subtask inserts happen in one
// transaction so a failed generation never consumes quota.
func (s *Service) GenerateSubtasks(ctx context.Context, userID, taskID int64) ([]models.Subtask, error) {
	if s.generator == nil {
		return nil, ErrAIUnavailable
	}

	task, err := s.Tasks.GetByID(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Check the allowance before spending an AI call; the transactional
	// increment below still guards against races past the limit.
	period := models.UsagePeriod(time.Now())
	if user.Plan == models.PlanFree {
		used, err := s.Usage.Get(ctx, userID, period)
		if err != nil {
			return nil, err
		}
		if used >= s.opts.FreePlanGenerations {
			return nil, ErrQuotaExceeded
		}
	}

	titles, err := s.generator.GenerateSubtasks(ctx, task, 8)
	if err != nil {
		return nil, fmt.Errorf("failed to generate subtasks for task %d: %w", taskID, err)
	}

	var created []models.Subtask
	err = s.runner.RunInTx(ctx, func(tx *sql.Tx) error {
		if user.Plan == models.PlanFree {
			count, err := s.Usage.WithTx(tx).Increment(ctx, userID, period)
			if err != nil {
				return err
			}
			if count > s.opts.FreePlanGenerations {
				return ErrQuotaExceeded
			}
		}

		subtasks := s.Subtasks.WithTx(tx)
		for _, title := range titles {
			st := &models.Subtask{TaskID: taskID, Title: title, Generated: true}
			if _, err := subtasks.Create(ctx, st); err != nil {
				return err
			}
			created = append(created, *st)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	aiGenerations.Inc()
	s.logger.WithFields(logrus.Fields{
		"user_id": userID,
		"task_id": taskID,
		"count":   len(created),
	}).Info("Generated subtasks")
	return created, nil
}
