package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tigerhq/tiger/internal/models"
	"github.com/tigerhq/tiger/internal/recurrence"
	"github.com/tigerhq/tiger/internal/repository"
)

// TaskUpdate is a validated description of a task edit. Nil fields are left
// untouched. Propagate applies content fields (title, description, priority)
// to existing occurrences of a recurring parent; anchor times and completion
// are never propagated.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *models.TaskPriority
	Completed   *bool
	DueDate     *time.Time
	IsRecurring *bool
	Pattern     *recurrence.Pattern
	Interval    *int
	EndDate     *time.Time
	Propagate   bool
}

func (u *TaskUpdate) touchesRecurrence() bool {
	return u.IsRecurring != nil || u.Pattern != nil || u.Interval != nil || u.EndDate != nil
}

func (u *TaskUpdate) touchesSchedule() bool {
	return u.DueDate != nil || u.touchesRecurrence()
}

// CreateTask persists a new task. For a recurring task the parent row and its
// initial occurrence window are written in one transaction; on any failure
// nothing is persisted.
func (s *Service) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	task.ParentID = nil
	task.Completed = false
	if err := normalizeTaskRecurrence(task); err != nil {
		return nil, err
	}

	rule, recurring := task.Rule()
	if !recurring {
		return s.Tasks.Create(ctx, task)
	}

	err := s.runner.RunInTx(ctx, func(tx *sql.Tx) error {
		tasks := s.Tasks.WithTx(tx)
		if _, err := tasks.Create(ctx, task); err != nil {
			return err
		}
		children, err := recurrence.Generate(task, rule, recurrence.Options{MaxCount: s.lookahead()})
		if err != nil {
			return err
		}
		if err := tasks.CreateBatch(ctx, children); err != nil {
			return err
		}
		occurrencesGenerated.WithLabelValues("task").Add(float64(len(children)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create recurring task: %w", err)
	}

	s.logger.WithField("task_id", task.ID).Info("Created recurring task")
	return task, nil
}

// UpdateTask applies a validated edit to a task.
//
// Editing the due date or the recurrence configuration of a recurring parent
// discards and regenerates its occurrence window. Turning recurrence off
// without moving the due date keeps existing occurrences as one-off tasks and
// only stops future generation.
func (s *Service) UpdateTask(ctx context.Context, userID, id int64, upd TaskUpdate) (*models.Task, error) {
	task, err := s.Tasks.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if task.IsChild() && upd.touchesSchedule() {
		return nil, ErrOccurrenceEdit
	}

	applyTaskUpdate(task, upd)
	if err := normalizeTaskRecurrence(task); err != nil {
		return nil, err
	}

	switch {
	case upd.DueDate != nil, upd.touchesRecurrence() && task.IsRecurring:
		// Schedule changed: rebuild the occurrence window.
		if upd.DueDate != nil {
			task.Reschedule(*upd.DueDate)
		}
		var rule *recurrence.Rule
		if r, ok := task.Rule(); ok {
			rule = &r
		}
		err = s.runner.RunInTx(ctx, func(tx *sql.Tx) error {
			tasks := s.Tasks.WithTx(tx)
			if _, err := tasks.Update(ctx, task); err != nil {
				return err
			}
			return rebuildOccurrences(ctx, "task", task, rule, s.lookahead(),
				func(ctx context.Context) error { return tasks.DeleteChildren(ctx, task.ID) },
				func(ctx context.Context, children []*models.Task) error { return tasks.CreateBatch(ctx, children) },
			)
		})

	case upd.Propagate && !task.IsChild():
		patch := repository.ContentPatch{
			Title:       task.Title,
			Description: task.Description,
			Priority:    task.Priority,
		}
		err = s.runner.RunInTx(ctx, func(tx *sql.Tx) error {
			tasks := s.Tasks.WithTx(tx)
			if _, err := tasks.Update(ctx, task); err != nil {
				return err
			}
			return tasks.UpdateChildrenContent(ctx, task.ID, patch)
		})

	default:
		_, err = s.Tasks.Update(ctx, task)
	}
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update task %d: %w", id, err)
	}
	return task, nil
}

// DeleteTask removes a task. Deleting a recurring parent removes every
// generated occurrence with it; deleting a single occurrence leaves its
// siblings and parent untouched.
func (s *Service) DeleteTask(ctx context.Context, userID, id int64) error {
	task, err := s.Tasks.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}

	if task.IsChild() {
		return s.Tasks.Delete(ctx, id, userID)
	}

	return s.runner.RunInTx(ctx, func(tx *sql.Tx) error {
		tasks := s.Tasks.WithTx(tx)
		if err := tasks.DeleteChildren(ctx, id); err != nil {
			return err
		}
		return tasks.Delete(ctx, id, userID)
	})
}

// CompleteTask flips the completion flag of a single task or occurrence.
func (s *Service) CompleteTask(ctx context.Context, userID, id int64, completed bool) error {
	return s.Tasks.SetCompleted(ctx, id, userID, completed)
}

// GetTaskWithSubtasks loads a task and attaches its subtasks.
func (s *Service) GetTaskWithSubtasks(ctx context.Context, userID, id int64) (*models.Task, error) {
	task, err := s.Tasks.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	subtasks, err := s.Subtasks.ListByTask(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Subtasks = subtasks
	return task, nil
}

func applyTaskUpdate(task *models.Task, upd TaskUpdate) {
	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Priority != nil {
		task.Priority = *upd.Priority
	}
	if upd.Completed != nil {
		task.Completed = *upd.Completed
	}
	if upd.IsRecurring != nil {
		task.IsRecurring = *upd.IsRecurring
	}
	if upd.Pattern != nil {
		task.RecurrencePattern = upd.Pattern
	}
	if upd.Interval != nil {
		task.RecurrenceInterval = upd.Interval
	}
	if upd.EndDate != nil {
		task.RecurrenceEndDate = upd.EndDate
	}
}

// normalizeTaskRecurrence enforces the recurrence invariants on a parent: a
// non-recurring task carries no recurrence fields, a recurring one has a due
// date, a valid pattern and an interval of at least 1.
func normalizeTaskRecurrence(task *models.Task) error {
	if !task.IsRecurring {
		task.RecurrencePattern = nil
		task.RecurrenceInterval = nil
		task.RecurrenceEndDate = nil
		return nil
	}

	if task.DueDate == nil {
		return &recurrence.ValidationError{Err: errors.New("a recurring task requires a due date")}
	}
	if task.RecurrenceInterval == nil {
		one := 1
		task.RecurrenceInterval = &one
	}
	rule, _ := task.Rule()
	return rule.Validate(task.AnchorTime())
}
