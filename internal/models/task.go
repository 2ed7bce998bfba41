package models

import (
	"time"

	"github.com/tigerhq/tiger/internal/recurrence"
)

// TaskPriority represents the priority level of a task
type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Task represents a schedulable to-do item. A task with ParentID set is a
// generated occurrence of a recurring parent and never carries recurrence
// fields of its own.
type Task struct {
	ID                 int64               `json:"id" db:"id"`
	UserID             int64               `json:"user_id" db:"user_id"`
	Title              string              `json:"title" db:"title"`
	Description        string              `json:"description" db:"description"`
	Priority           TaskPriority        `json:"priority" db:"priority"`
	DueDate            *time.Time          `json:"due_date" db:"due_date"`
	Completed          bool                `json:"completed" db:"completed"`
	IsRecurring        bool                `json:"is_recurring" db:"is_recurring"`
	RecurrencePattern  *recurrence.Pattern `json:"recurrence_pattern" db:"recurrence_pattern"`
	RecurrenceInterval *int                `json:"recurrence_interval" db:"recurrence_interval"`
	RecurrenceEndDate  *time.Time          `json:"recurrence_end_date" db:"recurrence_end_date"`
	ParentID           *int64              `json:"parent_id" db:"parent_id"`
	CreatedAt          time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at" db:"updated_at"`
	Subtasks           []Subtask           `json:"subtasks,omitempty"`
}

// IsChild returns true if the task is a generated occurrence.
func (t *Task) IsChild() bool {
	return t.ParentID != nil
}

// IsOverdue returns true if the task has a due date and it's passed.
func (t *Task) IsOverdue() bool {
	if t.DueDate == nil || t.Completed {
		return false
	}
	return time.Now().After(*t.DueDate)
}

// Rule returns the task's recurrence rule and whether the task is a recurring
// parent at all.
func (t *Task) Rule() (recurrence.Rule, bool) {
	return ruleFrom(t.IsRecurring, t.ParentID, t.RecurrencePattern, t.RecurrenceInterval, t.RecurrenceEndDate)
}

// AnchorTime implements recurrence.Occurrent. Recurring tasks always have a
// due date; validation enforces that before the engine runs.
func (t *Task) AnchorTime() time.Time {
	if t.DueDate == nil {
		return time.Time{}
	}
	return *t.DueDate
}

// Reschedule moves the task's anchor to the given instant.
func (t *Task) Reschedule(anchor time.Time) {
	t.DueDate = &anchor
}

// SpawnOccurrence implements recurrence.Occurrent.
func (t *Task) SpawnOccurrence(anchor time.Time) *Task {
	parentID := t.ID
	due := anchor
	return &Task{
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		DueDate:     &due,
		ParentID:    &parentID,
	}
}

// ruleFrom assembles a recurrence.Rule from the raw columns shared by every
// occurrence-bearing entity. A nil interval defaults to 1: null + recurring is
// not a representable state.
func ruleFrom(isRecurring bool, parentID *int64, pattern *recurrence.Pattern, interval *int, end *time.Time) (recurrence.Rule, bool) {
	if !isRecurring || parentID != nil {
		return recurrence.Rule{}, false
	}
	rule := recurrence.Rule{Interval: 1, EndDate: end}
	if pattern != nil {
		rule.Pattern = *pattern
	}
	if interval != nil {
		rule.Interval = *interval
	}
	return rule, true
}

// Subtask is a single checklist entry under a task.
type Subtask struct {
	ID        int64     `json:"id" db:"id"`
	TaskID    int64     `json:"task_id" db:"task_id"`
	Title     string    `json:"title" db:"title"`
	Done      bool      `json:"done" db:"done"`
	Generated bool      `json:"generated" db:"generated"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
