package models

import (
	"testing"
	"time"

	"github.com/tigerhq/tiger/internal/recurrence"
)

func TestTaskRule(t *testing.T) {
	pattern := recurrence.PatternWeekly
	interval := 2
	due := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)

	t.Run("recurring parent yields its rule", func(t *testing.T) {
		task := &Task{
			IsRecurring:        true,
			DueDate:            &due,
			RecurrencePattern:  &pattern,
			RecurrenceInterval: &interval,
		}
		rule, ok := task.Rule()
		if !ok {
			t.Fatal("Rule() ok = false, want true")
		}
		if rule.Pattern != recurrence.PatternWeekly || rule.Interval != 2 {
			t.Errorf("Rule() = %+v, want weekly every 2", rule)
		}
	})

	t.Run("nil interval defaults to 1", func(t *testing.T) {
		task := &Task{IsRecurring: true, DueDate: &due, RecurrencePattern: &pattern}
		rule, ok := task.Rule()
		if !ok {
			t.Fatal("Rule() ok = false, want true")
		}
		if rule.Interval != 1 {
			t.Errorf("Rule().Interval = %d, want 1", rule.Interval)
		}
	})

	t.Run("generated occurrence never has a rule", func(t *testing.T) {
		parentID := int64(7)
		task := &Task{
			IsRecurring:        true,
			ParentID:           &parentID,
			RecurrencePattern:  &pattern,
			RecurrenceInterval: &interval,
		}
		if _, ok := task.Rule(); ok {
			t.Error("Rule() ok = true for a child, want false")
		}
	})

	t.Run("non-recurring task has no rule", func(t *testing.T) {
		task := &Task{DueDate: &due}
		if _, ok := task.Rule(); ok {
			t.Error("Rule() ok = true, want false")
		}
	})
}

func TestTaskSpawnOccurrence(t *testing.T) {
	due := time.Date(2024, time.March, 4, 9, 0, 0, 0, time.UTC)
	pattern := recurrence.PatternDaily
	parent := &Task{
		ID:                10,
		UserID:            3,
		Title:             "Water plants",
		Description:       "Back porch too",
		Priority:          TaskPriorityLow,
		Completed:         true,
		IsRecurring:       true,
		DueDate:           &due,
		RecurrencePattern: &pattern,
	}

	anchor := due.AddDate(0, 0, 1)
	child := parent.SpawnOccurrence(anchor)

	if child.Title != parent.Title || child.Description != parent.Description || child.Priority != parent.Priority {
		t.Errorf("child content = %q/%q/%q, want parent's", child.Title, child.Description, child.Priority)
	}
	if child.UserID != parent.UserID {
		t.Errorf("child.UserID = %d, want %d", child.UserID, parent.UserID)
	}
	if child.ParentID == nil || *child.ParentID != parent.ID {
		t.Errorf("child.ParentID = %v, want %d", child.ParentID, parent.ID)
	}
	if child.DueDate == nil || !child.DueDate.Equal(anchor) {
		t.Errorf("child.DueDate = %v, want %s", child.DueDate, anchor)
	}
	if child.Completed {
		t.Error("child.Completed = true, want false")
	}
	if child.IsRecurring || child.RecurrencePattern != nil {
		t.Error("child carries recurrence state, want none")
	}
}

func TestAppointmentSpawnPreservesDuration(t *testing.T) {
	start := time.Date(2024, time.June, 3, 14, 0, 0, 0, time.UTC)
	parent := &Appointment{
		ID:        4,
		UserID:    1,
		Title:     "Physio",
		Location:  "Clinic",
		StartTime: start,
		EndTime:   start.Add(45 * time.Minute),
	}

	anchor := start.AddDate(0, 0, 7)
	child := parent.SpawnOccurrence(anchor)

	if !child.StartTime.Equal(anchor) {
		t.Errorf("child.StartTime = %s, want %s", child.StartTime, anchor)
	}
	if got := child.Duration(); got != 45*time.Minute {
		t.Errorf("child.Duration() = %s, want 45m", got)
	}
	if child.Location != parent.Location {
		t.Errorf("child.Location = %q, want %q", child.Location, parent.Location)
	}
}

func TestMeetingReschedulePreservesDuration(t *testing.T) {
	start := time.Date(2024, time.June, 3, 10, 0, 0, 0, time.UTC)
	meeting := &Meeting{
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Attendees: "ana, pieter",
	}

	newStart := start.Add(2 * time.Hour)
	meeting.Reschedule(newStart)

	if !meeting.StartTime.Equal(newStart) {
		t.Errorf("StartTime = %s, want %s", meeting.StartTime, newStart)
	}
	if got := meeting.Duration(); got != 30*time.Minute {
		t.Errorf("Duration() = %s, want 30m", got)
	}
}

func TestUsagePeriod(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"plain month", time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC), "2024-03"},
		{"normalizes to UTC", time.Date(2024, time.January, 1, 0, 30, 0, 0, time.FixedZone("CET", 3600)), "2023-12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UsagePeriod(tt.at); got != tt.want {
				t.Errorf("UsagePeriod() = %q, want %q", got, tt.want)
			}
		})
	}
}
