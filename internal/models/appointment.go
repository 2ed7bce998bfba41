package models

import (
	"time"

	"github.com/tigerhq/tiger/internal/recurrence"
)

// Appointment represents a calendar appointment with a start/end pair. The
// start time is the recurrence anchor; generated occurrences preserve the
// parent's duration.
type Appointment struct {
	ID                 int64               `json:"id" db:"id"`
	UserID             int64               `json:"user_id" db:"user_id"`
	Title              string              `json:"title" db:"title"`
	Description        string              `json:"description" db:"description"`
	Location           string              `json:"location" db:"location"`
	StartTime          time.Time           `json:"start_time" db:"start_time"`
	EndTime            time.Time           `json:"end_time" db:"end_time"`
	Completed          bool                `json:"completed" db:"completed"`
	IsRecurring        bool                `json:"is_recurring" db:"is_recurring"`
	RecurrencePattern  *recurrence.Pattern `json:"recurrence_pattern" db:"recurrence_pattern"`
	RecurrenceInterval *int                `json:"recurrence_interval" db:"recurrence_interval"`
	RecurrenceEndDate  *time.Time          `json:"recurrence_end_date" db:"recurrence_end_date"`
	ParentID           *int64              `json:"parent_id" db:"parent_id"`
	CreatedAt          time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at" db:"updated_at"`
}

// IsChild returns true if the appointment is a generated occurrence.
func (a *Appointment) IsChild() bool {
	return a.ParentID != nil
}

// Duration returns the length of the appointment.
func (a *Appointment) Duration() time.Duration {
	return a.EndTime.Sub(a.StartTime)
}

// IsUpcoming returns true if the appointment hasn't started yet.
func (a *Appointment) IsUpcoming() bool {
	return time.Now().Before(a.StartTime)
}

// Rule returns the appointment's recurrence rule and whether it is a
// recurring parent.
func (a *Appointment) Rule() (recurrence.Rule, bool) {
	return ruleFrom(a.IsRecurring, a.ParentID, a.RecurrencePattern, a.RecurrenceInterval, a.RecurrenceEndDate)
}

// AnchorTime implements recurrence.Occurrent.
func (a *Appointment) AnchorTime() time.Time {
	return a.StartTime
}

// Reschedule moves the appointment to start at anchor, shifting the end so
// the duration is preserved.
func (a *Appointment) Reschedule(anchor time.Time) {
	d := a.Duration()
	a.StartTime = anchor
	a.EndTime = anchor.Add(d)
}

// SpawnOccurrence implements recurrence.Occurrent.
func (a *Appointment) SpawnOccurrence(anchor time.Time) *Appointment {
	parentID := a.ID
	return &Appointment{
		UserID:      a.UserID,
		Title:       a.Title,
		Description: a.Description,
		Location:    a.Location,
		StartTime:   anchor,
		EndTime:     anchor.Add(a.Duration()),
		ParentID:    &parentID,
	}
}
