package models

import (
	"time"

	"github.com/tigerhq/tiger/internal/recurrence"
)

// Meeting represents a scheduled meeting. It differs from an appointment in
// carrying an attendee list; both share the same recurrence behavior.
type Meeting struct {
	ID                 int64               `json:"id" db:"id"`
	UserID             int64               `json:"user_id" db:"user_id"`
	Title              string              `json:"title" db:"title"`
	Description        string              `json:"description" db:"description"`
	Attendees          string              `json:"attendees" db:"attendees"`
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

// IsChild returns true if the meeting is a generated occurrence.
func (m *Meeting) IsChild() bool {
	return m.ParentID != nil
}

// Duration returns the length of the meeting.
func (m *Meeting) Duration() time.Duration {
	return m.EndTime.Sub(m.StartTime)
}

// Rule returns the meeting's recurrence rule and whether it is a recurring
// parent.
func (m *Meeting) Rule() (recurrence.Rule, bool) {
	return ruleFrom(m.IsRecurring, m.ParentID, m.RecurrencePattern, m.RecurrenceInterval, m.RecurrenceEndDate)
}

// AnchorTime implements recurrence.Occurrent.
func (m *Meeting) AnchorTime() time.Time {
	return m.StartTime
}

// Reschedule moves the meeting to start at anchor, preserving its duration.
func (m *Meeting) Reschedule(anchor time.Time) {
	d := m.Duration()
	m.StartTime = anchor
	m.EndTime = anchor.Add(d)
}

// SpawnOccurrence implements recurrence.Occurrent.
func (m *Meeting) SpawnOccurrence(anchor time.Time) *Meeting {
	parentID := m.ID
	return &Meeting{
		UserID:      m.UserID,
		Title:       m.Title,
		Description: m.Description,
		Attendees:   m.Attendees,
		StartTime:   anchor,
		EndTime:     anchor.Add(m.Duration()),
		ParentID:    &parentID,
	}
}
