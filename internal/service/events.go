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

// EventUpdate is a validated description of an appointment or meeting edit.
// Nil fields are left untouched. Location applies to appointments, Attendees
// to meetings.
type EventUpdate struct {
	Title       *string
	Description *string
	Location    *string
	Attendees   *string
	Completed   *bool
	StartTime   *time.Time
	EndTime     *time.Time
	IsRecurring *bool
	Pattern     *recurrence.Pattern
	Interval    *int
	EndDate     *time.Time
	Propagate   bool
}

func (u *EventUpdate) touchesRecurrence() bool {
	return u.IsRecurring != nil || u.Pattern != nil || u.Interval != nil || u.EndDate != nil
}

func (u *EventUpdate) touchesSchedule() bool {
	return u.StartTime != nil || u.EndTime != nil || u.touchesRecurrence()
}

// CreateAppointment persists a new appointment, materializing the occurrence
// window in the same transaction when it recurs.
func (s *Service) CreateAppointment(ctx context.Context, appt *models.Appointment) (*models.Appointment, error) {
	appt.ParentID = nil
	appt.Completed = false
	if err := normalizeAppointmentRecurrence(appt); err != nil {
		return nil, err
	}

	rule, recurring := appt.Rule()
	if !recurring {
		return s.Appointments.Create(ctx, appt)
	}

	err := s.runner.RunInTx(ctx, func(tx *sql.Tx) error {
		appts := s.Appointments.WithTx(tx)
		if _, err := appts.Create(ctx, appt); err != nil {
			return err
		}
		children, err := recurrence.Generate(appt, rule, recurrence.Options{MaxCount: s.lookahead()})
		if err != nil {
			return err
		}
		if err := appts.CreateBatch(ctx, children); err != nil {
			return err
		}
		occurrencesGenerated.WithLabelValues("appointment").Add(float64(len(children)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create recurring appointment: %w", err)
	}
	return appt, nil
}

// UpdateAppointment applies a validated edit to an appointment, following the
// same schedule/content split as UpdateTask.
func (s *Service) UpdateAppointment(ctx context.Context, userID, id int64, upd EventUpdate) (*models.Appointment, error) {
	appt, err := s.Appointments.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if appt.IsChild() && upd.touchesSchedule() {
		return nil, ErrOccurrenceEdit
	}

	applyAppointmentUpdate(appt, upd)
	if err := normalizeAppointmentRecurrence(appt); err != nil {
		return nil, err
	}

	switch {
	case upd.StartTime != nil, upd.EndTime != nil, upd.touchesRecurrence() && appt.IsRecurring:
		var rule *recurrence.Rule
		if r, ok := appt.Rule(); ok {
			rule = &r
		}
		err = s.runner.RunInTx(ctx, func(tx *sql.Tx) error {
			appts := s.Appointments.WithTx(tx)
			if _, err := appts.Update(ctx, appt); err != nil {
				return err
			}
			return rebuildOccurrences(ctx, "appointment", appt, rule, s.lookahead(),
				func(ctx context.Context) error { return appts.DeleteChildren(ctx, appt.ID) },
				func(ctx context.Context, children []*models.Appointment) error {
					return appts.CreateBatch(ctx, children)
				},
			)
		})

	case upd.Propagate && !appt.IsChild():
		patch := repository.ContentPatch{
			Title:       appt.Title,
			Description: appt.Description,
			Location:    appt.Location,
		}
		err = s.runner.RunInTx(ctx, func(tx *sql.Tx) error {
			appts := s.Appointments.WithTx(tx)
			if _, err := appts.Update(ctx, appt); err != nil {
				return err
			}
			return appts.UpdateChildrenContent(ctx, appt.ID, patch)
		})

	default:
		_, err = s.Appointments.Update(ctx, appt)
	}
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update appointment %d: %w", id, err)
	}
	return appt, nil
}

// DeleteAppointment removes an appointment, cascading to occurrences when a
// recurring parent is deleted.
func (s *Service) DeleteAppointment(ctx context.Context, userID, id int64) error {
	appt, err := s.Appointments.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if appt.IsChild() {
		return s.Appointments.Delete(ctx, id, userID)
	}
	return s.runner.RunInTx(ctx, func(tx *sql.Tx) error {
		appts := s.Appointments.WithTx(tx)
		if err := appts.DeleteChildren(ctx, id); err != nil {
			return err
		}
		return appts.Delete(ctx, id, userID)
	})
}

// CreateMeeting persists a new meeting, materializing the occurrence window
// in the same transaction when it recurs.
func (s *Service) CreateMeeting(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error) {
	meeting.ParentID = nil
	meeting.Completed = false
	if err := normalizeMeetingRecurrence(meeting); err != nil {
		return nil, err
	}

	rule, recurring := meeting.Rule()
	if !recurring {
		return s.Meetings.Create(ctx, meeting)
	}

	err := s.runner.RunInTx(ctx, func(tx *sql.Tx) error {
		meetings := s.Meetings.WithTx(tx)
		if _, err := meetings.Create(ctx, meeting); err != nil {
			return err
		}
		children, err := recurrence.Generate(meeting, rule, recurrence.Options{MaxCount: s.lookahead()})
		if err != nil {
			return err
		}
		if err := meetings.CreateBatch(ctx, children); err != nil {
			return err
		}
		occurrencesGenerated.WithLabelValues("meeting").Add(float64(len(children)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create recurring meeting: %w", err)
	}
	return meeting, nil
}

// UpdateMeeting applies a validated edit to a meeting.
func (s *Service) UpdateMeeting(ctx context.Context, userID, id int64, upd EventUpdate) (*models.Meeting, error) {
	meeting, err := s.Meetings.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if meeting.IsChild() && upd.touchesSchedule() {
		return nil, ErrOccurrenceEdit
	}

	applyMeetingUpdate(meeting, upd)
	if err := normalizeMeetingRecurrence(meeting); err != nil {
		return nil, err
	}

	switch {
	case upd.StartTime != nil, upd.EndTime != nil, upd.touchesRecurrence() && meeting.IsRecurring:
		var rule *recurrence.Rule
		if r, ok := meeting.Rule(); ok {
			rule = &r
		}
		err = s.runner.RunInTx(ctx, func(tx *sql.Tx) error {
			meetings := s.Meetings.WithTx(tx)
			if _, err := meetings.Update(ctx, meeting); err != nil {
				return err
			}
			return rebuildOccurrences(ctx, "meeting", meeting, rule, s.lookahead(),
				func(ctx context.Context) error { return meetings.DeleteChildren(ctx, meeting.ID) },
				func(ctx context.Context, children []*models.Meeting) error {
					return meetings.CreateBatch(ctx, children)
				},
			)
		})

	case upd.Propagate && !meeting.IsChild():
		patch := repository.ContentPatch{
			Title:       meeting.Title,
			Description: meeting.Description,
			Attendees:   meeting.Attendees,
		}
		err = s.runner.RunInTx(ctx, func(tx *sql.Tx) error {
			meetings := s.Meetings.WithTx(tx)
			if _, err := meetings.Update(ctx, meeting); err != nil {
				return err
			}
			return meetings.UpdateChildrenContent(ctx, meeting.ID, patch)
		})

	default:
		_, err = s.Meetings.Update(ctx, meeting)
	}
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update meeting %d: %w", id, err)
	}
	return meeting, nil
}

// DeleteMeeting removes a meeting, cascading to occurrences when a recurring
// parent is deleted.
func (s *Service) DeleteMeeting(ctx context.Context, userID, id int64) error {
	meeting, err := s.Meetings.GetByID(ctx, id, userID)
	if err != nil {
		return err
	}
	if meeting.IsChild() {
		return s.Meetings.Delete(ctx, id, userID)
	}
	return s.runner.RunInTx(ctx, func(tx *sql.Tx) error {
		meetings := s.Meetings.WithTx(tx)
		if err := meetings.DeleteChildren(ctx, id); err != nil {
			return err
		}
		return meetings.Delete(ctx, id, userID)
	})
}

// applyAppointmentUpdate copies the set fields of upd onto the appointment.
// A new start without a new end shifts the end to preserve the duration.
func applyAppointmentUpdate(appt *models.Appointment, upd EventUpdate) {
	if upd.Title != nil {
		appt.Title = *upd.Title
	}
	if upd.Description != nil {
		appt.Description = *upd.Description
	}
	if upd.Location != nil {
		appt.Location = *upd.Location
	}
	if upd.Completed != nil {
		appt.Completed = *upd.Completed
	}
	if upd.StartTime != nil {
		appt.Reschedule(*upd.StartTime)
	}
	if upd.EndTime != nil {
		appt.EndTime = *upd.EndTime
	}
	if upd.IsRecurring != nil {
		appt.IsRecurring = *upd.IsRecurring
	}
	if upd.Pattern != nil {
		appt.RecurrencePattern = upd.Pattern
	}
	if upd.Interval != nil {
		appt.RecurrenceInterval = upd.Interval
	}
	if upd.EndDate != nil {
		appt.RecurrenceEndDate = upd.EndDate
	}
}

// applyMeetingUpdate copies the set fields of upd onto the meeting, with the
// same duration-preserving start shift as appointments.
func applyMeetingUpdate(meeting *models.Meeting, upd EventUpdate) {
	if upd.Title != nil {
		meeting.Title = *upd.Title
	}
	if upd.Description != nil {
		meeting.Description = *upd.Description
	}
	if upd.Attendees != nil {
		meeting.Attendees = *upd.Attendees
	}
	if upd.Completed != nil {
		meeting.Completed = *upd.Completed
	}
	if upd.StartTime != nil {
		meeting.Reschedule(*upd.StartTime)
	}
	if upd.EndTime != nil {
		meeting.EndTime = *upd.EndTime
	}
	if upd.IsRecurring != nil {
		meeting.IsRecurring = *upd.IsRecurring
	}
	if upd.Pattern != nil {
		meeting.RecurrencePattern = upd.Pattern
	}
	if upd.Interval != nil {
		meeting.RecurrenceInterval = upd.Interval
	}
	if upd.EndDate != nil {
		meeting.RecurrenceEndDate = upd.EndDate
	}
}

func normalizeAppointmentRecurrence(appt *models.Appointment) error {
	if !appt.EndTime.After(appt.StartTime) {
		return &recurrence.ValidationError{Err: errors.New("end time must be after start time")}
	}
	if !appt.IsRecurring {
		appt.RecurrencePattern = nil
		appt.RecurrenceInterval = nil
		appt.RecurrenceEndDate = nil
		return nil
	}
	if appt.RecurrenceInterval == nil {
		one := 1
		appt.RecurrenceInterval = &one
	}
	rule, _ := appt.Rule()
	return rule.Validate(appt.AnchorTime())
}

func normalizeMeetingRecurrence(meeting *models.Meeting) error {
	if !meeting.EndTime.After(meeting.StartTime) {
		return &recurrence.ValidationError{Err: errors.New("end time must be after start time")}
	}
	if !meeting.IsRecurring {
		meeting.RecurrencePattern = nil
		meeting.RecurrenceInterval = nil
		meeting.RecurrenceEndDate = nil
		return nil
	}
	if meeting.RecurrenceInterval == nil {
		one := 1
		meeting.RecurrenceInterval = &one
	}
	rule, _ := meeting.Rule()
	return rule.Validate(meeting.AnchorTime())
}
