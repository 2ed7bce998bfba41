package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tigerhq/tiger/internal/models"
	"github.com/tigerhq/tiger/internal/recurrence"
)

func newRecurringAppointment(userID int64, start time.Time, d time.Duration, pattern recurrence.Pattern) *models.Appointment {
	p := pattern
	return &models.Appointment{
		UserID:            userID,
		Title:             "Physio",
		Location:          "Clinic",
		StartTime:         start,
		EndTime:           start.Add(d),
		IsRecurring:       true,
		RecurrencePattern: &p,
	}
}

func TestCreateAppointment(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(48 * time.Hour).Truncate(time.Second)

	t.Run("occurrences preserve the duration", func(t *testing.T) {
		env := newTestEnv(Options{Lookahead: 4})
		user := env.addUser(models.PlanFree)

		appt, err := env.svc.CreateAppointment(ctx, newRecurringAppointment(user.ID, start, 45*time.Minute, recurrence.PatternWeekly))
		if err != nil {
			t.Fatalf("CreateAppointment() error = %v", err)
		}

		children, _ := env.appts.ListChildren(ctx, appt.ID)
		if len(children) != 4 {
			t.Fatalf("created %d occurrences, want 4", len(children))
		}
		for i, child := range children {
			if got := child.Duration(); got != 45*time.Minute {
				t.Errorf("occurrence %d duration = %s, want 45m", i, got)
			}
			if want := start.AddDate(0, 0, 7*(i+1)); !child.StartTime.Equal(want) {
				t.Errorf("occurrence %d starts %s, want %s", i, child.StartTime, want)
			}
			if child.Location != appt.Location {
				t.Errorf("occurrence %d location = %q, want %q", i, child.Location, appt.Location)
			}
		}
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		env := newTestEnv(Options{})
		user := env.addUser(models.PlanFree)

		appt := newRecurringAppointment(user.ID, start, 30*time.Minute, recurrence.PatternWeekly)
		appt.EndTime = start.Add(-time.Hour)
		_, err := env.svc.CreateAppointment(ctx, appt)
		var verr *recurrence.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("CreateAppointment() error = %v, want *ValidationError", err)
		}
	})
}

func TestUpdateAppointment(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(48 * time.Hour).Truncate(time.Second)

	t.Run("moving the start keeps the duration and rebuilds", func(t *testing.T) {
		env := newTestEnv(Options{Lookahead: 3})
		user := env.addUser(models.PlanFree)
		appt, _ := env.svc.CreateAppointment(ctx, newRecurringAppointment(user.ID, start, time.Hour, recurrence.PatternWeekly))

		newStart := start.Add(3 * time.Hour)
		updated, err := env.svc.UpdateAppointment(ctx, user.ID, appt.ID, EventUpdate{StartTime: &newStart})
		if err != nil {
			t.Fatalf("UpdateAppointment() error = %v", err)
		}
		if got := updated.Duration(); got != time.Hour {
			t.Errorf("duration = %s after start move, want 1h", got)
		}

		children, _ := env.appts.ListChildren(ctx, appt.ID)
		if len(children) != 3 {
			t.Fatalf("window has %d occurrences, want 3", len(children))
		}
		if want := newStart.AddDate(0, 0, 7); !children[0].StartTime.Equal(want) {
			t.Errorf("first occurrence starts %s, want %s", children[0].StartTime, want)
		}
	})

	t.Run("schedule edit on an occurrence is rejected", func(t *testing.T) {
		env := newTestEnv(Options{Lookahead: 2})
		user := env.addUser(models.PlanFree)
		appt, _ := env.svc.CreateAppointment(ctx, newRecurringAppointment(user.ID, start, time.Hour, recurrence.PatternDaily))
		children, _ := env.appts.ListChildren(ctx, appt.ID)

		later := start.Add(24 * time.Hour)
		_, err := env.svc.UpdateAppointment(ctx, user.ID, children[0].ID, EventUpdate{StartTime: &later})
		if !errors.Is(err, ErrOccurrenceEdit) {
			t.Fatalf("UpdateAppointment() error = %v, want ErrOccurrenceEdit", err)
		}
	})
}

func TestDeleteAppointmentCascades(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(48 * time.Hour).Truncate(time.Second)

	env := newTestEnv(Options{Lookahead: 6})
	user := env.addUser(models.PlanFree)
	appt, _ := env.svc.CreateAppointment(ctx, newRecurringAppointment(user.ID, start, time.Hour, recurrence.PatternDaily))

	if err := env.svc.DeleteAppointment(ctx, user.ID, appt.ID); err != nil {
		t.Fatalf("DeleteAppointment() error = %v", err)
	}
	if len(env.appts.appts) != 0 {
		t.Errorf("%d rows left after parent delete, want 0", len(env.appts.appts))
	}
}

func TestUpdateMeetingPropagatesAttendees(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	pattern := recurrence.PatternWeekly

	env := newTestEnv(Options{Lookahead: 3})
	user := env.addUser(models.PlanFree)

	meeting, err := env.svc.CreateMeeting(ctx, &models.Meeting{
		UserID:            user.ID,
		Title:             "Team sync",
		Attendees:         "ana, pieter",
		StartTime:         start,
		EndTime:           start.Add(30 * time.Minute),
		IsRecurring:       true,
		RecurrencePattern: &pattern,
	})
	if err != nil {
		t.Fatalf("CreateMeeting() error = %v", err)
	}

	attendees := "ana, pieter, sam"
	if _, err := env.svc.UpdateMeeting(ctx, user.ID, meeting.ID, EventUpdate{Attendees: &attendees, Propagate: true}); err != nil {
		t.Fatalf("UpdateMeeting() error = %v", err)
	}

	children, _ := env.meetings.ListChildren(ctx, meeting.ID)
	if len(children) != 3 {
		t.Fatalf("window has %d occurrences, want 3", len(children))
	}
	for i, child := range children {
		if child.Attendees != attendees {
			t.Errorf("occurrence %d attendees = %q, want %q", i, child.Attendees, attendees)
		}
		if want := start.AddDate(0, 0, 7*(i+1)); !child.StartTime.Equal(want) {
			t.Errorf("occurrence %d anchor moved to %s, want %s", i, child.StartTime, want)
		}
	}
}
