package ics

import (
	"strings"
	"testing"
	"time"

	"github.com/tigerhq/tiger/internal/models"
	"github.com/tigerhq/tiger/internal/recurrence"
)

func TestExport(t *testing.T) {
	weekly := recurrence.PatternWeekly
	interval := 2
	due := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC)
	start := time.Date(2024, time.June, 4, 14, 0, 0, 0, time.UTC)
	parentID := int64(1)

	t.Run("recurring parents carry an RRULE", func(t *testing.T) {
		doc, err := Export(Feed{
			Appointments: []*models.Appointment{{
				ID:                 1,
				Title:              "Physio",
				Location:           "Clinic",
				StartTime:          start,
				EndTime:            start.Add(45 * time.Minute),
				IsRecurring:        true,
				RecurrencePattern:  &weekly,
				RecurrenceInterval: &interval,
			}},
		})
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		for _, want := range []string{
			"BEGIN:VCALENDAR",
			"SUMMARY:Physio",
			"LOCATION:Clinic",
			"FREQ=WEEKLY",
			"INTERVAL=2",
		} {
			if !strings.Contains(doc, want) {
				t.Errorf("feed is missing %q", want)
			}
		}
	})

	t.Run("generated occurrences are skipped", func(t *testing.T) {
		doc, err := Export(Feed{
			Tasks: []*models.Task{
				{ID: 1, Title: "Rent", DueDate: &due, IsRecurring: true, RecurrencePattern: &weekly},
				{ID: 2, Title: "Rent", DueDate: &due, ParentID: &parentID},
			},
		})
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if got := strings.Count(doc, "BEGIN:VEVENT"); got != 1 {
			t.Errorf("feed has %d events, want 1 (occurrences collapse into the RRULE)", got)
		}
	})

	t.Run("tasks without a due date are skipped", func(t *testing.T) {
		doc, err := Export(Feed{
			Tasks: []*models.Task{{ID: 3, Title: "Someday"}},
		})
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if strings.Contains(doc, "BEGIN:VEVENT") {
			t.Error("feed contains an event for an unscheduled task")
		}
	})

	t.Run("meeting attendees land in the description", func(t *testing.T) {
		doc, err := Export(Feed{
			Meetings: []*models.Meeting{{
				ID:        5,
				Title:     "Team sync",
				Attendees: "ana, pieter",
				StartTime: start,
				EndTime:   start.Add(30 * time.Minute),
			}},
		})
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if !strings.Contains(doc, "Attendees: ana") {
			t.Errorf("feed is missing the attendee list:\n%s", doc)
		}
	})

	t.Run("end dates become UNTIL", func(t *testing.T) {
		end := start.AddDate(0, 2, 0)
		doc, err := Export(Feed{
			Meetings: []*models.Meeting{{
				ID:                6,
				Title:             "Review",
				StartTime:         start,
				EndTime:           start.Add(time.Hour),
				IsRecurring:       true,
				RecurrencePattern: &weekly,
				RecurrenceEndDate: &end,
			}},
		})
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if !strings.Contains(doc, "UNTIL=") {
			t.Error("feed is missing the UNTIL clause")
		}
	})
}
