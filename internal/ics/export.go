// Package ics renders a user's schedule as an iCalendar feed that external
// calendar apps can subscribe to.
package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/tigerhq/tiger/internal/models"
	"github.com/tigerhq/tiger/internal/recurrence"
)

const prodID = "-//Tiger//Tiger Calendar//EN"

// Feed is the input to a single export: everything already filtered to one
// user. Recurring parents are exported with an RRULE and their generated
// occurrences are skipped, so subscribing clients expand recurrence
// themselves and the feed stays small.
type Feed struct {
	Tasks        []*models.Task
	Appointments []*models.Appointment
	Meetings     []*models.Meeting
}

// Export serializes the feed as an iCalendar document.
func Export(feed Feed) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)
	cal.SetCalscale("GREGORIAN")

	for _, task := range feed.Tasks {
		if task.DueDate == nil || task.IsChild() {
			continue
		}
		event := cal.AddEvent(fmt.Sprintf("task-%d@tiger", task.ID))
		event.SetCreatedTime(task.CreatedAt)
		event.SetDtStampTime(task.UpdatedAt)
		event.SetSummary(task.Title)
		if task.Description != "" {
			event.SetDescription(task.Description)
		}
		// Tasks have a date but no span; render them as all-day entries.
		event.SetAllDayStartAt(*task.DueDate)
		event.SetAllDayEndAt(task.DueDate.AddDate(0, 0, 1))
		if rule, ok := task.Rule(); ok {
			if err := addRecurrence(event, rule, *task.DueDate); err != nil {
				return "", fmt.Errorf("failed to export task %d: %w", task.ID, err)
			}
		}
	}

	for _, appt := range feed.Appointments {
		if appt.IsChild() {
			continue
		}
		event := cal.AddEvent(fmt.Sprintf("appointment-%d@tiger", appt.ID))
		event.SetCreatedTime(appt.CreatedAt)
		event.SetDtStampTime(appt.UpdatedAt)
		event.SetSummary(appt.Title)
		if appt.Description != "" {
			event.SetDescription(appt.Description)
		}
		if appt.Location != "" {
			event.SetLocation(appt.Location)
		}
		event.SetStartAt(appt.StartTime)
		event.SetEndAt(appt.EndTime)
		if rule, ok := appt.Rule(); ok {
			if err := addRecurrence(event, rule, appt.StartTime); err != nil {
				return "", fmt.Errorf("failed to export appointment %d: %w", appt.ID, err)
			}
		}
	}

	for _, meeting := range feed.Meetings {
		if meeting.IsChild() {
			continue
		}
		event := cal.AddEvent(fmt.Sprintf("meeting-%d@tiger", meeting.ID))
		event.SetCreatedTime(meeting.CreatedAt)
		event.SetDtStampTime(meeting.UpdatedAt)
		event.SetSummary(meeting.Title)
		if desc := meetingDescription(meeting); desc != "" {
			event.SetDescription(desc)
		}
		event.SetStartAt(meeting.StartTime)
		event.SetEndAt(meeting.EndTime)
		if rule, ok := meeting.Rule(); ok {
			if err := addRecurrence(event, rule, meeting.StartTime); err != nil {
				return "", fmt.Errorf("failed to export meeting %d: %w", meeting.ID, err)
			}
		}
	}

	return cal.Serialize(), nil
}

// meetingDescription folds the attendee list into the description since the
// attendee field is free text, not structured mailto addresses.
func meetingDescription(m *models.Meeting) string {
	switch {
	case m.Description != "" && m.Attendees != "":
		return m.Description + "\nAttendees: " + m.Attendees
	case m.Attendees != "":
		return "Attendees: " + m.Attendees
	default:
		return m.Description
	}
}

// addRecurrence attaches an RRULE matching the parent's rule to the event.
func addRecurrence(event *ical.VEvent, rule recurrence.Rule, anchor time.Time) error {
	freq, err := frequencyOf(rule.Pattern)
	if err != nil {
		return err
	}
	opt := rrule.ROption{
		Freq:     freq,
		Interval: rule.Interval,
		Dtstart:  anchor,
	}
	if rule.EndDate != nil {
		opt.Until = rule.EndDate.UTC()
	}
	event.AddRrule(opt.RRuleString())
	return nil
}

func frequencyOf(pattern recurrence.Pattern) (rrule.Frequency, error) {
	switch pattern {
	case recurrence.PatternDaily:
		return rrule.DAILY, nil
	case recurrence.PatternWeekly:
		return rrule.WEEKLY, nil
	case recurrence.PatternMonthly:
		return rrule.MONTHLY, nil
	case recurrence.PatternYearly:
		return rrule.YEARLY, nil
	}
	return 0, fmt.Errorf("pattern %q has no iCalendar frequency", pattern)
}
