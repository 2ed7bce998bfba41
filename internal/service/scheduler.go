package service

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/tigerhq/tiger/internal/models"
)

// StartScheduler launches the background jobs and blocks until the context is
// cancelled, so it should run in its own goroutine. Two jobs are scheduled:
//
//   - nightly: top up occurrence windows that the passage of time has eaten
//     into, so recurring items always have a full lookahead materialized;
//   - monthly: prune usage records from past metering periods.
func (s *Service) StartScheduler(ctx context.Context) {
	c := cron.New()

	if _, err := c.AddFunc("5 0 * * *", func() { s.TopUpOccurrences(context.Background()) }); err != nil {
		s.logger.WithError(err).Error("Failed to schedule occurrence top-up")
	}
	if _, err := c.AddFunc("10 0 1 * *", func() { s.ResetUsage(context.Background()) }); err != nil {
		s.logger.WithError(err).Error("Failed to schedule usage reset")
	}

	c.Start()
	s.logger.Info("Scheduler started")

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	s.logger.Info("Scheduler stopped")
}

// TopUpOccurrences extends the occurrence window of every recurring parent
// whose future occurrences have dwindled below the lookahead. Existing
// occurrences, including their completion state, are left alone.
func (s *Service) TopUpOccurrences(ctx context.Context) {
	total := 0

	tasks, err := s.Tasks.ListRecurringParents(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list recurring tasks")
	}
	for _, task := range tasks {
		rule, ok := task.Rule()
		if !ok {
			continue
		}
		children, err := s.Tasks.ListChildren(ctx, task.ID)
		if err != nil {
			s.logger.WithError(err).WithField("task_id", task.ID).Error("Failed to list task occurrences")
			continue
		}
		n, err := extendOccurrences(ctx, "task", task, rule, s.lookahead(), children,
			func(ctx context.Context, fresh []*models.Task) error { return s.Tasks.CreateBatch(ctx, fresh) })
		if err != nil {
			s.logger.WithError(err).WithField("task_id", task.ID).Error("Failed to top up task occurrences")
			continue
		}
		total += n
	}

	appts, err := s.Appointments.ListRecurringParents(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list recurring appointments")
	}
	for _, appt := range appts {
		rule, ok := appt.Rule()
		if !ok {
			continue
		}
		children, err := s.Appointments.ListChildren(ctx, appt.ID)
		if err != nil {
			s.logger.WithError(err).WithField("appointment_id", appt.ID).Error("Failed to list appointment occurrences")
			continue
		}
		n, err := extendOccurrences(ctx, "appointment", appt, rule, s.lookahead(), children,
			func(ctx context.Context, fresh []*models.Appointment) error {
				return s.Appointments.CreateBatch(ctx, fresh)
			})
		if err != nil {
			s.logger.WithError(err).WithField("appointment_id", appt.ID).Error("Failed to top up appointment occurrences")
			continue
		}
		total += n
	}

	meetings, err := s.Meetings.ListRecurringParents(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list recurring meetings")
	}
	for _, meeting := range meetings {
		rule, ok := meeting.Rule()
		if !ok {
			continue
		}
		children, err := s.Meetings.ListChildren(ctx, meeting.ID)
		if err != nil {
			s.logger.WithError(err).WithField("meeting_id", meeting.ID).Error("Failed to list meeting occurrences")
			continue
		}
		n, err := extendOccurrences(ctx, "meeting", meeting, rule, s.lookahead(), children,
			func(ctx context.Context, fresh []*models.Meeting) error { return s.Meetings.CreateBatch(ctx, fresh) })
		if err != nil {
			s.logger.WithError(err).WithField("meeting_id", meeting.ID).Error("Failed to top up meeting occurrences")
			continue
		}
		total += n
	}

	if total > 0 {
		s.logger.WithField("count", total).Info("Topped up recurring occurrences")
	}
}

// ResetUsage prunes usage records from metering periods before the current
// one. Counters for the current period are untouched.
func (s *Service) ResetUsage(ctx context.Context) {
	period := models.UsagePeriod(time.Now())
	n, err := s.Usage.DeleteBefore(ctx, period)
	if err != nil {
		s.logger.WithError(err).Error("Failed to prune usage records")
		return
	}
	if n > 0 {
		s.logger.WithFields(logrus.Fields{"period": period, "pruned": n}).Info("Pruned stale usage records")
	}
}
