package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/tigerhq/tiger/internal/repository"
	"github.com/tigerhq/tiger/internal/service"
)

// TodayHandler handles the /today command, showing everything scheduled for
// the current day: due tasks, appointments and meetings.
type TodayHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewTodayHandler creates a new TodayHandler.
func NewTodayHandler(svc *service.Service, logger *logrus.Logger) *TodayHandler {
	return &TodayHandler{svc: svc, logger: logger}
}

// Handle processes the /today command.
func (h *TodayHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	ctx := context.Background()

	user, err := h.svc.EnsureTelegramUser(ctx, message.Chat.ID, message.From.FirstName)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	pending := false
	tasks, err := h.svc.Tasks.ListByUser(ctx, user.ID, repository.TaskFilters{
		Completed: &pending,
		DueFrom:   &dayStart,
		DueTo:     &dayEnd,
	})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	appts, err := h.svc.Appointments.ListByUser(ctx, user.ID, repository.EventFilters{From: &dayStart, To: &dayEnd})
	if err != nil {
		return fmt.Errorf("list appointments: %w", err)
	}
	meetings, err := h.svc.Meetings.ListByUser(ctx, user.ID, repository.EventFilters{From: &dayStart, To: &dayEnd})
	if err != nil {
		return fmt.Errorf("list meetings: %w", err)
	}

	if len(tasks) == 0 && len(appts) == 0 && len(meetings) == 0 {
		msg := tgbotapi.NewMessage(message.Chat.ID, "🌤 *Nothing scheduled for today.*")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗓 *Today — %s*\n", now.Format("Mon, Jan 2")))

	if len(tasks) > 0 {
		sb.WriteString("\n*Tasks due*\n")
		for _, t := range tasks {
			sb.WriteString(fmt.Sprintf("%s *#%d* %s\n", priorityEmoji(t.Priority), t.ID, t.Title))
		}
	}
	if len(appts) > 0 {
		sb.WriteString("\n*Appointments*\n")
		for _, a := range appts {
			sb.WriteString(fmt.Sprintf("🕐 _%s_ %s", a.StartTime.Format("15:04"), a.Title))
			if a.Location != "" {
				sb.WriteString(" 📍" + a.Location)
			}
			sb.WriteString("\n")
		}
	}
	if len(meetings) > 0 {
		sb.WriteString("\n*Meetings*\n")
		for _, m := range meetings {
			sb.WriteString(fmt.Sprintf("👥 _%s_ %s\n", m.StartTime.Format("15:04"), m.Title))
		}
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, sb.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"tasks":   len(tasks),
		"events":  len(appts) + len(meetings),
	}).Info("Sent agenda")

	return nil
}
