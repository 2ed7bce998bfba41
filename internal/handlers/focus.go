package handlers

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/tigerhq/tiger/internal/models"
	"github.com/tigerhq/tiger/internal/service"
)

// FocusHandler handles the /focus command to start a pomodoro timer.
type FocusHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewFocusHandler creates a new FocusHandler.
func NewFocusHandler(svc *service.Service, logger *logrus.Logger) *FocusHandler {
	return &FocusHandler{svc: svc, logger: logger}
}

// Handle processes the /focus command.
func (h *FocusHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	minutes := 25
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v <= 0 || v > 240 {
			msg := tgbotapi.NewMessage(message.Chat.ID,
				"❌ Minutes must be a number between 1 and 240.\nUsage: `/focus 25`")
			msg.ParseMode = tgbotapi.ModeMarkdown
			bot.Send(msg)
			return nil
		}
		minutes = v
	}

	ctx := context.Background()

	user, err := h.svc.EnsureTelegramUser(ctx, message.Chat.ID, message.From.FirstName)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}

	session, err := h.svc.StartPomodoro(ctx, user.ID, models.PomodoroFocus, time.Duration(minutes)*time.Minute)
	if err != nil {
		return fmt.Errorf("start pomodoro: %w", err)
	}

	text := fmt.Sprintf("🍅 *Focus session started!*\n\n%d minutes on the clock. Mark it done in the app when the timer rings.", minutes)
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)

	h.logger.WithFields(logrus.Fields{
		"chat_id":    message.Chat.ID,
		"session_id": session.ID,
		"minutes":    minutes,
	}).Info("Started focus session")

	return nil
}
