// Package handlers contains the Telegram command handlers.
package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/tigerhq/tiger/internal/service"
)

// StartHandler handles the /start command, linking the chat to an account.
type StartHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewStartHandler creates a new StartHandler.
func NewStartHandler(svc *service.Service, logger *logrus.Logger) *StartHandler {
	return &StartHandler{svc: svc, logger: logger}
}

// Handle processes the /start command.
func (h *StartHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	ctx := context.Background()

	name := strings.TrimSpace(message.From.FirstName + " " + message.From.LastName)
	user, err := h.svc.EnsureTelegramUser(ctx, message.Chat.ID, name)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}

	text := fmt.Sprintf(
		"🐯 *Welcome to Tiger, %s!*\n\n"+
			"I keep your tasks, schedule and focus sessions in one place.\n\n"+
			"`/add <text>` — capture a task\n"+
			"`/tasks` — pending tasks\n"+
			"`/today` — today's agenda\n"+
			"`/done <id>` — complete a task\n"+
			"`/focus [minutes]` — start a focus timer\n"+
			"`/help` — all commands",
		user.DisplayName())

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": user.ID,
	}).Info("Linked Telegram chat")

	return nil
}
