package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// HelpHandler handles the /help command.
type HelpHandler struct {
	logger *logrus.Logger
}

// NewHelpHandler creates a new HelpHandler.
func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

// Handle processes the /help command.
func (h *HelpHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	text := "🐯 *Tiger commands*\n\n" +
		"*Tasks*\n" +
		"`/add <text>` — capture a task\n" +
		"`/tasks` — pending tasks\n" +
		"`/done <id>` — complete a task\n\n" +
		"*Schedule*\n" +
		"`/today` — today's tasks, appointments and meetings\n\n" +
		"*Focus*\n" +
		"`/focus [minutes]` — start a focus timer (default 25)\n"

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)

	return nil
}
