package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/tigerhq/tiger/internal/models"
	"github.com/tigerhq/tiger/internal/repository"
	"github.com/tigerhq/tiger/internal/service"
)

// priorityEmoji returns an emoji representing the task priority level.
func priorityEmoji(p models.TaskPriority) string {
	switch p {
	case models.TaskPriorityHigh:
		return "🔴"
	case models.TaskPriorityMedium:
		return "🟡"
	case models.TaskPriorityLow:
		return "🟢"
	default:
		return "⬜"
	}
}

// ---------------------------------------------------------------------------
// AddHandler – /add <text>
// ---------------------------------------------------------------------------

// AddHandler handles the /add command to capture a new task.
type AddHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewAddHandler creates a new AddHandler.
func NewAddHandler(svc *service.Service, logger *logrus.Logger) *AddHandler {
	return &AddHandler{svc: svc, logger: logger}
}

// Handle processes the /add command.
func (h *AddHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		msg := tgbotapi.NewMessage(message.Chat.ID,
			"❌ Please provide a task text.\nUsage: `/add Buy groceries`")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}

	ctx := context.Background()

	user, err := h.svc.EnsureTelegramUser(ctx, message.Chat.ID, message.From.FirstName)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}

	task, err := h.svc.CreateTask(ctx, &models.Task{
		UserID:   user.ID,
		Title:    strings.Join(args, " "),
		Priority: models.TaskPriorityMedium,
	})
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	text := fmt.Sprintf("✅ *Task added!*\n\n🟡 *#%d* — %s", task.ID, task.Title)
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"task_id": task.ID,
	}).Info("Task created")

	return nil
}

// ---------------------------------------------------------------------------
// TasksHandler – /tasks
// ---------------------------------------------------------------------------

// TasksHandler handles the /tasks command to display pending tasks.
type TasksHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewTasksHandler creates a new TasksHandler.
func NewTasksHandler(svc *service.Service, logger *logrus.Logger) *TasksHandler {
	return &TasksHandler{svc: svc, logger: logger}
}

// Handle processes the /tasks command.
func (h *TasksHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	ctx := context.Background()

	user, err := h.svc.EnsureTelegramUser(ctx, message.Chat.ID, message.From.FirstName)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}

	pending := false
	tasks, err := h.svc.Tasks.ListByUser(ctx, user.ID, repository.TaskFilters{Completed: &pending, Limit: 25})
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}

	if len(tasks) == 0 {
		msg := tgbotapi.NewMessage(message.Chat.ID,
			"📋 *No pending tasks!*\n\nAdd one with `/add <text>`")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}

	var sb strings.Builder
	sb.WriteString("📋 *Pending Tasks*\n\n")

	for i, t := range tasks {
		sb.WriteString(fmt.Sprintf("%d. %s *#%d* %s", i+1, priorityEmoji(t.Priority), t.ID, t.Title))
		if t.DueDate != nil {
			sb.WriteString(fmt.Sprintf("  📅 _%s_", t.DueDate.Format("2006-01-02")))
		}
		if t.IsRecurring {
			sb.WriteString(" 🔁")
		}
		if t.IsOverdue() {
			sb.WriteString(" ⚠️")
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("\n_%d pending items_", len(tasks)))

	msg := tgbotapi.NewMessage(message.Chat.ID, sb.String())
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"count":   len(tasks),
	}).Info("Listed tasks")

	return nil
}

// ---------------------------------------------------------------------------
// DoneHandler – /done <id>
// ---------------------------------------------------------------------------

// DoneHandler handles the /done command to mark a task as completed.
type DoneHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewDoneHandler creates a new DoneHandler.
func NewDoneHandler(svc *service.Service, logger *logrus.Logger) *DoneHandler {
	return &DoneHandler{svc: svc, logger: logger}
}

// Handle processes the /done command.
func (h *DoneHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		msg := tgbotapi.NewMessage(message.Chat.ID,
			"❌ Please provide a task ID.\nUsage: `/done 5`")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}

	taskID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		msg := tgbotapi.NewMessage(message.Chat.ID,
			"❌ Invalid ID. Please provide a numeric task ID.")
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}

	ctx := context.Background()

	user, err := h.svc.EnsureTelegramUser(ctx, message.Chat.ID, message.From.FirstName)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}

	task, err := h.svc.Tasks.GetByID(ctx, taskID, user.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			msg := tgbotapi.NewMessage(message.Chat.ID,
				fmt.Sprintf("❌ Task *#%d* not found.", taskID))
			msg.ParseMode = tgbotapi.ModeMarkdown
			bot.Send(msg)
			return nil
		}
		return fmt.Errorf("get task: %w", err)
	}

	if task.Completed {
		msg := tgbotapi.NewMessage(message.Chat.ID,
			fmt.Sprintf("ℹ️ Task *#%d* is already completed.", taskID))
		msg.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(msg)
		return nil
	}

	if err := h.svc.CompleteTask(ctx, user.ID, taskID, true); err != nil {
		return fmt.Errorf("complete task: %w", err)
	}

	text := fmt.Sprintf("🎉 Task *#%d* completed!\n\n~%s~", task.ID, task.Title)
	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"task_id": task.ID,
	}).Info("Task completed")

	return nil
}
