package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/tigerhq/tiger/internal/ai"
	"github.com/tigerhq/tiger/internal/api"
	"github.com/tigerhq/tiger/internal/config"
	"github.com/tigerhq/tiger/internal/handlers"
	"github.com/tigerhq/tiger/internal/repository/sqlite"
	"github.com/tigerhq/tiger/internal/service"
	"github.com/tigerhq/tiger/internal/telegram"
	"github.com/tigerhq/tiger/pkg/logger"
)

func main() {
	// .env is optional; a missing file is the normal production case.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting Tiger...")

	// Database
	db, err := config.NewDatabase(cfg.DatabasePath, l)
	if err != nil {
		l.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(cfg.MigrationsPath); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	userRepo := sqlite.NewUserRepository(db.DB)
	taskRepo := sqlite.NewTaskRepository(db.DB)
	subtaskRepo := sqlite.NewSubtaskRepository(db.DB)
	noteRepo := sqlite.NewNoteRepository(db.DB)
	appointmentRepo := sqlite.NewAppointmentRepository(db.DB)
	meetingRepo := sqlite.NewMeetingRepository(db.DB)
	pomodoroRepo := sqlite.NewPomodoroRepository(db.DB)
	studyRepo := sqlite.NewStudyRepository(db.DB)
	usageRepo := sqlite.NewUsageRepository(db.DB)

	// AI subtask generation is optional; without a key the endpoint reports
	// the feature as unavailable.
	var generator ai.SubtaskGenerator
	if cfg.GeminiAPIKey != "" {
		generator = ai.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, l)
		l.Infof("AI subtask generation enabled (model %s)", cfg.GeminiModel)
	}

	// Service layer
	svc := service.New(db, l,
		service.Options{
			Lookahead:           cfg.RecurrenceLookahead,
			FreePlanGenerations: cfg.FreePlanGenerations,
		},
		generator,
		userRepo, taskRepo, subtaskRepo, noteRepo,
		appointmentRepo, meetingRepo, pomodoroRepo, studyRepo, usageRepo,
	)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("Received shutdown signal...")
		cancel()
	}()

	// Background jobs: occurrence top-up and usage reset
	go svc.StartScheduler(ctx)

	// Telegram companion bot is optional
	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, l)
		if err != nil {
			l.Fatalf("Failed to create Telegram bot: %v", err)
		}

		bot.RegisterCommand("start", handlers.NewStartHandler(svc, l))
		bot.RegisterCommand("help", handlers.NewHelpHandler(l))
		bot.RegisterCommand("add", handlers.NewAddHandler(svc, l))
		bot.RegisterCommand("tasks", handlers.NewTasksHandler(svc, l))
		bot.RegisterCommand("done", handlers.NewDoneHandler(svc, l))
		bot.RegisterCommand("today", handlers.NewTodayHandler(svc, l))
		bot.RegisterCommand("focus", handlers.NewFocusHandler(svc, l))

		go func() {
			if err := bot.Start(ctx); err != nil {
				l.Errorf("Bot error: %v", err)
			}
		}()
	}

	// HTTP API
	apiServer := api.NewServer(svc, l)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: apiServer.Handler(),
	}

	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("HTTP server error: %v", err)
		}
	}()

	l.Info("Tiger started successfully")

	<-ctx.Done()

	l.Info("Shutting down HTTP server...")
	httpServer.Close()

	l.Info("Tiger stopped")
}
