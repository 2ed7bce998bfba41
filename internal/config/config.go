package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Port                string `yaml:"port"`
	DatabasePath        string `yaml:"database_path"`
	MigrationsPath      string `yaml:"migrations_path"`
	LogLevel            string `yaml:"log_level"`
	TelegramToken       string `yaml:"telegram_token"`
	GeminiAPIKey        string `yaml:"gemini_api_key"`
	GeminiModel         string `yaml:"gemini_model"`
	RecurrenceLookahead int    `yaml:"recurrence_lookahead"`
	FreePlanGenerations int    `yaml:"free_plan_generations"`
}

// Load builds the configuration from environment variables, with an optional
// YAML file (TIGER_CONFIG) applied first so env vars always win. Everything
// has a usable default for a local single-user setup; TELEGRAM_TOKEN and
// GEMINI_API_KEY are optional and switch their features off when empty.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                "8080",
		DatabasePath:        "tiger.db",
		MigrationsPath:      "migrations",
		LogLevel:            "info",
		GeminiModel:         "gemini-1.5-flash",
		RecurrenceLookahead: 10,
		FreePlanGenerations: 20,
	}

	if path := os.Getenv("TIGER_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvString(&cfg.Port, "PORT")
	applyEnvString(&cfg.DatabasePath, "DATABASE_PATH")
	applyEnvString(&cfg.MigrationsPath, "MIGRATIONS_PATH")
	applyEnvString(&cfg.LogLevel, "LOG_LEVEL")
	applyEnvString(&cfg.TelegramToken, "TELEGRAM_TOKEN")
	applyEnvString(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	applyEnvString(&cfg.GeminiModel, "GEMINI_MODEL")
	if err := applyEnvInt(&cfg.RecurrenceLookahead, "RECURRENCE_LOOKAHEAD"); err != nil {
		return nil, err
	}
	if err := applyEnvInt(&cfg.FreePlanGenerations, "FREE_PLAN_GENERATIONS"); err != nil {
		return nil, err
	}

	if cfg.RecurrenceLookahead < 1 {
		return nil, fmt.Errorf("RECURRENCE_LOOKAHEAD must be at least 1, got %d", cfg.RecurrenceLookahead)
	}
	if cfg.FreePlanGenerations < 0 {
		return nil, fmt.Errorf("FREE_PLAN_GENERATIONS must not be negative, got %d", cfg.FreePlanGenerations)
	}

	return cfg, nil
}

func applyEnvString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func applyEnvInt(dst *int, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}
