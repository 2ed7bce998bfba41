package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Port != "8080" {
			t.Errorf("Port = %q, want 8080", cfg.Port)
		}
		if cfg.RecurrenceLookahead != 10 {
			t.Errorf("RecurrenceLookahead = %d, want 10", cfg.RecurrenceLookahead)
		}
		if cfg.FreePlanGenerations != 20 {
			t.Errorf("FreePlanGenerations = %d, want 20", cfg.FreePlanGenerations)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("RECURRENCE_LOOKAHEAD", "25")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Port != "9090" {
			t.Errorf("Port = %q, want 9090", cfg.Port)
		}
		if cfg.RecurrenceLookahead != 25 {
			t.Errorf("RecurrenceLookahead = %d, want 25", cfg.RecurrenceLookahead)
		}
	})

	t.Run("yaml file applies under env vars", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tiger.yaml")
		data := "port: \"7000\"\nlog_level: debug\n"
		if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv("TIGER_CONFIG", path)
		t.Setenv("PORT", "7100")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Port != "7100" {
			t.Errorf("Port = %q, want env var to win over the file", cfg.Port)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug from the file", cfg.LogLevel)
		}
	})

	t.Run("invalid lookahead is rejected", func(t *testing.T) {
		t.Setenv("RECURRENCE_LOOKAHEAD", "0")
		if _, err := Load(); err == nil {
			t.Fatal("Load() = nil error, want failure for zero lookahead")
		}
	})

	t.Run("non-numeric int is rejected", func(t *testing.T) {
		t.Setenv("FREE_PLAN_GENERATIONS", "lots")
		if _, err := Load(); err == nil {
			t.Fatal("Load() = nil error, want failure")
		}
	})
}
