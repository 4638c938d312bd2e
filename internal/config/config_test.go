package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if !cfg.DryRun {
		t.Error("DryRun should default to true")
	}
	if cfg.ReminderInterval != 5*time.Minute {
		t.Errorf("ReminderInterval = %v, want 5m", cfg.ReminderInterval)
	}
	if cfg.SentLedgerTTL != 24*time.Hour {
		t.Errorf("SentLedgerTTL = %v, want 24h", cfg.SentLedgerTTL)
	}
	if cfg.LLMProvider != "auto" {
		t.Errorf("LLMProvider = %q, want auto", cfg.LLMProvider)
	}
	if cfg.GeminiModelID != "gemini-2.5-flash" {
		t.Errorf("GeminiModelID = %q", cfg.GeminiModelID)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DRY_RUN", "false")
	t.Setenv("REMINDER_INTERVAL", "90s")
	t.Setenv("LLM_PROVIDER", " Gemini ")
	t.Setenv("SUMMARY_EMAIL_RECIPIENTS", "ops@clinic.example, , admin@clinic.example")

	cfg := Load()

	if cfg.DryRun {
		t.Error("DryRun should be false")
	}
	if cfg.ReminderInterval != 90*time.Second {
		t.Errorf("ReminderInterval = %v, want 90s", cfg.ReminderInterval)
	}
	if cfg.LLMProvider != "gemini" {
		t.Errorf("LLMProvider = %q, want gemini", cfg.LLMProvider)
	}
	if len(cfg.SummaryRecipients) != 2 || cfg.SummaryRecipients[0] != "ops@clinic.example" {
		t.Errorf("SummaryRecipients = %v", cfg.SummaryRecipients)
	}
}

func TestGetEnvAsBoolMalformed(t *testing.T) {
	t.Setenv("DRY_RUN", "definitely")
	cfg := Load()
	if !cfg.DryRun {
		t.Error("malformed bool should keep the default")
	}
}

func TestGetEnvAsDurationRejectsNonPositive(t *testing.T) {
	t.Setenv("REMINDER_INTERVAL", "-10s")
	cfg := Load()
	if cfg.ReminderInterval != 5*time.Minute {
		t.Errorf("non-positive duration should keep default, got %v", cfg.ReminderInterval)
	}
}
