package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Directory.TTL != 5*time.Minute {
		t.Errorf("expected 5 minute TTL, got %v", cfg.Directory.TTL)
	}
	if cfg.Directory.FeaturedLimit != 8 {
		t.Errorf("expected featured limit 8, got %d", cfg.Directory.FeaturedLimit)
	}
	if cfg.Sheets.ReadRange == "" {
		t.Error("expected a default read range")
	}
	if cfg.HasRedis() {
		t.Error("redis must be off by default")
	}
	if cfg.HasPostgres() {
		t.Error("postgres must be off by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9001")
	t.Setenv("DIRECTORY_TTL_SECONDS", "60")
	t.Setenv("DIRECTORY_FEATURED_LIMIT", "4")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_ID", "sheet-id")
	t.Setenv("GOOGLE_SHEETS_API_KEY", "key")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9001 {
		t.Errorf("expected port override, got %d", cfg.Server.Port)
	}
	if cfg.Directory.TTL != time.Minute {
		t.Errorf("expected 60s TTL, got %v", cfg.Directory.TTL)
	}
	if cfg.Directory.FeaturedLimit != 4 {
		t.Errorf("expected featured limit 4, got %d", cfg.Directory.FeaturedLimit)
	}
	if !cfg.HasRedis() {
		t.Error("expected redis enabled")
	}
	if cfg.Sheets.SpreadsheetID != "sheet-id" {
		t.Errorf("expected spreadsheet id, got %q", cfg.Sheets.SpreadsheetID)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("SERVER_PORT", "70000")
	if _, err := Load(); err == nil {
		t.Error("expected port validation failure")
	}
}

func TestInvalidIntFallsBackToDefault(t *testing.T) {
	t.Setenv("DIRECTORY_TTL_SECONDS", "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Directory.TTL != 5*time.Minute {
		t.Errorf("expected default TTL on bad input, got %v", cfg.Directory.TTL)
	}
}
