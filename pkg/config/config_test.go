package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REMINDER_INTERVAL", "")
	t.Setenv("PORT", "")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.ReminderInterval != time.Minute {
		t.Errorf("ReminderInterval = %s, want 1m", cfg.ReminderInterval)
	}
	if cfg.JWTRefreshExpiry != 168*time.Hour {
		t.Errorf("JWTRefreshExpiry = %s, want 168h", cfg.JWTRefreshExpiry)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REMINDER_INTERVAL", "30s")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("APP_URL", "http://kanban.test/")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.ReminderInterval != 30*time.Second {
		t.Errorf("ReminderInterval = %s, want 30s", cfg.ReminderInterval)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.AppURL != "http://kanban.test" {
		t.Errorf("AppURL = %q, want trailing slash trimmed", cfg.AppURL)
	}
}

func TestInvalidDurationFallsBack(t *testing.T) {
	t.Setenv("JWT_ACCESS_EXPIRY", "soon")

	cfg := Load()

	if cfg.JWTAccessExpiry != 15*time.Minute {
		t.Errorf("JWTAccessExpiry = %s, want 15m fallback", cfg.JWTAccessExpiry)
	}
}
