package config

import (
	"testing"
	"time"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fleetops")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPPort != 7070 {
		t.Errorf("got port %d, want 7070", cfg.HTTPPort)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("got log level %q, want info", cfg.LogLevel)
	}
	if cfg.OTELEndpoint != "" {
		t.Errorf("got OTEL endpoint %q, want empty (tracing disabled)", cfg.OTELEndpoint)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("got rate limit %v, want 0 (unlimited)", cfg.RateLimit)
	}
	if cfg.ScheduleRetention != 90*24*time.Hour {
		t.Errorf("got retention %v, want 2160h", cfg.ScheduleRetention)
	}
	if cfg.PendingReminderAge != 4*time.Hour {
		t.Errorf("got reminder age %v, want 4h", cfg.PendingReminderAge)
	}
	if cfg.SweepSchedule != "@hourly" {
		t.Errorf("got sweep schedule %q, want @hourly", cfg.SweepSchedule)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/fleetops")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RATE_LIMIT", "25.5")
	t.Setenv("RATE_LIMIT_BURST", "50")
	t.Setenv("SCHEDULE_RETENTION", "720h")
	t.Setenv("PENDING_REMINDER_AGE", "30m")
	t.Setenv("SWEEP_SCHEDULE", "@every 10m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPPort != 9090 {
		t.Errorf("got port %d, want 9090", cfg.HTTPPort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("got log level %q, want debug", cfg.LogLevel)
	}
	if cfg.RateLimit != 25.5 || cfg.RateLimitBurst != 50 {
		t.Errorf("got rate %v burst %d, want 25.5/50", cfg.RateLimit, cfg.RateLimitBurst)
	}
	if cfg.ScheduleRetention != 720*time.Hour {
		t.Errorf("got retention %v, want 720h", cfg.ScheduleRetention)
	}
	if cfg.PendingReminderAge != 30*time.Minute {
		t.Errorf("got reminder age %v, want 30m", cfg.PendingReminderAge)
	}
	if cfg.SweepSchedule != "@every 10m" {
		t.Errorf("got sweep schedule %q, want @every 10m", cfg.SweepSchedule)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "PORT", "eighty"},
		{"bad rate", "RATE_LIMIT", "fast"},
		{"bad burst", "RATE_LIMIT_BURST", "many"},
		{"bad retention", "SCHEDULE_RETENTION", "three months"},
		{"bad reminder age", "PENDING_REMINDER_AGE", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://localhost/fleetops")
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%q", tt.key, tt.value)
			}
		})
	}
}
