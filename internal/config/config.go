// Package config handles environment variable loading for ports, database strings, etc.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the application.
type Config struct {
	// Database connection string
	DatabaseURL string

	// HTTP server port
	HTTPPort int

	// Log level: debug, info, warn, error
	LogLevel string

	// OTLP collector endpoint for traces; empty disables tracing
	OTELEndpoint string

	// Per-client request rate (requests/second); 0 means unlimited
	RateLimit float64

	// Burst size for the rate limiter
	RateLimitBurst int

	// How long finished schedules are kept before the cleanup sweep
	// removes them
	ScheduleRetention time.Duration

	// Age after which a PENDING_ACCEPTANCE assignment triggers a
	// reminder notification
	PendingReminderAge time.Duration

	// Cron expression driving the cleanup sweeps
	SweepSchedule string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		HTTPPort:           7070,
		LogLevel:           "info",
		OTELEndpoint:       os.Getenv("OTEL_ENDPOINT"),
		RateLimit:          0,
		RateLimitBurst:     20,
		ScheduleRetention:  90 * 24 * time.Hour,
		PendingReminderAge: 4 * time.Hour,
		SweepSchedule:      "@hourly",
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %w", err)
		}
		cfg.HTTPPort = port
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if rateStr := os.Getenv("RATE_LIMIT"); rateStr != "" {
		rate, err := strconv.ParseFloat(rateStr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT: %w", err)
		}
		cfg.RateLimit = rate
	}

	if burstStr := os.Getenv("RATE_LIMIT_BURST"); burstStr != "" {
		burst, err := strconv.Atoi(burstStr)
		if err != nil {
			return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %w", err)
		}
		cfg.RateLimitBurst = burst
	}

	if retentionStr := os.Getenv("SCHEDULE_RETENTION"); retentionStr != "" {
		retention, err := time.ParseDuration(retentionStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SCHEDULE_RETENTION: %w", err)
		}
		cfg.ScheduleRetention = retention
	}

	if ageStr := os.Getenv("PENDING_REMINDER_AGE"); ageStr != "" {
		age, err := time.ParseDuration(ageStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PENDING_REMINDER_AGE: %w", err)
		}
		cfg.PendingReminderAge = age
	}

	if sweep := os.Getenv("SWEEP_SCHEDULE"); sweep != "" {
		cfg.SweepSchedule = sweep
	}

	return cfg, nil
}
