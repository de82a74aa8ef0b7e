// Package config reads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the settings for cmd/api.
type Config struct {
	HTTPAddr        string
	MaxSessions     int
	SessionTTL      time.Duration
	SweepInterval   time.Duration
	ShutdownTimeout time.Duration
	OTelLogs        bool
}

// Load builds a Config from environment variables, falling back to defaults
// for unset ones. A set but malformed value is an error.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:        getString("HTTP_ADDR", ":8080"),
		MaxSessions:     1000,
		SessionTTL:      30 * time.Minute,
		SweepInterval:   time.Minute,
		ShutdownTimeout: 5 * time.Second,
	}

	var err error
	if cfg.MaxSessions, err = getInt("CALCULATOR_MAX_SESSIONS", cfg.MaxSessions); err != nil {
		return Config{}, err
	}
	if cfg.SessionTTL, err = getDuration("CALCULATOR_SESSION_TTL", cfg.SessionTTL); err != nil {
		return Config{}, err
	}
	if cfg.SweepInterval, err = getDuration("CALCULATOR_SWEEP_INTERVAL", cfg.SweepInterval); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return Config{}, err
	}
	if cfg.OTelLogs, err = getBool("OTEL_LOGS_ENABLED", false); err != nil {
		return Config{}, err
	}

	if cfg.SweepInterval <= 0 {
		return Config{}, fmt.Errorf("CALCULATOR_SWEEP_INTERVAL must be positive, got %s", cfg.SweepInterval)
	}

	return cfg, nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}
