package config_test

import (
	"testing"

	"jobdash/alerts-service/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/alerts")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
}

func TestLoad_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	if _, err := config.Load(); err == nil {
		t.Error("Load without DATABASE_URL expected error, got nil")
	}
}

func TestLoad_MissingRedisURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/alerts")
	t.Setenv("REDIS_URL", "")
	if _, err := config.Load(); err == nil {
		t.Error("Load without REDIS_URL expected error, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("PORT", "")
	t.Setenv("FETCH_INTERVAL_HOURS", "")
	t.Setenv("ADZUNA_COUNTRY", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8082" {
		t.Errorf("Port = %q, want 8082", cfg.Port)
	}
	if cfg.FetchIntervalHours != 0 {
		t.Errorf("FetchIntervalHours = %d, want 0 (cron disabled)", cfg.FetchIntervalHours)
	}
	if cfg.AdzunaCountry != "gb" {
		t.Errorf("AdzunaCountry = %q, want gb", cfg.AdzunaCountry)
	}
}

func TestLoad_InvalidInterval(t *testing.T) {
	setRequired(t)
	for _, bad := range []string{"abc", "-1"} {
		t.Setenv("FETCH_INTERVAL_HOURS", bad)
		if _, err := config.Load(); err == nil {
			t.Errorf("Load with FETCH_INTERVAL_HOURS=%q expected error, got nil", bad)
		}
	}
}
