// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the alerts service.
type Config struct {
	Port               string
	DatabaseURL        string
	RedisURL           string
	AdzunaAppID        string
	AdzunaAppKey       string
	AdzunaCountry      string // e.g. "fr", "gb", "us"
	FetchIntervalHours int    // periodic run sweep; 0 disables the cron
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	interval := 0
	if s := os.Getenv("FETCH_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("FETCH_INTERVAL_HOURS must be a non-negative integer, got %q", s)
		}
		interval = v
	}

	country := os.Getenv("ADZUNA_COUNTRY")
	if country == "" {
		country = "gb"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8082"
	}

	return &Config{
		Port:               port,
		DatabaseURL:        dbURL,
		RedisURL:           redisURL,
		AdzunaAppID:        os.Getenv("ADZUNA_APP_ID"),
		AdzunaAppKey:       os.Getenv("ADZUNA_APP_KEY"),
		AdzunaCountry:      country,
		FetchIntervalHours: interval,
	}, nil
}
