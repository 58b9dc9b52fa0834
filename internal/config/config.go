package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	DatabaseURI string

	PagerDutyKey      string
	PagerDutyEndpoint string

	// How far back to sync incidents when a team is first discovered
	InitialLookback time.Duration

	TeamSyncInterval      time.Duration
	IncidentSyncInterval  time.Duration
	StatusRefreshInterval time.Duration

	SyncWorkers int
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "3000"),
		DatabaseURI: getEnv("DATABASE_URI", "host=localhost user=oncall dbname=oncall sslmode=disable"),

		PagerDutyKey:      getEnv("PAGERDUTY_KEY", ""),
		PagerDutyEndpoint: getEnv("PAGERDUTY_ENDPOINT", ""),

		InitialLookback: time.Duration(getEnvInt("INITIAL_INCIDENT_LOOKBACK", 90)) * 24 * time.Hour,

		TeamSyncInterval:      getEnvDuration("TEAM_SYNC_INTERVAL", 30*time.Minute),
		IncidentSyncInterval:  getEnvDuration("INCIDENT_SYNC_INTERVAL", time.Minute),
		StatusRefreshInterval: getEnvDuration("STATUS_REFRESH_INTERVAL", 5*time.Minute),

		SyncWorkers: getEnvInt("SYNC_WORKERS", 8),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)

	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)

	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %d", key, value, fallback)
		return fallback
	}

	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)

	if value == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(value)

	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %s", key, value, fallback)
		return fallback
	}

	return parsed
}
