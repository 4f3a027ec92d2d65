// Package config provides centralized configuration loaded from environment
// variables. Shared by every fplstats command.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is populated from environment variables (with .env autoload in cmd).
type Config struct {
	// FPL API
	FPLBaseURL        string
	EntryID           int
	Gameweek          int
	RequestsPerMinute int

	// Snapshot cache
	SnapshotPath string
	StatePath    string

	// Column filters
	FiltersPath string

	// History fan-out
	HistoryWorkers     int
	HistoryRetries     int
	HistorySkipOnError bool

	// API server (fplstats serve)
	APIHost           string
	APIPort           int
	CORSAllowOrigins  []string
	CacheEnabled      bool
	CacheTTL          time.Duration
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	Debug bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		FPLBaseURL:        envOr("FPL_BASE_URL", ""),
		EntryID:           envInt("FPL_ENTRY_ID", 0),
		Gameweek:          envInt("FPL_GAMEWEEK", 1),
		RequestsPerMinute: envInt("FPL_REQUESTS_PER_MINUTE", 60),

		SnapshotPath: envOr("SNAPSHOT_PATH", "data/bootstrap.json"),
		StatePath:    envOr("STATE_PATH", "data/state.json"),

		FiltersPath: envOr("FILTERS_PATH", "filters.yaml"),

		HistoryWorkers:     envInt("HISTORY_WORKERS", 4),
		HistoryRetries:     envInt("HISTORY_RETRIES", 2),
		HistorySkipOnError: envBool("HISTORY_SKIP_ON_ERROR", false),

		APIHost: envOr("API_HOST", "127.0.0.1"),
		APIPort: envInt("API_PORT", envInt("PORT", 8000)),
		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),
		CacheEnabled:      envBool("CACHE_ENABLED", true),
		CacheTTL:          time.Duration(envInt("CACHE_TTL_MINUTES", 10)) * time.Minute,
		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		Debug: envBool("DEBUG", false),
	}
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
