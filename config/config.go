package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the server. It is loaded once
// in main and handed to constructors; leaf code never reads the environment.
// Every provider credential is optional — an empty value disables that
// provider without error.
type Config struct {
	// Port is the HTTP listen port.
	Port int
	// DataDir is the root directory for JSON stores and the sqlite database.
	DataDir string
	// DatabasePath is the sqlite file for items and analytics events.
	DatabasePath string
	// LogDir enables rotating file logs when set; empty logs to stderr.
	LogDir string

	// TMDBAPIKey enables the primary movie/TV catalog.
	TMDBAPIKey string
	// OMDBAPIKey enables the fallback movie/TV catalog.
	OMDBAPIKey string
	// IGDBClientID and IGDBClientSecret together enable the game catalog.
	// Either one missing disables it entirely.
	IGDBClientID     string
	IGDBClientSecret string

	// SessionDuration is the lifetime of issued session tokens.
	SessionDuration time.Duration
}

// Load reads configuration from the environment, applying defaults for
// everything except provider credentials (which default to disabled).
func Load() Config {
	cfg := Config{
		Port:             envInt("WATCHLOG_PORT", 8080),
		DataDir:          envStr("WATCHLOG_DATA_DIR", "./data"),
		LogDir:           envStr("WATCHLOG_LOG_DIR", ""),
		TMDBAPIKey:       envStr("TMDB_API_KEY", ""),
		OMDBAPIKey:       envStr("OMDB_API_KEY", ""),
		IGDBClientID:     envStr("IGDB_CLIENT_ID", ""),
		IGDBClientSecret: envStr("IGDB_CLIENT_SECRET", ""),
		SessionDuration:  envDuration("WATCHLOG_SESSION_DURATION", 30*24*time.Hour),
	}
	cfg.DatabasePath = envStr("WATCHLOG_DATABASE_PATH", cfg.DataDir+"/watchlog.db")
	return cfg
}

// HasTMDB reports whether the primary movie/TV catalog is usable.
func (c Config) HasTMDB() bool { return strings.TrimSpace(c.TMDBAPIKey) != "" }

// HasOMDB reports whether the fallback movie/TV catalog is usable.
func (c Config) HasOMDB() bool { return strings.TrimSpace(c.OMDBAPIKey) != "" }

// HasIGDB reports whether the game catalog is usable. Both credentials are
// required for the token exchange.
func (c Config) HasIGDB() bool {
	return strings.TrimSpace(c.IGDBClientID) != "" && strings.TrimSpace(c.IGDBClientSecret) != ""
}

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
