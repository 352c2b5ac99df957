// Package config supplies the indexer's runtime configuration (SPEC_FULL.md
// §4.9): the database file path, the remote metadata provider's
// endpoint/key, the Redis address, the cleanup-pass flag, scan and enricher
// concurrency, and the sync schedule, all from environment variables with
// hardcoded fallbacks. Library roots are not part of it; they are rows of the
// store's libraries table.
//
// Grounded on the host application's internal/config package: a plain
// struct populated by os.Getenv helpers, with a MergeFromDB overlay reading
// a settings table. Deliberately no configuration-framework dependency
// (viper, envconfig, etc.) is introduced — see DESIGN.md.
package config

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cast"
)

// Config holds every environment-derived setting the process needs.
type Config struct {
	DataDir             string
	DatabasePath        string
	RemoteAPIBaseURL    string
	RemoteAPIKey        string
	RedisAddr           string
	HTTPPort            int
	RunCleanupPass      bool
	ScanConcurrency     int
	EnricherConcurrency int
	ScheduleCron        string
}

// Load reads Config from the environment, falling back to the design-time
// constants named in SPEC_FULL.md §4.9/§9 where unset.
func Load() *Config {
	return &Config{
		DataDir:             env("DATA_DIR", "/data"),
		DatabasePath:        env("DATABASE_PATH", "/data/cinevaultindex.db"),
		RemoteAPIBaseURL:    env("REMOTE_API_BASE_URL", ""),
		RemoteAPIKey:        env("REMOTE_API_KEY", ""),
		RedisAddr:           env("REDIS_ADDR", "localhost:6379"),
		HTTPPort:            envInt("HTTP_PORT", 8080),
		RunCleanupPass:      envBool("RUN_CLEANUP_PASS", false),
		ScanConcurrency:     envInt("SCAN_CONCURRENCY", 8),
		EnricherConcurrency: envInt("ENRICHER_CONCURRENCY", 4),
		ScheduleCron:        env("SCHEDULE_CRON", ""),
	}
}

// MergeFromDB overlays a subset of fields from the settings table, mirroring
// the host application's runtime-configurable-settings pattern. Values are
// stored as opaque strings in the table; cast loosely converts them to the
// field's actual type so a typo'd setting degrades to the existing value
// instead of panicking.
func (c *Config) MergeFromDB(ctx context.Context, db *sql.DB) {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		slog.Warn("skipping settings overlay", "error", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			continue
		}
		switch key {
		case "remote_api_base_url":
			c.RemoteAPIBaseURL = value
		case "remote_api_key":
			c.RemoteAPIKey = value
		case "run_cleanup_pass":
			if v, err := cast.ToBoolE(value); err == nil {
				c.RunCleanupPass = v
			}
		case "scan_concurrency":
			if v := cast.ToInt(value); v > 0 {
				c.ScanConcurrency = v
			}
		case "enricher_concurrency":
			if v := cast.ToInt(value); v > 0 {
				c.EnricherConcurrency = v
			}
		case "schedule_cron":
			c.ScheduleCron = value
		}
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
