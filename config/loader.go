package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Config file  (file.go)
//   4. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// The libpq names PGHOST, PGHOSTADDR, PGPORT and PGCONNECT_TIMEOUT are
// honoured so pgdial probes the same server as psql would.  Every
// PGDIAL_ variable overrides its libpq counterpart.  Boolean values
// accept "1", "true", "yes" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  This should be called BEFORE
// CLI flags are applied so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	// libpq
	if v := os.Getenv("PGHOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("PGHOSTADDR"); v != "" {
		cfg.HostAddr = v
	}
	if v := envInt("PGPORT"); v > 0 {
		cfg.Port = v
	}
	if v := envInt("PGCONNECT_TIMEOUT"); v > 0 {
		cfg.ConnectTimeout = secondsDuration(v)
	}

	// Target
	if v := os.Getenv("PGDIAL_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("PGDIAL_HOSTADDR"); v != "" {
		cfg.HostAddr = v
	}
	if v := envInt("PGDIAL_PORT"); v > 0 {
		cfg.Port = v
	}
	if v := envInt("PGDIAL_CONNECT_TIMEOUT"); v > 0 {
		cfg.ConnectTimeout = secondsDuration(v)
	}

	// Keepalive
	if v := envInt("PGDIAL_KEEPALIVES_IDLE"); v > 0 {
		cfg.KeepalivesIdle = secondsDuration(v)
	}
	if v := envInt("PGDIAL_KEEPALIVES_INTERVAL"); v > 0 {
		cfg.KeepalivesInterval = secondsDuration(v)
	}
	if v := envInt("PGDIAL_KEEPALIVES_COUNT"); v > 0 {
		cfg.KeepalivesCount = v
	}

	// Retry
	if v := envInt("PGDIAL_RETRIES"); v > 0 {
		cfg.Retries = v
	}

	// Output
	if v := envInt("PGDIAL_VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
	if envBool("PGDIAL_JSON") {
		cfg.Format = "json"
	}
	if v := os.Getenv("PGDIAL_FORMAT"); v != "" {
		cfg.Format = strings.ToLower(v)
	}
	if v := os.Getenv("PGDIAL_METRICS_FILE"); v != "" {
		cfg.MetricsFile = v
	}
}

// ── helpers ──────────────────────────────────────────────────────────

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes"
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
