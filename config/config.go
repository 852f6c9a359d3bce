// Package config defines the runtime configuration for pgdial and
// provides helpers for parsing and validating it.
package config

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"pgdial/internal/errors"
)

// Config holds every tuneable for a single probe.
type Config struct {
	// ── Target ───────────────────────────────────────────────────────
	Host     string // host name, IP, or absolute socket directory
	HostAddr string // pre-resolved IP; skips name resolution
	Port     int

	// ── Connect ──────────────────────────────────────────────────────
	ConnectTimeout time.Duration // per candidate; 0 = wait forever

	// ── Keepalive ────────────────────────────────────────────────────
	KeepalivesIdle     time.Duration // 0 = leave OS defaults
	KeepalivesInterval time.Duration
	KeepalivesCount    int

	// ── Caller-side retry ────────────────────────────────────────────
	Retries    int // total dial requests, including the first
	RetryDelay time.Duration

	// ── Output ───────────────────────────────────────────────────────
	Verbose int
	Format  string // "auto", "text" or "json"
	DryRun  bool   // print the dial plan instead of dialling

	// MetricsFile, when set, receives the dial counters in the
	// Prometheus text format after each probe.
	MetricsFile string
}

// Defaults returns a Config populated from defaults.go.
func Defaults() *Config {
	return &Config{
		Host:       DefaultHost,
		Port:       DefaultPort,
		Retries:    DefaultRetries,
		RetryDelay: DefaultRetryDelay,
		Format:     DefaultFormat,
	}
}

// IsUnixSocket reports whether Host names a socket directory.
func (c *Config) IsUnixSocket() bool {
	return strings.HasPrefix(c.Host, "/")
}

// KeepaliveEnabled reports whether keepalive tuning was requested.
func (c *Config) KeepaliveEnabled() bool {
	return c.KeepalivesIdle > 0
}

// ── Port helpers ─────────────────────────────────────────────────────

// ParsePort accepts a decimal port in 1-65535.
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range 1-65535", port)
	}
	return port, nil
}

// ── Validation ───────────────────────────────────────────────────────

var formats = map[string]bool{"auto": true, "text": true, "json": true}

// Validate checks that the configuration is internally consistent.  All
// problems are reported together.
func (c *Config) Validate() error {
	var errs *multierror.Error

	if c.Host == "" {
		errs = multierror.Append(errs, &errors.ConfigError{
			Field:   "host",
			Message: "required",
			Hint:    "pass a host name, an IP, or a socket directory such as " + DefaultSocketDir,
		})
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = multierror.Append(errs, &errors.ConfigError{
			Field: "port", Value: c.Port, Message: "out of range 1-65535",
		})
	}

	if c.HostAddr != "" {
		if _, err := netip.ParseAddr(c.HostAddr); err != nil {
			errs = multierror.Append(errs, &errors.ConfigError{
				Field: "hostaddr", Value: c.HostAddr, Message: "not a numeric IP address",
			})
		}
		if c.IsUnixSocket() {
			errs = multierror.Append(errs, &errors.ConfigError{
				Field:   "hostaddr",
				Value:   c.HostAddr,
				Message: "cannot be combined with a socket directory host",
				Hint:    "drop --hostaddr to connect over the Unix-domain socket",
			})
		}
	}

	if c.ConnectTimeout < 0 {
		errs = multierror.Append(errs, &errors.ConfigError{
			Field: "connect-timeout", Value: c.ConnectTimeout, Message: "must not be negative",
		})
	}

	if c.KeepalivesIdle < 0 {
		errs = multierror.Append(errs, &errors.ConfigError{
			Field: "keepalives-idle", Value: c.KeepalivesIdle, Message: "must not be negative",
		})
	}
	if c.KeepalivesInterval < 0 {
		errs = multierror.Append(errs, &errors.ConfigError{
			Field: "keepalives-interval", Value: c.KeepalivesInterval, Message: "must not be negative",
		})
	}
	if c.KeepalivesCount < 0 {
		errs = multierror.Append(errs, &errors.ConfigError{
			Field: "keepalives-count", Value: c.KeepalivesCount, Message: "must not be negative",
		})
	}
	if !c.KeepaliveEnabled() && (c.KeepalivesInterval > 0 || c.KeepalivesCount > 0) {
		errs = multierror.Append(errs, &errors.ConfigError{
			Field:   "keepalives-idle",
			Message: "required when keepalive interval or count is set",
			Hint:    "set --keepalives-idle to enable keepalive probing",
		})
	}

	if c.Retries < 1 {
		errs = multierror.Append(errs, &errors.ConfigError{
			Field: "retries", Value: c.Retries, Message: "must be at least 1",
		})
	}
	if !formats[c.Format] {
		errs = multierror.Append(errs, &errors.ConfigError{
			Field: "format", Value: c.Format, Message: "must be auto, text or json",
		})
	}

	return errs.ErrorOrNil()
}
