package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// DefaultHost is dialled when no host is configured.
	DefaultHost = "localhost"

	// DefaultSocketDir is where PostgreSQL usually places its socket.
	DefaultSocketDir = "/var/run/postgresql"

	// DefaultPort is the standard PostgreSQL port.
	DefaultPort = 5432

	// DefaultRetries is the number of dial requests a probe makes.  The
	// transport never retries by itself.
	DefaultRetries = 1

	// DefaultRetryDelay is the initial pause between probe retries.
	DefaultRetryDelay = 250 * time.Millisecond

	// DefaultMaxRetryDelay caps the exponential backoff between retries.
	DefaultMaxRetryDelay = 5 * time.Second

	// DefaultFormat picks text for terminals and JSON otherwise.
	DefaultFormat = "auto"
)
