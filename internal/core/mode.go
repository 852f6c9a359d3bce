// Package core is the orchestration layer.  It turns a Config into a
// ready-to-run probe: a transport.Dialer wired with logging, metrics
// and the caller-side retry policy.
//
// Architecture layers (bottom → top):
//
//	transport  →  core  →  cmd (CLI)
//
// The builder in this package is the single dispatch point between a
// validated Config and the Mode that acts on it.
package core

import "context"

// Mode represents a complete operation of pgdial: a live probe or a
// dry-run that only prints what a probe would do.
type Mode interface {
	Run(ctx context.Context) error
}
