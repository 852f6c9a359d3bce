// Package errors provides domain-specific error types for pgdial.
//
// Every failure of a dial request surfaces as a *ConnectError whose Kind
// tells the caller which stage failed (name resolution, the transport
// connect, the connect deadline, or an empty candidate set).  The
// underlying I/O error is kept as the cause and reachable via Unwrap.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	// ErrTimeout is the cause carried by KindTimeout errors.
	ErrTimeout = errors.New("connection timed out")
	// ErrNoAddresses matches KindNoAddresses errors via errors.Is.
	ErrNoAddresses = errors.New("could not resolve any addresses")
)

// ── Kind ─────────────────────────────────────────────────────────────

// Kind classifies a ConnectError.
type Kind int

const (
	// KindResolution means the name lookup itself failed.
	KindResolution Kind = iota + 1
	// KindConnect means the transport connect or post-connect socket
	// configuration failed.
	KindConnect
	// KindTimeout means the connect deadline elapsed first.
	KindTimeout
	// KindNoAddresses means resolution succeeded but returned nothing.
	KindNoAddresses
)

func (k Kind) String() string {
	switch k {
	case KindResolution:
		return "resolution"
	case KindConnect:
		return "connect"
	case KindTimeout:
		return "timeout"
	case KindNoAddresses:
		return "no addresses"
	default:
		return "unknown"
	}
}

// ── Structured error types ───────────────────────────────────────────

// ConnectError is the terminal failure of one dial request.
type ConnectError struct {
	Kind Kind
	Op   string // "resolve", "dial", "configure"
	Addr string // host, ip:port, or socket path
	Err  error  // underlying cause, nil for KindNoAddresses

	// Prior holds the failures of earlier candidates when the dial tried
	// more than one address.  It is informational and not unwrapped.
	Prior error
}

func (e *ConnectError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Addr, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrNoAddresses) match by kind.
func (e *ConnectError) Is(target error) bool {
	switch target {
	case ErrNoAddresses:
		return e.Kind == KindNoAddresses
	case ErrTimeout:
		return e.Kind == KindTimeout
	}
	return false
}

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// WrapResolve creates a KindResolution error for a failed lookup of host.
func WrapResolve(host string, err error) *ConnectError {
	return &ConnectError{Kind: KindResolution, Op: "resolve", Addr: host, Err: err}
}

// WrapConnect creates a KindConnect error for a failed attempt on addr.
func WrapConnect(addr string, err error) *ConnectError {
	return &ConnectError{Kind: KindConnect, Op: "dial", Addr: addr, Err: err}
}

// WrapConfigure creates a KindConnect error for a socket that connected
// but could not be tuned.
func WrapConfigure(addr string, err error) *ConnectError {
	return &ConnectError{Kind: KindConnect, Op: "configure", Addr: addr, Err: err}
}

// TimedOut creates a KindTimeout error for addr.
func TimedOut(addr string) *ConnectError {
	return &ConnectError{Kind: KindTimeout, Op: "dial", Addr: addr, Err: ErrTimeout}
}

// NoAddresses creates a KindNoAddresses error for host.
func NoAddresses(host string) *ConnectError {
	return &ConnectError{Kind: KindNoAddresses, Op: "resolve", Addr: host}
}

// ── Classification helpers ───────────────────────────────────────────

// KindOf returns the Kind of the first ConnectError in err's chain, or 0.
func KindOf(err error) Kind {
	var ce *ConnectError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

// IsKind reports whether err is a ConnectError of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsRetryable reports whether a fresh dial request might succeed where
// err failed.  Cancellation by the caller is never retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var ce *ConnectError
	if !errors.As(err, &ce) {
		return classifyRetryable(err)
	}
	switch ce.Kind {
	case KindTimeout, KindConnect:
		return true
	case KindResolution:
		return classifyRetryable(ce.Err)
	default:
		return false
	}
}

// classifyRetryable inspects standard library error types.
func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	// DNS errors
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTimeout || dnsErr.IsTemporary
	}
	// net.OpError with Temporary() hint
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Timeout() || opErr.Temporary() //nolint:staticcheck // Temporary is deprecated but still useful
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────
//
// These allow callers to use pgdial/internal/errors as a drop-in
// replacement for the standard library in common operations.

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Unwrap is [errors.Unwrap].
func Unwrap(err error) error { return errors.Unwrap(err) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
