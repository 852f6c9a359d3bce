package errors

import (
	"context"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"
)

func TestConnectError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *ConnectError
		want string
	}{
		{
			name: "connect",
			err:  WrapConnect("10.0.0.1:5432", syscall.ECONNREFUSED),
			want: "dial 10.0.0.1:5432: connection refused",
		},
		{
			name: "timeout",
			err:  TimedOut("10.0.0.1:5432"),
			want: "dial 10.0.0.1:5432: connection timed out",
		},
		{
			name: "no addresses",
			err:  NoAddresses("db.example.com:5432"),
			want: "resolve db.example.com:5432: no addresses",
		},
		{
			name: "configure",
			err:  WrapConfigure("10.0.0.1:5432", fmt.Errorf("set nodelay: boom")),
			want: "configure 10.0.0.1:5432: set nodelay: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConnectError_Unwrap(t *testing.T) {
	err := WrapConnect("x", io.EOF)
	if !Is(err, io.EOF) {
		t.Error("should unwrap to io.EOF")
	}
}

func TestConnectError_PriorNotUnwrapped(t *testing.T) {
	first := fmt.Errorf("first")
	err := WrapConnect("b", io.EOF)
	err.Prior = WrapConnect("a", first)

	if Is(err, first) {
		t.Error("prior candidate failures must not match errors.Is")
	}
	if !Is(err, io.EOF) {
		t.Error("last cause should still match")
	}
}

func TestConnectError_SentinelMatch(t *testing.T) {
	if !Is(NoAddresses("h"), ErrNoAddresses) {
		t.Error("NoAddresses should match ErrNoAddresses")
	}
	if !Is(TimedOut("h"), ErrTimeout) {
		t.Error("TimedOut should match ErrTimeout")
	}
	if Is(WrapConnect("h", io.EOF), ErrTimeout) {
		t.Error("connect error should not match ErrTimeout")
	}
	if Is(WrapConnect("h", io.EOF), ErrNoAddresses) {
		t.Error("connect error should not match ErrNoAddresses")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, 0},
		{"plain", fmt.Errorf("boom"), 0},
		{"resolution", WrapResolve("h", io.EOF), KindResolution},
		{"wrapped timeout", fmt.Errorf("probe: %w", TimedOut("h")), KindTimeout},
		{"no addresses", NoAddresses("h"), KindNoAddresses},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
	if IsKind(nil, 0) {
		t.Error("nil error has no kind")
	}
}

func TestKind_String(t *testing.T) {
	for k, want := range map[Kind]string{
		KindResolution:  "resolution",
		KindConnect:     "connect",
		KindTimeout:     "timeout",
		KindNoAddresses: "no addresses",
		Kind(42):        "unknown",
	} {
		if got := k.String(); got != want {
			t.Errorf("Kind(%d) = %q, want %q", int(k), got, want)
		}
	}
}

func TestConfigError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  ConfigError
		want string
	}{
		{
			name: "with value and hint",
			err: ConfigError{
				Field:   "port",
				Value:   99999,
				Message: "out of range 1-65535",
				Hint:    "use a port between 1 and 65535",
			},
			want: "config: --port=99999: out of range 1-65535\n  hint: use a port between 1 and 65535",
		},
		{
			name: "missing value no hint",
			err: ConfigError{
				Field:   "host",
				Message: "required",
			},
			want: "config: --host: required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connect", WrapConnect("x", syscall.ECONNREFUSED), true},
		{"timeout", TimedOut("x"), true},
		{"no addresses", NoAddresses("x"), false},
		{"nxdomain", WrapResolve("x", &net.DNSError{Err: "no such host", IsNotFound: true}), false},
		{"dns timeout", WrapResolve("x", &net.DNSError{Err: "i/o timeout", IsTimeout: true}), true},
		{"cancelled", WrapConnect("x", context.Canceled), false},
		{"plain error", fmt.Errorf("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyRetryable_NetOpError(t *testing.T) {
	opErr := &net.OpError{
		Op:  "dial",
		Net: "tcp",
		Err: &net.DNSError{IsTemporary: true},
	}
	if !classifyRetryable(opErr) {
		t.Error("temporary OpError should be retryable")
	}
}

func TestSentinels(t *testing.T) {
	// Verify sentinel errors are distinct.
	sentinels := []error{ErrTimeout, ErrNoAddresses}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && Is(a, b) {
				t.Errorf("sentinel %d and %d should not match", i, j)
			}
		}
	}
}
