package transport

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"pgdial/internal/errors"
)

// trackedConn records whether Close was called.
type trackedConn struct {
	net.Conn
	closed atomic.Bool
}

func (c *trackedConn) Close() error {
	c.closed.Store(true)
	return nil
}

func TestConnectWithTimeout_NoDeadline(t *testing.T) {
	want := &trackedConn{}
	conn, err := connectWithTimeout(context.Background(), "a", 0, func(context.Context) (net.Conn, error) {
		return want, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conn != want {
		t.Error("connection should be passed through unchanged")
	}
}

func TestConnectWithTimeout_FailureIsConnect(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	for _, timeout := range []time.Duration{0, time.Second} {
		t.Run(timeout.String(), func(t *testing.T) {
			_, err := connectWithTimeout(context.Background(), "a", timeout, func(context.Context) (net.Conn, error) {
				return nil, cause
			})
			if !errors.IsKind(err, errors.KindConnect) {
				t.Fatalf("kind = %v, want connect (%v)", errors.KindOf(err), err)
			}
			if !errors.Is(err, cause) {
				t.Error("cause should be preserved")
			}
		})
	}
}

func TestConnectWithTimeout_FastSuccess(t *testing.T) {
	want := &trackedConn{}
	conn, err := connectWithTimeout(context.Background(), "a", time.Second, func(context.Context) (net.Conn, error) {
		return want, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conn != want {
		t.Error("wrong connection returned")
	}
	if want.closed.Load() {
		t.Error("winning connection must not be closed")
	}
}

// TestConnectWithTimeout_Expired verifies the attempt is cancelled and a
// connection it still produces is closed before the call returns.
func TestConnectWithTimeout_Expired(t *testing.T) {
	late := &trackedConn{}
	var sawCancel atomic.Bool

	_, err := connectWithTimeout(context.Background(), "10.0.0.1:5432", 20*time.Millisecond,
		func(ctx context.Context) (net.Conn, error) {
			<-ctx.Done()
			sawCancel.Store(true)
			return late, nil
		})

	if !errors.IsKind(err, errors.KindTimeout) {
		t.Fatalf("kind = %v, want timeout (%v)", errors.KindOf(err), err)
	}
	if !errors.Is(err, errors.ErrTimeout) {
		t.Error("should match ErrTimeout")
	}
	if !sawCancel.Load() {
		t.Error("attempt context should have been cancelled")
	}
	if !late.closed.Load() {
		t.Error("abandoned connection leaked")
	}
}

// TestConnectWithTimeout_SlowAttempt covers an attempt that finishes
// after the deadline without watching its context.
func TestConnectWithTimeout_SlowAttempt(t *testing.T) {
	late := &trackedConn{}
	_, err := connectWithTimeout(context.Background(), "a", 10*time.Millisecond,
		func(context.Context) (net.Conn, error) {
			time.Sleep(80 * time.Millisecond)
			return late, nil
		})
	if !errors.IsKind(err, errors.KindTimeout) {
		t.Fatalf("kind = %v, want timeout", errors.KindOf(err))
	}
	if !late.closed.Load() {
		t.Error("abandoned connection leaked")
	}
}

func TestConnectWithTimeout_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	late := &trackedConn{}
	_, err := connectWithTimeout(ctx, "a", 5*time.Second, func(ctx context.Context) (net.Conn, error) {
		<-ctx.Done()
		return late, nil
	})
	if !errors.IsKind(err, errors.KindConnect) {
		t.Fatalf("kind = %v, want connect", errors.KindOf(err))
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cause should be context.Canceled, got %v", err)
	}
	if !late.closed.Load() {
		t.Error("abandoned connection leaked")
	}
}
