package transport

import (
	"context"
	"net"
	"time"

	"pgdial/internal/errors"
)

// connectFunc performs one connect attempt.  It must return promptly
// once ctx is cancelled.
type connectFunc func(ctx context.Context) (net.Conn, error)

type connectResult struct {
	conn net.Conn
	err  error
}

// connectWithTimeout runs connect, bounded by timeout when it is
// positive.  Failures are reported as KindConnect, an expired deadline
// as KindTimeout.  When the deadline (or ctx) wins, the attempt is
// cancelled and any connection it still produces is closed before this
// function returns.
func connectWithTimeout(ctx context.Context, addr string, timeout time.Duration, connect connectFunc) (net.Conn, error) {
	if timeout <= 0 {
		conn, err := connect(ctx)
		if err != nil {
			return nil, errors.WrapConnect(addr, err)
		}
		return conn, nil
	}

	attemptCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan connectResult, 1)
	go func() {
		conn, err := connect(attemptCtx)
		done <- connectResult{conn: conn, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, errors.WrapConnect(addr, r.err)
		}
		return r.conn, nil
	case <-timer.C:
		abandon(cancel, done)
		return nil, errors.TimedOut(addr)
	case <-ctx.Done():
		abandon(cancel, done)
		return nil, errors.WrapConnect(addr, ctx.Err())
	}
}

// abandon cancels an in-flight attempt and waits for it, closing the
// connection if it completed anyway.
func abandon(cancel context.CancelFunc, done <-chan connectResult) {
	cancel()
	if r := <-done; r.conn != nil {
		r.conn.Close() //nolint:errcheck
	}
}
