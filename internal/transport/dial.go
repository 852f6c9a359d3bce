package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/hashicorp/go-multierror"

	"pgdial/internal/errors"
	"pgdial/internal/metrics"
	"pgdial/util"
)

// Dialer connects to a Host and returns a configured Socket.  The zero
// value dials with no timeout, OS keepalive defaults and the system
// resolver.  A Dialer holds no per-dial state and may be shared.
type Dialer struct {
	// Timeout bounds each candidate attempt separately (0 = none).
	Timeout time.Duration
	// Keepalive is applied to TCP sockets after connect (nil = OS defaults).
	Keepalive *KeepaliveConfig
	// Resolver resolves TCP host names (nil = system resolver).
	Resolver Resolver
	// DialContext opens the raw connection.  It must return promptly
	// once ctx is cancelled: an attempt that outlives Timeout is waited
	// for so its connection can be closed.  When nil a net.Dialer with
	// Go's own keepalive switched off is used, so that sockets keep the
	// OS defaults unless Keepalive is set.
	DialContext func(ctx context.Context, network, address string) (net.Conn, error)

	Logger  *util.Logger
	Metrics *metrics.Collector
}

// Dial resolves host (for TCP) and connects to the first candidate that
// accepts.  Candidates are tried one after another in resolver order;
// if all fail the error of the last one is returned.
func (d *Dialer) Dial(ctx context.Context, host Host, port uint16) (Socket, error) {
	d.Metrics.DialStarted()

	var (
		sock Socket
		err  error
	)
	switch h := host.(type) {
	case TCPHost:
		sock, err = d.dialHost(ctx, h, port)
	case UnixHost:
		sock, err = d.dialUnix(ctx, h, port)
	default:
		panic(fmt.Sprintf("transport: unknown host type %T", host))
	}
	return d.finish(sock, err)
}

// DialAddr connects to a single pre-resolved candidate.  host is only
// consulted to build the socket path of a UnixAddr.  Pairing a UnixAddr
// with a TCPHost, or a TCPAddr with a UnixHost, panics.
func (d *Dialer) DialAddr(ctx context.Context, host Host, port uint16, addr Addr) (Socket, error) {
	d.Metrics.DialStarted()

	var (
		sock Socket
		err  error
	)
	switch a := addr.(type) {
	case TCPAddr:
		if _, ok := host.(TCPHost); !ok {
			panic(fmt.Sprintf("transport: TCP address %s paired with %T", a, host))
		}
		sock, err = d.dialTCP(ctx, a)
	case UnixAddr:
		h, ok := host.(UnixHost)
		if !ok {
			panic(fmt.Sprintf("transport: unix address paired with %T", host))
		}
		sock, err = d.dialUnix(ctx, h, port)
	default:
		panic(fmt.Sprintf("transport: unknown address type %T", addr))
	}
	return d.finish(sock, err)
}

func (d *Dialer) finish(sock Socket, err error) (Socket, error) {
	if err != nil {
		d.Metrics.DialFailed(err)
		return nil, err
	}
	d.Metrics.Connected()
	return sock, nil
}

// dialHost resolves h and walks the candidates.
func (d *Dialer) dialHost(ctx context.Context, h TCPHost, port uint16) (Socket, error) {
	target := util.FormatAddr(h.Name, int(port))

	addrs, err := d.resolver().Resolve(ctx, h.Name, port)
	if err != nil {
		var ce *errors.ConnectError
		if errors.As(err, &ce) {
			return nil, err
		}
		return nil, errors.WrapResolve(h.Name, err)
	}
	if len(addrs) == 0 {
		return nil, errors.NoAddresses(target)
	}
	d.Logger.Debug("%s resolved to %d address(es)", target, len(addrs))

	var (
		lastErr error
		prior   *multierror.Error
	)
	for i, addr := range addrs {
		a, ok := addr.(TCPAddr)
		if !ok {
			panic(fmt.Sprintf("transport: resolver returned %T for TCP host %s", addr, h.Name))
		}

		d.Logger.Verbose("trying %s (%d/%d)", a, i+1, len(addrs))
		conn, err := d.connectTCP(ctx, a)
		if err != nil {
			d.Logger.Debug("%v", err)
			if lastErr != nil {
				prior = multierror.Append(prior, lastErr)
			}
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		return d.configure(conn, a.String())
	}

	var ce *errors.ConnectError
	if errors.As(lastErr, &ce) {
		ce.Prior = prior.ErrorOrNil()
	}
	return nil, lastErr
}

func (d *Dialer) dialTCP(ctx context.Context, a TCPAddr) (Socket, error) {
	d.Logger.Verbose("trying %s", a)
	conn, err := d.connectTCP(ctx, a)
	if err != nil {
		return nil, err
	}
	return d.configure(conn, a.String())
}

// connectTCP makes one timeout-bounded attempt on a.
func (d *Dialer) connectTCP(ctx context.Context, a TCPAddr) (*net.TCPConn, error) {
	addr := a.String()
	d.Metrics.AttemptStarted()

	conn, err := connectWithTimeout(ctx, addr, d.Timeout, func(ctx context.Context) (net.Conn, error) {
		return d.dial(ctx, "tcp", addr)
	})
	if err != nil {
		return nil, err
	}

	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		conn.Close() //nolint:errcheck
		return nil, errors.WrapConnect(addr, fmt.Errorf("unexpected connection type %T", conn))
	}
	return tcp, nil
}

// configure tunes a freshly connected TCP stream.  On failure the
// stream is closed; a connected but untuned socket is never returned.
func (d *Dialer) configure(conn *net.TCPConn, addr string) (Socket, error) {
	if err := configureTCP(conn, d.Keepalive); err != nil {
		conn.Close() //nolint:errcheck
		return nil, errors.WrapConfigure(addr, err)
	}
	d.Logger.Verbose("connected to %s", addr)
	return TCPSocket{conn}, nil
}

func (d *Dialer) dialUnix(ctx context.Context, h UnixHost, port uint16) (Socket, error) {
	path := SocketPath(h.Dir, port)
	d.Metrics.AttemptStarted()
	d.Logger.Verbose("trying %s", path)

	conn, err := connectWithTimeout(ctx, path, d.Timeout, func(ctx context.Context) (net.Conn, error) {
		return d.dial(ctx, "unix", path)
	})
	if err != nil {
		return nil, err
	}

	uc, ok := conn.(*net.UnixConn)
	if !ok {
		conn.Close() //nolint:errcheck
		return nil, errors.WrapConnect(path, fmt.Errorf("unexpected connection type %T", conn))
	}
	d.Logger.Verbose("connected to %s", path)
	return UnixSocket{uc}, nil
}

func (d *Dialer) dial(ctx context.Context, network, address string) (net.Conn, error) {
	if d.DialContext != nil {
		return d.DialContext(ctx, network, address)
	}
	nd := net.Dialer{KeepAlive: -1}
	return nd.DialContext(ctx, network, address)
}

func (d *Dialer) resolver() Resolver {
	if d.Resolver != nil {
		return d.Resolver
	}
	return &NetResolver{}
}
