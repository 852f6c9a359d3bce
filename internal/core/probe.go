package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"pgdial/internal/errors"
	"pgdial/internal/metrics"
	"pgdial/internal/retry"
	"pgdial/internal/transport"
	"pgdial/util"
)

// ProbeMode dials the configured endpoint, reports the outcome and
// closes the socket again.  It is the default mode.
type ProbeMode struct {
	Dialer  *transport.Dialer
	Host    transport.Host
	Port    uint16
	Addr    transport.Addr // non-nil: dial this candidate only
	Backoff *retry.Backoff // nil: single attempt
	Logger  *util.Logger
	Metrics *metrics.Collector
	JSON    bool

	// MetricsFile, when set, receives Metrics in the Prometheus text
	// format once the probe has finished, whether it succeeded or not.
	MetricsFile string

	// Stdout defaults to os.Stdout when nil.  Override in tests for
	// deterministic output.
	Stdout io.Writer
}

// Result is the outcome of one probe, as printed with --json.
type Result struct {
	Target   string            `json:"target"`
	Network  string            `json:"network,omitempty"`
	Remote   string            `json:"remote,omitempty"`
	Local    string            `json:"local,omitempty"`
	Attempts int               `json:"attempts"`
	Error    string            `json:"error,omitempty"`
	Kind     string            `json:"kind,omitempty"`
	Metrics  *metrics.Snapshot `json:"metrics,omitempty"`
}

func (m *ProbeMode) stdout() io.Writer {
	if m.Stdout != nil {
		return m.Stdout
	}
	return os.Stdout
}

// Target describes where the probe connects, e.g. "db:5432",
// "db:5432 via 10.0.0.1:5432" or "/tmp/.s.PGSQL.5432".
func (m *ProbeMode) Target() string {
	switch h := m.Host.(type) {
	case transport.UnixHost:
		return transport.SocketPath(h.Dir, m.Port)
	case transport.TCPHost:
		target := util.FormatAddr(h.Name, int(m.Port))
		if m.Addr != nil {
			target += " via " + m.Addr.String()
		}
		return target
	default:
		panic(fmt.Sprintf("core: unknown host type %T", m.Host))
	}
}

// Run dials, retrying per Backoff, reports the result and writes
// MetricsFile.  The socket is closed before Run returns; the returned
// error is the final dial error, joined with any output error.
func (m *ProbeMode) Run(ctx context.Context) error {
	target := m.Target()
	m.Logger.Verbose("probing %s", target)

	var (
		sock     transport.Socket
		attempts int
	)
	backoff := m.Backoff
	if backoff == nil {
		backoff = &retry.Backoff{MaxAttempts: 1}
	}
	err := backoff.Do(ctx, func(attempt int) error {
		attempts = attempt
		var err error
		sock, err = m.dial(ctx)
		return err
	})

	res := Result{Target: target, Attempts: attempts}
	if err != nil {
		res.Error = err.Error()
		if kind := errors.KindOf(err); kind != 0 {
			res.Kind = kind.String()
		}
		return m.writeMetrics(m.report(res, err))
	}
	defer sock.Close()

	res.Network = transport.Network(sock)
	if ra := sock.RemoteAddr(); ra != nil {
		res.Remote = ra.String()
	}
	if la := sock.LocalAddr(); la != nil && la.String() != "" {
		res.Local = la.String()
	}
	return m.writeMetrics(m.report(res, nil))
}

// writeMetrics writes MetricsFile, if set, and passes runErr through.
func (m *ProbeMode) writeMetrics(runErr error) error {
	if m.MetricsFile == "" {
		return runErr
	}
	if err := m.Metrics.WriteTextfile(m.MetricsFile); err != nil {
		return errors.Join(runErr, fmt.Errorf("write metrics: %w", err))
	}
	m.Logger.Verbose("metrics written to %s", m.MetricsFile)
	return runErr
}

func (m *ProbeMode) dial(ctx context.Context) (transport.Socket, error) {
	if m.Addr != nil {
		return m.Dialer.DialAddr(ctx, m.Host, m.Port, m.Addr)
	}
	return m.Dialer.Dial(ctx, m.Host, m.Port)
}

// report prints res and passes dialErr through.
func (m *ProbeMode) report(res Result, dialErr error) error {
	out := m.stdout()
	if m.JSON {
		snap := m.Metrics.Snapshot()
		res.Metrics = &snap
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return errors.Join(dialErr, fmt.Errorf("write result: %w", err))
		}
		return dialErr
	}
	if dialErr != nil {
		return dialErr
	}

	remote := res.Remote
	if remote == "" {
		remote = res.Target
	}
	fmt.Fprintf(out, "connected to %s (%s, %d attempt%s)\n", //nolint:errcheck
		remote, res.Network, res.Attempts, plural(res.Attempts))
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
