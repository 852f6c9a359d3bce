package core

import (
	"fmt"
	"net/netip"
	"time"

	"pgdial/config"
	"pgdial/internal/errors"
	"pgdial/internal/metrics"
	"pgdial/internal/retry"
	"pgdial/internal/transport"
	"pgdial/util"
)

// Build constructs the Mode for cfg.  cfg must already be validated and
// its Format resolved to "text" or "json".
func Build(cfg *config.Config, logger *util.Logger) (Mode, error) {
	probe, err := buildProbe(cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.DryRun {
		return &PlanMode{Probe: probe}, nil
	}
	return probe, nil
}

// ── mode builders ────────────────────────────────────────────────────

func buildProbe(cfg *config.Config, logger *util.Logger) (*ProbeMode, error) {
	port := uint16(cfg.Port)
	host := transport.ParseHost(cfg.Host)

	var addr transport.Addr
	if cfg.HostAddr != "" {
		ip, err := netip.ParseAddr(cfg.HostAddr)
		if err != nil {
			return nil, fmt.Errorf("cannot parse %q as an IP address (--hostaddr)", cfg.HostAddr)
		}
		if _, ok := host.(transport.UnixHost); ok {
			return nil, fmt.Errorf("--hostaddr cannot be used with socket directory %s", cfg.Host)
		}
		addr = transport.TCPAddr{AddrPort: netip.AddrPortFrom(ip.Unmap(), port)}
	}

	stats := metrics.New()
	return &ProbeMode{
		Dialer:  buildDialer(cfg, logger, stats),
		Host:    host,
		Port:    port,
		Addr:    addr,
		Backoff: buildBackoff(cfg, logger),
		Logger:  logger,
		Metrics: stats,
		JSON:    cfg.Format == "json",

		MetricsFile: cfg.MetricsFile,
	}, nil
}

// ── shared helpers ───────────────────────────────────────────────────

// buildDialer creates the transport.Dialer for the given config.
func buildDialer(cfg *config.Config, logger *util.Logger, stats *metrics.Collector) *transport.Dialer {
	d := &transport.Dialer{
		Timeout: cfg.ConnectTimeout,
		Logger:  logger.Named("dial"),
		Metrics: stats,
	}
	if cfg.KeepaliveEnabled() {
		d.Keepalive = &transport.KeepaliveConfig{
			Idle:     cfg.KeepalivesIdle,
			Interval: cfg.KeepalivesInterval,
			Retries:  cfg.KeepalivesCount,
		}
	}
	return d
}

// buildBackoff returns the retry policy wrapped around each dial
// request.  Only failures a fresh request could fix are retried.
func buildBackoff(cfg *config.Config, logger *util.Logger) *retry.Backoff {
	b := retry.DefaultBackoff()
	b.MaxAttempts = cfg.Retries
	if cfg.RetryDelay > 0 {
		b.InitialDelay = cfg.RetryDelay
	}
	b.MaxDelay = config.DefaultMaxRetryDelay
	b.Retryable = errors.IsRetryable
	b.OnRetry = func(attempt int, err error, wait time.Duration) {
		logger.Warn("attempt %d failed: %v (retrying in %s)", attempt, err, wait.Truncate(time.Millisecond))
	}
	return b
}
