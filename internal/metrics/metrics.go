// Package metrics provides lightweight, lock-free counters for tracking
// dial requests made through a transport.Dialer.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
//
// A Collector also implements prometheus.Collector and can be
// registered with any prometheus.Registerer, or written once in the
// text exposition format with WriteTextfile.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"pgdial/internal/errors"
)

// Collector tracks dial statistics for one Dialer (or several sharing it).
// A nil Collector is safe to use; all methods become no-ops.
type Collector struct {
	dialsTotal    atomic.Int64
	attemptsTotal atomic.Int64
	connects      atomic.Int64

	resolutionFailures atomic.Int64
	connectFailures    atomic.Int64
	timeouts           atomic.Int64
	noAddresses        atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	lastConnect  time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Dial metrics ─────────────────────────────────────────────────────

// DialStarted records a new dial request.
func (c *Collector) DialStarted() {
	if c == nil {
		return
	}
	c.dialsTotal.Add(1)
}

// AttemptStarted records one candidate connect attempt.
func (c *Collector) AttemptStarted() {
	if c == nil {
		return
	}
	c.attemptsTotal.Add(1)
}

// Connected records a dial request that produced a socket.
func (c *Collector) Connected() {
	if c == nil {
		return
	}
	c.connects.Add(1)
	c.mu.Lock()
	c.lastConnect = time.Now()
	c.mu.Unlock()
}

// DialFailed records a dial request that ended with err.
func (c *Collector) DialFailed(err error) {
	if c == nil || err == nil {
		return
	}
	switch errors.KindOf(err) {
	case errors.KindResolution:
		c.resolutionFailures.Add(1)
	case errors.KindTimeout:
		c.timeouts.Add(1)
	case errors.KindNoAddresses:
		c.noAddresses.Add(1)
	default:
		c.connectFailures.Add(1)
	}
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = err.Error()
	c.mu.Unlock()
}

// Dials returns the number of dial requests started.
func (c *Collector) Dials() int64 {
	if c == nil {
		return 0
	}
	return c.dialsTotal.Load()
}

// Attempts returns the number of candidate connect attempts.
func (c *Collector) Attempts() int64 {
	if c == nil {
		return 0
	}
	return c.attemptsTotal.Load()
}

// Connects returns the number of successful dial requests.
func (c *Collector) Connects() int64 {
	if c == nil {
		return 0
	}
	return c.connects.Load()
}

// Failures returns the number of failed dial requests of the given kind.
func (c *Collector) Failures(kind errors.Kind) int64 {
	if c == nil {
		return 0
	}
	switch kind {
	case errors.KindResolution:
		return c.resolutionFailures.Load()
	case errors.KindConnect:
		return c.connectFailures.Load()
	case errors.KindTimeout:
		return c.timeouts.Load()
	case errors.KindNoAddresses:
		return c.noAddresses.Load()
	default:
		return 0
	}
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime             string `json:"uptime"`
	DialsTotal         int64  `json:"dials_total"`
	AttemptsTotal      int64  `json:"attempts_total"`
	ConnectsTotal      int64  `json:"connects_total"`
	ResolutionFailures int64  `json:"resolution_failures"`
	ConnectFailures    int64  `json:"connect_failures"`
	Timeouts           int64  `json:"timeouts"`
	NoAddresses        int64  `json:"no_addresses"`
	LastConnect        string `json:"last_connect,omitempty"`
	LastError          string `json:"last_error,omitempty"`
	LastErrorMessage   string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:             time.Since(c.startTime).Truncate(time.Millisecond).String(),
		DialsTotal:         c.dialsTotal.Load(),
		AttemptsTotal:      c.attemptsTotal.Load(),
		ConnectsTotal:      c.connects.Load(),
		ResolutionFailures: c.resolutionFailures.Load(),
		ConnectFailures:    c.connectFailures.Load(),
		Timeouts:           c.timeouts.Load(),
		NoAddresses:        c.noAddresses.Load(),
	}
	if !c.lastConnect.IsZero() {
		s.LastConnect = c.lastConnect.Format(time.RFC3339)
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// ── Prometheus export ────────────────────────────────────────────────

var (
	dialsDesc = prometheus.NewDesc(
		"pgdial_dials_total", "Dial requests started.", nil, nil)
	attemptsDesc = prometheus.NewDesc(
		"pgdial_connect_attempts_total", "Candidate connect attempts.", nil, nil)
	connectsDesc = prometheus.NewDesc(
		"pgdial_connects_total", "Dial requests that returned a socket.", nil, nil)
	failuresDesc = prometheus.NewDesc(
		"pgdial_dial_failures_total", "Failed dial requests by error kind.",
		[]string{"kind"}, nil)
)

var failureKinds = []errors.Kind{
	errors.KindResolution,
	errors.KindConnect,
	errors.KindTimeout,
	errors.KindNoAddresses,
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- dialsDesc
	ch <- attemptsDesc
	ch <- connectsDesc
	ch <- failuresDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	if c == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(dialsDesc, prometheus.CounterValue, float64(c.Dials()))
	ch <- prometheus.MustNewConstMetric(attemptsDesc, prometheus.CounterValue, float64(c.Attempts()))
	ch <- prometheus.MustNewConstMetric(connectsDesc, prometheus.CounterValue, float64(c.Connects()))
	for _, kind := range failureKinds {
		ch <- prometheus.MustNewConstMetric(failuresDesc, prometheus.CounterValue,
			float64(c.Failures(kind)), kind.String())
	}
}

// WriteTextfile writes the current counters to path in the Prometheus
// text format, for collection by node_exporter's textfile collector.
// The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil {
		return nil
	}
	reg := prometheus.NewRegistry()
	if err := reg.Register(c); err != nil {
		return err
	}
	return prometheus.WriteToTextfile(path, reg)
}
