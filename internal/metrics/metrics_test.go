package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"pgdial/internal/errors"
)

func TestCollector_Dials(t *testing.T) {
	c := New()

	c.DialStarted()
	c.AttemptStarted()
	c.AttemptStarted()
	c.Connected()

	if c.Dials() != 1 {
		t.Errorf("dials = %d, want 1", c.Dials())
	}
	if c.Attempts() != 2 {
		t.Errorf("attempts = %d, want 2", c.Attempts())
	}
	if c.Connects() != 1 {
		t.Errorf("connects = %d, want 1", c.Connects())
	}
}

func TestCollector_FailuresByKind(t *testing.T) {
	c := New()

	c.DialFailed(errors.WrapResolve("h", fmt.Errorf("nxdomain")))
	c.DialFailed(errors.TimedOut("h"))
	c.DialFailed(errors.TimedOut("h"))
	c.DialFailed(errors.NoAddresses("h"))
	c.DialFailed(errors.WrapConnect("h", fmt.Errorf("refused")))
	c.DialFailed(fmt.Errorf("unclassified"))
	c.DialFailed(nil)

	tests := []struct {
		kind errors.Kind
		want int64
	}{
		{errors.KindResolution, 1},
		{errors.KindTimeout, 2},
		{errors.KindNoAddresses, 1},
		{errors.KindConnect, 2},
		{errors.Kind(0), 0},
	}
	for _, tt := range tests {
		if got := c.Failures(tt.kind); got != tt.want {
			t.Errorf("Failures(%v) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestCollector_Snapshot(t *testing.T) {
	c := New()
	c.DialStarted()
	c.AttemptStarted()
	c.DialFailed(errors.TimedOut("10.0.0.1:5432"))

	snap := c.Snapshot()
	if snap.DialsTotal != 1 {
		t.Errorf("snap dials = %d", snap.DialsTotal)
	}
	if snap.Timeouts != 1 {
		t.Errorf("snap timeouts = %d", snap.Timeouts)
	}
	if snap.LastErrorMessage != "dial 10.0.0.1:5432: connection timed out" {
		t.Errorf("snap error msg = %q", snap.LastErrorMessage)
	}
	if snap.LastConnect != "" {
		t.Errorf("snap last connect = %q, want empty", snap.LastConnect)
	}
}

func TestSnapshot_JSON(t *testing.T) {
	c := New()
	c.DialStarted()
	c.Connected()

	raw, err := json.Marshal(c.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		t.Fatalf("JSON parse error: %v", err)
	}
	if snap.ConnectsTotal != 1 {
		t.Errorf("JSON connects = %d", snap.ConnectsTotal)
	}
	if snap.LastConnect == "" {
		t.Error("expected last connect timestamp")
	}
}

func TestCollector_Prometheus(t *testing.T) {
	c := New()
	c.DialStarted()
	c.AttemptStarted()
	c.AttemptStarted()
	c.DialFailed(errors.TimedOut("h"))

	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}

	if n := testutil.CollectAndCount(c, "pgdial_dial_failures_total"); n != 4 {
		t.Errorf("failure series = %d, want 4", n)
	}

	expected := `
# HELP pgdial_connect_attempts_total Candidate connect attempts.
# TYPE pgdial_connect_attempts_total counter
pgdial_connect_attempts_total 2
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "pgdial_connect_attempts_total"); err != nil {
		t.Error(err)
	}
}

func TestNilCollector_NoOps(t *testing.T) {
	var c *Collector

	// None of these should panic.
	c.DialStarted()
	c.AttemptStarted()
	c.Connected()
	c.DialFailed(errors.TimedOut("h"))

	if c.Dials() != 0 || c.Attempts() != 0 || c.Connects() != 0 {
		t.Error("nil collector should return 0")
	}
	if c.Failures(errors.KindTimeout) != 0 {
		t.Error("nil collector should return 0")
	}

	snap := c.Snapshot()
	if snap.DialsTotal != 0 {
		t.Error("nil snapshot should be zero")
	}

	if err := c.WriteTextfile(filepath.Join(t.TempDir(), "nil.prom")); err != nil {
		t.Errorf("nil WriteTextfile: %v", err)
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := New()
	c.DialStarted()
	c.AttemptStarted()
	c.DialFailed(errors.NoAddresses("db:5432"))

	path := filepath.Join(t.TempDir(), "pgdial.prom")
	if err := c.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"# TYPE pgdial_dials_total counter",
		"pgdial_dials_total 1",
		"pgdial_connect_attempts_total 1",
		"pgdial_connects_total 0",
		`pgdial_dial_failures_total{kind="no addresses"} 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Errorf("textfile missing %q:\n%s", want, data)
		}
	}
}

func TestCollector_WriteTextfileBadPath(t *testing.T) {
	c := New()
	path := filepath.Join(t.TempDir(), "missing", "pgdial.prom")
	if err := c.WriteTextfile(path); err == nil {
		t.Error("expected error for a missing directory")
	}
}
