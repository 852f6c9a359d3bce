package core

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

// PlanMode prints what a ProbeMode would do without opening a socket.
type PlanMode struct {
	Probe  *ProbeMode
	Stdout io.Writer
}

// Run writes the plan.  It never dials.
func (m *PlanMode) Run(_ context.Context) error {
	out := m.Stdout
	if out == nil {
		out = os.Stdout
	}
	p := m.Probe
	d := p.Dialer

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "target\t%s\n", p.Target()) //nolint:errcheck

	if d.Timeout > 0 {
		fmt.Fprintf(tw, "timeout\t%s per address\n", d.Timeout) //nolint:errcheck
	} else {
		fmt.Fprintf(tw, "timeout\tnone\n") //nolint:errcheck
	}

	if ka := d.Keepalive; ka != nil {
		fmt.Fprintf(tw, "keepalive\tidle=%s interval=%s count=%s\n", //nolint:errcheck
			ka.Idle, orDefault(ka.Interval > 0, ka.Interval), orDefault(ka.Retries > 0, ka.Retries))
	} else {
		fmt.Fprintf(tw, "keepalive\tos default\n") //nolint:errcheck
	}

	attempts := 1
	if p.Backoff != nil && p.Backoff.MaxAttempts > 1 {
		attempts = p.Backoff.MaxAttempts
	}
	fmt.Fprintf(tw, "attempts\t%d\n", attempts) //nolint:errcheck
	if p.MetricsFile != "" {
		fmt.Fprintf(tw, "metrics\t%s\n", p.MetricsFile) //nolint:errcheck
	}
	return tw.Flush()
}

func orDefault(set bool, v interface{}) string {
	if !set {
		return "os"
	}
	return fmt.Sprint(v)
}
