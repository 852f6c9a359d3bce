// Package cmd wires up the CLI flags and dispatches to the probe core.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"pgdial/config"
	"pgdial/internal/core"
	"pgdial/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X pgdial/cmd.version=0.2.0"
var version = "0.1.0" //nolint:gochecknoglobals

// Execute parses args and runs the selected pgdial mode.
func Execute(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

// flagValues holds the raw flag values.  They are applied on top of
// the file and environment layers only when set on the command line.
type flagValues struct {
	host, hostaddr, configPath, format string

	port, timeoutSec, retries, verbose int

	idleSec, intervalSec, count int

	metricsFile string

	jsonOut, dryRun bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var fv flagValues
	fs := flag.NewFlagSet("pgdial", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ── target ───────────────────────────────────────────────────
	fs.StringVarP(&fv.host, "host", "h", config.DefaultHost, "Server host name, IP, or socket directory (leading /)")
	fs.IntVarP(&fv.port, "port", "p", config.DefaultPort, "Server port")
	fs.StringVar(&fv.hostaddr, "hostaddr", "", "Numeric IP to dial instead of resolving --host")

	// ── connect ──────────────────────────────────────────────────
	fs.IntVarP(&fv.timeoutSec, "connect-timeout", "t", 0, "Per-address connect timeout in seconds (0 = none)")
	fs.IntVar(&fv.idleSec, "keepalives-idle", 0, "Seconds of idle before TCP keepalive probes (0 = OS default)")
	fs.IntVar(&fv.intervalSec, "keepalives-interval", 0, "Seconds between keepalive probes (needs --keepalives-idle)")
	fs.IntVar(&fv.count, "keepalives-count", 0, "Unanswered probes before the connection drops (needs --keepalives-idle)")
	fs.IntVarP(&fv.retries, "retries", "r", config.DefaultRetries, "Dial requests to make before giving up")

	// ── configuration ────────────────────────────────────────────
	fs.StringVarP(&fv.configPath, "config", "c", "", "TOML config file (default $PGDIAL_CONFIG)")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&fv.verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&fv.jsonOut, "json", false, "Print the result as JSON")
	fs.StringVar(&fv.format, "format", config.DefaultFormat, "Output format: auto, text or json")
	fs.BoolVar(&fv.dryRun, "dry-run", false, "Print the dial plan and exit")
	fs.StringVar(&fv.metricsFile, "metrics-file", "", "Write dial counters in Prometheus text format to this file")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVar(&showHelp, "help", false, "Show this help")

	fs.Usage = func() { printUsage(stderr, fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(stderr, fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "pgdial %s\n", version) //nolint:errcheck
		return nil
	}

	// ── layer configuration ──────────────────────────────────────
	cfg := config.Defaults()

	path := fv.configPath
	if path == "" {
		path = os.Getenv("PGDIAL_CONFIG")
	}
	if path != "" {
		if err := config.LoadFile(path, cfg); err != nil {
			return err
		}
	}
	config.LoadFromEnv(cfg)
	if err := applyFlags(cfg, fs, &fv); err != nil {
		return err
	}

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs, fs.Args()); err != nil {
		return err
	}

	cfg.Format = resolveFormat(cfg.Format, stdout)

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── build components ─────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	logger.SetOutput(stderr)

	mode, err := core.Build(cfg, logger)
	if err != nil {
		return err
	}
	switch m := mode.(type) {
	case *core.ProbeMode:
		m.Stdout = stdout
	case *core.PlanMode:
		m.Stdout = stdout
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

// applyFlags copies every flag the user set onto cfg.
func applyFlags(cfg *config.Config, fs *flag.FlagSet, fv *flagValues) error {
	if fs.Changed("host") {
		cfg.Host = fv.host
	}
	if fs.Changed("port") {
		cfg.Port = fv.port
	}
	if fs.Changed("hostaddr") {
		cfg.HostAddr = fv.hostaddr
	}
	if fs.Changed("connect-timeout") {
		cfg.ConnectTimeout = seconds(fv.timeoutSec)
	}
	if fs.Changed("keepalives-idle") {
		cfg.KeepalivesIdle = seconds(fv.idleSec)
	}
	if fs.Changed("keepalives-interval") {
		cfg.KeepalivesInterval = seconds(fv.intervalSec)
	}
	if fs.Changed("keepalives-count") {
		cfg.KeepalivesCount = fv.count
	}
	if fs.Changed("retries") {
		cfg.Retries = fv.retries
	}
	if fs.Changed("verbose") {
		cfg.Verbose = fv.verbose
	}
	if fs.Changed("format") {
		cfg.Format = fv.format
	}
	if fs.Changed("metrics-file") {
		cfg.MetricsFile = fv.metricsFile
	}
	if fv.jsonOut {
		if fs.Changed("format") && fv.format != "json" {
			return fmt.Errorf("--json conflicts with --format=%s", fv.format)
		}
		cfg.Format = "json"
	}
	cfg.DryRun = fv.dryRun
	return nil
}

// parsePositional accepts the psql-style [host] [port] arguments.
func parsePositional(cfg *config.Config, fs *flag.FlagSet, remaining []string) error {
	if len(remaining) > 2 {
		return fmt.Errorf("too many arguments (use --help for usage)")
	}
	if len(remaining) >= 1 {
		if fs.Changed("host") {
			return fmt.Errorf("host given both as -h and as argument %q", remaining[0])
		}
		cfg.Host = remaining[0]
	}
	if len(remaining) == 2 {
		if fs.Changed("port") {
			return fmt.Errorf("port given both as -p and as argument %q", remaining[1])
		}
		port, err := config.ParsePort(remaining[1])
		if err != nil {
			return fmt.Errorf("port: %w", err)
		}
		cfg.Port = port
	}
	return nil
}

// resolveFormat turns "auto" into text for a terminal and JSON for
// anything else.
func resolveFormat(format string, stdout io.Writer) string {
	if format != "auto" {
		return format
	}
	if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "text"
	}
	return "json"
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `pgdial – PostgreSQL transport probe v%s

Opens the TCP or Unix-domain connection a PostgreSQL client would use,
reports how it got there, and closes it again.  No protocol is spoken.

Usage:
  pgdial [options] [host] [port]

Options:
`, version) //nolint:errcheck
	fs.PrintDefaults()
	fmt.Fprint(w, `
Environment:
  PGHOST PGHOSTADDR PGPORT PGCONNECT_TIMEOUT   libpq equivalents
  PGDIAL_*                                     override the libpq names
  PGDIAL_CONFIG                                default for --config
  PGDIAL_METRICS_FILE                          default for --metrics-file

Examples:
  pgdial db.example.com                        TCP on port 5432
  pgdial -t 5 --keepalives-idle 30 db 6432     Timeout and keepalive
  pgdial /var/run/postgresql                   Local Unix-domain socket
  pgdial --hostaddr 10.0.0.7 -h db             Skip name resolution
  pgdial -r 5 -v db.example.com                Retry while the server starts
`) //nolint:errcheck
}
