// Package util provides low-level helpers shared by all other packages.
package util

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// LogLevel controls output verbosity.
type LogLevel int

const (
	LogQuiet   LogLevel = 0
	LogNormal  LogLevel = 1
	LogVerbose LogLevel = 2
	LogDebug   LogLevel = 3
)

// sink is the writer shared by a logger and all of its named children.
type sink struct {
	mu     sync.Mutex
	output io.Writer
}

// Logger writes levelled messages to stderr with optional timestamps,
// level prefixes and a component name.
//
// A nil *Logger discards everything, so components can hold an optional
// logger without nil checks.
type Logger struct {
	level      LogLevel
	out        *sink
	name       string
	timestamps bool // if true, prepend wall-clock timestamps
}

// NewLogger returns a Logger that prints messages at or below the given
// verbosity (0 = quiet, 1 = normal, 2 = verbose, 3 = debug).
func NewLogger(verbosity int) *Logger {
	return &Logger{
		level:      LogLevel(verbosity),
		out:        &sink{output: os.Stderr},
		timestamps: verbosity >= 3, // auto-enable timestamps in debug mode
	}
}

// Named returns a child logger that prefixes every line with name.  The
// child shares its parent's writer, level and timestamp setting.
func (l *Logger) Named(name string) *Logger {
	if l == nil {
		return nil
	}
	child := *l
	if l.name != "" {
		name = l.name + "." + name
	}
	child.name = name
	return &child
}

// SetTimestamps enables or disables timestamp prefixes.
func (l *Logger) SetTimestamps(on bool) { l.timestamps = on }

// SetOutput overrides the output writer (default: os.Stderr).
func (l *Logger) SetOutput(w io.Writer) {
	l.out.mu.Lock()
	l.out.output = w
	l.out.mu.Unlock()
}

// Level returns the current log level.
func (l *Logger) Level() LogLevel {
	if l == nil {
		return LogQuiet
	}
	return l.level
}

// Info prints when verbosity ≥ 1.  Prefixed with [INF].
func (l *Logger) Info(format string, args ...interface{}) {
	if l.Level() >= LogNormal {
		l.write("INF", format, args...)
	}
}

// Warn prints when verbosity ≥ 1.  Prefixed with [WRN].
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.Level() >= LogNormal {
		l.write("WRN", format, args...)
	}
}

// Verbose prints when verbosity ≥ 2.  Prefixed with [VRB].
func (l *Logger) Verbose(format string, args ...interface{}) {
	if l.Level() >= LogVerbose {
		l.write("VRB", format, args...)
	}
}

// Debug prints when verbosity ≥ 3.  Prefixed with [DBG].
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.Level() >= LogDebug {
		l.write("DBG", format, args...)
	}
}

// Error prints regardless of verbosity on a non-nil logger.  Prefixed
// with [ERR].
func (l *Logger) Error(format string, args ...interface{}) {
	if l != nil {
		l.write("ERR", format, args...)
	}
}

func (l *Logger) write(level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.name != "" {
		msg = l.name + ": " + msg
	}

	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	if l.timestamps {
		ts := time.Now().Format("15:04:05.000")
		fmt.Fprintf(l.out.output, "%s [%s] %s\n", ts, level, msg)
	} else {
		fmt.Fprintf(l.out.output, "[%s] %s\n", level, msg)
	}
}
