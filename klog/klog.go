// Package klog wraps charmbracelet/log for the kernel's debug output:
// task state transitions, timeouts, kills, and scheduling decisions.
// The teacher depends on charmbracelet/log and lestrrat-go/strftime
// without ever calling them (src/tq.go and src/xmit.go only use
// strftime directly, for packet timestamps); this package is where both
// libraries actually get exercised.
package klog

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

// Logger is the handle every package that wants kernel-level debug
// output takes, rather than depending on charmbracelet/log directly.
type Logger struct {
	l  *log.Logger
	ts *strftime.Strftime
}

// Option configures a Logger at construction.
type Option func(*log.Options)

// WithLevel sets the minimum level that reaches the writer.
func WithLevel(level log.Level) Option {
	return func(o *log.Options) { o.Level = level }
}

// New builds a Logger writing to w. Entries logged through KernelSink
// carry an "at" field formatted with the given strftime layout (e.g.
// "%Y-%m-%d %H:%M:%S.%f"); a malformed layout makes that field an
// RFC3339 timestamp instead. Every entry also carries charmbracelet/log's
// own timestamp.
func New(w io.Writer, timeLayout string, opts ...Option) *Logger {
	o := log.Options{
		ReportTimestamp: true,
		Level:           log.InfoLevel,
	}
	for _, opt := range opts {
		opt(&o)
	}
	l := &Logger{l: log.NewWithOptions(w, o)}
	if ts, err := strftime.New(timeLayout); err == nil {
		l.ts = ts
	}
	return l
}

// Default builds a Logger writing to stderr at Info level with a
// strftime timestamp matching the teacher's packet-log format.
func Default() *Logger {
	return New(os.Stderr, "%Y-%m-%d %H:%M:%S")
}

func (lg *Logger) stamp() string {
	if lg.ts == nil {
		return time.Now().Format(time.RFC3339)
	}
	return lg.ts.FormatString(time.Now())
}

// KernelSink returns a func(format string, args ...any) suitable for
// kernel.WithLogger: kernel-level events are logged at Debug, with a
// pre-formatted timestamp attached as a field so the log call itself
// never does work beyond string formatting while the kernel's critical
// section is held — the caller has already copied whatever event data
// it needs before calling this.
func (lg *Logger) KernelSink() func(format string, args ...any) {
	return func(format string, args ...any) {
		lg.l.Debug(fmt.Sprintf(format, args...), "at", lg.stamp())
	}
}

// Debugf, Infof, Warnf, and Errorf log at the named level.
func (lg *Logger) Debugf(format string, args ...any) { lg.l.Debug(fmt.Sprintf(format, args...)) }
func (lg *Logger) Infof(format string, args ...any)  { lg.l.Info(fmt.Sprintf(format, args...)) }
func (lg *Logger) Warnf(format string, args ...any)  { lg.l.Warn(fmt.Sprintf(format, args...)) }
func (lg *Logger) Errorf(format string, args ...any) { lg.l.Error(fmt.Sprintf(format, args...)) }

// SetLevel adjusts the minimum level at runtime.
func (lg *Logger) SetLevel(level log.Level) { lg.l.SetLevel(level) }
