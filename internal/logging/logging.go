// Package logging holds the logger shared by every geostyle package.
//
// Nothing is logged until SetLogger is called. The styling core runs on
// hot paths (one call per primitive), so the default handler reports
// itself disabled and callers skip formatting entirely.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// silent is installed until SetLogger is called. Every level is off, so a
// log call returns before a record is built.
type silent struct{}

func (silent) Enabled(context.Context, slog.Level) bool  { return false }
func (silent) Handle(context.Context, slog.Record) error { return nil }
func (h silent) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h silent) WithGroup(string) slog.Handler           { return h }

var (
	off     = slog.New(silent{})
	current atomic.Pointer[slog.Logger]
)

func init() { current.Store(off) }

// SetLogger installs l for all packages. Pass nil to silence logging again.
//
// Levels:
//   - Debug: mapping rebuilds, bounding box passes, texture synthesis and padding
//   - Info: data loads and resets, cache teardown
//   - Warn: backend failures, watch and walk errors in the viewer
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = off
	}
	current.Store(l)
}

// Logger returns the current logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return current.Load()
}
