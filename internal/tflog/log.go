// SPDX-License-Identifier: BSD-3-Clause

// Package tflog provides the daemon's structured logger: log/slog bridged
// to zerolog for human-readable console output, adapted from the
// teacher's pkg/log (with the OpenTelemetry export fan-out dropped — see
// DESIGN.md, there is no remote collector for a single-host daemon).
package tflog

import (
	"log/slog"

	"github.com/rs/zerolog"
	slogzerolog "github.com/samber/slog-zerolog/v2"
)

// Option configures New in the teacher's functional-options style.
type Option interface{ apply(*options) }

type options struct {
	level slog.Level
}

type levelOption struct{ level slog.Level }

func (o *levelOption) apply(c *options) { c.level = o.level }

// WithLevel sets the minimum slog level passed through to the console
// writer (e.g. slog.LevelDebug for -v, slog.LevelWarn for -q).
func WithLevel(level slog.Level) Option { return &levelOption{level: level} }

// New builds a console logger wired the way the teacher's pkg/log wires
// zerolog into slog, at the given minimum level.
func New(opts ...Option) *slog.Logger {
	o := &options{level: slog.LevelInfo}
	for _, opt := range opts {
		opt.apply(o)
	}

	zeroLogger := zerolog.
		New(zerolog.NewConsoleWriter()).
		With().
		Timestamp().
		Logger()

	handler := slogzerolog.Option{Level: o.level, Logger: &zeroLogger}.NewZerologHandler()
	return slog.New(handler)
}
