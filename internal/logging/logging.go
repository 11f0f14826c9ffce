// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package logging provides the leveled, structured logger used
// throughout the spoofing detector, with an optional syslog forwarder.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger is a thin wrapper over log/slog giving the rest of the
// codebase a small, stable key-value logging surface.
type Logger struct {
	slog  *slog.Logger
	level slog.Level
	dest  io.Writer
}

// New creates a Logger writing text-formatted records to w at the
// given minimum level. If w is nil, os.Stderr is used.
func New(w io.Writer, level slog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{slog: slog.New(handler), level: level, dest: w}
}

// WithWriter returns a copy of the logger that also writes to extra,
// e.g. a syslog forwarder, in addition to its primary destination.
func (l *Logger) WithWriter(extra io.Writer) *Logger {
	if extra == nil {
		return l
	}
	mw := io.MultiWriter(l.dest, extra)
	handler := slog.NewTextHandler(mw, &slog.HandlerOptions{Level: l.level})
	return &Logger{slog: slog.New(handler), level: l.level, dest: mw}
}

func (l *Logger) Info(msg string, kv ...any)  { l.slog.Log(context.Background(), slog.LevelInfo, msg, kv...) }
func (l *Logger) Warn(msg string, kv ...any)  { l.slog.Log(context.Background(), slog.LevelWarn, msg, kv...) }
func (l *Logger) Error(msg string, kv ...any) { l.slog.Log(context.Background(), slog.LevelError, msg, kv...) }
func (l *Logger) Debug(msg string, kv ...any) { l.slog.Log(context.Background(), slog.LevelDebug, msg, kv...) }

// With returns a Logger that always includes the given key-value pairs.
func (l *Logger) With(kv ...any) *Logger {
	return &Logger{slog: l.slog.With(kv...), level: l.level, dest: l.dest}
}

// Default returns an Info-level logger writing to stderr.
func Default() *Logger {
	return New(os.Stderr, slog.LevelInfo)
}
