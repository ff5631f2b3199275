// Package logging builds the process-wide slog loggers and the
// per-component children every adapter in the tree logs through.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// New creates the root console logger at the configured level.
func New(level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	}))
}

// Component derives a child logger tagged with the component name, so
// pipeline, stage, and transport lines stay distinguishable in one stream.
func Component(parent *slog.Logger, name string) *slog.Logger {
	if parent == nil {
		parent = slog.Default()
	}
	return parent.With("component", name)
}

// parseLevel falls back to debug on unknown input so a misconfigured
// level surfaces loudly rather than hiding lines.
func parseLevel(value string) slog.Level {
	if lvl, ok := levels[strings.ToLower(strings.TrimSpace(value))]; ok {
		return lvl
	}
	return slog.LevelDebug
}
