// Package logging configures structured logging: colored console output
// with tint, or JSON for log collectors.
//
// Usage:
//
//	logging.Setup()                            // level from LOG_LEVEL env, console
//	logging.Configure("debug", logging.JSON)   // explicit level and format
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Output formats.
const (
	Console = "console"
	JSON    = "json"
)

// Setup configures colored logging at the level specified by LOG_LEVEL env var
// (default: INFO).
func Setup() {
	level, err := ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(NewHandler(os.Stderr, level, Console)))
}

// Configure installs the default logger for the given level name and format.
func Configure(level, format string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	if format != Console && format != JSON {
		return fmt.Errorf("invalid log format: %s", format)
	}
	slog.SetDefault(slog.New(NewHandler(os.Stderr, lvl, format)))
	return nil
}

// NewHandler builds a handler writing to w.
func NewHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	if format == JSON {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	})
}

// ParseLevel maps debug, info, warn and error to slog levels. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level: %s", s)
}
