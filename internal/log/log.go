// Package log provides the logging infrastructure for meshctl.
//
// This package provides:
//   - A type alias for *slog.Logger to use as DI dependency
//   - Factory functions to create configured loggers
//   - A Nop logger for testing
//
// Loggers are dependency-injected, not global: each component receives a
// logger via its constructor and adds context via logger.With().
//
// Usage:
//
//	logger := log.New(log.Config{Level: slog.LevelDebug})
//	client := netguard.New(netguard.Options{Logger: logger.With("component", "netguard")})
//
//	// In tests, use the Nop logger or capture to a buffer:
//	testLogger := log.NewNop()
package log

import (
	"io"
	"log/slog"
	"os"
)

// Logger is a type alias for *slog.Logger.
// Using the standard library type directly keeps full compatibility with the
// slog ecosystem and avoids a custom interface definition.
//
// Components should accept log.Logger as a dependency.
type Logger = *slog.Logger

// Config defines logger configuration options.
type Config struct {
	// Level sets the minimum log level. Default: slog.LevelInfo
	Level slog.Level

	// JSON enables JSON format output. Default: false (text format)
	JSON bool

	// AddSource adds source file information to log entries. Default: false
	AddSource bool
}

// New creates a new logger with the given configuration.
// Output is written to os.Stderr by default.
func New(cfg Config) Logger {
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter creates a new logger that writes to the specified writer.
// Useful for testing or custom output destinations.
func NewWithWriter(w io.Writer, cfg Config) Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// NewNop creates a logger that discards all output.
//
// This should ONLY be used in tests. Production code should always use New()
// or NewWithWriter() with proper configuration, otherwise failures become
// impossible to debug.
func NewNop() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
