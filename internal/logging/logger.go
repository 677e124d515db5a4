// Package logging provides a structured logging wrapper around charmbracelet/log.
//
// Commands configure the process-wide default logger; library packages only
// read a logger from their context with FromContext and log at debug level.
package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

//nolint:gochecknoglobals // Process-wide default logger.
var defaultLogger atomic.Pointer[log.Logger]

// levels maps accepted level names to charmbracelet levels.
//
//nolint:gochecknoglobals // Read-only lookup table.
var levels = map[string]log.Level{
	"debug":   log.DebugLevel,
	"info":    log.InfoLevel,
	"warn":    log.WarnLevel,
	"warning": log.WarnLevel,
	"error":   log.ErrorLevel,
}

// ParseLevel resolves a case-insensitive level name. Unknown names report
// false and resolve to info.
func ParseLevel(level string) (log.Level, bool) {
	lvl, ok := levels[strings.ToLower(level)]
	if !ok {
		return log.InfoLevel, false
	}
	return lvl, true
}

// New creates a diagnostics logger on stderr at the given level.
// Valid levels: "debug", "info", "warn", "error".
func New(level string) *log.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a diagnostics logger on w at the given level.
func NewWithWriter(w io.Writer, level string) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{})
	lvl, _ := ParseLevel(level)
	logger.SetLevel(lvl)
	return logger
}

// NewInteractive creates an info-level logger writing to stdout, for
// messages addressed to the user rather than diagnostics.
func NewInteractive() *log.Logger {
	return NewWithWriter(os.Stdout, "info")
}

// Default returns the process-wide logger, creating an info-level one on
// first use.
func Default() *log.Logger {
	if logger := defaultLogger.Load(); logger != nil {
		return logger
	}
	defaultLogger.CompareAndSwap(nil, New("info"))
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger *log.Logger) {
	defaultLogger.Store(logger)
}

// SetLevel updates the level of the process-wide logger.
func SetLevel(level string) {
	lvl, _ := ParseLevel(level)
	Default().SetLevel(lvl)
}
