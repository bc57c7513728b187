// Package logging builds the zerolog logger. The TUI owns the terminal, so
// logs go to a file rather than stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing JSON lines to w at the given level name.
// Unknown level names fall back to info.
func New(w io.Writer, level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// OpenFile opens (or creates) the log file at path for appending and
// returns a logger on it. The caller closes the returned file.
func OpenFile(path, level string) (zerolog.Logger, *os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("logging.OpenFile: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("logging.OpenFile: %w", err)
	}
	return New(f, level), f, nil
}

// Console returns a human-readable logger for non-TUI subcommands.
func Console(level string) zerolog.Logger {
	return New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}, level)
}
