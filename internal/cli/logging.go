// Package cli owns flag parsing, logging setup, exit-code mapping, and
// table/progress rendering for cmd/subx; it depends on the pkg/* core, never
// the reverse. Grounded on the teacher's cmd/root.go logger construction.
package cli

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// NewLogger builds a zerolog.Logger writing a colorized console view to
// stderr when attached to a terminal, or newline-delimited JSON otherwise —
// the same ConsoleWriter-vs-JSON split the teacher's root.go makes, just
// decided dynamically instead of always choosing the console writer.
func NewLogger(verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	var logger zerolog.Logger
	if isatty.IsTerminal(os.Stderr.Fd()) {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return logger.Level(level)
}
