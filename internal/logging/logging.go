// SPDX-License-Identifier: MPL-2.0

package logging

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Prefix is printed before every log line.
const Prefix = "gmw"

// Options configure New.
type Options struct {
	// Verbose enables debug output.
	Verbose bool
	// NoColor strips ANSI styling.
	NoColor bool
}

// New returns a logger writing to w at info level, or debug level when
// verbose.
func New(w io.Writer, opts Options) *log.Logger {
	level := log.InfoLevel
	if opts.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		Level:           level,
		ReportTimestamp: opts.Verbose,
	})
	if opts.NoColor {
		logger.SetColorProfile(termenv.Ascii)
	}
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
