// Package cli implements the rigview command-line interface.
//
// The root command opens the previewer window on a set of rig files; helper
// subcommands inspect atlas descriptors and scaffold a config file. Logging
// uses charmbracelet/log with --verbose (-v) switching to debug level.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger with timestamp formatting. The logger writes to
// w and filters messages at the specified level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// parseLevel maps a config logging level name onto a charm log level.
// Unknown names fall back to info.
func parseLevel(name string) log.Level {
	switch name {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
