package cli

import (
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
)

// LogTimeFormat is the timestamp layout of text log lines.
const LogTimeFormat = "15:04:05"

// NewLogger builds the run logger. Logs go to w (stderr in production) so
// stdout carries only the summary.
func NewLogger(w io.Writer, verbose, jsonOutput bool) *slog.Logger {
	level := charmlog.InfoLevel
	if verbose {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		TimeFormat:      LogTimeFormat,
		Level:           level,
	})
	if jsonOutput {
		handler.SetFormatter(charmlog.JSONFormatter)
	} else {
		handler.SetFormatter(charmlog.TextFormatter)
	}
	return slog.New(handler)
}
