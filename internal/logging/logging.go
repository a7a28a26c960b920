package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New builds the application logger. Records go to stderr with HH:MM:SS
// timestamps; when logFile is non-empty they are teed to that file as well.
func New(debug bool, logFile string) (*log.Logger, error) {
	level := log.InfoLevel
	if debug {
		level = log.DebugLevel
	}

	var w io.Writer = os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
	}

	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	}), nil
}

// Discard returns a logger that drops everything. Used by components whose
// callers did not supply a logger, and in tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
