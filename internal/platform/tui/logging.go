package tui

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// OpenLog returns a logger appending to path. The terminal belongs to the
// game while it runs, so front-end failures go to this file instead.
func OpenLog(path string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          "stacker",
	})
	return logger, f, nil
}

// discardLogger is used when no log file is configured.
func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
