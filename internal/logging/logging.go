// Package logging opens the append-only operations log.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// New opens (creating if needed) the log file at path and returns a text
// logger writing to it, along with the file to close on exit.
func New(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return NewWriter(f, level), f, nil
}

// NewWriter returns a text logger on w.
func NewWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return NewWriter(io.Discard, slog.LevelError+1)
}

// Failure records a failed operation with its name.
func Failure(log *slog.Logger, op string, err error, attrs ...any) {
	log.Error("operation failed", append([]any{"op", op, "err", err}, attrs...)...)
}
