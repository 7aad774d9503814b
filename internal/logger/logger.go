// ABOUTME: Structured logging configuration using log/slog.
// ABOUTME: Configures the default logger for CLI (stderr) or TUI (debug log file) use.

package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Init configures the default slog logger writing to w.
// level: debug, info, warn, error (default: warn)
// format: text, json (default: text)
func Init(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// InitFile points the default logger at <configDir>/debug.log so log output
// does not interfere with a full-screen terminal UI. If configDir is empty,
// logging is discarded. The returned function closes the file.
func InitFile(configDir, level, format string) (func(), error) {
	if configDir == "" {
		Init(io.Discard, level, format)
		return func() {}, nil
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		Init(io.Discard, level, format)
		return func() {}, err
	}

	f, err := os.OpenFile(filepath.Join(configDir, "debug.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		Init(io.Discard, level, format)
		return func() {}, err
	}

	Init(f, level, format)
	return func() { f.Close() }, nil
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
