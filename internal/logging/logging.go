// Package logging provides the configured slog logger shared by the server
// and the convert CLI.
//
// The format is text on a terminal and JSON otherwise, unless LOG_FORMAT
// (text|json) says so. LOG_LEVEL picks the level (debug|info|warn|error).
// Source locations are printed relative to the working directory.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options controls where and how a logger writes.
type Options struct {
	// Writer defaults to os.Stdout.
	Writer io.Writer

	// Format is "text" or "json". Empty picks text on a terminal.
	Format string

	// Level is a LOG_LEVEL style name. Empty means info.
	Level string
}

// FromEnv returns Options for w with LOG_FORMAT and LOG_LEVEL applied.
func FromEnv(w io.Writer) Options {
	return Options{
		Writer: w,
		Format: os.Getenv("LOG_FORMAT"),
		Level:  os.Getenv("LOG_LEVEL"),
	}
}

// New creates a logger writing to stdout, configured from the environment.
func New() *slog.Logger {
	return NewWith(FromEnv(os.Stdout))
}

// NewWith creates a logger from explicit options.
func NewWith(o Options) *slog.Logger {
	w := o.Writer
	if w == nil {
		w = os.Stdout
	}
	format := strings.ToLower(strings.TrimSpace(o.Format))
	useText := format == "text" || (format == "" && isatty(w))

	wd, _ := os.Getwd()
	opts := &slog.HandlerOptions{
		Level:     parseLogLevel(o.Level),
		AddSource: true,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key != slog.SourceKey {
				return a
			}
			if src, ok := a.Value.Any().(*slog.Source); ok {
				if rel, err := filepath.Rel(wd, src.File); err == nil && !strings.HasPrefix(rel, "..") {
					src.File = rel
				} else {
					src.File = filepath.Base(src.File)
				}
			}
			return a
		},
	}

	if useText {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// parseLogLevel converts a string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetDefault creates a logger from the environment and installs it as the
// slog default.
func SetDefault() *slog.Logger {
	logger := New()
	slog.SetDefault(logger)
	return logger
}

// isatty reports whether w is a terminal.
func isatty(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
