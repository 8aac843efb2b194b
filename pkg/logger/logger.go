// Package logger builds the process-wide slog logger from configuration.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the handler output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseLevel parses a level name. Unknown names fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Options configures the logger.
type Options struct {
	// Output defaults to stderr so stdout stays free for command output.
	Output io.Writer
	Level  slog.Level
	Format Format

	// AddSource adds file:line of the call site.
	AddSource bool

	// App is attached to every record as "app" when non-empty.
	App string
}

// New creates a logger with the given options.
func New(opts Options) *slog.Logger {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     opts.Level,
		AddSource: opts.AddSource,
	}

	var handler slog.Handler
	if opts.Format == FormatJSON {
		handler = slog.NewJSONHandler(opts.Output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(opts.Output, handlerOpts)
	}

	log := slog.New(handler)
	if opts.App != "" {
		log = log.With("app", opts.App)
	}
	return log
}

// Common attribute keys.
const (
	KeyComponent = "component"
	KeyRunID     = "run_id"
)

// Component returns the "component" attribute.
func Component(name string) slog.Attr { return slog.String(KeyComponent, name) }

// RunID returns the "run_id" attribute of a load run.
func RunID(id string) slog.Attr { return slog.String(KeyRunID, id) }
