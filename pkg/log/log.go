// Package log configures the process-wide slog logger shared by the
// rabbitflow binaries.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const serviceName = "rabbitflow"

// Setup installs the default logger at the given level. LOG_FORMAT=json
// switches from the human-readable text handler to JSON for log shippers.
func Setup(logLevel string) {
	slog.SetDefault(slog.New(newHandler(os.Stderr, logLevel)).With("service", serviceName))
}

// WithModule returns the default logger tagged with a module attribute.
func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}

func newHandler(w io.Writer, logLevel string) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(logLevel)}

	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		return slog.NewJSONHandler(w, opts)
	}

	return slog.NewTextHandler(w, opts)
}

func parseLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
