// Package observability configures structured logging and Prometheus metrics.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// SetupLogging installs the default slog logger. Development gets a colored tint handler
// on stderr; every other environment gets JSON on stdout.
func SetupLogging(environment, level string) {
	slog.SetDefault(NewLogger(environment, level, nil))
}

// NewLogger builds a logger for environment. A nil w selects the default stream.
func NewLogger(environment, level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)

	if environment == "development" {
		if w == nil {
			w = os.Stderr
		}
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      lvl,
			TimeFormat: time.Kitchen,
		}))
	}

	if w == nil {
		w = os.Stdout
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: lvl,
	}))
}

// ParseLevel maps debug, warn and error to their slog levels. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
