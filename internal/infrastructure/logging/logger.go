package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"yocto-led-bridge/internal/infrastructure/config"
)

// New builds the process logger. JSON is the default format; "text" uses a
// colorized tint handler meant for terminals.
func New(cfg config.LoggingConfig, version string) *slog.Logger {
	return slog.New(newHandler(cfg, output(cfg.Output)).WithAttrs([]slog.Attr{
		slog.String("service", "yocto-led-bridge"),
		slog.String("version", version),
	}))
}

func newHandler(cfg config.LoggingConfig, w io.Writer) slog.Handler {
	level := ParseLevel(cfg.Level)
	if strings.ToLower(cfg.Format) == "text" {
		return tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

func output(name string) io.Writer {
	if strings.ToLower(name) == "stderr" {
		return os.Stderr
	}
	return os.Stdout
}

// ParseLevel defaults to info for anything unrecognised.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
