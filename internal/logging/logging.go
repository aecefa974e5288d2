package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"iftarspot/backend/internal/config"
)

type Cleanup func() error

// New builds the process logger for service and installs it as the slog
// default. Output always goes to stdout and is teed to cfg.File when set.
func New(cfg config.LoggingConfig, service string) (*slog.Logger, Cleanup, error) {
	var file *os.File
	writers := []io.Writer{os.Stdout}
	if cfg.File != "" {
		f, err := openLogFile(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		file = f
		writers = append(writers, f)
	}

	logger := slog.New(newHandler(io.MultiWriter(writers...), cfg)).With("service", service)
	slog.SetDefault(logger)

	cleanup := func() error {
		if file != nil {
			return file.Close()
		}
		return nil
	}
	return logger, cleanup, nil
}

func newHandler(w io.Writer, cfg config.LoggingConfig) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: true,
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func openLogFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
}

func parseLevel(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
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
