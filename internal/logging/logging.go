// Package logging builds the slog logger used by beanctl.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/andriiyaremenko/tinyioc/internal/config"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"

	OutputStderr = "stderr"
	OutputFile   = "file"
)

// NewLogger returns logger writing to stderr, or to a rotated file when Output is "file".
func NewLogger(cfg config.Logging) *slog.Logger {
	var w io.Writer

	switch cfg.Output {
	case OutputFile:
		w = newRotatingWriter(cfg)
	case OutputStderr, "":
		w = os.Stderr
	default:
		fmt.Fprintf(os.Stderr, "WARNING: unknown log output %q, falling back to stderr\n", cfg.Output)
		w = os.Stderr
	}

	return NewLoggerWithWriter(cfg, w)
}

// NewLoggerWithWriter returns logger writing to w with level and format from cfg.
func NewLoggerWithWriter(cfg config.Logging, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler

	switch cfg.Format {
	case config.FormatJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

func newRotatingWriter(cfg config.Logging) io.Writer {
	if cfg.FilePath == "" {
		fmt.Fprintln(os.Stderr, "WARNING: log output is file but file path is empty, falling back to stderr")
		return os.Stderr
	}

	if dir := filepath.Dir(cfg.FilePath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			fmt.Fprintf(os.Stderr, "WARNING: cannot create log directory %q: %v, falling back to stderr\n", dir, err)
			return os.Stderr
		}
	}

	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}

// unknown levels fall back to info
func parseLevel(level string) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
