package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/andriiyaremenko/tinyioc/internal/config"
	"github.com/andriiyaremenko/tinyioc/internal/logging"
	"github.com/andriiyaremenko/tinyioc/internal/telemetry"
	"github.com/andriiyaremenko/tinyioc/observe"
)

const shutdownTimeout = 5 * time.Second

// ProvideLogger creates logger from cfg.Logging.
func ProvideLogger(cfg *config.Config) *slog.Logger {
	return logging.NewLogger(cfg.Logging)
}

// ProvideOutput returns writer for the rendered graph.
func ProvideOutput() io.Writer {
	return os.Stdout
}

// ProvideMetrics creates container metrics on a private registry.
func ProvideMetrics() (*observe.Metrics, error) {
	return observe.NewMetrics()
}

// ProvideTracerProvider creates tracer provider and its cleanup.
// If tracing cannot be initialized the error is logged and no-op provider is used.
func ProvideTracerProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (trace.TracerProvider, func()) {
	tp, shutdown, err := telemetry.NewTracerProvider(ctx, cfg.Tracing, Version, logger)
	if err != nil {
		logger.Error("cannot initialize tracing, using no-op provider", "error", err)
		return noop.NewTracerProvider(), func() {}
	}

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := shutdown(ctx); err != nil {
			logger.Error("cannot shutdown tracer provider", "error", err)
		}
	}

	return tp, cleanup
}
