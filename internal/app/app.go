// Package app assembles and runs beanctl.
package app

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/andriiyaremenko/tinyioc"
	"github.com/andriiyaremenko/tinyioc/internal/config"
	"github.com/andriiyaremenko/tinyioc/manifest"
	"github.com/andriiyaremenko/tinyioc/observe"
)

// Version is set at build time with -ldflags "-X".
var Version = "dev"

// App holds beanctl dependencies, see InitializeApp.
type App struct {
	Config         *config.Config
	Logger         *slog.Logger
	Metrics        *observe.Metrics
	TracerProvider trace.TracerProvider
	Output         io.Writer
}

// Run validates manifest at path and writes its canonical graph to Output.
// Validation errors are returned as is.
func (a *App) Run(ctx context.Context, path string) error {
	tinyioc.SetDefaultLogger(a.Logger)

	ctx, span := a.TracerProvider.Tracer("github.com/andriiyaremenko/tinyioc/cmd/beanctl").Start(
		ctx,
		"beanctl.validate",
		trace.WithAttributes(attribute.String("beanctl.manifest", path)),
	)
	defer span.End()

	err := a.run(ctx, path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	a.pushMetrics(ctx)

	return err
}

func (a *App) run(ctx context.Context, path string) error {
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}

	c := tinyioc.New(
		tinyioc.WithObservers(
			observe.NewLogObserver(a.Logger),
			a.Metrics,
			observe.NewTracer(ctx, a.TracerProvider),
		),
	).Scan(m)

	if err := c.Validate(); err != nil {
		return err
	}

	graph, err := c.Graph()
	if err != nil {
		return err
	}

	a.Logger.Info("manifest is valid", "manifest", path, "beans", len(graph))

	return render(a.Output, a.Config.Format, graph)
}

// metrics push failures are logged, never returned
func (a *App) pushMetrics(ctx context.Context) {
	cfg := a.Config.Metrics
	if !cfg.Enabled() {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := a.Metrics.Push(ctx, cfg.PushgatewayURL, cfg.JobName); err != nil {
		a.Logger.Error("cannot push metrics", "job", cfg.JobName, "error", err)
		return
	}

	a.Logger.Debug("metrics pushed", "job", cfg.JobName)
}
