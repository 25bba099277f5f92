//go:build wireinject

package app

import (
	"context"

	"github.com/google/wire"

	"github.com/andriiyaremenko/tinyioc/internal/config"
)

//go:generate wire

// ProviderSet holds every beanctl provider.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideOutput,
	ProvideMetrics,
	ProvideTracerProvider,
	wire.Struct(new(App), "*"),
)

// InitializeApp builds App from cfg.
// Returned cleanup flushes pending spans.
func InitializeApp(ctx context.Context, cfg *config.Config) (*App, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
