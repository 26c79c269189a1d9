//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"insights-backend/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideMetrics,
	ProvideCaptureClient,
	ProvideActivitySource,
	ProvideNotifier,
	ProvideCompletionClient,
	ProvideStore,
	ProvideActivityRepository,
	ProvideInsightRepository,
	ProvideEventPublisher,
	ProvideDeduplicator,
	ProvideCaptureService,
	ProvideActivityService,
	ProvideInsightService,
	ProvideInMemoryCache,
	ProvideRateLimiter,
	ProvideSecretValidator,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideReadinessChecks,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
