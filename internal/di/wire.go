//go:build wireinject
// +build wireinject

package di

import (
	"MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/config"
	"MarketPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,
		ProvideStorage,
		ProvidePublisher,

		// Ingestion pipeline
		ProvideFetcher,
		ProvideNormalizer,
		ProvideSignalSources,
		ProvideFinancialSources,
		ProvideProductSources,
		ProvideEngine,

		// Use cases and delivery
		ProvideHub,
		ProvideOrchestrator,
		ProvidePulseHandler,
		ProvideScheduler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeStorage builds just the storage stack for read-only CLI use.
func InitializeStorage(cfg *config.Config) (repository.Storage, error) {
	wire.Build(
		ProvideClickHouseClient,
		ProvideCache,
		ProvideStorage,
	)
	return nil, nil
}
