//go:build wireinject
// +build wireinject

package di

import (
	"TTVPull/pkg/config"
	"TTVPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideRateLimiter,
		ProvideClickHouseClient,

		// External collaborators
		ProvideCatalog,
		ProvideArchive,
		ProvideFitter,

		// Repositories
		ProvideCampaignStore,
		ProvidePublisher,

		// Pipeline
		ProvideProgressHub,
		ProvideFitRunner,
		ProvideCampaignRunner,
		ProvideKafkaConsumer,

		// HTTP + application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
