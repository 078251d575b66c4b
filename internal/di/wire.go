//go:build wireinject
// +build wireinject

package di

import (
	"VoltMetrics/pkg/config"
	"VoltMetrics/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideSaleStorage,
		ProvideSalePublisher,
		ProvideGatewayStream,
		ProvideRecordStore,

		// Ingestion use cases
		ProvideEventProcessor,
		ProvideEventCollector,
		ProvideKafkaSalesHandler,

		// Metrics engine
		ProvideResultCache,
		ProvideTelemetrySink,
		ProvideCalculator,
		ProvideDashboardService,
		ProvideAnalyticsHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
