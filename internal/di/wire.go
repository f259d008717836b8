//go:build wireinject
// +build wireinject

package di

import (
	"PolyWatch/pkg/config"
	"PolyWatch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Upstream access
		ProvideHTTPClient,
		ProvideDataClient,
		ProvideTradeSource,
		ProvideRedis,

		// Caches and detection
		ProvideWalletCache,
		ProvideMarketCache,
		ProvideClassifier,
		ProvideSeenSet,
		ProvideNoiseFilter,

		// Alerting
		ProvideKafkaProducer,
		ProvideDispatcher,

		// Orchestration
		ProvideTracker,
		ProvideStatusHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
