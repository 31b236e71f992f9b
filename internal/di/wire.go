//go:build wireinject
// +build wireinject

package di

import (
	"RecoPulse/pkg/config"
	"RecoPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		// Infrastructure clients
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideRedisCache,
		ProvideCache,
		ProvideClickHouseClient,
		ProvideLimiter,
		ProvideMetrics,

		// Repositories
		ProvideCandleSource,
		ProvidePublisher,

		// Sub-score extractors
		ProvideTechnicalAnalyzer,
		ProvideFundamentalAnalyzer,
		ProvideSentimentClassifier,
		ProvideSentimentAnalyzer,
		ProvideMacroAnalyzer,
		ProvideHealthCheckers,

		// Use cases
		ProvideRecommendationEngine,
		ProvideDailyScheduler,

		// HTTP
		ProvideRecommendationsHandler,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}
