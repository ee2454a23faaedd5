//go:build wireinject
// +build wireinject

package di

import (
	"FinScreen/internal/usecase"
	"FinScreen/pkg/config"
	"FinScreen/pkg/server"

	"github.com/google/wire"
)

var infraSet = wire.NewSet(
	ProvideKafkaProducer,
	ProvideLogger,
	ProvideMetrics,
	ProvideArtifactStore,
)

var screeningSet = wire.NewSet(
	ProvideCache,
	ProvideLimiter,
	ProvideQuoteProvider,
	ProvideProfileProvider,
	ProvideThresholds,
	ProvideScreener,
	ProvideClickHouseClient,
	ProvideResultStorage,
	ProvideResultPublisher,
	ProvideScreeningRun,
)

// InitializeDownloader wires the download flow.
func InitializeDownloader(cfg *config.Config) (*usecase.FilingCollector, func(), error) {
	wire.Build(
		infraSet,
		ProvideEdinetClient,
		ProvideFilingIndex,
		ProvideDocumentFetcher,
		ProvideFilingCollector,
	)
	return nil, nil, nil
}

// InitializeScreening wires the screen flow.
func InitializeScreening(cfg *config.Config) (*usecase.ScreeningRun, func(), error) {
	wire.Build(infraSet, screeningSet)
	return nil, nil, nil
}

// InitializeApp wires the HTTP application.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		infraSet,
		screeningSet,
		ProvideHandler,
		ProvideApp,
	)
	return nil, nil, nil
}
