//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"ecometrics/internal"
	"ecometrics/internal/controllers"
	"ecometrics/internal/persistence"
	"ecometrics/internal/providers"
	"ecometrics/internal/services"
	"ecometrics/internal/structures"
)

var engineSet = wire.NewSet(
	providers.NewConfigProvider,
	providers.NewLogProvider,
	providers.NewStorageProvider,
	providers.NewMetricsProvider,
	providers.NewInstrumentedCacheProvider,
	providers.NewClockProvider,

	persistence.NewSnapshotCodec,
	persistence.NewFileManager,
	persistence.NewScheduler,

	services.NewAppLocks,
	services.NewApplicationService,
	services.NewMetricService,
	services.NewAggregateService,
	services.NewCertificateService,
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		engineSet,
		controllers.NewApplicationController,
		controllers.NewMetricController,
		controllers.NewCertificateController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

func InitLedger(cfg *structures.CliFlags) (*internal.Ledger, error) {

	wire.Build(
		engineSet,
		internal.NewLedger,
	)

	return nil, nil
}
