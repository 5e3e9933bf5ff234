package internal

import (
	"ecometrics/internal/persistence"
	"ecometrics/internal/providers"
	"ecometrics/internal/services"
	"ecometrics/internal/storage"
	"ecometrics/internal/structures"
)

// Ledger bundles the engine services for one-shot command line use, without
// the HTTP layer.
type Ledger struct {
	Config       *structures.Config
	Logger       providers.Logger
	Clock        providers.ClockProviderInterface
	Applications services.ApplicationServiceInterface
	Metrics      services.MetricServiceInterface
	Aggregate    services.AggregateServiceInterface
	Certificates services.CertificateServiceInterface
	scheduler    persistence.SchedulerInterface
	store        storage.Store
}

func NewLedger(conf *structures.Config, logger providers.Logger, clock providers.ClockProviderInterface, store storage.Store, scheduler persistence.SchedulerInterface,
	applications services.ApplicationServiceInterface, metrics services.MetricServiceInterface, aggregate services.AggregateServiceInterface, certificates services.CertificateServiceInterface) *Ledger {
	return &Ledger{
		Config:       conf,
		Logger:       logger,
		Clock:        clock,
		Applications: applications,
		Metrics:      metrics,
		Aggregate:    aggregate,
		Certificates: certificates,
		scheduler:    scheduler,
		store:        store,
	}
}

// Open loads the snapshot of an in-memory ledger. It is a no-op for SQL
// backed stores.
func (l *Ledger) Open() error {
	return l.scheduler.Restore()
}

// Close writes the snapshot back when persist is set and releases the store.
func (l *Ledger) Close(persist bool) error {
	var err error
	if persist {
		err = l.scheduler.Persist()
	}
	if cerr := l.store.Close(); err == nil {
		err = cerr
	}
	l.Logger.Close()
	return err
}
