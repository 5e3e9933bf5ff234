package persistence

import (
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/roylee0704/gron"

	"ecometrics/internal/providers"
	"ecometrics/internal/storage"
	"ecometrics/internal/structures"
)

type SchedulerInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
}

// Scheduler periodically snapshots an in-memory ledger to disk. For stores
// that persist on their own, or when no snapshot path is configured, every
// method is a no-op.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	store       storage.Snapshotter
	fileManager *FileManager
	cron        *gron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) enabled() bool {
	return s.store != nil && s.config.Storage.SnapshotPath != ""
}

func (s *Scheduler) Init() {
	if !s.enabled() {
		return
	}
	s.cron = gron.New()
	interval := s.config.Storage.SaveInterval

	s.cron.AddFunc(gron.Every(interval), func() {
		if err := s.save(); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting ledger: %s", err)
			return
		}
		s.logger.Debugf(providers.TypeApp, "Persisted ledger to file %s", s.config.Storage.SnapshotPath)
	})

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) Restore() error {
	if !s.enabled() {
		return nil
	}
	snapshot, err := s.fileManager.LoadFromFile(s.config.Storage.SnapshotPath)
	if err != nil {
		return err
	}
	if snapshot == nil {
		s.logger.Infof(providers.TypeApp, "No snapshot at %s, starting with an empty ledger", s.config.Storage.SnapshotPath)
		return nil
	}
	if err := s.store.Restore(snapshot); err != nil {
		return errors.Annotatef(err, "restoring %s", s.config.Storage.SnapshotPath)
	}
	s.logger.Infof(providers.TypeApp, "Restored %d applications, %d metrics, %d certificates",
		len(snapshot.Applications), len(snapshot.Metrics), len(snapshot.Certificates))
	return nil
}

func (s *Scheduler) Persist() error {
	if !s.enabled() {
		return nil
	}
	s.logger.Infof(providers.TypeApp, "Persisting ledger to file...")
	err := s.save()
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting ledger: %s", err)
		return err
	}
	return nil
}

func (s *Scheduler) save() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	err := s.fileManager.SaveToFile(s.config.Storage.SnapshotPath, s.store.Snapshot())
	s.metrics.ObservePersistenceDuration(time.Since(start))
	return err
}

func NewScheduler(config *structures.Config, logger providers.Logger, store storage.Store, fileManager *FileManager, metrics providers.MetricsProviderInterface) SchedulerInterface {
	snapshotter, _ := store.(storage.Snapshotter)
	return &Scheduler{
		config:      config,
		logger:      logger,
		metrics:     metrics,
		store:       snapshotter,
		fileManager: fileManager,
	}
}
