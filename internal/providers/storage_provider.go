package providers

import (
	"context"
	"time"

	"github.com/juju/errors"

	"ecometrics/internal/storage"
	"ecometrics/internal/storage/memory"
	"ecometrics/internal/storage/sqlstore"
	"ecometrics/internal/structures"
)

const migrateTimeout = 30 * time.Second

// NewStorageProvider opens the ledger backend selected by storage.driver.
// SQL backends have their schema migrated before they are handed out.
func NewStorageProvider(conf *structures.Config, logger Logger) (storage.Store, error) {
	if conf.Storage.Driver == "" || conf.Storage.Driver == "memory" {
		logger.Infof(TypeApp, "Using in-memory ledger")
		return memory.New(), nil
	}

	dialect, err := sqlstore.DialectFor(conf.Storage.Driver)
	if err != nil {
		return nil, errors.Trace(err)
	}
	store, err := sqlstore.Open(dialect, conf.Storage.DSN)
	if err != nil {
		return nil, errors.Trace(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, errors.Trace(err)
	}
	logger.Infof(TypeApp, "Using %s ledger", dialect.Name)
	return store, nil
}
