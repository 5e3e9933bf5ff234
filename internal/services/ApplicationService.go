package services

import (
	"context"
	"strings"
	"time"

	"github.com/juju/errors"

	"ecometrics/internal/models"
	"ecometrics/internal/providers"
	"ecometrics/internal/storage"
)

type ApplicationServiceInterface interface {
	Create(ctx context.Context, in models.ApplicationInput, now time.Time) (models.Application, error)
	Get(ctx context.Context, id string) (models.Application, error)
	List(ctx context.Context) ([]models.Application, error)
	// Delete removes the application with all of its metrics and
	// certificates.
	Delete(ctx context.Context, id string) error
}

type ApplicationService struct {
	store  storage.ApplicationStore
	locks  *AppLocks
	cache  providers.CacheProviderInterface
	logger providers.Logger
}

func (as *ApplicationService) Create(ctx context.Context, in models.ApplicationInput, now time.Time) (models.Application, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Application{}, errors.NotValidf("empty application name")
	}

	app, err := as.store.CreateApplication(ctx, models.Application{
		Name:        name,
		URL:         strings.TrimSpace(in.URL),
		Description: in.Description,
		CreatedAt:   now.UTC(),
	})
	if err != nil {
		return models.Application{}, errors.Trace(err)
	}
	as.logger.Infof(providers.TypePost, "Application %s (%s) registered", app.ID, app.Name)
	return app, nil
}

func (as *ApplicationService) Get(ctx context.Context, id string) (models.Application, error) {
	return as.store.GetApplication(ctx, id)
}

func (as *ApplicationService) List(ctx context.Context) ([]models.Application, error) {
	return as.store.ListApplications(ctx)
}

func (as *ApplicationService) Delete(ctx context.Context, id string) error {
	unlock := as.locks.Lock(id)
	defer unlock()

	if err := as.store.DeleteApplication(ctx, id); err != nil {
		return errors.Trace(err)
	}
	as.cache.Del(StatsCacheKey(id))
	as.cache.Del(CertificatesCacheKey(id))
	as.logger.Infof(providers.TypePost, "Application %s deleted with its metrics and certificates", id)
	return nil
}

func NewApplicationService(store storage.Store, locks *AppLocks, cache providers.CacheProviderInterface, logger providers.Logger) ApplicationServiceInterface {
	return &ApplicationService{
		store:  store,
		locks:  locks,
		cache:  cache,
		logger: logger,
	}
}
