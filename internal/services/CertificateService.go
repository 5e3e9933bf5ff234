package services

import (
	"context"
	"time"

	"github.com/juju/errors"

	"ecometrics/internal/carbon"
	"ecometrics/internal/models"
	"ecometrics/internal/providers"
	"ecometrics/internal/storage"
)

// CertificateServiceInterface is the certification engine. Certificates
// are append only; validity is a function of time and never stored.
type CertificateServiceInterface interface {
	Issue(ctx context.Context, appID string, asOf time.Time) (models.CarbonCertificate, models.Assessment, error)
	Latest(ctx context.Context, appID string) (models.CarbonCertificate, error)
	History(ctx context.Context, appID string) ([]models.CarbonCertificate, error)
}

type CertificateService struct {
	store     storage.Store
	aggregate AggregateServiceInterface
	locks     *AppLocks
	cache     providers.CacheProviderInterface
	metrics   providers.MetricsProviderInterface
	logger    providers.Logger
}

// Issue classifies the trailing window ending at asOf and records a new
// certificate valid for one year from asOf.
func (cs *CertificateService) Issue(ctx context.Context, appID string, asOf time.Time) (models.CarbonCertificate, models.Assessment, error) {
	unlock := cs.locks.Lock(appID)
	defer unlock()

	if _, err := cs.store.GetApplication(ctx, appID); err != nil {
		return models.CarbonCertificate{}, models.Assessment{}, err
	}

	window, err := cs.aggregate.TrailingWindow(ctx, appID, asOf, carbon.WindowDays)
	if err != nil {
		return models.CarbonCertificate{}, models.Assessment{}, errors.Trace(err)
	}
	projection, err := Project(window)
	if err != nil {
		cs.logger.Warnf(providers.TypePost, "Certificate for %s refused: no metrics in the %d days up to %s",
			appID, carbon.WindowDays, models.FormatDay(asOf))
		return models.CarbonCertificate{}, models.Assessment{}, err
	}

	badge := carbon.Classify(projection.MonthlyKg.InexactFloat64())
	cert, err := cs.store.CreateCertificate(ctx, models.CarbonCertificate{
		ApplicationID: appID,
		BadgeLevel:    badge,
		IssuedAt:      asOf,
		ValidUntil:    asOf.AddDate(carbon.CertificateValidityYears, 0, 0),
	})
	if err != nil {
		return models.CarbonCertificate{}, models.Assessment{}, errors.Trace(err)
	}

	assessment := models.Assessment{
		DaysAnalyzed:     projection.Days,
		TotalCarbonKg:    projection.TotalKg.Round(carbon.FootprintPrecision).InexactFloat64(),
		MonthlyAverageKg: projection.MonthlyKg.Round(carbon.FootprintPrecision).InexactFloat64(),
		BadgeLevel:       badge,
	}

	cs.cache.Del(CertificatesCacheKey(appID))
	cs.metrics.IncCertificatesIssued(string(badge))
	cs.logger.Infof(providers.TypePost, "Certificate %s issued to %s: %s (%.3f kg/month over %d days)",
		cert.ID, appID, badge, assessment.MonthlyAverageKg, assessment.DaysAnalyzed)
	return cert, assessment, nil
}

// Latest returns the most recently issued certificate, or a NotFound error
// when the application has none.
func (cs *CertificateService) Latest(ctx context.Context, appID string) (models.CarbonCertificate, error) {
	if _, err := cs.store.GetApplication(ctx, appID); err != nil {
		return models.CarbonCertificate{}, err
	}
	return cs.store.LatestCertificate(ctx, appID)
}

func (cs *CertificateService) History(ctx context.Context, appID string) ([]models.CarbonCertificate, error) {
	if _, err := cs.store.GetApplication(ctx, appID); err != nil {
		return nil, err
	}
	return cs.store.ListCertificates(ctx, appID)
}

func NewCertificateService(store storage.Store, aggregate AggregateServiceInterface, locks *AppLocks, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface, logger providers.Logger) CertificateServiceInterface {
	return &CertificateService{
		store:     store,
		aggregate: aggregate,
		locks:     locks,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
	}
}
