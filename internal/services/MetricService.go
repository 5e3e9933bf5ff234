package services

import (
	"context"
	"math"
	"time"

	"github.com/juju/errors"

	"ecometrics/internal/carbon"
	"ecometrics/internal/models"
	"ecometrics/internal/providers"
	"ecometrics/internal/storage"
	"ecometrics/internal/structures"
)

// MetricServiceInterface is the metric ledger: one record per application
// and calendar day, with the footprint recomputed on every write.
//
// Operations taking a key accept either the metric id or its date in
// YYYY-MM-DD form.
type MetricServiceInterface interface {
	Ingest(ctx context.Context, appID string, usage models.DailyUsage, today time.Time) (models.Metric, error)
	Show(ctx context.Context, appID, key string) (models.Metric, error)
	Amend(ctx context.Context, appID, key string, patch models.MetricPatch) (models.Metric, error)
	Remove(ctx context.Context, appID, key string) error
	List(ctx context.Context, appID string, page models.Page) (models.MetricPage, error)
}

type MetricService struct {
	store   storage.Store
	locks   *AppLocks
	cache   providers.CacheProviderInterface
	metrics providers.MetricsProviderInterface
	logger  providers.Logger
	ledger  structures.LedgerConfig
}

// Ingest stores a new day of usage. today is the caller's calendar day;
// dates after it are rejected. A second ingest for the same day fails with
// an AlreadyExists error and leaves the stored metric untouched.
func (ms *MetricService) Ingest(ctx context.Context, appID string, usage models.DailyUsage, today time.Time) (models.Metric, error) {
	unlock := ms.locks.Lock(appID)
	defer unlock()

	if err := ms.requireApplication(ctx, appID); err != nil {
		return models.Metric{}, err
	}
	if err := validateCounters(usage.RequestsCount, usage.StorageGB, usage.CPUHours); err != nil {
		return models.Metric{}, err
	}
	if usage.Date.IsZero() {
		return models.Metric{}, errors.NotValidf("date")
	}
	day := models.Day(usage.Date)
	if day.After(models.Day(today)) {
		return models.Metric{}, errors.NotValidf("date %s is in the future", models.FormatDay(day))
	}

	metric, err := ms.store.CreateMetric(ctx, models.Metric{
		ApplicationID:     appID,
		Date:              day,
		RequestsCount:     usage.RequestsCount,
		StorageGB:         usage.StorageGB,
		CPUHours:          usage.CPUHours,
		CarbonFootprintKg: carbon.Footprint(usage.RequestsCount, usage.StorageGB, usage.CPUHours),
	})
	if errors.Is(err, errors.AlreadyExists) {
		ms.metrics.IncIngestConflicts()
		ms.logger.Warnf(providers.TypePost, "Metric for %s on %s already exists", appID, models.FormatDay(day))
		return models.Metric{}, err
	}
	if err != nil {
		ms.logger.Errorf(providers.TypePost, "Unable to store metric for %s: %s", appID, err)
		return models.Metric{}, errors.Trace(err)
	}

	ms.cache.Del(StatsCacheKey(appID))
	ms.metrics.IncMetricsIngested()
	ms.logger.Infof(providers.TypePost, "Metric %s for %s on %s: %.3f kg", metric.ID, appID, models.FormatDay(day), metric.CarbonFootprintKg)
	return metric, nil
}

func (ms *MetricService) Show(ctx context.Context, appID, key string) (models.Metric, error) {
	if err := ms.requireApplication(ctx, appID); err != nil {
		return models.Metric{}, err
	}
	return ms.resolve(ctx, appID, key)
}

// Amend merges patch into the stored metric and always recomputes the
// footprint from the merged counters.
func (ms *MetricService) Amend(ctx context.Context, appID, key string, patch models.MetricPatch) (models.Metric, error) {
	unlock := ms.locks.Lock(appID)
	defer unlock()

	if err := ms.requireApplication(ctx, appID); err != nil {
		return models.Metric{}, err
	}
	if err := validatePatch(patch); err != nil {
		return models.Metric{}, err
	}

	current, err := ms.resolve(ctx, appID, key)
	if err != nil {
		return models.Metric{}, err
	}
	merged := patch.Apply(current)
	merged.CarbonFootprintKg = carbon.Footprint(merged.RequestsCount, merged.StorageGB, merged.CPUHours)

	updated, err := ms.store.UpdateMetric(ctx, merged)
	if err != nil {
		return models.Metric{}, errors.Trace(err)
	}

	ms.cache.Del(StatsCacheKey(appID))
	ms.logger.Infof(providers.TypePost, "Metric %s for %s amended: %.3f kg", updated.ID, appID, updated.CarbonFootprintKg)
	return updated, nil
}

func (ms *MetricService) Remove(ctx context.Context, appID, key string) error {
	unlock := ms.locks.Lock(appID)
	defer unlock()

	if err := ms.requireApplication(ctx, appID); err != nil {
		return err
	}

	metric, err := ms.resolve(ctx, appID, key)
	if err != nil {
		return err
	}
	if err := ms.store.DeleteMetric(ctx, appID, metric.ID); err != nil {
		return errors.Trace(err)
	}

	ms.cache.Del(StatsCacheKey(appID))
	ms.logger.Infof(providers.TypePost, "Metric %s for %s on %s removed", metric.ID, appID, models.FormatDay(metric.Date))
	return nil
}

// List returns one page of metrics, most recent day first.
func (ms *MetricService) List(ctx context.Context, appID string, page models.Page) (models.MetricPage, error) {
	if err := ms.requireApplication(ctx, appID); err != nil {
		return models.MetricPage{}, err
	}

	number, perPage := ms.normalizePage(page)
	total, err := ms.store.CountMetrics(ctx, appID)
	if err != nil {
		return models.MetricPage{}, errors.Trace(err)
	}
	metrics, err := ms.store.ListMetrics(ctx, appID, (number-1)*perPage, perPage)
	if err != nil {
		return models.MetricPage{}, errors.Trace(err)
	}

	return models.MetricPage{
		Metrics:     metrics,
		Total:       total,
		PerPage:     perPage,
		CurrentPage: number,
		LastPage:    max(1, (total+perPage-1)/perPage),
	}, nil
}

func (ms *MetricService) normalizePage(page models.Page) (number, perPage int) {
	number = max(page.Number, 1)
	perPage = page.PerPage
	if perPage <= 0 {
		perPage = ms.ledger.PerPage
	}
	if ms.ledger.MaxPerPage > 0 && perPage > ms.ledger.MaxPerPage {
		perPage = ms.ledger.MaxPerPage
	}
	return number, max(perPage, 1)
}

func (ms *MetricService) resolve(ctx context.Context, appID, key string) (models.Metric, error) {
	if day, err := models.ParseDay(key); err == nil {
		return ms.store.GetMetricByDate(ctx, appID, day)
	}
	return ms.store.GetMetric(ctx, appID, key)
}

func (ms *MetricService) requireApplication(ctx context.Context, appID string) error {
	_, err := ms.store.GetApplication(ctx, appID)
	return err
}

func validateCounters(requests int64, storageGB, cpuHours float64) error {
	if requests < 0 {
		return errors.NotValidf("requests_count %d", requests)
	}
	if !nonNegative(storageGB) {
		return errors.NotValidf("storage_gb %v", storageGB)
	}
	if !nonNegative(cpuHours) {
		return errors.NotValidf("cpu_hours %v", cpuHours)
	}
	return nil
}

func validatePatch(p models.MetricPatch) error {
	var (
		requests  int64
		storageGB float64
		cpuHours  float64
	)
	if p.RequestsCount != nil {
		requests = *p.RequestsCount
	}
	if p.StorageGB != nil {
		storageGB = *p.StorageGB
	}
	if p.CPUHours != nil {
		cpuHours = *p.CPUHours
	}
	return validateCounters(requests, storageGB, cpuHours)
}

func nonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 1)
}

func NewMetricService(store storage.Store, locks *AppLocks, cache providers.CacheProviderInterface, metrics providers.MetricsProviderInterface, logger providers.Logger, conf *structures.Config) MetricServiceInterface {
	return &MetricService{
		store:   store,
		locks:   locks,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		ledger:  conf.Ledger,
	}
}
