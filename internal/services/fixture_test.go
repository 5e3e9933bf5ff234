package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ecometrics/internal/models"
	"ecometrics/internal/storage/memory"
	"ecometrics/internal/structures"
	"ecometrics/internal/testutil"
)

type fixture struct {
	store        *memory.Store
	logger       *testutil.MockLogger
	metrics      *testutil.MockMetrics
	cache        *testutil.MockCache
	apps         ApplicationServiceInterface
	ledger       MetricServiceInterface
	aggregate    AggregateServiceInterface
	certificates CertificateServiceInterface
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   memory.New(),
		logger:  &testutil.MockLogger{},
		metrics: &testutil.MockMetrics{},
		cache:   testutil.NewMockCache(),
	}
	conf := &structures.Config{Ledger: structures.LedgerConfig{PerPage: 30, MaxPerPage: 100}}
	locks := NewAppLocks()

	f.apps = NewApplicationService(f.store, locks, f.cache, f.logger)
	f.ledger = NewMetricService(f.store, locks, f.cache, f.metrics, f.logger, conf)
	f.aggregate = NewAggregateService(f.store)
	f.certificates = NewCertificateService(f.store, f.aggregate, locks, f.cache, f.metrics, f.logger)
	return f
}

func (f *fixture) newApp(t *testing.T) string {
	t.Helper()
	app, err := f.apps.Create(context.Background(), models.ApplicationInput{Name: "shop"}, time.Now())
	require.NoError(t, err)
	return app.ID
}

func (f *fixture) ingest(t *testing.T, appID, date string, requests int64, storageGB, cpuHours float64) models.Metric {
	t.Helper()
	m, err := f.ledger.Ingest(context.Background(), appID, usage(date, requests, storageGB, cpuHours), day("2025-12-31"))
	require.NoError(t, err)
	return m
}

func usage(date string, requests int64, storageGB, cpuHours float64) models.DailyUsage {
	return models.DailyUsage{Date: day(date), RequestsCount: requests, StorageGB: storageGB, CPUHours: cpuHours}
}

func day(s string) time.Time {
	d, err := models.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

// droppedAfterLookup deletes an application right after GetApplication has
// seen it, standing in for a delete that lands between check and write.
type droppedAfterLookup struct {
	*memory.Store
}

func (s droppedAfterLookup) GetApplication(ctx context.Context, id string) (models.Application, error) {
	app, err := s.Store.GetApplication(ctx, id)
	if err == nil {
		_ = s.Store.DeleteApplication(ctx, id)
	}
	return app, err
}

// droppedAfterWindowRead deletes an application once its trailing window has
// been read.
type droppedAfterWindowRead struct {
	*memory.Store
}

func (s droppedAfterWindowRead) MetricsBetween(ctx context.Context, appID string, from, to time.Time) ([]models.Metric, error) {
	metrics, err := s.Store.MetricsBetween(ctx, appID, from, to)
	if err == nil {
		_ = s.Store.DeleteApplication(ctx, appID)
	}
	return metrics, err
}

func ptr[T any](v T) *T { return &v }
