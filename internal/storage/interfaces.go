package storage

import (
	"context"
	"time"

	"ecometrics/internal/models"
)

// ApplicationStore persists the applications that own metrics and
// certificates.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, app models.Application) (models.Application, error)
	GetApplication(ctx context.Context, id string) (models.Application, error)
	ListApplications(ctx context.Context) ([]models.Application, error)
	CountApplications(ctx context.Context) (int, error)
	// DeleteApplication removes the application together with its metrics
	// and certificates.
	DeleteApplication(ctx context.Context, id string) error
}

// MetricStore persists daily metrics. CreateMetric must fail with an
// errors.AlreadyExists error when a metric already exists for the same
// application and date, atomically with respect to concurrent inserts.
type MetricStore interface {
	CreateMetric(ctx context.Context, m models.Metric) (models.Metric, error)
	UpdateMetric(ctx context.Context, m models.Metric) (models.Metric, error)
	GetMetric(ctx context.Context, appID, id string) (models.Metric, error)
	GetMetricByDate(ctx context.Context, appID string, day time.Time) (models.Metric, error)
	DeleteMetric(ctx context.Context, appID, id string) error
	// ListMetrics returns metrics ordered by date descending. A negative
	// limit returns everything from offset on.
	ListMetrics(ctx context.Context, appID string, offset, limit int) ([]models.Metric, error)
	CountMetrics(ctx context.Context, appID string) (int, error)
	// MetricsBetween returns metrics with from <= date <= to, date descending.
	MetricsBetween(ctx context.Context, appID string, from, to time.Time) ([]models.Metric, error)
}

// CertificateStore persists issued certificates. History is append only.
type CertificateStore interface {
	CreateCertificate(ctx context.Context, c models.CarbonCertificate) (models.CarbonCertificate, error)
	LatestCertificate(ctx context.Context, appID string) (models.CarbonCertificate, error)
	// ListCertificates returns certificates ordered by issued_at descending.
	ListCertificates(ctx context.Context, appID string) ([]models.CarbonCertificate, error)
}

type Store interface {
	ApplicationStore
	MetricStore
	CertificateStore
	Close() error
}

// Snapshotter is implemented by stores that keep their data in memory and
// need to be persisted externally.
type Snapshotter interface {
	Snapshot() *models.Snapshot
	Restore(snapshot *models.Snapshot) error
}
