package services

import (
	"context"
	"time"

	"github.com/juju/errors"
	"github.com/shopspring/decimal"

	"ecometrics/internal/carbon"
	"ecometrics/internal/models"
	"ecometrics/internal/storage"
)

type AggregateServiceInterface interface {
	// Totals summarises every metric of the application.
	Totals(ctx context.Context, appID string) (models.Totals, error)
	// TrailingWindow returns the metrics dated within windowDays days up to
	// and including asOf, most recent first.
	TrailingWindow(ctx context.Context, appID string, asOf time.Time, windowDays int) ([]models.Metric, error)
}

type AggregateService struct {
	store storage.Store
}

func (as *AggregateService) Totals(ctx context.Context, appID string) (models.Totals, error) {
	if _, err := as.store.GetApplication(ctx, appID); err != nil {
		return models.Totals{}, err
	}
	metrics, err := as.store.ListMetrics(ctx, appID, 0, -1)
	if err != nil {
		return models.Totals{}, errors.Trace(err)
	}

	totals := models.Totals{Count: len(metrics)}
	if len(metrics) == 0 {
		return totals, nil
	}

	var storageGB, cpuHours, carbonKg decimal.Decimal
	for _, m := range metrics {
		totals.TotalRequests += m.RequestsCount
		storageGB = storageGB.Add(decimal.NewFromFloat(m.StorageGB))
		cpuHours = cpuHours.Add(decimal.NewFromFloat(m.CPUHours))
		carbonKg = carbonKg.Add(decimal.NewFromFloat(m.CarbonFootprintKg))
	}
	totals.TotalStorageGB = storageGB.InexactFloat64()
	totals.TotalCPUHours = cpuHours.InexactFloat64()
	totals.TotalCarbonKg = carbonKg.InexactFloat64()

	avg := carbonKg.Div(decimal.NewFromInt(int64(len(metrics)))).InexactFloat64()
	totals.AverageCarbonKg = &avg

	// metrics are ordered by date descending
	to, from := metrics[0].Date, metrics[len(metrics)-1].Date
	totals.From, totals.To = &from, &to
	return totals, nil
}

func (as *AggregateService) TrailingWindow(ctx context.Context, appID string, asOf time.Time, windowDays int) ([]models.Metric, error) {
	if windowDays < 0 {
		return nil, errors.NotValidf("window of %d days", windowDays)
	}
	to := models.Day(asOf)
	from := to.AddDate(0, 0, -windowDays)
	metrics, err := as.store.MetricsBetween(ctx, appID, from, to)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return metrics, nil
}

// Projection is the monthly extrapolation of a set of daily metrics.
type Projection struct {
	Days      int
	TotalKg   decimal.Decimal
	MonthlyKg decimal.Decimal
}

// Project extrapolates the average daily footprint of metrics to a month:
// sum / distinct days * DaysPerMonth. It deliberately averages over the
// days that have data, not over the whole window, so sparse months are
// not diluted. An empty input yields ErrInsufficientData.
func Project(metrics []models.Metric) (Projection, error) {
	if len(metrics) == 0 {
		return Projection{}, models.ErrInsufficientData
	}

	days := make(map[time.Time]struct{}, len(metrics))
	var total decimal.Decimal
	for _, m := range metrics {
		days[models.Day(m.Date)] = struct{}{}
		total = total.Add(decimal.NewFromFloat(m.CarbonFootprintKg))
	}

	monthly := total.
		Div(decimal.NewFromInt(int64(len(days)))).
		Mul(decimal.NewFromInt(carbon.DaysPerMonth))

	return Projection{Days: len(days), TotalKg: total, MonthlyKg: monthly}, nil
}

// ProjectedMonthlyRate is Project reduced to the rate in kg per month.
func ProjectedMonthlyRate(metrics []models.Metric) (float64, error) {
	p, err := Project(metrics)
	if err != nil {
		return 0, err
	}
	return p.MonthlyKg.InexactFloat64(), nil
}

func NewAggregateService(store storage.Store) AggregateServiceInterface {
	return &AggregateService{store: store}
}
