package services

import (
	"context"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecometrics/internal/models"
)

func TestCertificateService_EndToEndPlatinum(t *testing.T) {
	f := newFixture(t)
	appID := f.newApp(t)
	a := f.ingest(t, appID, "2025-11-01", 100, 0.5, 0.1)
	b := f.ingest(t, appID, "2025-11-02", 100, 0.5, 0.1)
	assert.Equal(t, 0.095, a.CarbonFootprintKg)
	assert.Equal(t, 0.095, b.CarbonFootprintKg)

	totals, err := f.aggregate.Totals(context.Background(), appID)
	require.NoError(t, err)
	assert.Equal(t, 0.19, totals.TotalCarbonKg)
	assert.Equal(t, 0.095, *totals.AverageCarbonKg)

	asOf := time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC)
	cert, assessment, err := f.certificates.Issue(context.Background(), appID, asOf)
	require.NoError(t, err)

	assert.Equal(t, models.BadgePlatinum, cert.BadgeLevel)
	assert.Equal(t, appID, cert.ApplicationID)
	assert.True(t, cert.IssuedAt.Equal(asOf))
	assert.True(t, cert.ValidUntil.Equal(time.Date(2026, 11, 3, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, models.Assessment{
		DaysAnalyzed:     2,
		TotalCarbonKg:    0.19,
		MonthlyAverageKg: 2.85,
		BadgeLevel:       models.BadgePlatinum,
	}, assessment)
	assert.Equal(t, 1, f.metrics.CertificatesIssued["platinum"])
	assert.Contains(t, f.cache.Deleted, CertificatesCacheKey(appID))
}

func TestCertificateService_SingleHeavyDayIsBronze(t *testing.T) {
	f := newFixture(t)
	appID := f.newApp(t)
	m := f.ingest(t, appID, "2025-11-01", 0, 0, 14)
	require.Equal(t, 7.0, m.CarbonFootprintKg)

	_, assessment, err := f.certificates.Issue(context.Background(), appID, day("2025-11-10"))
	require.NoError(t, err)
	assert.Equal(t, 210.0, assessment.MonthlyAverageKg)
	assert.Equal(t, models.BadgeBronze, assessment.BadgeLevel)
}

func TestCertificateService_EmptyWindowIsInsufficientData(t *testing.T) {
	f := newFixture(t)
	appID := f.newApp(t)
	// outside the window: 31 days before asOf
	f.ingest(t, appID, "2025-10-01", 100, 0.5, 0.1)

	_, _, err := f.certificates.Issue(context.Background(), appID, day("2025-11-01"))
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	history, err := f.certificates.History(context.Background(), appID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCertificateService_WindowLowerBoundIncluded(t *testing.T) {
	f := newFixture(t)
	appID := f.newApp(t)
	f.ingest(t, appID, "2025-10-02", 0, 0, 1)

	cert, _, err := f.certificates.Issue(context.Background(), appID, day("2025-11-01"))
	require.NoError(t, err)
	assert.Equal(t, models.BadgeGold, cert.BadgeLevel) // 0.5 * 30 = 15
}

func TestCertificateService_UnknownApplication(t *testing.T) {
	f := newFixture(t)

	_, _, err := f.certificates.Issue(context.Background(), "missing", day("2025-11-01"))
	assert.True(t, errors.Is(err, errors.NotFound))
	_, err = f.certificates.Latest(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.NotFound))
	_, err = f.certificates.History(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestCertificateService_HistoryIsAppendOnly(t *testing.T) {
	f := newFixture(t)
	appID := f.newApp(t)
	f.ingest(t, appID, "2025-11-01", 0, 0, 100) // 50 kg/day

	_, err := f.certificates.Latest(context.Background(), appID)
	assert.True(t, errors.Is(err, errors.NotFound))

	first, _, err := f.certificates.Issue(context.Background(), appID, day("2025-11-02"))
	require.NoError(t, err)
	assert.Equal(t, models.BadgeBronze, first.BadgeLevel)

	_, err = f.ledger.Amend(context.Background(), appID, "2025-11-01", models.MetricPatch{CPUHours: ptr(0.2)})
	require.NoError(t, err)
	second, _, err := f.certificates.Issue(context.Background(), appID, day("2025-11-03"))
	require.NoError(t, err)
	assert.Equal(t, models.BadgePlatinum, second.BadgeLevel)

	latest, err := f.certificates.Latest(context.Background(), appID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	history, err := f.certificates.History(context.Background(), appID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)
	assert.Equal(t, models.BadgeBronze, history[1].BadgeLevel)
}

func TestCertificateService_ValidityWindow(t *testing.T) {
	f := newFixture(t)
	appID := f.newApp(t)
	f.ingest(t, appID, "2025-11-01", 1, 0, 0)

	issued := time.Date(2025, 11, 2, 8, 0, 0, 0, time.UTC)
	cert, _, err := f.certificates.Issue(context.Background(), appID, issued)
	require.NoError(t, err)

	assert.True(t, cert.IsValid(issued))
	assert.True(t, cert.IsValid(issued.AddDate(1, 0, 0)))
	assert.False(t, cert.IsValid(issued.AddDate(1, 0, 0).Add(time.Second)))
}

func TestApplicationService_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	appID := f.newApp(t)
	f.ingest(t, appID, "2025-11-01", 1, 0, 0)
	_, _, err := f.certificates.Issue(context.Background(), appID, day("2025-11-02"))
	require.NoError(t, err)

	require.NoError(t, f.apps.Delete(context.Background(), appID))

	_, err = f.apps.Get(context.Background(), appID)
	assert.True(t, errors.Is(err, errors.NotFound))
	count, err := f.store.CountMetrics(context.Background(), appID)
	require.NoError(t, err)
	assert.Zero(t, count)
	certs, err := f.store.ListCertificates(context.Background(), appID)
	require.NoError(t, err)
	assert.Empty(t, certs)
	assert.Contains(t, f.cache.Deleted, StatsCacheKey(appID))
	assert.True(t, errors.Is(f.apps.Delete(context.Background(), appID), errors.NotFound))
}

func TestApplicationService_CreateValidatesName(t *testing.T) {
	f := newFixture(t)

	_, err := f.apps.Create(context.Background(), models.ApplicationInput{Name: "   "}, time.Now())
	assert.True(t, errors.Is(err, errors.NotValid))

	app, err := f.apps.Create(context.Background(), models.ApplicationInput{Name: " shop ", URL: "https://shop.example"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "shop", app.Name)

	list, err := f.apps.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, app.ID, list[0].ID)
}

func TestCertificateService_IssueAfterApplicationVanishes(t *testing.T) {
	f := newFixture(t)
	appID := f.newApp(t)
	f.ingest(t, appID, "2025-11-01", 100, 0.5, 0.1)

	store := droppedAfterWindowRead{f.store}
	certificates := NewCertificateService(store, NewAggregateService(store), NewAppLocks(), f.cache, f.metrics, f.logger)

	_, _, err := certificates.Issue(context.Background(), appID, time.Date(2025, 11, 3, 9, 30, 0, 0, time.UTC))
	assert.True(t, errors.Is(err, errors.NotFound))

	snap := f.store.Snapshot()
	assert.Empty(t, snap.Applications)
	assert.Empty(t, snap.Certificates)
}
