package main

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecometrics/internal"
	"ecometrics/internal/models"
	"ecometrics/internal/persistence"
	"ecometrics/internal/providers"
	"ecometrics/internal/services"
	"ecometrics/internal/storage/memory"
	"ecometrics/internal/structures"
	"ecometrics/internal/testutil"
)

func newTestLedger(t *testing.T) (*internal.Ledger, *testclock.Clock) {
	t.Helper()
	conf := &structures.Config{
		Storage: structures.StorageConfig{Driver: "memory"},
		Ledger:  structures.LedgerConfig{PerPage: 30, MaxPerPage: 100},
	}
	clk := testclock.NewClock(time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC))
	clock, err := providers.NewClockProviderWith(clk, "UTC")
	require.NoError(t, err)

	store := memory.New()
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}
	cache := testutil.NewMockCache()
	locks := services.NewAppLocks()
	aggregate := services.NewAggregateService(store)
	scheduler := persistence.NewScheduler(conf, logger, store, persistence.NewFileManager(&testutil.MockCompressor{}, logger), metrics)

	return internal.NewLedger(conf, logger, clock, store, scheduler,
		services.NewApplicationService(store, locks, cache, logger),
		services.NewMetricService(store, locks, cache, metrics, logger, conf),
		aggregate,
		services.NewCertificateService(store, aggregate, locks, cache, metrics, logger),
	), clk
}

func seed(t *testing.T, l *internal.Ledger, days int) string {
	t.Helper()
	ctx := context.Background()
	app, err := l.Applications.Create(ctx, models.ApplicationInput{Name: "shop"}, l.Clock.Now())
	require.NoError(t, err)
	for d := 1; d <= days; d++ {
		day, err := models.ParseDay(fmt.Sprintf("2025-11-%02d", d))
		require.NoError(t, err)
		_, err = l.Metrics.Ingest(ctx, app.ID, models.DailyUsage{Date: day, RequestsCount: 100, StorageGB: 0.5, CPUHours: 0.1}, l.Clock.Today())
		require.NoError(t, err)
	}
	return app.ID
}

func TestPrintStats(t *testing.T) {
	l, _ := newTestLedger(t)
	appID := seed(t, l, 10)

	var out bytes.Buffer
	require.NoError(t, printStats(context.Background(), &out, l, appID))
	assert.Contains(t, out.String(), "Days:      10 (2025-11-01 to 2025-11-10)")
	assert.Contains(t, out.String(), "Carbon:    0.950 kg (0.095 kg/day)")
	assert.Contains(t, out.String(), "Projected: 2.850 kg/month over 10 days, platinum")
}

func TestPrintStats_Empty(t *testing.T) {
	l, _ := newTestLedger(t)
	appID := seed(t, l, 0)

	var out bytes.Buffer
	require.NoError(t, printStats(context.Background(), &out, l, appID))
	assert.Contains(t, out.String(), "No metrics recorded yet")
}

func TestPrintStats_UnknownApplication(t *testing.T) {
	l, _ := newTestLedger(t)
	assert.Error(t, printStats(context.Background(), &bytes.Buffer{}, l, "missing"))
}

func TestIssueAndHistory(t *testing.T) {
	l, clk := newTestLedger(t)
	appID := seed(t, l, 3)

	var out bytes.Buffer
	require.NoError(t, issueCertificate(context.Background(), &out, l, appID))
	assert.Contains(t, out.String(), ": platinum")
	assert.Contains(t, out.String(), "Days analyzed:   3")
	assert.Contains(t, out.String(), "Valid until:     2026-12-01")

	out.Reset()
	require.NoError(t, printHistory(context.Background(), &out, l, appID))
	assert.Contains(t, out.String(), "2025-12-01   platinum   2026-12-01   valid")

	clk.Advance(400 * 24 * time.Hour)
	out.Reset()
	require.NoError(t, printHistory(context.Background(), &out, l, appID))
	assert.Contains(t, out.String(), "expired")
}

func TestHistory_Empty(t *testing.T) {
	l, _ := newTestLedger(t)
	appID := seed(t, l, 0)

	var out bytes.Buffer
	require.NoError(t, printHistory(context.Background(), &out, l, appID))
	assert.Equal(t, "No certificates issued yet.\n", out.String())
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "stats", "issue", "history"})
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("debug"))
}
