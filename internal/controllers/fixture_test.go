package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/require"

	"ecometrics/internal/providers"
	"ecometrics/internal/services"
	"ecometrics/internal/storage/memory"
	"ecometrics/internal/structures"
	"ecometrics/internal/testutil"
)

type harness struct {
	t       *testing.T
	clock   *testclock.Clock
	store   *memory.Store
	cache   *testutil.MockCache
	logger  *testutil.MockLogger
	metrics *testutil.MockMetrics
	mux     *http.ServeMux
}

// newHarness wires the controllers to real services over a memory store.
// The clock starts on 2025-12-01 at noon UTC.
func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:       t,
		clock:   testclock.NewClock(time.Date(2025, 12, 1, 12, 0, 0, 0, time.UTC)),
		store:   memory.New(),
		cache:   testutil.NewMockCache(),
		logger:  &testutil.MockLogger{},
		metrics: &testutil.MockMetrics{},
		mux:     http.NewServeMux(),
	}
	conf := &structures.Config{
		Storage: structures.StorageConfig{Driver: "memory"},
		Ledger:  structures.LedgerConfig{PerPage: 30, MaxPerPage: 100, Timezone: "UTC"},
	}
	clk, err := providers.NewClockProviderWith(h.clock, conf.Ledger.Timezone)
	require.NoError(t, err)

	locks := services.NewAppLocks()
	apps := services.NewApplicationService(h.store, locks, h.cache, h.logger)
	ledger := services.NewMetricService(h.store, locks, h.cache, h.metrics, h.logger, conf)
	aggregate := services.NewAggregateService(h.store)
	certificates := services.NewCertificateService(h.store, aggregate, locks, h.cache, h.metrics, h.logger)

	ac := NewApplicationController(h.logger, apps, aggregate, clk)
	mc := NewMetricController(h.logger, ledger, aggregate, h.cache, clk)
	cc := NewCertificateController(h.logger, certificates, h.cache, clk)
	hc := NewHealthController(h.store, clk, conf)

	h.mux.HandleFunc("GET /health", hc.Health)
	h.mux.HandleFunc("GET /applications", ac.Index)
	h.mux.HandleFunc("POST /applications", ac.Store)
	h.mux.HandleFunc("GET /applications/{app}", ac.Show)
	h.mux.HandleFunc("DELETE /applications/{app}", ac.Destroy)
	h.mux.HandleFunc("GET /applications/{app}/metrics", mc.Index)
	h.mux.HandleFunc("POST /applications/{app}/metrics", mc.Store)
	h.mux.HandleFunc("GET /applications/{app}/metrics/stats", mc.Stats)
	h.mux.HandleFunc("GET /applications/{app}/metrics/{metric}", mc.Show)
	h.mux.HandleFunc("PUT /applications/{app}/metrics/{metric}", mc.Update)
	h.mux.HandleFunc("DELETE /applications/{app}/metrics/{metric}", mc.Destroy)
	h.mux.HandleFunc("POST /applications/{app}/issue-certificate", cc.Issue)
	h.mux.HandleFunc("GET /applications/{app}/certificate", cc.Latest)
	h.mux.HandleFunc("GET /applications/{app}/certificates", cc.History)
	return h
}

func (h *harness) do(method, path string, body any) *httptest.ResponseRecorder {
	h.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	h.mux.ServeHTTP(rr, req)
	return rr
}

func (h *harness) decode(rr *httptest.ResponseRecorder, dst any) {
	h.t.Helper()
	require.NoError(h.t, json.Unmarshal(rr.Body.Bytes(), dst))
}

func (h *harness) createApp(name string) string {
	h.t.Helper()
	rr := h.do(http.MethodPost, "/applications", map[string]any{"name": name})
	require.Equal(h.t, http.StatusCreated, rr.Code, rr.Body.String())
	var resp struct {
		Application struct {
			ID string `json:"id"`
		} `json:"application"`
	}
	h.decode(rr, &resp)
	return resp.Application.ID
}

func (h *harness) ingest(appID, date string, requests int64, storageGB, cpuHours float64) *httptest.ResponseRecorder {
	h.t.Helper()
	return h.do(http.MethodPost, "/applications/"+appID+"/metrics", map[string]any{
		"date":           date,
		"requests_count": requests,
		"storage_gb":     storageGB,
		"cpu_hours":      cpuHours,
	})
}
