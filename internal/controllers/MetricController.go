package controllers

import (
	"net/http"

	"github.com/spf13/cast"

	"ecometrics/internal/models"
	"ecometrics/internal/providers"
	"ecometrics/internal/services"
)

type MetricController struct {
	logger    providers.Logger
	ledger    services.MetricServiceInterface
	aggregate services.AggregateServiceInterface
	cache     providers.CacheProviderInterface
	clock     providers.ClockProviderInterface
}

type metricResponse struct {
	Message string         `json:"message,omitempty"`
	Metric  *models.Metric `json:"metric"`
}

type paginationResponse struct {
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
}

type metricPageResponse struct {
	Metrics    []models.Metric    `json:"metrics"`
	Pagination paginationResponse `json:"pagination"`
}

type dateRange struct {
	From *string `json:"from"`
	To   *string `json:"to"`
}

type statsBody struct {
	TotalMetrics    int       `json:"total_metrics"`
	TotalRequests   int64     `json:"total_requests"`
	TotalStorageGB  float64   `json:"total_storage_gb"`
	TotalCPUHours   float64   `json:"total_cpu_hours"`
	TotalCarbonKg   float64   `json:"total_carbon_footprint_kg"`
	AverageCarbonKg *float64  `json:"average_carbon_footprint_kg"`
	DateRange       dateRange `json:"date_range"`
}

type statsResponse struct {
	Stats statsBody `json:"stats"`
}

func NewMetricController(logger providers.Logger, ledger services.MetricServiceInterface, aggregate services.AggregateServiceInterface, cache providers.CacheProviderInterface, clock providers.ClockProviderInterface) *MetricController {
	return &MetricController{
		logger:    logger,
		ledger:    ledger,
		aggregate: aggregate,
		cache:     cache,
		clock:     clock,
	}
}

func (mc *MetricController) Index(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := models.Page{
		Number:  cast.ToInt(query.Get("page")),
		PerPage: cast.ToInt(query.Get("per_page")),
	}
	result, err := mc.ledger.List(r.Context(), r.PathValue("app"), page)
	if err != nil {
		writeError(w, r, mc.logger, err)
		return
	}
	metrics := result.Metrics
	if metrics == nil {
		metrics = []models.Metric{}
	}
	writeJSON(w, http.StatusOK, metricPageResponse{
		Metrics: metrics,
		Pagination: paginationResponse{
			Total:       result.Total,
			PerPage:     result.PerPage,
			CurrentPage: result.CurrentPage,
			LastPage:    result.LastPage,
		},
	})
}

// Store records the usage of one day. The day is resolved against the
// ledger timezone so "today" matches the operator's calendar.
func (mc *MetricController) Store(w http.ResponseWriter, r *http.Request) {
	var payload models.MetricInput
	if !decodeBody(w, r, &payload) {
		return
	}
	usage, err := payload.Usage()
	if err != nil {
		writeError(w, r, mc.logger, err)
		return
	}
	metric, err := mc.ledger.Ingest(r.Context(), r.PathValue("app"), usage, mc.clock.Today())
	if err != nil {
		writeError(w, r, mc.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, metricResponse{Message: "Metric created successfully", Metric: &metric})
}

func (mc *MetricController) Show(w http.ResponseWriter, r *http.Request) {
	metric, err := mc.ledger.Show(r.Context(), r.PathValue("app"), r.PathValue("metric"))
	if err != nil {
		writeError(w, r, mc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, metricResponse{Metric: &metric})
}

func (mc *MetricController) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.MetricPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	metric, err := mc.ledger.Amend(r.Context(), r.PathValue("app"), r.PathValue("metric"), patch)
	if err != nil {
		writeError(w, r, mc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, metricResponse{Message: "Metric updated successfully", Metric: &metric})
}

func (mc *MetricController) Destroy(w http.ResponseWriter, r *http.Request) {
	if err := mc.ledger.Remove(r.Context(), r.PathValue("app"), r.PathValue("metric")); err != nil {
		writeError(w, r, mc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Metric deleted successfully"})
}

func (mc *MetricController) Stats(w http.ResponseWriter, r *http.Request) {
	appID := r.PathValue("app")
	serveFromCacheOrCompute(w, r, mc.cache, mc.logger, services.StatsCacheKey(appID), func() (any, error) {
		totals, err := mc.aggregate.Totals(r.Context(), appID)
		if err != nil {
			return nil, err
		}
		return statsResponse{Stats: newStatsBody(totals)}, nil
	})
}

func newStatsBody(t models.Totals) statsBody {
	body := statsBody{
		TotalMetrics:    t.Count,
		TotalRequests:   t.TotalRequests,
		TotalStorageGB:  t.TotalStorageGB,
		TotalCPUHours:   t.TotalCPUHours,
		TotalCarbonKg:   t.TotalCarbonKg,
		AverageCarbonKg: t.AverageCarbonKg,
	}
	if t.From != nil {
		from := models.FormatDay(*t.From)
		body.DateRange.From = &from
	}
	if t.To != nil {
		to := models.FormatDay(*t.To)
		body.DateRange.To = &to
	}
	return body
}
