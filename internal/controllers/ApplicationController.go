package controllers

import (
	"net/http"

	"ecometrics/internal/models"
	"ecometrics/internal/providers"
	"ecometrics/internal/services"
)

type ApplicationController struct {
	logger    providers.Logger
	apps      services.ApplicationServiceInterface
	aggregate services.AggregateServiceInterface
	clock     providers.ClockProviderInterface
}

type applicationResponse struct {
	Message     string              `json:"message,omitempty"`
	Application *models.Application `json:"application"`
}

type applicationSummaryResponse struct {
	Application     models.Application `json:"application"`
	MetricsCount    int                `json:"metrics_count"`
	AverageCarbonKg *float64           `json:"average_carbon_footprint"`
	TotalCarbonKg   float64            `json:"total_carbon_footprint"`
}

func NewApplicationController(logger providers.Logger, apps services.ApplicationServiceInterface, aggregate services.AggregateServiceInterface, clock providers.ClockProviderInterface) *ApplicationController {
	return &ApplicationController{
		logger:    logger,
		apps:      apps,
		aggregate: aggregate,
		clock:     clock,
	}
}

func (ac *ApplicationController) Index(w http.ResponseWriter, r *http.Request) {
	apps, err := ac.apps.List(r.Context())
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"applications": apps})
}

func (ac *ApplicationController) Store(w http.ResponseWriter, r *http.Request) {
	var payload models.ApplicationInput
	if !decodeBody(w, r, &payload) {
		return
	}
	app, err := ac.apps.Create(r.Context(), payload, ac.clock.Now())
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, applicationResponse{Message: "Application created successfully", Application: &app})
}

// Show returns the application with its all-time footprint summary.
func (ac *ApplicationController) Show(w http.ResponseWriter, r *http.Request) {
	appID := r.PathValue("app")
	app, err := ac.apps.Get(r.Context(), appID)
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	totals, err := ac.aggregate.Totals(r.Context(), appID)
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, applicationSummaryResponse{
		Application:     app,
		MetricsCount:    totals.Count,
		AverageCarbonKg: totals.AverageCarbonKg,
		TotalCarbonKg:   totals.TotalCarbonKg,
	})
}

func (ac *ApplicationController) Destroy(w http.ResponseWriter, r *http.Request) {
	if err := ac.apps.Delete(r.Context(), r.PathValue("app")); err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Application deleted successfully"})
}
