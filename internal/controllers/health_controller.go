package controllers

import (
	"fmt"
	"net/http"
	"time"

	"ecometrics/internal/providers"
	"ecometrics/internal/storage"
	"ecometrics/internal/structures"
)

type HealthController struct {
	apps      storage.Store
	clock     providers.ClockProviderInterface
	driver    string
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Storage       string  `json:"storage"`
	Applications  int     `json:"applications"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := hc.clock.Now().Sub(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Storage:       hc.driver,
	}

	status := http.StatusOK
	count, err := hc.apps.CountApplications(r.Context())
	if err != nil {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	resp.Applications = count

	writeJSON(w, status, resp)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(apps storage.Store, clock providers.ClockProviderInterface, conf *structures.Config) *HealthController {
	return &HealthController{
		apps:      apps,
		clock:     clock,
		driver:    conf.Storage.Driver,
		startTime: clock.Now(),
	}
}
