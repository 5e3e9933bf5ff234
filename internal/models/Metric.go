package models

import (
	"time"

	json "github.com/goccy/go-json"
)

// Metric is one day of usage for an application. CarbonFootprintKg is
// derived from the three usage counters on every write.
type Metric struct {
	ID                string
	ApplicationID     string
	Date              time.Time
	RequestsCount     int64
	StorageGB         float64
	CPUHours          float64
	CarbonFootprintKg float64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type metricJSON struct {
	ID                string    `json:"id"`
	ApplicationID     string    `json:"application_id"`
	Date              string    `json:"date"`
	RequestsCount     int64     `json:"requests_count"`
	StorageGB         float64   `json:"storage_gb"`
	CPUHours          float64   `json:"cpu_hours"`
	CarbonFootprintKg float64   `json:"carbon_footprint_kg"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (m Metric) MarshalJSON() ([]byte, error) {
	return json.Marshal(metricJSON{
		ID:                m.ID,
		ApplicationID:     m.ApplicationID,
		Date:              FormatDay(m.Date),
		RequestsCount:     m.RequestsCount,
		StorageGB:         m.StorageGB,
		CPUHours:          m.CPUHours,
		CarbonFootprintKg: m.CarbonFootprintKg,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	})
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	var raw metricJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	day, err := ParseDay(raw.Date)
	if err != nil {
		return err
	}
	*m = Metric{
		ID:                raw.ID,
		ApplicationID:     raw.ApplicationID,
		Date:              day,
		RequestsCount:     raw.RequestsCount,
		StorageGB:         raw.StorageGB,
		CPUHours:          raw.CPUHours,
		CarbonFootprintKg: raw.CarbonFootprintKg,
		CreatedAt:         raw.CreatedAt,
		UpdatedAt:         raw.UpdatedAt,
	}
	return nil
}

// DailyUsage is the raw input for one day of a ledger.
type DailyUsage struct {
	Date          time.Time
	RequestsCount int64
	StorageGB     float64
	CPUHours      float64
}

// MetricInput is the wire shape of an ingestion request.
type MetricInput struct {
	Date          string  `json:"date" validate:"required|date"`
	RequestsCount int64   `json:"requests_count" validate:"min:0"`
	StorageGB     float64 `json:"storage_gb" validate:"min:0"`
	CPUHours      float64 `json:"cpu_hours" validate:"min:0"`
}

func (in MetricInput) Usage() (DailyUsage, error) {
	day, err := ParseDay(in.Date)
	if err != nil {
		return DailyUsage{}, err
	}
	return DailyUsage{
		Date:          day,
		RequestsCount: in.RequestsCount,
		StorageGB:     in.StorageGB,
		CPUHours:      in.CPUHours,
	}, nil
}

// MetricPatch carries a partial update of the usage counters. The footprint
// is deliberately absent: it can only be recomputed.
type MetricPatch struct {
	RequestsCount *int64   `json:"requests_count"`
	StorageGB     *float64 `json:"storage_gb"`
	CPUHours      *float64 `json:"cpu_hours"`
}

// Apply returns m with the non-nil fields of p merged in.
func (p MetricPatch) Apply(m Metric) Metric {
	if p.RequestsCount != nil {
		m.RequestsCount = *p.RequestsCount
	}
	if p.StorageGB != nil {
		m.StorageGB = *p.StorageGB
	}
	if p.CPUHours != nil {
		m.CPUHours = *p.CPUHours
	}
	return m
}

type Page struct {
	Number  int
	PerPage int
}

type MetricPage struct {
	Metrics     []Metric
	Total       int
	PerPage     int
	CurrentPage int
	LastPage    int
}

// Totals summarises every metric of an application. Average and the date
// range are nil when Count is zero.
type Totals struct {
	Count           int
	TotalRequests   int64
	TotalStorageGB  float64
	TotalCPUHours   float64
	TotalCarbonKg   float64
	AverageCarbonKg *float64
	From            *time.Time
	To              *time.Time
}
