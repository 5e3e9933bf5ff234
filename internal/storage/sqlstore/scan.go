package sqlstore

import (
	"fmt"
	"time"

	"ecometrics/internal/models"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	models.DateLayout,
}

// dayValue scans a DATE column whichever way the driver hands it over.
type dayValue struct{ t time.Time }

func (d *dayValue) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.t = models.Day(v)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	}
	return fmt.Errorf("cannot scan %T into date", src)
}

func (d *dayValue) parse(s string) error {
	if len(s) < len(models.DateLayout) {
		return fmt.Errorf("invalid date %q", s)
	}
	t, err := time.Parse(models.DateLayout, s[:len(models.DateLayout)])
	if err != nil {
		return err
	}
	d.t = t
	return nil
}

type timeValue struct{ t time.Time }

func (tv *timeValue) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		tv.t = v.UTC()
		return nil
	case string:
		return tv.parse(v)
	case []byte:
		return tv.parse(string(v))
	}
	return fmt.Errorf("cannot scan %T into timestamp", src)
}

func (tv *timeValue) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			tv.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

const metricColumns = `id, application_id, date, requests_count, storage_gb, cpu_hours, carbon_footprint_kg, created_at, updated_at`

func scanMetric(row rowScanner) (models.Metric, error) {
	var (
		m                models.Metric
		date             dayValue
		created, updated timeValue
	)
	err := row.Scan(&m.ID, &m.ApplicationID, &date, &m.RequestsCount, &m.StorageGB, &m.CPUHours,
		&m.CarbonFootprintKg, &created, &updated)
	if err != nil {
		return models.Metric{}, err
	}
	m.Date = date.t
	m.CreatedAt = created.t
	m.UpdatedAt = updated.t
	return m, nil
}

const certificateColumns = `id, application_id, badge_level, issued_at, valid_until`

func scanCertificate(row rowScanner) (models.CarbonCertificate, error) {
	var (
		c                 models.CarbonCertificate
		badge             string
		issued, validTill timeValue
	)
	if err := row.Scan(&c.ID, &c.ApplicationID, &badge, &issued, &validTill); err != nil {
		return models.CarbonCertificate{}, err
	}
	level, err := models.ParseBadgeLevel(badge)
	if err != nil {
		return models.CarbonCertificate{}, err
	}
	c.BadgeLevel = level
	c.IssuedAt = issued.t
	c.ValidUntil = validTill.t
	return c, nil
}

const applicationColumns = `id, name, url, description, created_at`

func scanApplication(row rowScanner) (models.Application, error) {
	var (
		app     models.Application
		created timeValue
	)
	if err := row.Scan(&app.ID, &app.Name, &app.URL, &app.Description, &created); err != nil {
		return models.Application{}, err
	}
	app.CreatedAt = created.t
	return app, nil
}
