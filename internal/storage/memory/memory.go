// Package memory provides an in-process store. All state lives behind a
// single RWMutex so a metric row is never observed half written.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"

	"ecometrics/internal/models"
	"ecometrics/internal/storage"
)

type dayKey struct {
	appID string
	day   time.Time
}

type Store struct {
	mu           sync.RWMutex
	applications map[string]models.Application
	metrics      map[string]models.Metric
	byDay        map[dayKey]string
	certificates map[string][]models.CarbonCertificate
	now          func() time.Time
}

var _ storage.Store = (*Store)(nil)
var _ storage.Snapshotter = (*Store)(nil)

func New() *Store {
	return &Store{
		applications: make(map[string]models.Application),
		metrics:      make(map[string]models.Metric),
		byDay:        make(map[dayKey]string),
		certificates: make(map[string][]models.CarbonCertificate),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) Close() error { return nil }

// --- ApplicationStore -------------------------------------------------------

func (s *Store) CreateApplication(_ context.Context, app models.Application) (models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if _, ok := s.applications[app.ID]; ok {
		return models.Application{}, errors.AlreadyExistsf("application %q", app.ID)
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = s.now()
	}
	s.applications[app.ID] = app
	return app, nil
}

func (s *Store) GetApplication(_ context.Context, id string) (models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.applications[id]
	if !ok {
		return models.Application{}, errors.NotFoundf("application %q", id)
	}
	return app, nil
}

func (s *Store) ListApplications(_ context.Context) ([]models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]models.Application, 0, len(s.applications))
	for _, app := range s.applications {
		result = append(result, app)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) CountApplications(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.applications), nil
}

func (s *Store) DeleteApplication(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.applications[id]; !ok {
		return errors.NotFoundf("application %q", id)
	}
	for metricID, m := range s.metrics {
		if m.ApplicationID == id {
			delete(s.metrics, metricID)
			delete(s.byDay, dayKey{appID: id, day: m.Date})
		}
	}
	delete(s.certificates, id)
	delete(s.applications, id)
	return nil
}

// --- MetricStore ------------------------------------------------------------

func (s *Store) CreateMetric(_ context.Context, m models.Metric) (models.Metric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.applications[m.ApplicationID]; !ok {
		return models.Metric{}, errors.NotFoundf("application %q", m.ApplicationID)
	}
	m.Date = models.Day(m.Date)
	key := dayKey{appID: m.ApplicationID, day: m.Date}
	if _, exists := s.byDay[key]; exists {
		return models.Metric{}, errors.AlreadyExistsf("metric for %s", models.FormatDay(m.Date))
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := s.now()
	m.CreatedAt = now
	m.UpdatedAt = now

	s.metrics[m.ID] = m
	s.byDay[key] = m.ID
	return m, nil
}

func (s *Store) UpdateMetric(_ context.Context, m models.Metric) (models.Metric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.metrics[m.ID]
	if !ok || existing.ApplicationID != m.ApplicationID {
		return models.Metric{}, errors.NotFoundf("metric %q", m.ID)
	}
	// date and ownership are immutable
	m.Date = existing.Date
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = s.now()
	s.metrics[m.ID] = m
	return m, nil
}

func (s *Store) GetMetric(_ context.Context, appID, id string) (models.Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.metrics[id]
	if !ok || m.ApplicationID != appID {
		return models.Metric{}, errors.NotFoundf("metric %q", id)
	}
	return m, nil
}

func (s *Store) GetMetricByDate(_ context.Context, appID string, day time.Time) (models.Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byDay[dayKey{appID: appID, day: models.Day(day)}]
	if !ok {
		return models.Metric{}, errors.NotFoundf("metric for %s", models.FormatDay(day))
	}
	return s.metrics[id], nil
}

func (s *Store) DeleteMetric(_ context.Context, appID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.metrics[id]
	if !ok || m.ApplicationID != appID {
		return errors.NotFoundf("metric %q", id)
	}
	delete(s.metrics, id)
	delete(s.byDay, dayKey{appID: appID, day: m.Date})
	return nil
}

func (s *Store) ListMetrics(_ context.Context, appID string, offset, limit int) ([]models.Metric, error) {
	s.mu.RLock()
	all := s.collect(func(m models.Metric) bool { return m.ApplicationID == appID })
	s.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= len(all) {
		return []models.Metric{}, nil
	}
	all = all[offset:]
	if limit >= 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) CountMetrics(_ context.Context, appID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, m := range s.metrics {
		if m.ApplicationID == appID {
			count++
		}
	}
	return count, nil
}

func (s *Store) MetricsBetween(_ context.Context, appID string, from, to time.Time) ([]models.Metric, error) {
	from, to = models.Day(from), models.Day(to)

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(m models.Metric) bool {
		return m.ApplicationID == appID && !m.Date.Before(from) && !m.Date.After(to)
	}), nil
}

// collect returns matching metrics, most recent date first. Callers hold mu.
func (s *Store) collect(match func(models.Metric) bool) []models.Metric {
	result := make([]models.Metric, 0)
	for _, m := range s.metrics {
		if match(m) {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result
}

// --- CertificateStore -------------------------------------------------------

func (s *Store) CreateCertificate(_ context.Context, c models.CarbonCertificate) (models.CarbonCertificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.applications[c.ApplicationID]; !ok {
		return models.CarbonCertificate{}, errors.NotFoundf("application %q", c.ApplicationID)
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.IssuedAt = c.IssuedAt.UTC()
	c.ValidUntil = c.ValidUntil.UTC()
	s.certificates[c.ApplicationID] = append(s.certificates[c.ApplicationID], c)
	return c, nil
}

func (s *Store) LatestCertificate(_ context.Context, appID string) (models.CarbonCertificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		latest models.CarbonCertificate
		found  bool
	)
	for _, c := range s.certificates[appID] {
		// ties go to the most recently appended certificate
		if !found || !c.IssuedAt.Before(latest.IssuedAt) {
			latest, found = c, true
		}
	}
	if !found {
		return models.CarbonCertificate{}, errors.NotFoundf("certificate for application %q", appID)
	}
	return latest, nil
}

func (s *Store) ListCertificates(_ context.Context, appID string) ([]models.CarbonCertificate, error) {
	s.mu.RLock()
	certs := s.certificates[appID]
	result := make([]models.CarbonCertificate, len(certs))
	// newest append first, so a stable sort keeps later issues ahead on ties
	for i, c := range certs {
		result[len(certs)-1-i] = c
	}
	s.mu.RUnlock()

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].IssuedAt.After(result[j].IssuedAt)
	})
	return result, nil
}

// --- Snapshotter ------------------------------------------------------------

func (s *Store) Snapshot() *models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &models.Snapshot{
		Version:      models.SnapshotVersion,
		Applications: make([]models.Application, 0, len(s.applications)),
		Metrics:      make([]models.Metric, 0, len(s.metrics)),
		Certificates: make([]models.CarbonCertificate, 0),
	}
	for _, app := range s.applications {
		snap.Applications = append(snap.Applications, app)
	}
	for _, m := range s.metrics {
		snap.Metrics = append(snap.Metrics, m)
	}
	for _, certs := range s.certificates {
		snap.Certificates = append(snap.Certificates, certs...)
	}
	return snap
}

// Restore replaces the store content with snapshot. A snapshot holding two
// metrics for the same application and day is rejected as a whole.
func (s *Store) Restore(snapshot *models.Snapshot) error {
	if snapshot == nil {
		return nil
	}
	if snapshot.Version > models.SnapshotVersion {
		return errors.NotSupportedf("snapshot version %d", snapshot.Version)
	}

	applications := make(map[string]models.Application, len(snapshot.Applications))
	for _, app := range snapshot.Applications {
		applications[app.ID] = app
	}
	metrics := make(map[string]models.Metric, len(snapshot.Metrics))
	byDay := make(map[dayKey]string, len(snapshot.Metrics))
	for _, m := range snapshot.Metrics {
		m.Date = models.Day(m.Date)
		key := dayKey{appID: m.ApplicationID, day: m.Date}
		if _, dup := byDay[key]; dup {
			return errors.AlreadyExistsf("metric for %s in snapshot", models.FormatDay(m.Date))
		}
		metrics[m.ID] = m
		byDay[key] = m.ID
	}
	certificates := make(map[string][]models.CarbonCertificate)
	for _, c := range snapshot.Certificates {
		certificates[c.ApplicationID] = append(certificates[c.ApplicationID], c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applications = applications
	s.metrics = metrics
	s.byDay = byDay
	s.certificates = certificates
	return nil
}
