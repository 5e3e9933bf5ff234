// Package sqlstore implements the storage interfaces on top of database/sql
// for PostgreSQL and SQLite. The (application_id, date) unique constraint is
// what guarantees one metric per day; the store only translates its
// violation into an AlreadyExists error.
package sqlstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/juju/errors"

	"ecometrics/internal/models"
	"ecometrics/internal/storage"
)

type Store struct {
	db      *sql.DB
	dialect Dialect
}

var _ storage.Store = (*Store)(nil)

// Open connects to dsn with the dialect's driver. The schema is not
// touched, call Migrate for that.
func Open(dialect Dialect, dsn string) (*Store, error) {
	db, err := sql.Open(dialect.Driver, dialect.dsn(dsn))
	if err != nil {
		return nil, errors.Annotatef(err, "opening %s database", dialect.Name)
	}
	if dialect.maxOpenConns > 0 {
		db.SetMaxOpenConns(dialect.maxOpenConns)
	}
	return New(db, dialect), nil
}

func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the tables and indexes if they do not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Trace(err)
	}
	defer tx.Rollback()

	for _, stmt := range s.dialect.schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Annotatef(err, "migrating %s schema", s.dialect.Name)
		}
	}
	return errors.Trace(tx.Commit())
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.rebind(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
}

func now() time.Time {
	return time.Now().UTC()
}

// --- ApplicationStore -------------------------------------------------------

func (s *Store) CreateApplication(ctx context.Context, app models.Application) (models.Application, error) {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now()
	}
	app.CreatedAt = app.CreatedAt.UTC()

	_, err := s.exec(ctx, `
		INSERT INTO applications (id, name, url, description, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, app.ID, app.Name, app.URL, app.Description, app.CreatedAt)
	if err != nil {
		if s.dialect.uniqueViolation(err) {
			return models.Application{}, errors.AlreadyExistsf("application %q", app.ID)
		}
		return models.Application{}, errors.Annotate(err, "creating application")
	}
	return app, nil
}

func (s *Store) GetApplication(ctx context.Context, id string) (models.Application, error) {
	row := s.queryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
	app, err := scanApplication(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.Application{}, errors.NotFoundf("application %q", id)
	}
	if err != nil {
		return models.Application{}, errors.Annotatef(err, "reading application %q", id)
	}
	return app, nil
}

func (s *Store) ListApplications(ctx context.Context) ([]models.Application, error) {
	rows, err := s.query(ctx, `SELECT `+applicationColumns+` FROM applications ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, errors.Annotate(err, "listing applications")
	}
	defer rows.Close()

	result := make([]models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, errors.Trace(err)
		}
		result = append(result, app)
	}
	return result, errors.Trace(rows.Err())
}

func (s *Store) CountApplications(ctx context.Context) (int, error) {
	var count int
	if err := s.queryRow(ctx, `SELECT COUNT(*) FROM applications`).Scan(&count); err != nil {
		return 0, errors.Annotate(err, "counting applications")
	}
	return count, nil
}

// DeleteApplication removes dependent rows explicitly so the cascade does
// not rely on the connection having foreign keys enabled.
func (s *Store) DeleteApplication(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Trace(err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM carbon_certificates WHERE application_id = ?`,
		`DELETE FROM metrics WHERE application_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, s.dialect.rebind(stmt), id); err != nil {
			return errors.Annotatef(err, "deleting application %q", id)
		}
	}
	res, err := tx.ExecContext(ctx, s.dialect.rebind(`DELETE FROM applications WHERE id = ?`), id)
	if err != nil {
		return errors.Annotatef(err, "deleting application %q", id)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return errors.NotFoundf("application %q", id)
	}
	return errors.Trace(tx.Commit())
}

// --- MetricStore ------------------------------------------------------------

func (s *Store) CreateMetric(ctx context.Context, m models.Metric) (models.Metric, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.Date = models.Day(m.Date)
	m.CreatedAt = now()
	m.UpdatedAt = m.CreatedAt

	_, err := s.exec(ctx, `
		INSERT INTO metrics (`+metricColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.ApplicationID, models.FormatDay(m.Date), m.RequestsCount, m.StorageGB, m.CPUHours,
		m.CarbonFootprintKg, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if s.dialect.uniqueViolation(err) {
			return models.Metric{}, errors.AlreadyExistsf("metric for %s", models.FormatDay(m.Date))
		}
		return models.Metric{}, errors.Annotate(err, "creating metric")
	}
	return m, nil
}

func (s *Store) UpdateMetric(ctx context.Context, m models.Metric) (models.Metric, error) {
	res, err := s.exec(ctx, `
		UPDATE metrics
		SET requests_count = ?, storage_gb = ?, cpu_hours = ?, carbon_footprint_kg = ?, updated_at = ?
		WHERE id = ? AND application_id = ?
	`, m.RequestsCount, m.StorageGB, m.CPUHours, m.CarbonFootprintKg, now(), m.ID, m.ApplicationID)
	if err != nil {
		return models.Metric{}, errors.Annotatef(err, "updating metric %q", m.ID)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return models.Metric{}, errors.NotFoundf("metric %q", m.ID)
	}
	return s.GetMetric(ctx, m.ApplicationID, m.ID)
}

func (s *Store) GetMetric(ctx context.Context, appID, id string) (models.Metric, error) {
	row := s.queryRow(ctx, `SELECT `+metricColumns+` FROM metrics WHERE id = ? AND application_id = ?`, id, appID)
	m, err := scanMetric(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.Metric{}, errors.NotFoundf("metric %q", id)
	}
	if err != nil {
		return models.Metric{}, errors.Annotatef(err, "reading metric %q", id)
	}
	return m, nil
}

func (s *Store) GetMetricByDate(ctx context.Context, appID string, day time.Time) (models.Metric, error) {
	row := s.queryRow(ctx, `SELECT `+metricColumns+` FROM metrics WHERE application_id = ? AND date = ?`,
		appID, models.FormatDay(day))
	m, err := scanMetric(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.Metric{}, errors.NotFoundf("metric for %s", models.FormatDay(day))
	}
	if err != nil {
		return models.Metric{}, errors.Annotatef(err, "reading metric for %s", models.FormatDay(day))
	}
	return m, nil
}

func (s *Store) DeleteMetric(ctx context.Context, appID, id string) error {
	res, err := s.exec(ctx, `DELETE FROM metrics WHERE id = ? AND application_id = ?`, id, appID)
	if err != nil {
		return errors.Annotatef(err, "deleting metric %q", id)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return errors.NotFoundf("metric %q", id)
	}
	return nil
}

func (s *Store) ListMetrics(ctx context.Context, appID string, offset, limit int) ([]models.Metric, error) {
	if limit < 0 {
		limit = math.MaxInt32
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.query(ctx, `
		SELECT `+metricColumns+`
		FROM metrics
		WHERE application_id = ?
		ORDER BY date DESC
		LIMIT ? OFFSET ?
	`, appID, limit, offset)
	if err != nil {
		return nil, errors.Annotate(err, "listing metrics")
	}
	return collectMetrics(rows)
}

func (s *Store) CountMetrics(ctx context.Context, appID string) (int, error) {
	var count int
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM metrics WHERE application_id = ?`, appID).Scan(&count)
	if err != nil {
		return 0, errors.Annotate(err, "counting metrics")
	}
	return count, nil
}

func (s *Store) MetricsBetween(ctx context.Context, appID string, from, to time.Time) ([]models.Metric, error) {
	rows, err := s.query(ctx, `
		SELECT `+metricColumns+`
		FROM metrics
		WHERE application_id = ? AND date >= ? AND date <= ?
		ORDER BY date DESC
	`, appID, models.FormatDay(from), models.FormatDay(to))
	if err != nil {
		return nil, errors.Annotate(err, "reading metric window")
	}
	return collectMetrics(rows)
}

func collectMetrics(rows *sql.Rows) ([]models.Metric, error) {
	defer rows.Close()

	result := make([]models.Metric, 0)
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, errors.Trace(err)
		}
		result = append(result, m)
	}
	return result, errors.Trace(rows.Err())
}

// --- CertificateStore -------------------------------------------------------

func (s *Store) CreateCertificate(ctx context.Context, c models.CarbonCertificate) (models.CarbonCertificate, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.IssuedAt = c.IssuedAt.UTC()
	c.ValidUntil = c.ValidUntil.UTC()

	_, err := s.exec(ctx, `
		INSERT INTO carbon_certificates (`+certificateColumns+`)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.ApplicationID, string(c.BadgeLevel), c.IssuedAt, c.ValidUntil)
	if err != nil {
		return models.CarbonCertificate{}, errors.Annotate(err, "creating certificate")
	}
	return c, nil
}

func (s *Store) LatestCertificate(ctx context.Context, appID string) (models.CarbonCertificate, error) {
	row := s.queryRow(ctx, `
		SELECT `+certificateColumns+`
		FROM carbon_certificates
		WHERE application_id = ?
		ORDER BY issued_at DESC
		LIMIT 1
	`, appID)
	c, err := scanCertificate(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return models.CarbonCertificate{}, errors.NotFoundf("certificate for application %q", appID)
	}
	if err != nil {
		return models.CarbonCertificate{}, errors.Annotate(err, "reading latest certificate")
	}
	return c, nil
}

func (s *Store) ListCertificates(ctx context.Context, appID string) ([]models.CarbonCertificate, error) {
	rows, err := s.query(ctx, `
		SELECT `+certificateColumns+`
		FROM carbon_certificates
		WHERE application_id = ?
		ORDER BY issued_at DESC
	`, appID)
	if err != nil {
		return nil, errors.Annotate(err, "listing certificates")
	}
	defer rows.Close()

	result := make([]models.CarbonCertificate, 0)
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, errors.Trace(err)
		}
		result = append(result, c)
	}
	return result, errors.Trace(rows.Err())
}
