package sqlstore

import (
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect captures what differs between the supported SQL backends.
type Dialect struct {
	Name            string
	Driver          string
	numbered        bool
	maxOpenConns    int
	defaultParams   string
	schema          []string
	uniqueViolation func(error) bool
}

var Postgres = Dialect{
	Name:     "postgres",
	Driver:   "postgres",
	numbered: true,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS applications (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			url         TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS metrics (
			id                  TEXT PRIMARY KEY,
			application_id      TEXT NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
			date                DATE NOT NULL,
			requests_count      BIGINT NOT NULL DEFAULT 0,
			storage_gb          DOUBLE PRECISION NOT NULL DEFAULT 0,
			cpu_hours           DOUBLE PRECISION NOT NULL DEFAULT 0,
			carbon_footprint_kg DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at          TIMESTAMPTZ NOT NULL,
			updated_at          TIMESTAMPTZ NOT NULL,
			CONSTRAINT metrics_application_date_unique UNIQUE (application_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_metrics_application_date ON metrics (application_id, date)`,
		`CREATE TABLE IF NOT EXISTS carbon_certificates (
			id             TEXT PRIMARY KEY,
			application_id TEXT NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
			badge_level    TEXT NOT NULL CHECK (badge_level IN ('bronze', 'silver', 'gold', 'platinum')),
			issued_at      TIMESTAMPTZ NOT NULL,
			valid_until    TIMESTAMPTZ NOT NULL,
			CHECK (issued_at <= valid_until)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_carbon_certificates_application ON carbon_certificates (application_id)`,
	},
	uniqueViolation: func(err error) bool {
		var pqErr *pq.Error
		return stderrors.As(err, &pqErr) && pqErr.Code == "23505"
	},
}

// SQLite serialises access through a single connection; the unique index
// still decides which of two racing inserts wins.
var SQLite = Dialect{
	Name:          "sqlite",
	Driver:        "sqlite",
	maxOpenConns:  1,
	defaultParams: "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS applications (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			url         TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS metrics (
			id                  TEXT PRIMARY KEY,
			application_id      TEXT NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
			date                DATE NOT NULL,
			requests_count      INTEGER NOT NULL DEFAULT 0,
			storage_gb          REAL NOT NULL DEFAULT 0,
			cpu_hours           REAL NOT NULL DEFAULT 0,
			carbon_footprint_kg REAL NOT NULL DEFAULT 0,
			created_at          TIMESTAMP NOT NULL,
			updated_at          TIMESTAMP NOT NULL,
			UNIQUE (application_id, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_metrics_application_date ON metrics (application_id, date)`,
		`CREATE TABLE IF NOT EXISTS carbon_certificates (
			id             TEXT PRIMARY KEY,
			application_id TEXT NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
			badge_level    TEXT NOT NULL CHECK (badge_level IN ('bronze', 'silver', 'gold', 'platinum')),
			issued_at      TIMESTAMP NOT NULL,
			valid_until    TIMESTAMP NOT NULL,
			CHECK (issued_at <= valid_until)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_carbon_certificates_application ON carbon_certificates (application_id)`,
	},
	uniqueViolation: func(err error) bool {
		return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
	},
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case Postgres.Name:
		return Postgres, nil
	case SQLite.Name:
		return SQLite, nil
	}
	return Dialect{}, errors.NotSupportedf("storage driver %q", name)
}

// rebind rewrites ? placeholders into $n for dialects that number them.
func (d Dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var (
		b strings.Builder
		n int
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) dsn(dsn string) string {
	if d.defaultParams == "" || strings.Contains(dsn, "?") {
		return dsn
	}
	return dsn + "?" + d.defaultParams
}
