package models

import (
	"time"

	"github.com/juju/errors"
)

const DateLayout = "2006-01-02"

// Day truncates t to its calendar day in t's own location. The result is
// expressed in UTC so that two days compare equal regardless of the zone
// they were resolved in.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errors.NotValidf("date %q", s)
	}
	return t, nil
}

func FormatDay(t time.Time) string {
	return t.Format(DateLayout)
}
