package models

import (
	"time"

	"github.com/juju/errors"
)

type BadgeLevel string

const (
	BadgeBronze   BadgeLevel = "bronze"
	BadgeSilver   BadgeLevel = "silver"
	BadgeGold     BadgeLevel = "gold"
	BadgePlatinum BadgeLevel = "platinum"
)

// BadgeLevels lists the levels from worst to best.
var BadgeLevels = []BadgeLevel{BadgeBronze, BadgeSilver, BadgeGold, BadgePlatinum}

// Rank orders badges, higher is better. Unknown levels rank 0.
func (b BadgeLevel) Rank() int {
	for i, lvl := range BadgeLevels {
		if lvl == b {
			return i + 1
		}
	}
	return 0
}

func ParseBadgeLevel(s string) (BadgeLevel, error) {
	b := BadgeLevel(s)
	if b.Rank() == 0 {
		return "", errors.NotValidf("badge level %q", s)
	}
	return b, nil
}

type CarbonCertificate struct {
	ID            string     `json:"id"`
	ApplicationID string     `json:"application_id"`
	BadgeLevel    BadgeLevel `json:"badge_level"`
	IssuedAt      time.Time  `json:"issued_at"`
	ValidUntil    time.Time  `json:"valid_until"`
}

// IsValid reports whether the certificate is still valid at asOf. Expiry is
// purely a function of time, nothing is stored.
func (c CarbonCertificate) IsValid(asOf time.Time) bool {
	return !asOf.After(c.ValidUntil)
}

// Assessment describes the data a certificate was issued from.
type Assessment struct {
	DaysAnalyzed     int        `json:"days_analyzed"`
	TotalCarbonKg    float64    `json:"total_carbon_kg"`
	MonthlyAverageKg float64    `json:"monthly_average_kg"`
	BadgeLevel       BadgeLevel `json:"badge_level"`
}
