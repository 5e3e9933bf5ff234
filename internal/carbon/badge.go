package carbon

import "ecometrics/internal/models"

// Upper bounds (inclusive) of the badge bands, kg CO2e per month.
// Anything above SilverMaxKg is bronze.
const (
	PlatinumMaxKg = 10.0
	GoldMaxKg     = 20.0
	SilverMaxKg   = 50.0
)

// Window and projection constants used for certification.
const (
	WindowDays               = 30
	DaysPerMonth             = 30
	CertificateValidityYears = 1
)

// Classify maps a projected monthly footprint to a badge.
func Classify(monthlyKg float64) models.BadgeLevel {
	switch {
	case monthlyKg <= PlatinumMaxKg:
		return models.BadgePlatinum
	case monthlyKg <= GoldMaxKg:
		return models.BadgeGold
	case monthlyKg <= SilverMaxKg:
		return models.BadgeSilver
	default:
		return models.BadgeBronze
	}
}
