// Package carbon holds the fixed formulas of the carbon accounting engine:
// the daily footprint calculation and the badge classification table.
package carbon

import "github.com/shopspring/decimal"

// Emission factors, kilograms of CO2-equivalent.
const (
	KgPerRequest   = 0.0002
	KgPerStorageGB = 0.05
	KgPerCPUHour   = 0.5

	// FootprintPrecision is the number of decimal places a footprint is
	// rounded to (half-up).
	FootprintPrecision = 3
)

var (
	requestFactor = decimal.NewFromFloat(KgPerRequest)
	storageFactor = decimal.NewFromFloat(KgPerStorageGB)
	cpuFactor     = decimal.NewFromFloat(KgPerCPUHour)
)

// Footprint converts a day of usage counters into kilograms of CO2e.
// Arithmetic is done in decimal so that values like 0.095 round the way
// they read.
func Footprint(requests int64, storageGB, cpuHours float64) float64 {
	total := decimal.NewFromInt(requests).Mul(requestFactor).
		Add(decimal.NewFromFloat(storageGB).Mul(storageFactor)).
		Add(decimal.NewFromFloat(cpuHours).Mul(cpuFactor))

	return total.Round(FootprintPrecision).InexactFloat64()
}
