package providers

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/juju/clock"

	"ecometrics/internal/models"
	"ecometrics/internal/structures"
)

// ClockProviderInterface resolves the current instant and calendar day in
// the configured ledger timezone.
type ClockProviderInterface interface {
	Now() time.Time
	Today() time.Time
}

type ClockProvider struct {
	clock    clock.Clock
	location *time.Location
}

func (c *ClockProvider) Now() time.Time {
	return c.clock.Now().In(c.location)
}

func (c *ClockProvider) Today() time.Time {
	return models.Day(c.Now())
}

func NewClockProvider(conf *structures.Config) (ClockProviderInterface, error) {
	return NewClockProviderWith(clock.WallClock, conf.Ledger.Timezone)
}

// NewClockProviderWith is used by tests to drive time with a testclock.
func NewClockProviderWith(clk clock.Clock, timezone string) (ClockProviderInterface, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}
	return &ClockProvider{clock: clk, location: loc}, nil
}
