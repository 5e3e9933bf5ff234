package providers

import (
	"fmt"
	"time"

	"github.com/gookit/validate"

	"ecometrics/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate runs the struct tag rules and then the checks that span
// several fields.
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %w", v.Errors)
	}

	storage := cv.conf.Storage
	if storage.Driver != "memory" && storage.DSN == "" {
		return fmt.Errorf("invalid config: storage.dsn is required for driver %q", storage.Driver)
	}
	if storage.Driver == "memory" && storage.SnapshotPath != "" && storage.SaveInterval <= 0 {
		return fmt.Errorf("invalid config: storage.saveInterval must be positive when snapshotPath is set")
	}

	ledger := cv.conf.Ledger
	if ledger.PerPage > 0 && ledger.MaxPerPage > 0 && ledger.PerPage > ledger.MaxPerPage {
		return fmt.Errorf("invalid config: ledger.perPage %d exceeds ledger.maxPerPage %d", ledger.PerPage, ledger.MaxPerPage)
	}
	if ledger.Timezone != "" {
		if _, err := time.LoadLocation(ledger.Timezone); err != nil {
			return fmt.Errorf("invalid config: ledger.timezone: %w", err)
		}
	}
	return nil
}
