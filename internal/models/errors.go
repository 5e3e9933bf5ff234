package models

import "github.com/juju/errors"

// ErrInsufficientData is returned when a certificate is requested for an
// application whose trailing window holds no metrics.
const ErrInsufficientData = errors.ConstError("insufficient data")
