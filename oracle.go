package portman

import (
	"context"
	"errors"

	"github.com/Tanaka97/portman/date"
)

// ErrAbsent is wrapped by oracle implementations when no observation exists
// at or before the requested date. The valuation engine turns it into
// MissingPriceError or MissingRateError; any other failure propagates as the
// source's own error (or OracleTimeoutError when the context expired).
var ErrAbsent = errors.New("no observation")

// PriceOracle is the engine's only window on market data. Implementations
// must honor the context: lookups are issued concurrently and bounded by the
// caller's deadline. They never interpolate: a date with no observation at
// or before it reports ErrAbsent.
type PriceOracle interface {
	// Price returns the latest price of the instrument at or before the
	// given day, in the instrument's quote currency.
	Price(ctx context.Context, id ID, on date.Date) (Money, error)

	// Rate returns the factor converting amounts in currency from into
	// currency to, as of the given day. Implementations need not handle
	// from == to; the engine never asks.
	Rate(ctx context.Context, from, to string, on date.Date) (Quantity, error)
}
