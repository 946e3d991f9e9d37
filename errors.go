package portman

import (
	"fmt"

	"github.com/Tanaka97/portman/date"
)

// The engine never swallows a failure or substitutes a default: a silent
// zero in a financial computation is worse than a visible error. Each error
// type carries the instrument, date, and figures needed to diagnose the
// failure without replaying internal state.

// InsufficientLotError reports a sell or transfer-out that asks for more
// quantity than the open lots hold at that point of the ledger. It is a
// ledger integrity violation: fatal, surfaced, never auto-corrected.
type InsufficientLotError struct {
	Security  ID
	Requested Quantity
	Available Quantity
	Date      date.Date
}

func (e *InsufficientLotError) Error() string {
	return fmt.Sprintf("insufficient lots for %s on %s: requested %s, open %s",
		e.Security, e.Date, e.Requested, e.Available)
}

// MissingPriceError reports that no price observation exists at or before
// the valuation date. The caller may retry with another source or a wider
// window; the engine never interpolates or defaults.
type MissingPriceError struct {
	Security ID
	AsOf     date.Date
}

func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("no price for %s at or before %s", e.Security, e.AsOf)
}

// MissingRateError reports a missing FX rate between two currencies at the
// valuation date.
type MissingRateError struct {
	From, To string
	AsOf     date.Date
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("no %s/%s exchange rate at or before %s", e.From, e.To, e.AsOf)
}

// EmptyPortfolioError reports an analysis or proposal over a portfolio with
// no positive total value; weights are undefined there.
type EmptyPortfolioError struct {
	AsOf date.Date
}

func (e *EmptyPortfolioError) Error() string {
	return fmt.Sprintf("portfolio has no value on %s: analysis is undefined", e.AsOf)
}

// InvalidTargetError reports a malformed allocation target. The target is
// rejected before any computation; it is never silently normalized.
type InvalidTargetError struct {
	Reason string
	Sum    float64
}

func (e *InvalidTargetError) Error() string {
	if e.Sum != 0 {
		return fmt.Sprintf("invalid allocation target: %s (weights sum to %v)", e.Reason, e.Sum)
	}
	return fmt.Sprintf("invalid allocation target: %s", e.Reason)
}

// OracleTimeoutError reports that a price or rate lookup was cut off by the
// caller's deadline. Distinct from the missing-data errors so callers can
// tell "data doesn't exist" from "data source unavailable" and retry with
// backoff.
type OracleTimeoutError struct {
	Op   string // "price" or "rate"
	Key  string // instrument ID or currency pair
	AsOf date.Date
	Err  error
}

func (e *OracleTimeoutError) Error() string {
	return fmt.Sprintf("%s lookup for %s as of %s timed out: %v", e.Op, e.Key, e.AsOf, e.Err)
}

func (e *OracleTimeoutError) Unwrap() error { return e.Err }
