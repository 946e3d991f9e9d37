package portman

import (
	"iter"
	"slices"

	"github.com/Tanaka97/portman/date"
)

// Holding is one line of a snapshot: a held instrument with its native
// price and its base-currency value and unrealized gain.
type Holding struct {
	Security   ID
	Class      AssetClass
	Quantity   Quantity
	Price      Money // native quote currency
	Value      Money // base currency
	Unrealized Money // base currency
}

// MarshalJSON encodes the line with a stable key order.
func (h Holding) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("security", h.Security)
	w.Append("class", h.Class)
	w.Append("quantity", h.Quantity)
	w.Append("price", h.Price)
	w.Append("value", h.Value)
	w.Append("unrealized", h.Unrealized)
	return w.MarshalJSON()
}

// CashLine is a per-currency cash balance with its base-currency value.
type CashLine struct {
	Currency string
	Balance  Money
	Value    Money // base currency
}

// MarshalJSON encodes the line with a stable key order.
func (c CashLine) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("currency", c.Currency)
	w.Append("balance", c.Balance)
	w.Append("value", c.Value)
	return w.MarshalJSON()
}

// Snapshot is the immutable product of one valuation request: every holding
// and cash balance of a book expressed in one base currency as of one day.
// Holding lines are ordered by instrument ID and cash lines by currency, so
// identical inputs produce bit-identical snapshots. The FX rates used are
// kept so downstream reports convert consistently with the snapshot itself.
type Snapshot struct {
	on        date.Date
	base      string
	holdings  []Holding
	cash      []CashLine
	rates     map[string]Quantity
	total     Money
	totalCash Money
}

// On returns the valuation date.
func (s *Snapshot) On() date.Date { return s.on }

// Base returns the base currency all values are expressed in.
func (s *Snapshot) Base() string { return s.base }

// Total returns the portfolio's total value: holdings plus cash.
func (s *Snapshot) Total() Money { return s.total }

// TotalCash returns the cash value across currencies, in base.
func (s *Snapshot) TotalCash() Money { return s.totalCash }

// TotalUnrealized sums the unrealized gains over all holdings.
func (s *Snapshot) TotalUnrealized() Money {
	t := M(0, s.base)
	for _, h := range s.holdings {
		t = t.Add(h.Unrealized)
	}
	return t
}

// Holdings iterates over the holding lines in instrument ID order.
func (s *Snapshot) Holdings() iter.Seq[Holding] { return slices.Values(s.holdings) }

// Holding returns the line for an instrument.
func (s *Snapshot) Holding(id ID) (Holding, bool) {
	i, found := slices.BinarySearchFunc(s.holdings, id, func(h Holding, id ID) int {
		if h.Security < id {
			return -1
		}
		if h.Security > id {
			return 1
		}
		return 0
	})
	if !found {
		return Holding{}, false
	}
	return s.holdings[i], true
}

// CashLines iterates over the cash lines in currency order.
func (s *Snapshot) CashLines() iter.Seq[CashLine] { return slices.Values(s.cash) }

// Rate returns the FX rate (to base) the valuation used for a currency.
func (s *Snapshot) Rate(currency string) (Quantity, bool) {
	r, ok := s.rates[currency]
	return r, ok
}

// Weight returns an instrument's share of the total value, for display.
func (s *Snapshot) Weight(id ID) Percent {
	if s.total.IsZero() {
		return 0
	}
	h, ok := s.Holding(id)
	if !ok {
		return 0
	}
	return Percent(h.Value.Ratio(s.total).Float64() * 100)
}

// MarshalJSON encodes the snapshot as a stable-ordered value object for the
// persistence collaborator. The rates ride along (encoding/json sorts map
// keys) so a reloaded snapshot converts exactly like the original.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("date", s.on)
	w.Append("base", s.base)
	w.Append("rates", s.rates)
	w.Append("holdings", s.holdings)
	w.Append("cash", s.cash)
	w.Append("totalCash", s.totalCash)
	w.Append("totalValue", s.total)
	return w.MarshalJSON()
}
