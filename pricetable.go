package portman

import (
	"context"
	"fmt"
	"iter"
	"slices"

	"github.com/Tanaka97/portman/date"
	"github.com/shopspring/decimal"
)

// PriceTable is the in-memory price oracle: one append-only history arena
// per instrument or currency pair, binary-searched for as-of lookups. The
// CLI fills it from recorded files or the HTTP quote feed; tests fill it
// directly. Like the registry it has a single writer (whoever records) and
// any number of concurrent readers afterwards.
type PriceTable struct {
	series map[ID]*priceSeries
	ids    []ID // sorted
}

type priceSeries struct {
	currency string
	hist     date.History[decimal.Decimal]
}

// NewPriceTable returns an empty table.
func NewPriceTable() *PriceTable {
	return &PriceTable{series: make(map[ID]*priceSeries)}
}

// Record stores a price observation. The first observation fixes the
// series' currency; later ones must match it.
func (t *PriceTable) Record(id ID, on date.Date, price Money) error {
	s, ok := t.series[id]
	if !ok {
		s = &priceSeries{currency: price.Currency()}
		t.series[id] = s
		i, _ := slices.BinarySearch(t.ids, id)
		t.ids = slices.Insert(t.ids, i, id)
	}
	if price.Currency() != s.currency {
		return fmt.Errorf("price for %s in %s, series is in %s", id, price.Currency(), s.currency)
	}
	s.hist.Append(on, price.Amount())
	return nil
}

// RecordRate stores an exchange-rate observation for the from/to pair.
func (t *PriceTable) RecordRate(from, to string, on date.Date, rate Quantity) error {
	return t.Record(Pair(from, to), on, M(rate.value, to))
}

// Price implements PriceOracle over the recorded observations.
func (t *PriceTable) Price(_ context.Context, id ID, on date.Date) (Money, error) {
	s, ok := t.series[id]
	if !ok {
		return Money{}, fmt.Errorf("price %s as of %s: %w", id, on, ErrAbsent)
	}
	v, ok := s.hist.ValueAsOf(on)
	if !ok {
		return Money{}, fmt.Errorf("price %s as of %s: %w", id, on, ErrAbsent)
	}
	return M(v, s.currency), nil
}

// Rate implements PriceOracle. A missing direct pair falls back to the
// reciprocal of the inverse pair when that one is recorded.
func (t *PriceTable) Rate(ctx context.Context, from, to string, on date.Date) (Quantity, error) {
	if from == to {
		return Q(1), nil
	}
	if m, err := t.Price(ctx, Pair(from, to), on); err == nil {
		return Q(m.Amount()), nil
	}
	if m, err := t.Price(ctx, Pair(to, from), on); err == nil && !m.IsZero() {
		return Q(1).Div(Q(m.Amount())), nil
	}
	return Quantity{}, fmt.Errorf("rate %s/%s as of %s: %w", from, to, on, ErrAbsent)
}

// Len returns the number of series.
func (t *PriceTable) Len() int { return len(t.ids) }

// IDs iterates over the recorded instrument and pair IDs in order.
func (t *PriceTable) IDs() iter.Seq[ID] { return slices.Values(t.ids) }

// Currency returns the quote currency of a series, or "" when unknown.
func (t *PriceTable) Currency(id ID) string {
	if s, ok := t.series[id]; ok {
		return s.currency
	}
	return ""
}

// Observations iterates over a series chronologically.
func (t *PriceTable) Observations(id ID) iter.Seq2[date.Date, decimal.Decimal] {
	s, ok := t.series[id]
	if !ok {
		return func(func(date.Date, decimal.Decimal) bool) {}
	}
	return s.hist.Values()
}

var _ PriceOracle = (*PriceTable)(nil)
