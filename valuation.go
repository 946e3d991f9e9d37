package portman

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Tanaka97/portman/date"
)

// Valuate converts a book's positions and cash into a single-currency
// snapshot as of a day. Every required price and FX lookup is issued
// concurrently against the oracle (one goroutine per lookup, joined before
// any total is computed) and bounded by the caller's context deadline. If
// any lookup fails the whole valuation fails with the joined errors: a
// partial snapshot with silently-zeroed holdings would corrupt totals and
// allocation ratios undetectably.
//
// Absent data surfaces as MissingPriceError/MissingRateError; a context cut
// short surfaces as OracleTimeoutError so callers can tell "data doesn't
// exist" from "source unavailable". Identical inputs yield bit-identical
// snapshots.
func Valuate(ctx context.Context, b *Book, oracle PriceOracle, base string, asOf date.Date) (*Snapshot, error) {
	if !validCurrency(base) {
		return nil, fmt.Errorf("invalid base currency %q", base)
	}

	// One price slot per held instrument, in ID order.
	type priceSlot struct {
		inst  *Instrument
		qty   Quantity
		basis Money
		price Money
		err   error
	}
	var prices []*priceSlot
	for p := range b.Positions() {
		if p.Quantity().IsZero() {
			continue
		}
		prices = append(prices, &priceSlot{inst: p.Instrument(), qty: p.Quantity(), basis: p.CostBasis()})
	}

	// One rate slot per distinct foreign currency (holdings and cash), in
	// currency order. The base currency converts at 1 with no lookup.
	type rateSlot struct {
		from string
		rate Quantity
		err  error
	}
	rateIndex := make(map[string]*rateSlot)
	var rates []*rateSlot
	need := func(cur string) {
		if cur == base || rateIndex[cur] != nil {
			return
		}
		s := &rateSlot{from: cur}
		rateIndex[cur] = s
		rates = append(rates, s)
	}
	for _, s := range prices {
		need(s.inst.Currency())
	}
	for cur := range b.Currencies() {
		// An emptied currency contributes nothing and needs no rate.
		if !b.Cash(cur).IsZero() {
			need(cur)
		}
	}

	var wg sync.WaitGroup
	for _, s := range prices {
		wg.Add(1)
		go func(s *priceSlot) {
			defer wg.Done()
			s.price, s.err = oracle.Price(ctx, s.inst.ID(), asOf)
		}(s)
	}
	for _, s := range rates {
		wg.Add(1)
		go func(s *rateSlot) {
			defer wg.Done()
			s.rate, s.err = oracle.Rate(ctx, s.from, base, asOf)
		}(s)
	}
	wg.Wait()

	// Collect failures in slot order so the joined error is deterministic.
	var errs []error
	for _, s := range prices {
		switch {
		case s.err == nil:
			if got := s.price.Currency(); got != s.inst.Currency() {
				errs = append(errs, fmt.Errorf("price for %s quoted in %s, instrument is in %s", s.inst.ID(), got, s.inst.Currency()))
			}
		case errors.Is(s.err, ErrAbsent):
			errs = append(errs, &MissingPriceError{Security: s.inst.ID(), AsOf: asOf})
		case errors.Is(s.err, context.DeadlineExceeded) || errors.Is(s.err, context.Canceled):
			errs = append(errs, &OracleTimeoutError{Op: "price", Key: s.inst.ID().String(), AsOf: asOf, Err: s.err})
		default:
			errs = append(errs, fmt.Errorf("price lookup %s: %w", s.inst.ID(), s.err))
		}
	}
	for _, s := range rates {
		switch {
		case s.err == nil:
		case errors.Is(s.err, ErrAbsent):
			errs = append(errs, &MissingRateError{From: s.from, To: base, AsOf: asOf})
		case errors.Is(s.err, context.DeadlineExceeded) || errors.Is(s.err, context.Canceled):
			errs = append(errs, &OracleTimeoutError{Op: "rate", Key: s.from + base, AsOf: asOf, Err: s.err})
		default:
			errs = append(errs, fmt.Errorf("rate lookup %s/%s: %w", s.from, base, s.err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	rate := func(cur string) Quantity {
		if cur == base {
			return Q(1)
		}
		return rateIndex[cur].rate
	}

	snap := &Snapshot{
		on:    asOf,
		base:  base,
		rates: make(map[string]Quantity, len(rates)+1),
		total: M(0, base),
	}
	snap.rates[base] = Q(1)
	for _, s := range rates {
		snap.rates[s.from] = s.rate
	}

	for _, s := range prices {
		cur := s.inst.Currency()
		value := s.price.Mul(s.qty).Convert(rate(cur), base)
		basis := s.basis.Convert(rate(cur), base)
		snap.holdings = append(snap.holdings, Holding{
			Security:   s.inst.ID(),
			Class:      s.inst.Class(),
			Quantity:   s.qty,
			Price:      s.price,
			Value:      value,
			Unrealized: value.Sub(basis),
		})
		snap.total = snap.total.Add(value)
	}

	snap.totalCash = M(0, base)
	for cur := range b.Currencies() {
		bal := b.Cash(cur)
		if bal.IsZero() {
			continue
		}
		value := bal.Convert(rate(cur), base)
		snap.cash = append(snap.cash, CashLine{Currency: cur, Balance: bal, Value: value})
		snap.totalCash = snap.totalCash.Add(value)
	}
	snap.total = snap.total.Add(snap.totalCash)

	return snap, nil
}
