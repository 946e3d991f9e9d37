package portman

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Tanaka97/portman/date"
)

// valuationFixture is a two-currency portfolio ready to be priced on
// 2025-03-07 in EUR. With EURUSD at 1.25 every USD amount converts at an
// exact 0.80, so the expected figures below are exact.
func valuationFixture(t *testing.T) (*Book, *PriceTable, date.Date) {
	t.Helper()
	reg := testRegistry(t)
	b := bookOf(t, reg, Config{},
		NewDeposit(date.MustParse("2025-01-05"), EUR(10000)),
		NewDeposit(date.MustParse("2025-01-05"), USD(10000)),
		NewBuy(date.MustParse("2025-01-10"), aapl, Q(10), USD(180)),
		NewBuy(date.MustParse("2025-01-10"), mc, Q(5), EUR(700)),
	)

	on := date.MustParse("2025-03-07")
	table := NewPriceTable()
	for _, rec := range []struct {
		id    ID
		price Money
	}{
		{aapl, USD(200)},
		{mc, EUR(710)},
	} {
		if err := table.Record(rec.id, on, rec.price); err != nil {
			t.Fatalf("Record(%s) error = %v", rec.id, err)
		}
	}
	if err := table.RecordRate("EUR", "USD", on, Q(1.25)); err != nil {
		t.Fatalf("RecordRate() error = %v", err)
	}
	return b, table, on
}

func TestValuateSnapshot(t *testing.T) {
	b, table, on := valuationFixture(t)

	snap, err := Valuate(context.Background(), b, table, "EUR", on)
	if err != nil {
		t.Fatalf("Valuate() error = %v", err)
	}

	if snap.On() != on || snap.Base() != "EUR" {
		t.Errorf("snapshot on %s in %s, want %s in EUR", snap.On(), snap.Base(), on)
	}
	if !snap.Total().Equal(EUR(18210)) {
		t.Errorf("Total() = %s, want 18210", snap.Total().Amount())
	}
	if !snap.TotalCash().Equal(EUR(13060)) {
		t.Errorf("TotalCash() = %s, want 13060 (6500 EUR + 8200 USD at 0.80)", snap.TotalCash().Amount())
	}
	if !snap.TotalUnrealized().Equal(EUR(210)) {
		t.Errorf("TotalUnrealized() = %s, want 210", snap.TotalUnrealized().Amount())
	}

	var ids []ID
	for h := range snap.Holdings() {
		ids = append(ids, h.Security)
	}
	if len(ids) != 2 || ids[0] != aapl || ids[1] != mc {
		t.Fatalf("Holdings() order = %v, want [%s %s]", ids, aapl, mc)
	}

	h, ok := snap.Holding(aapl)
	if !ok {
		t.Fatal("Holding(aapl) not found")
	}
	if !h.Quantity.Equal(Q(10)) || !h.Price.Equal(USD(200)) {
		t.Errorf("Holding(aapl) quantity %s at %s, want 10 at 200 USD", h.Quantity, h.Price.Amount())
	}
	if !h.Value.Equal(EUR(1600)) || !h.Unrealized.Equal(EUR(160)) {
		t.Errorf("Holding(aapl) value %s unrealized %s, want 1600 and 160 EUR", h.Value.Amount(), h.Unrealized.Amount())
	}

	var cash []CashLine
	for c := range snap.CashLines() {
		cash = append(cash, c)
	}
	if len(cash) != 2 || cash[0].Currency != "EUR" || cash[1].Currency != "USD" {
		t.Fatalf("CashLines() = %v, want EUR then USD", cash)
	}
	if !cash[1].Balance.Equal(USD(8200)) || !cash[1].Value.Equal(EUR(6560)) {
		t.Errorf("USD cash line = %s valued %s, want 8200 at 6560", cash[1].Balance.Amount(), cash[1].Value.Amount())
	}

	if r, ok := snap.Rate("USD"); !ok || !r.Equal(Q(0.8)) {
		t.Errorf("Rate(USD) = %s, want the reciprocal 0.8", r)
	}
	if r, ok := snap.Rate("EUR"); !ok || !r.Equal(Q(1)) {
		t.Errorf("Rate(EUR) = %s, want 1", r)
	}
	if _, ok := snap.Rate("JPY"); ok {
		t.Error("Rate(JPY) found, want absent")
	}
}

func TestSnapshotWeight(t *testing.T) {
	b, table, on := valuationFixture(t)
	snap, err := Valuate(context.Background(), b, table, "EUR", on)
	if err != nil {
		t.Fatalf("Valuate() error = %v", err)
	}

	if got, want := snap.Weight(aapl), Percent(1600.0/18210.0*100); !got.Equal(want) {
		t.Errorf("Weight(aapl) = %s, want %s", got, want)
	}
	if got := snap.Weight("NVDA.XNAS"); got != 0 {
		t.Errorf("Weight of an absent instrument = %s, want 0", got)
	}
}

func TestValuateDeterministic(t *testing.T) {
	b, table, on := valuationFixture(t)

	encode := func() []byte {
		t.Helper()
		snap, err := Valuate(context.Background(), b, table, "EUR", on)
		if err != nil {
			t.Fatalf("Valuate() error = %v", err)
		}
		raw, err := json.Marshal(snap)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		return raw
	}

	first := encode()
	for range 5 {
		if next := encode(); !bytes.Equal(first, next) {
			t.Fatalf("valuation is not deterministic:\n%s\n%s", first, next)
		}
	}
}

func TestValuateMissingDataJoinsAllFailures(t *testing.T) {
	reg := testRegistry(t)
	b := bookOf(t, reg, Config{},
		NewDeposit(date.MustParse("2025-01-05"), USD(10000)),
		NewBuy(date.MustParse("2025-01-10"), aapl, Q(10), USD(180)),
		NewBuy(date.MustParse("2025-01-10"), mc, Q(5), EUR(700)),
	)
	on := date.MustParse("2025-03-07")
	table := NewPriceTable()
	// Only MC is priced: the AAPL price and the USD rate are both absent,
	// and both must be reported in one shot.
	if err := table.Record(mc, on, EUR(710)); err != nil {
		t.Fatal(err)
	}

	_, err := Valuate(context.Background(), b, table, "EUR", on)
	if err == nil {
		t.Fatal("Valuate() = nil, want joined missing-data errors")
	}

	var priceErr *MissingPriceError
	if !errors.As(err, &priceErr) {
		t.Errorf("error %v does not carry a MissingPriceError", err)
	} else if priceErr.Security != aapl || priceErr.AsOf != on {
		t.Errorf("MissingPriceError = %+v, want %s on %s", priceErr, aapl, on)
	}

	var rateErr *MissingRateError
	if !errors.As(err, &rateErr) {
		t.Errorf("error %v does not carry a MissingRateError", err)
	} else if rateErr.From != "USD" || rateErr.To != "EUR" {
		t.Errorf("MissingRateError = %+v, want USD to EUR", rateErr)
	}
}

func TestValuateRejectsMismatchedPriceCurrency(t *testing.T) {
	reg := testRegistry(t)
	b := bookOf(t, reg, Config{},
		NewTransferIn(date.MustParse("2025-01-10"), aapl, Q(10), USD(150)),
	)
	on := date.MustParse("2025-03-07")
	table := NewPriceTable()
	if err := table.Record(aapl, on, EUR(200)); err != nil {
		t.Fatal(err)
	}
	if err := table.RecordRate("EUR", "USD", on, Q(1.25)); err != nil {
		t.Fatal(err)
	}

	_, err := Valuate(context.Background(), b, table, "EUR", on)
	if err == nil || !strings.Contains(err.Error(), "quoted in EUR, instrument is in USD") {
		t.Errorf("Valuate() error = %v, want a quote-currency mismatch", err)
	}
}

// slowOracle never answers before the context expires.
type slowOracle struct{}

func (slowOracle) Price(ctx context.Context, id ID, on date.Date) (Money, error) {
	<-ctx.Done()
	return Money{}, ctx.Err()
}

func (slowOracle) Rate(ctx context.Context, from, to string, on date.Date) (Quantity, error) {
	<-ctx.Done()
	return Quantity{}, ctx.Err()
}

func TestValuateHonorsDeadline(t *testing.T) {
	reg := testRegistry(t)
	b := bookOf(t, reg, Config{},
		NewTransferIn(date.MustParse("2025-01-10"), mc, Q(5), EUR(700)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := Valuate(ctx, b, slowOracle{}, "EUR", date.MustParse("2025-03-07"))

	var toErr *OracleTimeoutError
	if !errors.As(err, &toErr) {
		t.Fatalf("Valuate() error = %v, want OracleTimeoutError", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error %v does not unwrap to context.DeadlineExceeded", err)
	}
	if toErr.Op != "price" || toErr.Key != mc.String() {
		t.Errorf("OracleTimeoutError = %+v, want the MC price lookup", toErr)
	}
}

// barrierOracle answers only once every expected lookup has arrived. A
// sequential caller never gets all lookups in flight at once, so each one
// times out instead.
type barrierOracle struct {
	arrived *sync.WaitGroup
}

func (o barrierOracle) await(ctx context.Context) error {
	o.arrived.Done()
	released := make(chan struct{})
	go func() {
		o.arrived.Wait()
		close(released)
	}()
	select {
	case <-released:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o barrierOracle) Price(ctx context.Context, id ID, on date.Date) (Money, error) {
	if err := o.await(ctx); err != nil {
		return Money{}, err
	}
	if id == aapl {
		return USD(100), nil
	}
	return EUR(100), nil
}

func (o barrierOracle) Rate(ctx context.Context, from, to string, on date.Date) (Quantity, error) {
	if err := o.await(ctx); err != nil {
		return Quantity{}, err
	}
	return Q(0.8), nil
}

func TestValuateLooksUpConcurrently(t *testing.T) {
	reg := testRegistry(t)
	on := date.MustParse("2025-01-10")
	b := bookOf(t, reg, Config{},
		NewTransferIn(on, aapl, Q(10), USD(90)),
		NewTransferIn(on, mc, Q(5), EUR(90)),
		NewTransferIn(on, iwda, Q(3), EUR(90)),
	)

	// Three prices plus the USD rate must all be in flight together.
	var arrived sync.WaitGroup
	arrived.Add(4)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	snap, err := Valuate(ctx, b, barrierOracle{arrived: &arrived}, "EUR", on)
	if err != nil {
		t.Fatalf("Valuate() error = %v, want concurrent lookups to release each other", err)
	}
	if !snap.Total().Equal(EUR(1600)) {
		t.Errorf("Total() = %s, want 1600", snap.Total().Amount())
	}
}

func TestValuateConcurrentPortfolios(t *testing.T) {
	// Distinct portfolios valued in parallel must produce exactly what each
	// produces alone.
	reg := testRegistry(t)
	on := date.MustParse("2025-03-07")
	table := NewPriceTable()
	if err := table.Record(mc, on, EUR(710)); err != nil {
		t.Fatal(err)
	}

	books := make([]*Book, 8)
	want := make([][]byte, len(books))
	for i := range books {
		books[i] = bookOf(t, reg, Config{},
			NewDeposit(date.MustParse("2025-01-05"), EUR(float64(1000*(i+1)))),
			NewBuy(date.MustParse("2025-01-10"), mc, Q(float64(i+1)), EUR(700)),
		)
		snap, err := Valuate(context.Background(), books[i], table, "EUR", on)
		if err != nil {
			t.Fatalf("Valuate(#%d) error = %v", i, err)
		}
		if want[i], err = json.Marshal(snap); err != nil {
			t.Fatal(err)
		}
	}

	got := make([][]byte, len(books))
	errs := make([]error, len(books))
	var wg sync.WaitGroup
	for i := range books {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap, err := Valuate(context.Background(), books[i], table, "EUR", on)
			if err != nil {
				errs[i] = err
				return
			}
			got[i], errs[i] = json.Marshal(snap)
		}()
	}
	wg.Wait()

	for i := range books {
		if errs[i] != nil {
			t.Fatalf("concurrent Valuate(#%d) error = %v", i, errs[i])
		}
		if !bytes.Equal(got[i], want[i]) {
			t.Errorf("concurrent valuation #%d diverged:\n%s\n%s", i, want[i], got[i])
		}
	}
}

// absentOracle reports every lookup as missing; a valuation that needs
// nothing must not fail on it.
type absentOracle struct{}

func (absentOracle) Price(ctx context.Context, id ID, on date.Date) (Money, error) {
	return Money{}, ErrAbsent
}

func (absentOracle) Rate(ctx context.Context, from, to string, on date.Date) (Quantity, error) {
	return Quantity{}, ErrAbsent
}

func TestValuateSkipsClosedPositions(t *testing.T) {
	reg := testRegistry(t)
	b := bookOf(t, reg, Config{},
		NewTransferIn(date.MustParse("2025-01-10"), mc, Q(5), EUR(700)),
		NewTransferOut(date.MustParse("2025-02-01"), mc, Q(0)),
	)

	snap, err := Valuate(context.Background(), b, absentOracle{}, "EUR", date.MustParse("2025-03-07"))
	if err != nil {
		t.Fatalf("Valuate() error = %v, want closed positions to need no price", err)
	}
	if !snap.Total().Equal(M(0, "EUR")) {
		t.Errorf("Total() = %s, want 0", snap.Total().Amount())
	}
}

func TestValuateEmptyBook(t *testing.T) {
	reg := testRegistry(t)
	b := bookOf(t, reg, Config{})

	snap, err := Valuate(context.Background(), b, absentOracle{}, "EUR", date.MustParse("2025-03-07"))
	if err != nil {
		t.Fatalf("Valuate() error = %v", err)
	}
	if !snap.Total().IsZero() || !snap.TotalCash().IsZero() {
		t.Errorf("empty book valued at %s, want 0", snap.Total().Amount())
	}
}

func TestValuateRejectsInvalidBase(t *testing.T) {
	reg := testRegistry(t)
	b := bookOf(t, reg, Config{})

	_, err := Valuate(context.Background(), b, absentOracle{}, "euro", date.MustParse("2025-03-07"))
	if err == nil || !strings.Contains(err.Error(), "invalid base currency") {
		t.Errorf("Valuate() error = %v, want an invalid-base failure", err)
	}
}
