package portman

import (
	"errors"
	"testing"

	"github.com/Tanaka97/portman/date"
)

// allocationSnapshot values mc at 750 EUR plus whatever extra transactions
// the case needs, on 2025-03-07 in EUR.
func allocationSnapshot(t *testing.T, txs ...Transaction) *Snapshot {
	t.Helper()
	reg := testRegistry(t)
	b := bookOf(t, reg, Config{}, txs...)
	on := date.MustParse("2025-03-07")
	table := NewPriceTable()
	for _, rec := range []struct {
		id    ID
		price Money
	}{
		{mc, EUR(750)},
		{oat, EUR(100)},
	} {
		if err := table.Record(rec.id, on, rec.price); err != nil {
			t.Fatal(err)
		}
	}
	return valuedAt(t, b, table, on)
}

func halfAndHalf(t *testing.T) *AllocationTarget {
	t.Helper()
	target, err := NewAllocationTarget(map[string]float64{"equity": 0.5, "cash": 0.5})
	if err != nil {
		t.Fatalf("NewAllocationTarget() error = %v", err)
	}
	return target
}

func TestProposeOrdersAndConserves(t *testing.T) {
	// 75% equity against a 50/50 target: sell 2500 of equity, buy 2500 of
	// cash. Equal drifts tie, so the order falls back to bucket names.
	snap := allocationSnapshot(t,
		NewTransferIn(date.MustParse("2025-01-10"), mc, Q(10), EUR(750)),
		NewDeposit(date.MustParse("2025-01-05"), EUR(2500)),
	)

	got, err := Propose(snap, halfAndHalf(t), 0.05)
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Propose() = %v, want two suggestions", got)
	}

	if s := got[0]; s.Bucket != "cash" || s.Direction != Buy || !s.Amount.Equal(EUR(2500)) || !s.Drift.Equal(-25) {
		t.Errorf("first suggestion = %+v, want buy 2500 of cash at -25%%", s)
	}
	if s := got[1]; s.Bucket != "equity" || s.Direction != Sell || !s.Amount.Equal(EUR(2500)) || !s.Drift.Equal(25) {
		t.Errorf("second suggestion = %+v, want sell 2500 of equity at +25%%", s)
	}

	buys, sells := M(0, "EUR"), M(0, "EUR")
	for _, s := range got {
		if s.Direction == Buy {
			buys = buys.Add(s.Amount)
		} else {
			sells = sells.Add(s.Amount)
		}
	}
	if !buys.Equal(sells) {
		t.Errorf("buys %s != sells %s: the proposal invents or destroys value", buys.Amount(), sells.Amount())
	}
}

func TestProposeClipsToWhatSellsFund(t *testing.T) {
	// No cash at all: equity is 25 points overweight (sell 2500) but cash
	// wants 5000. Purchases are clipped to the 2500 the sells fund.
	snap := allocationSnapshot(t,
		NewTransferIn(date.MustParse("2025-01-10"), mc, Q(10), EUR(750)),
		NewTransferIn(date.MustParse("2025-01-10"), oat, Q(25), EUR(90)),
	)

	got, err := Propose(snap, halfAndHalf(t), 0.05)
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Propose() = %v, want two suggestions", got)
	}
	// Cash drifts -50 points, equity +25: cash still sorts first.
	if s := got[0]; s.Bucket != "cash" || s.Direction != Buy || !s.Amount.Equal(EUR(2500)) {
		t.Errorf("first suggestion = %+v, want the cash buy clipped to 2500", s)
	}
	if s := got[1]; s.Bucket != "equity" || !s.Amount.Equal(EUR(2500)) {
		t.Errorf("second suggestion = %+v, want sell 2500 of equity", s)
	}
	// The bond bucket is not in the target: never touched.
	for _, s := range got {
		if s.Bucket == "bond" {
			t.Errorf("suggestion for untargeted bucket: %+v", s)
		}
	}
}

func TestProposeOneSidedFundsNothing(t *testing.T) {
	// Cash only, targeting securities: every bucket is underweight and
	// nothing is overweight to fund the buys, so nothing is proposed.
	snap := allocationSnapshot(t,
		NewDeposit(date.MustParse("2025-01-05"), EUR(10000)),
	)
	target, err := NewAllocationTarget(map[string]float64{"equity": 0.5, "bond": 0.5})
	if err != nil {
		t.Fatal(err)
	}

	got, err := Propose(snap, target, 0.05)
	if err != nil {
		t.Fatalf("Propose() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Propose() = %v, want nothing without a funding side", got)
	}
}

func TestProposeWithinTolerance(t *testing.T) {
	cases := []struct {
		name string
		txs  []Transaction
	}{
		{"exactly on target", []Transaction{
			NewTransferIn(date.MustParse("2025-01-10"), mc, Q(10), EUR(500)),
			NewDeposit(date.MustParse("2025-01-05"), EUR(7500)),
		}},
		{"inside the band", []Transaction{
			NewTransferIn(date.MustParse("2025-01-10"), mc, Q(10), EUR(500)),
			NewDeposit(date.MustParse("2025-01-05"), EUR(7100)),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			snap := allocationSnapshot(t, tc.txs...)
			got, err := Propose(snap, halfAndHalf(t), 0.05)
			if err != nil {
				t.Fatalf("Propose() error = %v", err)
			}
			if len(got) != 0 {
				t.Errorf("Propose() = %v, want no churn inside the band", got)
			}
		})
	}
}

func TestProposeRejectsBadInput(t *testing.T) {
	snap := allocationSnapshot(t,
		NewDeposit(date.MustParse("2025-01-05"), EUR(10000)),
	)

	var targetErr *InvalidTargetError
	if _, err := Propose(snap, nil, 0.05); !errors.As(err, &targetErr) {
		t.Errorf("Propose(nil target) error = %v, want InvalidTargetError", err)
	}
	for _, tolerance := range []float64{-0.1, 1, 1.5} {
		if _, err := Propose(snap, halfAndHalf(t), tolerance); !errors.As(err, &targetErr) {
			t.Errorf("Propose(tolerance=%v) error = %v, want InvalidTargetError", tolerance, err)
		}
	}
}

func TestProposeEmptyPortfolio(t *testing.T) {
	snap := allocationSnapshot(t)

	var emptyErr *EmptyPortfolioError
	if _, err := Propose(snap, halfAndHalf(t), 0.05); !errors.As(err, &emptyErr) {
		t.Errorf("Propose() error = %v, want EmptyPortfolioError", err)
	}
}
