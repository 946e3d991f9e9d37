package portman

import (
	"testing"
)

// EUR is a helper for tests to build euro money from a const.
func EUR(v float64) Money { return M(v, "EUR") }

// USD is a helper for tests to build dollar money from a const.
func USD(v float64) Money { return M(v, "USD") }

// The instruments the package tests share.
var (
	aapl = ID("AAPL.XNAS") // equity, USD
	mc   = ID("MC.XPAR")   // equity, EUR
	iwda = ID("IWDA.XAMS") // etf, EUR, whole units only
	oat  = ID("OAT.XPAR")  // bond, EUR
)

// testRegistry builds the shared instrument catalog.
func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	for _, s := range []struct {
		id    ID
		class AssetClass
		cur   string
		inc   int
	}{
		{aapl, Equity, "USD", 0},
		{mc, Equity, "EUR", 0},
		{iwda, ETF, "EUR", 1},
		{oat, Bond, "EUR", 0},
	} {
		inst, err := NewInstrument(s.id, s.class, s.cur, Q(s.inc))
		if err != nil {
			t.Fatalf("NewInstrument(%s) error = %v", s.id, err)
		}
		if err := reg.Register(inst); err != nil {
			t.Fatalf("Register(%s) error = %v", s.id, err)
		}
	}
	return reg
}

// bookOf replays the transactions into a fresh book, failing the test on any
// ledger error.
func bookOf(t *testing.T, reg *Registry, cfg Config, txs ...Transaction) *Book {
	t.Helper()
	b, err := ApplyLedger(reg, NewLedger(txs...), cfg)
	if err != nil {
		t.Fatalf("ApplyLedger() error = %v", err)
	}
	return b
}
