package portman

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/Tanaka97/portman/date"
)

// valuedAt prices a book in EUR on one day and fails the test on any error.
func valuedAt(t *testing.T, b *Book, table *PriceTable, on date.Date) *Snapshot {
	t.Helper()
	snap, err := Valuate(context.Background(), b, table, "EUR", on)
	if err != nil {
		t.Fatalf("Valuate(%s) error = %v", on, err)
	}
	return snap
}

func TestAnalyzeAllocation(t *testing.T) {
	reg := testRegistry(t)
	b := bookOf(t, reg, Config{},
		NewDeposit(date.MustParse("2025-01-05"), EUR(5000)),
		NewTransferIn(date.MustParse("2025-01-10"), aapl, Q(10), USD(500)),
	)
	on := date.MustParse("2025-03-07")
	table := NewPriceTable()
	if err := table.Record(aapl, on, USD(625)); err != nil {
		t.Fatal(err)
	}
	if err := table.RecordRate("EUR", "USD", on, Q(1.25)); err != nil {
		t.Fatal(err)
	}
	snap := valuedAt(t, b, table, on)

	report, err := Analyze(snap, nil)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if !report.Total.Equal(EUR(10000)) {
		t.Errorf("Total = %s, want 10000", report.Total.Amount())
	}

	// Both buckets weigh 50%, so the tie breaks on bucket name.
	wantBuckets := []struct {
		bucket string
		value  Money
	}{
		{"AAPL.XNAS", EUR(5000)},
		{"cash:EUR", EUR(5000)},
	}
	if len(report.ByBucket) != len(wantBuckets) {
		t.Fatalf("ByBucket has %d lines, want %d", len(report.ByBucket), len(wantBuckets))
	}
	for i, want := range wantBuckets {
		got := report.ByBucket[i]
		if got.Bucket != want.bucket || !got.Value.Equal(want.value) || !got.Weight.Equal(50) {
			t.Errorf("ByBucket[%d] = %+v, want %s at 50%%", i, got, want.bucket)
		}
	}

	wantClasses := []string{"cash", "equity"}
	if len(report.ByClass) != len(wantClasses) {
		t.Fatalf("ByClass has %d lines, want %d", len(report.ByClass), len(wantClasses))
	}
	for i, want := range wantClasses {
		if got := report.ByClass[i]; got.Bucket != want || !got.Weight.Equal(50) {
			t.Errorf("ByClass[%d] = %+v, want %s at 50%%", i, got, want)
		}
	}

	if report.MaxWeight.Bucket != "AAPL.XNAS" {
		t.Errorf("MaxWeight = %+v, want the AAPL line", report.MaxWeight)
	}
	if math.Abs(report.Herfindahl-0.5) > 1e-12 {
		t.Errorf("Herfindahl = %v, want 0.5", report.Herfindahl)
	}

	if report.Volatility != nil || report.Correlation != nil || report.Samples != 0 {
		t.Error("statistics must stay nil without history")
	}
	if report.AnnualizedVolatility(date.Weekly) != nil {
		t.Error("AnnualizedVolatility must stay nil without history")
	}
}

// volatilityFixture values one holding plus fixed cash on three days, with
// totals 10000, 11000 and 10450: returns +10% and -5%.
func volatilityFixture(t *testing.T) (history *SnapshotSeries, current *Snapshot) {
	t.Helper()
	reg := testRegistry(t)
	b := bookOf(t, reg, Config{},
		NewDeposit(date.MustParse("2025-01-05"), EUR(3000)),
		NewTransferIn(date.MustParse("2025-01-10"), mc, Q(10), EUR(600)),
	)

	table := NewPriceTable()
	days := []date.Date{
		date.MustParse("2025-03-05"),
		date.MustParse("2025-03-06"),
		date.MustParse("2025-03-07"),
	}
	for i, price := range []Money{EUR(700), EUR(800), EUR(745)} {
		if err := table.Record(mc, days[i], price); err != nil {
			t.Fatal(err)
		}
	}

	history, err := NewSnapshotSeries(
		valuedAt(t, b, table, days[0]),
		valuedAt(t, b, table, days[1]),
	)
	if err != nil {
		t.Fatalf("NewSnapshotSeries() error = %v", err)
	}
	return history, valuedAt(t, b, table, days[2])
}

func TestAnalyzeVolatility(t *testing.T) {
	history, current := volatilityFixture(t)

	report, err := Analyze(current, history)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if report.Volatility == nil {
		t.Fatal("Volatility = nil, want a figure from two returns")
	}
	// Sample standard deviation of {+0.10, -0.05} is 0.075*sqrt(2).
	want := 0.075 * math.Sqrt2
	if got := *report.Volatility; math.Abs(got-want) > 1e-9 {
		t.Errorf("Volatility = %v, want %v", got, want)
	}
	if report.Samples != 2 {
		t.Errorf("Samples = %d, want 2", report.Samples)
	}

	annual := report.AnnualizedVolatility(date.Weekly)
	if annual == nil {
		t.Fatal("AnnualizedVolatility = nil")
	}
	if got, want := *annual, *report.Volatility*math.Sqrt(52); math.Abs(got-want) > 1e-12 {
		t.Errorf("AnnualizedVolatility(weekly) = %v, want %v", got, want)
	}

	// One return is not enough for a sample deviation.
	short, err := NewSnapshotSeries()
	if err != nil {
		t.Fatal(err)
	}
	first, _ := history.Last()
	if err := short.Record(first); err != nil {
		t.Fatal(err)
	}
	report, err = Analyze(current, short)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if report.Volatility != nil {
		t.Errorf("Volatility = %v from a single return, want nil", *report.Volatility)
	}

	// A single instrument has no pair to correlate with.
	report, err = Analyze(current, history)
	if err != nil {
		t.Fatal(err)
	}
	if report.Correlation != nil {
		t.Error("Correlation != nil with one instrument")
	}
}

func TestAnalyzeCorrelation(t *testing.T) {
	reg := testRegistry(t)
	b := bookOf(t, reg, Config{},
		NewTransferIn(date.MustParse("2025-01-10"), aapl, Q(10), USD(90)),
		NewTransferIn(date.MustParse("2025-01-10"), mc, Q(10), EUR(40)),
	)

	table := NewPriceTable()
	days := []date.Date{
		date.MustParse("2025-03-05"),
		date.MustParse("2025-03-06"),
		date.MustParse("2025-03-07"),
	}
	// Both prices move +10% then -4.55%: perfectly correlated returns.
	aaplPrices := []Money{USD(100), USD(110), USD(105)}
	mcPrices := []Money{EUR(50), EUR(55), EUR(52.5)}
	for i, on := range days {
		if err := table.Record(aapl, on, aaplPrices[i]); err != nil {
			t.Fatal(err)
		}
		if err := table.Record(mc, on, mcPrices[i]); err != nil {
			t.Fatal(err)
		}
		if err := table.RecordRate("EUR", "USD", on, Q(1.25)); err != nil {
			t.Fatal(err)
		}
	}

	history, err := NewSnapshotSeries(
		valuedAt(t, b, table, days[0]),
		valuedAt(t, b, table, days[1]),
	)
	if err != nil {
		t.Fatal(err)
	}

	report, err := Analyze(valuedAt(t, b, table, days[2]), history)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	c := report.Correlation
	if c == nil {
		t.Fatal("Correlation = nil, want a 2x2 matrix from three observations")
	}
	if len(c.Securities) != 2 || c.Securities[0] != aapl || c.Securities[1] != mc {
		t.Fatalf("Securities = %v, want [%s %s]", c.Securities, aapl, mc)
	}
	if got := c.At(0, 1); math.Abs(got-1) > 1e-9 {
		t.Errorf("At(0,1) = %v, want 1 for identical return paths", got)
	}
	if got := c.At(0, 0); got != 1 {
		t.Errorf("At(0,0) = %v, want a unit diagonal", got)
	}

	pairs := c.Pairs(0.99)
	if len(pairs) != 1 {
		t.Fatalf("Pairs(0.99) = %v, want exactly one pair", pairs)
	}
	if p := pairs[0]; p.A != aapl || p.B != mc || math.Abs(p.Coeff-1) > 1e-9 {
		t.Errorf("Pairs(0.99)[0] = %+v, want aapl/mc at 1", p)
	}
	if got := c.Pairs(1.1); len(got) != 0 {
		t.Errorf("Pairs(1.1) = %v, want none", got)
	}

	// Two observations give one return vector: not enough to correlate.
	report, err = Analyze(valuedAt(t, b, table, days[1]), mustSeries(t, valuedAt(t, b, table, days[0])))
	if err != nil {
		t.Fatal(err)
	}
	if report.Correlation != nil {
		t.Error("Correlation != nil from two observations")
	}
}

func mustSeries(t *testing.T, snaps ...*Snapshot) *SnapshotSeries {
	t.Helper()
	s, err := NewSnapshotSeries(snaps...)
	if err != nil {
		t.Fatalf("NewSnapshotSeries() error = %v", err)
	}
	return s
}

func TestAnalyzeEmptyPortfolio(t *testing.T) {
	reg := testRegistry(t)
	b := bookOf(t, reg, Config{})
	snap := valuedAt(t, b, NewPriceTable(), date.MustParse("2025-03-07"))

	_, err := Analyze(snap, nil)
	var emptyErr *EmptyPortfolioError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("Analyze() error = %v, want EmptyPortfolioError", err)
	}
	if emptyErr.AsOf != date.MustParse("2025-03-07") {
		t.Errorf("EmptyPortfolioError.AsOf = %s, want the valuation date", emptyErr.AsOf)
	}
}
